package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"tagdeck/internal/rename"
	"tagdeck/internal/tagfile"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 14
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// resolutionLines summarizes a tag file resolution for the terminal.
func resolutionLines(res tagfile.Result, colorize bool) []string {
	switch res.Kind {
	case tagfile.Resolved:
		lines := make([]string, 0, 1+len(res.Appending))
		if res.Overriding != nil {
			lines = append(lines, renderStatusLine("Overriding", statusOK, res.Overriding.Path, colorize))
		} else {
			lines = append(lines, renderStatusLine("Overriding", statusInfo, "none", colorize))
		}
		for _, ref := range res.Appending {
			lines = append(lines, renderStatusLine("Appending", statusOK, ref.Path, colorize))
		}
		return lines
	case tagfile.Conflict:
		lines := []string{renderStatusLine("Tag files", statusWarn, "ambiguous overriding files; autocomplete disabled", colorize)}
		for _, ref := range res.ConflictingOverriding {
			lines = append(lines, renderStatusLine("Conflicting", statusWarn, ref.Path, colorize))
		}
		for _, ref := range res.IgnoredAppending {
			lines = append(lines, renderStatusLine("Ignored", statusWarn, ref.Path, colorize))
		}
		return lines
	default:
		return []string{renderStatusLine("Tag files", statusInfo, "none found; autocomplete disabled", colorize)}
	}
}

// outcomeLine renders a rename outcome as one status line.
func outcomeLine(outcome rename.Outcome, colorize bool) string {
	switch outcome.State {
	case rename.Applied:
		return renderStatusLine("Rename", statusOK, outcome.NewPath, colorize)
	case rename.Skipped:
		return renderStatusLine("Rename", statusInfo, "name already matches tags", colorize)
	case rename.SourceVanished:
		return renderStatusLine("Rename", statusWarn, "source file vanished; "+outcome.Detail, colorize)
	case rename.Failed:
		msg := outcome.Detail
		if outcome.Err != nil {
			msg = fmt.Sprintf("%s: %v", msg, outcome.Err)
		}
		return renderStatusLine("Rename", statusError, msg, colorize)
	default:
		msg := fmt.Sprintf("%s: %s", outcomeReasonLabel(outcome.Reason), outcome.Detail)
		if outcome.DisableDirectory {
			msg += " (renaming disabled for this directory)"
		}
		return renderStatusLine("Rename", statusWarn, msg, colorize)
	}
}

func outcomeReasonLabel(reason rename.Reason) string {
	switch reason {
	case rename.NameTooLong:
		return "name too long"
	case rename.PathTooLong:
		return "path too long"
	case rename.NameCollision:
		return "name collision"
	case rename.PermissionDenied:
		return "permission denied"
	case rename.CrossDevice:
		return "cross-device rename"
	default:
		return reason.String()
	}
}
