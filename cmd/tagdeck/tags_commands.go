package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tagdeck/internal/naming"
	"tagdeck/internal/services"
	"tagdeck/internal/tagfile"
	"tagdeck/internal/tagset"
	"tagdeck/internal/textutil"
)

const (
	suggestThreshold = 0.45
	suggestLimit     = 3
)

// suggestionsFor proposes vocabulary tags that look like a mistyped tag.
func suggestionsFor(tag string, vocab tagset.TagSet) []string {
	matches := textutil.Suggest(tag, vocab.Tags(), suggestThreshold, suggestLimit)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, match := range matches {
		out = append(out, match.Tag)
	}
	return out
}

// unknownTagDetail renders an unknown tag with any close vocabulary matches.
func unknownTagDetail(tag string, vocab tagset.TagSet) string {
	suggestions := suggestionsFor(tag, vocab)
	if len(suggestions) == 0 {
		return tag
	}
	return fmt.Sprintf("%s (did you mean %s?)", tag, strings.Join(suggestions, ", "))
}

// vocabularyFor resolves dir and loads its governing vocabulary.
func vocabularyFor(ctx context.Context, c *commandContext, dir string) (tagfile.Result, tagset.TagSet, error) {
	locator, err := c.locator()
	if err != nil {
		return tagfile.Result{}, tagset.TagSet{}, err
	}
	res, err := locator.Resolve(ctx, dir)
	if err != nil {
		return tagfile.Result{}, tagset.TagSet{}, err
	}
	return res, locator.Vocabulary(ctx, res), nil
}

func newVocabCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "vocab <media>",
		Short: "Print the autocomplete vocabulary for a media file or directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, dir, _, err := mediaTarget(args[0])
			if err != nil {
				return err
			}
			runCtx := services.WithOperation(services.WithMediaPath(cmd.Context(), path), "vocab")
			res, vocab, err := vocabularyFor(runCtx, ctx, dir)
			if err != nil {
				return err
			}
			if jsonOutput {
				tags := vocab.Tags()
				if tags == nil {
					tags = []string{}
				}
				return writeJSON(cmd, map[string]any{"kind": res.Kind.String(), "tags": tags})
			}

			out := cmd.OutOrStdout()
			if res.Kind != tagfile.Resolved {
				for _, line := range resolutionLines(res, shouldColorize(out)) {
					fmt.Fprintln(out, line)
				}
				return nil
			}
			for _, tag := range vocab.Tags() {
				fmt.Fprintln(out, tag)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of one tag per line")
	return cmd
}

type tagsJSON struct {
	File      string   `json:"file"`
	Extension string   `json:"extension"`
	Tags      []string `json:"tags"`
	Unknown   []string `json:"unknown,omitempty"`
	Invalid   []string `json:"invalid,omitempty"`

	Suggestions map[string][]string `json:"suggestions,omitempty"`
}

func newTagsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "tags <media-file>",
		Short: "List the tags encoded in a media filename",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := mediaFile(args[0])
			if err != nil {
				return err
			}
			tags, ext, invalid := naming.Parse(filepath.Base(path))

			runCtx := services.WithOperation(services.WithMediaPath(cmd.Context(), path), "tags")
			res, vocab, err := vocabularyFor(runCtx, ctx, filepath.Dir(path))
			if err != nil {
				return err
			}
			var unknown []string
			if res.Kind == tagfile.Resolved {
				unknown = tagfile.Unknown(tags, vocab)
			}

			if jsonOutput {
				list := tags.Tags()
				if list == nil {
					list = []string{}
				}
				var suggestions map[string][]string
				for _, tag := range unknown {
					if matches := suggestionsFor(tag, vocab); len(matches) > 0 {
						if suggestions == nil {
							suggestions = make(map[string][]string)
						}
						suggestions[tag] = matches
					}
				}
				return writeJSON(cmd, tagsJSON{File: path, Extension: ext, Tags: list, Unknown: unknown, Invalid: invalid, Suggestions: suggestions})
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			known := make(map[string]bool, len(unknown))
			for _, tag := range unknown {
				known[tag] = true
			}
			rows := make([][]string, 0, tags.Len())
			for i, tag := range tags.Tags() {
				status := "-"
				if res.Kind == tagfile.Resolved {
					status = "known"
					if known[tag] {
						status = "unknown"
					}
				}
				rows = append(rows, []string{strconv.Itoa(i + 1), tag, status})
			}
			if len(rows) > 0 {
				fmt.Fprintln(out, renderTable([]string{"#", "Tag", "Vocabulary"}, rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft}))
			} else {
				fmt.Fprintln(out, renderStatusLine("Tags", statusInfo, "filename carries no tags", colorize))
			}
			for _, tag := range unknown {
				if suggestions := suggestionsFor(tag, vocab); len(suggestions) > 0 {
					fmt.Fprintln(out, renderStatusLine("Unknown tag", statusWarn, unknownTagDetail(tag, vocab), colorize))
				}
			}
			for _, field := range invalid {
				fmt.Fprintln(out, renderStatusLine("Invalid", statusWarn, field, colorize))
			}
			if res.Kind == tagfile.Conflict {
				for _, line := range resolutionLines(res, colorize) {
					fmt.Fprintln(out, line)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}
