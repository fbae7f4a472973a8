package rename

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"tagdeck/internal/logging"
	"tagdeck/internal/naming"
	"tagdeck/internal/pathlimits"
)

var (
	errTargetExists = errors.New("target exists")
	errCrossDevice  = errors.New("cross-device rename")
)

// Engine validates and commits rename plans. It holds no per-file state;
// callers serialize attempts on the same original path.
type Engine struct {
	logger *slog.Logger
}

// NewEngine returns an Engine logging through logger.
func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{logger: logging.NewComponentLogger(logger, "rename")}
}

// Identify captures the identity of path for Plan.Source.
func Identify(path string) (os.FileInfo, error) {
	return os.Lstat(path)
}

// Apply validates plan against the live filesystem and renames on success.
func (e *Engine) Apply(ctx context.Context, plan naming.Plan) Outcome {
	logger := logging.WithContext(ctx, e.logger).With(
		logging.String("source", plan.OriginalPath),
		logging.String("candidate", plan.CandidatePath),
	)
	outcome := e.apply(ctx, plan)
	e.record(logger, outcome)
	return outcome
}

func (e *Engine) apply(ctx context.Context, plan naming.Plan) Outcome {
	if w := plan.Warnings.PathTooLong; w != nil {
		return rejected(PathTooLong, "candidate path is "+w.String())
	}
	if w := plan.Warnings.NameTooLong; w != nil {
		return rejected(NameTooLong, "candidate name is "+w.String())
	}
	if plan.CandidatePath == "" || plan.OriginalPath == "" {
		return failed("incomplete plan", errors.New("plan is missing a path"))
	}
	if filepath.Clean(plan.CandidatePath) == filepath.Clean(plan.OriginalPath) {
		return Outcome{State: Skipped, Reason: Unchanged, NewPath: plan.OriginalPath}
	}
	if err := ctx.Err(); err != nil {
		return failed("cancelled before validation", err)
	}

	current, err := os.Lstat(plan.OriginalPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return Outcome{State: SourceVanished, Detail: "source no longer exists"}
	case errors.Is(err, fs.ErrPermission):
		return denied(filepath.Dir(plan.OriginalPath), err)
	case err != nil:
		return failed("stat source", err)
	}
	if plan.Source != nil && !os.SameFile(plan.Source, current) {
		return Outcome{State: SourceVanished, Detail: "source was replaced by a different file"}
	}

	dir := filepath.Dir(plan.OriginalPath)
	if err := checkWritable(dir); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return denied(dir, err)
		}
		return failed("check directory access", err)
	}

	caseOnly := false
	existing, err := os.Lstat(plan.CandidatePath)
	switch {
	case err == nil:
		// A hard link shares the inode but renaming onto it is a no-op.
		if !os.SameFile(current, existing) || !sameEntryIgnoringCase(plan.OriginalPath, plan.CandidatePath) {
			return rejected(NameCollision, fmt.Sprintf("%s already exists", filepath.Base(plan.CandidatePath)))
		}
		caseOnly = true
	case errors.Is(err, fs.ErrNotExist):
	case errors.Is(err, fs.ErrPermission):
		return denied(dir, err)
	case errors.Is(err, syscall.ENAMETOOLONG):
		return tooLong(plan.CandidatePath, err)
	default:
		return failed("stat candidate", err)
	}

	if err := ctx.Err(); err != nil {
		return failed("cancelled before rename", err)
	}

	if caseOnly {
		err = os.Rename(plan.OriginalPath, plan.CandidatePath)
	} else {
		err = renameNoReplace(plan.OriginalPath, plan.CandidatePath)
	}
	switch {
	case err == nil:
		return applied(plan.CandidatePath)
	case errors.Is(err, errTargetExists):
		return rejected(NameCollision, fmt.Sprintf("%s appeared before the rename", filepath.Base(plan.CandidatePath)))
	case errors.Is(err, errCrossDevice):
		return rejected(CrossDevice, "source and candidate are on different devices")
	case errors.Is(err, fs.ErrNotExist):
		return Outcome{State: SourceVanished, Detail: "source disappeared before the rename"}
	case errors.Is(err, fs.ErrPermission):
		return denied(dir, err)
	case errors.Is(err, syscall.ENAMETOOLONG):
		return tooLong(plan.CandidatePath, err)
	default:
		return failed("rename", err)
	}
}

// sameEntryIgnoringCase reports whether a and b name the same directory
// entry up to letter case.
func sameEntryIgnoringCase(a, b string) bool {
	return filepath.Dir(a) == filepath.Dir(b) && strings.EqualFold(filepath.Base(a), filepath.Base(b))
}

// tooLong classifies a filesystem length refusal the planner's limits did
// not catch, usually a custom limit above the filesystem ceiling.
func tooLong(candidate string, err error) Outcome {
	reason := PathTooLong
	if len(filepath.Base(candidate)) > pathlimits.Host().MaxNameLen {
		reason = NameTooLong
	}
	return Outcome{State: Rejected, Reason: reason, Detail: "filesystem refused the candidate length", Err: err}
}

func denied(dir string, err error) Outcome {
	return Outcome{
		State:            Rejected,
		Reason:           PermissionDenied,
		Detail:           fmt.Sprintf("%s is not writable", dir),
		Err:              err,
		DisableDirectory: true,
	}
}

func (e *Engine) record(logger *slog.Logger, outcome Outcome) {
	attrs := logging.DecisionAttrs("rename", outcome.State.String(), outcome.Reason.String())
	switch outcome.State {
	case Applied, Skipped:
		logger.Info("rename decision", logging.Args(attrs...)...)
	case Failed:
		attrs = append(attrs, logging.Error(outcome.Err),
			logging.String(logging.FieldErrorHint, "check the device and retry"))
		logging.ErrorWithContext(logger, "rename failed", "rename_failed", attrs...)
	default:
		attrs = append(attrs, logging.String("detail", outcome.Detail),
			logging.String(logging.FieldErrorHint, hintFor(outcome)),
			logging.String(logging.FieldImpact, "file keeps its current name"))
		logging.WarnWithContext(logger, "rename rejected", "rename_rejected", attrs...)
	}
}

func hintFor(outcome Outcome) string {
	switch {
	case outcome.State == SourceVanished:
		return "move on to another file"
	case outcome.Reason == PermissionDenied:
		return "fix directory permissions, then revisit the directory"
	case outcome.Reason == CrossDevice:
		return "keep the candidate in the source directory"
	default:
		return "edit the tags and try again"
	}
}
