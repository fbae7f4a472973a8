package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"tagdeck/internal/filelock"
	"tagdeck/internal/naming"
	"tagdeck/internal/rename"
	"tagdeck/internal/services"
	"tagdeck/internal/tagfile"
	"tagdeck/internal/tagset"
)

type tagEdits struct {
	set    []string
	add    []string
	remove []string
}

func (e tagEdits) empty() bool {
	return len(e.set) == 0 && len(e.add) == 0 && len(e.remove) == 0
}

// apply replaces, then removes, then adds.
func (e tagEdits) apply(current tagset.TagSet) (tagset.TagSet, error) {
	tags := current
	if len(e.set) > 0 {
		replaced, err := tagset.New(e.set...)
		if err != nil {
			return tagset.TagSet{}, err
		}
		tags = replaced
	}
	for _, tag := range e.remove {
		tags = tags.Remove(tag)
	}
	for _, tag := range e.add {
		next, err := tags.Add(tag)
		if err != nil {
			return tagset.TagSet{}, err
		}
		tags = next
	}
	return tags, nil
}

type renameRequest struct {
	path        string
	tags        tagset.TagSet
	authorFirst bool
	author      string
	dryRun      bool
}

func newRenameCommand(ctx *commandContext) *cobra.Command {
	var (
		edits       tagEdits
		authorFirst bool
		author      string
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "rename <media-file>",
		Short: "Edit a file's tags and rename it to match",
		Long: "Edit the tags encoded in a media filename and commit the new name.\n\n" +
			"--set replaces the tag list, --remove drops tags, and --add appends tags, applied in that order.\n" +
			"Without edits the current tags are re-synthesized, which applies author-first ordering.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := mediaFile(args[0])
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			current, _, invalid := naming.Parse(filepath.Base(path))
			for _, field := range invalid {
				fmt.Fprintln(out, renderStatusLine("Dropped", statusWarn, field+" is not a valid tag", colorize))
			}
			tags, err := edits.apply(current)
			if err != nil {
				fmt.Fprintln(out, renderStatusLine("Tags", statusWarn, err.Error(), colorize))
				return nil
			}

			runCtx := services.WithOperation(services.WithMediaPath(cmd.Context(), path), "rename")
			res, vocab, err := vocabularyFor(runCtx, ctx, filepath.Dir(path))
			if err != nil {
				return err
			}
			if res.Kind == tagfile.Resolved {
				for _, tag := range tagfile.Unknown(tags, vocab) {
					fmt.Fprintln(out, renderStatusLine("Unknown tag", statusWarn, unknownTagDetail(tag, vocab), colorize))
				}
			}

			req := renameRequest{
				path:        path,
				tags:        tags,
				authorFirst: cfg.Naming.AuthorFirst,
				author:      cfg.Naming.AuthorTag,
				dryRun:      dryRun,
			}
			if cmd.Flags().Changed("author-first") {
				req.authorFirst = authorFirst
			}
			if cmd.Flags().Changed("author") {
				req.author = author
			}
			return ctx.commitRename(cmd, req)
		},
	}

	cmd.Flags().StringArrayVar(&edits.set, "set", nil, "Replace the tag list (repeatable)")
	cmd.Flags().StringArrayVar(&edits.add, "add", nil, "Append a tag (repeatable)")
	cmd.Flags().StringArrayVar(&edits.remove, "remove", nil, "Remove a tag (repeatable)")
	cmd.Flags().BoolVar(&authorFirst, "author-first", false, "Move the author tag to the front (defaults to naming.author_first)")
	cmd.Flags().StringVar(&author, "author", "", "Author tag for --author-first (defaults to naming.author_tag)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the planned name without renaming")
	return cmd
}

// commitRename synthesizes and applies a rename under the per-file lock.
// Domain outcomes are printed; only unexpected failures return an error.
func (c *commandContext) commitRename(cmd *cobra.Command, req renameRequest) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	locks, err := c.lockManager()
	if err != nil {
		return err
	}
	lock, err := locks.TryAcquire(req.path)
	if errors.Is(err, filelock.ErrLocked) {
		fmt.Fprintln(out, renderStatusLine("Rename", statusWarn, "another tagdeck process is renaming this file", colorize))
		return nil
	}
	if err != nil {
		return err
	}
	defer func() {
		_ = lock.Release()
	}()

	source, err := rename.Identify(req.path)
	if err != nil {
		fmt.Fprintln(out, outcomeLine(rename.Outcome{State: rename.SourceVanished, Detail: err.Error()}, colorize))
		return nil
	}

	plan, err := naming.ForFile(req.path, req.tags, naming.Options{
		AuthorFirst: req.authorFirst,
		Author:      req.author,
		Limits:      cfg.PathLimits(),
	})
	if err != nil {
		fmt.Fprintln(out, renderStatusLine("Synthesize", statusWarn, err.Error(), colorize))
		return nil
	}
	plan.Source = source
	printPlan(out, plan, colorize)

	if req.dryRun {
		fmt.Fprintln(out, renderStatusLine("Rename", statusInfo, "dry run; nothing renamed", colorize))
		return nil
	}

	runCtx, requestID := services.WithNewRequestID(cmd.Context())
	runCtx = services.WithOperation(services.WithMediaPath(runCtx, req.path), "rename")
	outcome := c.renameEngine().Apply(runCtx, plan)
	fmt.Fprintln(out, outcomeLine(outcome, colorize))
	if outcome.State == rename.Failed {
		return fmt.Errorf("rename %s (request %s): %w", req.path, requestID, outcome.Err)
	}
	return nil
}

func printPlan(out io.Writer, plan naming.Plan, colorize bool) {
	fmt.Fprintln(out, renderStatusLine("Candidate", statusInfo, plan.CandidateName, colorize))
	if w := plan.Warnings.NameTooLong; w != nil {
		fmt.Fprintln(out, renderStatusLine("Name length", statusWarn, w.String(), colorize))
	}
	if w := plan.Warnings.PathTooLong; w != nil {
		fmt.Fprintln(out, renderStatusLine("Path length", statusWarn, w.String(), colorize))
	}
}
