package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"tagdeck/internal/fetch"
	"tagdeck/internal/naming"
	"tagdeck/internal/reconcile"
	"tagdeck/internal/services"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var (
		policyName string
		apply      bool
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "fetch <media-file>",
		Short: "Fetch remote tags by content hash and reconcile them",
		Long: "Hash the media file, look its tags up on the configured remote, and compare\n" +
			"them with the tags in its filename. Fetched tags are only used when the\n" +
			"remote's content hash matches the file.\n\n" +
			"Policies: merge (local plus remote), replace (remote only), discard (keep local).",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := mediaFile(args[0])
			if err != nil {
				return err
			}
			policy, err := reconcile.ParsePolicy(policyName)
			if err != nil {
				return services.Wrap(services.ErrValidation, "cli", "fetch", "", err)
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			cache, err := ctx.openCache()
			if err != nil {
				return err
			}
			if cache != nil {
				defer cache.Close()
			}
			svc, err := ctx.fetchService(cache)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			runCtx := services.WithOperation(services.WithMediaPath(cmd.Context(), path), "fetch")

			progress := newFetchProgress(cmd.ErrOrStderr())
			result, err := svc.Fetch(runCtx, path, progress.callback())
			progress.finish()
			switch {
			case errors.Is(err, fetch.ErrNoRemoteMatch):
				fmt.Fprintln(out, renderStatusLine("Fetch", statusInfo, "no remote post matches this file", colorize))
				return nil
			case errors.Is(err, services.ErrTransient), errors.Is(err, services.ErrTimeout):
				return fmt.Errorf("remote is temporarily unavailable, try again later: %w", err)
			case err != nil:
				return err
			}

			for _, tag := range result.Invalid {
				fmt.Fprintln(out, renderStatusLine("Skipped", statusWarn, tag+" cannot be stored as a tag", colorize))
			}
			source := result.Result.Source
			if result.Cached {
				source += " (cached)"
			}
			fmt.Fprintln(out, renderStatusLine("Source", statusInfo, source, colorize))

			local, _, _ := naming.Parse(filepath.Base(path))
			rec, err := reconcile.Reconcile(local, result.Result, result.LocalHash)
			var mismatch *reconcile.HashMismatchError
			if errors.As(err, &mismatch) {
				fmt.Fprintln(out, renderStatusLine("Fetch", statusWarn,
					fmt.Sprintf("content hash mismatch (remote %s, local %s); fetched tags not applied", mismatch.Fetched, mismatch.Local), colorize))
				return nil
			}
			if err != nil {
				return err
			}

			if rec.NoOp() {
				fmt.Fprintln(out, renderStatusLine("Reconcile", statusOK, "remote tags match the filename", colorize))
				return nil
			}
			for _, line := range renderSectionHeader("Remote differences", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderTable([]string{"Change", "Tag"}, diffRows(rec.Diff), nil))

			merged, err := rec.Apply(policy)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, renderStatusLine("Policy", statusInfo, policy.String(), colorize))
			fmt.Fprintln(out, renderStatusLine("Result", statusInfo, strings.Join(merged.Tags(), " "), colorize))

			if !apply || policy == reconcile.Discard {
				return nil
			}
			return ctx.commitRename(cmd, renameRequest{
				path:        path,
				tags:        merged,
				authorFirst: cfg.Naming.AuthorFirst,
				author:      cfg.Naming.AuthorTag,
				dryRun:      dryRun,
			})
		},
	}

	cmd.Flags().StringVar(&policyName, "policy", "merge", "Reconcile policy: merge, replace, or discard")
	cmd.Flags().BoolVar(&apply, "apply", false, "Rename the file to the reconciled tags")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "With --apply, show the planned name without renaming")
	return cmd
}

func diffRows(diff reconcile.Diff) [][]string {
	rows := make([][]string, 0, diff.Added.Len()+diff.Removed.Len())
	for _, tag := range diff.Added.Tags() {
		rows = append(rows, []string{"+ remote", tag})
	}
	for _, tag := range diff.Removed.Tags() {
		rows = append(rows, []string{"- local only", tag})
	}
	return rows
}
