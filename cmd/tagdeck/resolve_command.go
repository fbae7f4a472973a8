package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tagdeck/internal/services"
	"tagdeck/internal/tagfile"
)

type refJSON struct {
	Path  string `json:"path"`
	Dir   string `json:"dir"`
	Role  string `json:"role"`
	Depth int    `json:"depth"`
}

type resolutionJSON struct {
	Kind                  string    `json:"kind"`
	Overriding            *refJSON  `json:"overriding,omitempty"`
	Appending             []refJSON `json:"appending,omitempty"`
	IgnoredAppending      []refJSON `json:"ignored_appending,omitempty"`
	ConflictingOverriding []refJSON `json:"conflicting_overriding,omitempty"`
}

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "resolve <media>",
		Short: "Show the tag files governing a media file or directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, dir, _, err := mediaTarget(args[0])
			if err != nil {
				return err
			}
			locator, err := ctx.locator()
			if err != nil {
				return err
			}
			runCtx := services.WithOperation(services.WithMediaPath(cmd.Context(), path), "resolve")
			res, err := locator.Resolve(runCtx, dir)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, resolutionToJSON(res))
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range resolutionLines(res, colorize) {
				fmt.Fprintln(out, line)
			}
			if rows := resolutionRows(res); len(rows) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderTable([]string{"Role", "Depth", "Status", "Path"}, rows,
					[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft}))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}

func resolutionRows(res tagfile.Result) [][]string {
	var rows [][]string
	add := func(ref tagfile.Ref, status string) {
		rows = append(rows, []string{ref.Role.String(), strconv.Itoa(ref.Depth), status, ref.Path})
	}
	switch res.Kind {
	case tagfile.Resolved:
		for _, ref := range res.Appending {
			add(ref, "used")
		}
		if res.Overriding != nil {
			add(*res.Overriding, "used")
		}
	case tagfile.Conflict:
		for _, ref := range res.IgnoredAppending {
			add(ref, "ignored")
		}
		for _, ref := range res.ConflictingOverriding {
			add(ref, "conflicting")
		}
	}
	return rows
}

func resolutionToJSON(res tagfile.Result) resolutionJSON {
	out := resolutionJSON{Kind: res.Kind.String()}
	if res.Overriding != nil {
		ref := refToJSON(*res.Overriding)
		out.Overriding = &ref
	}
	out.Appending = refsToJSON(res.Appending)
	out.IgnoredAppending = refsToJSON(res.IgnoredAppending)
	out.ConflictingOverriding = refsToJSON(res.ConflictingOverriding)
	return out
}

func refsToJSON(refs []tagfile.Ref) []refJSON {
	if len(refs) == 0 {
		return nil
	}
	out := make([]refJSON, 0, len(refs))
	for _, ref := range refs {
		out = append(out, refToJSON(ref))
	}
	return out
}

func refToJSON(ref tagfile.Ref) refJSON {
	return refJSON{Path: ref.Path, Dir: ref.Dir, Role: ref.Role.String(), Depth: ref.Depth}
}
