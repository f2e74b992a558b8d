package vibe

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/usevibe/vibe-cli/internal/converge"
	"github.com/usevibe/vibe-cli/internal/inspect"
	"github.com/usevibe/vibe-cli/internal/report"
)

func newConvergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "converge",
		Short: "Analyze whether a branch is ready to merge back",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, e, err := setup(cmd)
			if err != nil {
				return err
			}

			branch, _ := cmd.Flags().GetString("branch")
			if branch == "" {
				branch, err = e.insp.CurrentBranch(ctx)
				if err != nil {
					return err
				}
			}

			branches, err := e.insp.Branches(ctx)
			if err != nil {
				return err
			}
			facts := converge.BranchFacts{
				Name:    branch,
				IsTrunk: e.cfg.IsTrunk(branch),
			}
			found := false
			for _, b := range branches {
				if b.Name == branch {
					facts.CreatedAt = b.CreatedAt
					facts.LastCommitAt = b.LastCommitAt
					facts.CommitCount = b.CommitCount
					found = true
					break
				}
			}
			if !found {
				return errors.Newf("branch %q not found", branch)
			}

			if trunk := trunkOf(e, branches); trunk != "" && trunk != branch {
				upToDate, err := e.insp.IsAncestor(ctx, trunk, branch)
				if err != nil {
					return err
				}
				facts.BehindTrunk = !upToDate
			}

			cs, err := e.insp.ChangeSet(ctx)
			if err != nil {
				return err
			}
			facts.UncommittedFiles = len(cs)

			res := converge.Analyze(facts, time.Now())
			verbose, _ := cmd.Flags().GetBool("verbose")
			fmt.Print(report.RenderConvergence(branch, res, verbose))
			return nil
		},
	}
	cmd.Flags().String("branch", "", "branch to analyze (default: current branch)")
	return cmd
}

// trunkOf picks the first configured trunk branch that exists locally.
func trunkOf(e *env, branches []inspect.Branch) string {
	names := make(map[string]bool, len(branches))
	for _, b := range branches {
		names[b.Name] = true
	}
	for _, t := range e.cfg.TrunkBranches {
		if names[t] {
			return t
		}
	}
	return ""
}
