package vibe

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/usevibe/vibe-cli/internal/gitops"
)

func newSaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "save",
		Aliases: []string{"checkpoint"},
		Short:   "Save progress: auto-branch if warranted, then commit everything",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, e, err := setup(cmd)
			if err != nil {
				return err
			}
			silent, _ := cmd.Flags().GetBool("silent")
			message, _ := cmd.Flags().GetString("message")

			a, err := runAnalysis(ctx, e)
			if err != nil {
				return err
			}
			if a.FilesChanged == 0 {
				if !silent {
					fmt.Println("No changes to save.")
				}
				return nil
			}

			ops := gitops.New(e.insp.Root(), e.log)

			if a.Result.CreateBranch {
				if err := ops.CreateBranch(ctx, a.SuggestedBranch); err != nil {
					// A taken name is not fatal to the save itself.
					e.log.Warn("auto-branch skipped", zap.Error(err))
				} else if !silent {
					fmt.Printf("Auto-created branch for significant changes: %s\n", a.SuggestedBranch)
				}
			}

			if message == "" {
				message = a.SuggestedCommit
			}
			if err := ops.SaveProgress(ctx, message); err != nil {
				return err
			}
			if !silent {
				fmt.Printf("Progress saved: %s\n", message)
			}
			return nil
		},
	}
	cmd.Flags().StringP("message", "m", "", "commit message (overrides synthesis)")
	cmd.Flags().Bool("silent", false, "minimal output")
	return cmd
}
