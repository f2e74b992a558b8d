package vibe

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/usevibe/vibe-cli/internal/report"
	"github.com/usevibe/vibe-cli/internal/snapshot"
)

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Build the session snapshot of all branches",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, e, err := setup(cmd)
			if err != nil {
				return err
			}

			builder := snapshot.NewBuilder(e.insp, e.cfg, e.log)
			snap, err := builder.Build(ctx)
			if err != nil {
				return err
			}

			jsonFlag, _ := cmd.Flags().GetBool("json")
			if jsonFlag {
				data, err := json.MarshalIndent(snap, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}
			fmt.Print(report.RenderSnapshot(snap))
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "output in JSON format")
	return cmd
}
