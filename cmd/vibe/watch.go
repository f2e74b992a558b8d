package vibe

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/usevibe/vibe-cli/internal/snapshot"
	"github.com/usevibe/vibe-cli/internal/watch"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll the repository and print a snapshot whenever branches change",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, e, err := setup(cmd)
			if err != nil {
				return err
			}
			interval, _ := cmd.Flags().GetDuration("interval")

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			builder := snapshot.NewBuilder(e.insp, e.cfg, e.log)
			w := watch.New(builder, interval, func(snap *snapshot.SessionSnapshot) {
				data, err := json.MarshalIndent(snap, "", "  ")
				if err != nil {
					return
				}
				fmt.Println(string(data))
			}, e.log)

			fmt.Println("Watching repository for changes...")
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().Duration("interval", watch.DefaultInterval, "poll interval")
	return cmd
}
