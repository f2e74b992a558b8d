package vibe

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/usevibe/vibe-cli/internal/classify"
	"github.com/usevibe/vibe-cli/internal/gitops"
	"github.com/usevibe/vibe-cli/internal/naming"
	"github.com/usevibe/vibe-cli/internal/report"
	"github.com/usevibe/vibe-cli/internal/score"
)

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Score the working tree and suggest whether to branch",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, e, err := setup(cmd)
			if err != nil {
				return err
			}

			a, err := runAnalysis(ctx, e)
			if err != nil {
				return err
			}

			jsonFlag, _ := cmd.Flags().GetBool("json")
			if jsonFlag {
				data, err := json.MarshalIndent(a, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
			} else {
				verbose, _ := cmd.Flags().GetBool("verbose")
				fmt.Print(report.RenderAnalysis(report.Analysis{
					Result:        a.Result,
					FilesChanged:  a.FilesChanged,
					LinesAdded:    a.LinesAdded,
					LinesRemoved:  a.LinesRemoved,
					SuggestedName: a.SuggestedBranch,
					CommitMessage: a.SuggestedCommit,
				}, verbose))
			}

			create, _ := cmd.Flags().GetBool("create")
			if !create {
				return nil
			}
			if !a.Result.CreateBranch {
				fmt.Println("Branch creation not recommended based on current analysis.")
				return nil
			}
			name, _ := cmd.Flags().GetString("name")
			if name == "" {
				name = a.SuggestedBranch
			}
			ops := gitops.New(e.insp.Root(), e.log)
			if err := ops.CreateBranch(ctx, name); err != nil {
				return err
			}
			fmt.Printf("Created and switched to branch: %s\n", name)
			return nil
		},
	}
	cmd.Flags().Bool("create", false, "create the suggested branch if recommended")
	cmd.Flags().String("name", "", "custom branch name (overrides the suggestion)")
	cmd.Flags().Bool("json", false, "output in JSON format")
	return cmd
}

// analysis is the full result of one decision pass over the working
// tree.
type analysis struct {
	Result          score.Result    `json:"result"`
	FilesChanged    int             `json:"filesChanged"`
	LinesAdded      int             `json:"linesAdded"`
	LinesRemoved    int             `json:"linesRemoved"`
	SuggestedBranch string          `json:"suggestedBranch,omitempty"`
	SuggestedCommit string          `json:"suggestedCommit,omitempty"`
	Classification  classify.Result `json:"classification"`
}

func runAnalysis(ctx context.Context, e *env) (*analysis, error) {
	cs, err := e.insp.ChangeSet(ctx)
	if err != nil {
		return nil, err
	}
	minutes, err := e.insp.MinutesSinceLastCommit(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	cls := classify.Classify(cs, e.cfg.FileTypeWeights)
	res := score.Compute(cls, e.cfg.Thresholds, e.cfg.Weights, score.Inputs{
		MinutesSinceLastCommit: minutes,
	})

	a := &analysis{
		Result:         res,
		FilesChanged:   cls.TotalFiles,
		LinesAdded:     cls.TotalLinesAdded,
		LinesRemoved:   cls.TotalLinesRemoved,
		Classification: cls,
	}
	if len(cs) > 0 {
		a.SuggestedBranch = naming.BranchName(cs, cls, e.cfg.BranchNaming, time.Now())
		a.SuggestedCommit = naming.CommitMessage(cs, cls, "")
	}
	return a, nil
}
