// Package report renders the human-readable output of the engine: the
// branch analysis, convergence verdicts and snapshot summaries.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/usevibe/vibe-cli/internal/converge"
	"github.com/usevibe/vibe-cli/internal/score"
	"github.com/usevibe/vibe-cli/internal/snapshot"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	recommendStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	holdStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242"))

	activeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))
)

// Analysis is everything the analyze report shows.
type Analysis struct {
	Result        score.Result
	FilesChanged  int
	LinesAdded    int
	LinesRemoved  int
	SuggestedName string
	CommitMessage string
}

// RenderAnalysis formats the branch-decision report. Verbose adds the
// per-factor breakdown.
func RenderAnalysis(a Analysis, verbose bool) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Branch Analysis") + "\n")

	if a.Result.CreateBranch {
		b.WriteString(recommendStyle.Render("Recommendation: create a new branch") + "\n")
	} else {
		b.WriteString(holdStyle.Render("Recommendation: continue on current branch") + "\n")
	}
	b.WriteString(fmt.Sprintf("Score: %.2f/1.0\n", a.Result.Score))

	if verbose {
		f := a.Result.Factors
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("  files changed: %d (factor %.2f)\n", a.FilesChanged, f.File))
		b.WriteString(fmt.Sprintf("  lines added:   %d\n", a.LinesAdded))
		b.WriteString(fmt.Sprintf("  lines removed: %d (line factor %.2f)\n", a.LinesRemoved, f.Line))
		b.WriteString(fmt.Sprintf("  time factor:       %.2f\n", f.Time))
		b.WriteString(fmt.Sprintf("  complexity factor: %.2f\n", f.Complexity))
		b.WriteString(fmt.Sprintf("  file type factor:  %.2f\n", f.FileType))
	}

	if a.Result.CreateBranch && a.SuggestedName != "" {
		b.WriteString("\nSuggested branch name: " + a.SuggestedName + "\n")
	}
	if a.CommitMessage != "" {
		b.WriteString("Suggested commit message: " + a.CommitMessage + "\n")
	}
	return b.String()
}

// RenderConvergence formats the merge-readiness report.
func RenderConvergence(branch string, res converge.Result, verbose bool) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Branch Convergence") + "\n")

	if res.ShouldMerge {
		b.WriteString(recommendStyle.Render("Recommendation: branch is ready to merge") + "\n")
	} else {
		b.WriteString(holdStyle.Render("Recommendation: continue working on branch") + "\n")
	}
	b.WriteString(fmt.Sprintf("Convergence score: %.2f/1.0\n", res.Score))
	b.WriteString("Branch: " + branch + "\n")

	if verbose {
		b.WriteString("\n")
		for _, r := range res.Reasons {
			b.WriteString("  - " + r + "\n")
		}
	}
	if res.ShouldMerge {
		b.WriteString("\nSuggested strategy: " + string(res.Strategy) + "\n")
	}
	return b.String()
}

// RenderSnapshot formats the snapshot summary (the non-JSON view).
func RenderSnapshot(snap *snapshot.SessionSnapshot) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Session Snapshot") + "\n")
	b.WriteString("Repository: " + snap.Repository.Name + "\n")
	b.WriteString("Current branch: " + snap.CurrentBranch + "\n")
	b.WriteString(fmt.Sprintf("Branches: %d   Commits: %d   Files changed: %d\n",
		snap.TotalBranches, snap.TotalCommits, snap.TotalFilesChanged))
	b.WriteString(dimStyle.Render("Session "+snap.SessionID) + "\n\n")

	for _, br := range snap.Branches {
		line := fmt.Sprintf("  %s (%s) - %d commits, score %.2f",
			br.Name, br.Type, br.CommitCount, br.VibeScore)
		if br.IsActive {
			line = activeStyle.Render(line + "  [active]")
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
