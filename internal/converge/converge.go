// Package converge estimates whether a feature branch is ready to be
// merged back into the trunk. The analysis is pure: given the same
// branch facts it always produces the same result.
package converge

import (
	"fmt"
	"time"
)

// MergeThreshold is the convergence score at which a branch is
// considered merge-ready.
const MergeThreshold = 0.6

// Strategy is the suggested way to land a merge-ready branch.
type Strategy string

const (
	StrategySquash Strategy = "squash merge (few commits, clean history)"
	StrategyRebase Strategy = "rebase then merge (update branch first)"
	StrategyMerge  Strategy = "merge commit (preserve branch history)"
	StrategyNone   Strategy = "branch not ready for merge"
)

// BranchFacts carries everything the analysis needs about a branch.
type BranchFacts struct {
	Name             string
	IsTrunk          bool
	CreatedAt        time.Time
	LastCommitAt     time.Time
	CommitCount      int
	BehindTrunk      bool
	UncommittedFiles int
}

// Result is the convergence verdict for one branch.
type Result struct {
	ShouldMerge bool     `json:"shouldMerge"`
	Score       float64  `json:"convergenceScore"`
	Reasons     []string `json:"reasons"`
	Strategy    Strategy `json:"strategy"`
}

// Analyze scores a branch's merge readiness at the given instant.
// Older, stable, substantial branches with a clean working tree score
// higher; being behind the trunk subtracts.
func Analyze(f BranchFacts, now time.Time) Result {
	if f.IsTrunk || f.Name == "" {
		return Result{
			Reasons:  []string{"not on a feature branch"},
			Strategy: StrategyNone,
		}
	}

	var res Result

	if !f.CreatedAt.IsZero() {
		age := now.Sub(f.CreatedAt)
		switch {
		case age > 7*24*time.Hour:
			res.Score += 0.5
			res.Reasons = append(res.Reasons,
				fmt.Sprintf("branch is %.1f days old, consider merging", age.Hours()/24))
		case age > 24*time.Hour:
			res.Score += 0.3
			res.Reasons = append(res.Reasons,
				fmt.Sprintf("branch is %.1f hours old", age.Hours()))
		}
	}

	switch {
	case f.CommitCount >= 10:
		res.Score += 0.3
		res.Reasons = append(res.Reasons,
			fmt.Sprintf("has %d commits, significant feature", f.CommitCount))
	case f.CommitCount >= 5:
		res.Score += 0.2
		res.Reasons = append(res.Reasons,
			fmt.Sprintf("has %d commits, substantial work", f.CommitCount))
	}

	if !f.LastCommitAt.IsZero() {
		idle := now.Sub(f.LastCommitAt)
		switch {
		case idle > 24*time.Hour:
			res.Score += 0.4
			res.Reasons = append(res.Reasons,
				fmt.Sprintf("no commits for %.1f days, likely complete", idle.Hours()/24))
		case idle > 2*time.Hour:
			res.Score += 0.2
			res.Reasons = append(res.Reasons,
				fmt.Sprintf("no commits for %.1f hours, appears stable", idle.Hours()))
		}
	}

	if f.BehindTrunk {
		res.Score -= 0.2
		res.Reasons = append(res.Reasons, "branch is behind the trunk, needs updating before merge")
	}

	if f.UncommittedFiles == 0 {
		res.Score += 0.3
		res.Reasons = append(res.Reasons, "no uncommitted changes, clean state")
	} else {
		res.Score -= 0.1
		res.Reasons = append(res.Reasons,
			fmt.Sprintf("has %d uncommitted changes", f.UncommittedFiles))
	}

	if res.Score < 0 {
		res.Score = 0
	}
	res.ShouldMerge = res.Score >= MergeThreshold
	res.Strategy = suggestStrategy(f, res.ShouldMerge)
	return res
}

func suggestStrategy(f BranchFacts, shouldMerge bool) Strategy {
	if !shouldMerge {
		return StrategyNone
	}
	switch {
	case f.CommitCount <= 3:
		return StrategySquash
	case f.BehindTrunk:
		return StrategyRebase
	}
	return StrategyMerge
}
