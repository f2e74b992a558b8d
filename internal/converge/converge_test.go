package converge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestAnalyze_TrunkNeverMergeReady(t *testing.T) {
	res := Analyze(BranchFacts{Name: "main", IsTrunk: true}, now)
	assert.False(t, res.ShouldMerge)
	assert.Equal(t, StrategyNone, res.Strategy)
	assert.Contains(t, res.Reasons, "not on a feature branch")
}

func TestAnalyze_FreshBranchNotReady(t *testing.T) {
	res := Analyze(BranchFacts{
		Name:             "feature/new",
		CreatedAt:        now.Add(-30 * time.Minute),
		LastCommitAt:     now.Add(-5 * time.Minute),
		CommitCount:      1,
		UncommittedFiles: 3,
	}, now)
	assert.False(t, res.ShouldMerge)
	assert.Equal(t, StrategyNone, res.Strategy)
}

func TestAnalyze_OldStableCleanBranchIsReady(t *testing.T) {
	res := Analyze(BranchFacts{
		Name:         "feature/big",
		CreatedAt:    now.Add(-3 * 24 * time.Hour),
		LastCommitAt: now.Add(-26 * time.Hour),
		CommitCount:  7,
	}, now)
	// 0.3 (age) + 0.2 (commits) + 0.4 (idle) + 0.3 (clean) = 1.2
	assert.True(t, res.ShouldMerge)
	assert.InDelta(t, 1.2, res.Score, 1e-9)
	assert.Equal(t, StrategyMerge, res.Strategy)
}

func TestAnalyze_WeekOldBranchScoresHigher(t *testing.T) {
	base := BranchFacts{
		Name:         "feature/x",
		LastCommitAt: now.Add(-3 * time.Hour),
		CommitCount:  2,
	}

	dayOld := base
	dayOld.CreatedAt = now.Add(-2 * 24 * time.Hour)
	weekOld := base
	weekOld.CreatedAt = now.Add(-8 * 24 * time.Hour)

	assert.Greater(t, Analyze(weekOld, now).Score, Analyze(dayOld, now).Score)
}

func TestAnalyze_BehindTrunkPenalizedAndRebaseSuggested(t *testing.T) {
	facts := BranchFacts{
		Name:         "feature/stale",
		CreatedAt:    now.Add(-3 * 24 * time.Hour),
		LastCommitAt: now.Add(-26 * time.Hour),
		CommitCount:  7,
	}
	clean := Analyze(facts, now)

	facts.BehindTrunk = true
	behind := Analyze(facts, now)

	assert.InDelta(t, clean.Score-0.2, behind.Score, 1e-9)
	assert.True(t, behind.ShouldMerge)
	assert.Equal(t, StrategyRebase, behind.Strategy)
}

func TestAnalyze_FewCommitsSuggestsSquash(t *testing.T) {
	res := Analyze(BranchFacts{
		Name:         "feature/tiny",
		CreatedAt:    now.Add(-2 * 24 * time.Hour),
		LastCommitAt: now.Add(-30 * time.Hour),
		CommitCount:  2,
	}, now)
	assert.True(t, res.ShouldMerge)
	assert.Equal(t, StrategySquash, res.Strategy)
}

func TestAnalyze_DirtyTreeSubtracts(t *testing.T) {
	facts := BranchFacts{
		Name:         "feature/wip",
		CreatedAt:    now.Add(-2 * 24 * time.Hour),
		LastCommitAt: now.Add(-3 * time.Hour),
		CommitCount:  6,
	}
	clean := Analyze(facts, now)

	facts.UncommittedFiles = 4
	dirty := Analyze(facts, now)

	assert.InDelta(t, clean.Score-0.4, dirty.Score, 1e-9)
}

func TestAnalyze_ScoreNeverNegative(t *testing.T) {
	res := Analyze(BranchFacts{
		Name:             "feature/brand-new",
		BehindTrunk:      true,
		UncommittedFiles: 9,
	}, now)
	assert.GreaterOrEqual(t, res.Score, 0.0)
	assert.False(t, res.ShouldMerge)
}

func TestAnalyze_Deterministic(t *testing.T) {
	facts := BranchFacts{
		Name:         "feature/x",
		CreatedAt:    now.Add(-50 * time.Hour),
		LastCommitAt: now.Add(-4 * time.Hour),
		CommitCount:  5,
	}
	first := Analyze(facts, now)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Analyze(facts, now))
	}
}
