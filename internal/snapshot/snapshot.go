// Package snapshot assembles the session-scoped JSON view of a
// repository: every local branch with its type, commit facts and vibe
// score, plus session totals. Git state is the sole source of truth;
// each Build is a self-contained pass with no incremental diffing.
package snapshot

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/usevibe/vibe-cli/internal/classify"
	"github.com/usevibe/vibe-cli/internal/config"
	"github.com/usevibe/vibe-cli/internal/inspect"
	"github.com/usevibe/vibe-cli/internal/score"
)

// Builder produces SessionSnapshots for one repository. The session id
// is generated once per Builder (effectively once per process) from
// the start timestamp.
type Builder struct {
	insp      *inspect.Inspector
	cfg       *config.Config
	log       *zap.Logger
	sessionID string
	startTime time.Time
	now       func() time.Time
}

// NewBuilder creates a Builder; the session starts now.
func NewBuilder(insp *inspect.Inspector, cfg *config.Config, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	start := time.Now()
	return &Builder{
		insp:      insp,
		cfg:       cfg,
		log:       log,
		sessionID: "session_" + start.Format("20060102_150405"),
		startTime: start,
		now:       time.Now,
	}
}

// SessionID returns the id assigned when the Builder was created.
func (b *Builder) SessionID() string { return b.sessionID }

// Build assembles one snapshot. Any inspection failure aborts the
// whole pass; no partial snapshot is ever returned.
func (b *Builder) Build(ctx context.Context) (*SessionSnapshot, error) {
	current, err := b.insp.CurrentBranch(ctx)
	if err != nil {
		return nil, err
	}
	branches, err := b.insp.Branches(ctx)
	if err != nil {
		return nil, err
	}
	working, err := b.insp.ChangeSet(ctx)
	if err != nil {
		return nil, err
	}

	trunk := b.trunkBranch(branches)
	now := b.now()

	snap := &SessionSnapshot{
		SessionID:         b.sessionID,
		StartTime:         b.startTime,
		CurrentBranch:     current,
		TotalBranches:     len(branches),
		TotalFilesChanged: len(working),
		Branches:          make([]BranchSummary, 0, len(branches)),
		Repository: Repository{
			Path: b.insp.Root(),
			Name: b.insp.Name(),
		},
	}

	for _, br := range branches {
		summary, err := b.summarize(ctx, br, trunk, current, now)
		if err != nil {
			return nil, err
		}
		snap.TotalCommits += summary.CommitCount
		snap.Branches = append(snap.Branches, summary)
	}

	b.log.Debug("session snapshot built",
		zap.String("session_id", snap.SessionID),
		zap.Int("branches", snap.TotalBranches),
		zap.Int("commits", snap.TotalCommits),
		zap.Int("files_changed", snap.TotalFilesChanged))
	return snap, nil
}

// summarize scores one branch from its own history: the changes it
// carries relative to the trunk and the age of its last commit.
func (b *Builder) summarize(ctx context.Context, br inspect.Branch, trunk, current string, now time.Time) (BranchSummary, error) {
	cs, err := b.insp.DiffAgainstTrunk(ctx, trunk, br.Name)
	if err != nil {
		return BranchSummary{}, err
	}

	minutes := float64(0)
	if !br.LastCommitAt.IsZero() {
		minutes = now.Sub(br.LastCommitAt).Minutes()
		if minutes < 0 {
			minutes = 0
		}
	}

	cls := classify.Classify(cs, b.cfg.FileTypeWeights)
	sc := score.Compute(cls, b.cfg.Thresholds, b.cfg.Weights, score.Inputs{
		MinutesSinceLastCommit: minutes,
	})

	return BranchSummary{
		Name:         br.Name,
		Type:         b.branchType(br.Name),
		CreatedAt:    br.CreatedAt,
		LastCommitAt: br.LastCommitAt,
		CommitCount:  br.CommitCount,
		FileChanges:  cs.Stats(),
		VibeScore:    sc.Score,
		IsActive:     br.Name == current,
	}, nil
}

// branchType infers a branch's kind from its name prefix.
func (b *Builder) branchType(name string) BranchType {
	switch {
	case b.cfg.IsTrunk(name):
		return TypeMain
	case strings.HasPrefix(name, "feature/"):
		return TypeFeature
	case strings.HasPrefix(name, "fix/"), strings.HasPrefix(name, "bugfix/"):
		return TypeBugfix
	case strings.HasPrefix(name, "hotfix/"):
		return TypeHotfix
	}
	return TypeOther
}

// trunkBranch picks the first configured trunk name that exists
// locally, or "" when none does.
func (b *Builder) trunkBranch(branches []inspect.Branch) string {
	names := make(map[string]bool, len(branches))
	for _, br := range branches {
		names[br.Name] = true
	}
	for _, t := range b.cfg.TrunkBranches {
		if names[t] {
			return t
		}
	}
	return ""
}
