// Package watch re-runs the snapshot builder on a fixed interval and
// notifies a callback when the branch picture changes. The loop is
// caller-owned and fully synchronous: one in-flight inspection at a
// time, no shared state between passes.
package watch

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/usevibe/vibe-cli/internal/snapshot"
)

// DefaultInterval is the poll interval used when none is configured.
const DefaultInterval = 2 * time.Second

// Source builds session snapshots on demand.
type Source interface {
	Build(ctx context.Context) (*snapshot.SessionSnapshot, error)
}

// Watcher polls a Source and fires OnChange when the set of branches
// or the current branch differs from the previous successful pass.
type Watcher struct {
	source   Source
	interval time.Duration
	onChange func(*snapshot.SessionSnapshot)
	log      *zap.Logger

	lastKey string
}

// New returns a Watcher. A non-positive interval uses DefaultInterval.
func New(source Source, interval time.Duration, onChange func(*snapshot.SessionSnapshot), log *zap.Logger) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		source:   source,
		interval: interval,
		onChange: onChange,
		log:      log,
	}
}

// Run polls until ctx is canceled. The first poll happens immediately.
// Polls run synchronously on the loop goroutine, so at most one
// inspection is in flight; ticks that arrive during a slow pass are
// dropped by the ticker. A failed pass is logged and skipped; it never
// stops the loop or produces a partial notification.
func (w *Watcher) Run(ctx context.Context) error {
	w.poll(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

func (w *Watcher) poll(ctx context.Context) {
	snap, err := w.source.Build(ctx)
	if err != nil {
		w.log.Warn("snapshot pass failed", zap.Error(err))
		return
	}

	key := changeKey(snap)
	if key == w.lastKey {
		return
	}
	w.lastKey = key
	w.log.Debug("branch picture changed",
		zap.String("current_branch", snap.CurrentBranch),
		zap.Int("branches", snap.TotalBranches))
	if w.onChange != nil {
		w.onChange(snap)
	}
}

// changeKey reduces a snapshot to the facts the watcher diffs on: the
// sorted branch name set plus the current branch.
func changeKey(snap *snapshot.SessionSnapshot) string {
	names := make([]string, 0, len(snap.Branches))
	for _, b := range snap.Branches {
		names = append(names, b.Name)
	}
	sort.Strings(names)
	return snap.CurrentBranch + "\x00" + strings.Join(names, "\x00")
}
