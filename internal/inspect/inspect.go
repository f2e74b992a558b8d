// Package inspect runs read-only git queries against a single working
// tree and normalizes the results for the classifier, the score engine
// and the snapshot builder. It never mutates repository state.
package inspect

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Inspector answers questions about one git repository.
type Inspector struct {
	root string
	run  *runner
	log  *zap.Logger
}

// Open locates the repository containing dir and returns an Inspector
// rooted at its top level. Returns ErrNotARepository if dir is not
// inside a git working tree.
func Open(ctx context.Context, dir string, log *zap.Logger) (*Inspector, error) {
	if log == nil {
		log = zap.NewNop()
	}
	probe := &runner{dir: dir, log: log}
	root, err := probe.run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, err
	}
	return &Inspector{
		root: root,
		run:  &runner{dir: root, log: log},
		log:  log,
	}, nil
}

// Root returns the absolute path of the repository's top level.
func (i *Inspector) Root() string { return i.root }

// Name returns the repository's directory name.
func (i *Inspector) Name() string { return filepath.Base(i.root) }

// CurrentBranch returns the checked-out branch name, or "" when HEAD
// is detached.
func (i *Inspector) CurrentBranch(ctx context.Context) (string, error) {
	return i.run.run(ctx, "branch", "--show-current")
}

// ChangeSet returns the uncommitted changes of the working tree,
// compared against HEAD. Untracked files are reported as added with
// their on-disk line count; in a repository without commits every
// tracked file is untracked by definition.
func (i *Inspector) ChangeSet(ctx context.Context) (ChangeSet, error) {
	statusOut, err := i.run.run(ctx, "status", "--porcelain")
	if err != nil {
		return nil, err
	}
	if statusOut == "" {
		return nil, nil
	}

	lineStats := map[string][2]int{}
	if i.hasHEAD(ctx) {
		numstatOut, err := i.run.run(ctx, "diff", "HEAD", "--numstat")
		if err != nil {
			return nil, err
		}
		lineStats = parseNumstat(numstatOut)
	}

	var cs ChangeSet
	for _, line := range strings.Split(statusOut, "\n") {
		fc, ok := parseStatusLine(line)
		if !ok {
			continue
		}
		if stats, ok := lineStats[fc.Path]; ok {
			fc.LinesAdded, fc.LinesRemoved = stats[0], stats[1]
		} else if fc.Status == StatusAdded {
			fc.LinesAdded = i.countFileLines(fc.Path)
		}
		cs = append(cs, fc)
	}

	i.log.Debug("working tree change set collected",
		zap.Int("files", len(cs)),
		zap.Int("lines_added", cs.TotalLinesAdded()),
		zap.Int("lines_removed", cs.TotalLinesRemoved()))
	return cs, nil
}

// Branches lists all local branches. Each branch's commit count and
// timestamps come from an independent walk of its own log, so shared
// history is counted once per branch.
func (i *Inspector) Branches(ctx context.Context) ([]Branch, error) {
	out, err := i.run.run(ctx, "branch", "--format=%(refname:short)")
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}

	var branches []Branch
	for _, name := range strings.Split(out, "\n") {
		name = strings.TrimSpace(name)
		if name == "" || strings.HasPrefix(name, "(") {
			continue
		}
		b, err := i.branchFacts(ctx, name)
		if err != nil {
			return nil, err
		}
		branches = append(branches, b)
	}
	return branches, nil
}

func (i *Inspector) branchFacts(ctx context.Context, name string) (Branch, error) {
	out, err := i.run.run(ctx, "log", "--format=%ct", name, "--")
	if err != nil {
		return Branch{}, err
	}
	b := Branch{Name: name}
	if out == "" {
		return b, nil
	}
	lines := strings.Split(out, "\n")
	b.CommitCount = len(lines)
	// git log is newest first: head of the list is the last commit,
	// tail is the branch's root.
	b.LastCommitAt = parseUnixTime(lines[0])
	b.CreatedAt = parseUnixTime(lines[len(lines)-1])
	return b, nil
}

// MinutesSinceLastCommit returns the age of HEAD's commit in minutes.
// A repository without commits reports an effectively infinite age,
// which normalizes to a time factor of 1.
func (i *Inspector) MinutesSinceLastCommit(ctx context.Context, now time.Time) (float64, error) {
	if !i.hasHEAD(ctx) {
		return infMinutes, nil
	}
	out, err := i.run.run(ctx, "log", "-1", "--format=%ct")
	if err != nil {
		return 0, err
	}
	ts := parseUnixTime(out)
	if ts.IsZero() {
		return infMinutes, nil
	}
	minutes := now.Sub(ts).Minutes()
	if minutes < 0 {
		minutes = 0
	}
	return minutes, nil
}

// DiffAgainstTrunk returns the changes a branch carries relative to
// the trunk as a ChangeSet, without checking the branch out. The trunk
// itself (or an empty trunk) yields an empty set.
func (i *Inspector) DiffAgainstTrunk(ctx context.Context, trunk, branch string) (ChangeSet, error) {
	if trunk == "" || trunk == branch {
		return nil, nil
	}

	statusOut, err := i.run.run(ctx, "diff", "--name-status", trunk+"..."+branch)
	if err != nil {
		return nil, err
	}
	if statusOut == "" {
		return nil, nil
	}

	numstatOut, err := i.run.run(ctx, "diff", "--numstat", trunk+"..."+branch)
	if err != nil {
		return nil, err
	}
	lineStats := parseNumstat(numstatOut)

	var cs ChangeSet
	for _, line := range strings.Split(statusOut, "\n") {
		parts := strings.Split(line, "\t")
		if len(parts) < 2 {
			continue
		}
		fc := FileChange{Path: parts[len(parts)-1]}
		switch parts[0][0] {
		case 'A':
			fc.Status = StatusAdded
		case 'D':
			fc.Status = StatusDeleted
		default:
			fc.Status = StatusModified
		}
		if stats, ok := lineStats[fc.Path]; ok {
			fc.LinesAdded, fc.LinesRemoved = stats[0], stats[1]
		}
		cs = append(cs, fc)
	}
	return cs, nil
}

// IsAncestor reports whether ref is reachable from branch, i.e. branch
// already contains ref.
func (i *Inspector) IsAncestor(ctx context.Context, ref, branch string) (bool, error) {
	_, err := i.run.run(ctx, "merge-base", "--is-ancestor", ref, branch)
	if err == nil {
		return true, nil
	}
	var ierr *InspectionError
	if errors.As(err, &ierr) && ierr.ExitCode == 1 {
		return false, nil
	}
	return false, err
}

func (i *Inspector) hasHEAD(ctx context.Context) bool {
	_, err := i.run.run(ctx, "rev-parse", "--verify", "HEAD")
	return err == nil
}

func (i *Inspector) countFileLines(relPath string) int {
	data, err := os.ReadFile(filepath.Join(i.root, relPath))
	if err != nil {
		return 0
	}
	if len(data) == 0 {
		return 0
	}
	n := strings.Count(string(data), "\n")
	if data[len(data)-1] != '\n' {
		n++
	}
	return n
}

const infMinutes = 1e12 // effectively "no previous commit"

// parseStatusLine interprets one `git status --porcelain` line.
// Renames and copies count as modifications of the new path.
func parseStatusLine(line string) (FileChange, bool) {
	if len(line) < 4 {
		return FileChange{}, false
	}
	code := line[:2]
	path := strings.TrimSpace(line[3:])
	if idx := strings.Index(path, " -> "); idx >= 0 {
		path = path[idx+4:]
	}
	path = strings.Trim(path, `"`)

	switch {
	case code == "??":
		return FileChange{Path: path, Status: StatusAdded}, true
	case code[0] == 'A' || code[1] == 'A':
		return FileChange{Path: path, Status: StatusAdded}, true
	case code[0] == 'D' || code[1] == 'D':
		return FileChange{Path: path, Status: StatusDeleted}, true
	case strings.ContainsAny(code, "MRCT"):
		return FileChange{Path: path, Status: StatusModified}, true
	}
	return FileChange{}, false
}

// parseNumstat maps paths to [added, removed] line counts. Binary
// files report "-" and contribute zero lines.
func parseNumstat(out string) map[string][2]int {
	stats := make(map[string][2]int)
	for _, line := range strings.Split(out, "\n") {
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) < 3 {
			continue
		}
		added, _ := strconv.Atoi(parts[0])
		removed, _ := strconv.Atoi(parts[1])
		stats[renamedPath(parts[2])] = [2]int{added, removed}
	}
	return stats
}

// renamedPath resolves a numstat rename path to its new name. Renames
// appear as "old => new" or with a shared prefix as "dir/{old => new}".
func renamedPath(path string) string {
	idx := strings.Index(path, " => ")
	if idx < 0 {
		return path
	}
	open := strings.Index(path, "{")
	if open < 0 {
		return path[idx+4:]
	}
	end := strings.Index(path, "}")
	if end < idx {
		return path
	}
	return path[:open] + path[idx+4:end] + path[end+1:]
}

func parseUnixTime(s string) time.Time {
	sec, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
