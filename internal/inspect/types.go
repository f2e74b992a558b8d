package inspect

import "time"

// ChangeStatus is the working-tree state of a single file.
type ChangeStatus string

const (
	StatusAdded    ChangeStatus = "added"
	StatusModified ChangeStatus = "modified"
	StatusDeleted  ChangeStatus = "deleted"
)

// FileChange is one file's uncommitted change, with its line delta
// against HEAD.
type FileChange struct {
	Path         string       `json:"path"`
	Status       ChangeStatus `json:"status"`
	LinesAdded   int          `json:"linesAdded"`
	LinesRemoved int          `json:"linesRemoved"`
}

// ChangeSet is the ordered list of uncommitted changes. It is derived
// fresh from the working tree on every call and never persisted.
type ChangeSet []FileChange

// TotalLinesAdded sums the added lines across the set.
func (cs ChangeSet) TotalLinesAdded() int {
	n := 0
	for _, fc := range cs {
		n += fc.LinesAdded
	}
	return n
}

// TotalLinesRemoved sums the removed lines across the set.
func (cs ChangeSet) TotalLinesRemoved() int {
	n := 0
	for _, fc := range cs {
		n += fc.LinesRemoved
	}
	return n
}

// Branch is one local branch with the commit facts a snapshot needs.
// CommitCount and the timestamps come from walking that branch's own
// log; shared ancestry is not deduplicated against sibling branches.
type Branch struct {
	Name         string
	CommitCount  int
	CreatedAt    time.Time
	LastCommitAt time.Time
}

// DiffStats aggregates a ChangeSet per change kind.
type DiffStats struct {
	Added        int `json:"added"`
	Modified     int `json:"modified"`
	Deleted      int `json:"deleted"`
	LinesAdded   int `json:"linesAdded"`
	LinesRemoved int `json:"linesRemoved"`
}

// Stats folds the set into per-kind counts and line totals.
func (cs ChangeSet) Stats() DiffStats {
	var s DiffStats
	for _, fc := range cs {
		switch fc.Status {
		case StatusAdded:
			s.Added++
		case StatusDeleted:
			s.Deleted++
		default:
			s.Modified++
		}
		s.LinesAdded += fc.LinesAdded
		s.LinesRemoved += fc.LinesRemoved
	}
	return s
}
