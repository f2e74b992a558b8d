package snapshot

import (
	"time"

	"github.com/usevibe/vibe-cli/internal/inspect"
)

// BranchType is the kind of a branch, inferred from its name.
type BranchType string

const (
	TypeMain    BranchType = "main"
	TypeFeature BranchType = "feature"
	TypeBugfix  BranchType = "bugfix"
	TypeHotfix  BranchType = "hotfix"
	TypeOther   BranchType = "other"
)

// BranchSummary is one branch as exposed to external consumers.
type BranchSummary struct {
	Name         string            `json:"name"`
	Type         BranchType        `json:"type"`
	CreatedAt    time.Time         `json:"createdAt"`
	LastCommitAt time.Time         `json:"lastCommit"`
	CommitCount  int               `json:"commitCount"`
	FileChanges  inspect.DiffStats `json:"fileChanges"`
	VibeScore    float64           `json:"vibeScore"`
	IsActive     bool              `json:"isActive"`
}

// Repository identifies the inspected working tree.
type Repository struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// SessionSnapshot is the full session-scoped view of the repository,
// rebuilt from git state on every poll.
type SessionSnapshot struct {
	SessionID         string          `json:"sessionId"`
	StartTime         time.Time       `json:"startTime"`
	CurrentBranch     string          `json:"currentBranch"`
	TotalBranches     int             `json:"totalBranches"`
	TotalCommits      int             `json:"totalCommits"`
	TotalFilesChanged int             `json:"totalFilesChanged"`
	Branches          []BranchSummary `json:"branches"`
	Repository        Repository      `json:"repository"`
}
