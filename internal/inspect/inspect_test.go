package inspect

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatusLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want FileChange
		ok   bool
	}{
		{"untracked", "?? new.py", FileChange{Path: "new.py", Status: StatusAdded}, true},
		{"staged add", "A  lib.go", FileChange{Path: "lib.go", Status: StatusAdded}, true},
		{"worktree modified", " M main.go", FileChange{Path: "main.go", Status: StatusModified}, true},
		{"staged modified", "M  main.go", FileChange{Path: "main.go", Status: StatusModified}, true},
		{"deleted", " D gone.go", FileChange{Path: "gone.go", Status: StatusDeleted}, true},
		{"renamed", "R  old.go -> new.go", FileChange{Path: "new.go", Status: StatusModified}, true},
		{"type change", " T link.go", FileChange{Path: "link.go", Status: StatusModified}, true},
		{"quoted path", `?? "has space.txt"`, FileChange{Path: "has space.txt", Status: StatusAdded}, true},
		{"too short", "M", FileChange{}, false},
		{"empty", "", FileChange{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseStatusLine(tt.line)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseNumstat(t *testing.T) {
	out := "10\t2\tmain.go\n" +
		"-\t-\tlogo.png\n" +
		"4\t4\told.go => new.go\n" +
		"7\t1\tinternal/{old.go => new.go}\n" +
		"0\t5\tgone.go"
	stats := parseNumstat(out)

	assert.Equal(t, [2]int{10, 2}, stats["main.go"])
	assert.Equal(t, [2]int{0, 0}, stats["logo.png"])
	assert.Equal(t, [2]int{4, 4}, stats["new.go"])
	assert.Equal(t, [2]int{7, 1}, stats["internal/new.go"])
	assert.Equal(t, [2]int{0, 5}, stats["gone.go"])
}

func TestRenamedPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"main.go", "main.go"},
		{"old.go => new.go", "new.go"},
		{"internal/{old.go => new.go}", "internal/new.go"},
		{"{pkg => internal}/util.go", "internal/util.go"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, renamedPath(tt.in))
		})
	}
}

func TestParseUnixTime(t *testing.T) {
	ts := parseUnixTime("1700000000")
	assert.Equal(t, int64(1700000000), ts.Unix())
	assert.True(t, parseUnixTime("garbage").IsZero())
	assert.True(t, parseUnixTime("").IsZero())
}

func TestChangeSetStats(t *testing.T) {
	cs := ChangeSet{
		{Path: "a.go", Status: StatusAdded, LinesAdded: 10},
		{Path: "b.go", Status: StatusModified, LinesAdded: 3, LinesRemoved: 1},
		{Path: "c.go", Status: StatusDeleted, LinesRemoved: 20},
	}
	stats := cs.Stats()
	assert.Equal(t, DiffStats{
		Added: 1, Modified: 1, Deleted: 1,
		LinesAdded: 13, LinesRemoved: 21,
	}, stats)
}

// --- git-backed fixtures ---

func initRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	git(t, dir, "init", "-b", "main")
	git(t, dir, "config", "user.email", "test@example.com")
	git(t, dir, "config", "user.name", "Test User")
	return dir
}

func git(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestOpen_NotARepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	_, err := Open(context.Background(), t.TempDir(), nil)
	assert.ErrorIs(t, err, ErrNotARepository)
}

func TestOpen_FromSubdirectory(t *testing.T) {
	dir := initRepo(t)
	sub := filepath.Join(dir, "pkg", "deep")
	require.NoError(t, os.MkdirAll(sub, 0755))

	insp, err := Open(context.Background(), sub, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(dir), insp.Name())
}

func TestChangeSet_WorkingTree(t *testing.T) {
	ctx := context.Background()
	dir := initRepo(t)

	writeFile(t, dir, "a.go", "package a\n\nfunc A() {}\n")
	git(t, dir, "add", ".")
	git(t, dir, "commit", "-m", "initial")

	// One modification, one untracked file.
	writeFile(t, dir, "a.go", "package a\n\nfunc A() {}\n\nfunc B() {}\n")
	writeFile(t, dir, "new.py", "x = 1\ny = 2\nz = 3\n")

	insp, err := Open(ctx, dir, nil)
	require.NoError(t, err)
	cs, err := insp.ChangeSet(ctx)
	require.NoError(t, err)
	require.Len(t, cs, 2)

	byPath := map[string]FileChange{}
	for _, fc := range cs {
		byPath[fc.Path] = fc
	}
	assert.Equal(t, StatusModified, byPath["a.go"].Status)
	assert.Equal(t, 2, byPath["a.go"].LinesAdded)
	assert.Equal(t, StatusAdded, byPath["new.py"].Status)
	assert.Equal(t, 3, byPath["new.py"].LinesAdded)
}

func TestChangeSet_CleanTree(t *testing.T) {
	ctx := context.Background()
	dir := initRepo(t)
	writeFile(t, dir, "a.go", "package a\n")
	git(t, dir, "add", ".")
	git(t, dir, "commit", "-m", "initial")

	insp, err := Open(ctx, dir, nil)
	require.NoError(t, err)
	cs, err := insp.ChangeSet(ctx)
	require.NoError(t, err)
	assert.Empty(t, cs)
}

func TestBranches_IndependentLogWalks(t *testing.T) {
	ctx := context.Background()
	dir := initRepo(t)

	writeFile(t, dir, "a.go", "package a\n")
	git(t, dir, "add", ".")
	git(t, dir, "commit", "-m", "one")
	writeFile(t, dir, "a.go", "package a\n\nvar X = 1\n")
	git(t, dir, "commit", "-am", "two")

	git(t, dir, "checkout", "-b", "feature/x")
	writeFile(t, dir, "b.go", "package a\n\nvar Y = 2\n")
	git(t, dir, "add", ".")
	git(t, dir, "commit", "-m", "three")

	insp, err := Open(ctx, dir, nil)
	require.NoError(t, err)
	branches, err := insp.Branches(ctx)
	require.NoError(t, err)
	require.Len(t, branches, 2)

	byName := map[string]Branch{}
	for _, b := range branches {
		byName[b.Name] = b
	}
	assert.Equal(t, 2, byName["main"].CommitCount)
	assert.Equal(t, 3, byName["feature/x"].CommitCount)
	assert.False(t, byName["main"].CreatedAt.IsZero())
	assert.False(t, byName["feature/x"].LastCommitAt.IsZero())
	assert.True(t, !byName["feature/x"].LastCommitAt.Before(byName["feature/x"].CreatedAt))

	current, err := insp.CurrentBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "feature/x", current)
}

func TestDiffAgainstTrunk(t *testing.T) {
	ctx := context.Background()
	dir := initRepo(t)

	writeFile(t, dir, "a.go", "package a\n")
	git(t, dir, "add", ".")
	git(t, dir, "commit", "-m", "base")

	git(t, dir, "checkout", "-b", "feature/x")
	writeFile(t, dir, "b.go", "package a\n\nvar Y = 2\n")
	git(t, dir, "add", ".")
	git(t, dir, "commit", "-m", "add b")

	insp, err := Open(ctx, dir, nil)
	require.NoError(t, err)

	cs, err := insp.DiffAgainstTrunk(ctx, "main", "feature/x")
	require.NoError(t, err)
	require.Len(t, cs, 1)
	assert.Equal(t, "b.go", cs[0].Path)
	assert.Equal(t, StatusAdded, cs[0].Status)
	assert.Equal(t, 3, cs[0].LinesAdded)

	// The trunk against itself is always empty.
	cs, err = insp.DiffAgainstTrunk(ctx, "main", "main")
	require.NoError(t, err)
	assert.Empty(t, cs)
}

func TestMinutesSinceLastCommit(t *testing.T) {
	ctx := context.Background()
	dir := initRepo(t)

	insp, err := Open(ctx, dir, nil)
	require.NoError(t, err)

	// No commits yet: effectively infinite.
	minutes, err := insp.MinutesSinceLastCommit(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, float64(infMinutes), minutes)

	writeFile(t, dir, "a.go", "package a\n")
	git(t, dir, "add", ".")
	git(t, dir, "commit", "-m", "initial")

	minutes, err = insp.MinutesSinceLastCommit(ctx, time.Now())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, minutes, 0.0)
	assert.Less(t, minutes, 5.0)
}

func TestIsAncestor(t *testing.T) {
	ctx := context.Background()
	dir := initRepo(t)

	writeFile(t, dir, "a.go", "package a\n")
	git(t, dir, "add", ".")
	git(t, dir, "commit", "-m", "base")
	git(t, dir, "checkout", "-b", "feature/x")
	writeFile(t, dir, "b.go", "package a\n")
	git(t, dir, "add", ".")
	git(t, dir, "commit", "-m", "more")

	insp, err := Open(ctx, dir, nil)
	require.NoError(t, err)

	ok, err := insp.IsAncestor(ctx, "main", "feature/x")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = insp.IsAncestor(ctx, "feature/x", "main")
	require.NoError(t, err)
	assert.False(t, ok)
}
