package inspect

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubGit puts a shell script named git at the front of PATH and
// returns the path of a log file recording every invocation.
func stubGit(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stub requires a POSIX shell")
	}
	dir := t.TempDir()
	calls := filepath.Join(dir, "calls")
	script := fmt.Sprintf("#!/bin/sh\necho invoked >> %q\n%s\n", calls, body)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "git"), []byte(script), 0755))
	t.Setenv("PATH", dir)
	return calls
}

func invocations(t *testing.T, calls string) int {
	t.Helper()
	data, err := os.ReadFile(calls)
	if os.IsNotExist(err) {
		return 0
	}
	require.NoError(t, err)
	return strings.Count(string(data), "invoked")
}

func TestRun_TransientFailureRecoversOnRetry(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "failed-once")
	calls := stubGit(t, fmt.Sprintf(
		"if [ -f %q ]; then echo ok; exit 0; fi\n: > %q\necho transient >&2\nexit 1",
		marker, marker))

	r := &runner{dir: dir, log: zap.NewNop()}
	out, err := r.run(context.Background(), "status", "--porcelain")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 2, invocations(t, calls))
}

func TestRun_PersistentFailureEscalates(t *testing.T) {
	calls := stubGit(t, "echo boom >&2\nexit 3")

	r := &runner{dir: t.TempDir(), log: zap.NewNop()}
	_, err := r.run(context.Background(), "log", "--format=%ct")
	require.Error(t, err)

	var ierr *InspectionError
	require.True(t, errors.As(err, &ierr))
	assert.Equal(t, []string{"log", "--format=%ct"}, ierr.Args)
	assert.Equal(t, 3, ierr.ExitCode)
	assert.Contains(t, ierr.Stderr, "boom")
	assert.Equal(t, 2, invocations(t, calls))
}

func TestRun_NotARepositoryNeverRetried(t *testing.T) {
	calls := stubGit(t, "echo 'fatal: not a git repository' >&2\nexit 128")

	r := &runner{dir: t.TempDir(), log: zap.NewNop()}
	_, err := r.run(context.Background(), "rev-parse", "--show-toplevel")
	assert.ErrorIs(t, err, ErrNotARepository)
	assert.Equal(t, 1, invocations(t, calls))
}
