package inspect

import (
	"context"
	"os/exec"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// runner invokes git as short-lived child processes rooted at dir.
// A nonzero exit that is not "not a repository" is treated as
// transient and retried exactly once before being surfaced as an
// InspectionError. A killed process counts as transient too.
type runner struct {
	dir string
	log *zap.Logger
}

// CheckGit verifies that the git binary is reachable. Call once at
// process start; everything else assumes git exists.
func CheckGit() error {
	if _, err := exec.LookPath("git"); err != nil {
		return ErrGitUnavailable
	}
	return nil
}

func (r *runner) run(ctx context.Context, args ...string) (string, error) {
	out, err := r.runOnce(ctx, args)
	if err == nil {
		return out, nil
	}
	var ierr *InspectionError
	if !errors.As(err, &ierr) {
		return "", err
	}

	r.log.Debug("git command failed, retrying once",
		zap.Strings("args", args),
		zap.Int("exit_code", ierr.ExitCode))

	out, retryErr := r.runOnce(ctx, args)
	if retryErr != nil {
		return "", retryErr
	}
	return out, nil
}

func (r *runner) runOnce(ctx context.Context, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.dir
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err == nil {
		return strings.TrimSpace(string(out)), nil
	}

	exitCode := -1
	if ee, ok := err.(*exec.ExitError); ok {
		exitCode = ee.ExitCode()
	}
	if isNotARepository(exitCode, stderr.String()) {
		return "", ErrNotARepository
	}
	return "", &InspectionError{
		Args:     args,
		ExitCode: exitCode,
		Stderr:   stderr.String(),
	}
}

// isNotARepository recognizes git's fatal "not a git repository"
// refusal, which must never be retried.
func isNotARepository(exitCode int, stderr string) bool {
	return exitCode == 128 && strings.Contains(stderr, "not a git repository")
}
