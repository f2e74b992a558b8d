// Package gitops holds the few write operations the tool performs:
// creating the suggested branch and committing a progress save. It is
// deliberately separate from the read-only inspector.
package gitops

import (
	"context"
	"os/exec"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// ErrBranchExists is returned when the suggested branch name is taken.
var ErrBranchExists = errors.New("branch already exists")

// Ops performs git write operations in one repository.
type Ops struct {
	dir string
	log *zap.Logger
}

// New returns an Ops rooted at the repository path.
func New(repoRoot string, log *zap.Logger) *Ops {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ops{dir: repoRoot, log: log}
}

// CreateBranch creates and checks out a new branch. Fails with
// ErrBranchExists if a branch of that name is already present.
func (o *Ops) CreateBranch(ctx context.Context, name string) error {
	out, err := o.git(ctx, "branch", "--list", name)
	if err != nil {
		return err
	}
	if strings.TrimSpace(out) != "" {
		return errors.Wrap(ErrBranchExists, name)
	}
	if _, err := o.git(ctx, "checkout", "-b", name); err != nil {
		return err
	}
	o.log.Info("created branch", zap.String("name", name))
	return nil
}

// SaveProgress stages everything and commits with the given message.
// A clean tree is not an error; it simply commits nothing.
func (o *Ops) SaveProgress(ctx context.Context, message string) error {
	status, err := o.git(ctx, "status", "--porcelain")
	if err != nil {
		return err
	}
	if strings.TrimSpace(status) == "" {
		o.log.Debug("nothing to save, working tree clean")
		return nil
	}
	if _, err := o.git(ctx, "add", "."); err != nil {
		return err
	}
	if _, err := o.git(ctx, "commit", "-m", message); err != nil {
		return err
	}
	o.log.Info("progress saved", zap.String("message", message))
	return nil
}

func (o *Ops) git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = o.dir
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", errors.Wrapf(err, "git %s: %s",
			strings.Join(args, " "), strings.TrimSpace(stderr.String()))
	}
	return string(out), nil
}
