package inspect

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrNotARepository is returned when no git metadata is found at or
// above the requested path. Fatal to the caller; no partial output.
var ErrNotARepository = errors.New("not a git repository")

// ErrGitUnavailable is returned when the git binary cannot be found.
var ErrGitUnavailable = errors.New("git binary not found in PATH")

// InspectionError is a git invocation that failed after its one retry.
type InspectionError struct {
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *InspectionError) Error() string {
	msg := fmt.Sprintf("git %s failed with exit code %d", strings.Join(e.Args, " "), e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}
