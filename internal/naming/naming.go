// Package naming derives suggested branch names and conventional
// commit messages from a classified change set. Pure and total: every
// valid classification maps to exactly one name and one message.
package naming

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/usevibe/vibe-cli/internal/classify"
	"github.com/usevibe/vibe-cli/internal/config"
	"github.com/usevibe/vibe-cli/internal/inspect"
)

// multiFileSlug is used when no single file dominates the change set.
const multiFileSlug = "multi-file-update"

// branchLabels maps a dominant category to the branch name prefix used
// when no explicit prefix is configured.
var branchLabels = map[classify.Category]string{
	classify.CategorySource: "feature",
	classify.CategoryConfig: "config",
	classify.CategoryScript: "script",
	classify.CategoryDocs:   "docs",
	classify.CategoryOther:  "update",
}

// commitTags maps a dominant category to its conventional-commit tag.
var commitTags = map[classify.Category]string{
	classify.CategorySource: "feat",
	classify.CategoryConfig: "config",
	classify.CategoryScript: "script",
	classify.CategoryDocs:   "docs",
	classify.CategoryOther:  "chore",
}

// BranchName suggests a branch name for the change set. The prefix is
// the configured one when set, otherwise the semantic label of the
// dominant category. The slug comes from the most-changed file's base
// name; when several files tie for most-changed the slug falls back to
// "multi-file-update".
func BranchName(cs inspect.ChangeSet, res classify.Result, bn config.BranchNaming, now time.Time) string {
	prefix := bn.Prefix
	if prefix == "" {
		prefix = branchLabels[res.DominantCategory]
	}
	sep := bn.Separator
	if sep == "" {
		sep = "/"
	}

	slug := multiFileSlug
	if top, ok := mostChanged(cs); ok {
		slug = Slug(top.Path)
	}

	name := prefix + sep + slug
	if bn.IncludeTimestamp {
		name += "-" + now.Format("20060102-1504")
	}
	return name
}

// CommitMessage synthesizes a conventional commit message for the
// change set. A non-empty override passes through untouched.
func CommitMessage(cs inspect.ChangeSet, res classify.Result, override string) string {
	if override != "" {
		return override
	}
	tag := commitTags[res.DominantCategory]

	if len(cs) == 1 {
		fc := cs[0]
		verb := "update"
		if fc.Status == inspect.StatusAdded {
			verb = "add"
		}
		msg := fmt.Sprintf("%s: %s %s functionality (+%d lines", tag, verb, baseName(fc.Path), fc.LinesAdded)
		if fc.LinesRemoved > 0 {
			msg += fmt.Sprintf(", -%d lines", fc.LinesRemoved)
		}
		return msg + ")"
	}

	verb := "add"
	for _, fc := range cs {
		if fc.Status != inspect.StatusAdded {
			verb = "update"
			break
		}
	}
	return fmt.Sprintf("%s: %s %d files with %s changes (+%d lines, -%d lines)",
		tag, verb, res.TotalFiles, res.DominantCategory,
		res.TotalLinesAdded, res.TotalLinesRemoved)
}

// Slug turns a file path into a branch-name-safe slug: base name with
// the extension stripped, lowercased, runs of non-alphanumerics
// collapsed to single dashes.
func Slug(path string) string {
	base := baseName(path)
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(base) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// mostChanged returns the file with the largest line delta, and false
// when the set is empty or more than one file ties for the maximum.
func mostChanged(cs inspect.ChangeSet) (inspect.FileChange, bool) {
	if len(cs) == 0 {
		return inspect.FileChange{}, false
	}
	if len(cs) == 1 {
		return cs[0], true
	}
	best := cs[0]
	bestDelta := best.LinesAdded + best.LinesRemoved
	ties := 1
	for _, fc := range cs[1:] {
		delta := fc.LinesAdded + fc.LinesRemoved
		switch {
		case delta > bestDelta:
			best, bestDelta, ties = fc, delta, 1
		case delta == bestDelta:
			ties++
		}
	}
	if ties > 1 {
		return inspect.FileChange{}, false
	}
	return best, true
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
