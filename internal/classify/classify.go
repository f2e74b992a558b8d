// Package classify maps file changes to categories and aggregates
// their line deltas. Classification is pure and deterministic: the
// same change set and weight table always produce the same result.
package classify

import (
	"path/filepath"
	"strings"

	"github.com/usevibe/vibe-cli/internal/inspect"
)

// Category is the coarse kind of a changed file.
type Category string

const (
	CategorySource Category = "source"
	CategoryConfig Category = "config"
	CategoryDocs   Category = "docs"
	CategoryScript Category = "script"
	CategoryOther  Category = "other"
)

// unknownWeight is applied to extensions absent from the weight table.
const unknownWeight = 0.1

// extCategories is the closed extension-to-category table. Unknown
// extensions degrade to CategoryOther instead of failing.
var extCategories = map[string]Category{
	".py": CategorySource, ".js": CategorySource, ".ts": CategorySource,
	".java": CategorySource, ".cpp": CategorySource, ".c": CategorySource,
	".h": CategorySource, ".go": CategorySource, ".rs": CategorySource,
	".rb": CategorySource, ".html": CategorySource, ".css": CategorySource,

	".json": CategoryConfig, ".yaml": CategoryConfig, ".yml": CategoryConfig,
	".toml": CategoryConfig, ".ini": CategoryConfig, ".env": CategoryConfig,

	".md": CategoryDocs, ".txt": CategoryDocs, ".rst": CategoryDocs,

	".sh": CategoryScript, ".bash": CategoryScript, ".zsh": CategoryScript,
	".ps1": CategoryScript, ".bat": CategoryScript, ".mk": CategoryScript,
}

// dominancePriority breaks ties between categories with equal file
// counts. Lower index wins.
var dominancePriority = []Category{
	CategorySource, CategoryConfig, CategoryScript, CategoryDocs, CategoryOther,
}

// Result is the aggregate classification of a change set.
type Result struct {
	TotalFiles            int              `json:"totalFiles"`
	TotalLinesAdded       int              `json:"totalLinesAdded"`
	TotalLinesRemoved     int              `json:"totalLinesRemoved"`
	CategoryBreakdown     map[Category]int `json:"categoryBreakdown"`
	DominantCategory      Category         `json:"dominantCategory"`
	WeightedFileTypeScore float64          `json:"weightedFileTypeScore"`
}

// CategoryOf returns the category for a file path.
func CategoryOf(path string) Category {
	ext := strings.ToLower(filepath.Ext(path))
	if c, ok := extCategories[ext]; ok {
		return c
	}
	return CategoryOther
}

// WeightOf returns the file-type weight for a path, consulting the
// supplied table first.
func WeightOf(path string, weights map[string]float64) float64 {
	ext := strings.ToLower(filepath.Ext(path))
	if w, ok := weights[ext]; ok {
		return w
	}
	return unknownWeight
}

// Classify aggregates a change set into a Result using the given
// extension weight table.
func Classify(cs inspect.ChangeSet, weights map[string]float64) Result {
	res := Result{
		CategoryBreakdown: make(map[Category]int),
		DominantCategory:  CategoryOther,
	}
	if len(cs) == 0 {
		return res
	}

	var weightSum float64
	for _, fc := range cs {
		res.TotalFiles++
		res.TotalLinesAdded += fc.LinesAdded
		res.TotalLinesRemoved += fc.LinesRemoved
		res.CategoryBreakdown[CategoryOf(fc.Path)]++
		weightSum += WeightOf(fc.Path, weights)
	}

	res.DominantCategory = dominant(res.CategoryBreakdown)
	res.WeightedFileTypeScore = clamp01(weightSum / float64(res.TotalFiles))
	return res
}

func dominant(breakdown map[Category]int) Category {
	best := CategoryOther
	bestCount := -1
	for _, c := range dominancePriority {
		if n := breakdown[c]; n > bestCount {
			best = c
			bestCount = n
		}
	}
	return best
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
