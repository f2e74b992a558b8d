// Package score computes the branch-urgency ("vibe") score. The engine
// is a pure function of its inputs: identical inputs always produce an
// identical score and recommendation, so polling callers can detect
// genuine state changes rather than arithmetic drift.
package score

import (
	"github.com/usevibe/vibe-cli/internal/classify"
	"github.com/usevibe/vibe-cli/internal/config"
)

// RecommendThreshold is the fixed policy constant at which the
// recommendation flips to "create branch". It is deliberately not
// user-tunable; callers wanting a different cutoff compare against
// Result.Score themselves.
const RecommendThreshold = 0.6

// Factors are the five normalized inputs to the weighted model, each
// clamped to [0,1].
type Factors struct {
	File       float64 `json:"fileFactor"`
	Line       float64 `json:"lineFactor"`
	Time       float64 `json:"timeFactor"`
	Complexity float64 `json:"complexityFactor"`
	FileType   float64 `json:"fileTypeFactor"`
}

// Result is the scored outcome for one change set.
type Result struct {
	Score        float64 `json:"score"`
	CreateBranch bool    `json:"createBranch"`
	Factors      Factors `json:"factors"`
}

// Inputs carries the scoring inputs beyond the classification itself.
type Inputs struct {
	MinutesSinceLastCommit float64
	// ComplexityOverride replaces the built-in complexity proxy
	// (total line delta divided by file count) when non-nil.
	ComplexityOverride *float64
}

// Compute scores a classified change set against the configured
// thresholds and weights. Thresholds are validated at configuration
// load time; Compute assumes they are positive.
//
// An empty change set scores 0 with no branch recommendation.
func Compute(res classify.Result, th config.Thresholds, w config.Weights, in Inputs) Result {
	if res.TotalFiles == 0 {
		return Result{}
	}

	f := Factors{
		File: clamp01(float64(res.TotalFiles) / th.FilesChanged),
		Line: clamp01((float64(res.TotalLinesAdded)/th.LinesAdded +
			float64(res.TotalLinesRemoved)/th.LinesRemoved) / 2),
		Time:       clamp01(in.MinutesSinceLastCommit / th.TimeMinutes),
		Complexity: clamp01(estimatedComplexity(res, in) / th.ComplexityScore),
		FileType:   clamp01(res.WeightedFileTypeScore),
	}

	weightSum := w.FilesChanged + w.LinesChanged + w.TimeFactor + w.Complexity + w.FileTypes
	if weightSum == 0 {
		return Result{Factors: f}
	}

	score := clamp01((f.File*w.FilesChanged +
		f.Line*w.LinesChanged +
		f.Time*w.TimeFactor +
		f.Complexity*w.Complexity +
		f.FileType*w.FileTypes) / weightSum)

	return Result{
		Score:        score,
		CreateBranch: score >= RecommendThreshold,
		Factors:      f,
	}
}

// estimatedComplexity is a cheap proxy: the average line delta per
// changed file.
func estimatedComplexity(res classify.Result, in Inputs) float64 {
	if in.ComplexityOverride != nil {
		return *in.ComplexityOverride
	}
	return float64(res.TotalLinesAdded+res.TotalLinesRemoved) / float64(res.TotalFiles)
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
