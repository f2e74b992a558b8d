// Package config loads and validates the engine configuration.
//
// Configuration is a single JSON document; every field is optional and
// falls back to a documented default. Unknown fields are rejected at
// load time rather than ignored.
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// ErrInvalidThreshold is returned when a threshold is zero or negative.
var ErrInvalidThreshold = errors.New("invalid threshold: must be > 0")

// ErrInvalidWeight is returned when a scoring weight is negative.
var ErrInvalidWeight = errors.New("invalid weight: must be >= 0")

// Thresholds are the numeric cutoffs each factor is normalized against.
// All values must be strictly positive.
type Thresholds struct {
	FilesChanged    float64 `json:"files_changed" validate:"gt=0"`
	LinesAdded      float64 `json:"lines_added" validate:"gt=0"`
	LinesRemoved    float64 `json:"lines_removed" validate:"gt=0"`
	TimeMinutes     float64 `json:"time_minutes" validate:"gt=0"`
	ComplexityScore float64 `json:"complexity_score" validate:"gt=0"`
}

// Weights are the per-factor weights of the scoring model. They need
// not sum to 1; the final score divides by their sum.
type Weights struct {
	FilesChanged float64 `json:"files_changed" validate:"gte=0"`
	LinesChanged float64 `json:"lines_changed" validate:"gte=0"`
	TimeFactor   float64 `json:"time_factor" validate:"gte=0"`
	Complexity   float64 `json:"complexity" validate:"gte=0"`
	FileTypes    float64 `json:"file_types" validate:"gte=0"`
}

// BranchNaming controls how suggested branch names are assembled.
// An empty Prefix means "derive the prefix from the dominant change
// category" (source changes become feature/..., docs changes docs/...).
type BranchNaming struct {
	Prefix           string `json:"prefix"`
	Separator        string `json:"separator"`
	IncludeTimestamp bool   `json:"include_timestamp"`
}

// Config is the full engine configuration.
type Config struct {
	Thresholds      Thresholds         `json:"thresholds"`
	Weights         Weights            `json:"weights"`
	FileTypeWeights map[string]float64 `json:"file_type_weights"`
	BranchNaming    BranchNaming       `json:"branch_naming"`
	TrunkBranches   []string           `json:"trunk_branches"`
}

var validate = validator.New()

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Thresholds: Thresholds{
			FilesChanged:    5,
			LinesAdded:      50,
			LinesRemoved:    30,
			TimeMinutes:     30,
			ComplexityScore: 7,
		},
		Weights: Weights{
			FilesChanged: 0.3,
			LinesChanged: 0.25,
			TimeFactor:   0.2,
			Complexity:   0.15,
			FileTypes:    0.1,
		},
		FileTypeWeights: map[string]float64{
			".py": 1.0, ".java": 1.0, ".cpp": 1.0, ".c": 1.0,
			".go": 1.0, ".rs": 1.0, ".ts": 0.9, ".js": 0.8,
			".html": 0.3, ".css": 0.3, ".json": 0.2,
			".md": 0.1, ".txt": 0.1,
		},
		BranchNaming: BranchNaming{
			Separator: "/",
		},
		TrunkBranches: []string{"main", "master"},
	}
}

// Load reads the configuration document at path and merges it over the
// defaults. An empty path returns the defaults. Unknown fields and
// malformed values are errors, as are non-positive thresholds and
// negative weights.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}

	cfg, err = Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse merges a JSON configuration document over the defaults and
// validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	// Decode into an overlay first so absent fields keep defaults.
	var overlay rawConfig
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&overlay); err != nil {
		return nil, errors.Wrap(err, "parsing")
	}

	overlay.apply(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the invariants of an assembled configuration.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg.Thresholds); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return errors.Wrapf(ErrInvalidThreshold, "thresholds.%s = %v",
				jsonFieldName(verrs[0].StructField()), verrs[0].Value())
		}
		return err
	}
	if err := validate.Struct(cfg.Weights); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return errors.Wrapf(ErrInvalidWeight, "weights.%s = %v",
				jsonFieldName(verrs[0].StructField()), verrs[0].Value())
		}
		return err
	}
	for ext, w := range cfg.FileTypeWeights {
		if w < 0 || w > 1 {
			return errors.Wrapf(ErrInvalidWeight, "file_type_weights[%q] = %v", ext, w)
		}
	}
	return nil
}

// IsTrunk reports whether name is one of the configured trunk branches.
func (c *Config) IsTrunk(name string) bool {
	for _, t := range c.TrunkBranches {
		if name == t {
			return true
		}
	}
	return false
}

// rawConfig mirrors Config with pointer fields so that "absent" and
// "explicitly zero" can be told apart during the merge.
type rawConfig struct {
	Thresholds *struct {
		FilesChanged    *float64 `json:"files_changed"`
		LinesAdded      *float64 `json:"lines_added"`
		LinesRemoved    *float64 `json:"lines_removed"`
		TimeMinutes     *float64 `json:"time_minutes"`
		ComplexityScore *float64 `json:"complexity_score"`
	} `json:"thresholds"`
	Weights *struct {
		FilesChanged *float64 `json:"files_changed"`
		LinesChanged *float64 `json:"lines_changed"`
		TimeFactor   *float64 `json:"time_factor"`
		Complexity   *float64 `json:"complexity"`
		FileTypes    *float64 `json:"file_types"`
	} `json:"weights"`
	FileTypeWeights map[string]float64 `json:"file_type_weights"`
	BranchNaming    *struct {
		Prefix           *string `json:"prefix"`
		Separator        *string `json:"separator"`
		IncludeTimestamp *bool   `json:"include_timestamp"`
	} `json:"branch_naming"`
	TrunkBranches []string `json:"trunk_branches"`
}

func (r *rawConfig) apply(cfg *Config) {
	if t := r.Thresholds; t != nil {
		setF(&cfg.Thresholds.FilesChanged, t.FilesChanged)
		setF(&cfg.Thresholds.LinesAdded, t.LinesAdded)
		setF(&cfg.Thresholds.LinesRemoved, t.LinesRemoved)
		setF(&cfg.Thresholds.TimeMinutes, t.TimeMinutes)
		setF(&cfg.Thresholds.ComplexityScore, t.ComplexityScore)
	}
	if w := r.Weights; w != nil {
		setF(&cfg.Weights.FilesChanged, w.FilesChanged)
		setF(&cfg.Weights.LinesChanged, w.LinesChanged)
		setF(&cfg.Weights.TimeFactor, w.TimeFactor)
		setF(&cfg.Weights.Complexity, w.Complexity)
		setF(&cfg.Weights.FileTypes, w.FileTypes)
	}
	for ext, w := range r.FileTypeWeights {
		cfg.FileTypeWeights[strings.ToLower(ext)] = w
	}
	if b := r.BranchNaming; b != nil {
		if b.Prefix != nil {
			cfg.BranchNaming.Prefix = *b.Prefix
		}
		if b.Separator != nil {
			cfg.BranchNaming.Separator = *b.Separator
		}
		if b.IncludeTimestamp != nil {
			cfg.BranchNaming.IncludeTimestamp = *b.IncludeTimestamp
		}
	}
	if r.TrunkBranches != nil {
		cfg.TrunkBranches = r.TrunkBranches
	}
}

func setF(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

// jsonFieldName maps a Go struct field name to its snake_case JSON name
// for error messages.
func jsonFieldName(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
