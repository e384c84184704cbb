package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the persistent application configuration
type Config struct {
	// Analysis holds the edit war detection parameters
	Analysis AnalysisConfig `json:"analysis"`

	// Weights holds the controversy score coefficients
	Weights ScoreWeights `json:"score_weights"`

	// Fetch holds Wikipedia API client settings
	Fetch FetchConfig `json:"fetch"`

	// Pages is the default page list for analyze runs
	Pages []string `json:"pages,omitempty"`
}

// AnalysisConfig holds edit war detection parameters
type AnalysisConfig struct {
	// WindowMinutes is the maximum gap between consecutive reverts
	// for them to belong to the same edit war
	WindowMinutes int `json:"window_minutes"`

	// MinRevertThreshold is the minimum reverts for a cluster to
	// qualify as an edit war
	MinRevertThreshold int `json:"min_revert_threshold"`

	// RuleViolationWindowHours is the rolling window for the
	// three-revert rule
	RuleViolationWindowHours int `json:"rule_violation_window_hours"`

	// RuleViolationMaxReverts is the number of reverts an editor may
	// make within the window before being flagged
	RuleViolationMaxReverts int `json:"rule_violation_max_reverts"`
}

// ScoreWeights holds the named coefficients of the controversy score.
// The score is a weighted average of normalized components.
type ScoreWeights struct {
	RevertRate      float64 `json:"revert_rate"`
	EditWars        float64 `json:"edit_wars"`
	EditorDiversity float64 `json:"editor_diversity"`
}

// FetchConfig holds Wikipedia API client settings
type FetchConfig struct {
	Language          string  `json:"language"`            // "en", "de", ...
	RevisionLimit     int     `json:"revision_limit"`      // max revisions per page
	RequestsPerSecond float64 `json:"requests_per_second"` // API rate limit
	Concurrency       int     `json:"concurrency"`         // parallel page pipelines
	UserAgent         string  `json:"user_agent,omitempty"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			WindowMinutes:            1440, // 24 hours between consecutive reverts
			MinRevertThreshold:       3,
			RuleViolationWindowHours: 24,
			RuleViolationMaxReverts:  3,
		},
		Weights: ScoreWeights{
			RevertRate:      3.0, // revert density dominates
			EditWars:        2.0,
			EditorDiversity: 1.0,
		},
		Fetch: FetchConfig{
			Language:          "en",
			RevisionLimit:     1000,
			RequestsPerSecond: 5,
			Concurrency:       4,
		},
	}
}

// Validate checks the configuration for operator errors. It is called
// before any page is processed so bad parameters fail fast instead of
// corrupting a whole run.
func (c *Config) Validate() error {
	if c.Analysis.WindowMinutes <= 0 {
		return fmt.Errorf("config: window_minutes must be positive, got %d", c.Analysis.WindowMinutes)
	}
	if c.Analysis.MinRevertThreshold < 1 {
		return fmt.Errorf("config: min_revert_threshold must be >= 1, got %d", c.Analysis.MinRevertThreshold)
	}
	if c.Analysis.RuleViolationWindowHours <= 0 {
		return fmt.Errorf("config: rule_violation_window_hours must be positive, got %d", c.Analysis.RuleViolationWindowHours)
	}
	if c.Analysis.RuleViolationMaxReverts < 1 {
		return fmt.Errorf("config: rule_violation_max_reverts must be >= 1, got %d", c.Analysis.RuleViolationMaxReverts)
	}
	if c.Weights.RevertRate < 0 || c.Weights.EditWars < 0 || c.Weights.EditorDiversity < 0 {
		return fmt.Errorf("config: score weights must be non-negative")
	}
	if c.Weights.RevertRate+c.Weights.EditWars+c.Weights.EditorDiversity == 0 {
		return fmt.Errorf("config: at least one score weight must be positive")
	}
	if c.Fetch.RevisionLimit < 1 {
		return fmt.Errorf("config: revision_limit must be >= 1, got %d", c.Fetch.RevisionLimit)
	}
	if c.Fetch.RequestsPerSecond <= 0 {
		return fmt.Errorf("config: requests_per_second must be positive, got %g", c.Fetch.RequestsPerSecond)
	}
	if c.Fetch.Concurrency < 1 {
		return fmt.Errorf("config: concurrency must be >= 1, got %d", c.Fetch.Concurrency)
	}
	return nil
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".flashpoint", "config.json")
}

// Load reads config from disk, or returns defaults
func Load() (*Config, error) {
	path := ConfigPath()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), nil
	}

	return &cfg, nil
}

// Save writes config to disk
func (c *Config) Save() error {
	path := ConfigPath()

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
