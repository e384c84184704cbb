package config

import (
	"strings"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestValidateRejectsBadParameters(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"negative window", func(c *Config) { c.Analysis.WindowMinutes = -10 }, "window_minutes"},
		{"zero window", func(c *Config) { c.Analysis.WindowMinutes = 0 }, "window_minutes"},
		{"threshold below one", func(c *Config) { c.Analysis.MinRevertThreshold = 0 }, "min_revert_threshold"},
		{"zero rule window", func(c *Config) { c.Analysis.RuleViolationWindowHours = 0 }, "rule_violation_window_hours"},
		{"zero rule max", func(c *Config) { c.Analysis.RuleViolationMaxReverts = 0 }, "rule_violation_max_reverts"},
		{"negative weight", func(c *Config) { c.Weights.EditWars = -1 }, "non-negative"},
		{"all zero weights", func(c *Config) { c.Weights = ScoreWeights{} }, "at least one"},
		{"zero revision limit", func(c *Config) { c.Fetch.RevisionLimit = 0 }, "revision_limit"},
		{"zero rate", func(c *Config) { c.Fetch.RequestsPerSecond = 0 }, "requests_per_second"},
		{"zero concurrency", func(c *Config) { c.Fetch.Concurrency = 0 }, "concurrency"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q should mention %q", err, tc.want)
			}
		})
	}
}
