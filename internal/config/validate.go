package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.TranscriptsDir == "" {
		return errors.New("paths.transcripts_dir is required")
	}
	if c.Paths.AnalysisTypesDir == "" {
		return errors.New("paths.analysis_types_dir is required")
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.LLM.TimeoutSeconds < 0 {
		return fmt.Errorf("llm.timeout_seconds must be non-negative, got %d", c.LLM.TimeoutSeconds)
	}
	if c.LLM.Model == "" {
		return errors.New("llm.model is required")
	}
	return nil
}

func (c *Config) validateAnalysis() error {
	if c.Analysis.DefaultMaxRounds < 0 {
		return fmt.Errorf("analysis.default_max_rounds must be non-negative, got %d", c.Analysis.DefaultMaxRounds)
	}
	seen := map[string]struct{}{}
	for _, pair := range c.Analysis.JudgePairs {
		if pair.Draft == "" || pair.Judge == "" {
			return errors.New("analysis.judge_pairs entries require both draft and judge")
		}
		if pair.Draft == pair.Judge {
			return fmt.Errorf("analysis.judge_pairs: %q cannot judge itself", pair.Draft)
		}
		if pair.MaxRounds != nil && *pair.MaxRounds < 0 {
			return fmt.Errorf("analysis.judge_pairs: max_rounds must be non-negative for %q", pair.Draft)
		}
		if _, dup := seen[pair.Draft]; dup {
			return fmt.Errorf("analysis.judge_pairs: duplicate draft type %q", pair.Draft)
		}
		seen[pair.Draft] = struct{}{}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
