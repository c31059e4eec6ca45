package testsupport

import (
	"path/filepath"
	"testing"

	"loom/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.TranscriptsDir = filepath.Join(base, "transcripts")
	cfg.Paths.AnalysisTypesDir = filepath.Join(base, "types")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.CatalogPath = filepath.Join(base, "catalog.db")
	cfg.LLM.APIKey = "test"
	cfg.LLM.Model = "test-model"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithBaseURL points the LLM client at a test server.
func WithBaseURL(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.LLM.BaseURL = url
	}
}

// WithJudgePair registers a draft/judge pairing on the test config.
func WithJudgePair(draft, judge string, maxRounds int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Analysis.JudgePairs = append(cfg.Analysis.JudgePairs, config.JudgePair{
			Draft:     draft,
			Judge:     judge,
			MaxRounds: &maxRounds,
		})
	}
}
