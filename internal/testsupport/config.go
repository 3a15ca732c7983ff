package testsupport

import (
	"path/filepath"
	"testing"

	"libris/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.HuggingFace.Token = "hf_test_token"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithHFToken sets the Hugging Face API token on the test config.
func WithHFToken(token string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.HuggingFace.Token = token
	}
}

// WithSummaryLimits overrides the summarization input bounds.
func WithSummaryLimits(minSourceChars, maxInputChars int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Summary.MinSourceChars = minSourceChars
		cfg.Summary.MaxInputChars = maxInputChars
	}
}
