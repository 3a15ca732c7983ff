package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Weights contains the relevance scoring constants. Only the relative
// ordering is load-bearing; the values are tunable.
type Weights struct {
	TitleContains    float64 `toml:"title_contains"`
	TitleExact       float64 `toml:"title_exact"`
	TitlePrefix      float64 `toml:"title_prefix"`
	AuthorMatch      float64 `toml:"author_match"`
	AuthorExact      float64 `toml:"author_exact"`
	Description      float64 `toml:"description"`
	Quality          float64 `toml:"quality"`
	SourceFullText   float64 `toml:"source_fulltext"`
	SourceOpen       float64 `toml:"source_open"`
	SourceCommercial float64 `toml:"source_commercial"`
}

// Search contains aggregated-search tuning.
type Search struct {
	LimitCeiling         int     `toml:"limit_ceiling"`
	MinPerSource         int     `toml:"min_per_source"`
	SourceTimeoutSeconds int     `toml:"source_timeout_seconds"`
	CacheTTLSeconds      int     `toml:"cache_ttl_seconds"`
	CacheCapacity        int     `toml:"cache_capacity"`
	CacheReadTimeoutMS   int     `toml:"cache_read_timeout_ms"`
	Weights              Weights `toml:"weights"`
}

// Sources contains the external catalog endpoints.
type Sources struct {
	GutenbergBaseURL   string `toml:"gutenberg_base_url"`
	OpenLibraryBaseURL string `toml:"openlibrary_base_url"`
	GoogleBooksBaseURL string `toml:"googlebooks_base_url"`
	GoogleBooksAPIKey  string `toml:"googlebooks_api_key"`
}

// HuggingFace contains the inference API connection settings shared by
// summarization and speech synthesis.
type HuggingFace struct {
	Token          string `toml:"token"`
	BaseURL        string `toml:"base_url"`
	SummaryModel   string `toml:"summary_model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Summary contains summarization orchestration settings.
type Summary struct {
	Languages              []string `toml:"languages"`
	Styles                 []string `toml:"styles"`
	MaxInputChars          int      `toml:"max_input_chars"`
	MinSourceChars         int      `toml:"min_source_chars"`
	ResolveTimeoutSeconds  int      `toml:"resolve_timeout_seconds"`
	GenerateTimeoutSeconds int      `toml:"generate_timeout_seconds"`
}

// Audio contains speech synthesis settings.
type Audio struct {
	SynthTimeoutSeconds int    `toml:"synth_timeout_seconds"`
	BackupVoice         string `toml:"backup_voice"`
	WordsPerMinute      int    `toml:"words_per_minute"`
	MinSeconds          int    `toml:"min_seconds"`
	MaxSeconds          int    `toml:"max_seconds"`
}

// Background contains the async write queue settings.
type Background struct {
	QueueDepth int `toml:"queue_depth"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for libris.
type Config struct {
	Paths       Paths       `toml:"paths"`
	Search      Search      `toml:"search"`
	Sources     Sources     `toml:"sources"`
	HuggingFace HuggingFace `toml:"huggingface"`
	Summary     Summary     `toml:"summary"`
	Audio       Audio       `toml:"audio"`
	Background  Background  `toml:"background"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/libris/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a file was found at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("libris.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// Duration accessors for the second-denominated knobs.

func (c *Config) SourceTimeout() time.Duration {
	return time.Duration(c.Search.SourceTimeoutSeconds) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Search.CacheTTLSeconds) * time.Second
}

func (c *Config) CacheReadTimeout() time.Duration {
	return time.Duration(c.Search.CacheReadTimeoutMS) * time.Millisecond
}

func (c *Config) ResolveTimeout() time.Duration {
	return time.Duration(c.Summary.ResolveTimeoutSeconds) * time.Second
}

func (c *Config) GenerateTimeout() time.Duration {
	return time.Duration(c.Summary.GenerateTimeoutSeconds) * time.Second
}

func (c *Config) SynthTimeout() time.Duration {
	return time.Duration(c.Audio.SynthTimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
