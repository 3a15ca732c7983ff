package config

import (
	"fmt"
	"strings"

	"libris/internal/services/hf"
)

// Validate checks the configuration for values that would break operation.
func (c *Config) Validate() error {
	var problems []string

	if c.Search.LimitCeiling <= 0 {
		problems = append(problems, "search.limit_ceiling must be positive")
	}
	if c.Search.MinPerSource <= 0 {
		problems = append(problems, "search.min_per_source must be positive")
	}
	if c.Search.SourceTimeoutSeconds <= 0 {
		problems = append(problems, "search.source_timeout_seconds must be positive")
	}
	if c.Search.CacheCapacity <= 0 {
		problems = append(problems, "search.cache_capacity must be positive")
	}
	if c.Search.CacheTTLSeconds <= 0 {
		problems = append(problems, "search.cache_ttl_seconds must be positive")
	}
	for _, lang := range c.Summary.Languages {
		if !hf.SupportedLanguage(lang) {
			problems = append(problems, fmt.Sprintf("summary.languages: %q has no prompt form or voice (supported: %s)",
				lang, strings.Join(hf.Languages(), ", ")))
		}
	}
	for _, style := range c.Summary.Styles {
		if !hf.SupportedStyle(style) {
			problems = append(problems, fmt.Sprintf("summary.styles: %q has no prompt template (supported: %s)",
				style, strings.Join(hf.Styles(), ", ")))
		}
	}
	if c.Summary.MaxInputChars <= 0 {
		problems = append(problems, "summary.max_input_chars must be positive")
	}
	if c.Summary.ResolveTimeoutSeconds <= 0 {
		problems = append(problems, "summary.resolve_timeout_seconds must be positive")
	}
	if c.Summary.GenerateTimeoutSeconds <= 0 {
		problems = append(problems, "summary.generate_timeout_seconds must be positive")
	}
	if c.Audio.WordsPerMinute <= 0 {
		problems = append(problems, "audio.words_per_minute must be positive")
	}
	if c.Audio.MinSeconds <= 0 || c.Audio.MaxSeconds < c.Audio.MinSeconds {
		problems = append(problems, "audio.min_seconds/max_seconds must describe a valid range")
	}
	if c.Background.QueueDepth <= 0 {
		problems = append(problems, "background.queue_depth must be positive")
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format: unsupported value %q", c.Logging.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
