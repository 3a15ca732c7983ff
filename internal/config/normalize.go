package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSources()
	c.normalizeHuggingFace()
	c.normalizeSummary()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSources() {
	c.Sources.GutenbergBaseURL = trimBaseURL(c.Sources.GutenbergBaseURL, defaultGutenbergBaseURL)
	c.Sources.OpenLibraryBaseURL = trimBaseURL(c.Sources.OpenLibraryBaseURL, defaultOpenLibraryBaseURL)
	c.Sources.GoogleBooksBaseURL = trimBaseURL(c.Sources.GoogleBooksBaseURL, defaultGoogleBooksBaseURL)
	c.Sources.GoogleBooksAPIKey = strings.TrimSpace(c.Sources.GoogleBooksAPIKey)
}

func (c *Config) normalizeHuggingFace() {
	c.HuggingFace.Token = strings.TrimSpace(c.HuggingFace.Token)
	c.HuggingFace.BaseURL = trimBaseURL(c.HuggingFace.BaseURL, defaultHFBaseURL)
	c.HuggingFace.SummaryModel = strings.TrimSpace(c.HuggingFace.SummaryModel)
	if c.HuggingFace.SummaryModel == "" {
		c.HuggingFace.SummaryModel = defaultSummaryModel
	}
	if c.HuggingFace.TimeoutSeconds <= 0 {
		c.HuggingFace.TimeoutSeconds = defaultHFTimeout
	}
}

func (c *Config) normalizeSummary() {
	languages := make([]string, 0, len(c.Summary.Languages))
	for _, lang := range c.Summary.Languages {
		lang = strings.ToLower(strings.TrimSpace(lang))
		if lang != "" {
			languages = append(languages, lang)
		}
	}
	if len(languages) == 0 {
		languages = []string{"en"}
	}
	c.Summary.Languages = languages

	styles := make([]string, 0, len(c.Summary.Styles))
	for _, style := range c.Summary.Styles {
		style = strings.ToLower(strings.TrimSpace(style))
		if style != "" {
			styles = append(styles, style)
		}
	}
	if len(styles) == 0 {
		styles = []string{"concise"}
	}
	c.Summary.Styles = styles
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func trimBaseURL(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return strings.TrimRight(value, "/")
}
