package config

import (
	"fmt"
	"net/url"
	"slices"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
)

var logFormats = []string{"text", "json", "logfmt"}

// Validate checks the configuration before a run.
func (c *Config) Validate() error {
	if err := c.Wordbook.validate(); err != nil {
		return fmt.Errorf("wordbook: %w", err)
	}
	if err := c.Browser.validate(); err != nil {
		return fmt.Errorf("browser: %w", err)
	}
	if err := c.Log.validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

func (w *WordbookConfig) validate() error {
	u, err := url.Parse(w.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("url must be an absolute http(s) URL (got %q)", w.URL)
	}
	if strings.TrimSpace(w.Collection) == "" {
		return fmt.Errorf("collection name is required")
	}
	if w.Pages < 1 {
		return fmt.Errorf("pages must be >= 1 (got %d)", w.Pages)
	}
	if strings.TrimSpace(w.OutputDir) == "" {
		return fmt.Errorf("output_dir is required")
	}
	if strings.TrimSpace(w.FileName) == "" {
		return fmt.Errorf("file_name is required")
	}
	return nil
}

func (b *BrowserConfig) validate() error {
	timeouts := b.timeouts()
	names := make([]string, 0, len(timeouts))
	for name := range timeouts {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if timeouts[name] <= 0 {
			return fmt.Errorf("%s must be > 0 (got %v)", name, timeouts[name])
		}
	}
	if b.WindowWidth < 0 || b.WindowHeight < 0 {
		return fmt.Errorf("window size must not be negative (got %dx%d)", b.WindowWidth, b.WindowHeight)
	}
	return nil
}

func (l *LogConfig) validate() error {
	if _, err := log.ParseLevel(l.Level); err != nil {
		return fmt.Errorf("level: %w", err)
	}
	if !slices.Contains(logFormats, strings.ToLower(l.Format)) {
		return fmt.Errorf("format must be one of %v (got %q)", logFormats, l.Format)
	}
	return nil
}
