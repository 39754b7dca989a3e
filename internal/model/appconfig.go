package model

import "strings"

// Default viewer settings.
const (
	DefaultCascadeStep  = 15
	DefaultWindowWidth  = 600
	DefaultWindowHeight = 600
	DefaultInfoFraction = 0.2
	DefaultMaxRecent    = 10
)

// AppConfig holds application-wide preferences.
type AppConfig struct {
	// Viewer window placement and size
	CascadeStep  int     `toml:"cascade_step" yaml:"cascade_step"` // pixels per opened window
	WindowWidth  int     `toml:"window_width" yaml:"window_width"`
	WindowHeight int     `toml:"window_height" yaml:"window_height"`
	InfoFraction float64 `toml:"info_fraction" yaml:"info_fraction"` // share of the window given to the header summary

	// File picker filter, lowercase with leading dot
	Extensions []string `toml:"extensions" yaml:"extensions"`

	// Application preferences
	MaximizeMain bool     `toml:"maximize_main" yaml:"maximize_main"`
	Theme        string   `toml:"theme" yaml:"theme"` // "light", "dark", "system"
	MaxRecent    int      `toml:"max_recent" yaml:"max_recent"`
	RecentFiles  []string `toml:"recent_files" yaml:"recent_files"`
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		CascadeStep:  DefaultCascadeStep,
		WindowWidth:  DefaultWindowWidth,
		WindowHeight: DefaultWindowHeight,
		InfoFraction: DefaultInfoFraction,
		Extensions:   []string{".fits", ".fit", ".fts"},
		MaximizeMain: true,
		Theme:        "system",
		MaxRecent:    DefaultMaxRecent,
		RecentFiles:  []string{},
	}
}

// Normalize replaces zero or out-of-range values with defaults so a partially
// written config file still yields a usable configuration.
func (c *AppConfig) Normalize() {
	defaults := DefaultAppConfig()
	if c.CascadeStep < 0 {
		c.CascadeStep = defaults.CascadeStep
	}
	if c.WindowWidth <= 0 {
		c.WindowWidth = defaults.WindowWidth
	}
	if c.WindowHeight <= 0 {
		c.WindowHeight = defaults.WindowHeight
	}
	if c.InfoFraction <= 0 || c.InfoFraction >= 1 {
		c.InfoFraction = defaults.InfoFraction
	}
	if len(c.Extensions) == 0 {
		c.Extensions = defaults.Extensions
	}
	for i, ext := range c.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Extensions[i] = ext
	}
	switch c.Theme {
	case "light", "dark", "system":
	default:
		c.Theme = defaults.Theme
	}
	if c.MaxRecent <= 0 {
		c.MaxRecent = defaults.MaxRecent
	}
	// Ensure RecentFiles is never nil
	if c.RecentFiles == nil {
		c.RecentFiles = []string{}
	}
	if len(c.RecentFiles) > c.MaxRecent {
		c.RecentFiles = c.RecentFiles[:c.MaxRecent]
	}
}

// AddRecentFile moves path to the front of the recent list, dropping any
// earlier occurrence and trimming the list to MaxRecent entries.
func (c *AppConfig) AddRecentFile(path string) {
	if path == "" {
		return
	}
	limit := c.MaxRecent
	if limit <= 0 {
		limit = DefaultMaxRecent
	}
	recent := make([]string, 0, len(c.RecentFiles)+1)
	recent = append(recent, path)
	for _, p := range c.RecentFiles {
		if p != path {
			recent = append(recent, p)
		}
	}
	if len(recent) > limit {
		recent = recent[:limit]
	}
	c.RecentFiles = recent
}
