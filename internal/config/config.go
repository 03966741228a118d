package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Source selects how the remote timetable is retrieved.
const (
	SourceAPI     = "api"     // JSON timetable endpoint
	SourceHTML    = "html"    // legacy server-rendered HTML table
	SourceBrowser = "browser" // legacy table behind a script-rendered page
)

// WindowConfig describes the month window fetched around the current
// month: offsets -Before .. +After inclusive. {1, 1} covers the
// previous, current and next month.
type WindowConfig struct {
	Before int `yaml:"before" json:"before"`
	After  int `yaml:"after" json:"after"`
}

// ColumnConfig maps fixed table column positions for the legacy HTML
// source. Positions are zero-based cell indexes within a row.
type ColumnConfig struct {
	Date        int `yaml:"date" json:"date"`
	StartTime   int `yaml:"start_time" json:"start_time"`
	EndTime     int `yaml:"end_time" json:"end_time"`
	Title       int `yaml:"title" json:"title"`
	Location    int `yaml:"location" json:"location"`
	Description int `yaml:"description" json:"description"`
}

// HTMLConfig configures the legacy HTML table source.
type HTMLConfig struct {
	// RowSelector is the CSS selector yielding one schedule row per match.
	RowSelector string `yaml:"row_selector" json:"row_selector"`

	Columns ColumnConfig `yaml:"columns" json:"columns"`
}

// Config is the top-level application configuration.
type Config struct {
	// Source is one of "api", "html", "browser".
	Source string `yaml:"source" json:"source"`

	// URL is the timetable endpoint. For the API source it should carry a
	// ym=YYYY-MM query token; the token's value is rewritten per window
	// month. Without the token a single request is issued.
	URL string `yaml:"url" json:"url"`

	// Timezone is the IANA zone the upstream's local date-times are
	// expressed in (e.g. "Asia/Shanghai").
	Timezone string `yaml:"timezone" json:"timezone"`

	// CalendarName is the display name embedded in the calendar document.
	CalendarName string `yaml:"calendar_name" json:"calendar_name"`

	// OutputPath is where the .ics file is written.
	OutputPath string `yaml:"output" json:"output"`

	// CookieEnv names the environment variable holding the Cookie header
	// value. An unset or empty variable means an unauthenticated request.
	CookieEnv string `yaml:"cookie_env" json:"cookie_env"`

	// UserAgent is sent on every upstream request.
	UserAgent string `yaml:"user_agent" json:"user_agent"`

	// TimeoutSeconds bounds each upstream request.
	TimeoutSeconds int `yaml:"timeout_seconds" json:"timeout_seconds"`

	Window WindowConfig `yaml:"window" json:"window"`

	// DefaultDurationMinutes is the synthesized event length when the
	// upstream implies a missing or non-positive duration.
	DefaultDurationMinutes int `yaml:"default_duration_minutes" json:"default_duration_minutes"`

	HTML HTMLConfig `yaml:"html" json:"html"`

	// RefreshCron is a cron-style schedule string (e.g. "*/30 * * * *").
	// If empty, the program runs once and exits.
	RefreshCron string `yaml:"refresh" json:"refresh"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Source:       SourceAPI,
		URL:          "",
		Timezone:     "Asia/Shanghai",
		CalendarName: "Company Courses",
		OutputPath:   "schedule.ics",
		CookieEnv:    "COOKIES",
		UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
			"(KHTML, like Gecko) Chrome/124.0 Safari/537.36",
		TimeoutSeconds:         20,
		Window:                 WindowConfig{Before: 1, After: 1},
		DefaultDurationMinutes: 80,
		HTML: HTMLConfig{
			RowSelector: "table.timetable tbody tr",
			Columns: ColumnConfig{
				Date:        0,
				StartTime:   1,
				EndTime:     2,
				Title:       3,
				Location:    4,
				Description: 5,
			},
		},
		RefreshCron: "",
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()

	switch c.Source {
	case SourceAPI, SourceHTML, SourceBrowser:
		// ok
	default:
		c.Source = SourceAPI
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.CalendarName == "" {
		c.CalendarName = def.CalendarName
	}
	if c.OutputPath == "" {
		c.OutputPath = def.OutputPath
	}
	if c.CookieEnv == "" {
		c.CookieEnv = def.CookieEnv
	}
	if c.UserAgent == "" {
		c.UserAgent = def.UserAgent
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = def.TimeoutSeconds
	}
	// Window offsets may legitimately be zero; only repair negatives.
	if c.Window.Before < 0 {
		c.Window.Before = -c.Window.Before
	}
	if c.Window.After < 0 {
		c.Window.After = -c.Window.After
	}
	if c.DefaultDurationMinutes <= 0 {
		c.DefaultDurationMinutes = def.DefaultDurationMinutes
	}
	if c.HTML.RowSelector == "" {
		c.HTML.RowSelector = def.HTML.RowSelector
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600 (the cookie env name is
//     not a secret, but configs tend to accumulate them).
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".coursecal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the
// package-level Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
