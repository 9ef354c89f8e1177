package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "blog.yaml"

// Config represents the blogbuilder configuration file.
type Config struct {
	Site       SiteConfig       `yaml:"site"`
	Collection CollectionConfig `yaml:"collection"`
	Templates  TemplatesConfig  `yaml:"templates"`
	Output     OutputConfig     `yaml:"output"`
	StaticDir  string           `yaml:"static_dir,omitempty"`
	Dates      DatesConfig      `yaml:"dates"`
	Build      BuildConfig      `yaml:"build"`
	Feeds      FeedsConfig      `yaml:"feeds"`
	Monitoring MonitoringConfig `yaml:"monitoring,omitempty"`
	Notify     NotifyConfig     `yaml:"notify,omitempty"`
	Watch      WatchConfig      `yaml:"watch,omitempty"`

	// BaseDir anchors relative paths. Load sets it to the config file's directory.
	BaseDir string `yaml:"-"`
}

// SiteConfig is injected unchanged into every render context.
type SiteConfig struct {
	Title       string         `yaml:"title"`
	Author      string         `yaml:"author,omitempty"`
	Description string         `yaml:"description,omitempty"`
	BaseURL     string         `yaml:"base_url,omitempty"`
	Language    string         `yaml:"language,omitempty"`
	Params      map[string]any `yaml:"params,omitempty"`
}

// CollectionConfig describes where content records come from and where they are published.
type CollectionConfig struct {
	Name       string `yaml:"name"`
	Source     string `yaml:"source"`     // glob relative to BaseDir
	Route      string `yaml:"route"`      // link prefix, e.g. /articles
	OutputDir  string `yaml:"output_dir"` // subdirectory below the output root
	LinkSuffix string `yaml:"link_suffix,omitempty"`
	Format     Format `yaml:"format"`
	PageSize   int    `yaml:"page_size"`
}

// TemplatesConfig names the layout templates inside Dir.
type TemplatesConfig struct {
	Dir      string `yaml:"dir"`
	Document string `yaml:"document"`
	Page     string `yaml:"page"`
	Index    string `yaml:"index"`
}

// OutputConfig represents output configuration.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"` // Remove the output directory before building
}

// DatesConfig controls how date attributes are interpreted.
type DatesConfig struct {
	Policy   DatePolicy `yaml:"policy"`
	Timezone string     `yaml:"timezone,omitempty"`
}

// BuildConfig tunes the build pipeline.
type BuildConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// FeedsConfig controls RSS and sitemap generation.
type FeedsConfig struct {
	Enabled *bool `yaml:"enabled,omitempty"`
	Limit   int   `yaml:"limit"`
}

// MonitoringConfig configures metrics export.
type MonitoringConfig struct {
	MetricsFile string `yaml:"metrics_file,omitempty"` // Prometheus textfile collector output
}

// NotifyConfig configures build event publishing.
type NotifyConfig struct {
	NATSURL string      `yaml:"nats_url,omitempty"`
	Subject string      `yaml:"subject,omitempty"`
	Retry   RetryConfig `yaml:"retry,omitempty"`
}

// RetryConfig controls how often a failed publish is retried.
type RetryConfig struct {
	Backoff    string `yaml:"backoff,omitempty"` // fixed|linear|exponential
	Initial    string `yaml:"initial,omitempty"`
	Max        string `yaml:"max,omitempty"`
	MaxRetries *int   `yaml:"max_retries,omitempty"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	Debounce string `yaml:"debounce,omitempty"`
	Schedule string `yaml:"schedule,omitempty"` // Go duration or cron expression
}

// IsEnabled reports whether feeds are generated. Feeds are on unless explicitly disabled.
func (f FeedsConfig) IsEnabled() bool {
	return f.Enabled == nil || *f.Enabled
}

// Location resolves the configured timezone.
func (d DatesConfig) Location() (*time.Location, error) {
	if d.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(d.Timezone)
}

// DebounceDuration parses Watch.Debounce, falling back to the default.
func (w WatchConfig) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(w.Debounce)
	if err != nil || d <= 0 {
		return defaultDebounce
	}
	return d
}

// ResolvePath anchors p at BaseDir unless it is absolute.
func (c *Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) || c.BaseDir == "" {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

// SourcePattern returns the resolved collection glob.
func (c *Config) SourcePattern() string { return c.ResolvePath(c.Collection.Source) }

// SourceRoot returns the longest directory prefix of the source glob without
// glob metacharacters.
func (c *Config) SourceRoot() string { return globRoot(c.SourcePattern()) }

func globRoot(pattern string) string {
	dir := filepath.Dir(pattern)
	for strings.ContainsAny(dir, "*?[\\") {
		dir = filepath.Dir(dir)
	}
	return dir
}

// OutputDir returns the resolved output root.
func (c *Config) OutputDir() string { return c.ResolvePath(c.Output.Directory) }

// TemplatesDir returns the resolved template directory.
func (c *Config) TemplatesDir() string { return c.ResolvePath(c.Templates.Dir) }

// StaticPath returns the resolved static asset directory, or "" when unset.
func (c *Config) StaticPath() string { return c.ResolvePath(c.StaticDir) }

// Load reads, expands, defaults and validates the configuration at configPath.
func Load(configPath string) (*Config, error) {
	baseDir := filepath.Dir(configPath)
	loadEnvFiles(baseDir)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ferrors.ConfigError("configuration file not found").
				WithContext("file", configPath).
				Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to read config file").
			Fatal().
			WithContext("file", configPath).
			Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to parse config file").
			Fatal().
			WithContext("file", configPath).
			Build()
	}
	cfg.BaseDir = baseDir

	if err := ApplyDefaults(cfg); err != nil {
		return nil, err
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML after expanding ${VAR} references from the environment.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))
	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Init creates a new configuration file with example content for preset.
func Init(configPath string, force bool, preset string) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("file", configPath).
			Build()
	}
	if preset == "" {
		preset = PresetArticles
	}

	example := &Config{
		Site: SiteConfig{
			Title:       "My Blog",
			Author:      "Jane Doe",
			Description: "Notes and articles",
			BaseURL:     "https://example.com",
			Language:    "en",
		},
		Collection: CollectionConfig{Name: preset},
		Dates:      DatesConfig{Timezone: "UTC"},
		Watch:      WatchConfig{Debounce: "300ms"},
	}
	if err := ApplyDefaults(example); err != nil {
		return err
	}

	data, err := yaml.Marshal(example)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to marshal config").Fatal().Build()
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write config file").
			Fatal().
			WithContext("file", configPath).
			Build()
	}
	return nil
}
