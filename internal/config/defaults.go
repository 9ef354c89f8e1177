package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultPageSize    = 5
	DefaultConcurrency = 8
	DefaultFeedLimit   = 20
	DefaultOutputDir   = "public"
	DefaultSubject     = "blogbuilder.builds"

	defaultDebounce = 300 * time.Millisecond
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// ApplyDefaults runs every domain applier in order.
func ApplyDefaults(cfg *Config) error {
	appliers := []DefaultApplier{
		&SiteDefaultApplier{},
		&CollectionDefaultApplier{},
		&TemplatesDefaultApplier{},
		&OutputDefaultApplier{},
		&RuntimeDefaultApplier{},
	}
	for _, a := range appliers {
		if err := a.ApplyDefaults(cfg); err != nil {
			return fmt.Errorf("apply %s defaults: %w", a.Domain(), err)
		}
	}
	return nil
}

// SiteDefaultApplier handles site metadata defaults.
type SiteDefaultApplier struct{}

func (s *SiteDefaultApplier) Domain() string { return "site" }

func (s *SiteDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Site.Title == "" {
		cfg.Site.Title = "Blog"
	}
	if cfg.Site.Language == "" {
		cfg.Site.Language = "en"
	}
	cfg.Site.BaseURL = strings.TrimRight(cfg.Site.BaseURL, "/")
	return nil
}

// CollectionDefaultApplier derives collection paths from its name.
type CollectionDefaultApplier struct{}

func (c *CollectionDefaultApplier) Domain() string { return "collection" }

func (c *CollectionDefaultApplier) ApplyDefaults(cfg *Config) error {
	col := &cfg.Collection
	col.Name = strings.Trim(strings.TrimSpace(col.Name), "/")
	if col.Name == "" {
		col.Name = PresetArticles
	}
	if col.Format == "" {
		col.Format = FormatMarkdown
	} else if f := NormalizeFormat(string(col.Format)); f != "" {
		col.Format = f
	}
	if col.Source == "" {
		col.Source = col.Name + "/*" + col.Format.Extension()
	}
	if col.Route == "" {
		col.Route = "/" + col.Name
	}
	col.Route = "/" + strings.Trim(col.Route, "/")
	if col.OutputDir == "" {
		col.OutputDir = strings.TrimPrefix(col.Route, "/")
	}
	if col.PageSize <= 0 {
		col.PageSize = DefaultPageSize
	}
	return nil
}

// TemplatesDefaultApplier handles layout template defaults.
type TemplatesDefaultApplier struct{}

func (t *TemplatesDefaultApplier) Domain() string { return "templates" }

func (t *TemplatesDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Templates.Dir == "" {
		cfg.Templates.Dir = "templates"
	}
	if cfg.Templates.Document == "" {
		cfg.Templates.Document = documentTemplateFor(cfg.Collection.Name)
	}
	if cfg.Templates.Page == "" {
		cfg.Templates.Page = "page.html"
	}
	if cfg.Templates.Index == "" {
		cfg.Templates.Index = "index.html"
	}
	return nil
}

// OutputDefaultApplier handles output and static asset defaults.
type OutputDefaultApplier struct{}

func (o *OutputDefaultApplier) Domain() string { return "output" }

func (o *OutputDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Output.Directory == "" {
		cfg.Output.Directory = DefaultOutputDir
	}
	if cfg.StaticDir == "" {
		cfg.StaticDir = "static"
	}
	if cfg.Feeds.Limit <= 0 {
		cfg.Feeds.Limit = DefaultFeedLimit
	}
	return nil
}

// RuntimeDefaultApplier handles dates, concurrency, notify and watch defaults.
type RuntimeDefaultApplier struct{}

func (r *RuntimeDefaultApplier) Domain() string { return "runtime" }

func (r *RuntimeDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Dates.Policy == "" {
		cfg.Dates.Policy = DatePolicyError
	} else if p := NormalizeDatePolicy(string(cfg.Dates.Policy)); p != "" {
		cfg.Dates.Policy = p
	}
	if cfg.Build.Concurrency <= 0 {
		cfg.Build.Concurrency = DefaultConcurrency
	}
	if cfg.Notify.Subject == "" {
		cfg.Notify.Subject = DefaultSubject
	}
	if cfg.Watch.Debounce == "" {
		cfg.Watch.Debounce = defaultDebounce.String()
	}
	return nil
}
