package config

import (
	"net/url"
	"path/filepath"
	"strings"
	"time"

	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

// ValidateConfig validates the complete configuration after defaults were applied.
func ValidateConfig(cfg *Config) error {
	return newConfigurationValidator(cfg).validate()
}

// configurationValidator coordinates validation across configuration domains.
type configurationValidator struct {
	config *Config
}

func newConfigurationValidator(config *Config) *configurationValidator {
	return &configurationValidator{config: config}
}

func (cv *configurationValidator) validate() error {
	checks := []func() error{
		cv.validateSite,
		cv.validateCollection,
		cv.validateTemplates,
		cv.validateOutput,
		cv.validateDates,
		cv.validateWatch,
		cv.validateNotify,
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func invalid(field, message string, value any) error {
	return ferrors.ConfigError(message).
		WithContext("field", field).
		WithContext("value", value).
		Build()
}

func (cv *configurationValidator) validateSite() error {
	raw := cv.config.Site.BaseURL
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return invalid("site.base_url", "base_url must be an absolute URL", raw)
	}
	return nil
}

func (cv *configurationValidator) validateCollection() error {
	col := cv.config.Collection
	if strings.ContainsAny(col.Name, `/\`) {
		return invalid("collection.name", "collection name must not contain path separators", col.Name)
	}
	if _, err := filepath.Match(col.Source, ""); err != nil {
		return invalid("collection.source", "invalid source glob", col.Source)
	}
	if NormalizeFormat(string(col.Format)) == "" {
		return invalid("collection.format", "unsupported format (valid: "+strings.Join(formatNormalizer.Aliases(), ", ")+")", col.Format)
	}
	if filepath.Clean(col.OutputDir) == "." {
		return invalid("collection.output_dir", "output_dir must name a subdirectory of the output directory", col.OutputDir)
	}
	if filepath.IsAbs(col.OutputDir) || strings.HasPrefix(filepath.Clean(col.OutputDir), "..") {
		return invalid("collection.output_dir", "output_dir must stay inside the output directory", col.OutputDir)
	}
	if filepath.Clean(col.OutputDir) == "pages" {
		return invalid("collection.output_dir", "output_dir collides with the pages directory", col.OutputDir)
	}
	return nil
}

func (cv *configurationValidator) validateTemplates() error {
	t := cv.config.Templates
	names := map[string]string{
		"templates.document": t.Document,
		"templates.page":     t.Page,
		"templates.index":    t.Index,
	}
	for field, name := range names {
		if filepath.Base(name) != name {
			return invalid(field, "template must be a file name inside templates.dir", name)
		}
	}
	return nil
}

func (cv *configurationValidator) validateOutput() error {
	out := filepath.Clean(cv.config.OutputDir())
	if out == "." || out == string(filepath.Separator) {
		return invalid("output.directory", "refusing to use the working or root directory as output", cv.config.Output.Directory)
	}
	if !cv.config.Output.Clean {
		return nil
	}
	protected := []string{cv.config.BaseDir, cv.config.SourceRoot(), cv.config.TemplatesDir(), cv.config.StaticPath()}
	for _, dir := range protected {
		if dir != "" && containsPath(out, dir) {
			return invalid("output.directory", "refusing to clean a directory holding project sources", cv.config.Output.Directory)
		}
	}
	return nil
}

// containsPath reports whether dir equals parent or lies below it.
func containsPath(parent, dir string) bool {
	parent, errP := filepath.Abs(parent)
	dir, errD := filepath.Abs(dir)
	if errP != nil || errD != nil {
		return false
	}
	rel, err := filepath.Rel(parent, dir)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func (cv *configurationValidator) validateDates() error {
	if NormalizeDatePolicy(string(cv.config.Dates.Policy)) == "" {
		return invalid("dates.policy", "unsupported date policy (valid: "+strings.Join(datePolicyNormalizer.Aliases(), ", ")+")", cv.config.Dates.Policy)
	}
	if _, err := cv.config.Dates.Location(); err != nil {
		return invalid("dates.timezone", "unknown timezone", cv.config.Dates.Timezone)
	}
	return nil
}

func (cv *configurationValidator) validateWatch() error {
	w := cv.config.Watch
	if _, err := time.ParseDuration(w.Debounce); err != nil {
		return invalid("watch.debounce", "debounce must be a Go duration", w.Debounce)
	}
	if w.Schedule == "" {
		return nil
	}
	if d, err := time.ParseDuration(w.Schedule); err == nil {
		if d < time.Second {
			return invalid("watch.schedule", "schedule interval must be at least 1s", w.Schedule)
		}
		return nil
	}
	if len(strings.Fields(w.Schedule)) != 5 {
		return invalid("watch.schedule", "schedule must be a duration or a 5-field cron expression", w.Schedule)
	}
	return nil
}

func (cv *configurationValidator) validateNotify() error {
	r := cv.config.Notify.Retry
	switch r.Backoff {
	case "", "fixed", "linear", "exponential":
	default:
		return invalid("notify.retry.backoff", "unsupported backoff (valid: fixed, linear, exponential)", r.Backoff)
	}
	for field, raw := range map[string]string{"notify.retry.initial": r.Initial, "notify.retry.max": r.Max} {
		if raw == "" {
			continue
		}
		if d, err := time.ParseDuration(raw); err != nil || d <= 0 {
			return invalid(field, "retry delay must be a positive Go duration", raw)
		}
	}
	if r.MaxRetries != nil && *r.MaxRetries < 0 {
		return invalid("notify.retry.max_retries", "max_retries cannot be negative", *r.MaxRetries)
	}
	return nil
}
