package content

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/blogbuilder/internal/attributes"
	"git.home.luguber.info/inful/blogbuilder/internal/config"
	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

// structuralKeys are record fields that attributes may not override.
var structuralKeys = []string{"basename", "link", "body", "excerpt"}

// ModTimeSource reports when a source file last changed, e.g. from version control.
type ModTimeSource interface {
	LastModified(path string) (time.Time, error)
}

// Options configures a Loader.
type Options struct {
	Route       string
	LinkSuffix  string
	Format      config.Format
	Concurrency int
	Site        config.SiteConfig
	Dates       attributes.Options
	ModTimes    ModTimeSource // optional
	Logger      *slog.Logger
}

// OptionsFromConfig derives loader options from the blog configuration.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	loc, err := cfg.Dates.Location()
	if err != nil {
		return Options{}, ferrors.WrapError(err, ferrors.CategoryConfig, "unknown timezone").Fatal().Build()
	}
	return Options{
		Route:       cfg.Collection.Route,
		LinkSuffix:  cfg.Collection.LinkSuffix,
		Format:      cfg.Collection.Format,
		Concurrency: cfg.Build.Concurrency,
		Site:        cfg.Site,
		Dates: attributes.Options{
			Location:           loc,
			EpochOnInvalidDate: cfg.Dates.Policy == config.DatePolicyEpoch,
		},
	}, nil
}

// Loader turns source files into records.
type Loader struct {
	opts     Options
	renderer *documentRenderer
	logger   *slog.Logger
}

// NewLoader creates a Loader.
func NewLoader(opts Options) *Loader {
	if opts.Format == "" {
		opts.Format = config.FormatMarkdown
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = config.DefaultConcurrency
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{opts: opts, renderer: newDocumentRenderer(opts.Format), logger: logger}
}

// Discover expands pattern into a sorted list of regular files.
func Discover(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, ferrors.WrapError(errors.Join(ErrBadPattern, err), ferrors.CategoryValidation, "invalid source pattern").
			Fatal().
			WithContext("pattern", pattern).
			Build()
	}
	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		paths = append(paths, m)
	}
	sort.Strings(paths)
	return paths, nil
}

// Load reads every path concurrently, then returns the records sorted newest first
// with their neighbour links threaded. The first failure aborts the load.
func (l *Loader) Load(ctx context.Context, paths []string) ([]*Record, error) {
	records := make([]*Record, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.Concurrency)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := l.LoadFile(path)
			if err != nil {
				return err
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := checkUniqueBasenames(records); err != nil {
		return nil, err
	}

	Sort(records)
	Thread(records)
	return records, nil
}

// LoadFile reads and renders a single source file. Neighbour links are left empty.
func (l *Loader) LoadFile(path string) (*Record, error) {
	// #nosec G304 -- path comes from the configured source glob
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, ferrors.WrapError(errors.Join(ErrReadSource, err), ferrors.CategoryFileSystem, "failed to read source").
			Fatal().
			WithContext("file", path).
			Build()
	}
	src := string(raw)

	dateOpts := l.opts.Dates
	dateOpts.OnInvalidDate = func(value string, err error) {
		l.logger.Warn("Invalid date attribute, using epoch",
			logfields.File(path), slog.String("value", value), logfields.Error(err))
	}
	dateOpts.OnReserved = func(name string) {
		l.logger.Warn("Attribute is derived and cannot be set; ignoring it",
			logfields.File(path), logfields.Attribute(name))
	}
	attrs, err := attributes.Extract(raw, dateOpts)
	if err != nil {
		if classified, ok := ferrors.AsClassified(err); ok {
			return nil, classified.WithContext("file", path)
		}
		return nil, err
	}

	basename := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	rec := &Record{
		Basename:   basename,
		Link:       strings.TrimRight(l.opts.Route, "/") + "/" + basename + l.opts.LinkSuffix,
		SourcePath: path,
		Attributes: attrs,
		Title:      attrs.Title(),
		Date:       attrs.Date(),
		Timestamp:  attrs.Timestamp(),
		Tags:       attrs.Tags(),
	}
	if rec.Title == "" {
		rec.Title = titleFromBasename(basename)
	}
	for _, key := range structuralKeys {
		if _, clash := attrs[key]; clash {
			l.logger.Warn("Attribute collides with a structural field and is ignored",
				logfields.File(path), logfields.Attribute(key))
			delete(attrs, key)
		}
	}

	data := DocumentData{Attributes: attrs, Basename: basename, Link: rec.Link, Site: l.opts.Site}
	body := stripMarkerLines(src)
	if rec.Body, err = l.renderer.render(path, body, data); err != nil {
		return nil, templateError(err, path)
	}

	before, after, found := splitMore(src)
	rec.Excerpt = rec.Body
	if found {
		if rec.Excerpt, err = l.renderer.render(path+"#excerpt", stripMarkerLines(before), data); err != nil {
			return nil, templateError(err, path)
		}
		rec.HasMore = strings.TrimSpace(stripMarkerLines(after)) != ""
	}
	rec.Summary = plainText(string(rec.Excerpt), summaryLimit)
	rec.Fingerprint = fingerprint(attrs, body)

	if l.opts.ModTimes != nil {
		updated, err := l.opts.ModTimes.LastModified(path)
		if err != nil {
			l.logger.Debug("No commit time for source", logfields.File(path), logfields.Error(err))
		}
		rec.Updated = updated
	}

	l.logger.Debug("Loaded document", logfields.File(path), logfields.Basename(basename), logfields.Link(rec.Link))
	return rec, nil
}

// checkUniqueBasenames rejects sources that would share a link and an output file.
func checkUniqueBasenames(records []*Record) error {
	seen := make(map[string]string, len(records))
	for _, rec := range records {
		if first, dup := seen[rec.Basename]; dup {
			return ferrors.WrapError(ErrDuplicateBasename, ferrors.CategoryValidation, "two sources share a basename").
				Fatal().
				UserAction().
				WithContext("basename", rec.Basename).
				WithContext("file", first).
				WithContext("other", rec.SourcePath).
				Build()
		}
		seen[rec.Basename] = rec.SourcePath
	}
	return nil
}

func templateError(err error, path string) error {
	return ferrors.WrapError(err, ferrors.CategoryTemplate, "failed to render document").
		Fatal().
		UserAction().
		WithContext("file", path).
		Build()
}
