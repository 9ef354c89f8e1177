package site

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"
	"path/filepath"
	"strconv"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/content"
	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/pagination"
)

// PagesDir is the output subdirectory for listing pages.
const PagesDir = "pages"

// Options configures a Renderer.
type Options struct {
	TemplatesDir  string
	Templates     config.TemplatesConfig
	OutputDir     string
	CollectionDir string // subdirectory of OutputDir for document pages
	Site          config.SiteConfig
	CacheBuster   string
	Concurrency   int
	Logger        *slog.Logger
}

// OptionsFromConfig derives renderer options from the blog configuration.
func OptionsFromConfig(cfg *config.Config, cacheBuster string) Options {
	return Options{
		TemplatesDir:  cfg.TemplatesDir(),
		Templates:     cfg.Templates,
		OutputDir:     cfg.OutputDir(),
		CollectionDir: cfg.Collection.OutputDir,
		Site:          cfg.Site,
		CacheBuster:   cacheBuster,
		Concurrency:   cfg.Build.Concurrency,
	}
}

// Renderer writes documents, listing pages and the index. Parsed layouts are
// shared read-only between render goroutines.
type Renderer struct {
	opts    Options
	layouts *layouts
	logger  *slog.Logger
}

// NewRenderer parses the layout templates.
func NewRenderer(opts Options) (*Renderer, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = config.DefaultConcurrency
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	l, err := loadLayouts(opts.TemplatesDir, opts.Templates, funcMap(opts.Site, opts.CacheBuster))
	if err != nil {
		return nil, err
	}
	return &Renderer{opts: opts, layouts: l, logger: logger}, nil
}

// DocumentPath is the output file of a record.
func (r *Renderer) DocumentPath(rec *content.Record) string {
	return filepath.Join(r.opts.OutputDir, r.opts.CollectionDir, rec.Basename+".html")
}

// PagePath is the output file of a listing page.
func (r *Renderer) PagePath(p *pagination.Page) string {
	return filepath.Join(r.opts.OutputDir, PagesDir, strconv.Itoa(p.Index)+".html")
}

// IndexPath is the site entry point.
func (r *Renderer) IndexPath() string {
	return filepath.Join(r.opts.OutputDir, "index.html")
}

// RenderDocuments writes one HTML file per record of every page.
func (r *Renderer) RenderDocuments(ctx context.Context, props Props) (int, error) {
	tmpl := r.layouts.lookup(r.opts.Templates.Document)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)
	count := 0
	for _, page := range props.Pages {
		for _, rec := range page.Records {
			count++
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				return r.render(tmpl, r.DocumentPath(rec), DocumentContext{Props: props, Record: rec})
			})
		}
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return count, nil
}

// RenderPages writes one HTML file per listing page.
func (r *Renderer) RenderPages(ctx context.Context, props Props) (int, error) {
	tmpl := r.layouts.lookup(r.opts.Templates.Page)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)
	for _, page := range props.Pages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return r.render(tmpl, r.PagePath(page), PageContext{Props: props, Page: page})
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(props.Pages), nil
}

// RenderIndex writes index.html from the first page.
func (r *Renderer) RenderIndex(ctx context.Context, props Props) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(props.Pages) == 0 {
		return ferrors.InternalError("no pages to render the index from").Build()
	}
	tmpl := r.layouts.lookup(r.opts.Templates.Index)
	return r.render(tmpl, r.IndexPath(), PageContext{Props: props, Page: props.Pages[0]})
}

func (r *Renderer) render(tmpl *template.Template, path string, data any) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryTemplate, "failed to execute layout template").
			Fatal().
			UserAction().
			WithContext("template", tmpl.Name()).
			WithContext("path", path).
			Build()
	}
	if err := writeFile(path, buf.Bytes()); err != nil {
		return err
	}
	r.logger.Debug("Wrote file", logfields.Path(path), logfields.Template(tmpl.Name()))
	return nil
}
