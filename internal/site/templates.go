package site

import (
	"html/template"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/content"
	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

// PartialsDir holds templates shared by every layout.
const PartialsDir = "partials"

// layouts holds one parsed template set per layout file.
type layouts struct {
	names config.TemplatesConfig
	sets  map[string]*template.Template
}

func funcMap(site config.SiteConfig, cacheBuster string) template.FuncMap {
	return template.FuncMap{
		"asset": func(p string) string {
			if cacheBuster == "" {
				return p
			}
			sep := "?"
			if strings.Contains(p, "?") {
				sep = "&"
			}
			return p + sep + "v=" + url.QueryEscape(cacheBuster)
		},
		"absURL": func(p string) string { return AbsURL(site.BaseURL, p) },
		"formatDate": func(layout string, t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format(layout)
		},
		"join": strings.Join,
		"attr": func(rec *content.Record, name string) string {
			if rec == nil {
				return ""
			}
			return rec.Attributes.String(name)
		},
	}
}

// loadLayouts parses the document, page and index layouts from dir. Every
// layout sees the templates in dir/partials.
func loadLayouts(dir string, names config.TemplatesConfig, funcs template.FuncMap) (*layouts, error) {
	base := template.New("").Funcs(funcs)
	partials, err := filepath.Glob(filepath.Join(dir, PartialsDir, "*.html"))
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryTemplate, "invalid partials pattern").Fatal().Build()
	}
	if len(partials) > 0 {
		if base, err = base.ParseFiles(partials...); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryTemplate, "failed to parse partial templates").
				Fatal().
				UserAction().
				WithContext("path", filepath.Join(dir, PartialsDir)).
				Build()
		}
	}

	l := &layouts{names: names, sets: make(map[string]*template.Template, 3)}
	for _, name := range []string{names.Document, names.Page, names.Index} {
		if _, done := l.sets[name]; done {
			continue
		}
		set, err := base.Clone()
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "clone template set").Fatal().Build()
		}
		file := filepath.Join(dir, name)
		if _, err := set.ParseFiles(file); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryTemplate, "failed to parse layout template").
				Fatal().
				UserAction().
				WithContext("file", file).
				Build()
		}
		l.sets[name] = set
	}
	return l, nil
}

func (l *layouts) lookup(name string) *template.Template {
	return l.sets[name].Lookup(name)
}

// AbsURL joins a site-relative link onto base. Without a base the link is returned unchanged.
func AbsURL(base, link string) string {
	if base == "" {
		return link
	}
	u, err := url.Parse(base)
	if err != nil {
		return link
	}
	trailing := strings.HasSuffix(link, "/")
	u.Path = path.Join("/", u.Path, link)
	if trailing && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}
