// Package site renders records and pages through the layout templates and
// writes the static site to disk.
package site

import (
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/content"
	"git.home.luguber.info/inful/blogbuilder/internal/pagination"
)

// Props is the site-wide part of every render context.
type Props struct {
	Site        config.SiteConfig
	Collection  config.CollectionConfig
	Pages       []*pagination.Page
	Records     []*content.Record
	CacheBuster string
	BuildTime   time.Time
	Revision    string
}

// NewProps assembles render props. An empty cacheBuster gets a fresh token.
func NewProps(cfg *config.Config, records []*content.Record, pages []*pagination.Page, cacheBuster, revision string) Props {
	if cacheBuster == "" {
		cacheBuster = NewCacheBuster()
	}
	return Props{
		Site:        cfg.Site,
		Collection:  cfg.Collection,
		Pages:       pages,
		Records:     records,
		CacheBuster: cacheBuster,
		BuildTime:   time.Now().UTC(),
		Revision:    revision,
	}
}

// NewCacheBuster returns a random token for asset URLs.
func NewCacheBuster() string {
	return uuid.NewString()
}

// DocumentContext is passed to the document template.
type DocumentContext struct {
	Props
	Record *content.Record
}

// PageContext is passed to the page and index templates.
type PageContext struct {
	Props
	Page *pagination.Page
}
