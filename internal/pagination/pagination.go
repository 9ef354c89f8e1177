// Package pagination splits sorted records into fixed-size listing pages.
package pagination

import (
	"strconv"

	"git.home.luguber.info/inful/blogbuilder/internal/content"
)

const (
	// DefaultSize is the number of records per page when none is configured.
	DefaultSize = 5
	// RootLink is where page 1 points back to instead of /pages/0.
	RootLink = "/"
	// Route prefixes every page link.
	Route = "/pages"
)

// Page is one listing window over the records. Records is shared, not copied.
type Page struct {
	Index    int
	Link     string
	Records  []*content.Record
	NextLink string // newer page
	PrevLink string // older page
	IsFirst  bool
	IsLast   bool
}

// Number is the one-based page number.
func (p *Page) Number() int { return p.Index + 1 }

// Count returns max(1, ceil(n/size)).
func Count(n, size int) int {
	if size <= 0 {
		size = DefaultSize
	}
	if n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

// LinkFor returns the link of the page at index.
func LinkFor(index int) string {
	return Route + "/" + strconv.Itoa(index)
}

// Paginate groups records into pages of size, preserving order. Zero records
// still produce one empty page.
func Paginate(records []*content.Record, size int) []*Page {
	if size <= 0 {
		size = DefaultSize
	}
	pages := make([]*Page, Count(len(records), size))
	for i := range pages {
		start := i * size
		end := min(start+size, len(records))
		window := records[min(start, len(records)):end:end]
		pages[i] = &Page{
			Index:   i,
			Link:    LinkFor(i),
			Records: window,
			IsFirst: i == 0,
			IsLast:  i == len(pages)-1,
		}
	}
	for i, p := range pages {
		if i == 1 {
			p.NextLink = RootLink
		} else if i > 1 {
			p.NextLink = pages[i-1].Link
		}
		if i < len(pages)-1 {
			p.PrevLink = pages[i+1].Link
		}
	}
	return pages
}
