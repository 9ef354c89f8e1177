// Package content loads source documents into ordered, link-threaded records.
package content

import (
	"html/template"
	"sort"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/attributes"
)

// Record is one loaded article or post. Records are not mutated after Thread.
type Record struct {
	Basename   string
	Link       string
	SourcePath string

	Title     string
	Date      string
	Timestamp int64
	Tags      []string

	Attributes attributes.Attributes

	Body    template.HTML
	Excerpt template.HTML
	HasMore bool
	Summary string

	Fingerprint string
	Updated     time.Time

	NextLink string // newer neighbour
	PrevLink string // older neighbour
}

// Time returns the record timestamp as a UTC time.
func (r *Record) Time() time.Time {
	return time.Unix(r.Timestamp, 0).UTC()
}

// LastModified returns Updated when known, otherwise the publication time.
func (r *Record) LastModified() time.Time {
	if !r.Updated.IsZero() {
		return r.Updated
	}
	return r.Time()
}

// Sort orders records newest first. Ties keep their input order.
func Sort(records []*Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp > records[j].Timestamp
	})
}

// Thread links every record to its newer (NextLink) and older (PrevLink) neighbour.
// records must already be sorted.
func Thread(records []*Record) {
	for i, r := range records {
		r.NextLink, r.PrevLink = "", ""
		if i > 0 {
			r.NextLink = records[i-1].Link
		}
		if i < len(records)-1 {
			r.PrevLink = records[i+1].Link
		}
	}
}
