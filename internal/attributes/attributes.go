// Package attributes extracts document metadata from embedded comment lines.
//
// A metadata line is a line whose first non-blank characters are the comment
// marker "//-" and that contains a colon:
//
//	//- title: Hello world
//	//- date: 2020/01/31
//	//- tags: go, static sites
//
// Names are case-sensitive. "date" additionally yields a numeric "timestamp"
// and "tags" is split into a list; every other value is kept verbatim.
package attributes

import (
	"strings"
	"time"
)

// Marker starts every metadata (and author comment) line.
const Marker = "//-"

// Well-known attribute names.
const (
	KeyTitle     = "title"
	KeyDate      = "date"
	KeyTimestamp = "timestamp"
	KeyTags      = "tags"
)

// Attributes maps attribute names to string values, except for "tags"
// ([]string) and "timestamp" (int64).
type Attributes map[string]any

// String returns the attribute as a string, or "" when absent or not a string.
func (a Attributes) String(key string) string {
	s, _ := a[key].(string)
	return s
}

// Title returns the "title" attribute.
func (a Attributes) Title() string { return a.String(KeyTitle) }

// Date returns the raw "date" attribute.
func (a Attributes) Date() string { return a.String(KeyDate) }

// Timestamp returns the Unix timestamp derived from "date", or 0.
func (a Attributes) Timestamp() int64 {
	ts, _ := a[KeyTimestamp].(int64)
	return ts
}

// HasTimestamp reports whether a timestamp was derived.
func (a Attributes) HasTimestamp() bool {
	_, ok := a[KeyTimestamp].(int64)
	return ok
}

// Tags returns the "tags" attribute, or nil.
func (a Attributes) Tags() []string {
	tags, _ := a[KeyTags].([]string)
	return tags
}

// Time returns the timestamp as a UTC time. The zero timestamp maps to the Unix epoch.
func (a Attributes) Time() time.Time {
	return time.Unix(a.Timestamp(), 0).UTC()
}

// IsMetadataLine reports whether line carries an attribute.
func IsMetadataLine(line string) bool {
	return IsMarkerLine(line) && strings.Contains(line, ":")
}

// IsMarkerLine reports whether line starts with the comment marker after leading whitespace.
func IsMarkerLine(line string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " \t"), Marker)
}

// splitLine returns the attribute name and raw value of a metadata line.
func splitLine(line string) (name, value string) {
	rest := strings.TrimLeft(line, " \t/-")
	name, value, _ = strings.Cut(rest, ":")
	return strings.TrimSpace(name), strings.TrimSpace(value)
}

// SplitTags splits a comma separated list and trims each segment. An empty value yields no tags.
func SplitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
