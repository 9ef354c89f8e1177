package attributes

import (
	"errors"
	"fmt"
	"strings"
	"time"

	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

// ErrInvalidDate is the cause of every date parse failure.
var ErrInvalidDate = errors.New("invalid date")

// dateLayouts are tried in order after "/" has been normalized to "-".
var dateLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01",
	"2006",
}

// Options tunes extraction.
type Options struct {
	// Location interprets dates without zone information. Defaults to UTC.
	Location *time.Location
	// EpochOnInvalidDate keeps documents with unparseable dates, using timestamp 0.
	EpochOnInvalidDate bool
	// OnInvalidDate is called for every unparseable date when EpochOnInvalidDate is set.
	OnInvalidDate func(raw string, err error)
	// OnReserved is called for lines naming a derived key such as "timestamp".
	// Those lines are ignored.
	OnReserved func(name string)
}

// Extract scans content for metadata lines and returns the resulting attributes.
func Extract(content []byte, opts Options) (Attributes, error) {
	attrs := make(Attributes)
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if !IsMetadataLine(line) {
			continue
		}
		name, value := splitLine(line)
		if name == "" {
			continue
		}
		if err := attrs.set(name, value, opts); err != nil {
			return nil, err
		}
	}
	return attrs, nil
}

func (a Attributes) set(name, value string, opts Options) error {
	switch name {
	case KeyDate:
		a[KeyDate] = value
		t, err := ParseDate(value, opts.Location)
		if err != nil {
			if !opts.EpochOnInvalidDate {
				return ferrors.WrapError(err, ferrors.CategoryValidation, "invalid date attribute").
					Fatal().
					UserAction().
					WithContext("value", value).
					Build()
			}
			if opts.OnInvalidDate != nil {
				opts.OnInvalidDate(value, err)
			}
			a[KeyTimestamp] = int64(0)
			return nil
		}
		a[KeyTimestamp] = t.Unix()
	case KeyTimestamp:
		if opts.OnReserved != nil {
			opts.OnReserved(name)
		}
	case KeyTags:
		a[KeyTags] = SplitTags(value)
	default:
		a[name] = value
	}
	return nil
}

// ParseDate parses a date attribute, accepting "/" or "-" as component separator.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	normalized := strings.ReplaceAll(strings.TrimSpace(raw), "/", "-")
	if normalized == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidDate)
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, normalized, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
}
