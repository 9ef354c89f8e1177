package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyBasename   = "basename"
	KeyLink       = "link"
	KeyPage       = "page"
	KeyCount      = "count"
	KeyOutcome    = "outcome"
	KeyAttribute  = "attribute"
	KeyTemplate   = "template"
	KeySubject    = "subject"
	KeyRevision   = "revision"
	KeyTrigger    = "trigger"
	KeyAttempt    = "attempt"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Basename(b string) slog.Attr     { return slog.String(KeyBasename, b) }
func Link(l string) slog.Attr         { return slog.String(KeyLink, l) }
func Page(i int) slog.Attr            { return slog.Int(KeyPage, i) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Outcome(o string) slog.Attr      { return slog.String(KeyOutcome, o) }
func Attribute(a string) slog.Attr    { return slog.String(KeyAttribute, a) }
func Template(name string) slog.Attr  { return slog.String(KeyTemplate, name) }
func Subject(s string) slog.Attr      { return slog.String(KeySubject, s) }
func Revision(r string) slog.Attr     { return slog.String(KeyRevision, r) }
func Trigger(t string) slog.Attr      { return slog.String(KeyTrigger, t) }
func Attempt(n int) slog.Attr         { return slog.Int(KeyAttempt, n) }

// Error is nil-safe so callers can log unconditionally.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
