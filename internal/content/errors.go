package content

import "errors"

var (
	ErrReadSource     = errors.New("read source")
	ErrParseTemplate  = errors.New("parse document template")
	ErrRenderTemplate = errors.New("execute document template")
	ErrMarkdown       = errors.New("convert markdown")
	ErrBadPattern     = errors.New("invalid source pattern")

	ErrDuplicateBasename = errors.New("duplicate basename")
)
