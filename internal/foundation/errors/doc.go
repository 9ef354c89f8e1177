// Package errors provides the classified error primitives used across blogbuilder.
//
// A ClassifiedError carries a category (config, validation, template, filesystem,
// build, ...), a severity and a retry hint next to the message and the wrapped
// cause. Errors are built with a fluent builder:
//
//	err := errors.ValidationError("invalid date attribute").
//		WithContext("file", path).
//		WithContext("value", raw).
//		Build()
//
// The CLI adapter turns classified errors into exit codes and user-facing text.
package errors
