// Package build runs the site generation pipeline.
//
// A Builder executes a fixed sequence of stages (prepare output, discover
// sources, load documents, paginate, load templates, render documents,
// render pages, render the index, render feeds, copy static assets). Each
// stage is a barrier: it finishes completely before the next one starts, and
// a fatal error or cancellation stops the run. Every stage is timed and
// classified into a Report that callers log, export as metrics and publish
// as a build event.
package build
