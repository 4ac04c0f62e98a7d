package core

import "errors"

// These errors classify failures so the HTTP boundary can turn them into a status code.
// Wrap them with fmt.Errorf("...: %w", core.ErrX) or errors.Join to keep the detail.
var (
	// The request could not be understood: malformed body, bad JSON, schema mismatch.
	ErrInvalidInput = errors.New("invalid input")
	// A named resource (template, script, page) does not exist.
	ErrNotFound         = errors.New("not found")
	ErrMethodNotAllowed = errors.New("method not allowed")
	// Server-side misconfiguration or a bug, e.g. a broken template.
	ErrInternal = errors.New("internal error")
)
