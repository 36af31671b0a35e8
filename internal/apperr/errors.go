// Package apperr defines sentinel errors shared across the service.
package apperr

import "errors"

var (
	// ErrNotFound means a requested artifact does not exist (registry
	// row missing or file gone from disk).
	ErrNotFound = errors.New("not found")
	// ErrTemplateNotFound means the document template for a kind is
	// absent or unreadable.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrRender means template binding or archive serialization failed.
	ErrRender = errors.New("render failed")
	// ErrConversionUnavailable means no PDF converter is configured.
	ErrConversionUnavailable = errors.New("conversion not configured")
	// ErrConversion means the configured converter failed.
	ErrConversion = errors.New("conversion failed")
)
