// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
// Using constants prevents typos and enables IDE autocomplete.
const (
	// Common fields.
	FieldError  = "error"
	FieldPath   = "path"
	FieldInput  = "input"
	FieldOutput = "output"

	// Configuration fields.
	FieldFlavor  = "flavor"
	FieldTimeout = "timeout"

	// Stream fields.
	FieldTokens   = "tokens"
	FieldBytes    = "bytes"
	FieldNesting  = "nesting"
	FieldSections = "sections"

	// Dispatch fields.
	FieldCollector  = "collector"
	FieldTokenIndex = "token_index"
	FieldKind       = "kind"
	FieldItems      = "items"
	FieldTruncated  = "truncated"
	FieldErrors     = "errors"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
