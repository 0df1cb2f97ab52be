package configloader

import (
	"fmt"
	"strings"

	"github.com/poutila/tokenwarehouse/pkg/config"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "limits.max_tokens").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string

	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)

	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues (e.g., unknown collector names).
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// knownLogLevels lists valid log level values.
//
//nolint:gochecknoglobals // Read-only lookup table.
var knownLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

// knownCollectors lists the collector names shipped with the CLI.
//
//nolint:gochecknoglobals // Read-only lookup table.
var knownCollectors = map[string]bool{
	"links":       true,
	"images":      true,
	"headings":    true,
	"tables":      true,
	"raw_html":    true,
	"code_blocks": true,
}

// Validate checks a configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	if cfg == nil {
		return &ValidationResult{}
	}

	result := &ValidationResult{}

	if cfg.Flavor != "" && !cfg.Flavor.Valid() {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "flavor",
			Value:   cfg.Flavor,
			Message: fmt.Sprintf("invalid flavor %q; must be one of: commonmark, gfm", cfg.Flavor),
		})
	}

	if cfg.LogLevel != "" && !knownLogLevels[strings.ToLower(cfg.LogLevel)] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "log_level",
			Value:   cfg.LogLevel,
			Message: fmt.Sprintf("invalid log level %q; must be one of: debug, info, warn, error", cfg.LogLevel),
		})
	}

	validateLimits(cfg, result)
	validateURLPolicy(cfg, result)
	validateCollectors(cfg, result)

	return result
}

// validateLimits checks the resource budget values.
func validateLimits(cfg *config.Config, result *ValidationResult) {
	checks := []struct {
		field string
		value int
	}{
		{"limits.max_tokens", cfg.Limits.MaxTokens},
		{"limits.max_bytes", cfg.Limits.MaxBytes},
		{"limits.max_nesting", cfg.Limits.MaxNesting},
	}
	for _, c := range checks {
		if c.value < 0 {
			result.Errors = append(result.Errors, ValidationError{
				Field:   c.field,
				Value:   c.value,
				Message: "must be >= 0 (0 means default)",
			})
		}
	}

	for name, cap := range cfg.Limits.MaxItems {
		if cap < 0 {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "limits.max_items." + name,
				Value:   cap,
				Message: "must be >= 0 (0 means default)",
			})
		}
	}

	if cfg.Limits.CollectorTimeout < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "limits.collector_timeout",
			Value:   cfg.Limits.CollectorTimeout,
			Message: "must be >= 0 (0 disables the watchdog)",
		})
	}
}

// validateURLPolicy checks the link policy values.
func validateURLPolicy(cfg *config.Config, result *ValidationResult) {
	for i, scheme := range cfg.URL.AllowedSchemes {
		if scheme == "" {
			result.Errors = append(result.Errors, ValidationError{
				Field:   fmt.Sprintf("url.allowed_schemes[%d]", i),
				Message: "scheme must not be empty",
			})
			continue
		}
		if scheme != strings.ToLower(scheme) {
			result.Warnings = append(result.Warnings, ValidationError{
				Field:   fmt.Sprintf("url.allowed_schemes[%d]", i),
				Value:   scheme,
				Message: fmt.Sprintf("scheme %q is compared lowercase; use %q", scheme, strings.ToLower(scheme)),
			})
		}
	}
}

// validateCollectors warns about collector names the CLI does not ship.
func validateCollectors(cfg *config.Config, result *ValidationResult) {
	for _, name := range cfg.Collectors {
		if !knownCollectors[name] {
			result.Warnings = append(result.Warnings, ValidationError{
				Field:   "collectors",
				Value:   name,
				Message: fmt.Sprintf("unknown collector %q; it will be ignored", name),
			})
		}
	}
}

// ValidateWithFile validates configuration and includes file path in errors.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)

	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}

	return result
}
