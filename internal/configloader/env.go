package configloader

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/poutila/tokenwarehouse/pkg/config"
)

// envVarPrefix is the prefix for all tokenwarehouse environment variables.
const envVarPrefix = "TOKENWAREHOUSE_"

// envFieldType represents the type of a configuration field.
type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
	envTypeInt
	envTypeDuration
	envTypeSlice
)

// envMapping defines environment variable to config field mappings.
type envMapping struct {
	field string
	typ   envFieldType
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"FLAVOR":              {field: "flavor", typ: envTypeString},
	"LOG_LEVEL":           {field: "log_level", typ: envTypeString},
	"MAX_TOKENS":          {field: "limits.max_tokens", typ: envTypeInt},
	"MAX_BYTES":           {field: "limits.max_bytes", typ: envTypeInt},
	"MAX_NESTING":         {field: "limits.max_nesting", typ: envTypeInt},
	"COLLECTOR_TIMEOUT":   {field: "limits.collector_timeout", typ: envTypeDuration},
	"ALLOW_RAW_HTML":      {field: "limits.allow_raw_html", typ: envTypeBool},
	"ALLOWED_SCHEMES":     {field: "url.allowed_schemes", typ: envTypeSlice},
	"ALLOW_RELATIVE_URLS": {field: "url.allow_relative", typ: envTypeBool},
	"COLLECTORS":          {field: "collectors", typ: envTypeSlice},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with TOKENWAREHOUSE_ (e.g., TOKENWAREHOUSE_FLAVOR).
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	for envSuffix, mapping := range envMappings {
		envVar := envVarPrefix + envSuffix
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}

		if err := applyEnvValue(cfg, mapping, value, envVar); err != nil {
			return err
		}
	}

	return nil
}

// applyEnvValue applies a single environment variable value to the config.
func applyEnvValue(cfg *config.Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		return setStringField(cfg, mapping.field, value)
	case envTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q (expected true/false/1/0)", envVar, value)
		}
		return setBoolField(cfg, mapping.field, b)
	case envTypeInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", envVar, value)
		}
		return setIntField(cfg, mapping.field, i)
	case envTypeDuration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %q (expected e.g. 500ms, 2s)", envVar, value)
		}
		return setDurationField(cfg, mapping.field, d)
	case envTypeSlice:
		parts := parseSliceValue(value)
		return setSliceField(cfg, mapping.field, parts)
	default:
		return fmt.Errorf("unknown field type for %s", envVar)
	}
}

// parseSliceValue parses a comma-separated string into a slice.
// Each element is trimmed of whitespace.
func parseSliceValue(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// setStringField sets a string field on the config by field path.
func setStringField(cfg *config.Config, field, value string) error {
	switch field {
	case "flavor":
		cfg.Flavor = config.Flavor(value)
	case "log_level":
		cfg.LogLevel = value
	default:
		return fmt.Errorf("unknown string field: %s", field)
	}
	return nil
}

// setBoolField sets a boolean field on the config by field path.
func setBoolField(cfg *config.Config, field string, value bool) error {
	switch field {
	case "limits.allow_raw_html":
		cfg.Limits.AllowRawHTML = value
	case "url.allow_relative":
		cfg.URL.AllowRelative = value
	default:
		return fmt.Errorf("unknown boolean field: %s", field)
	}
	return nil
}

// setIntField sets an integer field on the config by field path.
func setIntField(cfg *config.Config, field string, value int) error {
	switch field {
	case "limits.max_tokens":
		cfg.Limits.MaxTokens = value
	case "limits.max_bytes":
		cfg.Limits.MaxBytes = value
	case "limits.max_nesting":
		cfg.Limits.MaxNesting = value
	default:
		return fmt.Errorf("unknown integer field: %s", field)
	}
	return nil
}

// setDurationField sets a duration field on the config by field path.
func setDurationField(cfg *config.Config, field string, value time.Duration) error {
	switch field {
	case "limits.collector_timeout":
		cfg.Limits.CollectorTimeout = value
	default:
		return fmt.Errorf("unknown duration field: %s", field)
	}
	return nil
}

// setSliceField sets a slice field on the config by field path.
func setSliceField(cfg *config.Config, field string, value []string) error {
	switch field {
	case "url.allowed_schemes":
		cfg.URL.AllowedSchemes = value
	case "collectors":
		cfg.Collectors = value
	default:
		return fmt.Errorf("unknown slice field: %s", field)
	}
	return nil
}

// ListEnvVars returns a list of all supported environment variables with their descriptions.
func ListEnvVars() map[string]string {
	return map[string]string{
		"TOKENWAREHOUSE_FLAVOR":              "Markdown flavor: commonmark or gfm",
		"TOKENWAREHOUSE_LOG_LEVEL":           "Log level: debug, info, warn, or error",
		"TOKENWAREHOUSE_MAX_TOKENS":          "Maximum canonicalized token count",
		"TOKENWAREHOUSE_MAX_BYTES":           "Maximum document byte size",
		"TOKENWAREHOUSE_MAX_NESTING":         "Maximum token nesting depth",
		"TOKENWAREHOUSE_COLLECTOR_TIMEOUT":   "Per-callback budget (e.g. 2s, 500ms; 0 disables)",
		"TOKENWAREHOUSE_ALLOW_RAW_HTML":      "Mark raw HTML as allowed: true or false",
		"TOKENWAREHOUSE_ALLOWED_SCHEMES":     "Comma-separated list of allowed URL schemes",
		"TOKENWAREHOUSE_ALLOW_RELATIVE_URLS": "Allow relative URLs: true or false",
		"TOKENWAREHOUSE_COLLECTORS":          "Comma-separated list of collectors to run",
	}
}
