// Package config defines the extraction configuration model shared by the
// CLI and the config loader. It is pure data plus (de)serialization; file
// discovery and environment resolution live in internal/configloader.
package config

import (
	"github.com/poutila/tokenwarehouse/pkg/urlnorm"
	"github.com/poutila/tokenwarehouse/pkg/warehouse"
)

// Flavor identifies the Markdown flavor used for parsing.
type Flavor string

// Supported flavors.
const (
	FlavorCommonMark Flavor = "commonmark"
	FlavorGFM        Flavor = "gfm"
)

// Valid reports whether the flavor is one of the supported values.
func (f Flavor) Valid() bool {
	return f == FlavorCommonMark || f == FlavorGFM
}

// OutputFormat identifies the extraction output format.
type OutputFormat string

// Supported output formats.
const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// Valid reports whether the output format is one of the supported values.
func (f OutputFormat) Valid() bool {
	return f == FormatText || f == FormatJSON
}

// Config is the complete extraction configuration.
type Config struct {
	// Flavor selects the Markdown dialect.
	Flavor Flavor `yaml:"flavor"`

	// LogLevel sets the logging verbosity (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// Limits carries the resource guard and dispatcher budgets.
	Limits warehouse.Limits `yaml:"limits"`

	// URL carries the link policy shared by all collectors.
	URL urlnorm.Policy `yaml:"url"`

	// Collectors names the collectors to run. Empty means all.
	Collectors []string `yaml:"collectors"`

	// CLI-only fields, never read from config files.
	Format OutputFormat `yaml:"-"`
	Strict bool         `yaml:"-"`
}

// NewConfig returns a configuration populated with defaults.
func NewConfig() *Config {
	return &Config{
		Flavor:   FlavorGFM,
		LogLevel: "info",
		Limits:   warehouse.DefaultLimits(),
		URL:      urlnorm.DefaultPolicy(),
		Format:   FormatText,
	}
}
