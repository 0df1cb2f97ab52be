package warehouse

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Default document-wide and per-collector caps.
const (
	// DefaultMaxTokens caps the canonicalized token count per document.
	DefaultMaxTokens = 500_000

	// DefaultMaxBytes caps the document byte size (10 MiB).
	DefaultMaxBytes = 10 * 1024 * 1024

	// DefaultMaxNesting caps token nesting depth.
	DefaultMaxNesting = 1_000

	// DefaultMaxItems is the fallback per-collector item cap.
	DefaultMaxItems = 10_000

	// DefaultMaxImages and DefaultMaxTables are the tighter caps for the
	// heavier item kinds.
	DefaultMaxImages = 5_000
	DefaultMaxTables = 2_000

	// DefaultCollectorTimeout is the wall-clock budget for one collector
	// callback. Zero disables the watchdog and calls collectors inline.
	DefaultCollectorTimeout = 2 * time.Second
)

// Limits is the security configuration surface of a warehouse instance.
// It is pure data; loading from files or the environment lives in
// internal/configloader.
type Limits struct {
	// MaxTokens is the maximum canonicalized token count.
	MaxTokens int `yaml:"max_tokens"`

	// MaxBytes is the maximum document byte size.
	MaxBytes int `yaml:"max_bytes"`

	// MaxNesting is the maximum token nesting depth.
	MaxNesting int `yaml:"max_nesting"`

	// MaxItems caps accumulated items per collector, keyed by collector
	// name. Collectors without an entry use DefaultMaxItems.
	MaxItems map[string]int `yaml:"max_items"`

	// CollectorTimeout is the per-callback wall-clock budget.
	// Zero disables the watchdog.
	CollectorTimeout time.Duration `yaml:"collector_timeout"`

	// AllowRawHTML marks collected raw HTML as allowed instead of flagged.
	// The warehouse never sanitizes; it only flags.
	AllowRawHTML bool `yaml:"allow_raw_html"`

	// StrictCollectorErrors turns the first recorded collector error into
	// a dispatch failure. Intended for tests.
	StrictCollectorErrors bool `yaml:"-"`
}

// DefaultLimits returns the default security configuration.
func DefaultLimits() Limits {
	return Limits{
		MaxTokens:        DefaultMaxTokens,
		MaxBytes:         DefaultMaxBytes,
		MaxNesting:       DefaultMaxNesting,
		MaxItems: map[string]int{
			"links":  DefaultMaxItems,
			"images": DefaultMaxImages,
			"tables": DefaultMaxTables,
		},
		CollectorTimeout: DefaultCollectorTimeout,
	}
}

// ItemCap returns the item cap for the named collector.
func (l Limits) ItemCap(collector string) int {
	if cap, ok := l.MaxItems[collector]; ok && cap > 0 {
		return cap
	}
	return DefaultMaxItems
}

// limitsYAML mirrors Limits for YAML, with the timeout as a duration
// string ("2s") instead of nanoseconds.
type limitsYAML struct {
	MaxTokens        int            `yaml:"max_tokens"`
	MaxBytes         int            `yaml:"max_bytes"`
	MaxNesting       int            `yaml:"max_nesting"`
	MaxItems         map[string]int `yaml:"max_items"`
	CollectorTimeout string         `yaml:"collector_timeout"`
	AllowRawHTML     bool           `yaml:"allow_raw_html"`
}

// UnmarshalYAML overlays the YAML document onto the current values, so
// keys absent from a config file keep whatever the caller already set.
func (l *Limits) UnmarshalYAML(value *yaml.Node) error {
	raw := limitsYAML{
		MaxTokens:    l.MaxTokens,
		MaxBytes:     l.MaxBytes,
		MaxNesting:   l.MaxNesting,
		MaxItems:     l.MaxItems,
		AllowRawHTML: l.AllowRawHTML,
	}
	if l.CollectorTimeout > 0 {
		raw.CollectorTimeout = l.CollectorTimeout.String()
	}

	if err := value.Decode(&raw); err != nil {
		return err
	}

	l.MaxTokens = raw.MaxTokens
	l.MaxBytes = raw.MaxBytes
	l.MaxNesting = raw.MaxNesting
	l.MaxItems = raw.MaxItems
	l.AllowRawHTML = raw.AllowRawHTML

	if raw.CollectorTimeout == "" {
		l.CollectorTimeout = 0
		return nil
	}
	d, err := time.ParseDuration(raw.CollectorTimeout)
	if err != nil {
		return fmt.Errorf("parse collector_timeout: %w", err)
	}
	if d < 0 {
		return fmt.Errorf("collector_timeout must not be negative: %s", raw.CollectorTimeout)
	}
	l.CollectorTimeout = d
	return nil
}

// MarshalYAML emits the timeout as a duration string.
func (l Limits) MarshalYAML() (any, error) {
	raw := limitsYAML{
		MaxTokens:    l.MaxTokens,
		MaxBytes:     l.MaxBytes,
		MaxNesting:   l.MaxNesting,
		MaxItems:     l.MaxItems,
		AllowRawHTML: l.AllowRawHTML,
	}
	if l.CollectorTimeout > 0 {
		raw.CollectorTimeout = l.CollectorTimeout.String()
	}
	return raw, nil
}

// withDefaults fills zero-valued caps so a partially populated Limits
// (e.g. from a config file) still fails closed.
func (l Limits) withDefaults() Limits {
	if l.MaxTokens <= 0 {
		l.MaxTokens = DefaultMaxTokens
	}
	if l.MaxBytes <= 0 {
		l.MaxBytes = DefaultMaxBytes
	}
	if l.MaxNesting <= 0 {
		l.MaxNesting = DefaultMaxNesting
	}
	if l.MaxItems == nil {
		l.MaxItems = map[string]int{}
	}
	return l
}
