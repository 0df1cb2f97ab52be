package config

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ToYAML serializes the configuration to YAML format.
// It produces human-readable output with appropriate formatting.
func (c *Config) ToYAML() ([]byte, error) {
	if c == nil {
		return nil, nil
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}

	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("close encoder: %w", err)
	}

	return buf.Bytes(), nil
}

// FromYAML parses a configuration from YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return cfg, nil
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}

	clone := *c

	if c.Limits.MaxItems != nil {
		clone.Limits.MaxItems = make(map[string]int, len(c.Limits.MaxItems))
		for k, v := range c.Limits.MaxItems {
			clone.Limits.MaxItems[k] = v
		}
	}
	if c.URL.AllowedSchemes != nil {
		clone.URL.AllowedSchemes = append([]string(nil), c.URL.AllowedSchemes...)
	}
	if c.Collectors != nil {
		clone.Collectors = append([]string(nil), c.Collectors...)
	}

	return &clone
}
