package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poutila/tokenwarehouse/pkg/warehouse"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, FlavorGFM, cfg.Flavor)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, FormatText, cfg.Format)
	assert.Positive(t, cfg.Limits.MaxTokens)
	assert.Contains(t, cfg.URL.AllowedSchemes, "https")
}

func TestFromYAML(t *testing.T) {
	data := []byte(`
flavor: commonmark
log_level: debug
limits:
  max_tokens: 1000
  collector_timeout: 5s
  max_items:
    links: 50
url:
  allowed_schemes: [https]
  allow_relative: false
collectors: [links, headings]
`)

	cfg, err := FromYAML(data)
	require.NoError(t, err)

	assert.Equal(t, FlavorCommonMark, cfg.Flavor)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 1000, cfg.Limits.MaxTokens)
	assert.Equal(t, 5*time.Second, cfg.Limits.CollectorTimeout)
	assert.Equal(t, 50, cfg.Limits.MaxItems["links"])
	assert.Equal(t, []string{"https"}, cfg.URL.AllowedSchemes)
	assert.False(t, cfg.URL.AllowRelative)
	assert.Equal(t, []string{"links", "headings"}, cfg.Collectors)
}

func TestFromYAML_Invalid(t *testing.T) {
	_, err := FromYAML([]byte("flavor: [not, a, string"))
	require.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	original := NewConfig()
	original.Flavor = FlavorCommonMark
	original.Limits.MaxItems = map[string]int{"links": 7}

	data, err := original.ToYAML()
	require.NoError(t, err)

	parsed, err := FromYAML(data)
	require.NoError(t, err)
	assert.Equal(t, original.Flavor, parsed.Flavor)
	assert.Equal(t, 7, parsed.Limits.MaxItems["links"])
	assert.Equal(t, warehouse.DefaultMaxTables, parsed.Limits.MaxItems["tables"],
		"caps absent from the file keep their defaults")
}

func TestClone_Independent(t *testing.T) {
	original := NewConfig()
	original.Limits.MaxItems = map[string]int{"links": 1}
	original.Collectors = []string{"links"}

	clone := original.Clone()
	clone.Limits.MaxItems["links"] = 99
	clone.Collectors[0] = "other"
	clone.URL.AllowedSchemes[0] = "gopher"

	assert.Equal(t, 1, original.Limits.MaxItems["links"])
	assert.Equal(t, "links", original.Collectors[0])
	assert.NotEqual(t, "gopher", original.URL.AllowedSchemes[0])
}

func TestFlavorAndFormatValidation(t *testing.T) {
	assert.True(t, FlavorGFM.Valid())
	assert.True(t, FlavorCommonMark.Valid())
	assert.False(t, Flavor("markdown-extra").Valid())

	assert.True(t, FormatJSON.Valid())
	assert.True(t, FormatText.Valid())
	assert.False(t, OutputFormat("xml").Valid())
}
