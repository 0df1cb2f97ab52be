package configloader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poutila/tokenwarehouse/pkg/config"
)

// loadIsolated loads with every ambient source disabled except the ones
// under test, so developer machines don't leak config into the suite.
func loadIsolated(t *testing.T, opts LoadOptions) *LoadResult {
	t.Helper()

	opts.IgnoreSystemConfig = true
	opts.IgnoreUserConfig = true
	if opts.WorkingDir == "" {
		opts.WorkingDir = t.TempDir()
	}

	result, err := Load(context.Background(), opts)
	require.NoError(t, err)
	return result
}

func writeConfigFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_DefaultsWhenNothingFound(t *testing.T) {
	result := loadIsolated(t, LoadOptions{IgnoreEnv: true})

	assert.Empty(t, result.LoadedFrom)
	assert.Equal(t, config.FlavorGFM, result.Config.Flavor)
	assert.Positive(t, result.Config.Limits.MaxTokens)
}

func TestLoad_ProjectConfigOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, ".tokenwarehouse.yml", `
flavor: commonmark
limits:
  max_tokens: 1234
`)

	result := loadIsolated(t, LoadOptions{WorkingDir: dir, IgnoreEnv: true})

	require.Len(t, result.LoadedFrom, 1)
	assert.Equal(t, config.FlavorCommonMark, result.Config.Flavor)
	assert.Equal(t, 1234, result.Config.Limits.MaxTokens)

	// Keys absent from the file keep their defaults.
	assert.Positive(t, result.Config.Limits.MaxBytes)
	assert.Contains(t, result.Config.URL.AllowedSchemes, "https")
}

func TestLoad_ExplicitPathWinsOverProject(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, ".tokenwarehouse.yml", "flavor: commonmark\n")
	explicit := writeConfigFile(t, dir, "special.yaml", "flavor: gfm\n")

	result := loadIsolated(t, LoadOptions{
		WorkingDir:   dir,
		ExplicitPath: explicit,
		IgnoreEnv:    true,
	})

	assert.Equal(t, config.FlavorGFM, result.Config.Flavor)
	assert.Equal(t, []string{explicit}, result.LoadedFrom, "explicit path skips project discovery")
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	_, err := Load(context.Background(), LoadOptions{
		WorkingDir:         t.TempDir(),
		ExplicitPath:       "/nonexistent/config.yaml",
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		IgnoreEnv:          true,
	})
	require.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, ".tokenwarehouse.yml", `
limits:
  max_tokens: 1000
`)

	t.Setenv("TOKENWAREHOUSE_MAX_TOKENS", "42")
	t.Setenv("TOKENWAREHOUSE_COLLECTOR_TIMEOUT", "750ms")
	t.Setenv("TOKENWAREHOUSE_ALLOWED_SCHEMES", "https, mailto")
	t.Setenv("TOKENWAREHOUSE_ALLOW_RELATIVE_URLS", "false")

	result := loadIsolated(t, LoadOptions{WorkingDir: dir})

	assert.Equal(t, 42, result.Config.Limits.MaxTokens)
	assert.Equal(t, 750*time.Millisecond, result.Config.Limits.CollectorTimeout)
	assert.Equal(t, []string{"https", "mailto"}, result.Config.URL.AllowedSchemes)
	assert.False(t, result.Config.URL.AllowRelative)
}

func TestLoad_EnvInvalidValue(t *testing.T) {
	t.Setenv("TOKENWAREHOUSE_MAX_TOKENS", "not-a-number")

	_, err := Load(context.Background(), LoadOptions{
		WorkingDir:         t.TempDir(),
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOKENWAREHOUSE_MAX_TOKENS")
}

func TestLoad_InvalidFlavorRejected(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, ".tokenwarehouse.yml", "flavor: textile\n")

	_, err := Load(context.Background(), LoadOptions{
		WorkingDir:         dir,
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		IgnoreEnv:          true,
	})
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "flavor", verr.Field)
}

func TestLoad_UnknownCollectorWarns(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, ".tokenwarehouse.yml", "collectors: [links, bogus]\n")

	result := loadIsolated(t, LoadOptions{WorkingDir: dir, IgnoreEnv: true})

	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "bogus")
}

func TestFindProjectConfig_SearchesUpward(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	path := writeConfigFile(t, root, ".tokenwarehouse.yml", "flavor: gfm\n")

	found, err := FindProjectConfig(context.Background(), nested)
	require.NoError(t, err)
	assert.Equal(t, path, found)
}

func TestFindProjectConfig_StopsAtVCSRoot(t *testing.T) {
	root := t.TempDir()
	writeConfigFile(t, root, ".tokenwarehouse.yml", "flavor: gfm\n")

	project := filepath.Join(root, "repo")
	require.NoError(t, os.MkdirAll(filepath.Join(project, ".git"), 0o755))
	nested := filepath.Join(project, "docs")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, err := FindProjectConfig(context.Background(), nested)
	require.NoError(t, err)
	assert.Empty(t, found, "search must not cross the VCS boundary")
}

func TestValidate_LimitsAndSchemes(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Limits.MaxTokens = -1
	cfg.URL.AllowedSchemes = []string{"HTTPS", ""}

	result := Validate(cfg)

	assert.False(t, result.Valid())
	assert.True(t, result.HasWarnings(), "uppercase scheme should warn")
}
