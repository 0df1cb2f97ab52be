// Package configloader provides configuration loading and resolution.
// It implements XDG-compliant configuration discovery, layered overlays,
// environment variable support and validation.
package configloader

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/poutila/tokenwarehouse/pkg/config"
)

// LoadOptions controls configuration loading behavior.
type LoadOptions struct {
	// WorkingDir is the directory to search from for project config.
	// Defaults to current working directory if empty.
	WorkingDir string

	// ExplicitPath is an explicit config file path (from --config flag).
	// If set, project config discovery is skipped.
	ExplicitPath string

	// IgnoreSystemConfig skips loading system-level configuration.
	IgnoreSystemConfig bool

	// IgnoreUserConfig skips loading user-level configuration.
	IgnoreUserConfig bool

	// IgnoreProjectConfig skips loading project-level configuration.
	IgnoreProjectConfig bool

	// IgnoreEnv skips loading environment variables.
	IgnoreEnv bool
}

// LoadResult contains the resolved configuration and metadata.
type LoadResult struct {
	// Config is the final layered configuration.
	Config *config.Config

	// Paths contains the discovered configuration file paths.
	Paths *ConfigPaths

	// LoadedFrom lists the files that were actually loaded (in order).
	LoadedFrom []string

	// Warnings contains non-fatal issues encountered during loading.
	Warnings []string
}

// Load resolves the final configuration by overlaying all sources.
// Precedence (highest to lowest):
//  1. Environment variables (TOKENWAREHOUSE_*)
//  2. Explicit config file (opts.ExplicitPath)
//  3. Project config (.tokenwarehouse.yml upward search)
//  4. User config ($XDG_CONFIG_HOME/tokenwarehouse/config.yaml)
//  5. System config (/etc/tokenwarehouse/config.yaml)
//  6. Defaults
//
// Each layer is decoded onto the previous one, so a file only changes
// the keys it actually sets.
func Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	result := &LoadResult{
		Paths: &ConfigPaths{},
	}

	workDir := opts.WorkingDir
	if workDir == "" {
		var err error
		workDir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
	}

	// Start with defaults.
	cfg := config.NewConfig()

	paths, err := DiscoverPaths(ctx, workDir)
	if err != nil {
		return nil, fmt.Errorf("discover paths: %w", err)
	}
	result.Paths = paths

	if opts.ExplicitPath != "" {
		result.Paths.Explicit = opts.ExplicitPath
	}

	// Overlay in order (lowest to highest precedence).

	if !opts.IgnoreSystemConfig && paths.System != "" {
		if err := overlayConfigFile(cfg, paths.System); err != nil {
			return nil, fmt.Errorf("load system config: %w", err)
		}
		result.LoadedFrom = append(result.LoadedFrom, paths.System)
	}

	if !opts.IgnoreUserConfig && paths.User != "" {
		if err := overlayConfigFile(cfg, paths.User); err != nil {
			return nil, fmt.Errorf("load user config: %w", err)
		}
		result.LoadedFrom = append(result.LoadedFrom, paths.User)
	}

	if !opts.IgnoreProjectConfig && paths.Project != "" && opts.ExplicitPath == "" {
		if err := overlayConfigFile(cfg, paths.Project); err != nil {
			return nil, fmt.Errorf("load project config: %w", err)
		}
		result.LoadedFrom = append(result.LoadedFrom, paths.Project)
	}

	if opts.ExplicitPath != "" {
		if err := overlayConfigFile(cfg, opts.ExplicitPath); err != nil {
			return nil, fmt.Errorf("load explicit config: %w", err)
		}
		result.LoadedFrom = append(result.LoadedFrom, opts.ExplicitPath)
	}

	if !opts.IgnoreEnv {
		if err := LoadFromEnv(cfg); err != nil {
			return nil, fmt.Errorf("load environment: %w", err)
		}
	}

	validation := Validate(cfg)
	if !validation.Valid() {
		return nil, &validation.Errors[0]
	}
	for _, w := range validation.Warnings {
		result.Warnings = append(result.Warnings, w.Message)
	}

	result.Config = cfg
	return result, nil
}

// overlayConfigFile decodes a YAML file onto an existing configuration.
// Keys absent from the file leave the current values untouched.
func overlayConfigFile(cfg *config.Config, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	if err := yaml.Unmarshal(content, cfg); err != nil {
		return fmt.Errorf("parse YAML: %w", err)
	}

	return nil
}
