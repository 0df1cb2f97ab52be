package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/poutila/tokenwarehouse/internal/logging"
	"github.com/poutila/tokenwarehouse/pkg/config"
)

// defaultConfigName is the file written by the init command.
const defaultConfigName = ".tokenwarehouse.yml"

// configFilePermissions is the file mode for configuration files (world-readable).
const configFilePermissions = 0o644

func newInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long: `Write a default ` + defaultConfigName + ` to the current directory.

The generated file contains every supported key with its default value, so
it doubles as documentation for the configuration surface.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runInit(force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	return cmd
}

func runInit(force bool) error {
	if _, err := os.Stat(defaultConfigName); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", defaultConfigName)
	}

	content, err := config.NewConfig().ToYAML()
	if err != nil {
		return fmt.Errorf("render default config: %w", err)
	}

	header := "# tokenwarehouse configuration\n\n"
	if err := os.WriteFile(defaultConfigName, append([]byte(header), content...), configFilePermissions); err != nil {
		return fmt.Errorf("write %s: %w", defaultConfigName, err)
	}

	logging.Default().Info("wrote config", logging.FieldPath, defaultConfigName)
	return nil
}
