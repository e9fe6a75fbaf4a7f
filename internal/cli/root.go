package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var configDir string

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envConfig := os.Getenv("LEARNHUB_CONFIG_DIR")
	if envConfig == "" {
		envConfig = "configs"
	}

	cmd := &cobra.Command{
		Use:           "learnhub",
		Short:         "LearnHub learning platform backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&configDir, "config", envConfig, "directory containing config.yaml")
	cmd.AddCommand(newServeCmd(&configDir))
	cmd.AddCommand(newMigrateCmd(&configDir))
	cmd.AddCommand(newGrantRoleCmd(&configDir))
	cmd.AddCommand(newImportCourseCmd(&configDir))
	return cmd
}
