package cli

import (
	"learnhub_backend/internal/app"
	"learnhub_backend/internal/config"

	"github.com/spf13/cobra"
)

func newServeCmd(configDir *string) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(*configDir)
			if err != nil {
				return err
			}
			application, err := app.NewApp(cfg)
			if err != nil {
				return err
			}
			if migrate {
				if err := application.Migrate(); err != nil {
					application.Close()
					return err
				}
			}
			return application.Run()
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply schema migrations before serving")
	return cmd
}
