package cli

import (
	"learnhub_backend/internal/config"
	"learnhub_backend/pkg/database"
	"learnhub_backend/pkg/logger"

	"github.com/spf13/cobra"
)

func newMigrateCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(*configDir)
			if err != nil {
				return err
			}
			logger.InitLogger(cfg)
			defer logger.Log.Sync()

			db, err := database.InitDB(&cfg.Database)
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			logger.Log.Info("Database migration completed")
			return nil
		},
	}
}
