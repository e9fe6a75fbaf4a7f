package cli

import (
	"fmt"

	"learnhub_backend/internal/config"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/service"
	"learnhub_backend/pkg/database"
	"learnhub_backend/pkg/logger"

	"github.com/spf13/cobra"
)

// newGrantRoleCmd bootstraps the first admin, who can then grant roles over HTTP.
func newGrantRoleCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "grant-role <email> <role>",
		Short: "Grant a role to an existing account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := model.ParseRole(args[1])
			if err != nil {
				return err
			}
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
			users := service.NewUserService(repository.NewUserRepository(db), nil)
			user, err := users.GrantRoleByEmail(cmd.Context(), args[0], role)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s now has roles %v\n", user.Email, user.Roles())
			return nil
		},
	}
}
