package cli

import (
	"fmt"
	"os"

	"learnhub_backend/internal/cache"
	"learnhub_backend/internal/config"
	"learnhub_backend/internal/events"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/service"
	"learnhub_backend/pkg/database"
	"learnhub_backend/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newImportCourseCmd(configDir *string) *cobra.Command {
	var createdBy uint

	cmd := &cobra.Command{
		Use:   "import-course <manifest.yaml>",
		Short: "Create a course with its modules, lessons and quizzes from a YAML manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			manifest, err := service.ParseCourseManifest(f)
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
			courseRepo := repository.NewCourseRepository(db)
			courses := service.NewCourseService(courseRepo, repository.NewEnrollmentRepository(db), nil, "")
			quizzes := service.NewQuizService(
				repository.NewQuizRepository(db),
				repository.NewAttemptRepository(db),
				courseRepo,
				service.NewLocalLocker(),
				cache.Noop{},
				events.Disabled{},
				cfg.Learning,
			)

			course, err := service.NewCourseImporter(courses, quizzes).Import(cmd.Context(), createdBy, manifest)
			if err != nil {
				return err
			}
			logger.Log.Info("course imported", zap.Uint("courseID", course.ID), zap.String("slug", course.Slug))
			fmt.Fprintf(cmd.OutOrStdout(), "imported course %d (%s)\n", course.ID, course.Slug)
			return nil
		},
	}
	cmd.Flags().UintVar(&createdBy, "created-by", 0, "user id recorded as the course author")
	return cmd
}
