package app

import (
	"time"

	"learnhub_backend/docs"
	"learnhub_backend/internal/config"
	"learnhub_backend/internal/middleware"
	"learnhub_backend/internal/model"
	"learnhub_backend/pkg/monitoring"
	"learnhub_backend/pkg/security"
	"learnhub_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(a.ctx, cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config, users middleware.UserLookup) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	a.registerPublicRoutes(router, c)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg.JWT.Secret, users), middleware.RequirePolicy(model.CanLearn))
	{
		a.registerLearnerRoutes(authGroup, c)
		a.registerManageRoutes(authGroup, c)
		a.registerReportRoutes(authGroup, c)
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.GET("/certificates/verify/:certificateNumber", c.certificate.Verify)
	}
}

func (a *App) registerLearnerRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/profile", c.auth.Profile)
	group.POST("/user/avatar", c.user.UploadAvatar)

	group.GET("/courses", c.course.List)
	group.GET("/courses/:id", c.course.Get)
	group.POST("/courses/:id/enroll", c.course.Enroll)
	group.GET("/courses/:id/progress", c.progress.CourseProgress)
	group.GET("/courses/:id/quizzes", c.quiz.ListForCourse)
	group.GET("/enrollments", c.course.Enrollments)

	group.POST("/lessons/:id/complete", c.progress.CompleteLesson)

	group.GET("/quizzes/:id", c.quiz.Get)
	group.POST("/quizzes/:id/submit", c.quiz.Submit)
	group.GET("/quizzes/:id/attempts", c.quiz.Attempts)

	group.POST("/certificates/check-and-issue", c.certificate.CheckAndIssue)
	group.GET("/certificates", c.certificate.Mine)

	group.GET("/notifications/ws", c.notification.Stream)
}

func (a *App) registerManageRoutes(group *gin.RouterGroup, c *controllers) {
	manage := group.Group("/manage")
	manage.Use(middleware.RequirePolicy(model.CanManageContent))
	{
		manage.POST("/courses", c.manage.CreateCourse)
		manage.PUT("/courses/:id", c.manage.UpdateCourse)
		manage.DELETE("/courses/:id", c.manage.DeleteCourse)

		manage.POST("/modules", c.manage.CreateModule)
		manage.PUT("/modules/:id", c.manage.UpdateModule)
		manage.DELETE("/modules/:id", c.manage.DeleteModule)

		manage.POST("/lessons", c.manage.CreateLesson)
		manage.PUT("/lessons/:id", c.manage.UpdateLesson)
		manage.DELETE("/lessons/:id", c.manage.DeleteLesson)
		manage.POST("/lessons/:id/video", c.manage.UploadLessonVideo)

		manage.POST("/quizzes", c.manage.CreateQuiz)
		manage.GET("/quizzes/:id", c.manage.GetQuiz)
		manage.PUT("/quizzes/:id", c.manage.UpdateQuiz)
		manage.DELETE("/quizzes/:id", c.manage.DeleteQuiz)
	}
}

func (a *App) registerReportRoutes(group *gin.RouterGroup, c *controllers) {
	reports := group.Group("/reports")
	reports.Use(middleware.RequirePolicy(model.CanViewReports))
	{
		reports.GET("/quizzes/:id/attempts/export", c.report.ExportQuizAttempts)
		reports.GET("/certificates/export", c.report.ExportCertificates)
		reports.GET("/certificates", c.report.Certificates)
	}
}

func (a *App) registerAdminRoutes(group *gin.RouterGroup, c *controllers) {
	admin := group.Group("/admin")
	admin.Use(middleware.RequirePolicy(model.CanManageUsers))
	{
		admin.GET("/users", c.admin.ListUsers)
		admin.POST("/users/:id/roles", c.admin.GrantRole)
		admin.DELETE("/users/:id/roles/:role", c.admin.RevokeRole)
		admin.POST("/users/:id/disable", c.admin.SetDisabled)
	}
}
