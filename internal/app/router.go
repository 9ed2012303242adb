package app

import (
	"formation_backend/docs"
	"formation_backend/internal/config"
	"formation_backend/internal/middleware"
	"formation_backend/internal/model"
	"formation_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api/v1"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	a.registerPublicRoutes(router, c)

	authGroup := router.Group("/api/v1")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerLearnerRoutes(authGroup, c)
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api/v1")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
	}
}

func (a *App) registerLearnerRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)

	// Catalogue
	rg.GET("/universes", c.formation.ListUniverses)
	rg.GET("/universes/:id", c.formation.GetUniverse)
	rg.GET("/formations", c.formation.ListFormations)
	rg.GET("/formations/:id", c.formation.GetFormation)
	rg.GET("/formations/:id/lessons/:lessonId", c.formation.GetLesson)

	// Progress engine
	rg.POST("/formations/:id/lessons/:lessonId/progress", c.progress.RecordObservation)
	rg.GET("/formations/:id/lessons/:lessonId/progress", c.progress.GetLessonProgress)
	rg.GET("/formations/:id/progress", c.progress.GetFormationProgress)
	rg.GET("/formations/:id/lessons/:lessonId/resume", c.progress.GetResumeDecision)
	rg.POST("/formations/:id/progress/flush", c.progress.FlushProgress)

	// Quiz
	rg.GET("/formations/:id/quiz", c.quiz.GetQuiz)
	rg.POST("/quizzes/:quizId/attempts", c.quiz.StartAttempt)
	rg.GET("/attempts/:attemptId", c.quiz.GetAttempt)
	rg.PUT("/attempts/:attemptId/answers", c.quiz.SaveAnswer)
	rg.POST("/attempts/:attemptId/submit", c.quiz.SubmitAttempt)
	rg.POST("/attempts/:attemptId/restart", c.quiz.RestartAttempt)
}

func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	admin := rg.Group("/admin")
	admin.Use(middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/universes", c.formation.CreateUniverse)
		admin.PUT("/universes/:id", c.formation.UpdateUniverse)
		admin.DELETE("/universes/:id", c.formation.DeleteUniverse)

		admin.POST("/formations", c.formation.CreateFormation)
		admin.PUT("/formations/:id", c.formation.UpdateFormation)
		admin.DELETE("/formations/:id", c.formation.DeleteFormation)

		admin.POST("/formations/:id/lessons", c.formation.CreateLesson)
		admin.PUT("/formations/:id/lessons/reorder", c.formation.ReorderLessons)
		admin.PUT("/lessons/:lessonId", c.formation.UpdateLesson)
		admin.DELETE("/lessons/:lessonId", c.formation.DeleteLesson)

		admin.POST("/lessons/:lessonId/media", c.content.UploadMedia)
		admin.PUT("/lessons/:lessonId/media/totals", c.content.SetMediaTotals)

		admin.POST("/formations/:id/quiz", c.quiz.CreateQuiz)
		admin.GET("/quizzes/:quizId", c.quiz.GetQuizAdmin)
		admin.PUT("/quizzes/:quizId", c.quiz.UpdateQuiz)
		admin.DELETE("/quizzes/:quizId", c.quiz.DeleteQuiz)
	}
}
