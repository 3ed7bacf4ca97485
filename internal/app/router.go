package app

import (
	"coursehub_backend/internal/config"
	"coursehub_backend/internal/middleware"
	"coursehub_backend/internal/model"
	"coursehub_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerStudentRoutes(authGroup, c)
		a.registerTeacherRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)

	// 课程与报名
	rg.GET("/courses/:courseId", c.course.GetCourse)
	rg.POST("/courses/:courseId/enroll", c.course.Enroll)
	rg.GET("/enrollments", c.course.ListEnrollments)

	// 课时进度
	rg.POST("/enrollments/:enrollmentId/progress", c.progress.RecordProgress)
	rg.GET("/enrollments/:enrollmentId/progress", c.progress.GetProgress)

	// 答题
	rg.POST("/quizzes/:quizId/attempts", c.attempt.StartAttempt)
	rg.GET("/quizzes/:quizId/attempts", c.attempt.ListAttempts)
	rg.GET("/attempts/:attemptId", c.attempt.GetAttempt)
	rg.POST("/attempts/:attemptId/submit", c.attempt.SubmitAttempt)
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	teacher := rg.Group("/teacher")
	teacher.Use(middleware.RoleMiddleware(model.Teacher))
	{
		teacher.POST("/courses", c.course.CreateCourse)
		teacher.POST("/courses/:courseId/lessons", c.course.AddLesson)

		teacher.POST("/quizzes", c.quiz.CreateQuiz)
		teacher.GET("/quizzes/:quizId", c.quiz.GetQuizDetail)
		teacher.PUT("/quizzes/:quizId", c.quiz.UpdateQuiz)
		teacher.PUT("/quizzes/:quizId/questions/:questionId/active", c.quiz.SetQuestionActive)
	}
}
