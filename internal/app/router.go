package app

import (
	"baitapvui_backend/docs"
	"baitapvui_backend/internal/config"
	"baitapvui_backend/internal/middleware"
	"baitapvui_backend/internal/model"

	"baitapvui_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
	}

	// 2. 需要授权的路由，写操作仅限教师
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.I18nMiddleware(a.defaultLanguage))
	{
		teacher := authGroup.Group("")
		teacher.Use(middleware.RoleMiddleware(model.Teacher))

		a.registerAssignmentRoutes(teacher, c)
		a.registerMediaRoutes(authGroup, teacher, c)
		a.registerBuilderRoutes(teacher, c)
	}
}

func (a *App) registerAssignmentRoutes(teacher *gin.RouterGroup, c *controllers) {
	assignments := teacher.Group("/assignments")
	{
		assignments.POST("", c.assignment.CreateAssignment)
		assignments.GET("", c.assignment.ListAssignments)
		assignments.GET("/:id", c.assignment.GetAssignment)
		assignments.PUT("/:id", c.assignment.UpdateAssignment)
		assignments.POST("/:id/publish", c.assignment.PublishAssignment)

		assignments.GET("/:id/questions", c.question.ListQuestions)
		assignments.POST("/:id/questions", c.question.CreateQuestion)
		assignments.PUT("/:id/questions/reorder", c.question.ReorderQuestions)
	}

	questions := teacher.Group("/questions")
	{
		questions.PUT("/:id", c.question.UpdateQuestion)
		questions.DELETE("/:id", c.question.DeleteQuestion)
	}
}

func (a *App) registerMediaRoutes(auth, teacher *gin.RouterGroup, c *controllers) {
	// 学生作答时也需要读取题目媒体
	auth.GET("/media/:id", c.media.GetMedia)

	media := teacher.Group("/media")
	{
		media.POST("/upload", c.media.UploadMedia)
		media.DELETE("/:id", c.media.DeleteMedia)
	}
}

func (a *App) registerBuilderRoutes(teacher *gin.RouterGroup, c *controllers) {
	b := teacher.Group("/builder/:assignmentId")
	b.Use(c.builder.ResolveSession)
	{
		b.GET("", c.builder.GetState)
		b.DELETE("", c.builder.ResetBuilder)
		b.POST("/load", c.builder.LoadQuestions)
		b.POST("/save", c.builder.SaveAllQuestions)
		b.POST("/reorder", c.builder.ReorderQuestions)

		b.POST("/questions", c.builder.AddQuestion)
		b.PATCH("/questions/:localId", c.builder.UpdateQuestion)
		b.DELETE("/questions/:localId", c.builder.DeleteQuestion)
		b.PUT("/questions/:localId/type", c.builder.SetQuestionType)
		b.PUT("/questions/:localId/content", c.builder.EditContent)
		b.POST("/questions/:localId/move", c.builder.MoveQuestion)
		b.POST("/questions/:localId/select", c.builder.SelectQuestion)
		b.POST("/questions/:localId/save", c.builder.SaveQuestion)

		b.POST("/questions/:localId/options", c.builder.AddOption)
		b.PATCH("/questions/:localId/options/:optionId", c.builder.UpdateOption)
		b.DELETE("/questions/:localId/options/:optionId", c.builder.DeleteOption)
		b.PUT("/questions/:localId/options/:optionId/correct", c.builder.SetCorrectOption)

		b.POST("/questions/:localId/media", c.builder.UploadMedia)
		b.DELETE("/questions/:localId/media/:mediaId", c.builder.DeleteMedia)
	}
}
