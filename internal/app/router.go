package app

import (
	"zhitu_backend/docs"
	"zhitu_backend/internal/middleware"
	"zhitu_backend/internal/model"
	"zhitu_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 2. 需要登录的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(a.Config))
	{
		authGroup.GET("/profile", c.auth.GetProfile)
		registerLearningPathRoutes(authGroup, c)
		registerInterviewRoutes(authGroup, c)
		registerNoteRoutes(authGroup, c)

		progress := authGroup.Group("/progress")
		{
			progress.POST("/mark", c.progress.Mark)
			progress.GET("/stats", c.progress.Stats)
		}
	}

	// 3. 管理员
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(a.Config), middleware.RoleMiddleware(model.RoleAdmin))
	{
		admin.GET("/users", c.user.GetUsers)
		admin.PATCH("/users/:id/disabled", c.user.SetDisabled)
	}
}

func registerLearningPathRoutes(rg *gin.RouterGroup, c *controllers) {
	paths := rg.Group("/learning-paths")
	paths.POST("/generate", c.learningPath.Generate)
	paths.GET("", c.learningPath.List)
	paths.GET("/:id", c.learningPath.Get)
	paths.DELETE("/:id", c.learningPath.Delete)
	paths.POST("/:id/generate-content", c.learningPath.GenerateContent)
}

func registerInterviewRoutes(rg *gin.RouterGroup, c *controllers) {
	interview := rg.Group("/interview")
	interview.POST("/generate", c.interview.Generate)
	interview.POST("/generate-weak-points", c.interview.GenerateWeakPoints)
	interview.GET("/questions/:pathId", c.interview.ListQuestions)
	interview.POST("/status", c.interview.UpdateStatus)
	interview.GET("/statistics/:pathId", c.interview.Statistics)
	interview.GET("/mistakes", c.interview.Mistakes)
	interview.POST("/mistakes/export", c.interview.ExportMistakes)

	simulator := rg.Group("/interview-simulator")
	simulator.POST("/start", c.interviewSimulator.Start)
	simulator.POST("/continue", c.interviewSimulator.Continue)
	simulator.POST("/end", c.interviewSimulator.End)
	simulator.GET("/history", c.interviewSimulator.History)
	simulator.GET("/session/:id", c.interviewSimulator.Detail)
}

func registerNoteRoutes(rg *gin.RouterGroup, c *controllers) {
	notes := rg.Group("/notes")
	notes.POST("", c.note.Create)
	notes.GET("", c.note.List)
	notes.GET("/:id", c.note.Get)
	notes.PUT("/:id", c.note.Update)
	notes.DELETE("/:id", c.note.Delete)

	notebooks := rg.Group("/notebooks")
	notebooks.GET("", c.notebook.List)
	notebooks.POST("", c.notebook.Create)
	notebooks.PUT("/:id", c.notebook.Update)
	notebooks.DELETE("/:id", c.notebook.Delete)

	chat := rg.Group("/chat")
	chat.POST("", c.chat.Send)
	chat.GET("/history", c.chat.History)
	chat.DELETE("/history", c.chat.Clear)

	rg.POST("/ai-notes/generate-draft", c.chat.GenerateDraft)
}
