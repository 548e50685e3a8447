package app

import (
	"grader_web/docs"
	"grader_web/internal/config"
	"grader_web/internal/controller"
	"grader_web/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/api/health", c.health.HealthCheck)

	// 1. 页面
	a.registerPageRoutes(router, c)

	// 2. JSON 接口
	api := router.Group("/api")
	api.Use(a.sessionMiddleware())
	{
		a.registerAssignmentRoutes(api, c)
		a.registerGradingRoutes(api, c)
		api.GET("/exports", c.export.History)
	}

	router.NoRoute(controller.NotFound)
}

func (a *App) registerPageRoutes(router *gin.Engine, c *controllers) {
	pages := router.Group("/")
	pages.Use(a.sessionMiddleware())
	{
		pages.GET("/", c.assignment.ListPage)
		pages.GET("/upload", c.assignment.UploadPage)
		pages.POST("/upload", c.assignment.Upload)

		pages.GET("/assignment/", c.grading.GradingPage)
		pages.POST("/assignment/:id/scores", c.grading.SaveScores)
		pages.POST("/assignment/:id/next", c.grading.NextPage)
		pages.POST("/assignment/:id/prev", c.grading.PrevPage)
		pages.POST("/assignment/:id/seek", c.grading.SeekPage)
		pages.GET("/assignment/:id/export", c.grading.ExportPage)

		// 本地归档下载，需与导出者是同一会话
		if c.export.Local != nil {
			pages.GET("/exports/*filepath", c.export.Archive)
		}
	}
}

func (a *App) registerAssignmentRoutes(api *gin.RouterGroup, c *controllers) {
	api.GET("/assignments", c.assignment.List)
	api.POST("/assignments", c.assignment.Create)
}

func (a *App) registerGradingRoutes(api *gin.RouterGroup, c *controllers) {
	grading := api.Group("/assignments/:id")
	{
		grading.GET("/grading", c.grading.View)
		grading.DELETE("/grading", c.grading.Close)
		grading.POST("/next", c.grading.Next)
		grading.POST("/prev", c.grading.Prev)
		grading.POST("/seek", c.grading.Seek)
		grading.PUT("/answers/:answerId/scores", c.grading.PutScores)
		grading.GET("/answers/:answerId/similar", c.grading.Similar)
		grading.GET("/grades", c.grading.Grades)
		grading.DELETE("/inferences", c.grading.DeleteInferences)
	}
}
