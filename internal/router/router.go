package router

import (
	"github.com/PohSayKeong/fundl/internal/handler"
	"github.com/PohSayKeong/fundl/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Setup 注册中间件与路由
func Setup(projects *handler.ProjectHandler, health *handler.HealthHandler, identityHeader string) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(middleware.RequestId())
	r.Use(middleware.AccessLog())
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(identityHeader))

	// 健康检查
	r.GET("/health", health.Health)

	// 项目相关路由
	group := r.Group("/projects")
	{
		group.GET("", projects.GetProjects)
		group.POST("", projects.CreateProject)
		group.GET("/:id", projects.GetProject)
		group.POST("/:id", projects.UpdateProject)
		group.GET("/:id/refund", projects.GetRefundStatus)
		group.GET("/:id/available", projects.GetOwnerFunds)
	}

	return r
}
