// internal/server/routes.go
package server

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"

	"claude-restore/internal/observability"
)

//go:embed ui/index.html
var indexHTML []byte

// NewRouter builds the gin engine with middleware and every route
func NewRouter(h *Handlers, metrics *observability.Metrics) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), AccessLog(metrics))
	SetupRoutes(router, h, metrics)
	return router
}

// SetupRoutes registers the UI, health, metrics and API routes
func SetupRoutes(router *gin.Engine, h *Handlers, metrics *observability.Metrics) {
	router.GET("/", serveIndex)
	router.GET("/index.html", serveIndex)
	router.GET("/health", HealthCheck)
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	api := router.Group("/api")
	{
		api.GET("/projects", h.ListProjects)
		api.GET("/projects/:projectId/conversations", h.ListConversations)
		api.GET("/conversations/:conversationId/checkpoints", h.ListCheckpoints)
		api.GET("/blob", h.GetBlob)
		api.POST("/restore", h.Restore)

		export := api.Group("/export")
		{
			export.GET("/global", h.ExportGlobal)
			export.GET("/projects/:projectId", h.ExportProject)
			export.GET("/projects/:projectId/conversations/:conversationId", h.ExportConversation)
			export.GET("/checkpoint", h.ExportCheckpoint)
		}

		imports := api.Group("/import")
		{
			imports.POST("/global", h.ImportGlobal)
			imports.POST("/projects/:projectId/conversations", h.ImportConversation)
			imports.POST("/checkpoint", h.ImportCheckpoint)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
}

func serveIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}
