package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/meeting-intel/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg             *config.Config
	pipelineHandler *Pipeline
	webhookHandler  *TranscriptWebhook
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, pipelineHandler *Pipeline, webhookHandler *TranscriptWebhook) *Router {
	return &Router{
		cfg:             cfg,
		pipelineHandler: pipelineHandler,
		webhookHandler:  webhookHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	// API v1 group
	v1 := e.Group("/v1")

	v1.POST("/sync", rt.pipelineHandler.TriggerSync)
	v1.GET("/stats", rt.pipelineHandler.Stats)
	v1.POST("/ask", rt.pipelineHandler.Ask)
	v1.POST("/webhooks/transcripts", rt.webhookHandler.Handle)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}
