package api

import "github.com/gin-gonic/gin"

// Register mounts the station API under /api.
func (h *Handler) Register(r *gin.Engine) {
	g := r.Group("/api")
	g.GET("/status", h.Status)
	g.GET("/telemetry/latest", h.LatestTelemetry)
	g.GET("/commands", h.ListCommands)
	g.POST("/commands", h.SubmitCommand)
}
