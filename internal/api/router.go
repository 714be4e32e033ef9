package api

import "github.com/gin-gonic/gin"

// SetupRoutes registers the HTTP surface consumed by the web client.
func SetupRoutes(router *gin.Engine, h *Handler) {
	router.POST("/alarms", h.SaveAlarm())
	router.GET("/alarms", h.ListAlarms())
	router.POST("/locks/simulate", h.SimulateMissedAlarm())
	router.POST("/locks/attempt", h.AttemptUnlock())
	router.GET("/insights/morning", h.MorningInsights())
}
