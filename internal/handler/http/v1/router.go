package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	apiKey := APIKeyAuthMiddleware(h.cfg, h.logger)
	anyUser := JWTAuthMiddleware(h.cfg, h.logger)
	tourist := JWTAuthMiddleware(h.cfg, h.logger, RoleTourist)
	authority := JWTAuthMiddleware(h.cfg, h.logger, RoleAuthority)

	// Ячейки риска
	riskGroup := api.Group("/risk", apiKey)
	{
		riskGroup.GET("/cells", h.listCells)
		riskGroup.GET("/cells/nearby", h.nearbyCells)
		riskGroup.GET("/cells/count", h.countCells)
		riskGroup.GET("/cells/:id", h.getCell)
		riskGroup.POST("/recompute", h.recompute)
	}

	incidents := api.Group("/incidents")
	{
		incidents.POST("", anyUser, h.reportIncident)
		incidents.GET("", apiKey, h.listIncidents)
	}

	// Проверка местоположения
	location := api.Group("/location")
	{
		location.POST("/check", anyUser, h.checkLocation)
		location.GET("/stats", apiKey, h.getStats)
	}

	alerts := api.Group("/alerts")
	{
		alerts.POST("", tourist, h.createAlert)
		alerts.GET("", authority, h.listAlerts)
		alerts.GET("/counts", authority, h.alertCounts)
		alerts.GET("/heatmap", authority, h.alertHeatmap)
		alerts.GET("/stream", authority, h.streamAlerts)
		alerts.GET("/:id", authority, h.getAlert)
		alerts.POST("/:id/acknowledge", authority, h.acknowledgeAlert)
		alerts.POST("/:id/assign", authority, h.assignAlert)
		alerts.POST("/:id/resolve", authority, h.resolveAlert)
		alerts.POST("/:id/close", authority, h.closeAlert)
	}

	auditGroup := api.Group("/audit", apiKey)
	{
		auditGroup.POST("/subjects", h.registerSubject)
		auditGroup.GET("/subjects/:id/verify", h.verifySubject)
		auditGroup.GET("/alerts/:id/verify", h.verifyAlert)
	}

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)
}
