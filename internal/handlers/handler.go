package handlers

import (
	"net/http"

	"controlling_evse/internal/logger"
	"controlling_evse/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	metrics  http.Handler
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
// metricsHandler may be nil to disable the /metrics route.
func NewHandler(services *service.Service, metricsHandler http.Handler, log *logger.Logger) *Handler {
	return &Handler{services: services, metrics: metricsHandler, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics))
	}

	// Versioned API endpoints
	api := router.Group("/api/v1")
	{
		h.registerDeviceRoutes(api)
		h.registerHistoryRoutes(api)
		h.registerSettingsRoutes(api)
	}

	// Status stream over WebSocket (HTTP upgrade), same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerDeviceRoutes(api *gin.RouterGroup) {
	dev := api.Group("/device")
	{
		dev.GET("/status", h.getStatus)
		dev.POST("/refresh", h.refresh)
		// Body example: {"mode":"solar"}
		dev.POST("/mode", h.setMode)
		dev.POST("/current", h.setOverrideCurrent)
		dev.POST("/schedule", h.setSchedule)
		dev.POST("/cablelock", h.setCableLock)
		dev.POST("/reboot", h.reboot)
	}
}

func (h *Handler) registerHistoryRoutes(api *gin.RouterGroup) {
	history := api.Group("/history")
	{
		history.GET("", h.getHistory)
		history.DELETE("", h.clearHistory)
	}
}

func (h *Handler) registerSettingsRoutes(api *gin.RouterGroup) {
	settings := api.Group("/settings")
	{
		settings.GET("", h.getSettings)
		settings.PUT("", h.putSettings)
	}
}
