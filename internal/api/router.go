package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"garden-core/internal/config"
	"garden-core/internal/logging"
)

// NewRouter assembles the gin engine with all routes mounted under the
// configured base path. Health, metrics and the websocket feed live at the
// root.
func NewRouter(h *Handler, logger *logging.Logger, cfg config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLoggingMiddleware(logger))

	api := r.Group(cfg.API.BasePath)
	{
		// Readings
		api.POST("/readings", h.CreateReadings)
		api.GET("/readings", h.ListReadings)
		api.GET("/readings/trends", h.GetTrend)

		// Alert rules
		api.POST("/alerts", h.CreateAlertRule)
		api.GET("/alerts", h.ListAlertRules)
		api.DELETE("/alerts/:id", h.DeleteAlertRule)
		api.GET("/alerts/:id/history", h.GetAlertHistory)

		// Notification channels
		api.POST("/notification-channels", h.CreateChannel)
		api.GET("/notification-channels", h.ListChannels)
		api.PUT("/notification-channels/:id", h.UpdateChannel)
		api.DELETE("/notification-channels/:id", h.DeleteChannel)
		api.POST("/notification-channels/:id/test", h.TestChannel)

		// Sensors
		api.GET("/sensors", h.ListSensors)
		api.GET("/sensors/:id", h.GetSensor)
		api.PUT("/sensors/:id", h.UpdateSensor)
		api.DELETE("/sensors/:id", h.DeleteSensor)

		// Plants and device association
		api.POST("/plants", h.CreatePlant)
		api.GET("/plants", h.ListPlants)
		api.DELETE("/plants/:plant_id", h.DeletePlant)
		api.POST("/plants/:plant_id/sensors", h.AttachSensor)
		api.DELETE("/plants/:plant_id/sensors/:sensor_id", h.DetachSensor)

		// Watering
		api.POST("/plants/:plant_id/watering-events", h.LogWateringEvent)
		api.GET("/plants/:plant_id/watering-events", h.ListWateringEvents)
		api.DELETE("/watering-events/:id", h.DeleteWateringEvent)
		api.POST("/plants/:plant_id/watering-schedule", h.CreateWateringSchedule)
		api.GET("/plants/:plant_id/watering-schedule", h.GetWateringSchedule)
		api.DELETE("/plants/:plant_id/watering-schedule", h.DeleteWateringSchedule)

		// Calibration profiles
		api.POST("/soil-types", h.CreateSoilType)
		api.GET("/soil-types", h.ListSoilTypes)
		api.PUT("/soil-types/:id", h.UpdateSoilType)
		api.DELETE("/soil-types/:id", h.DeleteSoilType)

		// Optimal ranges
		api.POST("/optimal-ranges", h.CreateOptimalRange)
		api.GET("/optimal-ranges", h.ListOptimalRanges)
		api.PUT("/optimal-ranges/:id", h.UpdateOptimalRange)
		api.DELETE("/optimal-ranges/:id", h.DeleteOptimalRange)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ws/alerts", h.AlertsFeed)

	return r
}
