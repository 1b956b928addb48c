package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"garden-core/internal/calibration"
	"garden-core/internal/db"
	"garden-core/internal/ingest"
	"garden-core/internal/models"
)

func (h *Handler) CreateReadings(c *gin.Context) {
	var req models.ReadingsCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		// Undecodable bodies use the same per-field detail shape that
		// semantic validation failures do.
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []ingest.FieldError{{
			Loc: []interface{}{"body"}, Msg: err.Error(), Type: "value_error.jsondecode",
		}}})
		return
	}

	resp, err := h.ingest.Ingest(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) ListReadings(c *gin.Context) {
	deviceID, err := uuid.Parse(c.Query("deviceId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deviceId is required"})
		return
	}

	filter := db.ReadingsFilter{DeviceID: deviceID, Metric: c.Query("kind")}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be RFC3339"})
			return
		}
		filter.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be RFC3339"})
			return
		}
		filter.To = &t
	}
	filter.Limit, _ = strconv.Atoi(c.Query("limit"))
	filter.Offset, _ = strconv.Atoi(c.Query("offset"))

	readings, err := h.store.ListReadings(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ReadingsListResponse{Data: readings, Count: len(readings)})
}

var periodDays = map[string]int{"7d": 7, "30d": 30, "90d": 90}

func (h *Handler) GetTrend(c *gin.Context) {
	deviceID, err := uuid.Parse(c.Query("deviceId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deviceId is required"})
		return
	}
	kind := models.MetricKind(c.Query("kind"))
	if !kind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown kind"})
		return
	}
	period := c.Query("period")
	days, ok := periodDays[period]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "period must be one of 7d, 30d, 90d"})
		return
	}

	var normalize func(float64) float64
	if kind.Normalized() {
		normalize, err = h.deviceNormalizer(c, deviceID)
		if err != nil {
			h.respondError(c, err)
			return
		}
	}

	resp, err := h.trends.Trend(c.Request.Context(), deviceID, kind, period, days, normalize, time.Now().UTC())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// deviceNormalizer resolves the device's calibration pair for read-time
// normalization of moisture-like kinds.
func (h *Handler) deviceNormalizer(c *gin.Context, deviceID uuid.UUID) (func(float64) float64, error) {
	device, err := h.store.GetDevice(c.Request.Context(), deviceID)
	if err != nil {
		return nil, err
	}

	var profile *models.SoilType
	st, err := h.store.SoilTypeForDevice(c.Request.Context(), deviceID)
	if err == nil {
		profile = &st
	} else if !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}

	pair := calibration.SelectPair(profile, device.ResolutionBits)
	return func(raw float64) float64 {
		return calibration.Normalize(raw, pair.Dry, pair.Wet)
	}, nil
}
