package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"garden-core/internal/db"
	"garden-core/internal/models"
)

// LogWateringEvent records a manual watering. The detection heuristic is
// not consulted; the plant's schedule is bumped as a side effect.
func (h *Handler) LogWateringEvent(c *gin.Context) {
	plantID, ok := pathID(c, "plant_id")
	if !ok {
		return
	}
	var req models.WateringEventCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	at := time.Now().UTC()
	if req.DetectedAt != nil {
		at = req.DetectedAt.UTC()
	}

	ev, err := h.watering.LogManual(c.Request.Context(), plantID, at)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ev)
}

func (h *Handler) ListWateringEvents(c *gin.Context) {
	plantID, ok := pathID(c, "plant_id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	events, err := h.store.ListWateringEvents(c.Request.Context(), plantID, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.WateringEventsListResponse{Data: events, Count: len(events)})
}

// DeleteWateringEvent removes a manual event. Auto events are immutable, so
// the store rejects them with not-found.
func (h *Handler) DeleteWateringEvent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteWateringEvent(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK())
}

func (h *Handler) CreateWateringSchedule(c *gin.Context) {
	plantID, ok := pathID(c, "plant_id")
	if !ok {
		return
	}
	var req models.WateringScheduleCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	schedule, err := h.store.CreateWateringSchedule(c.Request.Context(), plantID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	schedule.Derive(time.Now().UTC())
	c.JSON(http.StatusCreated, schedule)
}

func (h *Handler) GetWateringSchedule(c *gin.Context) {
	plantID, ok := pathID(c, "plant_id")
	if !ok {
		return
	}
	schedule, err := h.store.GetWateringSchedule(c.Request.Context(), plantID)
	if err != nil {
		// Read endpoints answer with collections; a plant without a
		// schedule is an empty one, not a 404.
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusOK, models.WateringSchedulesListResponse{Data: []models.WateringSchedule{}, Count: 0})
			return
		}
		h.respondError(c, err)
		return
	}
	schedule.Derive(time.Now().UTC())
	c.JSON(http.StatusOK, models.WateringSchedulesListResponse{Data: []models.WateringSchedule{schedule}, Count: 1})
}

func (h *Handler) DeleteWateringSchedule(c *gin.Context) {
	plantID, ok := pathID(c, "plant_id")
	if !ok {
		return
	}
	if err := h.store.DeleteWateringSchedule(c.Request.Context(), plantID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK())
}
