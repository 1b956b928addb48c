package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"garden-core/internal/db"
	"garden-core/internal/models"
)

func (h *Handler) CreateChannel(c *gin.Context) {
	var req models.NotificationChannelCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := models.ValidateChannelConfig(req.ChannelType, req.Config); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ch, err := h.store.CreateChannel(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.logger.Infof("Created %s channel %s", ch.ChannelType, ch.ID)
	c.JSON(http.StatusCreated, ch)
}

func (h *Handler) ListChannels(c *gin.Context) {
	enabledOnly, _ := strconv.ParseBool(c.Query("enabled"))
	channels, err := h.store.ListChannels(c.Request.Context(), enabledOnly)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ChannelsListResponse{Data: channels, Count: len(channels)})
}

func (h *Handler) UpdateChannel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.NotificationChannelUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Config != nil {
		existing, err := h.store.GetChannel(c.Request.Context(), id)
		if err != nil {
			h.respondError(c, err)
			return
		}
		if err := models.ValidateChannelConfig(existing.ChannelType, req.Config); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	ch, err := h.store.UpdateChannel(c.Request.Context(), id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ch)
}

func (h *Handler) DeleteChannel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteChannel(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK())
}

// TestChannel sends a synthetic message through one channel and reports the
// outcome synchronously. This is the only dispatch path that blocks.
func (h *Handler) TestChannel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.notifier.Test(c.Request.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			h.respondError(c, err)
			return
		}
		h.logger.Warnf("Channel %s test failed: %v", id, err)
		c.JSON(http.StatusBadGateway, gin.H{"status": "failed", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.OK())
}
