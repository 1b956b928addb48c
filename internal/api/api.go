// Package api exposes the HTTP surface: ingestion, read endpoints, rule and
// channel management, watering, plus the live alert websocket feed.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"garden-core/internal/db"
	"garden-core/internal/ingest"
	"garden-core/internal/logging"
	"garden-core/internal/notify"
	"garden-core/internal/trend"
	"garden-core/internal/watering"
)

// Handler bundles the services the HTTP layer delegates to.
type Handler struct {
	store    *db.DB
	ingest   *ingest.Service
	trends   *trend.Aggregator
	notifier *notify.Service
	watering *watering.Detector
	logger   *logging.Logger
}

// NewHandler wires the HTTP layer to its services.
func NewHandler(store *db.DB, ing *ingest.Service, trends *trend.Aggregator, notifier *notify.Service, det *watering.Detector, logger *logging.Logger) *Handler {
	return &Handler{
		store:    store,
		ingest:   ing,
		trends:   trends,
		notifier: notifier,
		watering: det,
		logger:   logger,
	}
}

// respondError maps the service error taxonomy onto HTTP statuses.
// Validation failures carry per-field locations in a detail array.
func (h *Handler) respondError(c *gin.Context, err error) {
	var verr *ingest.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": verr.Errors})
	case errors.Is(err, db.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, db.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "resource already exists"})
	default:
		h.logger.Errorf("Request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// pathID parses a uuid path parameter, replying 400 on failure.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
