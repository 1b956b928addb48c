package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"garden-core/internal/models"
)

func (h *Handler) CreateAlertRule(c *gin.Context) {
	var req models.AlertRuleCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Metric.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown kind"})
		return
	}
	if !req.Condition.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "condition must be above or below"})
		return
	}

	rule, err := h.store.CreateAlertRule(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.logger.Infof("Created alert rule %s: %s %s %g", rule.ID, rule.Metric, rule.Condition, rule.Threshold)
	c.JSON(http.StatusCreated, rule)
}

func (h *Handler) ListAlertRules(c *gin.Context) {
	var deviceID *uuid.UUID
	if v := c.Query("deviceId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid deviceId"})
			return
		}
		deviceID = &id
	}
	var active *bool
	if v := c.Query("active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid active"})
			return
		}
		active = &b
	}

	rules, err := h.store.ListAlertRules(c.Request.Context(), deviceID, active)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.AlertRulesListResponse{Data: rules, Count: len(rules)})
}

// DeleteAlertRule deactivates a rule. The row stays so trigger history keeps
// resolving.
func (h *Handler) DeleteAlertRule(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeactivateAlertRule(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK())
}

func (h *Handler) GetAlertHistory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	triggers, err := h.store.ListTriggers(c.Request.Context(), id, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.AlertTriggersListResponse{Data: triggers, Count: len(triggers)})
}
