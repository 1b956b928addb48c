package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"garden-core/internal/models"
)

func (h *Handler) ListSensors(c *gin.Context) {
	devices, err := h.store.ListDevices(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.DevicesListResponse{Data: devices, Count: len(devices)})
}

func (h *Handler) GetSensor(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	device, err := h.store.GetDevice(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, device)
}

func (h *Handler) UpdateSensor(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.DeviceUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	device, err := h.store.UpdateDevice(c.Request.Context(), id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, device)
}

// DeleteSensor removes a device. Its readings and rule associations cascade
// at the store level.
func (h *Handler) DeleteSensor(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteDevice(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	h.logger.Infof("Deleted device %s", id)
	c.JSON(http.StatusOK, models.OK())
}

func (h *Handler) CreatePlant(c *gin.Context) {
	var req models.PlantCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	plant, err := h.store.CreatePlant(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plant)
}

func (h *Handler) ListPlants(c *gin.Context) {
	plants, err := h.store.ListPlants(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.PlantsListResponse{Data: plants, Count: len(plants)})
}

func (h *Handler) DeletePlant(c *gin.Context) {
	id, ok := pathID(c, "plant_id")
	if !ok {
		return
	}
	if err := h.store.DeletePlant(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK())
}

func (h *Handler) AttachSensor(c *gin.Context) {
	plantID, ok := pathID(c, "plant_id")
	if !ok {
		return
	}
	var req models.PlantSensorAssociation
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.AssociatePlant(c.Request.Context(), req.DeviceID, plantID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.OK())
}

func (h *Handler) DetachSensor(c *gin.Context) {
	plantID, ok := pathID(c, "plant_id")
	if !ok {
		return
	}
	sensorID, ok := pathID(c, "sensor_id")
	if !ok {
		return
	}
	if err := h.store.UnassociatePlant(c.Request.Context(), sensorID, plantID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK())
}
