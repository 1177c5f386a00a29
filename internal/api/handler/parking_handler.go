package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/farai-coder/parklee-backend-official/internal/domain"
	"github.com/farai-coder/parklee-backend-official/internal/repository"
	"github.com/farai-coder/parklee-backend-official/internal/service"
)

type ParkingHandler struct {
	parkingService *service.ParkingService
}

func NewParkingHandler(ps *service.ParkingService) *ParkingHandler {
	return &ParkingHandler{parkingService: ps}
}

// --- Zones ---

// POST /zones
func (h *ParkingHandler) CreateZone(c *gin.Context) {
	var dto domain.ParkingZoneDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dữ liệu zone không hợp lệ: " + err.Error()})
		return
	}
	zone, err := h.parkingService.CreateZone(c.Request.Context(), dto)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, zone)
}

// GET /zones
func (h *ParkingHandler) GetAllZones(c *gin.Context) {
	zones, err := h.parkingService.GetAllZones(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, zones)
}

// GET /zones/:id
func (h *ParkingHandler) GetZoneByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID zone không hợp lệ"})
		return
	}
	zone, err := h.parkingService.GetZoneByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy zone"})
			return
		}
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, zone)
}

// PUT /zones/:id
func (h *ParkingHandler) UpdateZone(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID zone không hợp lệ"})
		return
	}
	var dto domain.ParkingZoneDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dữ liệu zone không hợp lệ: " + err.Error()})
		return
	}
	zone, err := h.parkingService.UpdateZone(c.Request.Context(), id, dto)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, zone)
}

// DELETE /zones/:id
func (h *ParkingHandler) DeleteZone(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID zone không hợp lệ"})
		return
	}
	if err := h.parkingService.DeleteZone(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Đã xóa zone"})
}

// GET /zones/:id/spots
func (h *ParkingHandler) GetSpotsByZone(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID zone không hợp lệ"})
		return
	}
	spots, err := h.parkingService.GetSpotsByZone(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, spots)
}

// --- Spots ---

// POST /spots
func (h *ParkingHandler) CreateSpot(c *gin.Context) {
	var dto domain.ParkingSpotDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dữ liệu chỗ đỗ không hợp lệ: " + err.Error()})
		return
	}
	spot, err := h.parkingService.CreateSpot(c.Request.Context(), dto)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, spot)
}

// GET /spots
func (h *ParkingHandler) GetAllSpots(c *gin.Context) {
	spots, err := h.parkingService.GetAllSpots(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, spots)
}

// GET /spots/available
func (h *ParkingHandler) GetAvailableSpots(c *gin.Context) {
	spots, err := h.parkingService.GetAvailableSpots(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, spots)
}

// GET /spots/:id
func (h *ParkingHandler) GetSpotByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID chỗ đỗ không hợp lệ"})
		return
	}
	spot, err := h.parkingService.GetSpotByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy chỗ đỗ"})
			return
		}
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, spot)
}

// PUT /spots/:id
func (h *ParkingHandler) UpdateSpot(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID chỗ đỗ không hợp lệ"})
		return
	}
	var dto domain.ParkingSpotUpdateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dữ liệu chỗ đỗ không hợp lệ: " + err.Error()})
		return
	}
	spot, err := h.parkingService.UpdateSpot(c.Request.Context(), id, dto)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, spot)
}

// DELETE /spots/:id
func (h *ParkingHandler) DeleteSpot(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID chỗ đỗ không hợp lệ"})
		return
	}
	if err := h.parkingService.DeleteSpot(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Đã xóa chỗ đỗ"})
}

// POST /spots/:id/reconcile
func (h *ParkingHandler) ReconcileSpotStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID chỗ đỗ không hợp lệ"})
		return
	}
	status, err := h.parkingService.ReconcileSpotStatus(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"spot_id": id, "status": status})
}

// POST /spots/bulk-upload (multipart, field "file")
func (h *ParkingHandler) BulkUploadSpots(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu file CSV (field 'file')"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Không mở được file CSV: " + err.Error()})
		return
	}
	defer file.Close()

	result, err := h.parkingService.BulkUploadSpots(c.Request.Context(), file)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /analytics/counts
func (h *ParkingHandler) GetSystemCounts(c *gin.Context) {
	counts, err := h.parkingService.GetSystemCounts(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}
