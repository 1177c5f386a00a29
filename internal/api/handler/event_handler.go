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

type EventHandler struct {
	eventService *service.EventService
}

func NewEventHandler(es *service.EventService) *EventHandler {
	return &EventHandler{eventService: es}
}

// POST /events
func (h *EventHandler) CreateEvent(c *gin.Context) {
	var dto domain.EventDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dữ liệu sự kiện không hợp lệ: " + err.Error()})
		return
	}
	event, err := h.eventService.CreateEvent(c.Request.Context(), dto)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

// GET /events
func (h *EventHandler) GetAllEvents(c *gin.Context) {
	events, err := h.eventService.GetAllEvents(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// GET /events/today
func (h *EventHandler) GetTodaysEvents(c *gin.Context) {
	events, err := h.eventService.GetTodaysEvents(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// GET /events/:id
func (h *EventHandler) GetEventByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID sự kiện không hợp lệ"})
		return
	}
	event, err := h.eventService.GetEventByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy sự kiện"})
			return
		}
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// DELETE /events/:id
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID sự kiện không hợp lệ"})
		return
	}
	if err := h.eventService.DeleteEvent(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Đã xóa sự kiện"})
}
