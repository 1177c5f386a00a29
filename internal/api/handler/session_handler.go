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

type SessionHandler struct {
	sessionService *service.SessionService
}

func NewSessionHandler(ss *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: ss}
}

// POST /sessions/check-in
func (h *SessionHandler) CheckIn(c *gin.Context) {
	var dto domain.CheckInDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dữ liệu check-in không hợp lệ: " + err.Error()})
		return
	}

	session, err := h.sessionService.CheckIn(c.Request.Context(), dto)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// POST /sessions/check-out
func (h *SessionHandler) CheckOut(c *gin.Context) {
	var dto domain.CheckOutDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dữ liệu check-out không hợp lệ: " + err.Error()})
		return
	}

	session, err := h.sessionService.CheckOut(c.Request.Context(), dto)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// GET /sessions/:id
func (h *SessionHandler) GetSessionByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID phiên đỗ xe không hợp lệ"})
		return
	}
	session, err := h.sessionService.GetSessionByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy phiên đỗ xe"})
			return
		}
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// GET /sessions
func (h *SessionHandler) GetAllSessions(c *gin.Context) {
	sessions, err := h.sessionService.GetAllSessions(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}
