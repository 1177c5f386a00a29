package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farai-coder/parklee-backend-official/internal/domain"
	"github.com/farai-coder/parklee-backend-official/internal/service"
)

type LPRHandler struct {
	lprService *service.LPRService
}

func NewLPRHandler(ls *service.LPRService) *LPRHandler {
	return &LPRHandler{lprService: ls}
}

// POST /lpr/check-in
// Nhận ảnh camera cổng, nhận dạng biển số rồi chạy luồng check-in thường.
func (h *LPRHandler) ProcessCheckIn(c *gin.Context) {
	var req domain.LPRProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dữ liệu LPR không hợp lệ: " + err.Error()})
		return
	}
	if req.ImageBase64 == "" && req.ManualOverride == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cần ảnh base64 hoặc biển số nhập tay"})
		return
	}

	lprResult, session, err := h.lprService.ProcessCheckIn(c.Request.Context(), req)
	if err != nil {
		// Client vẫn cần biết biển số đã nhận dạng được gì khi check-in bị từ chối
		if lprResult != nil {
			c.JSON(statusForServiceError(err), gin.H{"error": err.Error(), "lpr": lprResult})
			return
		}
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"lpr": lprResult, "session": session})
}
