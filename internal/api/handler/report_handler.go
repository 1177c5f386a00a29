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

type ReportHandler struct {
	reportService *service.ReportService
}

func NewReportHandler(rs *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: rs}
}

// POST /reports
func (h *ReportHandler) CreateReport(c *gin.Context) {
	var report domain.Report
	if err := c.ShouldBindJSON(&report); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dữ liệu report không hợp lệ: " + err.Error()})
		return
	}
	created, err := h.reportService.CreateReport(c.Request.Context(), &report)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GET /reports
func (h *ReportHandler) GetAllReports(c *gin.Context) {
	reports, err := h.reportService.GetAllReports(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

// GET /reports/:id
func (h *ReportHandler) GetReportByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID report không hợp lệ"})
		return
	}
	report, err := h.reportService.GetReportByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy report"})
			return
		}
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// PUT /reports/:id
func (h *ReportHandler) UpdateReport(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID report không hợp lệ"})
		return
	}
	var dto domain.ReportUpdateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dữ liệu report không hợp lệ: " + err.Error()})
		return
	}
	updated, err := h.reportService.UpdateReport(c.Request.Context(), id, dto)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
