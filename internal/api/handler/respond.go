package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farai-coder/parklee-backend-official/internal/repository"
	"github.com/farai-coder/parklee-backend-official/internal/service"
)

// statusForServiceError ánh xạ lỗi nghiệp vụ sang HTTP status. Mọi handler
// dùng chung mapping này.
func statusForServiceError(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrNoOpenSession):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrConflict), errors.Is(err, repository.ErrDuplicateEntry):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidState):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondServiceError(c *gin.Context, err error) {
	status := statusForServiceError(err)
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "Lỗi hệ thống", "details": err.Error()})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
