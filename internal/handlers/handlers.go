package handlers

import (
	"errors"
	"net/http"

	apperrors "gatta/internal/errors"
	"gatta/internal/logger"
	"gatta/internal/realtime"
	"gatta/internal/service"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	services *service.Services
	hub      *realtime.Hub
}

func NewHandlers(services *service.Services, hub *realtime.Hub) *Handlers {
	return &Handlers{
		services: services,
		hub:      hub,
	}
}

// handleServiceError maps domain errors to HTTP statuses. Error bodies are
// always {"error": "..."}; unexpected errors are logged and hidden.
func handleServiceError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperrors.ErrInvalidPot),
		errors.Is(err, apperrors.ErrEmptyName),
		errors.Is(err, apperrors.ErrNameTooLong):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, apperrors.ErrPotNotFound),
		errors.Is(err, apperrors.ErrSeatNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrPotFull),
		errors.Is(err, apperrors.ErrDuplicateName),
		errors.Is(err, apperrors.ErrSeatAlreadyNamed):
		status = http.StatusConflict
	}

	_ = c.Error(err)
	if status == http.StatusInternalServerError {
		logger.WithContext(c.Request.Context()).Error(fallback, "error", err)
		c.JSON(status, gin.H{"error": fallback})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
