package controllers

import (
	"errors"
	"net/http"

	"github.com/antoniodjones/pours-consumer/services"
	"github.com/antoniodjones/pours-consumer/utils"

	"github.com/gin-gonic/gin"
)

func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrAlertNotFound),
		errors.Is(err, services.ErrProfileNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrSessionAlreadyActive),
		errors.Is(err, services.ErrSessionNotActive):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidDrink),
		errors.Is(err, utils.ErrInvalidBiometrics),
		errors.Is(err, utils.ErrInvalidTimeRange),
		errors.Is(err, utils.ErrImplausibleReading):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusForError(err), gin.H{"error": err.Error()})
}
