package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ksquare-onboarding/internal/models"
)

// statusForError maps an application error to its HTTP status. Anything that
// is not an AppError is treated as internal.
func statusForError(err error) int {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}

	switch appErr.Kind {
	case models.ErrorKindValidation:
		return http.StatusBadRequest
	case models.ErrorKindNotFound:
		return http.StatusNotFound
	case models.ErrorKindTimeout:
		return http.StatusGatewayTimeout
	case models.ErrorKindExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	body := gin.H{"error": err.Error()}

	var appErr *models.AppError
	if errors.As(err, &appErr) {
		body["error"] = appErr.Message
		if appErr.Code != "" {
			body["code"] = appErr.Code
		}
	}

	c.JSON(statusForError(err), body)
}
