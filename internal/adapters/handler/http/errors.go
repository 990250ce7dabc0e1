package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mna11/ReadMe3D/internal/core/domain"
	"github.com/mna11/ReadMe3D/internal/core/services"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrMissingInput),
		errors.Is(err, domain.ErrMalformedDay),
		errors.Is(err, domain.ErrNonContiguous),
		errors.Is(err, domain.ErrInvalidWindowSize),
		errors.Is(err, domain.ErrInvalidUsername),
		errors.Is(err, services.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrSnapshotNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSnapshotConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrSourceUnavailable):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = "internal server error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
