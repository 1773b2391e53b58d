package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"access_review/internal/review"
	"access_review/internal/store"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, review.ErrInvalidTransition), errors.Is(err, store.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, review.ErrInvalidRecord),
		errors.Is(err, review.ErrUnknownAction),
		errors.Is(err, review.ErrCommentRequired),
		errors.Is(err, review.ErrUnknownApplication):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
