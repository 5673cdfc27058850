package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stratuminvest/stratum-backend/internal/apperrors"
)

// abortWithError maps the service error taxonomy onto HTTP statuses.
// Anything unrecognized is a store failure; its detail stays in the logs.
func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrInsufficientFunds):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrStateConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "Operation not permitted"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
