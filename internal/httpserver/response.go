package httpserver

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-api/internal/domain"
)

// writeError maps domain errors onto HTTP statuses. Internal failures are
// logged with context and answered with a generic body; stack traces never
// leave the process.
func writeError(c *gin.Context, logger *log.Logger, err error) {
	var (
		insufficient *domain.InsufficientStockError
		mismatch     *domain.PriceMismatchError
		invalid      *domain.InvalidTransitionError
		upstream     *domain.UpstreamError
	)

	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
	case errors.As(err, &insufficient), errors.As(err, &mismatch), errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &upstream):
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment provider unavailable"})
	default:
		logger.Printf("http: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
