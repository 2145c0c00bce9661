package handler

import (
	"errors"
	"net/http"

	"github.com/morphcute/mlbb-gifters/internal/service"

	"github.com/gin-gonic/gin"
)

// respondError maps core errors onto HTTP status codes: policy rejections 429,
// authorization 403, not-found 404, bad transitions 422, slot exhaustion 409,
// everything else 500. The policy reason string is passed through so the
// caller can display it.
func respondError(c *gin.Context, err error) {
	var policyErr *service.PolicyError
	switch {
	case errors.As(err, &policyErr):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": policyErr.Reason})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrSkinNotFound),
		errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrGifterNoFreeSlots),
		errors.Is(err, service.ErrNoFreeSlots):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSkinNotPurchasable),
		errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
