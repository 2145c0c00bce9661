package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/morphcute/mlbb-gifters/internal/service"

	"github.com/gin-gonic/gin"
)

// CronHandler exposes the cooldown sweep to the external scheduler.
type CronHandler struct {
	sweeper *service.CooldownSweeper
	secret  string
}

// NewCronHandler creates the cron handler. The secret gates the trigger.
func NewCronHandler(sweeper *service.CooldownSweeper, secret string) *CronHandler {
	return &CronHandler{sweeper: sweeper, secret: secret}
}

// Sweep handles POST /api/cron/sweep. A failed sweep only fails this
// invocation; the next scheduled run retries the same predicate.
func (h *CronHandler) Sweep(c *gin.Context) {
	token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	updated, err := h.sweeper.Sweep(c.Request.Context(), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "updated": updated})
}
