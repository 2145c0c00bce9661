package handler

import (
	"errors"
	"net/http"

	"github.com/morphcute/mlbb-gifters/internal/auth"
	"github.com/morphcute/mlbb-gifters/internal/middleware"
	"github.com/morphcute/mlbb-gifters/internal/model"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves staff login and logout.
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Logout handles POST /api/auth/logout (requires a valid session).
func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.GetToken(c)
	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
