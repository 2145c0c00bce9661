package handler

import (
	"net/http"

	"github.com/morphcute/mlbb-gifters/internal/model"
	"github.com/morphcute/mlbb-gifters/internal/service"

	"github.com/gin-gonic/gin"
)

// PublicHandler serves the unauthenticated surface: order submission,
// tracking and the catalog projections.
type PublicHandler struct {
	orderService service.OrderService
	skinService  service.SkinService
}

// NewPublicHandler creates the public handler.
func NewPublicHandler(orderService service.OrderService, skinService service.SkinService) *PublicHandler {
	return &PublicHandler{orderService: orderService, skinService: skinService}
}

// SubmitOrder handles POST /api/orders.
func (h *PublicHandler) SubmitOrder(c *gin.Context) {
	var req model.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// GetOrder handles GET /api/orders/:id (public tracking by order id).
func (h *PublicHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// TrackOrders handles GET /api/track?mlid=...&server=... (public tracking by
// in-game identity).
func (h *PublicHandler) TrackOrders(c *gin.Context) {
	mlid := c.Query("mlid")
	server := c.Query("server")
	if mlid == "" || server == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mlid and server are required"})
		return
	}

	orders, err := h.orderService.Track(c.Request.Context(), mlid, server)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// AvailableSkins handles GET /api/skins.
func (h *PublicHandler) AvailableSkins(c *gin.Context) {
	skins, err := h.skinService.Available(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, skins)
}

// UpcomingSkins handles GET /api/skins/upcoming.
func (h *PublicHandler) UpcomingSkins(c *gin.Context) {
	skins, err := h.skinService.Upcoming(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, skins)
}
