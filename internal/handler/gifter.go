package handler

import (
	"net/http"

	"github.com/morphcute/mlbb-gifters/internal/middleware"
	"github.com/morphcute/mlbb-gifters/internal/service"

	"github.com/gin-gonic/gin"
)

// GifterHandler serves the gifter dashboard operations.
type GifterHandler struct {
	orderService service.OrderService
	slotService  service.SlotService
}

// NewGifterHandler creates the gifter handler.
func NewGifterHandler(orderService service.OrderService, slotService service.SlotService) *GifterHandler {
	return &GifterHandler{orderService: orderService, slotService: slotService}
}

// MyOrders handles GET /api/gifter/orders.
func (h *GifterHandler) MyOrders(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	orders, err := h.orderService.ListForGifter(c.Request.Context(), actor, actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// MyInventory handles GET /api/gifter/inventory.
func (h *GifterHandler) MyInventory(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	inventory, err := h.slotService.GifterInventory(c.Request.Context(), actor, actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inventory)
}

type addOwnSlotsRequest struct {
	SkinID   string `json:"skin_id" binding:"required"`
	Quantity int    `json:"quantity"`
}

// AddMySlots handles POST /api/gifter/slots (self-declared capacity).
func (h *GifterHandler) AddMySlots(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req addOwnSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.slotService.AddOwnSlots(c.Request.Context(), actor, req.SkinID, req.Quantity); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// MarkFollowed handles POST /api/orders/:id/follow.
func (h *GifterHandler) MarkFollowed(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	order, err := h.orderService.MarkFollowed(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// MarkSent handles POST /api/orders/:id/sent.
func (h *GifterHandler) MarkSent(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	order, err := h.orderService.MarkSent(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
