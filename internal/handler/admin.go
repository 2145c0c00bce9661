package handler

import (
	"net/http"

	"github.com/morphcute/mlbb-gifters/internal/middleware"
	"github.com/morphcute/mlbb-gifters/internal/model"
	"github.com/morphcute/mlbb-gifters/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the admin dashboard operations: order coordination,
// inventory, catalog and user management.
type AdminHandler struct {
	orderService service.OrderService
	slotService  service.SlotService
	skinService  service.SkinService
	userService  service.UserService
}

// NewAdminHandler creates the admin handler.
func NewAdminHandler(orderService service.OrderService, slotService service.SlotService, skinService service.SkinService, userService service.UserService) *AdminHandler {
	return &AdminHandler{
		orderService: orderService,
		slotService:  slotService,
		skinService:  skinService,
		userService:  userService,
	}
}

func actorOrAbort(c *gin.Context) (service.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
	}
	return actor, ok
}

// ListOrders handles GET /api/admin/orders.
func (h *AdminHandler) ListOrders(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	orders, err := h.orderService.ListAll(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

type assignRequest struct {
	GifterID string `json:"gifter_id"` // empty means any gifter with a free slot
}

// AssignGifter handles POST /api/orders/:id/assign.
func (h *AdminHandler) AssignGifter(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orderService.Assign(c.Request.Context(), actor, c.Param("id"), req.GifterID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// RefundOrder handles POST /api/orders/:id/refund.
func (h *AdminHandler) RefundOrder(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	order, err := h.orderService.Refund(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// InvalidateOrder handles POST /api/orders/:id/invalidate.
func (h *AdminHandler) InvalidateOrder(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	order, err := h.orderService.Invalidate(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// DeleteOrder handles DELETE /api/orders/:id.
func (h *AdminHandler) DeleteOrder(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	if err := h.orderService.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type addSlotsRequest struct {
	SkinID   string `json:"skin_id" binding:"required"`
	GifterID string `json:"gifter_id" binding:"required"`
	Quantity int    `json:"quantity"`
}

// AddSlots handles POST /api/admin/slots.
func (h *AdminHandler) AddSlots(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req addSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.slotService.AddSlots(c.Request.Context(), actor, req.SkinID, req.GifterID, req.Quantity); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// ListUnusedSlots handles GET /api/admin/slots.
func (h *AdminHandler) ListUnusedSlots(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	slots, err := h.slotService.UnusedSlots(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, slots)
}

// CreateSkin handles POST /api/admin/skins.
func (h *AdminHandler) CreateSkin(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req model.SkinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	skin, err := h.skinService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, skin)
}

// UpdateSkin handles PUT /api/admin/skins/:id.
func (h *AdminHandler) UpdateSkin(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req model.SkinUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	skin, err := h.skinService.Update(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, skin)
}

// ListSkins handles GET /api/admin/skins.
func (h *AdminHandler) ListSkins(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	skins, err := h.skinService.All(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, skins)
}

type createGifterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// CreateGifter handles POST /api/admin/gifters.
func (h *AdminHandler) CreateGifter(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req createGifterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	gifter, err := h.userService.CreateGifter(c.Request.Context(), actor, req.Name, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gifter)
}

// ListGifters handles GET /api/admin/gifters.
func (h *AdminHandler) ListGifters(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	gifters, err := h.userService.Gifters(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gifters)
}

type banRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// BanUser handles POST /api/admin/users/:id/ban.
func (h *AdminHandler) BanUser(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req banRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.userService.Ban(c.Request.Context(), actor, c.Param("id"), req.Reason); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UnbanUser handles POST /api/admin/users/:id/unban.
func (h *AdminHandler) UnbanUser(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	if err := h.userService.Unban(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListBannedUsers handles GET /api/admin/users/banned.
func (h *AdminHandler) ListBannedUsers(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	users, err := h.userService.BannedUsers(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}
