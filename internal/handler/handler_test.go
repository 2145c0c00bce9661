package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/morphcute/mlbb-gifters/internal/auth"
	"github.com/morphcute/mlbb-gifters/internal/infrastructure"
	"github.com/morphcute/mlbb-gifters/internal/middleware"
	"github.com/morphcute/mlbb-gifters/internal/model"
	"github.com/morphcute/mlbb-gifters/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testCronSecret = "cron-secret"

type env struct {
	router *gin.Engine
	db     *gorm.DB
}

// setupEnv wires the full route table over a per-test in-memory database and
// a miniredis session store, mirroring the wiring in main.
func setupEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, infrastructure.MigrateSchemas(db))

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	authzService, err := service.NewAuthorizationService()
	require.NoError(t, err)
	authService := auth.NewService(db, redisClient, "test-secret")
	orderService := service.NewOrderService(db, authzService)
	slotService := service.NewSlotService(db, authzService)
	skinService := service.NewSkinService(db, authzService)
	userService := service.NewUserService(db, authzService)
	sweeper := service.NewCooldownSweeper(db)

	authHandler := NewAuthHandler(authService)
	publicHandler := NewPublicHandler(orderService, skinService)
	gifterHandler := NewGifterHandler(orderService, slotService)
	adminHandler := NewAdminHandler(orderService, slotService, skinService, userService)
	cronHandler := NewCronHandler(sweeper, testCronSecret)

	r := gin.New()
	r.POST("/api/auth/login", authHandler.Login)
	r.POST("/api/orders", publicHandler.SubmitOrder)
	r.GET("/api/orders/:id", publicHandler.GetOrder)
	r.GET("/api/track", publicHandler.TrackOrders)
	r.GET("/api/skins", publicHandler.AvailableSkins)
	r.GET("/api/skins/upcoming", publicHandler.UpcomingSkins)
	r.POST("/api/cron/sweep", cronHandler.Sweep)

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(authService))
	api.POST("/auth/logout", authHandler.Logout)
	api.POST("/orders/:id/assign", adminHandler.AssignGifter)
	api.POST("/orders/:id/follow", gifterHandler.MarkFollowed)
	api.POST("/orders/:id/sent", gifterHandler.MarkSent)
	api.GET("/gifter/orders", gifterHandler.MyOrders)
	api.POST("/gifter/slots", gifterHandler.AddMySlots)
	api.POST("/admin/slots", adminHandler.AddSlots)
	api.GET("/admin/orders", adminHandler.ListOrders)

	return &env{router: r, db: db}
}

func (e *env) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		b, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *env) createStaff(t *testing.T, email string, role model.Role) *model.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	hash := string(hashed)
	user := &model.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      email,
		Role:      role,
		Password:  &hash,
		CreatedAt: time.Now(),
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *env) login(t *testing.T, email string) string {
	t.Helper()
	w := e.do("POST", "/api/auth/login", "", gin.H{"email": email, "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp model.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func (e *env) createSkin(t *testing.T, name string) *model.Skin {
	t.Helper()
	skin := &model.Skin{
		ID:          uuid.NewString(),
		Name:        name,
		Price:       1000,
		IsActive:    true,
		ReleaseDate: time.Now().Add(-24 * time.Hour),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	require.NoError(t, e.db.Create(skin).Error)
	return skin
}

func orderBody(skinID, email, mlid string) gin.H {
	return gin.H{
		"skin_id": skinID,
		"name":    "Test Buyer",
		"email":   email,
		"ign":     "TestIGN",
		"mlid":    mlid,
		"server":  "2901",
	}
}

func TestSubmitAndTrackOrder(t *testing.T) {
	e := setupEnv(t)
	skin := e.createSkin(t, "Fanny - Skylark")

	w := e.do("POST", "/api/orders", "", orderBody(skin.ID, "buyer@example.com", "123456"))
	require.Equal(t, http.StatusCreated, w.Code)
	var order model.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	require.Equal(t, model.StatusPending, order.Status)

	w = e.do("GET", "/api/orders/"+order.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do("GET", "/api/track?mlid=123456&server=2901", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tracked []model.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tracked))
	require.Len(t, tracked, 1)

	// Missing fields are rejected before touching the store.
	w = e.do("POST", "/api/orders", "", gin.H{"skin_id": skin.ID})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do("GET", "/api/orders/does-not-exist", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRateLimitSurfacesReason(t *testing.T) {
	e := setupEnv(t)
	skin := e.createSkin(t, "Gusion - K'")

	for i := 0; i < 3; i++ {
		w := e.do("POST", "/api/orders", "", orderBody(skin.ID, "spam@example.com", "777"))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := e.do("POST", "/api/orders", "", orderBody(skin.ID, "spam@example.com", "777"))
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Contains(t, w.Body.String(), "Too many recent orders")
}

func TestFulfillmentFlowOverHTTP(t *testing.T) {
	e := setupEnv(t)
	skin := e.createSkin(t, "Chou - Iori Yagami")
	e.createStaff(t, "admin@example.com", model.RoleAdmin)
	gifter := e.createStaff(t, "gifter@example.com", model.RoleGifter)

	adminToken := e.login(t, "admin@example.com")
	gifterToken := e.login(t, "gifter@example.com")

	// Gifter declares capacity.
	w := e.do("POST", "/api/gifter/slots", gifterToken, gin.H{"skin_id": skin.ID, "quantity": 2})
	require.Equal(t, http.StatusCreated, w.Code)

	// Buyer orders, admin assigns.
	w = e.do("POST", "/api/orders", "", orderBody(skin.ID, "b@example.com", "4242"))
	require.Equal(t, http.StatusCreated, w.Code)
	var order model.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))

	w = e.do("POST", "/api/orders/"+order.ID+"/assign", adminToken, gin.H{})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	require.Equal(t, model.StatusAssigned, order.Status)
	require.Equal(t, gifter.ID, *order.GifterID)

	// Gifter cannot assign.
	w = e.do("POST", "/api/orders/"+order.ID+"/assign", gifterToken, gin.H{})
	require.Equal(t, http.StatusForbidden, w.Code)

	// Gifter follows; the order shows up in their queue.
	w = e.do("POST", "/api/orders/"+order.ID+"/follow", gifterToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do("GET", "/api/gifter/orders", gifterToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []model.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mine))
	require.Len(t, mine, 1)

	// Cron sweep requires the exact secret.
	w = e.do("POST", "/api/cron/sweep", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	w = e.do("POST", "/api/cron/sweep", "not-the-secret", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Backdate the deadline so the sweep picks the order up.
	require.NoError(t, e.db.Model(&model.Order{}).Where("id = ?", order.ID).
		Update("ready_at", time.Now().Add(-time.Hour)).Error)

	w = e.do("POST", "/api/cron/sweep", testCronSecret, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"updated":1`)

	w = e.do("POST", "/api/orders/"+order.ID+"/sent", gifterToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	require.Equal(t, model.StatusSent, order.Status)
	require.NotNil(t, order.SentAt)
}

func TestAssignWithoutSlotsReturnsConflict(t *testing.T) {
	e := setupEnv(t)
	skin := e.createSkin(t, "Empty Skin")
	e.createStaff(t, "admin@example.com", model.RoleAdmin)
	adminToken := e.login(t, "admin@example.com")

	w := e.do("POST", "/api/orders", "", orderBody(skin.ID, "b@example.com", "5151"))
	require.Equal(t, http.StatusCreated, w.Code)
	var order model.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))

	w = e.do("POST", "/api/orders/"+order.ID+"/assign", adminToken, gin.H{})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), "no slots available")
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	e := setupEnv(t)

	w := e.do("GET", "/api/admin/orders", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do("GET", "/api/admin/orders", "garbage-token", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutInvalidatesSession(t *testing.T) {
	e := setupEnv(t)
	e.createStaff(t, "admin@example.com", model.RoleAdmin)
	token := e.login(t, "admin@example.com")

	w := e.do("GET", "/api/admin/orders", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do("POST", "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = e.do("GET", "/api/admin/orders", token, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
