package main

import (
	"log"
	"net/http"

	"github.com/morphcute/mlbb-gifters/internal/auth"
	"github.com/morphcute/mlbb-gifters/internal/config"
	"github.com/morphcute/mlbb-gifters/internal/handler"
	"github.com/morphcute/mlbb-gifters/internal/infrastructure"
	"github.com/morphcute/mlbb-gifters/internal/middleware"
	"github.com/morphcute/mlbb-gifters/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()

	db, err := infrastructure.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := infrastructure.MigrateSchemas(db); err != nil {
		log.Fatalf("Failed to migrate database schemas: %v", err)
	}

	redisClient, err := infrastructure.ConnectRedis(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}

	// Initialize services.
	authzService, err := service.NewAuthorizationService()
	if err != nil {
		log.Fatalf("Failed to initialize authorization service: %v", err)
	}
	authService := auth.NewService(db, redisClient, cfg.JWTSecret)
	orderService := service.NewOrderService(db, authzService)
	slotService := service.NewSlotService(db, authzService)
	skinService := service.NewSkinService(db, authzService)
	userService := service.NewUserService(db, authzService)
	sweeper := service.NewCooldownSweeper(db)

	if err := infrastructure.NewSeedDataManager(db).SeedAll(); err != nil {
		log.Fatalf("Failed to setup seed data: %v", err)
	}

	// Initialize handlers.
	authHandler := handler.NewAuthHandler(authService)
	publicHandler := handler.NewPublicHandler(orderService, skinService)
	gifterHandler := handler.NewGifterHandler(orderService, slotService)
	adminHandler := handler.NewAdminHandler(orderService, slotService, skinService, userService)
	cronHandler := handler.NewCronHandler(sweeper, cfg.CronSecret)

	r := gin.Default()

	// Public routes.
	r.POST("/api/auth/login", authHandler.Login)
	r.POST("/api/orders", publicHandler.SubmitOrder)
	r.GET("/api/orders/:id", publicHandler.GetOrder)
	r.GET("/api/track", publicHandler.TrackOrders)
	r.GET("/api/skins", publicHandler.AvailableSkins)
	r.GET("/api/skins/upcoming", publicHandler.UpcomingSkins)
	r.POST("/api/cron/sweep", cronHandler.Sweep)

	// Authenticated routes. Role enforcement happens inside the services at
	// the authorization boundary; the middleware only builds the Actor.
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(authService))

	api.POST("/auth/logout", authHandler.Logout)

	api.POST("/orders/:id/assign", adminHandler.AssignGifter)
	api.POST("/orders/:id/follow", gifterHandler.MarkFollowed)
	api.POST("/orders/:id/sent", gifterHandler.MarkSent)
	api.POST("/orders/:id/refund", adminHandler.RefundOrder)
	api.POST("/orders/:id/invalidate", adminHandler.InvalidateOrder)
	api.DELETE("/orders/:id", adminHandler.DeleteOrder)

	api.GET("/gifter/orders", gifterHandler.MyOrders)
	api.GET("/gifter/inventory", gifterHandler.MyInventory)
	api.POST("/gifter/slots", gifterHandler.AddMySlots)

	admin := api.Group("/admin")
	admin.GET("/orders", adminHandler.ListOrders)
	admin.POST("/slots", adminHandler.AddSlots)
	admin.GET("/slots", adminHandler.ListUnusedSlots)
	admin.POST("/skins", adminHandler.CreateSkin)
	admin.PUT("/skins/:id", adminHandler.UpdateSkin)
	admin.GET("/skins", adminHandler.ListSkins)
	admin.POST("/gifters", adminHandler.CreateGifter)
	admin.GET("/gifters", adminHandler.ListGifters)
	admin.POST("/users/:id/ban", adminHandler.BanUser)
	admin.POST("/users/:id/unban", adminHandler.UnbanUser)
	admin.GET("/users/banned", adminHandler.ListBannedUsers)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	log.Printf("Starting MLBB gifters API on port %s", cfg.Port)
	log.Fatal(r.Run(":" + cfg.Port))
}
