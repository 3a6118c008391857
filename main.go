package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"home-services-server/config"
	"home-services-server/database"
	"home-services-server/jobs"
	"home-services-server/middleware"
	"home-services-server/models"
	"home-services-server/routes"
	ws "home-services-server/websocket"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load configuration
	config.Load()

	// Initialize database
	if err := database.Initialize(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	if err := database.Migrate(database.DB); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	if err := database.SeedServices(database.DB); err != nil {
		log.Printf("⚠️ Catalog seeding failed: %v", err)
	}

	// Set Gin mode
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	// Security middleware stack
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.RateLimitMiddleware())
	router.Use(middleware.CORSMiddleware())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Home Services Server is running",
			"time":    time.Now().UTC(),
		})
	})

	// Realtime order feed
	hub := ws.NewHub()
	go hub.Run()
	routes.InitOrderFeed(hub)

	feedHandler := ws.NewFeedHandler(hub)
	wsGroup := router.Group("/api/v1/ws")
	wsGroup.Use(middleware.WebSocketAuthMiddleware())
	{
		wsGroup.GET("/worker", feedHandler.HandleWorkerFeed)
		wsGroup.GET("/customer", feedHandler.HandleCustomerFeed)
	}

	// API routes
	api := router.Group("/api/v1")
	{
		// Auth routes with strict rate limiting
		authRoutes := api.Group("/auth")
		authRoutes.Use(middleware.AuthRateLimitMiddleware())
		routes.RegisterAuthRoutes(authRoutes)

		// Public catalog routes
		routes.RegisterCatalogRoutes(api.Group("/catalog"))

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			routes.RegisterAuthenticatedAuthRoutes(protected.Group("/auth"))
			routes.RegisterOrderRoutes(protected.Group("/orders"))
			routes.RegisterAddressRoutes(protected.Group("/addresses"))
			routes.RegisterWorkerRoutes(protected.Group("/worker"))

			adminRoutes := protected.Group("/admin")
			adminRoutes.Use(middleware.RequireRole(models.RoleAdmin))
			routes.RegisterAdminRoutes(adminRoutes)
		}
	}

	// Background jobs
	tokenCleanup := jobs.NewTokenCleanupJob()
	tokenCleanup.Start()
	defer tokenCleanup.Stop()

	port := config.AppConfig.Server.Port
	log.Printf("🚀 Home Services Server listening on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
