package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/topmuch/qrsell-sub000/database"
	"github.com/topmuch/qrsell-sub000/handlers"
	"github.com/topmuch/qrsell-sub000/live"
	"github.com/topmuch/qrsell-sub000/metrics"
	"github.com/topmuch/qrsell-sub000/middleware"
	"github.com/topmuch/qrsell-sub000/store"
)

func main() {
	// Load .env file at the very start
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading .env: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// --- Initialize PostgreSQL Database (for sellers and sessions) ---
	dbClient, err := database.NewPostgresDB()
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL database: %v", err)
	}
	defer dbClient.Close()

	// --- Initialize ClickHouse Database (for engagement events) ---
	chClient, err := database.NewClickHouseDB()
	if err != nil {
		log.Fatalf("Failed to initialize ClickHouse database: %v", err)
	}
	defer chClient.Close()

	// --- Initialize Stores ---
	sellerStore := store.NewSellerStore(dbClient.DB)
	sessionStore := store.NewSessionStore(dbClient.DB)
	eventStore := store.NewEventStore(chClient)

	coordinator := live.NewCoordinator(sessionStore, nil)

	// --- Initialize Handlers ---
	authHandlers := handlers.NewAuthHandlers(sellerStore)
	sessionHandlers := handlers.NewSessionHandlers(coordinator)
	analyticsHandlers := handlers.NewAnalyticsHandlers(eventStore, sellerStore, coordinator)

	metrics.Register()

	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		// Authentication Endpoints (no authentication required)
		api.POST("/signup", authHandlers.Signup)
		api.POST("/login", authHandlers.Login)
		api.POST("/logout", authHandlers.Logout)

		// Public storefront endpoints, polled by viewers
		public := api.Group("/public/:slug")
		{
			public.GET("/live", analyticsHandlers.GetPublicLiveState)
			public.POST("/track", analyticsHandlers.TrackEvent)
			public.GET("/whatsapp", analyticsHandlers.WhatsAppRedirect)
		}

		// Protected Routes (require a valid JWT token)
		protected := api.Group("/")
		protected.Use(middleware.AuthRequired())
		{
			liveGroup := protected.Group("/live")
			{
				liveGroup.POST("/start", sessionHandlers.StartSession)
				liveGroup.POST("/switch", sessionHandlers.SwitchProduct)
				liveGroup.POST("/offer", sessionHandlers.ActivateFlashOffer)
				liveGroup.POST("/stop", sessionHandlers.StopSession)
				liveGroup.GET("/current", sessionHandlers.GetCurrentSession)
			}

			statsGroup := protected.Group("/stats")
			{
				statsGroup.GET("/session/:id", analyticsHandlers.GetSessionStats)
				statsGroup.GET("/dashboard", analyticsHandlers.GetDashboard)
				statsGroup.GET("/export", analyticsHandlers.ExportCSV)
			}
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.Printf("QRSell API server starting on http://localhost:%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("QRSell API server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
