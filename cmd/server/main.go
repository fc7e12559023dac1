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

	"github.com/lqor/igorforce/internal/application/services"
	"github.com/lqor/igorforce/internal/bootstrap"
	"github.com/lqor/igorforce/internal/infrastructure/database"
	"github.com/lqor/igorforce/internal/interfaces/middleware"
	"github.com/lqor/igorforce/internal/interfaces/rest"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}

	conn, err := database.OpenFromEnv()
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer conn.Close()
	log.Println("✅ Database ready")

	svcMgr := services.NewServiceManager(conn)
	log.Println("🔧 Service manager initialized")

	if err := bootstrap.InitializeStandardObjects(conn); err != nil {
		log.Fatalf("Failed to seed standard objects: %v", err)
	}
	if err := bootstrap.InitializeSystemData(svcMgr.Auth); err != nil {
		log.Fatalf("Failed to initialize system data: %v", err)
	}
	if os.Getenv("SEED_SAMPLE_DATA") == "true" {
		if err := bootstrap.InitializeSampleData(svcMgr); err != nil {
			log.Printf("⚠️  Warning: Failed to seed sample data: %v", err)
		}
	}

	router := gin.Default()
	router.Use(middleware.Cors())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"server": "golang",
		})
	})

	authHandler := rest.NewAuthHandler(svcMgr)
	catalogHandler := rest.NewCatalogHandler(svcMgr)
	recordHandler := rest.NewRecordHandler(svcMgr)
	flowHandler := rest.NewFlowHandler(svcMgr)

	requireAuth := middleware.RequireAuth()

	api := router.Group("/api")
	{
		// Public auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", requireAuth, authHandler.Me)
		}

		// Schema catalog
		catalog := api.Group("/catalog")
		catalog.Use(requireAuth)
		{
			catalog.GET("/objects", catalogHandler.ListObjects)
			catalog.POST("/objects", catalogHandler.CreateObject)
			catalog.GET("/objects/by-name/:name", catalogHandler.GetObjectByName)
			catalog.GET("/objects/by-name/:name/lookups", catalogHandler.ListLookupsTo)
			catalog.GET("/objects/:objectId", catalogHandler.GetObject)
			catalog.DELETE("/objects/:objectId", catalogHandler.DeleteObject)
			catalog.GET("/objects/:objectId/fields", catalogHandler.ListFields)
			catalog.POST("/objects/:objectId/fields", catalogHandler.CreateField)
			catalog.GET("/fields/:fieldId", catalogHandler.GetField)
			catalog.PATCH("/fields/:fieldId", catalogHandler.UpdateField)
			catalog.DELETE("/fields/:fieldId", catalogHandler.DeleteField)
		}

		// Dynamic records
		objects := api.Group("/objects")
		objects.Use(requireAuth)
		{
			objects.GET("/:objectId/records", recordHandler.ListRecords)
			objects.POST("/:objectId/records", recordHandler.CreateRecord)
		}
		records := api.Group("/records")
		records.Use(requireAuth)
		{
			records.GET("/:recordId", recordHandler.GetRecord)
			records.PUT("/:recordId", recordHandler.UpdateRecord)
			records.DELETE("/:recordId", recordHandler.DeleteRecord)
		}

		// Flow graph store
		flows := api.Group("/flows")
		flows.Use(requireAuth)
		{
			flows.GET("", flowHandler.ListFlows)
			flows.POST("", flowHandler.CreateFlow)
			flows.GET("/:flowId", flowHandler.GetFlow)
			flows.PATCH("/:flowId", flowHandler.UpdateFlow)
			flows.DELETE("/:flowId", flowHandler.DeleteFlow)
			flows.POST("/:flowId/activate", flowHandler.ActivateFlow)
			flows.POST("/:flowId/deactivate", flowHandler.DeactivateFlow)
			flows.GET("/:flowId/elements", flowHandler.ListElements)
			flows.POST("/:flowId/elements", flowHandler.CreateElement)
			flows.GET("/:flowId/connections", flowHandler.ListConnections)
			flows.POST("/:flowId/connections", flowHandler.CreateConnection)
		}
		elements := api.Group("/flow-elements")
		elements.Use(requireAuth)
		{
			elements.GET("/:elementId", flowHandler.GetElement)
			elements.PATCH("/:elementId", flowHandler.UpdateElement)
			elements.PATCH("/:elementId/position", flowHandler.UpdateElementPosition)
			elements.DELETE("/:elementId", flowHandler.DeleteElement)
		}
		connections := api.Group("/flow-connections")
		connections.Use(requireAuth)
		{
			connections.PATCH("/:connectionId", flowHandler.UpdateConnection)
			connections.DELETE("/:connectionId", flowHandler.DeleteConnection)
		}
	}

	log.Println("🚀 IgorForce backend started")
	log.Printf("📍 Server:       http://localhost:%s", port)
	log.Printf("🔐 Auth API:     http://localhost:%s/api/auth", port)
	log.Printf("📊 Catalog API:  http://localhost:%s/api/catalog", port)
	log.Printf("💾 Records API:  http://localhost:%s/api/records", port)
	log.Printf("🔀 Flows API:    http://localhost:%s/api/flows", port)
	log.Printf("💚 Health check: http://localhost:%s/health", port)

	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Server exiting")
}
