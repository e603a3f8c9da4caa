package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"mirror/internal/api/handlers"
	"mirror/internal/api/middleware"
	"mirror/internal/config"
	"mirror/internal/database"
	"mirror/internal/logger"
	"mirror/internal/sync"

	"github.com/gin-gonic/gin"
)

type Server struct {
	config *config.Config
	logger *logger.Logger
	db     *database.Database
	router *gin.Engine
	server *http.Server
}

func New(cfg *config.Config, logger *logger.Logger, db *database.Database, syncService *sync.Service) *Server {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	// Initialize handlers
	productHandler := handlers.NewProductHandler(db.DB, logger)
	orderHandler := handlers.NewOrderHandler(db.DB, logger)
	syncHandler := handlers.NewSyncHandler(syncService, logger)

	// Health check
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Mirror API is running",
			"status":  "healthy",
		})
	})

	// Routes
	v1 := router.Group("/api/v1")
	{
		// Products
		products := v1.Group("/products")
		{
			products.GET("", productHandler.List)
			products.GET("/calendar", productHandler.Calendar)
			products.GET("/:id", productHandler.Get)
		}

		// Orders
		orders := v1.Group("/orders")
		{
			orders.GET("", orderHandler.List)
			orders.GET("/:id", orderHandler.Get)
		}

		// Sync triggers
		syncGroup := v1.Group("/sync")
		{
			syncGroup.POST("/products", syncHandler.SyncProducts)
			syncGroup.POST("/orders", syncHandler.SyncOrders)
		}
	}

	return &Server{
		config: cfg,
		logger: logger,
		db:     db,
		router: router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on " + addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}
