package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"sales-micro/internal/products/adapters"
	"sales-micro/internal/products/application"
	"sales-micro/internal/products/infrastructure"
	"sales-micro/pkg/config"
	"sales-micro/pkg/db"
	"sales-micro/pkg/logger"
	"sales-micro/pkg/middleware"
	"sales-micro/pkg/tls"
)

func main() {
	// Load configuration
	cfg := config.LoadForService("PRODUCTS")
	cfg.DBName = getEnvOrDefault("PRODUCTS_DB_NAME", "products_db")
	cfg.HTTPPort = getEnvOrDefault("PRODUCTS_HTTP_PORT", "8082")

	// Initialize logger
	log := logger.New("products-service", cfg.LogLevel)
	defer log.Sync()

	log.Info("starting products service")

	// Connect to database
	dbConn, err := db.NewConnection(db.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
		Timeout:  cfg.DBTimeout,
	})
	if err != nil {
		log.Fatal("failed to connect to database: " + err.Error())
	}
	log.Info("connected to database")

	// Initialize repository and run migrations
	repo := adapters.NewPostgresProductRepository(dbConn)
	if err := repo.Migrate(); err != nil {
		log.Fatal("failed to migrate database: " + err.Error())
	}

	// Initialize use case
	useCase := application.NewProductUseCase(repo, log)

	// Start HTTP server
	httpHandler := infrastructure.NewHTTPHandler(useCase)
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.TraceID())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.ErrorHandler(log))
	router.Use(middleware.CORS())

	api := router.Group("/api/v1")
	httpHandler.RegisterRoutes(api)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
	}

	go func() {
		var err error
		if cfg.TLSEnabled {
			tlsConfig, tlsErr := tls.ServerConfig(cfg.TLSCertFile, cfg.TLSKeyFile, cfg.TLSCAFile, false)
			if tlsErr != nil {
				log.Fatal("failed to load TLS config: " + tlsErr.Error())
			}
			httpServer.TLSConfig = tlsConfig
			log.Info("HTTPS server listening on :" + cfg.HTTPPort)
			err = httpServer.ListenAndServeTLS("", "")
		} else {
			log.Info("HTTP server listening on :" + cfg.HTTPPort)
			err = httpServer.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error: " + err.Error())
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown error: " + err.Error())
	}

	log.Info("server stopped")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
