package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"sales-micro/internal/customers/adapters"
	"sales-micro/internal/customers/application"
	"sales-micro/internal/customers/infrastructure"
	"sales-micro/internal/customers/ports"
	"sales-micro/pkg/config"
	"sales-micro/pkg/db"
	"sales-micro/pkg/events"
	"sales-micro/pkg/logger"
	"sales-micro/pkg/middleware"
	"sales-micro/pkg/rabbitmq"
	"sales-micro/pkg/tls"
)

func main() {
	// Load configuration
	cfg := config.LoadForService("CUSTOMERS")
	cfg.DBName = getEnvOrDefault("CUSTOMERS_DB_NAME", "customers_db")
	cfg.HTTPPort = getEnvOrDefault("CUSTOMERS_HTTP_PORT", "8081")

	// Initialize logger
	log := logger.New("customers-service", cfg.LogLevel)
	defer log.Sync()

	log.Info("starting customers service")

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
	repo := adapters.NewPostgresCustomerRepository(dbConn)
	if err := repo.Migrate(); err != nil {
		log.Fatal("failed to migrate database: " + err.Error())
	}

	// Connect to RabbitMQ
	var publisher ports.EventPublisher
	var rabbitConn *rabbitmq.Connection
	rabbitConn, err = rabbitmq.NewConnection(cfg.RabbitMQURL, log)
	if err != nil {
		log.Warn("failed to connect to RabbitMQ, events will be disabled: " + err.Error())
	} else {
		defer rabbitConn.Close()

		pub, err := rabbitmq.NewPublisher(rabbitConn, events.ExchangeCustomers, log)
		if err != nil {
			log.Warn("failed to create publisher: " + err.Error())
		} else {
			publisher = adapters.NewRabbitMQPublisher(pub, log)
		}
	}

	// Initialize use case
	useCase := application.NewCustomerUseCase(repo, publisher, log)

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
