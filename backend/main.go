package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"updaily/backend/config"
	"updaily/backend/controllers"
	"updaily/backend/middleware"
	"updaily/backend/routes"
	"updaily/backend/scheduler"
	"updaily/backend/services"
	"updaily/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(utils.LoggerConfig{
		Format: cfg.Logging.Format,
		Level:  cfg.Logging.Level,
	})
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		logger.Fatal("Error initializing database", zap.Error(err))
	}
	if err := utils.Migrate(db); err != nil {
		logger.Fatal("Error migrating database", zap.Error(err))
	}

	svc := services.New(db, cfg, logger)

	var status controllers.SchedulerStatus
	if cfg.Scheduler.Enabled {
		sched, err := scheduler.New(cfg, svc.Generator, svc.Maintenance, svc.Rotation, logger)
		if err != nil {
			logger.Fatal("Error creating scheduler", zap.Error(err))
		}
		sched.Start()
		defer sched.Stop()
		status = sched
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "UpDaily",
		ErrorHandler: controllers.ErrorHandler,
	})

	// Middleware
	app.Use(middleware.LoggingMiddleware(logger))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORS.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + middleware.RequestIDHeader,
	}))

	// Setup routes
	routes.SetupRoutes(app, db, cfg, svc, status)

	go func() {
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			logger.Fatal("Server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
}
