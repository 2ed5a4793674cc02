package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"

	"github.com/Nazmul246/SLS-Lead-Collector/config"
	"github.com/Nazmul246/SLS-Lead-Collector/followup"
	"github.com/Nazmul246/SLS-Lead-Collector/middleware"
	"github.com/Nazmul246/SLS-Lead-Collector/routes"
	"github.com/Nazmul246/SLS-Lead-Collector/worker"
)

func main() {
	// Initialize logger
	logger := log.New(os.Stdout, "SERVER: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if dsn := config.AppConfig.SentryDSN; dsn != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         dsn,
			Environment: config.AppConfig.Environment,
		})
		if err != nil {
			logger.Printf("Sentry init failed: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	// Create Fiber app
	app := fiber.New()

	// Add CORS middleware
	corsConfig := middleware.DefaultCORSConfig()
	if len(config.AppConfig.CORSAllowedOrigins) > 0 {
		corsConfig.AllowedOrigins = config.AppConfig.CORSAllowedOrigins
	}
	app.Use(middleware.CORS(corsConfig))

	// Follow-up cadence plumbing: one notification board and one shared
	// countdown ticker for the whole process
	clock := followup.SystemClock{}
	board := followup.NewBoard()
	ticker := followup.NewTicker(clock, time.Second)

	// Initialize and start the follow-up worker
	followUpWorker := worker.NewFollowUpWorker(config.DB, board, clock, log.New(os.Stdout, "FOLLOWUP: ", log.LstdFlags))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go followUpWorker.Start(ctx)

	// Setup routes
	routes.SetupRoutes(app, config.DB, board, ticker, clock)

	// Health check endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "running",
			"version": "1.0.0",
		})
	})

	// Start server
	logger.Printf("🚀 Server starting on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
