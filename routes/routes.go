package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"

	"github.com/Nazmul246/SLS-Lead-Collector/config"
	controller "github.com/Nazmul246/SLS-Lead-Collector/controllers"
	"github.com/Nazmul246/SLS-Lead-Collector/followup"
	"github.com/Nazmul246/SLS-Lead-Collector/middleware"
	"github.com/Nazmul246/SLS-Lead-Collector/utils"
)

func SetupAPIRoutes(app *fiber.App, db *gorm.DB, board *followup.Board, ticker *followup.Ticker, clock followup.Clock) {
	// Initialize controllers with their respective loggers
	leadController := controller.NewLeadController(db, log.New(os.Stdout, "LEAD: ", log.LstdFlags))
	scrapeLogger := log.New(os.Stdout, "SCRAPE: ", log.LstdFlags)
	scrapeController := controller.NewScrapeController(db,
		utils.NewScraperClient(config.AppConfig.ScraperURL, scrapeLogger),
		scrapeLogger)
	emailLogger := log.New(os.Stdout, "EMAIL: ", log.LstdFlags)
	emailController := controller.NewEmailController(db,
		utils.NewMailerClient(config.AppConfig.MailerURL, config.AppConfig.FromEmail, emailLogger),
		emailLogger)
	statsController := controller.NewStatsController(db, log.New(os.Stdout, "STATS: ", log.LstdFlags))
	followUpController := controller.NewFollowUpController(db, board, ticker, clock,
		log.New(os.Stdout, "FOLLOWUP: ", log.LstdFlags))

	// API group with logging middleware
	api := app.Group("/api", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Lead routes
	api.Get("/leads", leadController.GetShopifyLeads)
	api.Get("/leads/google-maps", leadController.GetGoogleMapsLeads)
	api.Post("/leads", leadController.CreateLead)
	api.Get("/leads/:id", leadController.GetLead)
	api.Put("/leads/:id", leadController.UpdateLead)
	api.Delete("/leads/:id", leadController.DeleteLead)
	api.Delete("/leads", leadController.ClearShopifyLeads)
	api.Delete("/leads/google-maps/all", leadController.ClearGoogleMapsLeads)

	// Scrape routes, throttled
	api.Post("/scrape", middleware.ScrapeRateLimiter(), scrapeController.ScrapeShopify)
	api.Post("/scrape-google-maps", middleware.ScrapeRateLimiter(), scrapeController.ScrapeGoogleMaps)

	// Export routes
	api.Get("/export", leadController.ExportShopifyLeads)
	api.Get("/export-google-maps", leadController.ExportGoogleMapsLeads)

	// Email routes
	api.Post("/send-emails", emailController.SendEmails)

	// Stats routes
	api.Get("/stats", statsController.GetShopifyStats)
	api.Get("/stats/google-maps", statsController.GetGoogleMapsStats)
	api.Get("/tracking/stats/all", emailController.GetTrackingStats)
	api.Get("/tracking/stats/:leadType", emailController.GetTrackingStats)

	// Follow-up cadence routes
	api.Get("/leads/:id/follow-up", followUpController.GetFollowUp)
	api.Post("/leads/:id/follow-up/initial", followUpController.MarkInitialSent)
	api.Post("/leads/:id/follow-up/:stage", followUpController.MarkFollowUpSent)
	api.Delete("/leads/:id/follow-up", followUpController.ResetFollowUp)

	// Overdue notification routes
	api.Get("/notifications/overdue", followUpController.GetOverdueNotifications)
	api.Post("/notifications/focus", followUpController.FocusLead)
	api.Get("/notifications/focus", followUpController.GetFocusedLead)

	// Countdown stream, websocket upgrade required
	api.Use("/leads/:id/follow-up/countdown", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	api.Get("/leads/:id/follow-up/countdown", websocket.New(followUpController.HandleCountdownWS))

	// Log initialization
	log.Println("API routes initialized successfully")
}

func SetupTrackingRoutes(app *fiber.App, db *gorm.DB) {
	emailController := controller.NewEmailController(db, nil, log.New(os.Stdout, "TRACK: ", log.LstdFlags))

	// Open/click tracking is hit from recipients' mail clients, no /api prefix
	app.Get("/track/open/:messageID/:token", emailController.HandleOpenTracking)
	app.Get("/track/click/:messageID/:token", emailController.HandleClickTracking)
}

func SetupRoutes(app *fiber.App, db *gorm.DB, board *followup.Board, ticker *followup.Ticker, clock followup.Clock) {
	SetupAPIRoutes(app, db, board, ticker, clock)
	SetupTrackingRoutes(app, db)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
