package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"

	controller "elevatortrack/controllers"
	"elevatortrack/middleware"
)

func SetupAuthRoutes(app *fiber.App, db *gorm.DB) {
	authLogger := log.New(os.Stdout, "AUTH: ", log.Ldate|log.Ltime|log.Lshortfile)
	authController := controller.NewAuthController(db, authLogger)

	auth := app.Group("/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Public auth endpoints; signup is rate limited per origin so the
	// endpoint can't flood inboxes with magic links
	auth.Post("/signup", middleware.SignupRateLimiter(), authController.Signup)
	auth.Get("/verify", authController.Verify)
	auth.Get("/status", authController.Status)
	auth.Post("/logout", authController.Logout)

	authLogger.Println("Authentication routes initialized successfully")
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB) {
	authController := controller.NewAuthController(db, log.New(os.Stdout, "AUTH: ", log.LstdFlags))
	elevatorController := controller.NewElevatorController(db, log.New(os.Stdout, "ELEVATOR: ", log.LstdFlags))
	reportController := controller.NewReportController(db, log.New(os.Stdout, "REPORT: ", log.LstdFlags))
	statsController := controller.NewStatsController(db, log.New(os.Stdout, "STATS: ", log.LstdFlags))

	api := app.Group("/api", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Public reporting flow (QR scan, no authentication)
	api.Post("/report", reportController.Submit)
	api.Patch("/report/:id", reportController.AttachName)

	// Admin-side report triage
	api.Patch("/report/:id/suspicious", middleware.Protected(db), reportController.ToggleSuspicious)

	// Admin invitations
	api.Post("/admin/invite", middleware.Protected(db), authController.Invite)

	// Elevator management, access-scoped per admin
	elevators := api.Group("/elevators", middleware.Protected(db))
	elevators.Get("/", elevatorController.List)
	elevators.Post("/", elevatorController.Create)
	elevators.Put("/:id", elevatorController.Update)
	elevators.Delete("/:id", elevatorController.Delete)
	elevators.Get("/:id/qr", elevatorController.GetQR)
	elevators.Get("/:id/stats", statsController.GetElevatorStats)

	// WebSocket route for the live dashboard feed
	app.Get("/api/ws/reports", websocket.New(reportController.HandleReportFeed))

	log.Println("API routes initialized successfully")
}

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Setup health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	SetupAuthRoutes(app, db)
	SetupAPIRoutes(app, db)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
