package routes

import (
	"log"
	"os"

	controller "crewmatch/controllers"
	"crewmatch/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"
)

func SetupAuthRoutes(app *fiber.App, db *gorm.DB) {
	authLogger := log.New(os.Stdout, "AUTH: ", log.Ldate|log.Ltime|log.Lshortfile)

	auth := app.Group("/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Public auth endpoints
	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)
	auth.Post("/refresh", controller.RefreshToken)

	// Google OAuth
	auth.Get("/google", controller.GoogleOAuth)
	auth.Get("/google/callback", controller.GoogleOAuthCallback)

	// Protected auth endpoints
	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Get("/me", controller.GetCurrentUser)

	// Payment: checkout is protected, the webhook is called by Stripe and
	// authenticates via its signature instead
	paymentController := controller.NewPaymentController(db, log.New(os.Stdout, "PAYMENT: ", log.LstdFlags))
	payment := app.Group("/payment")
	payment.Post("/checkout-session", middleware.Protected(), paymentController.CreateCheckoutSession)
	payment.Post("/webhook", paymentController.HandlePaymentWebhook)

	authLogger.Println("Authentication routes initialized successfully")
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB) {
	eventController := controller.NewEventController(db, log.New(os.Stdout, "EVENT: ", log.LstdFlags))
	applicationController := controller.NewApplicationController(db, log.New(os.Stdout, "APPLICATION: ", log.LstdFlags))
	crewController := controller.NewCrewController(db, log.New(os.Stdout, "CREW: ", log.LstdFlags))
	discoveryController := controller.NewDiscoveryController(db, log.New(os.Stdout, "DISCOVER: ", log.LstdFlags))
	participationController := controller.NewParticipationController(db, log.New(os.Stdout, "PARTICIPATION: ", log.LstdFlags))
	ratingController := controller.NewRatingController(db, log.New(os.Stdout, "RATING: ", log.LstdFlags))

	api := app.Group("/api/v1", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Profile routes
	profile := api.Group("/profile")
	profile.Get("/", controller.GetProfile)
	profile.Put("/", controller.UpdateProfile)
	profile.Get("/completeness", controller.GetProfileCompleteness)

	// Boat routes
	boat := api.Group("/boats")
	boat.Post("/", controller.CreateBoat)
	boat.Get("/", controller.GetBoats)
	boat.Get("/:id", controller.GetBoat)
	boat.Put("/:id", controller.UpdateBoat)
	boat.Delete("/:id", controller.DeleteBoat)

	// Event routes (owner side)
	event := api.Group("/events")
	event.Post("/", eventController.CreateEvent)
	event.Get("/", eventController.GetMyEvents)
	event.Get("/:id", eventController.GetEvent)
	event.Put("/:id", eventController.UpdateEvent)
	event.Post("/:id/status", eventController.SetEventStatus)
	event.Put("/:id/crew-required", eventController.SetCrewRequired)
	event.Delete("/:id", eventController.DeleteEvent)

	// Crew board and applicant listing
	event.Get("/:id/crew", crewController.GetEventCrew)
	event.Get("/:id/applicants", crewController.GetEventApplicants)

	// Apply and invite, rate limited per user+event
	event.Post("/:id/apply", middleware.CrewActionRateLimiter(), applicationController.Apply)
	event.Post("/:id/invite", middleware.CrewActionRateLimiter(), applicationController.Invite)

	// Application routes
	application := api.Group("/applications")
	application.Get("/mine", applicationController.GetMyApplications)
	application.Post("/:id/status", applicationController.SetStatus)
	application.Post("/:id/withdraw", applicationController.Withdraw)
	api.Get("/invites/mine", applicationController.GetMyInvites)

	// Discovery routes
	discover := api.Group("/discover")
	discover.Get("/events", discoveryController.DiscoverEvents)
	discover.Get("/sailors", discoveryController.DiscoverSailors)

	// Participation routes
	participation := api.Group("/participations")
	participation.Get("/mine", participationController.GetMyParticipations)
	participation.Post("/:id/confirm", participationController.Confirm)
	participation.Post("/:id/complete", participationController.Complete)
	participation.Get("/:id/can-rate", participationController.CanRate)
	participation.Post("/:id/ratings", ratingController.SubmitRating)

	// Rating routes
	api.Get("/users/:id/ratings", ratingController.GetRatingsForUser)

	// WebSocket crew board, pushed to on every application change. Registered
	// inside the protected group so subscribing needs a valid session (the
	// browser client authenticates via the access_token cookie).
	event.Get("/:id/crew/ws", websocket.New(func(c *websocket.Conn) {
		controller.HandleCrewBoardWS(c)
	}))

	log.Println("API routes initialized successfully")
}

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	SetupAuthRoutes(app, db)
	SetupAPIRoutes(app, db)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
