package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v76"

	"crewmatch/config"
	controller "crewmatch/controllers"
	"crewmatch/middleware"
	"crewmatch/routes"
	"crewmatch/worker"
)

func main() {
	logger := log.New(os.Stdout, "CREWMATCH: ", log.Ldate|log.Ltime|log.Lshortfile)

	if err := config.LoadConfig(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	if config.AppConfig.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         config.AppConfig.SentryDSN,
			Environment: config.AppConfig.Environment,
		}); err != nil {
			logger.Printf("Sentry init failed: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	if err := config.ConnectDB(); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	stripe.Key = config.AppConfig.StripeSecretKey
	controller.InitGoogleOAuth()

	app := fiber.New()
	app.Use(middleware.CORS())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweeper := worker.NewEventSweeper(config.DB, log.New(os.Stdout, "SWEEPER: ", log.LstdFlags))
	go sweeper.Start(ctx)

	routes.SetupRoutes(app, config.DB)

	logger.Printf("🚀 Server starting on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
