package main

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	redisstorage "github.com/gofiber/storage/redis"

	"github.com/FelixKnapp/ShopFox/app/controllers"
	"github.com/FelixKnapp/ShopFox/app/repository"
	"github.com/FelixKnapp/ShopFox/internal/pkg/cache"
	"github.com/FelixKnapp/ShopFox/internal/pkg/checkout"
	"github.com/FelixKnapp/ShopFox/internal/pkg/database"
	"github.com/FelixKnapp/ShopFox/internal/pkg/env"
	"github.com/FelixKnapp/ShopFox/internal/pkg/mail"
	"github.com/FelixKnapp/ShopFox/internal/pkg/payments"
	"github.com/FelixKnapp/ShopFox/internal/pkg/router"
)

func main() {
	app, sweeper := NewApplication()
	sweeper.Start()
	defer sweeper.Stop()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

// NewApplication wires the whole service: DB, cache, the payment webhook
// pipeline and the HTTP surface. All clients are constructed here and
// injected downward; nothing below owns a global connection.
func NewApplication() (*fiber.App, *payments.Sweeper) {
	env.SetupEnvFile()

	db, err := database.Connect()
	if err != nil {
		log.Fatalf("database setup failed: %v", err)
	}
	redisClient := cache.NewClient()

	repos := repository.NewFactory(db).GetRepositories()
	mailer := mail.NewSMTPMailer()

	payRepo := payments.NewRepository(db)
	payMonitor := payments.NewMonitor(payRepo, mailer)
	dispatcher := payments.NewDispatcher(payRepo, mailer)
	checkoutSvc := checkout.NewService(db)
	paySvc := payments.NewService(payRepo, checkoutSvc, dispatcher, payMonitor)

	sweepInterval := 120
	if v, err := strconv.Atoi(env.GetEnv("SWEEP_INTERVAL_SECONDS", "120")); err == nil && v > 0 {
		sweepInterval = v
	}
	sweeper := payments.NewSweeper(paySvc, payRepo, redisClient, time.Duration(sweepInterval)*time.Second)

	limiterStorage := redisstorage.New(redisstorage.Config{
		Host: env.GetEnv("CACHE_HOST", "localhost"),
		Port: mustAtoi(env.GetEnv("CACHE_PORT", "6379")),
	})

	app := fiber.New(fiber.Config{
		AppName: "ShopFox",
	})
	app.Use(recover.New(), logger.New())
	app.Get("/metrics", monitor.New())

	router.InstallRouter(app,
		router.NewWebhookRouter(controllers.NewWebhookController(paySvc, payMonitor), limiterStorage),
		router.NewApiRouter(
			controllers.NewOrderController(repos, checkoutSvc),
			controllers.NewProductController(repos),
			controllers.NewReliabilityController(repos, sweeper),
		),
	)

	return app, sweeper
}

func mustAtoi(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 6379
	}
	return v
}
