package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
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

// Container entry point: same wiring as the repo root main, plus signal
// handling for graceful shutdown.
func main() {
	app, sweeper := newApplication()
	sweeper.Start()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		sweeper.Stop()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "0.0.0.0"), env.GetEnv("APP_PORT", "4000"))
	if err := app.Listen(addr); err != nil {
		log.Fatal(err)
	}
}

func newApplication() (*fiber.App, *payments.Sweeper) {
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

	sweepInterval := 120 * time.Second
	if v, err := strconv.Atoi(env.GetEnv("SWEEP_INTERVAL_SECONDS", "120")); err == nil && v > 0 {
		sweepInterval = time.Duration(v) * time.Second
	}
	sweeper := payments.NewSweeper(paySvc, payRepo, redisClient, sweepInterval)

	port, err := strconv.Atoi(env.GetEnv("CACHE_PORT", "6379"))
	if err != nil {
		port = 6379
	}
	limiterStorage := redisstorage.New(redisstorage.Config{
		Host: env.GetEnv("CACHE_HOST", "localhost"),
		Port: port,
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
