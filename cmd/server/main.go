package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/config"
	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/database"
	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/logging"
	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/routes"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormatJSON)

	// 2. Connect to Postgres and Redis
	if cfg.DBUrl == "" {
		logrus.Fatal("DB_URL is required")
	}
	if err := database.ConnectDB(cfg.DBUrl); err != nil {
		logrus.Fatalf("failed to connect to database: %v", err)
	}
	defer database.CloseDB()

	if err := database.ConnectRedis(cfg.RedisURL); err != nil {
		logrus.Fatalf("failed to connect to redis: %v", err)
	}
	defer database.CloseRedis()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// 3. Setup Fiber
	app := fiber.New()

	app.Use(cors.New())
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})
	background := routes.RegisterRoutes(app, cfg, database.DB, database.Redis, reg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	background.Start(ctx)

	// 4. Start Server
	go func() {
		logrus.WithFields(logrus.Fields{
			"port": cfg.Port,
			"env":  cfg.AppEnv,
		}).Info("server starting")
		if err := app.Listen(":" + cfg.Port); err != nil {
			logrus.WithError(err).Error("server stopped")
			cancel()
		}
	}()

	<-ctx.Done()
	logrus.Info("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logrus.WithError(err).Warn("graceful shutdown failed")
	}
}
