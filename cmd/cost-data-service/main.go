package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/shakespr/cost-data-service/internal/api/http"
	"github.com/shakespr/cost-data-service/internal/config"
	"github.com/shakespr/cost-data-service/internal/costs"
	"github.com/shakespr/cost-data-service/internal/costs/numbeo"
	"github.com/shakespr/cost-data-service/internal/geo"
	"github.com/shakespr/cost-data-service/internal/scheduler"
	"github.com/shakespr/cost-data-service/internal/store"
)

func main() {
	// Load configuration (godotenv is applied inside Load).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Store: Postgres when configured, in-memory otherwise.
	var costStore costs.Store
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		pg, err := store.NewPostgres(ctx, cfg.DatabaseURL)
		cancel()
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer pg.Close()
		costStore = pg
	} else {
		log.Println("INFO: DATABASE_URL not set; using in-memory store")
		costStore = store.NewMemoryStore()
	}

	// Shared HTTP client for outbound scrape calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	source := numbeo.NewSource(httpClient, numbeo.Config{
		BaseURL:   cfg.SourceBaseURL,
		UserAgent: cfg.UserAgent,
		MinDelay:  cfg.MinFetchDelay,
		MaxDelay:  cfg.MaxFetchDelay,
	})

	// Region resolution needs a Google API key; without one regions stay blank.
	var regions costs.RegionResolver
	if cfg.GeocoderAPIKey != "" {
		regions = geo.NewResolver(cfg.GeocoderAPIKey)
	}

	service := costs.NewService(costStore, source, regions, cfg.FreshnessWindow)

	// Scheduler pre-warming tracked cities.
	sched := scheduler.New(cfg.TrackedCities, cfg.RefreshInterval, service)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "cost-data-service",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "cost-data-service",
		})
	})

	httpapi.RegisterRoutes(app, service)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
