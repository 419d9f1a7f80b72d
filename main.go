package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/agrocredito/agrocredito-backend/database"
	"github.com/agrocredito/agrocredito-backend/internal/config"
	"github.com/agrocredito/agrocredito-backend/internal/jobs"
	"github.com/agrocredito/agrocredito-backend/internal/logger"
	"github.com/agrocredito/agrocredito-backend/internal/market"
	"github.com/agrocredito/agrocredito-backend/internal/normalize"
	"github.com/agrocredito/agrocredito-backend/internal/projection"
	"github.com/agrocredito/agrocredito-backend/internal/reference"
	"github.com/agrocredito/agrocredito-backend/internal/routes"
	"github.com/agrocredito/agrocredito-backend/internal/scoring"
	"github.com/agrocredito/agrocredito-backend/internal/services"
	"github.com/agrocredito/agrocredito-backend/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	logger.Init("agrocredito-backend", cfg.Environment)

	// Initialize storage
	var store storage.Store
	if cfg.Database.Driver == "memory" {
		log.Warn().Msg("Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		db, err := database.Connect(cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		if err := database.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate database")
		}
		store = storage.NewDatabaseStore(db)
	}

	// Reference tables, optionally overridden from a workbook
	tables := reference.Default()
	if path := cfg.Reference.WorkbookPath; path != "" {
		summary, err := reference.ApplyWorkbook(tables, path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("Failed to load reference workbook")
		}
		log.Info().
			Strs("updated", summary.Updated).
			Strs("added", summary.Added).
			Msg("Reference workbook applied")
	}

	prices, closePrices := newPriceSource(cfg, tables)
	defer closePrices()

	// Outbound WhatsApp
	var (
		messenger services.Messenger
		templates *services.TemplateService
	)
	if cfg.Twilio.TwilioConfigured() {
		twilioService, err := services.NewTwilioService(cfg.Twilio)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Twilio service")
		}
		messenger = twilioService
		templates = services.NewTemplateService(twilioService, cfg.Twilio.ReminderTemplateSID)
		log.Info().Msg("Twilio service initialized")
	} else {
		log.Warn().Msg("Twilio credentials not found, replies will only be logged")
		messenger = services.LogMessenger{}
	}

	// Intake services
	resolver := normalize.NewResolver(tables)
	assessor := services.NewAssessor(
		scoring.NewEngine(tables),
		projection.NewProjector(tables, prices),
		store,
		resolver,
	)
	whatsappService := services.NewWhatsAppService(store, services.NewIntakeFlow(resolver), assessor)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reminderJob := jobs.NewReminderJob(store, messenger, templates, cfg.Jobs.ReminderInterval, cfg.Jobs.ReminderAfter)
	reminderJob.Start(ctx)

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "AgroCrédito Backend v" + routes.Version,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Admin-Key",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	routes.SetupRoutes(app, cfg, routes.Dependencies{
		Store:     store,
		WhatsApp:  whatsappService,
		Assessor:  assessor,
		Messenger: messenger,
	})

	// Handle graceful shutdown
	go func() {
		<-ctx.Done()
		log.Info().Msg("Gracefully shutting down...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("Server shutdown failed")
		}
	}()

	log.Info().
		Str("port", cfg.Server.Port).
		Str("environment", cfg.Environment).
		Str("storage", cfg.Database.Driver).
		Bool("whatsapp", cfg.Twilio.TwilioConfigured()).
		Bool("market_api", cfg.Market.APIURL != "").
		Msg("AgroCrédito backend starting")

	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

// newPriceSource builds the quote chain: Redis cache over the market API when
// configured, and always the static table last.
func newPriceSource(cfg *config.Config, tables *reference.Tables) (market.PriceSource, func()) {
	static := market.NewStaticSource(tables)
	if cfg.Market.APIURL == "" {
		return static, func() {}
	}

	var api market.PriceSource = market.NewHTTPSource(cfg.Market.APIURL, cfg.Market.Timeout)
	closeFn := func() {}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			// cache errors are not fatal, quotes go straight to the API
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unreachable, market cache degraded")
		}
		api = market.NewCachedSource(market.NewRedisCache(client), api, cfg.Market.CacheTTL)
		closeFn = func() {
			if err := client.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close Redis client")
			}
		}
	}

	log.Info().Str("url", cfg.Market.APIURL).Bool("cache", cfg.Redis.Addr != "").Msg("Market price API enabled")
	return market.Chain{api, static}, closeFn
}
