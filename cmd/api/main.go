package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/prize-redemption-service/internal/config"
	"github.com/fairyhunter13/prize-redemption-service/internal/handler"
	"github.com/fairyhunter13/prize-redemption-service/internal/repository"
	"github.com/fairyhunter13/prize-redemption-service/internal/repository/mongostore"
	"github.com/fairyhunter13/prize-redemption-service/internal/scheduler"
	"github.com/fairyhunter13/prize-redemption-service/internal/service"
	"github.com/fairyhunter13/prize-redemption-service/internal/validator"
	"github.com/fairyhunter13/prize-redemption-service/pkg/database"
)

// stores bundles the repositories of the selected driver.
type stores struct {
	coupons  service.CouponRepositoryInterface
	prizes   service.PrizeRepositoryInterface
	settings service.SettingsRepositoryInterface
	pinger   handler.Pinger
	close    func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	initLogger(cfg)

	ctx := context.Background()

	st, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("failed to open store")
	}

	couponService := service.NewCouponService(st.coupons, st.prizes)
	prizeService := service.NewPrizeService(st.prizes)
	settingsService := service.NewSettingsService(st.settings)
	authService := service.NewAuthService(
		cfg.Auth.AdminUsername,
		cfg.Auth.AdminPasswordHash,
		cfg.Auth.JWTSecret,
		cfg.Auth.TokenTTL,
	)
	if cfg.Auth.AdminPasswordHash == "" {
		log.Warn().Msg("ADMIN_PASSWORD_HASH is empty, admin login is disabled")
	}

	sched, err := scheduler.New(settingsService, cfg.Promo.SweepInterval)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduler")
	}

	app := fiber.New(fiber.Config{
		AppName:      "Prize Redemption Service",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CORSAllowOrigins,
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Authorization, Accept",
		MaxAge:       600,
	}))

	validate := validator.New()
	setupRoutes(app, routeHandlers{
		health:   handler.NewHealthHandler(st.pinger, cfg.Store.Driver),
		coupons:  handler.NewCouponHandler(couponService, validate, cfg.Server.PublicBaseURL),
		prizes:   handler.NewPrizeHandler(prizeService, validate),
		settings: handler.NewSettingsHandler(settingsService, validate),
		auth:     handler.NewAuthHandler(authService, validate),
	}, authService)

	sched.Start()

	go func() {
		log.Info().Str("port", cfg.Server.Port).Str("driver", cfg.Store.Driver).Msg("starting server")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	log.Info().Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	log.Info().Msg("waiting for in-flight requests to complete...")
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	if err := sched.Shutdown(); err != nil {
		log.Error().Err(err).Msg("error during scheduler shutdown")
	}

	// Close the store after the server and the sweep have stopped using it.
	log.Info().Msg("closing database connections...")
	st.close()
	log.Info().Msg("server stopped")
}

// openStores connects to the backend named by cfg.Store.Driver and prepares its schema.
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := database.NewPool(ctx, cfg.DB.DSN(), 5)
		if err != nil {
			return nil, err
		}
		if err := database.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &stores{
			coupons:  repository.NewCouponRepository(pool),
			prizes:   repository.NewPrizeRepository(pool),
			settings: repository.NewSettingsRepository(pool),
			pinger:   pool,
			close:    pool.Close,
		}, nil

	case config.DriverMongo:
		client, err := database.NewMongoClient(ctx, cfg.Mongo.URI, 5)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.Mongo.Database)
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return &stores{
			coupons:  mongostore.NewCouponStore(db),
			prizes:   mongostore.NewPrizeStore(db),
			settings: mongostore.NewSettingsStore(db),
			pinger:   database.MongoPinger{Client: client},
			close: func() {
				if err := client.Disconnect(context.Background()); err != nil {
					log.Error().Err(err).Msg("error disconnecting from mongo")
				}
			},
		}, nil
	}
	return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
}

// initLogger configures zerolog based on the application configuration.
func initLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Log.Pretty {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}
