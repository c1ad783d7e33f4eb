// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/codr1/themeforge/internal/api/themes"
	"github.com/codr1/themeforge/internal/artifacts"
	appconfig "github.com/codr1/themeforge/internal/config"
	"github.com/codr1/themeforge/internal/db"
	"github.com/codr1/themeforge/internal/export"
	"github.com/codr1/themeforge/internal/ratelimit"
	"github.com/codr1/themeforge/internal/scheduler"
)

type Config struct {
	Port            string
	Environment     string
	ConfigPath      string
	ShutdownTimeout time.Duration
}

func loadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found")
	}

	return &Config{
		Port:            getEnv("PORT", ""),
		Environment:     getEnv("ENVIRONMENT", ""),
		ConfigPath:      getEnv("CONFIG_PATH", "config/app.yaml"),
		ShutdownTimeout: time.Duration(getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 30)) * time.Second,
	}, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func setupLogger(environment string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

// applyOverrides lets the process environment win over the YAML file.
func applyOverrides(config *Config, appConfig *appconfig.Config) {
	if config.Port == "" {
		config.Port = strconv.Itoa(appConfig.App.Port)
	}
	if config.Environment == "" {
		config.Environment = appConfig.App.Environment
	}
	if config.Environment == "" {
		config.Environment = "development"
	}
}

func main() {
	config, err := loadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	appConfig, err := appconfig.Load(config.ConfigPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", config.ConfigPath).Msg("Failed to load application configuration")
	}
	applyOverrides(config, appConfig)
	setupLogger(config.Environment)

	database, err := db.NewFromConfig(appConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close()

	deps, err := newDependencies(appConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure theme exports")
	}
	defer deps.Limiter.Close()
	themes.InitHandlers(database.Queries, deps)

	if err := scheduler.Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize scheduler")
	}
	svc, err := scheduler.ServiceInstance()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load scheduler")
	}
	if _, err := scheduler.RegisterRetentionJob(svc, database.Queries, appConfig.Retention.Schedule, appConfig.Retention.KeepPerTheme); err != nil {
		log.Fatal().Err(err).Msg("Failed to register snapshot retention job")
	}
	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	// Create server instance
	server := newServer(config, appConfig)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Run server
	g.Go(func() error {
		log.Info().Str("port", config.Port).Str("environment", config.Environment).Msg("Starting server")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Wait for interrupt signal
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		log.Info().Msg("Shutting down server")
		if err := scheduler.Stop(); err != nil {
			log.Error().Err(err).Msg("Failed to stop scheduler")
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
}

func newDependencies(appConfig *appconfig.Config) (themes.Dependencies, error) {
	cache, err := lru.New[string, export.Artifact](appConfig.Export.CacheSize)
	if err != nil {
		return themes.Dependencies{}, fmt.Errorf("create export cache: %w", err)
	}

	deps := themes.Dependencies{
		Cache: cache,
		Limiter: ratelimit.New(&ratelimit.Config{
			ExportMaxPerHour:   appConfig.RateLimit.ExportsPerHourPerUser,
			ExportMaxIPPerHour: appConfig.RateLimit.ExportsPerHourPerIP,
		}),
		TrustProxy: appConfig.App.TrustProxy,
	}

	// Without a sink the publish route answers 503.
	if appConfig.Export.Sink != appconfig.SinkNone {
		sink, err := artifacts.New(appConfig.Export)
		if err != nil {
			deps.Limiter.Close()
			return themes.Dependencies{}, fmt.Errorf("create export sink: %w", err)
		}
		deps.Sink = sink
		log.Info().Str("sink", appConfig.Export.Sink).Msg("Theme publishing enabled")
	}
	return deps, nil
}
