package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iliyamo/ai-health-analyze/internal/assistant"
	"github.com/iliyamo/ai-health-analyze/internal/config"
	"github.com/iliyamo/ai-health-analyze/internal/database"
	"github.com/iliyamo/ai-health-analyze/internal/handler"
	"github.com/iliyamo/ai-health-analyze/internal/middleware"
	"github.com/iliyamo/ai-health-analyze/internal/queue"
	"github.com/iliyamo/ai-health-analyze/internal/repository"
	"github.com/iliyamo/ai-health-analyze/internal/router"
	"github.com/iliyamo/ai-health-analyze/internal/service"
	"github.com/iliyamo/ai-health-analyze/web"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb, err := config.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, rate limiting and completion cache disabled")
	}
	if rdb != nil {
		defer rdb.Close()
		logger.Info().Msg("connected to redis")
	}

	catalog, err := assistant.LoadPrompts()
	if err != nil {
		return err
	}
	if cfg.OpenAIKey == "" {
		logger.Warn().Msg("OPENAI_API_KEY not set, completion requests will return an error message")
	}
	completer := newCompleter(cfg, rdb, logger)

	publisher := service.NewPublisher(cfg.RabbitMQURL, logger)
	defer publisher.Close()

	e := newEcho(cfg, logger)
	renderer, err := handler.NewRenderer(web.Templates())
	if err != nil {
		return err
	}
	router.RegisterRoutes(e, renderer, web.Static(), cfg.Language)

	var history queue.AnalysisStore
	if cfg.DatabaseEnabled() {
		db, err := database.Open(ctx, dbOptions(cfg))
		if err != nil {
			return err
		}
		defer db.Close()
		n, err := database.Migrate(ctx, db)
		if err != nil {
			return err
		}
		logger.Info().Int("statements", n).Msg("connected to mysql, schema up to date")

		analyses := repository.NewAnalysisRepo(db)
		history = analyses
		router.RegisterAuth(e,
			handler.NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db)),
			handler.NewHistoryHandler(analyses),
			cfg.JWTSecret)

		if cfg.MessagingEnabled() {
			go func() {
				err := queue.StartAnalysisConsumer(ctx, cfg.RabbitMQURL, analyses, logger)
				if err != nil && !errors.Is(err, context.Canceled) {
					logger.Error().Err(err).Msg("analysis consumer stopped")
				}
			}()
		}
	} else {
		logger.Info().Msg("DB_HOST not set, accounts and history disabled")
	}

	router.RegisterAPI(e,
		handler.NewAssistantHandler(completer, catalog, cfg.Language, analysisEvents(cfg, publisher, history), logger),
		middleware.RateLimit(cfg.RateLimit, rdb, logger),
		cfg.JWTSecret)

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

// analysisEvents routes analysis events to RabbitMQ when configured and
// otherwise straight into the history store, if there is one.
func analysisEvents(cfg config.Config, publisher *service.Publisher, history queue.AnalysisStore) handler.EventPublisher {
	if cfg.MessagingEnabled() || history == nil {
		return publisher
	}
	return queue.LocalPublisher{Store: history}
}

func newEcho(cfg config.Config, logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, middleware.RequestIDHeader},
	}))
	e.Use(echomw.BodyLimit(cfg.BodyLimit))
	return e
}

func newCompleter(cfg config.Config, rdb *redis.Client, logger zerolog.Logger) assistant.Completer {
	client := assistant.NewOpenAI(assistant.Options{
		APIKey:  cfg.OpenAIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
		Timeout: cfg.OpenAITimeout,
	})
	return assistant.NewCached(client, rdb, client.Model(), assistant.CacheOptions{
		Enabled: cfg.CompletionCache.Enabled,
		TTL:     cfg.CompletionCache.TTL,
		Prefix:  cfg.CompletionCache.Prefix,
	}, logger)
}

func dbOptions(cfg config.Config) database.Options {
	return database.Options{
		User: cfg.DBUser,
		Pass: cfg.DBPass,
		Host: cfg.DBHost,
		Port: cfg.DBPort,
		Name: cfg.DBName,
	}
}
