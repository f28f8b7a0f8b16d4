package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dyadlab/chat-logger-go/internal/affect"
	"github.com/dyadlab/chat-logger-go/internal/config"
	"github.com/dyadlab/chat-logger-go/internal/database"
	"github.com/dyadlab/chat-logger-go/internal/export"
	"github.com/dyadlab/chat-logger-go/internal/handler"
	"github.com/dyadlab/chat-logger-go/internal/jobs"
	"github.com/dyadlab/chat-logger-go/internal/middleware"
	"github.com/dyadlab/chat-logger-go/internal/redis"
	"github.com/dyadlab/chat-logger-go/internal/service"
	"github.com/dyadlab/chat-logger-go/internal/sse"
)

func main() {
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	setLogLevel(cfg.LogLevel)

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	var sink export.Sink
	switch cfg.ExportSink {
	case config.ExportSinkPostgres:
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
		if err := db.Ping(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to ping database")
		}
		cancel()
		log.Info().Msg("database connected")

		pgSink := export.NewPostgresSink(db)
		if err := pgSink.EnsureSchema(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("failed to ensure export schema")
		}
		sink = pgSink
	default:
		sink = export.NewCSVSink(cfg.ExportDir)
	}

	broker := sse.NewBroker(redisClient)
	defer broker.Close()

	var (
		emotionOracle   affect.EmotionOracle
		sentimentOracle affect.SentimentOracle
		translateOracle affect.TranslateOracle
	)
	if cfg.EmotionAPIURL != "" {
		emotionOracle = affect.NewEmotionClient(cfg.EmotionAPIURL)
	}
	if cfg.SentimentAPIURL != "" {
		sentimentOracle = affect.NewSentimentClient(cfg.SentimentAPIURL)
	}
	if cfg.TranslateAPIURL != "" {
		translateOracle = affect.NewTranslateClient(cfg.TranslateAPIURL)
	}
	engine := affect.NewEngine(emotionOracle, sentimentOracle, translateOracle)

	directory := service.NewSessionDirectory()
	guard := service.NewActivityGuard()
	timelines := service.NewTimelineStore()
	sentimentCache := service.NewSentimentCache()
	mirror := service.NewMirrorLog(directory, guard, timelines, sentimentCache)
	translator := service.NewTranslationService(engine, cfg.SupportedLanguages)
	chat := service.NewChatService(mirror, sentimentCache, engine, translator)
	throttle := service.NewFrameThrottle(cfg.FrameMinInterval())
	matchmaker := service.NewMatchmaker(directory)
	coordinator := service.NewExportCoordinator(directory, timelines, sink, service.ExportOptions{
		BothSides:   cfg.ExportBothSides,
		RetryFailed: cfg.ExportRetryFailed,
	})

	directory.AddResetter(guard)
	directory.AddResetter(chat)
	directory.AddResetter(throttle)
	directory.AddResetter(sentimentCache)
	directory.AddResetter(coordinator)

	pairingHandler := handler.NewPairingHandler(matchmaker, directory, broker)
	eventsHandler := handler.NewEventsHandler(mirror)
	chatHandler := handler.NewChatHandler(chat, directory, translator, broker)
	framesHandler := handler.NewFramesHandler(mirror, chat, throttle, engine)
	sessionHandler := handler.NewSessionHandler(coordinator, directory, broker)
	streamHandler := handler.NewStreamHandler(broker, directory)

	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(bodyLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/pair", pairingHandler.Join)
		r.Post("/pair/leave", pairingHandler.Leave)
		r.Get("/partner", pairingHandler.Partner)

		r.Route("/events", func(r chi.Router) {
			r.Post("/start-sending", eventsHandler.StartSending)
			r.Post("/end-sending", eventsHandler.EndSending)
			r.Post("/cancel-sending", eventsHandler.CancelSending)
			r.Post("/start-viewing", eventsHandler.StartViewing)
			r.Post("/end-viewing", eventsHandler.EndViewing)
		})

		r.Post("/messages", chatHandler.Message)
		r.Post("/typing", chatHandler.Typing)
		r.Post("/language", chatHandler.Language)
		r.Post("/frames", framesHandler.Ingest)
		r.Post("/sessions/stop", sessionHandler.Stop)
		r.Get("/stream", streamHandler.ServeHTTP)
	})

	cleanupJob := jobs.NewCleanupJob(config.CleanupJobInterval)
	cleanupJob.Register("stale waiters", func() int {
		return matchmaker.PruneStale(cfg.WaiterTTL())
	})
	cleanupJob.Register("idle throttle entries", throttle.PruneIdle)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
