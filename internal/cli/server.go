package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"livequiz-service/internal/app"
	"livequiz-service/internal/config"
	"livequiz-service/internal/domain"
	filestore "livequiz-service/internal/infra/file"
	"livequiz-service/internal/infra/memory"
	pgstore "livequiz-service/internal/infra/postgres"
	rediscache "livequiz-service/internal/infra/redis"
	transport "livequiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the live quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var quizzes app.QuizStore
	switch {
	case pool != nil:
		quizzes = pgstore.NewQuizStore(pool)
	case cfg.Quiz.File != "":
		quizzes = filestore.NewQuizStore(cfg.Quiz.File)
	default:
		quizzes = memory.NewQuizStoreWithSeed(sampleQuizzes())
	}
	if redisClient != nil {
		quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
		quizzes = rediscache.NewQuizCache(redisClient, quizzes, quizTTL)
	}

	registry := app.NewRegistry(logger)
	defer registry.Close()
	service := app.NewGameService(registry, quizzes, logger)

	wsHandler := transport.NewWSHandler(service, logger)
	gameHandler := transport.NewGameHandler(service, logger)
	quizHandler := transport.NewQuizHandler(quizzes, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	gameHandler.Register(mux)
	quizHandler.Register(mux)

	// No ReadTimeout/WriteTimeout: they would tear down long-lived
	// websocket connections.
	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           mux,
		ReadHeaderTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting live quiz service", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newLogger(level string) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, err
		}
		zapCfg.Level = zap.NewAtomicLevelAt(parsed)
	}
	return zapCfg.Build()
}

// sampleQuizzes seeds demo mode when neither Postgres nor a quiz file is configured.
func sampleQuizzes() []domain.Quiz {
	return []domain.Quiz{
		{
			ID:    "quiz-1",
			Title: "General Knowledge",
			Questions: []domain.Question{
				{
					ID:       "q1",
					Question: "What is 2 + 2?",
					Answers: []domain.Answer{
						{ID: "a1", Text: "3", IsCorrect: false},
						{ID: "a2", Text: "4", IsCorrect: true},
						{ID: "a3", Text: "5", IsCorrect: false},
					},
					TimeLimit: 20,
				},
				{
					ID:       "q2",
					Question: "Which planet is known as the Red Planet?",
					Answers: []domain.Answer{
						{ID: "a1", Text: "Venus", IsCorrect: false},
						{ID: "a2", Text: "Mars", IsCorrect: true},
						{ID: "a3", Text: "Jupiter", IsCorrect: false},
						{ID: "a4", Text: "Saturn", IsCorrect: false},
					},
					TimeLimit: 20,
				},
			},
		},
	}
}
