package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stotomi1711/learning-program/internal/config"
	"github.com/stotomi1711/learning-program/internal/db/repository"
	"github.com/stotomi1711/learning-program/internal/llm"
	"github.com/stotomi1711/learning-program/internal/logging"
	"github.com/stotomi1711/learning-program/internal/question"
	"github.com/stotomi1711/learning-program/internal/quiz"
	"github.com/stotomi1711/learning-program/internal/server"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server
}

// New bootstraps configs, logger, Postgres, Redis and the quiz pipeline.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	connString := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=10",
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Database, cfg.Postgres.SSLMode)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	llmClient := llm.NewClient(llm.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.HTTPTimeout,
	}, logger)
	classifier := llm.NewClassifierClient(llm.ClassifierConfig{
		URL:     cfg.Classifier.URL,
		Timeout: cfg.Classifier.HTTPTimeout,
	}, nil)

	validator := question.NewValidator(llmClient, classifier, logger)
	producer := question.NewProducer(llmClient, validator, question.ProducerOptions{
		MaxAttempts: cfg.Quiz.MaxAttemptsPerSlot,
		Backoff:     cfg.Quiz.RetryBackoff,
	}, logger)

	assembler := quiz.NewAssembler(producer, logger)
	evaluator := quiz.NewEvaluator(llmClient, logger)
	stateMgr := quiz.NewStateManager(redisClient, logger)
	sessionMgr := quiz.NewSessionManager()
	resultRepo := repository.NewResultRepository(pool)

	quizSvc := quiz.NewService(
		assembler,
		evaluator,
		stateMgr,
		resultRepo,
		sessionMgr,
		cfg.Quiz.SessionDuration,
		logger,
	)
	quizHandlers := quiz.NewHTTPHandlers(quizSvc, cfg.Quiz.DefaultQuestionCount, cfg.Quiz.DefaultObjectiveRatio, logger)

	apiServer := server.NewHTTPServer(cfg, logger, pool, redisClient, quizHandlers)

	return &Application{
		cfg:    cfg,
		logger: logger,
		pool:   pool,
		redis:  redisClient,
		http:   apiServer,
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}
