package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"learning-program"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Postgres   Postgres
	Redis      Redis
	LLM        LLM
	Classifier Classifier
	Quiz       Quiz
}

// Postgres captures connection info for the SQL database.
type Postgres struct {
	Host     string `env:"PG_HOST,notEmpty"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER,notEmpty"`
	Password string `env:"PG_PASSWORD,notEmpty"`
	Database string `env:"PG_DATABASE,notEmpty"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
}

// Redis holds quiz-state cache configuration.
type Redis struct {
	Addr     string `env:"REDIS_ADDR,notEmpty"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// LLM configures the text-generation service used for question
// generation, semantic verification, and free-text judging.
type LLM struct {
	APIKey      string        `env:"LLM_API_KEY,notEmpty"`
	BaseURL     string        `env:"LLM_BASE_URL" envDefault:""`
	Model       string        `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	HTTPTimeout time.Duration `env:"LLM_HTTP_TIMEOUT" envDefault:"30s"`
}

// Classifier configures the binary question-quality classifier service.
type Classifier struct {
	URL         string        `env:"CLASSIFIER_URL,notEmpty"`
	HTTPTimeout time.Duration `env:"CLASSIFIER_HTTP_TIMEOUT" envDefault:"10s"`
}

// Quiz groups quiz assembly and session defaults.
type Quiz struct {
	DefaultQuestionCount  int           `env:"DEFAULT_QUESTION_COUNT" envDefault:"5"`
	DefaultObjectiveRatio float64       `env:"DEFAULT_OBJECTIVE_RATIO" envDefault:"0.6"`
	SessionDuration       time.Duration `env:"QUIZ_SESSION_DURATION" envDefault:"10m"`
	MaxAttemptsPerSlot    int           `env:"QUIZ_MAX_ATTEMPTS_PER_SLOT" envDefault:"3"`
	RetryBackoff          time.Duration `env:"QUIZ_RETRY_BACKOFF" envDefault:"1s"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
