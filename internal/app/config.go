package app

import (
	"errors"
	"strings"
	"time"
	// STATS_TIMEZONE must resolve in minimal containers without a system zoneinfo.
	_ "time/tzdata"

	"github.com/iapss/iapss-backend/internal/data/db"
	"github.com/iapss/iapss-backend/internal/http/middleware"
	"github.com/iapss/iapss-backend/internal/modules/analysis"
	"github.com/iapss/iapss-backend/internal/modules/landing"
	"github.com/iapss/iapss-backend/internal/modules/progress"
	"github.com/iapss/iapss-backend/internal/observability"
	"github.com/iapss/iapss-backend/internal/platform/envutil"
	"github.com/iapss/iapss-backend/internal/platform/gemini"
	"github.com/iapss/iapss-backend/internal/platform/logger"
	"github.com/iapss/iapss-backend/internal/platform/openai"
)

const (
	ServiceName = "iapss-backend"

	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderNone   = "none"

	// DefaultMaxBodyBytes leaves room for a few base64 screenshots.
	DefaultMaxBodyBytes = 10 << 20

	EnvProduction = "production"

	devJWTSecret = "iapss-dev-secret"
)

type InferenceConfig struct {
	Provider      string
	GeminiAPIKey  string
	GeminiModel   string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	Timeout       time.Duration
}

type LandingConfig struct {
	NewsAPIKey     string
	NewsAPIURL     string
	ContestsAPIURL string
	CacheTTL       time.Duration
	// WarmSchedule is a cron expression; empty disables warming.
	WarmSchedule  string
	WarmCountries []string
}

type RateLimitConfig struct {
	// RedisAddr empty disables rate limiting.
	RedisAddr      string
	PerMinute      int
	HeavyPerMinute int
}

type Config struct {
	Env           string
	Port          string
	LogMode       string
	ClientOrigins []string
	MaxBodyBytes  int64

	DB db.Config

	JWTSecret string
	JWTTTL    time.Duration

	Inference InferenceConfig
	Landing   LandingConfig
	RateLimit RateLimitConfig
	Recorder  progress.QueueConfig

	MetricsEnabled bool
	Otel           observability.OtelConfig

	StatsLocation *time.Location
}

func LoadConfig(log *logger.Logger) Config {
	env := strings.ToLower(envutil.String("APP_ENV", "development", log))
	cfg := Config{
		Env:           env,
		Port:          envutil.String("PORT", "4000", log),
		LogMode:       envutil.String("LOG_MODE", "development", log),
		ClientOrigins: envutil.List("CLIENT_ORIGIN", middleware.DefaultOrigins, log),
		MaxBodyBytes:  int64(envutil.Int("MAX_BODY_BYTES", DefaultMaxBodyBytes, log)),
		DB: db.Config{
			Driver:           envutil.String("DB_DRIVER", db.DriverPostgres, log),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost", log),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432", log),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres", log),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", "", log),
			PostgresName:     envutil.String("POSTGRES_NAME", "iapss", log),
			SQLitePath:       envutil.String("SQLITE_PATH", "iapss.db", log),
		},
		JWTSecret: envutil.String("JWT_SECRET", "", log),
		JWTTTL:    envutil.Duration("JWT_TTL", 168*time.Hour, log),
		Inference: InferenceConfig{
			Provider:      strings.ToLower(envutil.String("INFERENCE_PROVIDER", ProviderGemini, log)),
			GeminiAPIKey:  envutil.String("GEMINI_API_KEY", "", log),
			GeminiModel:   envutil.String("GEMINI_MODEL", gemini.DefaultModel, log),
			OpenAIAPIKey:  envutil.String("OPENAI_API_KEY", "", log),
			OpenAIBaseURL: envutil.String("OPENAI_BASE_URL", openai.DefaultBaseURL, log),
			OpenAIModel:   envutil.String("OPENAI_MODEL", openai.DefaultModel, log),
			Timeout:       envutil.Duration("INFERENCE_TIMEOUT", analysis.DefaultInferenceTimeout, log),
		},
		Landing: LandingConfig{
			NewsAPIKey:     envutil.String("NEWS_API_KEY", "", log),
			NewsAPIURL:     envutil.String("NEWS_API_URL", landing.DefaultNewsAPIURL, log),
			ContestsAPIURL: envutil.String("CONTESTS_API_URL", landing.DefaultContestsAPIURL, log),
			CacheTTL:       envutil.Duration("LANDING_CACHE_TTL", landing.DefaultCacheTTL, log),
			WarmSchedule:   envutil.String("LANDING_WARM_SCHEDULE", "", log),
			WarmCountries:  envutil.List("LANDING_WARM_COUNTRIES", []string{"IN"}, log),
		},
		RateLimit: RateLimitConfig{
			RedisAddr:      envutil.String("REDIS_ADDR", "", log),
			PerMinute:      envutil.Int("RATE_LIMIT_PER_MINUTE", 120, log),
			HeavyPerMinute: envutil.Int("RATE_LIMIT_HEAVY_PER_MINUTE", 30, log),
		},
		Recorder: progress.QueueConfig{
			Workers:    envutil.Int("RECORDER_WORKERS", progress.DefaultQueueWorkers, log),
			Size:       envutil.Int("RECORDER_QUEUE_SIZE", progress.DefaultQueueSize, log),
			JobTimeout: progress.DefaultJobTimeout,
		},
		MetricsEnabled: envutil.Bool("METRICS_ENABLED", true, log),
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false, log),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", ServiceName, log),
			Environment: env,
			Version:     envutil.String("APP_VERSION", "", log),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", true, log),
			Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "", log)),
			SampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 1, log),
		},
		StatsLocation: time.UTC,
	}

	tz := envutil.String("STATS_TIMEZONE", "UTC", log)
	if loc, err := time.LoadLocation(tz); err == nil {
		cfg.StatsLocation = loc
	} else {
		log.Warn("Unknown STATS_TIMEZONE, using UTC", "provided", tz, "error", err)
	}

	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET is not set, using an insecure development secret")
		cfg.JWTSecret = devJWTSecret
	}
	return cfg
}

var errDevSecretInProduction = errors.New("JWT_SECRET must be set when APP_ENV=production")

// Validate rejects settings that are only acceptable outside production.
func (c Config) Validate() error {
	if c.Env == EnvProduction && c.JWTSecret == devJWTSecret {
		return errDevSecretInProduction
	}
	return nil
}
