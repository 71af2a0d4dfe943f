package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iapss/iapss-backend/internal/data/db"
	"github.com/iapss/iapss-backend/internal/modules/landing"
	"github.com/iapss/iapss-backend/internal/platform/logger"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, name := range []string{"APP_ENV", "MAX_BODY_BYTES", "PORT", "DB_DRIVER", "JWT_SECRET", "JWT_TTL", "INFERENCE_PROVIDER", "LANDING_CACHE_TTL", "REDIS_ADDR", "STATS_TIMEZONE", "LANDING_WARM_COUNTRIES"} {
		t.Setenv(name, "")
	}
	cfg := LoadConfig(logger.Nop())

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "4000", cfg.Port)
	assert.Equal(t, int64(DefaultMaxBodyBytes), cfg.MaxBodyBytes)
	assert.Equal(t, db.DriverPostgres, cfg.DB.Driver)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Equal(t, 168*time.Hour, cfg.JWTTTL)
	assert.Equal(t, ProviderGemini, cfg.Inference.Provider)
	assert.Equal(t, 25*time.Second, cfg.Inference.Timeout)
	assert.Equal(t, landing.DefaultCacheTTL, cfg.Landing.CacheTTL)
	assert.Equal(t, []string{"IN"}, cfg.Landing.WarmCountries)
	assert.Empty(t, cfg.RateLimit.RedisAddr)
	assert.Equal(t, time.UTC, cfg.StatsLocation)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("MAX_BODY_BYTES", "2097152")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("INFERENCE_PROVIDER", "OpenAI")
	t.Setenv("INFERENCE_TIMEOUT", "5s")
	t.Setenv("STATS_TIMEZONE", "Asia/Kolkata")
	t.Setenv("LANDING_WARM_COUNTRIES", "us, gb")

	cfg := LoadConfig(logger.Nop())
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, int64(2<<20), cfg.MaxBodyBytes)
	assert.Equal(t, db.DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, ProviderOpenAI, cfg.Inference.Provider)
	assert.Equal(t, 5*time.Second, cfg.Inference.Timeout)
	assert.Equal(t, []string{"us", "gb"}, cfg.Landing.WarmCountries)
	require.NotNil(t, cfg.StatsLocation)
	assert.Equal(t, "Asia/Kolkata", cfg.StatsLocation.String())
}

func TestLoadConfigUnknownTimezoneFallsBackToUTC(t *testing.T) {
	t.Setenv("STATS_TIMEZONE", "Mars/Olympus_Mons")
	assert.Equal(t, time.UTC, LoadConfig(logger.Nop()).StatsLocation)
}

func TestValidateRejectsDevSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "Production")
	t.Setenv("JWT_SECRET", "")
	cfg := LoadConfig(logger.Nop())
	assert.Equal(t, EnvProduction, cfg.Env)
	assert.ErrorIs(t, cfg.Validate(), errDevSecretInProduction)

	t.Setenv("JWT_SECRET", "a-real-secret")
	assert.NoError(t, LoadConfig(logger.Nop()).Validate())
}

func TestNewProviderWithoutCredentials(t *testing.T) {
	log := logger.Nop()
	ctx := context.Background()
	assert.Nil(t, NewProvider(ctx, log, InferenceConfig{Provider: ProviderGemini}))
	assert.Nil(t, NewProvider(ctx, log, InferenceConfig{Provider: ProviderOpenAI}))
	assert.Nil(t, NewProvider(ctx, log, InferenceConfig{Provider: ProviderNone, GeminiAPIKey: "k"}))
	assert.Nil(t, NewProvider(ctx, log, InferenceConfig{Provider: "mystery"}))
}

func TestNewProviderOpenAI(t *testing.T) {
	p := NewProvider(context.Background(), logger.Nop(), InferenceConfig{Provider: ProviderOpenAI, OpenAIAPIKey: "sk-test"})
	require.NotNil(t, p)
	assert.Equal(t, "openai", p.Name())
}
