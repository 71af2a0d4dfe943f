package app

import (
	"context"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/iapss/iapss-backend/internal/data/repos"
	httpServer "github.com/iapss/iapss-backend/internal/http"
	httpH "github.com/iapss/iapss-backend/internal/http/handlers"
	httpMW "github.com/iapss/iapss-backend/internal/http/middleware"
	"github.com/iapss/iapss-backend/internal/modules/analysis"
	"github.com/iapss/iapss-backend/internal/modules/landing"
	"github.com/iapss/iapss-backend/internal/modules/progress"
	"github.com/iapss/iapss-backend/internal/observability"
	"github.com/iapss/iapss-backend/internal/platform/gemini"
	"github.com/iapss/iapss-backend/internal/platform/logger"
	"github.com/iapss/iapss-backend/internal/platform/openai"
	"github.com/iapss/iapss-backend/internal/platform/redisx"
	"github.com/iapss/iapss-backend/internal/services"
)

type Repos struct {
	User    repos.UserRepo
	History repos.HistoryRepo
	Stats   repos.UserStatsRepo
	Curated repos.CuratedRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:    repos.NewUserRepo(db, log),
		History: repos.NewHistoryRepo(db, log),
		Stats:   repos.NewUserStatsRepo(db, log),
		Curated: repos.NewCuratedRepo(db, log),
	}
}

type Services struct {
	Auth      services.AuthService
	Analysis  services.AnalysisService
	History   services.HistoryService
	Dashboard services.DashboardService
	Curated   services.CuratedService

	Queue      *progress.Queue
	Aggregator *landing.Aggregator
	Warmer     *landing.Warmer
}

// NewProvider picks the inference backend. Missing credentials are not fatal: the
// gateway then runs without a provider and every analysis degrades to fallback.
func NewProvider(ctx context.Context, log *logger.Logger, cfg InferenceConfig) analysis.Provider {
	switch cfg.Provider {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			break
		}
		c, err := gemini.NewClient(ctx, gemini.Config{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel}, log)
		if err != nil {
			log.Warn("Gemini client init failed, analyses will use fallback", "reason", "provider_init", "error", err)
			return nil
		}
		return analysis.NewGeminiProvider(c)
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			break
		}
		c, err := openai.NewClient(openai.Config{
			APIKey:      cfg.OpenAIAPIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			Model:       cfg.OpenAIModel,
			HTTPTimeout: cfg.Timeout,
		}, log)
		if err != nil {
			log.Warn("OpenAI client init failed, analyses will use fallback", "reason", "provider_init", "error", err)
			return nil
		}
		return analysis.NewOpenAIProvider(c)
	case ProviderNone:
		return nil
	default:
		log.Warn("Unknown INFERENCE_PROVIDER, analyses will use fallback", "provider", cfg.Provider)
		return nil
	}
	log.Warn("Inference credentials missing, analyses will use fallback", "provider", cfg.Provider)
	return nil
}

func wireServices(ctx context.Context, log *logger.Logger, cfg Config, r Repos) (Services, error) {
	log.Info("Wiring services...")

	gateway := analysis.NewGateway(NewProvider(ctx, log, cfg.Inference), cfg.Inference.Timeout, log)
	orchestrator := analysis.NewOrchestrator(gateway, log)

	recorder := progress.NewRecorder(progress.RecorderDeps{
		Log:      log,
		History:  r.History,
		Stats:    r.Stats,
		Location: cfg.StatsLocation,
	})
	queue := progress.NewQueue(recorder, cfg.Recorder, log)

	deps := landing.AggregatorDeps{
		Log:      log,
		Curated:  r.Curated,
		Contests: landing.NewKontestsClient(landing.WithBaseURL(cfg.Landing.ContestsAPIURL)),
		CacheTTL: cfg.Landing.CacheTTL,
	}
	if cfg.Landing.NewsAPIKey != "" {
		deps.News = landing.NewNewsAPIClient(cfg.Landing.NewsAPIKey, landing.WithBaseURL(cfg.Landing.NewsAPIURL))
	}
	agg, err := landing.NewAggregator(deps)
	if err != nil {
		return Services{}, err
	}

	var warmer *landing.Warmer
	if cfg.Landing.WarmSchedule != "" {
		warmer, err = landing.NewWarmer(agg, cfg.Landing.WarmSchedule, cfg.Landing.WarmCountries, log)
		if err != nil {
			return Services{}, err
		}
	}

	return Services{
		Auth:       services.NewAuthService(log, r.User, cfg.JWTSecret, cfg.JWTTTL),
		Analysis:   services.NewAnalysisService(log, orchestrator, queue),
		History:    services.NewHistoryService(log, r.History),
		Dashboard:  services.NewDashboardService(log, r.User, r.History, r.Stats),
		Curated:    services.NewCuratedService(log, r.Curated),
		Queue:      queue,
		Aggregator: agg,
		Warmer:     warmer,
	}, nil
}

// wireLimiter returns nil (rate limiting off) when Redis is not configured or unreachable.
func wireLimiter(ctx context.Context, log *logger.Logger, cfg RateLimitConfig) (redisx.Limiter, *goredis.Client) {
	if cfg.RedisAddr == "" {
		log.Info("REDIS_ADDR not set, rate limiting disabled")
		return nil, nil
	}
	rdb, err := redisx.NewClient(ctx, cfg.RedisAddr, log)
	if err != nil {
		log.Warn("Redis unavailable, rate limiting disabled", "reason", "redis_unavailable", "error", err)
		return nil, nil
	}
	return redisx.NewFixedWindowLimiter(rdb, "iapss:ratelimit"), rdb
}

func wireServer(log *logger.Logger, cfg Config, s Services, r Repos, pinger httpH.Pinger, limiter redisx.Limiter, metrics *observability.Metrics) *httpServer.Server {
	log.Info("Wiring HTTP server...")
	return httpServer.NewServer(":"+cfg.Port, httpServer.RouterConfig{
		Log:            log,
		ServiceName:    ServiceName,
		Origins:        cfg.ClientOrigins,
		Tracing:        cfg.Otel.Enabled,
		Metrics:        metrics,
		Limiter:        limiter,
		APIPerMinute:   cfg.RateLimit.PerMinute,
		HeavyPerMinute: cfg.RateLimit.HeavyPerMinute,
		MaxBodyBytes:   cfg.MaxBodyBytes,

		AuthMiddleware: httpMW.NewAuthMiddleware(log, s.Auth),

		HealthHandler:    httpH.NewHealthHandler(ServiceName, pinger),
		AuthHandler:      httpH.NewAuthHandler(s.Auth, r.User),
		AnalysisHandler:  httpH.NewAnalysisHandler(s.Analysis),
		HistoryHandler:   httpH.NewHistoryHandler(s.History),
		DashboardHandler: httpH.NewDashboardHandler(s.Dashboard),
		LandingHandler:   httpH.NewLandingHandler(s.Aggregator),
		AdminHandler:     httpH.NewAdminHandler(s.Curated),
	})
}
