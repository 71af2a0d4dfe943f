package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/iapss/iapss-backend/internal/http/handlers"
	httpMW "github.com/iapss/iapss-backend/internal/http/middleware"
	"github.com/iapss/iapss-backend/internal/observability"
	"github.com/iapss/iapss-backend/internal/platform/logger"
	"github.com/iapss/iapss-backend/internal/platform/redisx"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	Origins     []string
	Tracing     bool
	Metrics     *observability.Metrics

	// Limiter is nil when rate limiting is disabled.
	Limiter        redisx.Limiter
	APIPerMinute   int
	HeavyPerMinute int

	// MaxBodyBytes caps /api request bodies; <= 0 disables the cap.
	MaxBodyBytes int64

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler    *httpH.HealthHandler
	AuthHandler      *httpH.AuthHandler
	AnalysisHandler  *httpH.AnalysisHandler
	HistoryHandler   *httpH.HistoryHandler
	DashboardHandler *httpH.DashboardHandler
	LandingHandler   *httpH.LandingHandler
	AdminHandler     *httpH.AdminHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Tracing {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(log))
	if cfg.Metrics != nil {
		r.Use(httpMW.Metrics(cfg.Metrics))
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}
	r.Use(httpMW.CORS(cfg.Origins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	api.Use(httpMW.BodyLimit(cfg.MaxBodyBytes))
	api.Use(httpMW.RateLimit(cfg.Limiter, httpMW.RateLimitPolicy{
		Scope:  "api",
		Limit:  cfg.APIPerMinute,
		Window: time.Minute,
		Key:    httpMW.IPKey,
	}, log))

	if cfg.HealthHandler != nil {
		api.GET("/health", cfg.HealthHandler.Status)
	}

	// Landing (public)
	if cfg.LandingHandler != nil {
		api.GET("/landing/summary", cfg.LandingHandler.Summary)
	}

	// Everything below needs the auth middleware.
	if cfg.AuthMiddleware == nil {
		return r
	}
	am := cfg.AuthMiddleware

	// Auth
	if cfg.AuthHandler != nil {
		api.POST("/auth/register", cfg.AuthHandler.Register)
		api.POST("/auth/login", cfg.AuthHandler.Login)
		api.GET("/auth/me", am.RequireAuth(), cfg.AuthHandler.Me)
	}

	// Analysis: anonymous callers get results, authenticated callers also get history.
	if cfg.AnalysisHandler != nil {
		heavy := httpMW.RateLimit(cfg.Limiter, httpMW.RateLimitPolicy{
			Scope:  "analyse",
			Limit:  cfg.HeavyPerMinute,
			Window: time.Minute,
			Key:    httpMW.ClientKey,
		}, log)
		api.POST("/problems/analyse", am.OptionalAuth(), heavy, cfg.AnalysisHandler.AnalyseProblem)
		api.POST("/code/analyse", am.OptionalAuth(), heavy, cfg.AnalysisHandler.AnalyseCode)
	}

	protected := api.Group("/")
	protected.Use(am.RequireAuth())
	{
		// History
		if cfg.HistoryHandler != nil {
			protected.GET("/history/:kind", cfg.HistoryHandler.List)
			protected.DELETE("/history/:kind", cfg.HistoryHandler.Clear)
			protected.GET("/history/:kind/:id", cfg.HistoryHandler.Get)
			protected.DELETE("/history/:kind/:id", cfg.HistoryHandler.Delete)
			protected.PATCH("/history/:kind/:id/favorite", cfg.HistoryHandler.SetFavorite)
			protected.PATCH("/history/:kind/:id/tags", cfg.HistoryHandler.SetTags)
			protected.POST("/history/:kind/:id/feedback", cfg.HistoryHandler.SetFeedback)
		}

		// Dashboard
		if cfg.DashboardHandler != nil {
			protected.GET("/dashboard/summary", cfg.DashboardHandler.Summary)
			protected.GET("/dashboard/progress", cfg.DashboardHandler.Progress)
			protected.GET("/recommendations/next", cfg.DashboardHandler.NextRecommendation)
		}
	}

	// Admin
	if cfg.AdminHandler != nil {
		admin := api.Group("/admin")
		admin.Use(am.RequireAuth(), am.RequireAdmin())
		admin.GET("/news", cfg.AdminHandler.ListNews)
		admin.POST("/news", cfg.AdminHandler.CreateNews)
		admin.GET("/contests", cfg.AdminHandler.ListContests)
		admin.POST("/contests", cfg.AdminHandler.CreateContest)
		admin.GET("/podcasts", cfg.AdminHandler.ListPodcasts)
		admin.POST("/podcasts", cfg.AdminHandler.CreatePodcast)
	}

	return r
}
