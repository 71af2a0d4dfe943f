package http

import (
	"bytes"
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/iapss/iapss-backend/internal/data/repos"
	"github.com/iapss/iapss-backend/internal/data/repos/testutil"
	types "github.com/iapss/iapss-backend/internal/domain"
	httpH "github.com/iapss/iapss-backend/internal/http/handlers"
	httpMW "github.com/iapss/iapss-backend/internal/http/middleware"
	"github.com/iapss/iapss-backend/internal/modules/analysis"
	"github.com/iapss/iapss-backend/internal/modules/landing"
	"github.com/iapss/iapss-backend/internal/modules/progress"
	"github.com/iapss/iapss-backend/internal/services"
)

// syncSink records inline so tests observe history right after the response.
type syncSink struct {
	rec *progress.Recorder
}

func (s syncSink) Enqueue(ctx context.Context, in progress.RecordInput) bool {
	return s.rec.Record(ctx, in) == nil
}

const testMaxBodyBytes = 64 << 10

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.DB(t)
	log := testutil.Logger(t)

	users := repos.NewUserRepo(db, log)
	history := repos.NewHistoryRepo(db, log)
	stats := repos.NewUserStatsRepo(db, log)
	curated := repos.NewCuratedRepo(db, log)

	auth := services.NewAuthService(log, users, "router-test-secret", time.Hour)
	orchestrator := analysis.NewOrchestrator(analysis.NewGateway(nil, time.Second, log), log)
	recorder := progress.NewRecorder(progress.RecorderDeps{Log: log, History: history, Stats: stats})
	agg, err := landing.NewAggregator(landing.AggregatorDeps{Log: log, Curated: curated})
	require.NoError(t, err)

	router := NewRouter(RouterConfig{
		Log:              log,
		ServiceName:      "iapss-test",
		MaxBodyBytes:     testMaxBodyBytes,
		AuthMiddleware:   httpMW.NewAuthMiddleware(log, auth),
		HealthHandler:    httpH.NewHealthHandler("iapss-test", nil),
		AuthHandler:      httpH.NewAuthHandler(auth, users),
		AnalysisHandler:  httpH.NewAnalysisHandler(services.NewAnalysisService(log, orchestrator, syncSink{rec: recorder})),
		HistoryHandler:   httpH.NewHistoryHandler(services.NewHistoryService(log, history)),
		DashboardHandler: httpH.NewDashboardHandler(services.NewDashboardService(log, users, history, stats)),
		LandingHandler:   httpH.NewLandingHandler(agg),
		AdminHandler:     httpH.NewAdminHandler(services.NewCuratedService(log, curated)),
	})
	return &testEnv{db: db, router: router}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// signup registers and logs in a user, returning the bearer token.
func (e *testEnv) signup(t *testing.T, email string) string {
	t.Helper()
	w := e.do(t, nethttp.MethodPost, "/api/auth/register", "", gin.H{"name": "Tester", "email": email, "password": "secret1"})
	require.Equal(t, nethttp.StatusCreated, w.Code, w.Body.String())
	w = e.do(t, nethttp.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": "secret1"})
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	out := decode[struct {
		AccessToken string `json:"access_token"`
	}](t, w)
	require.NotEmpty(t, out.AccessToken)
	return out.AccessToken
}

type errorBody struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

func TestHealthRoutes(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, nethttp.MethodGet, "/healthcheck", "", nil)
	assert.Equal(t, nethttp.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())

	w = env.do(t, nethttp.MethodGet, "/api/health", "", nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	body := decode[map[string]string](t, w)
	assert.Equal(t, "iapss-test", body["service"])
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestAnonymousAnalysisFallsBackAndIsNotRecorded(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, nethttp.MethodPost, "/api/problems/analyse", "", gin.H{"text": "Find two numbers that add up to target"})
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	res := decode[types.AnalysisResult](t, w)
	assert.Equal(t, types.KindProblem, res.Kind)
	assert.True(t, res.Fallback)
	require.NotNil(t, res.Problem)
	raw := decode[map[string]any](t, w)
	_, err := analysis.Validate(types.KindProblem, raw["problem"])
	assert.NoError(t, err)

	var n int64
	require.NoError(t, env.db.Model(&types.HistoryRecord{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestAnalysisValidation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, nethttp.MethodPost, "/api/problems/analyse", "", gin.H{"text": "   "})
	assert.Equal(t, nethttp.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode[errorBody](t, w).Error.Code)

	w = env.do(t, nethttp.MethodPost, "/api/code/analyse", "", gin.H{"code": "print(1)", "language": "cobol"})
	assert.Equal(t, nethttp.StatusBadRequest, w.Code)
}

func (e *testEnv) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}

func TestBlankPayloadFromSignedInUserIsNotRecorded(t *testing.T) {
	env := newTestEnv(t)
	token := env.signup(t, "blank@example.com")

	w := env.do(t, nethttp.MethodPost, "/api/problems/analyse", token, gin.H{"text": " \n\t "})
	assert.Equal(t, nethttp.StatusBadRequest, w.Code, w.Body.String())
	assert.Equal(t, "VALIDATION_ERROR", decode[errorBody](t, w).Error.Code)

	w = env.do(t, nethttp.MethodPost, "/api/code/analyse", token, gin.H{"code": "   ", "language": "cpp"})
	assert.Equal(t, nethttp.StatusBadRequest, w.Code, w.Body.String())
	assert.Equal(t, "VALIDATION_ERROR", decode[errorBody](t, w).Error.Code)

	assert.Zero(t, env.count(t, &types.HistoryRecord{}))
	assert.Zero(t, env.count(t, &types.UserStats{}))
}

func TestOversizedBodiesAreRejected(t *testing.T) {
	env := newTestEnv(t)
	big := gin.H{"text": strings.Repeat("a", 2*testMaxBodyBytes), "images": []string{"data:image/png;base64,AAAA"}}

	w := env.do(t, nethttp.MethodPost, "/api/problems/analyse", "", big)
	assert.Equal(t, nethttp.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "PAYLOAD_TOO_LARGE", decode[errorBody](t, w).Error.Code)

	// Without a declared length the cap is hit while decoding.
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(gin.H{"code": strings.Repeat("x", 2*testMaxBodyBytes), "language": "go"}))
	req := httptest.NewRequest(nethttp.MethodPost, "/api/code/analyse", &buf)
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = -1
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, nethttp.StatusRequestEntityTooLarge, w.Code, w.Body.String())
	assert.Equal(t, "PAYLOAD_TOO_LARGE", decode[errorBody](t, w).Error.Code)

	w = env.do(t, nethttp.MethodPost, "/api/problems/analyse", "", gin.H{"text": "Find two numbers that add up to target"})
	assert.Equal(t, nethttp.StatusOK, w.Code)
	assert.Zero(t, env.count(t, &types.HistoryRecord{}))
}

func TestAuthenticatedAnalysisFlowsIntoHistoryAndDashboard(t *testing.T) {
	env := newTestEnv(t)
	token := env.signup(t, "flow@example.com")

	w := env.do(t, nethttp.MethodPost, "/api/code/analyse", token, gin.H{"code": "int main() { return 0; }", "language": "CPP"})
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	res := decode[types.AnalysisResult](t, w)
	require.NotNil(t, res.Code)

	w = env.do(t, nethttp.MethodGet, "/api/history/code?page=1&limit=5", token, nil)
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	page := decode[struct {
		Items []struct {
			ID       string `json:"id"`
			Language string `json:"language"`
		} `json:"items"`
		Pagination services.Pagination `json:"pagination"`
	}](t, w)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "cpp", page.Items[0].Language)
	assert.Equal(t, int64(1), page.Pagination.Total)
	assert.Equal(t, 1, page.Pagination.TotalPages)

	id := page.Items[0].ID
	w = env.do(t, nethttp.MethodPatch, "/api/history/code/"+id+"/favorite", token, gin.H{"isFavorite": true})
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	assert.True(t, decode[struct {
		IsFavorite bool `json:"isFavorite"`
	}](t, w).IsFavorite)

	w = env.do(t, nethttp.MethodPatch, "/api/history/code/"+id+"/tags", token, gin.H{"tags": []string{" dp ", "", "dp", "graphs"}})
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"dp", "graphs"}, decode[struct {
		Tags []string `json:"tags"`
	}](t, w).Tags)

	w = env.do(t, nethttp.MethodPost, "/api/history/code/"+id+"/feedback", token, gin.H{"rating": 9})
	assert.Equal(t, nethttp.StatusBadRequest, w.Code)

	w = env.do(t, nethttp.MethodGet, "/api/dashboard/progress", token, nil)
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	progressView := decode[services.ProgressView](t, w)
	assert.Equal(t, 1, progressView.TotalCodeAnalyses)
	assert.Equal(t, 1, progressView.CurrentStreak)

	w = env.do(t, nethttp.MethodDelete, "/api/history/code/"+id, token, nil)
	assert.Equal(t, nethttp.StatusNoContent, w.Code)
	w = env.do(t, nethttp.MethodGet, "/api/history/code/"+id, token, nil)
	assert.Equal(t, nethttp.StatusNotFound, w.Code)
}

func TestHistoryIsOwnerScoped(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice@example.com")
	bob := env.signup(t, "bob@example.com")

	w := env.do(t, nethttp.MethodPost, "/api/problems/analyse", alice, gin.H{"text": "Shortest path in a grid"})
	require.Equal(t, nethttp.StatusOK, w.Code)

	w = env.do(t, nethttp.MethodGet, "/api/history/problems", alice, nil)
	items := decode[services.HistoryPage](t, w).Items
	require.Len(t, items, 1)
	id := items[0].ID.String()

	w = env.do(t, nethttp.MethodGet, "/api/history/problems/"+id, bob, nil)
	assert.Equal(t, nethttp.StatusNotFound, w.Code)
	w = env.do(t, nethttp.MethodDelete, "/api/history/problems/"+id, bob, nil)
	assert.Equal(t, nethttp.StatusNotFound, w.Code)
	w = env.do(t, nethttp.MethodGet, "/api/history/problems/"+id, alice, nil)
	assert.Equal(t, nethttp.StatusOK, w.Code)
}

func TestHistoryRoutesRequireAuthAndKnownKind(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, nethttp.MethodGet, "/api/history/problems", "", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, w.Code)

	token := env.signup(t, "kind@example.com")
	w = env.do(t, nethttp.MethodGet, "/api/history/essays", token, nil)
	assert.Equal(t, nethttp.StatusNotFound, w.Code)
	w = env.do(t, nethttp.MethodGet, "/api/history/code/not-a-uuid", token, nil)
	assert.Equal(t, nethttp.StatusBadRequest, w.Code)
}

func TestRecommendationWithoutHistory(t *testing.T) {
	env := newTestEnv(t)
	token := env.signup(t, "fresh@example.com")

	w := env.do(t, nethttp.MethodGet, "/api/recommendations/next", token, nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	rec := decode[services.Recommendation](t, w)
	assert.Equal(t, "Arrays / Basics", rec.FocusTopic)
	assert.Equal(t, "Easy", rec.SuggestedDifficulty)
}

func TestLandingSummaryServesCuratedAfterAdminCreate(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, nethttp.MethodGet, "/api/landing/summary?country=us", "", nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	summary := decode[types.LandingSummary](t, w)
	assert.Equal(t, "IAPSS", summary.Brand.Name)
	assert.Equal(t, types.LandingCountry{Code: "US", Name: "United States"}, summary.Country)
	assert.Equal(t, landing.SourceStatic, summary.Sources[landing.FeedNews])
	assert.NotEmpty(t, summary.Podcasts)

	token := env.signup(t, "admin@example.com")
	w = env.do(t, nethttp.MethodPost, "/api/admin/news", token, gin.H{"title": "x", "url": "https://example.com"})
	assert.Equal(t, nethttp.StatusForbidden, w.Code)

	require.NoError(t, env.db.Model(&types.User{}).Where("email = ?", "admin@example.com").Update("role", types.RoleAdmin).Error)

	w = env.do(t, nethttp.MethodPost, "/api/admin/news", token, gin.H{"title": "Regional finals", "url": "https://example.com/finals"})
	require.Equal(t, nethttp.StatusCreated, w.Code, w.Body.String())
	w = env.do(t, nethttp.MethodPost, "/api/admin/news", token, gin.H{"title": "Hidden", "url": "https://example.com/hidden", "active": false})
	require.Equal(t, nethttp.StatusCreated, w.Code, w.Body.String())
	w = env.do(t, nethttp.MethodPost, "/api/admin/news", token, gin.H{"title": "Bad", "url": "ftp://example.com"})
	assert.Equal(t, nethttp.StatusBadRequest, w.Code)

	w = env.do(t, nethttp.MethodGet, "/api/admin/news", token, nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Len(t, decode[struct {
		Items []types.CuratedNews `json:"items"`
	}](t, w).Items, 2)

	w = env.do(t, nethttp.MethodGet, "/api/landing/summary", "", nil)
	summary = decode[types.LandingSummary](t, w)
	assert.Equal(t, "IN", summary.Country.Code)
	assert.Equal(t, landing.SourceCurated, summary.Sources[landing.FeedNews])
	require.Len(t, summary.News, 1)
	assert.Equal(t, "Regional finals", summary.News[0].Title)
}

func TestMeReturnsCaller(t *testing.T) {
	env := newTestEnv(t)
	token := env.signup(t, "me@example.com")

	w := env.do(t, nethttp.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	out := decode[struct {
		User struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}](t, w)
	assert.Equal(t, "me@example.com", out.User.Email)
	assert.Equal(t, types.RoleUser, out.User.Role)
}
