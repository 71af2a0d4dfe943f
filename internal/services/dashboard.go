package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/iapss/iapss-backend/internal/data/repos"
	types "github.com/iapss/iapss-backend/internal/domain"
	"github.com/iapss/iapss-backend/internal/platform/apierr"
	"github.com/iapss/iapss-backend/internal/platform/logger"
)

const (
	recentLimit    = 10
	topTopicsLimit = 20
)

type DashboardUser struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type ProblemStats struct {
	TotalProblems int64                `json:"totalProblems"`
	ByDifficulty  []repos.HistoryCount `json:"byDifficulty"`
	ByTopic       []repos.HistoryCount `json:"byTopic"`
}

type DashboardSummary struct {
	User           DashboardUser          `json:"user"`
	LanguageStats  []repos.HistoryCount   `json:"languageStats"`
	ProblemStats   ProblemStats           `json:"problemStats"`
	RecentProblems []*types.HistoryRecord `json:"recentProblems"`
	RecentCode     []*types.HistoryRecord `json:"recentCode"`
}

// ProgressView is UserStats as shown to its owner; zero-valued when nothing was recorded.
type ProgressView struct {
	TotalProblems     int            `json:"totalProblems"`
	TotalCodeAnalyses int            `json:"totalCodeAnalyses"`
	CurrentStreak     int            `json:"currentStreak"`
	LongestStreak     int            `json:"longestStreak"`
	LastActiveDate    *time.Time     `json:"lastActiveDate"`
	PerDayCounts      map[string]int `json:"perDayCounts"`
}

type Recommendation struct {
	FocusTopic          string `json:"focusTopic"`
	Reason              string `json:"reason"`
	SuggestedDifficulty string `json:"suggestedDifficulty"`
}

type DashboardService interface {
	Summary(ctx context.Context, owner uuid.UUID) (*DashboardSummary, error)
	Progress(ctx context.Context, owner uuid.UUID) (*ProgressView, error)
	NextRecommendation(ctx context.Context, owner uuid.UUID) (*Recommendation, error)
}

type dashboardService struct {
	log     *logger.Logger
	users   repos.UserRepo
	history repos.HistoryRepo
	stats   repos.UserStatsRepo
}

func NewDashboardService(log *logger.Logger, users repos.UserRepo, history repos.HistoryRepo, stats repos.UserStatsRepo) DashboardService {
	return &dashboardService{
		log:     log.With("service", "DashboardService"),
		users:   users,
		history: history,
		stats:   stats,
	}
}

func (ds *dashboardService) Summary(ctx context.Context, owner uuid.UUID) (*DashboardSummary, error) {
	var (
		out   DashboardSummary
		users []*types.User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		users, err = ds.users.GetByIDs(gctx, nil, []uuid.UUID{owner})
		return err
	})
	g.Go(func() (err error) {
		out.LanguageStats, err = ds.history.CountByLanguage(gctx, nil, owner)
		return err
	})
	g.Go(func() (err error) {
		out.ProblemStats.ByDifficulty, err = ds.history.CountByDifficulty(gctx, nil, owner)
		return err
	})
	g.Go(func() (err error) {
		out.ProblemStats.ByTopic, err = ds.history.TopicCounts(gctx, nil, owner, topTopicsLimit, false)
		return err
	})
	g.Go(func() (err error) {
		out.ProblemStats.TotalProblems, err = ds.history.CountByKind(gctx, nil, owner, types.KindProblem)
		return err
	})
	g.Go(func() (err error) {
		out.RecentProblems, err = ds.history.Recent(gctx, nil, owner, types.KindProblem, recentLimit)
		return err
	})
	g.Go(func() (err error) {
		out.RecentCode, err = ds.history.Recent(gctx, nil, owner, types.KindCode, recentLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard summary: %w", err)
	}
	if len(users) == 0 {
		return nil, apierr.NotFound("user not found")
	}

	out.User = DashboardUser{ID: users[0].ID, Name: users[0].Name, Email: users[0].Email}
	out.LanguageStats = nonNilCounts(out.LanguageStats)
	out.ProblemStats.ByDifficulty = nonNilCounts(out.ProblemStats.ByDifficulty)
	out.ProblemStats.ByTopic = nonNilCounts(out.ProblemStats.ByTopic)
	if out.RecentProblems == nil {
		out.RecentProblems = []*types.HistoryRecord{}
	}
	if out.RecentCode == nil {
		out.RecentCode = []*types.HistoryRecord{}
	}
	return &out, nil
}

func nonNilCounts(in []repos.HistoryCount) []repos.HistoryCount {
	if in == nil {
		return []repos.HistoryCount{}
	}
	return in
}

func (ds *dashboardService) Progress(ctx context.Context, owner uuid.UUID) (*ProgressView, error) {
	stats, err := ds.stats.GetByUserID(ctx, nil, owner)
	if err != nil {
		return nil, fmt.Errorf("load stats: %w", err)
	}
	if stats == nil {
		return &ProgressView{PerDayCounts: map[string]int{}}, nil
	}
	return &ProgressView{
		TotalProblems:     stats.TotalProblems,
		TotalCodeAnalyses: stats.TotalCodeAnalyses,
		CurrentStreak:     stats.CurrentStreak,
		LongestStreak:     stats.LongestStreak,
		LastActiveDate:    stats.LastActiveAt,
		PerDayCounts:      stats.Days(),
	}, nil
}

// NextRecommendation points the owner at their least practised topic.
func (ds *dashboardService) NextRecommendation(ctx context.Context, owner uuid.UUID) (*Recommendation, error) {
	counts, err := ds.history.TopicCounts(ctx, nil, owner, 3, true)
	if err != nil {
		return nil, fmt.Errorf("topic counts: %w", err)
	}
	if len(counts) == 0 {
		return &Recommendation{
			FocusTopic:          "Arrays / Basics",
			Reason:              "You have not analysed any problems yet. Start from basics.",
			SuggestedDifficulty: "Easy",
		}, nil
	}
	weakest := counts[0]
	topic := weakest.Name
	if topic == "" {
		topic = "Mixed Topics"
	}
	return &Recommendation{
		FocusTopic:          topic,
		Reason:              fmt.Sprintf("You have solved only %d problems in this topic compared to others.", weakest.Count),
		SuggestedDifficulty: "Medium",
	}, nil
}
