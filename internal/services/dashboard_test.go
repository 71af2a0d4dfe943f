package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iapss/iapss-backend/internal/data/repos"
	"github.com/iapss/iapss-backend/internal/data/repos/testutil"
	types "github.com/iapss/iapss-backend/internal/domain"
)

func newDashboard(t *testing.T) (DashboardService, repos.UserStatsRepo, func() *types.User) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	stats := repos.NewUserStatsRepo(db, log)
	svc := NewDashboardService(log, repos.NewUserRepo(db, log), repos.NewHistoryRepo(db, log), stats)
	return svc, stats, func() *types.User {
		return testutil.SeedUser(t, context.Background(), db, "dash@example.com")
	}
}

func TestDashboardEmptyUser(t *testing.T) {
	svc, _, seed := newDashboard(t)
	ctx := context.Background()
	u := seed()

	sum, err := svc.Summary(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, sum.User.ID)
	assert.Zero(t, sum.ProblemStats.TotalProblems)
	assert.NotNil(t, sum.LanguageStats)
	assert.NotNil(t, sum.RecentProblems)

	prog, err := svc.Progress(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, &ProgressView{PerDayCounts: map[string]int{}}, prog)

	rec, err := svc.NextRecommendation(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Arrays / Basics", rec.FocusTopic)
	assert.Equal(t, "Easy", rec.SuggestedDifficulty)
}

func TestDashboardWithHistory(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()
	stats := repos.NewUserStatsRepo(db, log)
	svc := NewDashboardService(log, repos.NewUserRepo(db, log), repos.NewHistoryRepo(db, log), stats)

	u := testutil.SeedUser(t, ctx, db, "busy@example.com")
	testutil.SeedProblemRecord(t, ctx, db, u.ID, "p1", "Easy", "Graphs", "BFS")
	testutil.SeedProblemRecord(t, ctx, db, u.ID, "p2", "Medium", "Graphs")
	testutil.SeedProblemRecord(t, ctx, db, u.ID, "p3", "Medium", "Graphs", "DP")
	testutil.SeedCodeRecord(t, ctx, db, u.ID, "print(1)", "py")

	sum, err := svc.Summary(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, sum.ProblemStats.TotalProblems)
	require.NotEmpty(t, sum.ProblemStats.ByTopic)
	assert.Equal(t, repos.HistoryCount{Name: "Graphs", Count: 3}, sum.ProblemStats.ByTopic[0])
	assert.Len(t, sum.RecentProblems, 3)
	assert.Len(t, sum.RecentCode, 1)
	assert.Equal(t, []repos.HistoryCount{{Name: "py", Count: 1}}, sum.LanguageStats)

	rec, err := svc.NextRecommendation(ctx, u.ID)
	require.NoError(t, err)
	// BFS and DP tie at one; names break the tie
	assert.Equal(t, "BFS", rec.FocusTopic)
	assert.Equal(t, "Medium", rec.SuggestedDifficulty)

	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	_, err = stats.Mutate(ctx, nil, u.ID, func(s *types.UserStats) error {
		s.TotalProblems = 3
		s.CurrentStreak = 2
		s.LongestStreak = 5
		s.LastActiveAt = &now
		return nil
	})
	require.NoError(t, err)

	prog, err := svc.Progress(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, prog.TotalProblems)
	assert.Equal(t, 5, prog.LongestStreak)
	require.NotNil(t, prog.LastActiveDate)
	assert.True(t, prog.LastActiveDate.Equal(now))
}
