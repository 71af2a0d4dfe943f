package curated

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iapss/iapss-backend/internal/data/repos/testutil"
	types "github.com/iapss/iapss-backend/internal/domain"
)

func TestCuratedRepoOrdering(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewCuratedRepo(db, testutil.Logger(t))

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	news := []*types.CuratedNews{
		{Title: "second", URL: "https://a", Source: "IAPSS", Active: true, Order: 1, CreatedAt: base.Add(2 * time.Hour)},
		{Title: "first-new", URL: "https://b", Source: "IAPSS", Active: true, Order: 0, CreatedAt: base.Add(time.Hour)},
		{Title: "first-old", URL: "https://c", Source: "IAPSS", Active: true, Order: 0, CreatedAt: base},
		{Title: "hidden", URL: "https://d", Source: "IAPSS", Active: false, Order: 0, CreatedAt: base},
	}
	for _, n := range news {
		require.NoError(t, repo.CreateNews(ctx, tx, n))
	}

	active, err := repo.ListActiveNews(ctx, tx)
	require.NoError(t, err)
	titles := make([]string, 0, len(active))
	for _, n := range active {
		titles = append(titles, n.Title)
	}
	assert.Equal(t, []string{"first-new", "first-old", "second"}, titles)

	all, err := repo.ListNews(ctx, tx)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	contests := []*types.CuratedContest{
		{Name: "late", URL: "https://x", Site: "IAPSS", Active: true, StartTime: base.Add(48 * time.Hour), EndTime: base.Add(50 * time.Hour)},
		{Name: "early", URL: "https://y", Site: "IAPSS", Active: true, StartTime: base.Add(24 * time.Hour), EndTime: base.Add(26 * time.Hour)},
	}
	for _, c := range contests {
		require.NoError(t, repo.CreateContest(ctx, tx, c))
	}
	gotContests, err := repo.ListActiveContests(ctx, tx)
	require.NoError(t, err)
	require.Len(t, gotContests, 2)
	assert.Equal(t, "early", gotContests[0].Name)

	require.NoError(t, repo.CreatePodcast(ctx, tx, &types.CuratedPodcast{Title: "Show", Platform: "Spotify", URL: "https://p", Active: true}))
	pods, err := repo.ListActivePodcasts(ctx, tx)
	require.NoError(t, err)
	require.Len(t, pods, 1)
	assert.Equal(t, "Spotify", pods[0].Item().Platform)
}
