package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iapss/iapss-backend/internal/data/repos"
	"github.com/iapss/iapss-backend/internal/data/repos/testutil"
	types "github.com/iapss/iapss-backend/internal/domain"
)

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"dp", "graphs"}, NormalizeTags([]string{" dp ", "", "graphs", "dp", "  "}))
	assert.Equal(t, []string{}, NormalizeTags(nil))
}

func TestHistoryServiceOwnership(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	log := testutil.Logger(t)
	svc := NewHistoryService(log, repos.NewHistoryRepo(db, log))

	alice := testutil.SeedUser(t, ctx, db, "alice@example.com")
	bob := testutil.SeedUser(t, ctx, db, "bob@example.com")
	rec := testutil.SeedProblemRecord(t, ctx, db, alice.ID, "two sum", "Easy", "Arrays")

	_, err := svc.Get(ctx, bob.ID, types.KindProblem, rec.ID)
	requireAPIStatus(t, err, http.StatusNotFound)
	err = svc.Delete(ctx, bob.ID, types.KindProblem, rec.ID)
	requireAPIStatus(t, err, http.StatusNotFound)
	_, err = svc.SetFavorite(ctx, bob.ID, types.KindProblem, rec.ID, true)
	requireAPIStatus(t, err, http.StatusNotFound)

	// wrong kind behaves like a missing record
	_, err = svc.Get(ctx, alice.ID, types.KindCode, rec.ID)
	requireAPIStatus(t, err, http.StatusNotFound)

	got, err := svc.Get(ctx, alice.ID, types.KindProblem, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
}

func TestHistoryServiceMutations(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	log := testutil.Logger(t)
	svc := NewHistoryService(log, repos.NewHistoryRepo(db, log))

	u := testutil.SeedUser(t, ctx, db, "m@example.com")
	rec := testutil.SeedCodeRecord(t, ctx, db, u.ID, "int main(){}", "cpp")

	fav, err := svc.SetFavorite(ctx, u.ID, types.KindCode, rec.ID, true)
	require.NoError(t, err)
	assert.True(t, fav.IsFavorite)

	tagged, err := svc.SetTags(ctx, u.ID, types.KindCode, rec.ID, []string{" review ", "review", "", "perf"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"review", "perf"}, tagged.TagNames())

	_, err = svc.SetFeedback(ctx, u.ID, types.KindCode, rec.ID, 6, "too high")
	requireAPIStatus(t, err, http.StatusBadRequest)

	rated, err := svc.SetFeedback(ctx, u.ID, types.KindCode, rec.ID, 4, " useful ")
	require.NoError(t, err)
	require.NotNil(t, rated.Feedback())
	assert.Equal(t, 4, rated.Feedback().Rating)
	assert.Equal(t, "useful", rated.Feedback().Comment)

	require.NoError(t, svc.Delete(ctx, u.ID, types.KindCode, rec.ID))
	_, err = svc.Get(ctx, u.ID, types.KindCode, rec.ID)
	requireAPIStatus(t, err, http.StatusNotFound)
}

func TestHistoryServiceListPagination(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	log := testutil.Logger(t)
	svc := NewHistoryService(log, repos.NewHistoryRepo(db, log))

	u := testutil.SeedUser(t, ctx, db, "p@example.com")
	empty, err := svc.List(ctx, u.ID, repos.HistoryListFilter{Kind: types.KindProblem})
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
	assert.NotNil(t, empty.Items)
	assert.Equal(t, 1, empty.Pagination.TotalPages)

	for i := 0; i < 5; i++ {
		testutil.SeedProblemRecord(t, ctx, db, u.ID, "problem", "Medium", "Graphs")
	}
	page, err := svc.List(ctx, u.ID, repos.HistoryListFilter{Kind: types.KindProblem, Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, Pagination{Page: 2, Limit: 2, Total: 5, TotalPages: 3}, page.Pagination)

	n, err := svc.Clear(ctx, u.ID, types.KindProblem)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)

}
