package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iapss/iapss-backend/internal/data/repos"
	"github.com/iapss/iapss-backend/internal/data/repos/testutil"
	types "github.com/iapss/iapss-backend/internal/domain"
	"github.com/iapss/iapss-backend/internal/platform/apierr"
	"github.com/iapss/iapss-backend/internal/platform/ctxutil"
)

func newAuth(t *testing.T) (AuthService, repos.UserRepo) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	users := repos.NewUserRepo(db, log)
	return NewAuthService(log, users, "test-secret", time.Hour), users
}

func requireAPIStatus(t *testing.T, err error, status int) *apierr.Error {
	t.Helper()
	ae, ok := apierr.As(err)
	require.True(t, ok, "expected *apierr.Error, got %v", err)
	assert.Equal(t, status, ae.Status)
	return ae
}

func TestRegisterValidates(t *testing.T) {
	auth, _ := newAuth(t)
	ctx := context.Background()

	cases := []RegisterInput{
		{Name: "A", Email: "a@example.com", Password: "secret1"},
		{Name: "Alice", Email: "not-an-email", Password: "secret1"},
		{Name: "Alice", Email: "a@example.com", Password: "short"},
	}
	for _, in := range cases {
		_, err := auth.Register(ctx, in)
		ae := requireAPIStatus(t, err, http.StatusBadRequest)
		assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	auth, _ := newAuth(t)
	ctx := context.Background()

	u, err := auth.Register(ctx, RegisterInput{Name: " Alice ", Email: "Alice@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, types.RoleUser, u.Role)
	assert.NotEqual(t, "secret1", u.Password)

	_, err = auth.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "secret1"})
	ae := requireAPIStatus(t, err, http.StatusConflict)
	assert.Equal(t, "EMAIL_IN_USE", ae.Code)

	_, _, err = auth.Login(ctx, "alice@example.com", "wrong-password")
	requireAPIStatus(t, err, http.StatusUnauthorized)

	_, _, err = auth.Login(ctx, "nobody@example.com", "secret1")
	requireAPIStatus(t, err, http.StatusUnauthorized)

	logged, token, err := auth.Login(ctx, "ALICE@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)
	require.NotEmpty(t, token)

	authed, err := auth.SetContextFromToken(ctx, token)
	require.NoError(t, err)
	rd := ctxutil.GetRequestData(authed)
	require.NotNil(t, rd)
	assert.Equal(t, u.ID, rd.UserID)
	assert.Equal(t, types.RoleUser, rd.Role)
}

func TestSetContextFromTokenRejectsBadTokens(t *testing.T) {
	auth, _ := newAuth(t)
	ctx := context.Background()

	_, err := auth.SetContextFromToken(ctx, "")
	requireAPIStatus(t, err, http.StatusUnauthorized)

	_, err = auth.SetContextFromToken(ctx, "not.a.jwt")
	requireAPIStatus(t, err, http.StatusUnauthorized)

	other := NewAuthService(testutil.Logger(t), nil, "other-secret", time.Hour).(*authService)
	forged, err := other.issueToken(&types.User{ID: uuid.New(), Role: types.RoleAdmin})
	require.NoError(t, err)
	_, err = auth.SetContextFromToken(ctx, forged)
	requireAPIStatus(t, err, http.StatusUnauthorized)
}

func TestSetContextFromTokenRejectsExpired(t *testing.T) {
	auth, _ := newAuth(t)
	ctx := context.Background()
	u, err := auth.Register(ctx, RegisterInput{Name: "Bob", Email: "bob@example.com", Password: "secret1"})
	require.NoError(t, err)

	impl := auth.(*authService)
	impl.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := impl.issueToken(u)
	require.NoError(t, err)
	impl.now = time.Now

	_, err = auth.SetContextFromToken(ctx, token)
	requireAPIStatus(t, err, http.StatusUnauthorized)
}

func TestRoleIsReadFromUserRow(t *testing.T) {
	auth, users := newAuth(t)
	ctx := context.Background()
	u, err := auth.Register(ctx, RegisterInput{Name: "Carol", Email: "carol@example.com", Password: "secret1"})
	require.NoError(t, err)
	_, token, err := auth.Login(ctx, "carol@example.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, users.UpdateRole(ctx, nil, u.ID, types.RoleAdmin))

	authed, err := auth.SetContextFromToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, types.RoleAdmin, ctxutil.GetRequestData(authed).Role)
}
