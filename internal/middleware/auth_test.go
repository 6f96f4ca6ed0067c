package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studysync/studysync/internal/ctxkeys"
	"github.com/studysync/studysync/internal/db"
	"github.com/studysync/studysync/internal/repository"
	"github.com/studysync/studysync/internal/service"
)

func newAuthService(t *testing.T) *service.AuthService {
	t.Helper()

	database, err := sqlx.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))

	return service.NewAuthService(repository.NewUserRepository(database), "test-secret", time.Hour)
}

func TestAuthMiddlewareResolvesBearerToken(t *testing.T) {
	authService := newAuthService(t)
	user, err := authService.Signup("Ada Lovelace", "ada@example.com", "plum-orchard-42-kite")
	require.NoError(t, err)

	token, err := authService.GenerateJWT(user)
	require.NoError(t, err)

	var gotID string
	var gotHash bool
	handler := AuthMiddleware(authService)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u := ctxkeys.User(r.Context()); u != nil {
			gotID = u.ID
			gotHash = u.PasswordHash != nil
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/attendance", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, user.ID, gotID)
	assert.False(t, gotHash, "password hash must not travel in the request context")
}

func TestAuthMiddlewareContinuesUnauthenticated(t *testing.T) {
	authService := newAuthService(t)

	called := false
	var gotUser bool
	handler := AuthMiddleware(authService)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		gotUser = ctxkeys.User(r.Context()) != nil
	}))

	for _, header := range []string{"", "Bearer garbage", "Basic abc123"} {
		called, gotUser = false, false
		req := httptest.NewRequest(http.MethodGet, "/attendance", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.True(t, called, "header %q", header)
		assert.False(t, gotUser, "header %q", header)
	}
}

func TestRequireAuth(t *testing.T) {
	authService := newAuthService(t)
	user, err := authService.Signup("Ada Lovelace", "ada@example.com", "plum-orchard-42-kite")
	require.NoError(t, err)

	next := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }

	rec := httptest.NewRecorder()
	RequireAuth(next)(rec, httptest.NewRequest(http.MethodGet, "/attendance", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/attendance", nil)
	req = req.WithContext(ctxkeys.WithUser(req.Context(), user))
	RequireAuth(next)(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	authService := newAuthService(t)
	user, err := authService.Signup("Ada Lovelace", "ada@example.com", "plum-orchard-42-kite")
	require.NoError(t, err)

	next := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }

	rec := httptest.NewRecorder()
	RequireAdmin(next)(rec, httptest.NewRequest(http.MethodPost, "/pypapers/upload", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/pypapers/upload", nil)
	req = req.WithContext(ctxkeys.WithUser(req.Context(), user))
	RequireAdmin(next)(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := *user
	admin.Role = "admin"
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/pypapers/upload", nil)
	req = req.WithContext(ctxkeys.WithUser(req.Context(), &admin))
	RequireAdmin(next)(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
