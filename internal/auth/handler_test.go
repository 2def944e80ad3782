package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/credisphere/credisphere/internal/auth"
	"github.com/credisphere/credisphere/internal/platform/httpx"
	"github.com/credisphere/credisphere/internal/rbac"
	_ "github.com/credisphere/credisphere/testing"
)

type stubRepo struct {
	mu       sync.Mutex
	users    map[int64]*auth.User
	sessions map[string]bool
	lookups  int
}

func newStubRepo(users ...*auth.User) *stubRepo {
	repo := &stubRepo{users: make(map[int64]*auth.User), sessions: make(map[string]bool)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, httpx.ErrNotFound
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	u, ok := s.users[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return u, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = true
	return nil
}

func (s *stubRepo) RevokeSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = false
	return nil
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func newAuthRouter(t *testing.T, repo auth.Repository, cfg auth.ServiceConfig) (http.Handler, *auth.Service) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := auth.NewService(repo, auth.NewTokenIssuer("test-secret", time.Hour), auth.NewRevocationStore(redisClient), nil, cfg)
	handler := auth.NewHandler(logger, service, httpx.NewValidator())
	r := chi.NewRouter()
	r.Route("/auth", handler.MountRoutes)
	return r, service
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
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
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, h http.Handler, email, password string) auth.LoginResult {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result auth.LoginResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	return result
}

func TestLoginLogoutRoundTrip(t *testing.T) {
	repo := newStubRepo(&auth.User{ID: 1, Email: "ana@club.io", Name: "Ana", PasswordHash: hashed(t, "correctpass"), Role: rbac.RoleAdmin, IsActive: true})
	h, _ := newAuthRouter(t, repo, auth.ServiceConfig{})

	result := login(t, h, "ana@club.io", "correctpass")
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, rbac.RoleAdmin, result.User.Role)
	assert.True(t, result.ExpiresAt.After(time.Now()))
	assert.Len(t, repo.sessions, 1)

	rec := do(t, h, http.MethodGet, "/auth/me", result.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me auth.UserView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "ana@club.io", me.Email)

	rec = do(t, h, http.MethodPost, "/auth/logout", result.Token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	for _, active := range repo.sessions {
		assert.False(t, active)
	}

	rec = do(t, h, http.MethodGet, "/auth/me", result.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginInvalidCredentials(t *testing.T) {
	repo := newStubRepo(&auth.User{ID: 1, Email: "ana@club.io", PasswordHash: hashed(t, "correctpass"), Role: rbac.RoleMember, IsActive: true})
	h, _ := newAuthRouter(t, repo, auth.ServiceConfig{})

	rec := do(t, h, http.MethodPost, "/auth/login", "", map[string]string{"email": "ana@club.io", "password": "wrongpass"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password")

	rec = do(t, h, http.MethodPost, "/auth/login", "", map[string]string{"email": "nobody@club.io", "password": "whatever1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	repo := newStubRepo(&auth.User{ID: 1, Email: "ana@club.io", PasswordHash: hashed(t, "correctpass"), Role: rbac.RoleMember})
	h, _ := newAuthRouter(t, repo, auth.ServiceConfig{})

	rec := do(t, h, http.MethodPost, "/auth/login", "", map[string]string{"email": "ana@club.io", "password": "correctpass"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, repo.sessions)
}

func TestLoginValidationErrorsUsePathShape(t *testing.T) {
	h, _ := newAuthRouter(t, newStubRepo(), auth.ServiceConfig{})

	rec := do(t, h, http.MethodPost, "/auth/login", "", map[string]string{"email": "not-an-email", "password": "short"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body struct {
		Errors []httpx.FieldError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Errors, 2)
	assert.Equal(t, "email", body.Errors[0].Path[0])
	assert.Equal(t, "password", body.Errors[1].Path[0])
}

func TestAuthenticateRejectsMissingOrForeignTokens(t *testing.T) {
	h, _ := newAuthRouter(t, newStubRepo(), auth.ServiceConfig{})

	rec := do(t, h, http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))

	foreign, _, err := auth.NewTokenIssuer("other-secret", time.Hour).Issue(&auth.User{ID: 1, Role: rbac.RoleAdmin})
	require.NoError(t, err)
	rec = do(t, h, http.MethodGet, "/auth/me", foreign, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateRejectsDeactivatedAccount(t *testing.T) {
	user := &auth.User{ID: 7, Email: "bo@club.io", PasswordHash: hashed(t, "correctpass"), Role: rbac.RoleMember, IsActive: true}
	repo := newStubRepo(user)
	h, service := newAuthRouter(t, repo, auth.ServiceConfig{})
	result := login(t, h, "bo@club.io", "correctpass")

	repo.mu.Lock()
	repo.users[7] = &auth.User{ID: 7, Email: "bo@club.io", Role: rbac.RoleMember, IsActive: false}
	repo.mu.Unlock()
	service.Forget(7)

	rec := do(t, h, http.MethodGet, "/auth/me", result.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateCachesAccounts(t *testing.T) {
	repo := newStubRepo(&auth.User{ID: 3, Email: "cy@club.io", PasswordHash: hashed(t, "correctpass"), Role: rbac.RoleMember, IsActive: true})
	h, _ := newAuthRouter(t, repo, auth.ServiceConfig{PrincipalCacheTTL: time.Minute})
	result := login(t, h, "cy@club.io", "correctpass")

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/auth/me", result.Token, nil).Code)
	}
	assert.Equal(t, 0, repo.lookups)
}
