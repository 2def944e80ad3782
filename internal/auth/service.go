package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/crypto/bcrypt"

	"github.com/credisphere/credisphere/internal/platform/httpx"
	"github.com/credisphere/credisphere/internal/rbac"
	"github.com/credisphere/credisphere/internal/shared"
)

// Revoker tracks revoked token IDs.
type Revoker interface {
	Revoke(ctx context.Context, id string, ttl time.Duration) error
	IsRevoked(ctx context.Context, id string) (bool, error)
}

// ServiceConfig tunes the principal cache.
type ServiceConfig struct {
	PrincipalCacheSize int
	PrincipalCacheTTL  time.Duration
}

// Service wraps authentication business rules.
type Service struct {
	repo     Repository
	tokens   *TokenIssuer
	revoker  Revoker
	audit    shared.AuditRecorder
	accounts *expirable.LRU[int64, *User]
	now      func() time.Time
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenIssuer, revoker Revoker, audit shared.AuditRecorder, cfg ServiceConfig) *Service {
	if cfg.PrincipalCacheSize <= 0 {
		cfg.PrincipalCacheSize = 1024
	}
	if cfg.PrincipalCacheTTL <= 0 {
		cfg.PrincipalCacheTTL = 30 * time.Second
	}
	if audit == nil {
		audit = shared.NopAudit{}
	}
	return &Service{
		repo:     repo,
		tokens:   tokens,
		revoker:  revoker,
		audit:    audit,
		accounts: expirable.NewLRU[int64, *User](cfg.PrincipalCacheSize, nil, cfg.PrincipalCacheTTL),
		now:      time.Now,
	}
}

// Login validates email/password credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password, ip, ua string) (*LoginResult, error) {
	user, err := s.repo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInactiveAccount
	}
	token, claims, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	expiresAt := claims.ExpiresAt.Time
	if err := s.repo.CreateSession(ctx, claims.ID, user.ID, expiresAt, ip, ua); err != nil {
		return nil, fmt.Errorf("auth: register session: %w", err)
	}
	_ = s.audit.Record(ctx, shared.AuditLog{ActorID: user.ID, Action: shared.AuditLogin, Entity: "user", EntityID: strconv.FormatInt(user.ID, 10)})
	s.accounts.Add(user.ID, user)
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user.View()}, nil
}

// Authenticate resolves a raw bearer token into the request principal.
func (s *Service) Authenticate(ctx context.Context, raw string) (*rbac.Principal, *Claims, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, nil, err
	}
	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, err
	}
	if revoked {
		return nil, nil, fmt.Errorf("%w: %w", httpx.ErrUnauthorized, shared.ErrTokenRevoked)
	}
	userID, _ := claims.UserID()
	user, err := s.account(ctx, userID)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: account no longer exists", httpx.ErrUnauthorized)
		}
		return nil, nil, err
	}
	if !user.IsActive {
		return nil, nil, fmt.Errorf("%w: %w", httpx.ErrUnauthorized, shared.ErrInactiveAccount)
	}
	return user.Principal(), claims, nil
}

// Logout revokes the token described by claims.
func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	if claims == nil {
		return httpx.ErrUnauthorized
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if err := s.revoker.Revoke(ctx, claims.ID, ttl); err != nil {
		return err
	}
	if err := s.repo.RevokeSession(ctx, claims.ID); err != nil {
		return fmt.Errorf("auth: revoke session: %w", err)
	}
	userID, _ := claims.UserID()
	_ = s.audit.Record(ctx, shared.AuditLog{ActorID: userID, Action: shared.AuditLogout, Entity: "user", EntityID: claims.Subject})
	return nil
}

// Account returns the account behind userID, consulting the cache first.
func (s *Service) Account(ctx context.Context, userID int64) (*User, error) {
	return s.account(ctx, userID)
}

// Forget drops a cached account so the next request reloads it.
func (s *Service) Forget(userID int64) {
	s.accounts.Remove(userID)
}

func (s *Service) account(ctx context.Context, userID int64) (*User, error) {
	if user, ok := s.accounts.Get(userID); ok {
		return user, nil
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.accounts.Add(userID, user)
	return user, nil
}
