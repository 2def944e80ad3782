package users

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/credisphere/credisphere/internal/platform/httpx"
	"github.com/credisphere/credisphere/internal/rbac"
	"github.com/credisphere/credisphere/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context, filters shared.ListFilters) ([]User, int, error)
	GetUser(ctx context.Context, id int64) (User, error)
	CreateUser(ctx context.Context, rec record) (User, error)
	UpdateUser(ctx context.Context, rec record) (User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// Evictor drops cached account state after a change.
type Evictor interface {
	Forget(userID int64)
}

// Service handles user business logic.
type Service struct {
	repo      RepositoryPort
	validator *httpx.Validator
	audit     shared.AuditRecorder
	evictor   Evictor
	cost      int
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, validator *httpx.Validator, audit shared.AuditRecorder, evictor Evictor) *Service {
	if audit == nil {
		audit = shared.NopAudit{}
	}
	return &Service{repo: repo, validator: validator, audit: audit, evictor: evictor, cost: bcrypt.DefaultCost}
}

// ListUsers returns a page of users.
func (s *Service) ListUsers(ctx context.Context, filters shared.ListFilters) ([]User, int, error) {
	return s.repo.ListUsers(ctx, filters)
}

// GetUser returns a single user.
func (s *Service) GetUser(ctx context.Context, id int64) (User, error) {
	return s.repo.GetUser(ctx, id)
}

// CreateUser validates req, hashes the password and stores the account.
func (s *Service) CreateUser(ctx context.Context, req CreateRequest) (User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return User{}, err
	}
	role, err := parseRole(req.Role)
	if err != nil {
		return User{}, err
	}
	if err := assignable(ctx, role); err != nil {
		return User{}, err
	}
	hash, err := s.hash(req.Password)
	if err != nil {
		return User{}, err
	}
	created, err := s.repo.CreateUser(ctx, record{
		User:         User{Email: req.Email, Name: req.Name, Role: role, IsActive: true, ClubID: req.ClubID},
		PasswordHash: hash,
	})
	if err != nil {
		return User{}, err
	}
	s.record(ctx, shared.AuditCreate, created.ID, map[string]any{"email": created.Email, "role": created.Role})
	return created, nil
}

// UpdateUser applies the non-nil fields of req.
func (s *Service) UpdateUser(ctx context.Context, id int64, req UpdateRequest) (User, error) {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if err := s.validator.Struct(req); err != nil {
		return User{}, err
	}
	current, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return User{}, err
	}
	if err := manageable(ctx, current); err != nil {
		return User{}, err
	}
	rec := record{User: current}
	if req.Name != nil {
		rec.Name = *req.Name
	}
	if req.Role != nil {
		if rec.Role, err = parseRole(*req.Role); err != nil {
			return User{}, err
		}
		if err := assignable(ctx, rec.Role); err != nil {
			return User{}, err
		}
	}
	if req.IsActive != nil {
		rec.IsActive = *req.IsActive
	}
	if req.ClubID != nil {
		rec.ClubID = req.ClubID
	}
	if req.Password != nil {
		if rec.PasswordHash, err = s.hash(*req.Password); err != nil {
			return User{}, err
		}
	}
	updated, err := s.repo.UpdateUser(ctx, rec)
	if err != nil {
		return User{}, err
	}
	s.forget(id)
	s.record(ctx, shared.AuditUpdate, id, map[string]any{"role": updated.Role, "is_active": updated.IsActive})
	return updated, nil
}

// DeleteUser removes a user. Principals cannot delete themselves.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	if rbac.ActorID(ctx) == id {
		return httpx.NewValidationError("id", "you cannot delete your own account")
	}
	target, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if err := manageable(ctx, target); err != nil {
		return err
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.forget(id)
	s.record(ctx, shared.AuditDelete, id, nil)
	return nil
}

func (s *Service) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("users: hash password: %w", err)
	}
	return string(hash), nil
}

func (s *Service) forget(id int64) {
	if s.evictor != nil {
		s.evictor.Forget(id)
	}
}

func (s *Service) record(ctx context.Context, action string, id int64, meta map[string]any) {
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  rbac.ActorID(ctx),
		Action:   action,
		Entity:   "user",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
	})
}

// actor returns the request principal. Account management always needs one.
func actor(ctx context.Context) (*rbac.Principal, error) {
	p := rbac.PrincipalFromContext(ctx)
	if p == nil {
		return nil, fmt.Errorf("users: no principal: %w", httpx.ErrForbidden)
	}
	return p, nil
}

// assignable rejects granting a role above the actor's own.
func assignable(ctx context.Context, role rbac.RoleName) error {
	p, err := actor(ctx)
	if err != nil {
		return err
	}
	if role.Outranks(p.Role) {
		return httpx.NewValidationError("role", "you cannot assign a role above your own")
	}
	return nil
}

// manageable rejects changes to accounts that outrank the actor.
func manageable(ctx context.Context, target User) error {
	p, err := actor(ctx)
	if err != nil {
		return err
	}
	if target.Role.Outranks(p.Role) {
		return fmt.Errorf("users: account %d outranks %s: %w", target.ID, p.Role, httpx.ErrForbidden)
	}
	return nil
}

func parseRole(raw string) (rbac.RoleName, error) {
	role := rbac.RoleName(strings.ToLower(strings.TrimSpace(raw)))
	if !role.Valid() {
		return "", httpx.NewValidationError("role", "role must be one of superadmin, admin, president, member")
	}
	return role, nil
}
