package categories

import (
	"context"
	"strconv"
	"strings"

	"github.com/credisphere/credisphere/internal/platform/httpx"
	"github.com/credisphere/credisphere/internal/rbac"
	"github.com/credisphere/credisphere/internal/shared"
)

// Service applies category rules before persisting.
type Service struct {
	repo      Repository
	validator *httpx.Validator
	audit     shared.AuditRecorder
}

// NewService builds a Service.
func NewService(repo Repository, validator *httpx.Validator, audit shared.AuditRecorder) *Service {
	if audit == nil {
		audit = shared.NopAudit{}
	}
	return &Service{repo: repo, validator: validator, audit: audit}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Category, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (Category, error) {
	in = normalize(in)
	if err := s.validator.Struct(in); err != nil {
		return Category{}, err
	}
	c, err := s.repo.Create(ctx, in)
	if err != nil {
		return Category{}, err
	}
	s.record(ctx, shared.AuditCreate, c.ID)
	return c, nil
}

func (s *Service) Update(ctx context.Context, id int64, in Input) (Category, error) {
	in = normalize(in)
	if err := s.validator.Struct(in); err != nil {
		return Category{}, err
	}
	c, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return Category{}, err
	}
	s.record(ctx, shared.AuditUpdate, id)
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, shared.AuditDelete, id)
	return nil
}

func (s *Service) record(ctx context.Context, action string, id int64) {
	_ = s.audit.Record(ctx, shared.AuditLog{ActorID: rbac.ActorID(ctx), Action: action, Entity: "category", EntityID: strconv.FormatInt(id, 10)})
}

func normalize(in Input) Input {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	return in
}
