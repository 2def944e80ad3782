package competitions

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/credisphere/credisphere/internal/platform/db"
	"github.com/credisphere/credisphere/internal/shared"
)

// Repository defines persistence for competitions.
type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Competition, int, error)
	Get(ctx context.Context, id int64) (Competition, error)
	Create(ctx context.Context, in Input) (Competition, error)
	Update(ctx context.Context, id int64, in Input) (Competition, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db db.DBTX
}

// NewRepository returns a PostgreSQL backed Repository.
func NewRepository(conn db.DBTX) Repository {
	return &repository{db: conn}
}

const columns = "id, title, description, club_id, starts_at, ends_at, created_at, updated_at"

var listQuery = shared.ListQuery{
	Table:   "competitions",
	Columns: columns,
	Search:  []string{"title", "description"},
	Sortable: map[string]string{
		"title":     "title",
		"starts_at": "starts_at",
		"ends_at":   "ends_at",
	},
	Default: "starts_at",
}

func scan(row pgx.Row) (Competition, error) {
	var c Competition
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.ClubID, &c.StartsAt, &c.EndsAt, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Competition, int, error) {
	return shared.RunList(ctx, r.db, listQuery, filters, scan)
}

func (r *repository) Get(ctx context.Context, id int64) (Competition, error) {
	c, err := scan(r.db.QueryRow(ctx, `SELECT `+columns+` FROM competitions WHERE id = $1`, id))
	if err != nil {
		return Competition{}, fmt.Errorf("competitions: get: %w", db.Translate(err))
	}
	return c, nil
}

func (r *repository) Create(ctx context.Context, in Input) (Competition, error) {
	c, err := scan(r.db.QueryRow(ctx, `
INSERT INTO competitions (title, description, club_id, starts_at, ends_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING `+columns, in.Title, in.Description, in.ClubID, in.StartsAt, in.EndsAt))
	if err != nil {
		return Competition{}, fmt.Errorf("competitions: create: %w", db.Translate(err))
	}
	return c, nil
}

func (r *repository) Update(ctx context.Context, id int64, in Input) (Competition, error) {
	c, err := scan(r.db.QueryRow(ctx, `
UPDATE competitions
SET title = $2, description = $3, club_id = $4, starts_at = $5, ends_at = $6, updated_at = NOW()
WHERE id = $1
RETURNING `+columns, id, in.Title, in.Description, in.ClubID, in.StartsAt, in.EndsAt))
	if err != nil {
		return Competition{}, fmt.Errorf("competitions: update: %w", db.Translate(err))
	}
	return c, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM competitions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("competitions: delete: %w", db.Translate(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("competitions: delete: %w", db.Translate(pgx.ErrNoRows))
	}
	return nil
}
