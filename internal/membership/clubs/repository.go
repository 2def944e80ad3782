package clubs

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/credisphere/credisphere/internal/platform/db"
	"github.com/credisphere/credisphere/internal/shared"
)

// Repository defines persistence for clubs.
type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Club, int, error)
	Get(ctx context.Context, id int64) (Club, error)
	Create(ctx context.Context, in Input) (Club, error)
	Update(ctx context.Context, id int64, in Input) (Club, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db db.DBTX
}

// NewRepository returns a PostgreSQL backed Repository.
func NewRepository(conn db.DBTX) Repository {
	return &repository{db: conn}
}

const columns = "id, name, city, category_id, is_active, created_at, updated_at"

var listQuery = shared.ListQuery{
	Table:   "clubs",
	Columns: columns,
	Search:  []string{"name", "city"},
	Sortable: map[string]string{
		"name":    "name",
		"city":    "city",
		"created": "created_at",
	},
	Default: "name",
}

func scan(row pgx.Row) (Club, error) {
	var c Club
	err := row.Scan(&c.ID, &c.Name, &c.City, &c.CategoryID, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Club, int, error) {
	return shared.RunList(ctx, r.db, listQuery, filters, scan)
}

func (r *repository) Get(ctx context.Context, id int64) (Club, error) {
	c, err := scan(r.db.QueryRow(ctx, `SELECT `+columns+` FROM clubs WHERE id = $1`, id))
	if err != nil {
		return Club{}, fmt.Errorf("clubs: get: %w", db.Translate(err))
	}
	return c, nil
}

func (r *repository) Create(ctx context.Context, in Input) (Club, error) {
	c, err := scan(r.db.QueryRow(ctx, `
INSERT INTO clubs (name, city, category_id, is_active)
VALUES ($1, $2, $3, $4)
RETURNING `+columns, in.Name, in.City, in.CategoryID, in.active()))
	if err != nil {
		return Club{}, fmt.Errorf("clubs: create: %w", db.Translate(err))
	}
	return c, nil
}

func (r *repository) Update(ctx context.Context, id int64, in Input) (Club, error) {
	c, err := scan(r.db.QueryRow(ctx, `
UPDATE clubs
SET name = $2, city = $3, category_id = $4, is_active = $5, updated_at = NOW()
WHERE id = $1
RETURNING `+columns, id, in.Name, in.City, in.CategoryID, in.active()))
	if err != nil {
		return Club{}, fmt.Errorf("clubs: update: %w", db.Translate(err))
	}
	return c, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM clubs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("clubs: delete: %w", db.Translate(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("clubs: delete: %w", db.Translate(pgx.ErrNoRows))
	}
	return nil
}
