package categories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/credisphere/credisphere/internal/platform/db"
	"github.com/credisphere/credisphere/internal/shared"
)

// Repository defines persistence for categories.
type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error)
	Get(ctx context.Context, id int64) (Category, error)
	Create(ctx context.Context, in Input) (Category, error)
	Update(ctx context.Context, id int64, in Input) (Category, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db db.DBTX
}

// NewRepository returns a PostgreSQL backed Repository.
func NewRepository(conn db.DBTX) Repository {
	return &repository{db: conn}
}

const columns = "id, name, description, created_at, updated_at"

var listQuery = shared.ListQuery{
	Table:    "categories",
	Columns:  columns,
	Search:   []string{"name", "description"},
	Sortable: map[string]string{"name": "name", "created": "created_at"},
	Default:  "name",
}

func scan(row pgx.Row) (Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error) {
	return shared.RunList(ctx, r.db, listQuery, filters, scan)
}

func (r *repository) Get(ctx context.Context, id int64) (Category, error) {
	c, err := scan(r.db.QueryRow(ctx, `SELECT `+columns+` FROM categories WHERE id = $1`, id))
	if err != nil {
		return Category{}, fmt.Errorf("categories: get: %w", db.Translate(err))
	}
	return c, nil
}

func (r *repository) Create(ctx context.Context, in Input) (Category, error) {
	c, err := scan(r.db.QueryRow(ctx,
		`INSERT INTO categories (name, description) VALUES ($1, $2) RETURNING `+columns,
		in.Name, in.Description))
	if err != nil {
		return Category{}, fmt.Errorf("categories: create: %w", db.Translate(err))
	}
	return c, nil
}

func (r *repository) Update(ctx context.Context, id int64, in Input) (Category, error) {
	c, err := scan(r.db.QueryRow(ctx,
		`UPDATE categories SET name = $2, description = $3, updated_at = NOW() WHERE id = $1 RETURNING `+columns,
		id, in.Name, in.Description))
	if err != nil {
		return Category{}, fmt.Errorf("categories: update: %w", db.Translate(err))
	}
	return c, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("categories: delete: %w", db.Translate(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("categories: delete: %w", db.Translate(pgx.ErrNoRows))
	}
	return nil
}
