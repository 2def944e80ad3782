package parties

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/credisphere/credisphere/internal/platform/db"
	"github.com/credisphere/credisphere/internal/shared"
)

// Repository defines persistence for parties.
type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Party, int, error)
	Get(ctx context.Context, id int64) (Party, error)
	Create(ctx context.Context, in Input) (Party, error)
	Update(ctx context.Context, id int64, in Input) (Party, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db db.DBTX
}

// NewRepository returns a PostgreSQL backed Repository.
func NewRepository(conn db.DBTX) Repository {
	return &repository{db: conn}
}

const columns = "id, name, abbreviation, leader, created_at, updated_at"

var listQuery = shared.ListQuery{
	Table:   "parties",
	Columns: columns,
	Search:  []string{"name", "abbreviation", "leader"},
	Sortable: map[string]string{
		"name":         "name",
		"abbreviation": "abbreviation",
		"created":      "created_at",
	},
	Default: "name",
}

func scan(row pgx.Row) (Party, error) {
	var p Party
	err := row.Scan(&p.ID, &p.Name, &p.Abbreviation, &p.Leader, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Party, int, error) {
	return shared.RunList(ctx, r.db, listQuery, filters, scan)
}

func (r *repository) Get(ctx context.Context, id int64) (Party, error) {
	p, err := scan(r.db.QueryRow(ctx, `SELECT `+columns+` FROM parties WHERE id = $1`, id))
	if err != nil {
		return Party{}, fmt.Errorf("parties: get: %w", db.Translate(err))
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, in Input) (Party, error) {
	p, err := scan(r.db.QueryRow(ctx,
		`INSERT INTO parties (name, abbreviation, leader) VALUES ($1, $2, $3) RETURNING `+columns,
		in.Name, in.Abbreviation, in.Leader))
	if err != nil {
		return Party{}, fmt.Errorf("parties: create: %w", db.Translate(err))
	}
	return p, nil
}

func (r *repository) Update(ctx context.Context, id int64, in Input) (Party, error) {
	p, err := scan(r.db.QueryRow(ctx, `
UPDATE parties
SET name = $2, abbreviation = $3, leader = $4, updated_at = NOW()
WHERE id = $1
RETURNING `+columns, id, in.Name, in.Abbreviation, in.Leader))
	if err != nil {
		return Party{}, fmt.Errorf("parties: update: %w", db.Translate(err))
	}
	return p, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM parties WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("parties: delete: %w", db.Translate(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("parties: delete: %w", db.Translate(pgx.ErrNoRows))
	}
	return nil
}
