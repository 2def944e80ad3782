package powerteams

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/credisphere/credisphere/internal/platform/db"
	"github.com/credisphere/credisphere/internal/shared"
)

// Repository defines persistence for power teams.
type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]PowerTeam, int, error)
	Get(ctx context.Context, id int64) (PowerTeam, error)
	Create(ctx context.Context, in Input) (PowerTeam, error)
	Update(ctx context.Context, id int64, in Input) (PowerTeam, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db db.DBTX
}

// NewRepository returns a PostgreSQL backed Repository.
func NewRepository(conn db.DBTX) Repository {
	return &repository{db: conn}
}

const columns = "id, name, club_id, category_id, created_at, updated_at"

var listQuery = shared.ListQuery{
	Table:    "power_teams",
	Columns:  columns,
	Search:   []string{"name"},
	Sortable: map[string]string{"name": "name", "club": "club_id", "created": "created_at"},
	Default:  "name",
}

func scan(row pgx.Row) (PowerTeam, error) {
	var t PowerTeam
	err := row.Scan(&t.ID, &t.Name, &t.ClubID, &t.CategoryID, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]PowerTeam, int, error) {
	return shared.RunList(ctx, r.db, listQuery, filters, scan)
}

func (r *repository) Get(ctx context.Context, id int64) (PowerTeam, error) {
	t, err := scan(r.db.QueryRow(ctx, `SELECT `+columns+` FROM power_teams WHERE id = $1`, id))
	if err != nil {
		return PowerTeam{}, fmt.Errorf("powerteams: get: %w", db.Translate(err))
	}
	return t, nil
}

func (r *repository) Create(ctx context.Context, in Input) (PowerTeam, error) {
	t, err := scan(r.db.QueryRow(ctx,
		`INSERT INTO power_teams (name, club_id, category_id) VALUES ($1, $2, $3) RETURNING `+columns,
		in.Name, in.ClubID, in.CategoryID))
	if err != nil {
		return PowerTeam{}, fmt.Errorf("powerteams: create: %w", db.Translate(err))
	}
	return t, nil
}

func (r *repository) Update(ctx context.Context, id int64, in Input) (PowerTeam, error) {
	t, err := scan(r.db.QueryRow(ctx, `
UPDATE power_teams
SET name = $2, club_id = $3, category_id = $4, updated_at = NOW()
WHERE id = $1
RETURNING `+columns, id, in.Name, in.ClubID, in.CategoryID))
	if err != nil {
		return PowerTeam{}, fmt.Errorf("powerteams: update: %w", db.Translate(err))
	}
	return t, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM power_teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("powerteams: delete: %w", db.Translate(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("powerteams: delete: %w", db.Translate(pgx.ErrNoRows))
	}
	return nil
}
