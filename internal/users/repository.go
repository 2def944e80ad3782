package users

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/credisphere/credisphere/internal/platform/db"
	"github.com/credisphere/credisphere/internal/rbac"
	"github.com/credisphere/credisphere/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	db db.DBTX
}

// NewRepository constructs a repository.
func NewRepository(conn db.DBTX) *Repository {
	return &Repository{db: conn}
}

const userColumns = "id, email, name, role, is_active, club_id, created_at, updated_at"

var listQuery = shared.ListQuery{
	Table:    "users",
	Columns:  userColumns,
	Search:   []string{"email", "name"},
	Sortable: map[string]string{"email": "email", "name": "name", "role": "role", "created": "created_at"},
	Default:  "name",
}

func scanUser(row pgx.Row) (User, error) {
	var (
		u    User
		role string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &role, &u.IsActive, &u.ClubID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return User{}, err
	}
	u.Role = rbac.RoleName(role)
	return u, nil
}

// ListUsers returns one page of users and the total match count.
func (r *Repository) ListUsers(ctx context.Context, filters shared.ListFilters) ([]User, int, error) {
	return shared.RunList(ctx, r.db, listQuery, filters, scanUser)
}

// GetUser fetches a user by ID.
func (r *Repository) GetUser(ctx context.Context, id int64) (User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return User{}, fmt.Errorf("users: get: %w", db.Translate(err))
	}
	return u, nil
}

// CreateUser inserts rec and returns the stored user.
func (r *Repository) CreateUser(ctx context.Context, rec record) (User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`INSERT INTO users (email, name, password_hash, role, is_active, club_id) VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+userColumns,
		rec.Email, rec.Name, rec.PasswordHash, string(rec.Role), rec.IsActive, rec.ClubID))
	if err != nil {
		return User{}, fmt.Errorf("users: create: %w", db.Translate(err))
	}
	return u, nil
}

// UpdateUser writes rec. An empty PasswordHash keeps the stored hash.
func (r *Repository) UpdateUser(ctx context.Context, rec record) (User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`UPDATE users SET name = $2, role = $3, is_active = $4, club_id = $5,
		 password_hash = COALESCE(NULLIF($6, ''), password_hash), updated_at = NOW()
		 WHERE id = $1 RETURNING `+userColumns,
		rec.ID, rec.Name, string(rec.Role), rec.IsActive, rec.ClubID, rec.PasswordHash))
	if err != nil {
		return User{}, fmt.Errorf("users: update: %w", db.Translate(err))
	}
	return u, nil
}

// DeleteUser removes a user. Returns httpx.ErrNotFound when nothing was deleted.
func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("users: delete: %w", db.Translate(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("users: delete: %w", db.Translate(pgx.ErrNoRows))
	}
	return nil
}
