package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"backoffice/internal/model"
	"backoffice/internal/repository"
)

// RolePostgres is a PostgreSQL implementation of repository.RoleRepository.
// Permissions are stored as a JSONB array of permission ids.
type RolePostgres struct {
	db *sql.DB
}

func NewRolePostgres(db *sql.DB) *RolePostgres {
	return &RolePostgres{db: db}
}

var _ repository.RoleRepository = (*RolePostgres)(nil)

const roleColumns = `id, name, permissions, created_at, updated_at`

func scanRole(s interface{ Scan(...any) error }) (*model.Role, error) {
	var (
		r     model.Role
		perms []byte
	)
	if err := s.Scan(&r.ID, &r.Name, &perms, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.Permissions = []string{}
	if len(perms) > 0 {
		if err := json.Unmarshal(perms, &r.Permissions); err != nil {
			return nil, err
		}
	}
	return &r, nil
}

func encodePermissions(perms []string) (string, error) {
	if perms == nil {
		perms = []string{}
	}
	b, err := json.Marshal(perms)
	return string(b), err
}

func (r *RolePostgres) Create(ctx context.Context, role *model.Role) (*model.Role, error) {
	perms, err := encodePermissions(role.Permissions)
	if err != nil {
		return nil, err
	}
	const q = `
		INSERT INTO roles (id, name, permissions, created_at, updated_at)
		VALUES ($1, $2, $3::jsonb, $4, $5)
		RETURNING ` + roleColumns
	out, err := scanRole(r.db.QueryRowContext(ctx, q, role.ID, role.Name, perms, role.CreatedAt, role.UpdatedAt))
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (r *RolePostgres) FindByID(ctx context.Context, id string) (*model.Role, error) {
	return scanRole(r.db.QueryRowContext(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id))
}

func (r *RolePostgres) FindByName(ctx context.Context, name string) (*model.Role, error) {
	return scanRole(r.db.QueryRowContext(ctx, `SELECT `+roleColumns+` FROM roles WHERE lower(name) = lower($1)`, name))
}

func (r *RolePostgres) List(ctx context.Context) ([]model.Role, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY created_at, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Role, 0)
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *role)
	}
	return out, rows.Err()
}

func (r *RolePostgres) Update(ctx context.Context, role *model.Role) (*model.Role, error) {
	perms, err := encodePermissions(role.Permissions)
	if err != nil {
		return nil, err
	}
	const q = `
		UPDATE roles SET name = $2, permissions = $3::jsonb, updated_at = $4
		WHERE id = $1
		RETURNING ` + roleColumns
	out, err := scanRole(r.db.QueryRowContext(ctx, q, role.ID, role.Name, perms, role.UpdatedAt))
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

// Delete fails with repository.ErrReferenced while users hold the role.
func (r *RolePostgres) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.db, `DELETE FROM roles WHERE id = $1`, id)
}
