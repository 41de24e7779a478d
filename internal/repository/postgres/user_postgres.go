package postgres

import (
	"context"
	"database/sql"
	"time"

	"backoffice/internal/model"
	"backoffice/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

const userSelect = `
	SELECT u.id, u.name, u.email, u.phone, u.image_key, u.status, u.role_id, r.name, u.password_hash, u.last_login_at, u.created_at, u.updated_at
	FROM users u
	JOIN roles r ON r.id = u.role_id`

func scanUser(s interface{ Scan(...any) error }) (*model.User, error) {
	var (
		u    model.User
		last sql.NullTime
	)
	if err := s.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.ImageKey, &u.Status, &u.RoleID, &u.RoleName,
		&u.PasswordHash, &last, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if last.Valid {
		u.LastLoginAt = &last.Time
	}
	return &u, nil
}

// Create inserts the user and reads it back with its role name.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		INSERT INTO users (id, name, email, phone, image_key, status, role_id, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, q,
		u.ID, u.Name, u.Email, u.Phone, u.ImageKey, u.Status, u.RoleID, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return r.FindByID(ctx, u.ID)
}

func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, userSelect+` WHERE u.id = $1`, id))
}

func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, userSelect+` WHERE lower(u.email) = lower($1)`, email))
}

func (r *UserPostgres) List(ctx context.Context, f repository.UserFilter, pq repository.PageQuery) (*repository.PageResult[model.User], error) {
	w := &where{}
	if f.Status != "" {
		w.add("u.status = ?", f.Status)
	}
	if f.Query != "" {
		w.add("u.name ILIKE ?", contains(f.Query))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users u`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, err
	}

	suffix, args := w.page(pq)
	rows, err := r.db.QueryContext(ctx, userSelect+w.String()+` ORDER BY u.created_at DESC, u.id`+suffix, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.User]{Items: items, Total: total}, nil
}

func (r *UserPostgres) Update(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		UPDATE users SET name = $2, email = $3, phone = $4, image_key = $5, status = $6, role_id = $7, password_hash = $8, updated_at = $9
		WHERE id = $1`
	err := execOne(ctx, r.db, q,
		u.ID, u.Name, u.Email, u.Phone, u.ImageKey, u.Status, u.RoleID, u.PasswordHash, u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, u.ID)
}

func (r *UserPostgres) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.db, `DELETE FROM users WHERE id = $1`, id)
}

func (r *UserPostgres) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func (r *UserPostgres) CountByRole(ctx context.Context, roleID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role_id = $1`, roleID).Scan(&n)
	return n, err
}

func (r *UserPostgres) TouchLogin(ctx context.Context, id string, at time.Time) error {
	return execOne(ctx, r.db, `UPDATE users SET last_login_at = $2 WHERE id = $1`, id, at)
}
