package postgres

import (
	"context"
	"database/sql"

	"backoffice/internal/model"
	"backoffice/internal/repository"
)

// CategoryPostgres is a PostgreSQL implementation of repository.CategoryRepository.
type CategoryPostgres struct {
	db *sql.DB
}

func NewCategoryPostgres(db *sql.DB) *CategoryPostgres {
	return &CategoryPostgres{db: db}
}

var _ repository.CategoryRepository = (*CategoryPostgres)(nil)

const categoryColumns = `id, name, description, feature, created_at, updated_at`

func scanCategory(s interface{ Scan(...any) error }) (*model.Category, error) {
	var c model.Category
	if err := s.Scan(&c.ID, &c.Name, &c.Description, &c.Feature, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryPostgres) Create(ctx context.Context, c *model.Category) (*model.Category, error) {
	const q = `
		INSERT INTO categories (id, name, description, feature, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + categoryColumns
	out, err := scanCategory(r.db.QueryRowContext(ctx, q,
		c.ID, c.Name, c.Description, c.Feature, c.CreatedAt, c.UpdatedAt))
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (r *CategoryPostgres) FindByID(ctx context.Context, id string) (*model.Category, error) {
	const q = `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	return scanCategory(r.db.QueryRowContext(ctx, q, id))
}

func (r *CategoryPostgres) FindByName(ctx context.Context, feature, name string) (*model.Category, error) {
	const q = `SELECT ` + categoryColumns + ` FROM categories WHERE feature = $1 AND lower(name) = lower($2)`
	return scanCategory(r.db.QueryRowContext(ctx, q, feature, name))
}

func (r *CategoryPostgres) List(ctx context.Context, feature string, pq repository.PageQuery) (*repository.PageResult[model.Category], error) {
	var w where
	if feature != "" {
		w.add("feature = ?", feature)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, err
	}

	suffix, args := w.page(pq)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories`+w.String()+` ORDER BY feature, name, id`+suffix, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Category]{Items: items, Total: total}, nil
}

func (r *CategoryPostgres) Update(ctx context.Context, c *model.Category) (*model.Category, error) {
	const q = `
		UPDATE categories SET name = $2, description = $3, feature = $4, updated_at = $5
		WHERE id = $1
		RETURNING ` + categoryColumns
	out, err := scanCategory(r.db.QueryRowContext(ctx, q, c.ID, c.Name, c.Description, c.Feature, c.UpdatedAt))
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

// Delete relies on products.category_id ON DELETE SET NULL to unassign products.
func (r *CategoryPostgres) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.db, `DELETE FROM categories WHERE id = $1`, id)
}

func (r *CategoryPostgres) CountProducts(ctx context.Context, id string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE category_id = $1`, id).Scan(&n)
	return n, err
}
