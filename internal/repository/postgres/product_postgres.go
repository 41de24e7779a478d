package postgres

import (
	"context"
	"database/sql"

	"backoffice/internal/model"
	"backoffice/internal/repository"
)

// ProductPostgres is a PostgreSQL implementation of repository.ProductRepository.
// Category names are joined in; Status is derived from stock on scan.
type ProductPostgres struct {
	db *sql.DB
}

func NewProductPostgres(db *sql.DB) *ProductPostgres {
	return &ProductPostgres{db: db}
}

var _ repository.ProductRepository = (*ProductPostgres)(nil)

const productSelect = `
	SELECT p.id, p.name, p.category_id, COALESCE(c.name, ''), p.price_cents, p.stock, p.image_key, p.created_at, p.updated_at
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id`

const productReturning = `
	RETURNING id, name, category_id,
		COALESCE((SELECT name FROM categories WHERE categories.id = products.category_id), ''),
		price_cents, stock, image_key, created_at, updated_at`

func scanProduct(s interface{ Scan(...any) error }) (*model.Product, error) {
	var (
		p   model.Product
		cat sql.NullString
	)
	if err := s.Scan(&p.ID, &p.Name, &cat, &p.CategoryName, &p.PriceCents, &p.Stock, &p.ImageKey, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.CategoryID = stringPtr(cat)
	if p.CategoryID == nil {
		p.CategoryName = model.Uncategorized
	}
	p.Status = model.StockStatus(p.Stock)
	return &p, nil
}

func (r *ProductPostgres) Create(ctx context.Context, p *model.Product) (*model.Product, error) {
	const q = `
		INSERT INTO products (id, name, category_id, price_cents, stock, image_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)` + productReturning
	out, err := scanProduct(r.db.QueryRowContext(ctx, q,
		p.ID, p.Name, nullString(p.CategoryID), p.PriceCents, p.Stock, p.ImageKey, p.CreatedAt, p.UpdatedAt))
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (r *ProductPostgres) FindByID(ctx context.Context, id string) (*model.Product, error) {
	return scanProduct(r.db.QueryRowContext(ctx, productSelect+` WHERE p.id = $1`, id))
}

func productWhere(f repository.ProductFilter) *where {
	w := &where{}
	switch f.Status {
	case model.StatusInStock:
		w.clauses = append(w.clauses, "p.stock > 0")
	case model.StatusOutOfStock:
		w.clauses = append(w.clauses, "p.stock <= 0")
	}
	if f.Query != "" {
		w.add(`p.name ILIKE ?`, contains(f.Query))
	}
	if f.CategoryID != "" {
		w.add("p.category_id = ?", f.CategoryID)
	}
	return w
}

func (r *ProductPostgres) List(ctx context.Context, f repository.ProductFilter, pq repository.PageQuery) (*repository.PageResult[model.Product], error) {
	w := productWhere(f)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products p`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, err
	}

	suffix, args := w.page(pq)
	rows, err := r.db.QueryContext(ctx, productSelect+w.String()+` ORDER BY p.created_at DESC, p.id`+suffix, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Product]{Items: items, Total: total}, nil
}

func (r *ProductPostgres) Update(ctx context.Context, p *model.Product) (*model.Product, error) {
	const q = `
		UPDATE products SET name = $2, category_id = $3, price_cents = $4, stock = $5, image_key = $6, updated_at = $7
		WHERE id = $1` + productReturning
	out, err := scanProduct(r.db.QueryRowContext(ctx, q,
		p.ID, p.Name, nullString(p.CategoryID), p.PriceCents, p.Stock, p.ImageKey, p.UpdatedAt))
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (r *ProductPostgres) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.db, `DELETE FROM products WHERE id = $1`, id)
}

func (r *ProductPostgres) Stats(ctx context.Context) (*model.ProductStats, error) {
	const q = `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE stock > 0),
			COUNT(*) FILTER (WHERE stock <= 0),
			COALESCE(SUM(price_cents * stock), 0)
		FROM products`
	var s model.ProductStats
	if err := r.db.QueryRowContext(ctx, q).Scan(&s.Total, &s.InStock, &s.OutOfStock, &s.InventoryValueCents); err != nil {
		return nil, err
	}
	return &s, nil
}
