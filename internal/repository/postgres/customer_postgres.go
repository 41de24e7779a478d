package postgres

import (
	"context"
	"database/sql"

	"backoffice/internal/model"
	"backoffice/internal/repository"
)

// CustomerPostgres is a PostgreSQL implementation of repository.CustomerRepository.
type CustomerPostgres struct {
	db *sql.DB
}

func NewCustomerPostgres(db *sql.DB) *CustomerPostgres {
	return &CustomerPostgres{db: db}
}

var _ repository.CustomerRepository = (*CustomerPostgres)(nil)

const customerColumns = `id, name, email, phone, status, joined_at, last_login_at,
	(SELECT COUNT(*) FROM orders o WHERE o.customer_id = customers.id),
	avatar_key, created_at, updated_at`

func scanCustomer(s interface{ Scan(...any) error }) (*model.Customer, error) {
	var (
		c    model.Customer
		last sql.NullTime
	)
	if err := s.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Status, &c.Joined, &last,
		&c.OrderCount, &c.AvatarKey, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if last.Valid {
		c.LastLoginAt = &last.Time
	}
	return &c, nil
}

func (r *CustomerPostgres) Create(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	const q = `
		INSERT INTO customers (id, name, email, phone, status, joined_at, last_login_at, avatar_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + customerColumns
	out, err := scanCustomer(r.db.QueryRowContext(ctx, q,
		c.ID, c.Name, c.Email, c.Phone, c.Status, c.Joined, c.LastLoginAt, c.AvatarKey, c.CreatedAt, c.UpdatedAt))
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (r *CustomerPostgres) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	return scanCustomer(r.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
}

func (r *CustomerPostgres) List(ctx context.Context, f repository.CustomerFilter, pq repository.PageQuery) (*repository.PageResult[model.Customer], error) {
	w := &where{}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.Query != "" {
		w.add("(name ILIKE ? OR email ILIKE ?)", contains(f.Query))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, err
	}

	suffix, args := w.page(pq)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+customerColumns+` FROM customers`+w.String()+` ORDER BY joined_at DESC, id`+suffix, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Customer]{Items: items, Total: total}, nil
}

func (r *CustomerPostgres) Update(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	const q = `
		UPDATE customers SET name = $2, email = $3, phone = $4, status = $5, joined_at = $6, avatar_key = $7, updated_at = $8
		WHERE id = $1
		RETURNING ` + customerColumns
	out, err := scanCustomer(r.db.QueryRowContext(ctx, q,
		c.ID, c.Name, c.Email, c.Phone, c.Status, c.Joined, c.AvatarKey, c.UpdatedAt))
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

// Delete removes the customer; orders.customer_id is cleared by the foreign key.
func (r *CustomerPostgres) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.db, `DELETE FROM customers WHERE id = $1`, id)
}

func (r *CustomerPostgres) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM customers GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{
		model.CustomerActive:   0,
		model.CustomerInactive: 0,
		model.CustomerBanned:   0,
	}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}
