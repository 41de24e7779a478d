package postgres

import (
	"context"
	"database/sql"

	"backoffice/internal/model"
	"backoffice/internal/repository"
)

// OrderPostgres is a PostgreSQL implementation of repository.OrderRepository.
type OrderPostgres struct {
	db *sql.DB
}

func NewOrderPostgres(db *sql.DB) *OrderPostgres {
	return &OrderPostgres{db: db}
}

var _ repository.OrderRepository = (*OrderPostgres)(nil)

const orderColumns = `id, customer_id, customer, product, amount_cents, status, order_date, created_at, updated_at`

func scanOrder(s interface{ Scan(...any) error }) (*model.Order, error) {
	var (
		o    model.Order
		cust sql.NullString
	)
	if err := s.Scan(&o.ID, &cust, &o.Customer, &o.Product, &o.AmountCents, &o.Status, &o.Date, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.CustomerID = stringPtr(cust)
	return &o, nil
}

func scanOrders(rows *sql.Rows) ([]model.Order, error) {
	defer rows.Close()
	items := make([]model.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *o)
	}
	return items, rows.Err()
}

// dateWhere adds inclusive bounds on col; each bound applies on its own.
func dateWhere(w *where, col string, r repository.DateRange) {
	if r.From != nil {
		w.add(col+" >= ?", r.From.Format(model.DateLayout))
	}
	if r.To != nil {
		w.add(col+" <= ?", r.To.Format(model.DateLayout))
	}
}

func orderWhere(f repository.OrderFilter) *where {
	w := &where{}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.Customer != "" {
		w.add("customer ILIKE ?", contains(f.Customer))
	}
	if f.Product != "" {
		w.add("product ILIKE ?", contains(f.Product))
	}
	dateWhere(w, "order_date", f.Dates)
	return w
}

func (r *OrderPostgres) Create(ctx context.Context, o *model.Order) (*model.Order, error) {
	const q = `
		INSERT INTO orders (id, customer_id, customer, product, amount_cents, status, order_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + orderColumns
	out, err := scanOrder(r.db.QueryRowContext(ctx, q,
		o.ID, nullString(o.CustomerID), o.Customer, o.Product, o.AmountCents, o.Status,
		o.Date.Format(model.DateLayout), o.CreatedAt, o.UpdatedAt))
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (r *OrderPostgres) FindByID(ctx context.Context, id string) (*model.Order, error) {
	return scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
}

func (r *OrderPostgres) List(ctx context.Context, f repository.OrderFilter, pq repository.PageQuery) (*repository.PageResult[model.Order], error) {
	w := orderWhere(f)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, err
	}

	suffix, args := w.page(pq)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders`+w.String()+` ORDER BY order_date DESC, created_at DESC, id`+suffix, args...)
	if err != nil {
		return nil, err
	}
	items, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Order]{Items: items, Total: total}, nil
}

func (r *OrderPostgres) ListByCustomer(ctx context.Context, customerID string) ([]model.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE customer_id = $1 ORDER BY order_date DESC, id`, customerID)
	if err != nil {
		return nil, err
	}
	return scanOrders(rows)
}

func (r *OrderPostgres) Update(ctx context.Context, o *model.Order) (*model.Order, error) {
	const q = `
		UPDATE orders SET customer_id = $2, customer = $3, product = $4, amount_cents = $5, status = $6, order_date = $7, updated_at = $8
		WHERE id = $1
		RETURNING ` + orderColumns
	out, err := scanOrder(r.db.QueryRowContext(ctx, q,
		o.ID, nullString(o.CustomerID), o.Customer, o.Product, o.AmountCents, o.Status,
		o.Date.Format(model.DateLayout), o.UpdatedAt))
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (r *OrderPostgres) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.db, `DELETE FROM orders WHERE id = $1`, id)
}

func (r *OrderPostgres) Stats(ctx context.Context) (*model.OrderStats, error) {
	const q = `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = $1),
			COUNT(*) FILTER (WHERE status = $2),
			COUNT(*) FILTER (WHERE status = $3),
			COALESCE(SUM(amount_cents), 0)
		FROM orders`
	var s model.OrderStats
	err := r.db.QueryRowContext(ctx, q, model.OrderPending, model.OrderShipped, model.OrderDelivered).
		Scan(&s.Total, &s.Pending, &s.Shipped, &s.Delivered, &s.RevenueCents)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *OrderPostgres) SalesByDay(ctx context.Context, dr repository.DateRange) ([]model.DailySales, error) {
	w := &where{}
	dateWhere(w, "order_date", dr)
	rows, err := r.db.QueryContext(ctx, `
		SELECT to_char(order_date, 'YYYY-MM-DD'), COUNT(*), COALESCE(SUM(amount_cents), 0)
		FROM orders`+w.String()+`
		GROUP BY order_date
		ORDER BY order_date`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.DailySales, 0)
	for rows.Next() {
		var d model.DailySales
		if err := rows.Scan(&d.Date, &d.Orders, &d.AmountCents); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *OrderPostgres) TopProducts(ctx context.Context, dr repository.DateRange, limit int) ([]model.ProductSales, error) {
	w := &where{}
	dateWhere(w, "order_date", dr)
	suffix, args := w.page(repository.PageQuery{Limit: limit})
	rows, err := r.db.QueryContext(ctx, `
		SELECT product, COUNT(*)
		FROM orders`+w.String()+`
		GROUP BY product
		ORDER BY COUNT(*) DESC, product`+suffix, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.ProductSales, 0)
	for rows.Next() {
		var p model.ProductSales
		if err := rows.Scan(&p.Name, &p.Orders); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
