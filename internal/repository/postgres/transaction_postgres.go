package postgres

import (
	"context"
	"database/sql"

	"backoffice/internal/model"
	"backoffice/internal/repository"
)

// TransactionPostgres is a PostgreSQL implementation of repository.TransactionRepository.
type TransactionPostgres struct {
	db *sql.DB
}

func NewTransactionPostgres(db *sql.DB) *TransactionPostgres {
	return &TransactionPostgres{db: db}
}

var _ repository.TransactionRepository = (*TransactionPostgres)(nil)

const transactionColumns = `id, customer, amount_cents, payment_method, status, txn_date, created_at`

func scanTransaction(s interface{ Scan(...any) error }) (*model.Transaction, error) {
	var t model.Transaction
	if err := s.Scan(&t.ID, &t.Customer, &t.AmountCents, &t.PaymentMethod, &t.Status, &t.Date, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionPostgres) Create(ctx context.Context, t *model.Transaction) (*model.Transaction, error) {
	const q = `
		INSERT INTO transactions (id, customer, amount_cents, payment_method, status, txn_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + transactionColumns
	out, err := scanTransaction(r.db.QueryRowContext(ctx, q,
		t.ID, t.Customer, t.AmountCents, t.PaymentMethod, t.Status, t.Date.Format(model.DateLayout), t.CreatedAt))
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (r *TransactionPostgres) FindByID(ctx context.Context, id string) (*model.Transaction, error) {
	return scanTransaction(r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id))
}

func (r *TransactionPostgres) List(ctx context.Context, f repository.TransactionFilter, pq repository.PageQuery) (*repository.PageResult[model.Transaction], error) {
	w := &where{}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.Customer != "" {
		w.add("customer ILIKE ?", contains(f.Customer))
	}
	dateWhere(w, "txn_date", f.Dates)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, err
	}

	suffix, args := w.page(pq)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions`+w.String()+` ORDER BY txn_date DESC, created_at DESC, id`+suffix, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Transaction]{Items: items, Total: total}, nil
}

func (r *TransactionPostgres) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.db, `DELETE FROM transactions WHERE id = $1`, id)
}

func (r *TransactionPostgres) Stats(ctx context.Context) (*model.TransactionStats, error) {
	const q = `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = $1),
			COUNT(*) FILTER (WHERE status = $2),
			COUNT(*) FILTER (WHERE status = $3),
			COALESCE(SUM(amount_cents) FILTER (WHERE status = $1), 0)
		FROM transactions`
	var s model.TransactionStats
	err := r.db.QueryRowContext(ctx, q, model.TransactionCompleted, model.TransactionPending, model.TransactionFailed).
		Scan(&s.Total, &s.Completed, &s.Pending, &s.Failed, &s.CompletedCents)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
