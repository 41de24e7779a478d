package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"backoffice/internal/model"
	"backoffice/internal/repository"
)

// ContentPostgres is a PostgreSQL implementation of repository.ContentRepository.
type ContentPostgres struct {
	db *sql.DB
}

func NewContentPostgres(db *sql.DB) *ContentPostgres {
	return &ContentPostgres{db: db}
}

var _ repository.ContentRepository = (*ContentPostgres)(nil)

const contentColumns = `id, kind, position, data, image_key, created_at, updated_at`

func scanContent(s interface{ Scan(...any) error }) (*model.ContentBlock, error) {
	var (
		b    model.ContentBlock
		data []byte
	)
	if err := s.Scan(&b.ID, &b.Kind, &b.Position, &data, &b.ImageKey, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.Data = data
	return &b, nil
}

// Create appends the block after the last position of its kind.
func (r *ContentPostgres) Create(ctx context.Context, b *model.ContentBlock) (*model.ContentBlock, error) {
	const q = `
		INSERT INTO content_blocks (id, kind, position, data, image_key, created_at, updated_at)
		VALUES ($1, $2, (SELECT COALESCE(MAX(position) + 1, 0) FROM content_blocks WHERE kind = $2), $3::jsonb, $4, $5, $6)
		RETURNING ` + contentColumns
	out, err := scanContent(r.db.QueryRowContext(ctx, q,
		b.ID, b.Kind, string(b.Data), b.ImageKey, b.CreatedAt, b.UpdatedAt))
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (r *ContentPostgres) FindByID(ctx context.Context, kind, id string) (*model.ContentBlock, error) {
	return scanContent(r.db.QueryRowContext(ctx,
		`SELECT `+contentColumns+` FROM content_blocks WHERE kind = $1 AND id = $2`, kind, id))
}

func (r *ContentPostgres) List(ctx context.Context, kind string) ([]model.ContentBlock, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+contentColumns+` FROM content_blocks WHERE kind = $1 ORDER BY position, created_at`, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.ContentBlock, 0)
	for rows.Next() {
		b, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *ContentPostgres) Count(ctx context.Context, kind string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM content_blocks WHERE kind = $1`, kind).Scan(&n)
	return n, err
}

func (r *ContentPostgres) CountByField(ctx context.Context, kind, field, value string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM content_blocks WHERE kind = $1 AND data->>$2 = $3`, kind, field, value).Scan(&n)
	return n, err
}

func (r *ContentPostgres) Update(ctx context.Context, b *model.ContentBlock) (*model.ContentBlock, error) {
	const q = `
		UPDATE content_blocks SET data = $3::jsonb, image_key = $4, updated_at = $5
		WHERE kind = $1 AND id = $2
		RETURNING ` + contentColumns
	out, err := scanContent(r.db.QueryRowContext(ctx, q, b.Kind, b.ID, string(b.Data), b.ImageKey, b.UpdatedAt))
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (r *ContentPostgres) Delete(ctx context.Context, kind, id string) error {
	return execOne(ctx, r.db, `DELETE FROM content_blocks WHERE kind = $1 AND id = $2`, kind, id)
}

// Reorder runs in one transaction; an id outside kind aborts it with sql.ErrNoRows.
func (r *ContentPostgres) Reorder(ctx context.Context, kind string, ids []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	for i, id := range ids {
		err := execOne(ctx, tx,
			`UPDATE content_blocks SET position = $3, updated_at = $4 WHERE kind = $1 AND id = $2`, kind, id, i, now)
		if err != nil {
			return fmt.Errorf("reorder %s: %w", id, err)
		}
	}
	return tx.Commit()
}
