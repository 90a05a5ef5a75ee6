package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/srgjo27/seat_animation/internal/adapter/repository/jsondoc"
	"github.com/srgjo27/seat_animation/internal/core/domain"
)

const DefaultTable = "documents"

// DocumentRepository keeps every collection in one JSONB table keyed by
// (collection, id).
type DocumentRepository struct {
	db    *sql.DB
	table string
}

func NewDocumentRepository(db *sql.DB, table string) *DocumentRepository {
	if table == "" {
		table = DefaultTable
	}

	return &DocumentRepository{db: db, table: pq.QuoteIdentifier(table)}
}

func (r *DocumentRepository) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		fields JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (collection, id)
	)
	`, r.table)

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}

	return nil
}

func (r *DocumentRepository) Set(ctx context.Context, collection, id string, fields domain.Fields) error {
	raw, err := jsondoc.Encode(fields)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
	INSERT INTO %s (collection, id, fields)
	VALUES ($1, $2, $3)
	ON CONFLICT (collection, id)
	DO UPDATE SET fields = EXCLUDED.fields, updated_at = NOW()
	`, r.table)

	if _, err := r.db.ExecContext(ctx, query, collection, id, raw); err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", collection, id, err)
	}

	return nil
}

func (r *DocumentRepository) Get(ctx context.Context, collection, id string) (domain.Document, bool, error) {
	query := fmt.Sprintf(`SELECT fields FROM %s WHERE collection = $1 AND id = $2`, r.table)

	var raw []byte
	err := r.db.QueryRowContext(ctx, query, collection, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Document{}, false, nil
		}

		return domain.Document{}, false, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}

	fields, err := jsondoc.Decode(raw)
	if err != nil {
		return domain.Document{}, false, fmt.Errorf("%s/%s: %w", collection, id, err)
	}

	return domain.Document{ID: id, Fields: fields}, true, nil
}

func (r *DocumentRepository) List(ctx context.Context, collection string) ([]domain.Document, error) {
	query := fmt.Sprintf(`SELECT id, fields FROM %s WHERE collection = $1 ORDER BY id`, r.table)

	rows, err := r.db.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}

	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}

		fields, err := jsondoc.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("%s/%s: %w", collection, id, err)
		}

		docs = append(docs, domain.Document{ID: id, Fields: fields})
	}

	return docs, rows.Err()
}

// Update merges top-level keys with the JSONB concatenation operator and
// creates the document when it does not exist yet.
func (r *DocumentRepository) Update(ctx context.Context, collection, id string, partial domain.Fields) error {
	raw, err := jsondoc.Encode(partial)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
	INSERT INTO %[1]s (collection, id, fields)
	VALUES ($1, $2, $3)
	ON CONFLICT (collection, id)
	DO UPDATE SET fields = %[1]s.fields || EXCLUDED.fields, updated_at = NOW()
	`, r.table)

	if _, err := r.db.ExecContext(ctx, query, collection, id, raw); err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}

	return nil
}

func (r *DocumentRepository) Delete(ctx context.Context, collection, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE collection = $1 AND id = $2`, r.table)

	if _, err := r.db.ExecContext(ctx, query, collection, id); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}

	return nil
}

func (r *DocumentRepository) Add(ctx context.Context, collection string, fields domain.Fields) (string, error) {
	id := uuid.NewString()
	if err := r.Set(ctx, collection, id, fields); err != nil {
		return "", err
	}

	return id, nil
}
