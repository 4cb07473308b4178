package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dkotenko/docstore/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, title, mime_type, document_type, content, storage_path, owner_id, batch_id, created_at, updated_at`

// CreateWithInitialVersion inserts the document and its version 1 in one
// transaction. Readers can never observe a document without its initial
// version.
func (r *DocumentRepository) CreateWithInitialVersion(ctx context.Context, doc *domain.Document, initial *domain.DocumentVersion) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
INSERT INTO documents (
	id, title, mime_type, document_type, content, storage_path, owner_id, batch_id, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,NULLIF($8,''),$9,$10)
`,
		doc.ID, doc.Title, doc.MimeType, string(doc.DocumentType), nullIfEmpty(doc.Content),
		doc.StoragePath, doc.OwnerID, doc.BatchID, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	initial.VersionNumber = 1
	if err := insertVersion(ctx, tx, initial); err != nil {
		return fmt.Errorf("insert initial version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get document", fmt.Errorf("document %s", id))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	return doc, nil
}

func (r *DocumentRepository) List(ctx context.Context, batchID string, limit, offset int) ([]domain.Document, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE ($1 = '' OR batch_id = $1)`, batchID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE ($1 = '' OR batch_id = $1)
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`, batchID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	docs, err := collectDocuments(rows)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

func (r *DocumentRepository) ListByBatch(ctx context.Context, batchID string) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE batch_id = $1
ORDER BY created_at ASC
`, batchID)
	if err != nil {
		return nil, fmt.Errorf("query batch documents: %w", err)
	}
	defer rows.Close()

	return collectDocuments(rows)
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "delete document", fmt.Errorf("document %s", id))
	}
	return nil
}

func (r *DocumentRepository) CountByType(ctx context.Context) (map[domain.DocumentType]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT document_type, COUNT(*) FROM documents GROUP BY document_type`)
	if err != nil {
		return nil, fmt.Errorf("count documents by type: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.DocumentType]int)
	for rows.Next() {
		var docType string
		var n int
		if err := rows.Scan(&docType, &n); err != nil {
			return nil, fmt.Errorf("scan type count: %w", err)
		}
		counts[domain.DocumentType(docType)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate type counts: %w", err)
	}
	return counts, nil
}

func collectDocuments(rows *sql.Rows) ([]domain.Document, error) {
	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var docType string
	var content, batchID sql.NullString

	err := row.Scan(
		&doc.ID, &doc.Title, &doc.MimeType, &docType, &content, &doc.StoragePath,
		&doc.OwnerID, &batchID, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	doc.DocumentType = domain.DocumentType(docType)
	doc.Content = content.String
	doc.BatchID = batchID.String
	return &doc, nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func marshalJSONField(m map[string]any) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}
