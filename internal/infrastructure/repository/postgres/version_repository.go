package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dkotenko/docstore/internal/core/domain"
)

type VersionRepository struct {
	db *sql.DB
}

func NewVersionRepository(db *sql.DB) *VersionRepository {
	return &VersionRepository{db: db}
}

const versionColumns = `id, document_id, version_number, content, analysis, storage_path, change_note, created_by, created_at`

// Append assigns max(version_number)+1 inside the transaction, snapshots the
// document's storage path and mirrors the text content onto the document
// row. The owning document row is locked so concurrent appends serialize.
func (r *VersionRepository) Append(ctx context.Context, version *domain.DocumentVersion) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var storagePath string
	err = tx.QueryRowContext(ctx,
		`SELECT storage_path FROM documents WHERE id = $1 FOR UPDATE`, version.DocumentID,
	).Scan(&storagePath)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.WrapError(domain.ErrNotFound, "append version", fmt.Errorf("document %s", version.DocumentID))
		}
		return fmt.Errorf("lock document: %w", err)
	}
	version.StoragePath = storagePath

	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version_number), 0) + 1 FROM document_versions WHERE document_id = $1`,
		version.DocumentID,
	).Scan(&version.VersionNumber)
	if err != nil {
		return fmt.Errorf("next version number: %w", err)
	}

	if err := insertVersion(ctx, tx, version); err != nil {
		return fmt.Errorf("insert version: %w", err)
	}

	if text, ok := version.Content["text"].(string); ok {
		_, err = tx.ExecContext(ctx,
			`UPDATE documents SET content = $2, updated_at = $3 WHERE id = $1`,
			version.DocumentID, text, time.Now().UTC(),
		)
		if err != nil {
			return fmt.Errorf("mirror content onto document: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *VersionRepository) Get(ctx context.Context, documentID string, number int) (*domain.DocumentVersion, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+versionColumns+`
FROM document_versions
WHERE document_id = $1 AND version_number = $2
`, documentID, number)

	version, err := scanVersion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get version",
				fmt.Errorf("document %s version %d", documentID, number))
		}
		return nil, fmt.Errorf("scan version: %w", err)
	}
	return version, nil
}

func (r *VersionRepository) ListByDocument(ctx context.Context, documentID string) ([]domain.DocumentVersion, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+versionColumns+`
FROM document_versions
WHERE document_id = $1
ORDER BY version_number ASC
`, documentID)
	if err != nil {
		return nil, fmt.Errorf("query versions: %w", err)
	}
	defer rows.Close()

	var versions []domain.DocumentVersion
	for rows.Next() {
		version, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan version row: %w", err)
		}
		versions = append(versions, *version)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}
	return versions, nil
}

func insertVersion(ctx context.Context, tx *sql.Tx, version *domain.DocumentVersion) error {
	contentJSON, err := json.Marshal(version.Content)
	if err != nil {
		return fmt.Errorf("marshal content: %w", err)
	}
	analysisJSON, err := marshalJSONField(version.Analysis)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	changeNoteJSON, err := marshalJSONField(version.ChangeNote)
	if err != nil {
		return fmt.Errorf("marshal change note: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO document_versions (
	id, document_id, version_number, content, analysis, storage_path, change_note, created_by, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`,
		version.ID, version.DocumentID, version.VersionNumber, contentJSON, analysisJSON,
		version.StoragePath, changeNoteJSON, version.CreatedBy, version.CreatedAt,
	)
	return err
}

func scanVersion(row rowScanner) (*domain.DocumentVersion, error) {
	var version domain.DocumentVersion
	var contentRaw []byte
	var analysisRaw, changeNoteRaw []byte

	err := row.Scan(
		&version.ID, &version.DocumentID, &version.VersionNumber, &contentRaw, &analysisRaw,
		&version.StoragePath, &changeNoteRaw, &version.CreatedBy, &version.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(contentRaw, &version.Content); err != nil {
		return nil, fmt.Errorf("unmarshal content: %w", err)
	}
	if len(analysisRaw) > 0 {
		if err := json.Unmarshal(analysisRaw, &version.Analysis); err != nil {
			return nil, fmt.Errorf("unmarshal analysis: %w", err)
		}
	}
	if len(changeNoteRaw) > 0 {
		if err := json.Unmarshal(changeNoteRaw, &version.ChangeNote); err != nil {
			return nil, fmt.Errorf("unmarshal change note: %w", err)
		}
	}
	return &version, nil
}
