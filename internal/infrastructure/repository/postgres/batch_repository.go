package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dkotenko/docstore/internal/core/domain"
)

type BatchRepository struct {
	db *sql.DB
}

func NewBatchRepository(db *sql.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

const batchColumns = `id, name, description, document_type, storage_path, status,
document_count, processed_count, failed_count, owner_id, created_at, updated_at, started_at, completed_at`

func (r *BatchRepository) Create(ctx context.Context, batch *domain.Batch) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO batches (
	id, name, description, document_type, storage_path, status,
	document_count, processed_count, failed_count, owner_id, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
`,
		batch.ID, batch.Name, batch.Description, string(batch.DocumentType), batch.StoragePath,
		string(batch.Status), batch.DocumentCount, batch.ProcessedCount, batch.FailedCount,
		batch.OwnerID, batch.CreatedAt, batch.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

func (r *BatchRepository) GetByID(ctx context.Context, id string) (*domain.Batch, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+batchColumns+` FROM batches WHERE id = $1`, id)
	batch, err := scanBatch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get batch", fmt.Errorf("batch %s", id))
		}
		return nil, fmt.Errorf("scan batch: %w", err)
	}
	return batch, nil
}

func (r *BatchRepository) List(ctx context.Context, limit, offset int) ([]domain.Batch, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM batches`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count batches: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT `+batchColumns+`
FROM batches
ORDER BY created_at DESC
LIMIT $1 OFFSET $2
`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	var batches []domain.Batch
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan batch row: %w", err)
		}
		batches = append(batches, *batch)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate batches: %w", err)
	}
	return batches, total, nil
}

// BeginProcessing is the pending -> processing compare-and-swap. Duplicate
// deliveries of the same batch land on a non-pending row and are rejected.
func (r *BatchRepository) BeginProcessing(ctx context.Context, id string, startedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE batches
SET status = $2, started_at = $3, updated_at = $3
WHERE id = $1 AND status = $4
`, id, string(domain.BatchProcessing), startedAt.UTC(), string(domain.BatchPending))
	if err != nil {
		return fmt.Errorf("update batch status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrInvalidState, "begin processing", fmt.Errorf("batch %s is not pending", id))
	}
	return nil
}

func (r *BatchRepository) IncrementCounters(ctx context.Context, id string, processedDelta, failedDelta int) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE batches
SET processed_count = processed_count + $2,
	failed_count = failed_count + $3,
	updated_at = $4
WHERE id = $1
`, id, processedDelta, failedDelta, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("increment batch counters: %w", err)
	}
	return nil
}

func (r *BatchRepository) Finalize(ctx context.Context, id string, status domain.BatchStatus, completedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE batches
SET status = $2, completed_at = $3, updated_at = $3
WHERE id = $1 AND status = $4
`, id, string(status), completedAt.UTC(), string(domain.BatchProcessing))
	if err != nil {
		return fmt.Errorf("finalize batch: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrInvalidState, "finalize batch", fmt.Errorf("batch %s is not processing", id))
	}
	return nil
}

func (r *BatchRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM batches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete batch: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "delete batch", fmt.Errorf("batch %s", id))
	}
	return nil
}

func (r *BatchRepository) CountByStatus(ctx context.Context) (map[domain.BatchStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM batches GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count batches by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.BatchStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[domain.BatchStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}
	return counts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBatch(row rowScanner) (*domain.Batch, error) {
	var batch domain.Batch
	var description sql.NullString
	var docType, status string
	var startedAt, completedAt sql.NullTime

	err := row.Scan(
		&batch.ID, &batch.Name, &description, &docType, &batch.StoragePath, &status,
		&batch.DocumentCount, &batch.ProcessedCount, &batch.FailedCount, &batch.OwnerID,
		&batch.CreatedAt, &batch.UpdatedAt, &startedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}

	batch.Description = description.String
	batch.DocumentType = domain.DocumentType(docType)
	batch.Status = domain.BatchStatus(status)
	if startedAt.Valid {
		t := startedAt.Time
		batch.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		batch.CompletedAt = &t
	}
	return &batch, nil
}
