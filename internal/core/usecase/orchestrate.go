package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dkotenko/docstore/internal/core/domain"
	"github.com/dkotenko/docstore/internal/core/ports"
)

type OrchestrateBatchUseCase struct {
	batches     ports.BatchRepository
	storage     ports.ObjectStorage
	transform   *TransformUseCase
	parallelism int

	fileObserver func(duration time.Duration, err error)
}

// SetFileObserver installs a callback invoked after every per-file transform.
// The worker uses it to record processing metrics.
func (uc *OrchestrateBatchUseCase) SetFileObserver(observer func(duration time.Duration, err error)) {
	uc.fileObserver = observer
}

func NewOrchestrateBatchUseCase(
	batches ports.BatchRepository,
	storage ports.ObjectStorage,
	transform *TransformUseCase,
	parallelism int,
) *OrchestrateBatchUseCase {
	if parallelism <= 0 {
		parallelism = 4
	}
	return &OrchestrateBatchUseCase{
		batches:     batches,
		storage:     storage,
		transform:   transform,
		parallelism: parallelism,
	}
}

// ProcessBatch walks every file of a batch through the transform. One bad
// file must not sink the batch: per-file failures bump failed_count and the
// loop continues. Only faults outside the loop flip the batch to failed.
func (uc *OrchestrateBatchUseCase) ProcessBatch(ctx context.Context, batchID string) error {
	batch, err := uc.batches.GetByID(ctx, batchID)
	if err != nil {
		return fmt.Errorf("fetch batch: %w", err)
	}
	if batch.Status != domain.BatchPending {
		return domain.WrapError(domain.ErrInvalidState, "process batch",
			fmt.Errorf("batch %s is %s, want %s", batchID, batch.Status, domain.BatchPending))
	}
	if err := uc.batches.BeginProcessing(ctx, batchID, time.Now().UTC()); err != nil {
		return fmt.Errorf("begin processing: %w", err)
	}

	files, err := uc.storage.List(ctx, batch.StoragePath)
	if err != nil {
		return uc.fail(ctx, batchID, domain.WrapError(domain.ErrOrchestration, "enumerate batch files", err))
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(uc.parallelism)
	for _, file := range files {
		group.Go(func() error {
			uc.processFile(groupCtx, batch, file)
			return nil
		})
	}
	// per-file errors never escape the loop, so Wait only observes ctx faults
	if err := group.Wait(); err != nil {
		return uc.fail(ctx, batchID, domain.WrapError(domain.ErrOrchestration, "process batch files", err))
	}

	return uc.finalize(ctx, batchID)
}

func (uc *OrchestrateBatchUseCase) processFile(ctx context.Context, batch *domain.Batch, file string) {
	start := time.Now()
	_, err := uc.transform.TransformFile(ctx, TransformInput{
		StoragePath:  file,
		Title:        originalTitle(file),
		DocumentType: batch.DocumentType,
		OwnerID:      batch.OwnerID,
		BatchID:      batch.ID,
	})
	if uc.fileObserver != nil {
		uc.fileObserver(time.Since(start), err)
	}

	processed, failed := 1, 0
	if err != nil {
		processed, failed = 0, 1
		slog.Error("batch_file_failed", "batch_id", batch.ID, "file", file, "error", err)
	}
	if incErr := uc.batches.IncrementCounters(ctx, batch.ID, processed, failed); incErr != nil {
		slog.Error("batch_counter_update_failed", "batch_id", batch.ID, "file", file, "error", incErr)
	}
}

func (uc *OrchestrateBatchUseCase) finalize(ctx context.Context, batchID string) error {
	batch, err := uc.batches.GetByID(ctx, batchID)
	if err != nil {
		return fmt.Errorf("reload batch: %w", err)
	}
	if !batch.Accounted() {
		return uc.fail(ctx, batchID, domain.WrapError(domain.ErrOrchestration, "finalize batch",
			fmt.Errorf("%d of %d files unaccounted", batch.DocumentCount-batch.ProcessedCount-batch.FailedCount, batch.DocumentCount)))
	}
	if err := uc.batches.Finalize(ctx, batchID, domain.BatchCompleted, time.Now().UTC()); err != nil {
		return fmt.Errorf("finalize batch: %w", err)
	}
	slog.Info("batch_completed",
		"batch_id", batchID,
		"processed", batch.ProcessedCount,
		"failed", batch.FailedCount,
		"degraded", batch.Degraded(),
	)
	return nil
}

func (uc *OrchestrateBatchUseCase) fail(ctx context.Context, batchID string, cause error) error {
	slog.Error("batch_failed", "batch_id", batchID, "error", cause)
	if err := uc.batches.Finalize(ctx, batchID, domain.BatchFailed, time.Now().UTC()); err != nil {
		return errors.Join(cause, fmt.Errorf("mark batch failed: %w", err))
	}
	return cause
}

// originalTitle recovers the uploaded filename from the collision-avoidance
// prefix that intake added.
func originalTitle(storagePath string) string {
	base := path.Base(storagePath)
	if len(base) > 4 && base[3] == '_' {
		return base[4:]
	}
	return base
}
