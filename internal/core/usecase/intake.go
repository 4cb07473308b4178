package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dkotenko/docstore/internal/core/domain"
	"github.com/dkotenko/docstore/internal/core/ports"
)

type IntakeUseCase struct {
	batches   ports.BatchRepository
	storage   ports.ObjectStorage
	queue     ports.MessageQueue
	transform *TransformUseCase
}

func NewIntakeUseCase(
	batches ports.BatchRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	transform *TransformUseCase,
) *IntakeUseCase {
	return &IntakeUseCase{
		batches:   batches,
		storage:   storage,
		queue:     queue,
		transform: transform,
	}
}

// CreateBatch stores every uploaded file under a batch-specific prefix, then
// commits the batch record and publishes the batch-submitted event. File
// writes complete before the record exists so the batch never references
// missing files.
func (uc *IntakeUseCase) CreateBatch(ctx context.Context, req ports.BatchIntakeRequest) (*domain.Batch, error) {
	if len(req.Files) == 0 {
		return nil, domain.WrapError(domain.ErrValidation, "create batch", errors.New("no files supplied"))
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, domain.WrapError(domain.ErrValidation, "create batch", errors.New("batch name is required"))
	}
	if strings.TrimSpace(req.OwnerID) == "" {
		return nil, domain.WrapError(domain.ErrValidation, "create batch", errors.New("owner is required"))
	}

	id := uuid.NewString()
	storagePath := path.Join("batches", id)
	now := time.Now().UTC()

	for i, file := range req.Files {
		key := path.Join(storagePath, fmt.Sprintf("%03d_%s", i+1, sanitizeFilename(file.Filename)))
		if err := uc.storage.Save(ctx, key, file.Data); err != nil {
			return nil, fmt.Errorf("save batch file %q: %w", file.Filename, err)
		}
	}

	batch := &domain.Batch{
		ID:            id,
		Name:          req.Name,
		Description:   req.Description,
		DocumentType:  req.DocumentType,
		StoragePath:   storagePath,
		Status:        domain.BatchPending,
		DocumentCount: len(req.Files),
		OwnerID:       req.OwnerID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.batches.Create(ctx, batch); err != nil {
		return nil, fmt.Errorf("create batch record: %w", err)
	}

	if err := uc.queue.PublishBatchSubmitted(ctx, batch.ID); err != nil {
		return nil, fmt.Errorf("publish batch submitted event: %w", err)
	}
	return batch, nil
}

// UploadDocument handles a direct batch-less upload. The transform runs
// synchronously so the document and its first version appear together.
func (uc *IntakeUseCase) UploadDocument(ctx context.Context, req ports.SingleUploadRequest) (*domain.Document, error) {
	if req.Data == nil || strings.TrimSpace(req.Filename) == "" {
		return nil, domain.WrapError(domain.ErrValidation, "upload document", errors.New("file payload is required"))
	}
	if strings.TrimSpace(req.OwnerID) == "" {
		return nil, domain.WrapError(domain.ErrValidation, "upload document", errors.New("owner is required"))
	}

	id := uuid.NewString()
	key := path.Join("documents", fmt.Sprintf("%s_%s", id, sanitizeFilename(req.Filename)))
	if err := uc.storage.Save(ctx, key, req.Data); err != nil {
		return nil, fmt.Errorf("save uploaded file: %w", err)
	}

	return uc.transform.TransformFile(ctx, TransformInput{
		DocumentID:   id,
		StoragePath:  key,
		Title:        req.Filename,
		MimeType:     req.MimeType,
		DocumentType: req.DocumentType,
		OwnerID:      req.OwnerID,
	})
}

// DeleteBatch removes the batch record and its stored files. Documents of the
// batch cascade at the database level. A processing batch cannot be deleted.
func (uc *IntakeUseCase) DeleteBatch(ctx context.Context, batchID string) error {
	batch, err := uc.batches.GetByID(ctx, batchID)
	if err != nil {
		return err
	}
	if batch.Status == domain.BatchProcessing {
		return domain.WrapError(domain.ErrInvalidState, "delete batch", fmt.Errorf("batch %s is processing", batchID))
	}

	if err := uc.batches.Delete(ctx, batchID); err != nil {
		return err
	}
	if err := uc.storage.RemoveAll(ctx, batch.StoragePath); err != nil {
		// The record is already gone; orphaned files are tolerable.
		slog.Warn("batch storage cleanup failed", "batch_id", batchID, "error", err)
	}
	return nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		return "document.bin"
	}
	return base
}
