package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dkotenko/docstore/internal/core/domain"
	"github.com/dkotenko/docstore/internal/core/ports"
)

type VersionUseCase struct {
	documents ports.DocumentRepository
	versions  ports.VersionRepository
}

func NewVersionUseCase(documents ports.DocumentRepository, versions ports.VersionRepository) *VersionUseCase {
	return &VersionUseCase{documents: documents, versions: versions}
}

// CreateVersion appends an immutable snapshot with the next contiguous
// version number. The number is assigned inside the repository transaction,
// so concurrent creators cannot produce gaps or duplicates.
func (uc *VersionUseCase) CreateVersion(
	ctx context.Context,
	documentID string,
	content, changeNote map[string]any,
	actor string,
) (*domain.DocumentVersion, error) {
	if len(content) == 0 {
		return nil, domain.WrapError(domain.ErrValidation, "create version", errors.New("content is required"))
	}

	version := &domain.DocumentVersion{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		Content:    content,
		ChangeNote: changeNote,
		CreatedBy:  actor,
		CreatedAt:  time.Now().UTC(),
	}
	if err := uc.versions.Append(ctx, version); err != nil {
		return nil, fmt.Errorf("append version: %w", err)
	}
	return version, nil
}

func (uc *VersionUseCase) GetVersion(ctx context.Context, documentID string, number int) (*domain.DocumentVersion, error) {
	version, err := uc.versions.Get(ctx, documentID, number)
	if err != nil {
		return nil, fmt.Errorf("fetch version %d: %w", number, err)
	}
	return version, nil
}

func (uc *VersionUseCase) ListVersions(ctx context.Context, documentID string) ([]domain.DocumentVersion, error) {
	versions, err := uc.versions.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	return versions, nil
}

func (uc *VersionUseCase) CompareVersions(ctx context.Context, documentID string, v1, v2 int) (domain.VersionDiff, error) {
	first, err := uc.versions.Get(ctx, documentID, v1)
	if err != nil {
		return domain.VersionDiff{}, fmt.Errorf("fetch version %d: %w", v1, err)
	}
	second, err := uc.versions.Get(ctx, documentID, v2)
	if err != nil {
		return domain.VersionDiff{}, fmt.Errorf("fetch version %d: %w", v2, err)
	}
	return domain.CompareVersions(first, second), nil
}
