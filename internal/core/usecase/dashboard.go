package usecase

import (
	"context"
	"fmt"

	"github.com/dkotenko/docstore/internal/core/domain"
	"github.com/dkotenko/docstore/internal/core/ports"
)

type DashboardUseCase struct {
	batches   ports.BatchRepository
	documents ports.DocumentRepository
}

func NewDashboardUseCase(batches ports.BatchRepository, documents ports.DocumentRepository) *DashboardUseCase {
	return &DashboardUseCase{batches: batches, documents: documents}
}

func (uc *DashboardUseCase) Stats(ctx context.Context) (domain.DashboardStats, error) {
	byStatus, err := uc.batches.CountByStatus(ctx)
	if err != nil {
		return domain.DashboardStats{}, fmt.Errorf("count batches: %w", err)
	}
	byType, err := uc.documents.CountByType(ctx)
	if err != nil {
		return domain.DashboardStats{}, fmt.Errorf("count documents: %w", err)
	}

	stats := domain.DashboardStats{
		BatchesByStatus: byStatus,
		DocumentsByType: byType,
	}
	for _, n := range byStatus {
		stats.TotalBatches += n
	}
	for _, n := range byType {
		stats.TotalDocuments += n
	}
	return stats, nil
}
