package ports

import (
	"context"
	"io"

	"github.com/dkotenko/docstore/internal/core/domain"
)

// FileUpload is one uploaded payload within an intake request.
type FileUpload struct {
	Filename string
	Data     io.Reader
}

// BatchIntakeRequest carries the metadata and payloads of a batch upload.
type BatchIntakeRequest struct {
	Name         string
	Description  string
	DocumentType domain.DocumentType
	OwnerID      string
	Files        []FileUpload
}

// SingleUploadRequest carries one batch-less document upload.
type SingleUploadRequest struct {
	Filename     string
	MimeType     string
	DocumentType domain.DocumentType
	OwnerID      string
	Data         io.Reader
}

// BatchIntake is the inbound contract for file intake.
type BatchIntake interface {
	CreateBatch(ctx context.Context, req BatchIntakeRequest) (*domain.Batch, error)
	UploadDocument(ctx context.Context, req SingleUploadRequest) (*domain.Document, error)
	// DeleteBatch removes a batch record together with its stored files.
	// Deleting a batch that is currently processing is rejected.
	DeleteBatch(ctx context.Context, batchID string) error
}

// BatchOrchestrator drives per-file processing and batch status transitions.
type BatchOrchestrator interface {
	ProcessBatch(ctx context.Context, batchID string) error
}

// VersionService manages the append-only version history of a document.
type VersionService interface {
	CreateVersion(ctx context.Context, documentID string, content, changeNote map[string]any, actor string) (*domain.DocumentVersion, error)
	GetVersion(ctx context.Context, documentID string, number int) (*domain.DocumentVersion, error)
	ListVersions(ctx context.Context, documentID string) ([]domain.DocumentVersion, error)
	CompareVersions(ctx context.Context, documentID string, v1, v2 int) (domain.VersionDiff, error)
}

// ExportService renders documents or whole batches into interchange formats.
type ExportService interface {
	ExportDocument(ctx context.Context, documentID, format string, version int) ([]byte, string, error)
	ExportBatch(ctx context.Context, batchID, format string) ([]byte, string, error)
}

// DashboardService aggregates processing activity for the dashboard.
type DashboardService interface {
	Stats(ctx context.Context) (domain.DashboardStats, error)
}

// TemplateService manages extraction field schemas.
type TemplateService interface {
	Create(ctx context.Context, tpl *domain.Template) (*domain.Template, error)
	Get(ctx context.Context, id string) (*domain.Template, error)
	List(ctx context.Context, limit, offset int) ([]domain.Template, int, error)
	Update(ctx context.Context, tpl *domain.Template) (*domain.Template, error)
	Delete(ctx context.Context, id string) error
}
