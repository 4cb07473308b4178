package ports

import (
	"context"
	"io"
	"time"

	"github.com/dkotenko/docstore/internal/core/domain"
)

// BatchRepository persists batch state. Counter increments run inside the
// database so concurrent file completions never lose updates.
type BatchRepository interface {
	Create(ctx context.Context, batch *domain.Batch) error
	GetByID(ctx context.Context, id string) (*domain.Batch, error)
	List(ctx context.Context, limit, offset int) ([]domain.Batch, int, error)
	// BeginProcessing flips pending -> processing atomically. A batch in any
	// other state yields domain.ErrInvalidState.
	BeginProcessing(ctx context.Context, id string, startedAt time.Time) error
	IncrementCounters(ctx context.Context, id string, processedDelta, failedDelta int) error
	Finalize(ctx context.Context, id string, status domain.BatchStatus, completedAt time.Time) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (map[domain.BatchStatus]int, error)
}

// DocumentRepository persists documents. The initial version is inserted in
// the same transaction as the document, so a document without version 1 is
// never observable.
type DocumentRepository interface {
	CreateWithInitialVersion(ctx context.Context, doc *domain.Document, initial *domain.DocumentVersion) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context, batchID string, limit, offset int) ([]domain.Document, int, error)
	ListByBatch(ctx context.Context, batchID string) ([]domain.Document, error)
	Delete(ctx context.Context, id string) error
	CountByType(ctx context.Context) (map[domain.DocumentType]int, error)
}

// VersionRepository persists the append-only version history. Append assigns
// the next contiguous version number and mirrors the text content onto the
// owning document row.
type VersionRepository interface {
	Append(ctx context.Context, version *domain.DocumentVersion) error
	Get(ctx context.Context, documentID string, number int) (*domain.DocumentVersion, error)
	ListByDocument(ctx context.Context, documentID string) ([]domain.DocumentVersion, error)
}

// TemplateRepository persists field-schema templates.
type TemplateRepository interface {
	Create(ctx context.Context, tpl *domain.Template) error
	GetByID(ctx context.Context, id string) (*domain.Template, error)
	List(ctx context.Context, limit, offset int) ([]domain.Template, int, error)
	Update(ctx context.Context, tpl *domain.Template) error
	Delete(ctx context.Context, id string) error
}

// ObjectStorage stores source files. Keys are slash-separated paths; batches
// place their files under a shared prefix.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Size(ctx context.Context, key string) (int64, error)
	List(ctx context.Context, prefix string) ([]string, error)
	RemoveAll(ctx context.Context, prefix string) error
}

// MessageQueue carries batch-submitted events from intake to the worker.
type MessageQueue interface {
	PublishBatchSubmitted(ctx context.Context, batchID string) error
	SubscribeBatchSubmitted(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor derives plain text from a stored file.
type TextExtractor interface {
	Extract(ctx context.Context, storagePath, mimeType string) (string, error)
}

// DocumentAnalyzer produces a structured analysis object for extracted text.
// The result is opaque to the pipeline and stored as-is.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, text string, docType domain.DocumentType) (map[string]any, error)
}
