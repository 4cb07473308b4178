package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dkotenko/docstore/internal/core/domain"
	"github.com/dkotenko/docstore/internal/core/ports"
)

type TransformUseCase struct {
	documents      ports.DocumentRepository
	storage        ports.ObjectStorage
	extractor      ports.TextExtractor
	analyzer       ports.DocumentAnalyzer
	extractTimeout time.Duration
}

func NewTransformUseCase(
	documents ports.DocumentRepository,
	storage ports.ObjectStorage,
	extractor ports.TextExtractor,
	analyzer ports.DocumentAnalyzer,
	extractTimeout time.Duration,
) *TransformUseCase {
	if extractTimeout <= 0 {
		extractTimeout = 2 * time.Minute
	}
	return &TransformUseCase{
		documents:      documents,
		storage:        storage,
		extractor:      extractor,
		analyzer:       analyzer,
		extractTimeout: extractTimeout,
	}
}

// TransformInput identifies one stored file to turn into a document.
type TransformInput struct {
	DocumentID   string
	StoragePath  string
	Title        string
	MimeType     string
	DocumentType domain.DocumentType
	OwnerID      string
	BatchID      string
}

// TransformFile extracts text from a stored file, attaches a best-effort
// analysis object and creates the document together with version 1 in one
// transaction. Extraction failures surface as domain.ErrExtraction so the
// orchestrator can count them without aborting the batch.
func (uc *TransformUseCase) TransformFile(ctx context.Context, in TransformInput) (*domain.Document, error) {
	if in.DocumentID == "" {
		in.DocumentID = uuid.NewString()
	}
	mimeType := in.MimeType
	if mimeType == "" {
		mimeType = resolveMimeType(in.StoragePath)
	}

	text, err := uc.extractText(ctx, in.StoragePath, mimeType)
	if err != nil {
		return nil, err
	}

	analysis := uc.analyze(ctx, text, in.DocumentType)
	size := uc.fileSize(ctx, in.StoragePath)
	now := time.Now().UTC()

	doc := &domain.Document{
		ID:           in.DocumentID,
		Title:        in.Title,
		MimeType:     mimeType,
		DocumentType: in.DocumentType,
		Content:      text,
		StoragePath:  in.StoragePath,
		OwnerID:      in.OwnerID,
		BatchID:      in.BatchID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	initial := &domain.DocumentVersion{
		ID:         uuid.NewString(),
		DocumentID: doc.ID,
		Content: map[string]any{
			"text":      text,
			"mime_type": mimeType,
			"file_size": size,
		},
		Analysis:    analysis,
		StoragePath: in.StoragePath,
		ChangeNote:  map[string]any{"reason": "initial extraction"},
		CreatedBy:   in.OwnerID,
		CreatedAt:   now,
	}

	if err := uc.documents.CreateWithInitialVersion(ctx, doc, initial); err != nil {
		return nil, fmt.Errorf("create document with initial version: %w", err)
	}
	return doc, nil
}

func (uc *TransformUseCase) extractText(ctx context.Context, storagePath, mimeType string) (string, error) {
	extractCtx, cancel := context.WithTimeout(ctx, uc.extractTimeout)
	defer cancel()

	text, err := uc.extractor.Extract(extractCtx, storagePath, mimeType)
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "extract text", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", domain.WrapError(domain.ErrExtraction, "extract text", errors.New("empty extracted text"))
	}
	return text, nil
}

// analyze never fails the transform: a document with text but without
// analysis is still useful.
func (uc *TransformUseCase) analyze(ctx context.Context, text string, docType domain.DocumentType) map[string]any {
	analysis, err := uc.analyzer.Analyze(ctx, text, docType)
	if err != nil {
		slog.Warn("document_analysis_failed", "doc_type", string(docType), "error", err)
		return nil
	}
	return analysis
}

func (uc *TransformUseCase) fileSize(ctx context.Context, storagePath string) int64 {
	size, err := uc.storage.Size(ctx, storagePath)
	if err != nil {
		slog.Warn("stat_stored_file_failed", "storage_path", storagePath, "error", err)
		return 0
	}
	return size
}

var extraMimeTypes = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".txt":  "text/plain",
}

func resolveMimeType(storagePath string) string {
	ext := strings.ToLower(path.Ext(storagePath))
	if t, ok := extraMimeTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}
