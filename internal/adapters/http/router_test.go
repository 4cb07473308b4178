package httpadapter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dkotenko/docstore/internal/config"
	"github.com/dkotenko/docstore/internal/core/domain"
	"github.com/dkotenko/docstore/internal/core/ports"
)

// Shared stubs for handler tests. Each stub holds canned state; error cases
// are driven through injected errors or missing map entries.

type stubIntake struct {
	deleteErr error
}

func (s *stubIntake) CreateBatch(_ context.Context, req ports.BatchIntakeRequest) (*domain.Batch, error) {
	if len(req.Files) == 0 {
		return nil, domain.WrapError(domain.ErrValidation, "create batch", fmt.Errorf("no files"))
	}
	now := time.Now().UTC()
	return &domain.Batch{
		ID:            "batch-1",
		Name:          req.Name,
		DocumentType:  req.DocumentType,
		StoragePath:   "batches/batch-1",
		Status:        domain.BatchPending,
		DocumentCount: len(req.Files),
		OwnerID:       req.OwnerID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (s *stubIntake) UploadDocument(_ context.Context, req ports.SingleUploadRequest) (*domain.Document, error) {
	if _, err := io.ReadAll(req.Data); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &domain.Document{
		ID:           "doc-1",
		Title:        req.Filename,
		MimeType:     req.MimeType,
		DocumentType: req.DocumentType,
		OwnerID:      req.OwnerID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (s *stubIntake) DeleteBatch(_ context.Context, _ string) error {
	return s.deleteErr
}

type stubBatchRepo struct {
	batches map[string]domain.Batch
}

func (s *stubBatchRepo) Create(_ context.Context, _ *domain.Batch) error { return nil }

func (s *stubBatchRepo) GetByID(_ context.Context, id string) (*domain.Batch, error) {
	batch, ok := s.batches[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get batch", fmt.Errorf("batch %s", id))
	}
	return &batch, nil
}

func (s *stubBatchRepo) List(_ context.Context, _, _ int) ([]domain.Batch, int, error) {
	out := make([]domain.Batch, 0, len(s.batches))
	for _, b := range s.batches {
		out = append(out, b)
	}
	return out, len(out), nil
}

func (s *stubBatchRepo) BeginProcessing(_ context.Context, _ string, _ time.Time) error { return nil }

func (s *stubBatchRepo) IncrementCounters(_ context.Context, _ string, _, _ int) error { return nil }

func (s *stubBatchRepo) Finalize(_ context.Context, _ string, _ domain.BatchStatus, _ time.Time) error {
	return nil
}

func (s *stubBatchRepo) Delete(_ context.Context, _ string) error { return nil }

func (s *stubBatchRepo) CountByStatus(_ context.Context) (map[domain.BatchStatus]int, error) {
	return map[domain.BatchStatus]int{}, nil
}

type stubDocumentRepo struct {
	docs map[string]domain.Document
}

func (s *stubDocumentRepo) CreateWithInitialVersion(_ context.Context, _ *domain.Document, _ *domain.DocumentVersion) error {
	return nil
}

func (s *stubDocumentRepo) GetByID(_ context.Context, id string) (*domain.Document, error) {
	doc, ok := s.docs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get document", fmt.Errorf("document %s", id))
	}
	return &doc, nil
}

func (s *stubDocumentRepo) List(_ context.Context, _ string, _, _ int) ([]domain.Document, int, error) {
	out := make([]domain.Document, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, d)
	}
	return out, len(out), nil
}

func (s *stubDocumentRepo) ListByBatch(_ context.Context, _ string) ([]domain.Document, error) {
	return nil, nil
}

func (s *stubDocumentRepo) Delete(_ context.Context, id string) error {
	if _, ok := s.docs[id]; !ok {
		return domain.WrapError(domain.ErrNotFound, "delete document", fmt.Errorf("document %s", id))
	}
	return nil
}

func (s *stubDocumentRepo) CountByType(_ context.Context) (map[domain.DocumentType]int, error) {
	return map[domain.DocumentType]int{}, nil
}

type stubStorage struct{}

func (stubStorage) Save(_ context.Context, _ string, _ io.Reader) error { return nil }

func (stubStorage) Open(_ context.Context, _ string) (io.ReadCloser, error) {
	return nil, domain.WrapError(domain.ErrNotFound, "open object", fmt.Errorf("missing"))
}

func (stubStorage) Size(_ context.Context, _ string) (int64, error) { return 0, nil }

func (stubStorage) List(_ context.Context, _ string) ([]string, error) { return nil, nil }

func (stubStorage) RemoveAll(_ context.Context, _ string) error { return nil }

type stubVersionService struct {
	versions map[int]domain.DocumentVersion
}

func (s *stubVersionService) CreateVersion(_ context.Context, documentID string, content, changeNote map[string]any, actor string) (*domain.DocumentVersion, error) {
	if len(content) == 0 {
		return nil, domain.WrapError(domain.ErrValidation, "create version", fmt.Errorf("empty content"))
	}
	return &domain.DocumentVersion{
		ID:            "v-new",
		DocumentID:    documentID,
		VersionNumber: len(s.versions) + 1,
		Content:       content,
		ChangeNote:    changeNote,
		CreatedBy:     actor,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

func (s *stubVersionService) GetVersion(_ context.Context, documentID string, number int) (*domain.DocumentVersion, error) {
	version, ok := s.versions[number]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get version",
			fmt.Errorf("document %s version %d", documentID, number))
	}
	return &version, nil
}

func (s *stubVersionService) ListVersions(_ context.Context, _ string) ([]domain.DocumentVersion, error) {
	out := make([]domain.DocumentVersion, 0, len(s.versions))
	for n := 1; n <= len(s.versions); n++ {
		out = append(out, s.versions[n])
	}
	return out, nil
}

func (s *stubVersionService) CompareVersions(_ context.Context, _ string, v1, v2 int) (domain.VersionDiff, error) {
	return domain.VersionDiff{Version1: v1, Version2: v2, FieldChanges: map[string]domain.FieldChange{}}, nil
}

type stubExportService struct{}

func (stubExportService) ExportDocument(_ context.Context, _, format string, _ int) ([]byte, string, error) {
	if format != "json" {
		return nil, "", domain.WrapError(domain.ErrValidation, "export document", fmt.Errorf("format %s", format))
	}
	return []byte(`{"id":"doc-1"}`), "application/json", nil
}

func (stubExportService) ExportBatch(_ context.Context, _, format string) ([]byte, string, error) {
	if format == "csv" {
		return []byte("document_id\ndoc-1\n"), "text/csv", nil
	}
	return []byte(`[{"id":"doc-1"}]`), "application/json", nil
}

type stubTemplateService struct{}

func (stubTemplateService) Create(_ context.Context, tpl *domain.Template) (*domain.Template, error) {
	tpl.ID = "tpl-1"
	return tpl, nil
}

func (stubTemplateService) Get(_ context.Context, id string) (*domain.Template, error) {
	return nil, domain.WrapError(domain.ErrNotFound, "get template", fmt.Errorf("template %s", id))
}

func (stubTemplateService) List(_ context.Context, _, _ int) ([]domain.Template, int, error) {
	return nil, 0, nil
}

func (stubTemplateService) Update(_ context.Context, tpl *domain.Template) (*domain.Template, error) {
	return tpl, nil
}

func (stubTemplateService) Delete(_ context.Context, _ string) error { return nil }

type stubDashboard struct{}

func (stubDashboard) Stats(_ context.Context) (domain.DashboardStats, error) {
	return domain.DashboardStats{
		TotalBatches:    2,
		TotalDocuments:  5,
		BatchesByStatus: map[domain.BatchStatus]int{domain.BatchCompleted: 2},
		DocumentsByType: map[domain.DocumentType]int{domain.TypeInvoice: 5},
	}, nil
}

type routerFixture struct {
	intake   *stubIntake
	batches  *stubBatchRepo
	docs     *stubDocumentRepo
	versions *stubVersionService
}

func newTestHandler(cfg config.Config) (http.Handler, *routerFixture) {
	fixture := &routerFixture{
		intake:   &stubIntake{},
		batches:  &stubBatchRepo{batches: make(map[string]domain.Batch)},
		docs:     &stubDocumentRepo{docs: make(map[string]domain.Document)},
		versions: &stubVersionService{versions: make(map[int]domain.DocumentVersion)},
	}
	handler := NewRouter(Deps{
		Intake:    fixture.intake,
		Batches:   fixture.batches,
		Documents: fixture.docs,
		Storage:   stubStorage{},
		Versions:  fixture.versions,
		Exports:   stubExportService{},
		Templates: stubTemplateService{},
		Dashboard: stubDashboard{},
	}, cfg).Handler()
	return handler, fixture
}
