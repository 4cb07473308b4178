package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dkotenko/docstore/internal/core/domain"
)

type fakeBatchRepo struct {
	mu      sync.Mutex
	batches map[string]domain.Batch
}

func newFakeBatchRepo() *fakeBatchRepo {
	return &fakeBatchRepo{batches: make(map[string]domain.Batch)}
}

func (f *fakeBatchRepo) Create(_ context.Context, batch *domain.Batch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches[batch.ID] = *batch
	return nil
}

func (f *fakeBatchRepo) GetByID(_ context.Context, id string) (*domain.Batch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	batch, ok := f.batches[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get batch", fmt.Errorf("batch %s", id))
	}
	out := batch
	return &out, nil
}

func (f *fakeBatchRepo) List(_ context.Context, limit, offset int) ([]domain.Batch, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]domain.Batch, 0, len(f.batches))
	for _, b := range f.batches {
		all = append(all, b)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := len(all)
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (f *fakeBatchRepo) BeginProcessing(_ context.Context, id string, startedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	batch, ok := f.batches[id]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "begin processing", fmt.Errorf("batch %s", id))
	}
	if batch.Status != domain.BatchPending {
		return domain.WrapError(domain.ErrInvalidState, "begin processing",
			fmt.Errorf("batch %s is %s", id, batch.Status))
	}
	batch.Status = domain.BatchProcessing
	batch.StartedAt = &startedAt
	f.batches[id] = batch
	return nil
}

func (f *fakeBatchRepo) IncrementCounters(_ context.Context, id string, processedDelta, failedDelta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	batch, ok := f.batches[id]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "increment counters", fmt.Errorf("batch %s", id))
	}
	batch.ProcessedCount += processedDelta
	batch.FailedCount += failedDelta
	f.batches[id] = batch
	return nil
}

func (f *fakeBatchRepo) Finalize(_ context.Context, id string, status domain.BatchStatus, completedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	batch, ok := f.batches[id]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "finalize batch", fmt.Errorf("batch %s", id))
	}
	if batch.Status != domain.BatchProcessing {
		return domain.WrapError(domain.ErrInvalidState, "finalize batch",
			fmt.Errorf("batch %s is %s", id, batch.Status))
	}
	batch.Status = status
	batch.CompletedAt = &completedAt
	f.batches[id] = batch
	return nil
}

func (f *fakeBatchRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.batches[id]; !ok {
		return domain.WrapError(domain.ErrNotFound, "delete batch", fmt.Errorf("batch %s", id))
	}
	delete(f.batches, id)
	return nil
}

func (f *fakeBatchRepo) CountByStatus(_ context.Context) (map[domain.BatchStatus]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[domain.BatchStatus]int)
	for _, b := range f.batches {
		counts[b.Status]++
	}
	return counts, nil
}

type fakeDocumentRepo struct {
	mu        sync.Mutex
	docs      map[string]domain.Document
	initial   map[string]domain.DocumentVersion
	createErr error
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{
		docs:    make(map[string]domain.Document),
		initial: make(map[string]domain.DocumentVersion),
	}
}

func (f *fakeDocumentRepo) CreateWithInitialVersion(_ context.Context, doc *domain.Document, initial *domain.DocumentVersion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	initial.VersionNumber = 1
	f.docs[doc.ID] = *doc
	f.initial[doc.ID] = *initial
	return nil
}

func (f *fakeDocumentRepo) GetByID(_ context.Context, id string) (*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get document", fmt.Errorf("document %s", id))
	}
	out := doc
	return &out, nil
}

func (f *fakeDocumentRepo) List(_ context.Context, batchID string, limit, offset int) ([]domain.Document, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]domain.Document, 0, len(f.docs))
	for _, d := range f.docs {
		if batchID != "" && d.BatchID != batchID {
			continue
		}
		all = append(all, d)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := len(all)
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (f *fakeDocumentRepo) ListByBatch(ctx context.Context, batchID string) ([]domain.Document, error) {
	docs, _, err := f.List(ctx, batchID, 1000, 0)
	return docs, err
}

func (f *fakeDocumentRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.docs[id]; !ok {
		return domain.WrapError(domain.ErrNotFound, "delete document", fmt.Errorf("document %s", id))
	}
	delete(f.docs, id)
	return nil
}

func (f *fakeDocumentRepo) CountByType(_ context.Context) (map[domain.DocumentType]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[domain.DocumentType]int)
	for _, d := range f.docs {
		counts[d.DocumentType]++
	}
	return counts, nil
}

type fakeVersionRepo struct {
	mu       sync.Mutex
	versions map[string][]domain.DocumentVersion
}

func newFakeVersionRepo() *fakeVersionRepo {
	return &fakeVersionRepo{versions: make(map[string][]domain.DocumentVersion)}
}

func (f *fakeVersionRepo) Append(_ context.Context, version *domain.DocumentVersion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing := f.versions[version.DocumentID]
	version.VersionNumber = len(existing) + 1
	f.versions[version.DocumentID] = append(existing, *version)
	return nil
}

func (f *fakeVersionRepo) Get(_ context.Context, documentID string, number int) (*domain.DocumentVersion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.versions[documentID] {
		if v.VersionNumber == number {
			out := v
			return &out, nil
		}
	}
	return nil, domain.WrapError(domain.ErrNotFound, "get version",
		fmt.Errorf("document %s version %d", documentID, number))
}

func (f *fakeVersionRepo) ListByDocument(_ context.Context, documentID string) ([]domain.DocumentVersion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.DocumentVersion(nil), f.versions[documentID]...), nil
}

type fakeTemplateRepo struct {
	mu        sync.Mutex
	templates map[string]domain.Template
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{templates: make(map[string]domain.Template)}
}

func (f *fakeTemplateRepo) Create(_ context.Context, tpl *domain.Template) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.templates[tpl.ID] = *tpl
	return nil
}

func (f *fakeTemplateRepo) GetByID(_ context.Context, id string) (*domain.Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tpl, ok := f.templates[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get template", fmt.Errorf("template %s", id))
	}
	out := tpl
	return &out, nil
}

func (f *fakeTemplateRepo) List(_ context.Context, limit, offset int) ([]domain.Template, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]domain.Template, 0, len(f.templates))
	for _, tpl := range f.templates {
		all = append(all, tpl)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := len(all)
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (f *fakeTemplateRepo) Update(_ context.Context, tpl *domain.Template) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.templates[tpl.ID]; !ok {
		return domain.WrapError(domain.ErrNotFound, "update template", fmt.Errorf("template %s", tpl.ID))
	}
	f.templates[tpl.ID] = *tpl
	return nil
}

func (f *fakeTemplateRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.templates[id]; !ok {
		return domain.WrapError(domain.ErrNotFound, "delete template", fmt.Errorf("template %s", id))
	}
	delete(f.templates, id)
	return nil
}

type fakeStorage struct {
	mu      sync.Mutex
	files   map[string][]byte
	saveErr error
	listErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{files: make(map[string][]byte)}
}

func (f *fakeStorage) Save(_ context.Context, key string, data io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[key] = raw
	return nil
}

func (f *fakeStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.files[key]
	if !ok {
		return nil, fmt.Errorf("open %s: not found", key)
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (f *fakeStorage) Size(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.files[key]
	if !ok {
		return 0, fmt.Errorf("stat %s: not found", key)
	}
	return int64(len(raw)), nil
}

func (f *fakeStorage) List(_ context.Context, prefix string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for key := range f.files {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *fakeStorage) RemoveAll(_ context.Context, prefix string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key := range f.files {
		if strings.HasPrefix(key, prefix) {
			delete(f.files, key)
		}
	}
	return nil
}

type fakeQueue struct {
	mu         sync.Mutex
	published  []string
	publishErr error
}

func (f *fakeQueue) PublishBatchSubmitted(_ context.Context, batchID string) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, batchID)
	return nil
}

func (f *fakeQueue) SubscribeBatchSubmitted(context.Context, func(context.Context, string) error) error {
	return errors.New("not implemented in fake")
}

type fakeExtractor struct {
	texts     map[string]string
	failPaths map[string]error
}

func (f *fakeExtractor) Extract(_ context.Context, storagePath, _ string) (string, error) {
	if err, ok := f.failPaths[storagePath]; ok {
		return "", err
	}
	if text, ok := f.texts[storagePath]; ok {
		return text, nil
	}
	return "extracted text from " + storagePath, nil
}

type fakeAnalyzer struct {
	analysis map[string]any
	err      error
}

func (f *fakeAnalyzer) Analyze(context.Context, string, domain.DocumentType) (map[string]any, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.analysis != nil {
		return f.analysis, nil
	}
	return map[string]any{"category": "contract", "confidence": 0.9}, nil
}
