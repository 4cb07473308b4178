package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dkotenko/docstore/internal/core/domain"
)

func newBatchRepoWithMock(t *testing.T) (*BatchRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &BatchRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestBatchGetByIDReturnsNotFound(t *testing.T) {
	repo, mock, done := newBatchRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, name, description, document_type").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestBeginProcessingGuardsAgainstResubmission(t *testing.T) {
	repo, mock, done := newBatchRepoWithMock(t)
	defer done()

	startedAt := time.Now().UTC()
	mock.ExpectExec("UPDATE batches").
		WithArgs("batch-1", string(domain.BatchProcessing), startedAt, string(domain.BatchPending)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.BeginProcessing(context.Background(), "batch-1", startedAt)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestBeginProcessingTransitionsPendingBatch(t *testing.T) {
	repo, mock, done := newBatchRepoWithMock(t)
	defer done()

	startedAt := time.Now().UTC()
	mock.ExpectExec("UPDATE batches").
		WithArgs("batch-1", string(domain.BatchProcessing), startedAt, string(domain.BatchPending)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.BeginProcessing(context.Background(), "batch-1", startedAt); err != nil {
		t.Fatalf("BeginProcessing: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestIncrementCountersPushesDeltasToSQL(t *testing.T) {
	repo, mock, done := newBatchRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE batches").
		WithArgs("batch-1", 1, 0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.IncrementCounters(context.Background(), "batch-1", 1, 0); err != nil {
		t.Fatalf("IncrementCounters: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestFinalizeRequiresProcessingStatus(t *testing.T) {
	repo, mock, done := newBatchRepoWithMock(t)
	defer done()

	completedAt := time.Now().UTC()
	mock.ExpectExec("UPDATE batches").
		WithArgs("batch-1", string(domain.BatchCompleted), completedAt, string(domain.BatchProcessing)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Finalize(context.Background(), "batch-1", domain.BatchCompleted, completedAt)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestBatchDeleteReturnsNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newBatchRepoWithMock(t)
	defer done()

	mock.ExpectExec("DELETE FROM batches").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCountByStatusMapsRows(t *testing.T) {
	repo, mock, done := newBatchRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT status, COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("completed", 4).
			AddRow("pending", 1))

	counts, err := repo.CountByStatus(context.Background())
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}
	if counts[domain.BatchCompleted] != 4 || counts[domain.BatchPending] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
