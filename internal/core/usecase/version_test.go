package usecase

import (
	"context"
	"testing"

	"github.com/dkotenko/docstore/internal/core/domain"
)

func newVersionFixture() (*VersionUseCase, *fakeVersionRepo) {
	versions := newFakeVersionRepo()
	return NewVersionUseCase(newFakeDocumentRepo(), versions), versions
}

func TestCreateVersionAssignsContiguousNumbers(t *testing.T) {
	uc, _ := newVersionFixture()

	for want := 1; want <= 3; want++ {
		version, err := uc.CreateVersion(context.Background(), "doc-1",
			map[string]any{"text": "rev", "revision": want},
			map[string]any{"reason": "edit"},
			"editor",
		)
		if err != nil {
			t.Fatalf("create version %d: %v", want, err)
		}
		if version.VersionNumber != want {
			t.Fatalf("expected version %d, got %d", want, version.VersionNumber)
		}
	}

	listed, err := uc.ListVersions(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("expected 3 versions, got %d", len(listed))
	}
	for i, v := range listed {
		if v.VersionNumber != i+1 {
			t.Fatalf("expected ascending numbering, got %d at index %d", v.VersionNumber, i)
		}
	}
}

func TestCreateVersionRequiresContent(t *testing.T) {
	uc, _ := newVersionFixture()

	_, err := uc.CreateVersion(context.Background(), "doc-1", nil, nil, "editor")
	if !domain.IsKind(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetVersionMissingReturnsNotFound(t *testing.T) {
	uc, _ := newVersionFixture()

	_, err := uc.GetVersion(context.Background(), "doc-1", 7)
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCompareVersionsReportsFieldChanges(t *testing.T) {
	uc, _ := newVersionFixture()

	if _, err := uc.CreateVersion(context.Background(), "doc-1",
		map[string]any{"amount": 100, "currency": "EUR"}, nil, "editor"); err != nil {
		t.Fatalf("create v1: %v", err)
	}
	if _, err := uc.CreateVersion(context.Background(), "doc-1",
		map[string]any{"amount": 250, "currency": "EUR", "due": "2026-09-30"}, nil, "editor"); err != nil {
		t.Fatalf("create v2: %v", err)
	}

	diff, err := uc.CompareVersions(context.Background(), "doc-1", 1, 2)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if diff.Version1 != 1 || diff.Version2 != 2 {
		t.Fatalf("unexpected version labels: %+v", diff)
	}
	if len(diff.FieldChanges) != 2 {
		t.Fatalf("expected changes for amount and due, got %v", diff.FieldChanges)
	}
	if change := diff.FieldChanges["amount"]; change.Old != 100 || change.New != 250 {
		t.Fatalf("unexpected amount change: %+v", change)
	}
	if change := diff.FieldChanges["due"]; change.Old != nil || change.New != "2026-09-30" {
		t.Fatalf("unexpected due change: %+v", change)
	}
	if _, ok := diff.FieldChanges["currency"]; ok {
		t.Fatal("unchanged field must not appear in the diff")
	}
}

func TestCompareVersionAgainstItselfIsEmpty(t *testing.T) {
	uc, _ := newVersionFixture()

	if _, err := uc.CreateVersion(context.Background(), "doc-1",
		map[string]any{"amount": 100}, nil, "editor"); err != nil {
		t.Fatalf("create v1: %v", err)
	}

	diff, err := uc.CompareVersions(context.Background(), "doc-1", 1, 1)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if len(diff.FieldChanges) != 0 {
		t.Fatalf("expected empty diff, got %v", diff.FieldChanges)
	}
}

func TestCompareVersionsMissingVersionReturnsNotFound(t *testing.T) {
	uc, _ := newVersionFixture()

	if _, err := uc.CreateVersion(context.Background(), "doc-1",
		map[string]any{"amount": 100}, nil, "editor"); err != nil {
		t.Fatalf("create v1: %v", err)
	}

	_, err := uc.CompareVersions(context.Background(), "doc-1", 1, 9)
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
