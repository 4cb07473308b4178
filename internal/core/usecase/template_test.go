package usecase

import (
	"context"
	"testing"

	"github.com/dkotenko/docstore/internal/core/domain"
)

func validTemplate() *domain.Template {
	return &domain.Template{
		Name:         "loan application",
		TemplateType: "loan_application",
		OwnerID:      "user-1",
		Fields: []domain.TemplateField{
			{Name: "applicant", Type: "text", Required: true},
			{Name: "amount", Type: "number", Required: true},
			{Name: "term", Type: "select", Options: []string{"12m", "24m", "36m"}},
		},
	}
}

func TestTemplateCreateAssignsIDAndTimestamps(t *testing.T) {
	uc := NewTemplateUseCase(newFakeTemplateRepo())

	created, err := uc.Create(context.Background(), validTemplate())
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected assigned id")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}
}

func TestTemplateCreateRejectsInvalidDefinitions(t *testing.T) {
	uc := NewTemplateUseCase(newFakeTemplateRepo())

	cases := map[string]func(*domain.Template){
		"missing name":       func(tpl *domain.Template) { tpl.Name = " " },
		"missing type":       func(tpl *domain.Template) { tpl.TemplateType = "" },
		"no fields":          func(tpl *domain.Template) { tpl.Fields = nil },
		"unknown field type": func(tpl *domain.Template) { tpl.Fields[0].Type = "telepathy" },
		"unnamed field":      func(tpl *domain.Template) { tpl.Fields[1].Name = "" },
	}

	for name, mutate := range cases {
		tpl := validTemplate()
		mutate(tpl)
		if _, err := uc.Create(context.Background(), tpl); !domain.IsKind(err, domain.ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestTemplateUpdatePreservesOwnerAndCreation(t *testing.T) {
	uc := NewTemplateUseCase(newFakeTemplateRepo())

	created, err := uc.Create(context.Background(), validTemplate())
	if err != nil {
		t.Fatalf("create template: %v", err)
	}

	edited := validTemplate()
	edited.ID = created.ID
	edited.Name = "renamed"
	edited.OwnerID = "intruder"

	updated, err := uc.Update(context.Background(), edited)
	if err != nil {
		t.Fatalf("update template: %v", err)
	}
	if updated.OwnerID != "user-1" {
		t.Fatalf("update must not change the owner, got %q", updated.OwnerID)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatal("update must preserve creation time")
	}
	if updated.Name != "renamed" {
		t.Fatalf("expected renamed template, got %q", updated.Name)
	}
}

func TestTemplateUpdateMissingReturnsNotFound(t *testing.T) {
	uc := NewTemplateUseCase(newFakeTemplateRepo())

	tpl := validTemplate()
	tpl.ID = "missing"
	if _, err := uc.Update(context.Background(), tpl); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTemplateDeleteMissingReturnsNotFound(t *testing.T) {
	uc := NewTemplateUseCase(newFakeTemplateRepo())

	if err := uc.Delete(context.Background(), "missing"); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
