package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dkotenko/docstore/internal/core/domain"
	"github.com/dkotenko/docstore/internal/core/ports"
)

type TemplateUseCase struct {
	templates ports.TemplateRepository
}

func NewTemplateUseCase(templates ports.TemplateRepository) *TemplateUseCase {
	return &TemplateUseCase{templates: templates}
}

func (uc *TemplateUseCase) Create(ctx context.Context, tpl *domain.Template) (*domain.Template, error) {
	if err := validateTemplate(tpl); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	tpl.ID = uuid.NewString()
	tpl.CreatedAt = now
	tpl.UpdatedAt = now
	if err := uc.templates.Create(ctx, tpl); err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	return tpl, nil
}

func (uc *TemplateUseCase) Get(ctx context.Context, id string) (*domain.Template, error) {
	tpl, err := uc.templates.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch template: %w", err)
	}
	return tpl, nil
}

func (uc *TemplateUseCase) List(ctx context.Context, limit, offset int) ([]domain.Template, int, error) {
	templates, total, err := uc.templates.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list templates: %w", err)
	}
	return templates, total, nil
}

func (uc *TemplateUseCase) Update(ctx context.Context, tpl *domain.Template) (*domain.Template, error) {
	if err := validateTemplate(tpl); err != nil {
		return nil, err
	}

	existing, err := uc.templates.GetByID(ctx, tpl.ID)
	if err != nil {
		return nil, fmt.Errorf("fetch template: %w", err)
	}
	tpl.OwnerID = existing.OwnerID
	tpl.CreatedAt = existing.CreatedAt
	tpl.UpdatedAt = time.Now().UTC()
	if err := uc.templates.Update(ctx, tpl); err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}
	return tpl, nil
}

func (uc *TemplateUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.templates.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}

func validateTemplate(tpl *domain.Template) error {
	if strings.TrimSpace(tpl.Name) == "" {
		return domain.WrapError(domain.ErrValidation, "validate template", errors.New("name is required"))
	}
	if strings.TrimSpace(tpl.TemplateType) == "" {
		return domain.WrapError(domain.ErrValidation, "validate template", errors.New("template type is required"))
	}
	if len(tpl.Fields) == 0 {
		return domain.WrapError(domain.ErrValidation, "validate template", errors.New("at least one field is required"))
	}
	for _, field := range tpl.Fields {
		if !field.Validate() {
			return domain.WrapError(domain.ErrValidation, "validate template",
				fmt.Errorf("invalid field definition %q (type %q)", field.Name, field.Type))
		}
	}
	return nil
}
