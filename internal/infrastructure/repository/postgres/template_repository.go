package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dkotenko/docstore/internal/core/domain"
)

type TemplateRepository struct {
	db *sql.DB
}

func NewTemplateRepository(db *sql.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

const templateColumns = `id, name, description, template_type, fields, sample_data, owner_id, created_at, updated_at`

func (r *TemplateRepository) Create(ctx context.Context, tpl *domain.Template) error {
	fieldsJSON, err := json.Marshal(tpl.Fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}
	sampleJSON, err := marshalJSONField(tpl.SampleData)
	if err != nil {
		return fmt.Errorf("marshal sample data: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO templates (
	id, name, description, template_type, fields, sample_data, owner_id, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`,
		tpl.ID, tpl.Name, tpl.Description, tpl.TemplateType, fieldsJSON, sampleJSON,
		tpl.OwnerID, tpl.CreatedAt, tpl.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert template: %w", err)
	}
	return nil
}

func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*domain.Template, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM templates WHERE id = $1`, id)
	tpl, err := scanTemplate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get template", fmt.Errorf("template %s", id))
		}
		return nil, fmt.Errorf("scan template: %w", err)
	}
	return tpl, nil
}

func (r *TemplateRepository) List(ctx context.Context, limit, offset int) ([]domain.Template, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM templates`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count templates: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT `+templateColumns+`
FROM templates
ORDER BY created_at DESC
LIMIT $1 OFFSET $2
`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query templates: %w", err)
	}
	defer rows.Close()

	var templates []domain.Template
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan template row: %w", err)
		}
		templates = append(templates, *tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate templates: %w", err)
	}
	return templates, total, nil
}

func (r *TemplateRepository) Update(ctx context.Context, tpl *domain.Template) error {
	fieldsJSON, err := json.Marshal(tpl.Fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}
	sampleJSON, err := marshalJSONField(tpl.SampleData)
	if err != nil {
		return fmt.Errorf("marshal sample data: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
UPDATE templates
SET name = $2, description = $3, template_type = $4, fields = $5, sample_data = $6, updated_at = $7
WHERE id = $1
`, tpl.ID, tpl.Name, tpl.Description, tpl.TemplateType, fieldsJSON, sampleJSON, tpl.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "update template", fmt.Errorf("template %s", tpl.ID))
	}
	return nil
}

func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "delete template", fmt.Errorf("template %s", id))
	}
	return nil
}

func scanTemplate(row rowScanner) (*domain.Template, error) {
	var tpl domain.Template
	var description sql.NullString
	var fieldsRaw, sampleRaw []byte

	err := row.Scan(
		&tpl.ID, &tpl.Name, &description, &tpl.TemplateType, &fieldsRaw, &sampleRaw,
		&tpl.OwnerID, &tpl.CreatedAt, &tpl.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	tpl.Description = description.String
	if err := json.Unmarshal(fieldsRaw, &tpl.Fields); err != nil {
		return nil, fmt.Errorf("unmarshal fields: %w", err)
	}
	if len(sampleRaw) > 0 {
		if err := json.Unmarshal(sampleRaw, &tpl.SampleData); err != nil {
			return nil, fmt.Errorf("unmarshal sample data: %w", err)
		}
	}
	return &tpl, nil
}
