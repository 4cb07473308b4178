package domain

import "time"

// TemplateField describes one extractable field of a template schema.
type TemplateField struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Required bool     `json:"required,omitempty"`
	Options  []string `json:"options,omitempty"`
}

var supportedFieldTypes = map[string]struct{}{
	"text":        {},
	"number":      {},
	"date":        {},
	"boolean":     {},
	"select":      {},
	"multiselect": {},
}

// Validate checks the field definition against the supported type set.
func (f TemplateField) Validate() bool {
	if f.Name == "" {
		return false
	}
	_, ok := supportedFieldTypes[f.Type]
	return ok
}

// Template is a named field schema describing how structured fields are
// extracted from a document's text.
type Template struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	TemplateType string          `json:"template_type"`
	Fields       []TemplateField `json:"fields"`
	SampleData   map[string]any  `json:"sample_data,omitempty"`
	OwnerID      string          `json:"owner_id"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
