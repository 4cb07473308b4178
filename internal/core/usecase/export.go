package usecase

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/xuri/excelize/v2"

	"github.com/dkotenko/docstore/internal/core/domain"
	"github.com/dkotenko/docstore/internal/core/ports"
)

const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatXML  = "xml"
)

var exportContentTypes = map[string]string{
	FormatJSON: "application/json",
	FormatCSV:  "text/csv",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FormatXML:  "application/xml",
}

type ExportUseCase struct {
	documents ports.DocumentRepository
	versions  ports.VersionRepository
	batches   ports.BatchRepository
}

func NewExportUseCase(
	documents ports.DocumentRepository,
	versions ports.VersionRepository,
	batches ports.BatchRepository,
) *ExportUseCase {
	return &ExportUseCase{
		documents: documents,
		versions:  versions,
		batches:   batches,
	}
}

// exportRecord is the flat row shape used by the tabular formats. Structured
// maps are JSON-encoded into single cells.
type exportRecord struct {
	DocumentID   string `csv:"document_id" xml:"document_id"`
	Title        string `csv:"title" xml:"title"`
	DocumentType string `csv:"document_type" xml:"document_type"`
	MimeType     string `csv:"mime_type" xml:"mime_type"`
	BatchID      string `csv:"batch_id,omitempty" xml:"batch_id,omitempty"`
	Version      int    `csv:"version" xml:"version"`
	Text         string `csv:"text" xml:"text"`
	Analysis     string `csv:"analysis,omitempty" xml:"analysis,omitempty"`
	ProcessedAt  string `csv:"processed_at" xml:"processed_at"`
}

// ExportDocument renders one document, optionally pinned to a specific
// version, into the requested format. The returned string is the content
// type of the payload.
func (uc *ExportUseCase) ExportDocument(ctx context.Context, documentID, format string, versionNumber int) ([]byte, string, error) {
	contentType, ok := exportContentTypes[format]
	if !ok {
		return nil, "", domain.WrapError(domain.ErrValidation, "export document", fmt.Errorf("unsupported format %q", format))
	}

	doc, err := uc.documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, "", fmt.Errorf("fetch document: %w", err)
	}
	version, err := uc.resolveVersion(ctx, documentID, versionNumber)
	if err != nil {
		return nil, "", err
	}

	payload, err := uc.render(format, []documentExport{buildDocumentExport(doc, version)})
	if err != nil {
		return nil, "", err
	}
	return payload, contentType, nil
}

// ExportBatch renders the latest version of every document in a batch.
func (uc *ExportUseCase) ExportBatch(ctx context.Context, batchID, format string) ([]byte, string, error) {
	contentType, ok := exportContentTypes[format]
	if !ok {
		return nil, "", domain.WrapError(domain.ErrValidation, "export batch", fmt.Errorf("unsupported format %q", format))
	}

	if _, err := uc.batches.GetByID(ctx, batchID); err != nil {
		return nil, "", fmt.Errorf("fetch batch: %w", err)
	}
	docs, err := uc.documents.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, "", fmt.Errorf("list batch documents: %w", err)
	}
	if len(docs) == 0 {
		return nil, "", domain.WrapError(domain.ErrNotFound, "export batch", errors.New("no documents in batch"))
	}

	exports := make([]documentExport, 0, len(docs))
	for i := range docs {
		version, err := uc.resolveVersion(ctx, docs[i].ID, 0)
		if err != nil {
			return nil, "", err
		}
		exports = append(exports, buildDocumentExport(&docs[i], version))
	}

	payload, err := uc.render(format, exports)
	if err != nil {
		return nil, "", err
	}
	return payload, contentType, nil
}

// resolveVersion returns the requested version, or the latest one when the
// caller did not pin a number.
func (uc *ExportUseCase) resolveVersion(ctx context.Context, documentID string, number int) (*domain.DocumentVersion, error) {
	if number > 0 {
		version, err := uc.versions.Get(ctx, documentID, number)
		if err != nil {
			return nil, fmt.Errorf("fetch version %d: %w", number, err)
		}
		return version, nil
	}

	versions, err := uc.versions.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	if len(versions) == 0 {
		return nil, domain.WrapError(domain.ErrNotFound, "resolve latest version", errors.New("document has no versions"))
	}
	return &versions[len(versions)-1], nil
}

// documentExport is the rich shape used by the JSON format.
type documentExport struct {
	Metadata struct {
		DocumentID   string    `json:"document_id"`
		Title        string    `json:"title"`
		DocumentType string    `json:"document_type"`
		MimeType     string    `json:"mime_type"`
		BatchID      string    `json:"batch_id,omitempty"`
		Version      int       `json:"version"`
		ProcessedAt  time.Time `json:"processed_at"`
	} `json:"metadata"`
	Content  map[string]any `json:"content"`
	Analysis map[string]any `json:"analysis,omitempty"`
}

func buildDocumentExport(doc *domain.Document, version *domain.DocumentVersion) documentExport {
	var out documentExport
	out.Metadata.DocumentID = doc.ID
	out.Metadata.Title = doc.Title
	out.Metadata.DocumentType = string(doc.DocumentType)
	out.Metadata.MimeType = doc.MimeType
	out.Metadata.BatchID = doc.BatchID
	out.Metadata.Version = version.VersionNumber
	out.Metadata.ProcessedAt = version.CreatedAt
	out.Content = version.Content
	out.Analysis = version.Analysis
	return out
}

func (uc *ExportUseCase) render(format string, exports []documentExport) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(exports, "", "  ")
	case FormatCSV:
		return renderCSV(exports)
	case FormatXLSX:
		return renderXLSX(exports)
	case FormatXML:
		return renderXML(exports)
	default:
		return nil, domain.WrapError(domain.ErrValidation, "render export", fmt.Errorf("unsupported format %q", format))
	}
}

func flattenExports(exports []documentExport) ([]exportRecord, error) {
	records := make([]exportRecord, 0, len(exports))
	for _, exp := range exports {
		record := exportRecord{
			DocumentID:   exp.Metadata.DocumentID,
			Title:        exp.Metadata.Title,
			DocumentType: exp.Metadata.DocumentType,
			MimeType:     exp.Metadata.MimeType,
			BatchID:      exp.Metadata.BatchID,
			Version:      exp.Metadata.Version,
			ProcessedAt:  exp.Metadata.ProcessedAt.Format(time.RFC3339),
		}
		if text, ok := exp.Content["text"].(string); ok {
			record.Text = text
		}
		if len(exp.Analysis) > 0 {
			raw, err := json.Marshal(exp.Analysis)
			if err != nil {
				return nil, fmt.Errorf("encode analysis: %w", err)
			}
			record.Analysis = string(raw)
		}
		records = append(records, record)
	}
	return records, nil
}

func renderCSV(exports []documentExport) ([]byte, error) {
	records, err := flattenExports(exports)
	if err != nil {
		return nil, err
	}
	payload, err := csvutil.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}
	return payload, nil
}

func renderXLSX(exports []documentExport) ([]byte, error) {
	records, err := flattenExports(exports)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	headers := []string{"document_id", "title", "document_type", "mime_type", "batch_id", "version", "text", "analysis", "processed_at"}
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}
	for row, record := range records {
		values := []any{
			record.DocumentID, record.Title, record.DocumentType, record.MimeType,
			record.BatchID, record.Version, record.Text, record.Analysis, record.ProcessedAt,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, fmt.Errorf("data cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("write row: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

type xmlExportEnvelope struct {
	XMLName xml.Name       `xml:"documents"`
	Records []exportRecord `xml:"document"`
}

func renderXML(exports []documentExport) ([]byte, error) {
	records, err := flattenExports(exports)
	if err != nil {
		return nil, err
	}
	payload, err := xml.MarshalIndent(xmlExportEnvelope{Records: records}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode xml: %w", err)
	}
	return append([]byte(xml.Header), payload...), nil
}
