package extractor

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dkotenko/docstore/internal/core/ports"
)

const docxMimeType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// OCRClient recognizes text on image payloads. Implemented by the OCR
// sidecar client.
type OCRClient interface {
	Recognize(ctx context.Context, image []byte, mimeType string) (string, error)
}

// Extractor routes a stored file to the format-specific text extraction by
// its MIME type.
type Extractor struct {
	storage ports.ObjectStorage
	ocr     OCRClient
}

func New(storage ports.ObjectStorage, ocr OCRClient) *Extractor {
	return &Extractor{storage: storage, ocr: ocr}
}

func (e *Extractor) Extract(ctx context.Context, storagePath, mimeType string) (string, error) {
	reader, err := e.storage.Open(ctx, storagePath)
	if err != nil {
		return "", fmt.Errorf("open source file: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read source file: %w", err)
	}

	switch {
	case mimeType == "application/pdf":
		return extractPDF(raw)
	case mimeType == docxMimeType:
		return extractDOCX(raw)
	case strings.HasPrefix(mimeType, "image/"):
		if e.ocr == nil {
			return "", fmt.Errorf("no OCR backend configured for %s", mimeType)
		}
		return e.ocr.Recognize(ctx, raw, mimeType)
	default:
		return extractPlaintext(raw)
	}
}
