package domain

import "time"

type DocumentType string

const (
	TypeLoanApplication DocumentType = "loan_application"
	TypeContract        DocumentType = "contract"
	TypeInvoice         DocumentType = "invoice"
	TypeKYC             DocumentType = "kyc"
	TypeOther           DocumentType = "other"
)

// ParseDocumentType validates a client-supplied type. An empty value falls
// back to "other".
func ParseDocumentType(raw string) (DocumentType, bool) {
	switch DocumentType(raw) {
	case TypeLoanApplication, TypeContract, TypeInvoice, TypeKYC, TypeOther:
		return DocumentType(raw), true
	case "":
		return TypeOther, true
	default:
		return "", false
	}
}

// Document is the durable record of one processed file. Content stays empty
// until extraction has run; later text changes arrive only through new
// versions, never in place.
type Document struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	MimeType     string       `json:"mime_type"`
	DocumentType DocumentType `json:"document_type"`
	Content      string       `json:"content,omitempty"`
	StoragePath  string       `json:"storage_path"`
	OwnerID      string       `json:"owner_id"`
	BatchID      string       `json:"batch_id,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}
