package domain

import "time"

type BatchStatus string

const (
	BatchPending    BatchStatus = "pending"
	BatchProcessing BatchStatus = "processing"
	BatchCompleted  BatchStatus = "completed"
	BatchFailed     BatchStatus = "failed"
)

// Terminal reports whether no further status transitions are allowed.
func (s BatchStatus) Terminal() bool {
	return s == BatchCompleted || s == BatchFailed
}

// Batch groups files uploaded together for processing as one unit of work.
// Counters hold the invariant processed_count + failed_count <= document_count.
type Batch struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Description    string       `json:"description,omitempty"`
	DocumentType   DocumentType `json:"document_type"`
	StoragePath    string       `json:"storage_path"`
	Status         BatchStatus  `json:"status"`
	DocumentCount  int          `json:"document_count"`
	ProcessedCount int          `json:"processed_count"`
	FailedCount    int          `json:"failed_count"`
	OwnerID        string       `json:"owner_id"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	StartedAt      *time.Time   `json:"started_at,omitempty"`
	CompletedAt    *time.Time   `json:"completed_at,omitempty"`
}

// Degraded reports whether the batch finished with at least one failed file.
// A batch with partial failures still terminates as completed.
func (b *Batch) Degraded() bool {
	return b.FailedCount > 0
}

// Accounted reports whether every file of the batch reached a terminal
// per-file outcome.
func (b *Batch) Accounted() bool {
	return b.ProcessedCount+b.FailedCount >= b.DocumentCount
}
