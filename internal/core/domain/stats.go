package domain

// DashboardStats aggregates processing activity for the dashboard endpoint.
type DashboardStats struct {
	TotalDocuments  int                  `json:"total_documents"`
	TotalBatches    int                  `json:"total_batches"`
	BatchesByStatus map[BatchStatus]int  `json:"batches_by_status"`
	DocumentsByType map[DocumentType]int `json:"documents_by_type"`
}
