package httpadapter

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dkotenko/docstore/internal/core/domain"
	"github.com/dkotenko/docstore/internal/core/ports"
)

// batchPayload is the API shape of a batch: the stored record plus the
// derived degraded flag.
type batchPayload struct {
	domain.Batch
	Degraded bool `json:"degraded"`
}

func newBatchPayload(b *domain.Batch) batchPayload {
	return batchPayload{Batch: *b, Degraded: b.Degraded()}
}

func (rt *Router) createBatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	docType, ok := domain.ParseDocumentType(r.FormValue("document_type"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("unknown document type %q", r.FormValue("document_type")),
		})
		return
	}

	req := ports.BatchIntakeRequest{
		Name:         strings.TrimSpace(r.FormValue("name")),
		Description:  r.FormValue("description"),
		DocumentType: docType,
		OwnerID:      strings.TrimSpace(r.FormValue("owner_id")),
	}

	headers := r.MultipartForm.File["files"]
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": fmt.Sprintf("open uploaded file %q", header.Filename),
			})
			return
		}
		defer file.Close()
		req.Files = append(req.Files, ports.FileUpload{
			Filename: header.Filename,
			Data:     file,
		})
	}

	batch, err := rt.intake.CreateBatch(r.Context(), req)
	if rt.metrics != nil {
		rt.metrics.RecordBatchSubmit(serviceName, len(req.Files), err)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, newBatchPayload(batch))
}

func (rt *Router) listBatches(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)

	batches, total, err := rt.batches.List(r.Context(), limit, (page-1)*limit)
	if err != nil {
		writeError(w, err)
		return
	}

	payloads := make([]batchPayload, 0, len(batches))
	for i := range batches {
		payloads = append(payloads, newBatchPayload(&batches[i]))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"batches":    payloads,
		"pagination": newPagination(page, limit, total),
	})
}

func (rt *Router) getBatch(w http.ResponseWriter, r *http.Request) {
	batch, err := rt.batches.GetByID(r.Context(), chi.URLParam(r, "batch_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newBatchPayload(batch))
}

func (rt *Router) deleteBatch(w http.ResponseWriter, r *http.Request) {
	if err := rt.intake.DeleteBatch(r.Context(), chi.URLParam(r, "batch_id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) exportBatch(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batch_id")
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	data, contentType, err := rt.exports.ExportBatch(r.Context(), batchID, format)
	if rt.metrics != nil {
		rt.metrics.RecordExport(serviceName, format, err)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=batch_%s.%s", batchID, format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
