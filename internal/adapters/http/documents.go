package httpadapter

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dkotenko/docstore/internal/core/domain"
	"github.com/dkotenko/docstore/internal/core/ports"
)

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	docType, ok := domain.ParseDocumentType(r.FormValue("document_type"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("unknown document type %q", r.FormValue("document_type")),
		})
		return
	}

	doc, err := rt.intake.UploadDocument(r.Context(), ports.SingleUploadRequest{
		Filename:     header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		DocumentType: docType,
		OwnerID:      strings.TrimSpace(r.FormValue("owner_id")),
		Data:         file,
	})
	if rt.metrics != nil {
		rt.metrics.RecordUpload(serviceName, err)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)
	batchID := r.URL.Query().Get("batch_id")

	docs, total, err := rt.documents.List(r.Context(), batchID, limit, (page-1)*limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"documents":  docs,
		"pagination": newPagination(page, limit, total),
	})
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := rt.documents.GetByID(r.Context(), chi.URLParam(r, "document_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) deleteDocument(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "document_id")

	doc, err := rt.documents.GetByID(r.Context(), documentID)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := rt.documents.Delete(r.Context(), documentID); err != nil {
		writeError(w, err)
		return
	}
	if doc.StoragePath != "" {
		if err := rt.storage.RemoveAll(r.Context(), doc.StoragePath); err != nil {
			slog.Warn("document storage cleanup failed", "document_id", documentID, "error", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) exportDocument(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "document_id")
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	version := queryInt(r, "version", 0)

	data, contentType, err := rt.exports.ExportDocument(r.Context(), documentID, format, version)
	if rt.metrics != nil {
		rt.metrics.RecordExport(serviceName, format, err)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=document_%s.%s", documentID, format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
