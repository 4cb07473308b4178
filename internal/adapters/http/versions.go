package httpadapter

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (rt *Router) createVersion(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "document_id")

	var req struct {
		Content    map[string]any `json:"content"`
		ChangeNote map[string]any `json:"change_note"`
		CreatedBy  string         `json:"created_by"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	version, err := rt.versions.CreateVersion(r.Context(), documentID, req.Content, req.ChangeNote, req.CreatedBy)
	if rt.metrics != nil {
		rt.metrics.RecordVersionWrite(serviceName, err)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, version)
}

func (rt *Router) listVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := rt.versions.ListVersions(r.Context(), chi.URLParam(r, "document_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"versions": versions})
}

func (rt *Router) getVersion(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(chi.URLParam(r, "version_number"))
	if err != nil || number < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "version number must be a positive integer"})
		return
	}

	version, err := rt.versions.GetVersion(r.Context(), chi.URLParam(r, "document_id"), number)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, version)
}

func (rt *Router) compareVersions(w http.ResponseWriter, r *http.Request) {
	v1 := queryInt(r, "v1", 0)
	v2 := queryInt(r, "v2", 0)
	if v1 < 1 || v2 < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query parameters v1 and v2 are required"})
		return
	}

	diff, err := rt.versions.CompareVersions(r.Context(), chi.URLParam(r, "document_id"), v1, v2)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, diff)
}
