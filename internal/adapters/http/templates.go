package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dkotenko/docstore/internal/core/domain"
)

func (rt *Router) createTemplate(w http.ResponseWriter, r *http.Request) {
	var tpl domain.Template
	if err := json.NewDecoder(r.Body).Decode(&tpl); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	created, err := rt.templates.Create(r.Context(), &tpl)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (rt *Router) listTemplates(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)

	templates, total, err := rt.templates.List(r.Context(), limit, (page-1)*limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"templates":  templates,
		"pagination": newPagination(page, limit, total),
	})
}

func (rt *Router) getTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := rt.templates.Get(r.Context(), chi.URLParam(r, "template_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (rt *Router) updateTemplate(w http.ResponseWriter, r *http.Request) {
	var tpl domain.Template
	if err := json.NewDecoder(r.Body).Decode(&tpl); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	tpl.ID = chi.URLParam(r, "template_id")

	updated, err := rt.templates.Update(r.Context(), &tpl)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (rt *Router) deleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := rt.templates.Delete(r.Context(), chi.URLParam(r, "template_id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
