package httpadapter

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dkotenko/docstore/internal/config"
	"github.com/dkotenko/docstore/internal/core/ports"
	"github.com/dkotenko/docstore/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	intake    ports.BatchIntake
	batches   ports.BatchRepository
	documents ports.DocumentRepository
	storage   ports.ObjectStorage
	versions  ports.VersionService
	exports   ports.ExportService
	templates ports.TemplateService
	dashboard ports.DashboardService

	metrics *metrics.HTTPServerMetrics
	cfg     config.Config
}

type Deps struct {
	Intake    ports.BatchIntake
	Batches   ports.BatchRepository
	Documents ports.DocumentRepository
	Storage   ports.ObjectStorage
	Versions  ports.VersionService
	Exports   ports.ExportService
	Templates ports.TemplateService
	Dashboard ports.DashboardService
	Metrics   *metrics.HTTPServerMetrics
}

func NewRouter(deps Deps, cfg config.Config) *Router {
	return &Router{
		intake:    deps.Intake,
		batches:   deps.Batches,
		documents: deps.Documents,
		storage:   deps.Storage,
		versions:  deps.Versions,
		exports:   deps.Exports,
		templates: deps.Templates,
		dashboard: deps.Dashboard,
		metrics:   deps.Metrics,
		cfg:       cfg,
	}
}

func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", rt.healthz)
	if rt.metrics != nil {
		r.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(bearerAuthMiddleware(rt.cfg.APIKey))
		r.Use(rateLimitMiddleware(rt.cfg.RateLimitRPS, rt.cfg.RateLimitBurst))

		r.Route("/batches", func(r chi.Router) {
			r.Post("/", rt.createBatch)
			r.Get("/", rt.listBatches)
			r.Get("/{batch_id}", rt.getBatch)
			r.Delete("/{batch_id}", rt.deleteBatch)
			r.Get("/{batch_id}/export", rt.exportBatch)
		})

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", rt.uploadDocument)
			r.Get("/", rt.listDocuments)
			r.Get("/{document_id}", rt.getDocument)
			r.Delete("/{document_id}", rt.deleteDocument)
			r.Get("/{document_id}/export", rt.exportDocument)

			r.Post("/{document_id}/versions", rt.createVersion)
			r.Get("/{document_id}/versions", rt.listVersions)
			r.Get("/{document_id}/versions/compare", rt.compareVersions)
			r.Get("/{document_id}/versions/{version_number}", rt.getVersion)
		})

		r.Route("/templates", func(r chi.Router) {
			r.Post("/", rt.createTemplate)
			r.Get("/", rt.listTemplates)
			r.Get("/{template_id}", rt.getTemplate)
			r.Put("/{template_id}", rt.updateTemplate)
			r.Delete("/{template_id}", rt.deleteTemplate)
		})

		r.Get("/dashboard/stats", rt.dashboardStats)
	})

	var handler http.Handler = r
	handler = backpressureMiddleware(handler, maxConcurrentRequests, backpressureWait)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) dashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := rt.dashboard.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func parsePagination(r *http.Request) (page, limit int) {
	page = queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	limit = queryInt(r, "limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func newPagination(page, limit, total int) pagination {
	return pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

const (
	maxConcurrentRequests = 256
	backpressureWait      = 100 * time.Millisecond
	maxMultipartMemory    = 64 << 20
)
