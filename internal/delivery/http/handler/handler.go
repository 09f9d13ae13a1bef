package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-json-experiment/json"
	"go.uber.org/zap"

	"github.com/user/memorial-extractor/internal/delivery/http/request"
	"github.com/user/memorial-extractor/internal/delivery/http/response"
	"github.com/user/memorial-extractor/internal/entity"
	"github.com/user/memorial-extractor/internal/repository"
	"github.com/user/memorial-extractor/internal/usecase"
)

// ErrArchiveMissing is reported when record lookups are requested but no
// archive is configured.
var ErrArchiveMissing = errors.New("record archive not configured")

// Evicter drops a page from the cache ahead of a refreshed extraction.
type Evicter interface {
	Evict(ctx context.Context, url string) error
}

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Handler struct {
	extractor usecase.MemorialExtractor
	archive   repository.RecordArchive
	cache     Evicter
	checks    map[string]HealthCheck
	logger    *zap.Logger
}

// Option configures optional handler dependencies.
type Option func(*Handler)

// WithArchive enables GET /api/records.
func WithArchive(a repository.RecordArchive) Option {
	return func(h *Handler) { h.archive = a }
}

// WithCache lets requests with "refresh": true bypass cached pages.
func WithCache(c Evicter) Option {
	return func(h *Handler) { h.cache = c }
}

// WithHealthCheck adds a named dependency check to GET /api/health.
func WithHealthCheck(name string, check HealthCheck) Option {
	return func(h *Handler) { h.checks[name] = check }
}

func NewHandler(extractor usecase.MemorialExtractor, logger *zap.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		extractor: extractor,
		checks:    map[string]HealthCheck{},
		logger:    logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) HandleExtract(w http.ResponseWriter, r *http.Request) {
	var req request.ExtractRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validateURL(req.URL); err != nil {
		h.writeJSONError(w, "Invalid URL format", http.StatusBadRequest)
		return
	}

	if req.Refresh && h.cache != nil {
		if err := h.cache.Evict(r.Context(), req.URL); err != nil {
			h.logger.Warn("Failed to evict cached page", zap.String("url", req.URL), zap.Error(err))
		}
	}

	report, err := h.extractor.Run(r.Context(), req.URL)
	if report == nil {
		report = &usecase.Report{URL: req.URL}
	}
	resp := response.ExtractResponse{URL: req.URL, Issues: response.Issues(report.Issues)}
	if err != nil {
		h.logger.Error("Extraction failed", zap.String("url", req.URL), zap.Error(err))
		h.writeJSON(w, statusFor(err), resp)
		return
	}

	resp.Source = report.Source
	resp.Record = report.Output
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleColumns(w http.ResponseWriter, _ *http.Request) {
	cols := make([]response.ColumnResponse, 0, len(entity.OutputSchema.Columns))
	for _, c := range entity.OutputSchema.Columns {
		cols = append(cols, response.ColumnResponse{Key: c.Key, Exported: c.Export})
	}
	h.writeJSON(w, http.StatusOK, cols)
}

func (h *Handler) HandleGetRecord(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		h.writeJSONError(w, ErrArchiveMissing.Error(), http.StatusNotImplemented)
		return
	}

	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		h.writeJSONError(w, "URL query parameter is required", http.StatusBadRequest)
		return
	}
	if err := validateURL(rawURL); err != nil {
		h.writeJSONError(w, "Invalid URL format in query parameter", http.StatusBadRequest)
		return
	}

	archived, err := h.archive.FindByURL(r.Context(), rawURL)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			h.writeJSONError(w, "No record archived for the given URL", http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to load archived record", zap.String("url", rawURL), zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, response.ArchivedRecordResponse{
		URL:         archived.URL,
		ExtractedAt: archived.ExtractedAt,
		Record:      entity.OutputSchema.Project(archived.Record),
	})
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	resp := map[string]string{"status": "ok"}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.Warn("Health check failed", zap.String("dependency", name), zap.Error(err))
			resp[name] = "unavailable"
			resp["status"] = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp[name] = "ok"
	}
	h.writeJSON(w, status, resp)
}

// statusFor maps an aborted run to the HTTP status reported to the client.
func statusFor(err error) int {
	var runErr *usecase.RunError
	switch {
	case errors.As(err, &runErr) && runErr.Tag == entity.TagSave:
		return http.StatusInternalServerError
	case usecase.IsPayloadError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, repository.ErrFetchFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func validateURL(raw string) error {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("unsupported scheme")
	}
	return nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.MarshalWrite(w, data); err != nil {
		h.logger.Error("Failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
