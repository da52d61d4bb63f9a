package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/kwondev/buyee-mercari-scraper/internal/models"
	"github.com/kwondev/buyee-mercari-scraper/internal/pipeline"
	"github.com/kwondev/buyee-mercari-scraper/internal/scraper"
)

type Handlers struct {
	crawler *scraper.Crawler
	logger  *slog.Logger
}

func NewHandlers(crawler *scraper.Crawler, logger *slog.Logger) *Handlers {
	return &Handlers{
		crawler: crawler,
		logger:  logger.With("component", "api"),
	}
}

// CrawlRequest asks for a one-off crawl of a single keyword, bypassing
// the sheet. Useful for checking what a keyword would yield before
// adding it to the code sheet.
type CrawlRequest struct {
	Keyword string `json:"keyword"`
	Ceiling *int   `json:"ceiling,omitempty"`
}

type CrawlResponse struct {
	Keyword string             `json:"keyword"`
	Rows    []models.OutputRow `json:"rows"`
	Error   string             `json:"error,omitempty"`
}

// Crawl runs one keyword through the full extract-and-filter sequence
// and returns the rows that would have been written. Nothing is
// persisted and the store's seen-set is not consulted.
func (h *Handlers) Crawl(w http.ResponseWriter, r *http.Request) {
	var req CrawlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Keyword == "" {
		h.respondError(w, http.StatusBadRequest, "keyword is required")
		return
	}

	task := models.SearchTask{Keyword: req.Keyword, Ceiling: req.Ceiling}

	result, err := h.crawler.Crawl(r.Context(), task)
	if err != nil {
		h.logger.Warn("ad-hoc crawl failed", "keyword", req.Keyword, "error", err)
		h.respondJSON(w, http.StatusOK, CrawlResponse{Keyword: req.Keyword, Error: err.Error()})
		return
	}

	rows := pipeline.New().Process(result, task, pipeline.NewSeenSet(nil))

	h.respondJSON(w, http.StatusOK, CrawlResponse{Keyword: req.Keyword, Rows: rows})
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
