// Package httpapi implements the HTTP surface of the search service.
//
// Routes:
//
//	GET /jobs/search → ranked, paginated job search
//	               q=<term> [job_type=] [location=] [min_salary=]
//	               [experience_level=] [page=] [page_size=]
//
// Malformed optional filters degrade to "filter absent" — the endpoint
// never answers 4xx for them. A blank q answers an empty result page.
package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"nexus/search-service/internal/model"
	"nexus/search-service/internal/search"
	"nexus/search-service/internal/warmer"
)

// ─── Response types ─────────────────────────────────────────────────────────

// jobJSON is the wire shape of one result. Rank and similarity stay
// internal — they order the list but are not part of the contract.
type jobJSON struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Requirements    string    `json:"requirements"`
	Categories      []string  `json:"categories"`
	Location        string    `json:"location"`
	JobType         string    `json:"jobType"`
	MinSalary       int       `json:"minSalary"`
	MaxSalary       int       `json:"maxSalary"`
	ExperienceLevel string    `json:"experienceLevel"`
	CreatedAt       time.Time `json:"createdAt"`
}

// searchResponse is the paginated envelope.
type searchResponse struct {
	Count    int       `json:"count"`
	Next     *string   `json:"next"`
	Previous *string   `json:"previous"`
	Results  []jobJSON `json:"results"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable"`
}

// ─── Handler ────────────────────────────────────────────────────────────────

// Handler holds shared dependencies. The warmer is optional.
type Handler struct {
	engine *search.Engine
	warmer *warmer.Warmer
}

// NewHandler returns a configured Handler. Pass a nil warmer to
// disable traffic observation.
func NewHandler(engine *search.Engine, w *warmer.Warmer) *Handler {
	return &Handler{engine: engine, warmer: w}
}

// RegisterRoutes mounts all search-service routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/jobs/search", h.handleSearch)
}

// ─── Search ─────────────────────────────────────────────────────────────────

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	params := r.URL.Query()
	raw := search.RawQuery{
		Term:            params.Get("q"),
		JobType:         params.Get("job_type"),
		Location:        params.Get("location"),
		MinSalary:       params.Get("min_salary"),
		ExperienceLevel: params.Get("experience_level"),
	}
	page := atoiDefault(params.Get("page"), 1)
	pageSize := atoiDefault(params.Get("page_size"), search.DefaultPageSize)

	q, ok := search.Normalize(raw)
	if !ok {
		// Blank query: defined empty response, no engine involvement.
		writeJSON(w, http.StatusOK, searchResponse{Count: 0, Results: []jobJSON{}})
		return
	}

	result, err := h.engine.Search(r.Context(), q, page, pageSize)
	if err != nil {
		if errors.Is(err, search.ErrStoreUnavailable) {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{
				Error:     "search temporarily unavailable",
				Retryable: true,
			})
			return
		}
		log.Printf("[httpapi] Search error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	if h.warmer != nil {
		h.warmer.Observe(q, result.Page, result.PageSize)
	}

	writeJSON(w, http.StatusOK, renderPage(r.URL, result))
}

// renderPage converts an internal result page into the wire envelope,
// deriving next/previous links from the request URL.
func renderPage(u *url.URL, p model.Page) searchResponse {
	resp := searchResponse{
		Count:   p.TotalCount,
		Results: make([]jobJSON, 0, len(p.Items)),
	}
	for _, r := range p.Items {
		resp.Results = append(resp.Results, jobJSON{
			ID:              r.Job.ID.String(),
			Title:           r.Job.Title,
			Description:     r.Job.Description,
			Requirements:    r.Job.Requirements,
			Categories:      r.Job.Categories,
			Location:        r.Job.Location,
			JobType:         string(r.Job.JobType),
			MinSalary:       r.Job.MinSalary,
			MaxSalary:       r.Job.MaxSalary,
			ExperienceLevel: string(r.Job.ExperienceLevel),
			CreatedAt:       r.Job.CreatedAt,
		})
	}
	if p.HasNext() {
		resp.Next = pageURL(u, p.Page+1)
	}
	if p.HasPrevious() {
		resp.Previous = pageURL(u, p.Page-1)
	}
	return resp
}

// pageURL returns the request URL rewritten to point at page n.
func pageURL(u *url.URL, n int) *string {
	clone := *u
	params := clone.Query()
	params.Set("page", strconv.Itoa(n))
	clone.RawQuery = params.Encode()
	s := clone.String()
	return &s
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[httpapi] Encode error: %v", err)
	}
}
