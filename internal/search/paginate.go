package search

import "nexus/search-service/internal/model"

const (
	// DefaultPageSize matches the job service's list endpoints.
	DefaultPageSize = 20
	// MaxPageSize caps what a client may request per page.
	MaxPageSize = 100
)

// clampPageParams normalizes raw pagination values: pages are 1-based,
// sizes fall back to the default and are capped at the maximum.
func clampPageParams(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// paginate slices the full ranked result set into one Page. A page
// past the end yields an empty item list but keeps the total count, so
// clients can still render pagination controls.
func paginate(results []model.RankedResult, page, pageSize int) model.Page {
	p := model.Page{
		Items:      []model.RankedResult{},
		TotalCount: len(results),
		Page:       page,
		PageSize:   pageSize,
	}

	start := (page - 1) * pageSize
	if start >= len(results) {
		return p
	}
	end := start + pageSize
	if end > len(results) {
		end = len(results)
	}
	p.Items = results[start:end]
	return p
}
