// Package search implements the ranked job search engine: query
// normalization, full-text + trigram ranking, result caching and
// pagination. It talks to the job store and the cache store through
// narrow interfaces so the whole pipeline runs unchanged against
// in-memory doubles.
package search

import (
	"strconv"
	"strings"

	"nexus/search-service/internal/model"
)

// RawQuery carries the untrusted request values exactly as the HTTP
// layer received them.
type RawQuery struct {
	Term            string
	JobType         string
	Location        string
	MinSalary       string
	ExperienceLevel string
}

// SearchQuery is the normalized, immutable search request. Nil pointer
// fields mean "filter absent".
type SearchQuery struct {
	Term            string
	JobType         *model.JobType
	Location        string // empty = absent
	MinSalary       *int
	ExperienceLevel *model.ExperienceLevel
}

// Normalize turns raw request values into a SearchQuery. ok is false
// when the free-text term is blank after trimming — the caller must
// short-circuit to an empty result set without touching store or cache.
//
// Malformed optional filters (unknown job type, non-numeric or negative
// min salary, unknown experience level) are dropped, never rejected.
// A lenient no-op beats a 400 here: the worst outcome for the user is a
// less filtered result list.
func Normalize(raw RawQuery) (SearchQuery, bool) {
	term := strings.TrimSpace(raw.Term)
	if term == "" {
		return SearchQuery{}, false
	}

	q := SearchQuery{
		Term:     term,
		Location: strings.TrimSpace(raw.Location),
	}

	if jt, ok := model.ParseJobType(strings.TrimSpace(raw.JobType)); ok {
		q.JobType = &jt
	}

	if raw.MinSalary != "" {
		if v, err := strconv.Atoi(strings.TrimSpace(raw.MinSalary)); err == nil && v >= 0 {
			q.MinSalary = &v
		}
	}

	if lvl, ok := model.ParseExperienceLevel(strings.TrimSpace(raw.ExperienceLevel)); ok {
		q.ExperienceLevel = &lvl
	}

	return q, true
}
