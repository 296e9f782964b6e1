package search

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"nexus/search-service/internal/cache"
	"nexus/search-service/internal/model"
)

// resultTTL is how long a computed result page stays cached. Writes to
// the jobs table do NOT invalidate entries — staleness up to the TTL is
// accepted, same as the job service's own list caching.
const resultTTL = 300 * time.Second

// similarityThreshold is the minimum per-field trigram similarity that
// qualifies a candidate on its own, without a full-text match.
const similarityThreshold = 0.2

// Plan is the explicit candidate-selection request handed to the job
// store. Filters are optional pushdowns — the engine re-applies every
// filter itself, so a store that ignores them is still correct.
type Plan struct {
	Term            string
	OnlyActive      bool
	JobType         *model.JobType
	MinSalary       *int
	ExperienceLevel *model.ExperienceLevel
}

// Candidate is one job record together with its precomputed searchable
// document.
type Candidate struct {
	Job model.JobRecord
	Doc Document
}

// JobStore supplies candidate records for ranking. Implementations
// must be safe for concurrent use and honor the context deadline.
type JobStore interface {
	FindCandidates(ctx context.Context, plan Plan) ([]Candidate, error)
}

// Engine ranks job records for a normalized query and memoizes result
// pages. It holds no per-request state; concurrent searches are
// independent. The cache is the only shared resource and is injected,
// never a package global.
type Engine struct {
	store JobStore
	cache cache.Store
	group singleflight.Group
}

// NewEngine returns an Engine backed by the given job store and cache.
func NewEngine(store JobStore, c cache.Store) *Engine {
	return &Engine{store: store, cache: c}
}

// Search returns one page of ranked results for q.
//
// A blank term is a defined no-op: an empty page comes back without a
// single store or cache call. Otherwise the cache is consulted first;
// on a miss the page is computed, cached for resultTTL and returned.
// Concurrent misses for the same fingerprint compute once.
func (e *Engine) Search(ctx context.Context, q SearchQuery, page, pageSize int) (model.Page, error) {
	page, pageSize = clampPageParams(page, pageSize)

	if strings.TrimSpace(q.Term) == "" {
		return emptyPage(page, pageSize), nil
	}
	if err := validateFilters(q); err != nil {
		return model.Page{}, err
	}

	key := Fingerprint(q, page, pageSize)

	raw, ok, err := e.cache.Get(ctx, key)
	if err != nil {
		return model.Page{}, fmt.Errorf("%w: cache get: %v", ErrStoreUnavailable, err)
	}
	if ok {
		var p model.Page
		if err := json.Unmarshal(raw, &p); err == nil {
			return p, nil
		}
		// Undecodable entry: fall through and recompute.
	}

	v, err, _ := e.group.Do(key, func() (interface{}, error) {
		return e.compute(ctx, q, key, page, pageSize)
	})
	if err != nil {
		return model.Page{}, err
	}
	return v.(model.Page), nil
}

// Refresh recomputes the page for q and overwrites the cache entry
// unconditionally. Used by the cache warmer to renew hot entries
// before they expire.
func (e *Engine) Refresh(ctx context.Context, q SearchQuery, page, pageSize int) error {
	page, pageSize = clampPageParams(page, pageSize)
	if strings.TrimSpace(q.Term) == "" {
		return nil
	}
	key := Fingerprint(q, page, pageSize)
	_, err := e.compute(ctx, q, key, page, pageSize)
	return err
}

// compute ranks, paginates and caches. The cache is only written on
// full success — a store failure leaves no partial entry behind.
func (e *Engine) compute(ctx context.Context, q SearchQuery, key string, page, pageSize int) (model.Page, error) {
	ranked, err := e.rank(ctx, q)
	if err != nil {
		return model.Page{}, err
	}

	p := paginate(ranked, page, pageSize)

	buf, err := json.Marshal(p)
	if err != nil {
		return model.Page{}, fmt.Errorf("marshal page: %w", err)
	}
	if err := e.cache.Set(ctx, key, buf, resultTTL); err != nil {
		return model.Page{}, fmt.Errorf("%w: cache set: %v", ErrStoreUnavailable, err)
	}
	return p, nil
}

// rank fetches candidates and produces the full ordered result set.
//
// A candidate is included when any one clause holds: the full-text
// document matches every query token, the title or location trigram
// similarity exceeds the threshold, or the term equals one of the
// category tags (exact membership — deliberately not similarity-based,
// unlike title and location). Present filters are then applied
// conjunctively.
func (e *Engine) rank(ctx context.Context, q SearchQuery) ([]model.RankedResult, error) {
	plan := Plan{
		Term:            q.Term,
		OnlyActive:      true,
		JobType:         q.JobType,
		MinSalary:       q.MinSalary,
		ExperienceLevel: q.ExperienceLevel,
	}

	cands, err := e.store.FindCandidates(ctx, plan)
	if err != nil {
		return nil, fmt.Errorf("%w: find candidates: %v", ErrStoreUnavailable, err)
	}

	tokens := Tokenize(q.Term)
	locFilter := strings.ToLower(q.Location)

	results := make([]model.RankedResult, 0, len(cands))
	for _, c := range cands {
		titleSim := Similarity(c.Job.Title, q.Term)
		locSim := Similarity(c.Job.Location, q.Term)

		included := c.Doc.Matches(tokens) ||
			titleSim > similarityThreshold ||
			locSim > similarityThreshold ||
			hasCategory(c.Job.Categories, q.Term)
		if !included {
			continue
		}

		if q.JobType != nil && c.Job.JobType != *q.JobType {
			continue
		}
		if locFilter != "" && !strings.Contains(strings.ToLower(c.Job.Location), locFilter) {
			continue
		}
		if q.MinSalary != nil && c.Job.MinSalary < *q.MinSalary {
			continue
		}
		if q.ExperienceLevel != nil && c.Job.ExperienceLevel != *q.ExperienceLevel {
			continue
		}

		results = append(results, model.RankedResult{
			Job:                c.Job,
			Rank:               c.Doc.Rank(tokens),
			Similarity:         titleSim + locSim,
			TitleSimilarity:    titleSim,
			LocationSimilarity: locSim,
		})
	}

	// Rank desc, then title similarity, then location similarity.
	// Record ID breaks remaining ties so the order is stable for a
	// given store snapshot.
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Rank != b.Rank {
			return a.Rank > b.Rank
		}
		if a.TitleSimilarity != b.TitleSimilarity {
			return a.TitleSimilarity > b.TitleSimilarity
		}
		if a.LocationSimilarity != b.LocationSimilarity {
			return a.LocationSimilarity > b.LocationSimilarity
		}
		return a.Job.ID.String() < b.Job.ID.String()
	})

	return results, nil
}

// hasCategory reports exact (case-folded) membership of term in the
// tag list.
func hasCategory(tags []string, term string) bool {
	for _, tag := range tags {
		if strings.EqualFold(tag, term) {
			return true
		}
	}
	return false
}

// validateFilters guards against structurally invalid values reaching
// the ranking stage. Normalize never produces them; this protects
// callers constructing SearchQuery by hand.
func validateFilters(q SearchQuery) error {
	if q.MinSalary != nil && *q.MinSalary < 0 {
		return &InvalidFilterError{Field: "min_salary", Value: fmt.Sprintf("%d", *q.MinSalary)}
	}
	return nil
}

func emptyPage(page, pageSize int) model.Page {
	return model.Page{
		Items:    []model.RankedResult{},
		Page:     page,
		PageSize: pageSize,
	}
}
