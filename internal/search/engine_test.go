package search_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"nexus/search-service/internal/cache"
	"nexus/search-service/internal/model"
	"nexus/search-service/internal/search"
	"nexus/search-service/internal/store"
)

// ─── Test doubles ───────────────────────────────────────────────────────────

// countingStore wraps a JobStore and counts FindCandidates calls.
type countingStore struct {
	inner search.JobStore
	calls int
}

func (s *countingStore) FindCandidates(ctx context.Context, plan search.Plan) ([]search.Candidate, error) {
	s.calls++
	return s.inner.FindCandidates(ctx, plan)
}

// countingCache wraps a cache.Store and counts gets and sets.
type countingCache struct {
	inner cache.Store
	gets  int
	sets  int
}

func (c *countingCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.gets++
	return c.inner.Get(ctx, key)
}

func (c *countingCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.sets++
	return c.inner.Set(ctx, key, value, ttl)
}

// failingStore always errors, simulating an unreachable database.
type failingStore struct{}

func (failingStore) FindCandidates(context.Context, search.Plan) ([]search.Candidate, error) {
	return nil, fmt.Errorf("connection refused")
}

// failingCache always errors on Get.
type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, fmt.Errorf("connection refused")
}

func (failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return fmt.Errorf("connection refused")
}

// ─── Fixtures ───────────────────────────────────────────────────────────────

func job(title, desc, location string, jt model.JobType, minSalary int, lvl model.ExperienceLevel, cats ...string) model.JobRecord {
	return model.JobRecord{
		ID:              uuid.New(),
		Title:           title,
		Description:     desc,
		Requirements:    "",
		Categories:      cats,
		Location:        location,
		JobType:         jt,
		MinSalary:       minSalary,
		MaxSalary:       minSalary + 20000,
		ExperienceLevel: lvl,
		IsActive:        true,
		CreatedAt:       time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

// fixtureJobs is the 5-record snapshot used across engine tests:
// two records satisfy (q="backend engineer", Full-time, >= 50000),
// three fail at least one clause.
func fixtureJobs() []model.JobRecord {
	return []model.JobRecord{
		job("Backend Engineer", "Build APIs.", "New York", model.JobTypeFullTime, 60000, model.ExperienceMid, "Engineering"),
		job("Senior Backend Engineer", "Lead backend engineer for our backend platform.", "Remote", model.JobTypeFullTime, 95000, model.ExperienceSenior, "Engineering"),
		job("Backend Engineer", "Part-time contract work.", "Austin", model.JobTypePartTime, 55000, model.ExperienceMid),
		job("Backend Engineer", "Junior position.", "Boston", model.JobTypeFullTime, 40000, model.ExperienceEntry),
		job("Data Scientist", "Pandas and notebooks.", "Chicago", model.JobTypeFullTime, 80000, model.ExperienceMid, "Data"),
	}
}

type engineFixture struct {
	engine *search.Engine
	store  *countingStore
	cache  *countingCache
	clock  *time.Time
}

func newEngineFixture(jobs ...model.JobRecord) *engineFixture {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	f := &engineFixture{clock: &now}
	f.store = &countingStore{inner: store.NewMemory(jobs...)}
	f.cache = &countingCache{inner: cache.NewMemoryWithClock(func() time.Time { return *f.clock })}
	f.engine = search.NewEngine(f.store, f.cache)
	return f
}

func (f *engineFixture) advance(d time.Duration) {
	*f.clock = f.clock.Add(d)
}

func mustNormalize(t *testing.T, raw search.RawQuery) search.SearchQuery {
	t.Helper()
	q, ok := search.Normalize(raw)
	if !ok {
		t.Fatalf("Normalize(%+v) unexpectedly rejected", raw)
	}
	return q
}

func resultIDs(p model.Page) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(p.Items))
	for _, r := range p.Items {
		ids = append(ids, r.Job.ID)
	}
	return ids
}

// ─── Blank query short-circuit ──────────────────────────────────────────────

func TestSearch_BlankTerm_NoStoreOrCacheCalls(t *testing.T) {
	f := newEngineFixture(fixtureJobs()...)

	p, err := f.engine.Search(context.Background(), search.SearchQuery{Term: "   "}, 1, 20)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(p.Items) != 0 || p.TotalCount != 0 {
		t.Errorf("blank term returned %d items (total %d), want empty", len(p.Items), p.TotalCount)
	}
	if f.store.calls != 0 {
		t.Errorf("job store called %d times for a blank term, want 0", f.store.calls)
	}
	if f.cache.gets != 0 || f.cache.sets != 0 {
		t.Errorf("cache touched (%d gets, %d sets) for a blank term, want none", f.cache.gets, f.cache.sets)
	}
}

// ─── Combined filters ───────────────────────────────────────────────────────

func TestSearch_BackendEngineerFullTimeAboveSalary(t *testing.T) {
	f := newEngineFixture(fixtureJobs()...)
	q := mustNormalize(t, search.RawQuery{
		Term:      "backend engineer",
		JobType:   "Full-time",
		MinSalary: "50000",
	})

	p, err := f.engine.Search(context.Background(), q, 1, 20)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if p.TotalCount != 2 {
		t.Fatalf("TotalCount = %d, want 2 (got %d items)", p.TotalCount, len(p.Items))
	}

	// The senior posting repeats the query terms in title and
	// description, so it must rank first.
	if p.Items[0].Job.Title != "Senior Backend Engineer" {
		t.Errorf("first result = %q, want Senior Backend Engineer", p.Items[0].Job.Title)
	}
	if p.Items[1].Job.Title != "Backend Engineer" {
		t.Errorf("second result = %q, want Backend Engineer", p.Items[1].Job.Title)
	}
	if p.Items[0].Rank <= p.Items[1].Rank {
		t.Errorf("results not ordered by descending rank: %v <= %v", p.Items[0].Rank, p.Items[1].Rank)
	}
}

// ─── Typo inclusion via trigram similarity ──────────────────────────────────

func TestSearch_TypoIncludedThroughTitleSimilarity(t *testing.T) {
	f := newEngineFixture(
		job("Senior Engineer", "Own the platform.", "Remote", model.JobTypeFullTime, 90000, model.ExperienceSenior),
	)
	q := mustNormalize(t, search.RawQuery{Term: "enginer"})

	p, err := f.engine.Search(context.Background(), q, 1, 20)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if p.TotalCount != 1 {
		t.Fatalf("TotalCount = %d, want 1 — typo should match via title similarity", p.TotalCount)
	}
	if p.Items[0].Rank != 0 {
		t.Errorf("Rank = %v, want 0 (full-text predicate must not match the typo)", p.Items[0].Rank)
	}
	if p.Items[0].TitleSimilarity <= 0.2 {
		t.Errorf("TitleSimilarity = %v, want > 0.2", p.Items[0].TitleSimilarity)
	}
}

// ─── Category membership is exact, not fuzzy ────────────────────────────────

func TestSearch_CategoryExactMembership(t *testing.T) {
	f := newEngineFixture(
		job("Staff Accountant", "Close the books.", "Dallas", model.JobTypeFullTime, 70000, model.ExperienceMid, "Finance"),
	)

	// Exact tag (case-folded) qualifies the record.
	q := mustNormalize(t, search.RawQuery{Term: "finance"})
	p, err := f.engine.Search(context.Background(), q, 1, 20)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if p.TotalCount != 1 {
		t.Errorf("exact category term: TotalCount = %d, want 1", p.TotalCount)
	}

	// A near-miss on the tag does not — category matching is not
	// similarity-based.
	q = mustNormalize(t, search.RawQuery{Term: "financ"})
	p, err = f.engine.Search(context.Background(), q, 1, 20)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if p.TotalCount != 0 {
		t.Errorf("fuzzy category term: TotalCount = %d, want 0", p.TotalCount)
	}
}

// ─── Caching ────────────────────────────────────────────────────────────────

func TestSearch_SecondCallWithinTTLHitsCache(t *testing.T) {
	f := newEngineFixture(fixtureJobs()...)
	q := mustNormalize(t, search.RawQuery{Term: "backend engineer"})

	first, err := f.engine.Search(context.Background(), q, 1, 20)
	if err != nil {
		t.Fatalf("first Search: %v", err)
	}
	if f.store.calls != 1 {
		t.Fatalf("store calls after first search = %d, want 1", f.store.calls)
	}

	f.advance(299 * time.Second)

	second, err := f.engine.Search(context.Background(), q, 1, 20)
	if err != nil {
		t.Fatalf("second Search: %v", err)
	}
	if f.store.calls != 1 {
		t.Errorf("store calls after cached search = %d, want 1 (cache hit expected)", f.store.calls)
	}

	a, b := resultIDs(first), resultIDs(second)
	if len(a) != len(b) {
		t.Fatalf("cached result length %d != computed length %d", len(b), len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("cached result diverged at %d: %s != %s", i, b[i], a[i])
		}
	}
}

func TestSearch_CacheExpiresAfterTTL(t *testing.T) {
	f := newEngineFixture(fixtureJobs()...)
	q := mustNormalize(t, search.RawQuery{Term: "backend engineer"})

	if _, err := f.engine.Search(context.Background(), q, 1, 20); err != nil {
		t.Fatalf("first Search: %v", err)
	}

	f.advance(301 * time.Second)

	if _, err := f.engine.Search(context.Background(), q, 1, 20); err != nil {
		t.Fatalf("post-expiry Search: %v", err)
	}
	if f.store.calls != 2 {
		t.Errorf("store calls after TTL expiry = %d, want 2 (recompute expected)", f.store.calls)
	}
}

func TestSearch_DifferentPagesCacheSeparately(t *testing.T) {
	f := newEngineFixture(fixtureJobs()...)
	q := mustNormalize(t, search.RawQuery{Term: "backend engineer"})

	if _, err := f.engine.Search(context.Background(), q, 1, 2); err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if _, err := f.engine.Search(context.Background(), q, 2, 2); err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if f.store.calls != 2 {
		t.Errorf("store calls = %d, want 2 — pages must not share cache entries", f.store.calls)
	}
}

// ─── Determinism ────────────────────────────────────────────────────────────

func TestSearch_DeterministicOrdering(t *testing.T) {
	jobs := fixtureJobs()
	q := mustNormalize(t, search.RawQuery{Term: "backend engineer"})

	// Fresh engine per run so every run computes from scratch.
	var baseline []uuid.UUID
	for run := 0; run < 5; run++ {
		f := newEngineFixture(jobs...)
		p, err := f.engine.Search(context.Background(), q, 1, 20)
		if err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
		ids := resultIDs(p)
		if run == 0 {
			baseline = ids
			continue
		}
		if len(ids) != len(baseline) {
			t.Fatalf("run %d: %d results, want %d", run, len(ids), len(baseline))
		}
		for i := range ids {
			if ids[i] != baseline[i] {
				t.Fatalf("run %d: ordering diverged at position %d", run, i)
			}
		}
	}
}

// ─── Conjunctive filters ────────────────────────────────────────────────────

func TestSearch_AddingFiltersNeverGrowsResults(t *testing.T) {
	jobs := fixtureJobs()
	base := mustNormalize(t, search.RawQuery{Term: "backend engineer"})

	count := func(q search.SearchQuery) int {
		f := newEngineFixture(jobs...)
		p, err := f.engine.Search(context.Background(), q, 1, 100)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		return p.TotalCount
	}

	baseline := count(base)
	narrowed := []search.RawQuery{
		{Term: "backend engineer", JobType: "Full-time"},
		{Term: "backend engineer", MinSalary: "50000"},
		{Term: "backend engineer", Location: "New York"},
		{Term: "backend engineer", ExperienceLevel: "Senior-level"},
		{Term: "backend engineer", JobType: "Full-time", MinSalary: "50000", ExperienceLevel: "Mid-level"},
	}
	for _, raw := range narrowed {
		if got := count(mustNormalize(t, raw)); got > baseline {
			t.Errorf("filters %+v grew results: %d > %d", raw, got, baseline)
		}
	}
}

// ─── Inactive records ───────────────────────────────────────────────────────

func TestSearch_InactiveJobsExcluded(t *testing.T) {
	inactive := job("Backend Engineer", "Closed posting.", "Remote", model.JobTypeFullTime, 60000, model.ExperienceMid)
	inactive.IsActive = false

	f := newEngineFixture(inactive)
	q := mustNormalize(t, search.RawQuery{Term: "backend engineer"})

	p, err := f.engine.Search(context.Background(), q, 1, 20)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if p.TotalCount != 0 {
		t.Errorf("inactive job surfaced in results (count %d)", p.TotalCount)
	}
}

// ─── Failure propagation ────────────────────────────────────────────────────

func TestSearch_StoreFailureIsRetryable(t *testing.T) {
	engine := search.NewEngine(failingStore{}, cache.NewMemory())
	q := mustNormalize(t, search.RawQuery{Term: "backend"})

	_, err := engine.Search(context.Background(), q, 1, 20)
	if !errors.Is(err, search.ErrStoreUnavailable) {
		t.Errorf("store failure error = %v, want ErrStoreUnavailable", err)
	}
}

func TestSearch_CacheFailureIsRetryable(t *testing.T) {
	engine := search.NewEngine(&countingStore{inner: store.NewMemory(fixtureJobs()...)}, failingCache{})
	q := mustNormalize(t, search.RawQuery{Term: "backend"})

	_, err := engine.Search(context.Background(), q, 1, 20)
	if !errors.Is(err, search.ErrStoreUnavailable) {
		t.Errorf("cache failure error = %v, want ErrStoreUnavailable", err)
	}
}

func TestSearch_NoCacheWriteOnStoreFailure(t *testing.T) {
	c := &countingCache{inner: cache.NewMemory()}
	engine := search.NewEngine(failingStore{}, c)
	q := mustNormalize(t, search.RawQuery{Term: "backend"})

	_, _ = engine.Search(context.Background(), q, 1, 20)
	if c.sets != 0 {
		t.Errorf("cache written %d times despite store failure, want 0", c.sets)
	}
}

// ─── Hand-built invalid filters ─────────────────────────────────────────────

func TestSearch_NegativeSalaryRejected(t *testing.T) {
	f := newEngineFixture(fixtureJobs()...)
	bad := -5
	q := search.SearchQuery{Term: "backend", MinSalary: &bad}

	_, err := f.engine.Search(context.Background(), q, 1, 20)
	var ife *search.InvalidFilterError
	if !errors.As(err, &ife) {
		t.Fatalf("error = %v, want InvalidFilterError", err)
	}
	if f.store.calls != 0 {
		t.Errorf("store called despite invalid filter")
	}
}
