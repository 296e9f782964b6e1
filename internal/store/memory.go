package store

import (
	"context"
	"strings"
	"sync"

	"nexus/search-service/internal/model"
	"nexus/search-service/internal/search"
)

// Memory is an in-memory search.JobStore over a fixed record slice.
// Documents are precomputed at insertion, mirroring the
// trigger-maintained columns of the Postgres store.
type Memory struct {
	mu    sync.RWMutex
	cands []search.Candidate
}

var _ search.JobStore = (*Memory)(nil)

// NewMemory returns a Memory store seeded with the given records.
func NewMemory(jobs ...model.JobRecord) *Memory {
	m := &Memory{}
	for _, j := range jobs {
		m.Add(j)
	}
	return m
}

// Add inserts one record, precomputing its searchable document.
func (m *Memory) Add(job model.JobRecord) {
	doc := search.NewDocument(
		job.Title, job.Description, job.Requirements,
		strings.Join(job.Categories, " "),
	)
	m.mu.Lock()
	m.cands = append(m.cands, search.Candidate{Job: job, Doc: doc})
	m.mu.Unlock()
}

// FindCandidates applies the plan's predicates over the stored records.
func (m *Memory) FindCandidates(_ context.Context, plan search.Plan) ([]search.Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]search.Candidate, 0, len(m.cands))
	for _, c := range m.cands {
		if plan.OnlyActive && !c.Job.IsActive {
			continue
		}
		if plan.JobType != nil && c.Job.JobType != *plan.JobType {
			continue
		}
		if plan.MinSalary != nil && c.Job.MinSalary < *plan.MinSalary {
			continue
		}
		if plan.ExperienceLevel != nil && c.Job.ExperienceLevel != *plan.ExperienceLevel {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
