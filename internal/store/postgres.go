// Package store provides job store implementations behind the
// search.JobStore interface: a pgx-backed Postgres store for
// production and an in-memory store for tests and local development.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"nexus/search-service/internal/model"
	"nexus/search-service/internal/search"
)

// Postgres reads candidate jobs from the shared jobs table. The table
// carries a trigger-maintained category_text column (the space-joined
// categories array, kept alongside the tsvector the job service owns);
// this store only reads it, never manages the schema.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ search.JobStore = (*Postgres)(nil)

// NewPostgres returns a Postgres store on the given pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// FindCandidates fetches job rows for ranking. Plan filters are pushed
// down as WHERE predicates to shrink the transferred set; the engine
// re-applies them regardless, so pushdown is purely an optimization.
func (s *Postgres) FindCandidates(ctx context.Context, plan search.Plan) ([]search.Candidate, error) {
	q := `SELECT id, title, description, requirements,
	             COALESCE(categories, '{}'), COALESCE(category_text, ''),
	             location, job_type, min_salary, max_salary,
	             experience_level, is_active, created_at
	      FROM jobs`

	var (
		conds []string
		args  []interface{}
	)
	if plan.OnlyActive {
		conds = append(conds, "is_active")
	}
	if plan.JobType != nil {
		args = append(args, string(*plan.JobType))
		conds = append(conds, fmt.Sprintf("job_type = $%d", len(args)))
	}
	if plan.MinSalary != nil {
		args = append(args, *plan.MinSalary)
		conds = append(conds, fmt.Sprintf("min_salary >= $%d", len(args)))
	}
	if plan.ExperienceLevel != nil {
		args = append(args, string(*plan.ExperienceLevel))
		conds = append(conds, fmt.Sprintf("experience_level = $%d", len(args)))
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var cands []search.Candidate
	for rows.Next() {
		var (
			rec          model.JobRecord
			jobType      string
			experience   string
			categoryText string
		)
		if err := rows.Scan(
			&rec.ID, &rec.Title, &rec.Description, &rec.Requirements,
			&rec.Categories, &categoryText,
			&rec.Location, &jobType, &rec.MinSalary, &rec.MaxSalary,
			&experience, &rec.IsActive, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		rec.JobType = model.JobType(jobType)
		rec.ExperienceLevel = model.ExperienceLevel(experience)

		cands = append(cands, search.Candidate{
			Job: rec,
			Doc: search.NewDocument(rec.Title, rec.Description, rec.Requirements, categoryText),
		})
	}
	return cands, rows.Err()
}
