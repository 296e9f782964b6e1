// Package model defines shared data structures for the search service.
package model

import (
	"time"

	"github.com/google/uuid"
)

// JobType mirrors the job_type column values in the jobs table.
type JobType string

const (
	JobTypeFullTime JobType = "Full-time"
	JobTypePartTime JobType = "Part-time"
)

// ParseJobType converts a raw string to a JobType. ok is false for
// unknown values — callers drop the filter instead of failing.
func ParseJobType(s string) (JobType, bool) {
	switch JobType(s) {
	case JobTypeFullTime, JobTypePartTime:
		return JobType(s), true
	}
	return "", false
}

// ExperienceLevel mirrors the experience_level column values.
type ExperienceLevel string

const (
	ExperienceEntry  ExperienceLevel = "Entry-level"
	ExperienceMid    ExperienceLevel = "Mid-level"
	ExperienceSenior ExperienceLevel = "Senior-level"
)

// ParseExperienceLevel converts a raw string to an ExperienceLevel.
func ParseExperienceLevel(s string) (ExperienceLevel, bool) {
	switch ExperienceLevel(s) {
	case ExperienceEntry, ExperienceMid, ExperienceSenior:
		return ExperienceLevel(s), true
	}
	return "", false
}

// JobRecord is a read-only projection of a job posting owned by the job
// service. The search engine never mutates it.
type JobRecord struct {
	ID              uuid.UUID       `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Requirements    string          `json:"requirements"`
	Categories      []string        `json:"categories"`
	Location        string          `json:"location"`
	JobType         JobType         `json:"jobType"`
	MinSalary       int             `json:"minSalary"`
	MaxSalary       int             `json:"maxSalary"`
	ExperienceLevel ExperienceLevel `json:"experienceLevel"`
	IsActive        bool            `json:"isActive"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// RankedResult pairs a JobRecord with its derived scores. Rank is the
// full-text relevance score; Similarity is the sum of the title and
// location trigram similarities. Never persisted — computed per query.
type RankedResult struct {
	Job                JobRecord `json:"job"`
	Rank               float64   `json:"rank"`
	Similarity         float64   `json:"similarity"`
	TitleSimilarity    float64   `json:"titleSimilarity"`
	LocationSimilarity float64   `json:"locationSimilarity"`
}

// Page is one slice of a ranked result set. It is what gets cached and
// what the HTTP layer renders into a paginated response.
type Page struct {
	Items      []RankedResult `json:"items"`
	TotalCount int            `json:"totalCount"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
}

// HasNext reports whether a page after this one exists.
func (p Page) HasNext() bool {
	return p.Page*p.PageSize < p.TotalCount
}

// HasPrevious reports whether a page before this one exists.
func (p Page) HasPrevious() bool {
	return p.Page > 1
}
