package search

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Fingerprint returns the cache key for a normalized query plus its
// pagination parameters. The canonical form is the sorted k=v list of
// the effective parameters, so two requests that mean the same thing
// always map to the same key no matter how the input was spelled or
// ordered. Absent filters contribute nothing.
func Fingerprint(q SearchQuery, page, pageSize int) string {
	params := []string{
		"q=" + q.Term,
		fmt.Sprintf("page=%d", page),
		fmt.Sprintf("page_size=%d", pageSize),
	}
	if q.JobType != nil {
		params = append(params, "job_type="+string(*q.JobType))
	}
	if q.Location != "" {
		params = append(params, "location="+strings.ToLower(q.Location))
	}
	if q.MinSalary != nil {
		params = append(params, fmt.Sprintf("min_salary=%d", *q.MinSalary))
	}
	if q.ExperienceLevel != nil {
		params = append(params, "experience_level="+string(*q.ExperienceLevel))
	}

	sort.Strings(params)
	sum := sha256.Sum256([]byte(strings.Join(params, "\n")))
	return "search:" + hex.EncodeToString(sum[:])
}
