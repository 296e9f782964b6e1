package search

import (
	"errors"
	"fmt"
)

// ErrStoreUnavailable marks failures of the job store or the cache
// store. Callers should treat it as retryable; the engine itself never
// retries.
var ErrStoreUnavailable = errors.New("backing store unavailable")

// InvalidFilterError reports a structurally invalid filter value that
// reached the engine. Normalization drops malformed filters before the
// engine sees them, so this only fires when a caller bypasses
// Normalize — it exists for a future strict-validation mode.
type InvalidFilterError struct {
	Field string
	Value string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid %s filter value %q", e.Field, e.Value)
}
