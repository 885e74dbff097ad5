package approval

import "fmt"

// ConsistencyGapError reports that the application status write succeeded
// but the capability grant did not: the masseur looks approved while the
// account lacks the provider capability. The gap is surfaced to the caller
// and closed by the idempotent repair pass; it is never merely logged.
type ConsistencyGapError struct {
	MasseurID string
	Err       error
}

func (e *ConsistencyGapError) Error() string {
	return fmt.Sprintf("approval of masseur %s left a consistency gap: %v", e.MasseurID, e.Err)
}

func (e *ConsistencyGapError) Unwrap() error {
	return e.Err
}
