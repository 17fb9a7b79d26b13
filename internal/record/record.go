package record

import "time"

// Record is one committed calculation in the history log.
// Records are immutable once created; the log only supports bulk clear.
type Record struct {
	// ID is a ULID, unique and ordered by creation time
	ID string `json:"id"`

	// ExpressionText is the expression as it stood before commit
	ExpressionText string `json:"expression"`

	// ResultText is the two-decimal result the expression evaluated to
	ResultText string `json:"result"`

	// CreatedAt is the commit time in Unix milliseconds
	CreatedAt int64 `json:"created_at"`
}

// Time returns CreatedAt as a time.Time in the local zone.
func (r Record) Time() time.Time {
	return time.UnixMilli(r.CreatedAt)
}
