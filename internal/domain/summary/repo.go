package summary

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wardops/wardops/internal/domain/census"
)

// ErrNotFound is returned when no summary exists for a ward and date.
var ErrNotFound = errors.New("daily summary not found")

// ErrDuplicate is returned when a create collides with a summary another
// actor created concurrently.
var ErrDuplicate = errors.New("daily summary already exists")

// ErrStale is returned when a conditional patch's referenced form id no
// longer matches, i.e. another actor already applied a newer section.
var ErrStale = errors.New("summary section changed concurrently")

// Repository is the daily-summary view over the document store. PatchShift
// is conditional on the form id the summary currently references, so two
// concurrent approvals cannot double-apply one shift's contribution.
type Repository interface {
	Get(ctx context.Context, wardID string, date time.Time) (*DailySummary, error)
	Create(ctx context.Context, s *DailySummary) error
	PatchShift(ctx context.Context, wardID string, date time.Time, shift census.Shift, sec *ShiftSection, expectedFormID *string) error
	SetTotals(ctx context.Context, wardID string, date time.Time, totals Totals, allApproved bool) error
}

// AggregationError wraps a summary failure surfaced to the approval flow.
// Aggregation is best-effort: the approval that triggered it stands.
type AggregationError struct {
	WardID string
	Date   time.Time
	Err    error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregate daily summary for %s on %s: %v",
		e.WardID, e.Date.Format("2006-01-02"), e.Err)
}

func (e *AggregationError) Unwrap() error { return e.Err }
