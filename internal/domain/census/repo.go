package census

import (
	"context"
	"time"
)

// Repository is the shift-record view over the document store. Every
// transition method is a single conditional write guarded by the expected
// prior status: a guard miss returns ErrStatusChanged, never a lost update.
type Repository interface {
	// Get loads one record by key. ErrNotFound when absent.
	Get(ctx context.Context, key string) (*ShiftCensusRecord, error)

	// Insert creates a record at its key. Fails when the key, or the
	// (ward, shift, date) slot, already holds a record.
	Insert(ctx context.Context, rec *ShiftCensusRecord) error

	// UpdateDraft replaces a record's editable fields, guarded on the
	// record still being a draft.
	UpdateDraft(ctx context.Context, rec *ShiftCensusRecord) error

	// Promote moves a record to final, writing the full field set and
	// stamping finalized_at, guarded on the expected prior status (draft
	// for finalize, rejected for resubmit). Resubmission clears the
	// rejection fields.
	Promote(ctx context.Context, rec *ShiftCensusRecord, from Status) error

	// Approve moves final -> approved, stamping approved_at/approved_by.
	Approve(ctx context.Context, key, actorID string, at time.Time) error

	// Reject moves final -> rejected, storing the reason.
	Reject(ctx context.Context, key, actorID, reason string, at time.Time) error

	// LatestApproved returns the most recently updated approved record for
	// a ward, date and shift. ErrNotFound when none is approved.
	LatestApproved(ctx context.Context, wardID string, date time.Time, shift Shift) (*ShiftCensusRecord, error)

	// WardsWithApproved lists wards holding at least one approved record
	// on the given date.
	WardsWithApproved(ctx context.Context, date time.Time) ([]string, error)
}
