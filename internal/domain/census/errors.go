package census

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by repositories when no record exists at a key.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateKey is returned by repositories when an insert collides with
// an existing record for the same key or shift slot.
var ErrDuplicateKey = errors.New("record already exists")

// ErrStatusChanged is returned by repositories when a conditional write's
// status guard did not match, i.e. another actor transitioned the record
// between our read and write.
var ErrStatusChanged = errors.New("record status changed concurrently")

// ValidationError wraps a failed validation result. Recoverable; no state
// was changed.
type ValidationError struct {
	Result ValidationResult
}

func (e *ValidationError) Error() string {
	if f := e.Result.FirstMissing(); f != "" {
		return fmt.Sprintf("validation failed: %s is required", f)
	}
	for field, msg := range e.Result.Errors {
		return fmt.Sprintf("validation failed: %s %s", field, msg)
	}
	return "validation failed"
}

// StateConflictError reports a transition that is not legal from the
// record's current status, or one that lost a conditional-write race.
// ConfirmRequired marks the one recoverable case: saving a draft over an
// existing draft, which the caller may retry with explicit confirmation.
type StateConflictError struct {
	Key             string
	Current         Status
	Attempted       string
	ConfirmRequired bool
}

func (e *StateConflictError) Error() string {
	if e.ConfirmRequired {
		return fmt.Sprintf("a draft already exists at %s; confirm overwrite to replace it", e.Key)
	}
	return fmt.Sprintf("cannot %s record %s: status is %s", e.Attempted, e.Key, e.Current)
}

// PrecedingShiftError reports a night finalize attempted before the same
// day's morning record reached final or approved.
type PrecedingShiftError struct {
	WardID        string
	Date          time.Time
	MorningStatus Status // "" when the morning record does not exist
}

func (e *PrecedingShiftError) Error() string {
	if e.MorningStatus == "" {
		return fmt.Sprintf("cannot finalize night shift for %s on %s: morning record does not exist",
			e.WardID, e.Date.Format("2006-01-02"))
	}
	return fmt.Sprintf("cannot finalize night shift for %s on %s: morning record is %s, must be final or approved",
		e.WardID, e.Date.Format("2006-01-02"), e.MorningStatus)
}

// StoreError wraps an underlying store/transaction failure. Writes are not
// silently retried; the caller decides.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
