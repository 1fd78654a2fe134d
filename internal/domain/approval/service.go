package approval

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/wardops/wardops/internal/domain/census"
	"github.com/wardops/wardops/internal/domain/summary"
)

// ErrReasonRequired is returned when a rejection carries no reason.
var ErrReasonRequired = errors.New("rejection reason is required")

// RecordStore is the slice of the census service the coordinator needs.
// Decisions go through the service, not the repository, so the record's
// cache entry is invalidated along with every write.
type RecordStore interface {
	Get(ctx context.Context, key string) (*census.ShiftCensusRecord, error)
	Approve(ctx context.Context, key, actorID string, at time.Time) error
	Reject(ctx context.Context, key, actorID, reason string, at time.Time) error
}

// SummaryTrigger is invoked after an approval to fold the record into the
// daily summary.
type SummaryTrigger interface {
	EnsureSummary(ctx context.Context, wardID string, date time.Time) (*summary.DailySummary, error)
}

// Service applies approve/reject decisions to finalized records, writes the
// append-only history entry, and triggers summary aggregation. Aggregation is
// best-effort: its failure is logged and never rolls back the decision.
type Service struct {
	records RecordStore
	history HistoryRepository
	trigger SummaryTrigger
	log     zerolog.Logger
	now     func() time.Time
}

func NewService(records RecordStore, history HistoryRepository, trigger SummaryTrigger, log zerolog.Logger) *Service {
	return &Service{records: records, history: history, trigger: trigger, log: log, now: time.Now}
}

// Approve moves a final record to approved. Only legal from final; the
// conditional write guards against a concurrent transition.
func (s *Service) Approve(ctx context.Context, formID string, actor Actor) (*census.ShiftCensusRecord, error) {
	rec, err := s.records.Get(ctx, formID)
	if err != nil {
		return nil, err
	}
	if rec.Status != census.StatusFinal {
		return nil, &census.StateConflictError{Key: rec.Key, Current: rec.Status, Attempted: "approve"}
	}

	at := s.now().UTC()
	if err := s.records.Approve(ctx, rec.Key, actor.ID, at); err != nil {
		return nil, s.conflictOr(ctx, rec.Key, "approve", err)
	}

	s.appendHistory(ctx, rec, ActionApproved, actor, nil, at)

	if _, err := s.trigger.EnsureSummary(ctx, rec.WardID, rec.Date); err != nil && !errors.Is(err, summary.ErrNotFound) {
		aggErr := &summary.AggregationError{WardID: rec.WardID, Date: rec.Date, Err: err}
		s.log.Error().Err(aggErr).
			Str("form_id", rec.Key).
			Msg("daily summary aggregation failed; approval stands")
	}

	return s.records.Get(ctx, rec.Key)
}

// Reject moves a final record to rejected, storing the mandatory reason.
// The record keeps its key and stays editable for correction and resubmit.
func (s *Service) Reject(ctx context.Context, formID string, actor Actor, reason string) (*census.ShiftCensusRecord, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}

	rec, err := s.records.Get(ctx, formID)
	if err != nil {
		return nil, err
	}
	if rec.Status != census.StatusFinal {
		return nil, &census.StateConflictError{Key: rec.Key, Current: rec.Status, Attempted: "reject"}
	}

	at := s.now().UTC()
	if err := s.records.Reject(ctx, rec.Key, actor.ID, reason, at); err != nil {
		return nil, s.conflictOr(ctx, rec.Key, "reject", err)
	}

	s.appendHistory(ctx, rec, ActionRejected, actor, &reason, at)

	return s.records.Get(ctx, rec.Key)
}

// HistoryByForm lists a record's decisions, newest first.
func (s *Service) HistoryByForm(ctx context.Context, formID string, limit, offset int) ([]*HistoryRecord, int, error) {
	return s.history.ListByForm(ctx, formID, limit, offset)
}

// HistoryByWardDate lists a ward's decisions for one date, newest first.
func (s *Service) HistoryByWardDate(ctx context.Context, wardID string, date time.Time, limit, offset int) ([]*HistoryRecord, int, error) {
	return s.history.ListByWardDate(ctx, wardID, date, limit, offset)
}

// appendHistory writes the audit entry. The decision is already committed at
// this point; a history write failure is logged rather than unwinding it.
func (s *Service) appendHistory(ctx context.Context, rec *census.ShiftCensusRecord, action Action, actor Actor, reason *string, at time.Time) {
	entry := &HistoryRecord{
		FormID:    rec.Key,
		WardID:    rec.WardID,
		Date:      rec.Date,
		Shift:     rec.Shift,
		Action:    action,
		ActorID:   actor.ID,
		ActorName: actor.Name,
		Reason:    reason,
		CreatedAt: at,
	}
	if err := s.history.Append(ctx, entry); err != nil {
		s.log.Error().Err(err).
			Str("form_id", rec.Key).
			Str("action", string(action)).
			Msg("failed to append approval history entry")
	}
}

func (s *Service) conflictOr(ctx context.Context, key, attempted string, err error) error {
	if errors.Is(err, census.ErrStatusChanged) {
		conflict := &census.StateConflictError{Key: key, Attempted: attempted}
		if cur, readErr := s.records.Get(ctx, key); readErr == nil {
			conflict.Current = cur.Status
		}
		return conflict
	}
	return &census.StoreError{Op: attempted, Err: err}
}
