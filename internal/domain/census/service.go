package census

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/wardops/wardops/internal/platform/cache"
)

// Service orchestrates the shift-record lifecycle: draft saves, finalize,
// resubmit after rejection, and the census continuity rules that tie a
// shift's opening count to its adjacent record. It is stateless between
// calls: every decision is made from its inputs and the store's contents.
type Service struct {
	repo     Repository
	cache    cache.Store
	cacheTTL time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

// SetCache attaches an optional read-through record cache. Entries are keyed
// by record key and invalidated on every write.
func (s *Service) SetCache(store cache.Store, ttl time.Duration) {
	s.cache = store
	s.cacheTTL = ttl
}

// Get loads a record by its exact key, reading through the cache.
func (s *Service) Get(ctx context.Context, key string) (*ShiftCensusRecord, error) {
	if s.cache != nil {
		if data, ok := s.cache.Get(ctx, key); ok {
			var rec ShiftCensusRecord
			if err := json.Unmarshal(data, &rec); err == nil {
				return &rec, nil
			}
			s.cache.Delete(ctx, key)
		}
	}
	rec, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, wrapStore("get", err)
	}
	if s.cache != nil {
		if data, err := json.Marshal(rec); err == nil {
			s.cache.Set(ctx, key, data, s.cacheTTL)
		}
	}
	return rec, nil
}

// Load resolves the record for a (ward, shift, date) slot. The final-class
// key is tried first; records created as drafts and promoted in place still
// live under their draft-class key, so a miss falls back to that.
func (s *Service) Load(ctx context.Context, wardID string, shift Shift, date time.Time) (*ShiftCensusRecord, error) {
	for _, key := range CandidateKeys(wardID, shift, date) {
		rec, err := s.Get(ctx, key)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, ErrNotFound
}

// SaveDraft upserts a draft. A slot that already holds a finalized record
// refuses the save outright; a slot holding another draft is only replaced
// when the caller has confirmed the overwrite.
func (s *Service) SaveDraft(ctx context.Context, rec *ShiftCensusRecord, overwriteConfirmed bool) (*ShiftCensusRecord, error) {
	rec.Normalize()
	if err := checkIdentity(rec); err != nil {
		return nil, err
	}
	if res := Validate(rec, ModeDraft); !res.IsValid {
		return nil, &ValidationError{Result: res}
	}

	existing, err := s.Load(ctx, rec.WardID, rec.Shift, rec.Date)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		if existing.Status != StatusDraft {
			return nil, &StateConflictError{Key: existing.Key, Current: existing.Status, Attempted: "save draft over"}
		}
		if !overwriteConfirmed {
			return nil, &StateConflictError{Key: existing.Key, Current: existing.Status, Attempted: "save draft over", ConfirmRequired: true}
		}
		rec.Key = existing.Key
		rec.Status = StatusDraft
		if err := s.repo.UpdateDraft(ctx, rec); err != nil {
			return nil, s.conflictOr(ctx, rec.Key, "save draft over", err)
		}
	} else {
		rec.Key = RecordKey(rec.WardID, rec.Shift, ClassDraft, rec.Date)
		rec.Status = StatusDraft
		if err := s.repo.Insert(ctx, rec); err != nil {
			return nil, s.conflictOr(ctx, rec.Key, "save draft over", err)
		}
	}

	s.invalidate(ctx, rec.WardID, rec.Shift, rec.Date)
	return s.reload(ctx, rec.Key)
}

// Finalize submits a record for approval. Legal from an empty slot or a
// draft; a rejected record must go through Resubmit instead. The census
// field is recomputed from the adjacent shift when that shift is locked in.
func (s *Service) Finalize(ctx context.Context, rec *ShiftCensusRecord, actorID string) (*ShiftCensusRecord, error) {
	rec.Normalize()
	if err := s.prepareSubmission(ctx, rec, actorID); err != nil {
		return nil, err
	}

	existing, err := s.Load(ctx, rec.WardID, rec.Shift, rec.Date)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	now := s.now().UTC()
	rec.Status = StatusFinal
	rec.FinalizedAt = &now

	if existing == nil {
		rec.Key = RecordKey(rec.WardID, rec.Shift, ClassFinal, rec.Date)
		if rec.CreatedBy == "" {
			rec.CreatedBy = actorID
		}
		if err := s.repo.Insert(ctx, rec); err != nil {
			return nil, s.conflictOr(ctx, rec.Key, "finalize", err)
		}
	} else {
		if existing.Status != StatusDraft {
			return nil, &StateConflictError{Key: existing.Key, Current: existing.Status, Attempted: "finalize"}
		}
		rec.Key = existing.Key
		if err := s.repo.Promote(ctx, rec, StatusDraft); err != nil {
			return nil, s.conflictOr(ctx, rec.Key, "finalize", err)
		}
	}

	s.invalidate(ctx, rec.WardID, rec.Shift, rec.Date)
	return s.reload(ctx, rec.Key)
}

// Resubmit corrects a rejected record and re-enters final. This is the one
// re-entrant edge of the state machine; the record keeps its key, and the
// rejection fields are cleared by the promotion.
func (s *Service) Resubmit(ctx context.Context, rec *ShiftCensusRecord, actorID string) (*ShiftCensusRecord, error) {
	rec.Normalize()
	if err := s.prepareSubmission(ctx, rec, actorID); err != nil {
		return nil, err
	}

	existing, err := s.Load(ctx, rec.WardID, rec.Shift, rec.Date)
	if err != nil {
		return nil, err
	}
	if existing.Status != StatusRejected {
		return nil, &StateConflictError{Key: existing.Key, Current: existing.Status, Attempted: "resubmit"}
	}

	now := s.now().UTC()
	rec.Key = existing.Key
	rec.Status = StatusFinal
	rec.FinalizedAt = &now

	if err := s.repo.Promote(ctx, rec, StatusRejected); err != nil {
		return nil, s.conflictOr(ctx, rec.Key, "resubmit", err)
	}

	s.invalidate(ctx, rec.WardID, rec.Shift, rec.Date)
	return s.reload(ctx, rec.Key)
}

// Approve stamps a final record approved and drops its cache entry. The
// repository guard error passes through untouched so the caller can map a
// miss to a state conflict against the record's actual status.
func (s *Service) Approve(ctx context.Context, key, actorID string, at time.Time) error {
	if err := s.repo.Approve(ctx, key, actorID, at); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Delete(ctx, key)
	}
	return nil
}

// Reject stamps a final record rejected with its reason and drops the cache
// entry, so a following Resubmit sees the rejected status immediately.
func (s *Service) Reject(ctx context.Context, key, actorID, reason string, at time.Time) error {
	if err := s.repo.Reject(ctx, key, actorID, reason, at); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Delete(ctx, key)
	}
	return nil
}

// Opening resolves where a shift's opening census comes from and whether the
// census field is locked to the derived value.
func (s *Service) Opening(ctx context.Context, wardID string, shift Shift, date time.Time) (*Opening, error) {
	var adjacent *ShiftCensusRecord
	var source OpeningSource
	var err error

	switch shift {
	case ShiftMorning:
		source = OpeningPriorNight
		adjacent, err = s.Load(ctx, wardID, ShiftNight, DateOnly(date).AddDate(0, 0, -1))
	case ShiftNight:
		source = OpeningSameDayMorning
		adjacent, err = s.Load(ctx, wardID, ShiftMorning, date)
	default:
		return nil, &ValidationError{Result: ValidationResult{Errors: map[string]string{"shift": "must be morning or night"}}}
	}

	if errors.Is(err, ErrNotFound) {
		return &Opening{Source: OpeningNone}, nil
	}
	if err != nil {
		return nil, err
	}

	locked := (adjacent.Status == StatusFinal || adjacent.Status == StatusApproved) &&
		adjacent.PatientCensus != nil
	return &Opening{
		Census:    adjacent.PatientCensus,
		Locked:    locked,
		Source:    source,
		SourceKey: adjacent.Key,
	}, nil
}

// prepareSubmission runs the shared finalize-mode checks: full validation,
// the night-after-morning ordering precondition, and the locked-census
// recompute from the adjacent shift.
func (s *Service) prepareSubmission(ctx context.Context, rec *ShiftCensusRecord, actorID string) error {
	if err := checkIdentity(rec); err != nil {
		return err
	}
	if res := Validate(rec, ModeFinalize); !res.IsValid {
		return &ValidationError{Result: res}
	}

	if rec.Shift == ShiftNight {
		morning, err := s.Load(ctx, rec.WardID, ShiftMorning, rec.Date)
		if errors.Is(err, ErrNotFound) {
			return &PrecedingShiftError{WardID: rec.WardID, Date: rec.Date}
		}
		if err != nil {
			return err
		}
		if morning.Status != StatusFinal && morning.Status != StatusApproved {
			return &PrecedingShiftError{WardID: rec.WardID, Date: rec.Date, MorningStatus: morning.Status}
		}
	}

	opening, err := s.Opening(ctx, rec.WardID, rec.Shift, rec.Date)
	if err != nil {
		return err
	}
	if opening.Locked {
		derived := ClosingCensus(*opening.Census, rec)
		rec.PatientCensus = &derived
	}

	actor := actorID
	if actor != "" {
		rec.UpdatedBy = &actor
	}
	return nil
}

func checkIdentity(rec *ShiftCensusRecord) error {
	errs := make(map[string]string)
	if rec.WardID == "" {
		errs["ward_id"] = "required"
	}
	if !rec.Shift.Valid() {
		errs["shift"] = "must be morning or night"
	}
	if rec.Date.IsZero() {
		errs["date"] = "required"
	}
	if len(errs) > 0 {
		return &ValidationError{Result: ValidationResult{Errors: errs}}
	}
	return nil
}

// conflictOr maps a repository failure to the error taxonomy: a guard miss
// or key collision becomes a state conflict described by the record's actual
// current status, anything else is a store error.
func (s *Service) conflictOr(ctx context.Context, key, attempted string, err error) error {
	if errors.Is(err, ErrStatusChanged) || errors.Is(err, ErrDuplicateKey) {
		conflict := &StateConflictError{Key: key, Attempted: attempted}
		if cur, readErr := s.repo.Get(ctx, key); readErr == nil {
			conflict.Current = cur.Status
		}
		return conflict
	}
	return wrapStore(attempted, err)
}

func (s *Service) reload(ctx context.Context, key string) (*ShiftCensusRecord, error) {
	rec, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, wrapStore("reload", err)
	}
	return rec, nil
}

func (s *Service) invalidate(ctx context.Context, wardID string, shift Shift, date time.Time) {
	if s.cache == nil {
		return
	}
	s.cache.Delete(ctx, CandidateKeys(wardID, shift, date)...)
}

func wrapStore(op string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	return &StoreError{Op: op, Err: err}
}
