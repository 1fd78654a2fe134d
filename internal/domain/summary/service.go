package summary

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/wardops/wardops/internal/domain/census"
)

// ApprovedSource supplies the latest approved record per shift slot. The
// census repository satisfies it.
type ApprovedSource interface {
	LatestApproved(ctx context.Context, wardID string, date time.Time, shift census.Shift) (*census.ShiftCensusRecord, error)
}

// Aggregator folds approved morning/night records into the daily summary.
// It is idempotent: re-running it against an unchanged store is a no-op.
type Aggregator struct {
	records   ApprovedSource
	summaries Repository
	log       zerolog.Logger
}

func NewAggregator(records ApprovedSource, summaries Repository, log zerolog.Logger) *Aggregator {
	return &Aggregator{records: records, summaries: summaries, log: log}
}

// EnsureSummary brings the (ward, date) summary in line with the latest
// approved records. A shift section is only rewritten when the approved
// record's id differs from the one the summary references; combined totals
// and the all-forms-approved flag are recomputed whenever both sections are
// present. Returns ErrNotFound when no approved record and no summary exist.
func (a *Aggregator) EnsureSummary(ctx context.Context, wardID string, date time.Time) (*DailySummary, error) {
	wardID = census.NormalizeWardID(wardID)
	date = census.DateOnly(date)

	morning, err := a.latest(ctx, wardID, date, census.ShiftMorning)
	if err != nil {
		return nil, err
	}
	night, err := a.latest(ctx, wardID, date, census.ShiftNight)
	if err != nil {
		return nil, err
	}

	cur, err := a.summaries.Get(ctx, wardID, date)
	switch {
	case errors.Is(err, ErrNotFound):
		if morning == nil && night == nil {
			return nil, ErrNotFound
		}
		created, err := a.create(ctx, wardID, date, morning, night)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, ErrDuplicate) {
			return nil, err
		}
		// Another actor created the summary between our read and write;
		// reload and fall through to the patch path.
		cur, err = a.summaries.Get(ctx, wardID, date)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}

	if err := a.patch(ctx, cur, census.ShiftMorning, morning); err != nil {
		return nil, err
	}
	if err := a.patch(ctx, cur, census.ShiftNight, night); err != nil {
		return nil, err
	}

	final, err := a.summaries.Get(ctx, wardID, date)
	if err != nil {
		return nil, err
	}
	if final.Complete() {
		totals := final.CombinedTotals()
		if err := a.summaries.SetTotals(ctx, wardID, date, totals, true); err != nil {
			return nil, err
		}
		final.Combined = &totals
		final.AllFormsApproved = true
	}
	return final, nil
}

func (a *Aggregator) latest(ctx context.Context, wardID string, date time.Time, shift census.Shift) (*census.ShiftCensusRecord, error) {
	rec, err := a.records.LatestApproved(ctx, wardID, date, shift)
	if errors.Is(err, census.ErrNotFound) {
		return nil, nil
	}
	return rec, err
}

func (a *Aggregator) create(ctx context.Context, wardID string, date time.Time, morning, night *census.ShiftCensusRecord) (*DailySummary, error) {
	s := &DailySummary{WardID: wardID, Date: date}
	if morning != nil {
		s.Morning = SectionFromRecord(morning)
	}
	if night != nil {
		s.Night = SectionFromRecord(night)
	}
	if s.Complete() {
		totals := s.CombinedTotals()
		s.Combined = &totals
		s.AllFormsApproved = true
	}
	if err := a.summaries.Create(ctx, s); err != nil {
		return nil, err
	}
	return a.summaries.Get(ctx, wardID, date)
}

// patch rewrites one shift section when the approved record changed since
// the summary last referenced it. A stale guard means another actor already
// applied a newer section; that write wins and we move on.
func (a *Aggregator) patch(ctx context.Context, cur *DailySummary, shift census.Shift, rec *census.ShiftCensusRecord) error {
	if rec == nil {
		return nil
	}
	existing := cur.SectionFor(shift)
	if existing != nil && existing.FormID == rec.Key {
		return nil
	}
	var expected *string
	if existing != nil {
		expected = &existing.FormID
	}
	err := a.summaries.PatchShift(ctx, cur.WardID, cur.Date, shift, SectionFromRecord(rec), expected)
	if errors.Is(err, ErrStale) {
		a.log.Info().
			Str("ward_id", cur.WardID).
			Str("shift", string(shift)).
			Time("date", cur.Date).
			Msg("summary section already updated by a concurrent aggregation")
		return nil
	}
	return err
}
