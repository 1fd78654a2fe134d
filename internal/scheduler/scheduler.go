package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/wardops/wardops/internal/domain/summary"
)

// WardSource lists wards that have approved shift records for a given day.
type WardSource interface {
	WardsWithApproved(ctx context.Context, date time.Time) ([]string, error)
}

// Scheduler runs periodic reconciliation jobs. Daily summaries are normally
// patched at approval time; the nightly job re-aggregates the previous day
// to repair summaries whose approval-time trigger failed.
type Scheduler struct {
	cron       *cron.Cron
	wards      WardSource
	aggregator *summary.Aggregator
	spec       string
	log        zerolog.Logger
}

// New creates a scheduler with a standard 5-field cron spec
// (minute, hour, day of month, month, day of week).
func New(wards WardSource, aggregator *summary.Aggregator, spec string, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		wards:      wards,
		aggregator: aggregator,
		spec:       spec,
		log:        log.With().Str("component", "scheduler").Logger(),
	}
}

// Start registers the reconciliation job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.reconcileYesterday); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info().Str("spec", s.spec).Msg("summary reconciliation scheduled")
	return nil
}

// Stop stops the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) reconcileYesterday() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	date := time.Now().UTC().AddDate(0, 0, -1)
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	wardIDs, err := s.wards.WardsWithApproved(ctx, date)
	if err != nil {
		s.log.Error().Err(err).Time("date", date).Msg("list wards for reconciliation failed")
		return
	}

	var failed int
	for _, wardID := range wardIDs {
		if _, err := s.aggregator.EnsureSummary(ctx, wardID, date); err != nil {
			failed++
			s.log.Error().Err(err).Str("ward_id", wardID).Time("date", date).
				Msg("summary reconciliation failed")
		}
	}

	s.log.Info().Time("date", date).Int("wards", len(wardIDs)).Int("failed", failed).
		Msg("summary reconciliation complete")
}
