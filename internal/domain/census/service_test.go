package census

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/wardops/wardops/internal/platform/cache"
)

// -- Mock Repository --

type mockRepo struct {
	records map[string]*ShiftCensusRecord
}

func newMockRepo() *mockRepo {
	return &mockRepo{records: make(map[string]*ShiftCensusRecord)}
}

func (m *mockRepo) slotTaken(rec *ShiftCensusRecord) bool {
	for _, r := range m.records {
		if r.WardID == rec.WardID && r.Shift == rec.Shift && r.Date.Equal(rec.Date) {
			return true
		}
	}
	return false
}

func (m *mockRepo) Get(_ context.Context, key string) (*ShiftCensusRecord, error) {
	rec, ok := m.records[key]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *mockRepo) Insert(_ context.Context, rec *ShiftCensusRecord) error {
	if _, ok := m.records[rec.Key]; ok {
		return ErrDuplicateKey
	}
	if m.slotTaken(rec) {
		return ErrDuplicateKey
	}
	cp := *rec
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	m.records[rec.Key] = &cp
	return nil
}

func (m *mockRepo) applyEditable(dst, src *ShiftCensusRecord) {
	dst.PatientCensus = src.PatientCensus
	dst.NurseManager = src.NurseManager
	dst.RN = src.RN
	dst.PN = src.PN
	dst.WC = src.WC
	dst.NewAdmit = src.NewAdmit
	dst.TransferIn = src.TransferIn
	dst.ReferIn = src.ReferIn
	dst.Discharge = src.Discharge
	dst.TransferOut = src.TransferOut
	dst.ReferOut = src.ReferOut
	dst.Dead = src.Dead
	dst.Available = src.Available
	dst.Unavailable = src.Unavailable
	dst.PlannedDischarge = src.PlannedDischarge
	dst.Comment = src.Comment
	dst.RecorderFirstName = src.RecorderFirstName
	dst.RecorderLastName = src.RecorderLastName
	dst.UpdatedBy = src.UpdatedBy
	dst.UpdatedAt = time.Now()
}

func (m *mockRepo) UpdateDraft(_ context.Context, rec *ShiftCensusRecord) error {
	existing, ok := m.records[rec.Key]
	if !ok || existing.Status != StatusDraft {
		return ErrStatusChanged
	}
	m.applyEditable(existing, rec)
	return nil
}

func (m *mockRepo) Promote(_ context.Context, rec *ShiftCensusRecord, from Status) error {
	existing, ok := m.records[rec.Key]
	if !ok || existing.Status != from {
		return ErrStatusChanged
	}
	m.applyEditable(existing, rec)
	existing.Status = StatusFinal
	existing.FinalizedAt = rec.FinalizedAt
	existing.RejectionReason = nil
	existing.RejectedBy = nil
	existing.RejectedAt = nil
	return nil
}

func (m *mockRepo) Approve(_ context.Context, key, actorID string, at time.Time) error {
	existing, ok := m.records[key]
	if !ok || existing.Status != StatusFinal {
		return ErrStatusChanged
	}
	existing.Status = StatusApproved
	existing.ApprovedBy = &actorID
	existing.ApprovedAt = &at
	return nil
}

func (m *mockRepo) Reject(_ context.Context, key, actorID, reason string, at time.Time) error {
	existing, ok := m.records[key]
	if !ok || existing.Status != StatusFinal {
		return ErrStatusChanged
	}
	existing.Status = StatusRejected
	existing.RejectedBy = &actorID
	existing.RejectionReason = &reason
	existing.RejectedAt = &at
	return nil
}

func (m *mockRepo) LatestApproved(_ context.Context, wardID string, date time.Time, shift Shift) (*ShiftCensusRecord, error) {
	for _, r := range m.records {
		if r.WardID == NormalizeWardID(wardID) && r.Date.Equal(DateOnly(date)) && r.Shift == shift && r.Status == StatusApproved {
			cp := *r
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) WardsWithApproved(_ context.Context, date time.Time) ([]string, error) {
	seen := make(map[string]bool)
	var wards []string
	for _, r := range m.records {
		if r.Date.Equal(DateOnly(date)) && r.Status == StatusApproved && !seen[r.WardID] {
			seen[r.WardID] = true
			wards = append(wards, r.WardID)
		}
	}
	return wards, nil
}

// -- Helpers --

func intp(n int) *int { return &n }

func testDate() time.Time {
	return time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	svc := NewService(repo, zerolog.Nop())
	return svc, repo
}

// completeRecord returns a record that passes finalize validation.
func completeRecord(wardID string, shift Shift, date time.Time) *ShiftCensusRecord {
	return &ShiftCensusRecord{
		WardID:            wardID,
		Shift:             shift,
		Date:              date,
		PatientCensus:     intp(10),
		NurseManager:      intp(1),
		RN:                intp(4),
		PN:                intp(2),
		WC:                intp(1),
		NewAdmit:          intp(0),
		TransferIn:        intp(0),
		ReferIn:           intp(0),
		Discharge:         intp(0),
		TransferOut:       intp(0),
		ReferOut:          intp(0),
		Dead:              intp(0),
		Available:         intp(2),
		Unavailable:       intp(0),
		PlannedDischarge:  intp(1),
		RecorderFirstName: "Ana",
		RecorderLastName:  "Srisuk",
		CreatedBy:         "nurse-1",
	}
}

// -- SaveDraft --

func TestSaveDraft_CreatesDraft(t *testing.T) {
	svc, _ := newTestService()

	rec := &ShiftCensusRecord{
		WardID:        "ward5a",
		Shift:         ShiftMorning,
		Date:          testDate(),
		PatientCensus: intp(12),
		CreatedBy:     "nurse-1",
	}
	saved, err := svc.SaveDraft(context.Background(), rec, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.Key != "WARD5A_morning_draft_d250314" {
		t.Errorf("unexpected key: %s", saved.Key)
	}
	if saved.Status != StatusDraft {
		t.Errorf("expected draft status, got %s", saved.Status)
	}
	if !saved.IsDraft() {
		t.Error("expected IsDraft to be true")
	}
}

func TestSaveDraft_ToleratesMissingFields(t *testing.T) {
	svc, _ := newTestService()

	rec := &ShiftCensusRecord{WardID: "W1", Shift: ShiftNight, Date: testDate()}
	if _, err := svc.SaveDraft(context.Background(), rec, false); err != nil {
		t.Fatalf("draft with no counts should save: %v", err)
	}
}

func TestSaveDraft_MissingIdentity(t *testing.T) {
	svc, _ := newTestService()

	rec := &ShiftCensusRecord{Shift: "afternoon", Date: testDate()}
	_, err := svc.SaveDraft(context.Background(), rec, false)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.Result.Errors["ward_id"]; !ok {
		t.Error("expected ward_id error")
	}
	if _, ok := vErr.Result.Errors["shift"]; !ok {
		t.Error("expected shift error")
	}
}

func TestSaveDraft_NegativeCountRejected(t *testing.T) {
	svc, _ := newTestService()

	rec := &ShiftCensusRecord{WardID: "W1", Shift: ShiftMorning, Date: testDate(), RN: intp(-1)}
	_, err := svc.SaveDraft(context.Background(), rec, false)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if vErr.Result.Errors["rn"] != "must not be negative" {
		t.Errorf("unexpected rn error: %q", vErr.Result.Errors["rn"])
	}
}

func TestSaveDraft_OverwriteRequiresConfirmation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first := &ShiftCensusRecord{WardID: "W1", Shift: ShiftMorning, Date: testDate(), PatientCensus: intp(8)}
	if _, err := svc.SaveDraft(ctx, first, false); err != nil {
		t.Fatalf("first save: %v", err)
	}

	second := &ShiftCensusRecord{WardID: "W1", Shift: ShiftMorning, Date: testDate(), PatientCensus: intp(9)}
	_, err := svc.SaveDraft(ctx, second, false)
	var scErr *StateConflictError
	if !errors.As(err, &scErr) {
		t.Fatalf("expected StateConflictError, got %v", err)
	}
	if !scErr.ConfirmRequired {
		t.Error("expected ConfirmRequired")
	}

	saved, err := svc.SaveDraft(ctx, second, true)
	if err != nil {
		t.Fatalf("confirmed overwrite: %v", err)
	}
	if *saved.PatientCensus != 9 {
		t.Errorf("expected overwritten census 9, got %d", *saved.PatientCensus)
	}
}

func TestSaveDraft_OverFinalizedRefused(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Finalize(ctx, completeRecord("W1", ShiftMorning, testDate()), "nurse-1"); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	draft := &ShiftCensusRecord{WardID: "W1", Shift: ShiftMorning, Date: testDate()}
	_, err := svc.SaveDraft(ctx, draft, true)
	var scErr *StateConflictError
	if !errors.As(err, &scErr) {
		t.Fatalf("expected StateConflictError, got %v", err)
	}
	if scErr.ConfirmRequired {
		t.Error("overwriting a finalized record must not be confirmable")
	}
	if scErr.Current != StatusFinal {
		t.Errorf("expected current status final, got %s", scErr.Current)
	}
}

// -- Finalize --

func TestFinalize_FreshRecordUsesFinalKey(t *testing.T) {
	svc, _ := newTestService()

	final, err := svc.Finalize(context.Background(), completeRecord("W1", ShiftMorning, testDate()), "nurse-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if final.Key != "W1_morning_final_d250314" {
		t.Errorf("unexpected key: %s", final.Key)
	}
	if final.Status != StatusFinal {
		t.Errorf("expected final, got %s", final.Status)
	}
	if final.FinalizedAt == nil {
		t.Error("expected finalized_at to be set")
	}
}

func TestFinalize_MissingFieldRejected(t *testing.T) {
	svc, _ := newTestService()

	rec := completeRecord("W1", ShiftMorning, testDate())
	rec.PatientCensus = nil
	rec.WC = nil

	_, err := svc.Finalize(context.Background(), rec, "nurse-1")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if got := vErr.Result.FirstMissing(); got != "patient_census" {
		t.Errorf("expected first missing patient_census, got %q", got)
	}
}

func TestFinalize_ZeroCountIsValid(t *testing.T) {
	svc, _ := newTestService()

	rec := completeRecord("W1", ShiftMorning, testDate())
	rec.PatientCensus = intp(0)
	if _, err := svc.Finalize(context.Background(), rec, "nurse-1"); err != nil {
		t.Fatalf("zero census should finalize: %v", err)
	}
}

func TestFinalize_PromotesDraftInPlace(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	draft := &ShiftCensusRecord{WardID: "W1", Shift: ShiftMorning, Date: testDate(), PatientCensus: intp(5)}
	saved, err := svc.SaveDraft(ctx, draft, false)
	if err != nil {
		t.Fatalf("save draft: %v", err)
	}

	final, err := svc.Finalize(ctx, completeRecord("W1", ShiftMorning, testDate()), "nurse-1")
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if final.Key != saved.Key {
		t.Errorf("promotion must keep the draft key: got %s, want %s", final.Key, saved.Key)
	}
	if final.Status != StatusFinal {
		t.Errorf("expected final, got %s", final.Status)
	}
}

func TestFinalize_NightRequiresMorning(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Finalize(context.Background(), completeRecord("W1", ShiftNight, testDate()), "nurse-1")
	var psErr *PrecedingShiftError
	if !errors.As(err, &psErr) {
		t.Fatalf("expected PrecedingShiftError, got %v", err)
	}
	if psErr.MorningStatus != "" {
		t.Errorf("expected empty morning status, got %s", psErr.MorningStatus)
	}
}

func TestFinalize_NightRefusedWhileMorningDraft(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	morning := &ShiftCensusRecord{WardID: "W1", Shift: ShiftMorning, Date: testDate(), PatientCensus: intp(10)}
	if _, err := svc.SaveDraft(ctx, morning, false); err != nil {
		t.Fatalf("save morning draft: %v", err)
	}

	_, err := svc.Finalize(ctx, completeRecord("W1", ShiftNight, testDate()), "nurse-1")
	var psErr *PrecedingShiftError
	if !errors.As(err, &psErr) {
		t.Fatalf("expected PrecedingShiftError, got %v", err)
	}
	if psErr.MorningStatus != StatusDraft {
		t.Errorf("expected morning status draft, got %s", psErr.MorningStatus)
	}
}

func TestFinalize_NightAfterFinalMorning(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Finalize(ctx, completeRecord("W1", ShiftMorning, testDate()), "nurse-1"); err != nil {
		t.Fatalf("finalize morning: %v", err)
	}
	if _, err := svc.Finalize(ctx, completeRecord("W1", ShiftNight, testDate()), "nurse-1"); err != nil {
		t.Fatalf("finalize night: %v", err)
	}
}

func TestFinalize_LockedOpeningRecomputesCensus(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	morning := completeRecord("W1", ShiftMorning, testDate())
	morning.PatientCensus = intp(10)
	if _, err := svc.Finalize(ctx, morning, "nurse-1"); err != nil {
		t.Fatalf("finalize morning: %v", err)
	}

	night := completeRecord("W1", ShiftNight, testDate())
	night.PatientCensus = intp(99) // submitted value is ignored when locked
	night.NewAdmit = intp(2)
	night.Discharge = intp(1)
	final, err := svc.Finalize(ctx, night, "nurse-2")
	if err != nil {
		t.Fatalf("finalize night: %v", err)
	}
	if *final.PatientCensus != 11 {
		t.Errorf("expected derived census 11 (10+2-1), got %d", *final.PatientCensus)
	}
}

func TestFinalize_NextMorningChainsFromNight(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	day1 := testDate()
	day2 := day1.AddDate(0, 0, 1)

	if _, err := svc.Finalize(ctx, completeRecord("W1", ShiftMorning, day1), "nurse-1"); err != nil {
		t.Fatalf("finalize day1 morning: %v", err)
	}
	night := completeRecord("W1", ShiftNight, day1)
	night.NewAdmit = intp(2)
	night.Discharge = intp(1)
	if _, err := svc.Finalize(ctx, night, "nurse-1"); err != nil {
		t.Fatalf("finalize day1 night: %v", err)
	}

	opening, err := svc.Opening(ctx, "W1", ShiftMorning, day2)
	if err != nil {
		t.Fatalf("opening: %v", err)
	}
	if !opening.Locked {
		t.Fatal("expected locked opening from final night record")
	}
	if *opening.Census != 11 {
		t.Errorf("expected opening 11, got %d", *opening.Census)
	}

	morning2 := completeRecord("W1", ShiftMorning, day2)
	morning2.NewAdmit = intp(1)
	final, err := svc.Finalize(ctx, morning2, "nurse-1")
	if err != nil {
		t.Fatalf("finalize day2 morning: %v", err)
	}
	if *final.PatientCensus != 12 {
		t.Errorf("expected census 12 (11+1), got %d", *final.PatientCensus)
	}
}

// -- Resubmit --

func TestResubmit_FromRejected(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	final, err := svc.Finalize(ctx, completeRecord("W1", ShiftMorning, testDate()), "nurse-1")
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if err := repo.Reject(ctx, final.Key, "sup-1", "counts do not add up", time.Now()); err != nil {
		t.Fatalf("reject: %v", err)
	}

	corrected := completeRecord("W1", ShiftMorning, testDate())
	corrected.RN = intp(5)
	resubmitted, err := svc.Resubmit(ctx, corrected, "nurse-1")
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if resubmitted.Status != StatusFinal {
		t.Errorf("expected final, got %s", resubmitted.Status)
	}
	if resubmitted.Key != final.Key {
		t.Errorf("resubmit must keep the key: got %s, want %s", resubmitted.Key, final.Key)
	}
	if resubmitted.RejectionReason != nil {
		t.Error("expected rejection reason cleared")
	}
}

func TestResubmit_RefusedUnlessRejected(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Finalize(ctx, completeRecord("W1", ShiftMorning, testDate()), "nurse-1"); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	_, err := svc.Resubmit(ctx, completeRecord("W1", ShiftMorning, testDate()), "nurse-1")
	var scErr *StateConflictError
	if !errors.As(err, &scErr) {
		t.Fatalf("expected StateConflictError, got %v", err)
	}
	if scErr.Current != StatusFinal {
		t.Errorf("expected current final, got %s", scErr.Current)
	}
}

// -- Opening --

func TestOpening_NoAdjacentRecord(t *testing.T) {
	svc, _ := newTestService()

	opening, err := svc.Opening(context.Background(), "W1", ShiftMorning, testDate())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opening.Source != OpeningNone {
		t.Errorf("expected source none, got %s", opening.Source)
	}
	if opening.Census != nil || opening.Locked {
		t.Error("expected unset, unlocked opening")
	}
}

func TestOpening_DraftAdjacentIsUnlocked(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	morning := &ShiftCensusRecord{WardID: "W1", Shift: ShiftMorning, Date: testDate(), PatientCensus: intp(7)}
	if _, err := svc.SaveDraft(ctx, morning, false); err != nil {
		t.Fatalf("save draft: %v", err)
	}

	opening, err := svc.Opening(ctx, "W1", ShiftNight, testDate())
	if err != nil {
		t.Fatalf("opening: %v", err)
	}
	if opening.Locked {
		t.Error("draft adjacent record must not lock the census")
	}
	if *opening.Census != 7 {
		t.Errorf("expected suggested census 7, got %d", *opening.Census)
	}
	if opening.Source != OpeningSameDayMorning {
		t.Errorf("expected source same_day_morning, got %s", opening.Source)
	}
}

func TestOpening_MorningFromPriorNight(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	day1 := testDate()

	if _, err := svc.Finalize(ctx, completeRecord("W1", ShiftMorning, day1), "nurse-1"); err != nil {
		t.Fatalf("finalize morning: %v", err)
	}
	if _, err := svc.Finalize(ctx, completeRecord("W1", ShiftNight, day1), "nurse-1"); err != nil {
		t.Fatalf("finalize night: %v", err)
	}

	opening, err := svc.Opening(ctx, "W1", ShiftMorning, day1.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("opening: %v", err)
	}
	if opening.Source != OpeningPriorNight {
		t.Errorf("expected source prior_night, got %s", opening.Source)
	}
	if !opening.Locked {
		t.Error("expected locked opening from final night record")
	}
}

// -- Load / cache --

func TestLoad_FallsBackToDraftKey(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	draft := &ShiftCensusRecord{WardID: "W1", Shift: ShiftMorning, Date: testDate()}
	saved, err := svc.SaveDraft(ctx, draft, false)
	if err != nil {
		t.Fatalf("save draft: %v", err)
	}

	loaded, err := svc.Load(ctx, "w1", ShiftMorning, testDate())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Key != saved.Key {
		t.Errorf("expected %s, got %s", saved.Key, loaded.Key)
	}
}

func TestGet_ReadsThroughCache(t *testing.T) {
	svc, repo := newTestService()
	svc.SetCache(cache.NewMemoryStore(), time.Minute)
	ctx := context.Background()

	saved, err := svc.SaveDraft(ctx, &ShiftCensusRecord{WardID: "W1", Shift: ShiftMorning, Date: testDate(), PatientCensus: intp(3)}, false)
	if err != nil {
		t.Fatalf("save draft: %v", err)
	}

	first, err := svc.Get(ctx, saved.Key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	// Mutate the store behind the cache; the cached copy should be served.
	repo.records[saved.Key].PatientCensus = intp(99)
	second, err := svc.Get(ctx, saved.Key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if *second.PatientCensus != *first.PatientCensus {
		t.Errorf("expected cached census %d, got %d", *first.PatientCensus, *second.PatientCensus)
	}

	// A write invalidates the slot's cache entries.
	if _, err := svc.SaveDraft(ctx, &ShiftCensusRecord{WardID: "W1", Shift: ShiftMorning, Date: testDate(), PatientCensus: intp(5)}, true); err != nil {
		t.Fatalf("overwrite draft: %v", err)
	}
	third, err := svc.Get(ctx, saved.Key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if *third.PatientCensus != 5 {
		t.Errorf("expected fresh census 5 after invalidation, got %d", *third.PatientCensus)
	}
}

func TestDecision_InvalidatesCacheForResubmit(t *testing.T) {
	svc, _ := newTestService()
	svc.SetCache(cache.NewMemoryStore(), time.Minute)
	ctx := context.Background()

	final, err := svc.Finalize(ctx, completeRecord("W1", ShiftMorning, testDate()), "nurse-1")
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	// Populate the cache with the final record, then reject it.
	if _, err := svc.Get(ctx, final.Key); err != nil {
		t.Fatalf("get: %v", err)
	}
	if err := svc.Reject(ctx, final.Key, "supervisor-1", "recount beds", time.Now().UTC()); err != nil {
		t.Fatalf("reject: %v", err)
	}

	got, err := svc.Get(ctx, final.Key)
	if err != nil {
		t.Fatalf("get after reject: %v", err)
	}
	if got.Status != StatusRejected {
		t.Fatalf("expected rejected status after decision, got %s", got.Status)
	}

	// The rejected record must be resubmittable straight away.
	resubmitted, err := svc.Resubmit(ctx, completeRecord("W1", ShiftMorning, testDate()), "nurse-1")
	if err != nil {
		t.Fatalf("resubmit after reject: %v", err)
	}
	if resubmitted.Status != StatusFinal {
		t.Errorf("expected final after resubmit, got %s", resubmitted.Status)
	}
}

func TestApprove_InvalidatesCache(t *testing.T) {
	svc, _ := newTestService()
	svc.SetCache(cache.NewMemoryStore(), time.Minute)
	ctx := context.Background()

	final, err := svc.Finalize(ctx, completeRecord("W2", ShiftMorning, testDate()), "nurse-1")
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if _, err := svc.Get(ctx, final.Key); err != nil {
		t.Fatalf("get: %v", err)
	}

	if err := svc.Approve(ctx, final.Key, "supervisor-1", time.Now().UTC()); err != nil {
		t.Fatalf("approve: %v", err)
	}

	got, err := svc.Get(ctx, final.Key)
	if err != nil {
		t.Fatalf("get after approve: %v", err)
	}
	if got.Status != StatusApproved {
		t.Errorf("expected approved status after decision, got %s", got.Status)
	}
}
