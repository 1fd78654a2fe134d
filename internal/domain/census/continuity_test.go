package census

import "testing"

func TestClosingCensus(t *testing.T) {
	tests := []struct {
		name    string
		opening int
		rec     ShiftCensusRecord
		want    int
	}{
		{
			name:    "admissions and discharges",
			opening: 10,
			rec:     ShiftCensusRecord{NewAdmit: intp(2), Discharge: intp(1)},
			want:    11,
		},
		{
			name:    "all admission inputs counted",
			opening: 5,
			rec:     ShiftCensusRecord{NewAdmit: intp(1), TransferIn: intp(2), ReferIn: intp(3)},
			want:    11,
		},
		{
			name:    "all discharge inputs counted",
			opening: 10,
			rec:     ShiftCensusRecord{Discharge: intp(1), TransferOut: intp(2), ReferOut: intp(1), Dead: intp(1)},
			want:    5,
		},
		{
			name:    "clamped at zero",
			opening: 2,
			rec:     ShiftCensusRecord{Discharge: intp(5)},
			want:    0,
		},
		{
			name:    "unset fields treated as zero",
			opening: 7,
			rec:     ShiftCensusRecord{},
			want:    7,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClosingCensus(tt.opening, &tt.rec); got != tt.want {
				t.Errorf("ClosingCensus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWorksheet_RecomputeDoesNotCompound(t *testing.T) {
	w := NewWorksheet(intp(10))
	rec := &ShiftCensusRecord{NewAdmit: intp(2), Discharge: intp(1)}

	first := w.Recompute(rec)
	if first == nil || *first != 11 {
		t.Fatalf("expected 11, got %v", first)
	}

	// Simulate the client writing the derived value back before editing again.
	rec.PatientCensus = first
	rec.NewAdmit = intp(3)
	second := w.Recompute(rec)
	if second == nil || *second != 12 {
		t.Errorf("expected 12 from the original baseline, got %v", second)
	}
}

func TestWorksheet_DirectEditStopsRecompute(t *testing.T) {
	w := NewWorksheet(intp(10))
	rec := &ShiftCensusRecord{NewAdmit: intp(2)}

	w.SetCensus()
	if got := w.Recompute(rec); got != nil {
		t.Errorf("expected nil after direct edit, got %d", *got)
	}
	if w.Baseline() != nil {
		t.Error("expected baseline discarded after direct edit")
	}
}

func TestWorksheet_NilBaseline(t *testing.T) {
	w := NewWorksheet(nil)
	rec := &ShiftCensusRecord{NewAdmit: intp(2)}

	if got := w.Recompute(rec); got != nil {
		t.Errorf("expected nil without a baseline, got %d", *got)
	}
}

func TestWorksheet_BaselineIsCopied(t *testing.T) {
	n := 10
	w := NewWorksheet(&n)
	n = 99

	b := w.Baseline()
	if b == nil || *b != 10 {
		t.Errorf("expected captured baseline 10, got %v", b)
	}
}
