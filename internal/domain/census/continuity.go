package census

// Census continuity arithmetic. Everything here is pure: the service layer
// decides which adjacent record supplies the opening census, these functions
// only do the math.

// Admissions sums the three admission inputs, treating unset fields as zero.
func Admissions(r *ShiftCensusRecord) int {
	return intVal(r.NewAdmit) + intVal(r.TransferIn) + intVal(r.ReferIn)
}

// Discharges sums the four discharge inputs, treating unset fields as zero.
func Discharges(r *ShiftCensusRecord) int {
	return intVal(r.Discharge) + intVal(r.TransferOut) + intVal(r.ReferOut) + intVal(r.Dead)
}

// ClosingCensus computes the patient count at the end of a shift from its
// opening count and the shift's admission/discharge inputs, clamped at zero.
func ClosingCensus(opening int, r *ShiftCensusRecord) int {
	n := opening + Admissions(r) - Discharges(r)
	if n < 0 {
		return 0
	}
	return n
}

// OpeningSource says where an opening census value came from.
type OpeningSource string

const (
	// OpeningPriorNight: a morning shift opening from the previous day's
	// night record.
	OpeningPriorNight OpeningSource = "prior_night"
	// OpeningSameDayMorning: a night shift opening from the same day's
	// morning record.
	OpeningSameDayMorning OpeningSource = "same_day_morning"
	// OpeningNone: no adjacent record exists; the census starts unset.
	OpeningNone OpeningSource = "none"
)

// Opening describes how a shift's census field behaves when the record is
// loaded. When Locked is true the adjacent record is final or approved, the
// census value is derived and the field must not accept direct edits. When a
// draft adjacent record exists the value is offered as an editable default.
type Opening struct {
	Census    *int          `json:"census,omitempty"`
	Locked    bool          `json:"locked"`
	Source    OpeningSource `json:"source"`
	SourceKey string        `json:"source_key,omitempty"`
}

// Worksheet carries the live-recompute state for an editable census field.
// The baseline is captured once, when the shift loads; every recompute runs
// from that baseline and the current inputs, never from the displayed value,
// so repeated edits cannot compound. A direct census edit discards the
// baseline and stops the automatic recompute.
type Worksheet struct {
	baseline   *int
	overridden bool
}

// NewWorksheet captures the opening baseline for a shift being edited.
// A nil baseline means no adjacent record offered a value; the census stays
// under manual control from the start.
func NewWorksheet(baseline *int) *Worksheet {
	if baseline == nil {
		return &Worksheet{}
	}
	b := *baseline
	return &Worksheet{baseline: &b}
}

// SetCensus records a direct census edit. Subsequent admission/discharge
// edits will no longer overwrite the value.
func (w *Worksheet) SetCensus() {
	w.overridden = true
	w.baseline = nil
}

// Recompute returns the derived census for the current inputs, or nil when
// the field is under manual control (no baseline, or overridden).
func (w *Worksheet) Recompute(r *ShiftCensusRecord) *int {
	if w.overridden || w.baseline == nil {
		return nil
	}
	n := ClosingCensus(*w.baseline, r)
	return &n
}

// Baseline returns the captured baseline, nil when none is held.
func (w *Worksheet) Baseline() *int {
	if w.baseline == nil {
		return nil
	}
	b := *w.baseline
	return &b
}
