package summary

import (
	"time"

	"github.com/wardops/wardops/internal/domain/census"
)

// ShiftSection is one shift's contribution to a daily summary, derived from
// the approved record it references. FormID identifies that record so a later
// approved edit can be detected and the section re-derived.
type ShiftSection struct {
	FormID          string  `db:"form_id" json:"form_id"`
	PatientCensus   int     `db:"patient_census" json:"patient_census"`
	NursingTotal    int     `db:"nursing_total" json:"nursing_total"`
	AdmissionsTotal int     `db:"admissions_total" json:"admissions_total"`
	DischargesTotal int     `db:"discharges_total" json:"discharges_total"`
	NurseRatio      float64 `db:"nurse_ratio" json:"nurse_ratio"`
}

// SectionFromRecord derives a summary section from an approved record.
// The nurse:patient ratio is defined as zero when the census is zero.
func SectionFromRecord(rec *census.ShiftCensusRecord) *ShiftSection {
	sec := &ShiftSection{
		FormID:          rec.Key,
		NursingTotal:    rec.NursingTotal(),
		AdmissionsTotal: census.Admissions(rec),
		DischargesTotal: census.Discharges(rec),
	}
	if rec.PatientCensus != nil {
		sec.PatientCensus = *rec.PatientCensus
	}
	if sec.PatientCensus > 0 {
		sec.NurseRatio = float64(sec.NursingTotal) / float64(sec.PatientCensus)
	}
	return sec
}

// Totals are the 24-hour combined figures, computed only once both shift
// sections are present.
type Totals struct {
	NursingTotal    int `json:"nursing_total"`
	AdmissionsTotal int `json:"admissions_total"`
	DischargesTotal int `json:"discharges_total"`
}

// DailySummary is the per-(ward, date) rollup over the approved morning and
// night records. It is derived-only: never edited directly.
type DailySummary struct {
	WardID           string        `db:"ward_id" json:"ward_id"`
	Date             time.Time     `db:"census_date" json:"date"`
	Morning          *ShiftSection `json:"morning,omitempty"`
	Night            *ShiftSection `json:"night,omitempty"`
	Combined         *Totals       `json:"combined,omitempty"`
	AllFormsApproved bool          `db:"all_forms_approved" json:"all_forms_approved"`
	CreatedAt        time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at" json:"updated_at"`
}

// Complete reports whether both shift sections are attached.
func (s *DailySummary) Complete() bool {
	return s.Morning != nil && s.Night != nil
}

// CombinedTotals sums both sections. Call only when Complete.
func (s *DailySummary) CombinedTotals() Totals {
	return Totals{
		NursingTotal:    s.Morning.NursingTotal + s.Night.NursingTotal,
		AdmissionsTotal: s.Morning.AdmissionsTotal + s.Night.AdmissionsTotal,
		DischargesTotal: s.Morning.DischargesTotal + s.Night.DischargesTotal,
	}
}

// SectionFor returns the section attached for a shift, nil when absent.
func (s *DailySummary) SectionFor(shift census.Shift) *ShiftSection {
	if shift == census.ShiftMorning {
		return s.Morning
	}
	return s.Night
}
