package census

import (
	"strings"
	"time"
)

// Shift identifies the recording window of a record: one ward fills two
// records per calendar day, one per shift.
type Shift string

const (
	ShiftMorning Shift = "morning"
	ShiftNight   Shift = "night"
)

func (s Shift) Valid() bool {
	return s == ShiftMorning || s == ShiftNight
}

// Record lifecycle statuses.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusFinal    Status = "final"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusFinal, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Editable reports whether a submitter may still change the record's fields.
// Rejected records stay editable so they can be corrected and resubmitted.
func (s Status) Editable() bool {
	return s == StatusDraft || s == StatusRejected
}

// Class is the lifecycle class used by the identity scheme. Approved and
// rejected records share the final class: they are the same physical record
// the finalize produced.
type Class string

const (
	ClassDraft Class = "draft"
	ClassFinal Class = "final"
)

func (s Status) Class() Class {
	if s == StatusDraft {
		return ClassDraft
	}
	return ClassFinal
}

// ShiftCensusRecord is the per-(ward, shift, date) census document. Count
// fields are pointers so a draft can be saved with fields still unset; zero
// is a legitimate recorded value and distinct from absent.
type ShiftCensusRecord struct {
	Key    string    `db:"record_key" json:"id"`
	WardID string    `db:"ward_id" json:"ward_id"`
	Date   time.Time `db:"census_date" json:"date"`
	Shift  Shift     `db:"shift" json:"shift"`

	Status          Status  `db:"status" json:"status"`
	RejectionReason *string `db:"rejection_reason" json:"rejection_reason,omitempty"`

	PatientCensus *int `db:"patient_census" json:"patient_census,omitempty"`

	NurseManager *int `db:"nurse_manager" json:"nurse_manager,omitempty"`
	RN           *int `db:"rn" json:"rn,omitempty"`
	PN           *int `db:"pn" json:"pn,omitempty"`
	WC           *int `db:"wc" json:"wc,omitempty"`

	NewAdmit   *int `db:"new_admit" json:"new_admit,omitempty"`
	TransferIn *int `db:"transfer_in" json:"transfer_in,omitempty"`
	ReferIn    *int `db:"refer_in" json:"refer_in,omitempty"`

	Discharge   *int `db:"discharge" json:"discharge,omitempty"`
	TransferOut *int `db:"transfer_out" json:"transfer_out,omitempty"`
	ReferOut    *int `db:"refer_out" json:"refer_out,omitempty"`
	Dead        *int `db:"dead" json:"dead,omitempty"`

	Available        *int `db:"available" json:"available,omitempty"`
	Unavailable      *int `db:"unavailable" json:"unavailable,omitempty"`
	PlannedDischarge *int `db:"planned_discharge" json:"planned_discharge,omitempty"`

	Comment *string `db:"comment" json:"comment,omitempty"`

	RecorderFirstName string `db:"recorder_first_name" json:"recorder_first_name"`
	RecorderLastName  string `db:"recorder_last_name" json:"recorder_last_name"`

	CreatedBy  string  `db:"created_by" json:"created_by"`
	UpdatedBy  *string `db:"updated_by" json:"updated_by,omitempty"`
	ApprovedBy *string `db:"approved_by" json:"approved_by,omitempty"`
	RejectedBy *string `db:"rejected_by" json:"rejected_by,omitempty"`

	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
	FinalizedAt *time.Time `db:"finalized_at" json:"finalized_at,omitempty"`
	ApprovedAt  *time.Time `db:"approved_at" json:"approved_at,omitempty"`
	RejectedAt  *time.Time `db:"rejected_at" json:"rejected_at,omitempty"`
}

// IsDraft is the derived flag consumed by form clients.
func (r *ShiftCensusRecord) IsDraft() bool {
	return r.Status == StatusDraft
}

// Normalize canonicalizes the identity fields: ward ids are stored
// upper-case and dates carry no time component.
func (r *ShiftCensusRecord) Normalize() {
	r.WardID = NormalizeWardID(r.WardID)
	r.Date = DateOnly(r.Date)
}

// NormalizeWardID upper-cases and trims a ward identifier.
func NormalizeWardID(wardID string) string {
	return strings.ToUpper(strings.TrimSpace(wardID))
}

// DateOnly strips the time component, keeping a UTC calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// countField pairs a wire-level field name with its value for iteration in
// validation and aggregation.
type countField struct {
	name  string
	value *int
}

func (r *ShiftCensusRecord) countFields() []countField {
	return []countField{
		{"patient_census", r.PatientCensus},
		{"nurse_manager", r.NurseManager},
		{"rn", r.RN},
		{"pn", r.PN},
		{"wc", r.WC},
		{"new_admit", r.NewAdmit},
		{"transfer_in", r.TransferIn},
		{"refer_in", r.ReferIn},
		{"discharge", r.Discharge},
		{"transfer_out", r.TransferOut},
		{"refer_out", r.ReferOut},
		{"dead", r.Dead},
		{"available", r.Available},
		{"unavailable", r.Unavailable},
		{"planned_discharge", r.PlannedDischarge},
	}
}

// NursingTotal sums the four staffing counts, treating unset fields as zero.
func (r *ShiftCensusRecord) NursingTotal() int {
	return intVal(r.NurseManager) + intVal(r.RN) + intVal(r.PN) + intVal(r.WC)
}

func intVal(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
