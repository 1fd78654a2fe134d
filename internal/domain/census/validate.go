package census

import (
	"strings"
	"unicode/utf8"
)

// Validation modes. Draft saves tolerate missing fields; finalize requires
// the complete record.
type ValidationMode string

const (
	ModeDraft    ValidationMode = "draft"
	ModeFinalize ValidationMode = "finalize"
)

// MaxCommentLength bounds the free-text comment.
const MaxCommentLength = 500

// minRecorderNameLength is the minimum trimmed length of a recorder name.
const minRecorderNameLength = 2

// ValidationResult reports field-level problems. MissingFields is ordered by
// the record's field order; the first entry is the field a form client should
// focus.
type ValidationResult struct {
	IsValid       bool              `json:"is_valid"`
	MissingFields []string          `json:"missing_fields,omitempty"`
	Errors        map[string]string `json:"errors,omitempty"`
}

// FirstMissing returns the first missing field, "" when none.
func (r ValidationResult) FirstMissing() string {
	if len(r.MissingFields) == 0 {
		return ""
	}
	return r.MissingFields[0]
}

func (r *ValidationResult) addError(field, msg string) {
	if r.Errors == nil {
		r.Errors = make(map[string]string)
	}
	r.Errors[field] = msg
}

// Validate checks a record under the given mode. Draft mode only rejects
// out-of-range values; finalize mode additionally requires every count field
// (zero is valid, absent is not) and the recorder's name. The NIGHT-after-
// MORNING ordering precondition needs a store read and lives in the service.
func Validate(rec *ShiftCensusRecord, mode ValidationMode) ValidationResult {
	res := ValidationResult{}

	for _, f := range rec.countFields() {
		switch {
		case f.value == nil:
			if mode == ModeFinalize {
				res.MissingFields = append(res.MissingFields, f.name)
				res.addError(f.name, "required")
			}
		case *f.value < 0:
			res.addError(f.name, "must not be negative")
		}
	}

	// Length limits are in characters, not bytes: comments and names are
	// routinely written in Thai, where a character is several bytes.
	if rec.Comment != nil && utf8.RuneCountInString(*rec.Comment) > MaxCommentLength {
		res.addError("comment", "must be at most 500 characters")
	}

	if mode == ModeFinalize {
		checkName(&res, "recorder_first_name", rec.RecorderFirstName)
		checkName(&res, "recorder_last_name", rec.RecorderLastName)
	}

	res.IsValid = len(res.Errors) == 0 && len(res.MissingFields) == 0
	return res
}

func checkName(res *ValidationResult, field, value string) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		res.MissingFields = append(res.MissingFields, field)
		res.addError(field, "required")
		return
	}
	if utf8.RuneCountInString(trimmed) < minRecorderNameLength {
		res.addError(field, "must be at least 2 characters")
	}
}
