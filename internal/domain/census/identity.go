package census

import (
	"fmt"
	"time"
)

// keyDateFormat renders a calendar date as yyMMdd for record keys.
const keyDateFormat = "060102"

// RecordKey derives the stable store key for a record slot:
// {WARDID}_{shift}_{class}_d{yyMMdd}. The key is fixed when the record is
// first written and is not regenerated on promotion, so a record that began
// life as a draft keeps its draft-class key through final, approved and
// rejected states. The class tag therefore reflects creation history, not
// current status.
func RecordKey(wardID string, shift Shift, class Class, date time.Time) string {
	return fmt.Sprintf("%s_%s_%s_d%s",
		NormalizeWardID(wardID), shift, class, DateOnly(date).Format(keyDateFormat))
}

// CandidateKeys returns the keys a slot lookup must try, final-class first.
// A record promoted in place still lives under its original draft-class key,
// so a miss on the final-class key falls through to the draft-class key.
func CandidateKeys(wardID string, shift Shift, date time.Time) []string {
	return []string{
		RecordKey(wardID, shift, ClassFinal, date),
		RecordKey(wardID, shift, ClassDraft, date),
	}
}
