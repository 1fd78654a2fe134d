package approval

import (
	"time"

	"github.com/google/uuid"

	"github.com/wardops/wardops/internal/domain/census"
)

// Action is the decision recorded by a history entry.
type Action string

const (
	ActionApproved Action = "approved"
	ActionRejected Action = "rejected"
)

// HistoryRecord is one append-only audit entry per approve/reject decision.
// Entries are never mutated or deleted.
type HistoryRecord struct {
	ID        uuid.UUID    `db:"id" json:"id"`
	FormID    string       `db:"form_id" json:"form_id"`
	WardID    string       `db:"ward_id" json:"ward_id"`
	Date      time.Time    `db:"census_date" json:"date"`
	Shift     census.Shift `db:"shift" json:"shift"`
	Action    Action       `db:"action" json:"action"`
	ActorID   string       `db:"actor_id" json:"actor_id"`
	ActorName string       `db:"actor_name" json:"actor_name"`
	Reason    *string      `db:"reason" json:"reason,omitempty"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
}

// Actor identifies who approved or rejected.
type Actor struct {
	ID   string
	Name string
}
