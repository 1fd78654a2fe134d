package approval

import (
	"context"
	"time"
)

// HistoryRepository stores the append-only approval audit trail. Listings
// are ordered by timestamp descending for display.
type HistoryRepository interface {
	Append(ctx context.Context, rec *HistoryRecord) error
	ListByForm(ctx context.Context, formID string, limit, offset int) ([]*HistoryRecord, int, error)
	ListByWardDate(ctx context.Context, wardID string, date time.Time, limit, offset int) ([]*HistoryRecord, int, error)
}
