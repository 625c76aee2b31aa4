package entry

import "time"

// Entry is a persisted schedule occurrence: one food on one calendar date,
// with its computed dose amount and time, and its completion state.
//
// (food_id, date) is unique; regeneration inserts are best-effort and skip
// dates that already exist so completion state is never clobbered.
type Entry struct {
	ID     string `json:"id"`
	FoodID string `json:"food_id"`

	// Date is the occurrence date in YYYY-MM-DD.
	Date string `json:"date"`

	// Number is the occurrence's zero-based position within the
	// generation call that produced it.
	Number int `json:"occurrence_number"`

	CalculatedAmount *string `json:"calculated_amount"`
	CalculatedTime   *string `json:"calculated_time"`

	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
