// Package schedule turns a food's frequency text and progression parameters
// into dated occurrences with per-occurrence dose amount and time-of-day.
//
// Both halves — Expand and Annotate — are pure functions: they hold no
// state, perform no I/O and never return errors. Malformed input degrades
// to documented defaults instead of failing, so a schedule can always be
// generated for whatever the user typed. Persisting and deduplicating
// the result is the caller's concern.
package schedule

import (
	"time"

	"foodcal/internal/food"
)

// DateFormat is the wire format for occurrence dates.
const DateFormat = "2006-01-02"

// Occurrence is one concrete scheduled instance of a food.
type Occurrence struct {
	FoodID string
	Date   time.Time

	// Number is the zero-based position of this occurrence within the
	// sequence generated by a single call; regenerating over a different
	// range renumbers.
	Number int

	// CalculatedAmount and CalculatedTime are nil when the corresponding
	// progression inputs are not configured.
	CalculatedAmount *string
	CalculatedTime   *string
}

// Annotate computes the progressed amount and time for every date in an
// already-expanded occurrence sequence. The full sequence length feeds each
// individual value (progress is position over total), so the dates must be
// materialized before any single occurrence can be computed.
func Annotate(dates []time.Time, f food.Food) []Occurrence {
	total := len(dates)
	occurrences := make([]Occurrence, 0, total)
	for i, d := range dates {
		occurrences = append(occurrences, Occurrence{
			FoodID:           f.ID,
			Date:             d,
			Number:           i,
			CalculatedAmount: amountAt(f, i, total),
			CalculatedTime:   timeAt(f, i),
		})
	}
	return occurrences
}
