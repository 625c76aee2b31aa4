package food

import "time"

// Progression types for the dose amount across successive occurrences.
const (
	ProgressionStatic    = "static"
	ProgressionBuildup   = "buildup"
	ProgressionReduction = "reduction"
	ProgressionCustom    = "custom"
)

// Time progression directions.
const (
	TimeStatic  = "static"
	TimeLater   = "later"
	TimeEarlier = "earlier"
)

// DurationForever marks a progression with no fixed end; entries are
// generated up to the configured horizon instead.
const DurationForever = -1

// Food is a scheduled food item with its administration instructions,
// recurrence text and optional dose/time progression parameters.
//
// Empty strings and zero values mean "not configured"; the schedule engine
// treats partially configured progressions as no progression at all.
type Food struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Instructions string `json:"instructions,omitempty"`

	// Frequency is free-form recurrence text, e.g. "Every day",
	// "3 times a week", "Every 2 days".
	Frequency string    `json:"frequency"`
	StartDate time.Time `json:"start_date"`

	// Meal is an optional category: breakfast, lunch, dinner, snack.
	Meal string `json:"meal,omitempty"`

	// Amount progression. StartingAmount and TargetAmount keep their
	// unit text, e.g. "1 teaspoon". ProgressionDuration is in days;
	// DurationForever means open-ended.
	StartingAmount      string `json:"starting_amount,omitempty"`
	TargetAmount        string `json:"target_amount,omitempty"`
	ProgressionType     string `json:"progression_type,omitempty"`
	ProgressionDuration int    `json:"progression_duration,omitempty"`

	// Time progression. StartTime is "HH:MM"; TimeProgressionAmount is
	// the per-occurrence shift in minutes.
	StartTime             string `json:"start_time,omitempty"`
	TimeProgression       string `json:"time_progression,omitempty"`
	TimeProgressionAmount int    `json:"time_progression_amount,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasAmountProgression reports whether all four amount progression fields
// are configured and the type asks for an actual curve.
func (f Food) HasAmountProgression() bool {
	if f.StartingAmount == "" || f.TargetAmount == "" || f.ProgressionType == "" || f.ProgressionDuration == 0 {
		return false
	}
	return f.ProgressionType != ProgressionStatic
}

// HasTimeProgression reports whether the time-of-day progression fields are
// configured and the direction asks for an actual shift.
func (f Food) HasTimeProgression() bool {
	if f.StartTime == "" || f.TimeProgression == "" || f.TimeProgressionAmount == 0 {
		return false
	}
	return f.TimeProgression != TimeStatic
}
