package schedule

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Family identifies which recurrence rule a frequency text was matched to.
type Family int

const (
	// FamilyDaily matches "daily" / "every day": an occurrence on every date.
	FamilyDaily Family = iota
	// FamilyWeekly matches "weekly" / "once a week": the start date's weekday.
	FamilyWeekly
	// FamilyWeekdaySet matches "N times a week" variants: a fixed weekday set.
	FamilyWeekdaySet
	// FamilyEveryOtherDay matches "every 2 days" / "every other day".
	FamilyEveryOtherDay
	// FamilyFallback is any unrecognized text, treated as every day.
	FamilyFallback
)

// Pattern is the classified form of a frequency text. It is shared between
// date expansion and the ICS feed builder so both produce the same rule.
type Pattern struct {
	Family   Family
	Weekdays []time.Weekday // populated for FamilyWeekly and FamilyWeekdaySet
}

var leadingInt = regexp.MustCompile(`(\d+)`)

// timesPerWeekSets maps an occurrences-per-week count to its fixed weekday
// set. The sets are a literal table, not a distribution formula; note the
// asymmetric picks for 4 (no Wednesday) and 6 (everything but Sunday).
var timesPerWeekSets = map[int][]time.Weekday{
	7: {time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday},
	6: {time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday},
	5: {time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
	4: {time.Monday, time.Tuesday, time.Thursday, time.Friday},
	3: {time.Monday, time.Wednesday, time.Friday},
	2: {time.Tuesday, time.Friday},
}

// Classify maps free-form frequency text to a Pattern. Tests run in priority
// order and the first match wins, so "daily" never reaches the number-bearing
// branches. Unrecognized text (including e.g. "every 3 days") falls back to
// an occurrence on every date rather than an error.
func Classify(frequency string, start time.Time) Pattern {
	text := strings.ToLower(strings.TrimSpace(frequency))

	switch text {
	case "daily", "every day":
		return Pattern{Family: FamilyDaily}
	case "weekly", "once a week":
		return Pattern{Family: FamilyWeekly, Weekdays: []time.Weekday{start.Weekday()}}
	}

	if strings.Contains(text, "times per week") ||
		strings.Contains(text, "x week") ||
		strings.Contains(text, "times a week") {
		n := 3
		if m := leadingInt.FindString(text); m != "" {
			if v, err := strconv.Atoi(m); err == nil {
				n = v
			}
		}
		if n == 1 {
			return Pattern{Family: FamilyWeekdaySet, Weekdays: []time.Weekday{start.Weekday()}}
		}
		set, ok := timesPerWeekSets[n]
		if !ok {
			set = timesPerWeekSets[3]
		}
		return Pattern{Family: FamilyWeekdaySet, Weekdays: set}
	}

	if strings.Contains(text, "every 2 days") || strings.Contains(text, "every other day") {
		return Pattern{Family: FamilyEveryOtherDay}
	}

	return Pattern{Family: FamilyFallback}
}

// Matches reports whether date (relative to the schedule's start date)
// carries an occurrence under the pattern.
func (p Pattern) Matches(date, start time.Time) bool {
	switch p.Family {
	case FamilyWeekly, FamilyWeekdaySet:
		for _, wd := range p.Weekdays {
			if date.Weekday() == wd {
				return true
			}
		}
		return false
	case FamilyEveryOtherDay:
		return daysBetween(start, date)%2 == 0
	default:
		return true
	}
}

// Expand turns a frequency text into the ascending list of dates in
// [start, end] (inclusive) on which the food occurs. An inverted range
// yields an empty result, not an error. The returned times are truncated
// to midnight in start's location.
func Expand(frequency string, start, end time.Time) []time.Time {
	start = atMidnight(start)
	end = atMidnight(end)
	if end.Before(start) {
		return nil
	}

	pattern := Classify(frequency, start)

	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if pattern.Matches(d, start) {
			dates = append(dates, d)
		}
	}
	return dates
}

func atMidnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween counts whole calendar days from a to b, by date rather than
// by 24h intervals so DST transitions cannot skew the parity test.
func daysBetween(a, b time.Time) int {
	a = atMidnight(a)
	b = atMidnight(b)
	days := 0
	for d := a; d.Before(b); d = d.AddDate(0, 0, 1) {
		days++
	}
	return days
}
