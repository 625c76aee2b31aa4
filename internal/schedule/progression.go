package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"foodcal/internal/food"
)

var leadingFloat = regexp.MustCompile(`^[\d.]+`)

// amountAt computes the dose amount for occurrence i of total.
//
// Progress runs linearly from 0 at the first occurrence to 1 at the last;
// a single-occurrence sequence counts as fully progressed. The numeric
// magnitude is read off the front of the amount text and the remaining unit
// text ("1 teaspoon" -> 1, " teaspoon") is carried into the output verbatim.
// Returns nil only when no starting amount is configured at all.
func amountAt(f food.Food, i, total int) *string {
	if !f.HasAmountProgression() {
		return passthrough(f.StartingAmount)
	}

	start, suffix := splitAmount(f.StartingAmount)
	target, _ := splitAmount(f.TargetAmount)
	p := progressAt(i, total)

	var value float64
	switch f.ProgressionType {
	case food.ProgressionBuildup:
		value = start + (target-start)*p
	case food.ProgressionReduction:
		value = start - (start-target)*p
	case food.ProgressionCustom:
		value = customCurve(start, target, p)
	default:
		// Unknown type with all fields present: treat as unconfigured.
		return passthrough(f.StartingAmount)
	}

	out := fmt.Sprintf("%.2f%s", value, suffix)
	return &out
}

// customCurve is a three-phase piecewise ramp: up to the midpoint of the
// start->target range in the first third of progress, a flat plateau at the
// midpoint through the middle third, then up from the midpoint to the target
// in the last third. The segment boundaries are intentionally not smoothed.
func customCurve(start, target, p float64) float64 {
	mid := start + (target-start)*0.5
	switch {
	case p < 0.33:
		return start + (mid-start)*(p/0.33)
	case p < 0.67:
		return mid
	default:
		return mid + (target-mid)*((p-0.67)/0.33)
	}
}

// timeAt computes the clock time for occurrence i.
//
// "later" shifts the start time forward by amount*i minutes, "earlier"
// backward; the result wraps within a single day's clock, so crossing
// midnight yields e.g. "00:30" rather than a negative or overflowed value.
// An unparseable start time is passed through untouched.
func timeAt(f food.Food, i int) *string {
	if !f.HasTimeProgression() {
		return passthrough(f.StartTime)
	}

	minutes, ok := parseClock(f.StartTime)
	if !ok {
		return passthrough(f.StartTime)
	}

	shift := f.TimeProgressionAmount * i
	switch f.TimeProgression {
	case food.TimeLater:
		minutes += shift
	case food.TimeEarlier:
		minutes -= shift
	default:
		return passthrough(f.StartTime)
	}

	// True modulo: keep the wrapped value in [0, 1440).
	minutes = ((minutes % 1440) + 1440) % 1440

	out := fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
	return &out
}

// splitAmount splits "1.5 teaspoon" into its numeric magnitude and unit
// suffix. A missing or unparseable numeric prefix defaults the magnitude
// to 1; the suffix is whatever text follows the prefix.
func splitAmount(s string) (float64, string) {
	m := leadingFloat.FindString(s)
	if m == "" {
		return 1, s
	}
	value, err := strconv.ParseFloat(m, 64)
	if err != nil {
		value = 1
	}
	return value, s[len(m):]
}

func parseClock(s string) (int, bool) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	return h*60 + m, true
}

// progressAt maps occurrence i of total onto [0, 1], reaching exactly 1 at
// the last occurrence. A single-occurrence sequence counts as fully
// progressed, which also guards the zero denominator.
func progressAt(i, total int) float64 {
	if total <= 1 {
		return 1
	}
	p := float64(i) / float64(total-1)
	if p > 1 {
		p = 1
	}
	return p
}

func passthrough(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
