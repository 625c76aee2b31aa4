package schedule

import (
	"reflect"
	"testing"
	"time"

	"foodcal/internal/food"
)

func buildupFood() food.Food {
	return food.Food{
		ID:                  "f1",
		Name:                "Peanut powder",
		StartingAmount:      "1 teaspoon",
		TargetAmount:        "3 teaspoon",
		ProgressionType:     food.ProgressionBuildup,
		ProgressionDuration: 30,
	}
}

func amounts(f food.Food, total int) []string {
	dates := make([]time.Time, total)
	d := date(2025, time.January, 1)
	for i := range dates {
		dates[i] = d.AddDate(0, 0, i)
	}
	occ := Annotate(dates, f)
	out := make([]string, 0, total)
	for _, o := range occ {
		if o.CalculatedAmount == nil {
			out = append(out, "<nil>")
			continue
		}
		out = append(out, *o.CalculatedAmount)
	}
	return out
}

func TestAmountBuildup(t *testing.T) {
	got := amounts(buildupFood(), 5)
	want := []string{"1.00 teaspoon", "1.50 teaspoon", "2.00 teaspoon", "2.50 teaspoon", "3.00 teaspoon"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestAmountReduction(t *testing.T) {
	f := buildupFood()
	f.StartingAmount = "10 ml"
	f.TargetAmount = "2 ml"
	f.ProgressionType = food.ProgressionReduction

	got := amounts(f, 5)
	want := []string{"10.00 ml", "8.00 ml", "6.00 ml", "4.00 ml", "2.00 ml"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestAmountCustomPlateau(t *testing.T) {
	f := buildupFood()
	f.ProgressionType = food.ProgressionCustom

	// 11 occurrences put p = 0.4, 0.5 and 0.6 inside the plateau band;
	// all of them must sit at exactly 50% of the start->target range.
	got := amounts(f, 11)
	for i := 4; i <= 6; i++ {
		if got[i] != "2.00 teaspoon" {
			t.Errorf("occurrence %d (p=%.1f): expected plateau value 2.00 teaspoon, got %s", i, float64(i)/10, got[i])
		}
	}
	if got[0] != "1.00 teaspoon" {
		t.Errorf("expected start value at first occurrence, got %s", got[0])
	}
	if got[10] != "3.00 teaspoon" {
		t.Errorf("expected target value at last occurrence, got %s", got[10])
	}
}

func TestAmountStaticPassthrough(t *testing.T) {
	f := buildupFood()
	f.ProgressionType = food.ProgressionStatic

	got := amounts(f, 4)
	for _, a := range got {
		if a != "1 teaspoon" {
			t.Errorf("static progression must return the starting amount verbatim, got %s", a)
		}
	}
}

func TestAmountPartialConfigIsNoProgression(t *testing.T) {
	f := buildupFood()
	f.TargetAmount = ""

	got := amounts(f, 3)
	for _, a := range got {
		if a != "1 teaspoon" {
			t.Errorf("partial progression config must pass through, got %s", a)
		}
	}
}

func TestAmountAbsentIsNil(t *testing.T) {
	f := food.Food{ID: "f1", Name: "Water"}
	occ := Annotate([]time.Time{date(2025, time.January, 1)}, f)
	if occ[0].CalculatedAmount != nil {
		t.Errorf("expected nil amount, got %q", *occ[0].CalculatedAmount)
	}
	if occ[0].CalculatedTime != nil {
		t.Errorf("expected nil time, got %q", *occ[0].CalculatedTime)
	}
}

func TestAmountNonNumericDefaultsToOne(t *testing.T) {
	f := buildupFood()
	f.StartingAmount = "a pinch"
	f.TargetAmount = "3"

	got := amounts(f, 3)
	// Magnitude defaults to 1 and the whole original text is the suffix.
	want := []string{"1.00a pinch", "2.00a pinch", "3.00a pinch"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestAmountSingleOccurrenceFullyProgressed(t *testing.T) {
	got := amounts(buildupFood(), 1)
	if got[0] != "3.00 teaspoon" {
		t.Errorf("single occurrence counts as fully progressed, got %s", got[0])
	}
}

func TestAmountForeverDuration(t *testing.T) {
	f := buildupFood()
	f.ProgressionDuration = food.DurationForever

	got := amounts(f, 5)
	if got[2] != "2.00 teaspoon" {
		t.Errorf("open-ended duration still progresses by position, got %s", got[2])
	}
}

func timeFood() food.Food {
	return food.Food{
		ID:                    "f2",
		Name:                  "Iron drops",
		StartTime:             "08:00",
		TimeProgression:       food.TimeLater,
		TimeProgressionAmount: 15,
	}
}

func times(f food.Food, total int) []string {
	dates := make([]time.Time, total)
	d := date(2025, time.January, 1)
	for i := range dates {
		dates[i] = d.AddDate(0, 0, i)
	}
	occ := Annotate(dates, f)
	out := make([]string, 0, total)
	for _, o := range occ {
		if o.CalculatedTime == nil {
			out = append(out, "<nil>")
			continue
		}
		out = append(out, *o.CalculatedTime)
	}
	return out
}

func TestTimeLater(t *testing.T) {
	got := times(timeFood(), 4)
	want := []string{"08:00", "08:15", "08:30", "08:45"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestTimeEarlier(t *testing.T) {
	f := timeFood()
	f.TimeProgression = food.TimeEarlier

	got := times(f, 3)
	want := []string{"08:00", "07:45", "07:30"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestTimeWrapsAcrossMidnight(t *testing.T) {
	t.Run("Forward", func(t *testing.T) {
		f := timeFood()
		f.StartTime = "23:30"
		f.TimeProgressionAmount = 60

		got := times(f, 2)
		if got[1] != "00:30" {
			t.Errorf("expected wrap to 00:30, got %s", got[1])
		}
	})

	t.Run("Backward", func(t *testing.T) {
		f := timeFood()
		f.StartTime = "00:30"
		f.TimeProgression = food.TimeEarlier
		f.TimeProgressionAmount = 60

		got := times(f, 2)
		if got[1] != "23:30" {
			t.Errorf("expected wrap to 23:30, got %s", got[1])
		}
	})
}

func TestTimeStaticPassthrough(t *testing.T) {
	f := timeFood()
	f.TimeProgression = food.TimeStatic

	got := times(f, 3)
	for _, s := range got {
		if s != "08:00" {
			t.Errorf("static time progression must pass through, got %s", s)
		}
	}
}

func TestTimeUnparseablePassthrough(t *testing.T) {
	f := timeFood()
	f.StartTime = "morning"

	got := times(f, 2)
	for _, s := range got {
		if s != "morning" {
			t.Errorf("unparseable time must pass through untouched, got %s", s)
		}
	}
}

func TestAnnotateNumbersAndIdempotence(t *testing.T) {
	dates := Expand("every other day", date(2025, time.January, 1), date(2025, time.January, 9))
	f := buildupFood()

	first := Annotate(dates, f)
	second := Annotate(dates, f)
	if !reflect.DeepEqual(first, second) {
		t.Error("expected identical output for identical input")
	}
	for i, o := range first {
		if o.Number != i {
			t.Errorf("expected occurrence number %d, got %d", i, o.Number)
		}
	}
}
