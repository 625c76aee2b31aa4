package ics

import (
	"strings"
	"testing"
	"time"

	"foodcal/internal/food"
)

func testFood() food.Food {
	return food.Food{
		ID:           "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		Name:         "Peanut powder",
		Instructions: "Mix into yogurt",
		Frequency:    "3 times a week",
		StartDate:    time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestBuildWeekdaySetRule(t *testing.T) {
	out := Build([]food.Food{testFood()}, 90, time.UTC)

	if !strings.Contains(out, "BEGIN:VCALENDAR") || !strings.Contains(out, "END:VCALENDAR") {
		t.Fatal("expected a complete VCALENDAR")
	}
	if !strings.Contains(out, "SUMMARY:Peanut powder") {
		t.Error("expected food name as SUMMARY")
	}
	if !strings.Contains(out, "FREQ=WEEKLY") {
		t.Error("expected weekly RRULE for a times-per-week food")
	}
	if !strings.Contains(out, "MO,WE,FR") {
		t.Errorf("expected the Mon/Wed/Fri weekday set, got:\n%s", out)
	}
	if !strings.Contains(out, "UID:01ARZ3NDEKTSV4RRFFQ69G5FAV@foodcal") {
		t.Error("expected food ID in UID")
	}
}

func TestBuildEveryOtherDayRule(t *testing.T) {
	f := testFood()
	f.Frequency = "every other day"

	out := Build([]food.Food{f}, 90, time.UTC)
	if !strings.Contains(out, "FREQ=DAILY") {
		t.Error("expected daily RRULE")
	}
	if !strings.Contains(out, "INTERVAL=2") {
		t.Errorf("expected INTERVAL=2, got:\n%s", out)
	}
}

func TestBuildBoundedDurationSetsUntil(t *testing.T) {
	f := testFood()
	f.Frequency = "every day"
	f.StartingAmount = "1 teaspoon"
	f.TargetAmount = "3 teaspoon"
	f.ProgressionType = food.ProgressionBuildup
	f.ProgressionDuration = 14

	out := Build([]food.Food{f}, 90, time.UTC)
	if !strings.Contains(out, "UNTIL=20250114") {
		t.Errorf("expected UNTIL at start+13 days, got:\n%s", out)
	}
}

func TestBuildTimedVersusAllDay(t *testing.T) {
	t.Run("Timed", func(t *testing.T) {
		f := testFood()
		f.StartTime = "08:30"
		out := Build([]food.Food{f}, 90, time.UTC)
		if !strings.Contains(out, "DTSTART:20250101T083000") {
			t.Errorf("expected timed DTSTART at 08:30, got:\n%s", out)
		}
	})

	t.Run("AllDay", func(t *testing.T) {
		out := Build([]food.Food{testFood()}, 90, time.UTC)
		if !strings.Contains(out, "DTSTART;VALUE=DATE:20250101") {
			t.Errorf("expected all-day DTSTART, got:\n%s", out)
		}
	})
}
