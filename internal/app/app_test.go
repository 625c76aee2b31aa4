package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"foodcal/internal/config"
	"foodcal/internal/database"
	"foodcal/internal/entry"
	"foodcal/internal/food"
)

func testApp(t *testing.T) *App {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "test.db")
	cfg.Timezone = "UTC"
	cfg.HorizonDays = 30

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return New(cfg, food.NewRepository(db.SQL), entry.NewRepository(db.SQL))
}

func TestWindowBoundedByProgressionDuration(t *testing.T) {
	a := testApp(t)

	f := food.Food{
		StartDate:           time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		StartingAmount:      "1 ml",
		TargetAmount:        "5 ml",
		ProgressionType:     food.ProgressionBuildup,
		ProgressionDuration: 14,
	}

	from, to := a.Window(f)
	if !from.Equal(f.StartDate) {
		t.Errorf("Expected window to start at the food's start date, got %v", from)
	}
	want := time.Date(2025, time.January, 14, 0, 0, 0, 0, time.UTC)
	if !to.Equal(want) {
		t.Errorf("Expected window to end at start+13 days, got %v", to)
	}
}

func TestWindowOpenEndedUsesHorizon(t *testing.T) {
	a := testApp(t)

	f := food.Food{StartDate: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)}
	_, to := a.Window(f)

	// Horizon counts forward from today, not from the start date.
	if time.Until(to) < 29*24*time.Hour {
		t.Errorf("Expected the window to reach ~30 days ahead, got %v", to)
	}
}

func TestGenerateAndRegenerateAll(t *testing.T) {
	a := testApp(t)
	ctx := context.Background()

	f1 := food.Food{
		Name:                "Peanut powder",
		Frequency:           "every day",
		StartDate:           today(t),
		StartingAmount:      "1 teaspoon",
		TargetAmount:        "2 teaspoon",
		ProgressionType:     food.ProgressionBuildup,
		ProgressionDuration: 5,
	}
	f2 := food.Food{
		Name:      "Vitamin D",
		Frequency: "weekly",
		StartDate: today(t),
	}
	for _, f := range []*food.Food{&f1, &f2} {
		if err := a.Foods().Save(ctx, f); err != nil {
			t.Fatalf("failed to save food: %v", err)
		}
	}

	if err := a.RegenerateAll(ctx); err != nil {
		t.Fatalf("RegenerateAll failed: %v", err)
	}

	e1, err := a.Entries().ListForFood(ctx, f1.ID)
	if err != nil {
		t.Fatalf("ListForFood failed: %v", err)
	}
	if len(e1) != 5 {
		t.Errorf("Expected 5 entries for the bounded daily food, got %d", len(e1))
	}

	e2, err := a.Entries().ListForFood(ctx, f2.ID)
	if err != nil {
		t.Fatalf("ListForFood failed: %v", err)
	}
	// Weekly over a 30-day horizon lands on 5 matching weekdays.
	if len(e2) != 5 {
		t.Errorf("Expected 5 weekly entries over the horizon, got %d", len(e2))
	}

	// Running again must be a no-op thanks to (food, date) dedup.
	if err := a.RegenerateAll(ctx); err != nil {
		t.Fatalf("Second RegenerateAll failed: %v", err)
	}
	e1again, _ := a.Entries().ListForFood(ctx, f1.ID)
	if len(e1again) != len(e1) {
		t.Errorf("Expected idempotent regeneration, got %d entries", len(e1again))
	}
}

func today(t *testing.T) time.Time {
	t.Helper()
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
