package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"foodcal/internal/config"
	"foodcal/internal/entry"
	"foodcal/internal/food"
	applog "foodcal/internal/log"
	"foodcal/internal/schedule"
)

// App holds the application's dependencies and implements the operations
// the HTTP layer and CLI commands call into.
type App struct {
	cfg     *config.Config
	foods   *food.Repository
	entries *entry.Repository
	loc     *time.Location

	cron *cron.Cron
}

// New creates and initializes a new App instance.
func New(cfg *config.Config, foods *food.Repository, entries *entry.Repository) *App {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		applog.Error("unknown timezone, falling back to local", err, "timezone", cfg.Timezone)
		loc = time.Local
	}
	return &App{
		cfg:     cfg,
		foods:   foods,
		entries: entries,
		loc:     loc,
	}
}

// Location is the timezone schedule dates are computed in.
func (a *App) Location() *time.Location {
	return a.loc
}

// Foods exposes the food repository to the HTTP layer.
func (a *App) Foods() *food.Repository {
	return a.foods
}

// Entries exposes the entry repository to the HTTP layer.
func (a *App) Entries() *entry.Repository {
	return a.entries
}

// Window returns the generation date range for a food: from its start date
// through either the end of its bounded progression or the configured
// horizon ahead of today.
func (a *App) Window(f food.Food) (time.Time, time.Time) {
	// Reinterpret the stored calendar date in the app timezone; converting
	// the instant would shift the day in zones west of UTC.
	from := time.Date(f.StartDate.Year(), f.StartDate.Month(), f.StartDate.Day(), 0, 0, 0, 0, a.loc)
	if f.ProgressionDuration > 0 {
		return from, from.AddDate(0, 0, f.ProgressionDuration-1)
	}
	return from, a.today().AddDate(0, 0, a.cfg.HorizonDays)
}

// Generate expands a food's frequency over [from, to], annotates each
// occurrence with its progressed amount and time, and persists the batch.
// Dates that already have an entry for this food are skipped, never
// overwritten, so completion state survives regeneration.
func (a *App) Generate(ctx context.Context, f food.Food, from, to time.Time) (inserted, skipped int, err error) {
	dates := schedule.Expand(f.Frequency, from, to)
	occurrences := schedule.Annotate(dates, f)

	inserted, skipped, err = a.entries.InsertBatch(ctx, occurrences)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to persist entries for %q: %w", f.Name, err)
	}

	applog.Info("schedule generated",
		"food", f.Name,
		"from", from.Format(schedule.DateFormat),
		"to", to.Format(schedule.DateFormat),
		"inserted", inserted,
		"skipped", skipped,
	)
	return inserted, skipped, nil
}

// GenerateDefault generates a food's schedule over its own window.
func (a *App) GenerateDefault(ctx context.Context, f food.Food) (int, int, error) {
	from, to := a.Window(f)
	return a.Generate(ctx, f, from, to)
}

// Regenerate replaces a food's upcoming uncompleted entries with a fresh
// expansion, used after its frequency or progression rules changed. Past
// entries and completed days are left alone.
func (a *App) Regenerate(ctx context.Context, f food.Food) (int, int, error) {
	today := a.today()
	removed, err := a.entries.DeleteUpcoming(ctx, f.ID, today.Format(schedule.DateFormat))
	if err != nil {
		return 0, 0, err
	}
	if removed > 0 {
		applog.Debug("removed upcoming entries before regeneration", "food", f.Name, "removed", removed)
	}
	return a.GenerateDefault(ctx, f)
}

// RegenerateAll runs generation for every food, keeping the calendar topped
// up to the horizon. Failures are logged per food and do not abort the rest
// of the batch.
func (a *App) RegenerateAll(ctx context.Context) error {
	foods, err := a.foods.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list foods: %w", err)
	}

	for _, f := range foods {
		if _, _, err := a.GenerateDefault(ctx, f); err != nil {
			applog.Error("generation failed", err, "food", f.Name)
			continue
		}
	}
	return nil
}

// StartScheduler begins periodic regeneration on the configured cron spec.
func (a *App) StartScheduler() error {
	c := cron.New()
	_, err := c.AddFunc(a.cfg.RefreshCron, func() {
		if err := a.RegenerateAll(context.Background()); err != nil {
			applog.Error("scheduled regeneration failed", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid refresh cron %q: %w", a.cfg.RefreshCron, err)
	}
	c.Start()
	a.cron = c
	applog.Info("regeneration scheduler started", "spec", a.cfg.RefreshCron)
	return nil
}

// StopScheduler stops the cron scheduler, waiting for a running job.
func (a *App) StopScheduler() {
	if a.cron != nil {
		<-a.cron.Stop().Done()
	}
}

// CleanupOld removes uncompleted entries older than the given number of
// days. Completed entries are history and are kept.
func (a *App) CleanupOld(ctx context.Context, days int) (int64, error) {
	cutoff := a.today().AddDate(0, 0, -days)
	return a.entries.DeleteOldUncompleted(ctx, cutoff.Format(schedule.DateFormat))
}

func (a *App) today() time.Time {
	now := time.Now().In(a.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, a.loc)
}
