package food

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

const dateFormat = "2006-01-02"

// Repository is a database-backed repository for foods.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const foodColumns = `id, name, instructions, frequency, start_date, meal,
	starting_amount, target_amount, progression_type, progression_duration,
	start_time, time_progression, time_progression_amount,
	created_at, updated_at`

// Save inserts a new food or updates an existing one. A missing ID is
// assigned here so callers can hand in freshly decoded API payloads.
func (r *Repository) Save(ctx context.Context, f *Food) error {
	now := time.Now().UTC()
	if f.ID == "" {
		f.ID = ulid.Make().String()
		f.CreatedAt = now
	}
	f.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO foods (`+foodColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			instructions = excluded.instructions,
			frequency = excluded.frequency,
			start_date = excluded.start_date,
			meal = excluded.meal,
			starting_amount = excluded.starting_amount,
			target_amount = excluded.target_amount,
			progression_type = excluded.progression_type,
			progression_duration = excluded.progression_duration,
			start_time = excluded.start_time,
			time_progression = excluded.time_progression,
			time_progression_amount = excluded.time_progression_amount,
			updated_at = excluded.updated_at`,
		f.ID, f.Name, f.Instructions, f.Frequency,
		f.StartDate.Format(dateFormat), f.Meal,
		f.StartingAmount, f.TargetAmount, f.ProgressionType, f.ProgressionDuration,
		f.StartTime, f.TimeProgression, f.TimeProgressionAmount,
		f.CreatedAt.Format(time.RFC3339), f.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save food: %w", err)
	}
	return nil
}

// Get retrieves a food by its ID, or nil when it does not exist.
func (r *Repository) Get(ctx context.Context, id string) (*Food, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+foodColumns+` FROM foods WHERE id = ?`, id)
	f, err := scanFood(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get food: %w", err)
	}
	return f, nil
}

// List retrieves all foods ordered by name.
func (r *Repository) List(ctx context.Context) ([]Food, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+foodColumns+` FROM foods ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list foods: %w", err)
	}
	defer rows.Close()

	var foods []Food
	for rows.Next() {
		f, err := scanFood(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan food: %w", err)
		}
		foods = append(foods, *f)
	}
	return foods, rows.Err()
}

// Delete removes a food. Schedule entries cascade via the schema.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM foods WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete food: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFood(row scanner) (*Food, error) {
	var f Food
	var startDate, createdAt, updatedAt string
	err := row.Scan(
		&f.ID, &f.Name, &f.Instructions, &f.Frequency, &startDate, &f.Meal,
		&f.StartingAmount, &f.TargetAmount, &f.ProgressionType, &f.ProgressionDuration,
		&f.StartTime, &f.TimeProgression, &f.TimeProgressionAmount,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	// Dates were written by this package in fixed formats; parse errors
	// only happen on hand-edited rows and leave zero times behind.
	f.StartDate, _ = time.Parse(dateFormat, startDate)
	f.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	f.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &f, nil
}
