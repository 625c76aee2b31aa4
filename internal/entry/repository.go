package entry

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"foodcal/internal/schedule"
)

// Repository is a database-backed repository for schedule entries.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const entryColumns = `id, food_id, date, occurrence_number,
	calculated_amount, calculated_time, completed, completed_at, created_at`

// InsertBatch persists a generated occurrence sequence. Dates already present
// for the food are skipped via the (food_id, date) uniqueness constraint
// rather than failing the batch. Returns how many rows were inserted and how
// many were skipped as duplicates.
func (r *Repository) InsertBatch(ctx context.Context, occurrences []schedule.Occurrence) (inserted, skipped int, err error) {
	if len(occurrences) == 0 {
		return 0, 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO schedule_entries
			(id, food_id, date, occurrence_number, calculated_amount, calculated_time, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(food_id, date) DO NOTHING`)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, occ := range occurrences {
		res, err := stmt.ExecContext(ctx,
			ulid.Make().String(),
			occ.FoodID,
			occ.Date.Format(schedule.DateFormat),
			occ.Number,
			nullable(occ.CalculatedAmount),
			nullable(occ.CalculatedTime),
			now,
		)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to insert entry for %s: %w", occ.Date.Format(schedule.DateFormat), err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			skipped++
			continue
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit entries: %w", err)
	}
	return inserted, skipped, nil
}

// ListRange retrieves entries with from <= date <= to, ordered by date then
// food. Both bounds are YYYY-MM-DD; string comparison matches date order.
func (r *Repository) ListRange(ctx context.Context, from, to string) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+entryColumns+` FROM schedule_entries
		WHERE date >= ? AND date <= ?
		ORDER BY date, food_id`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()
	return collect(rows)
}

// ListForFood retrieves every entry of one food, ordered by date.
func (r *Repository) ListForFood(ctx context.Context, foodID string) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+entryColumns+` FROM schedule_entries
		WHERE food_id = ? ORDER BY date`, foodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries for food: %w", err)
	}
	defer rows.Close()
	return collect(rows)
}

// Get retrieves a single entry by ID, or nil when it does not exist.
func (r *Repository) Get(ctx context.Context, id string) (*Entry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM schedule_entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return e, nil
}

// SetCompleted marks an entry as done or not done. Clearing completion is the
// undo surface of the tracker. Returns false when the entry does not exist.
func (r *Repository) SetCompleted(ctx context.Context, id string, completed bool) (bool, error) {
	var completedAt any
	if completed {
		completedAt = time.Now().UTC().Format(time.RFC3339)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE schedule_entries SET completed = ?, completed_at = ? WHERE id = ?`,
		completed, completedAt, id)
	if err != nil {
		return false, fmt.Errorf("failed to update completion: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// DeleteUpcoming removes not-yet-completed entries of a food on or after the
// given date. Used before regeneration when a food's rules changed, so past
// history and checked-off days survive.
func (r *Repository) DeleteUpcoming(ctx context.Context, foodID, from string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM schedule_entries
		WHERE food_id = ? AND date >= ? AND completed = 0`, foodID, from)
	if err != nil {
		return 0, fmt.Errorf("failed to delete upcoming entries: %w", err)
	}
	return res.RowsAffected()
}

// DeleteOldUncompleted removes uncompleted entries older than the cutoff
// date (YYYY-MM-DD). Maintenance command; completed history is kept.
func (r *Repository) DeleteOldUncompleted(ctx context.Context, cutoff string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM schedule_entries WHERE date < ? AND completed = 0`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old entries: %w", err)
	}
	return res.RowsAffected()
}

func collect(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var e Entry
	var amount, timeOfDay, completedAt sql.NullString
	var createdAt string
	err := row.Scan(
		&e.ID, &e.FoodID, &e.Date, &e.Number,
		&amount, &timeOfDay, &e.Completed, &completedAt, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	if amount.Valid {
		e.CalculatedAmount = &amount.String
	}
	if timeOfDay.Valid {
		e.CalculatedTime = &timeOfDay.String
	}
	if completedAt.Valid {
		if ts, err := time.Parse(time.RFC3339, completedAt.String); err == nil {
			e.CompletedAt = &ts
		}
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &e, nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
