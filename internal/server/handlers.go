package server

import (
	"net/http"
	"time"

	"foodcal/internal/entry"
	"foodcal/internal/food"
	applog "foodcal/internal/log"
	"foodcal/internal/schedule"
)

// apiFood is the wire shape of a food. Dates cross the API as YYYY-MM-DD
// strings; progression fields are omitted when unconfigured.
type apiFood struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name"`
	Instructions string `json:"instructions,omitempty"`
	Frequency    string `json:"frequency"`
	StartDate    string `json:"start_date"`
	Meal         string `json:"meal,omitempty"`

	StartingAmount      string `json:"starting_amount,omitempty"`
	TargetAmount        string `json:"target_amount,omitempty"`
	ProgressionType     string `json:"progression_type,omitempty"`
	ProgressionDuration int    `json:"progression_duration,omitempty"`

	StartTime             string `json:"start_time,omitempty"`
	TimeProgression       string `json:"time_progression,omitempty"`
	TimeProgressionAmount int    `json:"time_progression_amount,omitempty"`
}

func toAPI(f food.Food) apiFood {
	return apiFood{
		ID:                    f.ID,
		Name:                  f.Name,
		Instructions:          f.Instructions,
		Frequency:             f.Frequency,
		StartDate:             f.StartDate.Format(schedule.DateFormat),
		Meal:                  f.Meal,
		StartingAmount:        f.StartingAmount,
		TargetAmount:          f.TargetAmount,
		ProgressionType:       f.ProgressionType,
		ProgressionDuration:   f.ProgressionDuration,
		StartTime:             f.StartTime,
		TimeProgression:       f.TimeProgression,
		TimeProgressionAmount: f.TimeProgressionAmount,
	}
}

func (p apiFood) toModel(loc *time.Location) (food.Food, string) {
	if p.Name == "" {
		return food.Food{}, "name is required"
	}
	if p.Frequency == "" {
		return food.Food{}, "frequency is required"
	}
	startDate, err := time.ParseInLocation(schedule.DateFormat, p.StartDate, loc)
	if err != nil {
		return food.Food{}, "start_date must be YYYY-MM-DD"
	}

	return food.Food{
		ID:                    p.ID,
		Name:                  p.Name,
		Instructions:          p.Instructions,
		Frequency:             p.Frequency,
		StartDate:             startDate,
		Meal:                  p.Meal,
		StartingAmount:        p.StartingAmount,
		TargetAmount:          p.TargetAmount,
		ProgressionType:       p.ProgressionType,
		ProgressionDuration:   p.ProgressionDuration,
		StartTime:             p.StartTime,
		TimeProgression:       p.TimeProgression,
		TimeProgressionAmount: p.TimeProgressionAmount,
	}, ""
}

func (s *Server) handleListFoods(w http.ResponseWriter, r *http.Request) {
	foods, err := s.app.Foods().List(r.Context())
	if err != nil {
		applog.Error("failed to list foods", err)
		writeError(w, http.StatusInternalServerError, "failed to list foods")
		return
	}

	out := make([]apiFood, 0, len(foods))
	for _, f := range foods {
		out = append(out, toAPI(f))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateFood(w http.ResponseWriter, r *http.Request) {
	var payload apiFood
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	payload.ID = ""

	f, problem := payload.toModel(s.app.Location())
	if problem != "" {
		writeError(w, http.StatusBadRequest, problem)
		return
	}

	if err := s.app.Foods().Save(r.Context(), &f); err != nil {
		applog.Error("failed to save food", err, "name", f.Name)
		writeError(w, http.StatusInternalServerError, "failed to save food")
		return
	}

	// Schedule entries are generated immediately so the calendar is
	// populated as soon as the food exists. A generation failure still
	// returns the created food; the next cron pass retries.
	if _, _, err := s.app.GenerateDefault(r.Context(), f); err != nil {
		applog.Error("initial generation failed", err, "food", f.Name)
	}

	writeJSON(w, http.StatusCreated, toAPI(f))
}

func (s *Server) handleGetFood(w http.ResponseWriter, r *http.Request) {
	f, err := s.app.Foods().Get(r.Context(), r.PathValue("id"))
	if err != nil {
		applog.Error("failed to get food", err)
		writeError(w, http.StatusInternalServerError, "failed to get food")
		return
	}
	if f == nil {
		writeError(w, http.StatusNotFound, "food not found")
		return
	}
	writeJSON(w, http.StatusOK, toAPI(*f))
}

func (s *Server) handleUpdateFood(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := s.app.Foods().Get(r.Context(), id)
	if err != nil {
		applog.Error("failed to get food", err)
		writeError(w, http.StatusInternalServerError, "failed to get food")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "food not found")
		return
	}

	var payload apiFood
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	payload.ID = id

	f, problem := payload.toModel(s.app.Location())
	if problem != "" {
		writeError(w, http.StatusBadRequest, problem)
		return
	}
	f.CreatedAt = existing.CreatedAt

	if err := s.app.Foods().Save(r.Context(), &f); err != nil {
		applog.Error("failed to save food", err, "name", f.Name)
		writeError(w, http.StatusInternalServerError, "failed to save food")
		return
	}

	// Rules may have changed; rebuild the upcoming schedule.
	if _, _, err := s.app.Regenerate(r.Context(), f); err != nil {
		applog.Error("regeneration failed", err, "food", f.Name)
	}

	writeJSON(w, http.StatusOK, toAPI(f))
}

func (s *Server) handleDeleteFood(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Foods().Delete(r.Context(), r.PathValue("id")); err != nil {
		applog.Error("failed to delete food", err)
		writeError(w, http.StatusInternalServerError, "failed to delete food")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type generateResponse struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	f, err := s.app.Foods().Get(r.Context(), r.PathValue("id"))
	if err != nil {
		applog.Error("failed to get food", err)
		writeError(w, http.StatusInternalServerError, "failed to get food")
		return
	}
	if f == nil {
		writeError(w, http.StatusNotFound, "food not found")
		return
	}

	from, to := s.app.Window(*f)
	if v := r.URL.Query().Get("from"); v != "" {
		if from, err = time.ParseInLocation(schedule.DateFormat, v, s.app.Location()); err != nil {
			writeError(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
			return
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if to, err = time.ParseInLocation(schedule.DateFormat, v, s.app.Location()); err != nil {
			writeError(w, http.StatusBadRequest, "to must be YYYY-MM-DD")
			return
		}
	}

	inserted, skipped, err := s.app.Generate(r.Context(), *f, from, to)
	if err != nil {
		applog.Error("generation failed", err, "food", f.Name)
		writeError(w, http.StatusInternalServerError, "generation failed")
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{Inserted: inserted, Skipped: skipped})
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	now := time.Now().In(s.app.Location())
	from := now.Format(schedule.DateFormat)
	to := now.AddDate(0, 0, 30).Format(schedule.DateFormat)

	if v := r.URL.Query().Get("from"); v != "" {
		if _, err := time.Parse(schedule.DateFormat, v); err != nil {
			writeError(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
			return
		}
		from = v
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if _, err := time.Parse(schedule.DateFormat, v); err != nil {
			writeError(w, http.StatusBadRequest, "to must be YYYY-MM-DD")
			return
		}
		to = v
	}

	entries, err := s.app.Entries().ListRange(r.Context(), from, to)
	if err != nil {
		applog.Error("failed to list entries", err)
		writeError(w, http.StatusInternalServerError, "failed to list entries")
		return
	}
	if entries == nil {
		entries = []entry.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleComplete(completed bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		found, err := s.app.Entries().SetCompleted(r.Context(), id, completed)
		if err != nil {
			applog.Error("failed to update entry", err, "entry", id)
			writeError(w, http.StatusInternalServerError, "failed to update entry")
			return
		}
		if !found {
			writeError(w, http.StatusNotFound, "entry not found")
			return
		}

		e, err := s.app.Entries().Get(r.Context(), id)
		if err != nil || e == nil {
			applog.Error("failed to reload entry", err, "entry", id)
			writeError(w, http.StatusInternalServerError, "failed to reload entry")
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}
