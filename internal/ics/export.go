// Package ics renders the food schedule as an iCalendar feed that calendar
// clients can subscribe to. Each food becomes one recurring VEVENT whose
// RRULE mirrors the frequency pattern used for entry generation; both sides
// classify the text through schedule.Classify so the feed can never drift
// from the persisted entries.
package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"foodcal/internal/food"
	"foodcal/internal/schedule"
)

const calendarName = "Food Schedule"

// Build serializes all foods into a VCALENDAR. Foods with a bounded
// progression duration get an UNTIL on their rule; open-ended foods recur
// for horizonDays from their start date.
func Build(foods []food.Food, horizonDays int, loc *time.Location) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//foodcal//foodcal//EN")
	cal.SetName(calendarName)
	cal.SetXWRCalName(calendarName)

	for _, f := range foods {
		addFoodEvent(cal, f, horizonDays, loc)
	}

	return cal.Serialize()
}

func addFoodEvent(cal *ical.Calendar, f food.Food, horizonDays int, loc *time.Location) {
	start := time.Date(f.StartDate.Year(), f.StartDate.Month(), f.StartDate.Day(), 0, 0, 0, 0, loc)

	until := start.AddDate(0, 0, horizonDays-1)
	if f.ProgressionDuration > 0 {
		until = start.AddDate(0, 0, f.ProgressionDuration-1)
	}

	ev := cal.AddEvent(fmt.Sprintf("%s@foodcal", f.ID))
	ev.SetDtStampTime(time.Now().UTC())
	ev.SetSummary(f.Name)

	description := f.Instructions
	if f.StartingAmount != "" {
		if description != "" {
			description += "\n"
		}
		description += "Amount: " + f.StartingAmount
		if f.TargetAmount != "" && f.HasAmountProgression() {
			description += " -> " + f.TargetAmount
		}
	}
	if description != "" {
		ev.SetDescription(description)
	}
	if f.Meal != "" {
		ev.SetProperty(ical.ComponentProperty(ical.PropertyCategories), f.Meal)
	}

	// Timed event when a start time parses, all-day otherwise. The feed
	// shows the configured time; per-occurrence progressed times live in
	// the schedule entries, not in the subscription.
	if h, m, ok := clock(f.StartTime); ok {
		at := start.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
		ev.SetStartAt(at)
		ev.SetEndAt(at.Add(15 * time.Minute))
	} else {
		ev.SetAllDayStartAt(start)
		ev.SetAllDayEndAt(start.AddDate(0, 0, 1))
	}

	ev.AddRrule(ruleFor(schedule.Classify(f.Frequency, start), until))
}

// ruleFor translates a classified frequency pattern into an RRULE value.
func ruleFor(p schedule.Pattern, until time.Time) string {
	opt := rrule.ROption{
		Freq:  rrule.DAILY,
		Until: until.UTC(),
	}

	switch p.Family {
	case schedule.FamilyWeekly, schedule.FamilyWeekdaySet:
		opt.Freq = rrule.WEEKLY
		for _, wd := range p.Weekdays {
			opt.Byweekday = append(opt.Byweekday, rruleWeekday(wd))
		}
	case schedule.FamilyEveryOtherDay:
		opt.Interval = 2
	}

	return opt.RRuleString()
}

func rruleWeekday(wd time.Weekday) rrule.Weekday {
	switch wd {
	case time.Monday:
		return rrule.MO
	case time.Tuesday:
		return rrule.TU
	case time.Wednesday:
		return rrule.WE
	case time.Thursday:
		return rrule.TH
	case time.Friday:
		return rrule.FR
	case time.Saturday:
		return rrule.SA
	default:
		return rrule.SU
	}
}

func clock(s string) (h, m int, ok bool) {
	if len(s) == 0 {
		return 0, 0, false
	}
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}
