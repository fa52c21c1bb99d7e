package dispatch

import (
	"time"

	"crm-server/internal/campaign/lifecycle"
	"crm-server/internal/store"
)

// Gate outcomes reported in Decision.Reason.
const (
	ReasonEligible           = "eligible"
	ReasonNotRunning         = "not_running"
	ReasonOutsideDays        = "outside_schedule_days"
	ReasonOutsideWindow      = "outside_time_window"
	ReasonInvalidWindow      = "invalid_time_window"
	ReasonIntervalNotElapsed = "interval_not_elapsed"
)

var defaultScheduleDays = []int64{
	int64(time.Monday), int64(time.Tuesday), int64(time.Wednesday), int64(time.Thursday), int64(time.Friday),
}

// Decision is the result of evaluating a campaign's send gates.
type Decision struct {
	Eligible bool
	Reason   string
}

// Evaluate applies the day-of-week, time-window and interval gates in that
// order and reports the first one that fails. It has no side effects.
func Evaluate(c store.Campaign, now time.Time, loc *time.Location) Decision {
	if !lifecycle.Status(c.Status).Dispatchable() {
		return Decision{Reason: ReasonNotRunning}
	}
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)

	days := []int64(c.ScheduleDays)
	if len(days) == 0 {
		days = defaultScheduleDays
	}
	if !containsDay(days, local.Weekday()) {
		return Decision{Reason: ReasonOutsideDays}
	}

	if c.ScheduleStartTime != nil && c.ScheduleEndTime != nil {
		start, okStart := minuteOfDay(*c.ScheduleStartTime)
		end, okEnd := minuteOfDay(*c.ScheduleEndTime)
		if !okStart || !okEnd {
			return Decision{Reason: ReasonInvalidWindow}
		}
		if !inWindow(local.Hour()*60+local.Minute(), start, end) {
			return Decision{Reason: ReasonOutsideWindow}
		}
	}

	if c.LastSentAt != nil {
		interval := time.Duration(c.IntervalSeconds) * time.Second
		if now.Sub(*c.LastSentAt) < interval {
			return Decision{Reason: ReasonIntervalNotElapsed}
		}
	}

	return Decision{Eligible: true, Reason: ReasonEligible}
}

func containsDay(days []int64, day time.Weekday) bool {
	for _, d := range days {
		if d == int64(day) {
			return true
		}
	}
	return false
}

// minuteOfDay parses HH:MM, tolerating a trailing :SS.
func minuteOfDay(tod string) (int, bool) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, tod); err == nil {
			return t.Hour()*60 + t.Minute(), true
		}
	}
	return 0, false
}

// inWindow checks cur against the inclusive [start, end] window. A window
// whose end precedes its start wraps past midnight.
func inWindow(cur, start, end int) bool {
	if start <= end {
		return cur >= start && cur <= end
	}
	return cur >= start || cur <= end
}
