package scheduling

import (
	"time"

	"floreria/models"
)

// SafetyMarginMinutes is added on top of the preparation buffer when cutting
// off same-day slots, covering the gap between "slot list rendered" and
// "order submitted".
const SafetyMarginMinutes = 5

// GenerateSlots produces the ordered candidate pickup times for a date as
// minutes from midnight: openMinute up to and including closeMinute, stepped
// by the slot interval. A slot exactly at closing time is valid.
//
// For today's date (in the shop time zone carried by now), every slot earlier
// than now + prepBuffer + SafetyMarginMinutes is discarded. closedForToday is
// true when that cutoff pushed past closing time; it is a valid condition the
// caller must surface distinctly, not an error. Past dates yield no slots.
func GenerateSlots(date string, now time.Time, cfg models.ScheduleConfig) (times []int, closedForToday bool, err error) {
	day, err := time.ParseInLocation(models.DateLayout, date, now.Location())
	if err != nil {
		return nil, false, &ValidationError{Field: "date", Message: err.Error()}
	}

	today := now.Format(models.DateLayout)
	if day.Format(models.DateLayout) < today {
		return nil, false, nil
	}

	cutoff := -1
	if date == today {
		cutoff = models.MinuteOfDay(now) + cfg.PrepBufferMinutes + SafetyMarginMinutes
		if cutoff > cfg.CloseMinute {
			return nil, true, nil
		}
	}

	for m := cfg.OpenMinute; m <= cfg.CloseMinute; m += cfg.SlotIntervalMinutes {
		if m < cutoff {
			continue
		}
		times = append(times, m)
	}
	return times, false, nil
}

// containsSlot reports whether minute is one of the generated candidates.
func containsSlot(times []int, minute int) bool {
	for _, m := range times {
		if m == minute {
			return true
		}
	}
	return false
}
