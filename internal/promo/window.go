package promo

import "time"

// ActiveAt reports whether the promotion is live at the given instant. The
// caller supplies one instant per pricing pass so every promotion is judged
// against the same clock.
func (p Promotion) ActiveAt(now time.Time) bool {
	if !p.Active {
		return false
	}
	if p.StartsAt != nil && now.Before(*p.StartsAt) {
		return false
	}
	if p.EndsAt != nil && now.After(*p.EndsAt) {
		return false
	}
	if len(p.Days) > 0 && !weekdayIn(p.Days, now.Weekday()) {
		return false
	}
	if p.TimeFrom != "" || p.TimeTo != "" {
		// "HH:MM" compares correctly as a string; each side is open-ended
		// when unset.
		clock := now.Format("15:04")
		if p.TimeFrom != "" && clock < p.TimeFrom {
			return false
		}
		if p.TimeTo != "" && clock > p.TimeTo {
			return false
		}
	}
	return true
}

func weekdayIn(days []time.Weekday, day time.Weekday) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}
