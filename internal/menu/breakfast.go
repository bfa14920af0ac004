package menu

import "time"

// MaxBreakfastHour is the last hour of the day breakfast items lead the page.
const MaxBreakfastHour = 13

// BreakfastFirst reports whether breakfast items should be shown first at now.
// now should already be in the venue's time zone.
func BreakfastFirst(now time.Time) bool {
	return now.Hour() <= MaxBreakfastHour
}
