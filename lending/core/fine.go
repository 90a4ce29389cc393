package core

import "time"

// Fine tiers per day overdue. The rate climbs the longer a loan stays out.
const (
	fineTierOneRate   = 2  // days 1 through 10
	fineTierTwoRate   = 5  // days 11 through 20
	fineTierThreeRate = 10 // day 21 onwards

	fineTierOneDays = 10
	fineTierTwoDays = 20
)

// FineForOverdueDays calculates the fine for a loan returned the given number
// of whole days late. The schedule is tiered: once a loan crosses a tier
// boundary, only the days beyond that boundary are charged, at the higher rate.
func FineForOverdueDays(daysOverdue int) FineAmount {
	switch {
	case daysOverdue <= 0:
		return 0
	case daysOverdue <= fineTierOneDays:
		return fineTierOneRate * daysOverdue
	case daysOverdue <= fineTierTwoDays:
		return fineTierTwoRate * (daysOverdue - fineTierOneDays)
	default:
		return fineTierThreeRate * (daysOverdue - fineTierTwoDays)
	}
}

// DaysOverdue returns the number of whole 24-hour periods between the due
// date and the return time, rounding any partial day up to a full day.
// Returns on or before the due date yield zero.
func DaysOverdue(dueDate Timestamp, returnedAt Timestamp) int {
	if !returnedAt.After(dueDate) {
		return 0
	}

	late := returnedAt.Sub(dueDate)
	days := int(late / (24 * time.Hour))
	if late%(24*time.Hour) > 0 {
		days++
	}

	return days
}
