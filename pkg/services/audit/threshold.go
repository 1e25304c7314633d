package audit

import "math"

// Exceeds reports whether the deletion count crosses the allowed rate.
// The allowance is totalCount * thresholdPercent / 100, rounded to two
// decimal places. A zero total collapses the allowance to zero, so any
// deletion triggers.
func Exceeds(deletedCount, totalCount int, thresholdPercent float64) bool {
	if totalCount <= 0 {
		return deletedCount > 0
	}
	allowed := math.Round(float64(totalCount)*thresholdPercent) / 100
	return float64(deletedCount) > allowed
}
