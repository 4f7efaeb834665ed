package entities

import "time"

const day = 24 * time.Hour

// SimpleDrift is the signed calendar distance between the deployed commit and
// the primary branch head. Negative means the deployed commit is older than
// the head; positive means it post-dates the head, which usually points at a
// data anomaly and is kept visible on purpose.
func SimpleDrift(deployedDate, headDate time.Time) time.Duration {
	return deployedDate.Sub(headDate)
}

// MergeBaseDrift is the signed distance between the last common ancestor of
// the deployed commit and the head, and the head itself. It is stable under
// history rewrites on either branch.
func MergeBaseDrift(mergeBaseDate, headDate time.Time) time.Duration {
	return mergeBaseDate.Sub(headDate)
}

// DriftDays expresses a drift in fractional days.
func DriftDays(drift time.Duration) float64 {
	return float64(drift) / float64(day)
}
