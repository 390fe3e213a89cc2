package members

import (
	"time"

	"forestry-backend/internal/models"
)

// CategoryFor maps accumulated attendance days to a member category.
// 75 days and above earns A, more than 35 earns B, everything else is C.
func CategoryFor(totalDays int) models.MemberCategory {
	switch {
	case totalDays >= 75:
		return models.CategoryA
	case totalDays > 35:
		return models.CategoryB
	default:
		return models.CategoryC
	}
}

// StatusFor marks a member Active when they attended within the last year.
func StatusFor(lastAttendance *time.Time, now time.Time) models.MemberStatus {
	if lastAttendance != nil && lastAttendance.After(now.AddDate(-1, 0, 0)) {
		return models.MemberActive
	}
	return models.MemberPassive
}

// AttendanceRate is attended days over the days elapsed since joining,
// as a percentage capped at 100.
func AttendanceRate(totalDays int, joined, now time.Time) float64 {
	elapsed := int(now.Sub(joined).Hours() / 24)
	if elapsed <= 0 {
		return 0
	}
	rate := float64(totalDays) / float64(elapsed) * 100
	if rate > 100 {
		return 100
	}
	return rate
}
