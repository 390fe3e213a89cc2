package members

import (
	"testing"
	"time"

	"forestry-backend/internal/models"
)

func TestCategoryFor(t *testing.T) {
	cases := []struct {
		days int
		want models.MemberCategory
	}{
		{0, models.CategoryC},
		{35, models.CategoryC},
		{36, models.CategoryB},
		{74, models.CategoryB},
		{75, models.CategoryA},
		{200, models.CategoryA},
	}
	for _, tc := range cases {
		if got := CategoryFor(tc.days); got != tc.want {
			t.Errorf("CategoryFor(%d) = %s, want %s", tc.days, got, tc.want)
		}
	}
}

func TestStatusFor(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	recent := now.AddDate(0, -2, 0)
	if got := StatusFor(&recent, now); got != models.MemberActive {
		t.Errorf("recent attendance: got %s, want Active", got)
	}

	stale := now.AddDate(-2, 0, 0)
	if got := StatusFor(&stale, now); got != models.MemberPassive {
		t.Errorf("stale attendance: got %s, want Passive", got)
	}

	if got := StatusFor(nil, now); got != models.MemberPassive {
		t.Errorf("no attendance: got %s, want Passive", got)
	}
}

func TestAttendanceRate(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	joined := now.AddDate(0, 0, -100)

	if got := AttendanceRate(25, joined, now); got != 25 {
		t.Errorf("25 of 100 days: got %.2f, want 25", got)
	}
	if got := AttendanceRate(500, joined, now); got != 100 {
		t.Errorf("rate should cap at 100, got %.2f", got)
	}
	if got := AttendanceRate(5, now, now); got != 0 {
		t.Errorf("joined today: got %.2f, want 0", got)
	}
}
