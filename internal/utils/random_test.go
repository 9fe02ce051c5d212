package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
)

func TestGenerateEmployeeCode(t *testing.T) {
	if got := GenerateEmployeeCode("王小明", 7); got != "WXM007" {
		t.Errorf("GenerateEmployeeCode = %q, want WXM007", got)
	}
}

func TestGenerateUsernameFromChineseName(t *testing.T) {
	pattern := regexp.MustCompile(`^[a-z]+[0-9]{1,3}$`)
	for range 20 {
		name := GenerateRandomChineseName()
		username := GenerateUsernameFromChineseName(name)
		if !pattern.MatchString(username) {
			t.Errorf("username %q for %s does not match %s", username, name, pattern)
		}
	}
}

func TestGeneratedTimeRangesAreValid(t *testing.T) {
	for _, tr := range commonTimeRanges {
		if err := ValidateTimeRange(tr); err != nil {
			t.Errorf("ValidateTimeRange(%q) = %v", tr, err)
		}
	}
}

func TestGenerateRandomMonthShifts(t *testing.T) {
	employees := []*domain.Employee{{ID: 1, LocationID: 9}, {ID: 2, LocationID: 9}}
	month := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)

	all := GenerateRandomMonthShifts(employees, month, 1)
	if len(all) != 2*28 {
		t.Fatalf("got %d shifts, want %d", len(all), 2*28)
	}
	for _, s := range all {
		if err := ValidateShiftInMonth(s, month); err != nil {
			t.Error(err)
		}
		if s.LocationID != 9 {
			t.Errorf("shift location = %d, want 9", s.LocationID)
		}
	}

	if none := GenerateRandomMonthShifts(employees, month, 0); len(none) != 0 {
		t.Errorf("got %d shifts with zero probability", len(none))
	}
}
