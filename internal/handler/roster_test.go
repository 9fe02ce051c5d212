package handler

import (
	"testing"
	"time"

	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/compliance"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
)

func TestMergeShifts(t *testing.T) {
	existing := []domain.Shift{
		{ID: 1, EmployeeID: 1, Date: "2025-01-01", TimeRange: "8:00-16:00", Note: "手动"},
		{ID: 2, EmployeeID: 1, Date: "2025-01-02", TimeRange: "8:00-16:00", Note: "手动"},
		{ID: 3, EmployeeID: 2, Date: "2025-01-01", TimeRange: "9:00-17:00", Note: "手动"},
	}
	proposed := []domain.Shift{
		{EmployeeID: 1, Date: "2025-01-02", TimeRange: "14:00-22:00", Note: "自动排班"},
		{EmployeeID: 2, Date: "2025-01-03", TimeRange: "9:00-17:00", Note: "自动排班"},
	}

	merged := mergeShifts(existing, proposed)
	if len(merged) != 4 {
		t.Fatalf("got %d shifts, want 4: %+v", len(merged), merged)
	}

	byKey := make(map[string]domain.Shift, len(merged))
	for _, s := range merged {
		byKey[compliance.ConflictKey(s.EmployeeID, s.Date)] = s
	}

	tests := []struct {
		key      string
		wantNote string
	}{
		{"1-2025-01-01", "手动"},
		{"1-2025-01-02", "自动排班"},
		{"2-2025-01-01", "手动"},
		{"2-2025-01-03", "自动排班"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			s, ok := byKey[tt.key]
			if !ok {
				t.Fatalf("missing shift %s", tt.key)
			}
			if s.Note != tt.wantNote {
				t.Errorf("note = %q, want %q", s.Note, tt.wantNote)
			}
		})
	}
}

func TestMergeShiftsNoExisting(t *testing.T) {
	proposed := []domain.Shift{{EmployeeID: 1, Date: "2025-01-01", TimeRange: "8:00-16:00"}}

	merged := mergeShifts(nil, proposed)
	if len(merged) != 1 || merged[0] != proposed[0] {
		t.Errorf("merged = %+v, want %+v", merged, proposed)
	}
}

// 算法生成的班次本身没有冲突，但和月内保留下来的手动班次之间休息不足
func TestMergedMonthConflicts(t *testing.T) {
	month := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	employees := []domain.Employee{{ID: 1, FullName: "张三"}}

	existing := []domain.Shift{
		{ID: 1, EmployeeID: 1, Date: "2025-01-01", TimeRange: "14:00-23:00"},
	}
	proposed := []domain.Shift{
		{EmployeeID: 1, Date: "2025-01-02", TimeRange: "6:00-14:00"},
	}

	d := compliance.NewDetector()

	alone := d.Evaluate(proposed, employees, month)
	if alone.Conflicting11h.Has("1-2025-01-02") {
		t.Fatal("proposal alone should not have a rest conflict")
	}

	state := d.Evaluate(mergeShifts(existing, proposed), employees, month)
	for _, key := range []string{"1-2025-01-01", "1-2025-01-02"} {
		if !state.Conflicting11h.Has(key) {
			t.Errorf("Conflicting11h = %v, missing %s", state.Conflicting11h.Sorted(), key)
		}
	}
}
