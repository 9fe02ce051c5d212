package compliance

import (
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
)

func employees(ids ...int64) []domain.Employee {
	list := make([]domain.Employee, 0, len(ids))
	for _, id := range ids {
		list = append(list, domain.Employee{ID: id, FullName: fmt.Sprintf("员工%d", id)})
	}
	return list
}

func TestCheckExceeds12h(t *testing.T) {
	tests := []struct {
		input   string
		flagged bool
	}{
		{"8:00-21:00", true},
		{"6:00-18:01", true},
		{"6:00-18:00", false},
		{"8:00-16:00", false},
		{"not-a-range", false},
		{"20:00-08:00", false},
	}

	d := NewDetector()
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := d.CheckExceeds12h(tt.input)
			if (got != nil) != tt.flagged {
				t.Fatalf("CheckExceeds12h(%q) = %+v, flagged want %v", tt.input, got, tt.flagged)
			}
			if got != nil && got.Kind != KindExceeds12h {
				t.Errorf("Kind = %q, want %q", got.Kind, KindExceeds12h)
			}
			if got != nil && got.Message == "" {
				t.Error("expected a message")
			}
		})
	}
}

func TestCheckRestConflicts(t *testing.T) {
	tests := []struct {
		name      string
		shifts    []domain.Shift
		employees []domain.Employee
		want      []string
	}{
		{
			name: "ten hours of rest flags both days",
			shifts: []domain.Shift{
				shift(7, "2025-01-01", "8:00-20:00"),
				shift(7, "2025-01-02", "6:00-14:00"),
			},
			employees: employees(7),
			want:      []string{"7-2025-01-01", "7-2025-01-02"},
		},
		{
			name: "input order does not matter",
			shifts: []domain.Shift{
				shift(7, "2025-01-02", "6:00-14:00"),
				shift(7, "2025-01-01", "8:00-20:00"),
			},
			employees: employees(7),
			want:      []string{"7-2025-01-01", "7-2025-01-02"},
		},
		{
			name: "enough rest",
			shifts: []domain.Shift{
				shift(7, "2025-01-01", "8:00-16:00"),
				shift(7, "2025-01-02", "9:00-17:00"),
			},
			employees: employees(7),
			want:      []string{},
		},
		{
			name: "non consecutive days",
			shifts: []domain.Shift{
				shift(7, "2025-01-01", "8:00-20:00"),
				shift(7, "2025-01-03", "6:00-14:00"),
			},
			employees: employees(7),
			want:      []string{},
		},
		{
			name: "middle shift flagged once by two pairs",
			shifts: []domain.Shift{
				shift(3, "2025-01-01", "12:00-23:00"),
				shift(3, "2025-01-02", "6:00-23:00"),
				shift(3, "2025-01-03", "6:00-12:00"),
			},
			employees: employees(3),
			want:      []string{"3-2025-01-01", "3-2025-01-02", "3-2025-01-03"},
		},
		{
			name: "unparseable range breaks no rule",
			shifts: []domain.Shift{
				shift(7, "2025-01-01", "8:00-20:00"),
				shift(7, "2025-01-02", "early"),
			},
			employees: employees(7),
			want:      []string{},
		},
		{
			name: "employees are checked independently",
			shifts: []domain.Shift{
				shift(1, "2025-01-01", "8:00-20:00"),
				shift(2, "2025-01-02", "6:00-14:00"),
			},
			employees: employees(1, 2),
			want:      []string{},
		},
		{
			name: "employee missing from the list is ignored",
			shifts: []domain.Shift{
				shift(9, "2025-01-01", "8:00-20:00"),
				shift(9, "2025-01-02", "6:00-14:00"),
			},
			employees: employees(1),
			want:      []string{},
		},
		{
			name:      "no shifts",
			employees: employees(1, 2),
			want:      []string{},
		},
	}

	d := NewDetector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.CheckRestConflicts(tt.shifts, tt.employees).Sorted()
			if !slices.Equal(got, tt.want) {
				t.Errorf("CheckRestConflicts = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheck35HourRest(t *testing.T) {
	jan := month(2025, time.January)

	var firstWeek []domain.Shift
	for day := 1; day <= 7; day++ {
		firstWeek = append(firstWeek, shift(1, fmt.Sprintf("2025-01-%02d", day), "8:00-16:00"))
	}

	t.Run("working every day of a week", func(t *testing.T) {
		got := NewDetector().Check35HourRest(firstWeek, employees(1, 2), jan)

		weeks, ok := got[1]
		if !ok {
			t.Fatal("employee 1 should have a bad week")
		}
		if !slices.Equal(weeks.Sorted(), []int{1}) {
			t.Errorf("bad weeks = %v, want [1]", weeks.Sorted())
		}
		if _, ok := got[2]; ok {
			t.Error("idle employee 2 must not appear in the result")
		}
	})

	t.Run("single shift in february", func(t *testing.T) {
		shifts := []domain.Shift{shift(1, "2025-02-15", "8:00-16:00")}
		got := NewDetector().Check35HourRest(shifts, employees(1), month(2025, time.February))
		if len(got) != 0 {
			t.Errorf("Check35HourRest = %v, want empty", got)
		}
	})

	t.Run("idle short last week passes", func(t *testing.T) {
		var shifts []domain.Shift
		for day := 1; day <= 28; day++ {
			shifts = append(shifts, shift(1, fmt.Sprintf("2025-01-%02d", day), "8:00-16:00"))
		}
		got := NewDetector().Check35HourRest(shifts, employees(1), jan)
		if !slices.Equal(got[1].Sorted(), []int{1, 2, 3, 4}) {
			t.Errorf("bad weeks = %v, want [1 2 3 4]", got[1].Sorted())
		}
	})

	t.Run("shifts outside the month are ignored", func(t *testing.T) {
		var shifts []domain.Shift
		for day := 1; day <= 7; day++ {
			shifts = append(shifts, shift(1, fmt.Sprintf("2025-02-%02d", day), "8:00-16:00"))
		}
		got := NewDetector().Check35HourRest(shifts, employees(1), jan)
		if len(got) != 0 {
			t.Errorf("Check35HourRest = %v, want empty", got)
		}
	})

	t.Run("unknown employee", func(t *testing.T) {
		got := NewDetector().Check35HourRest(firstWeek, employees(5), jan)
		if len(got) != 0 {
			t.Errorf("Check35HourRest = %v, want empty", got)
		}
	})
}

func TestEvaluate(t *testing.T) {
	shifts := []domain.Shift{
		shift(1, "2025-01-01", "8:00-21:00"),
		shift(1, "2025-01-02", "6:00-14:00"),
		shift(2, "2025-01-10", "9:00-17:00"),
		shift(9, "2025-01-10", "0:00-23:00"),
	}

	state := NewDetector().Evaluate(shifts, employees(1, 2), month(2025, time.January))

	if !slices.Equal(state.Exceeding12h.Sorted(), []string{"1-2025-01-01"}) {
		t.Errorf("Exceeding12h = %v", state.Exceeding12h.Sorted())
	}
	if !slices.Equal(state.Conflicting11h.Sorted(), []string{"1-2025-01-01", "1-2025-01-02"}) {
		t.Errorf("Conflicting11h = %v", state.Conflicting11h.Sorted())
	}
	if len(state.BadWeeks) != 0 {
		t.Errorf("BadWeeks = %v, want empty", state.BadWeeks)
	}
	if state.Count() != 3 || state.IsClean() {
		t.Errorf("Count() = %d, IsClean() = %v", state.Count(), state.IsClean())
	}

	clean := NewDetector().Evaluate(nil, employees(1), month(2025, time.January))
	if !clean.IsClean() {
		t.Errorf("empty roster should be clean, got %+v", clean)
	}
}

func TestCheckShift(t *testing.T) {
	jan := month(2025, time.January)

	kinds := func(results []ValidationResult) []Kind {
		out := make([]Kind, 0, len(results))
		for _, r := range results {
			out = append(out, r.Kind)
		}
		return out
	}

	t.Run("too long", func(t *testing.T) {
		got := NewDetector().CheckShift(shift(1, "2025-01-10", "8:00-21:00"), nil, jan)
		if !slices.Equal(kinds(got), []Kind{KindExceeds12h}) {
			t.Errorf("CheckShift = %v", got)
		}
	})

	t.Run("short rest after previous day", func(t *testing.T) {
		existing := []domain.Shift{shift(1, "2025-01-01", "8:00-20:00")}
		got := NewDetector().CheckShift(shift(1, "2025-01-02", "6:00-14:00"), existing, jan)
		if !slices.Equal(kinds(got), []Kind{KindRestBelow11h}) {
			t.Errorf("CheckShift = %v", got)
		}
	})

	t.Run("short rest before next day", func(t *testing.T) {
		existing := []domain.Shift{shift(1, "2025-01-03", "6:00-14:00")}
		got := NewDetector().CheckShift(shift(1, "2025-01-02", "12:00-22:00"), existing, jan)
		if !slices.Equal(kinds(got), []Kind{KindRestBelow11h}) {
			t.Errorf("CheckShift = %v", got)
		}
	})

	t.Run("candidate replaces the shift on the same day", func(t *testing.T) {
		existing := []domain.Shift{
			shift(1, "2025-01-01", "8:00-20:00"),
			{ID: 42, EmployeeID: 1, Date: "2025-01-02", TimeRange: "6:00-14:00"},
		}
		candidate := domain.Shift{ID: 42, EmployeeID: 1, Date: "2025-01-02", TimeRange: "10:00-18:00"}
		if got := NewDetector().CheckShift(candidate, existing, jan); len(got) != 0 {
			t.Errorf("CheckShift = %v, want none", got)
		}
	})

	t.Run("other employees do not count", func(t *testing.T) {
		existing := []domain.Shift{shift(2, "2025-01-01", "8:00-20:00")}
		if got := NewDetector().CheckShift(shift(1, "2025-01-02", "6:00-14:00"), existing, jan); len(got) != 0 {
			t.Errorf("CheckShift = %v, want none", got)
		}
	})

	t.Run("closing the last free stretch of a week", func(t *testing.T) {
		var existing []domain.Shift
		for day := 1; day <= 5; day++ {
			existing = append(existing, shift(1, fmt.Sprintf("2025-01-%02d", day), "8:00-16:00"))
		}
		d := NewDetector()
		if bad := d.Check35HourRest(existing, employees(1), jan); len(bad) != 0 {
			t.Fatalf("existing roster should pass, got %v", bad)
		}
		got := d.CheckShift(shift(1, "2025-01-06", "8:00-16:00"), existing, jan)
		if !slices.Equal(kinds(got), []Kind{KindBadWeek35h}) {
			t.Errorf("CheckShift = %v", got)
		}
	})

	t.Run("unparseable date", func(t *testing.T) {
		existing := []domain.Shift{shift(1, "2025-01-01", "8:00-20:00")}
		if got := NewDetector().CheckShift(shift(1, "tomorrow", "6:00-14:00"), existing, jan); len(got) != 0 {
			t.Errorf("CheckShift = %v, want none", got)
		}
	})
}

func TestDetectorZeroValue(t *testing.T) {
	var d Detector
	if d.CheckExceeds12h("8:00-21:00") == nil {
		t.Error("zero value detector should flag a 13 hour shift")
	}
	if got := d.RestBetween(shift(1, "2025-01-01", "8:00-16:00"), shift(1, "2025-01-02", "9:00-17:00")); got != 17 {
		t.Errorf("RestBetween = %v, want 17", got)
	}
}

func TestCachedEntries(t *testing.T) {
	d := NewDetector()
	if got := d.CachedEntries(); got != 0 {
		t.Fatalf("new detector has %d cached entries", got)
	}

	d.CheckExceeds12h("8:00-16:00")
	d.CheckExceeds12h("8:00-16:00")
	d.CheckExceeds12h("junk")
	d.RestBetween(shift(1, "2025-01-01", "8:00-16:00"), shift(1, "2025-01-02", "8:00-16:00"))

	// 时间段和无法解析的字符串各一个，日期两个
	if got := d.CachedEntries(); got != 4 {
		t.Errorf("CachedEntries() = %d, want 4", got)
	}

	var zero Detector
	if got := zero.CachedEntries(); got != 0 {
		t.Errorf("zero value CachedEntries() = %d, want 0", got)
	}
}

func TestDetectorConcurrentUse(t *testing.T) {
	d := NewDetector()
	shifts := []domain.Shift{
		shift(1, "2025-01-01", "8:00-20:00"),
		shift(1, "2025-01-02", "6:00-14:00"),
		shift(2, "2025-01-05", "9:00-22:00"),
	}
	emps := employees(1, 2)
	jan := month(2025, time.January)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			state := d.Evaluate(shifts, emps, jan)
			if len(state.Conflicting11h) != 2 || len(state.Exceeding12h) != 1 {
				t.Errorf("unexpected state %+v", state)
			}
		}()
	}
	wg.Wait()
}
