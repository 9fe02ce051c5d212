package compliance

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
)

type Kind string

const (
	KindExceeds12h   Kind = "exceeds12h"
	KindRestBelow11h Kind = "restBelow11h"
	KindBadWeek35h   Kind = "badWeek35h"
)

func (k Kind) order() int {
	switch k {
	case KindExceeds12h:
		return 0
	case KindRestBelow11h:
		return 1
	default:
		return 2
	}
}

type ValidationResult struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// ConflictKey 生成 "employeeID-date" 形式的冲突键，前端用它高亮对应的单元格
func ConflictKey(employeeID int64, date string) string {
	return fmt.Sprintf("%d-%s", employeeID, date)
}

// SplitConflictKey 是 ConflictKey 的逆操作
func SplitConflictKey(key string) (int64, string, bool) {
	idPart, date, found := strings.Cut(key, "-")
	if !found {
		return 0, "", false
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return 0, "", false
	}
	return id, date, true
}

// KeySet 冲突键集合，序列化为排好序的数组
type KeySet map[string]struct{}

func (s KeySet) Add(key string) {
	s[key] = struct{}{}
}

func (s KeySet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

func (s KeySet) Sorted() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (s KeySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *KeySet) UnmarshalJSON(data []byte) error {
	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	*s = make(KeySet, len(keys))
	for _, k := range keys {
		s.Add(k)
	}
	return nil
}

// WeekSet 周序号集合（从 1 开始）
type WeekSet map[int]struct{}

func (s WeekSet) Add(week int) {
	s[week] = struct{}{}
}

func (s WeekSet) Has(week int) bool {
	_, ok := s[week]
	return ok
}

func (s WeekSet) Sorted() []int {
	weeks := make([]int, 0, len(s))
	for w := range s {
		weeks = append(weeks, w)
	}
	slices.Sort(weeks)
	return weeks
}

func (s WeekSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *WeekSet) UnmarshalJSON(data []byte) error {
	var weeks []int
	if err := json.Unmarshal(data, &weeks); err != nil {
		return err
	}
	*s = make(WeekSet, len(weeks))
	for _, w := range weeks {
		s.Add(w)
	}
	return nil
}

// ConflictState 一次校验的全部结果，三类冲突互相独立
type ConflictState struct {
	Exceeding12h   KeySet            `json:"exceeding12h"`
	Conflicting11h KeySet            `json:"conflicting11h"`
	BadWeeks       map[int64]WeekSet `json:"badWeeks"` // 没有问题的员工不会出现在这里
}

func (s *ConflictState) Count() int {
	n := len(s.Exceeding12h) + len(s.Conflicting11h)
	for _, weeks := range s.BadWeeks {
		n += len(weeks)
	}
	return n
}

func (s *ConflictState) IsClean() bool {
	return s.Count() == 0
}

type Violation struct {
	Kind         Kind   `json:"kind"`
	EmployeeID   int64  `json:"employeeID"`
	EmployeeName string `json:"employeeName"`
	Date         string `json:"date,omitempty"`
	Week         int    `json:"week,omitempty"`
	Message      string `json:"message"`
}

// Violations 把冲突集合展开成按员工排序的列表，用于报告和邮件
func (s *ConflictState) Violations(employees []domain.Employee) []Violation {
	names := make(map[int64]string, len(employees))
	for _, e := range employees {
		names[e.ID] = e.FullName
	}

	violations := make([]Violation, 0, s.Count())

	for _, key := range s.Exceeding12h.Sorted() {
		id, date, ok := SplitConflictKey(key)
		if !ok {
			continue
		}
		violations = append(violations, Violation{
			Kind:         KindExceeds12h,
			EmployeeID:   id,
			EmployeeName: names[id],
			Date:         date,
			Message:      fmt.Sprintf("%s 的班次超过 %.0f 小时", date, MaxShiftHours),
		})
	}

	for _, key := range s.Conflicting11h.Sorted() {
		id, date, ok := SplitConflictKey(key)
		if !ok {
			continue
		}
		violations = append(violations, Violation{
			Kind:         KindRestBelow11h,
			EmployeeID:   id,
			EmployeeName: names[id],
			Date:         date,
			Message:      fmt.Sprintf("%s 的班次前后休息不足 %.0f 小时", date, MinDailyRestHours),
		})
	}

	for id, weeks := range s.BadWeeks {
		for _, w := range weeks.Sorted() {
			violations = append(violations, Violation{
				Kind:         KindBadWeek35h,
				EmployeeID:   id,
				EmployeeName: names[id],
				Week:         w,
				Message:      fmt.Sprintf("第 %d 周没有连续 %.0f 小时的休息", w, MinWeeklyRestHours),
			})
		}
	}

	slices.SortStableFunc(violations, func(a, b Violation) int {
		return cmp.Or(
			cmp.Compare(a.EmployeeID, b.EmployeeID),
			cmp.Compare(a.Kind.order(), b.Kind.order()),
			strings.Compare(a.Date, b.Date),
			cmp.Compare(a.Week, b.Week),
		)
	})

	return violations
}
