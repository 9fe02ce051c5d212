package compliance

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
)

const (
	MaxShiftHours      = 12.0
	MinDailyRestHours  = 11.0
	MinWeeklyRestHours = 35.0
)

type parsedInterval struct {
	iv Interval
	ok bool
}

type parsedDate struct {
	t  time.Time
	ok bool
}

// Detector 劳动法合规校验器
//
// 零值即可使用。解析结果会缓存在实例里并且从不失效，同一个实例可以被多个 goroutine 共享。
type Detector struct {
	mu        sync.RWMutex
	intervals map[string]parsedInterval
	dates     map[string]parsedDate
}

func NewDetector() *Detector {
	return &Detector{
		intervals: make(map[string]parsedInterval),
		dates:     make(map[string]parsedDate),
	}
}

// CachedEntries 返回已缓存的时间段和日期数量
func (d *Detector) CachedEntries() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.intervals) + len(d.dates)
}

func (d *Detector) parse(timeRange string) (Interval, bool) {
	d.mu.RLock()
	p, hit := d.intervals[timeRange]
	d.mu.RUnlock()
	if hit {
		return p.iv, p.ok
	}

	iv, ok := ParseTimeRange(timeRange)

	d.mu.Lock()
	if d.intervals == nil {
		d.intervals = make(map[string]parsedInterval)
	}
	d.intervals[timeRange] = parsedInterval{iv: iv, ok: ok}
	d.mu.Unlock()

	return iv, ok
}

func (d *Detector) date(s string) (time.Time, bool) {
	d.mu.RLock()
	p, hit := d.dates[s]
	d.mu.RUnlock()
	if hit {
		return p.t, p.ok
	}

	t, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(s), time.UTC)
	ok := err == nil

	d.mu.Lock()
	if d.dates == nil {
		d.dates = make(map[string]parsedDate)
	}
	d.dates[s] = parsedDate{t: t, ok: ok}
	d.mu.Unlock()

	return t, ok
}

// dayInMonth 返回班次日期在目标月份中的日序号，不在该月或日期无法解析时返回 false
func (d *Detector) dayInMonth(date string, month time.Time) (int, bool) {
	t, ok := d.date(date)
	if !ok || t.Year() != month.Year() || t.Month() != month.Month() {
		return 0, false
	}
	return t.Day(), true
}

// CheckExceeds12h 检查单个班次是否超过 12 小时，无法解析的时间段不给出结论
func (d *Detector) CheckExceeds12h(timeRange string) *ValidationResult {
	iv, ok := d.parse(timeRange)
	if !ok {
		return nil
	}

	if iv.Hours() > MaxShiftHours {
		return &ValidationResult{
			Kind:    KindExceeds12h,
			Message: fmt.Sprintf("班次时长 %.1f 小时，超过了 %.0f 小时的上限", iv.Hours(), MaxShiftHours),
		}
	}

	return nil
}

// groupByEmployee 只保留名单中的员工，每个员工的班次按日期字符串稳定排序
func groupByEmployee(shifts []domain.Shift, employees []domain.Employee) map[int64][]domain.Shift {
	groups := make(map[int64][]domain.Shift, len(employees))
	for _, e := range employees {
		groups[e.ID] = nil
	}

	sorted := slices.Clone(shifts)
	slices.SortStableFunc(sorted, func(a, b domain.Shift) int {
		return strings.Compare(a.Date, b.Date)
	})

	for _, s := range sorted {
		if _, known := groups[s.EmployeeID]; !known {
			continue
		}
		groups[s.EmployeeID] = append(groups[s.EmployeeID], s)
	}

	return groups
}

// CheckRestConflicts 找出相邻两个班次之间休息不足 11 小时的员工日期，两个班次都会被标记
func (d *Detector) CheckRestConflicts(shifts []domain.Shift, employees []domain.Employee) KeySet {
	conflicts := make(KeySet)

	for id, list := range groupByEmployee(shifts, employees) {
		for i := 0; i+1 < len(list); i++ {
			if d.RestBetween(list[i], list[i+1]) < MinDailyRestHours {
				conflicts.Add(ConflictKey(id, list[i].Date))
				conflicts.Add(ConflictKey(id, list[i+1].Date))
			}
		}
	}

	return conflicts
}

// Check35HourRest 找出每个员工在目标月份中没有连续 35 小时休息的周
//
// 周按照每月 1 号起每 7 天划分，不是 ISO 周。没有问题的员工不会出现在结果中。
func (d *Detector) Check35HourRest(shifts []domain.Shift, employees []domain.Employee, month time.Time) map[int64]WeekSet {
	badWeeks := make(map[int64]WeekSet)
	weeks := WeeksInMonth(month)

	for id, list := range groupByEmployee(shifts, employees) {
		buckets := make(map[int][]domain.Shift, weeks)
		for _, s := range list {
			day, ok := d.dayInMonth(s.Date, month)
			if !ok {
				continue
			}
			w := WeekOfMonth(day)
			buckets[w] = append(buckets[w], s)
		}

		for w := 1; w <= weeks; w++ {
			if HasWeeklyRest(d.WeeklyRestPeriods(buckets[w], w, month)) {
				continue
			}
			if badWeeks[id] == nil {
				badWeeks[id] = make(WeekSet)
			}
			badWeeks[id].Add(w)
		}
	}

	return badWeeks
}

// Evaluate 对一个月的排班执行全部三条规则
func (d *Detector) Evaluate(shifts []domain.Shift, employees []domain.Employee, month time.Time) *ConflictState {
	known := make(map[int64]struct{}, len(employees))
	for _, e := range employees {
		known[e.ID] = struct{}{}
	}

	exceeding := make(KeySet)
	for _, s := range shifts {
		if _, ok := known[s.EmployeeID]; !ok {
			continue
		}
		if d.CheckExceeds12h(s.TimeRange) != nil {
			exceeding.Add(ConflictKey(s.EmployeeID, s.Date))
		}
	}

	return &ConflictState{
		Exceeding12h:   exceeding,
		Conflicting11h: d.CheckRestConflicts(shifts, employees),
		BadWeeks:       d.Check35HourRest(shifts, employees, month),
	}
}

// CheckShift 在保存单个班次之前校验它
//
// existing 是该地点当月已有的班次，与 candidate ID 相同或者同一员工同一天的班次会被 candidate 取代。
func (d *Detector) CheckShift(candidate domain.Shift, existing []domain.Shift, month time.Time) []ValidationResult {
	results := make([]ValidationResult, 0)

	if r := d.CheckExceeds12h(candidate.TimeRange); r != nil {
		results = append(results, *r)
	}

	if _, ok := d.date(candidate.Date); !ok {
		return results
	}

	own := make([]domain.Shift, 0, len(existing)+1)
	for _, s := range existing {
		if s.EmployeeID != candidate.EmployeeID || s.Date == candidate.Date {
			continue
		}
		if candidate.ID != 0 && s.ID == candidate.ID {
			continue
		}
		own = append(own, s)
	}
	own = append(own, candidate)
	slices.SortStableFunc(own, func(a, b domain.Shift) int {
		return strings.Compare(a.Date, b.Date)
	})

	idx := slices.IndexFunc(own, func(s domain.Shift) bool {
		return s.Date == candidate.Date
	})
	if idx > 0 {
		if rest := d.RestBetween(own[idx-1], candidate); rest < MinDailyRestHours {
			results = append(results, ValidationResult{
				Kind:    KindRestBelow11h,
				Message: fmt.Sprintf("与 %s 的班次之间只休息了 %.1f 小时，不足 %.0f 小时", own[idx-1].Date, rest, MinDailyRestHours),
			})
		}
	}
	if idx >= 0 && idx+1 < len(own) {
		if rest := d.RestBetween(candidate, own[idx+1]); rest < MinDailyRestHours {
			results = append(results, ValidationResult{
				Kind:    KindRestBelow11h,
				Message: fmt.Sprintf("与 %s 的班次之间只休息了 %.1f 小时，不足 %.0f 小时", own[idx+1].Date, rest, MinDailyRestHours),
			})
		}
	}

	day, ok := d.dayInMonth(candidate.Date, month)
	if !ok {
		return results
	}
	week := WeekOfMonth(day)
	weekShifts := make([]domain.Shift, 0, 7)
	for _, s := range own {
		if sd, ok := d.dayInMonth(s.Date, month); ok && WeekOfMonth(sd) == week {
			weekShifts = append(weekShifts, s)
		}
	}
	if !HasWeeklyRest(d.WeeklyRestPeriods(weekShifts, week, month)) {
		results = append(results, ValidationResult{
			Kind:    KindBadWeek35h,
			Message: fmt.Sprintf("第 %d 周将没有连续 %.0f 小时的休息", week, MinWeeklyRestHours),
		})
	}

	return results
}
