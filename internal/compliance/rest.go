package compliance

import (
	"cmp"
	"slices"
	"time"

	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
)

const (
	minutesPerDay = 24 * 60

	// 时间段无法解析时的休息时长，保证不会被判为冲突
	unknownRestHours = 24.0
	fullWeekHours    = 7 * 24.0
)

func DaysInMonth(month time.Time) int {
	return time.Date(month.Year(), month.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// WeekOfMonth 按照 1 号起每 7 天一周计算周序号
func WeekOfMonth(day int) int {
	return (day + 6) / 7
}

func WeeksInMonth(month time.Time) int {
	return WeekOfMonth(DaysInMonth(month))
}

// WeekBounds 返回第 week 周在该月中的起止日（均包含），最后一周可能不足 7 天
func WeekBounds(week int, month time.Time) (int, int) {
	return (week-1)*7 + 1, min(week*7, DaysInMonth(month))
}

func HasWeeklyRest(periods []float64) bool {
	return slices.ContainsFunc(periods, func(h float64) bool {
		return h >= MinWeeklyRestHours
	})
}

// RestBetween 计算 a 结束到 b 开始之间的休息小时数，要求 a 的日期不晚于 b
//
// 任意一个班次无法解析时返回 24，结果不会小于 0。
func (d *Detector) RestBetween(a, b domain.Shift) float64 {
	ivA, okA := d.parse(a.TimeRange)
	ivB, okB := d.parse(b.TimeRange)
	dayA, okDA := d.date(a.Date)
	dayB, okDB := d.date(b.Date)
	if !okA || !okB || !okDA || !okDB {
		return unknownRestHours
	}

	end := dayA.Add(time.Duration(ivA.End) * time.Minute)
	start := dayB.Add(time.Duration(ivB.Start) * time.Minute)

	return max(start.Sub(end).Hours(), 0)
}

type weekEntry struct {
	day int
	iv  Interval
}

// WeeklyRestPeriods 列出第 week 周内的全部休息区间（小时）
//
// 没有可解析的班次时返回 [168]。周首和周尾不满一天的部分只在班次恰好落在那一天时计算。
func (d *Detector) WeeklyRestPeriods(weekShifts []domain.Shift, week int, month time.Time) []float64 {
	entries := make([]weekEntry, 0, len(weekShifts))
	for _, s := range weekShifts {
		iv, ok := d.parse(s.TimeRange)
		if !ok {
			continue
		}
		t, ok := d.date(s.Date)
		if !ok {
			continue
		}
		entries = append(entries, weekEntry{day: t.Day(), iv: iv})
	}

	if len(entries) == 0 {
		return []float64{fullWeekHours}
	}

	slices.SortStableFunc(entries, func(a, b weekEntry) int {
		return cmp.Or(cmp.Compare(a.day, b.day), cmp.Compare(a.iv.Start, b.iv.Start))
	})

	weekStart, weekEnd := WeekBounds(week, month)
	periods := make([]float64, 0, len(entries)+1)

	first := entries[0]
	if first.day > weekStart {
		periods = append(periods, float64(first.day-weekStart)*24)
	} else if first.day == weekStart && first.iv.Start > 0 {
		periods = append(periods, float64(first.iv.Start)/60)
	}

	for i := 0; i+1 < len(entries); i++ {
		a, b := entries[i], entries[i+1]
		gap := float64((b.day-a.day)*minutesPerDay+b.iv.Start-a.iv.End) / 60
		if gap > 0 {
			periods = append(periods, gap)
		}
	}

	last := entries[len(entries)-1]
	if last.day < weekEnd {
		periods = append(periods, float64(weekEnd-last.day)*24)
	} else if last.day == weekEnd && last.iv.End < minutesPerDay {
		periods = append(periods, float64(minutesPerDay-last.iv.End)/60)
	}

	return periods
}
