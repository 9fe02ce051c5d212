package utils

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
)

// ParseClock 解析 "H:MM" 或 "HH:MM"，返回距离零点的分钟数，"24:00" 只能作为结束时间使用
func ParseClock(s string) (int, error) {
	if s == "24:00" {
		return 24 * 60, nil
	}

	padded := s
	if len(s) == 4 {
		padded = "0" + s
	}

	t, err := time.Parse("15:04", padded)
	if err != nil {
		return 0, fmt.Errorf("时间 %s 格式错误", s)
	}

	return t.Hour()*60 + t.Minute(), nil
}

// ValidateTimeRange 严格校验班次时间段，合规校验本身对格式是宽松的，写入数据库前应当先调用这个函数
func ValidateTimeRange(timeRange string) error {
	startPart, endPart, found := strings.Cut(timeRange, "-")
	if !found {
		return fmt.Errorf("时间段 %s 格式错误，应为 H:MM-H:MM", timeRange)
	}

	start, err := ParseClock(startPart)
	if err != nil {
		return err
	}
	if start == 24*60 {
		return errors.New("开始时间不能为 24:00")
	}
	end, err := ParseClock(endPart)
	if err != nil {
		return err
	}

	if end <= start {
		return fmt.Errorf("时间段 %s 的结束时间必须晚于开始时间，暂不支持跨夜班次", timeRange)
	}

	return nil
}

// ValidateMonth 解析 "YYYY-MM" 形式的月份
func ValidateMonth(month string) (time.Time, error) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, fmt.Errorf("月份 %s 格式错误，应为 YYYY-MM", month)
	}
	return t, nil
}

func ValidateShiftInMonth(shift *domain.Shift, month time.Time) error {
	date, err := time.Parse(time.DateOnly, shift.Date)
	if err != nil {
		return fmt.Errorf("日期 %s 格式错误，应为 YYYY-MM-DD", shift.Date)
	}

	if date.Year() != month.Year() || date.Month() != month.Month() {
		return fmt.Errorf("日期 %s 不在 %s 月内", shift.Date, month.Format("2006-01"))
	}

	return nil
}

func ValidateRosterSlots(slots []domain.RosterSlot) error {
	if len(slots) == 0 {
		return errors.New("至少需要一个时间段")
	}

	type interval struct{ start, end int }
	intervals := make([]interval, len(slots))

	// 检查每一个时间段的格式和人数
	for i, slot := range slots {
		if err := ValidateTimeRange(slot.TimeRange); err != nil {
			return fmt.Errorf("时间段 %d：%w", i+1, err)
		}
		if slot.RequiredNumber < 1 {
			return fmt.Errorf("时间段 %d 的需求人数至少为 1", i+1)
		}

		startPart, endPart, _ := strings.Cut(slot.TimeRange, "-")
		intervals[i].start, _ = ParseClock(startPart)
		intervals[i].end, _ = ParseClock(endPart)
	}

	// 检查各个时间段之间是否重叠
	for i := 0; i < len(intervals); i++ {
		for j := i + 1; j < len(intervals); j++ {
			if intervals[j].start < intervals[i].end && intervals[i].start < intervals[j].end {
				return fmt.Errorf("时间段 %d 和时间段 %d 之间的时间冲突", i+1, j+1)
			}
		}
	}

	return nil
}

// ValidateNoDoubleBooking 检查是否存在同一个员工在同一天被安排了多个班次
func ValidateNoDoubleBooking(shifts []domain.Shift) error {
	seen := make(map[string]bool, len(shifts))
	for _, shift := range shifts {
		key := fmt.Sprintf("%d-%s", shift.EmployeeID, shift.Date)
		if seen[key] {
			return fmt.Errorf("员工 %d 在 %s 被安排了多个班次", shift.EmployeeID, shift.Date)
		}
		seen[key] = true
	}
	return nil
}

// ValidateEmployeesAtLocation 检查班次中的员工是否都属于该地点
func ValidateEmployeesAtLocation(shifts []domain.Shift, employees []domain.Employee) error {
	for _, shift := range shifts {
		if !slices.ContainsFunc(employees, func(e domain.Employee) bool { return e.ID == shift.EmployeeID }) {
			return fmt.Errorf("员工 %d 不属于该地点", shift.EmployeeID)
		}
	}
	return nil
}
