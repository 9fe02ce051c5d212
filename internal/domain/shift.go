package domain

import "time"

// Shift 某个员工在某一天的一段工作时间
type Shift struct {
	ID         int64     `json:"id"`
	EmployeeID int64     `json:"employeeID"`
	LocationID int64     `json:"locationID"`
	Date       string    `json:"date"`      // YYYY-MM-DD
	TimeRange  string    `json:"timeRange"` // H:MM-H:MM，同一天内，不支持跨夜
	Note       string    `json:"note"`
	CreatedAt  time.Time `json:"createdAt"`
	Version    int32     `json:"-"`
}

// RosterSlot 自动排班时每天需要覆盖的一个时间段
type RosterSlot struct {
	TimeRange      string `json:"timeRange"`
	RequiredNumber int32  `json:"requiredNumber"`
}
