package domain

import "time"

// Location 门店/工作地点，排班按地点和月份进行
type Location struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	ManagerEmail string    `json:"managerEmail"` // 合规报告会发送到这个邮箱
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}
