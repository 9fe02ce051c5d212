package domain

import "time"

type Employee struct {
	ID         int64     `json:"id"`
	LocationID int64     `json:"locationID"`
	FullName   string    `json:"fullName"`
	Code       string    `json:"code"` // 工号，CSV 导入时用它匹配员工
	Email      string    `json:"email"`
	Position   string    `json:"position"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
	Version    int32     `json:"-"`
}
