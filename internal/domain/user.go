package domain

import (
	"time"
)

type Role string

const (
	RolePlanner Role = "排班员"
	RoleAdmin   Role = "管理员"
)

// User 登录后台的账号，和被排班的员工不是一回事
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}
