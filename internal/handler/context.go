package handler

type ContextKey string

var (
	RoleCtxKey      ContextKey = "role"
	SubCtxKey       ContextKey = "sub"
	RequestIDCtxKey ContextKey = "requestID"
	MyInfoCtx       ContextKey = "myInfo"
	LocationCtx     ContextKey = "location"
	EmployeeCtx     ContextKey = "employee"
	ShiftCtx        ContextKey = "shift"
)
