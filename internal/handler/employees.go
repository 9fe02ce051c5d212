package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/utils"
)

func (h *Handler) GetLocationEmployees(w http.ResponseWriter, r *http.Request) {
	location := r.Context().Value(LocationCtx).(*domain.Location)

	employees, err := h.repository.GetEmployeesByLocation(location.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取员工列表成功", employees)
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	location := r.Context().Value(LocationCtx).(*domain.Location)

	var req struct {
		FullName string `json:"fullName" validate:"required,max=32"`
		Code     string `json:"code" validate:"omitempty,alphanum,max=16"`
		Email    string `json:"email" validate:"omitempty,email"`
		Position string `json:"position" validate:"max=32"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 没有填写工号时根据姓名拼音首字母生成
	if req.Code == "" {
		existing, err := h.repository.GetEmployeesByLocation(location.ID)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		req.Code = utils.GenerateEmployeeCode(req.FullName, len(existing)+1)
	}

	employee := &domain.Employee{
		LocationID: location.ID,
		FullName:   req.FullName,
		Code:       req.Code,
		Email:      req.Email,
		Position:   req.Position,
	}

	if err := h.repository.CreateEmployee(employee); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "employees_location_id_code_key":
				h.errorResponse(w, r, "该地点已存在相同工号的员工")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建员工成功", employee)
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	employee := r.Context().Value(EmployeeCtx).(*domain.Employee)
	h.successResponse(w, r, "获取员工成功", employee)
}

func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	employee := r.Context().Value(EmployeeCtx).(*domain.Employee)

	var req struct {
		FullName *string `json:"fullName" validate:"omitempty,max=32"`
		Code     *string `json:"code" validate:"omitempty,alphanum,max=16"`
		Email    *string `json:"email" validate:"omitempty,email"`
		Position *string `json:"position" validate:"omitempty,max=32"`
		IsActive *bool   `json:"isActive" validate:"omitempty"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.FullName != nil {
		employee.FullName = *req.FullName
	}
	if req.Code != nil {
		employee.Code = *req.Code
	}
	if req.Email != nil {
		employee.Email = *req.Email
	}
	if req.Position != nil {
		employee.Position = *req.Position
	}
	if req.IsActive != nil {
		employee.IsActive = *req.IsActive
	}

	if err := h.repository.UpdateEmployee(employee); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新员工失败，请重试")
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "employees_location_id_code_key":
				h.errorResponse(w, r, "该地点已存在相同工号的员工")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 报告中包含员工姓名
	h.dropReportCache(r, employee.LocationID)

	h.successResponse(w, r, "更新员工成功", employee)
}

func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	employee := r.Context().Value(EmployeeCtx).(*domain.Employee)

	if err := h.repository.DeleteEmployee(employee.ID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "员工不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.dropReportCache(r, employee.LocationID)

	h.successResponse(w, r, "删除员工成功", nil)
}
