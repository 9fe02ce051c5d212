package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/compliance"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/utils"
)

type shiftRequest struct {
	EmployeeID int64  `json:"employeeID" validate:"required,gt=0"`
	Date       string `json:"date" validate:"required"`
	TimeRange  string `json:"timeRange" validate:"required"`
	Note       string `json:"note" validate:"max=255"`
}

// ShiftWithWarnings 班次仍然会被保存，warnings 提示排班员哪些劳动规则可能被违反
type ShiftWithWarnings struct {
	Shift    *domain.Shift                 `json:"shift"`
	Warnings []compliance.ValidationResult `json:"warnings"`
}

func monthOf(date string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("日期 %s 格式错误，应为 YYYY-MM-DD", date)
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), nil
}

// checkShiftFields 校验班次的格式以及员工是否属于该地点
func (h *Handler) checkShiftFields(locationID int64, shift *domain.Shift) (time.Time, error) {
	month, err := monthOf(shift.Date)
	if err != nil {
		return time.Time{}, err
	}
	if err := utils.ValidateTimeRange(shift.TimeRange); err != nil {
		return time.Time{}, err
	}

	if err := h.employeeAtLocation(locationID, shift.EmployeeID); err != nil {
		return time.Time{}, err
	}

	return month, nil
}

func ensureSameLocation(employee *domain.Employee, locationID int64) error {
	if employee.LocationID != locationID {
		return fmt.Errorf("员工 %d 不属于该地点", employee.ID)
	}
	return nil
}

func (h *Handler) employeeAtLocation(locationID int64, employeeID int64) error {
	employee, err := h.repository.GetEmployeeByID(employeeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("员工 %d 不存在", employeeID)
		}
		return err
	}
	return ensureSameLocation(employee, locationID)
}

// shiftWarnings 候选班次来自请求，使用单独的检测器，不进入共享的解析缓存
func (h *Handler) shiftWarnings(shift *domain.Shift, month time.Time) ([]compliance.ValidationResult, error) {
	existing, err := h.repository.GetShiftsByLocationAndMonth(shift.LocationID, month)
	if err != nil {
		return nil, err
	}
	return compliance.NewDetector().CheckShift(*shift, toShiftValues(existing), month), nil
}

func (h *Handler) shiftWriteError(w http.ResponseWriter, r *http.Request, err error) {
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, sql.ErrNoRows):
		h.errorResponse(w, r, "班次已被修改或删除，请重试")
	case errors.As(err, &pgErr):
		switch pgErr.ConstraintName {
		case "shifts_employee_id_date_key":
			h.errorResponse(w, r, "该员工当天已有班次")
		default:
			h.internalServerError(w, r, err)
		}
	default:
		h.internalServerError(w, r, err)
	}
}

func (h *Handler) GetLocationShifts(w http.ResponseWriter, r *http.Request) {
	location := r.Context().Value(LocationCtx).(*domain.Location)

	month, err := utils.ValidateMonth(r.URL.Query().Get("month"))
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	shifts, err := h.repository.GetShiftsByLocationAndMonth(location.ID, month)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取班次成功", shifts)
}

func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	location := r.Context().Value(LocationCtx).(*domain.Location)

	var req shiftRequest
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	shift := &domain.Shift{
		EmployeeID: req.EmployeeID,
		LocationID: location.ID,
		Date:       req.Date,
		TimeRange:  req.TimeRange,
		Note:       req.Note,
	}

	month, err := h.checkShiftFields(location.ID, shift)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	// 需要在写入之前计算，否则新班次会和自己比较
	warnings, err := h.shiftWarnings(shift, month)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.repository.CreateShift(shift); err != nil {
		h.shiftWriteError(w, r, err)
		return
	}

	h.dropReportCache(r, location.ID, month)

	h.successResponse(w, r, "创建班次成功", ShiftWithWarnings{
		Shift:    shift,
		Warnings: warnings,
	})
}

// CreateShiftsBatch 批量写入班次，同一员工同一天已有班次时覆盖
func (h *Handler) CreateShiftsBatch(w http.ResponseWriter, r *http.Request) {
	location := r.Context().Value(LocationCtx).(*domain.Location)

	var req struct {
		Shifts []shiftRequest `json:"shifts" validate:"required,min=1,dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	employees, err := h.repository.GetEmployeesByLocation(location.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	shifts := make([]*domain.Shift, 0, len(req.Shifts))
	values := make([]domain.Shift, 0, len(req.Shifts))
	months := make([]time.Time, 0, 1)
	for i, s := range req.Shifts {
		shift := &domain.Shift{
			EmployeeID: s.EmployeeID,
			LocationID: location.ID,
			Date:       s.Date,
			TimeRange:  s.TimeRange,
			Note:       s.Note,
		}

		month, err := monthOf(shift.Date)
		if err != nil {
			h.errorResponse(w, r, fmt.Sprintf("第 %d 个班次：%s", i+1, err.Error()))
			return
		}
		if err := utils.ValidateTimeRange(shift.TimeRange); err != nil {
			h.errorResponse(w, r, fmt.Sprintf("第 %d 个班次：%s", i+1, err.Error()))
			return
		}

		if !containsMonth(months, month) {
			months = append(months, month)
		}
		shifts = append(shifts, shift)
		values = append(values, *shift)
	}

	if err := utils.ValidateNoDoubleBooking(values); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}
	if err := utils.ValidateEmployeesAtLocation(values, toEmployeeValues(employees)); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.CreateShifts(shifts); err != nil {
		h.shiftWriteError(w, r, err)
		return
	}

	h.dropReportCache(r, location.ID, months...)

	h.successResponse(w, r, "批量保存班次成功", shifts)
}

func containsMonth(months []time.Time, month time.Time) bool {
	for _, m := range months {
		if m.Equal(month) {
			return true
		}
	}
	return false
}

// CheckShift 只校验不保存，id 不为 0 时表示修改已有班次
func (h *Handler) CheckShift(w http.ResponseWriter, r *http.Request) {
	location := r.Context().Value(LocationCtx).(*domain.Location)

	var req struct {
		ID int64 `json:"id" validate:"gte=0"`
		shiftRequest
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	candidate := &domain.Shift{
		ID:         req.ID,
		EmployeeID: req.EmployeeID,
		LocationID: location.ID,
		Date:       req.Date,
		TimeRange:  req.TimeRange,
		Note:       req.Note,
	}

	month, err := monthOf(candidate.Date)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.employeeAtLocation(location.ID, candidate.EmployeeID); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	warnings, err := h.shiftWarnings(candidate, month)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "检查完成", warnings)
}

func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)
	h.successResponse(w, r, "获取班次成功", shift)
}

func (h *Handler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	var req struct {
		Date      *string `json:"date" validate:"omitempty"`
		TimeRange *string `json:"timeRange" validate:"omitempty"`
		Note      *string `json:"note" validate:"omitempty,max=255"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	oldMonth, err := monthOf(shift.Date)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if req.Date != nil {
		shift.Date = *req.Date
	}
	if req.TimeRange != nil {
		shift.TimeRange = *req.TimeRange
	}
	if req.Note != nil {
		shift.Note = *req.Note
	}

	month, err := h.checkShiftFields(shift.LocationID, shift)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	warnings, err := h.shiftWarnings(shift, month)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.repository.UpdateShift(shift); err != nil {
		h.shiftWriteError(w, r, err)
		return
	}

	h.dropReportCache(r, shift.LocationID, oldMonth, month)

	h.successResponse(w, r, "更新班次成功", ShiftWithWarnings{
		Shift:    shift,
		Warnings: warnings,
	})
}

func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	if err := h.repository.DeleteShift(shift.ID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "班次不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	month, err := monthOf(shift.Date)
	if err == nil {
		h.dropReportCache(r, shift.LocationID, month)
	}

	h.successResponse(w, r, "删除班次成功", nil)
}
