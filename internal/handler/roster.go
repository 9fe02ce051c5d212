package handler

import (
	"log/slog"
	"net/http"

	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/compliance"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/scheduler"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/utils"
)

// RosterResponse apply 为 true 时额外返回保存后整个月的冲突，其中包括原有的班次
type RosterResponse struct {
	*scheduler.Result
	MonthConflicts *compliance.ConflictState `json:"monthConflicts,omitempty"`
}

// mergeShifts 按照批量写入的覆盖规则合并：同一员工同一天以 proposed 为准，其余原有班次保留
func mergeShifts(existing []domain.Shift, proposed []domain.Shift) []domain.Shift {
	replaced := make(map[string]bool, len(proposed))
	for _, p := range proposed {
		replaced[compliance.ConflictKey(p.EmployeeID, p.Date)] = true
	}

	merged := make([]domain.Shift, 0, len(existing)+len(proposed))
	for _, e := range existing {
		if !replaced[compliance.ConflictKey(e.EmployeeID, e.Date)] {
			merged = append(merged, e)
		}
	}
	return append(merged, proposed...)
}

// GenerateRoster 使用遗传算法为整个月生成排班
//
// 算法不考虑该月已有的班次。apply 为 true 时结果会合并进已有班次而不是替换整个月，
// 提案没有覆盖到的原有班次保持不变，所以 monthConflicts 可能比 conflicts 多。
func (h *Handler) GenerateRoster(w http.ResponseWriter, r *http.Request) {
	location := r.Context().Value(LocationCtx).(*domain.Location)

	var req struct {
		Month string              `json:"month" validate:"required"`
		Slots []domain.RosterSlot `json:"slots" validate:"required,min=1"`
		Seed  int64               `json:"seed"`
		Apply bool                `json:"apply"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	month, err := utils.ValidateMonth(req.Month)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	employees, err := h.repository.GetEmployeesByLocation(location.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	params := &scheduler.Parameters{
		PopulationSize: int32(h.config.Roster.PopulationSize),
		MaxGenerations: int32(h.config.Roster.MaxGenerations),
		CrossoverRate:  h.config.Roster.CrossoverRate,
		MutationRate:   h.config.Roster.MutationRate,
		EliteCount:     int32(h.config.Roster.EliteCount),
		FairnessWeight: h.config.Roster.FairnessWeight,
		Seed:           req.Seed,
	}

	s, err := scheduler.New(params, h.detector, employees, req.Slots, month)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	result, err := s.Schedule()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	slog.Info("自动排班完成", "request_id", requestIDFrom(r), "location_id", location.ID, "month", req.Month, "fitness", result.Fitness, "conflicts", result.Conflicts.Count())

	if !req.Apply {
		h.successResponse(w, r, "生成排班成功", RosterResponse{Result: result})
		return
	}

	existing, err := h.repository.GetShiftsByLocationAndMonth(location.ID, month)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	shifts := make([]*domain.Shift, 0, len(result.Shifts))
	proposed := make([]domain.Shift, 0, len(result.Shifts))
	for _, p := range result.Shifts {
		shift := &domain.Shift{
			EmployeeID: p.EmployeeID,
			LocationID: location.ID,
			Date:       p.Date,
			TimeRange:  p.TimeRange,
			Note:       "自动排班",
		}
		shifts = append(shifts, shift)
		proposed = append(proposed, *shift)
	}

	if err := h.repository.CreateShifts(shifts); err != nil {
		h.shiftWriteError(w, r, err)
		return
	}

	h.dropReportCache(r, location.ID, month)

	merged := mergeShifts(toShiftValues(existing), proposed)
	h.successResponse(w, r, "生成并保存排班成功", RosterResponse{
		Result:         result,
		MonthConflicts: h.detector.Evaluate(merged, toEmployeeValues(employees), month),
	})
}
