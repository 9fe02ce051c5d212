package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
)

func (h *Handler) GetAllLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.repository.GetAllLocations()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取所有地点成功", locations)
}

func (h *Handler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string `json:"name" validate:"required,max=64"`
		Address      string `json:"address" validate:"max=255"`
		ManagerEmail string `json:"managerEmail" validate:"required,email"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	location := &domain.Location{
		Name:         req.Name,
		Address:      req.Address,
		ManagerEmail: req.ManagerEmail,
	}

	if err := h.repository.CreateLocation(location); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "locations_name_key":
				h.errorResponse(w, r, "地点名称已存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建地点成功", location)
}

func (h *Handler) GetLocation(w http.ResponseWriter, r *http.Request) {
	location := r.Context().Value(LocationCtx).(*domain.Location)
	h.successResponse(w, r, "获取地点成功", location)
}

func (h *Handler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	location := r.Context().Value(LocationCtx).(*domain.Location)

	var req struct {
		Name         *string `json:"name" validate:"omitempty,max=64"`
		Address      *string `json:"address" validate:"omitempty,max=255"`
		ManagerEmail *string `json:"managerEmail" validate:"omitempty,email"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Name != nil {
		location.Name = *req.Name
	}
	if req.Address != nil {
		location.Address = *req.Address
	}
	if req.ManagerEmail != nil {
		location.ManagerEmail = *req.ManagerEmail
	}

	if err := h.repository.UpdateLocation(location); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新地点失败，请重试")
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "locations_name_key":
				h.errorResponse(w, r, "地点名称已存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新地点成功", location)
}

func (h *Handler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	location := r.Context().Value(LocationCtx).(*domain.Location)

	if err := h.repository.DeleteLocation(location.ID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "地点不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 地点下的班次被级联删除，对应的报告缓存也不再有效
	h.dropReportCache(r, location.ID)

	h.successResponse(w, r, "删除地点成功", nil)
}
