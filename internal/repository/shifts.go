package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
)

// GetShiftsByLocationAndMonth 查询某个地点在 month 所在月份中的全部班次
func (r *Repository) GetShiftsByLocationAndMonth(locationID int64, month time.Time) ([]*domain.Shift, error) {
	query := `
		SELECT id, employee_id, date::text, time_range, note, created_at, version
		FROM shifts
		WHERE location_id = $1 AND date >= $2::date AND date < $3::date
		ORDER BY date, employee_id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)

	rows, err := r.dbpool.QueryContext(ctx, query, locationID, first.Format(time.DateOnly), next.Format(time.DateOnly))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := make([]*domain.Shift, 0)
	for rows.Next() {
		shift := &domain.Shift{
			LocationID: locationID,
		}
		dst := []any{&shift.ID, &shift.EmployeeID, &shift.Date, &shift.TimeRange, &shift.Note, &shift.CreatedAt, &shift.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shifts, nil
}

func (r *Repository) GetShiftByID(id int64) (*domain.Shift, error) {
	query := `
		SELECT employee_id, location_id, date::text, time_range, note, created_at, version
		FROM shifts WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	shift := &domain.Shift{
		ID: id,
	}

	dst := []any{&shift.EmployeeID, &shift.LocationID, &shift.Date, &shift.TimeRange, &shift.Note, &shift.CreatedAt, &shift.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return shift, nil
}

// CreateShift 同一个员工同一天只能有一个班次，冲突时返回违反 shifts_employee_id_date_key 约束的错误
func (r *Repository) CreateShift(shift *domain.Shift) error {
	query := `
		INSERT INTO shifts (employee_id, location_id, date, time_range, note)
		VALUES ($1, $2, $3::date, $4, $5)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{shift.EmployeeID, shift.LocationID, shift.Date, shift.TimeRange, shift.Note}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&shift.ID, &shift.CreatedAt, &shift.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateShift(shift *domain.Shift) error {
	query := `
		UPDATE shifts
		SET
			date = $1::date,
			time_range = $2,
			note = $3,
			version = version + 1
		WHERE id = $4 AND version = $5
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{shift.Date, shift.TimeRange, shift.Note, shift.ID, shift.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&shift.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteShift(id int64) error {
	query := `
		DELETE FROM shifts WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// CreateShifts 在一个事务中批量写入班次，同一员工同一天已有班次时覆盖原来的时间段和备注
func (r *Repository) CreateShifts(shifts []*domain.Shift) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO shifts (employee_id, location_id, date, time_range, note)
		VALUES ($1, $2, $3::date, $4, $5)
		ON CONFLICT (employee_id, date) DO UPDATE
		SET
			time_range = EXCLUDED.time_range,
			note = EXCLUDED.note,
			version = shifts.version + 1
		RETURNING id, created_at, version
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, shift := range shifts {
		args := []any{shift.EmployeeID, shift.LocationID, shift.Date, shift.TimeRange, shift.Note}
		if err := stmt.QueryRowContext(ctx, args...).Scan(&shift.ID, &shift.CreatedAt, &shift.Version); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}
