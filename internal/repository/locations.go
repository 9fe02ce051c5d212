package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
)

func (r *Repository) GetAllLocations() ([]*domain.Location, error) {
	query := `
		SELECT id, name, address, manager_email, created_at, version
		FROM locations
		ORDER BY id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locations := make([]*domain.Location, 0)
	for rows.Next() {
		location := &domain.Location{}
		dst := []any{&location.ID, &location.Name, &location.Address, &location.ManagerEmail, &location.CreatedAt, &location.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		locations = append(locations, location)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return locations, nil
}

func (r *Repository) GetLocationByID(id int64) (*domain.Location, error) {
	query := `
		SELECT name, address, manager_email, created_at, version
		FROM locations WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	location := &domain.Location{
		ID: id,
	}

	dst := []any{&location.Name, &location.Address, &location.ManagerEmail, &location.CreatedAt, &location.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return location, nil
}

func (r *Repository) CreateLocation(location *domain.Location) error {
	query := `
		INSERT INTO locations (name, address, manager_email)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{location.Name, location.Address, location.ManagerEmail}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&location.ID, &location.CreatedAt, &location.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateLocation(location *domain.Location) error {
	query := `
		UPDATE locations
		SET
			name = $1,
			address = $2,
			manager_email = $3,
			version = version + 1
		WHERE id = $4 AND version = $5
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{location.Name, location.Address, location.ManagerEmail, location.ID, location.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&location.Version); err != nil {
		return err
	}

	return nil
}

// DeleteLocation 会级联删除该地点的员工和班次
func (r *Repository) DeleteLocation(id int64) error {
	query := `
		DELETE FROM locations WHERE id = $1
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
