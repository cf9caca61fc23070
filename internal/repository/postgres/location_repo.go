package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maumlab/maum/internal/domain"
)

type LocationRepo struct {
	pool *pgxpool.Pool
}

func NewLocationRepo(pool *pgxpool.Pool) *LocationRepo {
	return &LocationRepo{pool: pool}
}

func (r *LocationRepo) Create(ctx context.Context, area *domain.LocationArea) error {
	query := `
		INSERT INTO location_areas (id, user_id, latitude, longitude, address, radius, is_primary, verified_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.pool.Exec(ctx, query,
		area.ID, area.UserID, area.Latitude, area.Longitude, area.Address,
		area.Radius, area.IsPrimary, area.VerifiedAt, area.CreatedAt,
	)
	return err
}

func (r *LocationRepo) GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.LocationArea, error) {
	return r.scanArea(ctx, `
		SELECT id, user_id, latitude, longitude, address, radius, is_primary, verified_at, created_at
		FROM location_areas WHERE id = $1 AND user_id = $2`, id, userID)
}

func (r *LocationRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.LocationArea, error) {
	query := `
		SELECT id, user_id, latitude, longitude, address, radius, is_primary, verified_at, created_at
		FROM location_areas
		WHERE user_id = $1
		ORDER BY is_primary DESC, created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var areas []domain.LocationArea
	for rows.Next() {
		var a domain.LocationArea
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.Latitude, &a.Longitude, &a.Address,
			&a.Radius, &a.IsPrimary, &a.VerifiedAt, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		areas = append(areas, a)
	}
	return areas, rows.Err()
}

func (r *LocationRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM location_areas WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

func (r *LocationRepo) Update(ctx context.Context, area *domain.LocationArea) error {
	query := `
		UPDATE location_areas
		SET latitude = $2, longitude = $3, address = $4, radius = $5, is_primary = $6, verified_at = $7
		WHERE id = $1`
	_, err := r.pool.Exec(ctx, query,
		area.ID, area.Latitude, area.Longitude, area.Address,
		area.Radius, area.IsPrimary, area.VerifiedAt,
	)
	return err
}

func (r *LocationRepo) SetVerified(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE location_areas SET verified_at = $2 WHERE id = $1`, id, at)
	return err
}

func (r *LocationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM location_areas WHERE id = $1`, id)
	return err
}

func (r *LocationRepo) GetBestArea(ctx context.Context, userID uuid.UUID) (*domain.LocationArea, error) {
	return r.scanArea(ctx, `
		SELECT id, user_id, latitude, longitude, address, radius, is_primary, verified_at, created_at
		FROM location_areas
		WHERE user_id = $1
		ORDER BY is_primary DESC, verified_at DESC NULLS LAST, created_at DESC
		LIMIT 1`, userID)
}

func (r *LocationRepo) scanArea(ctx context.Context, query string, args ...any) (*domain.LocationArea, error) {
	var a domain.LocationArea
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&a.ID, &a.UserID, &a.Latitude, &a.Longitude, &a.Address,
		&a.Radius, &a.IsPrimary, &a.VerifiedAt, &a.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &a, err
}
