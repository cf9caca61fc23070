package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maumlab/maum/internal/domain"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, provider, provider_user_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Email, user.Provider, user.ProviderUserID,
		user.Status, user.CreatedAt, user.UpdatedAt,
	)
	return err
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.scanUser(ctx, `
		SELECT id, email, provider, provider_user_id, status, deleted_at, created_at, updated_at
		FROM users WHERE id = $1`, id)
}

func (r *UserRepo) GetByProvider(ctx context.Context, provider, providerUserID string) (*domain.User, error) {
	return r.scanUser(ctx, `
		SELECT id, email, provider, provider_user_id, status, deleted_at, created_at, updated_at
		FROM users WHERE provider = $1 AND provider_user_id = $2`, provider, providerUserID)
}

func (r *UserRepo) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	query := `
		SELECT id, user_id, display_name, gender, age, height, occupation, education, bio, is_complete, updated_at
		FROM profiles WHERE user_id = $1`
	var p domain.Profile
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.ID, &p.UserID, &p.DisplayName, &p.Gender, &p.Age, &p.Height,
		&p.Occupation, &p.Education, &p.Bio, &p.IsComplete, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &p, err
}

func (r *UserRepo) GetPrimaryImageURL(ctx context.Context, userID uuid.UUID) (*string, error) {
	query := `
		SELECT pi.image_url
		FROM profile_images pi
		JOIN profiles p ON pi.profile_id = p.id
		WHERE p.user_id = $1
		ORDER BY (CASE WHEN pi.image_type = 'MAIN' THEN 1 ELSE 0 END) DESC,
			pi.display_order ASC
		LIMIT 1`
	var url string
	err := r.pool.QueryRow(ctx, query, userID).Scan(&url)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &url, nil
}

func (r *UserRepo) scanUser(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&u.ID, &u.Email, &u.Provider, &u.ProviderUserID,
		&u.Status, &u.DeletedAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &u, err
}
