package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BlockRepo struct {
	pool *pgxpool.Pool
}

func NewBlockRepo(pool *pgxpool.Pool) *BlockRepo {
	return &BlockRepo{pool: pool}
}

func (r *BlockRepo) Exists(ctx context.Context, userA, userB uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_blocks
			WHERE (user_id = $1 AND blocked_user_id = $2)
				OR (user_id = $2 AND blocked_user_id = $1)
		)`, userA, userB).Scan(&exists)
	return exists, err
}

func (r *BlockRepo) Upsert(ctx context.Context, userID, blockedUserID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_blocks (id, user_id, blocked_user_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, blocked_user_id) DO NOTHING`,
		uuid.New(), userID, blockedUserID, time.Now(),
	)
	return err
}
