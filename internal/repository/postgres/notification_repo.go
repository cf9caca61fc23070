package postgres

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maumlab/maum/internal/domain"
)

type NotificationRepo struct {
	pool *pgxpool.Pool
}

func NewNotificationRepo(pool *pgxpool.Pool) *NotificationRepo {
	return &NotificationRepo{pool: pool}
}

func (r *NotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	title, err := json.Marshal(n.Title)
	if err != nil {
		return err
	}
	message, err := json.Marshal(n.Message)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO notifications (id, user_id, type, title, message, related_user_id, related_message_id, related_matching_id, is_push_sent, is_actionable, action_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err = r.pool.Exec(ctx, query,
		n.ID, n.UserID, n.Type, title, message,
		n.RelatedUserID, n.RelatedMessageID, n.RelatedMatchID,
		n.IsPushSent, n.IsActionable, n.ActionURL, n.CreatedAt,
	)
	return err
}

func (r *NotificationRepo) List(ctx context.Context, userID uuid.UUID, types []string, limit int) ([]domain.Notification, error) {
	query := `
		SELECT id, user_id, type, title, message, related_user_id, related_message_id, related_matching_id, is_push_sent, is_actionable, action_url, created_at
		FROM notifications
		WHERE user_id = $1
			AND (cardinality($2::text[]) = 0 OR type = ANY($2))
		ORDER BY created_at DESC
		LIMIT $3`

	if types == nil {
		types = []string{}
	}

	rows, err := r.pool.Query(ctx, query, userID, types, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var title, message []byte
		if err := rows.Scan(
			&n.ID, &n.UserID, &n.Type, &title, &message,
			&n.RelatedUserID, &n.RelatedMessageID, &n.RelatedMatchID,
			&n.IsPushSent, &n.IsActionable, &n.ActionURL, &n.CreatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(title, &n.Title); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(message, &n.Message); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
