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

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Create(ctx context.Context, msg *domain.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (id, room_id, sender_id, content, message_type, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.pool.Exec(ctx, query,
		msg.ID, msg.RoomID, msg.SenderID, msg.Content, msg.MessageType, msg.IsRead, msg.CreatedAt,
	)
	return err
}

func (r *MessageRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ChatMessage, error) {
	query := `
		SELECT id, room_id, sender_id, content, message_type, is_read, read_at, created_at
		FROM chat_messages WHERE id = $1`
	var msg domain.ChatMessage
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&msg.ID, &msg.RoomID, &msg.SenderID, &msg.Content,
		&msg.MessageType, &msg.IsRead, &msg.ReadAt, &msg.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &msg, err
}

func (r *MessageRepo) ListByRoom(ctx context.Context, roomID uuid.UUID) ([]domain.ChatMessage, error) {
	query := `
		SELECT id, room_id, sender_id, content, message_type, is_read, read_at, created_at
		FROM chat_messages
		WHERE room_id = $1
		ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

func (r *MessageRepo) ListUnread(ctx context.Context, roomID, reader uuid.UUID, sender *uuid.UUID, cutoff *time.Time) ([]domain.ChatMessage, error) {
	query := `
		SELECT id, room_id, sender_id, content, message_type, is_read, read_at, created_at
		FROM chat_messages
		WHERE room_id = $1
			AND is_read = false
			AND ($2::uuid IS NULL OR sender_id = $2)
			AND ($3::uuid IS NULL OR sender_id <> $3)
			AND ($4::timestamptz IS NULL OR created_at <= $4)
		ORDER BY created_at ASC`

	// Either restrict to a single sender or just exclude the reader.
	var senderArg, readerArg *uuid.UUID
	if sender != nil {
		senderArg = sender
	} else {
		readerArg = &reader
	}

	rows, err := r.pool.Query(ctx, query, roomID, senderArg, readerArg, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

func (r *MessageRepo) MarkRead(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, `
		UPDATE chat_messages
		SET is_read = true, read_at = $2
		WHERE id = ANY($1)`,
		ids, at,
	)
	return err
}

func (r *MessageRepo) CountUnread(ctx context.Context, roomID, notSender uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM chat_messages
		WHERE room_id = $1 AND sender_id <> $2 AND is_read = false`,
		roomID, notSender,
	).Scan(&count)
	return count, err
}

func (r *MessageRepo) DeleteByRoom(ctx context.Context, roomID uuid.UUID) (int, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM chat_messages WHERE room_id = $1`, roomID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *MessageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM chat_messages WHERE id = $1`, id)
	return err
}

func scanMessages(rows pgx.Rows) ([]domain.ChatMessage, error) {
	var messages []domain.ChatMessage
	for rows.Next() {
		var msg domain.ChatMessage
		if err := rows.Scan(
			&msg.ID, &msg.RoomID, &msg.SenderID, &msg.Content,
			&msg.MessageType, &msg.IsRead, &msg.ReadAt, &msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
