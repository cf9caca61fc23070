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

type ChatRepo struct {
	pool *pgxpool.Pool
}

func NewChatRepo(pool *pgxpool.Pool) *ChatRepo {
	return &ChatRepo{pool: pool}
}

// directKey canonicalizes a direct-room pair so the partial unique index
// on chat_rooms can reject duplicate rooms created by a first-contact race.
func directKey(a, b uuid.UUID) string {
	if a.String() > b.String() {
		a, b = b, a
	}
	return a.String() + ":" + b.String()
}

func (r *ChatRepo) CreateRoom(ctx context.Context, room *domain.ChatRoom, userIDs []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var key *string
	if room.RoomType == domain.RoomTypeDirect && len(userIDs) == 2 {
		k := directKey(userIDs[0], userIDs[1])
		key = &k
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO chat_rooms (id, room_type, name, status, started_at, expires_at, is_premium, direct_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		room.ID, room.RoomType, room.Name, room.Status, room.StartedAt,
		room.ExpiresAt, room.IsPremium, key, room.CreatedAt,
	)
	if err != nil {
		return err
	}

	for _, uid := range userIDs {
		_, err = tx.Exec(ctx, `
			INSERT INTO chat_room_participants (id, room_id, user_id, role, unread_count, joined_at)
			VALUES ($1, $2, $3, 'MEMBER', 0, $4)`,
			uuid.New(), room.ID, uid, room.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *ChatRepo) GetRoomWithParticipants(ctx context.Context, roomID uuid.UUID) (*domain.ChatRoom, error) {
	query := `
		SELECT id, room_type, name, status, started_at, expires_at, is_premium, created_at
		FROM chat_rooms WHERE id = $1`
	var room domain.ChatRoom
	err := r.pool.QueryRow(ctx, query, roomID).Scan(
		&room.ID, &room.RoomType, &room.Name, &room.Status,
		&room.StartedAt, &room.ExpiresAt, &room.IsPremium, &room.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	participants, err := r.listParticipants(ctx, roomID)
	if err != nil {
		return nil, err
	}
	room.Participants = participants

	return &room, nil
}

func (r *ChatRepo) FindActiveDirectRoom(ctx context.Context, userA, userB uuid.UUID) (*domain.ChatRoom, error) {
	query := `
		SELECT id FROM chat_rooms
		WHERE room_type = $1 AND status = $2 AND direct_key = $3
		ORDER BY created_at ASC
		LIMIT 1`
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, query, domain.RoomTypeDirect, domain.RoomStatusActive, directKey(userA, userB)).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.GetRoomWithParticipants(ctx, id)
}

func (r *ChatRepo) GetParticipant(ctx context.Context, roomID, userID uuid.UUID) (*domain.ChatRoomParticipant, error) {
	query := `
		SELECT id, room_id, user_id, role, last_read_message_id, last_read_at, unread_count, joined_at, left_at
		FROM chat_room_participants
		WHERE room_id = $1 AND user_id = $2`
	var p domain.ChatRoomParticipant
	err := r.pool.QueryRow(ctx, query, roomID, userID).Scan(
		&p.ID, &p.RoomID, &p.UserID, &p.Role, &p.LastReadMessageID,
		&p.LastReadAt, &p.UnreadCount, &p.JoinedAt, &p.LeftAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &p, err
}

func (r *ChatRepo) ListRoomSummaries(ctx context.Context, userID uuid.UUID) ([]domain.RoomSummary, error) {
	query := `
		SELECT r.id, r.room_type, r.name, r.status, r.started_at, r.expires_at, r.is_premium, r.created_at,
			me.unread_count,
			other.user_id, op.display_name,
			lm.id, lm.sender_id, lm.content, lm.message_type, lm.is_read, lm.read_at, lm.created_at
		FROM chat_rooms r
		JOIN chat_room_participants me ON me.room_id = r.id AND me.user_id = $1 AND me.left_at IS NULL
		LEFT JOIN LATERAL (
			SELECT p.user_id FROM chat_room_participants p
			WHERE p.room_id = r.id AND p.user_id <> $1 AND p.left_at IS NULL
			LIMIT 1
		) other ON true
		LEFT JOIN profiles op ON op.user_id = other.user_id
		LEFT JOIN LATERAL (
			SELECT m.id, m.sender_id, m.content, m.message_type, m.is_read, m.read_at, m.created_at
			FROM chat_messages m
			WHERE m.room_id = r.id
			ORDER BY m.created_at DESC
			LIMIT 1
		) lm ON true
		ORDER BY COALESCE(lm.created_at, r.created_at) DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []domain.RoomSummary
	for rows.Next() {
		var s domain.RoomSummary
		var otherID *uuid.UUID
		var otherName *string
		var lmID, lmSender *uuid.UUID
		var lmContent, lmType *string
		var lmIsRead *bool
		var lmReadAt, lmCreatedAt *time.Time

		if err := rows.Scan(
			&s.ID, &s.RoomType, &s.Name, &s.Status, &s.StartedAt, &s.ExpiresAt, &s.IsPremium, &s.CreatedAt,
			&s.UnreadCount,
			&otherID, &otherName,
			&lmID, &lmSender, &lmContent, &lmType, &lmIsRead, &lmReadAt, &lmCreatedAt,
		); err != nil {
			return nil, err
		}

		if otherID != nil {
			partner := domain.RoomPartner{ID: *otherID}
			if otherName != nil {
				partner.DisplayName = *otherName
			}
			s.OtherUser = &partner
		}

		if lmID != nil {
			s.LastMessage = &domain.ChatMessage{
				ID:          *lmID,
				RoomID:      s.ID,
				SenderID:    *lmSender,
				Content:     *lmContent,
				MessageType: *lmType,
				IsRead:      *lmIsRead,
				ReadAt:      lmReadAt,
				CreatedAt:   *lmCreatedAt,
			}
		}

		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (r *ChatRepo) IncrementUnread(ctx context.Context, roomID, excludeUserID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE chat_room_participants
		SET unread_count = unread_count + 1
		WHERE room_id = $1 AND user_id <> $2 AND left_at IS NULL`,
		roomID, excludeUserID,
	)
	return err
}

func (r *ChatRepo) DecrementUnread(ctx context.Context, roomID, excludeUserID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE chat_room_participants
		SET unread_count = GREATEST(unread_count - 1, 0)
		WHERE room_id = $1 AND user_id <> $2 AND left_at IS NULL`,
		roomID, excludeUserID,
	)
	return err
}

func (r *ChatRepo) SetSenderRead(ctx context.Context, roomID, senderID, messageID uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE chat_room_participants
		SET last_read_message_id = $3, last_read_at = $4, unread_count = 0
		WHERE room_id = $1 AND user_id = $2 AND left_at IS NULL`,
		roomID, senderID, messageID, at,
	)
	return err
}

func (r *ChatRepo) SetReadState(ctx context.Context, roomID, userID, lastReadMessageID uuid.UUID, at time.Time, unreadCount int) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE chat_room_participants
		SET last_read_message_id = $3, last_read_at = $4, unread_count = $5
		WHERE room_id = $1 AND user_id = $2 AND left_at IS NULL`,
		roomID, userID, lastReadMessageID, at, unreadCount,
	)
	return err
}

func (r *ChatRepo) ResetAllReadState(ctx context.Context, roomID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE chat_room_participants
		SET unread_count = 0, last_read_message_id = NULL
		WHERE room_id = $1 AND left_at IS NULL`,
		roomID,
	)
	return err
}

func (r *ChatRepo) ClearLastReadPointer(ctx context.Context, messageID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE chat_room_participants
		SET last_read_message_id = NULL
		WHERE last_read_message_id = $1`,
		messageID,
	)
	return err
}

func (r *ChatRepo) listParticipants(ctx context.Context, roomID uuid.UUID) ([]domain.ChatRoomParticipant, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, room_id, user_id, role, last_read_message_id, last_read_at, unread_count, joined_at, left_at
		FROM chat_room_participants
		WHERE room_id = $1
		ORDER BY joined_at ASC`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []domain.ChatRoomParticipant
	for rows.Next() {
		var p domain.ChatRoomParticipant
		if err := rows.Scan(
			&p.ID, &p.RoomID, &p.UserID, &p.Role, &p.LastReadMessageID,
			&p.LastReadAt, &p.UnreadCount, &p.JoinedAt, &p.LeftAt,
		); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}
