package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoomTypeDirect = "DIRECT"

	RoomStatusActive = "ACTIVE"
	RoomStatusClosed = "CLOSED"

	MessageTypeText = "TEXT"
)

type ChatRoom struct {
	ID        uuid.UUID  `json:"id"`
	RoomType  string     `json:"room_type"`
	Name      *string    `json:"name,omitempty"`
	Status    string     `json:"status"`
	StartedAt time.Time  `json:"started_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	IsPremium bool       `json:"is_premium"`
	CreatedAt time.Time  `json:"created_at"`

	// Loaded alongside the room when the caller needs them.
	Participants []ChatRoomParticipant `json:"participants,omitempty"`
}

// Expired reports whether the free-tier conversation window has closed.
// Premium rooms never expire.
func (r *ChatRoom) Expired(now time.Time) bool {
	return !r.IsPremium && r.ExpiresAt != nil && now.After(*r.ExpiresAt)
}

type ChatRoomParticipant struct {
	ID                uuid.UUID  `json:"id"`
	RoomID            uuid.UUID  `json:"room_id"`
	UserID            uuid.UUID  `json:"user_id"`
	Role              string     `json:"role"`
	LastReadMessageID *uuid.UUID `json:"last_read_message_id,omitempty"`
	LastReadAt        *time.Time `json:"last_read_at,omitempty"`
	UnreadCount       int        `json:"unread_count"`
	JoinedAt          time.Time  `json:"joined_at"`
	LeftAt            *time.Time `json:"left_at,omitempty"`
}

// Active means the participant has not soft-left the room.
func (p *ChatRoomParticipant) Active() bool {
	return p.LeftAt == nil
}

type ChatMessage struct {
	ID          uuid.UUID  `json:"id"`
	RoomID      uuid.UUID  `json:"room_id"`
	SenderID    uuid.UUID  `json:"sender_id"`
	Content     string     `json:"content"`
	MessageType string     `json:"message_type"`
	IsRead      bool       `json:"is_read"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// RoomSummary is the chat-list row: the room plus the other party,
// the last message and the caller's unread counter.
type RoomSummary struct {
	ID        uuid.UUID  `json:"id"`
	RoomType  string     `json:"room_type"`
	Name      *string    `json:"name,omitempty"`
	Status    string     `json:"status"`
	StartedAt time.Time  `json:"started_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	IsPremium bool       `json:"is_premium"`
	CreatedAt time.Time  `json:"created_at"`

	OtherUser   *RoomPartner `json:"other_user,omitempty"`
	LastMessage *ChatMessage `json:"last_message,omitempty"`
	UnreadCount int          `json:"unread_count"`
}

type RoomPartner struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
}

// LastActivity orders the room list: last message when present, room
// creation otherwise.
func (s *RoomSummary) LastActivity() time.Time {
	if s.LastMessage != nil {
		return s.LastMessage.CreatedAt
	}
	return s.CreatedAt
}

// DirectRoomInfo is the response of the direct-room open endpoint.
type DirectRoomInfo struct {
	RoomID          uuid.UUID `json:"roomId"`
	PartnerUserID   uuid.UUID `json:"partnerUserId"`
	PartnerName     string    `json:"partnerName"`
	PartnerImageURL *string   `json:"partnerImageUrl,omitempty"`
}
