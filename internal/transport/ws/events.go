package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/maumlab/maum/internal/domain"
)

// Event types - Client → Server
const (
	EventTypeChatSend   = "chat:send"
	EventTypeChatTyping = "chat:typing"
	EventTypeChatRead   = "chat:read"
)

// Event types - Server → Client
const (
	EventTypeChatReceive  = "chat:receive"
	EventTypeChatSent     = "chat:sent"
	EventTypeChatExpired  = "chat:time:expired"
	EventTypeStatusUpdate = "user:status:update"
	EventTypeUsersCount   = "system:users:count"
	EventTypeError        = "error"
)

// Event is the base envelope for all WebSocket messages.
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// --- Client → Server payloads ---

type ChatSendPayload struct {
	RoomID  uuid.UUID `json:"roomId"`
	Content string    `json:"content"`
}

type ChatTypingPayload struct {
	RoomID   uuid.UUID `json:"roomId"`
	IsTyping bool      `json:"isTyping"`
}

type ChatReadPayload struct {
	MessageID *uuid.UUID `json:"messageId,omitempty"`
	RoomID    *uuid.UUID `json:"roomId,omitempty"`
}

// --- Server → Client payloads ---

type ChatSentPayload struct {
	Message *domain.ChatMessage `json:"message"`
}

type TypingPayload struct {
	RoomID   uuid.UUID `json:"roomId"`
	UserID   uuid.UUID `json:"userId"`
	IsTyping bool      `json:"isTyping"`
}

type ReadReceiptPayload struct {
	RoomID        uuid.UUID `json:"roomId"`
	UpToMessageID uuid.UUID `json:"upToMessageId"`
	UpToCreatedAt time.Time `json:"upToCreatedAt"`
	ReadAt        time.Time `json:"readAt"`
}

type StatusUpdatePayload struct {
	UserID uuid.UUID `json:"userId"`
	Status string    `json:"status"` // "online" | "offline"
}

type ExpiredPayload struct {
	Message string `json:"message"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
