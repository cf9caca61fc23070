package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationChatNewMessage = "CHAT_NEW_MESSAGE"
	NotificationMatchLike      = "MATCH_LIKE"
	NotificationMatchSuperLike = "MATCH_SUPER_LIKE"
)

func ValidNotificationType(t string) bool {
	switch t {
	case NotificationChatNewMessage, NotificationMatchLike, NotificationMatchSuperLike:
		return true
	}
	return false
}

// LocalizedText carries the per-locale copies the mobile client picks from.
type LocalizedText struct {
	Ko string `json:"ko"`
	Ja string `json:"ja"`
	En string `json:"en"`
}

type Notification struct {
	ID               uuid.UUID     `json:"id"`
	UserID           uuid.UUID     `json:"user_id"`
	Type             string        `json:"type"`
	Title            LocalizedText `json:"title"`
	Message          LocalizedText `json:"message"`
	RelatedUserID    *uuid.UUID    `json:"related_user_id,omitempty"`
	RelatedMessageID *uuid.UUID    `json:"related_message_id,omitempty"`
	RelatedMatchID   *uuid.UUID    `json:"related_matching_id,omitempty"`
	IsPushSent       bool          `json:"is_push_sent"`
	IsActionable     bool          `json:"is_actionable"`
	ActionURL        *string       `json:"action_url,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
}
