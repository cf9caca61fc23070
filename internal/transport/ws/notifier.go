package ws

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/maumlab/maum/internal/domain"
)

// HubNotifier implements service.Notifier using the WebSocket Hub.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) RelayMessage(recipientID uuid.UUID, msg *domain.ChatMessage) {
	evt, err := NewEvent(EventTypeChatReceive, msg)
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.SendToUser(recipientID, evt)
}

func (n *HubNotifier) RelayRead(recipientID, roomID, upToMessageID uuid.UUID, upToCreatedAt, readAt time.Time) {
	evt, err := NewEvent(EventTypeChatRead, ReadReceiptPayload{
		RoomID:        roomID,
		UpToMessageID: upToMessageID,
		UpToCreatedAt: upToCreatedAt,
		ReadAt:        readAt,
	})
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.SendToUser(recipientID, evt)
}
