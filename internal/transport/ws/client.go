package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/maumlab/maum/internal/service"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	sendBufSize  = 256
)

// Client represents a single WebSocket connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	chat   *service.ChatService
	userID uuid.UUID

	send chan []byte
	done chan struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn, chat *service.ChatService, userID uuid.UUID) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		chat:   chat,
		userID: userID,
		send:   make(chan []byte, sendBufSize),
		done:   make(chan struct{}),
	}
}

// ReadPump reads events from the WebSocket and dispatches them.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var event Event
		err := wsjson.Read(context.Background(), c.conn, &event)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Printf("ws: client %s disconnected", c.userID)
			} else {
				log.Printf("ws: read error from %s: %v", c.userID, err)
			}
			return
		}

		c.handleEvent(&event)
	}
}

// WritePump writes queued events to the WebSocket.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				log.Printf("ws: write error to %s: %v", c.userID, err)
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				log.Printf("ws: ping error to %s: %v", c.userID, err)
				return
			}

		case <-c.done:
			return
		}
	}
}

// handleEvent routes an incoming client event.
func (c *Client) handleEvent(event *Event) {
	switch event.Type {
	case EventTypeChatSend:
		var p ChatSendPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.RoomID == uuid.Nil {
			c.sendError("Invalid message")
			return
		}
		c.handleChatSend(p)

	case EventTypeChatTyping:
		var p ChatTypingPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.RoomID == uuid.Nil {
			return
		}
		c.handleTyping(p)

	case EventTypeChatRead:
		var p ChatReadPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			return
		}
		c.handleRead(p)

	default:
		c.sendError("unknown event type: " + event.Type)
	}
}

func (c *Client) handleChatSend(p ChatSendPayload) {
	msg, err := c.chat.SendMessage(context.Background(), c.userID, p.RoomID, p.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyContent):
			c.sendError("Invalid message")
		case errors.Is(err, service.ErrRoomNotFound):
			c.sendError("Unauthorized or room not found")
		case errors.Is(err, service.ErrRoomExpired):
			c.sendEvent(EventTypeChatExpired, ExpiredPayload{
				Message: "대화 시간이 만료되었습니다. 프리미엄으로 업그레이드하세요.",
			})
		default:
			log.Printf("ws: chat send error from %s: %v", c.userID, err)
			c.sendError("Failed to send message")
		}
		return
	}

	// The persisted message goes back to the sender too, so optimistic
	// client state can reconcile with the server-assigned id/timestamp.
	c.sendEvent(EventTypeChatSent, ChatSentPayload{Message: msg})
}

func (c *Client) handleTyping(p ChatTypingPayload) {
	partners, err := c.chat.ActivePartnerIDs(context.Background(), p.RoomID, c.userID)
	if err != nil {
		// Typing is ephemeral; a bad room is a silent no-op.
		return
	}

	evt, err := NewEvent(EventTypeChatTyping, TypingPayload{
		RoomID:   p.RoomID,
		UserID:   c.userID,
		IsTyping: p.IsTyping,
	})
	if err != nil {
		return
	}
	for _, partnerID := range partners {
		c.hub.SendToUser(partnerID, evt)
	}
}

func (c *Client) handleRead(p ChatReadPayload) {
	// Read receipts to the original senders are relayed by the chat
	// service through the hub notifier.
	if _, err := c.chat.MarkRead(context.Background(), c.userID, p.MessageID, p.RoomID); err != nil {
		log.Printf("ws: chat read error from %s: %v", c.userID, err)
	}
}

func (c *Client) sendEvent(eventType string, payload any) {
	evt, err := NewEvent(eventType, payload)
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendError(message string) {
	c.sendEvent(EventTypeError, ErrorPayload{Message: message})
}
