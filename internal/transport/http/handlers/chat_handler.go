package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/maumlab/maum/internal/service"
	"github.com/maumlab/maum/internal/transport/http/middleware"
)

type ChatHandler struct {
	chatService *service.ChatService
}

func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// OpenDirectRoom creates or reuses the 1:1 room with the target user.
func (h *ChatHandler) OpenDirectRoom(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input struct {
		TargetUserID   uuid.UUID `json:"targetUserId"`
		InitialMessage string    `json:"initialMessage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.TargetUserID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	info, err := h.chatService.OpenDirectRoom(r.Context(), userID, input.TargetUserID, input.InitialMessage)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCannotChatSelf):
			writeError(w, http.StatusBadRequest, "INVALID_TARGET", "Cannot open a chat room with yourself")
		case errors.Is(err, service.ErrTargetNotFound):
			writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "Target user not found")
		case errors.Is(err, service.ErrBlocked):
			writeError(w, http.StatusConflict, "BLOCKED", "Cannot chat with this user")
		case errors.Is(err, service.ErrRoomExpired):
			writeError(w, http.StatusBadRequest, "TIME_EXPIRED", "Conversation time window has expired")
		default:
			log.Printf("ERROR open direct room: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, info)
}

func (h *ChatHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	rooms, err := h.chatService.ListRooms(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR list rooms: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"rooms": rooms})
}

func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	roomID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid room ID")
		return
	}

	messages, err := h.chatService.ListMessages(r.Context(), userID, roomID)
	if err != nil {
		if errors.Is(err, service.ErrRoomNotFound) {
			writeError(w, http.StatusNotFound, "ROOM_NOT_FOUND", "Chat room not found")
		} else {
			log.Printf("ERROR list messages: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

// MarkRead marks messages in a room as read, optionally only up to one
// referenced message.
func (h *ChatHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	roomID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid room ID")
		return
	}

	var input struct {
		UpToMessageID *uuid.UUID `json:"upToMessageId"`
	}
	if r.Body != nil {
		// Body is optional; ignore decode errors on an empty body.
		_ = json.NewDecoder(r.Body).Decode(&input)
	}

	result, err := h.chatService.MarkRead(r.Context(), userID, input.UpToMessageID, &roomID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoomNotFound):
			writeError(w, http.StatusNotFound, "ROOM_NOT_FOUND", "Chat room not found")
		case errors.Is(err, service.ErrMessageNotFound):
			writeError(w, http.StatusNotFound, "MESSAGE_NOT_FOUND", "Message not found")
		default:
			log.Printf("ERROR mark read: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"roomId":      result.RoomID,
		"readAt":      result.ReadAt,
		"unreadCount": result.UnreadCount,
	})
}

func (h *ChatHandler) DeleteAllMessages(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	roomID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid room ID")
		return
	}

	deleted, err := h.chatService.DeleteAllMessages(r.Context(), userID, roomID)
	if err != nil {
		if errors.Is(err, service.ErrRoomNotFound) {
			writeError(w, http.StatusNotFound, "ROOM_NOT_FOUND", "Chat room not found")
		} else {
			log.Printf("ERROR delete all messages: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"deletedCount": deleted})
}

func (h *ChatHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	messageID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid message ID")
		return
	}

	if err := h.chatService.DeleteMessage(r.Context(), userID, messageID); err != nil {
		switch {
		case errors.Is(err, service.ErrMessageNotFound):
			writeError(w, http.StatusNotFound, "MESSAGE_NOT_FOUND", "Message not found")
		case errors.Is(err, service.ErrNotSender):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Only the sender can delete a message")
		default:
			log.Printf("ERROR delete message: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}
