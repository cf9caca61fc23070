package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/maumlab/maum/internal/domain"
	"github.com/maumlab/maum/internal/repository"
)

var (
	ErrRoomNotFound    = errors.New("chat room not found or you are not a participant")
	ErrMessageNotFound = errors.New("message not found")
	ErrNotSender       = errors.New("only the message sender can perform this action")
	ErrEmptyContent    = errors.New("message content is required")
	ErrRoomExpired     = errors.New("conversation time window has expired")
	ErrBlocked         = errors.New("interaction between blocked users")
	ErrTargetNotFound  = errors.New("target user not found")
	ErrCannotChatSelf  = errors.New("cannot open a chat room with yourself")
)

// Notifier delivers realtime events to a specific connected user. A nil
// receiver is a no-op so the service works without a realtime layer attached.
type Notifier interface {
	RelayMessage(recipientID uuid.UUID, msg *domain.ChatMessage)
	RelayRead(recipientID, roomID, upToMessageID uuid.UUID, upToCreatedAt, readAt time.Time)
}

// ChatService owns all chat persistence and read-state bookkeeping. Both
// the REST handlers and the realtime relay call through here, so the
// unread-counter rules hold identically on either path.
type ChatService struct {
	chatRepo      repository.ChatRepository
	messageRepo   repository.MessageRepository
	userRepo      repository.UserRepository
	blockRepo     repository.BlockRepository
	notifications *NotificationService
	notifier      Notifier

	chatWindow time.Duration
}

func NewChatService(
	chatRepo repository.ChatRepository,
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	blockRepo repository.BlockRepository,
	notifications *NotificationService,
	chatWindowHours int,
) *ChatService {
	return &ChatService{
		chatRepo:      chatRepo,
		messageRepo:   messageRepo,
		userRepo:      userRepo,
		blockRepo:     blockRepo,
		notifications: notifications,
		chatWindow:    time.Duration(chatWindowHours) * time.Hour,
	}
}

func (s *ChatService) SetNotifier(n Notifier) {
	s.notifier = n
}

// OpenDirectRoom finds or creates the active direct room between two users.
// The pair lookup runs before create; the partial unique index on direct
// rooms backstops concurrent first-contact requests, in which case the
// loser re-reads the winner's room.
func (s *ChatService) OpenDirectRoom(ctx context.Context, userID, targetUserID uuid.UUID, initialMessage string) (*domain.DirectRoomInfo, error) {
	if userID == targetUserID {
		return nil, ErrCannotChatSelf
	}

	target, err := s.userRepo.GetByID(ctx, targetUserID)
	if err != nil {
		return nil, err
	}
	if target == nil || target.DeletedAt != nil {
		return nil, ErrTargetNotFound
	}

	blocked, err := s.blockRepo.Exists(ctx, userID, targetUserID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, ErrBlocked
	}

	room, err := s.chatRepo.FindActiveDirectRoom(ctx, userID, targetUserID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		now := time.Now()
		expiresAt := now.Add(s.chatWindow)
		room = &domain.ChatRoom{
			ID:        uuid.New(),
			RoomType:  domain.RoomTypeDirect,
			Status:    domain.RoomStatusActive,
			StartedAt: now,
			ExpiresAt: &expiresAt,
			IsPremium: false,
			CreatedAt: now,
		}
		if err := s.chatRepo.CreateRoom(ctx, room, []uuid.UUID{userID, targetUserID}); err != nil {
			// Lost the first-contact race: the unique index rejected us,
			// so the other side's room must exist now.
			existing, lookupErr := s.chatRepo.FindActiveDirectRoom(ctx, userID, targetUserID)
			if lookupErr != nil || existing == nil {
				return nil, fmt.Errorf("creating direct room: %w", err)
			}
			room = existing
		}
	}

	if msg := strings.TrimSpace(initialMessage); msg != "" {
		if _, err := s.SendMessage(ctx, userID, room.ID, msg); err != nil {
			return nil, err
		}
	}

	info := &domain.DirectRoomInfo{
		RoomID:        room.ID,
		PartnerUserID: targetUserID,
	}
	if profile, err := s.userRepo.GetProfile(ctx, targetUserID); err != nil {
		return nil, err
	} else if profile != nil {
		info.PartnerName = profile.DisplayName
	}
	if imageURL, err := s.userRepo.GetPrimaryImageURL(ctx, targetUserID); err != nil {
		return nil, err
	} else {
		info.PartnerImageURL = imageURL
	}

	return info, nil
}

// SendMessage runs the full delivery pipeline: participation check, expiry
// window, persist, counters, notification, relay. Sending implies having
// read everything up to your own message, so the sender's counter resets.
func (s *ChatService) SendMessage(ctx context.Context, senderID, roomID uuid.UUID, content string) (*domain.ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	room, _, err := s.roomForParticipant(ctx, roomID, senderID)
	if err != nil {
		return nil, err
	}

	if room.Expired(time.Now()) {
		return nil, ErrRoomExpired
	}

	now := time.Now()
	msg := &domain.ChatMessage{
		ID:          uuid.New(),
		RoomID:      roomID,
		SenderID:    senderID,
		Content:     content,
		MessageType: domain.MessageTypeText,
		CreatedAt:   now,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("creating chat message: %w", err)
	}

	if err := s.chatRepo.IncrementUnread(ctx, roomID, senderID); err != nil {
		return nil, fmt.Errorf("incrementing unread counters: %w", err)
	}
	if err := s.chatRepo.SetSenderRead(ctx, roomID, senderID, msg.ID, now); err != nil {
		return nil, fmt.Errorf("resetting sender read state: %w", err)
	}

	for _, p := range room.Participants {
		if p.UserID == senderID || !p.Active() {
			continue
		}
		// Notification writes are fire-and-forget side effects; the
		// message is already authoritative at this point.
		if err := s.notifications.NotifyNewMessage(ctx, p.UserID, senderID, msg); err != nil {
			log.Printf("ERROR chat notification for %s: %v", p.UserID, err)
		}
		if s.notifier != nil {
			s.notifier.RelayMessage(p.UserID, msg)
		}
	}

	return msg, nil
}

// ActivePartnerIDs verifies participation and returns the other active
// participants, for ephemeral relays that persist nothing.
func (s *ChatService) ActivePartnerIDs(ctx context.Context, roomID, userID uuid.UUID) ([]uuid.UUID, error) {
	room, _, err := s.roomForParticipant(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}

	var partners []uuid.UUID
	for _, p := range room.Participants {
		if p.UserID != userID && p.Active() {
			partners = append(partners, p.UserID)
		}
	}
	return partners, nil
}

// ReadReceipt is the per-sender outcome of a MarkRead call: the latest of
// that sender's messages the reader just consumed.
type ReadReceipt struct {
	SenderID  uuid.UUID
	MessageID uuid.UUID
	CreatedAt time.Time
}

type ReadResult struct {
	RoomID      uuid.UUID
	ReadAt      time.Time
	UnreadCount int
	Receipts    []ReadReceipt
}

// MarkRead marks unread messages in a room as read. When messageID is
// given, the set is restricted to that message's sender and to messages no
// newer than it, so reading "up to" one sender's message never consumes a
// different sender's later messages. The reader's counter is recomputed as
// an exact count rather than decremented.
func (s *ChatService) MarkRead(ctx context.Context, userID uuid.UUID, messageID, roomID *uuid.UUID) (*ReadResult, error) {
	var referenced *domain.ChatMessage
	if messageID != nil {
		var err error
		referenced, err = s.messageRepo.GetByID(ctx, *messageID)
		if err != nil {
			return nil, err
		}
	}

	var resolvedRoomID uuid.UUID
	switch {
	case roomID != nil:
		resolvedRoomID = *roomID
	case referenced != nil:
		resolvedRoomID = referenced.RoomID
	default:
		return nil, ErrMessageNotFound
	}

	participant, err := s.chatRepo.GetParticipant(ctx, resolvedRoomID, userID)
	if err != nil {
		return nil, err
	}
	if participant == nil || !participant.Active() {
		return nil, ErrRoomNotFound
	}

	var senderFilter *uuid.UUID
	var cutoff *time.Time
	if referenced != nil {
		if referenced.SenderID != userID {
			senderFilter = &referenced.SenderID
		}
		cutoff = &referenced.CreatedAt
	}

	unread, err := s.messageRepo.ListUnread(ctx, resolvedRoomID, userID, senderFilter, cutoff)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	result := &ReadResult{RoomID: resolvedRoomID, ReadAt: now, UnreadCount: participant.UnreadCount}
	if len(unread) == 0 {
		return result, nil
	}

	ids := make([]uuid.UUID, len(unread))
	for i, m := range unread {
		ids[i] = m.ID
	}
	if err := s.messageRepo.MarkRead(ctx, ids, now); err != nil {
		return nil, fmt.Errorf("marking messages read: %w", err)
	}

	remaining, err := s.messageRepo.CountUnread(ctx, resolvedRoomID, userID)
	if err != nil {
		return nil, err
	}

	latest := unread[len(unread)-1]
	if err := s.chatRepo.SetReadState(ctx, resolvedRoomID, userID, latest.ID, now, remaining); err != nil {
		return nil, fmt.Errorf("updating read state: %w", err)
	}
	result.UnreadCount = remaining

	// One receipt per original sender, carrying their latest now-read
	// message. Keeps group rooms from cross-notifying unrelated senders.
	latestBySender := make(map[uuid.UUID]domain.ChatMessage)
	for _, m := range unread {
		if prev, ok := latestBySender[m.SenderID]; !ok || prev.CreatedAt.Before(m.CreatedAt) {
			latestBySender[m.SenderID] = m
		}
	}
	for senderID, m := range latestBySender {
		result.Receipts = append(result.Receipts, ReadReceipt{
			SenderID:  senderID,
			MessageID: m.ID,
			CreatedAt: m.CreatedAt,
		})
		if s.notifier != nil {
			s.notifier.RelayRead(senderID, resolvedRoomID, m.ID, m.CreatedAt, now)
		}
	}

	return result, nil
}

// DeleteAllMessages clears the entire room history for both sides and
// resets every active participant's read state.
func (s *ChatService) DeleteAllMessages(ctx context.Context, userID, roomID uuid.UUID) (int, error) {
	if _, _, err := s.roomForParticipant(ctx, roomID, userID); err != nil {
		return 0, err
	}

	deleted, err := s.messageRepo.DeleteByRoom(ctx, roomID)
	if err != nil {
		return 0, fmt.Errorf("deleting room messages: %w", err)
	}
	if err := s.chatRepo.ResetAllReadState(ctx, roomID); err != nil {
		return 0, fmt.Errorf("resetting read state: %w", err)
	}
	return deleted, nil
}

// DeleteMessage removes a single message (sender only). An unread message
// decrements the other participants' counters by one; this is the only
// path that decrements instead of recomputing, since exactly one unread
// message disappeared.
func (s *ChatService) DeleteMessage(ctx context.Context, userID, messageID uuid.UUID) error {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg == nil {
		return ErrMessageNotFound
	}

	participant, err := s.chatRepo.GetParticipant(ctx, msg.RoomID, userID)
	if err != nil {
		return err
	}
	if participant == nil || !participant.Active() {
		return ErrRoomNotFound
	}
	if msg.SenderID != userID {
		return ErrNotSender
	}

	if err := s.messageRepo.Delete(ctx, messageID); err != nil {
		return fmt.Errorf("deleting message: %w", err)
	}
	if !msg.IsRead {
		if err := s.chatRepo.DecrementUnread(ctx, msg.RoomID, msg.SenderID); err != nil {
			return fmt.Errorf("decrementing unread counters: %w", err)
		}
	}
	// Don't leave anyone's last-read pointer dangling at the deleted row.
	if err := s.chatRepo.ClearLastReadPointer(ctx, messageID); err != nil {
		return fmt.Errorf("clearing last-read pointers: %w", err)
	}
	return nil
}

// ListRooms returns the caller's rooms sorted by last activity descending.
func (s *ChatService) ListRooms(ctx context.Context, userID uuid.UUID) ([]domain.RoomSummary, error) {
	rooms, err := s.chatRepo.ListRoomSummaries(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rooms == nil {
		rooms = []domain.RoomSummary{}
	}
	return rooms, nil
}

// ListMessages returns the full ordered history of a room.
func (s *ChatService) ListMessages(ctx context.Context, userID, roomID uuid.UUID) ([]domain.ChatMessage, error) {
	if _, _, err := s.roomForParticipant(ctx, roomID, userID); err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.ChatMessage{}
	}
	return messages, nil
}

func (s *ChatService) roomForParticipant(ctx context.Context, roomID, userID uuid.UUID) (*domain.ChatRoom, *domain.ChatRoomParticipant, error) {
	room, err := s.chatRepo.GetRoomWithParticipants(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}
	if room == nil {
		return nil, nil, ErrRoomNotFound
	}
	for i := range room.Participants {
		p := &room.Participants[i]
		if p.UserID == userID && p.Active() {
			return room, p, nil
		}
	}
	return nil, nil, ErrRoomNotFound
}
