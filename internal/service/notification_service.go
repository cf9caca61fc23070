package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/maumlab/maum/internal/domain"
	"github.com/maumlab/maum/internal/queue"
	"github.com/maumlab/maum/internal/repository"
)

var ErrInvalidNotificationType = errors.New("invalid notification type")

const previewMaxRunes = 80

// NotificationService writes notification records and hands each one off
// to the queue for downstream push delivery. Push itself is out of scope.
type NotificationService struct {
	repo     repository.NotificationRepository
	producer *queue.Producer
}

func NewNotificationService(repo repository.NotificationRepository, producer *queue.Producer) *NotificationService {
	return &NotificationService{repo: repo, producer: producer}
}

func (s *NotificationService) NotifyNewMessage(ctx context.Context, recipientID, senderID uuid.UUID, msg *domain.ChatMessage) error {
	preview := msg.Content
	if runes := []rune(preview); len(runes) > previewMaxRunes {
		preview = string(runes[:previewMaxRunes]) + "…"
	}

	actionURL := fmt.Sprintf("/chat/rooms/%s", msg.RoomID)
	n := &domain.Notification{
		ID:     uuid.New(),
		UserID: recipientID,
		Type:   domain.NotificationChatNewMessage,
		Title: domain.LocalizedText{
			Ko: "새 메시지",
			Ja: "新しいメッセージ",
			En: "New message",
		},
		Message: domain.LocalizedText{
			Ko: preview,
			Ja: preview,
			En: preview,
		},
		RelatedUserID:    &senderID,
		RelatedMessageID: &msg.ID,
		IsActionable:     true,
		ActionURL:        &actionURL,
		CreatedAt:        time.Now(),
	}

	return s.create(ctx, n)
}

func (s *NotificationService) NotifyMatchAction(ctx context.Context, targetUserID, actorID uuid.UUID, action string, matchingID uuid.UUID) error {
	var n *domain.Notification
	switch action {
	case domain.ActionLike:
		actionURL := "/matching/actions?action=LIKE&direction=received"
		n = &domain.Notification{
			Type: domain.NotificationMatchLike,
			Title: domain.LocalizedText{
				Ko: "새 관심",
				Ja: "新しいいいね！",
				En: "New Like",
			},
			Message: domain.LocalizedText{
				Ko: "누군가 회원님에게 관심을 보냈어요.",
				Ja: "誰かがあなたにいいね！を送りました。",
				En: "Someone liked you.",
			},
			ActionURL: &actionURL,
		}
	case domain.ActionSuperLike:
		actionURL := "/matching/actions?action=SUPER_LIKE&direction=received"
		n = &domain.Notification{
			Type: domain.NotificationMatchSuperLike,
			Title: domain.LocalizedText{
				Ko: "새 부스트",
				Ja: "新しいスーパーいいね！",
				En: "New Super Like",
			},
			Message: domain.LocalizedText{
				Ko: "누군가 회원님에게 부스트를 보냈어요.",
				Ja: "誰かがあなたにスーパーいいね！を送りました。",
				En: "Someone sent you a super like.",
			},
			ActionURL: &actionURL,
		}
	default:
		return nil
	}

	n.ID = uuid.New()
	n.UserID = targetUserID
	n.RelatedUserID = &actorID
	n.RelatedMatchID = &matchingID
	n.IsActionable = true
	n.CreatedAt = time.Now()

	return s.create(ctx, n)
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, types []string, limit int) ([]domain.Notification, error) {
	for _, t := range types {
		if !domain.ValidNotificationType(t) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidNotificationType, t)
		}
	}

	if limit <= 0 {
		limit = 50
	}
	limit = clampInt(limit, 1, 200)

	notifications, err := s.repo.List(ctx, userID, types, limit)
	if err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []domain.Notification{}
	}
	return notifications, nil
}

func (s *NotificationService) create(ctx context.Context, n *domain.Notification) error {
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}

	// Queue hand-off is best effort.
	payload, err := json.Marshal(n)
	if err != nil {
		return nil
	}
	if err := s.producer.PublishMessage([]byte(n.UserID.String()), payload); err != nil {
		log.Printf("notification publish: %v", err)
	}
	return nil
}
