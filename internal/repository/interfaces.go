package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/maumlab/maum/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByProvider(ctx context.Context, provider, providerUserID string) (*domain.User, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
	GetPrimaryImageURL(ctx context.Context, userID uuid.UUID) (*string, error)
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *domain.RefreshToken) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RefreshToken, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ChatRepository interface {
	// CreateRoom inserts the room and one participant row per user in a
	// single transaction.
	CreateRoom(ctx context.Context, room *domain.ChatRoom, userIDs []uuid.UUID) error
	GetRoomWithParticipants(ctx context.Context, roomID uuid.UUID) (*domain.ChatRoom, error)
	FindActiveDirectRoom(ctx context.Context, userA, userB uuid.UUID) (*domain.ChatRoom, error)
	GetParticipant(ctx context.Context, roomID, userID uuid.UUID) (*domain.ChatRoomParticipant, error)
	ListRoomSummaries(ctx context.Context, userID uuid.UUID) ([]domain.RoomSummary, error)

	IncrementUnread(ctx context.Context, roomID, excludeUserID uuid.UUID) error
	DecrementUnread(ctx context.Context, roomID, excludeUserID uuid.UUID) error
	SetSenderRead(ctx context.Context, roomID, senderID, messageID uuid.UUID, at time.Time) error
	SetReadState(ctx context.Context, roomID, userID, lastReadMessageID uuid.UUID, at time.Time, unreadCount int) error
	ResetAllReadState(ctx context.Context, roomID uuid.UUID) error
	ClearLastReadPointer(ctx context.Context, messageID uuid.UUID) error
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.ChatMessage) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ChatMessage, error)
	ListByRoom(ctx context.Context, roomID uuid.UUID) ([]domain.ChatMessage, error)
	// ListUnread returns unread messages in the room not sent by reader,
	// optionally restricted to one sender and to createdAt <= cutoff,
	// ordered by createdAt ascending.
	ListUnread(ctx context.Context, roomID, reader uuid.UUID, sender *uuid.UUID, cutoff *time.Time) ([]domain.ChatMessage, error)
	MarkRead(ctx context.Context, ids []uuid.UUID, at time.Time) error
	CountUnread(ctx context.Context, roomID, notSender uuid.UUID) (int, error)
	DeleteByRoom(ctx context.Context, roomID uuid.UUID) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type LocationRepository interface {
	Create(ctx context.Context, area *domain.LocationArea) error
	GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.LocationArea, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.LocationArea, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
	Update(ctx context.Context, area *domain.LocationArea) error
	SetVerified(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	// GetBestArea resolves the user's discovery anchor: primary first,
	// then most recently verified, then most recently created.
	GetBestArea(ctx context.Context, userID uuid.UUID) (*domain.LocationArea, error)
}

type BlockRepository interface {
	// Exists reports a block edge in either direction between two users.
	Exists(ctx context.Context, userA, userB uuid.UUID) (bool, error)
	Upsert(ctx context.Context, userID, blockedUserID uuid.UUID) error
}

// CandidateQuery parameterizes discovery. MaxDistanceMeters == 0 selects
// the unfiltered branch.
type CandidateQuery struct {
	UserID            uuid.UUID
	Gender            *string
	Latitude          float64
	Longitude         float64
	MaxDistanceMeters int
	VerifiedAfter     time.Time
	Limit             int
}

// CandidateRow is a raw discovery result. DistanceMeters is nil on the
// unfiltered branch.
type CandidateRow struct {
	UserID          uuid.UUID
	DisplayName     string
	Age             *int
	Height          *int
	Occupation      *string
	Education       *string
	Bio             *string
	LocationAddress *string
	DistanceMeters  *float64
	ImageURL        *string
}

type MatchingRepository interface {
	FindCandidates(ctx context.Context, q CandidateQuery) ([]CandidateRow, error)
	GetHistory(ctx context.Context, userID, targetUserID uuid.UUID) (*domain.MatchingHistory, error)
	UpsertHistory(ctx context.Context, h *domain.MatchingHistory) error
	CreateActionLog(ctx context.Context, entry *domain.MatchingActionLog) error
	CountActions(ctx context.Context, userID uuid.UUID, action string, received bool) (int, error)
	CountOngoingChats(ctx context.Context, userID uuid.UUID) (int, error)
	ListActionUsers(ctx context.Context, userID uuid.UUID, action string, received bool, limit int) ([]domain.ActionUser, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	List(ctx context.Context, userID uuid.UUID, types []string, limit int) ([]domain.Notification, error)
}
