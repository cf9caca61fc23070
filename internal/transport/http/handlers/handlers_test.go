package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/maumlab/maum/internal/domain"
	"github.com/maumlab/maum/internal/repository"
	"github.com/maumlab/maum/internal/service"
	"github.com/maumlab/maum/internal/transport/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Thin repository stubs: just enough state for the handler paths under
// test to reach the service's error returns.

type stubUserRepo struct {
	users    map[uuid.UUID]*domain.User
	profiles map[uuid.UUID]*domain.Profile
}

func (s *stubUserRepo) Create(context.Context, *domain.User) error { return nil }

func (s *stubUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	return s.users[id], nil
}

func (s *stubUserRepo) GetByProvider(context.Context, string, string) (*domain.User, error) {
	return nil, nil
}

func (s *stubUserRepo) GetProfile(_ context.Context, userID uuid.UUID) (*domain.Profile, error) {
	return s.profiles[userID], nil
}

func (s *stubUserRepo) GetPrimaryImageURL(context.Context, uuid.UUID) (*string, error) {
	return nil, nil
}

type stubChatRepo struct {
	room         *domain.ChatRoom
	participants []domain.ChatRoomParticipant
}

func (s *stubChatRepo) CreateRoom(context.Context, *domain.ChatRoom, []uuid.UUID) error { return nil }

func (s *stubChatRepo) GetRoomWithParticipants(_ context.Context, roomID uuid.UUID) (*domain.ChatRoom, error) {
	if s.room == nil || s.room.ID != roomID {
		return nil, nil
	}
	room := *s.room
	room.Participants = s.participants
	return &room, nil
}

func (s *stubChatRepo) FindActiveDirectRoom(context.Context, uuid.UUID, uuid.UUID) (*domain.ChatRoom, error) {
	if s.room == nil {
		return nil, nil
	}
	room := *s.room
	return &room, nil
}

func (s *stubChatRepo) GetParticipant(_ context.Context, roomID, userID uuid.UUID) (*domain.ChatRoomParticipant, error) {
	for _, p := range s.participants {
		if p.RoomID == roomID && p.UserID == userID {
			copied := p
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *stubChatRepo) ListRoomSummaries(context.Context, uuid.UUID) ([]domain.RoomSummary, error) {
	return nil, nil
}

func (s *stubChatRepo) IncrementUnread(context.Context, uuid.UUID, uuid.UUID) error { return nil }
func (s *stubChatRepo) DecrementUnread(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (s *stubChatRepo) SetSenderRead(context.Context, uuid.UUID, uuid.UUID, uuid.UUID, time.Time) error {
	return nil
}

func (s *stubChatRepo) SetReadState(context.Context, uuid.UUID, uuid.UUID, uuid.UUID, time.Time, int) error {
	return nil
}

func (s *stubChatRepo) ResetAllReadState(context.Context, uuid.UUID) error    { return nil }
func (s *stubChatRepo) ClearLastReadPointer(context.Context, uuid.UUID) error { return nil }

type stubMessageRepo struct{}

func (stubMessageRepo) Create(context.Context, *domain.ChatMessage) error { return nil }

func (stubMessageRepo) GetByID(context.Context, uuid.UUID) (*domain.ChatMessage, error) {
	return nil, nil
}

func (stubMessageRepo) ListByRoom(context.Context, uuid.UUID) ([]domain.ChatMessage, error) {
	return nil, nil
}

func (stubMessageRepo) ListUnread(context.Context, uuid.UUID, uuid.UUID, *uuid.UUID, *time.Time) ([]domain.ChatMessage, error) {
	return nil, nil
}

func (stubMessageRepo) MarkRead(context.Context, []uuid.UUID, time.Time) error { return nil }

func (stubMessageRepo) CountUnread(context.Context, uuid.UUID, uuid.UUID) (int, error) {
	return 0, nil
}

func (stubMessageRepo) DeleteByRoom(context.Context, uuid.UUID) (int, error) { return 0, nil }
func (stubMessageRepo) Delete(context.Context, uuid.UUID) error              { return nil }

type stubBlockRepo struct{}

func (stubBlockRepo) Exists(context.Context, uuid.UUID, uuid.UUID) (bool, error) { return false, nil }
func (stubBlockRepo) Upsert(context.Context, uuid.UUID, uuid.UUID) error         { return nil }

type stubMatchingRepo struct{}

func (stubMatchingRepo) FindCandidates(context.Context, repository.CandidateQuery) ([]repository.CandidateRow, error) {
	return nil, nil
}

func (stubMatchingRepo) GetHistory(context.Context, uuid.UUID, uuid.UUID) (*domain.MatchingHistory, error) {
	return nil, nil
}

func (stubMatchingRepo) UpsertHistory(context.Context, *domain.MatchingHistory) error { return nil }

func (stubMatchingRepo) CreateActionLog(context.Context, *domain.MatchingActionLog) error {
	return nil
}

func (stubMatchingRepo) CountActions(context.Context, uuid.UUID, string, bool) (int, error) {
	return 0, nil
}

func (stubMatchingRepo) CountOngoingChats(context.Context, uuid.UUID) (int, error) { return 0, nil }

func (stubMatchingRepo) ListActionUsers(context.Context, uuid.UUID, string, bool, int) ([]domain.ActionUser, error) {
	return nil, nil
}

type stubLocationRepo struct{}

func (stubLocationRepo) Create(context.Context, *domain.LocationArea) error { return nil }

func (stubLocationRepo) GetByID(context.Context, uuid.UUID, uuid.UUID) (*domain.LocationArea, error) {
	return nil, nil
}

func (stubLocationRepo) ListByUser(context.Context, uuid.UUID) ([]domain.LocationArea, error) {
	return nil, nil
}

func (stubLocationRepo) CountByUser(context.Context, uuid.UUID) (int, error)  { return 0, nil }
func (stubLocationRepo) Update(context.Context, *domain.LocationArea) error   { return nil }
func (stubLocationRepo) SetVerified(context.Context, uuid.UUID, time.Time) error { return nil }
func (stubLocationRepo) Delete(context.Context, uuid.UUID) error              { return nil }

func (stubLocationRepo) GetBestArea(context.Context, uuid.UUID) (*domain.LocationArea, error) {
	return nil, nil
}

type stubNotificationRepo struct{}

func (stubNotificationRepo) Create(context.Context, *domain.Notification) error { return nil }

func (stubNotificationRepo) List(context.Context, uuid.UUID, []string, int) ([]domain.Notification, error) {
	return nil, nil
}

func authedRequest(t *testing.T, method, target string, userID uuid.UUID, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	return req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, userID))
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func TestRecordActionUnknownTargetIsNotFound(t *testing.T) {
	users := &stubUserRepo{users: map[uuid.UUID]*domain.User{}}
	notifications := service.NewNotificationService(stubNotificationRepo{}, nil)
	matching := service.NewMatchingService(stubMatchingRepo{}, stubLocationRepo{}, users, stubBlockRepo{}, notifications)
	h := NewMatchingHandler(matching)

	req := authedRequest(t, http.MethodPost, "/api/v1/matching/actions", uuid.New(), map[string]any{
		"targetUserId": uuid.New(),
		"action":       domain.ActionLike,
	})
	rec := httptest.NewRecorder()
	h.RecordAction(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "USER_NOT_FOUND", errorCode(t, rec))
}

func TestOpenDirectRoomExpiredWindowSignalsUpgrade(t *testing.T) {
	caller := uuid.New()
	partner := uuid.New()
	users := &stubUserRepo{
		users: map[uuid.UUID]*domain.User{
			partner: {ID: partner, Status: domain.UserStatusActive},
		},
		profiles: map[uuid.UUID]*domain.Profile{
			partner: {UserID: partner, DisplayName: "partner"},
		},
	}

	started := time.Now().Add(-73 * time.Hour)
	expired := time.Now().Add(-time.Hour)
	room := &domain.ChatRoom{
		ID:        uuid.New(),
		RoomType:  domain.RoomTypeDirect,
		Status:    domain.RoomStatusActive,
		StartedAt: started,
		ExpiresAt: &expired,
		CreatedAt: started,
	}
	chatRepo := &stubChatRepo{
		room: room,
		participants: []domain.ChatRoomParticipant{
			{ID: uuid.New(), RoomID: room.ID, UserID: caller, JoinedAt: started},
			{ID: uuid.New(), RoomID: room.ID, UserID: partner, JoinedAt: started},
		},
	}

	notifications := service.NewNotificationService(stubNotificationRepo{}, nil)
	chat := service.NewChatService(chatRepo, stubMessageRepo{}, users, stubBlockRepo{}, notifications, 72)
	h := NewChatHandler(chat)

	req := authedRequest(t, http.MethodPost, "/api/v1/chat/rooms/direct", caller, map[string]any{
		"targetUserId":   partner,
		"initialMessage": "hi",
	})
	rec := httptest.NewRecorder()
	h.OpenDirectRoom(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "TIME_EXPIRED", errorCode(t, rec))
}
