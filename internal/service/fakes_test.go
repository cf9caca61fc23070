package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/maumlab/maum/internal/domain"
	"github.com/maumlab/maum/internal/repository"
)

// In-memory repository fakes. They keep just enough behavior for the
// services to run their pipelines end to end.

type memUserRepo struct {
	users    map[uuid.UUID]*domain.User
	profiles map[uuid.UUID]*domain.Profile
	images   map[uuid.UUID]string
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		users:    make(map[uuid.UUID]*domain.User),
		profiles: make(map[uuid.UUID]*domain.Profile),
		images:   make(map[uuid.UUID]string),
	}
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	u := *user
	r.users[user.ID] = &u
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (r *memUserRepo) GetByProvider(_ context.Context, provider, providerUserID string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Provider == provider && u.ProviderUserID == providerUserID {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) GetProfile(_ context.Context, userID uuid.UUID) (*domain.Profile, error) {
	p, ok := r.profiles[userID]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (r *memUserRepo) GetPrimaryImageURL(_ context.Context, userID uuid.UUID) (*string, error) {
	url, ok := r.images[userID]
	if !ok {
		return nil, nil
	}
	return &url, nil
}

type memTokenRepo struct {
	tokens map[uuid.UUID]*domain.RefreshToken
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{tokens: make(map[uuid.UUID]*domain.RefreshToken)}
}

func (r *memTokenRepo) Create(_ context.Context, token *domain.RefreshToken) error {
	t := *token
	r.tokens[token.ID] = &t
	return nil
}

func (r *memTokenRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.RefreshToken, error) {
	t, ok := r.tokens[id]
	if !ok {
		return nil, nil
	}
	copied := *t
	return &copied, nil
}

func (r *memTokenRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.tokens, id)
	return nil
}

type memChatRepo struct {
	rooms        map[uuid.UUID]*domain.ChatRoom
	participants map[uuid.UUID][]*domain.ChatRoomParticipant

	// When createErr is set, CreateRoom fails once and raceRoom (the
	// concurrent winner's room) becomes visible, as if another request
	// won the unique-index race.
	createErr error
	raceRoom  *domain.ChatRoom
	raceUsers []uuid.UUID
}

func newMemChatRepo() *memChatRepo {
	return &memChatRepo{
		rooms:        make(map[uuid.UUID]*domain.ChatRoom),
		participants: make(map[uuid.UUID][]*domain.ChatRoomParticipant),
	}
}

func (r *memChatRepo) CreateRoom(_ context.Context, room *domain.ChatRoom, userIDs []uuid.UUID) error {
	if r.createErr != nil {
		err := r.createErr
		r.createErr = nil
		if r.raceRoom != nil {
			_ = r.CreateRoom(context.Background(), r.raceRoom, r.raceUsers)
		}
		return err
	}
	copied := *room
	copied.Participants = nil
	r.rooms[room.ID] = &copied
	for _, userID := range userIDs {
		r.participants[room.ID] = append(r.participants[room.ID], &domain.ChatRoomParticipant{
			ID:       uuid.New(),
			RoomID:   room.ID,
			UserID:   userID,
			Role:     "MEMBER",
			JoinedAt: room.CreatedAt,
		})
	}
	return nil
}

func (r *memChatRepo) GetRoomWithParticipants(_ context.Context, roomID uuid.UUID) (*domain.ChatRoom, error) {
	room, ok := r.rooms[roomID]
	if !ok {
		return nil, nil
	}
	copied := *room
	for _, p := range r.participants[roomID] {
		copied.Participants = append(copied.Participants, *p)
	}
	return &copied, nil
}

func (r *memChatRepo) FindActiveDirectRoom(_ context.Context, userA, userB uuid.UUID) (*domain.ChatRoom, error) {
	for id, room := range r.rooms {
		if room.RoomType != domain.RoomTypeDirect || room.Status != domain.RoomStatusActive {
			continue
		}
		var foundA, foundB bool
		for _, p := range r.participants[id] {
			if p.UserID == userA {
				foundA = true
			}
			if p.UserID == userB {
				foundB = true
			}
		}
		if foundA && foundB {
			copied := *room
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memChatRepo) GetParticipant(_ context.Context, roomID, userID uuid.UUID) (*domain.ChatRoomParticipant, error) {
	for _, p := range r.participants[roomID] {
		if p.UserID == userID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memChatRepo) ListRoomSummaries(_ context.Context, userID uuid.UUID) ([]domain.RoomSummary, error) {
	var summaries []domain.RoomSummary
	for id, room := range r.rooms {
		for _, p := range r.participants[id] {
			if p.UserID == userID && p.LeftAt == nil {
				summaries = append(summaries, domain.RoomSummary{
					ID:          room.ID,
					RoomType:    room.RoomType,
					Status:      room.Status,
					CreatedAt:   room.CreatedAt,
					UnreadCount: p.UnreadCount,
				})
			}
		}
	}
	return summaries, nil
}

func (r *memChatRepo) IncrementUnread(_ context.Context, roomID, excludeUserID uuid.UUID) error {
	for _, p := range r.participants[roomID] {
		if p.UserID != excludeUserID && p.LeftAt == nil {
			p.UnreadCount++
		}
	}
	return nil
}

func (r *memChatRepo) DecrementUnread(_ context.Context, roomID, excludeUserID uuid.UUID) error {
	for _, p := range r.participants[roomID] {
		if p.UserID != excludeUserID && p.LeftAt == nil && p.UnreadCount > 0 {
			p.UnreadCount--
		}
	}
	return nil
}

func (r *memChatRepo) SetSenderRead(_ context.Context, roomID, senderID, messageID uuid.UUID, at time.Time) error {
	for _, p := range r.participants[roomID] {
		if p.UserID == senderID && p.LeftAt == nil {
			id := messageID
			t := at
			p.LastReadMessageID = &id
			p.LastReadAt = &t
			p.UnreadCount = 0
		}
	}
	return nil
}

func (r *memChatRepo) SetReadState(_ context.Context, roomID, userID, lastReadMessageID uuid.UUID, at time.Time, unreadCount int) error {
	for _, p := range r.participants[roomID] {
		if p.UserID == userID && p.LeftAt == nil {
			id := lastReadMessageID
			t := at
			p.LastReadMessageID = &id
			p.LastReadAt = &t
			p.UnreadCount = unreadCount
		}
	}
	return nil
}

func (r *memChatRepo) ResetAllReadState(_ context.Context, roomID uuid.UUID) error {
	for _, p := range r.participants[roomID] {
		if p.LeftAt == nil {
			p.UnreadCount = 0
			p.LastReadMessageID = nil
		}
	}
	return nil
}

func (r *memChatRepo) ClearLastReadPointer(_ context.Context, messageID uuid.UUID) error {
	for _, participants := range r.participants {
		for _, p := range participants {
			if p.LastReadMessageID != nil && *p.LastReadMessageID == messageID {
				p.LastReadMessageID = nil
			}
		}
	}
	return nil
}

type memMessageRepo struct {
	messages []*domain.ChatMessage
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{}
}

func (r *memMessageRepo) Create(_ context.Context, msg *domain.ChatMessage) error {
	copied := *msg
	r.messages = append(r.messages, &copied)
	return nil
}

func (r *memMessageRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.ChatMessage, error) {
	for _, m := range r.messages {
		if m.ID == id {
			copied := *m
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memMessageRepo) ListByRoom(_ context.Context, roomID uuid.UUID) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	for _, m := range r.messages {
		if m.RoomID == roomID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memMessageRepo) ListUnread(_ context.Context, roomID, reader uuid.UUID, sender *uuid.UUID, cutoff *time.Time) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	for _, m := range r.messages {
		if m.RoomID != roomID || m.IsRead {
			continue
		}
		if sender != nil {
			if m.SenderID != *sender {
				continue
			}
		} else if m.SenderID == reader {
			continue
		}
		if cutoff != nil && m.CreatedAt.After(*cutoff) {
			continue
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memMessageRepo) MarkRead(_ context.Context, ids []uuid.UUID, at time.Time) error {
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	for _, m := range r.messages {
		if set[m.ID] {
			m.IsRead = true
			t := at
			m.ReadAt = &t
		}
	}
	return nil
}

func (r *memMessageRepo) CountUnread(_ context.Context, roomID, notSender uuid.UUID) (int, error) {
	count := 0
	for _, m := range r.messages {
		if m.RoomID == roomID && !m.IsRead && m.SenderID != notSender {
			count++
		}
	}
	return count, nil
}

func (r *memMessageRepo) DeleteByRoom(_ context.Context, roomID uuid.UUID) (int, error) {
	var kept []*domain.ChatMessage
	deleted := 0
	for _, m := range r.messages {
		if m.RoomID == roomID {
			deleted++
			continue
		}
		kept = append(kept, m)
	}
	r.messages = kept
	return deleted, nil
}

func (r *memMessageRepo) Delete(_ context.Context, id uuid.UUID) error {
	var kept []*domain.ChatMessage
	for _, m := range r.messages {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	r.messages = kept
	return nil
}

type memBlockRepo struct {
	blocks map[[2]uuid.UUID]bool
}

func newMemBlockRepo() *memBlockRepo {
	return &memBlockRepo{blocks: make(map[[2]uuid.UUID]bool)}
}

func (r *memBlockRepo) Exists(_ context.Context, userA, userB uuid.UUID) (bool, error) {
	return r.blocks[[2]uuid.UUID{userA, userB}] || r.blocks[[2]uuid.UUID{userB, userA}], nil
}

func (r *memBlockRepo) Upsert(_ context.Context, userID, blockedUserID uuid.UUID) error {
	r.blocks[[2]uuid.UUID{userID, blockedUserID}] = true
	return nil
}

type memLocationRepo struct {
	areas map[uuid.UUID]*domain.LocationArea
}

func newMemLocationRepo() *memLocationRepo {
	return &memLocationRepo{areas: make(map[uuid.UUID]*domain.LocationArea)}
}

func (r *memLocationRepo) Create(_ context.Context, area *domain.LocationArea) error {
	copied := *area
	r.areas[area.ID] = &copied
	return nil
}

func (r *memLocationRepo) GetByID(_ context.Context, id, userID uuid.UUID) (*domain.LocationArea, error) {
	a, ok := r.areas[id]
	if !ok || a.UserID != userID {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}

func (r *memLocationRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.LocationArea, error) {
	var out []domain.LocationArea
	for _, a := range r.areas {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *memLocationRepo) CountByUser(_ context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for _, a := range r.areas {
		if a.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (r *memLocationRepo) Update(_ context.Context, area *domain.LocationArea) error {
	copied := *area
	r.areas[area.ID] = &copied
	return nil
}

func (r *memLocationRepo) SetVerified(_ context.Context, id uuid.UUID, at time.Time) error {
	if a, ok := r.areas[id]; ok {
		t := at
		a.VerifiedAt = &t
	}
	return nil
}

func (r *memLocationRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.areas, id)
	return nil
}

func (r *memLocationRepo) GetBestArea(_ context.Context, userID uuid.UUID) (*domain.LocationArea, error) {
	var candidates []*domain.LocationArea
	for _, a := range r.areas {
		if a.UserID == userID {
			candidates = append(candidates, a)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.IsPrimary != b.IsPrimary {
			return a.IsPrimary
		}
		av, bv := time.Time{}, time.Time{}
		if a.VerifiedAt != nil {
			av = *a.VerifiedAt
		}
		if b.VerifiedAt != nil {
			bv = *b.VerifiedAt
		}
		if !av.Equal(bv) {
			return av.After(bv)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	copied := *candidates[0]
	return &copied, nil
}

type memMatchingRepo struct {
	rows      []repository.CandidateRow
	lastQuery repository.CandidateQuery
	history   map[[2]uuid.UUID]*domain.MatchingHistory
	logs      []domain.MatchingActionLog
	ongoing   int
	users     []domain.ActionUser

	// blocks mirrors the NOT EXISTS predicate of the SQL candidate
	// queries: a block edge in either direction hides the candidate.
	blocks *memBlockRepo
}

func newMemMatchingRepo() *memMatchingRepo {
	return &memMatchingRepo{history: make(map[[2]uuid.UUID]*domain.MatchingHistory)}
}

func (r *memMatchingRepo) FindCandidates(ctx context.Context, q repository.CandidateQuery) ([]repository.CandidateRow, error) {
	r.lastQuery = q
	if r.blocks == nil {
		return r.rows, nil
	}
	var out []repository.CandidateRow
	for _, row := range r.rows {
		blocked, err := r.blocks.Exists(ctx, q.UserID, row.UserID)
		if err != nil {
			return nil, err
		}
		if !blocked {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *memMatchingRepo) GetHistory(_ context.Context, userID, targetUserID uuid.UUID) (*domain.MatchingHistory, error) {
	h, ok := r.history[[2]uuid.UUID{userID, targetUserID}]
	if !ok {
		return nil, nil
	}
	copied := *h
	return &copied, nil
}

func (r *memMatchingRepo) UpsertHistory(_ context.Context, h *domain.MatchingHistory) error {
	copied := *h
	r.history[[2]uuid.UUID{h.UserID, h.TargetUserID}] = &copied
	return nil
}

func (r *memMatchingRepo) CreateActionLog(_ context.Context, entry *domain.MatchingActionLog) error {
	r.logs = append(r.logs, *entry)
	return nil
}

func (r *memMatchingRepo) CountActions(_ context.Context, userID uuid.UUID, action string, received bool) (int, error) {
	count := 0
	for _, l := range r.logs {
		if l.Action != action {
			continue
		}
		if received && l.TargetUserID == userID {
			count++
		}
		if !received && l.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (r *memMatchingRepo) CountOngoingChats(_ context.Context, userID uuid.UUID) (int, error) {
	return r.ongoing, nil
}

func (r *memMatchingRepo) ListActionUsers(_ context.Context, userID uuid.UUID, action string, received bool, limit int) ([]domain.ActionUser, error) {
	return r.users, nil
}

type memNotificationRepo struct {
	notifications []domain.Notification
}

func newMemNotificationRepo() *memNotificationRepo {
	return &memNotificationRepo{}
}

func (r *memNotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	r.notifications = append(r.notifications, *n)
	return nil
}

func (r *memNotificationRepo) List(_ context.Context, userID uuid.UUID, types []string, limit int) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, n := range r.notifications {
		if n.UserID != userID {
			continue
		}
		if len(types) > 0 {
			matched := false
			for _, t := range types {
				if n.Type == t {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		out = append(out, n)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// fakeNotifier records realtime relays for assertions.
type fakeNotifier struct {
	relayed  []relayedMessage
	receipts []relayedReceipt
}

type relayedMessage struct {
	RecipientID uuid.UUID
	Message     *domain.ChatMessage
}

type relayedReceipt struct {
	RecipientID   uuid.UUID
	RoomID        uuid.UUID
	UpToMessageID uuid.UUID
}

func (n *fakeNotifier) RelayMessage(recipientID uuid.UUID, msg *domain.ChatMessage) {
	n.relayed = append(n.relayed, relayedMessage{RecipientID: recipientID, Message: msg})
}

func (n *fakeNotifier) RelayRead(recipientID, roomID, upToMessageID uuid.UUID, upToCreatedAt, readAt time.Time) {
	n.receipts = append(n.receipts, relayedReceipt{
		RecipientID:   recipientID,
		RoomID:        roomID,
		UpToMessageID: upToMessageID,
	})
}
