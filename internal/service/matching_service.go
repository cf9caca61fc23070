package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/maumlab/maum/internal/domain"
	"github.com/maumlab/maum/internal/repository"
)

var (
	ErrInvalidTarget    = errors.New("invalid target user")
	ErrInvalidAction    = errors.New("invalid matching action")
	ErrInvalidDirection = errors.New("direction must be sent or received")
)

type MatchingService struct {
	matchingRepo  repository.MatchingRepository
	locationRepo  repository.LocationRepository
	userRepo      repository.UserRepository
	blockRepo     repository.BlockRepository
	notifications *NotificationService
}

func NewMatchingService(
	matchingRepo repository.MatchingRepository,
	locationRepo repository.LocationRepository,
	userRepo repository.UserRepository,
	blockRepo repository.BlockRepository,
	notifications *NotificationService,
) *MatchingService {
	return &MatchingService{
		matchingRepo:  matchingRepo,
		locationRepo:  locationRepo,
		userRepo:      userRepo,
		blockRepo:     blockRepo,
		notifications: notifications,
	}
}

// GetCandidates returns prospective matches for a user. A positive
// distanceKm selects the distance-filtered branch anchored at the user's
// best saved area; without a usable area it degrades to the unfiltered
// branch instead of failing.
func (s *MatchingService) GetCandidates(ctx context.Context, userID uuid.UUID, distanceKm, limit int) ([]domain.Candidate, error) {
	var gender *string
	profile, err := s.userRepo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		gender = profile.Gender
	}

	limit = clampInt(defaultIfZero(limit, 20), 1, 100)

	useDistance := distanceKm > 0
	maxDistanceMeters := 0
	var lat, lng float64
	if useDistance {
		distanceKm = clampInt(distanceKm, 1, 100)
		area, err := s.locationRepo.GetBestArea(ctx, userID)
		if err != nil {
			return nil, err
		}
		if area == nil {
			useDistance = false
		} else {
			maxDistanceMeters = distanceKm * 1000
			lat, lng = area.Latitude, area.Longitude
		}
	}

	q := repository.CandidateQuery{
		UserID:        userID,
		Gender:        gender,
		Latitude:      lat,
		Longitude:     lng,
		VerifiedAfter: time.Now().Add(-domain.VerificationMaxAge),
		Limit:         limit,
	}
	if useDistance {
		q.MaxDistanceMeters = maxDistanceMeters
	}

	rows, err := s.matchingRepo.FindCandidates(ctx, q)
	if err != nil {
		return nil, err
	}

	candidates := make([]domain.Candidate, 0, len(rows))
	for _, row := range rows {
		c := domain.Candidate{
			UserID:          row.UserID,
			DisplayName:     row.DisplayName,
			Age:             row.Age,
			Height:          row.Height,
			Occupation:      row.Occupation,
			Education:       row.Education,
			Bio:             row.Bio,
			LocationAddress: row.LocationAddress,
			ImageURL:        row.ImageURL,
		}
		if row.DistanceMeters == nil {
			c.DistanceKm = 0
			c.MatchScore = 80
		} else {
			km := math.Max(0, *row.DistanceMeters/1000)
			c.DistanceKm = math.Round(km*10) / 10
			c.MatchScore = computeMatchScore(km)
		}
		candidates = append(candidates, c)
	}

	return candidates, nil
}

type RecordActionInput struct {
	UserID        uuid.UUID
	TargetUserID  uuid.UUID
	Action        string
	MatchScore    int
	ViewedProfile bool
	ViewDuration  *int
}

// RecordAction stores a swipe decision. BLOCK also writes the block edge;
// a fresh LIKE or SUPER_LIKE (not a repeat of the previous action) notifies
// the target.
func (s *MatchingService) RecordAction(ctx context.Context, input RecordActionInput) (*domain.MatchingHistory, error) {
	if input.UserID == input.TargetUserID {
		return nil, ErrInvalidTarget
	}
	if !domain.ValidAction(input.Action) {
		return nil, ErrInvalidAction
	}

	target, err := s.userRepo.GetByID(ctx, input.TargetUserID)
	if err != nil {
		return nil, err
	}
	if target == nil || target.DeletedAt != nil {
		return nil, ErrTargetNotFound
	}

	blocked, err := s.blockRepo.Exists(ctx, input.UserID, input.TargetUserID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, ErrBlocked
	}

	previous, err := s.matchingRepo.GetHistory(ctx, input.UserID, input.TargetUserID)
	if err != nil {
		return nil, err
	}

	if input.Action == domain.ActionBlock {
		if err := s.blockRepo.Upsert(ctx, input.UserID, input.TargetUserID); err != nil {
			return nil, fmt.Errorf("recording block: %w", err)
		}
	}

	score := clampInt(input.MatchScore, 0, 100)
	now := time.Now()
	history := &domain.MatchingHistory{
		ID:            uuid.New(),
		UserID:        input.UserID,
		TargetUserID:  input.TargetUserID,
		Action:        input.Action,
		MatchScore:    score,
		ViewedProfile: input.ViewedProfile,
		ViewDuration:  input.ViewDuration,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.matchingRepo.UpsertHistory(ctx, history); err != nil {
		return nil, fmt.Errorf("upserting matching history: %w", err)
	}

	entry := &domain.MatchingActionLog{
		ID:           uuid.New(),
		UserID:       input.UserID,
		TargetUserID: input.TargetUserID,
		Action:       input.Action,
		MatchScore:   score,
		CreatedAt:    now,
	}
	if err := s.matchingRepo.CreateActionLog(ctx, entry); err != nil {
		return nil, fmt.Errorf("appending action log: %w", err)
	}

	likeAction := input.Action == domain.ActionLike || input.Action == domain.ActionSuperLike
	repeated := previous != nil && previous.Action == input.Action
	if likeAction && !repeated {
		if err := s.notifications.NotifyMatchAction(ctx, input.TargetUserID, input.UserID, input.Action, history.ID); err != nil {
			log.Printf("ERROR match notification for %s: %v", input.TargetUserID, err)
		}
	}

	return history, nil
}

func (s *MatchingService) GetActivity(ctx context.Context, userID uuid.UUID) (*domain.MatchingActivity, error) {
	interestSent, err := s.matchingRepo.CountActions(ctx, userID, domain.ActionLike, false)
	if err != nil {
		return nil, err
	}
	boostSent, err := s.matchingRepo.CountActions(ctx, userID, domain.ActionSuperLike, false)
	if err != nil {
		return nil, err
	}
	interestReceived, err := s.matchingRepo.CountActions(ctx, userID, domain.ActionLike, true)
	if err != nil {
		return nil, err
	}
	boostReceived, err := s.matchingRepo.CountActions(ctx, userID, domain.ActionSuperLike, true)
	if err != nil {
		return nil, err
	}
	ongoing, err := s.matchingRepo.CountOngoingChats(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &domain.MatchingActivity{
		InterestSent:     interestSent,
		BoostSent:        boostSent,
		InterestReceived: interestReceived,
		BoostReceived:    boostReceived,
		OngoingChats:     ongoing,
	}, nil
}

func (s *MatchingService) GetActionUsers(ctx context.Context, userID uuid.UUID, action, direction string, limit int) ([]domain.ActionUser, error) {
	if !domain.ValidAction(action) {
		return nil, ErrInvalidAction
	}
	if direction != "sent" && direction != "received" {
		return nil, ErrInvalidDirection
	}

	limit = clampInt(defaultIfZero(limit, 50), 1, 200)

	users, err := s.matchingRepo.ListActionUsers(ctx, userID, action, direction == "received", limit)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.ActionUser{}
	}
	return users, nil
}

// computeMatchScore is a lightweight heuristic until a real matching model
// exists: closer candidates score higher, clamped to [55, 98].
func computeMatchScore(distanceKm float64) int {
	score := 92 - int(math.Round(distanceKm*1.2))
	return clampInt(score, 55, 98)
}

func clampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func defaultIfZero(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}
