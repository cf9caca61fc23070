package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionLike      = "LIKE"
	ActionPass      = "PASS"
	ActionSuperLike = "SUPER_LIKE"
	ActionBlock     = "BLOCK"
)

func ValidAction(action string) bool {
	switch action {
	case ActionLike, ActionPass, ActionSuperLike, ActionBlock:
		return true
	}
	return false
}

type UserBlock struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	BlockedUserID uuid.UUID `json:"blocked_user_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// MatchingHistory keeps the latest action per (user, target) pair.
type MatchingHistory struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	TargetUserID  uuid.UUID `json:"target_user_id"`
	Action        string    `json:"action"`
	MatchScore    int       `json:"match_score"`
	ViewedProfile bool      `json:"viewed_profile"`
	ViewDuration  *int      `json:"view_duration,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// MatchingActionLog is append-only; activity counters are computed from it.
type MatchingActionLog struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	TargetUserID uuid.UUID `json:"target_user_id"`
	Action       string    `json:"action"`
	MatchScore   int       `json:"match_score"`
	CreatedAt    time.Time `json:"created_at"`
}

type MatchingActivity struct {
	InterestSent     int `json:"interestSent"`
	BoostSent        int `json:"boostSent"`
	InterestReceived int `json:"interestReceived"`
	BoostReceived    int `json:"boostReceived"`
	OngoingChats     int `json:"ongoingChats"`
}

// Candidate is one discovery result row. DistanceMeters is nil on the
// unfiltered branch.
type Candidate struct {
	UserID          uuid.UUID `json:"userId"`
	DisplayName     string    `json:"displayName"`
	Age             *int      `json:"age"`
	Height          *int      `json:"height"`
	Occupation      *string   `json:"occupation"`
	Education       *string   `json:"education"`
	Bio             *string   `json:"bio"`
	LocationAddress *string   `json:"locationAddress"`
	DistanceKm      float64   `json:"distanceKm"`
	MatchScore      int       `json:"matchScore"`
	ImageURL        *string   `json:"imageUrl"`
}

// ActionUser is one row of the sent/received action listings.
type ActionUser struct {
	UserID      uuid.UUID `json:"userId"`
	DisplayName string    `json:"displayName"`
	Age         *int      `json:"age"`
	ImageURL    *string   `json:"imageUrl"`
	Action      string    `json:"action"`
	CreatedAt   time.Time `json:"createdAt"`
}
