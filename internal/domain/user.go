package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	UserStatusActive    = "ACTIVE"
	UserStatusSuspended = "SUSPENDED"
)

type User struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	Provider       string     `json:"provider"`
	ProviderUserID string     `json:"provider_user_id"`
	Status         string     `json:"status"`
	DeletedAt      *time.Time `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type Profile struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Gender      *string   `json:"gender,omitempty"`
	Age         *int      `json:"age,omitempty"`
	Height      *int      `json:"height,omitempty"`
	Occupation  *string   `json:"occupation,omitempty"`
	Education   *string   `json:"education,omitempty"`
	Bio         *string   `json:"bio,omitempty"`
	IsComplete  bool      `json:"is_complete"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}
