package domain

import (
	"time"

	"github.com/google/uuid"
)

// AllowedRadii are the only accepted area radii, in meters.
var AllowedRadii = []int{10000, 20000, 30000, 40000}

// MaxAreasPerUser caps saved locations per user.
const MaxAreasPerUser = 2

// VerificationMaxAge is how long a location verification counts as fresh
// for discovery purposes.
const VerificationMaxAge = 30 * 24 * time.Hour

type LocationArea struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	Latitude   float64    `json:"latitude"`
	Longitude  float64    `json:"longitude"`
	Address    string     `json:"address"`
	Radius     int        `json:"radius"`
	IsPrimary  bool       `json:"is_primary"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func RadiusAllowed(radius int) bool {
	for _, r := range AllowedRadii {
		if r == radius {
			return true
		}
	}
	return false
}
