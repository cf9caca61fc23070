package validator

import (
	"net/mail"
	"strings"

	"github.com/maumlab/maum/internal/domain"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

func ValidateOAuthLogin(provider, providerUserID, email string) ValidationErrors {
	errs := make(ValidationErrors)

	provider = strings.TrimSpace(provider)
	if provider == "" {
		errs.Add("provider", "Provider is required")
	}

	if strings.TrimSpace(providerUserID) == "" {
		errs.Add("provider_user_id", "Provider user ID is required")
	}

	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "Invalid email address")
	}

	return errs
}

func ValidateLocationArea(address string, radius int, lat, lng float64) ValidationErrors {
	errs := make(ValidationErrors)

	if strings.TrimSpace(address) == "" {
		errs.Add("address", "Address is required")
	}

	if !domain.RadiusAllowed(radius) {
		errs.Add("radius", "Radius must be 10000, 20000, 30000, or 40000 meters")
	}

	validateCoordinates(lat, lng, errs)

	return errs
}

func ValidateCoordinates(lat, lng float64) ValidationErrors {
	errs := make(ValidationErrors)
	validateCoordinates(lat, lng, errs)
	return errs
}

func ValidateMatchingAction(action string) ValidationErrors {
	errs := make(ValidationErrors)

	if !domain.ValidAction(action) {
		errs.Add("action", "Action must be LIKE, PASS, SUPER_LIKE, or BLOCK")
	}

	return errs
}

func validateCoordinates(lat, lng float64, errs ValidationErrors) {
	if lat < -90 || lat > 90 {
		errs.Add("latitude", "Latitude must be between -90 and 90")
	}
	if lng < -180 || lng > 180 {
		errs.Add("longitude", "Longitude must be between -180 and 180")
	}
}
