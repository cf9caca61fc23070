package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/maumlab/maum/internal/domain"
	"github.com/maumlab/maum/internal/repository"
	"github.com/maumlab/maum/pkg/geo"
)

var (
	ErrAreaNotFound  = errors.New("location area not found")
	ErrTooManyAreas  = errors.New("maximum 2 location areas allowed")
	ErrInvalidRadius = errors.New("radius must be 10000, 20000, 30000, or 40000 meters")
	ErrTooFarAway    = errors.New("current location is too far from the saved area")
)

type LocationService struct {
	repo repository.LocationRepository
}

func NewLocationService(repo repository.LocationRepository) *LocationService {
	return &LocationService{repo: repo}
}

type LocationAreaInput struct {
	Latitude  float64
	Longitude float64
	Address   string
	Radius    int
	IsPrimary bool
}

func (s *LocationService) CreateArea(ctx context.Context, userID uuid.UUID, input LocationAreaInput) (*domain.LocationArea, error) {
	count, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if count >= domain.MaxAreasPerUser {
		return nil, ErrTooManyAreas
	}

	if !domain.RadiusAllowed(input.Radius) {
		return nil, ErrInvalidRadius
	}

	now := time.Now()
	area := &domain.LocationArea{
		ID:         uuid.New(),
		UserID:     userID,
		Latitude:   input.Latitude,
		Longitude:  input.Longitude,
		Address:    input.Address,
		Radius:     input.Radius,
		IsPrimary:  input.IsPrimary,
		VerifiedAt: &now,
		CreatedAt:  now,
	}
	if err := s.repo.Create(ctx, area); err != nil {
		return nil, fmt.Errorf("creating location area: %w", err)
	}
	return area, nil
}

func (s *LocationService) ListAreas(ctx context.Context, userID uuid.UUID) ([]domain.LocationArea, error) {
	areas, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if areas == nil {
		areas = []domain.LocationArea{}
	}
	return areas, nil
}

// VerifyArea refreshes an area's verification timestamp, but only when the
// caller's reported position is within the area's radius.
func (s *LocationService) VerifyArea(ctx context.Context, areaID, userID uuid.UUID, latitude, longitude float64) (*domain.LocationArea, error) {
	area, err := s.repo.GetByID(ctx, areaID, userID)
	if err != nil {
		return nil, err
	}
	if area == nil {
		return nil, ErrAreaNotFound
	}

	distance := geo.HaversineMeters(area.Latitude, area.Longitude, latitude, longitude)
	if distance > float64(area.Radius) {
		return nil, ErrTooFarAway
	}

	now := time.Now()
	if err := s.repo.SetVerified(ctx, areaID, now); err != nil {
		return nil, fmt.Errorf("verifying location area: %w", err)
	}
	area.VerifiedAt = &now
	return area, nil
}

func (s *LocationService) UpdateArea(ctx context.Context, areaID, userID uuid.UUID, input LocationAreaInput) (*domain.LocationArea, error) {
	area, err := s.repo.GetByID(ctx, areaID, userID)
	if err != nil {
		return nil, err
	}
	if area == nil {
		return nil, ErrAreaNotFound
	}

	if !domain.RadiusAllowed(input.Radius) {
		return nil, ErrInvalidRadius
	}

	now := time.Now()
	area.Latitude = input.Latitude
	area.Longitude = input.Longitude
	area.Address = input.Address
	area.Radius = input.Radius
	area.IsPrimary = input.IsPrimary
	area.VerifiedAt = &now

	if err := s.repo.Update(ctx, area); err != nil {
		return nil, fmt.Errorf("updating location area: %w", err)
	}
	return area, nil
}

func (s *LocationService) DeleteArea(ctx context.Context, areaID, userID uuid.UUID) error {
	area, err := s.repo.GetByID(ctx, areaID, userID)
	if err != nil {
		return err
	}
	if area == nil {
		return ErrAreaNotFound
	}
	return s.repo.Delete(ctx, areaID)
}
