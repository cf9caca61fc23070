package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

const statusTTL = 5 * time.Minute

// PresenceStore mirrors realtime connection state into short-lived Redis
// keys so the REST side (and anything else reading Redis) can answer
// "is this user online" without touching the hub.
type PresenceStore struct {
	cli *redis.Client
}

func NewPresenceStore(url string) (*PresenceStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	cli := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := cli.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return &PresenceStore{cli: cli}, nil
}

func (s *PresenceStore) Close() error {
	return s.cli.Close()
}

// SetStatus writes user:{id}:status with a 5-minute TTL. Status updates are
// best effort: a Redis failure is logged and swallowed so it can never take
// down a connect/disconnect path.
func (s *PresenceStore) SetStatus(userID uuid.UUID, status string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	key := fmt.Sprintf("user:%s:status", userID)
	if err := s.cli.Set(ctx, key, status, statusTTL).Err(); err != nil {
		log.Printf("presence: set status for %s: %v", userID, err)
	}
}

// GetStatus returns "offline" for missing or expired keys.
func (s *PresenceStore) GetStatus(ctx context.Context, userID uuid.UUID) (string, error) {
	key := fmt.Sprintf("user:%s:status", userID)
	val, err := s.cli.Get(ctx, key).Result()
	if err == redis.Nil {
		return "offline", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}
