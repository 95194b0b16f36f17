package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const presenceTTL = 10 * time.Minute

// PresenceStore records player heartbeats. Connectivity is never stored
// as a boolean; readers compare the last-seen timestamp against a
// liveness threshold at snapshot time.
type PresenceStore struct {
	client *redis.Client
}

func NewPresenceStore(client *redis.Client) *PresenceStore {
	return &PresenceStore{client: client}
}

func presenceKey(playerID string) string {
	return fmt.Sprintf("presence:%s", playerID)
}

// Touch refreshes the player's last-seen timestamp.
func (s *PresenceStore) Touch(ctx context.Context, playerID string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if err := s.client.Set(ctx, presenceKey(playerID), now, presenceTTL).Err(); err != nil {
		return fmt.Errorf("failed to store heartbeat: %w", err)
	}
	return nil
}

// LastSeen returns the player's most recent heartbeat time. The zero time
// is returned for a player who never sent one (or whose key expired).
func (s *PresenceStore) LastSeen(ctx context.Context, playerID string) (time.Time, error) {
	val, err := s.client.Get(ctx, presenceKey(playerID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("failed to get heartbeat: %w", err)
	}

	t, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse heartbeat: %w", err)
	}
	return t, nil
}
