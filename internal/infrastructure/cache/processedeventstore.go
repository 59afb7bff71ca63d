package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// processedEventKeyPrefix is the prefix for webhook event dedup keys
const processedEventKeyPrefix = "billing:processed_event:"

// ProcessedEventStore provides Redis-based webhook event deduplication.
// The processor checks an event before handling it and records it only
// after handling succeeds; the SetNX on record keeps concurrent deliveries
// of the same event from both claiming the first completion.
type ProcessedEventStore struct {
	client *redis.Client
}

// NewProcessedEventStore creates a new ProcessedEventStore instance
func NewProcessedEventStore(client *redis.Client) *ProcessedEventStore {
	return &ProcessedEventStore{client: client}
}

func (s *ProcessedEventStore) buildKey(eventID string) string {
	return processedEventKeyPrefix + eventID
}

// IsProcessed reports whether the event ID has already been recorded.
func (s *ProcessedEventStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.buildKey(eventID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check processed event: %w", err)
	}
	return n > 0, nil
}

// MarkProcessed records the event ID with the given TTL. Returns true when
// the ID was newly recorded, false when the event was already seen.
func (s *ProcessedEventStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	fresh, err := s.client.SetNX(ctx, s.buildKey(eventID), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark event processed: %w", err)
	}
	return fresh, nil
}
