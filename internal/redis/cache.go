package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cached readings only serve dashboards and quick status queries, the
// database stays the source of truth.
const cacheTTL = time.Hour

// ReadingCache keeps the latest reading per station and kind so status
// endpoints do not hit Postgres on every poll.
type ReadingCache struct {
	client *redis.Client
}

// NewReadingCache creates the cache over a Redis client
func NewReadingCache(client *redis.Client) *ReadingCache {
	return &ReadingCache{client: client}
}

func readingKey(kind string, stationID int) string {
	return fmt.Sprintf("estacion:%d:%s", stationID, kind)
}

// Store saves the latest reading of a kind for a station
func (c *ReadingCache) Store(ctx context.Context, kind string, stationID int, payload []byte) {
	if err := c.client.Set(ctx, readingKey(kind, stationID), payload, cacheTTL).Err(); err != nil {
		log.Printf("REDIS: error cacheando %s de estación %d: %v", kind, stationID, err)
	}
}

// Latest returns the cached reading, nil when absent or expired
func (c *ReadingCache) Latest(ctx context.Context, kind string, stationID int) []byte {
	raw, err := c.client.Get(ctx, readingKey(kind, stationID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("REDIS: error leyendo cache %s de estación %d: %v", kind, stationID, err)
		}
		return nil
	}
	return raw
}
