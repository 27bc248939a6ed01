package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Station locks expire on their own in case a cycle is abandoned
// mid-flight; one decision+actuation fits comfortably inside the TTL.
const lockTTL = 2 * time.Minute

// StationLock is a single-flight guard per station, backed by Redis
// SET NX. It prevents overlapping control cycles from double-starting
// or double-stopping one pump.
type StationLock struct {
	client *redis.Client
}

// NewStationLock creates the lock over a Redis client
func NewStationLock(client *redis.Client) *StationLock {
	return &StationLock{client: client}
}

func lockKey(stationID int) string {
	return fmt.Sprintf("control:lock:%d", stationID)
}

// Acquire takes the station lock, false when another cycle holds it
func (l *StationLock) Acquire(ctx context.Context, stationID int) (bool, error) {
	ok, err := l.client.SetNX(ctx, lockKey(stationID), time.Now().UnixNano(), lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("adquirir lock de estación %d: %w", stationID, err)
	}
	return ok, nil
}

// Release frees the station lock
func (l *StationLock) Release(ctx context.Context, stationID int) {
	if err := l.client.Del(ctx, lockKey(stationID)).Err(); err != nil {
		log.Printf("REDIS: error liberando lock de estación %d: %v", stationID, err)
	}
}
