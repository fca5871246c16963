package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const trackerLockKey = "lock:tracker:tick"

// releaseScript deletes the lock only while it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// LockStore handles distributed locking in Redis.
// Each LockStore owns a token identifying its replica.
type LockStore struct {
	client *redis.Client
	token  string
}

// NewLockStore creates a new LockStore with a fresh replica token.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client, token: uuid.NewString()}
}

// AcquireTrackerLock attempts to claim the current tracker tick.
// Returns true if the lock was acquired, false if another replica holds it.
func (s *LockStore) AcquireTrackerLock(ctx context.Context, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, trackerLockKey, s.token, ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// ReleaseTrackerLock releases the tracker tick lock if this replica still holds it.
// A lock that expired and was claimed by another replica is left alone.
func (s *LockStore) ReleaseTrackerLock(ctx context.Context) error {
	return releaseScript.Run(ctx, s.client, []string{trackerLockKey}, s.token).Err()
}
