package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	drillBufferKeyPrefix = "drill:user:"
	drillActiveUsersKey  = "drill:active_users"
	snapshotKeyPrefix    = "snapshot:entries:"
)

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(redisURL string) (*RedisCache, error) {
	// Parse redis URL (redis://host:port or redis://host:port/db)
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	log.Printf("Connected to Redis at %s", redisURL)
	return &RedisCache{client: client}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	return c.client.Get(ctx, key).Bytes()
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	return c.client.Set(ctx, key, value, 0).Err() // TTL 0 = no expiration
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// EntrySnapshotKey is the cache key for one user's full entry snapshot.
func EntrySnapshotKey(userID int64) string {
	return fmt.Sprintf("%s%d", snapshotKeyPrefix, userID)
}

// DrillEntry is one drilled word buffered in Redis before the daily flush.
type DrillEntry struct {
	Word       string    `json:"word"`
	Definition string    `json:"definition"`
	DrilledAt  time.Time `json:"drilledAt"`
}

// AppendDrills pushes drilled words onto the user's buffer and marks the
// user active so the flush job can find them.
func (c *RedisCache) AppendDrills(ctx context.Context, userID int64, entries []DrillEntry) error {
	if len(entries) == 0 {
		return nil
	}

	values := make([]interface{}, 0, len(entries))
	for _, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			return err
		}
		values = append(values, data)
	}

	key := fmt.Sprintf("%s%d", drillBufferKeyPrefix, userID)
	pipe := c.client.Pipeline()
	pipe.RPush(ctx, key, values...)
	pipe.SAdd(ctx, drillActiveUsersKey, strconv.FormatInt(userID, 10))
	_, err := pipe.Exec(ctx)
	return err
}

// GetAllDrills returns the user's buffered drill entries in push order.
func (c *RedisCache) GetAllDrills(ctx context.Context, userID int64) ([]DrillEntry, error) {
	key := fmt.Sprintf("%s%d", drillBufferKeyPrefix, userID)
	raw, err := c.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]DrillEntry, 0, len(raw))
	for _, item := range raw {
		var e DrillEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			log.Printf("Warning: dropping malformed drill buffer item for user %d: %v", userID, err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ClearUserDrills empties the user's drill buffer after a successful flush.
func (c *RedisCache) ClearUserDrills(ctx context.Context, userID int64) error {
	key := fmt.Sprintf("%s%d", drillBufferKeyPrefix, userID)
	pipe := c.client.Pipeline()
	pipe.Del(ctx, key)
	pipe.SRem(ctx, drillActiveUsersKey, strconv.FormatInt(userID, 10))
	_, err := pipe.Exec(ctx)
	return err
}

// GetActiveUsers lists users with pending drill buffers.
func (c *RedisCache) GetActiveUsers(ctx context.Context) ([]int64, error) {
	members, err := c.client.SMembers(ctx, drillActiveUsersKey).Result()
	if err != nil {
		return nil, err
	}

	users := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		users = append(users, id)
	}
	return users, nil
}
