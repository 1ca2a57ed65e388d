package core

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// JobQueue is the reliable queue used by the API and the worker.
// Reserved jobs stay in a processing set until acked, so a dead worker loses nothing.
type JobQueue interface {
	Enqueue(ctx context.Context, value string) error
	Reserve(ctx context.Context, visibility time.Duration) (string, error)
	Ack(ctx context.Context, value string) error
	RequeueExpired(ctx context.Context, now time.Time) ([]string, error)
}

// RedisClientRaw exposes a minimal subset used for metrics and heartbeat.
type RedisClientRaw interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	LLen(ctx context.Context, key string) *redis.IntCmd
	ZCard(ctx context.Context, key string) *redis.IntCmd
	ZCount(ctx context.Context, key, min, max string) *redis.IntCmd
}

// ErrQueueEmpty is returned by Reserve when nothing is pending.
var ErrQueueEmpty = errors.New("queue empty")

// reserveScript moves one job from the pending list to the processing set, scored by
// its visibility deadline in unix milliseconds.
var reserveScript = redis.NewScript(`
local v = redis.call('RPOP', KEYS[1])
if v then
  redis.call('ZADD', KEYS[2], ARGV[1], v)
end
return v
`)

// requeueScript moves every processing job whose deadline is <= ARGV[1] back to pending.
var requeueScript = redis.NewScript(`
local vals = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
if #vals > 0 then
  redis.call('ZREM', KEYS[1], unpack(vals))
  redis.call('LPUSH', KEYS[2], unpack(vals))
end
return vals
`)

// RedisQueue implements JobQueue on a Redis list (pending) and sorted set (processing).
type RedisQueue struct {
	client        *redis.Client
	pendingKey    string
	processingKey string
}

// NewRedisClient returns a configured go-redis client from URL (e.g., redis://localhost:6379/0).
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, errors.New("empty redis url")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// NewRedisQueue binds the submission queue keys to client.
func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{client: client, pendingKey: PendingQueueKey, processingKey: ProcessingQueueKey}
}

// Enqueue pushes a value to the head of the pending list (LPUSH).
func (q *RedisQueue) Enqueue(ctx context.Context, value string) error {
	return q.client.LPush(ctx, q.pendingKey, value).Err()
}

// Reserve pops the oldest pending job and records it as processing until now+visibility.
func (q *RedisQueue) Reserve(ctx context.Context, visibility time.Duration) (string, error) {
	deadline := float64(time.Now().Add(visibility).UnixMilli())
	res, err := reserveScript.Run(ctx, q.client, []string{q.pendingKey, q.processingKey}, deadline).Result()
	if errors.Is(err, redis.Nil) || (err == nil && res == nil) {
		return "", ErrQueueEmpty
	}
	if err != nil {
		return "", err
	}
	s, ok := res.(string)
	if !ok {
		return "", errors.New("unexpected reserve response type")
	}
	return s, nil
}

// Ack removes a processing item after handling.
func (q *RedisQueue) Ack(ctx context.Context, value string) error {
	return q.client.ZRem(ctx, q.processingKey, value).Err()
}

// RequeueExpired moves expired processing items back to pending and returns the moved jobs.
func (q *RedisQueue) RequeueExpired(ctx context.Context, now time.Time) ([]string, error) {
	res, err := requeueScript.Run(ctx, q.client, []string{q.processingKey, q.pendingKey}, float64(now.UnixMilli())).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rawVals, ok := res.([]interface{})
	if !ok {
		return nil, errors.New("unexpected requeue response type")
	}
	out := make([]string, 0, len(rawVals))
	for _, v := range rawVals {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out, nil
}
