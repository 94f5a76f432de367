package publish

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/stackpin/pkg/facts"
)

// DefaultRedisKey is the hash that receives the facts when the target names
// no key.
const DefaultRedisKey = "stackpin:facts"

// RedisSink stores the latest facts in a single Redis hash. Each publish
// overwrites the fields of the previous run and refreshes the expiry.
type RedisSink struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	owned  bool
}

// NewRedisSink wraps an existing client. Close leaves the client open.
func NewRedisSink(client *redis.Client, key string, ttl time.Duration) *RedisSink {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisSink{client: client, key: key, ttl: ttl}
}

// redisTarget is a parsed redis:// or rediss:// publish target.
type redisTarget struct {
	opts *redis.Options
	key  string
	ttl  time.Duration
}

// parseRedisTarget splits the stackpin parameters (key, ttl) off target and
// hands the rest to redis.ParseURL.
func parseRedisTarget(target string) (*redisTarget, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("parse redis target: %w", err)
	}
	q := u.Query()
	t := &redisTarget{key: q.Get("key")}
	if raw := q.Get("ttl"); raw != "" {
		if t.ttl, err = time.ParseDuration(raw); err != nil {
			return nil, fmt.Errorf("redis ttl %q: %w", raw, err)
		}
		if t.ttl < 0 {
			return nil, fmt.Errorf("redis ttl %q: must not be negative", raw)
		}
	}
	q.Del("key")
	q.Del("ttl")
	u.RawQuery = q.Encode()

	if t.opts, err = redis.ParseURL(u.String()); err != nil {
		return nil, fmt.Errorf("parse redis target: %w", err)
	}
	if t.key == "" {
		t.key = DefaultRedisKey
	}
	return t, nil
}

// OpenRedis connects to the target and verifies the connection with PING.
func OpenRedis(ctx context.Context, target string) (*RedisSink, error) {
	t, err := parseRedisTarget(target)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(t.opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", t.opts.Addr, err)
	}
	s := NewRedisSink(client, t.key, t.ttl)
	s.owned = true
	return s, nil
}

// Publish writes the facts plus run_id and resolved_at into the hash in one
// transaction.
func (s *RedisSink) Publish(ctx context.Context, rec facts.Record) error {
	fields := make(map[string]any, len(rec.Facts)+2)
	for k, v := range rec.Facts {
		fields[k] = v
	}
	fields["run_id"] = rec.RunID
	fields["resolved_at"] = rec.ResolvedAt.UTC().Format(time.RFC3339)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.key, fields)
		if s.ttl > 0 {
			pipe.Expire(ctx, s.key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("publish to redis key %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisSink) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}
