package cache

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"ms-passes/internal/passes"
)

// Redis-backed read-through cache for validity lookups. Venue scanners hit
// the validity endpoint hard; a short TTL keeps that off SQLite without
// letting a renewed or burned pass look stale for long.
type Redis struct {
	Client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{Client: client}
}

func (r *Redis) ttl() time.Duration {
	defaultTTL := 30 * time.Second

	ttlStr := os.Getenv("VALIDITY_CACHE_TTL_SECONDS")
	if ttlStr == "" {
		return defaultTTL
	}
	ttlSec, err := strconv.Atoi(ttlStr)
	if err != nil || ttlSec <= 0 {
		return defaultTTL
	}
	return time.Duration(ttlSec) * time.Second
}

func (r *Redis) GetValidity(tokenID string) (*passes.Validity, bool) {
	raw, err := r.Client.Get(context.Background(), "validity:"+tokenID).Result()
	if err != nil {
		return nil, false
	}
	var v passes.Validity
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, false
	}
	return &v, true
}

func (r *Redis) SetValidity(tokenID string, v passes.Validity) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	r.Client.Set(context.Background(), "validity:"+tokenID, raw, r.ttl())
}

func (r *Redis) Invalidate(tokenID string) {
	r.Client.Del(context.Background(), "validity:"+tokenID)
}
