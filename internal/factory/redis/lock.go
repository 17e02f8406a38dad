package redis

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"ms-passes/internal/logger"
)

// SymbolLock reserves a symbol for the window between format validation
// and the registry insert, so two in-flight create calls racing on the
// same symbol cannot both pass the availability check. The TTL is a
// backstop; the lock is released as soon as the registry insert settles.
type SymbolLock struct {
	Client *redis.Client
	Logger *logger.Logger
}

func NewSymbolLock(client *redis.Client, log *logger.Logger) *SymbolLock {
	return &SymbolLock{Client: client, Logger: log}
}

func (l *SymbolLock) reserveTTL() time.Duration {
	defaultTTL := 30 * time.Second

	ttlStr := os.Getenv("SYMBOL_RESERVE_TTL_SECONDS")
	if ttlStr == "" {
		return defaultTTL
	}
	ttlSec, err := strconv.Atoi(ttlStr)
	if err != nil || ttlSec <= 0 {
		l.Logger.Warn("REDIS", fmt.Sprintf("Invalid SYMBOL_RESERVE_TTL_SECONDS %q, using default", ttlStr))
		return defaultTTL
	}
	return time.Duration(ttlSec) * time.Second
}

func (l *SymbolLock) Reserve(symbol string) (bool, error) {
	ok, err := l.Client.SetNX(context.Background(), "symbol_reserve:"+symbol, "1", l.reserveTTL()).Result()
	if err != nil {
		return false, err
	}
	if !ok {
		l.Logger.Warn("REDIS", fmt.Sprintf("Symbol %s already reserved by an in-flight creation", symbol))
	}
	return ok, nil
}

func (l *SymbolLock) Release(symbol string) error {
	return l.Client.Del(context.Background(), "symbol_reserve:"+symbol).Err()
}
