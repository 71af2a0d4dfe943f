package redisx

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/iapss/iapss-backend/internal/platform/logger"
)

// NewClient dials addr and verifies it with a PING.
func NewClient(ctx context.Context, addr string, baseLog *logger.Logger) (*goredis.Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	baseLog.Info("Redis connected", "addr", addr)
	return rdb, nil
}

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed   bool
	Count     int64
	Remaining int
	ResetIn   time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error)
}

// FixedWindowLimiter counts hits per key in aligned windows of fixed length.
type FixedWindowLimiter struct {
	rdb    goredis.Cmdable
	prefix string
	now    func() time.Time
}

func NewFixedWindowLimiter(rdb goredis.Cmdable, prefix string) *FixedWindowLimiter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &FixedWindowLimiter{rdb: rdb, prefix: prefix, now: time.Now}
}

// WindowKey is the redis key holding key's counter for the window containing at.
func (l *FixedWindowLimiter) WindowKey(key string, window time.Duration, at time.Time) string {
	start := at.Truncate(window).Unix()
	return l.prefix + ":" + key + ":" + strconv.FormatInt(start, 10)
}

func (l *FixedWindowLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	if limit <= 0 || window <= 0 {
		return Decision{Allowed: true, Remaining: -1}, nil
	}
	now := l.now()
	rkey := l.WindowKey(key, window, now)

	var incr *goredis.IntCmd
	_, err := l.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		incr = pipe.Incr(ctx, rkey)
		pipe.Expire(ctx, rkey, window+time.Second)
		return nil
	})
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit %s: %w", key, err)
	}

	count := incr.Val()
	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= int64(limit),
		Count:     count,
		Remaining: remaining,
		ResetIn:   now.Truncate(window).Add(window).Sub(now),
	}, nil
}
