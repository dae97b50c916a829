package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// La ventana vive en un sorted set con score = instante de la carga en ms.
// Se descartan las cargas con score <= now-window, igual que en memoria.
// Devuelve {1, 0} si acepta o {0, ms hasta liberar cupo} si rechaza.
const redisUploadWindowScript = `
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", now - window)
if redis.call("ZCARD", KEYS[1]) >= limit then
  local oldest = redis.call("ZRANGE", KEYS[1], 0, 0, "WITHSCORES")
  return {0, tonumber(oldest[2]) + window - now}
end
redis.call("ZADD", KEYS[1], now, ARGV[4])
redis.call("PEXPIRE", KEYS[1], window)
return {1, 0}
`

const redisUploadTimeout = 500 * time.Millisecond

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

type redisUploadRateLimiter struct {
	client redisEvaler
	window time.Duration
	max    int
	prefix string
	now    func() time.Time
}

// NewRedisUploadRateLimiter comparte la ventana entre réplicas del servicio.
func NewRedisUploadRateLimiter(client *redis.Client, window time.Duration, max int) UploadRateLimiter {
	if client == nil {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisUploadRateLimiter{
		client: client,
		window: window,
		max:    max,
		prefix: "batch:uploads:",
		now:    time.Now,
	}
}

// Allow falla abierto ante errores de redis: una caída de redis no bloquea
// las cargas batch.
func (l *redisUploadRateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration) {
	if l == nil || l.client == nil {
		return true, 0
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, redisUploadTimeout)
	defer cancel()

	reply, err := l.client.Eval(ctx, redisUploadWindowScript,
		[]string{l.prefix + normalizeUploadKey(key)},
		l.now().UnixMilli(), l.window.Milliseconds(), l.max, uuid.NewString(),
	).Int64Slice()
	if err != nil || len(reply) != 2 {
		return true, 0
	}
	if reply[0] == 1 {
		return true, 0
	}
	retryAfter := time.Duration(reply[1]) * time.Millisecond
	if retryAfter <= 0 {
		retryAfter = time.Millisecond
	}
	return false, retryAfter
}
