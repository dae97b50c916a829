package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// ErrRateLimited indica que el cliente superó el límite de cargas batch.
var ErrRateLimited = errors.New("rate limited")

// UploadRateLimiter limita la frecuencia de cargas batch por clave (IP del cliente).
type UploadRateLimiter interface {
	// Allow registra una carga para key. Si la rechaza, retryAfter es el
	// tiempo hasta que la carga más antigua salga de la ventana.
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration)
}

const anonymousUploadKey = "unknown"

// normalizeUploadKey unifica la clave entre implementaciones; las IPs sin
// resolver comparten un único cupo.
func normalizeUploadKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return anonymousUploadKey
	}
	return key
}

// uploadRateLimiter es una ventana deslizante en memoria: una carga en t
// ocupa cupo mientras t > now-window.
type uploadRateLimiter struct {
	mu        sync.Mutex
	window    time.Duration
	max       int
	hits      map[string][]time.Time
	lastSweep time.Time
	now       func() time.Time
}

// NewUploadRateLimiter crea un rate limiter de ventana deslizante en memoria.
func NewUploadRateLimiter(window time.Duration, max int) UploadRateLimiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &uploadRateLimiter{
		window: window,
		max:    max,
		hits:   make(map[string][]time.Time),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (l *uploadRateLimiter) Allow(_ context.Context, key string) (bool, time.Duration) {
	key = normalizeUploadKey(key)

	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	cutoff := now.Add(-l.window)
	l.sweep(now, cutoff)

	kept := keepAfter(l.hits[key], cutoff)
	if len(kept) >= l.max {
		l.hits[key] = kept
		return false, kept[0].Add(l.window).Sub(now)
	}
	l.hits[key] = append(kept, now)
	return true, 0
}

// sweep elimina, como mucho una vez por ventana, las claves sin cargas vigentes.
func (l *uploadRateLimiter) sweep(now, cutoff time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	l.lastSweep = now
	for key, entries := range l.hits {
		kept := keepAfter(entries, cutoff)
		if len(kept) == 0 {
			delete(l.hits, key)
			continue
		}
		l.hits[key] = kept
	}
}

func keepAfter(entries []time.Time, cutoff time.Time) []time.Time {
	kept := entries[:0]
	for _, ts := range entries {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	return kept
}
