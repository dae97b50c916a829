package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type mockRedisEvaler struct {
	lastScript string
	lastKeys   []string
	lastArgs   []interface{}
	reply      []interface{}
	err        error
}

func (m *mockRedisEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	m.lastScript = script
	m.lastKeys = keys
	m.lastArgs = args
	cmd := redis.NewCmd(ctx)
	if m.err != nil {
		cmd.SetErr(m.err)
		return cmd
	}
	cmd.SetVal(m.reply)
	return cmd
}

func newTestRedisLimiter(mock *mockRedisEvaler, now time.Time) *redisUploadRateLimiter {
	return &redisUploadRateLimiter{
		client: mock,
		window: 10 * time.Minute,
		max:    3,
		prefix: "batch:uploads:",
		now:    func() time.Time { return now },
	}
}

func TestRedisUploadRateLimiterAllow(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	t.Run("nil receiver fail-open", func(t *testing.T) {
		var l *redisUploadRateLimiter
		if ok, _ := l.Allow(context.Background(), "10.0.0.1"); !ok {
			t.Fatalf("expected fail-open for nil limiter")
		}
	})

	t.Run("sends window in milliseconds", func(t *testing.T) {
		mock := &mockRedisEvaler{reply: []interface{}{int64(1), int64(0)}}
		l := newTestRedisLimiter(mock, now)

		ok, retry := l.Allow(context.Background(), " FE80::1 ")
		if !ok || retry != 0 {
			t.Fatalf("expected allow without retry, got %v/%v", ok, retry)
		}
		if len(mock.lastKeys) != 1 || mock.lastKeys[0] != "batch:uploads:fe80::1" {
			t.Fatalf("unexpected key normalization, got %+v", mock.lastKeys)
		}
		if len(mock.lastArgs) != 4 {
			t.Fatalf("expected 4 script args, got %+v", mock.lastArgs)
		}
		if mock.lastArgs[0] != now.UnixMilli() || mock.lastArgs[1] != int64(600000) || mock.lastArgs[2] != 3 {
			t.Fatalf("unexpected script args %+v", mock.lastArgs[:3])
		}
		if member, _ := mock.lastArgs[3].(string); member == "" {
			t.Fatalf("expected a unique member per upload")
		}
		if mock.lastScript != redisUploadWindowScript {
			t.Fatalf("expected window script")
		}
	})

	t.Run("blank key shares anonymous bucket", func(t *testing.T) {
		mock := &mockRedisEvaler{reply: []interface{}{int64(1), int64(0)}}
		l := newTestRedisLimiter(mock, now)
		l.Allow(context.Background(), "   ")
		if mock.lastKeys[0] != "batch:uploads:"+anonymousUploadKey {
			t.Fatalf("unexpected key %q", mock.lastKeys[0])
		}
	})

	t.Run("deny reports retry after", func(t *testing.T) {
		mock := &mockRedisEvaler{reply: []interface{}{int64(0), int64(42500)}}
		l := newTestRedisLimiter(mock, now)
		ok, retry := l.Allow(context.Background(), "10.0.0.1")
		if ok {
			t.Fatalf("expected deny")
		}
		if retry != 42500*time.Millisecond {
			t.Fatalf("expected 42.5s retry, got %v", retry)
		}
	})

	t.Run("redis error fail-open", func(t *testing.T) {
		l := newTestRedisLimiter(&mockRedisEvaler{err: errors.New("redis down")}, now)
		if ok, _ := l.Allow(context.Background(), "10.0.0.1"); !ok {
			t.Fatalf("expected fail-open on redis errors")
		}
	})

	t.Run("malformed reply fail-open", func(t *testing.T) {
		l := newTestRedisLimiter(&mockRedisEvaler{reply: []interface{}{int64(0)}}, now)
		if ok, _ := l.Allow(context.Background(), "10.0.0.1"); !ok {
			t.Fatalf("expected fail-open on unexpected replies")
		}
	})
}

func TestNewRedisUploadRateLimiterNilClient(t *testing.T) {
	if NewRedisUploadRateLimiter(nil, time.Minute, 3) != nil {
		t.Fatalf("expected nil limiter without redis client")
	}
}

func TestUploadRateLimiterWindow(t *testing.T) {
	ctx := context.Background()
	current := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewUploadRateLimiter(time.Minute, 2).(*uploadRateLimiter)
	l.now = func() time.Time { return current }

	if ok, _ := l.Allow(ctx, "10.0.0.1"); !ok {
		t.Fatalf("expected first upload to be allowed")
	}
	current = current.Add(20 * time.Second)
	if ok, _ := l.Allow(ctx, "10.0.0.1"); !ok {
		t.Fatalf("expected second upload to be allowed")
	}
	ok, retry := l.Allow(ctx, " 10.0.0.1 ")
	if ok {
		t.Fatalf("expected third upload in window to be denied")
	}
	if retry != 40*time.Second {
		t.Fatalf("expected retry after 40s, got %v", retry)
	}
	if ok, _ := l.Allow(ctx, "10.0.0.2"); !ok {
		t.Fatalf("limits are per key")
	}

	// La primera carga sale de la ventana justo al cumplirse el minuto.
	current = current.Add(40 * time.Second)
	if ok, _ := l.Allow(ctx, "10.0.0.1"); !ok {
		t.Fatalf("expected upload to be allowed once the oldest left the window")
	}
}

func TestUploadRateLimiterDropsIdleKeys(t *testing.T) {
	ctx := context.Background()
	current := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewUploadRateLimiter(time.Minute, 2).(*uploadRateLimiter)
	l.now = func() time.Time { return current }

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		l.Allow(ctx, ip)
	}
	if len(l.hits) != 3 {
		t.Fatalf("expected 3 tracked keys, got %d", len(l.hits))
	}

	current = current.Add(61 * time.Second)
	l.Allow(ctx, "10.0.0.4")
	if len(l.hits) != 1 {
		t.Fatalf("expected idle keys to be dropped, got %v", l.hits)
	}
	if _, ok := l.hits["10.0.0.4"]; !ok {
		t.Fatalf("expected active key to be kept")
	}
}
