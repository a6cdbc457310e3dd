package rate

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	xrate "golang.org/x/time/rate"
)

// MemoryLimiter token bucket por clave, local al proceso. Se usa cuando no
// hay Redis configurado. Los buckets inactivos expiran del cache.
type MemoryLimiter struct {
	max    int
	window time.Duration
	every  xrate.Limit

	mu      sync.Mutex
	buckets *gocache.Cache
	now     func() time.Time
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &MemoryLimiter{
		max:     max,
		window:  window,
		every:   xrate.Every(window / time.Duration(max)),
		buckets: gocache.New(2*window, 4*window),
		now:     time.Now,
	}
}

func (m *MemoryLimiter) bucket(key string) *xrate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.buckets.Get(key); ok {
		// refresca el TTL de inactividad
		m.buckets.Set(key, v, gocache.DefaultExpiration)
		return v.(*xrate.Limiter)
	}
	lim := xrate.NewLimiter(m.every, m.max)
	m.buckets.Set(key, lim, gocache.DefaultExpiration)
	return lim
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	lim := m.bucket(key)
	now := m.now()

	if lim.AllowN(now, 1) {
		tokens := int64(lim.TokensAt(now))
		return Result{
			Allowed:     true,
			Remaining:   max(tokens, 0),
			CurrentHits: int64(m.max) - max(tokens, 0),
			WindowTTL:   m.window,
		}, nil
	}

	r := lim.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	r.CancelAt(now)
	return Result{
		Allowed:     false,
		Remaining:   0,
		RetryAfter:  delay,
		CurrentHits: int64(m.max),
		WindowTTL:   m.window,
	}, nil
}
