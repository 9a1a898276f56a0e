package redis

import (
	"context"
	"sync"
	"time"
)

// Counter cuenta hits por clave dentro de una ventana fija.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// Limiter de ventana fija: max pedidos por clave cada window.
type Limiter struct {
	counter Counter
	max     int64
	window  time.Duration
}

func NewLimiter(counter Counter, max int, window time.Duration) *Limiter {
	return &Limiter{counter: counter, max: int64(max), window: window}
}

func (l *Limiter) Window() time.Duration { return l.window }

func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	n, err := l.counter.Incr(ctx, key, l.window)
	if err != nil {
		return false, err
	}
	return n <= l.max, nil
}

// MemoryCounter es el Counter en proceso para cuando no hay Redis configurado.
type MemoryCounter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	count   int64
	resetAt time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{buckets: map[string]*bucket{}, now: time.Now}
}

func (m *MemoryCounter) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	b, ok := m.buckets[key]
	if !ok || !now.Before(b.resetAt) {
		b = &bucket{resetAt: now.Add(window)}
		m.buckets[key] = b
		m.sweep(now)
	}
	b.count++
	return b.count, nil
}

// sweep borra las ventanas vencidas para que el mapa no crezca sin límite.
func (m *MemoryCounter) sweep(now time.Time) {
	for k, b := range m.buckets {
		if !now.Before(b.resetAt) {
			delete(m.buckets, k)
		}
	}
}
