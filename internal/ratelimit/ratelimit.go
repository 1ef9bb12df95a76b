package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter - rate limiter на провайдера (sliding window). Вежливость к
// чужим API: у каждого провайдера свое окно, они не мешают друг другу.
type Limiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
}

type Config struct {
	RequestsPerMinute int
}

func New(cfg Config) *Limiter {
	limit := cfg.RequestsPerMinute
	if limit <= 0 {
		limit = 30
	}

	l := &Limiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   time.Minute,
	}
	go l.cleanup()
	return l
}

func (l *Limiter) Allow(provider string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-l.window)

	// оставляем только свежие запросы
	old := l.requests[provider]
	fresh := old[:0] // reuse underlying array
	for _, t := range old {
		if t.After(cutoff) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= l.limit {
		l.requests[provider] = fresh
		return false
	}

	l.requests[provider] = append(fresh, now)
	return true
}

func (l *Limiter) Remaining(provider string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-l.window)
	used := 0
	for _, t := range l.requests[provider] {
		if t.After(cutoff) {
			used++
		}
	}

	if used >= l.limit {
		return 0
	}
	return l.limit - used
}

// Wait блокируется до освобождения окна провайдера или отмены контекста
func (l *Limiter) Wait(ctx context.Context, provider string) error {
	for {
		if l.Allow(provider) {
			return nil
		}

		next := l.nextFreeSlot(provider)
		delay := time.Until(next)
		if delay < 10*time.Millisecond {
			delay = 10 * time.Millisecond
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

func (l *Limiter) nextFreeSlot(provider string) time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := l.requests[provider]
	if len(ts) == 0 {
		return time.Now()
	}

	// ищем самый старый timestamp
	oldest := ts[0]
	for _, t := range ts[1:] {
		if t.Before(oldest) {
			oldest = t
		}
	}
	return oldest.Add(l.window)
}

// cleanup - фоновая очистка старых записей
// TODO: добавить graceful shutdown
func (l *Limiter) cleanup() {
	tick := time.NewTicker(5 * time.Minute)
	for range tick.C {
		l.mu.Lock()
		now := time.Now()
		cutoff := now.Add(-l.window)

		for name, ts := range l.requests {
			var fresh []time.Time
			for _, t := range ts {
				if t.After(cutoff) {
					fresh = append(fresh, t)
				}
			}
			if len(fresh) == 0 {
				delete(l.requests, name)
			} else {
				l.requests[name] = fresh
			}
		}
		l.mu.Unlock()
	}
}
