// Package ratelimit bounds outbound request rate per destination domain so
// polite pacing is preserved across concurrent discovery cycles.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"funding-advisor/internal/common/metrics"
)

// windowSize is the trailing window the per-domain ceiling applies to.
const windowSize = time.Minute

// Limiter gates requests per domain: at most ceiling(domain) acquisitions
// may complete within any trailing 60-second window. Process-wide; shared by
// all concurrent discovery calls.
type Limiter struct {
	mu             sync.Mutex
	domains        map[string]*domainWindow
	ceilings       map[string]int
	defaultCeiling int

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

type domainWindow struct {
	mu     sync.Mutex
	stamps []time.Time
}

// New creates a limiter with per-domain ceilings. Domains absent from the
// map fall back to defaultCeiling.
func New(ceilings map[string]int, defaultCeiling int) *Limiter {
	if defaultCeiling <= 0 {
		defaultCeiling = 10
	}
	return &Limiter{
		domains:        make(map[string]*domainWindow),
		ceilings:       ceilings,
		defaultCeiling: defaultCeiling,
		now:            time.Now,
		sleep:          sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (l *Limiter) window(domain string) *domainWindow {
	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.domains[domain]
	if !ok {
		w = &domainWindow{}
		l.domains[domain] = w
	}
	return w
}

func (l *Limiter) ceiling(domain string) int {
	if c, ok := l.ceilings[domain]; ok && c > 0 {
		return c
	}
	return l.defaultCeiling
}

// Acquire blocks until issuing one request to domain would not exceed its
// ceiling within the trailing window, records the request timestamp, and
// returns. The recorded timestamp is never rolled back: once a slot is
// claimed the request counts as sent even if the caller is later cancelled.
// Returns early only on context cancellation, before a slot is claimed.
func (l *Limiter) Acquire(ctx context.Context, domain string) error {
	w := l.window(domain)
	ceiling := l.ceiling(domain)
	start := l.now()

	w.mu.Lock()
	for {
		now := l.now()
		w.prune(now)

		if len(w.stamps) < ceiling {
			w.stamps = append(w.stamps, now)
			w.mu.Unlock()
			metrics.RateLimiterWait.WithLabelValues(domain).Observe(l.now().Sub(start).Seconds())
			return nil
		}

		// Window full: wait until the oldest stamp ages out, then re-check.
		// Concurrent callers race for the freed slot, so this must loop.
		wait := windowSize - now.Sub(w.stamps[0])
		if wait <= 0 {
			continue
		}

		w.mu.Unlock()
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
		w.mu.Lock()
	}
}

// prune drops timestamps older than the trailing window. Caller holds w.mu.
func (w *domainWindow) prune(now time.Time) {
	cut := 0
	for cut < len(w.stamps) && now.Sub(w.stamps[cut]) >= windowSize {
		cut++
	}
	if cut > 0 {
		w.stamps = append(w.stamps[:0], w.stamps[cut:]...)
	}
}
