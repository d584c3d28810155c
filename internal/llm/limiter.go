package llm

import (
	"context"
	"sync"
	"time"
)

// pacer spaces outbound completion calls so concurrent regions cannot burst
// past the account's requests-per-second budget. Slots are reserved under the
// lock; the wait itself honors the caller's context, so a cancelled batch run
// never sits out its turn.
type pacer struct {
	mu       sync.Mutex
	next     time.Time
	interval time.Duration
}

func newPacer(requestsPerSecond int) *pacer {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &pacer{interval: time.Second / time.Duration(requestsPerSecond)}
}

func (p *pacer) wait(ctx context.Context) error {
	p.mu.Lock()
	now := time.Now()
	slot := now
	if p.next.After(now) {
		slot = p.next
	}
	p.next = slot.Add(p.interval)
	p.mu.Unlock()

	sleep := time.Until(slot)
	if sleep <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(sleep)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
