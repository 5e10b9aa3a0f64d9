package usecase

import (
	"context"
	"sync"
	"time"

	"b2bmarket/internal/domain/entity"
	"b2bmarket/pkg/logger"
)

// DealEventPublisher delivers lifecycle events after their transaction commits.
// Delivery is best effort; failures are logged and never roll back state.
type DealEventPublisher interface {
	Publish(ctx context.Context, event entity.DealEvent) error
}

// SweepLock grants a lease so only one instance runs the expiry sweep.
type SweepLock interface {
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, entity.DealEvent) error { return nil }

// MultiPublisher fans an event out to every publisher and returns the first error.
type MultiPublisher []DealEventPublisher

func (m MultiPublisher) Publish(ctx context.Context, event entity.DealEvent) error {
	var first error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// LocalLock is the in-process SweepLock used when no Redis is configured.
type LocalLock struct {
	mu   sync.Mutex
	held map[string]time.Time
}

func NewLocalLock() *LocalLock {
	return &LocalLock{held: make(map[string]time.Time)}
}

func (l *LocalLock) TryAcquire(_ context.Context, key string, ttl time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if until, ok := l.held[key]; ok && now.Before(until) {
		return nil, false, nil
	}
	l.held[key] = now.Add(ttl)
	return func() {
		l.mu.Lock()
		delete(l.held, key)
		l.mu.Unlock()
	}, true, nil
}

func publish(ctx context.Context, publisher DealEventPublisher, event entity.DealEvent) {
	if publisher == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn("publish %s failed: %v %s", event.Type, err, logger.Fields("room", event.RoomID))
	}
}
