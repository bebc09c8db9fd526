package lock

import (
	"context"
	"sync"
	"time"

	"github.com/erp/channelsync/internal/domain/shared"
)

// MemoryLocker serializes keys within a single process.
// Suitable for development and single-instance deployments.
type MemoryLocker struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	held chan struct{}
	refs int
}

// NewMemoryLocker creates an empty in-process locker
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{slots: make(map[string]*slot)}
}

// Acquire locks key. A non-positive wait tries once without blocking.
func (l *MemoryLocker) Acquire(ctx context.Context, key string, wait time.Duration) (shared.UnlockFunc, error) {
	s := l.ref(key)

	if wait <= 0 {
		select {
		case s.held <- struct{}{}:
			return l.unlockFunc(key, s), nil
		default:
			l.unref(key)
			return nil, notAcquired(key)
		}
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case s.held <- struct{}{}:
		return l.unlockFunc(key, s), nil
	case <-ctx.Done():
		l.unref(key)
		return nil, ctx.Err()
	case <-timer.C:
		l.unref(key)
		return nil, notAcquired(key)
	}
}

// Held reports how many keys currently have holders or waiters
func (l *MemoryLocker) Held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}

func (l *MemoryLocker) unlockFunc(key string, s *slot) shared.UnlockFunc {
	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			<-s.held
			l.unref(key)
		})
		return nil
	}
}

func (l *MemoryLocker) ref(key string) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{held: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	return s
}

func (l *MemoryLocker) unref(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[key]
	if !ok {
		return
	}
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}

func notAcquired(key string) error {
	return shared.ErrLockNotAcquired.Withf("Lock %q is held by another operation", key)
}

var _ shared.Locker = (*MemoryLocker)(nil)
