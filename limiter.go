package offload

import (
	"context"
	"sync"
)

// CapacityLimiter is a bounded admission gate: at most capacity callers
// hold a slot at any time, and callers beyond that wait in strict FIFO
// arrival order. Capacity is fixed for the instance's lifetime; to
// adjust the concurrency of a named resource, create a new limiter and
// re-register it.
//
// Pattern: counting semaphore with an explicit wait queue — a release
// hands the freed slot directly to the longest waiter instead of
// freeing it for recontention, so waiters resume in arrival order and
// can never be barged by fresh acquirers.
type CapacityLimiter struct {
	mu       sync.Mutex
	capacity int
	inFlight int
	waiters  []chan struct{}
	hooks    *Hooks
}

// NewCapacityLimiter creates a limiter admitting at most capacity
// concurrent holders. Panics with [ErrInvalidCapacity] if capacity is
// not positive. hooks may be nil.
func NewCapacityLimiter(capacity int, hooks *Hooks) *CapacityLimiter {
	if capacity < 1 {
		panic(ErrInvalidCapacity)
	}

	return &CapacityLimiter{capacity: capacity, hooks: hooks}
}

// Acquire admits the caller immediately while capacity remains,
// otherwise blocks in the FIFO wait queue until a release hands over a
// slot or ctx is done. On cancellation the waiter is removed from the
// queue without affecting the in-flight count or other waiters, and
// ctx.Err() is returned.
func (l *CapacityLimiter) Acquire(ctx context.Context) error {
	l.mu.Lock()
	if l.inFlight < l.capacity {
		l.inFlight++
		l.mu.Unlock()
		l.hooks.emitAcquired()

		return nil
	}

	ready := make(chan struct{})
	l.waiters = append(l.waiters, ready)
	l.mu.Unlock()
	l.hooks.emitWaiting()

	select {
	case <-ready:
		l.hooks.emitAcquired()

		return nil

	case <-ctx.Done():
		l.mu.Lock()
		select {
		case <-ready:
			// A release handed the slot over concurrently with the
			// cancellation. Pass it on so it is not leaked.
			l.mu.Unlock()
			l.Release()
		default:
			l.removeWaiter(ready)
			l.mu.Unlock()
		}

		return ctx.Err()
	}
}

// TryAcquire admits the caller if capacity remains, without blocking.
// It reports whether a slot was acquired.
func (l *CapacityLimiter) TryAcquire() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.inFlight < l.capacity {
		l.inFlight++
		l.hooks.emitAcquired()

		return true
	}

	return false
}

// Release returns the caller's slot. If waiters are queued the slot is
// transferred to the head waiter and the in-flight count is unchanged;
// otherwise the count decreases. Calling Release with no held slot is a
// programming error and panics with [ErrImbalancedRelease].
func (l *CapacityLimiter) Release() {
	l.mu.Lock()
	if l.inFlight == 0 {
		l.mu.Unlock()
		panic(ErrImbalancedRelease)
	}

	if len(l.waiters) > 0 {
		head := l.waiters[0]
		l.waiters = l.waiters[1:]
		close(head)
		l.mu.Unlock()
		l.hooks.emitReleased()

		return
	}

	l.inFlight--
	l.mu.Unlock()
	l.hooks.emitReleased()
}

// removeWaiter drops a cancelled waiter from the queue. Caller holds mu.
func (l *CapacityLimiter) removeWaiter(ready chan struct{}) {
	for i, w := range l.waiters {
		if w == ready {
			l.waiters = append(l.waiters[:i], l.waiters[i+1:]...)

			return
		}
	}
}

// Capacity returns the maximum number of concurrently admitted holders.
func (l *CapacityLimiter) Capacity() int { return l.capacity }

// InFlight returns a snapshot of the current number of admitted holders.
func (l *CapacityLimiter) InFlight() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.inFlight
}

// Available returns a snapshot of the number of free slots.
func (l *CapacityLimiter) Available() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.capacity - l.inFlight
}

// Waiting returns a snapshot of the number of queued acquirers.
func (l *CapacityLimiter) Waiting() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.waiters)
}
