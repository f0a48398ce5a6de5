package offload

import "sync"

// Pool runs blocking tasks outside the calling goroutine. A Pool's
// sizing and lifecycle are its own concern; the adapter only needs
// Submit.
type Pool interface {
	// Submit schedules task for execution and returns without waiting
	// for it to run. After the pool is closed, Submit returns
	// [ErrPoolClosed] and the task is not run.
	Submit(task func()) error
}

// GoPool is the default Pool: one goroutine per task, no queue and no
// upper bound. The runtime's scheduler is the worker pool.
type GoPool struct{}

// Submit starts task on its own goroutine. It never fails.
func (GoPool) Submit(task func()) error {
	go task()

	return nil
}

//nolint:gochecknoglobals // default pool for Call/Wrap without WithPool
var defaultPool Pool = GoPool{}

// FixedPool runs tasks on a fixed set of worker goroutines fed from a
// bounded queue. Use it when the number of OS threads consumed by
// blocking work must be capped independently of any limiter.
type FixedPool struct {
	tasks  chan func()
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

// NewFixedPool starts workers goroutines draining a queue of at most
// queueDepth pending tasks. workers is clamped to at least 1;
// queueDepth to at least 0 (a rendezvous queue).
func NewFixedPool(workers, queueDepth int) *FixedPool {
	if workers < 1 {
		workers = 1
	}

	if queueDepth < 0 {
		queueDepth = 0
	}

	p := &FixedPool{tasks: make(chan func(), queueDepth)}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}

	return p
}

func (p *FixedPool) worker() {
	defer p.wg.Done()

	for task := range p.tasks {
		task()
	}
}

// Submit enqueues task, blocking while the queue is full. It returns
// [ErrPoolClosed] once [FixedPool.Close] has been called.
func (p *FixedPool) Submit(task func()) error {
	// The read lock is held across the send so Close cannot close the
	// channel while a Submit is mid-send.
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	p.tasks <- task

	return nil
}

// Close stops intake and blocks until queued and in-flight tasks have
// drained. Close is idempotent.
func (p *FixedPool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()

		return
	}

	p.closed = true
	p.mu.Unlock()

	close(p.tasks)
	p.wg.Wait()
}
