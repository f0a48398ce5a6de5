package offload

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"
)

// selectorKind discriminates the limiter selector variants.
type selectorKind int

const (
	selectorNone selectorKind = iota
	selectorDirect
	selectorNamed
)

// selector is the limiter selection captured at wrap time: no limiter,
// a direct instance, or a name resolved against a registry per call.
type selector struct {
	kind    selectorKind
	limiter *CapacityLimiter
	name    string
}

// settings holds the resolved configuration for Call and Wrap.
type settings struct {
	sel      selector
	registry *Registry
	pool     Pool
	hooks    *Hooks
}

// Option configures [Call] and [Wrap].
type Option func(*settings)

// WithLimiter gates calls by lim directly.
func WithLimiter(lim *CapacityLimiter) Option {
	return func(s *settings) {
		s.sel = selector{kind: selectorDirect, limiter: lim}
	}
}

// WithLimiterName gates calls by the limiter registered under name.
// The name is resolved on every invocation, not at wrap time, so a
// single wrapper observes registrations, replacements and removals
// made over the name's whole lifecycle.
func WithLimiterName(name string) Option {
	return func(s *settings) {
		s.sel = selector{kind: selectorNamed, name: name}
	}
}

// WithRegistry sets the registry name selectors resolve against.
// Defaults to [DefaultRegistry].
func WithRegistry(r *Registry) Option {
	return func(s *settings) { s.registry = r }
}

// WithPool sets the worker pool blocking functions run on. Defaults to
// [GoPool].
func WithPool(p Pool) Option {
	return func(s *settings) { s.pool = p }
}

// WithHooks sets the lifecycle hooks for adapter events. Limiter-level
// events are emitted by the limiter's own hooks, not these.
func WithHooks(h *Hooks) Option {
	return func(s *settings) { s.hooks = h }
}

func newSettings(opts []Option) settings {
	s := settings{pool: defaultPool}
	for _, opt := range opts {
		opt(&s)
	}

	if s.registry == nil {
		s.registry = DefaultRegistry()
	}

	return s
}

// resolve maps the selector to the effective limiter for one
// invocation. A nil limiter with a nil error means the call is
// unbounded.
func (s *settings) resolve() (*CapacityLimiter, error) {
	switch s.sel.kind {
	case selectorDirect:
		return s.sel.limiter, nil

	case selectorNamed:
		lim, ok := s.registry.Lookup(s.sel.name)
		if !ok {
			s.hooks.emitRejected(s.sel.name)

			return nil, fmt.Errorf("offload: limiter %q: %w", s.sel.name, ErrNotRegistered)
		}

		return lim, nil

	default: // selectorNone
		return nil, nil
	}
}

// outcome carries a blocking function's result from the worker to the
// awaiting caller.
type outcome[T any] struct {
	val T
	err error
}

// Call runs the blocking fn on the worker pool, gated by the selected
// limiter, and blocks the calling goroutine until fn completes or ctx
// is done. fn's return value and error are delivered verbatim.
//
// If ctx is cancelled while queued on the limiter, the call fails with
// ctx.Err() and no work is dispatched. If ctx is cancelled after
// dispatch, Call returns ctx.Err() immediately but fn is not
// interrupted — blocking calls cannot generally be preempted — and the
// limiter slot is released when fn eventually finishes, so a slot is
// never leaked.
func Call[T any](ctx context.Context, fn func() (T, error), opts ...Option) (T, error) {
	s := newSettings(opts)

	return dispatch(ctx, &s, fn)
}

// Wrap turns a blocking function into an awaitable one. The options are
// captured once; name selectors are still re-resolved on every
// invocation. Functions taking several parameters pass them as a
// struct; zero-parameter functions are more direct through [Call].
func Wrap[A, T any](fn func(A) (T, error), opts ...Option) func(context.Context, A) (T, error) {
	s := newSettings(opts)

	return func(ctx context.Context, arg A) (T, error) {
		return dispatch(ctx, &s, func() (T, error) { return fn(arg) })
	}
}

func dispatch[T any](ctx context.Context, s *settings, fn func() (T, error)) (T, error) {
	var zero T

	lim, err := s.resolve()
	if err != nil {
		return zero, err
	}

	if lim != nil {
		if err = lim.Acquire(ctx); err != nil {
			return zero, err
		}
	}

	done := make(chan outcome[T], 1)
	start := time.Now()

	err = s.pool.Submit(func() {
		out := invoke(fn)

		// Release before delivering the outcome, so a resumed waiter
		// can never observe the slot still held by a finished call.
		if lim != nil {
			lim.Release()
		}

		s.hooks.emitTaskDone(time.Since(start), out.err)
		done <- out
	})
	if err != nil {
		if lim != nil {
			lim.Release()
		}

		return zero, err
	}

	s.hooks.emitTaskSubmitted()

	select {
	case out := <-done:
		return out.val, out.err

	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// invoke runs fn, converting a panic into a [*PanicError] so a failure
// on the worker is always delivered through the result channel instead
// of killing the pool goroutine.
func invoke[T any](fn func() (T, error)) (out outcome[T]) {
	defer func() {
		if r := recover(); r != nil {
			out.err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()

	out.val, out.err = fn()

	return out
}
