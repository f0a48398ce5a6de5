package offload

import "fmt"

type (
	// offloadError is the concrete type backing all sentinel errors.
	offloadError string

	// PanicError reports a panic recovered from a blocking function
	// running on the worker pool. The original panic value and the
	// worker's stack trace are preserved so the defect is not lost
	// when the awaiting caller has already gone away.
	PanicError struct {
		Value any
		Stack []byte
	}
)

// Sentinel errors.
var (
	// ErrNotRegistered is returned when a name selector cannot be
	// resolved against the registry at call time. The returned error
	// wraps this sentinel and names the missing identifier.
	ErrNotRegistered error = offloadError("limiter not registered")
	// ErrImbalancedRelease is the panic value used when Release is
	// called on a limiter with no admitted holders.
	ErrImbalancedRelease error = offloadError("release without matching acquire")
	// ErrInvalidCapacity is the panic value used when a limiter is
	// constructed with a non-positive capacity, and the error returned
	// for a non-positive capacity in a configuration file.
	ErrInvalidCapacity error = offloadError("capacity must be at least 1")
	// ErrPoolClosed is returned by Submit after a pool has been closed.
	ErrPoolClosed error = offloadError("pool closed")
)

func (e offloadError) Error() string { return string(e) }

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

// Unwrap exposes the panic value when it is itself an error, so
// errors.Is and errors.As keep working through a recovered panic(err).
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}

	return nil
}
