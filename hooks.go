package offload

import "time"

// Hooks holds optional callback functions for limiter and adapter
// lifecycle events. All fields are nil by default; callers set only the
// hooks they care about. Once constructed, a Hooks value must not be
// mutated — emit methods read the function fields without
// synchronisation, which is safe as long as the struct is read-only
// after initialisation.
//
// Pattern: Observer — decouples event emission from consumers (logging,
// metrics, alerting) without the limiter knowing about observers.
type Hooks struct {
	OnAcquired      func()
	OnWaiting       func()
	OnReleased      func()
	OnRejected      func(name string)
	OnTaskSubmitted func()
	OnTaskDone      func(d time.Duration, err error)
}

// Emit methods tolerate a nil receiver so a nil *Hooks is a valid
// "no observer" value throughout the package.

func (h *Hooks) emitAcquired() {
	if h != nil && h.OnAcquired != nil {
		h.OnAcquired()
	}
}

func (h *Hooks) emitWaiting() {
	if h != nil && h.OnWaiting != nil {
		h.OnWaiting()
	}
}

func (h *Hooks) emitReleased() {
	if h != nil && h.OnReleased != nil {
		h.OnReleased()
	}
}

func (h *Hooks) emitRejected(name string) {
	if h != nil && h.OnRejected != nil {
		h.OnRejected(name)
	}
}

func (h *Hooks) emitTaskSubmitted() {
	if h != nil && h.OnTaskSubmitted != nil {
		h.OnTaskSubmitted()
	}
}

func (h *Hooks) emitTaskDone(d time.Duration, err error) {
	if h != nil && h.OnTaskDone != nil {
		h.OnTaskDone(d, err)
	}
}
