// Package offload bridges blocking calls into awaitable ones while
// bounding how many may run concurrently per named resource class.
//
// The central types are [CapacityLimiter], a FIFO-fair admission gate;
// [Registry], a name-keyed store of limiters with a scoped lifecycle;
// and the [Call] / [Wrap] adapters, which run a blocking function on a
// worker [Pool] gated by a selected limiter and deliver its result or
// error to the awaiting caller.
package offload
