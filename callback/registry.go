package callback

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/mudler/xlog"
)

// Registry holds the registered callbacks.
//
// Execution uses the snapshot pattern: the callback list is copied under a
// read lock and run without holding it, so callbacks may register further
// callbacks without deadlocking.
//
// Thread Safety: Safe for concurrent use.
//
// Example:
//
//	registry := callback.NewRegistry()
//	registry.RegisterBeforeRequest(myCallback)
//	err := registry.ExecuteBeforeRequest(ctx, event)
type Registry struct {
	beforeRequest []BeforeRequestCallback
	success       []SuccessCallback
	failure       []FailureCallback
	realtime      []RealtimeCallback
	mu            sync.RWMutex
}

// NewRegistry creates an empty callback registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// RegisterBeforeRequest registers a before-request callback. Nil is ignored.
func (r *Registry) RegisterBeforeRequest(cb BeforeRequestCallback) {
	if cb == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beforeRequest = append(r.beforeRequest, cb)
}

// RegisterSuccess registers a success callback. Nil is ignored.
func (r *Registry) RegisterSuccess(cb SuccessCallback) {
	if cb == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.success = append(r.success, cb)
}

// RegisterFailure registers a failure callback. Nil is ignored.
func (r *Registry) RegisterFailure(cb FailureCallback) {
	if cb == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failure = append(r.failure, cb)
}

// RegisterRealtime registers a realtime event callback. Nil is ignored.
//
// Example:
//
//	registry.RegisterRealtime(func(ctx context.Context, event *RealtimeEvent) {
//	    log.Printf("%s %s", event.Direction, event.Type)
//	})
func (r *Registry) RegisterRealtime(cb RealtimeCallback) {
	if cb == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.realtime = append(r.realtime, cb)
}

// Merge appends every callback of other to r, keeping registration order.
func (r *Registry) Merge(other *Registry) {
	if other == nil || other == r {
		return
	}
	other.mu.RLock()
	before := slices.Clone(other.beforeRequest)
	success := slices.Clone(other.success)
	failure := slices.Clone(other.failure)
	realtime := slices.Clone(other.realtime)
	other.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.beforeRequest = append(r.beforeRequest, before...)
	r.success = append(r.success, success...)
	r.failure = append(r.failure, failure...)
	r.realtime = append(r.realtime, realtime...)
}

// ExecuteBeforeRequest runs every before-request callback in registration order.
//
// All callbacks run even when one fails; the errors are joined. A panic in a
// callback becomes an error. Context cancellation stops execution and is
// returned.
func (r *Registry) ExecuteBeforeRequest(ctx context.Context, event *BeforeRequestEvent) error {
	r.mu.RLock()
	callbacks := slices.Clone(r.beforeRequest)
	r.mu.RUnlock()

	if len(callbacks) == 0 {
		return nil
	}

	var errs []error
	for _, cb := range callbacks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := func() (callbackErr error) {
			defer func() {
				if rec := recover(); rec != nil {
					callbackErr = fmt.Errorf("callback panic: %v", rec)
				}
			}()
			return cb(ctx, event)
		}(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("before-request callbacks failed: %w", errors.Join(errs...))
	}
	return nil
}

// ExecuteSuccess runs every success callback. Panics are recovered and logged.
func (r *Registry) ExecuteSuccess(ctx context.Context, event *SuccessEvent) {
	r.mu.RLock()
	callbacks := slices.Clone(r.success)
	r.mu.RUnlock()
	runInformational(ctx, "success", callbacks, event)
}

// ExecuteFailure runs every failure callback. Panics are recovered and logged.
func (r *Registry) ExecuteFailure(ctx context.Context, event *FailureEvent) {
	r.mu.RLock()
	callbacks := slices.Clone(r.failure)
	r.mu.RUnlock()
	runInformational(ctx, "failure", callbacks, event)
}

// ExecuteRealtime runs every realtime callback. Panics are recovered and logged
// so a faulty hook never interrupts a session.
func (r *Registry) ExecuteRealtime(ctx context.Context, event *RealtimeEvent) {
	r.mu.RLock()
	callbacks := slices.Clone(r.realtime)
	r.mu.RUnlock()
	runInformational(ctx, "realtime", callbacks, event)
}

// runInformational executes callbacks whose outcome cannot affect the caller.
func runInformational[E any, F ~func(context.Context, *E)](ctx context.Context, kind string, callbacks []F, event *E) {
	for _, cb := range callbacks {
		if ctx.Err() != nil {
			return
		}
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					xlog.Warn("callback panicked", "kind", kind, "panic", rec)
				}
			}()
			cb(ctx, event)
		}()
	}
}
