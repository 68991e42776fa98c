package metrics

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	oaikit "github.com/blue-context/oaikit"
	"github.com/blue-context/oaikit/callback"
)

// ErrBudgetExceeded is returned, wrapped in the request error, when a
// request is attempted after the token budget is spent.
var ErrBudgetExceeded = errors.New("token budget exceeded")

// TokenBudget tracks the tokens reported by responses and refuses new
// requests once a limit is reached. Requests already in flight are not
// interrupted, so usage can overshoot the limit by one response.
//
// Thread Safety: TokenBudget is safe for concurrent use.
type TokenBudget struct {
	mu      sync.RWMutex
	max     int
	used    int
	byModel map[string]int
}

// NewTokenBudget creates a budget of max tokens. A max of 0 means no limit;
// usage is still tracked.
func NewTokenBudget(max int) *TokenBudget {
	return &TokenBudget{max: max, byModel: make(map[string]int)}
}

// Record adds tokens used by model.
func (b *TokenBudget) Record(model string, tokens int) {
	if tokens <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.used += tokens
	b.byModel[model] += tokens
}

// Check fails with ErrBudgetExceeded when the budget is spent.
func (b *TokenBudget) Check() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.max > 0 && b.used >= b.max {
		return fmt.Errorf("%w: used %d of %d tokens", ErrBudgetExceeded, b.used, b.max)
	}
	return nil
}

// Used returns the tokens recorded so far.
func (b *TokenBudget) Used() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.used
}

// Remaining returns the tokens left, or -1 without a limit.
func (b *TokenBudget) Remaining() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.max == 0 {
		return -1
	}
	return max(b.max-b.used, 0)
}

// ByModel returns the usage breakdown by model.
func (b *TokenBudget) ByModel() map[string]int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return maps.Clone(b.byModel)
}

// Reset clears the recorded usage.
func (b *TokenBudget) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.used = 0
	b.byModel = make(map[string]int)
}

// Registry returns callbacks that check the budget before each request and
// record usage after each success.
func (b *TokenBudget) Registry() *callback.Registry {
	r := callback.NewRegistry()
	r.RegisterBeforeRequest(func(context.Context, *callback.BeforeRequestEvent) error {
		return b.Check()
	})
	r.RegisterSuccess(func(_ context.Context, ev *callback.SuccessEvent) {
		b.Record(ev.Model, ev.Tokens)
	})
	return r
}

// Attach appends the budget's callbacks to client options.
func (b *TokenBudget) Attach(opts ...oaikit.ClientOption) []oaikit.ClientOption {
	return append(opts, oaikit.WithCallbacks(b.Registry()))
}
