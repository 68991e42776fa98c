package callback

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/blue-context/oaikit/internal/testutil"
)

func TestRegistry_RegisterIgnoresNil(t *testing.T) {
	registry := NewRegistry()
	registry.RegisterBeforeRequest(nil)
	registry.RegisterSuccess(nil)
	registry.RegisterFailure(nil)
	registry.RegisterRealtime(nil)

	if len(registry.beforeRequest)+len(registry.success)+len(registry.failure)+len(registry.realtime) != 0 {
		t.Error("nil callbacks must not be registered")
	}
}

func TestRegistry_ExecuteBeforeRequest(t *testing.T) {
	tests := []struct {
		name      string
		callbacks []BeforeRequestCallback
		wantErr   string
		wantCalls int32
	}{
		{
			name:    "no callbacks",
			wantErr: "",
		},
		{
			name: "all succeed",
			callbacks: []BeforeRequestCallback{
				func(ctx context.Context, event *BeforeRequestEvent) error { return nil },
				func(ctx context.Context, event *BeforeRequestEvent) error { return nil },
			},
			wantCalls: 2,
		},
		{
			name: "one fails, all run",
			callbacks: []BeforeRequestCallback{
				func(ctx context.Context, event *BeforeRequestEvent) error { return errors.New("quota exhausted") },
				func(ctx context.Context, event *BeforeRequestEvent) error { return nil },
			},
			wantErr:   "quota exhausted",
			wantCalls: 2,
		},
		{
			name: "panic becomes error",
			callbacks: []BeforeRequestCallback{
				func(ctx context.Context, event *BeforeRequestEvent) error { panic("boom") },
			},
			wantErr:   "callback panic: boom",
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewRegistry()
			var calls int32
			for _, cb := range tt.callbacks {
				cb := cb
				registry.RegisterBeforeRequest(func(ctx context.Context, event *BeforeRequestEvent) error {
					atomic.AddInt32(&calls, 1)
					return cb(ctx, event)
				})
			}

			err := registry.ExecuteBeforeRequest(context.Background(), &BeforeRequestEvent{
				RequestID: "req_1",
				Endpoint:  "chat/completions",
				Method:    "POST",
				StartTime: time.Now(),
			})

			if tt.wantErr == "" && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != "" && (err == nil || !strings.Contains(err.Error(), tt.wantErr)) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRegistry_ExecuteBeforeRequestCancelled(t *testing.T) {
	registry := NewRegistry()
	called := false
	registry.RegisterBeforeRequest(func(ctx context.Context, event *BeforeRequestEvent) error {
		called = true
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := registry.ExecuteBeforeRequest(ctx, &BeforeRequestEvent{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if called {
		t.Error("callback ran after cancellation")
	}
}

func TestRegistry_InformationalCallbacks(t *testing.T) {
	registry := NewRegistry()

	var got []string
	registry.RegisterSuccess(func(ctx context.Context, event *SuccessEvent) {
		got = append(got, "success:"+event.Endpoint)
	})
	registry.RegisterSuccess(func(ctx context.Context, event *SuccessEvent) {
		panic("ignored")
	})
	registry.RegisterSuccess(func(ctx context.Context, event *SuccessEvent) {
		got = append(got, "after-panic")
	})
	registry.RegisterFailure(func(ctx context.Context, event *FailureEvent) {
		got = append(got, "failure:"+event.Error.Error())
	})
	registry.RegisterRealtime(func(ctx context.Context, event *RealtimeEvent) {
		got = append(got, string(event.Direction)+":"+event.Type)
	})

	ctx := context.Background()
	assert := testutil.New(t)
	assert.NotPanics(func() {
		registry.ExecuteSuccess(ctx, &SuccessEvent{Endpoint: "embeddings", StatusCode: 200})
		registry.ExecuteFailure(ctx, &FailureEvent{Endpoint: "embeddings", Error: errors.New("429")})
		registry.ExecuteRealtime(ctx, &RealtimeEvent{Direction: DirectionReceived, Type: "session.created"})
	})

	want := []string{"success:embeddings", "after-panic", "failure:429", "received:session.created"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRegistry_Merge(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()
	var n int32
	b.RegisterRealtime(func(ctx context.Context, event *RealtimeEvent) { atomic.AddInt32(&n, 1) })
	b.RegisterSuccess(func(ctx context.Context, event *SuccessEvent) { atomic.AddInt32(&n, 10) })

	a.Merge(b)
	a.Merge(a)
	a.Merge(nil)

	a.ExecuteRealtime(context.Background(), &RealtimeEvent{})
	a.ExecuteSuccess(context.Background(), &SuccessEvent{})
	if n != 11 {
		t.Errorf("n = %d, want 11", n)
	}
}

func TestRegistry_ConcurrentRegistrationAndExecution(t *testing.T) {
	registry := NewRegistry()
	var wg sync.WaitGroup
	var executed int32

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			registry.RegisterRealtime(func(ctx context.Context, event *RealtimeEvent) {
				atomic.AddInt32(&executed, 1)
			})
		}()
		go func() {
			defer wg.Done()
			registry.ExecuteRealtime(context.Background(), &RealtimeEvent{Type: "response.done"})
		}()
	}
	wg.Wait()

	registry.mu.RLock()
	count := len(registry.realtime)
	registry.mu.RUnlock()
	if count != 50 {
		t.Errorf("registered %d realtime callbacks, want 50", count)
	}
}
