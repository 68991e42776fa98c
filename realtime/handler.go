package realtime

import (
	"context"
	"encoding/json"
	"fmt"
)

// HandlerFunc handles one server event. Returning an error stops Run.
type HandlerFunc func(ctx context.Context, ev *ServerEvent) error

// FunctionCall is a completed function call from the model.
type FunctionCall struct {
	CallID     string
	Name       string
	Arguments  string
	ItemID     string
	ResponseID string
}

// Decode unmarshals the call arguments into v.
func (c FunctionCall) Decode(v any) error {
	if err := json.Unmarshal([]byte(c.Arguments), v); err != nil {
		return responseShapeError(fmt.Errorf("function %s arguments: %w", c.Name, err))
	}
	return nil
}

// EventHandler dispatches server events by type. Handlers registered for
// the same type run in registration order, after the OnAny handlers.
//
// Example:
//
//	h := realtime.NewEventHandler()
//	h.OnTextDelta(func(ctx context.Context, delta string) error {
//	    fmt.Print(delta)
//	    return nil
//	})
//	h.OnFunctionCall(func(ctx context.Context, call realtime.FunctionCall) error {
//	    return sess.SubmitFunctionOutput(ctx, call.CallID, lookup(call))
//	})
//	err := sess.Run(ctx, h)
type EventHandler struct {
	any    []HandlerFunc
	byType map[string][]HandlerFunc
}

// NewEventHandler returns an empty handler.
func NewEventHandler() *EventHandler {
	return &EventHandler{byType: make(map[string][]HandlerFunc)}
}

// On registers fn for events of the given type.
func (h *EventHandler) On(eventType string, fn HandlerFunc) *EventHandler {
	if h.byType == nil {
		h.byType = make(map[string][]HandlerFunc)
	}
	h.byType[eventType] = append(h.byType[eventType], fn)
	return h
}

// OnAny registers fn for every event.
func (h *EventHandler) OnAny(fn HandlerFunc) *EventHandler {
	h.any = append(h.any, fn)
	return h
}

// OnTextDelta receives streamed text.
func (h *EventHandler) OnTextDelta(fn func(ctx context.Context, delta string) error) *EventHandler {
	return h.On(EventResponseTextDelta, func(ctx context.Context, ev *ServerEvent) error {
		return fn(ctx, ev.Delta)
	})
}

// OnAudioDelta receives decoded audio chunks in the session's output format.
func (h *EventHandler) OnAudioDelta(fn func(ctx context.Context, audio []byte) error) *EventHandler {
	return h.On(EventResponseAudioDelta, func(ctx context.Context, ev *ServerEvent) error {
		audio, err := ev.AudioBytes()
		if err != nil {
			return err
		}
		return fn(ctx, audio)
	})
}

// OnTranscriptDelta receives the streamed transcript of the output audio.
func (h *EventHandler) OnTranscriptDelta(fn func(ctx context.Context, delta string) error) *EventHandler {
	return h.On(EventResponseAudioTranscriptDelta, func(ctx context.Context, ev *ServerEvent) error {
		return fn(ctx, ev.Delta)
	})
}

// OnFunctionCall receives each function call once its arguments are
// complete.
func (h *EventHandler) OnFunctionCall(fn func(ctx context.Context, call FunctionCall) error) *EventHandler {
	return h.On(EventResponseFunctionCallArgumentsDone, func(ctx context.Context, ev *ServerEvent) error {
		return fn(ctx, FunctionCall{
			CallID:     ev.CallID,
			Name:       ev.Name,
			Arguments:  ev.Arguments,
			ItemID:     ev.ItemID,
			ResponseID: ev.ResponseID,
		})
	})
}

// OnResponseDone receives every finished response, whatever its status.
func (h *EventHandler) OnResponseDone(fn func(ctx context.Context, resp *ResponseInfo) error) *EventHandler {
	return h.On(EventResponseDone, func(ctx context.Context, ev *ServerEvent) error {
		if ev.Response == nil {
			return responseShapeError(fmt.Errorf("%s without response", ev.Type))
		}
		return fn(ctx, ev.Response)
	})
}

// OnError receives error events as *oaikit.APIError values. Errors are
// reported, not fatal: the session stays open.
func (h *EventHandler) OnError(fn func(ctx context.Context, err error) error) *EventHandler {
	return h.On(EventError, func(ctx context.Context, ev *ServerEvent) error {
		return fn(ctx, ev.Err())
	})
}

// OnSpeechStarted is called when server VAD detects speech.
func (h *EventHandler) OnSpeechStarted(fn func(ctx context.Context, audioStartMs int) error) *EventHandler {
	return h.On(EventInputAudioBufferSpeechStarted, func(ctx context.Context, ev *ServerEvent) error {
		return fn(ctx, ev.AudioStartMs)
	})
}

// OnSessionUpdated receives the session resource after each update.
func (h *EventHandler) OnSessionUpdated(fn func(ctx context.Context, info *SessionInfo) error) *EventHandler {
	return h.On(EventSessionUpdated, func(ctx context.Context, ev *ServerEvent) error {
		if ev.Session == nil {
			return responseShapeError(fmt.Errorf("%s without session", ev.Type))
		}
		return fn(ctx, ev.Session)
	})
}

// Handle dispatches ev.
func (h *EventHandler) Handle(ctx context.Context, ev *ServerEvent) error {
	for _, fn := range h.any {
		if err := fn(ctx, ev); err != nil {
			return err
		}
	}
	for _, fn := range h.byType[ev.Type] {
		if err := fn(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}
