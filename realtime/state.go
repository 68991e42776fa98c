package realtime

import (
	"sync"
	"time"

	"github.com/emirpasic/gods/v2/queues/circularbuffer"

	"github.com/blue-context/oaikit/types"
)

// ResponseState is the lifecycle state of the current response.
type ResponseState int

const (
	// ResponseIdle: no response has been requested yet.
	ResponseIdle ResponseState = iota
	// ResponseCreating: response.create was sent or the server announced an
	// automatic response, and no output has streamed yet.
	ResponseCreating
	// ResponseStreaming: output items or deltas are arriving.
	ResponseStreaming
	// ResponseDone: response.done arrived.
	ResponseDone
	// ResponseCancelled: the response was cancelled locally or by the server.
	ResponseCancelled
)

// String returns the state name.
func (s ResponseState) String() string {
	switch s {
	case ResponseIdle:
		return "idle"
	case ResponseCreating:
		return "creating"
	case ResponseStreaming:
		return "streaming"
	case ResponseDone:
		return "done"
	case ResponseCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Active reports whether a response is being generated.
func (s ResponseState) Active() bool {
	return s == ResponseCreating || s == ResponseStreaming
}

// cancelledHistory bounds the number of cancelled response ids remembered
// for delta suppression.
const cancelledHistory = 16

// ResponseTracker follows the response state machine
// idle → creating → streaming → done | cancelled.
//
// After a local cancel, deltas that still arrive for the cancelled response
// are reported as not deliverable by Observe.
//
// Thread Safety: ResponseTracker is safe for concurrent use.
type ResponseTracker struct {
	mu            sync.Mutex
	state         ResponseState
	id            string
	cancelPending bool
	interrupt     bool
	cancelled     *circularbuffer.Queue[string]
}

// NewResponseTracker returns a tracker in the idle state.
func NewResponseTracker() *ResponseTracker {
	return &ResponseTracker{cancelled: circularbuffer.New[string](cancelledHistory)}
}

// State returns the current state.
func (t *ResponseTracker) State() ResponseState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// ResponseID returns the id of the current or last response.
func (t *ResponseTracker) ResponseID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.id
}

// SetInterrupt records whether detected user speech cancels the current
// response, as configured by turn detection.
func (t *ResponseTracker) SetInterrupt(interrupt bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.interrupt = interrupt
}

// Requested records a sent response.create.
func (t *ResponseTracker) Requested() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.state.Active() {
		t.state = ResponseCreating
		t.id = ""
		t.cancelPending = false
	}
}

// Cancel records a sent response.cancel. It returns the id of the cancelled
// response, if known, and false when no response was active.
func (t *ResponseTracker) Cancel() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelLocked()
}

func (t *ResponseTracker) cancelLocked() (string, bool) {
	if !t.state.Active() {
		return "", false
	}
	t.state = ResponseCancelled
	if t.id == "" {
		t.cancelPending = true
		return "", true
	}
	t.cancelled.Enqueue(t.id)
	return t.id, true
}

// Cancelled reports whether the response with the given id was cancelled
// locally.
func (t *ResponseTracker) Cancelled(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.isCancelled(id)
}

func (t *ResponseTracker) isCancelled(id string) bool {
	if id == "" {
		return false
	}
	for _, c := range t.cancelled.Values() {
		if c == id {
			return true
		}
	}
	return false
}

// Observe advances the state machine with a server event. It returns false
// for deltas of a locally cancelled response, which callers should drop.
func (t *ResponseTracker) Observe(ev *ServerEvent) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := ev.responseID()
	switch ev.Type {
	case EventResponseCreated:
		t.id = id
		if t.cancelPending {
			t.cancelPending = false
			t.cancelled.Enqueue(id)
			t.state = ResponseCancelled
			return true
		}
		t.state = ResponseCreating

	case EventResponseDone, EventResponseCancelled:
		if id != t.id && t.id != "" {
			return true
		}
		if t.state == ResponseCancelled || ev.Type == EventResponseCancelled ||
			(ev.Response != nil && ev.Response.Status == types.ResponseCancelled) {
			t.state = ResponseCancelled
		} else {
			t.state = ResponseDone
		}

	case EventInputAudioBufferSpeechStarted:
		if t.interrupt {
			t.cancelLocked()
		}

	case EventResponseOutputItemAdded, EventResponseContentPartAdded:
		if id == t.id && t.state == ResponseCreating {
			t.state = ResponseStreaming
		}

	default:
		if !ev.IsDelta() {
			return true
		}
		if t.isCancelled(id) {
			return false
		}
		if id == t.id && t.state == ResponseCreating {
			t.state = ResponseStreaming
		}
	}
	return true
}

// BufferState is the state of the input audio buffer.
type BufferState int

const (
	// BufferEmpty: nothing appended since the last commit or clear.
	BufferEmpty BufferState = iota
	// BufferBuffering: audio has been appended.
	BufferBuffering
	// BufferCommitted: the audio was committed and the user message item
	// has not been created yet.
	BufferCommitted
)

// String returns the state name.
func (s BufferState) String() string {
	switch s {
	case BufferEmpty:
		return "empty"
	case BufferBuffering:
		return "buffering"
	case BufferCommitted:
		return "committed"
	}
	return "unknown"
}

// InputBuffer follows the input audio buffer state machine
// empty → buffering → committed → empty.
//
// Thread Safety: InputBuffer is safe for concurrent use.
type InputBuffer struct {
	mu     sync.Mutex
	state  BufferState
	bytes  int
	itemID string
	format types.RealtimeAudioFormat
}

// NewInputBuffer returns an empty buffer holding audio in format.
func NewInputBuffer(format types.RealtimeAudioFormat) *InputBuffer {
	if format == "" {
		format = types.DefaultRealtimeAudioFormat
	}
	return &InputBuffer{format: format}
}

// State returns the current state.
func (b *InputBuffer) State() BufferState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Len returns the number of audio bytes appended since the last commit or
// clear.
func (b *InputBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bytes
}

// Duration returns the playing time of the buffered audio.
func (b *InputBuffer) Duration() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return AudioDuration(b.format, b.bytes)
}

// ItemID returns the id of the user item created by the last commit.
func (b *InputBuffer) ItemID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.itemID
}

// SetFormat changes the audio format used by Duration.
func (b *InputBuffer) SetFormat(format types.RealtimeAudioFormat) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if format != "" {
		b.format = format
	}
}

// Append records n appended bytes.
func (b *InputBuffer) Append(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != BufferBuffering {
		b.bytes = 0
	}
	b.state = BufferBuffering
	b.bytes += n
}

// Commit records a sent input_audio_buffer.commit.
func (b *InputBuffer) Commit() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == BufferBuffering {
		b.state = BufferCommitted
	}
}

// Clear records a sent input_audio_buffer.clear.
func (b *InputBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = BufferEmpty
	b.bytes = 0
}

// Observe advances the state machine with a server event.
func (b *InputBuffer) Observe(ev *ServerEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch ev.Type {
	case EventInputAudioBufferCommitted:
		// server VAD commits on its own
		b.state = BufferCommitted
		b.itemID = ev.ItemID
		b.bytes = 0
	case EventInputAudioBufferCleared:
		b.state = BufferEmpty
		b.bytes = 0
	case EventConversationItemCreated:
		if b.state == BufferCommitted && ev.Item != nil && ev.Item.ID == b.itemID {
			b.state = BufferEmpty
		}
	}
}

// AudioDuration returns the playing time of n bytes of audio in format.
func AudioDuration(format types.RealtimeAudioFormat, n int) time.Duration {
	bytesPerSecond := 2 * types.DefaultRealtimeAudioFormat.SampleRate()
	if format == types.RealtimeAudioG711ULaw || format == types.RealtimeAudioG711ALaw {
		bytesPerSecond = format.SampleRate()
	}
	return time.Duration(n) * time.Second / time.Duration(bytesPerSecond)
}
