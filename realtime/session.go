package realtime

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mudler/xlog"

	oaikit "github.com/blue-context/oaikit"
	"github.com/blue-context/oaikit/callback"
	"github.com/blue-context/oaikit/provider"
	"github.com/blue-context/oaikit/types"
)

// betaHeader opts the WebSocket handshake into the realtime protocol.
const betaHeader = "realtime=v1"

type options struct {
	config    *SessionConfig
	transport Transport
	url       string
	header    http.Header
	dialer    *websocket.Dialer
	logger    *xlog.Logger
	callbacks *callback.Registry
	eventIDs  bool
}

// Option configures Connect.
type Option func(*options)

// WithSessionConfig sends cfg as session.update right after the session is
// created.
func WithSessionConfig(cfg SessionConfig) Option {
	return func(o *options) { o.config = &cfg }
}

// WithTransport uses an established transport, e.g. one from DialWebRTC,
// instead of dialing a WebSocket.
func WithTransport(t Transport) Option {
	return func(o *options) { o.transport = t }
}

// WithURL overrides the WebSocket URL derived from the provider.
func WithURL(url string) Option {
	return func(o *options) { o.url = url }
}

// WithHeader adds handshake headers.
func WithHeader(h http.Header) Option {
	return func(o *options) { o.header = h }
}

// WithDialer sets the WebSocket dialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(o *options) { o.dialer = d }
}

// WithLogger sets the session logger.
func WithLogger(l *xlog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithCallbacks runs the registry's realtime callbacks for every event sent
// and received.
func WithCallbacks(r *callback.Registry) Option {
	return func(o *options) { o.callbacks = r }
}

// WithClient shares the logger and callbacks of an HTTP client.
func WithClient(c *oaikit.Client) Option {
	return func(o *options) {
		o.logger = c.Logger()
		o.callbacks = c.Callbacks()
	}
}

// WithEventIDs stamps every client event with a generated event_id, which
// error events then reference.
func WithEventIDs(enabled bool) Option {
	return func(o *options) { o.eventIDs = enabled }
}

// Session is an open realtime session.
//
// Sends are serialised, so events reach the service in the order the
// methods are called. Recv (or Run) must be driven by a single goroutine;
// it keeps the response, input buffer and conversation state current.
//
// Example:
//
//	sess, err := realtime.Connect(ctx, client.Provider(), types.GPT4oRealtimePreview,
//	    realtime.WithClient(client),
//	    realtime.WithSessionConfig(realtime.SessionConfig{
//	        Modalities: []types.Modality{types.ModalityText},
//	    }),
//	)
//	if err != nil {
//	    return err
//	}
//	defer sess.Close()
//
//	sess.SendText(ctx, "Hello!")
//	sess.CreateResponse(ctx, nil)
type Session struct {
	transport Transport
	logger    *xlog.Logger
	callbacks *callback.Registry
	eventIDs  bool

	sendMu sync.Mutex

	mu   sync.RWMutex
	info SessionInfo

	responses    *ResponseTracker
	input        *InputBuffer
	conversation *Conversation

	closeOnce sync.Once
	closeErr  error
}

// Connect opens a session. Unless WithTransport is given it dials the
// provider's realtime WebSocket for model, authenticated by the provider.
//
// Connect waits for session.created. An error event instead fails with
// ErrRemote, any other event with ErrResponseShape. When a configuration
// was supplied it is then sent as session.update.
func Connect(ctx context.Context, p provider.Provider, model types.RealtimeModel, opts ...Option) (*Session, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = defaultLogger()
	}
	if model == "" {
		model = types.DefaultRealtimeModel
	}

	transport := o.transport
	if transport == nil {
		if p == nil {
			return nil, missingField("provider")
		}
		url := o.url
		if url == "" {
			url = p.RealtimeURL(string(model))
		}
		header := http.Header{}
		for k, vs := range o.header {
			header[k] = append([]string(nil), vs...)
		}
		p.Authorize(header)
		header.Set("OpenAI-Beta", betaHeader)

		ws, err := DialWebSocket(ctx, url, header, o.dialer)
		if err != nil {
			return nil, err
		}
		transport = ws
	}

	s := &Session{
		transport:    transport,
		logger:       o.logger,
		callbacks:    o.callbacks,
		eventIDs:     o.eventIDs,
		responses:    NewResponseTracker(),
		input:        NewInputBuffer(""),
		conversation: NewConversation(),
	}
	if err := s.awaitCreated(ctx); err != nil {
		_ = transport.Close()
		return nil, err
	}
	s.logger.Debug("realtime session created", "session_id", s.ID(), "model", s.Info().Model)

	if o.config != nil {
		if err := s.UpdateSession(ctx, *o.config); err != nil {
			_ = transport.Close()
			return nil, err
		}
	}
	return s, nil
}

func defaultLogger() *xlog.Logger {
	level := xlog.LogLevel(xlog.LogLevelWarn)
	handler := xlog.NewHandler(xlog.TextFormat, os.Stderr, &slog.HandlerOptions{Level: level.ToSlogLevel()})
	return xlog.NewLoggerWithHandler(handler, level)
}

func (s *Session) awaitCreated(ctx context.Context) error {
	ev, err := s.recvOne(ctx)
	if errors.Is(err, io.EOF) {
		return transportError(errors.New("connection closed before session.created"))
	}
	if err != nil {
		return err
	}
	switch ev.Type {
	case EventSessionCreated:
		return nil
	case EventError:
		if err := ev.Err(); err != nil {
			return err
		}
		return newError(oaikit.KindRemote, nil, "session rejected")
	}
	return responseShapeError(fmt.Errorf("expected %s, got %s", EventSessionCreated, ev.Type))
}

// ID returns the server-assigned session id.
func (s *Session) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info.ID
}

// Info returns the session resource from the latest session.created or
// session.updated.
func (s *Session) Info() SessionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info
}

// Responses returns the response state machine.
func (s *Session) Responses() *ResponseTracker { return s.responses }

// Input returns the input audio buffer state machine.
func (s *Session) Input() *InputBuffer { return s.input }

// Conversation returns the conversation mirror.
func (s *Session) Conversation() *Conversation { return s.conversation }

// State is a snapshot of the session's protocol state.
type State struct {
	SessionID  string
	Response   ResponseState
	ResponseID string
	Input      BufferState
	Items      int
}

// State returns a snapshot of the protocol state.
func (s *Session) State() State {
	return State{
		SessionID:  s.ID(),
		Response:   s.responses.State(),
		ResponseID: s.responses.ResponseID(),
		Input:      s.input.State(),
		Items:      s.conversation.Len(),
	}
}

// Send validates, encodes and sends a client event, then advances the local
// state machines.
func (s *Session) Send(ctx context.Context, ev ClientEvent) error {
	eventID := ""
	if s.eventIDs {
		eventID = "evt_" + uuid.NewString()
	}
	data, err := EncodeClientEvent(ev, eventID)
	if err != nil {
		return err
	}

	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := s.transport.Send(ctx, data); err != nil {
		s.logger.Error("realtime send failed", "type", ev.EventType(), "error", err)
		return err
	}
	s.logger.Debug("realtime event sent", "type", ev.EventType(), "event_id", eventID)

	switch e := ev.(type) {
	case InputAudioBufferAppend:
		s.input.Append(base64.StdEncoding.DecodedLen(len(e.Audio)))
	case InputAudioBufferCommit:
		s.input.Commit()
	case InputAudioBufferClear:
		s.input.Clear()
	case ResponseCreate:
		s.responses.Requested()
	case ResponseCancel:
		if id, ok := s.responses.Cancel(); ok {
			s.logger.Debug("realtime response cancelled locally", "response_id", id)
		}
	}
	s.emit(ctx, callback.DirectionSent, ev.EventType(), eventID, data)
	return nil
}

// Recv returns the next server event. Deltas of a response cancelled with
// CancelResponse are dropped. Error events are returned like any other
// event. Recv returns io.EOF once the service closed the session.
func (s *Session) Recv(ctx context.Context) (*ServerEvent, error) {
	for {
		ev, err := s.recvOne(ctx)
		if err != nil {
			return nil, err
		}
		if !s.responses.Observe(ev) {
			s.logger.Debug("dropping delta of cancelled response", "type", ev.Type, "response_id", ev.ResponseID)
			continue
		}
		s.input.Observe(ev)
		s.conversation.Observe(ev)
		if ev.Type == EventError && ev.Error != nil {
			s.logger.Warn("realtime error event", "code", ev.Error.Code, "message", ev.Error.Message, "event_id", ev.Error.EventID)
		}
		return ev, nil
	}
}

func (s *Session) recvOne(ctx context.Context) (*ServerEvent, error) {
	data, err := s.transport.Recv(ctx)
	if err != nil {
		if !errors.Is(err, io.EOF) {
			s.logger.Error("realtime receive failed", "error", err)
		}
		return nil, err
	}
	ev, err := ParseServerEvent(data)
	if err != nil {
		s.logger.Warn("undecodable realtime event", "error", err)
		return nil, err
	}
	if ev.Session != nil && (ev.Type == EventSessionCreated || ev.Type == EventSessionUpdated) {
		s.mu.Lock()
		s.info = *ev.Session
		s.mu.Unlock()
		s.input.SetFormat(ev.Session.Config.InputAudioFormat)
		s.responses.SetInterrupt(ev.Session.Config.TurnDetection.Interrupts())
	}
	s.logger.Debug("realtime event received", "type", ev.Type, "event_id", ev.EventID)
	s.emit(ctx, callback.DirectionReceived, ev.Type, ev.EventID, data)
	return ev, nil
}

func (s *Session) emit(ctx context.Context, dir callback.Direction, typ, eventID string, data []byte) {
	if s.callbacks == nil {
		return
	}
	s.callbacks.ExecuteRealtime(ctx, &callback.RealtimeEvent{
		SessionID: s.ID(),
		Direction: dir,
		Type:      typ,
		EventID:   eventID,
		Payload:   data,
		Timestamp: time.Now(),
	})
}

// UpdateSession sends session.update. Omitted fields keep their value.
func (s *Session) UpdateSession(ctx context.Context, cfg SessionConfig) error {
	return s.Send(ctx, SessionUpdate{Session: cfg})
}

// AppendAudio appends raw audio in the session's input format.
func (s *Session) AppendAudio(ctx context.Context, audio []byte) error {
	if len(audio) == 0 {
		return missingField("audio")
	}
	return s.AppendAudioBase64(ctx, base64.StdEncoding.EncodeToString(audio))
}

// AppendAudioBase64 appends base64-encoded audio.
func (s *Session) AppendAudioBase64(ctx context.Context, audio string) error {
	return s.Send(ctx, InputAudioBufferAppend{Audio: audio})
}

// CommitAudio commits the input buffer, creating a user message. It fails
// with ErrInvalidArgument when nothing was appended since the last commit.
func (s *Session) CommitAudio(ctx context.Context) error {
	if s.input.State() != BufferBuffering {
		return invalidArgument("input audio buffer is %s", s.input.State())
	}
	return s.Send(ctx, InputAudioBufferCommit{})
}

// ClearAudio discards the input buffer.
func (s *Session) ClearAudio(ctx context.Context) error {
	return s.Send(ctx, InputAudioBufferClear{})
}

// ClearOutputAudio stops audio playback. Only WebRTC sessions have an
// output audio buffer; on other transports it fails with
// ErrInvalidArgument.
func (s *Session) ClearOutputAudio(ctx context.Context) error {
	if !isPeerToPeer(s.transport) {
		return invalidArgument("%s requires a WebRTC transport", EventOutputAudioBufferClear)
	}
	return s.Send(ctx, OutputAudioBufferClear{})
}

// SendText adds a user text message to the conversation. It does not
// request a response.
func (s *Session) SendText(ctx context.Context, text string) error {
	if text == "" {
		return missingField("text")
	}
	return s.CreateItem(ctx, NewUserText(text), "")
}

// CreateItem inserts item after previousItemID, or at the end when it is
// empty.
func (s *Session) CreateItem(ctx context.Context, item Item, previousItemID string) error {
	return s.Send(ctx, ConversationItemCreate{PreviousItemID: previousItemID, Item: item})
}

// DeleteItem removes an item from the conversation.
func (s *Session) DeleteItem(ctx context.Context, itemID string) error {
	return s.Send(ctx, ConversationItemDelete{ItemID: itemID})
}

// RetrieveItem asks the service to send an item back as
// conversation.item.retrieved.
func (s *Session) RetrieveItem(ctx context.Context, itemID string) error {
	return s.Send(ctx, ConversationItemRetrieve{ItemID: itemID})
}

// TruncateItem cuts the audio of an assistant item at audioEndMs.
func (s *Session) TruncateItem(ctx context.Context, itemID string, contentIndex, audioEndMs int) error {
	return s.Send(ctx, ConversationItemTruncate{ItemID: itemID, ContentIndex: contentIndex, AudioEndMs: audioEndMs})
}

// SubmitFunctionOutput adds the output of the function call callID.
func (s *Session) SubmitFunctionOutput(ctx context.Context, callID, output string) error {
	return s.CreateItem(ctx, NewFunctionOutputItem(callID, output), "")
}

// CreateResponse requests a response. A nil cfg uses the session defaults.
func (s *Session) CreateResponse(ctx context.Context, cfg *ResponseConfig) error {
	return s.Send(ctx, ResponseCreate{Response: cfg})
}

// CancelResponse cancels the current response. Deltas of that response that
// are still in flight are dropped by Recv.
func (s *Session) CancelResponse(ctx context.Context) error {
	return s.Send(ctx, ResponseCancel{})
}

// Run receives events and dispatches them to h until the context ends, the
// session closes (Run then returns nil) or a handler returns an error.
func (s *Session) Run(ctx context.Context, h *EventHandler) error {
	if h == nil {
		return missingField("event handler")
	}
	for {
		ev, err := s.Recv(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := h.Handle(ctx, ev); err != nil {
			return err
		}
	}
}

// Close closes the transport. It is safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.transport.Close()
		s.logger.Debug("realtime session closed", "session_id", s.ID())
	})
	return s.closeErr
}
