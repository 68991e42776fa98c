package realtime

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"

	"github.com/tidwall/gjson"

	oaikit "github.com/blue-context/oaikit"
	"github.com/blue-context/oaikit/types"
)

// Server event types (sent from server to client).
const (
	EventError = "error"

	EventSessionCreated = "session.created"
	EventSessionUpdated = "session.updated"

	EventConversationCreated                = "conversation.created"
	EventConversationItemCreated            = "conversation.item.created"
	EventConversationItemRetrieved          = "conversation.item.retrieved"
	EventConversationItemDeleted            = "conversation.item.deleted"
	EventConversationItemTruncated          = "conversation.item.truncated"
	EventInputAudioTranscriptionCompleted   = "conversation.item.input_audio_transcription.completed"
	EventInputAudioTranscriptionFailed      = "conversation.item.input_audio_transcription.failed"
	EventInputAudioBufferCommitted          = "input_audio_buffer.committed"
	EventInputAudioBufferCleared            = "input_audio_buffer.cleared"
	EventInputAudioBufferSpeechStarted      = "input_audio_buffer.speech_started"
	EventInputAudioBufferSpeechStopped      = "input_audio_buffer.speech_stopped"
	EventOutputAudioBufferStarted           = "output_audio_buffer.started"
	EventOutputAudioBufferStopped           = "output_audio_buffer.stopped"
	EventOutputAudioBufferCleared           = "output_audio_buffer.cleared"
	EventResponseCreated                    = "response.created"
	EventResponseDone                       = "response.done"
	EventResponseCancelled                  = "response.cancelled"
	EventResponseOutputItemAdded            = "response.output_item.added"
	EventResponseOutputItemDone             = "response.output_item.done"
	EventResponseContentPartAdded           = "response.content_part.added"
	EventResponseContentPartDone            = "response.content_part.done"
	EventResponseTextDelta                  = "response.text.delta"
	EventResponseTextDone                   = "response.text.done"
	EventResponseAudioDelta                 = "response.audio.delta"
	EventResponseAudioDone                  = "response.audio.done"
	EventResponseAudioTranscriptDelta       = "response.audio_transcript.delta"
	EventResponseAudioTranscriptDone        = "response.audio_transcript.done"
	EventResponseFunctionCallArgumentsDelta = "response.function_call_arguments.delta"
	EventResponseFunctionCallArgumentsDone  = "response.function_call_arguments.done"
	EventRateLimitsUpdated                  = "rate_limits.updated"
)

// ServerEvent is an event received from the service. Only the fields of the
// event's Type are set; Raw keeps the original frame.
type ServerEvent struct {
	Type    string `json:"type"`
	EventID string `json:"event_id,omitempty"`

	// Session is set on session.created and session.updated.
	Session *SessionInfo `json:"session,omitempty"`

	// Conversation is set on conversation.created.
	Conversation *ConversationInfo `json:"conversation,omitempty"`

	// Item is set on conversation.item.* and response.output_item.* events.
	Item *Item `json:"item,omitempty"`

	PreviousItemID string `json:"previous_item_id,omitempty"`
	ItemID         string `json:"item_id,omitempty"`
	ContentIndex   int    `json:"content_index,omitempty"`
	OutputIndex    int    `json:"output_index,omitempty"`
	AudioStartMs   int    `json:"audio_start_ms,omitempty"`
	AudioEndMs     int    `json:"audio_end_ms,omitempty"`

	// Transcript is set on transcription and audio transcript done events.
	Transcript string `json:"transcript,omitempty"`

	// Error is set on error events and on failed transcriptions.
	Error *ErrorDetail `json:"error,omitempty"`

	// Response is set on response.created and response.done.
	Response   *ResponseInfo `json:"response,omitempty"`
	ResponseID string        `json:"response_id,omitempty"`

	// Part is set on response.content_part.* events.
	Part *oaikit.ContentPart `json:"part,omitempty"`

	// Delta carries text, base64 audio or argument fragments.
	Delta string `json:"delta,omitempty"`

	// Text is set on response.text.done.
	Text string `json:"text,omitempty"`

	// CallID, Name and Arguments are set on function call argument events.
	CallID    string `json:"call_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`

	RateLimits []RateLimit `json:"rate_limits,omitempty"`

	// Raw is the frame the event was decoded from.
	Raw []byte `json:"-"`
}

// SessionInfo is the session resource announced by the service.
type SessionInfo struct {
	ID        string
	Object    string
	Model     string
	ExpiresAt int64

	// Config holds the effective configuration.
	Config SessionConfig
}

// UnmarshalJSON decodes the resource fields and the configuration from the
// same object.
func (s *SessionInfo) UnmarshalJSON(data []byte) error {
	var head struct {
		ID        string `json:"id"`
		Object    string `json:"object"`
		Model     string `json:"model"`
		ExpiresAt int64  `json:"expires_at"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	var cfg SessionConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return err
	}
	*s = SessionInfo{ID: head.ID, Object: head.Object, Model: head.Model, ExpiresAt: head.ExpiresAt, Config: cfg}
	return nil
}

// ConversationInfo is the conversation resource of conversation.created.
type ConversationInfo struct {
	ID     string `json:"id"`
	Object string `json:"object"`
}

// ResponseInfo is the response resource of response.created and
// response.done.
type ResponseInfo struct {
	ID            string                       `json:"id"`
	Object        string                       `json:"object,omitempty"`
	Status        types.RealtimeResponseStatus `json:"status,omitempty"`
	StatusDetails *StatusDetails               `json:"status_details,omitempty"`
	Output        []Item                       `json:"output,omitempty"`
	Usage         *Usage                       `json:"usage,omitempty"`
	Metadata      map[string]string            `json:"metadata,omitempty"`
}

// StatusDetails explains a cancelled, incomplete or failed response.
type StatusDetails struct {
	Type   string      `json:"type,omitempty"`
	Reason string      `json:"reason,omitempty"`
	Error  *ErrorDetail `json:"error,omitempty"`
}

// Usage is the token usage of a response.
type Usage struct {
	TotalTokens        int                `json:"total_tokens"`
	InputTokens        int                `json:"input_tokens"`
	OutputTokens       int                `json:"output_tokens"`
	InputTokenDetails  InputTokenDetails  `json:"input_token_details"`
	OutputTokenDetails OutputTokenDetails `json:"output_token_details"`
}

// InputTokenDetails breaks input tokens down by modality.
type InputTokenDetails struct {
	CachedTokens int `json:"cached_tokens"`
	TextTokens   int `json:"text_tokens"`
	AudioTokens  int `json:"audio_tokens"`
}

// OutputTokenDetails breaks output tokens down by modality.
type OutputTokenDetails struct {
	TextTokens  int `json:"text_tokens"`
	AudioTokens int `json:"audio_tokens"`
}

// RateLimit is one entry of rate_limits.updated.
type RateLimit struct {
	Name         string  `json:"name"`
	Limit        int     `json:"limit"`
	Remaining    int     `json:"remaining"`
	ResetSeconds float64 `json:"reset_seconds"`
}

// ErrorDetail is the error payload of error events. EventID names the client
// event that caused it, when known.
type ErrorDetail struct {
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Param   string `json:"param,omitempty"`
	EventID string `json:"event_id,omitempty"`
}

// ParseServerEvent decodes one frame. Frames that are not JSON objects with
// a string type, or whose fields do not match their declared types, fail
// with ErrResponseShape.
func ParseServerEvent(data []byte) (*ServerEvent, error) {
	if !gjson.ValidBytes(data) {
		return nil, responseShapeError(errors.New("server event is not valid JSON"))
	}
	typ := gjson.GetBytes(data, "type")
	if typ.Type != gjson.String || typ.Str == "" {
		return nil, responseShapeError(errors.New("server event has no type"))
	}
	ev := &ServerEvent{}
	if err := json.Unmarshal(data, ev); err != nil {
		return nil, responseShapeError(err)
	}
	ev.Raw = data
	return ev, nil
}

// IsDelta reports whether the event is a streamed fragment of a response.
func (e *ServerEvent) IsDelta() bool {
	return strings.HasPrefix(e.Type, "response.") && strings.HasSuffix(e.Type, ".delta")
}

// AudioBytes decodes the base64 audio of response.audio.delta.
func (e *ServerEvent) AudioBytes() ([]byte, error) {
	if e.Type != EventResponseAudioDelta {
		return nil, invalidArgument("%s carries no audio", e.Type)
	}
	audio, err := base64.StdEncoding.DecodeString(e.Delta)
	if err != nil {
		return nil, responseShapeError(err)
	}
	return audio, nil
}

// Err returns the error carried by an error event as a remote APIError, or
// nil for any other event.
func (e *ServerEvent) Err() error {
	if e.Type != EventError || e.Error == nil {
		return nil
	}
	return &oaikit.APIError{
		Kind:     oaikit.KindRemote,
		Message:  e.Error.Message,
		Code:     e.Error.Code,
		Type:     e.Error.Type,
		Param:    e.Error.Param,
		Endpoint: endpoint,
	}
}

// responseID returns the id of the response the event belongs to.
func (e *ServerEvent) responseID() string {
	if e.Response != nil {
		return e.Response.ID
	}
	return e.ResponseID
}
