package realtime

import (
	"encoding/json"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Client event types (sent from client to server).
const (
	EventSessionUpdate            = "session.update"
	EventInputAudioBufferAppend   = "input_audio_buffer.append"
	EventInputAudioBufferCommit   = "input_audio_buffer.commit"
	EventInputAudioBufferClear    = "input_audio_buffer.clear"
	EventOutputAudioBufferClear   = "output_audio_buffer.clear"
	EventConversationItemCreate   = "conversation.item.create"
	EventConversationItemDelete   = "conversation.item.delete"
	EventConversationItemRetrieve = "conversation.item.retrieve"
	EventConversationItemTruncate = "conversation.item.truncate"
	EventResponseCreate           = "response.create"
	EventResponseCancel           = "response.cancel"
)

// ClientEvent is an event sent to the service. The type discriminator and
// the optional event_id are added when the event is encoded.
type ClientEvent interface {
	EventType() string
	Validate() error
}

// SessionUpdate merges Session into the session configuration.
type SessionUpdate struct {
	Session SessionConfig `json:"session"`
}

// InputAudioBufferAppend appends base64 audio to the input buffer.
type InputAudioBufferAppend struct {
	Audio string `json:"audio"`
}

// InputAudioBufferCommit ends the user turn and creates a user message
// from the buffered audio.
type InputAudioBufferCommit struct{}

// InputAudioBufferClear discards the buffered input audio.
type InputAudioBufferClear struct{}

// OutputAudioBufferClear stops audio playback. Only the WebRTC transport
// has an output audio buffer.
type OutputAudioBufferClear struct{}

// ConversationItemCreate inserts Item after PreviousItemID, or at the end
// of the conversation when PreviousItemID is empty. "root" inserts at the
// beginning.
type ConversationItemCreate struct {
	PreviousItemID string `json:"previous_item_id,omitempty"`
	Item           Item   `json:"item"`
}

// ConversationItemDelete removes an item.
type ConversationItemDelete struct {
	ItemID string `json:"item_id"`
}

// ConversationItemRetrieve asks the service to send a stored item back.
type ConversationItemRetrieve struct {
	ItemID string `json:"item_id"`
}

// ConversationItemTruncate cuts the audio of an assistant item at
// AudioEndMs and drops its transcript.
type ConversationItemTruncate struct {
	ItemID       string `json:"item_id"`
	ContentIndex int    `json:"content_index"`
	AudioEndMs   int    `json:"audio_end_ms"`
}

// ResponseCreate starts a response. A nil Response uses the session
// defaults.
type ResponseCreate struct {
	Response *ResponseConfig `json:"response,omitempty"`
}

// ResponseCancel cancels the in-progress response. An empty ResponseID
// targets the current one.
type ResponseCancel struct {
	ResponseID string `json:"response_id,omitempty"`
}

func (SessionUpdate) EventType() string            { return EventSessionUpdate }
func (InputAudioBufferAppend) EventType() string   { return EventInputAudioBufferAppend }
func (InputAudioBufferCommit) EventType() string   { return EventInputAudioBufferCommit }
func (InputAudioBufferClear) EventType() string    { return EventInputAudioBufferClear }
func (OutputAudioBufferClear) EventType() string   { return EventOutputAudioBufferClear }
func (ConversationItemCreate) EventType() string   { return EventConversationItemCreate }
func (ConversationItemDelete) EventType() string   { return EventConversationItemDelete }
func (ConversationItemRetrieve) EventType() string { return EventConversationItemRetrieve }
func (ConversationItemTruncate) EventType() string { return EventConversationItemTruncate }
func (ResponseCreate) EventType() string           { return EventResponseCreate }
func (ResponseCancel) EventType() string           { return EventResponseCancel }

func (e SessionUpdate) Validate() error { return e.Session.Validate() }

func (e InputAudioBufferAppend) Validate() error {
	if e.Audio == "" {
		return missingField("audio")
	}
	return nil
}

func (InputAudioBufferCommit) Validate() error { return nil }
func (InputAudioBufferClear) Validate() error  { return nil }
func (OutputAudioBufferClear) Validate() error { return nil }

func (e ConversationItemCreate) Validate() error {
	if e.Item.Type == "item_reference" {
		return invalidArgument("item references cannot be inserted into the conversation")
	}
	return e.Item.Validate()
}

func (e ConversationItemDelete) Validate() error {
	if e.ItemID == "" {
		return missingField("item_id")
	}
	return nil
}

func (e ConversationItemRetrieve) Validate() error {
	if e.ItemID == "" {
		return missingField("item_id")
	}
	return nil
}

func (e ConversationItemTruncate) Validate() error {
	if e.ItemID == "" {
		return missingField("item_id")
	}
	if e.ContentIndex < 0 || e.AudioEndMs < 0 {
		return invalidArgument("content_index and audio_end_ms must not be negative")
	}
	return nil
}

func (e ResponseCreate) Validate() error {
	if e.Response == nil {
		return nil
	}
	return e.Response.Validate()
}

func (ResponseCancel) Validate() error { return nil }

// EncodeClientEvent validates ev and encodes it with its type and, when
// eventID is not empty, its event_id.
//
// Example:
//
//	data, err := realtime.EncodeClientEvent(realtime.InputAudioBufferCommit{}, "evt_1")
//	// {"type":"input_audio_buffer.commit","event_id":"evt_1"}
func EncodeClientEvent(ev ClientEvent, eventID string) ([]byte, error) {
	if ev == nil {
		return nil, missingField("event")
	}
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return nil, invalidArgument("encode %s: %v", ev.EventType(), err)
	}

	data, err := sjson.SetBytes([]byte(`{}`), "type", ev.EventType())
	if err == nil && eventID != "" {
		data, err = sjson.SetBytes(data, "event_id", eventID)
	}
	gjson.ParseBytes(body).ForEach(func(key, value gjson.Result) bool {
		if err == nil {
			data, err = sjson.SetRawBytes(data, key.String(), []byte(value.Raw))
		}
		return err == nil
	})
	if err != nil {
		return nil, invalidArgument("encode %s: %v", ev.EventType(), err)
	}
	return data, nil
}
