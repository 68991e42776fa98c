package realtime

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	oaikit "github.com/blue-context/oaikit"
	"github.com/blue-context/oaikit/schema"
	"github.com/blue-context/oaikit/types"
)

// Tool is a function the model may call during a session. Realtime tools
// use the flat form without the strict flag:
//
//	{"type":"function","name":"get_weather","description":"...","parameters":{...}}
type Tool struct {
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  *schema.Object `json:"parameters,omitempty"`
}

// FunctionTool creates a realtime function tool. A nil params becomes an
// empty object schema.
func FunctionTool(name, description string, params *schema.Object) Tool {
	if params == nil {
		params = schema.NewObject()
	}
	return Tool{Type: "function", Name: name, Description: description, Parameters: params}
}

// FromTool converts a function tool of the HTTP endpoints. MCP tools are not
// available to realtime sessions.
func FromTool(t oaikit.Tool) (Tool, error) {
	if t.Type != oaikit.ToolTypeFunction || t.Function == nil {
		return Tool{}, invalidArgument("realtime sessions only accept function tools, got %q", t.Type)
	}
	return FunctionTool(t.Function.Name, t.Function.Description, t.Function.Parameters), nil
}

// Validate checks the tool type and name.
func (t Tool) Validate() error {
	if t.Type != "function" {
		return invalidArgument("unknown realtime tool type %q", t.Type)
	}
	if t.Name == "" {
		return missingField("tool name")
	}
	return nil
}

// Transcription configures transcription of input audio. Transcripts arrive
// as conversation.item.input_audio_transcription.* events.
type Transcription struct {
	Model    types.STTModel `json:"model,omitempty"`
	Language string         `json:"language,omitempty"`
	Prompt   string         `json:"prompt,omitempty"`
}

// NoiseReductionConfig selects the input noise filter.
type NoiseReductionConfig struct {
	Type types.NoiseReduction `json:"type"`
}

// MaxTokens is an output token budget: a positive count or "inf".
// The zero value is unset and omitted.
type MaxTokens struct {
	n   int
	inf bool
}

// MaxTokensInf removes the output limit.
var MaxTokensInf = MaxTokens{inf: true}

// MaxTokensLimit returns a budget of n tokens.
func MaxTokensLimit(n int) MaxTokens { return MaxTokens{n: n} }

// IsZero reports whether no budget is set.
func (m MaxTokens) IsZero() bool { return !m.inf && m.n == 0 }

// Infinite reports whether the budget is "inf".
func (m MaxTokens) Infinite() bool { return m.inf }

// Limit returns the token count, or 0 for "inf".
func (m MaxTokens) Limit() int { return m.n }

// String returns "inf" or the count.
func (m MaxTokens) String() string {
	if m.inf {
		return "inf"
	}
	return strconv.Itoa(m.n)
}

// Validate checks the count is within 1..4096.
func (m MaxTokens) Validate() error {
	if m.inf || m.IsZero() {
		return nil
	}
	if m.n < 1 || m.n > 4096 {
		return invalidArgument("max output tokens must be between 1 and 4096 or inf, got %d", m.n)
	}
	return nil
}

// MarshalJSON emits "inf" or the count.
func (m MaxTokens) MarshalJSON() ([]byte, error) {
	if m.inf {
		return []byte(`"inf"`), nil
	}
	return []byte(strconv.Itoa(m.n)), nil
}

// UnmarshalJSON accepts a number or "inf".
func (m *MaxTokens) UnmarshalJSON(data []byte) error {
	v := gjson.ParseBytes(data)
	switch {
	case v.Type == gjson.String && v.Str == "inf":
		*m = MaxTokensInf
	case v.Type == gjson.Number:
		*m = MaxTokens{n: int(v.Int())}
	case v.Type == gjson.Null:
		*m = MaxTokens{}
	default:
		return fmt.Errorf("%w: max tokens must be a number or \"inf\", got %s", types.ErrResponseShape, data)
	}
	return nil
}

// SessionConfig is the configuration sent with session.update. Every field
// is optional; the service keeps its current value for omitted fields.
//
// Example:
//
//	cfg := realtime.SessionConfig{
//	    Modalities:    []types.Modality{types.ModalityText, types.ModalityAudio},
//	    Instructions:  "You are a helpful assistant.",
//	    Voice:         types.RealtimeVoiceAlloy,
//	    TurnDetection: realtime.ServerVAD(0.5, 300, 500),
//	}
type SessionConfig struct {
	Modalities               []types.Modality          `json:"modalities,omitempty"`
	Instructions             string                    `json:"instructions,omitempty"`
	Voice                    types.RealtimeVoice       `json:"voice,omitempty"`
	InputAudioFormat         types.RealtimeAudioFormat `json:"input_audio_format,omitempty"`
	OutputAudioFormat        types.RealtimeAudioFormat `json:"output_audio_format,omitempty"`
	InputAudioTranscription  *Transcription            `json:"input_audio_transcription,omitempty"`
	InputAudioNoiseReduction *NoiseReductionConfig     `json:"input_audio_noise_reduction,omitempty"`
	TurnDetection            *TurnDetection            `json:"turn_detection,omitempty"`

	// DisableTurnDetection sends "turn_detection": null. The caller then
	// commits audio and creates responses explicitly.
	DisableTurnDetection bool `json:"-"`

	Tools       []Tool            `json:"tools,omitempty"`
	ToolChoice  oaikit.ToolChoice `json:"tool_choice,omitzero"`
	Temperature *float64          `json:"temperature,omitempty"`

	MaxResponseOutputTokens MaxTokens `json:"max_response_output_tokens,omitzero"`
}

// Validate checks every set field against its allowed values.
func (c *SessionConfig) Validate() error {
	if err := validateModalities(c.Modalities); err != nil {
		return err
	}
	if c.Voice != "" && !c.Voice.Valid() {
		return invalidArgument("unknown voice %q", c.Voice)
	}
	for _, f := range []types.RealtimeAudioFormat{c.InputAudioFormat, c.OutputAudioFormat} {
		if f != "" && !f.Valid() {
			return invalidArgument("unknown audio format %q", f)
		}
	}
	if t := c.InputAudioTranscription; t != nil && t.Model != "" && !t.Model.Valid() {
		return invalidArgument("unknown transcription model %q", t.Model)
	}
	if nr := c.InputAudioNoiseReduction; nr != nil && !nr.Type.Valid() {
		return invalidArgument("unknown noise reduction %q", nr.Type)
	}
	if c.TurnDetection != nil {
		if c.DisableTurnDetection {
			return invalidArgument("turn_detection is set and disabled at the same time")
		}
		if err := c.TurnDetection.Validate(); err != nil {
			return err
		}
	}
	if err := validateTools(c.Tools, c.ToolChoice); err != nil {
		return err
	}
	if err := validateTemperature(c.Temperature); err != nil {
		return err
	}
	return c.MaxResponseOutputTokens.Validate()
}

// MarshalJSON adds the explicit null for DisableTurnDetection.
func (c SessionConfig) MarshalJSON() ([]byte, error) {
	type plain SessionConfig
	data, err := json.Marshal(plain(c))
	if err != nil {
		return nil, err
	}
	if c.DisableTurnDetection && c.TurnDetection == nil {
		return sjson.SetRawBytes(data, "turn_detection", []byte("null"))
	}
	return data, nil
}

// UnmarshalJSON records an explicit null turn_detection as disabled.
func (c *SessionConfig) UnmarshalJSON(data []byte) error {
	type plain SessionConfig
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = SessionConfig(p)
	if td := gjson.GetBytes(data, "turn_detection"); td.Exists() && td.Type == gjson.Null {
		c.DisableTurnDetection = true
	}
	return nil
}

// Conversation targets of response.create.
const (
	// ConversationAuto adds the response to the default conversation.
	ConversationAuto = "auto"
	// ConversationNone produces an out-of-band response that is not added
	// to the conversation.
	ConversationNone = "none"
)

// ResponseConfig overrides session defaults for a single response.
type ResponseConfig struct {
	Modalities        []types.Modality          `json:"modalities,omitempty"`
	Instructions      string                    `json:"instructions,omitempty"`
	Voice             types.RealtimeVoice       `json:"voice,omitempty"`
	OutputAudioFormat types.RealtimeAudioFormat `json:"output_audio_format,omitempty"`
	Tools             []Tool                    `json:"tools,omitempty"`
	ToolChoice        oaikit.ToolChoice         `json:"tool_choice,omitzero"`
	Temperature       *float64                  `json:"temperature,omitempty"`
	MaxOutputTokens   MaxTokens                 `json:"max_output_tokens,omitzero"`

	// Conversation is ConversationAuto (default) or ConversationNone.
	Conversation string `json:"conversation,omitempty"`

	// Metadata is attached to the response and echoed in its events.
	Metadata map[string]string `json:"metadata,omitempty"`

	// Input replaces the conversation as the response context. Items may be
	// item references to existing conversation items.
	Input []Item `json:"input,omitempty"`
}

// OutOfBand returns a copy of r that does not write to the conversation.
func (r ResponseConfig) OutOfBand() ResponseConfig {
	r.Conversation = ConversationNone
	return r
}

// Validate checks every set field against its allowed values.
func (r *ResponseConfig) Validate() error {
	if err := validateModalities(r.Modalities); err != nil {
		return err
	}
	if r.Voice != "" && !r.Voice.Valid() {
		return invalidArgument("unknown voice %q", r.Voice)
	}
	if r.OutputAudioFormat != "" && !r.OutputAudioFormat.Valid() {
		return invalidArgument("unknown audio format %q", r.OutputAudioFormat)
	}
	if err := validateTools(r.Tools, r.ToolChoice); err != nil {
		return err
	}
	if err := validateTemperature(r.Temperature); err != nil {
		return err
	}
	if err := r.MaxOutputTokens.Validate(); err != nil {
		return err
	}
	switch r.Conversation {
	case "", ConversationAuto, ConversationNone:
	default:
		return invalidArgument("conversation must be %q or %q, got %q", ConversationAuto, ConversationNone, r.Conversation)
	}
	if len(r.Metadata) > 16 {
		return invalidArgument("metadata holds at most 16 entries, got %d", len(r.Metadata))
	}
	for i, item := range r.Input {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("input[%d]: %w", i, err)
		}
	}
	return nil
}

func validateModalities(ms []types.Modality) error {
	for _, m := range ms {
		if !m.Valid() {
			return invalidArgument("unknown modality %q", m)
		}
	}
	// the service accepts [text] or [text, audio]
	if len(ms) == 1 && ms[0] == types.ModalityAudio {
		return invalidArgument("modalities must include text when audio is enabled")
	}
	return nil
}

func validateTools(tools []Tool, choice oaikit.ToolChoice) error {
	names := make(map[string]bool, len(tools))
	for _, t := range tools {
		if err := t.Validate(); err != nil {
			return err
		}
		names[t.Name] = true
	}
	if fn := choice.Function(); fn != "" && len(tools) > 0 && !names[fn] {
		return invalidArgument("tool_choice names %q which is not a registered tool", fn)
	}
	return nil
}

func validateTemperature(t *float64) error {
	if t != nil && (*t < 0.6 || *t > 1.2) {
		return invalidArgument("temperature must be between 0.6 and 1.2, got %v", *t)
	}
	return nil
}
