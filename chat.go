package oaikit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/blue-context/oaikit/schema"
	"github.com/blue-context/oaikit/types"
)

const chatEndpoint = "chat/completions"

// ChatCompletionRequest is a chat completion request.
//
// Optional fields left at their zero value (nil pointers, empty strings and
// slices) are omitted from the payload.
//
// Thread Safety: ChatCompletionRequest is safe for concurrent reads after
// creation. CreateChatCompletion does not modify it.
type ChatCompletionRequest struct {
	// Model is the model id. DefaultChatModel is used when empty.
	Model types.ChatModel

	// Messages contains the conversation history. At least one is required.
	Messages []Message

	// Store persists the completion for distillation and evals.
	Store *bool

	// FrequencyPenalty penalizes frequent tokens (-2.0 to 2.0).
	FrequencyPenalty *float64

	// LogitBias maps token ids to a bias between -100 and 100.
	LogitBias map[string]int

	// Logprobs returns log probabilities of the output tokens.
	Logprobs *bool

	// TopLogprobs is the number of most likely tokens returned per position (0-20).
	TopLogprobs *int

	// MaxCompletionTokens bounds generated tokens, reasoning included.
	MaxCompletionTokens *int

	// N specifies how many choices to generate.
	N *int

	// Modalities are the requested output types, e.g. ["text","audio"].
	Modalities []string

	// PresencePenalty penalizes tokens based on presence (-2.0 to 2.0).
	PresencePenalty *float64

	// Temperature controls randomness in the output (0.0 to 2.0).
	Temperature *float64

	// TopP controls nucleus sampling (0.0 to 1.0).
	TopP *float64

	// ResponseFormat requests structured output. Must be a chat envelope
	// (schema.NewChat).
	ResponseFormat *schema.Schema

	// Tools are the functions the model may call. MCP tools are rejected.
	Tools []Tool

	// ToolChoice controls which tool, if any, is called.
	ToolChoice ToolChoice

	// ParallelToolCalls allows several tool calls in one turn.
	ParallelToolCalls *bool

	// User is a stable end-user identifier.
	User string

	// Seed requests deterministic sampling.
	Seed *int64

	// Stop contains up to 4 sequences where generation stops.
	Stop []string

	// Metadata is stored with the completion when Store is true.
	Metadata map[string]string

	// ReasoningEffort constrains effort on reasoning models.
	ReasoningEffort types.ReasoningEffort
}

// Validate checks required fields and enumerations.
func (r *ChatCompletionRequest) Validate() error {
	if len(r.Messages) == 0 {
		return missingField(chatEndpoint, "messages")
	}
	for i, m := range r.Messages {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("messages[%d]: %w", i, err)
		}
	}
	if r.ResponseFormat != nil && r.ResponseFormat.Envelope() != schema.EnvelopeChat {
		return newError(KindInvalidArgument, chatEndpoint, schema.ErrSchemaShapeMismatch,
			"response_format needs a chat schema, got %s", r.ResponseFormat.Envelope())
	}
	for i, t := range r.Tools {
		if t.Type != ToolTypeFunction {
			return invalidArgument(chatEndpoint, "tools[%d]: %s tools are not supported by chat completions", i, t.Type)
		}
	}
	if r.ReasoningEffort != "" && !r.ReasoningEffort.Valid() {
		return invalidArgument(chatEndpoint, "unknown reasoning_effort %q", r.ReasoningEffort)
	}
	if len(r.Stop) > 4 {
		return invalidArgument(chatEndpoint, "at most 4 stop sequences, got %d", len(r.Stop))
	}
	return nil
}

type chatRequestJSON struct {
	Model               types.ChatModel            `json:"model"`
	Messages            []json.RawMessage          `json:"messages"`
	Store               *bool                      `json:"store,omitempty"`
	FrequencyPenalty    *float64                   `json:"frequency_penalty,omitempty"`
	LogitBias           map[string]int             `json:"logit_bias,omitempty"`
	Logprobs            *bool                      `json:"logprobs,omitempty"`
	TopLogprobs         *int                       `json:"top_logprobs,omitempty"`
	MaxCompletionTokens *int                       `json:"max_completion_tokens,omitempty"`
	N                   *int                       `json:"n,omitempty"`
	Modalities          []string                   `json:"modalities,omitempty"`
	PresencePenalty     *float64                   `json:"presence_penalty,omitempty"`
	Temperature         *float64                   `json:"temperature,omitempty"`
	TopP                *float64                   `json:"top_p,omitempty"`
	ResponseFormat      *schema.ChatResponseFormat `json:"response_format,omitempty"`
	Tools               []json.RawMessage          `json:"tools,omitempty"`
	ToolChoice          json.RawMessage            `json:"tool_choice,omitempty"`
	ParallelToolCalls   *bool                      `json:"parallel_tool_calls,omitempty"`
	User                string                     `json:"user,omitempty"`
	Seed                *int64                     `json:"seed,omitempty"`
	Stop                []string                   `json:"stop,omitempty"`
	Metadata            map[string]string          `json:"metadata,omitempty"`
	ReasoningEffort     types.ReasoningEffort      `json:"reasoning_effort,omitempty"`
}

// MarshalJSON emits the chat wire format: messages with chat content parts,
// nested function tools and the wrapped response_format.
func (r *ChatCompletionRequest) MarshalJSON() ([]byte, error) {
	out := chatRequestJSON{
		Model:               r.Model,
		Store:               r.Store,
		FrequencyPenalty:    r.FrequencyPenalty,
		LogitBias:           r.LogitBias,
		Logprobs:            r.Logprobs,
		TopLogprobs:         r.TopLogprobs,
		MaxCompletionTokens: r.MaxCompletionTokens,
		N:                   r.N,
		Modalities:          r.Modalities,
		PresencePenalty:     r.PresencePenalty,
		Temperature:         r.Temperature,
		TopP:                r.TopP,
		ParallelToolCalls:   r.ParallelToolCalls,
		User:                r.User,
		Seed:                r.Seed,
		Stop:                r.Stop,
		Metadata:            r.Metadata,
		ReasoningEffort:     r.ReasoningEffort,
	}
	if out.Model == "" {
		out.Model = types.DefaultChatModel
	}
	for i, m := range r.Messages {
		raw, err := chatMessageJSON(m)
		if err != nil {
			return nil, fmt.Errorf("messages[%d]: %w", i, err)
		}
		out.Messages = append(out.Messages, raw)
	}
	for i, t := range r.Tools {
		raw, err := t.ChatJSON()
		if err != nil {
			return nil, fmt.Errorf("tools[%d]: %w", i, err)
		}
		out.Tools = append(out.Tools, raw)
	}
	if !r.ToolChoice.IsZero() {
		raw, err := r.ToolChoice.chatJSON()
		if err != nil {
			return nil, err
		}
		out.ToolChoice = raw
	}
	if r.ResponseFormat != nil {
		out.ResponseFormat = &schema.ChatResponseFormat{Schema: r.ResponseFormat}
	}
	return json.Marshal(out)
}

// chatMessageJSON encodes a message with chat-style content parts:
// input_text becomes text, input_image becomes image_url, input_audio
// nests its data and input_file becomes file.
func chatMessageJSON(m Message) (json.RawMessage, error) {
	if !m.Content.IsParts() {
		return json.Marshal(m)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	parts := make([]any, 0, len(m.Content.Parts()))
	for _, p := range m.Content.Parts() {
		switch p.Type {
		case PartInputText, PartText, PartOutputText:
			parts = append(parts, map[string]any{"type": "text", "text": p.Text})
		case PartInputImage:
			if p.ImageURL == "" {
				return nil, invalidArgument(chatEndpoint, "chat image parts need an image_url")
			}
			img := map[string]any{"url": p.ImageURL}
			if p.Detail != "" {
				img["detail"] = p.Detail
			}
			parts = append(parts, map[string]any{"type": "image_url", "image_url": img})
		case PartInputAudio:
			parts = append(parts, map[string]any{
				"type":        "input_audio",
				"input_audio": map[string]any{"data": p.Audio, "format": p.Format},
			})
		case PartInputFile:
			file := map[string]any{}
			if p.FileID != "" {
				file["file_id"] = p.FileID
			}
			if p.FileData != "" {
				file["file_data"] = p.FileData
			}
			if p.Filename != "" {
				file["filename"] = p.Filename
			}
			parts = append(parts, map[string]any{"type": "file", "file": file})
		case PartRefusal:
			parts = append(parts, map[string]any{"type": "refusal", "refusal": p.Refusal})
		default:
			return nil, invalidArgument(chatEndpoint, "content part %q is not supported by chat completions", p.Type)
		}
	}
	out := map[string]any{"role": m.Role, "content": parts}
	if m.Name != "" {
		out["name"] = m.Name
	}
	if len(m.ToolCalls) > 0 {
		out["tool_calls"] = m.ToolCalls
	}
	if m.ToolCallID != "" {
		out["tool_call_id"] = m.ToolCallID
	}
	return json.Marshal(out)
}

// ChatCompletion is a chat completion response.
type ChatCompletion struct {
	// ID is a unique identifier for this completion.
	ID string `json:"id"`

	// Object is the object type ("chat.completion").
	Object string `json:"object"`

	// Created is the Unix timestamp (in seconds) of creation.
	Created int64 `json:"created"`

	// Model is the model used for this completion.
	Model string `json:"model"`

	// Choices contains the generated completion choices.
	Choices []Choice `json:"choices"`

	// Usage contains token usage information for this request.
	Usage *Usage `json:"usage,omitempty"`

	// SystemFingerprint identifies the backend configuration.
	SystemFingerprint string `json:"system_fingerprint,omitempty"`

	// ServiceTier is the tier that processed the request.
	ServiceTier string `json:"service_tier,omitempty"`
}

// Validate checks the required response fields.
func (c *ChatCompletion) Validate() error {
	if c.ID == "" {
		return missingField(chatEndpoint, "id")
	}
	if len(c.Choices) == 0 {
		return missingField(chatEndpoint, "choices")
	}
	for i, ch := range c.Choices {
		if ch.Message.Role == "" {
			return missingField(chatEndpoint, fmt.Sprintf("choices[%d].message.role", i))
		}
	}
	return nil
}

// Content returns the text of the first choice.
func (c *ChatCompletion) Content() string {
	if c == nil || len(c.Choices) == 0 {
		return ""
	}
	return c.Choices[0].Message.Text()
}

// ToolCalls returns the tool calls of the first choice.
func (c *ChatCompletion) ToolCalls() []ToolCall {
	if c == nil || len(c.Choices) == 0 {
		return nil
	}
	return c.Choices[0].Message.ToolCalls
}

// Choice is a single completion choice.
type Choice struct {
	// Index is the zero-based index of this choice.
	Index int `json:"index"`

	// Message contains the generated message.
	Message Message `json:"message"`

	// FinishReason explains why the model stopped generating.
	// Valid values: "stop", "length", "tool_calls", "content_filter"
	FinishReason string `json:"finish_reason"`

	// Logprobs contains log probability information for generated tokens.
	Logprobs *Logprobs `json:"logprobs,omitempty"`
}

// Logprobs represents log probability information for generated tokens.
type Logprobs struct {
	// Content contains log probability information for each token.
	Content []TokenLogprob `json:"content,omitempty"`
}

// TokenLogprob represents log probability information for a single token.
type TokenLogprob struct {
	// Token is the text representation of the token.
	Token string `json:"token"`

	// Logprob is the log probability of this token.
	Logprob float64 `json:"logprob"`

	// Bytes is the UTF-8 byte representation of the token.
	Bytes []int `json:"bytes,omitempty"`

	// TopLogprobs are the most likely alternatives at this position.
	TopLogprobs []TokenLogprob `json:"top_logprobs,omitempty"`
}

// CreateChatCompletion sends a chat completion request.
//
// Reasoning models (gpt-5, o1, o3, o4 families) only accept default
// sampling: temperature, top_p, penalties, logprobs, logit_bias and n are
// dropped with a warning.
//
// Example:
//
//	resp, err := client.CreateChatCompletion(ctx, &oaikit.ChatCompletionRequest{
//	    Model:    types.GPT4oMini,
//	    Messages: []oaikit.Message{oaikit.NewTextMessage(types.RoleUser, "Hello")},
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(resp.Content())
func (c *Client) CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletion, error) {
	if req == nil {
		return nil, missingField(chatEndpoint, "request")
	}
	if err := req.Validate(); err != nil {
		return nil, classify(chatEndpoint, err)
	}

	wire := *req
	if wire.Model == "" {
		wire.Model = types.DefaultChatModel
	}
	if wire.Model.IsReasoningModel() {
		c.dropSamplingParams(chatEndpoint, wire.Model, &wire)
	}

	var resp ChatCompletion
	if err := c.doJSON(ctx, http.MethodPost, chatEndpoint, nil, string(wire.Model), &wire, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// dropSamplingParams clears the parameters reasoning models reject.
func (c *Client) dropSamplingParams(endpoint string, model types.ChatModel, r *ChatCompletionRequest) {
	var dropped []string
	if r.Temperature != nil {
		r.Temperature = nil
		dropped = append(dropped, "temperature")
	}
	if r.TopP != nil {
		r.TopP = nil
		dropped = append(dropped, "top_p")
	}
	if r.FrequencyPenalty != nil {
		r.FrequencyPenalty = nil
		dropped = append(dropped, "frequency_penalty")
	}
	if r.PresencePenalty != nil {
		r.PresencePenalty = nil
		dropped = append(dropped, "presence_penalty")
	}
	if r.Logprobs != nil {
		r.Logprobs = nil
		dropped = append(dropped, "logprobs")
	}
	if r.TopLogprobs != nil {
		r.TopLogprobs = nil
		dropped = append(dropped, "top_logprobs")
	}
	if r.LogitBias != nil {
		r.LogitBias = nil
		dropped = append(dropped, "logit_bias")
	}
	if r.N != nil {
		r.N = nil
		dropped = append(dropped, "n")
	}
	if len(dropped) > 0 {
		c.logger.Warn("dropping parameters unsupported by reasoning model", "endpoint", endpoint, "model", model, "params", dropped)
	}
}
