package oaikit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/blue-context/oaikit/schema"
	"github.com/blue-context/oaikit/types"
)

const responsesEndpoint = "responses"

// ResponseInput is the input of a responses request: a single prompt, a
// list of messages, or a list of input items. Exactly one form is set.
type ResponseInput struct {
	text     *string
	messages []Message
	items    []InputItem
}

// ResponseInputText returns a single-prompt input.
func ResponseInputText(prompt string) ResponseInput {
	return ResponseInput{text: &prompt}
}

// ResponseInputMessages returns a message list input.
func ResponseInputMessages(messages ...Message) ResponseInput {
	return ResponseInput{messages: messages}
}

// ResponseInputItems returns an item list input, used to continue a turn
// with function call outputs.
func ResponseInputItems(items ...InputItem) ResponseInput {
	return ResponseInput{items: items}
}

// IsZero reports whether no input form is set.
func (in ResponseInput) IsZero() bool {
	return in.text == nil && len(in.messages) == 0 && len(in.items) == 0
}

// Validate checks the selected form.
func (in ResponseInput) Validate() error {
	if in.IsZero() {
		return missingField(responsesEndpoint, "input")
	}
	for i, m := range in.messages {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("input[%d]: %w", i, err)
		}
	}
	for i, it := range in.items {
		if err := it.Validate(); err != nil {
			return fmt.Errorf("input[%d]: %w", i, err)
		}
	}
	return nil
}

// MarshalJSON emits a string or an array.
func (in ResponseInput) MarshalJSON() ([]byte, error) {
	switch {
	case in.text != nil:
		return json.Marshal(*in.text)
	case len(in.messages) > 0:
		return json.Marshal(in.messages)
	case len(in.items) > 0:
		return json.Marshal(in.items)
	}
	return nil, missingField(responsesEndpoint, "input")
}

// InputItemType discriminates input items.
type InputItemType string

const (
	ItemMessage            InputItemType = "message"
	ItemFunctionCall       InputItemType = "function_call"
	ItemFunctionCallOutput InputItemType = "function_call_output"
	ItemTypeReference      InputItemType = "item_reference"
)

// InputItem is one entry of an item-list input.
type InputItem struct {
	Type InputItemType

	// Message is set for message items.
	Message *Message

	// CallID pairs a function_call with its function_call_output.
	CallID string

	// Name and Arguments describe a function_call.
	Name      string
	Arguments map[string]any

	// Output is the result of a function_call_output.
	Output string

	// ID references an existing item (item_reference).
	ID string

	// Raw, when set, is sent verbatim (e.g. an output item echoed back).
	Raw json.RawMessage
}

// MessageItem wraps a message as an input item.
func MessageItem(m Message) InputItem {
	return InputItem{Type: ItemMessage, Message: &m}
}

// FunctionCallItem echoes a function call the model made.
func FunctionCallItem(callID, name string, args map[string]any) InputItem {
	return InputItem{Type: ItemFunctionCall, CallID: callID, Name: name, Arguments: args}
}

// FunctionCallOutputItem answers a function call. callID must equal the
// call_id of the function call it answers.
func FunctionCallOutputItem(callID, output string) InputItem {
	return InputItem{Type: ItemFunctionCallOutput, CallID: callID, Output: output}
}

// ItemReferenceItem references a stored item by id.
func ItemReferenceItem(id string) InputItem {
	return InputItem{Type: ItemTypeReference, ID: id}
}

// RawItem sends an item verbatim.
func RawItem(raw json.RawMessage) InputItem {
	return InputItem{Raw: raw}
}

// Validate checks the fields required by the item type.
func (it InputItem) Validate() error {
	if len(it.Raw) > 0 {
		if !json.Valid(it.Raw) {
			return invalidArgument(responsesEndpoint, "raw item is not valid JSON")
		}
		return nil
	}
	switch it.Type {
	case ItemMessage:
		if it.Message == nil {
			return missingField(responsesEndpoint, "message item message")
		}
		return it.Message.Validate()
	case ItemFunctionCall:
		if it.CallID == "" {
			return missingField(responsesEndpoint, "function_call call_id")
		}
		if it.Name == "" {
			return missingField(responsesEndpoint, "function_call name")
		}
	case ItemFunctionCallOutput:
		if it.CallID == "" {
			return missingField(responsesEndpoint, "function_call_output call_id")
		}
	case ItemTypeReference:
		if it.ID == "" {
			return missingField(responsesEndpoint, "item_reference id")
		}
	case "":
		return missingField(responsesEndpoint, "item type")
	default:
		return invalidArgument(responsesEndpoint, "unknown input item type %q", it.Type)
	}
	return nil
}

// MarshalJSON emits the typed item.
func (it InputItem) MarshalJSON() ([]byte, error) {
	if err := it.Validate(); err != nil {
		return nil, err
	}
	if len(it.Raw) > 0 {
		return it.Raw, nil
	}
	switch it.Type {
	case ItemMessage:
		body, err := json.Marshal(it.Message)
		if err != nil {
			return nil, err
		}
		return withType(string(ItemMessage), body), nil
	case ItemFunctionCall:
		args, err := encodeArguments(it.Arguments)
		if err != nil {
			return nil, err
		}
		return json.Marshal(map[string]string{"type": string(it.Type), "call_id": it.CallID, "name": it.Name, "arguments": args})
	case ItemFunctionCallOutput:
		return json.Marshal(map[string]string{"type": string(it.Type), "call_id": it.CallID, "output": it.Output})
	default:
		return json.Marshal(map[string]string{"type": string(it.Type), "id": it.ID})
	}
}

// ResponseText configures the text output of a response.
type ResponseText struct {
	// Format is a responses envelope (schema.NewResponsesJSON or
	// schema.NewResponsesText).
	Format *schema.Schema `json:"format,omitempty"`

	// Verbosity constrains answer length.
	Verbosity types.TextVerbosity `json:"verbosity,omitempty"`
}

// Reasoning configures reasoning models.
type Reasoning struct {
	Effort  types.ReasoningEffort  `json:"effort,omitempty"`
	Summary types.ReasoningSummary `json:"summary,omitempty"`
}

// ResponseRequest is a request to the responses endpoint.
//
// Thread Safety: ResponseRequest is safe for concurrent reads after creation.
type ResponseRequest struct {
	// Model is the model id. DefaultChatModel is used when empty.
	Model types.ChatModel `json:"model"`

	// Input is the prompt, message list or item list. Required.
	Input ResponseInput `json:"input"`

	Instructions string `json:"instructions,omitempty"`

	// Tools may mix function and mcp tools.
	Tools      []Tool     `json:"tools,omitempty"`
	ToolChoice ToolChoice `json:"tool_choice,omitzero"`

	// Text configures structured output and verbosity.
	Text *ResponseText `json:"text,omitempty"`

	Temperature       *float64          `json:"temperature,omitempty"`
	TopP              *float64          `json:"top_p,omitempty"`
	MaxOutputTokens   *int              `json:"max_output_tokens,omitempty"`
	MaxToolCalls      *int              `json:"max_tool_calls,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
	ParallelToolCalls *bool             `json:"parallel_tool_calls,omitempty"`

	// Include lists extra output data, e.g. "reasoning.encrypted_content".
	Include []string `json:"include,omitempty"`

	// Background runs the response asynchronously.
	Background *bool `json:"background,omitempty"`

	// Conversation adds the response to a stored conversation.
	Conversation string `json:"conversation,omitempty"`

	// PreviousResponseID continues from an earlier response.
	PreviousResponseID string `json:"previous_response_id,omitempty"`

	Reasoning        *Reasoning       `json:"reasoning,omitempty"`
	SafetyIdentifier string           `json:"safety_identifier,omitempty"`
	ServiceTier      string           `json:"service_tier,omitempty"`
	Store            *bool            `json:"store,omitempty"`
	TopLogprobs      *int             `json:"top_logprobs,omitempty"`
	Truncation       types.Truncation `json:"truncation,omitempty"`
}

// Validate checks required fields and enumerations.
func (r *ResponseRequest) Validate() error {
	if err := r.Input.Validate(); err != nil {
		return err
	}
	for i, t := range r.Tools {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("tools[%d]: %w", i, err)
		}
	}
	if r.Text != nil && r.Text.Format != nil && r.Text.Format.Envelope() == schema.EnvelopeChat {
		return newError(KindInvalidArgument, responsesEndpoint, schema.ErrSchemaShapeMismatch,
			"text.format needs a responses schema, got %s", r.Text.Format.Envelope())
	}
	if r.Text != nil && r.Text.Verbosity != "" && !r.Text.Verbosity.Valid() {
		return invalidArgument(responsesEndpoint, "unknown text.verbosity %q", r.Text.Verbosity)
	}
	if r.Truncation != "" && !r.Truncation.Valid() {
		return invalidArgument(responsesEndpoint, "unknown truncation %q", r.Truncation)
	}
	if r.Reasoning != nil {
		if r.Reasoning.Effort != "" && !r.Reasoning.Effort.Valid() {
			return invalidArgument(responsesEndpoint, "unknown reasoning.effort %q", r.Reasoning.Effort)
		}
		if r.Reasoning.Summary != "" && !r.Reasoning.Summary.Valid() {
			return invalidArgument(responsesEndpoint, "unknown reasoning.summary %q", r.Reasoning.Summary)
		}
	}
	return nil
}

// ResponseObject is a response returned by the responses endpoint.
type ResponseObject struct {
	ID                 string            `json:"id"`
	Object             string            `json:"object"`
	CreatedAt          int64             `json:"created_at"`
	Status             string            `json:"status"`
	Background         bool              `json:"background,omitempty"`
	Error              *ResponseError    `json:"error,omitempty"`
	IncompleteDetails  json.RawMessage   `json:"incomplete_details,omitempty"`
	Instructions       json.RawMessage   `json:"instructions,omitempty"`
	MaxOutputTokens    *int              `json:"max_output_tokens,omitempty"`
	Model              string            `json:"model"`
	Output             []OutputItem      `json:"output"`
	ParallelToolCalls  bool              `json:"parallel_tool_calls,omitempty"`
	PreviousResponseID string            `json:"previous_response_id,omitempty"`
	Reasoning          *Reasoning        `json:"reasoning,omitempty"`
	ServiceTier        string            `json:"service_tier,omitempty"`
	Store              bool              `json:"store,omitempty"`
	Temperature        *float64          `json:"temperature,omitempty"`
	Text               json.RawMessage   `json:"text,omitempty"`
	ToolChoice         json.RawMessage   `json:"tool_choice,omitempty"`
	Tools              []json.RawMessage `json:"tools,omitempty"`
	TopP               *float64          `json:"top_p,omitempty"`
	Truncation         string            `json:"truncation,omitempty"`
	Usage              *Usage            `json:"usage,omitempty"`
	Metadata           map[string]string `json:"metadata,omitempty"`
}

// ResponseError is the error of a failed response.
type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Validate checks the required response fields.
func (r *ResponseObject) Validate() error {
	if r.ID == "" {
		return missingField(responsesEndpoint, "id")
	}
	if r.Status == "" {
		return missingField(responsesEndpoint, "status")
	}
	for i, item := range r.Output {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("output[%d]: %w", i, err)
		}
	}
	return nil
}

// OutputText concatenates the output_text parts of every message item.
func (r *ResponseObject) OutputText() string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	for _, item := range r.Output {
		if item.Type != "message" {
			continue
		}
		for _, part := range item.Content {
			if part.Type == PartOutputText {
				b.WriteString(part.Text)
			}
		}
	}
	return b.String()
}

// FunctionCalls returns the function_call items as tool calls whose ID is
// the item's call_id.
func (r *ResponseObject) FunctionCalls() ([]ToolCall, error) {
	if r == nil {
		return nil, nil
	}
	var calls []ToolCall
	for _, item := range r.Output {
		if item.Type != string(ItemFunctionCall) {
			continue
		}
		call, err := item.ToolCall()
		if err != nil {
			return nil, err
		}
		calls = append(calls, call)
	}
	return calls, nil
}

// OutputItem is one entry of a response output. Message and function_call
// items are decoded into the typed fields; Raw always holds the original
// JSON so other item types (reasoning, web_search_call, mcp_call, ...) are
// preserved.
type OutputItem struct {
	Type   string `json:"type"`
	ID     string `json:"id,omitempty"`
	Status string `json:"status,omitempty"`

	// Role and Content are set on message items.
	Role    types.Role    `json:"role,omitempty"`
	Content []ContentPart `json:"content,omitempty"`

	// CallID, Name and Arguments are set on function_call items.
	// Arguments is the JSON string sent by the model.
	CallID    string `json:"call_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`

	// Output is set on function_call_output items. It is either a JSON
	// string or an array of content parts; see OutputString.
	Output json.RawMessage `json:"output,omitempty"`

	// Summary is set on reasoning items.
	Summary []ContentPart `json:"summary,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON keeps a copy of the raw item.
func (o *OutputItem) UnmarshalJSON(data []byte) error {
	type plain OutputItem
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*o = OutputItem(p)
	o.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON re-emits the raw item when present.
func (o OutputItem) MarshalJSON() ([]byte, error) {
	if len(o.Raw) > 0 {
		return o.Raw, nil
	}
	type plain OutputItem
	return json.Marshal(plain(o))
}

// Validate checks the fields required by the item type.
func (o *OutputItem) Validate() error {
	switch o.Type {
	case "":
		return missingField(responsesEndpoint, "output type")
	case string(ItemFunctionCall):
		if o.CallID == "" {
			return missingField(responsesEndpoint, "function_call call_id")
		}
		if o.Name == "" {
			return missingField(responsesEndpoint, "function_call name")
		}
	}
	return nil
}

// OutputString returns the output of a function_call_output item. Array
// outputs are reduced to the text of their parts, joined by newlines.
func (o OutputItem) OutputString() string {
	out := gjson.ParseBytes(o.Output)
	if !out.IsArray() {
		return out.String()
	}
	var parts []string
	out.ForEach(func(_, part gjson.Result) bool {
		if text := part.Get("text"); text.Exists() {
			parts = append(parts, text.String())
		}
		return true
	})
	return strings.Join(parts, "\n")
}

// ToolCall converts a function_call item. The arguments string is decoded
// into a map.
func (o OutputItem) ToolCall() (ToolCall, error) {
	if o.Type != string(ItemFunctionCall) {
		return ToolCall{}, invalidArgument(responsesEndpoint, "output item %q is not a function_call", o.Type)
	}
	args, err := decodeArguments(json.RawMessage(mustJSONString(o.Arguments)))
	if err != nil {
		return ToolCall{}, responseShapeError(responsesEndpoint, err)
	}
	return NewToolCall(o.CallID, o.Name, args), nil
}

// AsInput echoes the item back as input for the next turn.
func (o OutputItem) AsInput() InputItem {
	if len(o.Raw) > 0 {
		return RawItem(o.Raw)
	}
	data, _ := o.MarshalJSON()
	return RawItem(data)
}

func mustJSONString(s string) []byte {
	data, _ := json.Marshal(s)
	return data
}

// CreateResponse sends a request to the responses endpoint.
//
// Example:
//
//	s := schema.NewResponsesJSON("capital")
//	s.AddProperty("capital", schema.TypeString, "The capital city")
//	resp, err := client.CreateResponse(ctx, &oaikit.ResponseRequest{
//	    Model: types.GPT4oMini,
//	    Input: oaikit.ResponseInputText("What is the capital of France?"),
//	    Text:  &oaikit.ResponseText{Format: s},
//	})
//	fmt.Println(resp.OutputText()) // {"capital":"Paris"}
func (c *Client) CreateResponse(ctx context.Context, req *ResponseRequest) (*ResponseObject, error) {
	if req == nil {
		return nil, missingField(responsesEndpoint, "request")
	}
	if err := req.Validate(); err != nil {
		return nil, classify(responsesEndpoint, err)
	}

	wire := *req
	if wire.Model == "" {
		wire.Model = types.DefaultChatModel
	}
	if wire.Model.IsReasoningModel() {
		var dropped []string
		if wire.Temperature != nil {
			wire.Temperature = nil
			dropped = append(dropped, "temperature")
		}
		if wire.TopP != nil {
			wire.TopP = nil
			dropped = append(dropped, "top_p")
		}
		if wire.TopLogprobs != nil {
			wire.TopLogprobs = nil
			dropped = append(dropped, "top_logprobs")
		}
		if len(dropped) > 0 {
			c.logger.Warn("dropping parameters unsupported by reasoning model", "endpoint", responsesEndpoint, "model", wire.Model, "params", dropped)
		}
	}

	var resp ResponseObject
	if err := c.doJSON(ctx, http.MethodPost, responsesEndpoint, nil, string(wire.Model), &wire, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetResponse retrieves a stored response.
func (c *Client) GetResponse(ctx context.Context, id string) (*ResponseObject, error) {
	if id == "" {
		return nil, missingField(responsesEndpoint, "response id")
	}
	var resp ResponseObject
	if err := c.doJSON(ctx, http.MethodGet, joinPath(responsesEndpoint, id), nil, "", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteResponse deletes a stored response.
func (c *Client) DeleteResponse(ctx context.Context, id string) (*DeletedObject, error) {
	if id == "" {
		return nil, missingField(responsesEndpoint, "response id")
	}
	var resp DeletedObject
	if err := c.doJSON(ctx, http.MethodDelete, joinPath(responsesEndpoint, id), nil, "", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CancelResponse cancels a background response.
func (c *Client) CancelResponse(ctx context.Context, id string) (*ResponseObject, error) {
	if id == "" {
		return nil, missingField(responsesEndpoint, "response id")
	}
	var resp ResponseObject
	if err := c.doJSON(ctx, http.MethodPost, joinPath(responsesEndpoint, id, "cancel"), nil, "", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListResponseInputItems lists the input items of a stored response.
func (c *Client) ListResponseInputItems(ctx context.Context, id string, params ListParams) (*List[OutputItem], error) {
	if id == "" {
		return nil, missingField(responsesEndpoint, "response id")
	}
	if err := params.Validate(); err != nil {
		return nil, classify(responsesEndpoint, err)
	}
	var resp List[OutputItem]
	if err := c.doJSON(ctx, http.MethodGet, joinPath(responsesEndpoint, id, "input_items"), params.values(), "", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

