package oaikit

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/blue-context/oaikit/schema"
	"github.com/blue-context/oaikit/types"
)

// ToolType discriminates tools.
type ToolType string

const (
	// ToolTypeFunction is a function executed by the caller.
	ToolTypeFunction ToolType = "function"
	// ToolTypeMCP is a remote MCP server the service calls itself.
	ToolTypeMCP ToolType = "mcp"
)

// Tool describes a tool the model may use. Exactly one of Function and MCP
// is set, matching Type.
//
// The default JSON form is the flat one used by the responses endpoint and
// realtime sessions:
//
//	{"type":"function","name":"calculator","parameters":{...},"strict":true}
//
// The chat endpoint nests the function instead; see ChatJSON.
//
// Thread Safety: Tool is safe for concurrent reads after creation.
type Tool struct {
	// Type is the tool discriminator.
	Type ToolType

	// Function is set for function tools.
	Function *Function

	// MCP is set for remote MCP server tools.
	MCP *MCPServer
}

// Function describes a callable function.
type Function struct {
	// Name is the function name that the model will use.
	Name string `json:"name"`

	// Description explains what the function does.
	// The model uses this to decide when to call the function.
	Description string `json:"description,omitempty"`

	// Parameters is the argument object schema.
	Parameters *schema.Object `json:"parameters,omitempty"`

	// Strict enables strict schema adherence for arguments.
	Strict bool `json:"strict"`
}

// MCPServer references a remote MCP server. The service connects to it
// and runs the tools itself.
type MCPServer struct {
	ServerLabel string `json:"server_label"`
	ServerURL   string `json:"server_url"`

	// RequireApproval is the JSON string "always" or "never", or an
	// approval filter object such as ApprovalNotRequiredFor builds.
	RequireApproval json.RawMessage `json:"require_approval,omitempty"`

	// AllowedTools restricts the server tools the model may call.
	AllowedTools []string `json:"allowed_tools,omitempty"`

	Parameters *schema.Object    `json:"parameters,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"`
}

// NewFunctionTool creates a function tool. A nil params becomes an empty
// object schema.
//
// Example:
//
//	params := schema.NewObject()
//	params.Add("a", schema.TypeNumber, "first operand")
//	params.Add("b", schema.TypeNumber, "second operand")
//	tool := oaikit.NewFunctionTool("calculator", "Add two numbers", params, true)
func NewFunctionTool(name, description string, params *schema.Object, strict bool) Tool {
	if params == nil {
		params = schema.NewObject()
	}
	return Tool{
		Type:     ToolTypeFunction,
		Function: &Function{Name: name, Description: description, Parameters: params, Strict: strict},
	}
}

// NewMCPTool creates a remote MCP server tool. requireApproval is "always",
// "never" or empty for the server default.
func NewMCPTool(label, url, requireApproval string, allowedTools []string) Tool {
	server := &MCPServer{ServerLabel: label, ServerURL: url, AllowedTools: allowedTools}
	if requireApproval != "" {
		server.RequireApproval, _ = json.Marshal(requireApproval)
	}
	return Tool{Type: ToolTypeMCP, MCP: server}
}

// ApprovalNotRequiredFor returns an approval filter that skips approval for
// the named tools and requires it for every other tool.
func ApprovalNotRequiredFor(toolNames ...string) json.RawMessage {
	data, _ := json.Marshal(map[string]any{
		"never": map[string][]string{"tool_names": toolNames},
	})
	return data
}

// Name returns the function name or the MCP server label.
func (t Tool) Name() string {
	switch {
	case t.Function != nil:
		return t.Function.Name
	case t.MCP != nil:
		return t.MCP.ServerLabel
	}
	return ""
}

// Validate checks that the tool's variant matches its type and that the
// identifying fields are set.
func (t Tool) Validate() error {
	switch t.Type {
	case ToolTypeFunction:
		if t.Function == nil {
			return missingField("", "function tool definition")
		}
		if t.Function.Name == "" {
			return missingField("", "function tool name")
		}
	case ToolTypeMCP:
		if t.MCP == nil {
			return missingField("", "mcp tool definition")
		}
		if t.MCP.ServerLabel == "" {
			return missingField("", "mcp server_label")
		}
		if t.MCP.ServerURL == "" {
			return missingField("", "mcp server_url")
		}
		if len(t.MCP.RequireApproval) > 0 && !json.Valid(t.MCP.RequireApproval) {
			return invalidArgument("", "mcp require_approval is not valid JSON")
		}
	case "":
		return missingField("", "tool type")
	default:
		return invalidArgument("", "unknown tool type %q", t.Type)
	}
	return nil
}

// MarshalJSON emits the flat form.
func (t Tool) MarshalJSON() ([]byte, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	var body []byte
	var err error
	switch t.Type {
	case ToolTypeFunction:
		body, err = json.Marshal(t.Function)
	case ToolTypeMCP:
		body, err = json.Marshal(t.MCP)
	}
	if err != nil {
		return nil, err
	}
	return withType(string(t.Type), body), nil
}

// ChatJSON emits the nested form used by chat completions:
//
//	{"type":"function","function":{"name":...,"parameters":{...}}}
//
// MCP tools are not accepted by chat completions.
func (t Tool) ChatJSON() ([]byte, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if t.Type != ToolTypeFunction {
		return nil, invalidArgument("chat/completions", "%s tools are only supported by the responses endpoint", t.Type)
	}
	return json.Marshal(struct {
		Type     ToolType  `json:"type"`
		Function *Function `json:"function"`
	}{Type: t.Type, Function: t.Function})
}

// UnmarshalJSON accepts both the flat and the nested form.
func (t *Tool) UnmarshalJSON(data []byte) error {
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return fmt.Errorf("%w: tool must be a JSON object", types.ErrResponseShape)
	}
	*t = Tool{Type: ToolType(doc.Get("type").String())}
	switch t.Type {
	case ToolTypeFunction:
		raw := data
		if nested := doc.Get("function"); nested.IsObject() {
			raw = []byte(nested.Raw)
		}
		t.Function = &Function{}
		return json.Unmarshal(raw, t.Function)
	case ToolTypeMCP:
		t.MCP = &MCPServer{}
		return json.Unmarshal(data, t.MCP)
	}
	return fmt.Errorf("%w: unknown tool type %q", types.ErrResponseShape, t.Type)
}

// withType prepends "type" to a marshalled JSON object.
func withType(typ string, obj []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(`{"type":`)
	name, _ := json.Marshal(typ)
	buf.Write(name)
	inner := bytes.TrimSpace(obj)
	if len(inner) > 2 {
		buf.WriteByte(',')
		buf.Write(inner[1 : len(inner)-1])
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

// ToolChoice controls which tool, if any, the model calls.
//
// The zero value lets the service decide and is omitted from requests.
type ToolChoice struct {
	mode     string
	function string
}

var (
	// ToolChoiceAuto lets the model decide whether to call a tool.
	ToolChoiceAuto = ToolChoice{mode: "auto"}
	// ToolChoiceNone forbids tool calls.
	ToolChoiceNone = ToolChoice{mode: "none"}
	// ToolChoiceRequired forces at least one tool call.
	ToolChoiceRequired = ToolChoice{mode: "required"}
)

// ToolChoiceFunction forces a call to the named function.
func ToolChoiceFunction(name string) ToolChoice {
	return ToolChoice{mode: "function", function: name}
}

// IsZero reports whether no choice was made.
func (c ToolChoice) IsZero() bool { return c.mode == "" }

// Function returns the forced function name, if any.
func (c ToolChoice) Function() string { return c.function }

// String returns the mode, or "function:<name>" for a forced function.
func (c ToolChoice) String() string {
	if c.mode == "function" {
		return "function:" + c.function
	}
	return c.mode
}

// MarshalJSON emits the flat form: "auto" or {"type":"function","name":...}.
func (c ToolChoice) MarshalJSON() ([]byte, error) {
	if c.mode == "function" {
		if c.function == "" {
			return nil, missingField("", "tool_choice function name")
		}
		return json.Marshal(map[string]string{"type": "function", "name": c.function})
	}
	if c.mode == "" {
		return []byte("null"), nil
	}
	return json.Marshal(c.mode)
}

// chatJSON emits the nested chat form for forced functions.
func (c ToolChoice) chatJSON() ([]byte, error) {
	if c.mode == "function" {
		if c.function == "" {
			return nil, missingField("chat/completions", "tool_choice function name")
		}
		return json.Marshal(map[string]any{
			"type":     "function",
			"function": map[string]string{"name": c.function},
		})
	}
	return c.MarshalJSON()
}

// UnmarshalJSON accepts a mode string, the flat form or the nested form.
func (c *ToolChoice) UnmarshalJSON(data []byte) error {
	doc := gjson.ParseBytes(data)
	switch {
	case doc.Type == gjson.Null:
		*c = ToolChoice{}
	case doc.Type == gjson.String:
		switch mode := doc.String(); mode {
		case "auto", "none", "required":
			*c = ToolChoice{mode: mode}
		default:
			return fmt.Errorf("%w: unknown tool_choice %q", types.ErrResponseShape, mode)
		}
	case doc.IsObject():
		name := doc.Get("name").String()
		if name == "" {
			name = doc.Get("function.name").String()
		}
		if name == "" {
			return fmt.Errorf("%w: tool_choice object without function name", types.ErrResponseShape)
		}
		*c = ToolChoiceFunction(name)
	default:
		return fmt.Errorf("%w: tool_choice must be a string or an object", types.ErrResponseShape)
	}
	return nil
}
