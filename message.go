package oaikit

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/blue-context/oaikit/types"
)

// ContentPartType discriminates the entries of a message content list.
type ContentPartType string

const (
	PartInputText     ContentPartType = "input_text"
	PartInputImage    ContentPartType = "input_image"
	PartInputAudio    ContentPartType = "input_audio"
	PartInputFile     ContentPartType = "input_file"
	PartText          ContentPartType = "text"
	PartOutputText    ContentPartType = "output_text"
	PartAudio         ContentPartType = "audio"
	PartRefusal       ContentPartType = "refusal"
	PartItemReference ContentPartType = "item_reference"
)

// ImageDetail is the detail level requested for an input image.
// Valid values: "auto" (default), "low", "high"
type ImageDetail string

const (
	ImageDetailAuto ImageDetail = "auto"
	ImageDetailLow  ImageDetail = "low"
	ImageDetailHigh ImageDetail = "high"
)

// ContentPart is one element of a message content list.
//
// Only the fields relevant to Type are emitted; all others are omitted.
//
// Thread Safety: ContentPart is safe for concurrent reads after creation.
type ContentPart struct {
	// Type is the part discriminator.
	Type ContentPartType `json:"type"`

	// Text carries the text of input_text, text and output_text parts.
	Text string `json:"text,omitempty"`

	// ImageURL is an http(s) URL or a data URL (input_image).
	ImageURL string `json:"image_url,omitempty"`

	// Detail is the requested image detail level (input_image).
	Detail ImageDetail `json:"detail,omitempty"`

	// FileID references an uploaded file (input_file, input_image).
	FileID string `json:"file_id,omitempty"`

	// Filename and FileData carry an inline file (input_file).
	Filename string `json:"filename,omitempty"`
	FileData string `json:"file_data,omitempty"`

	// Audio is base64 audio (input_audio, audio).
	Audio string `json:"audio,omitempty"`

	// Format is the audio container of Audio, e.g. "wav" (input_audio).
	Format string `json:"format,omitempty"`

	// Transcript is the text of audio content (input_audio, audio).
	Transcript string `json:"transcript,omitempty"`

	// ID references an existing conversation item (item_reference).
	ID string `json:"id,omitempty"`

	// Refusal is the model's refusal text (refusal).
	Refusal string `json:"refusal,omitempty"`

	// Annotations attached to output_text parts, kept verbatim.
	Annotations []json.RawMessage `json:"annotations,omitempty"`
}

// InputText creates an input_text part.
func InputText(text string) ContentPart {
	return ContentPart{Type: PartInputText, Text: text}
}

// InputImageURL creates an input_image part from an http(s) or data URL.
func InputImageURL(url string, detail ImageDetail) ContentPart {
	return ContentPart{Type: PartInputImage, ImageURL: url, Detail: detail}
}

// InputImageFileID creates an input_image part referencing an uploaded file.
func InputImageFileID(fileID string, detail ImageDetail) ContentPart {
	return ContentPart{Type: PartInputImage, FileID: fileID, Detail: detail}
}

// InputAudio creates an input_audio part from raw audio bytes.
func InputAudio(data []byte, format string) ContentPart {
	return ContentPart{Type: PartInputAudio, Audio: base64.StdEncoding.EncodeToString(data), Format: format}
}

// InputFileID creates an input_file part referencing an uploaded file.
func InputFileID(fileID string) ContentPart {
	return ContentPart{Type: PartInputFile, FileID: fileID}
}

// ItemReference creates an item_reference part.
func ItemReference(id string) ContentPart {
	return ContentPart{Type: PartItemReference, ID: id}
}

// imageMIME maps lowercase file extensions to the MIME types accepted for
// inline images.
var imageMIME = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
}

// InputImageFile creates an input_image part from a local image file.
//
// The MIME type comes from the lowercase extension (png, jpg, jpeg, gif);
// any other extension fails with ErrInvalidArgument. The image is decoded
// and re-encoded in the same format before being embedded as
// data:<mime>;base64,<payload>. Re-encoding of lossy formats does not
// preserve the exact file bytes.
//
// Example:
//
//	part, err := oaikit.InputImageFile("./photo.jpg")
//	msg := oaikit.NewPartsMessage(types.RoleUser, oaikit.InputText("What is this?"), part)
func InputImageFile(path string) (ContentPart, error) {
	ext := strings.ToLower(filepath.Ext(path))
	mime, ok := imageMIME[ext]
	if !ok {
		return ContentPart{}, invalidArgument("", "unsupported image extension %q (want png, jpg, jpeg or gif)", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return ContentPart{}, newError(KindInvalidArgument, "", err, "failed to open image: %v", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	switch mime {
	case "image/png":
		img, err := png.Decode(f)
		if err != nil {
			return ContentPart{}, decodeImageError(path, err)
		}
		err = png.Encode(&buf, img)
		if err != nil {
			return ContentPart{}, decodeImageError(path, err)
		}
	case "image/jpeg":
		img, err := jpeg.Decode(f)
		if err != nil {
			return ContentPart{}, decodeImageError(path, err)
		}
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95})
		if err != nil {
			return ContentPart{}, decodeImageError(path, err)
		}
	case "image/gif":
		anim, err := gif.DecodeAll(f)
		if err != nil {
			return ContentPart{}, decodeImageError(path, err)
		}
		err = gif.EncodeAll(&buf, anim)
		if err != nil {
			return ContentPart{}, decodeImageError(path, err)
		}
	}

	return ContentPart{
		Type:     PartInputImage,
		ImageURL: "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

func decodeImageError(path string, err error) error {
	if errors.Is(err, image.ErrFormat) {
		return newError(KindInvalidArgument, "", err, "%s is not a valid image: %v", filepath.Base(path), err)
	}
	return newError(KindInvalidArgument, "", err, "failed to re-encode %s: %v", filepath.Base(path), err)
}

// Validate checks that the fields required by the part type are set.
func (p ContentPart) Validate() error {
	switch p.Type {
	case PartInputText, PartText, PartOutputText:
		return nil
	case PartInputImage:
		if p.ImageURL == "" && p.FileID == "" {
			return missingField("", "input_image image_url or file_id")
		}
	case PartInputAudio:
		if p.Audio == "" {
			return missingField("", "input_audio audio")
		}
	case PartInputFile:
		if p.FileID == "" && p.FileData == "" {
			return missingField("", "input_file file_id or file_data")
		}
	case PartItemReference:
		if p.ID == "" {
			return missingField("", "item_reference id")
		}
	case PartAudio, PartRefusal:
		return nil
	case "":
		return missingField("", "content part type")
	default:
		return invalidArgument("", "unknown content part type %q", p.Type)
	}
	return nil
}

// MessageContent is the body of a message: either a single text or an
// ordered list of content parts, never both.
//
// The zero value holds neither and fails to serialize.
type MessageContent struct {
	text  *string
	parts []ContentPart
}

// TextContent returns single-body content.
func TextContent(text string) MessageContent {
	return MessageContent{text: &text}
}

// PartsContent returns content-list content. Parts keep their order.
func PartsContent(parts ...ContentPart) MessageContent {
	if parts == nil {
		parts = []ContentPart{}
	}
	return MessageContent{parts: parts}
}

// IsText reports whether the content is a single text body.
func (c MessageContent) IsText() bool { return c.text != nil }

// IsParts reports whether the content is a list of parts.
func (c MessageContent) IsParts() bool { return c.parts != nil }

// IsZero reports whether neither form is set.
func (c MessageContent) IsZero() bool { return c.text == nil && c.parts == nil }

// Parts returns the content parts, or nil for text content.
func (c MessageContent) Parts() []ContentPart { return c.parts }

// Text returns the text body. For part lists the texts of text-bearing
// parts are concatenated.
func (c MessageContent) Text() string {
	if c.text != nil {
		return *c.text
	}
	var b strings.Builder
	for _, p := range c.parts {
		switch p.Type {
		case PartInputText, PartText, PartOutputText:
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// Validate fails unless exactly one form is set.
func (c MessageContent) Validate() error {
	switch {
	case c.text != nil && c.parts != nil:
		return invalidArgument("", "message content has both text and content parts")
	case c.text == nil && c.parts == nil:
		return invalidArgument("", "message content has neither text nor content parts")
	}
	for i, p := range c.parts {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("content part %d: %w", i, err)
		}
	}
	return nil
}

// MarshalJSON emits a JSON string or an array of parts.
func (c MessageContent) MarshalJSON() ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.text != nil {
		return json.Marshal(*c.text)
	}
	return json.Marshal(c.parts)
}

// UnmarshalJSON accepts a string, an array of parts, or null (zero value).
func (c *MessageContent) UnmarshalJSON(data []byte) error {
	*c = MessageContent{}
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		return nil
	case len(trimmed) > 0 && trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		c.text = &s
		return nil
	case len(trimmed) > 0 && trimmed[0] == '[':
		parts := []ContentPart{}
		if err := json.Unmarshal(trimmed, &parts); err != nil {
			return err
		}
		c.parts = parts
		return nil
	}
	return fmt.Errorf("%w: message content must be a string, an array or null", types.ErrResponseShape)
}

// Message is a single conversation message.
//
// Content holds exactly one of a text body or a list of parts. The one
// exception is an assistant message that carries tool calls, whose content
// may be empty.
//
// Thread Safety: Message is safe for concurrent reads after creation.
//
// Example:
//
//	messages := []oaikit.Message{
//	    oaikit.NewTextMessage(types.RoleSystem, "You are terse."),
//	    oaikit.NewTextMessage(types.RoleUser, "Hello"),
//	}
type Message struct {
	// Role identifies the message sender.
	Role types.Role

	// Content is the message body.
	Content MessageContent

	// Name is an optional participant name.
	Name string

	// ToolCalls contains tool invocations made by the assistant.
	ToolCalls []ToolCall

	// ToolCallID identifies which tool call this message answers.
	// Used when Role is "tool".
	ToolCallID string

	// Refusal is set when the assistant declined to answer.
	Refusal string

	// Annotations attached by the service (url citations, file citations).
	Annotations []json.RawMessage
}

// NewTextMessage creates a single-body message.
func NewTextMessage(role types.Role, text string) Message {
	return Message{Role: role, Content: TextContent(text)}
}

// NewPartsMessage creates a message with a list of content parts.
func NewPartsMessage(role types.Role, parts ...ContentPart) Message {
	return Message{Role: role, Content: PartsContent(parts...)}
}

// NewToolResultMessage creates the tool-role message answering a tool call.
func NewToolResultMessage(callID, output string) Message {
	return Message{Role: types.RoleTool, Content: TextContent(output), ToolCallID: callID}
}

// Text returns the text of the message content.
func (m Message) Text() string { return m.Content.Text() }

func (m Message) toolCallOnly() bool {
	return m.Role == types.RoleAssistant && len(m.ToolCalls) > 0 && m.Content.IsZero()
}

// Validate reports whether the message can be serialized.
func (m Message) Validate() error {
	if m.Role == "" {
		return missingField("", "message role")
	}
	if !m.Role.Valid() {
		return invalidArgument("", "unknown message role %q", m.Role)
	}
	if m.toolCallOnly() {
		return nil
	}
	if err := m.Content.Validate(); err != nil {
		return err
	}
	if m.Role == types.RoleTool && m.ToolCallID == "" {
		return missingField("", "tool message tool_call_id")
	}
	return nil
}

type messageJSON struct {
	Role        types.Role        `json:"role"`
	Content     *MessageContent   `json:"content,omitempty"`
	Name        string            `json:"name,omitempty"`
	ToolCalls   []ToolCall        `json:"tool_calls,omitempty"`
	ToolCallID  string            `json:"tool_call_id,omitempty"`
	Refusal     string            `json:"refusal,omitempty"`
	Annotations []json.RawMessage `json:"annotations,omitempty"`
}

// MarshalJSON fails with ErrInvalidArgument when the content has neither
// or both forms set.
func (m Message) MarshalJSON() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	out := messageJSON{
		Role:        m.Role,
		Name:        m.Name,
		ToolCalls:   m.ToolCalls,
		ToolCallID:  m.ToolCallID,
		Refusal:     m.Refusal,
		Annotations: m.Annotations,
	}
	if !m.Content.IsZero() {
		out.Content = &m.Content
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a message. Null or absent content is only accepted
// on assistant messages carrying tool calls or a refusal.
func (m *Message) UnmarshalJSON(data []byte) error {
	var in struct {
		messageJSON
		Content MessageContent `json:"content"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*m = Message{
		Role:        in.Role,
		Content:     in.Content,
		Name:        in.Name,
		ToolCalls:   in.ToolCalls,
		ToolCallID:  in.ToolCallID,
		Refusal:     in.Refusal,
		Annotations: in.Annotations,
	}
	if m.Content.IsZero() && !(m.Role == types.RoleAssistant && (len(m.ToolCalls) > 0 || m.Refusal != "")) {
		return fmt.Errorf("%w: %s message without content", types.ErrResponseShape, m.Role)
	}
	return nil
}

// ToolCall is a tool invocation made by the model.
type ToolCall struct {
	// ID is a unique identifier for this tool call.
	ID string `json:"id"`

	// Type is the tool type. Always "function".
	Type string `json:"type"`

	// Function contains the function call details.
	Function FunctionCall `json:"function"`
}

// NewToolCall creates a function tool call.
func NewToolCall(id, name string, args map[string]any) ToolCall {
	return ToolCall{ID: id, Type: "function", Function: FunctionCall{Name: name, Arguments: args}}
}

// FunctionCall is the function part of a tool call.
//
// On the wire Arguments is always a string containing JSON:
//
//	{"name":"calculator","arguments":"{\"a\":2,\"b\":2}"}
type FunctionCall struct {
	// Name is the function name.
	Name string

	// Arguments are the decoded call arguments.
	Arguments map[string]any
}

// ArgumentsJSON returns the arguments encoded as a JSON object string.
func (f FunctionCall) ArgumentsJSON() (string, error) {
	return encodeArguments(f.Arguments)
}

// MarshalJSON emits arguments as a JSON string.
func (f FunctionCall) MarshalJSON() ([]byte, error) {
	args, err := encodeArguments(f.Arguments)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	}{Name: f.Name, Arguments: args})
}

// UnmarshalJSON decodes arguments from a JSON string, or from an object.
func (f *FunctionCall) UnmarshalJSON(data []byte) error {
	var in struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	args, err := decodeArguments(in.Arguments)
	if err != nil {
		return err
	}
	f.Name = in.Name
	f.Arguments = args
	return nil
}

func encodeArguments(args map[string]any) (string, error) {
	if args == nil {
		return "{}", nil
	}
	data, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("%w: tool call arguments: %v", types.ErrInvalidArgument, err)
	}
	return string(data), nil
}

// decodeArguments accepts a JSON string holding an object, an object, or
// nothing.
func decodeArguments(raw json.RawMessage) (map[string]any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return map[string]any{}, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		if strings.TrimSpace(s) == "" {
			return map[string]any{}, nil
		}
		raw = json.RawMessage(s)
	}
	args := map[string]any{}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("%w: tool call arguments are not a JSON object: %v", types.ErrResponseShape, err)
	}
	return args, nil
}
