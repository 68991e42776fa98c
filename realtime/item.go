package realtime

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	oaikit "github.com/blue-context/oaikit"
	"github.com/blue-context/oaikit/types"
)

// ItemType discriminates conversation items.
type ItemType string

const (
	ItemMessage            ItemType = "message"
	ItemFunctionCall       ItemType = "function_call"
	ItemFunctionCallOutput ItemType = "function_call_output"
)

// Item is a conversation item: a message, a function call or the output of
// a function call. ID and Status are assigned by the server.
//
// A function_call and its function_call_output are paired by CallID.
type Item struct {
	ID     string           `json:"id,omitempty"`
	Object string           `json:"object,omitempty"`
	Type   ItemType         `json:"type"`
	Status types.ItemStatus `json:"status,omitempty"`

	// Role and Content are set on messages.
	Role    types.Role           `json:"role,omitempty"`
	Content []oaikit.ContentPart `json:"content,omitempty"`

	// CallID pairs function_call and function_call_output items.
	CallID string `json:"call_id,omitempty"`

	// Name and Arguments are set on function calls. Arguments is a JSON
	// document encoded as a string.
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`

	// Output is the result of a function call.
	Output string `json:"output,omitempty"`
}

// NewMessageItem creates a message item from content parts.
func NewMessageItem(role types.Role, parts ...oaikit.ContentPart) Item {
	return Item{Type: ItemMessage, Role: role, Content: parts}
}

// NewUserText creates a user message with one input_text part.
func NewUserText(text string) Item {
	return NewMessageItem(types.RoleUser, oaikit.InputText(text))
}

// NewSystemText creates a system message with one input_text part.
func NewSystemText(text string) Item {
	return NewMessageItem(types.RoleSystem, oaikit.InputText(text))
}

// NewAssistantText creates an assistant message with one text part.
func NewAssistantText(text string) Item {
	return NewMessageItem(types.RoleAssistant, oaikit.ContentPart{Type: oaikit.PartText, Text: text})
}

// NewUserAudio creates a user message carrying raw audio in the session's
// input audio format.
func NewUserAudio(audio []byte) Item {
	return NewMessageItem(types.RoleUser, InputAudio(audio, ""))
}

// InputAudio creates an input_audio part. The transcript is optional.
func InputAudio(audio []byte, transcript string) oaikit.ContentPart {
	return oaikit.ContentPart{
		Type:       oaikit.PartInputAudio,
		Audio:      base64.StdEncoding.EncodeToString(audio),
		Transcript: transcript,
	}
}

// NewFunctionCallItem creates a function_call item. arguments must be a JSON
// document or empty.
func NewFunctionCallItem(callID, name, arguments string) Item {
	return Item{Type: ItemFunctionCall, CallID: callID, Name: name, Arguments: arguments}
}

// NewFunctionOutputItem creates the function_call_output answering callID.
func NewFunctionOutputItem(callID, output string) Item {
	return Item{Type: ItemFunctionCallOutput, CallID: callID, Output: output}
}

// NewItemReference creates an item_reference usable in ResponseConfig.Input.
func NewItemReference(id string) Item {
	return Item{Type: "item_reference", ID: id}
}

var realtimePartTypes = map[oaikit.ContentPartType]bool{
	oaikit.PartInputText:     true,
	oaikit.PartInputAudio:    true,
	oaikit.PartText:          true,
	oaikit.PartAudio:         true,
	oaikit.PartItemReference: true,
}

// Validate checks the fields required by the item type.
func (it Item) Validate() error {
	switch it.Type {
	case ItemMessage:
		switch it.Role {
		case types.RoleUser, types.RoleAssistant, types.RoleSystem:
		case "":
			return missingField("message role")
		default:
			return invalidArgument("realtime messages take user, assistant or system roles, got %q", it.Role)
		}
		if len(it.Content) == 0 {
			return missingField("message content")
		}
		for i, p := range it.Content {
			if !realtimePartTypes[p.Type] {
				return invalidArgument("content[%d]: %q parts are not accepted by realtime sessions", i, p.Type)
			}
			if p.Type == oaikit.PartItemReference && p.ID == "" {
				return missingField("item_reference id")
			}
		}
	case ItemFunctionCall:
		if it.CallID == "" {
			return missingField("function_call call_id")
		}
		if it.Name == "" {
			return missingField("function_call name")
		}
		if it.Arguments != "" && !json.Valid([]byte(it.Arguments)) {
			return invalidArgument("function_call arguments are not valid JSON")
		}
	case ItemFunctionCallOutput:
		if it.CallID == "" {
			return missingField("function_call_output call_id")
		}
	case "item_reference":
		if it.ID == "" {
			return missingField("item_reference id")
		}
	case "":
		return missingField("item type")
	default:
		return invalidArgument("unknown item type %q", it.Type)
	}
	return nil
}

// Text returns the text of a message: text parts and audio transcripts in
// order. Function call outputs return Output.
func (it Item) Text() string {
	if it.Type == ItemFunctionCallOutput {
		return it.Output
	}
	var b strings.Builder
	for _, p := range it.Content {
		switch p.Type {
		case oaikit.PartInputText, oaikit.PartText:
			b.WriteString(p.Text)
		case oaikit.PartInputAudio, oaikit.PartAudio:
			b.WriteString(p.Transcript)
		}
	}
	return b.String()
}
