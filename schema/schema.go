// Package schema builds the structured-output schemas accepted by the chat
// and responses endpoints.
//
// A Schema is one of three envelopes, fixed at construction:
//
//	chat:            {"name":...,"schema":{...}}
//	responses JSON:  {"type":"json_schema","name":...,"schema":{...}}
//	responses text:  {"type":"text"}
//
// The nested object schema only ever uses the subset the service accepts:
// scalar properties (string, number, integer, boolean) with optional
// description and enum, and arrays of string-field objects. Every added
// property is required and additionalProperties defaults to false.
//
// Example:
//
//	s := schema.NewResponsesJSON("capital")
//	s.AddProperty("capital", schema.TypeString, "The capital city")
//	data, _ := json.Marshal(s)
//	// {"type":"json_schema","name":"capital","schema":{"type":"object",...}}
package schema

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/blue-context/oaikit/types"
)

// ErrSchemaShapeMismatch is returned when a property is added to a text envelope.
var ErrSchemaShapeMismatch = fmt.Errorf("%w: schema shape mismatch", types.ErrInvalidArgument)

// Envelope identifies the outer JSON shape of a Schema.
type Envelope int

const (
	// EnvelopeChat is the chat completions response_format.json_schema shape.
	EnvelopeChat Envelope = iota
	// EnvelopeResponsesJSON is the responses text.format json_schema shape.
	EnvelopeResponsesJSON
	// EnvelopeResponsesText is the responses text.format plain text shape.
	EnvelopeResponsesText
)

// String returns a readable envelope name.
func (e Envelope) String() string {
	switch e {
	case EnvelopeChat:
		return "chat"
	case EnvelopeResponsesJSON:
		return "responses_json"
	case EnvelopeResponsesText:
		return "responses_text"
	}
	return fmt.Sprintf("Envelope(%d)", int(e))
}

// Schema is a structured-output description in one of three envelopes.
//
// Thread Safety: Schema is not safe for concurrent mutation.
type Schema struct {
	envelope Envelope
	name     string
	strict   bool
	object   *Object
}

// NewChat returns a chat-style JSON schema named name.
func NewChat(name string) *Schema {
	return &Schema{envelope: EnvelopeChat, name: name, object: NewObject()}
}

// NewResponsesJSON returns a responses-style JSON schema named name.
func NewResponsesJSON(name string) *Schema {
	return &Schema{envelope: EnvelopeResponsesJSON, name: name, object: NewObject()}
}

// NewResponsesText returns the responses-style plain text format.
func NewResponsesText() *Schema {
	return &Schema{envelope: EnvelopeResponsesText}
}

// Envelope returns the envelope chosen at construction.
func (s *Schema) Envelope() Envelope { return s.envelope }

// Name returns the schema name ("" for the text envelope).
func (s *Schema) Name() string { return s.name }

// Object returns the nested object schema, or nil for the text envelope.
func (s *Schema) Object() *Object { return s.object }

// Strict reports whether strict schema adherence is requested.
func (s *Schema) Strict() bool { return s.strict }

// SetStrict requests strict schema adherence. It is emitted only when true.
func (s *Schema) SetStrict(strict bool) error {
	if s.envelope == EnvelopeResponsesText {
		return ErrSchemaShapeMismatch
	}
	s.strict = strict
	return nil
}

// AddProperty adds a required scalar property to the root object.
func (s *Schema) AddProperty(name string, typ PropertyType, description string) error {
	if s.envelope == EnvelopeResponsesText {
		return ErrSchemaShapeMismatch
	}
	return s.object.Add(name, typ, description)
}

// AddEnumProperty adds a required scalar property limited to values.
func (s *Schema) AddEnumProperty(name string, typ PropertyType, description string, values []string) error {
	if s.envelope == EnvelopeResponsesText {
		return ErrSchemaShapeMismatch
	}
	return s.object.AddEnum(name, typ, description, values)
}

// AddArrayProperty adds a required array property whose items are objects
// made of one required string property per field.
func (s *Schema) AddArrayProperty(name string, fields []Field) error {
	if s.envelope == EnvelopeResponsesText {
		return ErrSchemaShapeMismatch
	}
	return s.object.AddArray(name, fields)
}

// SetAdditionalProperties overrides additionalProperties on the root object.
func (s *Schema) SetAdditionalProperties(allowed bool) error {
	if s.envelope == EnvelopeResponsesText {
		return ErrSchemaShapeMismatch
	}
	s.object.SetAdditionalProperties(allowed)
	return nil
}

type jsonEnvelope struct {
	Type   string  `json:"type,omitempty"`
	Name   string  `json:"name"`
	Strict bool    `json:"strict,omitempty"`
	Schema *Object `json:"schema"`
}

// MarshalJSON emits the envelope chosen at construction.
func (s *Schema) MarshalJSON() ([]byte, error) {
	switch s.envelope {
	case EnvelopeResponsesText:
		return []byte(`{"type":"text"}`), nil
	case EnvelopeChat:
		return json.Marshal(jsonEnvelope{Name: s.name, Strict: s.strict, Schema: s.objectOrEmpty()})
	case EnvelopeResponsesJSON:
		return json.Marshal(jsonEnvelope{Type: "json_schema", Name: s.name, Strict: s.strict, Schema: s.objectOrEmpty()})
	}
	return nil, fmt.Errorf("%w: unknown schema envelope %d", types.ErrInvalidArgument, int(s.envelope))
}

func (s *Schema) objectOrEmpty() *Object {
	if s.object == nil {
		s.object = NewObject()
	}
	return s.object
}

// UnmarshalJSON recovers the envelope from the presence and value of "type".
func (s *Schema) UnmarshalJSON(data []byte) error {
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return fmt.Errorf("%w: schema envelope must be a JSON object", types.ErrResponseShape)
	}

	typ := doc.Get("type")
	switch {
	case !typ.Exists():
		s.envelope = EnvelopeChat
	case typ.String() == "json_schema":
		s.envelope = EnvelopeResponsesJSON
	case typ.String() == "text":
		*s = Schema{envelope: EnvelopeResponsesText}
		return nil
	default:
		return fmt.Errorf("%w: unknown schema envelope type %q", types.ErrResponseShape, typ.String())
	}

	s.name = doc.Get("name").String()
	s.strict = doc.Get("strict").Bool()
	s.object = NewObject()
	if raw := doc.Get("schema"); raw.Exists() {
		if err := s.object.UnmarshalJSON([]byte(raw.Raw)); err != nil {
			return err
		}
	}
	return nil
}

// ChatResponseFormat wraps a chat envelope as the chat completions
// response_format value: {"type":"json_schema","json_schema":{...}}.
type ChatResponseFormat struct {
	Schema *Schema
}

// MarshalJSON emits the wrapped chat envelope.
func (f ChatResponseFormat) MarshalJSON() ([]byte, error) {
	if f.Schema == nil {
		return nil, errors.New("schema: nil chat response format")
	}
	if f.Schema.envelope != EnvelopeChat {
		return nil, fmt.Errorf("%w: %s envelope used as chat response_format", ErrSchemaShapeMismatch, f.Schema.envelope)
	}
	inner, err := f.Schema.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Type       string          `json:"type"`
		JSONSchema json.RawMessage `json:"json_schema"`
	}{Type: "json_schema", JSONSchema: inner})
}

// UnmarshalJSON decodes {"type":"json_schema","json_schema":{...}}.
func (f *ChatResponseFormat) UnmarshalJSON(data []byte) error {
	doc := gjson.ParseBytes(data)
	if doc.Get("type").String() != "json_schema" {
		return fmt.Errorf("%w: response_format type %q", types.ErrResponseShape, doc.Get("type").String())
	}
	s := &Schema{}
	if err := s.UnmarshalJSON([]byte(doc.Get("json_schema").Raw)); err != nil {
		return err
	}
	if s.envelope != EnvelopeChat {
		return fmt.Errorf("%w: json_schema carries an outer type", types.ErrResponseShape)
	}
	f.Schema = s
	return nil
}
