package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/emirpasic/gods/v2/maps/linkedhashmap"
	"github.com/tidwall/gjson"

	"github.com/blue-context/oaikit/types"
)

// PropertyType is the JSON Schema type of a property.
type PropertyType string

const (
	TypeString  PropertyType = "string"
	TypeNumber  PropertyType = "number"
	TypeInteger PropertyType = "integer"
	TypeBoolean PropertyType = "boolean"
	TypeArray   PropertyType = "array"
	TypeObject  PropertyType = "object"
)

// Scalar reports whether t may be used with Object.Add.
func (t PropertyType) Scalar() bool {
	switch t {
	case TypeString, TypeNumber, TypeInteger, TypeBoolean:
		return true
	}
	return false
}

// Property describes one entry of an object's properties map.
//
// A property is either a scalar (Type is one of the scalar types, with an
// optional description and enum list) or an array of objects (Type is
// "array" and Items holds the element schema).
//
// Descriptors decoded from foreign schemas that fall outside this subset
// keep their original JSON in Raw and are re-emitted verbatim.
type Property struct {
	Type        PropertyType `json:"type"`
	Description string       `json:"description,omitempty"`
	Enum        []string     `json:"enum,omitempty"`
	Items       *Object      `json:"items,omitempty"`

	Raw json.RawMessage `json:"-"`
}

type plainProperty Property

// MarshalJSON emits Raw when set, otherwise the structured fields.
func (p Property) MarshalJSON() ([]byte, error) {
	if len(p.Raw) > 0 {
		return p.Raw, nil
	}
	return json.Marshal(plainProperty(p))
}

// UnmarshalJSON decodes a descriptor. Anything beyond type, description,
// enum and an object-typed items is preserved in Raw.
func (p *Property) UnmarshalJSON(data []byte) error {
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return fmt.Errorf("%w: property descriptor must be a JSON object", types.ErrResponseShape)
	}
	foreign := false
	doc.ForEach(func(key, value gjson.Result) bool {
		switch key.String() {
		case "type":
			foreign = value.Type != gjson.String
		case "description":
		case "enum":
			for _, e := range value.Array() {
				foreign = foreign || e.Type != gjson.String
			}
		case "items":
			foreign = foreign || value.Get("type").String() != string(TypeObject)
		default:
			foreign = true
		}
		return !foreign
	})

	*p = Property{}
	if t := doc.Get("type"); t.Type == gjson.String {
		p.Type = PropertyType(t.String())
	}
	if foreign {
		p.Raw = append(json.RawMessage(nil), data...)
		return nil
	}
	p.Description = doc.Get("description").String()
	for _, v := range doc.Get("enum").Array() {
		p.Enum = append(p.Enum, v.String())
	}
	if items := doc.Get("items"); items.Exists() {
		p.Items = NewObject()
		if err := p.Items.UnmarshalJSON([]byte(items.Raw)); err != nil {
			return err
		}
	}
	return nil
}

// Field is one (name, description) pair of an array element object.
// Every field of an element is typed as string.
type Field struct {
	Name        string
	Description string
}

// Object is a JSON Schema object restricted to the subset the remote service
// accepts: type "object", ordered properties, required names and
// additionalProperties.
//
// Properties are emitted in insertion order. Re-adding a name replaces its
// descriptor in place and does not duplicate it in the required list.
//
// Thread Safety: Object is not safe for concurrent mutation. Build it on one
// goroutine, then share it read-only.
type Object struct {
	properties           *linkedhashmap.Map[string, Property]
	required             []string
	additionalProperties bool
}

// NewObject returns an empty object schema with additionalProperties false.
//
// Example:
//
//	params := schema.NewObject()
//	params.Add("a", schema.TypeNumber, "first operand")
//	params.Add("b", schema.TypeNumber, "second operand")
func NewObject() *Object {
	return &Object{properties: linkedhashmap.New[string, Property]()}
}

func (o *Object) props() *linkedhashmap.Map[string, Property] {
	if o.properties == nil {
		o.properties = linkedhashmap.New[string, Property]()
	}
	return o.properties
}

// Add inserts a scalar property and marks it required.
func (o *Object) Add(name string, typ PropertyType, description string) error {
	return o.AddEnum(name, typ, description, nil)
}

// AddEnum inserts a scalar property restricted to values and marks it required.
func (o *Object) AddEnum(name string, typ PropertyType, description string, values []string) error {
	if name == "" {
		return fmt.Errorf("%w: property name is empty", types.ErrInvalidArgument)
	}
	if !typ.Scalar() {
		return fmt.Errorf("%w: property %q has non-scalar type %q", types.ErrInvalidArgument, name, typ)
	}
	o.put(name, Property{Type: typ, Description: description, Enum: slices.Clone(values)})
	return nil
}

// AddArray inserts an array-of-object property whose element object has one
// required string property per field.
func (o *Object) AddArray(name string, fields []Field) error {
	if name == "" {
		return fmt.Errorf("%w: property name is empty", types.ErrInvalidArgument)
	}
	items := NewObject()
	for _, f := range fields {
		if err := items.Add(f.Name, TypeString, f.Description); err != nil {
			return fmt.Errorf("array %q: %w", name, err)
		}
	}
	o.put(name, Property{Type: TypeArray, Items: items})
	return nil
}

// Set inserts an arbitrary property descriptor. It is used when decoding
// parameter schemas from other sources.
func (o *Object) Set(name string, p Property) {
	o.put(name, p)
}

func (o *Object) put(name string, p Property) {
	o.props().Put(name, p)
	if !slices.Contains(o.required, name) {
		o.required = append(o.required, name)
	}
}

// SetAdditionalProperties overrides the additionalProperties flag.
func (o *Object) SetAdditionalProperties(allowed bool) {
	o.additionalProperties = allowed
}

// AdditionalProperties returns the additionalProperties flag.
func (o *Object) AdditionalProperties() bool {
	return o.additionalProperties
}

// Properties returns property names in insertion order, or nil when the
// object has none.
func (o *Object) Properties() []string {
	if o.Len() == 0 {
		return nil
	}
	return o.properties.Keys()
}

// Property returns the descriptor for name.
func (o *Object) Property(name string) (Property, bool) {
	if o.properties == nil {
		return Property{}, false
	}
	return o.properties.Get(name)
}

// Required returns a copy of the required names in order.
func (o *Object) Required() []string {
	return slices.Clone(o.required)
}

// Len returns the number of properties.
func (o *Object) Len() int {
	if o.properties == nil {
		return 0
	}
	return o.properties.Size()
}

// MarshalJSON emits {"type":"object","properties":{...},"required":[...],
// "additionalProperties":bool}. An empty required list is omitted.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"type":"object","properties":{`)
	for i, name := range o.Properties() {
		p, _ := o.properties.Get(name)
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	if len(o.required) > 0 {
		req, err := json.Marshal(o.required)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`,"required":`)
		buf.Write(req)
	}
	if o.additionalProperties {
		buf.WriteString(`,"additionalProperties":true}`)
	} else {
		buf.WriteString(`,"additionalProperties":false}`)
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object schema, keeping the wire order of
// properties. Only names listed in "required" are marked required.
func (o *Object) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("%w: object schema is not valid JSON", types.ErrResponseShape)
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return fmt.Errorf("%w: object schema must be a JSON object", types.ErrResponseShape)
	}
	if t := doc.Get("type"); t.Exists() && t.String() != string(TypeObject) {
		return fmt.Errorf("%w: object schema has type %q", types.ErrResponseShape, t.String())
	}

	props := linkedhashmap.New[string, Property]()
	var decodeErr error
	doc.Get("properties").ForEach(func(key, value gjson.Result) bool {
		var p Property
		if err := json.Unmarshal([]byte(value.Raw), &p); err != nil {
			decodeErr = fmt.Errorf("property %q: %w", key.String(), err)
			return false
		}
		props.Put(key.String(), p)
		return true
	})
	if decodeErr != nil {
		return decodeErr
	}

	var required []string
	for _, r := range doc.Get("required").Array() {
		required = append(required, r.String())
	}

	o.properties = props
	o.required = required
	o.additionalProperties = doc.Get("additionalProperties").Bool()
	return nil
}
