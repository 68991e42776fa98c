package oaikit

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/blue-context/oaikit/types"
)

const embeddingsEndpoint = "embeddings"

// EmbeddingInput is a single string or a list of strings.
type EmbeddingInput struct {
	texts  []string
	single bool
}

// EmbeddingText returns single-string input.
func EmbeddingText(text string) EmbeddingInput {
	return EmbeddingInput{texts: []string{text}, single: true}
}

// EmbeddingTexts returns list input. One vector is returned per entry.
func EmbeddingTexts(texts ...string) EmbeddingInput {
	return EmbeddingInput{texts: texts}
}

// Len returns the number of inputs.
func (in EmbeddingInput) Len() int { return len(in.texts) }

// MarshalJSON emits a string or an array of strings.
func (in EmbeddingInput) MarshalJSON() ([]byte, error) {
	if in.single && len(in.texts) == 1 {
		return json.Marshal(in.texts[0])
	}
	return json.Marshal(in.texts)
}

// EmbeddingRequest is an embeddings request.
type EmbeddingRequest struct {
	// Model is the embedding model. DefaultEmbeddingModel is used when empty.
	Model types.EmbeddingModel `json:"model"`

	// Input holds at least one non-empty string.
	Input EmbeddingInput `json:"input"`

	// EncodingFormat is float (default) or base64.
	EncodingFormat types.EmbeddingEncoding `json:"encoding_format,omitempty"`

	// Dimensions truncates vectors (text-embedding-3 models only).
	Dimensions *int `json:"dimensions,omitempty"`

	// User is a stable end-user identifier.
	User string `json:"user,omitempty"`
}

// Validate rejects empty input and encodings other than float and base64.
func (r *EmbeddingRequest) Validate() error {
	if r.Input.Len() == 0 {
		return missingField(embeddingsEndpoint, "input")
	}
	for i, s := range r.Input.texts {
		if s == "" {
			return invalidArgument(embeddingsEndpoint, "input[%d] is empty", i)
		}
	}
	if r.Model != "" && !r.Model.Valid() {
		return invalidArgument(embeddingsEndpoint, "unknown embedding model %q", r.Model)
	}
	if r.EncodingFormat != "" && !r.EncodingFormat.Valid() {
		return invalidArgument(embeddingsEndpoint, "encoding_format must be float or base64, got %q", r.EncodingFormat)
	}
	if r.Dimensions != nil && *r.Dimensions <= 0 {
		return invalidArgument(embeddingsEndpoint, "dimensions must be positive, got %d", *r.Dimensions)
	}
	return nil
}

// EmbeddingResponse is the result of an embeddings request.
type EmbeddingResponse struct {
	Object string      `json:"object"`
	Data   []Embedding `json:"data"`
	Model  string      `json:"model"`
	Usage  *Usage      `json:"usage,omitempty"`
}

// Validate checks the required response fields.
func (r *EmbeddingResponse) Validate() error {
	if r.Data == nil {
		return missingField(embeddingsEndpoint, "data")
	}
	for i, d := range r.Data {
		if d.Embedding.Dims() == 0 {
			return missingField(embeddingsEndpoint, fmt.Sprintf("data[%d].embedding", i))
		}
	}
	return nil
}

// Vectors returns the 1-D vector of each entry in index order.
func (r *EmbeddingResponse) Vectors() [][]float32 {
	out := make([][]float32, len(r.Data))
	for _, d := range r.Data {
		if d.Index >= 0 && d.Index < len(out) {
			out[d.Index] = d.Embedding.Vector()
		}
	}
	return out
}

// Embedding is one entry of an embeddings response.
type Embedding struct {
	Object    string          `json:"object"`
	Index     int             `json:"index"`
	Embedding EmbeddingVector `json:"embedding"`
}

// EmbeddingVector holds a vector decoded from a float array or from
// base64 little-endian float32 bytes. Compatible servers may return
// nested arrays, so 2-D and 3-D shapes are kept as well.
type EmbeddingVector struct {
	d1 []float32
	d2 [][]float32
	d3 [][][]float32
}

// NewEmbeddingVector wraps a 1-D vector.
func NewEmbeddingVector(v []float32) EmbeddingVector {
	return EmbeddingVector{d1: v}
}

// Dims returns the nesting depth (1, 2 or 3), or 0 when empty.
func (v EmbeddingVector) Dims() int {
	switch {
	case v.d1 != nil:
		return 1
	case v.d2 != nil:
		return 2
	case v.d3 != nil:
		return 3
	}
	return 0
}

// Vector returns the 1-D vector, or nil for other shapes.
func (v EmbeddingVector) Vector() []float32 { return v.d1 }

// As1D returns the vector when it is 1-D.
func (v EmbeddingVector) As1D() ([]float32, bool) { return v.d1, v.d1 != nil }

// As2D returns the vector when it is 2-D.
func (v EmbeddingVector) As2D() ([][]float32, bool) { return v.d2, v.d2 != nil }

// As3D returns the vector when it is 3-D.
func (v EmbeddingVector) As3D() ([][][]float32, bool) { return v.d3, v.d3 != nil }

// MarshalJSON emits the vector as nested float arrays.
func (v EmbeddingVector) MarshalJSON() ([]byte, error) {
	switch v.Dims() {
	case 1:
		return json.Marshal(v.d1)
	case 2:
		return json.Marshal(v.d2)
	case 3:
		return json.Marshal(v.d3)
	}
	return []byte("null"), nil
}

// UnmarshalJSON decodes a base64 string or a float array of depth 1 to 3.
func (v *EmbeddingVector) UnmarshalJSON(data []byte) error {
	*v = EmbeddingVector{}
	doc := gjson.ParseBytes(data)
	switch {
	case doc.Type == gjson.Null:
		return nil
	case doc.Type == gjson.String:
		vec, err := decodeBase64Vector(doc.String())
		if err != nil {
			return err
		}
		v.d1 = vec
		return nil
	case doc.IsArray():
		switch arrayDepth(doc) {
		case 1:
			return json.Unmarshal(data, &v.d1)
		case 2:
			return json.Unmarshal(data, &v.d2)
		case 3:
			return json.Unmarshal(data, &v.d3)
		}
		return fmt.Errorf("%w: embedding nested deeper than 3 levels", types.ErrResponseShape)
	}
	return fmt.Errorf("%w: embedding must be an array or a base64 string", types.ErrResponseShape)
}

// arrayDepth follows the first element down until a non-array is found.
// An empty array counts as depth 1.
func arrayDepth(doc gjson.Result) int {
	depth := 0
	for doc.IsArray() {
		depth++
		first := doc.Get("0")
		if !first.Exists() {
			break
		}
		doc = first
	}
	return depth
}

func decodeBase64Vector(s string) ([]float32, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding is not valid base64: %v", types.ErrResponseShape, err)
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("%w: base64 embedding has %d bytes, not a multiple of 4", types.ErrResponseShape, len(raw))
	}
	vec := make([]float32, len(raw)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return vec, nil
}

// CreateEmbeddings creates one embedding per input string.
//
// Example:
//
//	resp, err := client.CreateEmbeddings(ctx, &oaikit.EmbeddingRequest{
//	    Model: types.TextEmbedding3Small,
//	    Input: oaikit.EmbeddingText("Hello, world!"),
//	})
//	fmt.Println(len(resp.Data[0].Embedding.Vector())) // 1536
func (c *Client) CreateEmbeddings(ctx context.Context, req *EmbeddingRequest) (*EmbeddingResponse, error) {
	if req == nil {
		return nil, missingField(embeddingsEndpoint, "request")
	}
	if err := req.Validate(); err != nil {
		return nil, classify(embeddingsEndpoint, err)
	}
	wire := *req
	if wire.Model == "" {
		wire.Model = types.DefaultEmbeddingModel
	}

	var resp EmbeddingResponse
	if err := c.doJSON(ctx, http.MethodPost, embeddingsEndpoint, nil, string(wire.Model), &wire, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
