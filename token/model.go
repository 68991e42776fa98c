package token

import (
	"strings"

	"github.com/blue-context/oaikit/types"
)

// EncodingForModel returns the encoding used by a chat model. gpt-4,
// gpt-4-turbo and gpt-3.5 use cl100k_base; everything else, including
// unknown ids, uses o200k_base.
func EncodingForModel(model types.ChatModel) string {
	id := strings.TrimPrefix(string(model), "ft:")
	switch {
	case strings.HasPrefix(id, "gpt-4o"), strings.HasPrefix(id, "gpt-4.1"):
		return O200kBase
	case strings.HasPrefix(id, "gpt-4"), strings.HasPrefix(id, "gpt-3.5"):
		return Cl100kBase
	default:
		return O200kBase
	}
}

// ForModel creates a counter with the encoding of model.
//
// Example:
//
//	counter, err := token.ForModel(types.GPT4)
//	n := counter.CountText("Hello, world!")
func ForModel(model types.ChatModel) (Counter, error) {
	return NewCounterWithEncoding(EncodingForModel(model))
}
