// Package token counts tokens for request budgeting.
//
// Counting uses the o200k_base byte-pair encoding shared by the gpt-4o,
// gpt-4.1, gpt-5 and o-series models. The encoding tables are embedded
// through the offline loader, so no network access is needed.
//
// Basic usage:
//
//	n := token.CountText("Hello, world!")
//
//	// Only the text of a message is counted; images and audio are not.
//	n = token.CountMessage(oaikit.NewTextMessage(types.RoleUser, "Hello"))
//
//	// Estimate a whole chat request, including message framing and tools
//	counter, err := token.NewCounter()
//	total := counter.CountRequest(req)
package token

import (
	"encoding/json"
	"sync"

	"github.com/mudler/xlog"
	"github.com/pkoukk/tiktoken-go"
	loader "github.com/pkoukk/tiktoken-go-loader"

	"github.com/blue-context/oaikit"
)

// Encoding names accepted by NewCounterWithEncoding.
const (
	O200kBase  = "o200k_base"
	Cl100kBase = "cl100k_base"
)

// Framing overhead of the chat format, per message and per reply.
const (
	tokensPerMessage = 3
	tokensPerName    = 1
	tokensPerReply   = 3
	tokensPerTool    = 8
)

// Counter counts tokens in text, messages, and requests.
//
// Thread Safety: Counter implementations must be safe for concurrent use.
type Counter interface {
	// CountText counts the tokens of text. Special tokens are encoded as
	// such rather than rejected.
	CountText(text string) int

	// CountMessage counts the tokens of a message's text content. Parts
	// without text, tool calls and framing are not counted, so an empty or
	// image-only message counts 0.
	CountMessage(m oaikit.Message) int

	// CountMessages sums CountMessage over messages.
	CountMessages(messages []oaikit.Message) int

	// CountRequest estimates the prompt tokens of a chat request:
	// message text, chat framing, names, tool calls, tool definitions and
	// the response format schema.
	CountRequest(req *oaikit.ChatCompletionRequest) int
}

func init() {
	tiktoken.SetBpeLoader(loader.NewOfflineLoader())
}

// NewCounter creates an o200k_base counter.
func NewCounter() (Counter, error) {
	return NewCounterWithEncoding(O200kBase)
}

// NewCounterWithEncoding creates a counter for a named encoding.
func NewCounterWithEncoding(encoding string) (Counter, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, err
	}
	return &bpeCounter{enc: enc}, nil
}

var (
	defaultOnce    sync.Once
	defaultCounter Counter
)

// Default returns the shared o200k_base counter. If the encoding cannot be
// loaded the approximate counter is returned instead.
func Default() Counter {
	defaultOnce.Do(func() {
		c, err := NewCounter()
		if err != nil {
			xlog.Warn("o200k_base encoding unavailable, using approximate token counts", "error", err)
			defaultCounter = Approximate()
			return
		}
		defaultCounter = c
	})
	return defaultCounter
}

// CountText counts the tokens of text with the default counter.
func CountText(text string) int { return Default().CountText(text) }

// CountMessage counts the text tokens of m with the default counter.
func CountMessage(m oaikit.Message) int { return Default().CountMessage(m) }

// CountMessages counts the text tokens of messages with the default counter.
func CountMessages(messages []oaikit.Message) int { return Default().CountMessages(messages) }

// bpeCounter counts with a tiktoken encoding. The encoder keeps no
// per-call state, so one instance is shared across goroutines.
type bpeCounter struct {
	enc *tiktoken.Tiktoken
}

func (c *bpeCounter) CountText(text string) int {
	if text == "" {
		return 0
	}
	return len(c.enc.Encode(text, []string{"all"}, nil))
}

func (c *bpeCounter) CountMessage(m oaikit.Message) int {
	return countMessage(c, m)
}

func (c *bpeCounter) CountMessages(messages []oaikit.Message) int {
	return countMessages(c, messages)
}

func (c *bpeCounter) CountRequest(req *oaikit.ChatCompletionRequest) int {
	return countRequest(c, req)
}

// countMessage counts only the text the message carries: the single body,
// or the text of text-bearing parts.
func countMessage(c Counter, m oaikit.Message) int {
	if m.Content.IsText() {
		return c.CountText(m.Content.Text())
	}
	total := 0
	for _, p := range m.Content.Parts() {
		if p.Text != "" {
			total += c.CountText(p.Text)
		}
	}
	return total
}

func countMessages(c Counter, messages []oaikit.Message) int {
	total := 0
	for _, m := range messages {
		total += c.CountMessage(m)
	}
	return total
}

func countRequest(c Counter, req *oaikit.ChatCompletionRequest) int {
	if req == nil {
		return 0
	}

	tokens := tokensPerReply
	for _, m := range req.Messages {
		tokens += tokensPerMessage
		tokens += c.CountText(string(m.Role))
		tokens += c.CountMessage(m)
		if m.Name != "" {
			tokens += tokensPerName + c.CountText(m.Name)
		}
		for _, call := range m.ToolCalls {
			tokens += c.CountText(call.Function.Name)
			if args, err := call.Function.ArgumentsJSON(); err == nil {
				tokens += c.CountText(args)
			}
		}
		if m.ToolCallID != "" {
			tokens += c.CountText(m.ToolCallID)
		}
	}

	for _, tool := range req.Tools {
		data, err := tool.ChatJSON()
		if err != nil {
			continue
		}
		tokens += tokensPerTool + c.CountText(string(data))
	}

	if req.ResponseFormat != nil {
		if data, err := json.Marshal(req.ResponseFormat); err == nil {
			tokens += c.CountText(string(data))
		}
	}
	return tokens
}
