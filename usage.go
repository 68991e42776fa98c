package oaikit

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/blue-context/oaikit/types"
)

// Usage represents token usage statistics for a request.
//
// Chat completions fill the Prompt/Completion fields; the responses
// endpoint fills the Input/Output fields. TotalTokens is set by both.
type Usage struct {
	// PromptTokens is the number of tokens in the prompt.
	PromptTokens int `json:"prompt_tokens,omitempty"`

	// CompletionTokens is the number of tokens in the generated completion.
	CompletionTokens int `json:"completion_tokens,omitempty"`

	// InputTokens is the number of input tokens (responses endpoint).
	InputTokens int `json:"input_tokens,omitempty"`

	// OutputTokens is the number of output tokens (responses endpoint).
	OutputTokens int `json:"output_tokens,omitempty"`

	// TotalTokens is the total number of tokens.
	TotalTokens int `json:"total_tokens"`

	// PromptDetails provides detailed breakdown of prompt tokens.
	PromptDetails *PromptTokensDetails `json:"prompt_tokens_details,omitempty"`

	// CompletionDetails provides detailed breakdown of completion tokens.
	CompletionDetails *CompletionTokensDetails `json:"completion_tokens_details,omitempty"`

	// InputDetails and OutputDetails are the responses endpoint breakdowns.
	InputDetails  *PromptTokensDetails     `json:"input_tokens_details,omitempty"`
	OutputDetails *CompletionTokensDetails `json:"output_tokens_details,omitempty"`
}

// GetPromptTokens returns prompt or input tokens, whichever is set.
func (u *Usage) GetPromptTokens() int {
	if u == nil {
		return 0
	}
	if u.PromptTokens != 0 {
		return u.PromptTokens
	}
	return u.InputTokens
}

// GetCompletionTokens returns completion or output tokens, whichever is set.
func (u *Usage) GetCompletionTokens() int {
	if u == nil {
		return 0
	}
	if u.CompletionTokens != 0 {
		return u.CompletionTokens
	}
	return u.OutputTokens
}

// GetTotalTokens returns the total number of tokens.
func (u *Usage) GetTotalTokens() int {
	if u == nil {
		return 0
	}
	return u.TotalTokens
}

// PromptTokensDetails provides detailed breakdown of prompt token usage.
type PromptTokensDetails struct {
	// CachedTokens is the number of cached tokens that didn't need processing.
	CachedTokens int `json:"cached_tokens,omitempty"`

	// AudioTokens is the number of tokens from audio input.
	AudioTokens int `json:"audio_tokens,omitempty"`
}

// CompletionTokensDetails provides detailed breakdown of completion token usage.
type CompletionTokensDetails struct {
	// ReasoningTokens is the number of tokens used for reasoning.
	ReasoningTokens int `json:"reasoning_tokens,omitempty"`

	// AudioTokens is the number of tokens from audio output.
	AudioTokens int `json:"audio_tokens,omitempty"`

	AcceptedPredictionTokens int `json:"accepted_prediction_tokens,omitempty"`
	RejectedPredictionTokens int `json:"rejected_prediction_tokens,omitempty"`
}

// ListParams are the cursor pagination parameters shared by list endpoints.
// Zero fields are not sent.
type ListParams struct {
	// After is the id of the last object of the previous page.
	After string

	// Before is the id of the first object of the next page (where supported).
	Before string

	// Limit is the page size (service default when 0).
	Limit int

	// Order sorts by creation time.
	Order types.ListOrder
}

// Validate checks Limit and Order.
func (p ListParams) Validate() error {
	if p.Limit < 0 {
		return invalidArgument("", "limit must not be negative, got %d", p.Limit)
	}
	if p.Order != "" && !p.Order.Valid() {
		return invalidArgument("", "unknown list order %q", p.Order)
	}
	return nil
}

func (p ListParams) values() url.Values {
	q := url.Values{}
	if p.After != "" {
		q.Set("after", p.After)
	}
	if p.Before != "" {
		q.Set("before", p.Before)
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Order != "" {
		q.Set("order", string(p.Order))
	}
	return q
}

// List is one page of a cursor-paginated listing.
type List[T any] struct {
	Object  string `json:"object"`
	Data    []T    `json:"data"`
	FirstID string `json:"first_id,omitempty"`
	LastID  string `json:"last_id,omitempty"`
	HasMore bool   `json:"has_more"`
}

// Validate requires the data array to be present and validates each entry.
func (l *List[T]) Validate() error {
	if l.Data == nil {
		return missingField("", "data")
	}
	for i := range l.Data {
		if v, ok := any(&l.Data[i]).(validator); ok {
			if err := v.Validate(); err != nil {
				return fmt.Errorf("data[%d]: %w", i, err)
			}
		}
	}
	return nil
}

// NextParams returns the parameters of the following page, and false when
// there is none.
func (l *List[T]) NextParams(p ListParams) (ListParams, bool) {
	if !l.HasMore || l.LastID == "" {
		return p, false
	}
	p.After = l.LastID
	p.Before = ""
	return p, true
}

// DeletedObject is returned by delete endpoints.
type DeletedObject struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

// Validate requires the id of the deleted object.
func (d *DeletedObject) Validate() error {
	if d.ID == "" {
		return missingField("", "id")
	}
	return nil
}
