package oaikit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/blue-context/oaikit/types"
)

const moderationsEndpoint = "moderations"

// ModerationInput is a single string or a list of strings.
type ModerationInput struct {
	texts  []string
	single bool
}

// ModerationText returns single-string input.
func ModerationText(text string) ModerationInput {
	return ModerationInput{texts: []string{text}, single: true}
}

// ModerationTexts returns list input. One result is returned per entry.
func ModerationTexts(texts ...string) ModerationInput {
	return ModerationInput{texts: texts}
}

// Len returns the number of inputs.
func (in ModerationInput) Len() int { return len(in.texts) }

// MarshalJSON emits a string or an array of strings.
func (in ModerationInput) MarshalJSON() ([]byte, error) {
	if in.single && len(in.texts) == 1 {
		return json.Marshal(in.texts[0])
	}
	return json.Marshal(in.texts)
}

// ModerationRequest checks content against the usage policies.
type ModerationRequest struct {
	// Input holds at least one string. Required.
	Input ModerationInput `json:"input"`

	// Model defaults to omni-moderation-latest on the service.
	Model types.ModerationModel `json:"model,omitempty"`
}

// Validate checks the input and model.
func (r *ModerationRequest) Validate() error {
	if r.Input.Len() == 0 {
		return missingField(moderationsEndpoint, "input")
	}
	if r.Model != "" && !r.Model.Valid() {
		return invalidArgument(moderationsEndpoint, "unknown moderation model %q", r.Model)
	}
	return nil
}

// ModerationResponse holds one result per input, in input order.
type ModerationResponse struct {
	ID      string             `json:"id"`
	Model   string             `json:"model"`
	Results []ModerationResult `json:"results"`
}

// Validate requires the results array.
func (r *ModerationResponse) Validate() error {
	if r.Results == nil {
		return missingField(moderationsEndpoint, "results")
	}
	return nil
}

// Flagged reports whether any input was flagged.
func (r *ModerationResponse) Flagged() bool {
	for _, res := range r.Results {
		if res.Flagged {
			return true
		}
	}
	return false
}

// ModerationResult is the verdict for one input. Category names are the
// wire names such as "violence/graphic".
type ModerationResult struct {
	Flagged                   bool                `json:"flagged"`
	Categories                map[string]bool     `json:"categories"`
	CategoryScores            map[string]float64  `json:"category_scores"`
	CategoryAppliedInputTypes map[string][]string `json:"category_applied_input_types,omitempty"`
}

// FlaggedCategories returns the flagged category names, sorted.
func (r ModerationResult) FlaggedCategories() []string {
	var out []string
	for name, flagged := range r.Categories {
		if flagged {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// CreateModeration classifies whether inputs violate the usage policies.
//
// Example:
//
//	resp, err := client.CreateModeration(ctx, &oaikit.ModerationRequest{
//	    Input: oaikit.ModerationTexts("This is fine", "I want to hurt someone"),
//	})
//	for i, r := range resp.Results {
//	    if r.Flagged {
//	        fmt.Printf("Text %d flagged: %v\n", i, r.FlaggedCategories())
//	    }
//	}
func (c *Client) CreateModeration(ctx context.Context, req *ModerationRequest) (*ModerationResponse, error) {
	if req == nil {
		return nil, missingField(moderationsEndpoint, "request")
	}
	if err := req.Validate(); err != nil {
		return nil, classify(moderationsEndpoint, err)
	}

	var resp ModerationResponse
	if err := c.doJSON(ctx, http.MethodPost, moderationsEndpoint, nil, string(req.Model), req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) != req.Input.Len() {
		return nil, responseShapeError(moderationsEndpoint,
			fmt.Errorf("got %d results for %d inputs", len(resp.Results), req.Input.Len()))
	}
	return &resp, nil
}
