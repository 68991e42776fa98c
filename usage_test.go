package oaikit

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/blue-context/oaikit/internal/testutil"
	"github.com/blue-context/oaikit/types"
)

func TestUsageGetters(t *testing.T) {
	tests := []struct {
		name           string
		usage          *Usage
		wantPrompt     int
		wantCompletion int
		wantTotal      int
	}{
		{"nil", nil, 0, 0, 0},
		{"chat", &Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}, 10, 5, 15},
		{"responses", &Usage{InputTokens: 7, OutputTokens: 3, TotalTokens: 10}, 7, 3, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.usage.GetPromptTokens(); got != tt.wantPrompt {
				t.Errorf("GetPromptTokens() = %d, want %d", got, tt.wantPrompt)
			}
			if got := tt.usage.GetCompletionTokens(); got != tt.wantCompletion {
				t.Errorf("GetCompletionTokens() = %d, want %d", got, tt.wantCompletion)
			}
			if got := tt.usage.GetTotalTokens(); got != tt.wantTotal {
				t.Errorf("GetTotalTokens() = %d, want %d", got, tt.wantTotal)
			}
		})
	}
}

func TestUsageDetails(t *testing.T) {
	assert := testutil.New(t)
	var u Usage
	assert.NoError(json.Unmarshal([]byte(`{"input_tokens":36,"output_tokens":87,"total_tokens":123,
		"input_tokens_details":{"cached_tokens":12},"output_tokens_details":{"reasoning_tokens":64}}`), &u))
	assert.Equal(12, u.InputDetails.CachedTokens)
	assert.Equal(64, u.OutputDetails.ReasoningTokens)
	assert.Nil(u.PromptDetails)
}

func TestListParams(t *testing.T) {
	assert := testutil.New(t)

	assert.Empty(ListParams{}.values())

	q := ListParams{After: "file-1", Limit: 20, Order: types.OrderDesc}.values()
	assert.Equal("file-1", q.Get("after"))
	assert.Equal("20", q.Get("limit"))
	assert.Equal("desc", q.Get("order"))
	assert.False(q.Has("before"))

	assert.ErrorIs(ListParams{Limit: -1}.Validate(), ErrInvalidArgument)
	assert.ErrorIs(ListParams{Order: "sideways"}.Validate(), ErrInvalidArgument)
	assert.NoError(ListParams{Order: types.OrderAsc}.Validate())
}

func TestListNextParams(t *testing.T) {
	page := &List[DeletedObject]{Data: []DeletedObject{{ID: "a"}, {ID: "b"}}, LastID: "b", HasMore: true}

	next, ok := page.NextParams(ListParams{Limit: 2, Before: "z"})
	if !ok {
		t.Fatal("NextParams() reported no next page")
	}
	if next.After != "b" || next.Before != "" || next.Limit != 2 {
		t.Errorf("NextParams() = %+v", next)
	}

	page.HasMore = false
	if _, ok := page.NextParams(ListParams{}); ok {
		t.Error("NextParams() on the last page reported more")
	}
}

func TestListValidate(t *testing.T) {
	if err := (&List[DeletedObject]{}).Validate(); err == nil {
		t.Error("Validate() accepted a list without data")
	}
	err := (&List[DeletedObject]{Data: []DeletedObject{{ID: "a"}, {}}}).Validate()
	if !errors.Is(err, ErrMissingConfiguration) {
		t.Errorf("Validate() = %v, want the entry error", err)
	}
	if err := (&List[DeletedObject]{Data: []DeletedObject{}}).Validate(); err != nil {
		t.Errorf("Validate() empty page = %v", err)
	}
}
