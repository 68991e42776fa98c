package types

import (
	"encoding/json"
	"testing"

	"github.com/blue-context/oaikit/internal/testutil"
)

func TestIsReasoningModel(t *testing.T) {
	tests := []struct {
		model ChatModel
		want  bool
	}{
		{GPT52, true},
		{GPT51CodexMax, true},
		{GPT5Mini, true},
		{O1, true},
		{O1Pro, true},
		{O3Mini, true},
		{O4Mini, true},
		{GPT4oMini, false},
		{GPT41, false},
		{GPT35Turbo, false},
		{"o3-2025-04-16", true},
		{"ft:gpt-4o-mini:acme::abc123", false},
		{"ft:o4-mini-2025-04-16:acme::x", true},
		{"omni-moderation-latest", false},
	}
	for _, tt := range tests {
		if got := tt.model.IsReasoningModel(); got != tt.want {
			t.Errorf("%q.IsReasoningModel() = %v, want %v", tt.model, got, tt.want)
		}
	}
}

func TestChatModelCustomIDsRoundTrip(t *testing.T) {
	assert := testutil.New(t)

	for _, m := range []ChatModel{GPT4oMini, O3, "my-azure-deployment"} {
		data, err := json.Marshal(m)
		assert.NoError(err)
		var got ChatModel
		assert.NoError(json.Unmarshal(data, &got))
		assert.Equal(m, got)
	}

	assert.True(GPT4o.Known())
	assert.False(ChatModel("my-azure-deployment").Known())
	assert.True(ChatModel("my-azure-deployment").Valid())
	assert.False(ChatModel("").Valid())
}

func TestChatModelInfo(t *testing.T) {
	assert := testutil.New(t)

	info, ok := GPT4oMini.Info()
	assert.True(ok)
	assert.Equal(128000, info.ContextWindow)
	assert.False(info.Reasoning)

	info, ok = O3.Info()
	assert.True(ok)
	assert.True(info.Reasoning)

	for model, info := range chatModelInfo {
		if info.Reasoning != model.IsReasoningModel() {
			t.Errorf("%s: metadata reasoning flag disagrees with prefix rule", model)
		}
	}

	_, ok = ChatModel("custom").Info()
	assert.False(ok)
}

func TestEmbeddingDimensions(t *testing.T) {
	assert := testutil.New(t)
	assert.Equal(1536, TextEmbedding3Small.Dimensions())
	assert.Equal(3072, TextEmbedding3Large.Dimensions())
	assert.Equal(1536, TextEmbeddingAda002.Dimensions())
	assert.Equal(DefaultEmbeddingModel, TextEmbedding3Small)
}
