package types

import "strings"

// ModelInfo describes limits and capabilities of a chat model.
//
// Thread Safety: ModelInfo is safe for concurrent reads after creation.
// It should be treated as immutable once returned from ChatModel.Info.
type ModelInfo struct {
	Name            ChatModel // Wire identifier
	ContextWindow   int       // Maximum context window in tokens
	MaxOutputTokens int       // Maximum output tokens (0 if not specified)
	Reasoning       bool      // Reasoning model with fixed sampling parameters
	Vision          bool      // Accepts image input
	Audio           bool      // Accepts or produces audio
}

// ChatModel identifies a model usable with chat completions and responses.
//
// The set is open: identifiers not listed below (fine-tuned models,
// snapshots, Azure deployments) are accepted verbatim.
type ChatModel string

const (
	GPT52             ChatModel = "gpt-5.2"
	GPT52ChatLatest   ChatModel = "gpt-5.2-chat-latest"
	GPT52Pro          ChatModel = "gpt-5.2-pro"
	GPT51             ChatModel = "gpt-5.1"
	GPT51ChatLatest   ChatModel = "gpt-5.1-chat-latest"
	GPT51CodexMax     ChatModel = "gpt-5.1-codex-max"
	GPT5Mini          ChatModel = "gpt-5-mini"
	GPT41             ChatModel = "gpt-4.1"
	GPT41Mini         ChatModel = "gpt-4.1-mini"
	GPT41Nano         ChatModel = "gpt-4.1-nano"
	GPT4o             ChatModel = "gpt-4o"
	GPT4oMini         ChatModel = "gpt-4o-mini"
	GPT4oAudioPreview ChatModel = "gpt-4o-audio-preview"
	GPT4Turbo         ChatModel = "gpt-4-turbo"
	GPT4              ChatModel = "gpt-4"
	GPT35Turbo        ChatModel = "gpt-3.5-turbo"
	O1                ChatModel = "o1"
	O1Pro             ChatModel = "o1-pro"
	O3                ChatModel = "o3"
	O3Mini            ChatModel = "o3-mini"
	O4Mini            ChatModel = "o4-mini"
)

// DefaultChatModel is used when a request leaves the model unset.
const DefaultChatModel = GPT4oMini

var chatModelInfo = map[ChatModel]ModelInfo{
	GPT52:             {Name: GPT52, ContextWindow: 400000, MaxOutputTokens: 128000, Reasoning: true, Vision: true},
	GPT52ChatLatest:   {Name: GPT52ChatLatest, ContextWindow: 128000, MaxOutputTokens: 16384, Reasoning: true, Vision: true},
	GPT52Pro:          {Name: GPT52Pro, ContextWindow: 400000, MaxOutputTokens: 128000, Reasoning: true, Vision: true},
	GPT51:             {Name: GPT51, ContextWindow: 400000, MaxOutputTokens: 128000, Reasoning: true, Vision: true},
	GPT51ChatLatest:   {Name: GPT51ChatLatest, ContextWindow: 128000, MaxOutputTokens: 16384, Reasoning: true, Vision: true},
	GPT51CodexMax:     {Name: GPT51CodexMax, ContextWindow: 400000, MaxOutputTokens: 128000, Reasoning: true},
	GPT5Mini:          {Name: GPT5Mini, ContextWindow: 400000, MaxOutputTokens: 128000, Reasoning: true, Vision: true},
	GPT41:             {Name: GPT41, ContextWindow: 1047576, MaxOutputTokens: 32768, Vision: true},
	GPT41Mini:         {Name: GPT41Mini, ContextWindow: 1047576, MaxOutputTokens: 32768, Vision: true},
	GPT41Nano:         {Name: GPT41Nano, ContextWindow: 1047576, MaxOutputTokens: 32768, Vision: true},
	GPT4o:             {Name: GPT4o, ContextWindow: 128000, MaxOutputTokens: 16384, Vision: true},
	GPT4oMini:         {Name: GPT4oMini, ContextWindow: 128000, MaxOutputTokens: 16384, Vision: true},
	GPT4oAudioPreview: {Name: GPT4oAudioPreview, ContextWindow: 128000, MaxOutputTokens: 16384, Audio: true},
	GPT4Turbo:         {Name: GPT4Turbo, ContextWindow: 128000, MaxOutputTokens: 4096, Vision: true},
	GPT4:              {Name: GPT4, ContextWindow: 8192, MaxOutputTokens: 8192},
	GPT35Turbo:        {Name: GPT35Turbo, ContextWindow: 16385, MaxOutputTokens: 4096},
	O1:                {Name: O1, ContextWindow: 200000, MaxOutputTokens: 100000, Reasoning: true, Vision: true},
	O1Pro:             {Name: O1Pro, ContextWindow: 200000, MaxOutputTokens: 100000, Reasoning: true, Vision: true},
	O3:                {Name: O3, ContextWindow: 200000, MaxOutputTokens: 100000, Reasoning: true, Vision: true},
	O3Mini:            {Name: O3Mini, ContextWindow: 200000, MaxOutputTokens: 100000, Reasoning: true},
	O4Mini:            {Name: O4Mini, ContextWindow: 200000, MaxOutputTokens: 100000, Reasoning: true, Vision: true},
}

// Valid reports whether the identifier is non-empty. Custom ids are valid.
func (v ChatModel) Valid() bool { return v != "" }

// Known reports whether the identifier is one of the constants above.
func (v ChatModel) Known() bool {
	_, ok := chatModelInfo[v]
	return ok
}

// String returns the wire string.
func (v ChatModel) String() string { return string(v) }

// Info returns metadata for known models. The bool is false for custom ids.
func (v ChatModel) Info() (ModelInfo, bool) {
	info, ok := chatModelInfo[v]
	return info, ok
}

// IsReasoningModel reports whether the model belongs to the gpt-5, o1, o3
// or o4 families. Those models only accept default sampling parameters.
// Custom ids (snapshots, fine-tunes) are classified by prefix.
func (v ChatModel) IsReasoningModel() bool {
	id := strings.TrimPrefix(string(v), "ft:")
	for _, prefix := range []string{"gpt-5", "o1", "o3", "o4"} {
		if id == prefix || strings.HasPrefix(id, prefix+"-") || strings.HasPrefix(id, prefix+".") {
			return true
		}
	}
	return false
}

// RealtimeModel identifies a model usable with realtime sessions.
// Like ChatModel the set is open.
type RealtimeModel string

const (
	GPT4oRealtimePreview     RealtimeModel = "gpt-4o-realtime-preview"
	GPT4oMiniRealtimePreview RealtimeModel = "gpt-4o-mini-realtime-preview"
)

// DefaultRealtimeModel is used when a session is opened without a model.
const DefaultRealtimeModel = GPT4oRealtimePreview

// Valid reports whether the identifier is non-empty.
func (v RealtimeModel) Valid() bool { return v != "" }

// String returns the wire string.
func (v RealtimeModel) String() string { return string(v) }

// EmbeddingModel identifies an embedding model.
type EmbeddingModel string

const (
	TextEmbedding3Small EmbeddingModel = "text-embedding-3-small"
	TextEmbedding3Large EmbeddingModel = "text-embedding-3-large"
	TextEmbeddingAda002 EmbeddingModel = "text-embedding-ada-002"
)

// DefaultEmbeddingModel is used when a request leaves the model unset.
const DefaultEmbeddingModel = TextEmbedding3Small

// Dimensions returns the native vector length of the model.
func (v EmbeddingModel) Dimensions() int {
	switch v {
	case TextEmbedding3Large:
		return 3072
	case TextEmbedding3Small, TextEmbeddingAda002:
		return 1536
	}
	return 0
}

var embeddingModelValues = []EmbeddingModel{TextEmbedding3Small, TextEmbedding3Large, TextEmbeddingAda002}

// Valid reports whether v is a known EmbeddingModel.
func (v EmbeddingModel) Valid() bool { return member(embeddingModelValues)(v) }

// String returns the wire string.
func (v EmbeddingModel) String() string { return string(v) }

// UnmarshalJSON rejects values outside the closed set.
func (v *EmbeddingModel) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, v, "EmbeddingModel", EmbeddingModel.Valid)
}

// ParseEmbeddingModel converts a wire string into a EmbeddingModel.
func ParseEmbeddingModel(s string) (EmbeddingModel, error) { return parseEnum(s, "EmbeddingModel", EmbeddingModel.Valid) }

// FineTuningModel is a base model that accepts fine-tuning.
type FineTuningModel string

const (
	FineTuneGPT41          FineTuningModel = "gpt-4.1-2025-04-14"
	FineTuneGPT41Mini      FineTuningModel = "gpt-4.1-mini-2025-04-14"
	FineTuneGPT41Nano      FineTuningModel = "gpt-4.1-nano-2025-04-14"
	FineTuneGPT4oMini      FineTuningModel = "gpt-4o-mini-2024-07-18"
	FineTuneGPT4o          FineTuningModel = "gpt-4o-2024-08-06"
	FineTuneGPT4           FineTuningModel = "gpt-4-0613"
	FineTuneGPT35Turbo0125 FineTuningModel = "gpt-3.5-turbo-0125"
	FineTuneGPT35Turbo1106 FineTuningModel = "gpt-3.5-turbo-1106"
	FineTuneGPT35Turbo0613 FineTuningModel = "gpt-3.5-turbo-0613"
)

// DefaultFineTuningModel is the cheapest tunable base model.
const DefaultFineTuningModel = FineTuneGPT4oMini

var fineTuningModelValues = []FineTuningModel{FineTuneGPT41, FineTuneGPT41Mini, FineTuneGPT41Nano, FineTuneGPT4oMini, FineTuneGPT4o, FineTuneGPT4, FineTuneGPT35Turbo0125, FineTuneGPT35Turbo1106, FineTuneGPT35Turbo0613}

// Valid reports whether v is a known FineTuningModel.
func (v FineTuningModel) Valid() bool { return member(fineTuningModelValues)(v) }

// String returns the wire string.
func (v FineTuningModel) String() string { return string(v) }

// UnmarshalJSON rejects values outside the closed set.
func (v *FineTuningModel) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, v, "FineTuningModel", FineTuningModel.Valid)
}

// ParseFineTuningModel converts a wire string into a FineTuningModel.
func ParseFineTuningModel(s string) (FineTuningModel, error) { return parseEnum(s, "FineTuningModel", FineTuningModel.Valid) }

// TTSModel identifies a text-to-speech model.
type TTSModel string

const (
	TTS1         TTSModel = "tts-1"
	TTS1HD       TTSModel = "tts-1-hd"
	GPT4oMiniTTS TTSModel = "gpt-4o-mini-tts"
)

// DefaultTTSModel is used when a speech request leaves the model unset.
const DefaultTTSModel = TTS1

var ttsModelValues = []TTSModel{TTS1, TTS1HD, GPT4oMiniTTS}

// Valid reports whether v is a known TTSModel.
func (v TTSModel) Valid() bool { return member(ttsModelValues)(v) }

// String returns the wire string.
func (v TTSModel) String() string { return string(v) }

// UnmarshalJSON rejects values outside the closed set.
func (v *TTSModel) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, v, "TTSModel", TTSModel.Valid)
}

// ParseTTSModel converts a wire string into a TTSModel.
func ParseTTSModel(s string) (TTSModel, error) { return parseEnum(s, "TTSModel", TTSModel.Valid) }

// STTModel identifies a speech-to-text model.
type STTModel string

const (
	Whisper1        STTModel = "whisper-1"
	GPT4oTranscribe STTModel = "gpt-4o-transcribe"
)

// DefaultSTTModel is used when a transcription request leaves the model unset.
const DefaultSTTModel = Whisper1

var sttModelValues = []STTModel{Whisper1, GPT4oTranscribe}

// Valid reports whether v is a known STTModel.
func (v STTModel) Valid() bool { return member(sttModelValues)(v) }

// String returns the wire string.
func (v STTModel) String() string { return string(v) }

// UnmarshalJSON rejects values outside the closed set.
func (v *STTModel) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, v, "STTModel", STTModel.Valid)
}

// ParseSTTModel converts a wire string into a STTModel.
func ParseSTTModel(s string) (STTModel, error) { return parseEnum(s, "STTModel", STTModel.Valid) }

// ImageModel identifies an image generation model.
type ImageModel string

const (
	DallE2    ImageModel = "dall-e-2"
	DallE3    ImageModel = "dall-e-3"
	GPTImage1 ImageModel = "gpt-image-1"
)

var imageModelValues = []ImageModel{DallE2, DallE3, GPTImage1}

// Valid reports whether v is a known ImageModel.
func (v ImageModel) Valid() bool { return member(imageModelValues)(v) }

// String returns the wire string.
func (v ImageModel) String() string { return string(v) }

// UnmarshalJSON rejects values outside the closed set.
func (v *ImageModel) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, v, "ImageModel", ImageModel.Valid)
}

// ParseImageModel converts a wire string into a ImageModel.
func ParseImageModel(s string) (ImageModel, error) { return parseEnum(s, "ImageModel", ImageModel.Valid) }

// ModerationModel identifies a moderation model.
type ModerationModel string

const (
	OmniModerationLatest ModerationModel = "omni-moderation-latest"
	TextModerationLatest ModerationModel = "text-moderation-latest"
)

// DefaultModerationModel is the server default.
const DefaultModerationModel = OmniModerationLatest

var moderationModelValues = []ModerationModel{OmniModerationLatest, TextModerationLatest}

// Valid reports whether v is a known ModerationModel.
func (v ModerationModel) Valid() bool { return member(moderationModelValues)(v) }

// String returns the wire string.
func (v ModerationModel) String() string { return string(v) }

// UnmarshalJSON rejects values outside the closed set.
func (v *ModerationModel) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, v, "ModerationModel", ModerationModel.Valid)
}

// ParseModerationModel converts a wire string into a ModerationModel.
func ParseModerationModel(s string) (ModerationModel, error) { return parseEnum(s, "ModerationModel", ModerationModel.Valid) }

