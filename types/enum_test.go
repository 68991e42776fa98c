package types

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/blue-context/oaikit/internal/testutil"
)

// roundTrip encodes v, decodes into a fresh T and returns it.
func roundTrip[T any](t *testing.T, v T) T {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %v: %v", v, err)
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal %s: %v", data, err)
	}
	return out
}

func checkAll[T comparable](t *testing.T, values []T) {
	t.Helper()
	for _, v := range values {
		if got := roundTrip(t, v); got != v {
			t.Errorf("round trip of %v gave %v", v, got)
		}
	}
}

func TestEnumRoundTrip(t *testing.T) {
	checkAll(t, roleValues)
	checkAll(t, audioFormatValues)
	checkAll(t, audioInputFormatValues)
	checkAll(t, voiceValues)
	checkAll(t, timestampGranularityValues)
	checkAll(t, transcriptionFormatValues)
	checkAll(t, imageSizeValues)
	checkAll(t, imageQualityValues)
	checkAll(t, imageStyleValues)
	checkAll(t, imageResponseFormatValues)
	checkAll(t, filePurposeValues)
	checkAll(t, batchStatusValues)
	checkAll(t, batchEndpointValues)
	checkAll(t, completionWindowValues)
	checkAll(t, fineTuningStatusValues)
	checkAll(t, fineTuningMethodValues)
	checkAll(t, embeddingEncodingValues)
	checkAll(t, reasoningEffortValues)
	checkAll(t, reasoningSummaryValues)
	checkAll(t, textVerbosityValues)
	checkAll(t, truncationValues)
	checkAll(t, listOrderValues)
	checkAll(t, embeddingModelValues)
	checkAll(t, fineTuningModelValues)
	checkAll(t, ttsModelValues)
	checkAll(t, sttModelValues)
	checkAll(t, imageModelValues)
	checkAll(t, moderationModelValues)
	checkAll(t, realtimeVoiceValues)
	checkAll(t, realtimeAudioFormatValues)
	checkAll(t, modalityValues)
	checkAll(t, eagernessValues)
	checkAll(t, noiseReductionValues)
	checkAll(t, itemStatusValues)
	checkAll(t, realtimeResponseStatusValues)
}

func TestEnumRejectsUnknown(t *testing.T) {
	tests := []struct {
		name   string
		decode func([]byte) error
	}{
		{"role", func(b []byte) error { var v Role; return json.Unmarshal(b, &v) }},
		{"voice", func(b []byte) error { var v Voice; return json.Unmarshal(b, &v) }},
		{"batch status", func(b []byte) error { var v BatchStatus; return json.Unmarshal(b, &v) }},
		{"fine-tuning status", func(b []byte) error { var v FineTuningStatus; return json.Unmarshal(b, &v) }},
		{"file purpose", func(b []byte) error { var v FilePurpose; return json.Unmarshal(b, &v) }},
		{"image size", func(b []byte) error { var v ImageSize; return json.Unmarshal(b, &v) }},
		{"embedding model", func(b []byte) error { var v EmbeddingModel; return json.Unmarshal(b, &v) }},
		{"realtime voice", func(b []byte) error { var v RealtimeVoice; return json.Unmarshal(b, &v) }},
		{"realtime audio format", func(b []byte) error { var v RealtimeAudioFormat; return json.Unmarshal(b, &v) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.decode([]byte(`"definitely-not-a-variant"`))
			var unknown *UnknownValueError
			if !errors.As(err, &unknown) {
				t.Fatalf("expected UnknownValueError, got %v", err)
			}
			if unknown.Value != "definitely-not-a-variant" {
				t.Errorf("Value = %q", unknown.Value)
			}
		})
	}
}

func TestEnumRejectsUnknownInsideStruct(t *testing.T) {
	var payload struct {
		Status BatchStatus `json:"status"`
	}
	err := json.Unmarshal([]byte(`{"status":"paused"}`), &payload)
	if err == nil {
		t.Fatal("expected containing decode to fail")
	}
}

func TestEnumRejectsNonString(t *testing.T) {
	var v Role
	if err := json.Unmarshal([]byte(`42`), &v); err == nil {
		t.Fatal("expected error for numeric role")
	}
}

func TestParse(t *testing.T) {
	assert := testutil.New(t)

	v, err := ParseVoice("coral")
	assert.NoError(err)
	assert.Equal(VoiceCoral, v)

	_, err = ParseVoice("Coral")
	assert.Error(err)

	p, err := ParseFilePurpose("fine-tune")
	assert.NoError(err)
	assert.Equal(FilePurposeFineTune, p)
}

func TestAudioFormatExtension(t *testing.T) {
	tests := []struct {
		format AudioFormat
		want   string
	}{
		{AudioFormatMP3, "mp3"},
		{AudioFormatOpus, "ogg"},
		{AudioFormatAAC, "aac"},
		{AudioFormatFLAC, "flac"},
		{AudioFormatWAV, "wav"},
		{AudioFormatPCM, "pcm"},
		{"", "mp3"},
	}
	for _, tt := range tests {
		if got := tt.format.Extension(); got != tt.want {
			t.Errorf("%q.Extension() = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestAudioInputFormatFromFilename(t *testing.T) {
	tests := []struct {
		name    string
		want    AudioInputFormat
		wantErr bool
	}{
		{"speech.mp3", AudioInputMP3, false},
		{"/tmp/a.b/CLIP.WAV", AudioInputWAV, false},
		{"voice.m4a", AudioInputM4A, false},
		{"notes.txt", "", true},
		{"noext", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AudioInputFormatFromFilename(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTranscriptionFormatIsJSON(t *testing.T) {
	assert := testutil.New(t)
	assert.True(TranscriptionFormat("").IsJSON())
	assert.True(TranscriptionJSON.IsJSON())
	assert.True(TranscriptionVerboseJSON.IsJSON())
	assert.False(TranscriptionText.IsJSON())
	assert.False(TranscriptionSRT.IsJSON())
	assert.False(TranscriptionVTT.IsJSON())
}

func TestTerminalStatuses(t *testing.T) {
	assert := testutil.New(t)
	assert.True(BatchCompleted.Terminal())
	assert.True(BatchExpired.Terminal())
	assert.False(BatchFinalizing.Terminal())
	assert.True(FineTuningSucceeded.Terminal())
	assert.False(FineTuningQueued.Terminal())
}

func TestUnknownValueCategory(t *testing.T) {
	assert := testutil.New(t)

	var v Voice
	err := json.Unmarshal([]byte(`"robot"`), &v)
	assert.ErrorIs(err, ErrResponseShape)

	_, err = ParseVoice("robot")
	assert.ErrorIs(err, ErrInvalidArgument)
	assert.False(errors.Is(err, ErrResponseShape))
}
