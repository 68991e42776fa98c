package oaikit

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/blue-context/oaikit/internal/multipart"
	"github.com/blue-context/oaikit/types"
)

const (
	speechEndpoint        = "audio/speech"
	transcriptionEndpoint = "audio/transcriptions"
	translationEndpoint   = "audio/translations"
)

// SpeechRequest is a text-to-speech request.
//
// Thread Safety: SpeechRequest is safe for concurrent reads after creation.
type SpeechRequest struct {
	// Model is the TTS model. DefaultTTSModel is used when empty.
	Model types.TTSModel `json:"model"`

	// Input is the text to convert to speech (max 4096 characters).
	Input string `json:"input"`

	// Voice is the voice to use. DefaultVoice is used when empty.
	Voice types.Voice `json:"voice"`

	// Instructions steer the voice (gpt-4o-mini-tts only).
	Instructions string `json:"instructions,omitempty"`

	// ResponseFormat is the audio container. Default: mp3.
	ResponseFormat types.AudioFormat `json:"response_format,omitempty"`

	// Speed controls the playback speed (0.25 to 4.0). Default: 1.0
	Speed *float64 `json:"speed,omitempty"`
}

// Validate checks required fields and enumerations.
func (r *SpeechRequest) Validate() error {
	if r.Input == "" {
		return missingField(speechEndpoint, "input")
	}
	if len([]rune(r.Input)) > 4096 {
		return invalidArgument(speechEndpoint, "input exceeds 4096 characters")
	}
	if r.Model != "" && !r.Model.Valid() {
		return invalidArgument(speechEndpoint, "unknown tts model %q", r.Model)
	}
	if r.Voice != "" && !r.Voice.Valid() {
		return invalidArgument(speechEndpoint, "unknown voice %q", r.Voice)
	}
	if r.ResponseFormat != "" && !r.ResponseFormat.Valid() {
		return invalidArgument(speechEndpoint, "unknown audio format %q", r.ResponseFormat)
	}
	if r.Speed != nil && (*r.Speed < 0.25 || *r.Speed > 4.0) {
		return invalidArgument(speechEndpoint, "speed must be between 0.25 and 4.0, got %v", *r.Speed)
	}
	return nil
}

// CreateSpeech converts text to speech and returns the audio in the
// requested container.
//
// The caller MUST call Close() when done to release resources.
//
// Example:
//
//	audio, err := client.CreateSpeech(ctx, &oaikit.SpeechRequest{
//	    Input: "Hello, world!",
//	    Voice: types.VoiceCoral,
//	})
//	if err != nil {
//	    return err
//	}
//	defer audio.Close()
//
//	out, _ := os.Create("hello" + types.AudioFormatMP3.Extension())
//	defer out.Close()
//	io.Copy(out, audio)
func (c *Client) CreateSpeech(ctx context.Context, req *SpeechRequest) (io.ReadCloser, error) {
	if req == nil {
		return nil, missingField(speechEndpoint, "request")
	}
	if err := req.Validate(); err != nil {
		return nil, classify(speechEndpoint, err)
	}
	wire := *req
	if wire.Model == "" {
		wire.Model = types.DefaultTTSModel
	}
	if wire.Voice == "" {
		wire.Voice = types.DefaultVoice
	}

	data, _, err := c.doRaw(ctx, http.MethodPost, speechEndpoint, string(wire.Model), &wire)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, responseShapeError(speechEndpoint, fmt.Errorf("empty audio body"))
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// TranscriptionRequest is an audio transcription request.
//
// Thread Safety: The File reader is consumed by the request; do not share
// a request between goroutines.
type TranscriptionRequest struct {
	// Model is the transcription model. DefaultSTTModel is used when empty.
	Model types.STTModel

	// File is the audio data. It is fully consumed during the request.
	File io.Reader

	// Filename is the name of the audio file including its extension.
	// The extension must be a supported audio input format.
	Filename string

	// Language is a hint for the audio language (ISO 639-1 code).
	Language string

	// Prompt provides optional context to guide transcription.
	Prompt string

	// ResponseFormat is the output format. Default: json.
	// text, srt and vtt responses are returned verbatim in Text.
	ResponseFormat types.TranscriptionFormat

	// Temperature controls randomness (0.0-1.0).
	Temperature *float64

	// TimestampGranularities requests word and/or segment timestamps.
	// They require verbose_json, which is selected when ResponseFormat is
	// empty.
	TimestampGranularities []types.TimestampGranularity
}

// Validate checks required fields and enumerations.
func (r *TranscriptionRequest) Validate() error {
	return validateAudioUpload(transcriptionEndpoint, r.File, r.Filename, r.Model, r.ResponseFormat, r.TimestampGranularities)
}

// TranslationRequest translates audio into English text.
type TranslationRequest struct {
	// Model is the model. Only whisper-1 supports translation.
	Model types.STTModel

	// File is the audio data. It is fully consumed during the request.
	File io.Reader

	// Filename is the name of the audio file including its extension.
	Filename string

	// Prompt is optional English context.
	Prompt string

	// ResponseFormat is the output format. Default: json.
	ResponseFormat types.TranscriptionFormat

	// Temperature controls randomness (0.0-1.0).
	Temperature *float64
}

// Validate checks required fields and enumerations.
func (r *TranslationRequest) Validate() error {
	return validateAudioUpload(translationEndpoint, r.File, r.Filename, r.Model, r.ResponseFormat, nil)
}

func validateAudioUpload(endpoint string, file io.Reader, filename string, model types.STTModel, format types.TranscriptionFormat, granularities []types.TimestampGranularity) error {
	if file == nil {
		return missingField(endpoint, "file")
	}
	if filename == "" {
		return missingField(endpoint, "filename")
	}
	if _, err := types.AudioInputFormatFromFilename(filename); err != nil {
		return classify(endpoint, err)
	}
	if model != "" && !model.Valid() {
		return invalidArgument(endpoint, "unknown stt model %q", model)
	}
	if format != "" && !format.Valid() {
		return invalidArgument(endpoint, "unknown response_format %q", format)
	}
	for _, g := range granularities {
		if !g.Valid() {
			return invalidArgument(endpoint, "unknown timestamp granularity %q", g)
		}
	}
	if len(granularities) > 0 && format != "" && format != types.TranscriptionVerboseJSON {
		return invalidArgument(endpoint, "timestamp_granularities require verbose_json, got %q", format)
	}
	return nil
}

// TranscriptionResponse is a transcription or translation result.
//
// Thread Safety: TranscriptionResponse is safe for concurrent reads.
type TranscriptionResponse struct {
	// Text is the full transcribed text. For text, srt and vtt formats it
	// holds the raw response body.
	Text string `json:"text"`

	// Language is the detected or specified language (verbose_json).
	Language string `json:"language,omitempty"`

	// Duration is the audio duration in seconds (verbose_json).
	Duration float64 `json:"duration,omitempty"`

	// Words contains word-level timestamps.
	Words []Word `json:"words,omitempty"`

	// Segments contains segment-level details.
	Segments []Segment `json:"segments,omitempty"`

	// Usage is reported by the gpt-4o transcription models.
	Usage *Usage `json:"usage,omitempty"`

	// Format is the response format that produced this result.
	Format types.TranscriptionFormat `json:"-"`
}

// Word is a transcribed word with timestamps.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Segment is a transcribed segment with decoding statistics.
type Segment struct {
	ID               int     `json:"id"`
	Seek             int     `json:"seek"`
	Start            float64 `json:"start"`
	End              float64 `json:"end"`
	Text             string  `json:"text"`
	Tokens           []int   `json:"tokens"`
	Temperature      float64 `json:"temperature"`
	AvgLogprob       float64 `json:"avg_logprob"`
	CompressionRatio float64 `json:"compression_ratio"`
	NoSpeechProb     float64 `json:"no_speech_prob"`
}

// CreateTranscription transcribes audio to text.
//
// Example:
//
//	f, err := os.Open("meeting.mp3")
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//
//	resp, err := client.CreateTranscription(ctx, &oaikit.TranscriptionRequest{
//	    File:     f,
//	    Filename: "meeting.mp3",
//	    TimestampGranularities: []types.TimestampGranularity{types.GranularityWord},
//	})
func (c *Client) CreateTranscription(ctx context.Context, req *TranscriptionRequest) (*TranscriptionResponse, error) {
	if req == nil {
		return nil, missingField(transcriptionEndpoint, "request")
	}
	if err := req.Validate(); err != nil {
		return nil, classify(transcriptionEndpoint, err)
	}

	model := req.Model
	if model == "" {
		model = types.DefaultSTTModel
	}
	format := req.ResponseFormat
	if format == "" && len(req.TimestampGranularities) > 0 {
		format = types.TranscriptionVerboseJSON
	}

	form := multipart.New().
		File("file", req.Filename, req.File).
		Field("model", string(model)).
		Field("language", req.Language).
		Field("prompt", req.Prompt).
		Field("response_format", string(format))
	if req.Temperature != nil {
		form.Field("temperature", strconv.FormatFloat(*req.Temperature, 'f', -1, 64))
	}
	granularities := make([]string, len(req.TimestampGranularities))
	for i, g := range req.TimestampGranularities {
		granularities[i] = string(g)
	}
	form.Fields("timestamp_granularities[]", granularities)

	return c.audioUpload(ctx, transcriptionEndpoint, string(model), format, form, req)
}

// CreateTranslation translates audio into English.
func (c *Client) CreateTranslation(ctx context.Context, req *TranslationRequest) (*TranscriptionResponse, error) {
	if req == nil {
		return nil, missingField(translationEndpoint, "request")
	}
	if err := req.Validate(); err != nil {
		return nil, classify(translationEndpoint, err)
	}

	model := req.Model
	if model == "" {
		model = types.Whisper1
	}
	form := multipart.New().
		File("file", req.Filename, req.File).
		Field("model", string(model)).
		Field("prompt", req.Prompt).
		Field("response_format", string(req.ResponseFormat))
	if req.Temperature != nil {
		form.Field("temperature", strconv.FormatFloat(*req.Temperature, 'f', -1, 64))
	}

	return c.audioUpload(ctx, translationEndpoint, string(model), req.ResponseFormat, form, req)
}

func (c *Client) audioUpload(ctx context.Context, endpoint, model string, format types.TranscriptionFormat, form *multipart.Form, request any) (*TranscriptionResponse, error) {
	if format == "" {
		format = types.DefaultTranscriptionFormat
	}
	if !format.IsJSON() {
		var raw string
		if err := c.doMultipart(ctx, endpoint, model, form, request, &raw); err != nil {
			return nil, err
		}
		return &TranscriptionResponse{Text: raw, Format: format}, nil
	}

	var resp TranscriptionResponse
	if err := c.doMultipart(ctx, endpoint, model, form, request, &resp); err != nil {
		return nil, err
	}
	resp.Format = format
	return &resp, nil
}

// OpenAudioFile opens a local audio file for a transcription or
// translation request, rejecting unsupported extensions.
//
// The returned file must be closed by the caller.
func OpenAudioFile(path string) (*os.File, string, error) {
	name := filepath.Base(path)
	if _, err := types.AudioInputFormatFromFilename(name); err != nil {
		return nil, "", classify(transcriptionEndpoint, err)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", newError(KindInvalidArgument, transcriptionEndpoint, err, "failed to open audio file: %v", err)
	}
	return f, name, nil
}
