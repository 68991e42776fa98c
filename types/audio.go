package types

import (
	"path/filepath"
	"strings"
)

// AudioFormat is the container produced by text-to-speech.
type AudioFormat string

const (
	AudioFormatMP3  AudioFormat = "mp3"
	AudioFormatOpus AudioFormat = "opus"
	AudioFormatAAC  AudioFormat = "aac"
	AudioFormatFLAC AudioFormat = "flac"
	AudioFormatWAV  AudioFormat = "wav"
	AudioFormatPCM  AudioFormat = "pcm"
)

// DefaultAudioFormat is the server default for speech output.
const DefaultAudioFormat = AudioFormatMP3

// Extension returns the canonical file extension, without the dot.
func (v AudioFormat) Extension() string {
	switch v {
	case AudioFormatOpus:
		return "ogg"
	case AudioFormatPCM:
		return "pcm"
	case "":
		return "mp3"
	default:
		return string(v)
	}
}

var audioFormatValues = []AudioFormat{AudioFormatMP3, AudioFormatOpus, AudioFormatAAC, AudioFormatFLAC, AudioFormatWAV, AudioFormatPCM}

// Valid reports whether v is a known AudioFormat.
func (v AudioFormat) Valid() bool { return member(audioFormatValues)(v) }

// String returns the wire string.
func (v AudioFormat) String() string { return string(v) }

// UnmarshalJSON rejects values outside the closed set.
func (v *AudioFormat) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, v, "AudioFormat", AudioFormat.Valid)
}

// ParseAudioFormat converts a wire string into a AudioFormat.
func ParseAudioFormat(s string) (AudioFormat, error) { return parseEnum(s, "AudioFormat", AudioFormat.Valid) }

// AudioInputFormat is a container accepted by transcription and translation.
type AudioInputFormat string

const (
	AudioInputMP3  AudioInputFormat = "mp3"
	AudioInputMP4  AudioInputFormat = "mp4"
	AudioInputMPEG AudioInputFormat = "mpeg"
	AudioInputMPGA AudioInputFormat = "mpga"
	AudioInputM4A  AudioInputFormat = "m4a"
	AudioInputOGG  AudioInputFormat = "ogg"
	AudioInputWAV  AudioInputFormat = "wav"
	AudioInputWEBM AudioInputFormat = "webm"
	AudioInputFLAC AudioInputFormat = "flac"
)

// MaxAudioFileSize is the largest upload the transcription endpoints accept.
// The limit is enforced by the server only.
const MaxAudioFileSize = 25 * 1024 * 1024

// AudioInputFormatFromFilename infers the format from a file extension.
func AudioInputFormatFromFilename(name string) (AudioInputFormat, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	return ParseAudioInputFormat(ext)
}

var audioInputFormatValues = []AudioInputFormat{AudioInputMP3, AudioInputMP4, AudioInputMPEG, AudioInputMPGA, AudioInputM4A, AudioInputOGG, AudioInputWAV, AudioInputWEBM, AudioInputFLAC}

// Valid reports whether v is a known AudioInputFormat.
func (v AudioInputFormat) Valid() bool { return member(audioInputFormatValues)(v) }

// String returns the wire string.
func (v AudioInputFormat) String() string { return string(v) }

// UnmarshalJSON rejects values outside the closed set.
func (v *AudioInputFormat) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, v, "AudioInputFormat", AudioInputFormat.Valid)
}

// ParseAudioInputFormat converts a wire string into a AudioInputFormat.
func ParseAudioInputFormat(s string) (AudioInputFormat, error) { return parseEnum(s, "AudioInputFormat", AudioInputFormat.Valid) }

// Voice is a text-to-speech voice.
type Voice string

const (
	VoiceAlloy   Voice = "alloy"
	VoiceAsh     Voice = "ash"
	VoiceBallad  Voice = "ballad"
	VoiceCoral   Voice = "coral"
	VoiceEcho    Voice = "echo"
	VoiceFable   Voice = "fable"
	VoiceOnyx    Voice = "onyx"
	VoiceNova    Voice = "nova"
	VoiceSage    Voice = "sage"
	VoiceShimmer Voice = "shimmer"
	VoiceVerse   Voice = "verse"
)

// DefaultVoice is used when a speech request does not name a voice.
const DefaultVoice = VoiceAlloy

var voiceValues = []Voice{VoiceAlloy, VoiceAsh, VoiceBallad, VoiceCoral, VoiceEcho, VoiceFable, VoiceOnyx, VoiceNova, VoiceSage, VoiceShimmer, VoiceVerse}

// Valid reports whether v is a known Voice.
func (v Voice) Valid() bool { return member(voiceValues)(v) }

// String returns the wire string.
func (v Voice) String() string { return string(v) }

// UnmarshalJSON rejects values outside the closed set.
func (v *Voice) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, v, "Voice", Voice.Valid)
}

// ParseVoice converts a wire string into a Voice.
func ParseVoice(s string) (Voice, error) { return parseEnum(s, "Voice", Voice.Valid) }

// TimestampGranularity selects the timing detail of verbose transcriptions.
type TimestampGranularity string

const (
	GranularityWord    TimestampGranularity = "word"
	GranularitySegment TimestampGranularity = "segment"
)

var timestampGranularityValues = []TimestampGranularity{GranularityWord, GranularitySegment}

// Valid reports whether v is a known TimestampGranularity.
func (v TimestampGranularity) Valid() bool { return member(timestampGranularityValues)(v) }

// String returns the wire string.
func (v TimestampGranularity) String() string { return string(v) }

// UnmarshalJSON rejects values outside the closed set.
func (v *TimestampGranularity) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, v, "TimestampGranularity", TimestampGranularity.Valid)
}

// ParseTimestampGranularity converts a wire string into a TimestampGranularity.
func ParseTimestampGranularity(s string) (TimestampGranularity, error) { return parseEnum(s, "TimestampGranularity", TimestampGranularity.Valid) }

// TranscriptionFormat is the response format of transcription and translation.
type TranscriptionFormat string

const (
	TranscriptionJSON        TranscriptionFormat = "json"
	TranscriptionText        TranscriptionFormat = "text"
	TranscriptionSRT         TranscriptionFormat = "srt"
	TranscriptionVerboseJSON TranscriptionFormat = "verbose_json"
	TranscriptionVTT         TranscriptionFormat = "vtt"
)

// DefaultTranscriptionFormat is the server default.
const DefaultTranscriptionFormat = TranscriptionJSON

// IsJSON reports whether responses in this format are JSON documents.
// text, srt and vtt come back as raw strings.
func (v TranscriptionFormat) IsJSON() bool {
	return v == "" || v == TranscriptionJSON || v == TranscriptionVerboseJSON
}

var transcriptionFormatValues = []TranscriptionFormat{TranscriptionJSON, TranscriptionText, TranscriptionSRT, TranscriptionVerboseJSON, TranscriptionVTT}

// Valid reports whether v is a known TranscriptionFormat.
func (v TranscriptionFormat) Valid() bool { return member(transcriptionFormatValues)(v) }

// String returns the wire string.
func (v TranscriptionFormat) String() string { return string(v) }

// UnmarshalJSON rejects values outside the closed set.
func (v *TranscriptionFormat) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, v, "TranscriptionFormat", TranscriptionFormat.Valid)
}

// ParseTranscriptionFormat converts a wire string into a TranscriptionFormat.
func ParseTranscriptionFormat(s string) (TranscriptionFormat, error) { return parseEnum(s, "TranscriptionFormat", TranscriptionFormat.Valid) }

