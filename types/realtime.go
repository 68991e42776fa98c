package types

// RealtimeVoice is a voice available to realtime sessions. It is a narrower
// set than the text-to-speech voices.
type RealtimeVoice string

const (
	RealtimeVoiceAlloy   RealtimeVoice = "alloy"
	RealtimeVoiceAsh     RealtimeVoice = "ash"
	RealtimeVoiceBallad  RealtimeVoice = "ballad"
	RealtimeVoiceCoral   RealtimeVoice = "coral"
	RealtimeVoiceEcho    RealtimeVoice = "echo"
	RealtimeVoiceSage    RealtimeVoice = "sage"
	RealtimeVoiceShimmer RealtimeVoice = "shimmer"
	RealtimeVoiceVerse   RealtimeVoice = "verse"
)

// DefaultRealtimeVoice is the service default.
const DefaultRealtimeVoice = RealtimeVoiceAlloy

var realtimeVoiceValues = []RealtimeVoice{
	RealtimeVoiceAlloy, RealtimeVoiceAsh, RealtimeVoiceBallad, RealtimeVoiceCoral,
	RealtimeVoiceEcho, RealtimeVoiceSage, RealtimeVoiceShimmer, RealtimeVoiceVerse,
}

// Valid reports whether v is a known RealtimeVoice.
func (v RealtimeVoice) Valid() bool { return member(realtimeVoiceValues)(v) }

// String returns the wire string.
func (v RealtimeVoice) String() string { return string(v) }

// UnmarshalJSON rejects values outside the closed set.
func (v *RealtimeVoice) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, v, "RealtimeVoice", RealtimeVoice.Valid)
}

// ParseRealtimeVoice converts a wire string into a RealtimeVoice.
func ParseRealtimeVoice(s string) (RealtimeVoice, error) {
	return parseEnum(s, "RealtimeVoice", RealtimeVoice.Valid)
}

// RealtimeAudioFormat is the encoding of realtime input and output audio.
// pcm16 is 24 kHz mono little-endian; the G.711 formats are 8 kHz.
type RealtimeAudioFormat string

const (
	RealtimeAudioPCM16    RealtimeAudioFormat = "pcm16"
	RealtimeAudioG711ULaw RealtimeAudioFormat = "g711_ulaw"
	RealtimeAudioG711ALaw RealtimeAudioFormat = "g711_alaw"
)

// DefaultRealtimeAudioFormat is the service default.
const DefaultRealtimeAudioFormat = RealtimeAudioPCM16

var realtimeAudioFormatValues = []RealtimeAudioFormat{RealtimeAudioPCM16, RealtimeAudioG711ULaw, RealtimeAudioG711ALaw}

// Valid reports whether v is a known RealtimeAudioFormat.
func (v RealtimeAudioFormat) Valid() bool { return member(realtimeAudioFormatValues)(v) }

// String returns the wire string.
func (v RealtimeAudioFormat) String() string { return string(v) }

// SampleRate returns the sample rate in Hz.
func (v RealtimeAudioFormat) SampleRate() int {
	if v == RealtimeAudioG711ULaw || v == RealtimeAudioG711ALaw {
		return 8000
	}
	return 24000
}

// UnmarshalJSON rejects values outside the closed set.
func (v *RealtimeAudioFormat) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, v, "RealtimeAudioFormat", RealtimeAudioFormat.Valid)
}

// ParseRealtimeAudioFormat converts a wire string into a RealtimeAudioFormat.
func ParseRealtimeAudioFormat(s string) (RealtimeAudioFormat, error) {
	return parseEnum(s, "RealtimeAudioFormat", RealtimeAudioFormat.Valid)
}

// Modality is an output channel of a realtime session.
type Modality string

const (
	ModalityText  Modality = "text"
	ModalityAudio Modality = "audio"
)

var modalityValues = []Modality{ModalityText, ModalityAudio}

// Valid reports whether v is a known Modality.
func (v Modality) Valid() bool { return member(modalityValues)(v) }

// String returns the wire string.
func (v Modality) String() string { return string(v) }

// UnmarshalJSON rejects values outside the closed set.
func (v *Modality) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, v, "Modality", Modality.Valid)
}

// ParseModality converts a wire string into a Modality.
func ParseModality(s string) (Modality, error) { return parseEnum(s, "Modality", Modality.Valid) }

// Eagerness controls how quickly semantic VAD ends a turn.
type Eagerness string

const (
	EagernessLow    Eagerness = "low"
	EagernessMedium Eagerness = "medium"
	EagernessHigh   Eagerness = "high"
	EagernessAuto   Eagerness = "auto"
)

// DefaultEagerness is the service default.
const DefaultEagerness = EagernessAuto

var eagernessValues = []Eagerness{EagernessLow, EagernessMedium, EagernessHigh, EagernessAuto}

// Valid reports whether v is a known Eagerness.
func (v Eagerness) Valid() bool { return member(eagernessValues)(v) }

// String returns the wire string.
func (v Eagerness) String() string { return string(v) }

// UnmarshalJSON rejects values outside the closed set.
func (v *Eagerness) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, v, "Eagerness", Eagerness.Valid)
}

// ParseEagerness converts a wire string into an Eagerness.
func ParseEagerness(s string) (Eagerness, error) { return parseEnum(s, "Eagerness", Eagerness.Valid) }

// NoiseReduction selects input audio noise reduction for the microphone
// placement.
type NoiseReduction string

const (
	NoiseReductionNearField NoiseReduction = "near_field"
	NoiseReductionFarField  NoiseReduction = "far_field"
)

var noiseReductionValues = []NoiseReduction{NoiseReductionNearField, NoiseReductionFarField}

// Valid reports whether v is a known NoiseReduction.
func (v NoiseReduction) Valid() bool { return member(noiseReductionValues)(v) }

// String returns the wire string.
func (v NoiseReduction) String() string { return string(v) }

// UnmarshalJSON rejects values outside the closed set.
func (v *NoiseReduction) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, v, "NoiseReduction", NoiseReduction.Valid)
}

// ItemStatus is the lifecycle status of a conversation item.
type ItemStatus string

const (
	ItemInProgress ItemStatus = "in_progress"
	ItemCompleted  ItemStatus = "completed"
	ItemIncomplete ItemStatus = "incomplete"
)

var itemStatusValues = []ItemStatus{ItemInProgress, ItemCompleted, ItemIncomplete}

// Valid reports whether v is a known ItemStatus.
func (v ItemStatus) Valid() bool { return member(itemStatusValues)(v) }

// String returns the wire string.
func (v ItemStatus) String() string { return string(v) }

// UnmarshalJSON rejects values outside the closed set.
func (v *ItemStatus) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, v, "ItemStatus", ItemStatus.Valid)
}

// RealtimeResponseStatus is the final or current status of a realtime
// response.
type RealtimeResponseStatus string

const (
	ResponseInProgress RealtimeResponseStatus = "in_progress"
	ResponseCompleted  RealtimeResponseStatus = "completed"
	ResponseCancelled  RealtimeResponseStatus = "cancelled"
	ResponseIncomplete RealtimeResponseStatus = "incomplete"
	ResponseFailed     RealtimeResponseStatus = "failed"
)

var realtimeResponseStatusValues = []RealtimeResponseStatus{
	ResponseInProgress, ResponseCompleted, ResponseCancelled, ResponseIncomplete, ResponseFailed,
}

// Valid reports whether v is a known RealtimeResponseStatus.
func (v RealtimeResponseStatus) Valid() bool { return member(realtimeResponseStatusValues)(v) }

// String returns the wire string.
func (v RealtimeResponseStatus) String() string { return string(v) }

// UnmarshalJSON rejects values outside the closed set.
func (v *RealtimeResponseStatus) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, v, "RealtimeResponseStatus", RealtimeResponseStatus.Valid)
}
