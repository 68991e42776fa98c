package types

// EmbeddingEncoding is the numeric encoding of returned embedding vectors.
type EmbeddingEncoding string

const (
	EncodingFloat  EmbeddingEncoding = "float"
	EncodingBase64 EmbeddingEncoding = "base64"
)

// DefaultEmbeddingEncoding is the server default.
const DefaultEmbeddingEncoding = EncodingFloat

var embeddingEncodingValues = []EmbeddingEncoding{EncodingFloat, EncodingBase64}

// Valid reports whether v is a known EmbeddingEncoding.
func (v EmbeddingEncoding) Valid() bool { return member(embeddingEncodingValues)(v) }

// String returns the wire string.
func (v EmbeddingEncoding) String() string { return string(v) }

// UnmarshalJSON rejects values outside the closed set.
func (v *EmbeddingEncoding) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, v, "EmbeddingEncoding", EmbeddingEncoding.Valid)
}

// ParseEmbeddingEncoding converts a wire string into a EmbeddingEncoding.
func ParseEmbeddingEncoding(s string) (EmbeddingEncoding, error) { return parseEnum(s, "EmbeddingEncoding", EmbeddingEncoding.Valid) }

// ReasoningEffort bounds how much reasoning a reasoning model performs.
type ReasoningEffort string

const (
	ReasoningNone    ReasoningEffort = "none"
	ReasoningMinimal ReasoningEffort = "minimal"
	ReasoningLow     ReasoningEffort = "low"
	ReasoningMedium  ReasoningEffort = "medium"
	ReasoningHigh    ReasoningEffort = "high"
	ReasoningXHigh   ReasoningEffort = "xhigh"
)

var reasoningEffortValues = []ReasoningEffort{ReasoningNone, ReasoningMinimal, ReasoningLow, ReasoningMedium, ReasoningHigh, ReasoningXHigh}

// Valid reports whether v is a known ReasoningEffort.
func (v ReasoningEffort) Valid() bool { return member(reasoningEffortValues)(v) }

// String returns the wire string.
func (v ReasoningEffort) String() string { return string(v) }

// UnmarshalJSON rejects values outside the closed set.
func (v *ReasoningEffort) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, v, "ReasoningEffort", ReasoningEffort.Valid)
}

// ParseReasoningEffort converts a wire string into a ReasoningEffort.
func ParseReasoningEffort(s string) (ReasoningEffort, error) { return parseEnum(s, "ReasoningEffort", ReasoningEffort.Valid) }

// ReasoningSummary selects the reasoning summary detail.
type ReasoningSummary string

const (
	SummaryAuto     ReasoningSummary = "auto"
	SummaryConcise  ReasoningSummary = "concise"
	SummaryDetailed ReasoningSummary = "detailed"
)

var reasoningSummaryValues = []ReasoningSummary{SummaryAuto, SummaryConcise, SummaryDetailed}

// Valid reports whether v is a known ReasoningSummary.
func (v ReasoningSummary) Valid() bool { return member(reasoningSummaryValues)(v) }

// String returns the wire string.
func (v ReasoningSummary) String() string { return string(v) }

// UnmarshalJSON rejects values outside the closed set.
func (v *ReasoningSummary) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, v, "ReasoningSummary", ReasoningSummary.Valid)
}

// ParseReasoningSummary converts a wire string into a ReasoningSummary.
func ParseReasoningSummary(s string) (ReasoningSummary, error) { return parseEnum(s, "ReasoningSummary", ReasoningSummary.Valid) }

// TextVerbosity constrains the length of text output.
type TextVerbosity string

const (
	VerbosityLow    TextVerbosity = "low"
	VerbosityMedium TextVerbosity = "medium"
	VerbosityHigh   TextVerbosity = "high"
)

var textVerbosityValues = []TextVerbosity{VerbosityLow, VerbosityMedium, VerbosityHigh}

// Valid reports whether v is a known TextVerbosity.
func (v TextVerbosity) Valid() bool { return member(textVerbosityValues)(v) }

// String returns the wire string.
func (v TextVerbosity) String() string { return string(v) }

// UnmarshalJSON rejects values outside the closed set.
func (v *TextVerbosity) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, v, "TextVerbosity", TextVerbosity.Valid)
}

// ParseTextVerbosity converts a wire string into a TextVerbosity.
func ParseTextVerbosity(s string) (TextVerbosity, error) { return parseEnum(s, "TextVerbosity", TextVerbosity.Valid) }

// Truncation is the context truncation strategy of the responses endpoint.
type Truncation string

const (
	TruncationAuto     Truncation = "auto"
	TruncationDisabled Truncation = "disabled"
)

var truncationValues = []Truncation{TruncationAuto, TruncationDisabled}

// Valid reports whether v is a known Truncation.
func (v Truncation) Valid() bool { return member(truncationValues)(v) }

// String returns the wire string.
func (v Truncation) String() string { return string(v) }

// UnmarshalJSON rejects values outside the closed set.
func (v *Truncation) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, v, "Truncation", Truncation.Valid)
}

// ParseTruncation converts a wire string into a Truncation.
func ParseTruncation(s string) (Truncation, error) { return parseEnum(s, "Truncation", Truncation.Valid) }

// ListOrder is the sort order of cursor-paginated lists.
type ListOrder string

const (
	OrderAsc  ListOrder = "asc"
	OrderDesc ListOrder = "desc"
)

var listOrderValues = []ListOrder{OrderAsc, OrderDesc}

// Valid reports whether v is a known ListOrder.
func (v ListOrder) Valid() bool { return member(listOrderValues)(v) }

// String returns the wire string.
func (v ListOrder) String() string { return string(v) }

// UnmarshalJSON rejects values outside the closed set.
func (v *ListOrder) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, v, "ListOrder", ListOrder.Valid)
}

// ParseListOrder converts a wire string into a ListOrder.
func ParseListOrder(s string) (ListOrder, error) { return parseEnum(s, "ListOrder", ListOrder.Valid) }

