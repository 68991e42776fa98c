package realtime

import "github.com/blue-context/oaikit/types"

// TurnDetectionType selects the server-side turn detector.
type TurnDetectionType string

const (
	// TurnServerVAD detects end of speech from silence.
	TurnServerVAD TurnDetectionType = "server_vad"
	// TurnSemanticVAD detects end of speech from what the user said.
	TurnSemanticVAD TurnDetectionType = "semantic_vad"
)

// TurnDetection is the turn-detection policy of a session.
//
// Build it with ServerVAD or SemanticVAD. Fields that do not belong to the
// selected detector are rejected by Validate. To switch turn detection off,
// set SessionConfig.DisableTurnDetection instead.
type TurnDetection struct {
	Type TurnDetectionType `json:"type"`

	// Threshold is the activation threshold in [0, 1] (server_vad).
	Threshold *float64 `json:"threshold,omitempty"`

	// PrefixPaddingMs is the audio kept before detected speech (server_vad).
	PrefixPaddingMs *int `json:"prefix_padding_ms,omitempty"`

	// SilenceDurationMs is the silence that ends a turn (server_vad).
	SilenceDurationMs *int `json:"silence_duration_ms,omitempty"`

	// Eagerness controls how quickly the model answers (semantic_vad).
	Eagerness types.Eagerness `json:"eagerness,omitempty"`

	// CreateResponse starts a response automatically at end of turn.
	CreateResponse *bool `json:"create_response,omitempty"`

	// InterruptResponse cancels the current response when the user starts
	// speaking.
	InterruptResponse *bool `json:"interrupt_response,omitempty"`
}

// ServerVAD returns a server_vad policy. Zero arguments are left to the
// service defaults.
func ServerVAD(threshold float64, prefixPaddingMs, silenceDurationMs int) *TurnDetection {
	td := &TurnDetection{Type: TurnServerVAD}
	if threshold != 0 {
		td.Threshold = &threshold
	}
	if prefixPaddingMs != 0 {
		td.PrefixPaddingMs = &prefixPaddingMs
	}
	if silenceDurationMs != 0 {
		td.SilenceDurationMs = &silenceDurationMs
	}
	return td
}

// SemanticVAD returns a semantic_vad policy. An empty eagerness means auto.
func SemanticVAD(eagerness types.Eagerness) *TurnDetection {
	return &TurnDetection{Type: TurnSemanticVAD, Eagerness: eagerness}
}

// WithCreateResponse sets create_response and returns td.
func (td *TurnDetection) WithCreateResponse(create bool) *TurnDetection {
	td.CreateResponse = &create
	return td
}

// WithInterruptResponse sets interrupt_response and returns td.
func (td *TurnDetection) WithInterruptResponse(interrupt bool) *TurnDetection {
	td.InterruptResponse = &interrupt
	return td
}

// Interrupts reports whether new user speech cancels the current response.
// The service default is true for both detectors.
func (td *TurnDetection) Interrupts() bool {
	if td == nil {
		return false
	}
	return td.InterruptResponse == nil || *td.InterruptResponse
}

// Validate checks that only fields of the selected detector are set and
// that they are in range.
func (td *TurnDetection) Validate() error {
	switch td.Type {
	case TurnServerVAD:
		if td.Eagerness != "" {
			return invalidArgument("eagerness is only valid for semantic_vad")
		}
		if td.Threshold != nil && (*td.Threshold < 0 || *td.Threshold > 1) {
			return invalidArgument("threshold must be between 0 and 1, got %v", *td.Threshold)
		}
		if td.PrefixPaddingMs != nil && *td.PrefixPaddingMs < 0 {
			return invalidArgument("prefix_padding_ms must not be negative")
		}
		if td.SilenceDurationMs != nil && *td.SilenceDurationMs < 0 {
			return invalidArgument("silence_duration_ms must not be negative")
		}
	case TurnSemanticVAD:
		if td.Threshold != nil || td.PrefixPaddingMs != nil || td.SilenceDurationMs != nil {
			return invalidArgument("threshold, prefix_padding_ms and silence_duration_ms are only valid for server_vad")
		}
		if td.Eagerness != "" && !td.Eagerness.Valid() {
			return invalidArgument("unknown eagerness %q", td.Eagerness)
		}
	case "":
		return missingField("turn_detection type")
	default:
		return invalidArgument("unknown turn_detection type %q", td.Type)
	}
	return nil
}
