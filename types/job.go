package types

// BatchStatus is the lifecycle state of a batch job.
type BatchStatus string

const (
	BatchValidating BatchStatus = "validating"
	BatchFailed     BatchStatus = "failed"
	BatchInProgress BatchStatus = "in_progress"
	BatchFinalizing BatchStatus = "finalizing"
	BatchCompleted  BatchStatus = "completed"
	BatchExpired    BatchStatus = "expired"
	BatchCancelling BatchStatus = "cancelling"
	BatchCancelled  BatchStatus = "cancelled"
)

// Terminal reports whether no further transitions will happen.
func (v BatchStatus) Terminal() bool {
	switch v {
	case BatchFailed, BatchCompleted, BatchExpired, BatchCancelled:
		return true
	}
	return false
}

var batchStatusValues = []BatchStatus{BatchValidating, BatchFailed, BatchInProgress, BatchFinalizing, BatchCompleted, BatchExpired, BatchCancelling, BatchCancelled}

// Valid reports whether v is a known BatchStatus.
func (v BatchStatus) Valid() bool { return member(batchStatusValues)(v) }

// String returns the wire string.
func (v BatchStatus) String() string { return string(v) }

// UnmarshalJSON rejects values outside the closed set.
func (v *BatchStatus) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, v, "BatchStatus", BatchStatus.Valid)
}

// ParseBatchStatus converts a wire string into a BatchStatus.
func ParseBatchStatus(s string) (BatchStatus, error) { return parseEnum(s, "BatchStatus", BatchStatus.Valid) }

// BatchEndpoint is the API route every line of a batch input file targets.
type BatchEndpoint string

const (
	BatchEndpointChatCompletions BatchEndpoint = "/v1/chat/completions"
	BatchEndpointEmbeddings      BatchEndpoint = "/v1/embeddings"
	BatchEndpointCompletions     BatchEndpoint = "/v1/completions"
	BatchEndpointResponses       BatchEndpoint = "/v1/responses"
	BatchEndpointModerations     BatchEndpoint = "/v1/moderations"
)

var batchEndpointValues = []BatchEndpoint{BatchEndpointChatCompletions, BatchEndpointEmbeddings, BatchEndpointCompletions, BatchEndpointResponses, BatchEndpointModerations}

// Valid reports whether v is a known BatchEndpoint.
func (v BatchEndpoint) Valid() bool { return member(batchEndpointValues)(v) }

// String returns the wire string.
func (v BatchEndpoint) String() string { return string(v) }

// UnmarshalJSON rejects values outside the closed set.
func (v *BatchEndpoint) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, v, "BatchEndpoint", BatchEndpoint.Valid)
}

// ParseBatchEndpoint converts a wire string into a BatchEndpoint.
func ParseBatchEndpoint(s string) (BatchEndpoint, error) { return parseEnum(s, "BatchEndpoint", BatchEndpoint.Valid) }

// CompletionWindow is the time frame a batch must finish in. Only 24h exists.
type CompletionWindow string

const CompletionWindow24h CompletionWindow = "24h"

var completionWindowValues = []CompletionWindow{CompletionWindow24h}

// Valid reports whether v is a known CompletionWindow.
func (v CompletionWindow) Valid() bool { return member(completionWindowValues)(v) }

// String returns the wire string.
func (v CompletionWindow) String() string { return string(v) }

// UnmarshalJSON rejects values outside the closed set.
func (v *CompletionWindow) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, v, "CompletionWindow", CompletionWindow.Valid)
}

// ParseCompletionWindow converts a wire string into a CompletionWindow.
func ParseCompletionWindow(s string) (CompletionWindow, error) { return parseEnum(s, "CompletionWindow", CompletionWindow.Valid) }

// FineTuningStatus is the lifecycle state of a fine-tuning job.
type FineTuningStatus string

const (
	FineTuningValidatingFiles FineTuningStatus = "validating_files"
	FineTuningQueued          FineTuningStatus = "queued"
	FineTuningRunning         FineTuningStatus = "running"
	FineTuningSucceeded       FineTuningStatus = "succeeded"
	FineTuningFailed          FineTuningStatus = "failed"
	FineTuningCancelled       FineTuningStatus = "cancelled"
)

// Terminal reports whether no further transitions will happen.
func (v FineTuningStatus) Terminal() bool {
	return v == FineTuningSucceeded || v == FineTuningFailed || v == FineTuningCancelled
}

var fineTuningStatusValues = []FineTuningStatus{FineTuningValidatingFiles, FineTuningQueued, FineTuningRunning, FineTuningSucceeded, FineTuningFailed, FineTuningCancelled}

// Valid reports whether v is a known FineTuningStatus.
func (v FineTuningStatus) Valid() bool { return member(fineTuningStatusValues)(v) }

// String returns the wire string.
func (v FineTuningStatus) String() string { return string(v) }

// UnmarshalJSON rejects values outside the closed set.
func (v *FineTuningStatus) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, v, "FineTuningStatus", FineTuningStatus.Valid)
}

// ParseFineTuningStatus converts a wire string into a FineTuningStatus.
func ParseFineTuningStatus(s string) (FineTuningStatus, error) { return parseEnum(s, "FineTuningStatus", FineTuningStatus.Valid) }

// FineTuningMethod is the training method of a fine-tuning job.
type FineTuningMethod string

const (
	FineTuningSupervised FineTuningMethod = "supervised"
	FineTuningDPO        FineTuningMethod = "dpo"
)

var fineTuningMethodValues = []FineTuningMethod{FineTuningSupervised, FineTuningDPO}

// Valid reports whether v is a known FineTuningMethod.
func (v FineTuningMethod) Valid() bool { return member(fineTuningMethodValues)(v) }

// String returns the wire string.
func (v FineTuningMethod) String() string { return string(v) }

// UnmarshalJSON rejects values outside the closed set.
func (v *FineTuningMethod) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, v, "FineTuningMethod", FineTuningMethod.Valid)
}

// ParseFineTuningMethod converts a wire string into a FineTuningMethod.
func ParseFineTuningMethod(s string) (FineTuningMethod, error) { return parseEnum(s, "FineTuningMethod", FineTuningMethod.Valid) }

