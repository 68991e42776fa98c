package types

// FilePurpose declares what an uploaded file will be used for.
type FilePurpose string

const (
	FilePurposeAssistants       FilePurpose = "assistants"
	FilePurposeAssistantsOutput FilePurpose = "assistants_output"
	FilePurposeBatch            FilePurpose = "batch"
	FilePurposeBatchOutput      FilePurpose = "batch_output"
	FilePurposeFineTune         FilePurpose = "fine-tune"
	FilePurposeFineTuneResults  FilePurpose = "fine-tune-results"
	FilePurposeVision           FilePurpose = "vision"
	FilePurposeUserData         FilePurpose = "user_data"
)

var filePurposeValues = []FilePurpose{FilePurposeAssistants, FilePurposeAssistantsOutput, FilePurposeBatch, FilePurposeBatchOutput, FilePurposeFineTune, FilePurposeFineTuneResults, FilePurposeVision, FilePurposeUserData}

// Valid reports whether v is a known FilePurpose.
func (v FilePurpose) Valid() bool { return member(filePurposeValues)(v) }

// String returns the wire string.
func (v FilePurpose) String() string { return string(v) }

// UnmarshalJSON rejects values outside the closed set.
func (v *FilePurpose) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, v, "FilePurpose", FilePurpose.Valid)
}

// ParseFilePurpose converts a wire string into a FilePurpose.
func ParseFilePurpose(s string) (FilePurpose, error) { return parseEnum(s, "FilePurpose", FilePurpose.Valid) }

