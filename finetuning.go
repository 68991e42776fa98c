package oaikit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/blue-context/oaikit/types"
)

const fineTuningEndpoint = "fine_tuning/jobs"

// HyperparameterValue is a number or the string "auto".
// The zero value is omitted from requests.
type HyperparameterValue struct {
	auto  bool
	value float64
	set   bool
}

// AutoHyperparameter lets the service choose the value.
func AutoHyperparameter() HyperparameterValue {
	return HyperparameterValue{auto: true, set: true}
}

// Hyperparameter fixes the value.
func Hyperparameter(v float64) HyperparameterValue {
	return HyperparameterValue{value: v, set: true}
}

// IsZero reports whether no value was set.
func (h HyperparameterValue) IsZero() bool { return !h.set }

// IsAuto reports whether the value is "auto".
func (h HyperparameterValue) IsAuto() bool { return h.auto }

// Value returns the number, and false for "auto" or unset values.
func (h HyperparameterValue) Value() (float64, bool) {
	return h.value, h.set && !h.auto
}

// MarshalJSON emits "auto" or the number.
func (h HyperparameterValue) MarshalJSON() ([]byte, error) {
	switch {
	case !h.set:
		return []byte("null"), nil
	case h.auto:
		return []byte(`"auto"`), nil
	}
	return []byte(strconv.FormatFloat(h.value, 'f', -1, 64)), nil
}

// UnmarshalJSON accepts "auto", a number or null.
func (h *HyperparameterValue) UnmarshalJSON(data []byte) error {
	*h = HyperparameterValue{}
	v := gjson.ParseBytes(data)
	switch v.Type {
	case gjson.Null:
		return nil
	case gjson.Number:
		*h = Hyperparameter(v.Float())
		return nil
	case gjson.String:
		if v.String() == "auto" {
			*h = AutoHyperparameter()
			return nil
		}
	}
	return fmt.Errorf("%w: hyperparameter must be a number or \"auto\", got %s", types.ErrResponseShape, v.Raw)
}

// Hyperparameters tune a fine-tuning job. Beta applies to DPO only.
type Hyperparameters struct {
	NEpochs                HyperparameterValue `json:"n_epochs,omitzero"`
	BatchSize              HyperparameterValue `json:"batch_size,omitzero"`
	LearningRateMultiplier HyperparameterValue `json:"learning_rate_multiplier,omitzero"`
	Beta                   HyperparameterValue `json:"beta,omitzero"`
}

// FineTuningMethod selects supervised or DPO training.
type FineTuningMethod struct {
	Type       types.FineTuningMethod `json:"type"`
	Supervised *MethodHyperparameters `json:"supervised,omitempty"`
	DPO        *MethodHyperparameters `json:"dpo,omitempty"`
}

// MethodHyperparameters wraps the hyperparameters of one method.
type MethodHyperparameters struct {
	Hyperparameters *Hyperparameters `json:"hyperparameters,omitempty"`
}

// SupervisedMethod returns a supervised method configuration.
func SupervisedMethod(h *Hyperparameters) *FineTuningMethod {
	return &FineTuningMethod{Type: types.FineTuningSupervised, Supervised: &MethodHyperparameters{Hyperparameters: h}}
}

// DPOMethod returns a direct preference optimization configuration.
func DPOMethod(h *Hyperparameters) *FineTuningMethod {
	return &FineTuningMethod{Type: types.FineTuningDPO, DPO: &MethodHyperparameters{Hyperparameters: h}}
}

// Validate checks that the configuration matches the method type.
func (m *FineTuningMethod) Validate() error {
	if !m.Type.Valid() {
		return invalidArgument(fineTuningEndpoint, "unknown fine-tuning method %q", m.Type)
	}
	if m.Type == types.FineTuningSupervised {
		if m.DPO != nil {
			return invalidArgument(fineTuningEndpoint, "supervised method carries a dpo configuration")
		}
		if m.Supervised != nil && m.Supervised.Hyperparameters != nil && !m.Supervised.Hyperparameters.Beta.IsZero() {
			return invalidArgument(fineTuningEndpoint, "beta applies to dpo only")
		}
	}
	if m.Type == types.FineTuningDPO && m.Supervised != nil {
		return invalidArgument(fineTuningEndpoint, "dpo method carries a supervised configuration")
	}
	return nil
}

// FineTuningIntegration enables a third-party integration such as wandb.
// Settings are flattened next to type.
type FineTuningIntegration struct {
	Type     string
	Settings map[string]any
}

// MarshalJSON emits {"type": ..., <type>: settings}.
func (i FineTuningIntegration) MarshalJSON() ([]byte, error) {
	out := map[string]any{"type": i.Type}
	if i.Settings != nil {
		out[i.Type] = i.Settings
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the type and its settings object.
func (i *FineTuningIntegration) UnmarshalJSON(data []byte) error {
	doc := gjson.ParseBytes(data)
	i.Type = doc.Get("type").String()
	i.Settings = nil
	if s := doc.Get(gjson.Escape(i.Type)); i.Type != "" && s.IsObject() {
		if m, ok := s.Value().(map[string]any); ok {
			i.Settings = m
		}
	}
	return nil
}

// FineTuningJobRequest creates a fine-tuning job.
type FineTuningJobRequest struct {
	// Model is the base model to fine-tune, or a fine-tuned model ("ft:")
	// to continue training. Required.
	Model types.FineTuningModel `json:"model"`

	// TrainingFile is a JSONL file uploaded with purpose fine-tune. Required.
	TrainingFile string `json:"training_file"`

	ValidationFile string                  `json:"validation_file,omitempty"`
	Method         *FineTuningMethod       `json:"method,omitempty"`
	Suffix         string                  `json:"suffix,omitempty"`
	Seed           *int64                  `json:"seed,omitempty"`
	Integrations   []FineTuningIntegration `json:"integrations,omitempty"`
	Metadata       map[string]string       `json:"metadata,omitempty"`
}

// Validate checks required fields and the method configuration.
func (r *FineTuningJobRequest) Validate() error {
	if r.Model == "" {
		return missingField(fineTuningEndpoint, "model")
	}
	if !r.Model.Valid() && !isFineTunedModel(string(r.Model)) {
		return invalidArgument(fineTuningEndpoint, "model %q does not support fine-tuning", r.Model)
	}
	if r.TrainingFile == "" {
		return missingField(fineTuningEndpoint, "training_file")
	}
	if len(r.Suffix) > 64 {
		return invalidArgument(fineTuningEndpoint, "suffix exceeds 64 characters")
	}
	if r.Method != nil {
		if err := r.Method.Validate(); err != nil {
			return err
		}
	}
	for i, in := range r.Integrations {
		if in.Type == "" {
			return missingField(fineTuningEndpoint, fmt.Sprintf("integrations[%d].type", i))
		}
	}
	return nil
}

// FineTuningJob is a fine-tuning job.
type FineTuningJob struct {
	ID                 string                  `json:"id"`
	Object             string                  `json:"object"`
	Model              string                  `json:"model"`
	CreatedAt          int64                   `json:"created_at"`
	FinishedAt         int64                   `json:"finished_at,omitempty"`
	FineTunedModel     string                  `json:"fine_tuned_model,omitempty"`
	OrganizationID     string                  `json:"organization_id"`
	ResultFiles        []string                `json:"result_files"`
	Status             types.FineTuningStatus  `json:"status"`
	ValidationFile     string                  `json:"validation_file,omitempty"`
	TrainingFile       string                  `json:"training_file"`
	Hyperparameters    *Hyperparameters        `json:"hyperparameters,omitempty"`
	TrainedTokens      int64                   `json:"trained_tokens,omitempty"`
	Error              *FineTuningError        `json:"error,omitempty"`
	Seed               int64                   `json:"seed"`
	EstimatedFinish    int64                   `json:"estimated_finish,omitempty"`
	Integrations       []FineTuningIntegration `json:"integrations,omitempty"`
	Method             *FineTuningMethod       `json:"method,omitempty"`
	UserProvidedSuffix string                  `json:"user_provided_suffix,omitempty"`
	Metadata           map[string]string       `json:"metadata,omitempty"`
}

// FineTuningError explains why a job failed.
type FineTuningError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Param   string `json:"param,omitempty"`
}

// Validate requires the id and status.
func (j *FineTuningJob) Validate() error {
	if j.ID == "" {
		return missingField(fineTuningEndpoint, "id")
	}
	if j.Status == "" {
		return missingField(fineTuningEndpoint, "status")
	}
	return nil
}

// Consistent checks that a succeeded job names its fine-tuned model.
func (j *FineTuningJob) Consistent() error {
	if j.Status == types.FineTuningSucceeded && j.FineTunedModel == "" {
		return fmt.Errorf("%w: succeeded job %s has no fine_tuned_model", types.ErrResponseShape, j.ID)
	}
	return nil
}

// FineTuningEvent is a status or metrics message of a job.
type FineTuningEvent struct {
	ID        string          `json:"id"`
	Object    string          `json:"object"`
	CreatedAt int64           `json:"created_at"`
	Level     string          `json:"level"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
	Type      string          `json:"type"`
}

// FineTuningCheckpoint is an intermediate model saved during training.
type FineTuningCheckpoint struct {
	ID                       string            `json:"id"`
	Object                   string            `json:"object"`
	CreatedAt                int64             `json:"created_at"`
	FineTuningJobID          string            `json:"fine_tuning_job_id"`
	FineTunedModelCheckpoint string            `json:"fine_tuned_model_checkpoint"`
	StepNumber               int               `json:"step_number"`
	Metrics                  CheckpointMetrics `json:"metrics"`
}

// CheckpointMetrics are the training metrics at a checkpoint.
type CheckpointMetrics struct {
	Step                       float64  `json:"step"`
	TrainLoss                  float64  `json:"train_loss"`
	TrainMeanTokenAccuracy     float64  `json:"train_mean_token_accuracy"`
	ValidLoss                  *float64 `json:"valid_loss,omitempty"`
	ValidMeanTokenAccuracy     *float64 `json:"valid_mean_token_accuracy,omitempty"`
	FullValidLoss              *float64 `json:"full_valid_loss,omitempty"`
	FullValidMeanTokenAccuracy *float64 `json:"full_valid_mean_token_accuracy,omitempty"`
}

// CreateFineTuningJob starts a fine-tuning job.
//
// Example:
//
//	job, err := client.CreateFineTuningJob(ctx, &oaikit.FineTuningJobRequest{
//	    Model:        types.FineTuneGPT4oMini,
//	    TrainingFile: file.ID,
//	    Method: oaikit.SupervisedMethod(&oaikit.Hyperparameters{
//	        NEpochs: oaikit.Hyperparameter(3),
//	    }),
//	})
func (c *Client) CreateFineTuningJob(ctx context.Context, req *FineTuningJobRequest) (*FineTuningJob, error) {
	if req == nil {
		return nil, missingField(fineTuningEndpoint, "request")
	}
	if err := req.Validate(); err != nil {
		return nil, classify(fineTuningEndpoint, err)
	}
	var job FineTuningJob
	if err := c.doJSON(ctx, http.MethodPost, fineTuningEndpoint, nil, string(req.Model), req, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// RetrieveFineTuningJob returns a job by id.
func (c *Client) RetrieveFineTuningJob(ctx context.Context, id string) (*FineTuningJob, error) {
	return c.fineTuningCall(ctx, http.MethodGet, id)
}

// CancelFineTuningJob cancels a running job.
func (c *Client) CancelFineTuningJob(ctx context.Context, id string) (*FineTuningJob, error) {
	return c.fineTuningCall(ctx, http.MethodPost, id, "cancel")
}

func (c *Client) fineTuningCall(ctx context.Context, method, id string, suffix ...string) (*FineTuningJob, error) {
	if id == "" {
		return nil, missingField(fineTuningEndpoint, "fine_tuning_job_id")
	}
	var job FineTuningJob
	path := fineTuningEndpoint + "/" + joinPath(append([]string{id}, suffix...)...)
	if err := c.doJSON(ctx, method, path, nil, "", nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// ListFineTuningJobs lists jobs with cursor pagination.
func (c *Client) ListFineTuningJobs(ctx context.Context, params ListParams) (*List[FineTuningJob], error) {
	var list List[FineTuningJob]
	if err := c.listFineTuning(ctx, fineTuningEndpoint, params, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// ListFineTuningEvents lists the status events of a job.
func (c *Client) ListFineTuningEvents(ctx context.Context, id string, params ListParams) (*List[FineTuningEvent], error) {
	if id == "" {
		return nil, missingField(fineTuningEndpoint, "fine_tuning_job_id")
	}
	var list List[FineTuningEvent]
	if err := c.listFineTuning(ctx, fineTuningEndpoint+"/"+joinPath(id, "events"), params, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// ListFineTuningCheckpoints lists the checkpoints of a job.
func (c *Client) ListFineTuningCheckpoints(ctx context.Context, id string, params ListParams) (*List[FineTuningCheckpoint], error) {
	if id == "" {
		return nil, missingField(fineTuningEndpoint, "fine_tuning_job_id")
	}
	var list List[FineTuningCheckpoint]
	if err := c.listFineTuning(ctx, fineTuningEndpoint+"/"+joinPath(id, "checkpoints"), params, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *Client) listFineTuning(ctx context.Context, path string, params ListParams, out any) error {
	if err := params.Validate(); err != nil {
		return classify(fineTuningEndpoint, err)
	}
	return c.doJSON(ctx, http.MethodGet, path, params.values(), "", nil, out)
}
