package oaikit

import (
	"context"
	"fmt"
	"net/http"

	"github.com/blue-context/oaikit/types"
)

const batchesEndpoint = "batches"

// BatchRequest creates a batch from an uploaded JSONL input file.
type BatchRequest struct {
	// InputFileID is a file uploaded with purpose batch. Required.
	InputFileID string `json:"input_file_id"`

	// Endpoint is the route every line targets. Required.
	Endpoint types.BatchEndpoint `json:"endpoint"`

	// CompletionWindow defaults to 24h.
	CompletionWindow types.CompletionWindow `json:"completion_window"`

	// Metadata holds up to 16 key-value pairs.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Validate checks required fields and enumerations.
func (r *BatchRequest) Validate() error {
	if r.InputFileID == "" {
		return missingField(batchesEndpoint, "input_file_id")
	}
	if r.Endpoint == "" {
		return missingField(batchesEndpoint, "endpoint")
	}
	if !r.Endpoint.Valid() {
		return invalidArgument(batchesEndpoint, "unknown batch endpoint %q", r.Endpoint)
	}
	if r.CompletionWindow != "" && !r.CompletionWindow.Valid() {
		return invalidArgument(batchesEndpoint, "completion_window must be 24h, got %q", r.CompletionWindow)
	}
	if len(r.Metadata) > 16 {
		return invalidArgument(batchesEndpoint, "metadata holds at most 16 pairs, got %d", len(r.Metadata))
	}
	return nil
}

// Batch is a batch job.
type Batch struct {
	ID               string                 `json:"id"`
	Object           string                 `json:"object"`
	Endpoint         types.BatchEndpoint    `json:"endpoint"`
	Errors           *BatchErrors           `json:"errors,omitempty"`
	InputFileID      string                 `json:"input_file_id"`
	CompletionWindow types.CompletionWindow `json:"completion_window"`
	Status           types.BatchStatus      `json:"status"`
	OutputFileID     string                 `json:"output_file_id,omitempty"`
	ErrorFileID      string                 `json:"error_file_id,omitempty"`
	CreatedAt        int64                  `json:"created_at"`
	InProgressAt     int64                  `json:"in_progress_at,omitempty"`
	ExpiresAt        int64                  `json:"expires_at,omitempty"`
	FinalizingAt     int64                  `json:"finalizing_at,omitempty"`
	CompletedAt      int64                  `json:"completed_at,omitempty"`
	FailedAt         int64                  `json:"failed_at,omitempty"`
	ExpiredAt        int64                  `json:"expired_at,omitempty"`
	CancellingAt     int64                  `json:"cancelling_at,omitempty"`
	CancelledAt      int64                  `json:"cancelled_at,omitempty"`
	RequestCounts    *BatchRequestCounts    `json:"request_counts,omitempty"`
	Metadata         map[string]string      `json:"metadata,omitempty"`
}

// BatchErrors lists validation errors of the input file.
type BatchErrors struct {
	Object string       `json:"object"`
	Data   []BatchError `json:"data"`
}

// BatchError is one input validation error.
type BatchError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Param   string `json:"param,omitempty"`
	Line    *int   `json:"line,omitempty"`
}

// BatchRequestCounts tracks progress of the requests in a batch.
type BatchRequestCounts struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// Validate requires the id and status.
func (b *Batch) Validate() error {
	if b.ID == "" {
		return missingField(batchesEndpoint, "id")
	}
	if b.Status == "" {
		return missingField(batchesEndpoint, "status")
	}
	return nil
}

// Consistent checks that a finished batch carries the files its status
// implies: completed needs output_file_id and failed needs error_file_id.
func (b *Batch) Consistent() error {
	switch b.Status {
	case types.BatchCompleted:
		if b.OutputFileID == "" {
			return fmt.Errorf("%w: completed batch %s has no output_file_id", types.ErrResponseShape, b.ID)
		}
	case types.BatchFailed:
		if b.ErrorFileID == "" {
			return fmt.Errorf("%w: failed batch %s has no error_file_id", types.ErrResponseShape, b.ID)
		}
	}
	return nil
}

// CreateBatch creates a batch. Polling for completion is left to the caller.
//
// Example:
//
//	batch, err := client.CreateBatch(ctx, &oaikit.BatchRequest{
//	    InputFileID: file.ID,
//	    Endpoint:    types.BatchEndpointChatCompletions,
//	})
func (c *Client) CreateBatch(ctx context.Context, req *BatchRequest) (*Batch, error) {
	if req == nil {
		return nil, missingField(batchesEndpoint, "request")
	}
	if err := req.Validate(); err != nil {
		return nil, classify(batchesEndpoint, err)
	}
	wire := *req
	if wire.CompletionWindow == "" {
		wire.CompletionWindow = types.CompletionWindow24h
	}

	var batch Batch
	if err := c.doJSON(ctx, http.MethodPost, batchesEndpoint, nil, "", &wire, &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

// RetrieveBatch returns a batch by id.
func (c *Client) RetrieveBatch(ctx context.Context, id string) (*Batch, error) {
	return c.batchCall(ctx, http.MethodGet, id)
}

// CancelBatch cancels an in-progress batch. The batch moves to cancelling
// and then cancelled.
func (c *Client) CancelBatch(ctx context.Context, id string) (*Batch, error) {
	return c.batchCall(ctx, http.MethodPost, id, "cancel")
}

func (c *Client) batchCall(ctx context.Context, method, id string, suffix ...string) (*Batch, error) {
	if id == "" {
		return nil, missingField(batchesEndpoint, "batch_id")
	}
	var batch Batch
	path := joinPath(append([]string{batchesEndpoint, id}, suffix...)...)
	if err := c.doJSON(ctx, method, path, nil, "", nil, &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

// ListBatches lists batches with cursor pagination.
func (c *Client) ListBatches(ctx context.Context, params ListParams) (*List[Batch], error) {
	if err := params.Validate(); err != nil {
		return nil, classify(batchesEndpoint, err)
	}
	var list List[Batch]
	if err := c.doJSON(ctx, http.MethodGet, batchesEndpoint, params.values(), "", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}
