package oaikit

import (
	"context"
	"net/http"
	"strings"
)

const modelsEndpoint = "models"

// Model describes a model available to the account.
type Model struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

// Validate requires the id.
func (m *Model) Validate() error {
	if m.ID == "" {
		return missingField(modelsEndpoint, "id")
	}
	return nil
}

// FineTuned reports whether the model is a fine-tuned model, which the
// account may delete.
func (m Model) FineTuned() bool { return isFineTunedModel(m.ID) }

func isFineTunedModel(id string) bool { return strings.HasPrefix(id, "ft:") }

// ListModels lists the models available to the account.
func (c *Client) ListModels(ctx context.Context) (*List[Model], error) {
	var list List[Model]
	if err := c.doJSON(ctx, http.MethodGet, modelsEndpoint, nil, "", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// RetrieveModel returns a model by id.
func (c *Client) RetrieveModel(ctx context.Context, id string) (*Model, error) {
	if id == "" {
		return nil, missingField(modelsEndpoint, "model")
	}
	var m Model
	if err := c.doJSON(ctx, http.MethodGet, joinPath(modelsEndpoint, id), nil, "", nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// DeleteModel deletes a fine-tuned model. Base models cannot be deleted,
// so ids without the "ft:" prefix are rejected without a request.
func (c *Client) DeleteModel(ctx context.Context, id string) (*DeletedObject, error) {
	if id == "" {
		return nil, missingField(modelsEndpoint, "model")
	}
	if !isFineTunedModel(id) {
		return nil, invalidArgument(modelsEndpoint, "model %q is not a fine-tuned model and cannot be deleted", id)
	}
	var deleted DeletedObject
	if err := c.doJSON(ctx, http.MethodDelete, joinPath(modelsEndpoint, id), nil, "", nil, &deleted); err != nil {
		return nil, err
	}
	return &deleted, nil
}
