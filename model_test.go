package oaikit

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/blue-context/oaikit/internal/testutil"
)

func TestListModels(t *testing.T) {
	assert := testutil.New(t)
	client := newTestClient(t, respond(200, testutil.ModelListJSON))

	list, err := client.ListModels(context.Background())
	assert.NoError(err)
	assert.Len(list.Data, 2)
	assert.False(list.Data[0].FineTuned())
	assert.True(list.Data[1].FineTuned())
	assert.Equal("user-abc", list.Data[1].OwnedBy)
}

func TestRetrieveModel(t *testing.T) {
	assert := testutil.New(t)
	mock := respond(200, `{"id":"gpt-4o-mini","object":"model","created":1721172741,"owned_by":"system"}`)
	client := newTestClient(t, mock)

	m, err := client.RetrieveModel(context.Background(), "gpt-4o-mini")
	assert.NoError(err)
	assert.Equal("system", m.OwnedBy)
	assert.Equal("/v1/models/gpt-4o-mini", mock.LastRequest().URL.Path)

	_, err = client.RetrieveModel(context.Background(), "")
	assert.ErrorIs(err, ErrMissingConfiguration)
}

func TestDeleteModel(t *testing.T) {
	t.Run("fine-tuned model", func(t *testing.T) {
		assert := testutil.New(t)
		mock := respond(200, `{"id":"ft:gpt-4o-mini:acme::abc","object":"model","deleted":true}`)
		client := newTestClient(t, mock)

		deleted, err := client.DeleteModel(context.Background(), "ft:gpt-4o-mini:acme::abc")
		assert.NoError(err)
		assert.True(deleted.Deleted)
		assert.Equal(http.MethodDelete, mock.LastRequest().Method)
	})

	t.Run("base model rejected locally", func(t *testing.T) {
		mock := respond(200, "{}")
		client := newTestClient(t, mock)

		_, err := client.DeleteModel(context.Background(), "gpt-4o-mini")
		if !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("error = %v, want invalid argument", err)
		}
		if len(mock.RequestsMade) != 0 {
			t.Errorf("requests made = %d, want 0", len(mock.RequestsMade))
		}
	})
}
