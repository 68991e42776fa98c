package oaikit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/blue-context/oaikit/internal/testutil"
	"github.com/blue-context/oaikit/schema"
	"github.com/blue-context/oaikit/types"
)

func TestCreateResponse(t *testing.T) {
	assert := testutil.New(t)
	mock := respond(200, testutil.ResponseTextJSON)
	client := newTestClient(t, mock)

	format := schema.NewResponsesJSON("capital")
	assert.NoError(format.AddProperty("capital", schema.TypeString, "The capital city"))
	assert.NoError(format.SetStrict(true))

	resp, err := client.CreateResponse(context.Background(), &ResponseRequest{
		Input:        ResponseInputText("What is the capital of France?"),
		Instructions: "Answer in JSON.",
		Text:         &ResponseText{Format: format, Verbosity: types.VerbosityLow},
	})
	assert.NoError(err)
	assert.Equal(`{"capital":"Paris"}`, resp.OutputText())
	assert.Equal("completed", resp.Status)
	assert.Equal(44, resp.Usage.GetTotalTokens())

	assert.Equal("/v1/responses", mock.LastRequest().URL.Path)
	body := mock.LastBody()
	assert.Equal("gpt-4o-mini", gjson.Get(body, "model").String())
	assert.Equal("What is the capital of France?", gjson.Get(body, "input").String())
	assert.Equal("json_schema", gjson.Get(body, "text.format.type").String())
	assert.Equal("capital", gjson.Get(body, "text.format.name").String())
	assert.True(gjson.Get(body, "text.format.strict").Bool())
	assert.Equal("string", gjson.Get(body, "text.format.schema.properties.capital.type").String())
	assert.Equal("low", gjson.Get(body, "text.verbosity").String())
	assert.False(gjson.Get(body, "tool_choice").Exists())
}

func TestResponseFunctionCallRoundTrip(t *testing.T) {
	assert := testutil.New(t)
	mock := &testutil.MockHTTPClient{
		Responses: []*http.Response{
			testutil.MockResponse(200, testutil.ResponseFunctionCallJSON),
			testutil.MockResponse(200, testutil.ResponseTextJSON),
		},
	}
	client := newTestClient(t, mock)

	params := schema.NewObject()
	assert.NoError(params.Add("a", schema.TypeNumber, "first operand"))
	assert.NoError(params.Add("b", schema.TypeNumber, "second operand"))
	tools := []Tool{NewFunctionTool("calculator", "Add two numbers", params, true)}

	first, err := client.CreateResponse(context.Background(), &ResponseRequest{
		Input:      ResponseInputMessages(NewTextMessage(types.RoleUser, "What is 2+2?")),
		Tools:      tools,
		ToolChoice: ToolChoiceRequired,
	})
	assert.NoError(err)

	body := mock.LastBody()
	assert.Equal("calculator", gjson.Get(body, "tools.0.name").String())
	assert.False(gjson.Get(body, "tools.0.function").Exists())
	assert.Equal("required", gjson.Get(body, "tool_choice").String())
	assert.Equal("user", gjson.Get(body, "input.0.role").String())

	calls, err := first.FunctionCalls()
	assert.NoError(err)
	assert.Len(calls, 1)
	assert.Equal("call_12345", calls[0].ID)
	assert.Equal(float64(4), calls[0].Function.Arguments["a"].(float64)+calls[0].Function.Arguments["b"].(float64))

	_, err = client.CreateResponse(context.Background(), &ResponseRequest{
		Input: ResponseInputItems(
			first.Output[0].AsInput(),
			FunctionCallOutputItem("call_12345", "4"),
		),
		Tools:              tools,
		PreviousResponseID: first.ID,
	})
	assert.NoError(err)

	body = mock.LastBody()
	assert.Equal("function_call", gjson.Get(body, "input.0.type").String())
	assert.Equal("fc_12345", gjson.Get(body, "input.0.id").String())
	assert.Equal("function_call_output", gjson.Get(body, "input.1.type").String())
	assert.Equal("4", gjson.Get(body, "input.1.output").String())
	assert.Equal("resp_fc1", gjson.Get(body, "previous_response_id").String())
}

func TestResponseMCPTool(t *testing.T) {
	assert := testutil.New(t)
	mock := respond(200, testutil.ResponseTextJSON)
	client := newTestClient(t, mock)

	_, err := client.CreateResponse(context.Background(), &ResponseRequest{
		Model: types.GPT41,
		Input: ResponseInputText("Search the docs"),
		Tools: []Tool{NewMCPTool("docs", "https://mcp.example.com/sse", "never", []string{"search"})},
	})
	assert.NoError(err)

	body := mock.LastBody()
	assert.Equal("mcp", gjson.Get(body, "tools.0.type").String())
	assert.Equal("docs", gjson.Get(body, "tools.0.server_label").String())
	assert.Equal("never", gjson.Get(body, "tools.0.require_approval").String())
	assert.Equal("search", gjson.Get(body, "tools.0.allowed_tools.0").String())
}

func TestResponseReasoningModel(t *testing.T) {
	assert := testutil.New(t)
	mock := respond(200, testutil.ResponseTextJSON)
	client := newTestClient(t, mock)

	_, err := client.CreateResponse(context.Background(), &ResponseRequest{
		Model:       types.O3,
		Input:       ResponseInputText("Think hard"),
		Temperature: ptr(1.2),
		Reasoning:   &Reasoning{Effort: types.ReasoningMedium},
	})
	assert.NoError(err)

	body := mock.LastBody()
	assert.False(gjson.Get(body, "temperature").Exists())
	assert.Equal("medium", gjson.Get(body, "reasoning.effort").String())
}

func TestCreateResponseValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     *ResponseRequest
		wantErr error
	}{
		{
			name:    "no input",
			req:     &ResponseRequest{},
			wantErr: ErrMissingConfiguration,
		},
		{
			name:    "chat schema",
			req:     &ResponseRequest{Input: ResponseInputText("hi"), Text: &ResponseText{Format: schema.NewChat("x")}},
			wantErr: schema.ErrSchemaShapeMismatch,
		},
		{
			name:    "function call item without call id",
			req:     &ResponseRequest{Input: ResponseInputItems(FunctionCallItem("", "calculator", nil))},
			wantErr: ErrMissingConfiguration,
		},
		{
			name:    "invalid raw item",
			req:     &ResponseRequest{Input: ResponseInputItems(RawItem([]byte("{")))},
			wantErr: ErrInvalidArgument,
		},
		{
			name:    "unknown truncation",
			req:     &ResponseRequest{Input: ResponseInputText("hi"), Truncation: "sometimes"},
			wantErr: ErrInvalidArgument,
		},
		{
			name:    "unknown verbosity",
			req:     &ResponseRequest{Input: ResponseInputText("hi"), Text: &ResponseText{Verbosity: "loud"}},
			wantErr: ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := respond(200, testutil.ResponseTextJSON)
			client := newTestClient(t, mock)

			_, err := client.CreateResponse(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if len(mock.RequestsMade) != 0 {
				t.Errorf("requests made = %d, want 0", len(mock.RequestsMade))
			}
		})
	}
}

func TestStoredResponses(t *testing.T) {
	assert := testutil.New(t)
	mock := &testutil.MockHTTPClient{
		Responses: []*http.Response{
			testutil.MockResponse(200, testutil.ResponseTextJSON),
			testutil.MockResponse(200, `{"id":"resp_67ccd2bed1ec8190","object":"response.deleted","deleted":true}`),
			testutil.MockResponse(200, `{"object":"list","data":[{"type":"message","id":"msg_1","role":"user","content":[{"type":"input_text","text":"hi"}]}],"has_more":false}`),
		},
	}
	client := newTestClient(t, mock)
	ctx := context.Background()

	got, err := client.GetResponse(ctx, "resp_67ccd2bed1ec8190")
	assert.NoError(err)
	assert.Equal("resp_67ccd2bed1ec8190", got.ID)
	assert.Equal("GET", mock.LastRequest().Method)

	deleted, err := client.DeleteResponse(ctx, "resp_67ccd2bed1ec8190")
	assert.NoError(err)
	assert.True(deleted.Deleted)
	assert.Equal("DELETE", mock.LastRequest().Method)

	items, err := client.ListResponseInputItems(ctx, "resp_67ccd2bed1ec8190", ListParams{Limit: 5, Order: types.OrderAsc})
	assert.NoError(err)
	assert.Len(items.Data, 1)
	assert.Equal("/v1/responses/resp_67ccd2bed1ec8190/input_items", mock.LastRequest().URL.Path)
	assert.Equal("5", mock.LastRequest().URL.Query().Get("limit"))
	assert.Equal("asc", mock.LastRequest().URL.Query().Get("order"))

	_, err = client.GetResponse(ctx, "")
	assert.ErrorIs(err, ErrMissingConfiguration)
}

func TestOutputItemToolCall(t *testing.T) {
	item := OutputItem{Type: "message"}
	if _, err := item.ToolCall(); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("ToolCall() on a message = %v, want invalid argument", err)
	}

	item = OutputItem{Type: "function_call", CallID: "c1", Name: "f", Arguments: "not json"}
	if _, err := item.ToolCall(); !errors.Is(err, ErrResponseShape) {
		t.Errorf("ToolCall() with bad arguments = %v, want response shape mismatch", err)
	}
}

func TestOutputItemOutputForms(t *testing.T) {
	assert := testutil.New(t)
	data := `{"object":"list","data":[
		{"type":"function_call_output","call_id":"c1","output":"4"},
		{"type":"function_call_output","call_id":"c2","output":[{"type":"input_text","text":"4"},{"type":"input_text","text":"5"}]}
	]}`

	var list List[OutputItem]
	assert.NoError(json.Unmarshal([]byte(data), &list))
	assert.Len(list.Data, 2)
	assert.Equal("4", list.Data[0].OutputString())
	assert.Equal("4\n5", list.Data[1].OutputString())
	assert.Equal("", OutputItem{Type: "message"}.OutputString())
}

func TestItemReferenceItem(t *testing.T) {
	assert := testutil.New(t)
	data, err := json.Marshal(ItemReferenceItem("msg_123"))
	assert.NoError(err)
	assert.Equal("item_reference", gjson.GetBytes(data, "type").String())
	assert.Equal("msg_123", gjson.GetBytes(data, "id").String())

	_, err = json.Marshal(InputItem{Type: ItemTypeReference})
	assert.ErrorIs(err, ErrMissingConfiguration)
}
