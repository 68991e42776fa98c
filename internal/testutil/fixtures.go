package testutil

// Canned API payloads shaped like the vendor's documented responses.
// Endpoint tests feed them through MockResponse.

// ChatCompletionJSON is a plain assistant reply.
const ChatCompletionJSON = `{
  "id": "chatcmpl-abc123",
  "object": "chat.completion",
  "created": 1741569952,
  "model": "gpt-4o-mini-2024-07-18",
  "system_fingerprint": "fp_06737a9306",
  "choices": [
    {
      "index": 0,
      "message": {
        "role": "assistant",
        "content": "Hello! How can I assist you today?",
        "refusal": null,
        "annotations": []
      },
      "logprobs": null,
      "finish_reason": "stop"
    }
  ],
  "usage": {
    "prompt_tokens": 19,
    "completion_tokens": 10,
    "total_tokens": 29,
    "prompt_tokens_details": {"cached_tokens": 0, "audio_tokens": 0},
    "completion_tokens_details": {"reasoning_tokens": 0, "audio_tokens": 0, "accepted_prediction_tokens": 0, "rejected_prediction_tokens": 0}
  },
  "service_tier": "default"
}`

// ChatToolCallJSON is an assistant turn that requests a function call.
const ChatToolCallJSON = `{
  "id": "chatcmpl-tool1",
  "object": "chat.completion",
  "created": 1741569960,
  "model": "gpt-4o-mini-2024-07-18",
  "choices": [
    {
      "index": 0,
      "message": {
        "role": "assistant",
        "content": null,
        "tool_calls": [
          {
            "id": "call_abc",
            "type": "function",
            "function": {"name": "calculator", "arguments": "{\"a\":2,\"b\":2}"}
          }
        ]
      },
      "finish_reason": "tool_calls"
    }
  ],
  "usage": {"prompt_tokens": 60, "completion_tokens": 18, "total_tokens": 78}
}`

// ResponseTextJSON is a responses-endpoint result with one output message.
const ResponseTextJSON = `{
  "id": "resp_67ccd2bed1ec8190",
  "object": "response",
  "created_at": 1741476542,
  "status": "completed",
  "model": "gpt-4o-mini-2024-07-18",
  "output": [
    {
      "type": "message",
      "id": "msg_67ccd2bf17f0",
      "status": "completed",
      "role": "assistant",
      "content": [
        {"type": "output_text", "text": "{\"capital\":\"Paris\"}", "annotations": []}
      ]
    }
  ],
  "parallel_tool_calls": true,
  "store": true,
  "temperature": 1.0,
  "text": {"format": {"type": "json_schema", "name": "capital", "strict": true, "schema": {"type": "object"}}},
  "usage": {
    "input_tokens": 36,
    "input_tokens_details": {"cached_tokens": 0},
    "output_tokens": 8,
    "output_tokens_details": {"reasoning_tokens": 0},
    "total_tokens": 44
  }
}`

// ResponseFunctionCallJSON is a responses-endpoint result that requests a tool.
const ResponseFunctionCallJSON = `{
  "id": "resp_fc1",
  "object": "response",
  "created_at": 1741476600,
  "status": "completed",
  "model": "gpt-4o-mini-2024-07-18",
  "output": [
    {
      "type": "function_call",
      "id": "fc_12345",
      "call_id": "call_12345",
      "name": "calculator",
      "arguments": "{\"a\":2,\"b\":2}",
      "status": "completed"
    }
  ],
  "usage": {"input_tokens": 50, "output_tokens": 20, "total_tokens": 70}
}`

// EmbeddingJSON carries one float vector.
const EmbeddingJSON = `{
  "object": "list",
  "data": [
    {"object": "embedding", "index": 0, "embedding": [0.0023064255, -0.009327292, 0.015797347, -0.0077780345]}
  ],
  "model": "text-embedding-3-small",
  "usage": {"prompt_tokens": 4, "total_tokens": 4}
}`

// EmbeddingBase64JSON carries the little-endian float32 vector [1, -2.5].
const EmbeddingBase64JSON = `{
  "object": "list",
  "data": [
    {"object": "embedding", "index": 0, "embedding": "AACAPwAAIMA="}
  ],
  "model": "text-embedding-3-small",
  "usage": {"prompt_tokens": 2, "total_tokens": 2}
}`

// ModerationJSON flags one input for violence.
const ModerationJSON = `{
  "id": "modr-970d409ef3bef3b70c73d8232df86e7d",
  "model": "omni-moderation-latest",
  "results": [
    {
      "flagged": true,
      "categories": {
        "sexual": false, "sexual/minors": false, "harassment": false,
        "harassment/threatening": false, "hate": false, "hate/threatening": false,
        "illicit": false, "illicit/violent": false, "self-harm": false,
        "self-harm/intent": false, "self-harm/instructions": false,
        "violence": true, "violence/graphic": false
      },
      "category_scores": {
        "sexual": 2.34e-7, "sexual/minors": 1.63e-7, "harassment": 0.0017,
        "harassment/threatening": 0.0009, "hate": 3.23e-6, "hate/threatening": 4.42e-8,
        "illicit": 0.00012, "illicit/violent": 0.00003, "self-harm": 0.0015,
        "self-harm/intent": 0.0002, "self-harm/instructions": 0.0001,
        "violence": 0.9971, "violence/graphic": 0.0011
      },
      "category_applied_input_types": {"violence": ["text"]}
    }
  ]
}`

// BatchJSON is a completed batch.
const BatchJSON = `{
  "id": "batch_abc123",
  "object": "batch",
  "endpoint": "/v1/chat/completions",
  "errors": null,
  "input_file_id": "file-abc123",
  "completion_window": "24h",
  "status": "completed",
  "output_file_id": "file-cvaTdG",
  "error_file_id": "file-HOWS94",
  "created_at": 1711471533,
  "in_progress_at": 1711471538,
  "expires_at": 1711557933,
  "finalizing_at": 1711493133,
  "completed_at": 1711493163,
  "request_counts": {"total": 100, "completed": 95, "failed": 5},
  "metadata": {"customer_id": "user_123456789"}
}`

// FineTuningJobJSON is a succeeded supervised job.
const FineTuningJobJSON = `{
  "object": "fine_tuning.job",
  "id": "ftjob-abc123",
  "model": "gpt-4o-mini-2024-07-18",
  "created_at": 1721764800,
  "finished_at": 1721767800,
  "fine_tuned_model": "ft:gpt-4o-mini:my-org:custom_suffix:id",
  "organization_id": "org-123",
  "result_files": ["file-abc123"],
  "status": "succeeded",
  "validation_file": null,
  "training_file": "file-abc123",
  "hyperparameters": {"n_epochs": 4, "batch_size": 1, "learning_rate_multiplier": 1.8},
  "trained_tokens": 5768,
  "seed": 42,
  "method": {
    "type": "supervised",
    "supervised": {"hyperparameters": {"n_epochs": 4, "batch_size": 1, "learning_rate_multiplier": 1.8}}
  },
  "user_provided_suffix": "custom_suffix"
}`

// FileJSON describes an uploaded batch input file.
const FileJSON = `{
  "id": "file-abc123",
  "object": "file",
  "bytes": 120000,
  "created_at": 1677610602,
  "filename": "mydata.jsonl",
  "purpose": "batch",
  "status": "processed"
}`

// ModelListJSON lists two models.
const ModelListJSON = `{
  "object": "list",
  "data": [
    {"id": "gpt-4o-mini", "object": "model", "created": 1721172741, "owned_by": "system"},
    {"id": "ft:gpt-4o-mini:acme::abc", "object": "model", "created": 1721172800, "owned_by": "user-abc"}
  ]
}`

// ConversationJSON is a freshly created conversation.
const ConversationJSON = `{
  "id": "conv_123",
  "object": "conversation",
  "created_at": 1741900000,
  "metadata": {"topic": "demo"}
}`

// TranscriptionJSON is a json-format transcription.
const TranscriptionJSON = `{
  "text": "Imagine the wildest idea that you've ever had.",
  "usage": {"type": "tokens", "input_tokens": 14, "output_tokens": 45, "total_tokens": 59}
}`

// ImageJSON carries one URL image.
const ImageJSON = `{
  "created": 1713833628,
  "data": [
    {"url": "https://example.com/img.png", "revised_prompt": "A cute baby sea otter"}
  ]
}`
