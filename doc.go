// Package oaikit is a typed Go client for the OpenAI HTTP API and its Azure
// OpenAI deployment.
//
// A Client covers chat completions, the responses endpoint, embeddings,
// audio (speech, transcription, translation), images, files, batches,
// fine-tuning jobs, moderations, conversations and models. Every request
// type is validated locally before anything is sent, so malformed requests
// fail with ErrMissingConfiguration or ErrInvalidArgument and never reach
// the network.
//
// Basic usage:
//
//	client, err := oaikit.NewClient(oaikit.WithAPIKey(os.Getenv("OPENAI_API_KEY")))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	resp, err := client.CreateChatCompletion(ctx, &oaikit.ChatCompletionRequest{
//	    Model: types.GPT4oMini,
//	    Messages: []oaikit.Message{
//	        oaikit.NewTextMessage(types.RoleUser, "Hello!"),
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(resp.Content())
//
// Errors carry one of five kinds. Test them with errors.Is against
// ErrMissingConfiguration, ErrInvalidArgument, ErrTransport,
// ErrResponseShape and ErrRemote, or recover the details with AsAPIError.
//
// Related packages:
//
//   - schema builds structured-output and tool parameter schemas
//   - realtime drives realtime sessions over WebSocket or WebRTC
//   - token counts o200k tokens for budgeting requests
//   - callback and metrics observe requests and realtime traffic
//   - mcptool exposes the tools of an MCP server as function tools
package oaikit
