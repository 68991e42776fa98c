// Package realtime drives realtime sessions: bidirectional, event-based
// conversations with a speech-capable model over a WebSocket, or over a
// WebRTC peer connection whose data channel carries the same events.
//
// A Session sends typed client events (SessionUpdate, InputAudioBufferAppend,
// ConversationItemCreate, ResponseCreate, ...) and receives ServerEvent
// values. While receiving it tracks the lifecycle of the current response,
// the input audio buffer and a local mirror of the conversation, so callers
// can inspect State at any time. Deltas of a response cancelled with
// CancelResponse are not delivered.
//
// Client events are validated before they are sent. Invalid events fail
// with oaikit.ErrInvalidArgument or oaikit.ErrMissingConfiguration; error
// events from the service are delivered as events and do not end the
// session.
//
//	sess, err := realtime.Connect(ctx, client.Provider(), types.GPT4oRealtimePreview,
//	    realtime.WithClient(client))
//	if err != nil {
//	    return err
//	}
//	defer sess.Close()
//
//	h := realtime.NewEventHandler().
//	    OnTextDelta(func(ctx context.Context, delta string) error {
//	        fmt.Print(delta)
//	        return nil
//	    })
//	if err := sess.SendText(ctx, "Tell me a joke"); err != nil {
//	    return err
//	}
//	if err := sess.CreateResponse(ctx, nil); err != nil {
//	    return err
//	}
//	return sess.Run(ctx, h)
package realtime
