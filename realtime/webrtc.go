package realtime

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/pion/webrtc/v4"

	oaikit "github.com/blue-context/oaikit"
	"github.com/blue-context/oaikit/provider"
	"github.com/blue-context/oaikit/types"
)

// dataChannelLabel is the data channel the service exchanges events on.
const dataChannelLabel = "oai-events"

// WebRTCConfig configures DialWebRTC.
type WebRTCConfig struct {
	// URL is the SDP exchange endpoint. Empty derives it from the provider's
	// realtime URL.
	URL string

	// HTTPClient posts the SDP offer. Nil uses http.DefaultClient.
	HTTPClient oaikit.HTTPClient

	// ICEServers are passed to the peer connection.
	ICEServers []webrtc.ICEServer

	// AudioTrack is the microphone track sent to the model. Nil opens a
	// receive-only audio transceiver.
	AudioTrack webrtc.TrackLocal

	// OnAudioTrack is called with the model's audio track once it arrives.
	OnAudioTrack func(track *webrtc.TrackRemote)
}

// WebRTCTransport carries events over the "oai-events" data channel of a
// peer connection whose audio tracks carry the conversation audio.
type WebRTCTransport struct {
	pc *webrtc.PeerConnection
	dc *webrtc.DataChannel

	frames    chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// DialWebRTC negotiates a peer connection with the realtime service: it
// posts an SDP offer with the provider's credentials, applies the answer
// and waits for the event data channel to open.
func DialWebRTC(ctx context.Context, p provider.Provider, model types.RealtimeModel, cfg WebRTCConfig) (*WebRTCTransport, error) {
	if p == nil {
		return nil, missingField("provider")
	}
	if model == "" {
		model = types.DefaultRealtimeModel
	}
	url := cfg.URL
	if url == "" {
		url = httpScheme(p.RealtimeURL(string(model)))
	}
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{ICEServers: cfg.ICEServers})
	if err != nil {
		return nil, transportError(err)
	}
	t := &WebRTCTransport{
		pc:     pc,
		frames: make(chan []byte, 64),
		done:   make(chan struct{}),
	}
	if err := t.negotiate(ctx, p, client, url, cfg); err != nil {
		_ = pc.Close()
		return nil, err
	}
	return t, nil
}

func (t *WebRTCTransport) negotiate(ctx context.Context, p provider.Provider, client oaikit.HTTPClient, url string, cfg WebRTCConfig) error {
	if cfg.AudioTrack != nil {
		if _, err := t.pc.AddTrack(cfg.AudioTrack); err != nil {
			return transportError(err)
		}
	} else {
		_, err := t.pc.AddTransceiverFromKind(webrtc.RTPCodecTypeAudio, webrtc.RTPTransceiverInit{
			Direction: webrtc.RTPTransceiverDirectionRecvonly,
		})
		if err != nil {
			return transportError(err)
		}
	}
	if cfg.OnAudioTrack != nil {
		t.pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
			if track.Kind() == webrtc.RTPCodecTypeAudio {
				cfg.OnAudioTrack(track)
			}
		})
	}

	dc, err := t.pc.CreateDataChannel(dataChannelLabel, nil)
	if err != nil {
		return transportError(err)
	}
	t.dc = dc
	opened := make(chan struct{})
	var openOnce sync.Once
	dc.OnOpen(func() { openOnce.Do(func() { close(opened) }) })
	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		select {
		case t.frames <- msg.Data:
		case <-t.done:
		}
	})
	dc.OnClose(func() { t.shutdown() })

	offer, err := t.pc.CreateOffer(nil)
	if err != nil {
		return transportError(err)
	}
	gathered := webrtc.GatheringCompletePromise(t.pc)
	if err := t.pc.SetLocalDescription(offer); err != nil {
		return transportError(err)
	}
	select {
	case <-gathered:
	case <-ctx.Done():
		return transportError(ctx.Err())
	}

	answer, err := exchangeSDP(ctx, p, client, url, t.pc.LocalDescription().SDP)
	if err != nil {
		return err
	}
	if err := t.pc.SetRemoteDescription(webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: answer}); err != nil {
		return responseShapeError(err)
	}

	select {
	case <-opened:
		return nil
	case <-t.done:
		return transportError(io.ErrUnexpectedEOF)
	case <-ctx.Done():
		return transportError(ctx.Err())
	}
}

func exchangeSDP(ctx context.Context, p provider.Provider, client oaikit.HTTPClient, url, offer string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(offer))
	if err != nil {
		return "", invalidArgument("build SDP request: %v", err)
	}
	p.Authorize(req.Header)
	req.Header.Set("Content-Type", "application/sdp")

	resp, err := client.Do(req)
	if err != nil {
		return "", transportError(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", oaikit.ParseRemoteError(resp.StatusCode, resp.Header, body)
	}
	if len(body) == 0 {
		return "", responseShapeError(io.ErrUnexpectedEOF)
	}
	return string(body), nil
}

// PeerToPeer reports true: audio travels as media next to the events.
func (t *WebRTCTransport) PeerToPeer() bool { return true }

// PeerConnection exposes the underlying connection, e.g. to add tracks.
func (t *WebRTCTransport) PeerConnection() *webrtc.PeerConnection { return t.pc }

// Send writes one event to the data channel.
func (t *WebRTCTransport) Send(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return transportError(err)
	}
	select {
	case <-t.done:
		return transportError(io.ErrClosedPipe)
	default:
	}
	if err := t.dc.SendText(string(data)); err != nil {
		return transportError(err)
	}
	return nil
}

// Recv returns the next event, io.EOF once the channel closed, or the
// context error.
func (t *WebRTCTransport) Recv(ctx context.Context) ([]byte, error) {
	select {
	case data := <-t.frames:
		return data, nil
	default:
	}
	select {
	case data := <-t.frames:
		return data, nil
	case <-t.done:
		return nil, io.EOF
	case <-ctx.Done():
		return nil, transportError(ctx.Err())
	}
}

func (t *WebRTCTransport) shutdown() {
	t.closeOnce.Do(func() { close(t.done) })
}

// Close closes the data channel and the peer connection.
func (t *WebRTCTransport) Close() error {
	t.shutdown()
	if t.dc != nil {
		_ = t.dc.Close()
	}
	return t.pc.Close()
}

// httpScheme rewrites a ws(s) URL to http(s).
func httpScheme(u string) string {
	switch {
	case strings.HasPrefix(u, "wss://"):
		return "https://" + strings.TrimPrefix(u, "wss://")
	case strings.HasPrefix(u, "ws://"):
		return "http://" + strings.TrimPrefix(u, "ws://")
	}
	return u
}
