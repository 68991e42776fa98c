package realtime

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blue-context/oaikit/internal/testutil"
	"github.com/blue-context/oaikit/provider/openai"
	"github.com/blue-context/oaikit/types"
)

func TestHTTPScheme(t *testing.T) {
	require.Equal(t, "https://api.openai.com/v1/realtime?model=m", httpScheme("wss://api.openai.com/v1/realtime?model=m"))
	require.Equal(t, "http://localhost/realtime", httpScheme("ws://localhost/realtime"))
	require.Equal(t, "https://x", httpScheme("https://x"))
}

func TestDialWebRTCRequiresProvider(t *testing.T) {
	_, err := DialWebRTC(context.Background(), nil, "", WebRTCConfig{})
	require.ErrorIs(t, err, types.ErrMissingConfiguration)
}

func TestDialWebRTCRejectedOffer(t *testing.T) {
	if testing.Short() {
		t.Skip("gathers ICE candidates")
	}
	mock := &testutil.MockHTTPClient{
		Responses: []*http.Response{
			testutil.MockBytesResponse(http.StatusUnauthorized, "application/json",
				[]byte(`{"error":{"type":"invalid_request_error","code":"invalid_api_key","message":"Incorrect API key provided"}}`)),
		},
	}
	p, err := openai.NewProvider(openai.WithAPIKey("sk-test"))
	require.NoError(t, err)

	_, err = DialWebRTC(testContext(t), p, types.GPT4oMiniRealtimePreview, WebRTCConfig{HTTPClient: mock})
	require.ErrorIs(t, err, types.ErrRemote)

	require.Len(t, mock.RequestsMade, 1)
	req := mock.RequestsMade[0]
	require.Equal(t, http.MethodPost, req.Method)
	require.Equal(t, "https://api.openai.com/v1/realtime?model=gpt-4o-mini-realtime-preview", req.URL.String())
	require.Equal(t, "application/sdp", req.Header.Get("Content-Type"))
	require.Equal(t, "Bearer sk-test", req.Header.Get("Authorization"))
	require.Contains(t, string(mock.Bodies[0]), "v=0")
}
