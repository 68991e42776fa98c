package oaikit

import (
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/blue-context/oaikit/internal/testutil"
	"github.com/blue-context/oaikit/types"
)

func TestMessageContentJSON(t *testing.T) {
	tests := []struct {
		name    string
		msg     Message
		want    string
		wantErr error
	}{
		{
			name: "text",
			msg:  NewTextMessage(types.RoleUser, "hi"),
			want: `{"role":"user","content":"hi"}`,
		},
		{
			name: "parts keep order",
			msg:  NewPartsMessage(types.RoleUser, InputText("a"), InputImageURL("https://x/y.png", ImageDetailHigh), InputText("b")),
			want: `{"role":"user","content":[{"type":"input_text","text":"a"},{"type":"input_image","image_url":"https://x/y.png","detail":"high"},{"type":"input_text","text":"b"}]}`,
		},
		{
			name: "assistant tool call without content",
			msg:  Message{Role: types.RoleAssistant, ToolCalls: []ToolCall{NewToolCall("call_1", "f", map[string]any{"x": "y"})}},
			want: `{"role":"assistant","tool_calls":[{"id":"call_1","type":"function","function":{"name":"f","arguments":"{\"x\":\"y\"}"}}]}`,
		},
		{
			name:    "no content",
			msg:     Message{Role: types.RoleUser},
			wantErr: ErrInvalidArgument,
		},
		{
			name:    "unknown role",
			msg:     Message{Role: "narrator", Content: TextContent("x")},
			wantErr: ErrInvalidArgument,
		},
		{
			name:    "tool message without call id",
			msg:     Message{Role: types.RoleTool, Content: TextContent("42")},
			wantErr: ErrMissingConfiguration,
		},
		{
			name:    "image part without source",
			msg:     NewPartsMessage(types.RoleUser, ContentPart{Type: PartInputImage}),
			wantErr: ErrMissingConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := testutil.New(t)
			data, err := json.Marshal(tt.msg)
			if tt.wantErr != nil {
				assert.ErrorIs(err, tt.wantErr)
				return
			}
			assert.NoError(err)
			assert.JSONEq(tt.want, string(data))
		})
	}
}

func TestMessageUnmarshal(t *testing.T) {
	assert := testutil.New(t)

	var m Message
	assert.NoError(json.Unmarshal([]byte(`{"role":"assistant","content":[{"type":"output_text","text":"Hello"},{"type":"output_text","text":" world"}]}`), &m))
	assert.True(m.Content.IsParts())
	assert.Equal("Hello world", m.Text())

	assert.NoError(json.Unmarshal([]byte(`{"role":"assistant","content":null,"refusal":"I can't help with that."}`), &m))
	assert.True(m.Content.IsZero())
	assert.Equal("I can't help with that.", m.Refusal)

	err := json.Unmarshal([]byte(`{"role":"user","content":null}`), &m)
	assert.ErrorIs(err, ErrResponseShape)

	err = json.Unmarshal([]byte(`{"role":"user","content":42}`), &m)
	assert.ErrorIs(err, ErrResponseShape)
}

func TestFunctionCallArguments(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    map[string]any
		wantErr bool
	}{
		{name: "string", data: `{"name":"f","arguments":"{\"a\":1}"}`, want: map[string]any{"a": float64(1)}},
		{name: "object", data: `{"name":"f","arguments":{"a":1}}`, want: map[string]any{"a": float64(1)}},
		{name: "empty string", data: `{"name":"f","arguments":""}`, want: map[string]any{}},
		{name: "missing", data: `{"name":"f"}`, want: map[string]any{}},
		{name: "array", data: `{"name":"f","arguments":"[1,2]"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FunctionCall
			err := json.Unmarshal([]byte(tt.data), &f)
			if tt.wantErr {
				if !errors.Is(err, ErrResponseShape) {
					t.Fatalf("error = %v, want response shape mismatch", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if len(f.Arguments) != len(tt.want) {
				t.Fatalf("Arguments = %v, want %v", f.Arguments, tt.want)
			}
			for k, v := range tt.want {
				if f.Arguments[k] != v {
					t.Errorf("Arguments[%q] = %v, want %v", k, f.Arguments[k], v)
				}
			}
		})
	}

	// arguments always go out as a string
	data, err := json.Marshal(FunctionCall{Name: "f"})
	if err != nil {
		t.Fatal(err)
	}
	if got := gjson.GetBytes(data, "arguments"); got.Type != gjson.String || got.String() != "{}" {
		t.Errorf("arguments = %s, want \"{}\"", got.Raw)
	}
}

func TestInputImageFile(t *testing.T) {
	dir := t.TempDir()

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	pngPath := filepath.Join(dir, "dot.PNG")
	f, err := os.Create(pngPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	part, err := InputImageFile(pngPath)
	if err != nil {
		t.Fatalf("InputImageFile() error = %v", err)
	}
	if part.Type != PartInputImage {
		t.Errorf("Type = %q", part.Type)
	}
	if !strings.HasPrefix(part.ImageURL, "data:image/png;base64,") {
		t.Errorf("ImageURL = %.40s...", part.ImageURL)
	}

	bmp := filepath.Join(dir, "dot.bmp")
	if err := os.WriteFile(bmp, []byte("BM"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := InputImageFile(bmp); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("unsupported extension error = %v", err)
	}

	fake := filepath.Join(dir, "fake.jpg")
	if err := os.WriteFile(fake, []byte("not a jpeg"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := InputImageFile(fake); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("corrupt image error = %v", err)
	}

	if _, err := InputImageFile(filepath.Join(dir, "missing.gif")); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("missing file error = %v", err)
	}
}

func TestInputAudio(t *testing.T) {
	part := InputAudio([]byte{0x52, 0x49, 0x46, 0x46}, "wav")
	if part.Audio != "UklGRg==" || part.Format != "wav" {
		t.Errorf("InputAudio() = %+v", part)
	}
	if err := part.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}
