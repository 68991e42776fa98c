package multipart

import (
	"bytes"
	"io"
	"mime/multipart"
	"strings"
	"testing"
)

type readPart struct {
	name        string
	filename    string
	contentType string
	content     string
}

func decode(t *testing.T, body []byte, contentType string) []readPart {
	t.Helper()
	if !strings.HasPrefix(contentType, "multipart/form-data; boundary=") {
		t.Fatalf("invalid content type: %s", contentType)
	}
	boundary := strings.TrimPrefix(contentType, "multipart/form-data; boundary=")
	reader := multipart.NewReader(bytes.NewReader(body), boundary)

	var parts []readPart
	for {
		p, err := reader.NextPart()
		if err == io.EOF {
			return parts
		}
		if err != nil {
			t.Fatalf("failed to read multipart part: %v", err)
		}
		content, err := io.ReadAll(p)
		if err != nil {
			t.Fatalf("failed to read part content: %v", err)
		}
		parts = append(parts, readPart{
			name:        p.FormName(),
			filename:    p.FileName(),
			contentType: p.Header.Get("Content-Type"),
			content:     string(content),
		})
	}
}

func TestFormOrderAndRepeatedFields(t *testing.T) {
	body, contentType, err := New().
		File("file", "speech.wav", strings.NewReader("RIFF....")).
		Field("model", "whisper-1").
		Field("language", "").
		Fields("timestamp_granularities[]", []string{"word", "segment"}).
		Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	got := decode(t, body, contentType)
	want := []readPart{
		{name: "file", filename: "speech.wav", content: "RIFF...."},
		{name: "model", content: "whisper-1"},
		{name: "timestamp_granularities[]", content: "word"},
		{name: "timestamp_granularities[]", content: "segment"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d parts, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i].name != want[i].name || got[i].content != want[i].content || got[i].filename != want[i].filename {
			t.Errorf("part %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if got[0].contentType == "" {
		t.Error("file part has no content type")
	}
}

func TestFormMultipleFiles(t *testing.T) {
	body, contentType, err := New().
		FileWithType("image[]", "a.png", "image/png", strings.NewReader("png-a")).
		FileWithType("image[]", "b.png", "image/png", strings.NewReader("png-b")).
		File("mask", "mask.bin", strings.NewReader("m")).
		Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	got := decode(t, body, contentType)
	if len(got) != 3 {
		t.Fatalf("got %d parts", len(got))
	}
	if got[0].filename != "a.png" || got[1].filename != "b.png" || got[0].contentType != "image/png" {
		t.Errorf("unexpected image parts: %+v", got[:2])
	}
	if got[2].contentType != "application/octet-stream" {
		t.Errorf("mask content type = %q", got[2].contentType)
	}
}

func TestCreateFormFile(t *testing.T) {
	body, contentType, err := CreateFormFile("file", "test file (1).jsonl", strings.NewReader(`{"a":1}`), map[string]string{
		"purpose": "batch",
	})
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}

	got := decode(t, body, contentType)
	if len(got) != 2 {
		t.Fatalf("got %d parts", len(got))
	}
	if got[0].filename != "test file (1).jsonl" || got[0].content != `{"a":1}` {
		t.Errorf("file part = %+v", got[0])
	}
	if got[1].name != "purpose" || got[1].content != "batch" {
		t.Errorf("field part = %+v", got[1])
	}
}

func TestFormErrors(t *testing.T) {
	tests := []struct {
		name string
		form *Form
	}{
		{"nil file reader", New().File("file", "test.txt", nil)},
		{"empty field name", New().File("", "test.txt", strings.NewReader("data"))},
		{"empty filename", New().File("file", "", strings.NewReader("data"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := tt.form.Encode(); err == nil {
				t.Error("expected error")
			}
		})
	}
}
