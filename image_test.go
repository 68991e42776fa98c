package oaikit

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/blue-context/oaikit/internal/testutil"
	"github.com/blue-context/oaikit/types"
)

func TestGenerateImage(t *testing.T) {
	assert := testutil.New(t)
	mock := respond(200, testutil.ImageJSON)
	client := newTestClient(t, mock)

	resp, err := client.GenerateImage(context.Background(), &ImageGenerationRequest{
		Prompt:  "A cute baby sea otter",
		Model:   types.DallE3,
		Size:    types.ImageSize1792x1024,
		Quality: types.ImageQualityHD,
		Style:   types.ImageStyleNatural,
		N:       ptr(1),
	})
	assert.NoError(err)
	assert.Len(resp.Data, 1)
	assert.True(resp.Data[0].HasURL())
	assert.False(resp.Data[0].HasB64())
	assert.Equal("A cute baby sea otter", resp.Data[0].RevisedPrompt)

	assert.Equal("/v1/images/generations", mock.LastRequest().URL.Path)
	body := mock.LastBody()
	assert.Equal("dall-e-3", gjson.Get(body, "model").String())
	assert.Equal("1792x1024", gjson.Get(body, "size").String())
	assert.Equal("hd", gjson.Get(body, "quality").String())
	assert.Equal("natural", gjson.Get(body, "style").String())
	assert.False(gjson.Get(body, "response_format").Exists())
}

func TestGenerateImageValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     *ImageGenerationRequest
		wantErr error
	}{
		{"missing prompt", &ImageGenerationRequest{}, ErrMissingConfiguration},
		{"unknown model", &ImageGenerationRequest{Prompt: "x", Model: "midjourney"}, ErrInvalidArgument},
		{"n out of range", &ImageGenerationRequest{Prompt: "x", N: ptr(11)}, ErrInvalidArgument},
		{"dall-e-3 with n=2", &ImageGenerationRequest{Prompt: "x", Model: types.DallE3, N: ptr(2)}, ErrInvalidArgument},
		{"unknown size", &ImageGenerationRequest{Prompt: "x", Size: "10x10"}, ErrInvalidArgument},
		{"unknown quality", &ImageGenerationRequest{Prompt: "x", Quality: "ultra"}, ErrInvalidArgument},
		{"unknown style", &ImageGenerationRequest{Prompt: "x", Style: "noir"}, ErrInvalidArgument},
		{"unknown format", &ImageGenerationRequest{Prompt: "x", ResponseFormat: "png"}, ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := respond(200, testutil.ImageJSON)
			client := newTestClient(t, mock)
			_, err := client.GenerateImage(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if len(mock.RequestsMade) != 0 {
				t.Errorf("requests made = %d, want 0", len(mock.RequestsMade))
			}
		})
	}
}

func TestEditImage(t *testing.T) {
	tests := []struct {
		name      string
		images    []ImageFile
		wantField string
	}{
		{
			name:      "single image",
			images:    []ImageFile{{Filename: "room.png", Reader: strings.NewReader("png")}},
			wantField: "image",
		},
		{
			name: "several images",
			images: []ImageFile{
				{Filename: "a.png", Reader: strings.NewReader("a")},
				{Filename: "b.png", Reader: strings.NewReader("b")},
			},
			wantField: "image[]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := testutil.New(t)
			mock := respond(200, testutil.ImageJSON)
			client := newTestClient(t, mock)

			_, err := client.EditImage(context.Background(), &ImageEditRequest{
				Images: tt.images,
				Prompt: "Add a lamp",
				Mask:   &ImageFile{Filename: "mask.png", Reader: strings.NewReader("mask")},
				Model:  types.GPTImage1,
				N:      ptr(2),
			})
			assert.NoError(err)

			req := mock.LastRequest()
			assert.Equal("/v1/images/edits", req.URL.Path)
			assert.NoError(req.ParseMultipartForm(1 << 20))
			assert.Len(req.MultipartForm.File[tt.wantField], len(tt.images))
			assert.Len(req.MultipartForm.File["mask"], 1)
			assert.Equal("Add a lamp", req.FormValue("prompt"))
			assert.Equal("gpt-image-1", req.FormValue("model"))
			assert.Equal("2", req.FormValue("n"))
		})
	}
}

func TestEditImageValidation(t *testing.T) {
	img := ImageFile{Filename: "a.png", Reader: strings.NewReader("a")}
	tests := []struct {
		name string
		req  *ImageEditRequest
	}{
		{"no images", &ImageEditRequest{Prompt: "x"}},
		{"image without reader", &ImageEditRequest{Images: []ImageFile{{Filename: "a.png"}}, Prompt: "x"}},
		{"no prompt", &ImageEditRequest{Images: []ImageFile{img}}},
		{"mask without filename", &ImageEditRequest{Images: []ImageFile{img}, Prompt: "x", Mask: &ImageFile{Reader: strings.NewReader("m")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, respond(200, testutil.ImageJSON))
			_, err := client.EditImage(context.Background(), tt.req)
			if !errors.Is(err, ErrMissingConfiguration) {
				t.Fatalf("error = %v, want missing configuration", err)
			}
		})
	}
}

func TestCreateImageVariation(t *testing.T) {
	assert := testutil.New(t)
	mock := respond(200, testutil.ImageJSON)
	client := newTestClient(t, mock)

	_, err := client.CreateImageVariation(context.Background(), &ImageVariationRequest{
		Image:          ImageFile{Filename: "otter.png", Reader: strings.NewReader("png")},
		Model:          types.DallE2,
		Size:           types.ImageSize512x512,
		ResponseFormat: types.ImageResponseB64JSON,
	})
	assert.NoError(err)

	req := mock.LastRequest()
	assert.Equal("/v1/images/variations", req.URL.Path)
	assert.NoError(req.ParseMultipartForm(1 << 20))
	assert.Equal("otter.png", req.MultipartForm.File["image"][0].Filename)
	assert.Equal("512x512", req.FormValue("size"))
	assert.Equal("b64_json", req.FormValue("response_format"))
	_, hasN := req.MultipartForm.Value["n"]
	assert.False(hasN)
}

func TestImageResponseShape(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "no data", body: `{"created":1,"data":[]}`},
		{name: "entry without image", body: `{"created":1,"data":[{"revised_prompt":"x"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, respond(200, tt.body))
			_, err := client.GenerateImage(context.Background(), &ImageGenerationRequest{Prompt: "x"})
			if !errors.Is(err, ErrResponseShape) {
				t.Fatalf("error = %v, want response shape mismatch", err)
			}
		})
	}
}

func TestImageDataBytes(t *testing.T) {
	d := ImageData{B64JSON: base64.StdEncoding.EncodeToString([]byte("png-bytes"))}
	got, err := d.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	if string(got) != "png-bytes" {
		t.Errorf("Bytes() = %q", got)
	}

	if _, err := (ImageData{URL: "https://example.com/a.png"}).Bytes(); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Bytes() without b64 = %v, want invalid argument", err)
	}
	if _, err := (ImageData{B64JSON: "%%%"}).Bytes(); !errors.Is(err, ErrResponseShape) {
		t.Errorf("Bytes() with bad b64 = %v, want response shape mismatch", err)
	}
}

func TestSaveImage(t *testing.T) {
	dir := t.TempDir()

	t.Run("base64", func(t *testing.T) {
		client := newTestClient(t, respond(200, "{}"))
		path := filepath.Join(dir, "b64.png")
		img := ImageData{B64JSON: base64.StdEncoding.EncodeToString([]byte("inline"))}
		if err := client.SaveImage(context.Background(), img, path); err != nil {
			t.Fatalf("SaveImage() error = %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil || string(data) != "inline" {
			t.Errorf("file = %q, %v", data, err)
		}
	})

	t.Run("url", func(t *testing.T) {
		mock := &testutil.MockHTTPClient{
			DoFunc: func(req *http.Request) (*http.Response, error) {
				if req.URL.String() != "https://example.com/img.png" {
					t.Errorf("download URL = %s", req.URL)
				}
				return testutil.MockBytesResponse(200, "image/png", []byte("downloaded")), nil
			},
		}
		client := newTestClient(t, mock)
		path := filepath.Join(dir, "url.png")
		if err := client.SaveImage(context.Background(), ImageData{URL: "https://example.com/img.png"}, path); err != nil {
			t.Fatalf("SaveImage() error = %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil || string(data) != "downloaded" {
			t.Errorf("file = %q, %v", data, err)
		}
	})

	t.Run("download failure", func(t *testing.T) {
		client := newTestClient(t, respond(404, "gone"))
		err := client.SaveImage(context.Background(), ImageData{URL: "https://example.com/img.png"}, filepath.Join(dir, "x.png"))
		if !errors.Is(err, ErrRemote) {
			t.Errorf("error = %v, want remote error", err)
		}
	})

	t.Run("no data", func(t *testing.T) {
		client := newTestClient(t, respond(200, "{}"))
		err := client.SaveImage(context.Background(), ImageData{}, filepath.Join(dir, "none.png"))
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("error = %v, want invalid argument", err)
		}
	})
}
