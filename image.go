package oaikit

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/blue-context/oaikit/internal/multipart"
	"github.com/blue-context/oaikit/types"
)

const (
	imageGenerationEndpoint = "images/generations"
	imageEditEndpoint       = "images/edits"
	imageVariationEndpoint  = "images/variations"
)

// ImageFile is an image uploaded with an edit or variation request.
type ImageFile struct {
	// Filename is the name of the file including its extension.
	Filename string

	// Reader is fully consumed during the request.
	Reader io.Reader
}

func (f ImageFile) validate(endpoint, field string) error {
	if f.Reader == nil {
		return missingField(endpoint, field)
	}
	if f.Filename == "" {
		return missingField(endpoint, field+" filename")
	}
	return nil
}

// ImageGenerationRequest creates images from a prompt.
//
// Thread Safety: ImageGenerationRequest is safe for concurrent reads after creation.
type ImageGenerationRequest struct {
	// Prompt is the text description of the desired image. Required.
	Prompt string `json:"prompt"`

	// Model is the image model. The service default is used when empty.
	Model types.ImageModel `json:"model,omitempty"`

	// N specifies how many images to generate (1-10, dall-e-3 only 1).
	N *int `json:"n,omitempty"`

	// Quality is standard (default) or hd (dall-e-3).
	Quality types.ImageQuality `json:"quality,omitempty"`

	// ResponseFormat is url (default) or b64_json.
	ResponseFormat types.ImageResponseFormat `json:"response_format,omitempty"`

	// Size is the output dimensions. Default: 1024x1024.
	Size types.ImageSize `json:"size,omitempty"`

	// Style is vivid (default) or natural (dall-e-3).
	Style types.ImageStyle `json:"style,omitempty"`

	// User is a stable end-user identifier.
	User string `json:"user,omitempty"`
}

// Validate checks required fields and enumerations.
func (r *ImageGenerationRequest) Validate() error {
	if r.Prompt == "" {
		return missingField(imageGenerationEndpoint, "prompt")
	}
	if err := validateImageCommon(imageGenerationEndpoint, r.Model, r.N, r.Size, r.ResponseFormat); err != nil {
		return err
	}
	if r.Quality != "" && !r.Quality.Valid() {
		return invalidArgument(imageGenerationEndpoint, "unknown quality %q", r.Quality)
	}
	if r.Style != "" && !r.Style.Valid() {
		return invalidArgument(imageGenerationEndpoint, "unknown style %q", r.Style)
	}
	if r.Model == types.DallE3 && r.N != nil && *r.N != 1 {
		return invalidArgument(imageGenerationEndpoint, "dall-e-3 generates exactly one image, got n=%d", *r.N)
	}
	return nil
}

func validateImageCommon(endpoint string, model types.ImageModel, n *int, size types.ImageSize, format types.ImageResponseFormat) error {
	if model != "" && !model.Valid() {
		return invalidArgument(endpoint, "unknown image model %q", model)
	}
	if n != nil && (*n < 1 || *n > 10) {
		return invalidArgument(endpoint, "n must be between 1 and 10, got %d", *n)
	}
	if size != "" && !size.Valid() {
		return invalidArgument(endpoint, "unknown image size %q", size)
	}
	if format != "" && !format.Valid() {
		return invalidArgument(endpoint, "unknown response_format %q", format)
	}
	return nil
}

// ImageEditRequest edits one or more images according to a prompt.
//
// Thread Safety: The image readers are consumed by the request; do not
// share a request between goroutines.
type ImageEditRequest struct {
	// Images are the source images. At least one is required; more than
	// one needs gpt-image-1.
	Images []ImageFile

	// Prompt describes the desired edit. Required.
	Prompt string

	// Mask is an optional PNG whose transparent areas mark where to edit.
	Mask *ImageFile

	Model          types.ImageModel
	N              *int
	Size           types.ImageSize
	ResponseFormat types.ImageResponseFormat
	User           string
}

// Validate checks required fields and enumerations.
func (r *ImageEditRequest) Validate() error {
	if len(r.Images) == 0 {
		return missingField(imageEditEndpoint, "image")
	}
	for i, img := range r.Images {
		if err := img.validate(imageEditEndpoint, fmt.Sprintf("image[%d]", i)); err != nil {
			return err
		}
	}
	if r.Prompt == "" {
		return missingField(imageEditEndpoint, "prompt")
	}
	if r.Mask != nil {
		if err := r.Mask.validate(imageEditEndpoint, "mask"); err != nil {
			return err
		}
	}
	return validateImageCommon(imageEditEndpoint, r.Model, r.N, r.Size, r.ResponseFormat)
}

// ImageVariationRequest creates variations of one image (dall-e-2).
type ImageVariationRequest struct {
	// Image is the source image. Required.
	Image ImageFile

	Model          types.ImageModel
	N              *int
	Size           types.ImageSize
	ResponseFormat types.ImageResponseFormat
	User           string
}

// Validate checks required fields and enumerations.
func (r *ImageVariationRequest) Validate() error {
	if err := r.Image.validate(imageVariationEndpoint, "image"); err != nil {
		return err
	}
	return validateImageCommon(imageVariationEndpoint, r.Model, r.N, r.Size, r.ResponseFormat)
}

// ImageResponse is the result of every image endpoint.
type ImageResponse struct {
	// Created is the Unix timestamp of creation.
	Created int64 `json:"created"`

	// Data holds one entry per generated image.
	Data []ImageData `json:"data"`

	// Usage is reported by gpt-image-1.
	Usage *Usage `json:"usage,omitempty"`
}

// Validate checks the required response fields.
func (r *ImageResponse) Validate() error {
	if len(r.Data) == 0 {
		return missingField("images", "data")
	}
	for i, d := range r.Data {
		if !d.HasURL() && !d.HasB64() {
			return missingField("images", fmt.Sprintf("data[%d] url or b64_json", i))
		}
	}
	return nil
}

// ImageData represents a single generated image.
type ImageData struct {
	// URL is the image URL (response_format url).
	URL string `json:"url,omitempty"`

	// B64JSON is the base64-encoded image (response_format b64_json).
	B64JSON string `json:"b64_json,omitempty"`

	// RevisedPrompt shows how dall-e-3 rewrote the prompt.
	RevisedPrompt string `json:"revised_prompt,omitempty"`
}

// HasURL reports whether the image is returned by URL.
func (d ImageData) HasURL() bool { return d.URL != "" }

// HasB64 reports whether the image is returned inline.
func (d ImageData) HasB64() bool { return d.B64JSON != "" }

// Bytes decodes the inline image.
func (d ImageData) Bytes() ([]byte, error) {
	if !d.HasB64() {
		return nil, invalidArgument("images", "image has no b64_json data")
	}
	data, err := base64.StdEncoding.DecodeString(d.B64JSON)
	if err != nil {
		return nil, responseShapeError("images", fmt.Errorf("invalid b64_json: %w", err))
	}
	return data, nil
}

// GenerateImage creates images from a prompt.
//
// Example:
//
//	resp, err := client.GenerateImage(ctx, &oaikit.ImageGenerationRequest{
//	    Model:  types.DallE3,
//	    Prompt: "A cute baby sea otter",
//	})
//	fmt.Println(resp.Data[0].URL)
func (c *Client) GenerateImage(ctx context.Context, req *ImageGenerationRequest) (*ImageResponse, error) {
	if req == nil {
		return nil, missingField(imageGenerationEndpoint, "request")
	}
	if err := req.Validate(); err != nil {
		return nil, classify(imageGenerationEndpoint, err)
	}
	var resp ImageResponse
	if err := c.doJSON(ctx, http.MethodPost, imageGenerationEndpoint, nil, string(req.Model), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EditImage edits images according to a prompt.
func (c *Client) EditImage(ctx context.Context, req *ImageEditRequest) (*ImageResponse, error) {
	if req == nil {
		return nil, missingField(imageEditEndpoint, "request")
	}
	if err := req.Validate(); err != nil {
		return nil, classify(imageEditEndpoint, err)
	}

	form := multipart.New()
	imageField := "image"
	if len(req.Images) > 1 {
		imageField = "image[]"
	}
	for _, img := range req.Images {
		form.File(imageField, img.Filename, img.Reader)
	}
	if req.Mask != nil {
		form.File("mask", req.Mask.Filename, req.Mask.Reader)
	}
	form.Field("prompt", req.Prompt)
	addImageFields(form, req.Model, req.N, req.Size, req.ResponseFormat, req.User)

	var resp ImageResponse
	if err := c.doMultipart(ctx, imageEditEndpoint, string(req.Model), form, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateImageVariation creates variations of an image.
func (c *Client) CreateImageVariation(ctx context.Context, req *ImageVariationRequest) (*ImageResponse, error) {
	if req == nil {
		return nil, missingField(imageVariationEndpoint, "request")
	}
	if err := req.Validate(); err != nil {
		return nil, classify(imageVariationEndpoint, err)
	}

	form := multipart.New().File("image", req.Image.Filename, req.Image.Reader)
	addImageFields(form, req.Model, req.N, req.Size, req.ResponseFormat, req.User)

	var resp ImageResponse
	if err := c.doMultipart(ctx, imageVariationEndpoint, string(req.Model), form, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func addImageFields(form *multipart.Form, model types.ImageModel, n *int, size types.ImageSize, format types.ImageResponseFormat, user string) {
	form.Field("model", string(model)).
		Field("size", string(size)).
		Field("response_format", string(format)).
		Field("user", user)
	if n != nil {
		form.Field("n", strconv.Itoa(*n))
	}
}

// SaveImage writes an image to path, decoding inline data or downloading
// the URL with the client's HTTP client.
//
// Example:
//
//	err := client.SaveImage(ctx, resp.Data[0], "otter.png")
func (c *Client) SaveImage(ctx context.Context, img ImageData, path string) error {
	var data []byte
	switch {
	case img.HasB64():
		var err error
		if data, err = img.Bytes(); err != nil {
			return err
		}
	case img.HasURL():
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, img.URL, nil)
		if err != nil {
			return invalidArgument("images", "invalid image url: %v", err)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return transportError("images", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return newError(KindRemote, "images", nil, "image download failed: HTTP %d", resp.StatusCode)
		}
		if data, err = io.ReadAll(resp.Body); err != nil {
			return transportError("images", err)
		}
	default:
		return invalidArgument("images", "no image data available (neither url nor b64_json)")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
