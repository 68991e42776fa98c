package oaikit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/blue-context/oaikit/internal/multipart"
	"github.com/blue-context/oaikit/types"
)

const filesEndpoint = "files"

// FileUpload describes a file to upload.
type FileUpload struct {
	// Filename is sent as the multipart file name. Required.
	Filename string

	// Reader is fully consumed during the request. Required.
	Reader io.Reader

	// Purpose declares how the file will be used. Required.
	Purpose types.FilePurpose

	// ExpiresAfterSeconds sets an expiration policy anchored at created_at.
	ExpiresAfterSeconds int
}

// Validate checks required fields.
func (u *FileUpload) Validate() error {
	if u.Reader == nil {
		return missingField(filesEndpoint, "file")
	}
	if u.Filename == "" {
		return missingField(filesEndpoint, "filename")
	}
	if u.Purpose == "" {
		return missingField(filesEndpoint, "purpose")
	}
	if !u.Purpose.Valid() {
		return invalidArgument(filesEndpoint, "unknown file purpose %q", u.Purpose)
	}
	if u.ExpiresAfterSeconds < 0 {
		return invalidArgument(filesEndpoint, "expires_after must not be negative")
	}
	return nil
}

// File is an uploaded file.
type File struct {
	ID            string            `json:"id"`
	Object        string            `json:"object"`
	Bytes         int64             `json:"bytes"`
	CreatedAt     int64             `json:"created_at"`
	ExpiresAt     int64             `json:"expires_at,omitempty"`
	Filename      string            `json:"filename"`
	Purpose       types.FilePurpose `json:"purpose"`
	Status        string            `json:"status,omitempty"`
	StatusDetails string            `json:"status_details,omitempty"`
}

// Validate requires the id.
func (f *File) Validate() error {
	if f.ID == "" {
		return missingField(filesEndpoint, "id")
	}
	return nil
}

// UploadFile uploads a file with a declared purpose.
//
// Example:
//
//	f, _ := os.Open("requests.jsonl")
//	defer f.Close()
//	file, err := client.UploadFile(ctx, oaikit.FileUpload{
//	    Filename: "requests.jsonl",
//	    Reader:   f,
//	    Purpose:  types.FilePurposeBatch,
//	})
func (c *Client) UploadFile(ctx context.Context, upload FileUpload) (*File, error) {
	if err := upload.Validate(); err != nil {
		return nil, classify(filesEndpoint, err)
	}

	form := multipart.New().
		File("file", upload.Filename, upload.Reader).
		Field("purpose", string(upload.Purpose))
	if upload.ExpiresAfterSeconds > 0 {
		form.Field("expires_after[anchor]", "created_at").
			Field("expires_after[seconds]", strconv.Itoa(upload.ExpiresAfterSeconds))
	}

	var file File
	if err := c.doMultipart(ctx, filesEndpoint, "", form, &upload, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// UploadFilePath uploads a local file, using its base name as the filename.
func (c *Client) UploadFilePath(ctx context.Context, path string, purpose types.FilePurpose) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newError(KindInvalidArgument, filesEndpoint, err, "failed to open file: %v", err)
	}
	defer f.Close()
	return c.UploadFile(ctx, FileUpload{Filename: filepath.Base(path), Reader: f, Purpose: purpose})
}

// ListFiles lists uploaded files, optionally filtered by purpose.
func (c *Client) ListFiles(ctx context.Context, purpose types.FilePurpose, params ListParams) (*List[File], error) {
	if purpose != "" && !purpose.Valid() {
		return nil, invalidArgument(filesEndpoint, "unknown file purpose %q", purpose)
	}
	if err := params.Validate(); err != nil {
		return nil, classify(filesEndpoint, err)
	}
	q := params.values()
	if purpose != "" {
		q.Set("purpose", string(purpose))
	}

	var list List[File]
	if err := c.doJSON(ctx, http.MethodGet, filesEndpoint, q, "", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// RetrieveFile returns the metadata of a file.
func (c *Client) RetrieveFile(ctx context.Context, id string) (*File, error) {
	if id == "" {
		return nil, missingField(filesEndpoint, "file_id")
	}
	var file File
	if err := c.doJSON(ctx, http.MethodGet, joinPath(filesEndpoint, id), nil, "", nil, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// DeleteFile deletes a file.
func (c *Client) DeleteFile(ctx context.Context, id string) (*DeletedObject, error) {
	if id == "" {
		return nil, missingField(filesEndpoint, "file_id")
	}
	var deleted DeletedObject
	if err := c.doJSON(ctx, http.MethodDelete, joinPath(filesEndpoint, id), nil, "", nil, &deleted); err != nil {
		return nil, err
	}
	return &deleted, nil
}

// FileContent downloads the content of a file, such as a batch output.
func (c *Client) FileContent(ctx context.Context, id string) ([]byte, error) {
	if id == "" {
		return nil, missingField(filesEndpoint, "file_id")
	}
	data, _, err := c.doRaw(ctx, http.MethodGet, joinPath(filesEndpoint, id, "content"), "", nil)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, responseShapeError(filesEndpoint, fmt.Errorf("missing file content"))
	}
	return data, nil
}
