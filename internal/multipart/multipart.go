// Package multipart builds multipart/form-data bodies for file uploads,
// audio submission and image edits.
//
// Fields keep insertion order; a name may repeat, which is how array
// parameters such as "timestamp_granularities[]" and "image[]" are sent.
package multipart

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"strings"
)

type part struct {
	name        string
	value       string
	filename    string
	contentType string
	reader      io.Reader
}

// Form accumulates fields and files in order.
//
// Thread Safety: Form is not safe for concurrent use.
type Form struct {
	parts []part
	err   error
}

// New returns an empty form.
func New() *Form {
	return &Form{}
}

// Field adds a text field. Empty values are skipped.
func (f *Form) Field(name, value string) *Form {
	if value == "" {
		return f
	}
	f.parts = append(f.parts, part{name: name, value: value})
	return f
}

// Fields adds one text field per value under the same name.
func (f *Form) Fields(name string, values []string) *Form {
	for _, v := range values {
		f.Field(name, v)
	}
	return f
}

// File adds a file part. The part Content-Type is derived from the filename
// extension, falling back to application/octet-stream.
func (f *Form) File(name, filename string, r io.Reader) *Form {
	return f.FileWithType(name, filename, "", r)
}

// FileWithType adds a file part with an explicit Content-Type.
func (f *Form) FileWithType(name, filename, contentType string, r io.Reader) *Form {
	switch {
	case name == "":
		f.fail(fmt.Errorf("field name cannot be empty"))
	case filename == "":
		f.fail(fmt.Errorf("filename cannot be empty"))
	case r == nil:
		f.fail(fmt.Errorf("file reader cannot be nil"))
	}
	if contentType == "" {
		contentType = mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	f.parts = append(f.parts, part{name: name, filename: filename, contentType: contentType, reader: r})
	return f
}

func (f *Form) fail(err error) {
	if f.err == nil {
		f.err = err
	}
}

// Len returns the number of parts added so far.
func (f *Form) Len() int {
	return len(f.parts)
}

// Encode writes the form and returns the body and its Content-Type header
// value (including boundary).
func (f *Form) Encode() ([]byte, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, p := range f.parts {
		if p.reader == nil {
			if err := writer.WriteField(p.name, p.value); err != nil {
				return nil, "", fmt.Errorf("failed to write field %s: %w", p.name, err)
			}
			continue
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(p.name), escapeQuotes(filepath.Base(p.filename))))
		h.Set("Content-Type", p.contentType)
		w, err := writer.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := io.Copy(w, p.reader); err != nil {
			return nil, "", fmt.Errorf("failed to copy file content: %w", err)
		}
	}

	// Close writer to finalize multipart message
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// CreateFormFile creates a form with one file field and additional text
// fields, and encodes it.
//
// Example:
//
//	body, contentType, err := multipart.CreateFormFile("file", "audio.mp3", file, map[string]string{
//	    "model": "whisper-1",
//	})
func CreateFormFile(fieldName, filename string, file io.Reader, fields map[string]string) ([]byte, string, error) {
	f := New().File(fieldName, filename, file)
	for key, value := range fields {
		f.Field(key, value)
	}
	return f.Encode()
}
