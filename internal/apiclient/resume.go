package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// ResumeUpload is the server's view of an uploaded resume.
type ResumeUpload struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// Resumes uploads the resume document.
type Resumes struct {
	c *Client
}

func NewResumes(c *Client) *Resumes {
	return &Resumes{c: c}
}

// Upload sends the file as multipart form data under the "file" field.
func (r *Resumes) Upload(ctx context.Context, filename string, file io.Reader) (*ResumeUpload, error) {
	op := "upload resume"

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to buffer resume: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	env, status, err := r.c.do(ctx, request{
		op:          op,
		method:      http.MethodPost,
		path:        "/resume/upload",
		body:        &buf,
		contentType: mw.FormDataContentType(),
	})
	if err != nil {
		return nil, err
	}

	var out ResumeUpload
	if _, err := decodeData(op, status, env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
