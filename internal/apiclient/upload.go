package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/bryan-buckman/pressroom/internal/apierr"
	"github.com/bryan-buckman/pressroom/internal/model"
)

// Upload posts a file as multipart form data and returns its public URL.
// A response without a URL is a failure.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader, folder string) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("read %s: %w", filename, err)
	}
	if folder != "" {
		if err := mw.WriteField("folder", folder); err != nil {
			return "", fmt.Errorf("write folder field: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart body: %w", err)
	}

	data, err := c.send(ctx, request{
		method:      epUpload.method,
		path:        epUpload.path,
		raw:         &buf,
		contentType: mw.FormDataContentType(),
	})
	if err != nil {
		return "", err
	}
	var out model.Upload
	if err := decode(data, &out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", &apierr.Error{Kind: apierr.KindCustom, Text: "Upload finished but the server returned no file URL."}
	}
	return out.URL, nil
}
