package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/mentornest/backend/internal/models"
)

// File is a file picked for upload
type File struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

// CheckUpload validates a picked file against an upload rule before anything
// is sent. The server applies the same rules.
func CheckUpload(rule models.UploadRule, file File) error {
	if file.Content == nil {
		return fmt.Errorf("file is required")
	}
	_, err := rule.Check(file.Name, file.ContentType, file.Size)
	return err
}

func (c *Client) upload(ctx context.Context, path, field string, rule models.UploadRule, file File) (string, error) {
	if err := CheckUpload(rule, file); err != nil {
		c.notifier.Notify(err.Error())
		return "", err
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, file.Name))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := form.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}
	// never buffer past the slot limit
	n, err := io.Copy(part, io.LimitReader(file.Content, rule.MaxSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if n > rule.MaxSize {
		err := fmt.Errorf("file too large: maximum size is %d MB", rule.MaxSize>>20)
		c.notifier.Notify(err.Error())
		return "", err
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}

	resp, err := c.send(ctx, http.MethodPost, path, &body, form.FormDataContentType())
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out struct {
		URL string `json:"url"`
	}
	if err := decodeJSON(resp.Body, &out); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}

	return out.URL, nil
}
