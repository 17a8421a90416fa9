package models

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Upload size limits
const (
	MaxImageSize    = 5 << 20  // 5MB
	MaxResourceSize = 20 << 20 // 20MB
)

// UploadRule limits the files an upload slot accepts
type UploadRule struct {
	MaxSize    int64
	Extensions map[string]bool
}

// Upload rules shared by the admin endpoints and their clients
var (
	ImageUploadRule = UploadRule{
		MaxSize: MaxImageSize,
		Extensions: map[string]bool{
			".jpg":  true,
			".jpeg": true,
			".png":  true,
			".webp": true,
			".gif":  true,
		},
	}
	ResourceUploadRule = UploadRule{
		MaxSize: MaxResourceSize,
		Extensions: map[string]bool{
			".pdf":  true,
			".zip":  true,
			".doc":  true,
			".docx": true,
			".ppt":  true,
			".pptx": true,
			".txt":  true,
		},
	}
)

var contentTypeExtensions = map[string]string{
	"image/jpeg":         ".jpg",
	"image/png":          ".png",
	"image/gif":          ".gif",
	"image/webp":         ".webp",
	"application/pdf":    ".pdf",
	"application/zip":    ".zip",
	"application/msword": ".doc",
	"text/plain":         ".txt",

	"application/vnd.ms-powerpoint": ".ppt",

	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",

	"application/vnd.openxmlformats-officedocument.presentationml.presentation": ".pptx",
}

// InferExtensionFromContentType infers the extension from the content type
//
// "contentType" parameter is the content type to infer the extension from.
//
// Returns the inferred extension, or empty string if the extension cannot be inferred.
func InferExtensionFromContentType(contentType string) string {
	contentType = strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	return contentTypeExtensions[strings.ToLower(contentType)]
}

// Check validates the declared name, content type and size of a file and
// returns the extension the file will be stored with. A non-positive size is
// treated as unknown.
func (u UploadRule) Check(filename, contentType string, size int64) (string, error) {
	if size > u.MaxSize {
		return "", fmt.Errorf("file too large: maximum size is %d MB", u.MaxSize>>20)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = InferExtensionFromContentType(contentType)
	}
	if !u.Extensions[ext] {
		return "", fmt.Errorf("unsupported file type")
	}

	return ext, nil
}
