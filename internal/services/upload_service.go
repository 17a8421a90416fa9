package services

import (
	"fmt"
	"io"

	"github.com/mentornest/backend/internal/models"
	"github.com/mentornest/backend/internal/storage"
)

// Upload is a file received from a multipart form
type Upload struct {
	File        io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// UploadKind is an upload slot: where accepted files are stored and which rule they follow
type UploadKind struct {
	Folder string
	models.UploadRule
}

// Upload kinds accepted by the admin endpoints
var (
	CourseImageUpload    = UploadKind{Folder: storage.FolderCourses, UploadRule: models.ImageUploadRule}
	MentorImageUpload    = UploadKind{Folder: storage.FolderMentors, UploadRule: models.ImageUploadRule}
	ModuleResourceUpload = UploadKind{Folder: storage.FolderModules, UploadRule: models.ResourceUploadRule}
)

// saveUpload validates an upload against kind and stores it under a generated name
func saveUpload(fs FileStorage, kind UploadKind, upload *Upload) (string, error) {
	if upload == nil || upload.File == nil {
		return "", fmt.Errorf("file is required")
	}
	ext, err := kind.Check(upload.Filename, upload.ContentType, upload.Size)
	if err != nil {
		return "", err
	}

	// Size may be unknown, never read past the limit
	reader := io.LimitReader(upload.File, kind.MaxSize+1)
	counter := &countingReader{r: reader}

	url, err := fs.Save(kind.Folder, storage.GenerateFileName(ext), counter)
	if err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	if counter.n > kind.MaxSize {
		_ = fs.Delete(url)
		return "", fmt.Errorf("file too large: maximum size is %d MB", kind.MaxSize>>20)
	}
	return url, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
