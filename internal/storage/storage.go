// Package storage keeps uploaded files and certificates on the local filesystem
package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Folders under the uploads directory
const (
	FolderCourses      = "courses"
	FolderMentors      = "mentors"
	FolderModules      = "modules"
	FolderCertificates = "certificates"
)

// URLPrefix is the public path files are served under
const URLPrefix = "/uploads/"

// localStorage implements file storage using the local filesystem
type localStorage struct {
	basePath string
}

// NewLocalStorage creates a new localStorage instance
func NewLocalStorage(basePath string) *localStorage {
	return &localStorage{
		basePath: basePath,
	}
}

// BasePath returns the root directory of the storage
func (s *localStorage) BasePath() string {
	return s.basePath
}

// generatePath builds the filesystem path of name inside folder.
// Names containing path elements are rejected.
func (s *localStorage) generatePath(folder, name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid file name")
	}
	if folder == "" || strings.ContainsAny(folder, `/\.`) {
		return "", fmt.Errorf("invalid folder")
	}
	return filepath.Join(s.basePath, folder, name), nil
}

// Save writes the content of r to folder/name and returns the public URL of the file
func (s *localStorage) Save(folder, name string, r io.Reader) (string, error) {
	fullPath, err := s.generatePath(folder, name)
	if err != nil {
		return "", err
	}

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(file, r); err != nil {
		file.Close()
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	return URLPrefix + path.Join(folder, name), nil
}

// resolveURL maps a public URL back to a filesystem path
func (s *localStorage) resolveURL(url string) (string, error) {
	rel, ok := strings.CutPrefix(url, URLPrefix)
	if !ok {
		return "", fmt.Errorf("invalid file url")
	}
	folder, name, ok := strings.Cut(rel, "/")
	if !ok {
		return "", fmt.Errorf("invalid file url")
	}
	return s.generatePath(folder, name)
}

// Read returns the content of the file behind a public URL
func (s *localStorage) Read(url string) ([]byte, error) {
	fullPath, err := s.resolveURL(url)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(fullPath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return data, nil
}

// Delete removes the file behind a public URL, a missing file is not an error
func (s *localStorage) Delete(url string) error {
	fullPath, err := s.resolveURL(url)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

// Open opens the regular file behind a public URL for serving.
// Directories are reported as not found.
func (s *localStorage) Open(url string) (*os.File, os.FileInfo, error) {
	fullPath, err := s.resolveURL(url)
	if err != nil {
		return nil, nil, err
	}

	file, err := os.Open(fullPath)
	if os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("file not found")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		file.Close()
		return nil, nil, fmt.Errorf("file not found")
	}

	return file, info, nil
}
