package services

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/mentornest/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveUpload(t *testing.T) {
	big := bytes.Repeat([]byte("a"), models.MaxImageSize+1)

	tests := []struct {
		name          string
		upload        *Upload
		saveErr       error
		expectedError string
		expectedExt   string
	}{
		{
			name:        "png by name",
			upload:      &Upload{File: strings.NewReader("img"), Filename: "cover.png", Size: 3},
			expectedExt: ".png",
		},
		{
			name:        "extension from content type",
			upload:      &Upload{File: strings.NewReader("img"), Filename: "blob", ContentType: "image/jpeg", Size: 3},
			expectedExt: ".jpg",
		},
		{
			name:          "missing file",
			upload:        nil,
			expectedError: "file is required",
		},
		{
			name:          "declared size too large",
			upload:        &Upload{File: strings.NewReader("img"), Filename: "cover.png", Size: models.MaxImageSize + 1},
			expectedError: "file too large: maximum size is 5 MB",
		},
		{
			name:          "unknown size too large",
			upload:        &Upload{File: bytes.NewReader(big), Filename: "cover.png", Size: -1},
			expectedError: "file too large: maximum size is 5 MB",
		},
		{
			name:          "unsupported type",
			upload:        &Upload{File: strings.NewReader("x"), Filename: "script.sh", ContentType: "text/x-sh", Size: 1},
			expectedError: "unsupported file type",
		},
		{
			name:          "storage failure",
			upload:        &Upload{File: strings.NewReader("img"), Filename: "cover.png", Size: 3},
			saveErr:       errors.New("disk full"),
			expectedError: "failed to save file: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newMockStorage()
			fs.saveErr = tt.saveErr

			url, err := saveUpload(fs, CourseImageUpload, tt.upload)

			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Equal(t, tt.expectedError, err.Error())
				assert.Empty(t, fs.files)
				return
			}
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(url, "/uploads/courses/"))
			assert.True(t, strings.HasSuffix(url, tt.expectedExt))
			assert.Equal(t, []byte("img"), fs.files[url])
		})
	}
}
