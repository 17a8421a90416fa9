package handlers

import (
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mentornest/backend/internal/storage"
	"github.com/mentornest/backend/libs/handlers"
	"go.uber.org/zap"
)

// FileOpener opens stored files by their public URL
type FileOpener interface {
	// Method Open opens the regular file behind "url".
	//
	// Unknown files, directories and URLs escaping the storage root return an error.
	Open(url string) (*os.File, os.FileInfo, error)
}

// UploadsHandler serves stored uploads read-only
type UploadsHandler struct {
	handlers.BaseHandler
	files FileOpener
}

// NewUploadsHandler creates a new uploads handler
func NewUploadsHandler(files FileOpener, logger *zap.Logger) *UploadsHandler {
	return &UploadsHandler{
		BaseHandler: handlers.BaseHandler{Logger: logger},
		files:       files,
	}
}

// RegisterRoutes registers the uploads route
func (h *UploadsHandler) RegisterRoutes(r chi.Router) {
	r.Get(storage.URLPrefix+"*", h.Serve)
	r.Head(storage.URLPrefix+"*", h.Serve)
}

// Serve handles GET /uploads/*
func (h *UploadsHandler) Serve(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Path
	if strings.Contains(url, "..") || strings.HasSuffix(url, "/") {
		h.RespondError(w, http.StatusNotFound, "file not found")
		return
	}

	file, info, err := h.files.Open(url)
	if err != nil {
		if !strings.Contains(err.Error(), "not found") && !strings.Contains(err.Error(), "invalid") {
			h.Logger.Error("failed to open upload", zap.String("path", url), zap.Error(err))
		}
		h.RespondError(w, http.StatusNotFound, "file not found")
		return
	}
	defer file.Close()

	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeContent(w, r, info.Name(), info.ModTime(), file)
}
