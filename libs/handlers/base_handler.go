package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BaseHandler provides common handler functionality
type BaseHandler struct {
	Logger *zap.Logger
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondError sends an error JSON response
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	h.RespondJSON(w, status, map[string]string{"error": message})
}

// RespondMessage sends a {"message": ...} JSON response
func (h *BaseHandler) RespondMessage(w http.ResponseWriter, status int, message string) {
	h.RespondJSON(w, status, map[string]string{"message": message})
}

// RespondServiceError logs err and responds with the status its message maps to.
// Internal errors are reported with a generic message.
func (h *BaseHandler) RespondServiceError(w http.ResponseWriter, err error, logMessage string) {
	status := StatusFromError(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error(logMessage, zap.Error(err))
		h.RespondError(w, status, "internal server error")
		return
	}
	h.Logger.Warn(logMessage, zap.Error(err))
	h.RespondError(w, status, err.Error())
}

// errorStatuses maps stable service error phrases to HTTP status codes, checked in order
var errorStatuses = []struct {
	phrase string
	status int
}{
	{"invalid credentials", http.StatusUnauthorized},
	{"refresh token", http.StatusUnauthorized},
	{"deactivated", http.StatusForbidden},
	{"not enrolled", http.StatusForbidden},
	{"forbidden", http.StatusForbidden},
	{"cannot delete admin", http.StatusForbidden},
	{"payment required", http.StatusPaymentRequired},
	{"already purchased", http.StatusConflict},
	{"gateway", http.StatusBadGateway},
	{"does not belong", http.StatusBadRequest},
	{"not found", http.StatusNotFound},
	{"already exists", http.StatusBadRequest},
	{"invalid", http.StatusBadRequest},
	{"required", http.StatusBadRequest},
	{"must", http.StatusBadRequest},
	{"not completed", http.StatusBadRequest},
	{"is free", http.StatusBadRequest},
	{"not free", http.StatusBadRequest},
	{"cannot be empty", http.StatusBadRequest},
	{"unsupported", http.StatusBadRequest},
	{"too large", http.StatusRequestEntityTooLarge},
}

// StatusFromError maps a service error to an HTTP status by its message
func StatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	msg := strings.ToLower(err.Error())
	if strings.HasPrefix(msg, "failed to") {
		return http.StatusInternalServerError
	}
	for _, e := range errorStatuses {
		if strings.Contains(msg, e.phrase) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// ParseIDParam reads a positive integer URL parameter
func ParseIDParam(r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
