package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mentornest/backend/internal/models"
	"github.com/mentornest/backend/libs/handlers"
	"go.uber.org/zap"
)

// TokenCleaner removes expired refresh and password reset tokens
type TokenCleaner interface {
	CleanTokens(ctx context.Context) (*models.TokenCleanupResult, error)
}

// TokenCleaningHandler handles token cleaning requests
type TokenCleaningHandler struct {
	handlers.BaseHandler
	cleaner TokenCleaner
}

// NewTokenCleaningHandler creates a new token cleaning handler
func NewTokenCleaningHandler(cleaner TokenCleaner, logger *zap.Logger) *TokenCleaningHandler {
	return &TokenCleaningHandler{
		BaseHandler: handlers.BaseHandler{Logger: logger},
		cleaner:     cleaner,
	}
}

// RegisterRoutes registers token cleaning handler routes
// Note: This assumes the router is already scoped to /api/internal and guarded by the API key
func (h *TokenCleaningHandler) RegisterRoutes(r chi.Router) {
	r.Get("/tokens/clean", h.CleanTokens)
}

// CleanTokens handles GET /internal/tokens/clean
// @Summary Clean expired tokens
// @Description Removes refresh tokens older than the refresh token expiry and expired password reset tokens
// @Tags internal
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.TokenCleanupResult
// @Failure 401 {object} map[string]string "Invalid or missing API key"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /internal/tokens/clean [get]
func (h *TokenCleaningHandler) CleanTokens(w http.ResponseWriter, r *http.Request) {
	result, err := h.cleaner.CleanTokens(r.Context())
	if err != nil {
		h.RespondServiceError(w, err, "failed to delete expired tokens")
		return
	}

	// 0 deleted rows is not an error
	h.Logger.Info("token cleaning completed successfully",
		zap.Int("refreshTokens", result.RefreshTokens),
		zap.Int("resetTokens", result.ResetTokens),
	)
	h.RespondJSON(w, http.StatusOK, result)
}
