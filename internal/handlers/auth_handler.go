package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mentornest/backend/internal/models"
	authmw "github.com/mentornest/backend/libs/auth/middleware"
	"github.com/mentornest/backend/libs/handlers"
	"github.com/mentornest/backend/libs/validation"
	"go.uber.org/zap"
)

// RefreshTokenCookie carries the refresh token for browser clients
const RefreshTokenCookie = "refreshToken"

// AuthService is the interface that wraps methods for authentication business logic.
type AuthService interface {
	// Method Register creates an account and returns a signed-in session.
	//
	// "req" parameter contains name, email, password and an optional role (STUDENT or MENTOR).
	//
	// If the role is invalid, or such user already exists, or some other error occurs, the error will be returned together with "nil" value.
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error)
	// Method Login performs a user credentials validation and returns a signed-in session.
	//
	// If user passed invalid credentials, or the account is deactivated, the error will be returned together with "nil" value.
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	// Method Refresh performs a refresh token validation and returns a session with rotated tokens.
	//
	// If refresh token is invalid or expired, or some other error occurs, the error will be returned together with "nil" value.
	Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error)
	// Method Logout revokes a refresh token. An empty token is ignored.
	Logout(ctx context.Context, refreshToken string) error
	// Method Me returns the profile of the signed-in user.
	Me(ctx context.Context, userID int) (*models.UserResponse, error)
	// Method UpdateProfile changes name and/or password and returns a fresh access token.
	//
	// If the name is blank or the password is too short, the error will be returned together with "nil" value.
	UpdateProfile(ctx context.Context, userID int, req *models.UpdateProfileRequest) (*models.ProfileUpdateResponse, error)
	// Method ForgotPassword starts the password reset flow. Unknown e-mails are not reported.
	ForgotPassword(ctx context.Context, email string) error
	// Method ResetPassword completes the password reset flow.
	//
	// If the reset token is unknown or expired, the error will be returned.
	ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	handlers.BaseHandler
	authService   AuthService
	authMw        func(http.Handler) http.Handler
	accessMaxAge  time.Duration
	refreshMaxAge time.Duration
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	authService AuthService,
	logger *zap.Logger,
	authMw func(http.Handler) http.Handler,
	accessMaxAge time.Duration,
	refreshMaxAge time.Duration,
) *AuthHandler {
	return &AuthHandler{
		BaseHandler:   handlers.BaseHandler{Logger: logger},
		authService:   authService,
		authMw:        authMw,
		accessMaxAge:  accessMaxAge,
		refreshMaxAge: refreshMaxAge,
	}
}

// RegisterRoutes registers all auth handler routes
// Note: This assumes the router is already scoped to /api
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)
		r.Post("/logout", h.Logout)
		r.Post("/forgot-password", h.ForgotPassword)
		r.Post("/reset-password", h.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(h.authMw)
			r.Get("/me", h.Me)
			r.Put("/profile", h.UpdateProfile)
		})
	})
}

// Register handles POST /auth/register
// @Summary Register a new user
// @Description Register a student or mentor account. Returns the session and sets HTTP-only token cookies.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration request"
// @Success 201 {object} models.AuthResponse
// @Failure 400 {object} map[string]string "Invalid request body or user already exists"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := validation.DecodeAndValidate(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		h.RespondServiceError(w, err, "failed to register user")
		return
	}

	h.setTokenCookies(w, resp.Token, resp.RefreshToken)
	h.RespondJSON(w, http.StatusCreated, resp)
}

// Login handles POST /auth/login
// @Summary Login user
// @Description Authenticate with email and password. Returns the session and sets HTTP-only token cookies.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login request"
// @Success 200 {object} models.AuthResponse
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Failure 403 {object} map[string]string "Account is deactivated"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := validation.DecodeAndValidate(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		h.RespondServiceError(w, err, "failed to login user")
		return
	}

	h.setTokenCookies(w, resp.Token, resp.RefreshToken)
	h.RespondJSON(w, http.StatusOK, resp)
}

// Refresh handles POST /auth/refresh
// @Summary Refresh tokens
// @Description Rotate the refresh token and issue a new access token. The token can be provided in the request body or as a cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RefreshRequest false "Refresh token request (optional if using cookie)"
// @Success 200 {object} models.AuthResponse
// @Failure 401 {object} map[string]string "Invalid or expired refresh token"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	resp, err := h.authService.Refresh(r.Context(), refreshTokenFromRequest(r))
	if err != nil {
		h.RespondServiceError(w, err, "failed to refresh tokens")
		return
	}

	h.setTokenCookies(w, resp.Token, resp.RefreshToken)
	h.RespondJSON(w, http.StatusOK, resp)
}

// Logout handles POST /auth/logout
// @Summary Logout user
// @Description Revoke the presented refresh token and expire the token cookies
// @Tags auth
// @Produce json
// @Param request body models.RefreshRequest false "Refresh token request (optional if using cookie)"
// @Success 200 {object} map[string]string "Logged out"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(r.Context(), refreshTokenFromRequest(r)); err != nil {
		h.RespondServiceError(w, err, "failed to logout user")
		return
	}

	h.clearTokenCookies(w)
	h.RespondMessage(w, http.StatusOK, "logged out successfully")
}

// Me handles GET /auth/me
// @Summary Current user
// @Description Get the profile of the signed-in user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.UserResponse
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 404 {object} map[string]string "User not found"
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := authmw.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.authService.Me(r.Context(), userID)
	if err != nil {
		h.RespondServiceError(w, err, "failed to get current user")
		return
	}

	h.RespondJSON(w, http.StatusOK, user)
}

// UpdateProfile handles PUT /auth/profile
// @Summary Update profile
// @Description Change the name and/or password of the signed-in user. Returns a fresh access token.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.UpdateProfileRequest true "Profile update"
// @Success 200 {object} models.ProfileUpdateResponse
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Authentication required"
// @Router /auth/profile [put]
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := authmw.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req models.UpdateProfileRequest
	if err := validation.DecodeAndValidate(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.authService.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		h.RespondServiceError(w, err, "failed to update profile")
		return
	}

	h.setAccessCookie(w, resp.Token)
	h.RespondJSON(w, http.StatusOK, resp)
}

// ForgotPassword handles POST /auth/forgot-password
// @Summary Request a password reset
// @Description Send a password reset link when the e-mail belongs to an account. The response does not reveal whether it does.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.ForgotPasswordRequest true "Forgot password request"
// @Success 200 {object} map[string]string "Reset link sent if the account exists"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if err := validation.DecodeAndValidate(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.authService.ForgotPassword(r.Context(), req.Email); err != nil {
		h.RespondServiceError(w, err, "failed to start password reset")
		return
	}

	h.RespondMessage(w, http.StatusOK, "if an account with that email exists, a password reset link has been sent")
}

// ResetPassword handles POST /auth/reset-password
// @Summary Reset password
// @Description Set a new password with a reset token. Every session of the user is revoked.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.ResetPasswordRequest true "Reset password request"
// @Success 200 {object} map[string]string "Password reset"
// @Failure 400 {object} map[string]string "Invalid or expired reset token"
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := validation.DecodeAndValidate(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.authService.ResetPassword(r.Context(), &req); err != nil {
		h.RespondServiceError(w, err, "failed to reset password")
		return
	}

	h.RespondMessage(w, http.StatusOK, "password has been reset successfully")
}

// refreshTokenFromRequest reads the refresh token from the JSON body, falling back to the cookie
func refreshTokenFromRequest(r *http.Request) string {
	var req models.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.RefreshToken != "" {
		return req.RefreshToken
	}
	if cookie, err := r.Cookie(RefreshTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// setTokenCookies sets access and refresh tokens as HTTP-only cookies
func (h *AuthHandler) setTokenCookies(w http.ResponseWriter, accessToken, refreshToken string) {
	h.setAccessCookie(w, accessToken)
	http.SetCookie(w, tokenCookie(RefreshTokenCookie, refreshToken, int(h.refreshMaxAge.Seconds())))
}

func (h *AuthHandler) setAccessCookie(w http.ResponseWriter, accessToken string) {
	http.SetCookie(w, tokenCookie(authmw.AccessTokenCookie, accessToken, int(h.accessMaxAge.Seconds())))
}

// clearTokenCookies expires both token cookies
func (h *AuthHandler) clearTokenCookies(w http.ResponseWriter) {
	http.SetCookie(w, tokenCookie(authmw.AccessTokenCookie, "", -1))
	http.SetCookie(w, tokenCookie(RefreshTokenCookie, "", -1))
}

func tokenCookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}
