package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mentornest/backend/libs/auth/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenGenerator() *service.TokenGenerator {
	return service.NewTokenGenerator("middleware-secret", time.Hour, 24*time.Hour)
}

func accessToken(t *testing.T, tg *service.TokenGenerator, userID int, role string) string {
	t.Helper()
	token, err := tg.GenerateAccessToken(userID, role)
	require.NoError(t, err)
	return token
}

func TestAuthMiddleware(t *testing.T) {
	tg := newTestTokenGenerator()

	tests := []struct {
		name           string
		setupRequest   func(r *http.Request)
		expectedStatus int
		expectedUserID int
		expectedRole   string
	}{
		{
			name: "bearer header",
			setupRequest: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+accessToken(t, tg, 5, "STUDENT"))
			},
			expectedStatus: http.StatusOK,
			expectedUserID: 5,
			expectedRole:   "STUDENT",
		},
		{
			name: "cookie fallback",
			setupRequest: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: accessToken(t, tg, 9, "MENTOR")})
			},
			expectedStatus: http.StatusOK,
			expectedUserID: 9,
			expectedRole:   "MENTOR",
		},
		{
			name:           "missing token",
			setupRequest:   func(r *http.Request) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "malformed header",
			setupRequest: func(r *http.Request) {
				r.Header.Set("Authorization", "Token abc")
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "invalid token",
			setupRequest: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer not-a-token")
			},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotID int
			var gotRole string
			handler := AuthMiddleware(tg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotID, _ = GetUserID(r.Context())
				gotRole, _ = GetRole(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			tt.setupRequest(req)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, tt.expectedUserID, gotID)
			assert.Equal(t, tt.expectedRole, gotRole)
		})
	}
}

func TestRoleMiddleware(t *testing.T) {
	tg := newTestTokenGenerator()
	enforcer, err := NewRoleEnforcer()
	require.NoError(t, err)

	tests := []struct {
		name           string
		role           string
		method         string
		path           string
		noToken        bool
		expectedStatus int
	}{
		{name: "admin on admin area", role: "ADMIN", method: http.MethodDelete, path: "/api/admin/users/3", expectedStatus: http.StatusOK},
		{name: "student on admin area", role: "STUDENT", method: http.MethodGet, path: "/api/admin/users", expectedStatus: http.StatusForbidden},
		{name: "student on student area", role: "STUDENT", method: http.MethodPost, path: "/api/student/enroll/4", expectedStatus: http.StatusOK},
		{name: "admin on student area", role: "ADMIN", method: http.MethodGet, path: "/api/student/my-courses", expectedStatus: http.StatusForbidden},
		{name: "mentor dashboard", role: "MENTOR", method: http.MethodGet, path: "/api/mentor/dashboard", expectedStatus: http.StatusOK},
		{name: "mentor cannot post", role: "MENTOR", method: http.MethodPost, path: "/api/mentor/dashboard", expectedStatus: http.StatusForbidden},
		{name: "unauthenticated", noToken: true, method: http.MethodGet, path: "/api/admin/users", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RoleMiddleware(tg, enforcer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(tt.method, tt.path, nil)
			if !tt.noToken {
				req.Header.Set("Authorization", "Bearer "+accessToken(t, tg, 1, tt.role))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestAPIKeyMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		configured     string
		provided       string
		expectedStatus int
	}{
		{name: "valid key", configured: "key", provided: "key", expectedStatus: http.StatusOK},
		{name: "wrong key", configured: "key", provided: "nope", expectedStatus: http.StatusUnauthorized},
		{name: "missing key", configured: "key", provided: "", expectedStatus: http.StatusUnauthorized},
		{name: "no key configured", configured: "", provided: "", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := APIKeyMiddleware(tt.configured)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/internal/tokens/clean", nil)
			if tt.provided != "" {
				req.Header.Set("X-API-Key", tt.provided)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}
