package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestScheduler_CleanTokens(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		expectError bool
	}{
		{name: "success", status: http.StatusOK, body: `{"refreshTokens":4,"resetTokens":1}`},
		{name: "rejected key", status: http.StatusUnauthorized, body: `{"error":"unauthorized"}`, expectError: true},
		{name: "malformed body", status: http.StatusOK, body: `not json`, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/api/internal/tokens/clean", r.URL.Path)
				assert.Equal(t, "secret-key", r.Header.Get("X-API-Key"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			s := NewScheduler(server.URL+"/", "secret-key", zap.NewNop())

			result, err := s.cleanTokens(context.Background())

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 4, result.RefreshTokens)
			assert.Equal(t, 1, result.ResetTokens)
		})
	}
}

func TestScheduler_StartRunsImmediately(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"refreshTokens":0,"resetTokens":0}`))
	}))
	defer server.Close()

	s := NewScheduler(server.URL, "secret-key", zap.NewNop())
	require.NoError(t, s.Start("@hourly"))
	defer s.Stop()

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	s := NewScheduler("http://localhost", "secret-key", zap.NewNop())

	err := s.Start("every now and then")

	assert.Error(t, err)
}
