package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mentornest/backend/internal/models"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	tokenCleanPath = "/api/internal/tokens/clean"
	requestTimeout = 30 * time.Second
)

// Scheduler periodically asks the API to purge stale refresh and password reset tokens
type Scheduler struct {
	cron       *cron.Cron
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *zap.Logger
}

// NewScheduler creates a new scheduler instance
func NewScheduler(baseURL, apiKey string, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		logger:     logger,
	}
}

// Start registers the cleanup job under spec and starts the cron loop
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return fmt.Errorf("invalid cleanup schedule %q: %w", spec, err)
	}
	s.cron.Start()
	s.logger.Info("Scheduler started", zap.String("schedule", spec))

	// Run immediately on start
	go s.run()

	return nil
}

// Stop stops the cron loop and waits for a running job to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	result, err := s.cleanTokens(ctx)
	if err != nil {
		s.logger.Error("Token cleanup failed", zap.Error(err))
		return
	}

	s.logger.Info("Token cleanup finished",
		zap.Int("refresh_tokens", result.RefreshTokens),
		zap.Int("reset_tokens", result.ResetTokens),
	)
}

// cleanTokens calls the maintenance endpoint once
func (s *Scheduler) cleanTokens(ctx context.Context) (*models.TokenCleanupResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+tokenCleanPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build cleanup request: %w", err)
	}
	req.Header.Set("X-API-Key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call cleanup endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cleanup endpoint returned status %d", resp.StatusCode)
	}

	var result models.TokenCleanupResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode cleanup response: %w", err)
	}

	return &result, nil
}
