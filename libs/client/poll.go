package client

import (
	"context"
	"net/http"
	"time"

	"github.com/mentornest/backend/internal/models"
)

// Polling intervals
const (
	CertificateRecheckInterval = 30 * time.Second
	ProfileRefreshInterval     = 120 * time.Second
)

// Poll calls fn every interval until ctx ends or fn returns false. The first
// call happens after one interval. A non-positive interval returns at once
// without calling fn.
func Poll(ctx context.Context, interval time.Duration, fn func(ctx context.Context) bool) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !fn(ctx) {
				return
			}
		}
	}
}

// WatchCertificate re-checks a course certificate every
// CertificateRecheckInterval until it is issued. It gives up on an error that
// polling cannot fix (lost session, no access, unknown course) and otherwise
// returns ctx's error once ctx ends.
func (c *Client) WatchCertificate(ctx context.Context, courseID int) (*models.Certificate, error) {
	cert, err := c.Certificate(ctx, courseID)
	if err == nil || !retryable(err) {
		return cert, err
	}

	Poll(ctx, c.certificateInterval, func(ctx context.Context) bool {
		cert, err = c.Certificate(ctx, courseID)
		return err != nil && retryable(err)
	})

	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return cert, err
}

func retryable(err error) bool {
	return !IsStatus(err, http.StatusUnauthorized) &&
		!IsStatus(err, http.StatusForbidden) &&
		!IsStatus(err, http.StatusNotFound)
}

// WatchDashboard refreshes the dashboard every ProfileRefreshInterval and
// hands each successful result to update until ctx ends
func (c *Client) WatchDashboard(ctx context.Context, update func(Dashboard)) {
	Poll(ctx, c.profileInterval, func(ctx context.Context) bool {
		if d, err := c.LoadDashboard(ctx); err == nil {
			update(d)
		}
		return true
	})
}
