// Package cache keeps the course catalog in Redis
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/mentornest/backend/internal/models"
)

// CoursesKey holds the JSON encoded list of every course
const CoursesKey = "courses:all"

// courseCache implements the course catalog cache on top of Redis
type courseCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCourseCache creates a new course cache
func NewCourseCache(client *redis.Client, ttl time.Duration) *courseCache {
	return &courseCache{
		client: client,
		ttl:    ttl,
	}
}

// GetCourses returns the cached catalog; ok is false on a cache miss
func (c *courseCache) GetCourses(ctx context.Context) ([]models.Course, bool, error) {
	raw, err := c.client.Get(ctx, CoursesKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read course cache: %w", err)
	}

	var courses []models.Course
	if err := json.Unmarshal(raw, &courses); err != nil {
		return nil, false, fmt.Errorf("failed to decode course cache: %w", err)
	}

	return courses, true, nil
}

// SetCourses stores the catalog for the configured TTL
func (c *courseCache) SetCourses(ctx context.Context, courses []models.Course) error {
	raw, err := json.Marshal(courses)
	if err != nil {
		return fmt.Errorf("failed to encode course cache: %w", err)
	}

	if err := c.client.Set(ctx, CoursesKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write course cache: %w", err)
	}

	return nil
}

// Invalidate drops the cached catalog
func (c *courseCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, CoursesKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate course cache: %w", err)
	}

	return nil
}
