package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/mentornest/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCourseCache(t *testing.T) (*courseCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCourseCache(client, time.Minute), mr
}

func TestCourseCache_RoundTrip(t *testing.T) {
	c, mr := setupCourseCache(t)
	ctx := context.Background()

	courses, ok, err := c.GetCourses(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, courses)

	mentorID := 3
	require.NoError(t, c.SetCourses(ctx, []models.Course{
		{ID: 1, Title: "Go", Price: 10, MentorID: &mentorID, MentorName: "Ada"},
		{ID: 2, Title: "Free"},
	}))
	assert.True(t, mr.Exists(CoursesKey))
	assert.Equal(t, time.Minute, mr.TTL(CoursesKey))

	courses, ok, err = c.GetCourses(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, courses, 2)
	assert.Equal(t, "Ada", courses[0].MentorName)
	require.NotNil(t, courses[0].MentorID)
	assert.Equal(t, 3, *courses[0].MentorID)

	require.NoError(t, c.Invalidate(ctx))
	_, ok, err = c.GetCourses(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCourseCache_Expires(t *testing.T) {
	c, mr := setupCourseCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetCourses(ctx, []models.Course{{ID: 1}}))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.GetCourses(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCourseCache_Errors(t *testing.T) {
	c, mr := setupCourseCache(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(CoursesKey, "not json"))
	_, ok, err := c.GetCourses(ctx)
	assert.ErrorContains(t, err, "failed to decode course cache")
	assert.False(t, ok)

	mr.Close()
	_, _, err = c.GetCourses(ctx)
	assert.ErrorContains(t, err, "failed to read course cache")
	assert.Error(t, c.SetCourses(ctx, nil))
	assert.Error(t, c.Invalidate(ctx))
}
