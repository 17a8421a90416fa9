package services

import (
	"context"
	"errors"
	"testing"

	"github.com/mentornest/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMentorService_GetByID(t *testing.T) {
	tests := []struct {
		name          string
		mentorRepo    *mockMentorRepository
		expectedError bool
	}{
		{
			name:       "counts are filled",
			mentorRepo: &mockMentorRepository{mentor: &models.Mentor{ID: 2, Name: "Ravi"}, coursesCount: 3, studentsCount: 14},
		},
		{
			name:          "not found",
			mentorRepo:    &mockMentorRepository{},
			expectedError: true,
		},
		{
			name:          "count fails",
			mentorRepo:    &mockMentorRepository{mentor: &models.Mentor{ID: 2}, countErr: errors.New("failed to count courses: boom")},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewMentorService(tt.mentorRepo, &mockCourseRepository{}, &mockEnrollmentRepository{}, zap.NewNop())

			mentor, err := svc.GetByID(context.Background(), 2)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, mentor)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 3, mentor.CoursesCount)
			assert.Equal(t, 14, mentor.StudentsCount)
		})
	}
}

func TestMentorService_GetCourses(t *testing.T) {
	courseRepo := &mockCourseRepository{courses: []models.Course{{ID: 1}, {ID: 4}}}
	svc := NewMentorService(&mockMentorRepository{mentor: &models.Mentor{ID: 2}}, courseRepo, &mockEnrollmentRepository{}, zap.NewNop())

	courses, err := svc.GetCourses(context.Background(), 2)

	require.NoError(t, err)
	assert.Len(t, courses, 2)
	require.NotNil(t, courseRepo.mentorFilter)
	assert.Equal(t, 2, *courseRepo.mentorFilter)

	svc = NewMentorService(&mockMentorRepository{}, courseRepo, &mockEnrollmentRepository{}, zap.NewNop())
	_, err = svc.GetCourses(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, "mentor not found", err.Error())
}

func TestMentorService_Dashboard(t *testing.T) {
	certificateURL := "/uploads/certificates/c.png"
	courseRepo := &mockCourseRepository{courses: []models.Course{
		{ID: 1, Title: "Go"},
		{ID: 2, Title: "Empty"},
	}}
	enrollmentRepo := &mockEnrollmentRepository{details: []models.EnrollmentDetails{
		{Enrollment: models.Enrollment{ID: 1, UserID: 10, CourseID: 1, CertificateURL: &certificateURL}, CompletedModules: 4, TotalModules: 4},
		{Enrollment: models.Enrollment{ID: 2, UserID: 11, CourseID: 1}, CompletedModules: 1, TotalModules: 4},
		{Enrollment: models.Enrollment{ID: 3, UserID: 10, CourseID: 99}, CompletedModules: 1, TotalModules: 2},
	}}
	svc := NewMentorService(&mockMentorRepository{mentor: &models.Mentor{ID: 2, UserID: 5, Name: "Ravi"}}, courseRepo, enrollmentRepo, zap.NewNop())

	dashboard, err := svc.Dashboard(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, "Ravi", dashboard.Mentor.Name)
	assert.Equal(t, 2, dashboard.Mentor.CoursesCount)
	assert.Equal(t, 2, dashboard.Mentor.StudentsCount)
	require.NotNil(t, enrollmentRepo.lastFilter.MentorID)
	assert.Equal(t, 2, *enrollmentRepo.lastFilter.MentorID)

	require.Len(t, dashboard.Courses, 2)
	assert.Equal(t, models.MentorCourseStats{
		CourseID:           1,
		Title:              "Go",
		EnrolledStudents:   2,
		AverageProgress:    0.625,
		CertificatesIssued: 1,
	}, dashboard.Courses[0])
	assert.Equal(t, models.MentorCourseStats{CourseID: 2, Title: "Empty"}, dashboard.Courses[1])
}

func TestMentorService_Dashboard_NotMentor(t *testing.T) {
	svc := NewMentorService(&mockMentorRepository{}, &mockCourseRepository{}, &mockEnrollmentRepository{}, zap.NewNop())

	_, err := svc.Dashboard(context.Background(), 5)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
