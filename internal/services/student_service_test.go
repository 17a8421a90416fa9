package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mentornest/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type studentFixture struct {
	courseRepo      *mockCourseRepository
	moduleRepo      *mockModuleRepository
	enrollmentRepo  *mockEnrollmentRepository
	paymentRepo     *mockPaymentRepository
	certificateRepo *mockCertificateRepository
	userRepo        *mockUserRepository
	renderer        *mockRenderer
	storage         *mockStorage
	mailer          *mockMailer
}

func newStudentFixture() *studentFixture {
	return &studentFixture{
		courseRepo:      &mockCourseRepository{course: &models.Course{ID: 1, Title: "Go", Price: 499}},
		moduleRepo:      &mockModuleRepository{},
		enrollmentRepo:  &mockEnrollmentRepository{},
		paymentRepo:     &mockPaymentRepository{},
		certificateRepo: &mockCertificateRepository{},
		userRepo:        &mockUserRepository{user: &models.User{ID: 3, Name: "Asha", Email: "asha@example.com"}},
		renderer:        &mockRenderer{image: []byte("png-bytes")},
		storage:         newMockStorage(),
		mailer:          &mockMailer{},
	}
}

func (f *studentFixture) service() *studentService {
	return NewStudentService(f.courseRepo, f.moduleRepo, f.enrollmentRepo, f.paymentRepo, f.certificateRepo,
		f.userRepo, f.renderer, f.storage, f.mailer, zap.NewNop())
}

func enrolledDetails(completed, total int, certificateURL *string) []models.EnrollmentDetails {
	return []models.EnrollmentDetails{{
		Enrollment:       models.Enrollment{ID: 30, UserID: 3, CourseID: 1, CertificateURL: certificateURL},
		CourseTitle:      "Go",
		MentorName:       "Ravi",
		CompletedModules: completed,
		TotalModules:     total,
	}}
}

func TestStudentService_Enroll(t *testing.T) {
	tests := []struct {
		name          string
		setup         func(f *studentFixture)
		expectCreated bool
		expectedError string
	}{
		{
			name: "paid course with completed payment",
			setup: func(f *studentFixture) {
				f.paymentRepo.completed = &models.Payment{ID: 1, Status: models.PaymentStatusCompleted}
				f.enrollmentRepo.details = enrolledDetails(0, 3, nil)
			},
			expectCreated: true,
		},
		{
			name: "free course",
			setup: func(f *studentFixture) {
				f.courseRepo.course.Price = 0
				f.enrollmentRepo.details = enrolledDetails(0, 3, nil)
			},
			expectCreated: true,
		},
		{
			name: "already enrolled returns existing",
			setup: func(f *studentFixture) {
				f.enrollmentRepo.enrollment = &models.Enrollment{ID: 30, UserID: 3, CourseID: 1}
				f.enrollmentRepo.details = enrolledDetails(1, 3, nil)
			},
		},
		{
			name:          "paid course without payment",
			setup:         func(f *studentFixture) {},
			expectedError: "payment required before enrollment",
		},
		{
			name: "course not found",
			setup: func(f *studentFixture) {
				f.courseRepo.course = nil
			},
			expectedError: "course not found",
		},
		{
			name: "payment lookup fails",
			setup: func(f *studentFixture) {
				f.paymentRepo.completedErr = errors.New("failed to get completed payment: boom")
			},
			expectedError: "failed to get completed payment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newStudentFixture()
			tt.setup(f)

			resp, created, err := f.service().Enroll(context.Background(), 3, 1)

			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				assert.Nil(t, f.enrollmentRepo.created)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectCreated, created)
			assert.Equal(t, 30, resp.ID)
			assert.Equal(t, "Go", resp.CourseTitle)
			if tt.expectCreated {
				require.NotNil(t, f.enrollmentRepo.created)
				assert.Equal(t, []string{"enrollment:asha@example.com"}, f.mailer.sent)
			} else {
				assert.Nil(t, f.enrollmentRepo.created)
				assert.Empty(t, f.mailer.sent)
			}
		})
	}
}

func TestStudentService_GetModules(t *testing.T) {
	f := newStudentFixture()
	f.moduleRepo.modules = []models.Module{{ID: 1, CourseID: 1, VideoURL: "https://video/1"}}

	_, err := f.service().GetModules(context.Background(), 3, 1)
	require.Error(t, err)
	assert.Equal(t, "not enrolled in this course", err.Error())

	f.enrollmentRepo.enrollment = &models.Enrollment{ID: 30}
	modules, err := f.service().GetModules(context.Background(), 3, 1)
	require.NoError(t, err)
	require.Len(t, modules, 1)
	assert.Equal(t, "https://video/1", modules[0].VideoURL)
}

func TestStudentService_ModulesWithStatus(t *testing.T) {
	certificateURL := "/uploads/certificates/c.png"
	f := newStudentFixture()
	f.enrollmentRepo.enrollment = &models.Enrollment{ID: 30, CertificateURL: &certificateURL}
	f.moduleRepo.modules = []models.Module{{ID: 1}, {ID: 2}}
	f.enrollmentRepo.completedIDs = []int{2}

	status, err := f.service().ModulesWithStatus(context.Background(), 3, 1)

	require.NoError(t, err)
	assert.Len(t, status.Modules, 2)
	assert.Equal(t, []int{2}, status.CompletedModules)
	assert.Equal(t, &certificateURL, status.CertificateURL)

	f.enrollmentRepo.completedIDs = nil
	status, err = f.service().ModulesWithStatus(context.Background(), 3, 1)
	require.NoError(t, err)
	assert.NotNil(t, status.CompletedModules)
	assert.Empty(t, status.CompletedModules)
}

func TestStudentService_CompleteModule(t *testing.T) {
	tests := []struct {
		name          string
		setup         func(f *studentFixture)
		expectedError string
	}{
		{
			name: "success",
			setup: func(f *studentFixture) {
				f.moduleRepo.module = &models.Module{ID: 7, CourseID: 1}
				f.enrollmentRepo.enrollment = &models.Enrollment{ID: 30}
				f.enrollmentRepo.details = enrolledDetails(1, 2, nil)
			},
		},
		{
			name:          "module missing",
			setup:         func(f *studentFixture) {},
			expectedError: "module not found",
		},
		{
			name: "module of another course",
			setup: func(f *studentFixture) {
				f.moduleRepo.module = &models.Module{ID: 7, CourseID: 2}
				f.enrollmentRepo.enrollment = &models.Enrollment{ID: 30}
			},
			expectedError: "module does not belong to this course",
		},
		{
			name: "not enrolled",
			setup: func(f *studentFixture) {
				f.moduleRepo.module = &models.Module{ID: 7, CourseID: 1}
			},
			expectedError: "not enrolled in this course",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newStudentFixture()
			tt.setup(f)

			resp, err := f.service().CompleteModule(context.Background(), 3, 1, 7)

			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Equal(t, tt.expectedError, err.Error())
				assert.Empty(t, f.enrollmentRepo.marked)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []int{7}, f.enrollmentRepo.marked)
			assert.Equal(t, 0.5, resp.Progress)
		})
	}
}

func TestStudentService_Progress(t *testing.T) {
	tests := []struct {
		name      string
		completed int
		total     int
		expected  float64
	}{
		{name: "half", completed: 2, total: 4, expected: 0.5},
		{name: "zero modules", completed: 0, total: 0, expected: 0},
		{name: "clamped", completed: 5, total: 4, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newStudentFixture()
			f.enrollmentRepo.enrollment = &models.Enrollment{ID: 30}
			f.enrollmentRepo.details = enrolledDetails(tt.completed, tt.total, nil)

			progress, err := f.service().Progress(context.Background(), 3, 1)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, progress.Progress)
		})
	}
}

func TestStudentService_Certificate(t *testing.T) {
	tests := []struct {
		name          string
		setup         func(f *studentFixture)
		expectIssued  bool
		expectedError string
	}{
		{
			name: "issued on completion",
			setup: func(f *studentFixture) {
				f.enrollmentRepo.enrollment = &models.Enrollment{ID: 30}
				f.enrollmentRepo.details = enrolledDetails(3, 3, nil)
			},
			expectIssued: true,
		},
		{
			name: "existing certificate returned",
			setup: func(f *studentFixture) {
				f.enrollmentRepo.enrollment = &models.Enrollment{ID: 30}
				f.certificateRepo.certificate = &models.Certificate{ID: 9, CertificateNumber: "MN-ABCDEF12", URL: "/uploads/certificates/old.png"}
			},
		},
		{
			name: "not completed",
			setup: func(f *studentFixture) {
				f.enrollmentRepo.enrollment = &models.Enrollment{ID: 30}
				f.enrollmentRepo.details = enrolledDetails(2, 3, nil)
			},
			expectedError: "course not completed. Please complete all modules to earn your certificate",
		},
		{
			name: "zero-module course never completes",
			setup: func(f *studentFixture) {
				f.enrollmentRepo.enrollment = &models.Enrollment{ID: 30}
				f.enrollmentRepo.details = enrolledDetails(0, 0, nil)
			},
			expectedError: "course not completed. Please complete all modules to earn your certificate",
		},
		{
			name:          "not enrolled",
			setup:         func(f *studentFixture) {},
			expectedError: "not enrolled in this course",
		},
		{
			name: "render failure",
			setup: func(f *studentFixture) {
				f.enrollmentRepo.enrollment = &models.Enrollment{ID: 30}
				f.enrollmentRepo.details = enrolledDetails(3, 3, nil)
				f.renderer.err = errors.New("font error")
			},
			expectedError: "failed to render certificate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newStudentFixture()
			tt.setup(f)

			cert, err := f.service().Certificate(context.Background(), 3, 1)

			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				assert.Nil(t, f.certificateRepo.created)
				return
			}
			require.NoError(t, err)
			if !tt.expectIssued {
				assert.Equal(t, "MN-ABCDEF12", cert.CertificateNumber)
				assert.Nil(t, f.certificateRepo.created)
				assert.Nil(t, f.renderer.rendered)
				return
			}

			assert.Regexp(t, `^MN-[0-9A-F]{8}$`, cert.CertificateNumber)
			assert.True(t, strings.HasPrefix(cert.URL, "/uploads/certificates/certificate_3_1_"), cert.URL)
			assert.Equal(t, []byte("png-bytes"), f.storage.files[cert.URL])
			assert.Equal(t, cert.URL, f.enrollmentRepo.certificateURL)
			require.NotNil(t, f.certificateRepo.created)
			require.NotNil(t, f.renderer.rendered)
			assert.Equal(t, "Asha", f.renderer.rendered.StudentName)
			assert.Equal(t, "Go", f.renderer.rendered.CourseTitle)
			assert.Equal(t, "Ravi", f.renderer.rendered.MentorName)
		})
	}
}

func TestStudentService_Certificate_ConcurrentIssue(t *testing.T) {
	f := newStudentFixture()
	f.enrollmentRepo.enrollment = &models.Enrollment{ID: 30}
	f.enrollmentRepo.details = enrolledDetails(3, 3, nil)
	f.certificateRepo.createErr = errors.New("certificate already exists")
	f.certificateRepo.winner = &models.Certificate{ID: 9, CertificateNumber: "MN-0000BEEF", URL: "/uploads/certificates/winner.png"}
	f.storage.files["/uploads/certificates/winner.png"] = []byte("winner")

	cert, err := f.service().Certificate(context.Background(), 3, 1)

	require.NoError(t, err)
	assert.Equal(t, "MN-0000BEEF", cert.CertificateNumber)
	assert.Equal(t, "/uploads/certificates/winner.png", f.enrollmentRepo.certificateURL)
	require.Len(t, f.storage.deleted, 1)
	assert.NotEqual(t, "/uploads/certificates/winner.png", f.storage.deleted[0])
	assert.Len(t, f.storage.files, 1)
}

func TestStudentService_Certificate_CleansUpOnFailure(t *testing.T) {
	f := newStudentFixture()
	f.enrollmentRepo.enrollment = &models.Enrollment{ID: 30}
	f.enrollmentRepo.details = enrolledDetails(3, 3, nil)
	f.certificateRepo.createErr = errors.New("failed to create certificate: connection reset")

	_, err := f.service().Certificate(context.Background(), 3, 1)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create certificate")
	assert.Len(t, f.storage.deleted, 1)
	assert.Empty(t, f.storage.files)
	assert.Empty(t, f.enrollmentRepo.certificateURL)
}

func TestStudentService_Certificate_RepairsEnrollmentLink(t *testing.T) {
	f := newStudentFixture()
	f.enrollmentRepo.enrollment = &models.Enrollment{ID: 30}
	f.enrollmentRepo.details = enrolledDetails(3, 3, nil)
	f.enrollmentRepo.setCertErr = errors.New("failed to set certificate url: timeout")

	_, err := f.service().Certificate(context.Background(), 3, 1)
	require.Error(t, err)
	require.NotNil(t, f.certificateRepo.created)
	assert.Empty(t, f.storage.deleted)

	f.certificateRepo.certificate = f.certificateRepo.created
	f.certificateRepo.created = nil
	f.enrollmentRepo.setCertErr = nil

	cert, err := f.service().Certificate(context.Background(), 3, 1)

	require.NoError(t, err)
	assert.Nil(t, f.certificateRepo.created)
	assert.Equal(t, cert.URL, f.enrollmentRepo.certificateURL)
}

func TestStudentService_Certificate_LinkedCertificateUntouched(t *testing.T) {
	f := newStudentFixture()
	url := "/uploads/certificates/c.png"
	f.enrollmentRepo.enrollment = &models.Enrollment{ID: 30, CertificateURL: &url}
	f.certificateRepo.certificate = &models.Certificate{ID: 9, URL: url}

	cert, err := f.service().Certificate(context.Background(), 3, 1)

	require.NoError(t, err)
	assert.Equal(t, url, cert.URL)
	assert.Empty(t, f.enrollmentRepo.certificateURL)
}

func TestStudentService_DownloadCertificate(t *testing.T) {
	f := newStudentFixture()
	f.enrollmentRepo.enrollment = &models.Enrollment{ID: 30}
	f.certificateRepo.certificate = &models.Certificate{ID: 9, URL: "/uploads/certificates/c.png"}
	f.storage.files["/uploads/certificates/c.png"] = []byte("stored")

	data, err := f.service().DownloadCertificate(context.Background(), 3, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte("stored"), data)

	delete(f.storage.files, "/uploads/certificates/c.png")
	_, err = f.service().DownloadCertificate(context.Background(), 3, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read certificate")
}

func TestStudentService_MyCourses(t *testing.T) {
	f := newStudentFixture()
	f.enrollmentRepo.details = enrolledDetails(1, 4, nil)

	courses, err := f.service().MyCourses(context.Background(), 3)

	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, 0.25, courses[0].Progress)
	require.NotNil(t, f.enrollmentRepo.lastFilter.UserID)
	assert.Equal(t, 3, *f.enrollmentRepo.lastFilter.UserID)
	assert.Nil(t, f.enrollmentRepo.lastFilter.CourseID)
}
