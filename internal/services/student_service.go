package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mentornest/backend/internal/certificate"
	"github.com/mentornest/backend/internal/models"
	"github.com/mentornest/backend/internal/storage"
	"go.uber.org/zap"
)

// EnrollmentRepository is the interface that wraps methods for Enrollment table data access
type EnrollmentRepository interface {
	EnrollmentDetailsRepository
	// Method Create inserts an enrollment, an existing (user, course) pair keeps its ID.
	//
	// "enrollment" parameter is used to create a new enrollment.
	//
	// If some error occurs during creation, the error will be returned.
	Create(ctx context.Context, enrollment *models.Enrollment) error
	// Method GetByUserAndCourse retrieves the enrollment of a user in a course.
	//
	// If the user is not enrolled, the error will be returned together with "nil" value.
	GetByUserAndCourse(ctx context.Context, userID, courseID int) (*models.Enrollment, error)
	// Method MarkModuleCompleted records a module completion, repeated calls are ignored.
	//
	// If some error occurs during insert, the error will be returned.
	MarkModuleCompleted(ctx context.Context, enrollmentID, moduleID int) error
	// Method GetCompletedModuleIDs retrieves completed modules that still belong to the enrolled course.
	//
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	GetCompletedModuleIDs(ctx context.Context, enrollmentID int) ([]int, error)
	// Method SetCertificateURL stores the certificate link on the enrollment.
	//
	// If some error occurs during update, the error will be returned.
	SetCertificateURL(ctx context.Context, enrollmentID int, url string) error
}

// ModuleReader is the interface that wraps read methods for Module table data access
type ModuleReader interface {
	CourseModuleRepository
	// Method GetByID retrieves a module by ID.
	//
	// If module with such ID does not exist, the error will be returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.Module, error)
}

// CompletedPaymentRepository looks up completed payments
type CompletedPaymentRepository interface {
	// Method GetCompleted retrieves the latest completed payment of a user for a course.
	//
	// If there is no completed payment, the error will be returned together with "nil" value.
	GetCompleted(ctx context.Context, userID, courseID int) (*models.Payment, error)
}

// CertificateRepository is the interface that wraps methods for Certificate table data access
type CertificateRepository interface {
	// Method Create inserts an issued certificate.
	//
	// If some error occurs during creation, the error will be returned.
	Create(ctx context.Context, certificate *models.Certificate) error
	// Method GetByUserAndCourse retrieves the certificate of a user for a course.
	//
	// If no certificate was issued, the error will be returned together with "nil" value.
	GetByUserAndCourse(ctx context.Context, userID, courseID int) (*models.Certificate, error)
	// Method GetByUserID retrieves the certificates of a user with course title and mentor name.
	//
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	GetByUserID(ctx context.Context, userID int) ([]models.Certificate, error)
}

// UserReader retrieves users by ID
type UserReader interface {
	GetByID(ctx context.Context, userID int) (*models.User, error)
}

// CertificateRenderer draws a certificate image
type CertificateRenderer interface {
	Render(data certificate.Data) ([]byte, error)
}

// FileStorage stores files under public URLs
type FileStorage interface {
	Save(folder, name string, r io.Reader) (string, error)
	Read(url string) ([]byte, error)
	Delete(url string) error
}

// studentService implements StudentService
type studentService struct {
	courseRepo      CourseRepository
	moduleRepo      ModuleReader
	enrollmentRepo  EnrollmentRepository
	paymentRepo     CompletedPaymentRepository
	certificateRepo CertificateRepository
	userRepo        UserReader
	renderer        CertificateRenderer
	storage         FileStorage
	mailer          Mailer
	logger          *zap.Logger
}

// NewStudentService creates a new student service
func NewStudentService(
	courseRepo CourseRepository,
	moduleRepo ModuleReader,
	enrollmentRepo EnrollmentRepository,
	paymentRepo CompletedPaymentRepository,
	certificateRepo CertificateRepository,
	userRepo UserReader,
	renderer CertificateRenderer,
	storage FileStorage,
	mailer Mailer,
	logger *zap.Logger,
) *studentService {
	return &studentService{
		courseRepo:      courseRepo,
		moduleRepo:      moduleRepo,
		enrollmentRepo:  enrollmentRepo,
		paymentRepo:     paymentRepo,
		certificateRepo: certificateRepo,
		userRepo:        userRepo,
		renderer:        renderer,
		storage:         storage,
		mailer:          mailer,
		logger:          logger,
	}
}

// Enroll enrolls a student in a course. The second return value reports whether a new enrollment was created.
//
// Paid courses require a completed payment first.
func (s *studentService) Enroll(ctx context.Context, userID, courseID int) (*models.EnrollmentResponse, bool, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, false, err
	}

	if _, err := s.enrollmentRepo.GetByUserAndCourse(ctx, userID, courseID); err == nil {
		resp, err := s.enrollmentResponse(ctx, userID, courseID)
		return resp, false, err
	} else if !isNotFound(err) {
		return nil, false, err
	}

	if !course.IsFree() {
		if _, err := s.paymentRepo.GetCompleted(ctx, userID, courseID); err != nil {
			if isNotFound(err) {
				return nil, false, fmt.Errorf("payment required before enrollment")
			}
			return nil, false, err
		}
	}

	enrollment := &models.Enrollment{UserID: userID, CourseID: courseID}
	if err := s.enrollmentRepo.Create(ctx, enrollment); err != nil {
		return nil, false, err
	}

	s.logger.Info("student enrolled", zap.Int("user_id", userID), zap.Int("course_id", courseID))

	if user, err := s.userRepo.GetByID(ctx, userID); err != nil {
		s.logger.Warn("enrollment e-mail skipped", zap.Int("user_id", userID), zap.Error(err))
	} else {
		s.mailer.SendEnrollment(ctx, user.Email, user.Name, course.Title)
	}

	resp, err := s.enrollmentResponse(ctx, userID, courseID)
	return resp, true, err
}

// MyCourses returns the caller's enrollments with progress
func (s *studentService) MyCourses(ctx context.Context, userID int) ([]models.EnrollmentResponse, error) {
	details, err := s.enrollmentRepo.GetDetails(ctx, models.EnrollmentFilter{UserID: &userID})
	if err != nil {
		return nil, err
	}

	result := make([]models.EnrollmentResponse, 0, len(details))
	for i := range details {
		result = append(result, details[i].ToResponse())
	}
	return result, nil
}

// GetModules returns the full modules of a course the caller is enrolled in
func (s *studentService) GetModules(ctx context.Context, userID, courseID int) ([]models.Module, error) {
	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		return nil, err
	}
	if _, err := s.requireEnrollment(ctx, userID, courseID); err != nil {
		return nil, err
	}
	return s.moduleRepo.GetByCourseID(ctx, courseID)
}

// ModulesWithStatus returns the modules of a course together with the caller's completions
func (s *studentService) ModulesWithStatus(ctx context.Context, userID, courseID int) (*models.ModulesWithStatus, error) {
	enrollment, err := s.requireEnrollment(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	modules, err := s.moduleRepo.GetByCourseID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	completed, err := s.enrollmentRepo.GetCompletedModuleIDs(ctx, enrollment.ID)
	if err != nil {
		return nil, err
	}
	if completed == nil {
		completed = []int{}
	}

	return &models.ModulesWithStatus{
		Modules:          modules,
		CompletedModules: completed,
		CertificateURL:   enrollment.CertificateURL,
	}, nil
}

// CompleteModule marks a module as completed, completing it twice changes nothing
func (s *studentService) CompleteModule(ctx context.Context, userID, courseID, moduleID int) (*models.EnrollmentResponse, error) {
	module, err := s.moduleRepo.GetByID(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	if module.CourseID != courseID {
		return nil, fmt.Errorf("module does not belong to this course")
	}

	enrollment, err := s.requireEnrollment(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	if err := s.enrollmentRepo.MarkModuleCompleted(ctx, enrollment.ID, moduleID); err != nil {
		return nil, err
	}

	return s.enrollmentResponse(ctx, userID, courseID)
}

// Progress returns the completed fraction of a course in [0,1]
func (s *studentService) Progress(ctx context.Context, userID, courseID int) (*models.ProgressResponse, error) {
	if _, err := s.requireEnrollment(ctx, userID, courseID); err != nil {
		return nil, err
	}

	details, err := s.enrollmentDetails(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	return &models.ProgressResponse{Progress: details.Progress()}, nil
}

// Certificate returns the caller's certificate for a course, issuing it on the first call
// once every module of the course is completed.
func (s *studentService) Certificate(ctx context.Context, userID, courseID int) (*models.Certificate, error) {
	enrollment, err := s.requireEnrollment(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	existing, err := s.certificateRepo.GetByUserAndCourse(ctx, userID, courseID)
	if err == nil {
		return s.linkCertificate(ctx, enrollment, existing)
	}
	if !isNotFound(err) {
		return nil, err
	}

	details, err := s.enrollmentDetails(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if details.Progress() < 1 {
		return nil, fmt.Errorf("course not completed. Please complete all modules to earn your certificate")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	cert := &models.Certificate{
		UserID:            userID,
		CourseID:          courseID,
		CertificateNumber: certificate.NewNumber(),
		IssuedAt:          time.Now().UTC().Truncate(time.Second),
		CourseTitle:       details.CourseTitle,
		MentorName:        details.MentorName,
	}

	image, err := s.renderer.Render(certificate.Data{
		StudentName:       user.Name,
		CourseTitle:       details.CourseTitle,
		MentorName:        details.MentorName,
		CertificateNumber: cert.CertificateNumber,
		IssuedAt:          cert.IssuedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render certificate: %w", err)
	}

	fileName := certificate.FileName(userID, courseID, cert.CertificateNumber, cert.IssuedAt)
	cert.URL, err = s.storage.Save(storage.FolderCertificates, fileName, bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("failed to store certificate: %w", err)
	}

	if err := s.certificateRepo.Create(ctx, cert); err != nil {
		s.discardFile(cert.URL)
		if !strings.Contains(err.Error(), "already exists") {
			return nil, err
		}
		// a concurrent request issued it first
		winner, getErr := s.certificateRepo.GetByUserAndCourse(ctx, userID, courseID)
		if getErr != nil {
			return nil, err
		}
		return s.linkCertificate(ctx, enrollment, winner)
	}
	if err := s.enrollmentRepo.SetCertificateURL(ctx, enrollment.ID, cert.URL); err != nil {
		return nil, err
	}

	s.logger.Info("certificate issued",
		zap.Int("user_id", userID),
		zap.Int("course_id", courseID),
		zap.String("certificate_number", cert.CertificateNumber),
	)

	return cert, nil
}

// linkCertificate makes sure the enrollment points at an issued certificate.
// The link is missing when an earlier issuance stopped after recording the certificate.
func (s *studentService) linkCertificate(ctx context.Context, enrollment *models.Enrollment, cert *models.Certificate) (*models.Certificate, error) {
	if enrollment.CertificateURL != nil && *enrollment.CertificateURL == cert.URL {
		return cert, nil
	}
	if err := s.enrollmentRepo.SetCertificateURL(ctx, enrollment.ID, cert.URL); err != nil {
		return nil, err
	}
	return cert, nil
}

func (s *studentService) discardFile(url string) {
	if err := s.storage.Delete(url); err != nil {
		s.logger.Warn("failed to delete unused certificate file", zap.String("url", url), zap.Error(err))
	}
}

// DownloadCertificate returns the PNG bytes of the caller's certificate, issuing it when needed
func (s *studentService) DownloadCertificate(ctx context.Context, userID, courseID int) ([]byte, error) {
	cert, err := s.Certificate(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	data, err := s.storage.Read(cert.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read certificate: %w", err)
	}
	return data, nil
}

// Certificates returns every certificate issued to the caller
func (s *studentService) Certificates(ctx context.Context, userID int) ([]models.Certificate, error) {
	return s.certificateRepo.GetByUserID(ctx, userID)
}

func (s *studentService) requireEnrollment(ctx context.Context, userID, courseID int) (*models.Enrollment, error) {
	enrollment, err := s.enrollmentRepo.GetByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("not enrolled in this course")
		}
		return nil, err
	}
	return enrollment, nil
}

func (s *studentService) enrollmentDetails(ctx context.Context, userID, courseID int) (*models.EnrollmentDetails, error) {
	details, err := s.enrollmentRepo.GetDetails(ctx, models.EnrollmentFilter{UserID: &userID, CourseID: &courseID})
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, fmt.Errorf("enrollment not found")
	}
	return &details[0], nil
}

func (s *studentService) enrollmentResponse(ctx context.Context, userID, courseID int) (*models.EnrollmentResponse, error) {
	details, err := s.enrollmentDetails(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	resp := details.ToResponse()
	return &resp, nil
}
