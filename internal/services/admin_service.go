package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/mentornest/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AdminUserRepository is the interface that wraps methods for User table data access used by admins
type AdminUserRepository interface {
	UserRepository
	// Method GetNonAdmins retrieves every user that is not an administrator.
	//
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	GetNonAdmins(ctx context.Context) ([]models.User, error)
	// Method SetActive activates or deactivates a user.
	//
	// If some error occurs during update, the error will be returned.
	SetActive(ctx context.Context, id int, active bool) error
	// Method Delete deletes a user, dependent rows are removed by the database.
	//
	// If user with such ID does not exist, the error will be returned.
	Delete(ctx context.Context, id int) error
	// Method CountByRole returns the number of users per role.
	//
	// If some error occurs during count, the error will be returned together with "nil" value.
	CountByRole(ctx context.Context) (map[models.Role]int, error)
}

// AdminMentorRepository is the interface that wraps methods for Mentor table data access used by admins
type AdminMentorRepository interface {
	// Method GetAll retrieves all mentors together with their course and student counts.
	//
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	GetAll(ctx context.Context) ([]models.Mentor, error)
	// Method GetByID retrieves a mentor by ID.
	//
	// If mentor with such ID does not exist, the error will be returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.Mentor, error)
	// Method Create inserts a mentor profile for an existing user.
	//
	// If some error occurs during creation, the error will be returned.
	Create(ctx context.Context, mentor *models.Mentor) error
	// Method Update updates expertise, bio and image of a mentor.
	//
	// If some error occurs during update, the error will be returned.
	Update(ctx context.Context, mentor *models.Mentor) error
}

// AdminCourseRepository is the interface that wraps methods for Course table data access used by admins
type AdminCourseRepository interface {
	CourseRepository
	// Method Create inserts a new course.
	//
	// If some error occurs during creation, the error will be returned.
	Create(ctx context.Context, course *models.Course) error
	// Method Update replaces every editable field of a course.
	//
	// If some error occurs during update, the error will be returned.
	Update(ctx context.Context, course *models.Course) error
	// Method AssignMentor sets the mentor of a course.
	//
	// If some error occurs during update, the error will be returned.
	AssignMentor(ctx context.Context, courseID, mentorID int) error
	// Method Delete deletes a course with its modules, enrollments and certificates.
	//
	// If course with such ID does not exist, the error will be returned.
	Delete(ctx context.Context, id int) error
	// Method Count counts all courses.
	//
	// If some error occurs during count, the error will be returned together with "0" value.
	Count(ctx context.Context) (int, error)
}

// AdminModuleRepository is the interface that wraps methods for Module table data access used by admins
type AdminModuleRepository interface {
	// Method GetAll retrieves every module ordered by course and position.
	//
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	GetAll(ctx context.Context) ([]models.Module, error)
	// Method GetByID retrieves a module by ID.
	//
	// If module with such ID does not exist, the error will be returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.Module, error)
	// Method Create inserts a new module.
	//
	// If some error occurs during creation, the error will be returned.
	Create(ctx context.Context, module *models.Module) error
	// Method Update updates a module.
	//
	// If some error occurs during update, the error will be returned.
	Update(ctx context.Context, module *models.Module) error
	// Method Delete deletes a module.
	//
	// If module with such ID does not exist, the error will be returned.
	Delete(ctx context.Context, id int) error
	// Method Count counts all modules.
	//
	// If some error occurs during count, the error will be returned together with "0" value.
	Count(ctx context.Context) (int, error)
}

// AdminEnrollmentRepository is the interface that wraps enrollment reports used by admins
type AdminEnrollmentRepository interface {
	EnrollmentDetailsRepository
	// Method GetStats returns platform wide enrollment counters.
	//
	// If some error occurs during count, the error will be returned together with "nil" value.
	GetStats(ctx context.Context) (*models.EnrollmentStats, error)
}

// CertificateCounter counts issued certificates
type CertificateCounter interface {
	Count(ctx context.Context) (int, error)
}

// RevenueRepository sums completed payments
type RevenueRepository interface {
	TotalRevenue(ctx context.Context) (float64, error)
}

// adminService implements AdminService
type adminService struct {
	userRepo        AdminUserRepository
	userTokenRepo   UserTokenRepository
	mentorRepo      AdminMentorRepository
	courseRepo      AdminCourseRepository
	moduleRepo      AdminModuleRepository
	enrollmentRepo  AdminEnrollmentRepository
	certificateRepo CertificateCounter
	paymentRepo     RevenueRepository
	cache           CourseCache
	storage         FileStorage
	logger          *zap.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(
	userRepo AdminUserRepository,
	userTokenRepo UserTokenRepository,
	mentorRepo AdminMentorRepository,
	courseRepo AdminCourseRepository,
	moduleRepo AdminModuleRepository,
	enrollmentRepo AdminEnrollmentRepository,
	certificateRepo CertificateCounter,
	paymentRepo RevenueRepository,
	cache CourseCache,
	storage FileStorage,
	logger *zap.Logger,
) *adminService {
	return &adminService{
		userRepo:        userRepo,
		userTokenRepo:   userTokenRepo,
		mentorRepo:      mentorRepo,
		courseRepo:      courseRepo,
		moduleRepo:      moduleRepo,
		enrollmentRepo:  enrollmentRepo,
		certificateRepo: certificateRepo,
		paymentRepo:     paymentRepo,
		cache:           cache,
		storage:         storage,
		logger:          logger,
	}
}

// Users

// ListUsers returns every non-admin user
func (s *adminService) ListUsers(ctx context.Context) ([]models.UserResponse, error) {
	users, err := s.userRepo.GetNonAdmins(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]models.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, users[i].ToResponse())
	}
	return result, nil
}

// CreateUser creates a student account. Without a password a random one is set
// and the student has to use the forgot password flow.
func (s *adminService) CreateUser(ctx context.Context, req *models.AdminUserRequest) (*models.UserResponse, error) {
	if req.Role != "" && req.Role != models.RoleStudent {
		return nil, fmt.Errorf("invalid role")
	}

	user, err := s.newUser(ctx, req.Name, req.Email, req.Password, models.RoleStudent)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user created by admin", zap.Int("user_id", user.ID))
	resp := user.ToResponse()
	return &resp, nil
}

// UpdateUser updates name and email of a student
func (s *adminService) UpdateUser(ctx context.Context, id int, req *models.AdminUserRequest) (*models.UserResponse, error) {
	if req.Role != "" && req.Role != models.RoleStudent {
		return nil, fmt.Errorf("invalid role")
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role == models.RoleAdmin {
		return nil, fmt.Errorf("forbidden: admin accounts cannot be modified")
	}

	if err := s.applyIdentity(ctx, user, req.Name, req.Email); err != nil {
		return nil, err
	}
	if req.Role != "" {
		user.Role = req.Role
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if req.Password != "" {
		if err := s.setPassword(ctx, user.ID, req.Password); err != nil {
			return nil, err
		}
	}

	resp := user.ToResponse()
	return &resp, nil
}

// DeleteUser deletes a non-admin user
func (s *adminService) DeleteUser(ctx context.Context, id int) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user.Role == models.RoleAdmin {
		return fmt.Errorf("cannot delete admin user")
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("user deleted by admin", zap.Int("user_id", id))
	return nil
}

// SetUserActive deactivates or reactivates a non-admin user. Deactivation signs the user out.
func (s *adminService) SetUserActive(ctx context.Context, id int, active bool) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role == models.RoleAdmin {
		return nil, fmt.Errorf("forbidden: admin accounts cannot be deactivated")
	}

	if err := s.userRepo.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	if !active {
		if err := s.userTokenRepo.DeleteByUserID(ctx, id); err != nil {
			return nil, err
		}
	}

	user.Active = active
	resp := user.ToResponse()
	return &resp, nil
}

// ResetUserPassword sets a new password and signs the user out everywhere
func (s *adminService) ResetUserPassword(ctx context.Context, id int, newPassword string) error {
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.setPassword(ctx, id, newPassword)
}

func (s *adminService) setPassword(ctx context.Context, userID int, password string) error {
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return err
	}
	return s.userTokenRepo.DeleteByUserID(ctx, userID)
}

// newUser creates an active account with a unique e-mail
func (s *adminService) newUser(ctx context.Context, name, email, password string, role models.Role) (*models.User, error) {
	user := &models.User{Role: role, Active: true}
	if err := s.applyIdentity(ctx, user, name, email); err != nil {
		return nil, err
	}

	if password == "" {
		password = uuid.NewString()
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters")
	}
	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = passwordHash

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// applyIdentity sets name and e-mail on user, a changed e-mail must not be taken
func (s *adminService) applyIdentity(ctx context.Context, user *models.User, name, email string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	email = normalizeEmail(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}

	if email != user.Email {
		exists, err := s.userRepo.ExistsByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if exists {
			return fmt.Errorf("email already exists")
		}
	}

	user.Name = name
	user.Email = email
	return nil
}

// Mentors

// ListMentors returns every mentor
func (s *adminService) ListMentors(ctx context.Context) ([]models.Mentor, error) {
	return s.mentorRepo.GetAll(ctx)
}

// CreateMentor creates a mentor account and profile, image is optional
func (s *adminService) CreateMentor(ctx context.Context, req *models.MentorRequest, image *Upload) (*models.Mentor, error) {
	var imageURL string
	if image != nil {
		url, err := saveUpload(s.storage, MentorImageUpload, image)
		if err != nil {
			return nil, err
		}
		imageURL = url
	}

	user, err := s.newUser(ctx, req.Name, req.Email, req.Password, models.RoleMentor)
	if err != nil {
		s.removeFile(imageURL)
		return nil, err
	}

	mentor := &models.Mentor{
		UserID:    user.ID,
		Expertise: strings.TrimSpace(req.Expertise),
		Bio:       strings.TrimSpace(req.Bio),
		ImageURL:  imageURL,
	}
	if err := s.mentorRepo.Create(ctx, mentor); err != nil {
		if delErr := s.userRepo.Delete(ctx, user.ID); delErr != nil {
			s.logger.Error("failed to remove user of failed mentor", zap.Int("user_id", user.ID), zap.Error(delErr))
		}
		s.removeFile(imageURL)
		return nil, err
	}

	s.logger.Info("mentor created", zap.Int("mentor_id", mentor.ID), zap.Int("user_id", user.ID))
	return s.mentorRepo.GetByID(ctx, mentor.ID)
}

// UpdateMentor updates the account and profile of a mentor, a new image replaces the old one
func (s *adminService) UpdateMentor(ctx context.Context, id int, req *models.MentorRequest, image *Upload) (*models.Mentor, error) {
	mentor, err := s.mentorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, mentor.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.applyIdentity(ctx, user, req.Name, req.Email); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if req.Password != "" {
		if err := s.setPassword(ctx, user.ID, req.Password); err != nil {
			return nil, err
		}
	}

	oldImage := mentor.ImageURL
	if image != nil {
		url, err := saveUpload(s.storage, MentorImageUpload, image)
		if err != nil {
			return nil, err
		}
		mentor.ImageURL = url
	}
	mentor.Expertise = strings.TrimSpace(req.Expertise)
	mentor.Bio = strings.TrimSpace(req.Bio)
	if err := s.mentorRepo.Update(ctx, mentor); err != nil {
		return nil, err
	}
	if mentor.ImageURL != oldImage {
		s.removeFile(oldImage)
	}

	// Course listings carry mentor names and images
	invalidateCourses(ctx, s.cache, s.logger)

	return s.mentorRepo.GetByID(ctx, id)
}

// DeleteMentor removes a mentor profile and its account, courses stay without a mentor
func (s *adminService) DeleteMentor(ctx context.Context, id int) error {
	mentor, err := s.mentorRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, mentor.UserID); err != nil {
		return err
	}
	s.removeFile(mentor.ImageURL)
	invalidateCourses(ctx, s.cache, s.logger)

	s.logger.Info("mentor deleted", zap.Int("mentor_id", id))
	return nil
}

func (s *adminService) removeFile(url string) {
	if url == "" {
		return
	}
	if err := s.storage.Delete(url); err != nil {
		s.logger.Warn("failed to delete file", zap.String("url", url), zap.Error(err))
	}
}

// Courses

// ListCourses returns every course straight from the database
func (s *adminService) ListCourses(ctx context.Context) ([]models.Course, error) {
	return s.courseRepo.GetAll(ctx, nil)
}

// CreateCourse creates a course
func (s *adminService) CreateCourse(ctx context.Context, req *models.CourseRequest) (*models.Course, error) {
	course := &models.Course{}
	if err := s.applyCourse(ctx, course, req); err != nil {
		return nil, err
	}

	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, err
	}
	invalidateCourses(ctx, s.cache, s.logger)

	return s.courseRepo.GetByID(ctx, course.ID)
}

// UpdateCourse replaces the editable fields of a course
func (s *adminService) UpdateCourse(ctx context.Context, id int, req *models.CourseRequest) (*models.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyCourse(ctx, course, req); err != nil {
		return nil, err
	}

	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, err
	}
	invalidateCourses(ctx, s.cache, s.logger)

	return s.courseRepo.GetByID(ctx, id)
}

func (s *adminService) applyCourse(ctx context.Context, course *models.Course, req *models.CourseRequest) error {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return fmt.Errorf("title cannot be empty")
	}
	if req.Price < 0 || math.IsNaN(req.Price) {
		return fmt.Errorf("price must be zero or positive")
	}
	if req.MentorID != nil {
		if _, err := s.mentorRepo.GetByID(ctx, *req.MentorID); err != nil {
			return err
		}
	}

	course.Title = title
	course.Description = strings.TrimSpace(req.Description)
	course.Price = req.Price
	course.ImageURL = strings.TrimSpace(req.ImageURL)
	course.Category = strings.TrimSpace(req.Category)
	course.MentorID = req.MentorID
	return nil
}

// DeleteCourse deletes a course with its modules, enrollments and certificates, payments are kept
func (s *adminService) DeleteCourse(ctx context.Context, id int) error {
	if err := s.courseRepo.Delete(ctx, id); err != nil {
		return err
	}
	invalidateCourses(ctx, s.cache, s.logger)

	s.logger.Info("course deleted", zap.Int("course_id", id))
	return nil
}

// AssignMentor puts a course under a mentor
func (s *adminService) AssignMentor(ctx context.Context, courseID, mentorID int) (*models.Course, error) {
	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		return nil, err
	}
	if _, err := s.mentorRepo.GetByID(ctx, mentorID); err != nil {
		return nil, err
	}

	if err := s.courseRepo.AssignMentor(ctx, courseID, mentorID); err != nil {
		return nil, err
	}
	invalidateCourses(ctx, s.cache, s.logger)

	return s.courseRepo.GetByID(ctx, courseID)
}

// UploadCourseImage stores a course image and returns its URL
func (s *adminService) UploadCourseImage(ctx context.Context, image *Upload) (string, error) {
	return saveUpload(s.storage, CourseImageUpload, image)
}

// Modules

// ListModules returns every module
func (s *adminService) ListModules(ctx context.Context) ([]models.Module, error) {
	return s.moduleRepo.GetAll(ctx)
}

// CreateModule adds a module to a course
func (s *adminService) CreateModule(ctx context.Context, courseID int, req *models.ModuleRequest) (*models.Module, error) {
	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		return nil, err
	}

	module := &models.Module{CourseID: courseID}
	if err := applyModule(module, req); err != nil {
		return nil, err
	}
	if err := s.moduleRepo.Create(ctx, module); err != nil {
		return nil, err
	}
	return module, nil
}

// UpdateModule updates a module
func (s *adminService) UpdateModule(ctx context.Context, id int, req *models.ModuleRequest) (*models.Module, error) {
	module, err := s.moduleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyModule(module, req); err != nil {
		return nil, err
	}
	if err := s.moduleRepo.Update(ctx, module); err != nil {
		return nil, err
	}
	return module, nil
}

func applyModule(module *models.Module, req *models.ModuleRequest) error {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return fmt.Errorf("title cannot be empty")
	}
	module.Title = title
	module.VideoURL = strings.TrimSpace(req.VideoURL)
	module.Summary = strings.TrimSpace(req.Summary)
	module.ResourceURL = strings.TrimSpace(req.ResourceURL)
	module.Position = req.Position
	return nil
}

// DeleteModule deletes a module
func (s *adminService) DeleteModule(ctx context.Context, id int) error {
	return s.moduleRepo.Delete(ctx, id)
}

// UploadModuleResource stores a module resource file and returns its URL
func (s *adminService) UploadModuleResource(ctx context.Context, file *Upload) (string, error) {
	return saveUpload(s.storage, ModuleResourceUpload, file)
}

// Reports

// Analytics gathers platform counters concurrently
func (s *adminService) Analytics(ctx context.Context) (*models.Analytics, error) {
	var (
		roles        map[models.Role]int
		courses      int
		modules      int
		certificates int
		revenue      float64
		stats        *models.EnrollmentStats
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		roles, err = s.userRepo.CountByRole(gctx)
		return err
	})
	g.Go(func() (err error) {
		courses, err = s.courseRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		modules, err = s.moduleRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		certificates, err = s.certificateRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		revenue, err = s.paymentRepo.TotalRevenue(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats, err = s.enrollmentRepo.GetStats(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	a := &models.Analytics{
		TotalStudents:      roles[models.RoleStudent],
		TotalMentors:       roles[models.RoleMentor],
		TotalAdmins:        roles[models.RoleAdmin],
		TotalCourses:       courses,
		TotalModules:       modules,
		TotalEnrollments:   stats.Total,
		ActiveStudents:     stats.ActiveStudents,
		CompletedCourses:   stats.Completed,
		InProgressCourses:  stats.Total - stats.Completed,
		CertificatesIssued: certificates,
		TotalRevenue:       revenue,
	}
	for _, count := range roles {
		a.TotalUsers += count
	}

	a.StudentPercentage = percentage(a.TotalStudents, a.TotalUsers)
	a.MentorPercentage = percentage(a.TotalMentors, a.TotalUsers)
	a.AdminPercentage = percentage(a.TotalAdmins, a.TotalUsers)
	a.CompletionRate = percentage(a.CompletedCourses, a.TotalEnrollments)

	return a, nil
}

// StudentProgress returns one row per enrollment
func (s *adminService) StudentProgress(ctx context.Context) ([]models.StudentProgressRow, error) {
	details, err := s.enrollmentRepo.GetDetails(ctx, models.EnrollmentFilter{})
	if err != nil {
		return nil, err
	}

	rows := make([]models.StudentProgressRow, 0, len(details))
	for _, d := range details {
		rows = append(rows, models.StudentProgressRow{
			ID:               d.ID,
			Name:             d.StudentName,
			Email:            d.StudentEmail,
			CourseTitle:      d.CourseTitle,
			MentorName:       d.MentorName,
			Progress:         int(math.Round(d.Progress() * 100)),
			CompletedModules: d.CompletedModules,
			TotalModules:     d.TotalModules,
			Status:           progressStatus(&d),
			CertificateURL:   d.CertificateURL,
		})
	}
	return rows, nil
}

func progressStatus(d *models.EnrollmentDetails) models.ProgressStatus {
	switch {
	case d.CertificateURL != nil:
		return models.ProgressCompleted
	case d.CompletedModules > 0:
		return models.ProgressInProgress
	default:
		return models.ProgressNotStarted
	}
}

// percentage returns part/total as a rounded percentage, 0 when total is 0
func percentage(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(total)))
}
