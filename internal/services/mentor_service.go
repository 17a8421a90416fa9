package services

import (
	"context"

	"github.com/mentornest/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MentorRepository is the interface that wraps read methods for Mentor table data access
type MentorRepository interface {
	// Method GetAll retrieves all mentors together with their course and student counts.
	//
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	GetAll(ctx context.Context) ([]models.Mentor, error)
	// Method GetByID retrieves a mentor by ID.
	//
	// "id" parameter is used to retrieve a mentor by ID.
	//
	// If mentor with such ID does not exist, the error will be returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.Mentor, error)
	// Method GetByUserID retrieves the mentor profile of a user.
	//
	// "userID" parameter is used to retrieve the profile of that user.
	//
	// If the user has no mentor profile, the error will be returned together with "nil" value.
	GetByUserID(ctx context.Context, userID int) (*models.Mentor, error)
	// Method CountCourses counts the courses taught by a mentor.
	//
	// If some error occurs during count, the error will be returned together with "0" value.
	CountCourses(ctx context.Context, mentorID int) (int, error)
	// Method CountStudents counts distinct students enrolled in a mentor's courses.
	//
	// If some error occurs during count, the error will be returned together with "0" value.
	CountStudents(ctx context.Context, mentorID int) (int, error)
}

// EnrollmentDetailsRepository is the interface that wraps enrollment report queries
type EnrollmentDetailsRepository interface {
	// Method GetDetails retrieves enrollments joined with course, student and module counts.
	//
	// "filter" parameter narrows the result, nil fields are ignored.
	//
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	GetDetails(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetails, error)
}

// mentorService implements MentorService
type mentorService struct {
	mentorRepo     MentorRepository
	courseRepo     CourseRepository
	enrollmentRepo EnrollmentDetailsRepository
	logger         *zap.Logger
}

// NewMentorService creates a new mentor service
func NewMentorService(
	mentorRepo MentorRepository,
	courseRepo CourseRepository,
	enrollmentRepo EnrollmentDetailsRepository,
	logger *zap.Logger,
) *mentorService {
	return &mentorService{
		mentorRepo:     mentorRepo,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		logger:         logger,
	}
}

// GetAll returns every mentor
func (s *mentorService) GetAll(ctx context.Context) ([]models.Mentor, error) {
	return s.mentorRepo.GetAll(ctx)
}

// GetByID returns a mentor with its course and student counts fetched concurrently
func (s *mentorService) GetByID(ctx context.Context, id int) (*models.Mentor, error) {
	mentor, err := s.mentorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		count, err := s.mentorRepo.CountCourses(gctx, id)
		mentor.CoursesCount = count
		return err
	})
	g.Go(func() error {
		count, err := s.mentorRepo.CountStudents(gctx, id)
		mentor.StudentsCount = count
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return mentor, nil
}

// GetCourses returns the courses taught by a mentor
func (s *mentorService) GetCourses(ctx context.Context, mentorID int) ([]models.Course, error) {
	if _, err := s.mentorRepo.GetByID(ctx, mentorID); err != nil {
		return nil, err
	}
	return s.courseRepo.GetAll(ctx, &mentorID)
}

// Dashboard summarises the courses of the mentor owning userID
func (s *mentorService) Dashboard(ctx context.Context, userID int) (*models.MentorDashboard, error) {
	mentor, err := s.mentorRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var (
		courses     []models.Course
		enrollments []models.EnrollmentDetails
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		courses, err = s.courseRepo.GetAll(gctx, &mentor.ID)
		return err
	})
	g.Go(func() error {
		var err error
		enrollments, err = s.enrollmentRepo.GetDetails(gctx, models.EnrollmentFilter{MentorID: &mentor.ID})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := make([]models.MentorCourseStats, 0, len(courses))
	index := make(map[int]int, len(courses))
	for i, c := range courses {
		index[c.ID] = i
		stats = append(stats, models.MentorCourseStats{CourseID: c.ID, Title: c.Title})
	}

	students := make(map[int]struct{})
	for _, e := range enrollments {
		students[e.UserID] = struct{}{}
		i, ok := index[e.CourseID]
		if !ok {
			continue
		}
		stats[i].EnrolledStudents++
		stats[i].AverageProgress += e.Progress()
		if e.CertificateURL != nil {
			stats[i].CertificatesIssued++
		}
	}
	for i := range stats {
		if stats[i].EnrolledStudents > 0 {
			stats[i].AverageProgress /= float64(stats[i].EnrolledStudents)
		}
	}

	mentor.CoursesCount = len(courses)
	mentor.StudentsCount = len(students)
	return &models.MentorDashboard{
		Mentor:  *mentor,
		Courses: stats,
	}, nil
}
