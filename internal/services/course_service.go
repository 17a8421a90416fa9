package services

import (
	"context"

	"github.com/mentornest/backend/internal/models"
	"go.uber.org/zap"
)

// CourseRepository is the interface that wraps read methods for Course table data access
type CourseRepository interface {
	// Method GetAll retrieves all courses with mentor name and image.
	//
	// "mentorID" parameter restricts the result to one mentor's courses when not nil.
	//
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	GetAll(ctx context.Context, mentorID *int) ([]models.Course, error)
	// Method GetByID retrieves a course by its ID.
	//
	// "id" parameter is used to retrieve a course by its ID.
	//
	// If course with such ID does not exist, the error will be returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.Course, error)
}

// CourseModuleRepository is the interface that wraps read methods for Module table data access
type CourseModuleRepository interface {
	// Method GetByCourseID retrieves the modules of a course ordered by position.
	//
	// "courseID" parameter is used to retrieve the modules of that course.
	//
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	GetByCourseID(ctx context.Context, courseID int) ([]models.Module, error)
}

// CourseCache keeps the course catalog in Redis
type CourseCache interface {
	GetCourses(ctx context.Context) ([]models.Course, bool, error)
	SetCourses(ctx context.Context, courses []models.Course) error
	Invalidate(ctx context.Context) error
}

// courseService implements CourseService
type courseService struct {
	courseRepo CourseRepository
	moduleRepo CourseModuleRepository
	cache      CourseCache
	logger     *zap.Logger
}

// NewCourseService creates a new course service
func NewCourseService(courseRepo CourseRepository, moduleRepo CourseModuleRepository, cache CourseCache, logger *zap.Logger) *courseService {
	return &courseService{
		courseRepo: courseRepo,
		moduleRepo: moduleRepo,
		cache:      cache,
		logger:     logger,
	}
}

// GetAll returns the catalog filtered by search text and category
//
// The catalog is served from the cache. A cache failure is logged and the database is used instead.
func (s *courseService) GetAll(ctx context.Context, search, category string) ([]models.Course, error) {
	courses, err := s.allCourses(ctx)
	if err != nil {
		return nil, err
	}
	return models.FilterCourses(courses, search, category), nil
}

func (s *courseService) allCourses(ctx context.Context) ([]models.Course, error) {
	if s.cache != nil {
		courses, ok, err := s.cache.GetCourses(ctx)
		if err != nil {
			s.logger.Warn("course cache read failed", zap.Error(err))
		} else if ok {
			return courses, nil
		}
	}

	courses, err := s.courseRepo.GetAll(ctx, nil)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetCourses(ctx, courses); err != nil {
			s.logger.Warn("course cache write failed", zap.Error(err))
		}
	}

	return courses, nil
}

// GetByID returns a single course
func (s *courseService) GetByID(ctx context.Context, id int) (*models.Course, error) {
	return s.courseRepo.GetByID(ctx, id)
}

// GetModules returns a public preview of a course's modules, video and resource links are removed
func (s *courseService) GetModules(ctx context.Context, courseID int) ([]models.Module, error) {
	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		return nil, err
	}

	modules, err := s.moduleRepo.GetByCourseID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	for i := range modules {
		modules[i].VideoURL = ""
		modules[i].ResourceURL = ""
	}
	return modules, nil
}

// invalidateCourses drops the cached catalog after a mutation
func invalidateCourses(ctx context.Context, cache CourseCache, logger *zap.Logger) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx); err != nil {
		logger.Warn("course cache invalidation failed", zap.Error(err))
	}
}
