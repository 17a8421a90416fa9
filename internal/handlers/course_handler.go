package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mentornest/backend/internal/models"
	"github.com/mentornest/backend/libs/handlers"
	"go.uber.org/zap"
)

// CourseService is the interface that wraps methods for the public course catalog.
type CourseService interface {
	// Method GetAll retrieves the catalog filtered by search text and category.
	//
	// "search" parameter is matched against title, mentor name and description.
	// "category" parameter is matched against title and description, "all" or empty disables it.
	//
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	GetAll(ctx context.Context, search, category string) ([]models.Course, error)
	// Method GetByID retrieves a course by its ID.
	//
	// If course with such ID does not exist, the error will be returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.Course, error)
	// Method GetModules retrieves the module outline of a course without video and resource URLs.
	GetModules(ctx context.Context, courseID int) ([]models.Module, error)
}

// CourseHandler handles HTTP requests for the course catalog
type CourseHandler struct {
	handlers.BaseHandler
	service CourseService
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(svc CourseService, logger *zap.Logger) *CourseHandler {
	return &CourseHandler{
		BaseHandler: handlers.BaseHandler{Logger: logger},
		service:     svc,
	}
}

// RegisterRoutes registers all course handler routes
func (h *CourseHandler) RegisterRoutes(r chi.Router) {
	r.Route("/courses", func(r chi.Router) {
		r.Get("/", h.GetAll)
		r.Get("/{id}", h.GetByID)
		r.Get("/{id}/modules", h.GetModules)
	})
}

// GetAll handles GET /courses
// @Summary List courses
// @Description List all courses with mentor name and image, optionally filtered
// @Tags courses
// @Produce json
// @Param search query string false "Case-insensitive text matched against title, mentor name and description"
// @Param category query string false "Category keyword matched against title and description, 'all' disables it"
// @Success 200 {array} models.Course
// @Failure 500 {object} map[string]string
// @Router /courses [get]
func (h *CourseHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	category := r.URL.Query().Get("category")

	courses, err := h.service.GetAll(r.Context(), search, category)
	if err != nil {
		h.RespondServiceError(w, err, "failed to get courses")
		return
	}

	h.RespondJSON(w, http.StatusOK, courses)
}

// GetByID handles GET /courses/{id}
// @Summary Get course
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} models.Course
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /courses/{id} [get]
func (h *CourseHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := handlers.ParseIDParam(r, "id")
	if !ok {
		h.RespondError(w, http.StatusBadRequest, "invalid course id")
		return
	}

	course, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.RespondServiceError(w, err, "failed to get course")
		return
	}

	h.RespondJSON(w, http.StatusOK, course)
}

// GetModules handles GET /courses/{id}/modules
// @Summary Course outline
// @Description Module titles and summaries of a course. Video and resource URLs are only served to enrolled students.
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {array} models.Module
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /courses/{id}/modules [get]
func (h *CourseHandler) GetModules(w http.ResponseWriter, r *http.Request) {
	id, ok := handlers.ParseIDParam(r, "id")
	if !ok {
		h.RespondError(w, http.StatusBadRequest, "invalid course id")
		return
	}

	modules, err := h.service.GetModules(r.Context(), id)
	if err != nil {
		h.RespondServiceError(w, err, "failed to get course modules")
		return
	}

	h.RespondJSON(w, http.StatusOK, modules)
}
