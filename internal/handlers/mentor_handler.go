package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mentornest/backend/internal/models"
	authmw "github.com/mentornest/backend/libs/auth/middleware"
	"github.com/mentornest/backend/libs/handlers"
	"go.uber.org/zap"
)

// MentorService is the interface that wraps methods for mentor business logic.
type MentorService interface {
	// Method GetAll retrieves every mentor with course and student counts.
	GetAll(ctx context.Context) ([]models.Mentor, error)
	// Method GetByID retrieves a mentor by its ID.
	//
	// If mentor with such ID does not exist, the error will be returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.Mentor, error)
	// Method GetCourses retrieves the courses taught by a mentor.
	GetCourses(ctx context.Context, mentorID int) ([]models.Course, error)
	// Method Dashboard summarises the courses of the mentor signed in as "userID".
	Dashboard(ctx context.Context, userID int) (*models.MentorDashboard, error)
}

// MentorHandler handles HTTP requests for mentors
type MentorHandler struct {
	handlers.BaseHandler
	service MentorService
	roleMw  func(http.Handler) http.Handler
}

// NewMentorHandler creates a new mentor handler
func NewMentorHandler(svc MentorService, logger *zap.Logger, roleMw func(http.Handler) http.Handler) *MentorHandler {
	return &MentorHandler{
		BaseHandler: handlers.BaseHandler{Logger: logger},
		service:     svc,
		roleMw:      roleMw,
	}
}

// RegisterRoutes registers all mentor handler routes
func (h *MentorHandler) RegisterRoutes(r chi.Router) {
	r.Route("/mentors", func(r chi.Router) {
		r.Get("/", h.GetAll)
		r.Get("/{id}", h.GetByID)
		r.Get("/{id}/courses", h.GetCourses)
	})
	r.With(h.roleMw).Get("/mentor/dashboard", h.Dashboard)
}

// GetAll handles GET /mentors
// @Summary List mentors
// @Tags mentors
// @Produce json
// @Success 200 {array} models.Mentor
// @Failure 500 {object} map[string]string
// @Router /mentors [get]
func (h *MentorHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	mentors, err := h.service.GetAll(r.Context())
	if err != nil {
		h.RespondServiceError(w, err, "failed to get mentors")
		return
	}

	h.RespondJSON(w, http.StatusOK, mentors)
}

// GetByID handles GET /mentors/{id}
// @Summary Get mentor
// @Tags mentors
// @Produce json
// @Param id path int true "Mentor ID"
// @Success 200 {object} models.Mentor
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /mentors/{id} [get]
func (h *MentorHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := handlers.ParseIDParam(r, "id")
	if !ok {
		h.RespondError(w, http.StatusBadRequest, "invalid mentor id")
		return
	}

	mentor, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.RespondServiceError(w, err, "failed to get mentor")
		return
	}

	h.RespondJSON(w, http.StatusOK, mentor)
}

// GetCourses handles GET /mentors/{id}/courses
// @Summary Courses of a mentor
// @Tags mentors
// @Produce json
// @Param id path int true "Mentor ID"
// @Success 200 {array} models.Course
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /mentors/{id}/courses [get]
func (h *MentorHandler) GetCourses(w http.ResponseWriter, r *http.Request) {
	id, ok := handlers.ParseIDParam(r, "id")
	if !ok {
		h.RespondError(w, http.StatusBadRequest, "invalid mentor id")
		return
	}

	courses, err := h.service.GetCourses(r.Context(), id)
	if err != nil {
		h.RespondServiceError(w, err, "failed to get mentor courses")
		return
	}

	h.RespondJSON(w, http.StatusOK, courses)
}

// Dashboard handles GET /mentor/dashboard
// @Summary Mentor dashboard
// @Description Enrollment, progress and certificate statistics for the signed-in mentor's courses
// @Tags mentors
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.MentorDashboard
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /mentor/dashboard [get]
func (h *MentorHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := authmw.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	dashboard, err := h.service.Dashboard(r.Context(), userID)
	if err != nil {
		h.RespondServiceError(w, err, "failed to get mentor dashboard")
		return
	}

	h.RespondJSON(w, http.StatusOK, dashboard)
}
