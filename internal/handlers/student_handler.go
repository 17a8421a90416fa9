package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mentornest/backend/internal/models"
	authmw "github.com/mentornest/backend/libs/auth/middleware"
	"github.com/mentornest/backend/libs/handlers"
	"go.uber.org/zap"
)

// StudentService is the interface that wraps methods for the student learning flow.
type StudentService interface {
	// Method Enroll enrolls a student in a course.
	//
	// The boolean result is true when a new enrollment was created and false when it already existed.
	// If the course is paid and no completed payment exists, the error "payment required before enrollment" will be returned.
	Enroll(ctx context.Context, userID, courseID int) (*models.EnrollmentResponse, bool, error)
	// Method MyCourses retrieves the student's enrollments with progress.
	MyCourses(ctx context.Context, userID int) ([]models.EnrollmentResponse, error)
	// Method GetModules retrieves the full modules of a course the student is enrolled in.
	//
	// If the student is not enrolled, the error will be returned together with "nil" value.
	GetModules(ctx context.Context, userID, courseID int) ([]models.Module, error)
	// Method ModulesWithStatus retrieves the modules of a course together with the student's completions.
	ModulesWithStatus(ctx context.Context, userID, courseID int) (*models.ModulesWithStatus, error)
	// Method CompleteModule marks a module as completed. Completing it twice is not an error.
	//
	// If the module does not exist or belongs to another course, or the student is not enrolled, the error will be returned together with "nil" value.
	CompleteModule(ctx context.Context, userID, courseID, moduleID int) (*models.EnrollmentResponse, error)
	// Method Progress returns the completed fraction of a course in [0,1].
	Progress(ctx context.Context, userID, courseID int) (*models.ProgressResponse, error)
	// Method Certificate issues the completion certificate, or returns the one already issued.
	//
	// If the course is not completed, the error will be returned together with "nil" value.
	Certificate(ctx context.Context, userID, courseID int) (*models.Certificate, error)
	// Method DownloadCertificate returns the PNG bytes of the certificate, issuing it first when needed.
	DownloadCertificate(ctx context.Context, userID, courseID int) ([]byte, error)
	// Method Certificates retrieves every certificate issued to the student.
	Certificates(ctx context.Context, userID int) ([]models.Certificate, error)
}

// StudentHandler handles HTTP requests of enrolled students
type StudentHandler struct {
	handlers.BaseHandler
	service StudentService
	roleMw  func(http.Handler) http.Handler
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(svc StudentService, logger *zap.Logger, roleMw func(http.Handler) http.Handler) *StudentHandler {
	return &StudentHandler{
		BaseHandler: handlers.BaseHandler{Logger: logger},
		service:     svc,
		roleMw:      roleMw,
	}
}

// RegisterRoutes registers all student handler routes
func (h *StudentHandler) RegisterRoutes(r chi.Router) {
	r.Route("/student", func(r chi.Router) {
		r.Use(h.roleMw)
		r.Post("/enroll/{courseId}", h.Enroll)
		r.Get("/my-courses", h.MyCourses)
		r.Get("/certificates", h.Certificates)
		r.Route("/courses/{courseId}", func(r chi.Router) {
			r.Get("/modules", h.GetModules)
			r.Get("/modules-with-status", h.ModulesWithStatus)
			r.Post("/modules/{moduleId}/complete", h.CompleteModule)
			r.Get("/progress", h.Progress)
			r.Get("/certificate", h.Certificate)
			r.Get("/certificate/download", h.DownloadCertificate)
		})
	})
}

// studentCourse reads the caller and the course ID, responding with an error when either is missing
func (h *StudentHandler) studentCourse(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	userID, ok := authmw.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return 0, 0, false
	}
	courseID, ok := handlers.ParseIDParam(r, "courseId")
	if !ok {
		h.RespondError(w, http.StatusBadRequest, "invalid course id")
		return 0, 0, false
	}
	return userID, courseID, true
}

// Enroll handles POST /student/enroll/{courseId}
// @Summary Enroll in a course
// @Description Free courses enroll directly, paid courses need a completed payment. Enrolling twice returns the existing enrollment.
// @Tags student
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Success 200 {object} models.EnrollmentResponse "Already enrolled"
// @Success 201 {object} models.EnrollmentResponse "Enrolled"
// @Failure 402 {object} map[string]string "Payment required"
// @Failure 404 {object} map[string]string "Course not found"
// @Router /student/enroll/{courseId} [post]
func (h *StudentHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	userID, courseID, ok := h.studentCourse(w, r)
	if !ok {
		return
	}

	enrollment, created, err := h.service.Enroll(r.Context(), userID, courseID)
	if err != nil {
		h.RespondServiceError(w, err, "failed to enroll")
		return
	}

	h.RespondJSON(w, enrollmentStatus(created), enrollment)
}

// enrollmentStatus is 201 for a new enrollment and 200 for an existing one
func enrollmentStatus(created bool) int {
	if created {
		return http.StatusCreated
	}
	return http.StatusOK
}

// MyCourses handles GET /student/my-courses
// @Summary Enrolled courses
// @Tags student
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.EnrollmentResponse
// @Router /student/my-courses [get]
func (h *StudentHandler) MyCourses(w http.ResponseWriter, r *http.Request) {
	userID, ok := authmw.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	courses, err := h.service.MyCourses(r.Context(), userID)
	if err != nil {
		h.RespondServiceError(w, err, "failed to get enrolled courses")
		return
	}

	h.RespondJSON(w, http.StatusOK, courses)
}

// GetModules handles GET /student/courses/{courseId}/modules
// @Summary Course modules
// @Tags student
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Success 200 {array} models.Module
// @Failure 403 {object} map[string]string "Not enrolled"
// @Router /student/courses/{courseId}/modules [get]
func (h *StudentHandler) GetModules(w http.ResponseWriter, r *http.Request) {
	userID, courseID, ok := h.studentCourse(w, r)
	if !ok {
		return
	}

	modules, err := h.service.GetModules(r.Context(), userID, courseID)
	if err != nil {
		h.RespondServiceError(w, err, "failed to get modules")
		return
	}

	h.RespondJSON(w, http.StatusOK, modules)
}

// ModulesWithStatus handles GET /student/courses/{courseId}/modules-with-status
// @Summary Course modules with completion status
// @Tags student
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Success 200 {object} models.ModulesWithStatus
// @Failure 403 {object} map[string]string "Not enrolled"
// @Router /student/courses/{courseId}/modules-with-status [get]
func (h *StudentHandler) ModulesWithStatus(w http.ResponseWriter, r *http.Request) {
	userID, courseID, ok := h.studentCourse(w, r)
	if !ok {
		return
	}

	result, err := h.service.ModulesWithStatus(r.Context(), userID, courseID)
	if err != nil {
		h.RespondServiceError(w, err, "failed to get modules with status")
		return
	}

	h.RespondJSON(w, http.StatusOK, result)
}

// CompleteModule handles POST /student/courses/{courseId}/modules/{moduleId}/complete
// @Summary Complete a module
// @Tags student
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Param moduleId path int true "Module ID"
// @Success 200 {object} models.EnrollmentResponse
// @Failure 400 {object} map[string]string "Module does not belong to this course"
// @Failure 403 {object} map[string]string "Not enrolled"
// @Failure 404 {object} map[string]string "Module not found"
// @Router /student/courses/{courseId}/modules/{moduleId}/complete [post]
func (h *StudentHandler) CompleteModule(w http.ResponseWriter, r *http.Request) {
	userID, courseID, ok := h.studentCourse(w, r)
	if !ok {
		return
	}
	moduleID, ok := handlers.ParseIDParam(r, "moduleId")
	if !ok {
		h.RespondError(w, http.StatusBadRequest, "invalid module id")
		return
	}

	enrollment, err := h.service.CompleteModule(r.Context(), userID, courseID, moduleID)
	if err != nil {
		h.RespondServiceError(w, err, "failed to complete module")
		return
	}

	h.RespondJSON(w, http.StatusOK, enrollment)
}

// Progress handles GET /student/courses/{courseId}/progress
// @Summary Course progress
// @Tags student
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Success 200 {object} models.ProgressResponse
// @Failure 403 {object} map[string]string "Not enrolled"
// @Router /student/courses/{courseId}/progress [get]
func (h *StudentHandler) Progress(w http.ResponseWriter, r *http.Request) {
	userID, courseID, ok := h.studentCourse(w, r)
	if !ok {
		return
	}

	progress, err := h.service.Progress(r.Context(), userID, courseID)
	if err != nil {
		h.RespondServiceError(w, err, "failed to get progress")
		return
	}

	h.RespondJSON(w, http.StatusOK, progress)
}

// Certificate handles GET /student/courses/{courseId}/certificate
// @Summary Get certificate
// @Description Issue the completion certificate on first call, later calls return the stored one
// @Tags student
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Success 200 {object} models.Certificate
// @Failure 400 {object} map[string]string "Course not completed"
// @Failure 403 {object} map[string]string "Not enrolled"
// @Router /student/courses/{courseId}/certificate [get]
func (h *StudentHandler) Certificate(w http.ResponseWriter, r *http.Request) {
	userID, courseID, ok := h.studentCourse(w, r)
	if !ok {
		return
	}

	cert, err := h.service.Certificate(r.Context(), userID, courseID)
	if err != nil {
		h.RespondServiceError(w, err, "failed to get certificate")
		return
	}

	h.RespondJSON(w, http.StatusOK, cert)
}

// DownloadCertificate handles GET /student/courses/{courseId}/certificate/download
// @Summary Download certificate
// @Tags student
// @Produce png
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Success 200 {file} binary "Certificate PNG"
// @Failure 400 {object} map[string]string "Course not completed"
// @Failure 403 {object} map[string]string "Not enrolled"
// @Router /student/courses/{courseId}/certificate/download [get]
func (h *StudentHandler) DownloadCertificate(w http.ResponseWriter, r *http.Request) {
	userID, courseID, ok := h.studentCourse(w, r)
	if !ok {
		return
	}

	data, err := h.service.DownloadCertificate(r.Context(), userID, courseID)
	if err != nil {
		h.RespondServiceError(w, err, "failed to download certificate")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="certificate_%d.png"`, courseID))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.Logger.Error("failed to write certificate", zap.Error(err))
	}
}

// Certificates handles GET /student/certificates
// @Summary Issued certificates
// @Tags student
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Certificate
// @Router /student/certificates [get]
func (h *StudentHandler) Certificates(w http.ResponseWriter, r *http.Request) {
	userID, ok := authmw.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	certs, err := h.service.Certificates(r.Context(), userID)
	if err != nil {
		h.RespondServiceError(w, err, "failed to get certificates")
		return
	}

	h.RespondJSON(w, http.StatusOK, certs)
}
