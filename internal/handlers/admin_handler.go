package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mentornest/backend/internal/models"
	"github.com/mentornest/backend/internal/services"
	"github.com/mentornest/backend/libs/handlers"
	"github.com/mentornest/backend/libs/validation"
	"go.uber.org/zap"
)

// multipartMemory is the part of a multipart form kept in memory, the rest spills to temp files
const multipartMemory = 8 << 20

// AdminService is the interface that wraps methods for platform administration.
type AdminService interface {
	// Method ListUsers retrieves every non-admin user.
	ListUsers(ctx context.Context) ([]models.UserResponse, error)
	// Method CreateUser creates a student account. Without a password a random one is set.
	//
	// If the e-mail is taken or the role is not STUDENT, the error will be returned together with "nil" value.
	CreateUser(ctx context.Context, req *models.AdminUserRequest) (*models.UserResponse, error)
	// Method UpdateUser updates name, e-mail and optionally the password of a student.
	UpdateUser(ctx context.Context, id int, req *models.AdminUserRequest) (*models.UserResponse, error)
	// Method DeleteUser deletes a non-admin user.
	DeleteUser(ctx context.Context, id int) error
	// Method SetUserActive deactivates or reactivates a non-admin user.
	SetUserActive(ctx context.Context, id int, active bool) (*models.UserResponse, error)
	// Method ResetUserPassword sets a new password and revokes every session of the user.
	ResetUserPassword(ctx context.Context, id int, newPassword string) error

	// Method ListMentors retrieves every mentor.
	ListMentors(ctx context.Context) ([]models.Mentor, error)
	// Method CreateMentor creates a mentor account and profile.
	//
	// "image" parameter is optional, "nil" keeps the mentor without an image.
	CreateMentor(ctx context.Context, req *models.MentorRequest, image *services.Upload) (*models.Mentor, error)
	// Method UpdateMentor updates a mentor, a new image replaces the old one.
	UpdateMentor(ctx context.Context, id int, req *models.MentorRequest, image *services.Upload) (*models.Mentor, error)
	// Method DeleteMentor deletes a mentor profile and its account.
	DeleteMentor(ctx context.Context, id int) error

	// Method ListCourses retrieves every course.
	ListCourses(ctx context.Context) ([]models.Course, error)
	// Method CreateCourse creates a course.
	CreateCourse(ctx context.Context, req *models.CourseRequest) (*models.Course, error)
	// Method UpdateCourse replaces the editable fields of a course.
	UpdateCourse(ctx context.Context, id int, req *models.CourseRequest) (*models.Course, error)
	// Method DeleteCourse deletes a course with its modules, enrollments and certificates.
	DeleteCourse(ctx context.Context, id int) error
	// Method AssignMentor sets the mentor of a course.
	AssignMentor(ctx context.Context, courseID, mentorID int) (*models.Course, error)
	// Method UploadCourseImage stores a course image and returns its URL.
	UploadCourseImage(ctx context.Context, image *services.Upload) (string, error)

	// Method ListModules retrieves every module.
	ListModules(ctx context.Context) ([]models.Module, error)
	// Method CreateModule adds a module to a course.
	CreateModule(ctx context.Context, courseID int, req *models.ModuleRequest) (*models.Module, error)
	// Method UpdateModule updates a module.
	UpdateModule(ctx context.Context, id int, req *models.ModuleRequest) (*models.Module, error)
	// Method DeleteModule deletes a module.
	DeleteModule(ctx context.Context, id int) error
	// Method UploadModuleResource stores a module resource file and returns its URL.
	UploadModuleResource(ctx context.Context, file *services.Upload) (string, error)

	// Method Analytics gathers platform counters.
	Analytics(ctx context.Context) (*models.Analytics, error)
	// Method StudentProgress returns one progress row per enrollment.
	StudentProgress(ctx context.Context) ([]models.StudentProgressRow, error)
}

// AdminHandler handles admin HTTP requests
type AdminHandler struct {
	handlers.BaseHandler
	adminService AdminService
	roleMw       func(http.Handler) http.Handler
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService AdminService, logger *zap.Logger, roleMw func(http.Handler) http.Handler) *AdminHandler {
	return &AdminHandler{
		BaseHandler:  handlers.BaseHandler{Logger: logger},
		adminService: adminService,
		roleMw:       roleMw,
	}
}

// RegisterRoutes registers all admin handler routes
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(h.roleMw)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.ListUsers)
			r.Post("/", h.CreateUser)
			r.Put("/{id}", h.UpdateUser)
			r.Delete("/{id}", h.DeleteUser)
			r.Put("/{id}/deactivate", h.DeactivateUser)
			r.Put("/{id}/reactivate", h.ReactivateUser)
			r.Post("/{id}/reset-password", h.ResetUserPassword)
		})

		r.Route("/mentors", func(r chi.Router) {
			r.Get("/", h.ListMentors)
			r.Post("/", h.CreateMentor)
			r.Put("/{id}", h.UpdateMentor)
			r.Delete("/{id}", h.DeleteMentor)
		})

		r.Route("/courses", func(r chi.Router) {
			r.Get("/", h.ListCourses)
			r.Post("/", h.CreateCourse)
			r.Post("/upload-image", h.UploadCourseImage)
			r.Put("/{id}", h.UpdateCourse)
			r.Delete("/{id}", h.DeleteCourse)
			r.Post("/{courseId}/mentor/{mentorId}", h.AssignMentor)
			r.Post("/{courseId}/modules", h.CreateModule)
		})

		r.Route("/modules", func(r chi.Router) {
			r.Get("/", h.ListModules)
			r.Post("/upload-resource", h.UploadModuleResource)
			r.Put("/{id}", h.UpdateModule)
			r.Delete("/{id}", h.DeleteModule)
		})

		r.Get("/analytics", h.Analytics)
		r.Get("/student-progress", h.StudentProgress)
	})
}

// pathID reads the {name} URL parameter, responding 400 when it is not a positive integer
func (h *AdminHandler) pathID(w http.ResponseWriter, r *http.Request, name, entity string) (int, bool) {
	id, ok := handlers.ParseIDParam(r, name)
	if !ok {
		h.RespondError(w, http.StatusBadRequest, "invalid "+entity+" id")
	}
	return id, ok
}

// formFile reads an optional file field of a multipart form.
// It returns "nil" when the field is absent, the caller closes the returned upload with the close func.
func formFile(r *http.Request, field string) (*services.Upload, func(), error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, func() {}, err
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		return nil, func() {}, err
	}

	return &services.Upload{
		File:        file,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}, func() { file.Close() }, nil
}

// Users

// ListUsers handles GET /admin/users
// @Summary List users
// @Description List every student and mentor account
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.UserResponse
// @Failure 403 {object} map[string]string "Insufficient permissions"
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminService.ListUsers(r.Context())
	if err != nil {
		h.RespondServiceError(w, err, "failed to list users")
		return
	}

	h.RespondJSON(w, http.StatusOK, users)
}

// CreateUser handles POST /admin/users
// @Summary Create a student
// @Description Create a student account. Without a password the student has to use the forgot password flow.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.AdminUserRequest true "User"
// @Success 201 {object} models.UserResponse
// @Failure 400 {object} map[string]string "Invalid request body or email already exists"
// @Router /admin/users [post]
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.AdminUserRequest
	if err := validation.DecodeAndValidate(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.adminService.CreateUser(r.Context(), &req)
	if err != nil {
		h.RespondServiceError(w, err, "failed to create user")
		return
	}

	h.RespondJSON(w, http.StatusCreated, user)
}

// UpdateUser handles PUT /admin/users/{id}
// @Summary Update a student
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body models.AdminUserRequest true "User"
// @Success 200 {object} models.UserResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string "Admin accounts cannot be modified"
// @Failure 404 {object} map[string]string "User not found"
// @Router /admin/users/{id} [put]
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id", "user")
	if !ok {
		return
	}

	var req models.AdminUserRequest
	if err := validation.DecodeAndValidate(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.adminService.UpdateUser(r.Context(), id, &req)
	if err != nil {
		h.RespondServiceError(w, err, "failed to update user")
		return
	}

	h.RespondJSON(w, http.StatusOK, user)
}

// DeleteUser handles DELETE /admin/users/{id}
// @Summary Delete a user
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string "Cannot delete admin user"
// @Failure 404 {object} map[string]string "User not found"
// @Router /admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id", "user")
	if !ok {
		return
	}

	if err := h.adminService.DeleteUser(r.Context(), id); err != nil {
		h.RespondServiceError(w, err, "failed to delete user")
		return
	}

	h.RespondMessage(w, http.StatusOK, "user deleted successfully")
}

// DeactivateUser handles PUT /admin/users/{id}/deactivate
// @Summary Deactivate a user
// @Description Deactivated users cannot sign in and their sessions are revoked
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.UserResponse
// @Failure 403 {object} map[string]string "Admin accounts cannot be deactivated"
// @Router /admin/users/{id}/deactivate [put]
func (h *AdminHandler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	h.setUserActive(w, r, false)
}

// ReactivateUser handles PUT /admin/users/{id}/reactivate
// @Summary Reactivate a user
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.UserResponse
// @Router /admin/users/{id}/reactivate [put]
func (h *AdminHandler) ReactivateUser(w http.ResponseWriter, r *http.Request) {
	h.setUserActive(w, r, true)
}

func (h *AdminHandler) setUserActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, ok := h.pathID(w, r, "id", "user")
	if !ok {
		return
	}

	user, err := h.adminService.SetUserActive(r.Context(), id, active)
	if err != nil {
		h.RespondServiceError(w, err, "failed to change user status")
		return
	}

	h.RespondJSON(w, http.StatusOK, user)
}

// ResetUserPassword handles POST /admin/users/{id}/reset-password
// @Summary Reset a user's password
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body models.AdminResetPasswordRequest true "New password"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string "User not found"
// @Router /admin/users/{id}/reset-password [post]
func (h *AdminHandler) ResetUserPassword(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id", "user")
	if !ok {
		return
	}

	var req models.AdminResetPasswordRequest
	if err := validation.DecodeAndValidate(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.adminService.ResetUserPassword(r.Context(), id, req.NewPassword); err != nil {
		h.RespondServiceError(w, err, "failed to reset user password")
		return
	}

	h.RespondMessage(w, http.StatusOK, "password reset successfully")
}

// Mentors

// ListMentors handles GET /admin/mentors
// @Summary List mentors
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Mentor
// @Router /admin/mentors [get]
func (h *AdminHandler) ListMentors(w http.ResponseWriter, r *http.Request) {
	mentors, err := h.adminService.ListMentors(r.Context())
	if err != nil {
		h.RespondServiceError(w, err, "failed to list mentors")
		return
	}

	h.RespondJSON(w, http.StatusOK, mentors)
}

// mentorForm reads the "mentor" JSON part and the optional "image" file
func (h *AdminHandler) mentorForm(w http.ResponseWriter, r *http.Request) (*models.MentorRequest, *services.Upload, func(), bool) {
	image, closeImage, err := formFile(r, "image")
	if err != nil {
		h.Logger.Warn("failed to parse mentor form", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, "failed to parse request")
		return nil, nil, nil, false
	}

	raw := r.FormValue("mentor")
	if raw == "" {
		closeImage()
		h.RespondError(w, http.StatusBadRequest, "mentor data is required")
		return nil, nil, nil, false
	}

	var req models.MentorRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		closeImage()
		h.RespondError(w, http.StatusBadRequest, "invalid mentor data")
		return nil, nil, nil, false
	}
	if err := validation.Validate(&req); err != nil {
		closeImage()
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return nil, nil, nil, false
	}

	return &req, image, closeImage, true
}

// CreateMentor handles POST /admin/mentors
// @Summary Create a mentor
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param mentor formData string true "Mentor JSON: name, email, password, expertise, bio"
// @Param image formData file false "Mentor image (jpeg, png, webp, gif, up to 5MB)"
// @Success 201 {object} models.Mentor
// @Failure 400 {object} map[string]string
// @Failure 413 {object} map[string]string "File too large"
// @Router /admin/mentors [post]
func (h *AdminHandler) CreateMentor(w http.ResponseWriter, r *http.Request) {
	req, image, closeImage, ok := h.mentorForm(w, r)
	if !ok {
		return
	}
	defer closeImage()

	mentor, err := h.adminService.CreateMentor(r.Context(), req, image)
	if err != nil {
		h.RespondServiceError(w, err, "failed to create mentor")
		return
	}

	h.RespondJSON(w, http.StatusCreated, mentor)
}

// UpdateMentor handles PUT /admin/mentors/{id}
// @Summary Update a mentor
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Mentor ID"
// @Param mentor formData string true "Mentor JSON: name, email, password, expertise, bio"
// @Param image formData file false "New mentor image"
// @Success 200 {object} models.Mentor
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string "Mentor not found"
// @Router /admin/mentors/{id} [put]
func (h *AdminHandler) UpdateMentor(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id", "mentor")
	if !ok {
		return
	}
	req, image, closeImage, ok := h.mentorForm(w, r)
	if !ok {
		return
	}
	defer closeImage()

	mentor, err := h.adminService.UpdateMentor(r.Context(), id, req, image)
	if err != nil {
		h.RespondServiceError(w, err, "failed to update mentor")
		return
	}

	h.RespondJSON(w, http.StatusOK, mentor)
}

// DeleteMentor handles DELETE /admin/mentors/{id}
// @Summary Delete a mentor
// @Description Delete a mentor profile and account. The mentor's courses stay without a mentor.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Mentor ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string "Mentor not found"
// @Router /admin/mentors/{id} [delete]
func (h *AdminHandler) DeleteMentor(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id", "mentor")
	if !ok {
		return
	}

	if err := h.adminService.DeleteMentor(r.Context(), id); err != nil {
		h.RespondServiceError(w, err, "failed to delete mentor")
		return
	}

	h.RespondMessage(w, http.StatusOK, "mentor deleted successfully")
}

// Courses

// ListCourses handles GET /admin/courses
// @Summary List courses
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Course
// @Router /admin/courses [get]
func (h *AdminHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.adminService.ListCourses(r.Context())
	if err != nil {
		h.RespondServiceError(w, err, "failed to list courses")
		return
	}

	h.RespondJSON(w, http.StatusOK, courses)
}

// CreateCourse handles POST /admin/courses
// @Summary Create a course
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CourseRequest true "Course"
// @Success 201 {object} models.Course
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string "Mentor not found"
// @Router /admin/courses [post]
func (h *AdminHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var req models.CourseRequest
	if err := validation.DecodeAndValidate(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	course, err := h.adminService.CreateCourse(r.Context(), &req)
	if err != nil {
		h.RespondServiceError(w, err, "failed to create course")
		return
	}

	h.RespondJSON(w, http.StatusCreated, course)
}

// UpdateCourse handles PUT /admin/courses/{id}
// @Summary Update a course
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body models.CourseRequest true "Course"
// @Success 200 {object} models.Course
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string "Course not found"
// @Router /admin/courses/{id} [put]
func (h *AdminHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id", "course")
	if !ok {
		return
	}

	var req models.CourseRequest
	if err := validation.DecodeAndValidate(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	course, err := h.adminService.UpdateCourse(r.Context(), id, &req)
	if err != nil {
		h.RespondServiceError(w, err, "failed to update course")
		return
	}

	h.RespondJSON(w, http.StatusOK, course)
}

// DeleteCourse handles DELETE /admin/courses/{id}
// @Summary Delete a course
// @Description Deletes the course with its modules, completions, enrollments and certificates. Payments are kept.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string "Course not found"
// @Router /admin/courses/{id} [delete]
func (h *AdminHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id", "course")
	if !ok {
		return
	}

	if err := h.adminService.DeleteCourse(r.Context(), id); err != nil {
		h.RespondServiceError(w, err, "failed to delete course")
		return
	}

	h.RespondMessage(w, http.StatusOK, "course deleted successfully")
}

// AssignMentor handles POST /admin/courses/{courseId}/mentor/{mentorId}
// @Summary Assign a mentor to a course
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Param mentorId path int true "Mentor ID"
// @Success 200 {object} models.Course
// @Failure 404 {object} map[string]string "Course or mentor not found"
// @Router /admin/courses/{courseId}/mentor/{mentorId} [post]
func (h *AdminHandler) AssignMentor(w http.ResponseWriter, r *http.Request) {
	courseID, ok := h.pathID(w, r, "courseId", "course")
	if !ok {
		return
	}
	mentorID, ok := h.pathID(w, r, "mentorId", "mentor")
	if !ok {
		return
	}

	course, err := h.adminService.AssignMentor(r.Context(), courseID, mentorID)
	if err != nil {
		h.RespondServiceError(w, err, "failed to assign mentor")
		return
	}

	h.RespondJSON(w, http.StatusOK, course)
}

// UploadCourseImage handles POST /admin/courses/upload-image
// @Summary Upload a course image
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Course image (jpeg, png, webp, gif, up to 5MB)"
// @Success 200 {object} map[string]string "Image URL"
// @Failure 400 {object} map[string]string
// @Failure 413 {object} map[string]string "File too large"
// @Router /admin/courses/upload-image [post]
func (h *AdminHandler) UploadCourseImage(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, "image", h.adminService.UploadCourseImage)
}

// Modules

// ListModules handles GET /admin/modules
// @Summary List modules
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Module
// @Router /admin/modules [get]
func (h *AdminHandler) ListModules(w http.ResponseWriter, r *http.Request) {
	modules, err := h.adminService.ListModules(r.Context())
	if err != nil {
		h.RespondServiceError(w, err, "failed to list modules")
		return
	}

	h.RespondJSON(w, http.StatusOK, modules)
}

// CreateModule handles POST /admin/courses/{courseId}/modules
// @Summary Add a module to a course
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Param request body models.ModuleRequest true "Module"
// @Success 201 {object} models.Module
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string "Course not found"
// @Router /admin/courses/{courseId}/modules [post]
func (h *AdminHandler) CreateModule(w http.ResponseWriter, r *http.Request) {
	courseID, ok := h.pathID(w, r, "courseId", "course")
	if !ok {
		return
	}

	var req models.ModuleRequest
	if err := validation.DecodeAndValidate(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	module, err := h.adminService.CreateModule(r.Context(), courseID, &req)
	if err != nil {
		h.RespondServiceError(w, err, "failed to create module")
		return
	}

	h.RespondJSON(w, http.StatusCreated, module)
}

// UpdateModule handles PUT /admin/modules/{id}
// @Summary Update a module
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Module ID"
// @Param request body models.ModuleRequest true "Module"
// @Success 200 {object} models.Module
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string "Module not found"
// @Router /admin/modules/{id} [put]
func (h *AdminHandler) UpdateModule(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id", "module")
	if !ok {
		return
	}

	var req models.ModuleRequest
	if err := validation.DecodeAndValidate(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	module, err := h.adminService.UpdateModule(r.Context(), id, &req)
	if err != nil {
		h.RespondServiceError(w, err, "failed to update module")
		return
	}

	h.RespondJSON(w, http.StatusOK, module)
}

// DeleteModule handles DELETE /admin/modules/{id}
// @Summary Delete a module
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Module ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string "Module not found"
// @Router /admin/modules/{id} [delete]
func (h *AdminHandler) DeleteModule(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id", "module")
	if !ok {
		return
	}

	if err := h.adminService.DeleteModule(r.Context(), id); err != nil {
		h.RespondServiceError(w, err, "failed to delete module")
		return
	}

	h.RespondMessage(w, http.StatusOK, "module deleted successfully")
}

// UploadModuleResource handles POST /admin/modules/upload-resource
// @Summary Upload a module resource
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Resource (pdf, zip, doc, docx, ppt, pptx, txt, up to 20MB)"
// @Success 200 {object} map[string]string "Resource URL"
// @Failure 400 {object} map[string]string
// @Failure 413 {object} map[string]string "File too large"
// @Router /admin/modules/upload-resource [post]
func (h *AdminHandler) UploadModuleResource(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, "file", h.adminService.UploadModuleResource)
}

func (h *AdminHandler) upload(w http.ResponseWriter, r *http.Request, field string, save func(context.Context, *services.Upload) (string, error)) {
	file, closeFile, err := formFile(r, field)
	if err != nil {
		h.Logger.Warn("failed to parse upload form", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, "failed to parse request")
		return
	}
	defer closeFile()

	url, err := save(r.Context(), file)
	if err != nil {
		h.RespondServiceError(w, err, "failed to upload file")
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"url": url})
}

// Reports

// Analytics handles GET /admin/analytics
// @Summary Platform analytics
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Analytics
// @Router /admin/analytics [get]
func (h *AdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.adminService.Analytics(r.Context())
	if err != nil {
		h.RespondServiceError(w, err, "failed to get analytics")
		return
	}

	h.RespondJSON(w, http.StatusOK, analytics)
}

// StudentProgress handles GET /admin/student-progress
// @Summary Student progress report
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.StudentProgressRow
// @Router /admin/student-progress [get]
func (h *AdminHandler) StudentProgress(w http.ResponseWriter, r *http.Request) {
	rows, err := h.adminService.StudentProgress(r.Context())
	if err != nil {
		h.RespondServiceError(w, err, "failed to get student progress")
		return
	}

	h.RespondJSON(w, http.StatusOK, rows)
}
