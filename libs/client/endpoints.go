package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mentornest/backend/internal/models"
)

// Auth

// Register creates an account and stores the returned session
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	c.setSession(resp.Token, resp.RefreshToken)
	return &resp, nil
}

// Login authenticates and stores the returned session
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	req := models.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	c.setSession(resp.Token, resp.RefreshToken)
	return &resp, nil
}

// RefreshToken exchanges the held refresh token for a new session.
// It is never called automatically.
func (c *Client) RefreshToken(ctx context.Context) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	req := models.RefreshRequest{RefreshToken: c.storedRefreshToken()}
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", req, &resp); err != nil {
		return nil, err
	}
	c.setSession(resp.Token, resp.RefreshToken)
	return &resp, nil
}

// Logout revokes the refresh token on the server. The local session is
// dropped even when the call fails.
func (c *Client) Logout(ctx context.Context) error {
	req := models.RefreshRequest{RefreshToken: c.storedRefreshToken()}
	err := c.do(ctx, http.MethodPost, "/auth/logout", req, nil)
	c.clearSession()
	return err
}

// Me fetches the signed-in user
func (c *Client) Me(ctx context.Context) (*models.UserResponse, error) {
	var user models.UserResponse
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile changes name and/or password and stores the reissued token
func (c *Client) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (*models.ProfileUpdateResponse, error) {
	var resp models.ProfileUpdateResponse
	if err := c.do(ctx, http.MethodPut, "/auth/profile", req, &resp); err != nil {
		return nil, err
	}
	c.setSession(resp.Token, "")
	return &resp, nil
}

// ForgotPassword asks the server to e-mail a reset link
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/auth/forgot-password", models.ForgotPasswordRequest{Email: email}, nil)
}

// ResetPassword completes the reset flow with the e-mailed token
func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	req := models.ResetPasswordRequest{Token: token, Password: password}
	return c.do(ctx, http.MethodPost, "/auth/reset-password", req, nil)
}

// Courses

// Courses lists the catalog, optionally filtered server side
func (c *Client) Courses(ctx context.Context, search, category string) ([]models.Course, error) {
	query := url.Values{}
	if search != "" {
		query.Set("search", search)
	}
	if category != "" {
		query.Set("category", category)
	}
	path := "/courses"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var courses []models.Course
	if err := c.do(ctx, http.MethodGet, path, nil, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// Course fetches one course
func (c *Client) Course(ctx context.Context, id int) (*models.Course, error) {
	var course models.Course
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/courses/%d", id), nil, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// CourseModules fetches the public outline of a course
func (c *Client) CourseModules(ctx context.Context, id int) ([]models.Module, error) {
	var modules []models.Module
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/courses/%d/modules", id), nil, &modules); err != nil {
		return nil, err
	}
	return modules, nil
}

// Mentors

// Mentors lists mentor profiles
func (c *Client) Mentors(ctx context.Context) ([]models.Mentor, error) {
	var mentors []models.Mentor
	if err := c.do(ctx, http.MethodGet, "/mentors", nil, &mentors); err != nil {
		return nil, err
	}
	return mentors, nil
}

// MentorDashboard fetches the signed-in mentor's course statistics
func (c *Client) MentorDashboard(ctx context.Context) (*models.MentorDashboard, error) {
	var dashboard models.MentorDashboard
	if err := c.do(ctx, http.MethodGet, "/mentor/dashboard", nil, &dashboard); err != nil {
		return nil, err
	}
	return &dashboard, nil
}

// Student

// MyCourses lists the signed-in student's enrollments
func (c *Client) MyCourses(ctx context.Context) ([]models.EnrollmentResponse, error) {
	var enrollments []models.EnrollmentResponse
	if err := c.do(ctx, http.MethodGet, "/student/my-courses", nil, &enrollments); err != nil {
		return nil, err
	}
	return enrollments, nil
}

// Enroll enrolls the signed-in student in a course
func (c *Client) Enroll(ctx context.Context, courseID int) (*models.EnrollmentResponse, error) {
	var enrollment models.EnrollmentResponse
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/student/enroll/%d", courseID), nil, &enrollment); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Progress fetches the raw completion fraction of a course
func (c *Client) Progress(ctx context.Context, courseID int) (float64, error) {
	var resp models.ProgressResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/student/courses/%d/progress", courseID), nil, &resp); err != nil {
		return 0, err
	}
	return resp.Progress, nil
}

// ModulesWithStatus fetches a course's modules with the student's completions
func (c *Client) ModulesWithStatus(ctx context.Context, courseID int) (*models.ModulesWithStatus, error) {
	var resp models.ModulesWithStatus
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/student/courses/%d/modules-with-status", courseID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CompleteModule marks a module as watched
func (c *Client) CompleteModule(ctx context.Context, courseID, moduleID int) (*models.EnrollmentResponse, error) {
	var enrollment models.EnrollmentResponse
	path := fmt.Sprintf("/student/courses/%d/modules/%d/complete", courseID, moduleID)
	if err := c.do(ctx, http.MethodPost, path, nil, &enrollment); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Certificate fetches the certificate of a completed course. The server
// answers 400 until every module is complete.
func (c *Client) Certificate(ctx context.Context, courseID int) (*models.Certificate, error) {
	var cert models.Certificate
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/student/courses/%d/certificate", courseID), nil, &cert); err != nil {
		return nil, err
	}
	return &cert, nil
}

// DownloadCertificate fetches the certificate PNG
func (c *Client) DownloadCertificate(ctx context.Context, courseID int) ([]byte, error) {
	return c.doRaw(ctx, http.MethodGet, fmt.Sprintf("/student/courses/%d/certificate/download", courseID))
}

// Certificates lists every certificate of the signed-in student
func (c *Client) Certificates(ctx context.Context) ([]models.Certificate, error) {
	var certs []models.Certificate
	if err := c.do(ctx, http.MethodGet, "/student/certificates", nil, &certs); err != nil {
		return nil, err
	}
	return certs, nil
}

// Payment

// CreateOrder opens a gateway order for a paid course
func (c *Client) CreateOrder(ctx context.Context, courseID int) (*models.OrderResponse, error) {
	var order models.OrderResponse
	req := models.CreateOrderRequest{CourseID: courseID}
	if err := c.do(ctx, http.MethodPost, "/payment/razorpay/order", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// VerifyPayment relays the checkout result to the server
func (c *Client) VerifyPayment(ctx context.Context, req models.VerifyPaymentRequest) (*models.Payment, error) {
	var payment models.Payment
	if err := c.do(ctx, http.MethodPost, "/payment/razorpay/verify", req, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// CheckPayment tells whether the signed-in user has paid for a course
func (c *Client) CheckPayment(ctx context.Context, courseID int) (*models.PaymentCheckResponse, error) {
	var resp models.PaymentCheckResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/payment/check/%d", courseID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EnrollFree enrolls in a course that costs nothing
func (c *Client) EnrollFree(ctx context.Context, courseID int) (*models.EnrollmentResponse, error) {
	var enrollment models.EnrollmentResponse
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/payment/enroll-free/%d", courseID), nil, &enrollment); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Admin

// AdminUsers lists every user
func (c *Client) AdminUsers(ctx context.Context) ([]models.UserResponse, error) {
	var users []models.UserResponse
	if err := c.do(ctx, http.MethodGet, "/admin/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// AdminMentors lists every mentor
func (c *Client) AdminMentors(ctx context.Context) ([]models.Mentor, error) {
	var mentors []models.Mentor
	if err := c.do(ctx, http.MethodGet, "/admin/mentors", nil, &mentors); err != nil {
		return nil, err
	}
	return mentors, nil
}

// AdminCourses lists every course
func (c *Client) AdminCourses(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := c.do(ctx, http.MethodGet, "/admin/courses", nil, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// AdminModules lists every module
func (c *Client) AdminModules(ctx context.Context) ([]models.Module, error) {
	var modules []models.Module
	if err := c.do(ctx, http.MethodGet, "/admin/modules", nil, &modules); err != nil {
		return nil, err
	}
	return modules, nil
}

// StudentProgress fetches the admin progress report
func (c *Client) StudentProgress(ctx context.Context) ([]models.StudentProgressRow, error) {
	var rows []models.StudentProgressRow
	if err := c.do(ctx, http.MethodGet, "/admin/student-progress", nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Analytics fetches the admin dashboard summary
func (c *Client) Analytics(ctx context.Context) (*models.Analytics, error) {
	var analytics models.Analytics
	if err := c.do(ctx, http.MethodGet, "/admin/analytics", nil, &analytics); err != nil {
		return nil, err
	}
	return &analytics, nil
}

// CreateCourse adds a course to the catalog
func (c *Client) CreateCourse(ctx context.Context, req models.CourseRequest) (*models.Course, error) {
	var course models.Course
	if err := c.do(ctx, http.MethodPost, "/admin/courses", req, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// UpdateCourse replaces a course's editable fields
func (c *Client) UpdateCourse(ctx context.Context, id int, req models.CourseRequest) (*models.Course, error) {
	var course models.Course
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/admin/courses/%d", id), req, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// DeleteCourse removes a course with its modules and enrollments
func (c *Client) DeleteCourse(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/admin/courses/%d", id), nil, nil)
}

// CreateModule appends a module to a course
func (c *Client) CreateModule(ctx context.Context, courseID int, req models.ModuleRequest) (*models.Module, error) {
	var module models.Module
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/admin/courses/%d/modules", courseID), req, &module); err != nil {
		return nil, err
	}
	return &module, nil
}

// UpdateModule replaces a module's editable fields
func (c *Client) UpdateModule(ctx context.Context, id int, req models.ModuleRequest) (*models.Module, error) {
	var module models.Module
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/admin/modules/%d", id), req, &module); err != nil {
		return nil, err
	}
	return &module, nil
}

// DeleteModule removes a module
func (c *Client) DeleteModule(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/admin/modules/%d", id), nil, nil)
}

// UploadCourseImage uploads a course cover and returns its public URL
func (c *Client) UploadCourseImage(ctx context.Context, file File) (string, error) {
	return c.upload(ctx, "/admin/courses/upload-image", "image", models.ImageUploadRule, file)
}

// UploadModuleResource uploads a module attachment and returns its public URL
func (c *Client) UploadModuleResource(ctx context.Context, file File) (string, error) {
	return c.upload(ctx, "/admin/modules/upload-resource", "file", models.ResourceUploadRule, file)
}
