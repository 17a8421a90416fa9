package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/mentornest/backend/internal/models"
	"github.com/mentornest/backend/internal/services"
	authmw "github.com/mentornest/backend/libs/auth/middleware"
	"github.com/stretchr/testify/require"
)

// withUser stands in for the auth and role middlewares
func withUser(userID int, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(authmw.WithUser(r.Context(), userID, role)))
		})
	}
}

// anonymous passes requests through without a user
func anonymous(next http.Handler) http.Handler {
	return next
}

type routeRegistrar interface {
	RegisterRoutes(r chi.Router)
}

// serve routes a single request through a fresh router
func serve(h routeRegistrar, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// jsonRequest builds a request with body marshalled as JSON, strings are sent as is
func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["error"]
}

// mockAuthService is a mock implementation of AuthService
type mockAuthService struct {
	RegisterFunc       func(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error)
	LoginFunc          func(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	RefreshFunc        func(ctx context.Context, refreshToken string) (*models.AuthResponse, error)
	LogoutFunc         func(ctx context.Context, refreshToken string) error
	MeFunc             func(ctx context.Context, userID int) (*models.UserResponse, error)
	UpdateProfileFunc  func(ctx context.Context, userID int, req *models.UpdateProfileRequest) (*models.ProfileUpdateResponse, error)
	ForgotPasswordFunc func(ctx context.Context, email string) error
	ResetPasswordFunc  func(ctx context.Context, req *models.ResetPasswordRequest) error
}

func (m *mockAuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	return m.RegisterFunc(ctx, req)
}

func (m *mockAuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	return m.LoginFunc(ctx, req)
}

func (m *mockAuthService) Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error) {
	return m.RefreshFunc(ctx, refreshToken)
}

func (m *mockAuthService) Logout(ctx context.Context, refreshToken string) error {
	if m.LogoutFunc == nil {
		return nil
	}
	return m.LogoutFunc(ctx, refreshToken)
}

func (m *mockAuthService) Me(ctx context.Context, userID int) (*models.UserResponse, error) {
	return m.MeFunc(ctx, userID)
}

func (m *mockAuthService) UpdateProfile(ctx context.Context, userID int, req *models.UpdateProfileRequest) (*models.ProfileUpdateResponse, error) {
	return m.UpdateProfileFunc(ctx, userID, req)
}

func (m *mockAuthService) ForgotPassword(ctx context.Context, email string) error {
	return m.ForgotPasswordFunc(ctx, email)
}

func (m *mockAuthService) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error {
	return m.ResetPasswordFunc(ctx, req)
}

// mockStudentService is a mock implementation of StudentService
type mockStudentService struct {
	EnrollFunc              func(ctx context.Context, userID, courseID int) (*models.EnrollmentResponse, bool, error)
	MyCoursesFunc           func(ctx context.Context, userID int) ([]models.EnrollmentResponse, error)
	GetModulesFunc          func(ctx context.Context, userID, courseID int) ([]models.Module, error)
	ModulesWithStatusFunc   func(ctx context.Context, userID, courseID int) (*models.ModulesWithStatus, error)
	CompleteModuleFunc      func(ctx context.Context, userID, courseID, moduleID int) (*models.EnrollmentResponse, error)
	ProgressFunc            func(ctx context.Context, userID, courseID int) (*models.ProgressResponse, error)
	CertificateFunc         func(ctx context.Context, userID, courseID int) (*models.Certificate, error)
	DownloadCertificateFunc func(ctx context.Context, userID, courseID int) ([]byte, error)
	CertificatesFunc        func(ctx context.Context, userID int) ([]models.Certificate, error)
}

func (m *mockStudentService) Enroll(ctx context.Context, userID, courseID int) (*models.EnrollmentResponse, bool, error) {
	return m.EnrollFunc(ctx, userID, courseID)
}

func (m *mockStudentService) MyCourses(ctx context.Context, userID int) ([]models.EnrollmentResponse, error) {
	return m.MyCoursesFunc(ctx, userID)
}

func (m *mockStudentService) GetModules(ctx context.Context, userID, courseID int) ([]models.Module, error) {
	return m.GetModulesFunc(ctx, userID, courseID)
}

func (m *mockStudentService) ModulesWithStatus(ctx context.Context, userID, courseID int) (*models.ModulesWithStatus, error) {
	return m.ModulesWithStatusFunc(ctx, userID, courseID)
}

func (m *mockStudentService) CompleteModule(ctx context.Context, userID, courseID, moduleID int) (*models.EnrollmentResponse, error) {
	return m.CompleteModuleFunc(ctx, userID, courseID, moduleID)
}

func (m *mockStudentService) Progress(ctx context.Context, userID, courseID int) (*models.ProgressResponse, error) {
	return m.ProgressFunc(ctx, userID, courseID)
}

func (m *mockStudentService) Certificate(ctx context.Context, userID, courseID int) (*models.Certificate, error) {
	return m.CertificateFunc(ctx, userID, courseID)
}

func (m *mockStudentService) DownloadCertificate(ctx context.Context, userID, courseID int) ([]byte, error) {
	return m.DownloadCertificateFunc(ctx, userID, courseID)
}

func (m *mockStudentService) Certificates(ctx context.Context, userID int) ([]models.Certificate, error) {
	return m.CertificatesFunc(ctx, userID)
}

// mockPaymentService is a mock implementation of PaymentService
type mockPaymentService struct {
	CreateOrderFunc   func(ctx context.Context, userID int, req *models.CreateOrderRequest) (*models.OrderResponse, error)
	VerifyPaymentFunc func(ctx context.Context, userID int, req *models.VerifyPaymentRequest) (*models.Payment, error)
	CheckFunc         func(ctx context.Context, userID, courseID int) (*models.PaymentCheckResponse, error)
	EnrollFreeFunc    func(ctx context.Context, userID, courseID int) (*models.EnrollmentResponse, bool, error)
	UserPaymentsFunc  func(ctx context.Context, userID int) ([]models.Payment, error)
}

func (m *mockPaymentService) CreateOrder(ctx context.Context, userID int, req *models.CreateOrderRequest) (*models.OrderResponse, error) {
	return m.CreateOrderFunc(ctx, userID, req)
}

func (m *mockPaymentService) VerifyPayment(ctx context.Context, userID int, req *models.VerifyPaymentRequest) (*models.Payment, error) {
	return m.VerifyPaymentFunc(ctx, userID, req)
}

func (m *mockPaymentService) Check(ctx context.Context, userID, courseID int) (*models.PaymentCheckResponse, error) {
	return m.CheckFunc(ctx, userID, courseID)
}

func (m *mockPaymentService) EnrollFree(ctx context.Context, userID, courseID int) (*models.EnrollmentResponse, bool, error) {
	return m.EnrollFreeFunc(ctx, userID, courseID)
}

func (m *mockPaymentService) UserPayments(ctx context.Context, userID int) ([]models.Payment, error) {
	return m.UserPaymentsFunc(ctx, userID)
}

// mockCourseService is a mock implementation of CourseService
type mockCourseService struct {
	GetAllFunc     func(ctx context.Context, search, category string) ([]models.Course, error)
	GetByIDFunc    func(ctx context.Context, id int) (*models.Course, error)
	GetModulesFunc func(ctx context.Context, courseID int) ([]models.Module, error)
}

func (m *mockCourseService) GetAll(ctx context.Context, search, category string) ([]models.Course, error) {
	return m.GetAllFunc(ctx, search, category)
}

func (m *mockCourseService) GetByID(ctx context.Context, id int) (*models.Course, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockCourseService) GetModules(ctx context.Context, courseID int) ([]models.Module, error) {
	return m.GetModulesFunc(ctx, courseID)
}

// mockMentorService is a mock implementation of MentorService
type mockMentorService struct {
	GetAllFunc     func(ctx context.Context) ([]models.Mentor, error)
	GetByIDFunc    func(ctx context.Context, id int) (*models.Mentor, error)
	GetCoursesFunc func(ctx context.Context, mentorID int) ([]models.Course, error)
	DashboardFunc  func(ctx context.Context, userID int) (*models.MentorDashboard, error)
}

func (m *mockMentorService) GetAll(ctx context.Context) ([]models.Mentor, error) {
	return m.GetAllFunc(ctx)
}

func (m *mockMentorService) GetByID(ctx context.Context, id int) (*models.Mentor, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockMentorService) GetCourses(ctx context.Context, mentorID int) ([]models.Course, error) {
	return m.GetCoursesFunc(ctx, mentorID)
}

func (m *mockMentorService) Dashboard(ctx context.Context, userID int) (*models.MentorDashboard, error) {
	return m.DashboardFunc(ctx, userID)
}

// mockAdminService is a mock implementation of AdminService.
// Only the functions a test sets are expected to be called.
type mockAdminService struct {
	ListUsersFunc            func(ctx context.Context) ([]models.UserResponse, error)
	CreateUserFunc           func(ctx context.Context, req *models.AdminUserRequest) (*models.UserResponse, error)
	UpdateUserFunc           func(ctx context.Context, id int, req *models.AdminUserRequest) (*models.UserResponse, error)
	DeleteUserFunc           func(ctx context.Context, id int) error
	SetUserActiveFunc        func(ctx context.Context, id int, active bool) (*models.UserResponse, error)
	ResetUserPasswordFunc    func(ctx context.Context, id int, newPassword string) error
	ListMentorsFunc          func(ctx context.Context) ([]models.Mentor, error)
	CreateMentorFunc         func(ctx context.Context, req *models.MentorRequest, image *services.Upload) (*models.Mentor, error)
	UpdateMentorFunc         func(ctx context.Context, id int, req *models.MentorRequest, image *services.Upload) (*models.Mentor, error)
	DeleteMentorFunc         func(ctx context.Context, id int) error
	ListCoursesFunc          func(ctx context.Context) ([]models.Course, error)
	CreateCourseFunc         func(ctx context.Context, req *models.CourseRequest) (*models.Course, error)
	UpdateCourseFunc         func(ctx context.Context, id int, req *models.CourseRequest) (*models.Course, error)
	DeleteCourseFunc         func(ctx context.Context, id int) error
	AssignMentorFunc         func(ctx context.Context, courseID, mentorID int) (*models.Course, error)
	UploadCourseImageFunc    func(ctx context.Context, image *services.Upload) (string, error)
	ListModulesFunc          func(ctx context.Context) ([]models.Module, error)
	CreateModuleFunc         func(ctx context.Context, courseID int, req *models.ModuleRequest) (*models.Module, error)
	UpdateModuleFunc         func(ctx context.Context, id int, req *models.ModuleRequest) (*models.Module, error)
	DeleteModuleFunc         func(ctx context.Context, id int) error
	UploadModuleResourceFunc func(ctx context.Context, file *services.Upload) (string, error)
	AnalyticsFunc            func(ctx context.Context) (*models.Analytics, error)
	StudentProgressFunc      func(ctx context.Context) ([]models.StudentProgressRow, error)
}

func (m *mockAdminService) ListUsers(ctx context.Context) ([]models.UserResponse, error) {
	return m.ListUsersFunc(ctx)
}

func (m *mockAdminService) CreateUser(ctx context.Context, req *models.AdminUserRequest) (*models.UserResponse, error) {
	return m.CreateUserFunc(ctx, req)
}

func (m *mockAdminService) UpdateUser(ctx context.Context, id int, req *models.AdminUserRequest) (*models.UserResponse, error) {
	return m.UpdateUserFunc(ctx, id, req)
}

func (m *mockAdminService) DeleteUser(ctx context.Context, id int) error {
	return m.DeleteUserFunc(ctx, id)
}

func (m *mockAdminService) SetUserActive(ctx context.Context, id int, active bool) (*models.UserResponse, error) {
	return m.SetUserActiveFunc(ctx, id, active)
}

func (m *mockAdminService) ResetUserPassword(ctx context.Context, id int, newPassword string) error {
	return m.ResetUserPasswordFunc(ctx, id, newPassword)
}

func (m *mockAdminService) ListMentors(ctx context.Context) ([]models.Mentor, error) {
	return m.ListMentorsFunc(ctx)
}

func (m *mockAdminService) CreateMentor(ctx context.Context, req *models.MentorRequest, image *services.Upload) (*models.Mentor, error) {
	return m.CreateMentorFunc(ctx, req, image)
}

func (m *mockAdminService) UpdateMentor(ctx context.Context, id int, req *models.MentorRequest, image *services.Upload) (*models.Mentor, error) {
	return m.UpdateMentorFunc(ctx, id, req, image)
}

func (m *mockAdminService) DeleteMentor(ctx context.Context, id int) error {
	return m.DeleteMentorFunc(ctx, id)
}

func (m *mockAdminService) ListCourses(ctx context.Context) ([]models.Course, error) {
	return m.ListCoursesFunc(ctx)
}

func (m *mockAdminService) CreateCourse(ctx context.Context, req *models.CourseRequest) (*models.Course, error) {
	return m.CreateCourseFunc(ctx, req)
}

func (m *mockAdminService) UpdateCourse(ctx context.Context, id int, req *models.CourseRequest) (*models.Course, error) {
	return m.UpdateCourseFunc(ctx, id, req)
}

func (m *mockAdminService) DeleteCourse(ctx context.Context, id int) error {
	return m.DeleteCourseFunc(ctx, id)
}

func (m *mockAdminService) AssignMentor(ctx context.Context, courseID, mentorID int) (*models.Course, error) {
	return m.AssignMentorFunc(ctx, courseID, mentorID)
}

func (m *mockAdminService) UploadCourseImage(ctx context.Context, image *services.Upload) (string, error) {
	return m.UploadCourseImageFunc(ctx, image)
}

func (m *mockAdminService) ListModules(ctx context.Context) ([]models.Module, error) {
	return m.ListModulesFunc(ctx)
}

func (m *mockAdminService) CreateModule(ctx context.Context, courseID int, req *models.ModuleRequest) (*models.Module, error) {
	return m.CreateModuleFunc(ctx, courseID, req)
}

func (m *mockAdminService) UpdateModule(ctx context.Context, id int, req *models.ModuleRequest) (*models.Module, error) {
	return m.UpdateModuleFunc(ctx, id, req)
}

func (m *mockAdminService) DeleteModule(ctx context.Context, id int) error {
	return m.DeleteModuleFunc(ctx, id)
}

func (m *mockAdminService) UploadModuleResource(ctx context.Context, file *services.Upload) (string, error) {
	return m.UploadModuleResourceFunc(ctx, file)
}

func (m *mockAdminService) Analytics(ctx context.Context) (*models.Analytics, error) {
	return m.AnalyticsFunc(ctx)
}

func (m *mockAdminService) StudentProgress(ctx context.Context) ([]models.StudentProgressRow, error) {
	return m.StudentProgressFunc(ctx)
}

// mockPinger is a mock implementation of Pinger
type mockPinger struct {
	err error
}

func (m *mockPinger) PingContext(ctx context.Context) error {
	return m.err
}

// mockTokenCleaner is a mock implementation of TokenCleaner
type mockTokenCleaner struct {
	result *models.TokenCleanupResult
	err    error
}

func (m *mockTokenCleaner) CleanTokens(ctx context.Context) (*models.TokenCleanupResult, error) {
	return m.result, m.err
}
