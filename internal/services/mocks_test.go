package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/mentornest/backend/internal/certificate"
	"github.com/mentornest/backend/internal/models"
	"github.com/mentornest/backend/internal/payment"
)

// mockUserRepository is a mock implementation of the user repository interfaces
type mockUserRepository struct {
	user                *models.User
	users               []models.User
	err                 error
	createErr           error
	existsByEmailResult bool
	existsByEmailError  error
	existsByRoleResult  bool
	existsByRoleError   error
	updateErr           error
	updatePasswordErr   error
	setActiveErr        error
	deleteErr           error
	roleCounts          map[models.Role]int
	countErr            error

	created         *models.User
	updated         *models.User
	updatedPassword string
	deletedID       int
	active          *bool
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = 1
	m.created = user
	return nil
}

func (m *mockUserRepository) get() (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.user == nil {
		return nil, fmt.Errorf("user not found")
	}
	u := *m.user
	return &u, nil
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.get()
}

func (m *mockUserRepository) GetByID(ctx context.Context, userID int) (*models.User, error) {
	return m.get()
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailError != nil {
		return false, m.existsByEmailError
	}
	return m.existsByEmailResult, nil
}

func (m *mockUserRepository) ExistsByRole(ctx context.Context, role models.Role) (bool, error) {
	if m.existsByRoleError != nil {
		return false, m.existsByRoleError
	}
	return m.existsByRoleResult, nil
}

func (m *mockUserRepository) GetNonAdmins(ctx context.Context) ([]models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.users, nil
}

func (m *mockUserRepository) Update(ctx context.Context, user *models.User) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updated = user
	return nil
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, userID int, passwordHash string) error {
	if m.updatePasswordErr != nil {
		return m.updatePasswordErr
	}
	m.updatedPassword = passwordHash
	return nil
}

func (m *mockUserRepository) SetActive(ctx context.Context, id int, active bool) error {
	if m.setActiveErr != nil {
		return m.setActiveErr
	}
	m.active = &active
	return nil
}

func (m *mockUserRepository) Delete(ctx context.Context, id int) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedID = id
	return nil
}

func (m *mockUserRepository) CountByRole(ctx context.Context) (map[models.Role]int, error) {
	if m.countErr != nil {
		return nil, m.countErr
	}
	return m.roleCounts, nil
}

// mockUserTokenRepository is a mock implementation of UserTokenRepository
type mockUserTokenRepository struct {
	mu                sync.Mutex
	token             *models.UserToken
	err               error
	createErr         error
	updateTokenErr    error
	deleteErr         error
	deleteByUserErr   error
	deletedCount      int
	deleteExpiredErr  error
	created           []string
	deletedTokens     []string
	deletedForUserIDs []int
	expiryTime        time.Time
}

func (m *mockUserTokenRepository) Create(ctx context.Context, userToken *models.UserToken) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, userToken.Token)
	return nil
}

func (m *mockUserTokenRepository) GetByToken(ctx context.Context, token string) (*models.UserToken, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.token == nil {
		return nil, fmt.Errorf("refresh token not found")
	}
	return m.token, nil
}

func (m *mockUserTokenRepository) UpdateToken(ctx context.Context, oldToken, newToken string, userID int) error {
	return m.updateTokenErr
}

func (m *mockUserTokenRepository) DeleteByToken(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletedTokens = append(m.deletedTokens, token)
	return m.deleteErr
}

func (m *mockUserTokenRepository) DeleteByUserID(ctx context.Context, userID int) error {
	if m.deleteByUserErr != nil {
		return m.deleteByUserErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletedForUserIDs = append(m.deletedForUserIDs, userID)
	return nil
}

func (m *mockUserTokenRepository) DeleteExpiredTokens(ctx context.Context, expiryTime time.Time) (int, error) {
	if m.deleteExpiredErr != nil {
		return 0, m.deleteExpiredErr
	}
	m.expiryTime = expiryTime
	return m.deletedCount, nil
}

func (m *mockUserTokenRepository) deletedTokenCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.deletedTokens)
}

// mockPasswordResetRepository is a mock implementation of PasswordResetRepository
type mockPasswordResetRepository struct {
	token            *models.PasswordResetToken
	err              error
	createErr        error
	deleteErr        error
	deletedCount     int
	deleteExpiredErr error
	created          *models.PasswordResetToken
	deletedUserID    int
}

func (m *mockPasswordResetRepository) Create(ctx context.Context, token *models.PasswordResetToken) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = token
	return nil
}

func (m *mockPasswordResetRepository) GetByHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.token == nil || m.token.TokenHash != tokenHash {
		return nil, fmt.Errorf("reset token not found")
	}
	return m.token, nil
}

func (m *mockPasswordResetRepository) DeleteByUserID(ctx context.Context, userID int) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedUserID = userID
	return nil
}

func (m *mockPasswordResetRepository) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	if m.deleteExpiredErr != nil {
		return 0, m.deleteExpiredErr
	}
	return m.deletedCount, nil
}

// mockMentorRepository is a mock implementation of the mentor repository interfaces
type mockMentorRepository struct {
	mentor        *models.Mentor
	mentors       []models.Mentor
	err           error
	createErr     error
	updateErr     error
	coursesCount  int
	studentsCount int
	countErr      error
	created       *models.Mentor
	updated       *models.Mentor
}

func (m *mockMentorRepository) get() (*models.Mentor, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.mentor == nil {
		return nil, fmt.Errorf("mentor not found")
	}
	mentor := *m.mentor
	return &mentor, nil
}

func (m *mockMentorRepository) Create(ctx context.Context, mentor *models.Mentor) error {
	if m.createErr != nil {
		return m.createErr
	}
	mentor.ID = 7
	m.created = mentor
	if m.mentor == nil {
		m.mentor = mentor
	}
	return nil
}

func (m *mockMentorRepository) GetAll(ctx context.Context) ([]models.Mentor, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.mentors, nil
}

func (m *mockMentorRepository) GetByID(ctx context.Context, id int) (*models.Mentor, error) {
	return m.get()
}

func (m *mockMentorRepository) GetByUserID(ctx context.Context, userID int) (*models.Mentor, error) {
	return m.get()
}

func (m *mockMentorRepository) CountCourses(ctx context.Context, mentorID int) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return m.coursesCount, nil
}

func (m *mockMentorRepository) CountStudents(ctx context.Context, mentorID int) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return m.studentsCount, nil
}

func (m *mockMentorRepository) Update(ctx context.Context, mentor *models.Mentor) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updated = mentor
	return nil
}

// mockCourseRepository is a mock implementation of the course repository interfaces
type mockCourseRepository struct {
	course       *models.Course
	courses      []models.Course
	err          error
	getAllErr    error
	createErr    error
	updateErr    error
	deleteErr    error
	assignErr    error
	count        int
	countErr     error
	getAllCalls  int
	mentorFilter *int
	created      *models.Course
	updated      *models.Course
	assigned     [2]int
	deletedID    int
}

func (m *mockCourseRepository) GetAll(ctx context.Context, mentorID *int) ([]models.Course, error) {
	m.getAllCalls++
	m.mentorFilter = mentorID
	if m.getAllErr != nil {
		return nil, m.getAllErr
	}
	return m.courses, nil
}

func (m *mockCourseRepository) GetByID(ctx context.Context, id int) (*models.Course, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.course == nil {
		return nil, fmt.Errorf("course not found")
	}
	c := *m.course
	return &c, nil
}

func (m *mockCourseRepository) Create(ctx context.Context, course *models.Course) error {
	if m.createErr != nil {
		return m.createErr
	}
	course.ID = 10
	m.created = course
	if m.course == nil {
		m.course = course
	}
	return nil
}

func (m *mockCourseRepository) Update(ctx context.Context, course *models.Course) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updated = course
	return nil
}

func (m *mockCourseRepository) AssignMentor(ctx context.Context, courseID, mentorID int) error {
	if m.assignErr != nil {
		return m.assignErr
	}
	m.assigned = [2]int{courseID, mentorID}
	return nil
}

func (m *mockCourseRepository) Delete(ctx context.Context, id int) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedID = id
	return nil
}

func (m *mockCourseRepository) Count(ctx context.Context) (int, error) {
	return m.count, m.countErr
}

// mockModuleRepository is a mock implementation of the module repository interfaces
type mockModuleRepository struct {
	module    *models.Module
	modules   []models.Module
	err       error
	listErr   error
	createErr error
	updateErr error
	deleteErr error
	count     int
	countErr  error
	created   *models.Module
	updated   *models.Module
}

func (m *mockModuleRepository) GetByCourseID(ctx context.Context, courseID int) ([]models.Module, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	modules := make([]models.Module, len(m.modules))
	copy(modules, m.modules)
	return modules, nil
}

func (m *mockModuleRepository) GetAll(ctx context.Context) ([]models.Module, error) {
	return m.GetByCourseID(ctx, 0)
}

func (m *mockModuleRepository) GetByID(ctx context.Context, id int) (*models.Module, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.module == nil {
		return nil, fmt.Errorf("module not found")
	}
	module := *m.module
	return &module, nil
}

func (m *mockModuleRepository) Create(ctx context.Context, module *models.Module) error {
	if m.createErr != nil {
		return m.createErr
	}
	module.ID = 20
	m.created = module
	return nil
}

func (m *mockModuleRepository) Update(ctx context.Context, module *models.Module) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updated = module
	return nil
}

func (m *mockModuleRepository) Delete(ctx context.Context, id int) error {
	return m.deleteErr
}

func (m *mockModuleRepository) Count(ctx context.Context) (int, error) {
	return m.count, m.countErr
}

// mockEnrollmentRepository is a mock implementation of the enrollment repository interfaces
type mockEnrollmentRepository struct {
	enrollment   *models.Enrollment
	err          error
	details      []models.EnrollmentDetails
	detailsErr   error
	createErr    error
	markErr      error
	completedIDs []int
	completedErr error
	setCertErr   error
	stats        *models.EnrollmentStats
	statsErr     error

	created        *models.Enrollment
	marked         []int
	certificateURL string
	lastFilter     models.EnrollmentFilter
}

func (m *mockEnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if m.createErr != nil {
		return m.createErr
	}
	enrollment.ID = 30
	m.created = enrollment
	return nil
}

func (m *mockEnrollmentRepository) GetByUserAndCourse(ctx context.Context, userID, courseID int) (*models.Enrollment, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.enrollment == nil {
		return nil, fmt.Errorf("enrollment not found")
	}
	e := *m.enrollment
	return &e, nil
}

func (m *mockEnrollmentRepository) GetDetails(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetails, error) {
	m.lastFilter = filter
	if m.detailsErr != nil {
		return nil, m.detailsErr
	}
	return m.details, nil
}

func (m *mockEnrollmentRepository) MarkModuleCompleted(ctx context.Context, enrollmentID, moduleID int) error {
	if m.markErr != nil {
		return m.markErr
	}
	m.marked = append(m.marked, moduleID)
	return nil
}

func (m *mockEnrollmentRepository) GetCompletedModuleIDs(ctx context.Context, enrollmentID int) ([]int, error) {
	if m.completedErr != nil {
		return nil, m.completedErr
	}
	return m.completedIDs, nil
}

func (m *mockEnrollmentRepository) SetCertificateURL(ctx context.Context, enrollmentID int, url string) error {
	if m.setCertErr != nil {
		return m.setCertErr
	}
	m.certificateURL = url
	return nil
}

func (m *mockEnrollmentRepository) GetStats(ctx context.Context) (*models.EnrollmentStats, error) {
	if m.statsErr != nil {
		return nil, m.statsErr
	}
	return m.stats, nil
}

// mockPaymentRepository is a mock implementation of the payment repository interfaces
type mockPaymentRepository struct {
	payment          *models.Payment
	err              error
	completed        *models.Payment
	completedErr     error
	payments         []models.Payment
	createErr        error
	markCompletedErr error
	markFailedErr    error
	revenue          float64
	revenueErr       error

	created     *models.Payment
	completedID int
	failedID    int
}

func (m *mockPaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if m.createErr != nil {
		return m.createErr
	}
	payment.ID = 40
	m.created = payment
	return nil
}

func (m *mockPaymentRepository) GetByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.payment == nil {
		return nil, fmt.Errorf("payment not found")
	}
	p := *m.payment
	return &p, nil
}

func (m *mockPaymentRepository) GetCompleted(ctx context.Context, userID, courseID int) (*models.Payment, error) {
	if m.completedErr != nil {
		return nil, m.completedErr
	}
	if m.completed == nil {
		return nil, fmt.Errorf("payment not found")
	}
	return m.completed, nil
}

func (m *mockPaymentRepository) GetByUserID(ctx context.Context, userID int) ([]models.Payment, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.payments, nil
}

func (m *mockPaymentRepository) MarkCompleted(ctx context.Context, id int, paymentID, method string, paidAt time.Time) error {
	if m.markCompletedErr != nil {
		return m.markCompletedErr
	}
	m.completedID = id
	return nil
}

func (m *mockPaymentRepository) MarkFailed(ctx context.Context, id int) error {
	if m.markFailedErr != nil {
		return m.markFailedErr
	}
	m.failedID = id
	return nil
}

func (m *mockPaymentRepository) TotalRevenue(ctx context.Context) (float64, error) {
	return m.revenue, m.revenueErr
}

// mockCertificateRepository is a mock implementation of the certificate repository interfaces
type mockCertificateRepository struct {
	certificate  *models.Certificate
	err          error
	certificates []models.Certificate
	createErr    error
	count        int
	countErr     error
	created      *models.Certificate
	// winner becomes visible when Create fails, as if another request inserted it first
	winner *models.Certificate
}

func (m *mockCertificateRepository) Create(ctx context.Context, cert *models.Certificate) error {
	if m.createErr != nil {
		if m.winner != nil {
			m.certificate = m.winner
		}
		return m.createErr
	}
	cert.ID = 50
	m.created = cert
	return nil
}

func (m *mockCertificateRepository) GetByUserAndCourse(ctx context.Context, userID, courseID int) (*models.Certificate, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.certificate == nil {
		return nil, fmt.Errorf("certificate not found")
	}
	return m.certificate, nil
}

func (m *mockCertificateRepository) GetByUserID(ctx context.Context, userID int) ([]models.Certificate, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.certificates, nil
}

func (m *mockCertificateRepository) Count(ctx context.Context) (int, error) {
	return m.count, m.countErr
}

// mockMailer records queued e-mails
type mockMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *mockMailer) record(kind, to string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, kind+":"+to)
}

func (m *mockMailer) SendWelcome(ctx context.Context, to, name string) {
	m.record("welcome", to)
}

func (m *mockMailer) SendPasswordReset(ctx context.Context, to, name, link string) {
	m.record("reset:"+link, to)
}

func (m *mockMailer) SendPasswordResetConfirmation(ctx context.Context, to, name string) {
	m.record("reset-confirmation", to)
}

func (m *mockMailer) SendEnrollment(ctx context.Context, to, name, courseTitle string) {
	m.record("enrollment", to)
}

// mockCourseCache is a mock implementation of CourseCache
type mockCourseCache struct {
	courses       []models.Course
	hit           bool
	getErr        error
	setErr        error
	invalidateErr error
	stored        []models.Course
	invalidations int
}

func (m *mockCourseCache) GetCourses(ctx context.Context) ([]models.Course, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	return m.courses, m.hit, nil
}

func (m *mockCourseCache) SetCourses(ctx context.Context, courses []models.Course) error {
	m.stored = courses
	return m.setErr
}

func (m *mockCourseCache) Invalidate(ctx context.Context) error {
	m.invalidations++
	return m.invalidateErr
}

// mockStorage keeps files in memory
type mockStorage struct {
	files   map[string][]byte
	saveErr error
	readErr error
	deleted []string
}

func newMockStorage() *mockStorage {
	return &mockStorage{files: make(map[string][]byte)}
}

func (m *mockStorage) Save(folder, name string, r io.Reader) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	url := "/uploads/" + folder + "/" + name
	m.files[url] = data
	return url, nil
}

func (m *mockStorage) Read(url string) ([]byte, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	data, ok := m.files[url]
	if !ok {
		return nil, fmt.Errorf("file not found")
	}
	return data, nil
}

func (m *mockStorage) Delete(url string) error {
	m.deleted = append(m.deleted, url)
	delete(m.files, url)
	return nil
}

// mockRenderer returns fixed image bytes
type mockRenderer struct {
	image    []byte
	err      error
	rendered *certificate.Data
}

func (m *mockRenderer) Render(data certificate.Data) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.rendered = &data
	return m.image, nil
}

// mockGateway is a mock implementation of PaymentGateway
type mockGateway struct {
	order    *payment.Order
	err      error
	valid    bool
	amount   int64
	currency string
	receipt  string
}

func (m *mockGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*payment.Order, error) {
	m.amount = amount
	m.currency = currency
	m.receipt = receipt
	if m.err != nil {
		return nil, m.err
	}
	return m.order, nil
}

func (m *mockGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return m.valid
}

func (m *mockGateway) KeyID() string {
	return "rzp_test_key"
}

// mockEnroller is a mock implementation of Enroller
type mockEnroller struct {
	resp  *models.EnrollmentResponse
	err   error
	calls int
}

func (m *mockEnroller) Enroll(ctx context.Context, userID, courseID int) (*models.EnrollmentResponse, bool, error) {
	m.calls++
	if m.err != nil {
		return nil, false, m.err
	}
	return m.resp, true, nil
}
