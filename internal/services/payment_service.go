package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/mentornest/backend/internal/models"
	"github.com/mentornest/backend/internal/payment"
	"go.uber.org/zap"
)

// PaymentRepository is the interface that wraps methods for Payment table data access
type PaymentRepository interface {
	CompletedPaymentRepository
	// Method Create inserts a new payment.
	//
	// "payment" parameter is used to create a new payment.
	//
	// If some error occurs during creation, the error will be returned.
	Create(ctx context.Context, payment *models.Payment) error
	// Method GetByOrderID retrieves a payment by its gateway order ID.
	//
	// If payment with such order ID does not exist, the error will be returned together with "nil" value.
	GetByOrderID(ctx context.Context, orderID string) (*models.Payment, error)
	// Method GetByUserID retrieves the payments of a user, newest first.
	//
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	GetByUserID(ctx context.Context, userID int) ([]models.Payment, error)
	// Method MarkCompleted marks a payment as completed.
	//
	// "paymentID" parameter is the gateway payment ID, stored as the transaction ID as well.
	// "method" parameter is the payment method reported by the checkout.
	// "paidAt" parameter is the payment date.
	//
	// If some error occurs during update, the error will be returned.
	MarkCompleted(ctx context.Context, id int, paymentID, method string, paidAt time.Time) error
	// Method MarkFailed marks a payment as failed.
	//
	// If some error occurs during update, the error will be returned.
	MarkFailed(ctx context.Context, id int) error
}

// PaymentGateway creates orders and verifies checkout signatures
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*payment.Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
	KeyID() string
}

// Enroller enrolls students in courses
type Enroller interface {
	Enroll(ctx context.Context, userID, courseID int) (*models.EnrollmentResponse, bool, error)
}

// paymentService implements PaymentService
type paymentService struct {
	courseRepo  CourseRepository
	paymentRepo PaymentRepository
	gateway     PaymentGateway
	enroller    Enroller
	logger      *zap.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	courseRepo CourseRepository,
	paymentRepo PaymentRepository,
	gateway PaymentGateway,
	enroller Enroller,
	logger *zap.Logger,
) *paymentService {
	return &paymentService{
		courseRepo:  courseRepo,
		paymentRepo: paymentRepo,
		gateway:     gateway,
		enroller:    enroller,
		logger:      logger,
	}
}

// CreateOrder opens a gateway order for a paid course and records it as a pending payment
//
// The amount always comes from the course price, in the smallest currency unit.
func (s *paymentService) CreateOrder(ctx context.Context, userID int, req *models.CreateOrderRequest) (*models.OrderResponse, error) {
	course, err := s.courseRepo.GetByID(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	if course.IsFree() {
		return nil, fmt.Errorf("course is free")
	}

	if _, err := s.paymentRepo.GetCompleted(ctx, userID, course.ID); err == nil {
		return nil, fmt.Errorf("course already purchased")
	} else if !isNotFound(err) {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = models.DefaultCurrency
	}
	amount := int64(math.Round(course.Price * 100))
	receipt := fmt.Sprintf("rcpt_%d_%d", userID, course.ID)

	order, err := s.gateway.CreateOrder(ctx, amount, currency, receipt)
	if err != nil {
		return nil, err
	}

	p := &models.Payment{
		UserID:          userID,
		CourseID:        course.ID,
		Amount:          course.Price,
		Currency:        currency,
		Status:          models.PaymentStatusPending,
		RazorpayOrderID: order.ID,
	}
	if err := s.paymentRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("payment order created",
		zap.Int("user_id", userID),
		zap.Int("course_id", course.ID),
		zap.String("order_id", order.ID),
	)

	return &models.OrderResponse{
		ID:       order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		Receipt:  order.Receipt,
		Status:   order.Status,
		KeyID:    s.gateway.KeyID(),
	}, nil
}

// VerifyPayment checks the checkout signature, completes the payment and enrolls the student
//
// A bad signature marks the payment as failed.
func (s *paymentService) VerifyPayment(ctx context.Context, userID int, req *models.VerifyPaymentRequest) (*models.Payment, error) {
	p, err := s.paymentRepo.GetByOrderID(ctx, req.RazorpayOrderID)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, fmt.Errorf("payment not found")
	}
	if p.CourseID != req.CourseID {
		return nil, fmt.Errorf("invalid course for this payment")
	}

	if p.Status != models.PaymentStatusCompleted {
		if !s.gateway.VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
			if err := s.paymentRepo.MarkFailed(ctx, p.ID); err != nil {
				s.logger.Error("failed to mark payment as failed", zap.Int("payment_id", p.ID), zap.Error(err))
			}
			s.logger.Warn("payment signature mismatch", zap.Int("payment_id", p.ID), zap.Int("user_id", userID))
			return nil, fmt.Errorf("invalid signature")
		}

		method := strings.TrimSpace(req.PaymentMethod)
		if method == "" {
			method = "razorpay"
		}
		paidAt := time.Now().UTC()
		if err := s.paymentRepo.MarkCompleted(ctx, p.ID, req.RazorpayPaymentID, method, paidAt); err != nil {
			return nil, err
		}

		p.Status = models.PaymentStatusCompleted
		p.PaymentMethod = method
		p.TransactionID = req.RazorpayPaymentID
		p.RazorpayPaymentID = req.RazorpayPaymentID
		p.PaymentDate = &paidAt
	}

	if _, _, err := s.enroller.Enroll(ctx, userID, p.CourseID); err != nil {
		return nil, err
	}

	return p, nil
}

// Check reports whether the caller has a completed payment for a course
func (s *paymentService) Check(ctx context.Context, userID, courseID int) (*models.PaymentCheckResponse, error) {
	p, err := s.paymentRepo.GetCompleted(ctx, userID, courseID)
	if err != nil {
		if isNotFound(err) {
			return &models.PaymentCheckResponse{HasPaid: false}, nil
		}
		return nil, err
	}
	return &models.PaymentCheckResponse{HasPaid: true, Payment: p}, nil
}

// EnrollFree enrolls the caller in a free course
func (s *paymentService) EnrollFree(ctx context.Context, userID, courseID int) (*models.EnrollmentResponse, bool, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, false, err
	}
	if !course.IsFree() {
		return nil, false, fmt.Errorf("course is not free")
	}
	return s.enroller.Enroll(ctx, userID, courseID)
}

// UserPayments returns the caller's payments, newest first
func (s *paymentService) UserPayments(ctx context.Context, userID int) ([]models.Payment, error) {
	return s.paymentRepo.GetByUserID(ctx, userID)
}
