package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mentornest/backend/internal/models"
	authmw "github.com/mentornest/backend/libs/auth/middleware"
	"github.com/mentornest/backend/libs/handlers"
	"github.com/mentornest/backend/libs/validation"
	"go.uber.org/zap"
)

// PaymentService is the interface that wraps methods for course payments.
type PaymentService interface {
	// Method CreateOrder opens a gateway order for a paid course.
	//
	// If the course is free or already purchased, or the gateway fails, the error will be returned together with "nil" value.
	CreateOrder(ctx context.Context, userID int, req *models.CreateOrderRequest) (*models.OrderResponse, error)
	// Method VerifyPayment checks the checkout signature, completes the payment and enrolls the student.
	//
	// If the signature does not match, the payment is marked as failed and the error will be returned together with "nil" value.
	VerifyPayment(ctx context.Context, userID int, req *models.VerifyPaymentRequest) (*models.Payment, error)
	// Method Check reports whether the student has a completed payment for a course.
	Check(ctx context.Context, userID, courseID int) (*models.PaymentCheckResponse, error)
	// Method EnrollFree enrolls the student in a free course.
	//
	// The boolean result is true when a new enrollment was created.
	EnrollFree(ctx context.Context, userID, courseID int) (*models.EnrollmentResponse, bool, error)
	// Method UserPayments retrieves the student's payments, newest first.
	UserPayments(ctx context.Context, userID int) ([]models.Payment, error)
}

// PaymentHandler handles payment-related HTTP requests
type PaymentHandler struct {
	handlers.BaseHandler
	service PaymentService
	authMw  func(http.Handler) http.Handler
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(svc PaymentService, logger *zap.Logger, authMw func(http.Handler) http.Handler) *PaymentHandler {
	return &PaymentHandler{
		BaseHandler: handlers.BaseHandler{Logger: logger},
		service:     svc,
		authMw:      authMw,
	}
}

// RegisterRoutes registers all payment handler routes
func (h *PaymentHandler) RegisterRoutes(r chi.Router) {
	r.Route("/payment", func(r chi.Router) {
		r.Use(h.authMw)
		r.Post("/razorpay/order", h.CreateOrder)
		r.Post("/razorpay/verify", h.VerifyPayment)
		r.Get("/check/{courseId}", h.Check)
		r.Post("/enroll-free/{courseId}", h.EnrollFree)
		r.Get("/user/payments", h.UserPayments)
	})
}

// CreateOrder handles POST /payment/razorpay/order
// @Summary Create a payment order
// @Description Open a Razorpay order for a paid course. The amount is taken from the course price.
// @Tags payment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateOrderRequest true "Order request"
// @Success 200 {object} models.OrderResponse
// @Failure 400 {object} map[string]string "Course is free"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 409 {object} map[string]string "Course already purchased"
// @Failure 502 {object} map[string]string "Payment gateway error"
// @Router /payment/razorpay/order [post]
func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := authmw.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req models.CreateOrderRequest
	if err := validation.DecodeAndValidate(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.service.CreateOrder(r.Context(), userID, &req)
	if err != nil {
		h.RespondServiceError(w, err, "failed to create payment order")
		return
	}

	h.RespondJSON(w, http.StatusOK, order)
}

// VerifyPayment handles POST /payment/razorpay/verify
// @Summary Verify a payment
// @Description Verify the checkout signature, complete the payment and enroll the student
// @Tags payment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.VerifyPaymentRequest true "Checkout result"
// @Success 200 {object} models.Payment
// @Failure 400 {object} map[string]string "Invalid signature"
// @Failure 404 {object} map[string]string "Payment not found"
// @Router /payment/razorpay/verify [post]
func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := authmw.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req models.VerifyPaymentRequest
	if err := validation.DecodeAndValidate(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	payment, err := h.service.VerifyPayment(r.Context(), userID, &req)
	if err != nil {
		h.RespondServiceError(w, err, "failed to verify payment")
		return
	}

	h.RespondJSON(w, http.StatusOK, payment)
}

// Check handles GET /payment/check/{courseId}
// @Summary Check payment
// @Tags payment
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Success 200 {object} models.PaymentCheckResponse
// @Router /payment/check/{courseId} [get]
func (h *PaymentHandler) Check(w http.ResponseWriter, r *http.Request) {
	userID, ok := authmw.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	courseID, ok := handlers.ParseIDParam(r, "courseId")
	if !ok {
		h.RespondError(w, http.StatusBadRequest, "invalid course id")
		return
	}

	resp, err := h.service.Check(r.Context(), userID, courseID)
	if err != nil {
		h.RespondServiceError(w, err, "failed to check payment")
		return
	}

	h.RespondJSON(w, http.StatusOK, resp)
}

// EnrollFree handles POST /payment/enroll-free/{courseId}
// @Summary Enroll in a free course
// @Tags payment
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Success 200 {object} models.EnrollmentResponse "Already enrolled"
// @Success 201 {object} models.EnrollmentResponse "Enrolled"
// @Failure 400 {object} map[string]string "Course is not free"
// @Router /payment/enroll-free/{courseId} [post]
func (h *PaymentHandler) EnrollFree(w http.ResponseWriter, r *http.Request) {
	userID, ok := authmw.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	courseID, ok := handlers.ParseIDParam(r, "courseId")
	if !ok {
		h.RespondError(w, http.StatusBadRequest, "invalid course id")
		return
	}

	enrollment, created, err := h.service.EnrollFree(r.Context(), userID, courseID)
	if err != nil {
		h.RespondServiceError(w, err, "failed to enroll in free course")
		return
	}

	h.RespondJSON(w, enrollmentStatus(created), enrollment)
}

// UserPayments handles GET /payment/user/payments
// @Summary Payment history
// @Tags payment
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Payment
// @Router /payment/user/payments [get]
func (h *PaymentHandler) UserPayments(w http.ResponseWriter, r *http.Request) {
	userID, ok := authmw.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	payments, err := h.service.UserPayments(r.Context(), userID)
	if err != nil {
		h.RespondServiceError(w, err, "failed to get payments")
		return
	}

	h.RespondJSON(w, http.StatusOK, payments)
}
