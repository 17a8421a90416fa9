package models

import "time"

// PaymentStatus is the lifecycle state of a payment
type PaymentStatus string

// PaymentStatus constants
const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// DefaultCurrency is used when an order does not name one
const DefaultCurrency = "INR"

// Payment is a course purchase attempt
type Payment struct {
	ID                int           `json:"id"`
	UserID            int           `json:"userId"`
	CourseID          int           `json:"courseId"`
	Amount            float64       `json:"amount"`
	Currency          string        `json:"currency"`
	Status            PaymentStatus `json:"status"`
	PaymentMethod     string        `json:"paymentMethod"`
	TransactionID     string        `json:"transactionId"`
	RazorpayOrderID   string        `json:"razorpayOrderId"`
	RazorpayPaymentID string        `json:"razorpayPaymentId"`
	PaymentDate       *time.Time    `json:"paymentDate"`
	CreatedAt         time.Time     `json:"createdAt"`
}

// CreateOrderRequest asks for a gateway order for a course
type CreateOrderRequest struct {
	CourseID int    `json:"courseId" validate:"required,gt=0"`
	Currency string `json:"currency" validate:"omitempty,len=3"`
}

// OrderResponse is handed to the checkout
type OrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
	KeyID    string `json:"keyId"`
}

// VerifyPaymentRequest relays the checkout result
type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpayOrderId" validate:"required"`
	RazorpayPaymentID string `json:"razorpayPaymentId" validate:"required"`
	RazorpaySignature string `json:"razorpaySignature" validate:"required"`
	CourseID          int    `json:"courseId" validate:"required,gt=0"`
	PaymentMethod     string `json:"paymentMethod" validate:"max=50"`
}

// PaymentCheckResponse tells whether the caller has paid for a course
type PaymentCheckResponse struct {
	HasPaid bool     `json:"hasPaid"`
	Payment *Payment `json:"payment"`
}
