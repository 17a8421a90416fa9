package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mentornest/backend/internal/models"
)

type paymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *sql.DB) *paymentRepository {
	return &paymentRepository{
		db: db,
	}
}

const paymentColumns = `id, user_id, course_id, amount, currency, status, payment_method, transaction_id,
	COALESCE(razorpay_order_id, ''), COALESCE(razorpay_payment_id, ''), payment_date, created_at`

func scanPayment(row interface{ Scan(...any) error }) (*models.Payment, error) {
	payment := &models.Payment{}
	var paymentDate sql.NullTime
	err := row.Scan(
		&payment.ID,
		&payment.UserID,
		&payment.CourseID,
		&payment.Amount,
		&payment.Currency,
		&payment.Status,
		&payment.PaymentMethod,
		&payment.TransactionID,
		&payment.RazorpayOrderID,
		&payment.RazorpayPaymentID,
		&paymentDate,
		&payment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if paymentDate.Valid {
		payment.PaymentDate = &paymentDate.Time
	}
	return payment, nil
}

// Create inserts a new payment
func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	query := `
		INSERT INTO payments (user_id, course_id, amount, currency, status, payment_method, razorpay_order_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	var orderID any
	if payment.RazorpayOrderID != "" {
		orderID = payment.RazorpayOrderID
	}

	result, err := r.db.ExecContext(ctx, query,
		payment.UserID, payment.CourseID, payment.Amount, payment.Currency, payment.Status, payment.PaymentMethod, orderID)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	payment.ID = int(id)
	return nil
}

// GetByOrderID retrieves a payment by its gateway order ID
func (r *paymentRepository) GetByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	payment, err := scanPayment(r.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE razorpay_order_id = ? LIMIT 1`, orderID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("payment not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment by order id: %w", err)
	}

	return payment, nil
}

// GetCompleted retrieves the latest completed payment of a user for a course
func (r *paymentRepository) GetCompleted(ctx context.Context, userID, courseID int) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + `
		FROM payments
		WHERE user_id = ? AND course_id = ? AND status = ?
		ORDER BY id DESC
		LIMIT 1`

	payment, err := scanPayment(r.db.QueryRowContext(ctx, query, userID, courseID, models.PaymentStatusCompleted))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("payment not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get completed payment: %w", err)
	}

	return payment, nil
}

// GetByUserID retrieves the payments of a user, newest first
func (r *paymentRepository) GetByUserID(ctx context.Context, userID int) ([]models.Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, *payment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return payments, nil
}

// MarkCompleted marks a payment as completed with the gateway payment ID
func (r *paymentRepository) MarkCompleted(ctx context.Context, id int, paymentID, method string, paidAt time.Time) error {
	query := `
		UPDATE payments
		SET status = ?, razorpay_payment_id = ?, transaction_id = ?, payment_method = ?, payment_date = ?
		WHERE id = ?
	`

	_, err := r.db.ExecContext(ctx, query, models.PaymentStatusCompleted, paymentID, paymentID, method, paidAt, id)
	if err != nil {
		return fmt.Errorf("failed to complete payment: %w", err)
	}

	return nil
}

// MarkFailed marks a payment as failed
func (r *paymentRepository) MarkFailed(ctx context.Context, id int) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE payments SET status = ? WHERE id = ?`, models.PaymentStatusFailed, id); err != nil {
		return fmt.Errorf("failed to mark payment failed: %w", err)
	}

	return nil
}

// TotalRevenue sums the amounts of completed payments
func (r *paymentRepository) TotalRevenue(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE status = ?`, models.PaymentStatusCompleted).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum revenue: %w", err)
	}

	return total, nil
}
