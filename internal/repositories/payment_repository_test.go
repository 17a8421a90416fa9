package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mentornest/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var paymentRowColumns = []string{
	"id", "user_id", "course_id", "amount", "currency", "status", "payment_method", "transaction_id",
	"razorpay_order_id", "razorpay_payment_id", "payment_date", "created_at",
}

// setupPaymentTestRepository creates a payment repository with a mock database
func setupPaymentTestRepository(t *testing.T) (*paymentRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewPaymentRepository(db)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func TestPaymentRepository_Create(t *testing.T) {
	tests := []struct {
		name     string
		payment  *models.Payment
		orderArg any
	}{
		{
			name: "with order id",
			payment: &models.Payment{
				UserID: 1, CourseID: 2, Amount: 499, Currency: "INR",
				Status: models.PaymentStatusPending, RazorpayOrderID: "order_1",
			},
			orderArg: "order_1",
		},
		{
			name: "without order id stores null",
			payment: &models.Payment{
				UserID: 1, CourseID: 2, Amount: 499, Currency: "INR",
				Status: models.PaymentStatusPending,
			},
			orderArg: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupPaymentTestRepository(t)
			defer cleanup()

			mock.ExpectExec(`INSERT INTO payments`).
				WithArgs(1, 2, 499.0, "INR", models.PaymentStatusPending, "", tt.orderArg).
				WillReturnResult(sqlmock.NewResult(5, 1))

			err := repo.Create(context.Background(), tt.payment)

			require.NoError(t, err)
			assert.Equal(t, 5, tt.payment.ID)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPaymentRepository_GetByOrderID(t *testing.T) {
	paidAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError string
		expectPaid    bool
	}{
		{
			name: "pending payment",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM payments WHERE razorpay_order_id = \?`).
					WithArgs("order_1").
					WillReturnRows(sqlmock.NewRows(paymentRowColumns).
						AddRow(5, 1, 2, 499.0, "INR", "PENDING", "", "", "order_1", "", nil, paidAt))
			},
		},
		{
			name: "completed payment",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM payments WHERE razorpay_order_id = \?`).
					WithArgs("order_1").
					WillReturnRows(sqlmock.NewRows(paymentRowColumns).
						AddRow(5, 1, 2, 499.0, "INR", "COMPLETED", "card", "pay_1", "order_1", "pay_1", paidAt, paidAt))
			},
			expectPaid: true,
		},
		{
			name: "payment not found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM payments`).WithArgs("order_1").WillReturnError(sql.ErrNoRows)
			},
			expectedError: "payment not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupPaymentTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			payment, err := repo.GetByOrderID(context.Background(), "order_1")

			if tt.expectedError != "" {
				assert.ErrorContains(t, err, tt.expectedError)
				assert.Nil(t, payment)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "order_1", payment.RazorpayOrderID)
				assert.Equal(t, tt.expectPaid, payment.PaymentDate != nil)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPaymentRepository_GetCompleted(t *testing.T) {
	repo, mock, cleanup := setupPaymentTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(`WHERE user_id = \? AND course_id = \? AND status = \?`).
		WithArgs(1, 2, models.PaymentStatusCompleted).
		WillReturnError(sql.ErrNoRows)

	payment, err := repo.GetCompleted(context.Background(), 1, 2)

	assert.ErrorContains(t, err, "payment not found")
	assert.Nil(t, payment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepository_GetByUserID(t *testing.T) {
	repo, mock, cleanup := setupPaymentTestRepository(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(`FROM payments WHERE user_id = \? ORDER BY created_at DESC, id DESC`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(paymentRowColumns).
			AddRow(6, 1, 3, 10.0, "INR", "FAILED", "", "", "order_2", "", nil, now).
			AddRow(5, 1, 2, 499.0, "INR", "COMPLETED", "", "pay_1", "order_1", "pay_1", now, now))

	payments, err := repo.GetByUserID(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, models.PaymentStatusFailed, payments[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepository_StatusUpdates(t *testing.T) {
	repo, mock, cleanup := setupPaymentTestRepository(t)
	defer cleanup()

	paidAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectExec(`UPDATE payments\s+SET status = \?, razorpay_payment_id = \?`).
		WithArgs(models.PaymentStatusCompleted, "pay_1", "pay_1", "card", paidAt, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE payments SET status = \? WHERE id = \?`).
		WithArgs(models.PaymentStatusFailed, 6).
		WillReturnError(errors.New("boom"))

	require.NoError(t, repo.MarkCompleted(context.Background(), 5, "pay_1", "card", paidAt))
	assert.ErrorContains(t, repo.MarkFailed(context.Background(), 6), "failed to mark payment failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepository_TotalRevenue(t *testing.T) {
	repo, mock, cleanup := setupPaymentTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM payments WHERE status = \?`).
		WithArgs(models.PaymentStatusCompleted).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(1498.5))

	total, err := repo.TotalRevenue(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1498.5, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
