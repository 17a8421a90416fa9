package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/mentornest/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupCertificateTestRepository creates a certificate repository with a mock database
func setupCertificateTestRepository(t *testing.T) (*certificateRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewCertificateRepository(db)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func TestCertificateRepository_CreateAndGet(t *testing.T) {
	repo, mock, cleanup := setupCertificateTestRepository(t)
	defer cleanup()

	issued := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec(`INSERT INTO certificates`).
		WithArgs(1, 2, "MN-ABCDEF12", "/uploads/certificates/c.png", issued).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectQuery(`FROM certificates\s+WHERE user_id = \? AND course_id = \?`).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "course_id", "certificate_number", "url", "issued_at"}).
			AddRow(3, 1, 2, "MN-ABCDEF12", "/uploads/certificates/c.png", issued))

	ctx := context.Background()
	certificate := &models.Certificate{
		UserID: 1, CourseID: 2, CertificateNumber: "MN-ABCDEF12",
		URL: "/uploads/certificates/c.png", IssuedAt: issued,
	}
	require.NoError(t, repo.Create(ctx, certificate))
	assert.Equal(t, 3, certificate.ID)

	stored, err := repo.GetByUserAndCourse(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "MN-ABCDEF12", stored.CertificateNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCertificateRepository_Create_Errors(t *testing.T) {
	tests := []struct {
		name          string
		dbErr         error
		expectedError string
	}{
		{
			name:          "duplicate user and course",
			dbErr:         &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1-2' for key 'uq_certificates_user_course'"},
			expectedError: "certificate already exists",
		},
		{
			name:          "other database error",
			dbErr:         &mysql.MySQLError{Number: 1213, Message: "Deadlock found"},
			expectedError: "failed to create certificate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupCertificateTestRepository(t)
			defer cleanup()

			mock.ExpectExec(`INSERT INTO certificates`).WillReturnError(tt.dbErr)

			err := repo.Create(context.Background(), &models.Certificate{UserID: 1, CourseID: 2})

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedError)
			if tt.expectedError == "certificate already exists" {
				assert.NotContains(t, err.Error(), "failed to")
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCertificateRepository_GetByUserAndCourse_NotFound(t *testing.T) {
	repo, mock, cleanup := setupCertificateTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(`FROM certificates`).WithArgs(1, 2).WillReturnError(sql.ErrNoRows)

	certificate, err := repo.GetByUserAndCourse(context.Background(), 1, 2)

	assert.ErrorContains(t, err, "certificate not found")
	assert.Nil(t, certificate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCertificateRepository_GetByUserID(t *testing.T) {
	repo, mock, cleanup := setupCertificateTestRepository(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(`FROM certificates ct\s+JOIN courses c`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "course_id", "certificate_number", "url", "issued_at", "title", "mentor_name"}).
			AddRow(3, 1, 2, "MN-ABCDEF12", "/c.png", now, "Go", "Ada"))

	certificates, err := repo.GetByUserID(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, certificates, 1)
	assert.Equal(t, "Go", certificates[0].CourseTitle)
	assert.Equal(t, "Ada", certificates[0].MentorName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCertificateRepository_Count(t *testing.T) {
	repo, mock, cleanup := setupCertificateTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM certificates`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.Count(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
