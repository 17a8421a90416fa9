package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/mentornest/backend/internal/models"
)

// mysqlDuplicateEntry is the MySQL error number for a UNIQUE key violation
const mysqlDuplicateEntry = 1062

type certificateRepository struct {
	db *sql.DB
}

// NewCertificateRepository creates a new certificate repository
func NewCertificateRepository(db *sql.DB) *certificateRepository {
	return &certificateRepository{
		db: db,
	}
}

// Create inserts an issued certificate.
// A second certificate for the same user and course fails with "certificate already exists".
func (r *certificateRepository) Create(ctx context.Context, certificate *models.Certificate) error {
	query := `
		INSERT INTO certificates (user_id, course_id, certificate_number, url, issued_at)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		certificate.UserID, certificate.CourseID, certificate.CertificateNumber, certificate.URL, certificate.IssuedAt)
	if err != nil {
		if isDuplicateEntry(err) {
			return fmt.Errorf("certificate already exists")
		}
		return fmt.Errorf("failed to create certificate: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	certificate.ID = int(id)
	return nil
}

// GetByUserAndCourse retrieves the certificate of a user for a course
func (r *certificateRepository) GetByUserAndCourse(ctx context.Context, userID, courseID int) (*models.Certificate, error) {
	query := `
		SELECT id, user_id, course_id, certificate_number, url, issued_at
		FROM certificates
		WHERE user_id = ? AND course_id = ?
		LIMIT 1
	`

	certificate := &models.Certificate{}
	err := r.db.QueryRowContext(ctx, query, userID, courseID).Scan(
		&certificate.ID,
		&certificate.UserID,
		&certificate.CourseID,
		&certificate.CertificateNumber,
		&certificate.URL,
		&certificate.IssuedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("certificate not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get certificate: %w", err)
	}

	return certificate, nil
}

// GetByUserID retrieves the certificates of a user with course title and mentor name
func (r *certificateRepository) GetByUserID(ctx context.Context, userID int) ([]models.Certificate, error) {
	query := `
		SELECT ct.id, ct.user_id, ct.course_id, ct.certificate_number, ct.url, ct.issued_at,
			c.title, COALESCE(u.name, '')
		FROM certificates ct
		JOIN courses c ON c.id = ct.course_id
		LEFT JOIN mentors m ON m.id = c.mentor_id
		LEFT JOIN users u ON u.id = m.user_id
		WHERE ct.user_id = ?
		ORDER BY ct.issued_at DESC, ct.id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query certificates: %w", err)
	}
	defer rows.Close()

	certificates := []models.Certificate{}
	for rows.Next() {
		var c models.Certificate
		err := rows.Scan(&c.ID, &c.UserID, &c.CourseID, &c.CertificateNumber, &c.URL, &c.IssuedAt, &c.CourseTitle, &c.MentorName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan certificate: %w", err)
		}
		certificates = append(certificates, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return certificates, nil
}

// Count returns the number of issued certificates
func (r *certificateRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM certificates`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count certificates: %w", err)
	}

	return count, nil
}

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}
