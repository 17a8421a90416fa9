package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mentornest/backend/internal/models"
)

type enrollmentRepository struct {
	db *sql.DB
}

// NewEnrollmentRepository creates a new enrollment repository
func NewEnrollmentRepository(db *sql.DB) *enrollmentRepository {
	return &enrollmentRepository{
		db: db,
	}
}

// Create inserts an enrollment; for an existing (user, course) pair the existing ID is returned
func (r *enrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	query := `
		INSERT INTO enrollments (user_id, course_id)
		VALUES (?, ?)
		ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id)
	`

	result, err := r.db.ExecContext(ctx, query, enrollment.UserID, enrollment.CourseID)
	if err != nil {
		return fmt.Errorf("failed to create enrollment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	enrollment.ID = int(id)
	return nil
}

// GetByUserAndCourse retrieves the enrollment of a user in a course
func (r *enrollmentRepository) GetByUserAndCourse(ctx context.Context, userID, courseID int) (*models.Enrollment, error) {
	query := `
		SELECT id, user_id, course_id, certificate_url, enrolled_at
		FROM enrollments
		WHERE user_id = ? AND course_id = ?
		LIMIT 1
	`

	enrollment := &models.Enrollment{}
	var certificateURL sql.NullString
	err := r.db.QueryRowContext(ctx, query, userID, courseID).Scan(
		&enrollment.ID,
		&enrollment.UserID,
		&enrollment.CourseID,
		&certificateURL,
		&enrollment.EnrolledAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("enrollment not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}

	if certificateURL.Valid {
		enrollment.CertificateURL = &certificateURL.String
	}
	return enrollment, nil
}

// GetDetails retrieves enrollments joined with student, course and mentor names and module counts.
// Only completions of modules that still belong to the enrolled course are counted.
func (r *enrollmentRepository) GetDetails(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetails, error) {
	var whereClauses []string
	args := []any{}

	if filter.UserID != nil {
		whereClauses = append(whereClauses, "e.user_id = ?")
		args = append(args, *filter.UserID)
	}
	if filter.CourseID != nil {
		whereClauses = append(whereClauses, "e.course_id = ?")
		args = append(args, *filter.CourseID)
	}
	if filter.MentorID != nil {
		whereClauses = append(whereClauses, "c.mentor_id = ?")
		args = append(args, *filter.MentorID)
	}

	whereClause := ""
	if len(whereClauses) > 0 {
		whereClause = "WHERE " + strings.Join(whereClauses, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT
			e.id, e.user_id, e.course_id, e.certificate_url, e.enrolled_at,
			u.name, u.email, c.title, c.image_url, COALESCE(mu.name, ''),
			(SELECT COUNT(*) FROM completed_modules cm
				JOIN modules md ON md.id = cm.module_id
				WHERE cm.enrollment_id = e.id AND md.course_id = e.course_id) AS completed_modules,
			(SELECT COUNT(*) FROM modules md WHERE md.course_id = e.course_id) AS total_modules
		FROM enrollments e
		JOIN users u ON u.id = e.user_id
		JOIN courses c ON c.id = e.course_id
		LEFT JOIN mentors m ON m.id = c.mentor_id
		LEFT JOIN users mu ON mu.id = m.user_id
		%s
		ORDER BY e.id
	`, whereClause)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrollments: %w", err)
	}
	defer rows.Close()

	details := []models.EnrollmentDetails{}
	for rows.Next() {
		var d models.EnrollmentDetails
		var certificateURL sql.NullString
		err := rows.Scan(
			&d.ID,
			&d.UserID,
			&d.CourseID,
			&certificateURL,
			&d.EnrolledAt,
			&d.StudentName,
			&d.StudentEmail,
			&d.CourseTitle,
			&d.CourseImageURL,
			&d.MentorName,
			&d.CompletedModules,
			&d.TotalModules,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		if certificateURL.Valid {
			d.CertificateURL = &certificateURL.String
		}
		details = append(details, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return details, nil
}

// MarkModuleCompleted records a module completion, repeated calls are no-ops
func (r *enrollmentRepository) MarkModuleCompleted(ctx context.Context, enrollmentID, moduleID int) error {
	query := `INSERT IGNORE INTO completed_modules (enrollment_id, module_id) VALUES (?, ?)`

	if _, err := r.db.ExecContext(ctx, query, enrollmentID, moduleID); err != nil {
		return fmt.Errorf("failed to mark module completed: %w", err)
	}

	return nil
}

// GetCompletedModuleIDs lists completed modules of an enrollment that belong to its course
func (r *enrollmentRepository) GetCompletedModuleIDs(ctx context.Context, enrollmentID int) ([]int, error) {
	query := `
		SELECT cm.module_id
		FROM completed_modules cm
		JOIN enrollments e ON e.id = cm.enrollment_id
		JOIN modules md ON md.id = cm.module_id AND md.course_id = e.course_id
		WHERE cm.enrollment_id = ?
		ORDER BY md.position, md.id
	`

	rows, err := r.db.QueryContext(ctx, query, enrollmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query completed modules: %w", err)
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan completed module: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return ids, nil
}

// SetCertificateURL stores the certificate URL of an enrollment
func (r *enrollmentRepository) SetCertificateURL(ctx context.Context, enrollmentID int, url string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE enrollments SET certificate_url = ? WHERE id = ?`, url, enrollmentID); err != nil {
		return fmt.Errorf("failed to set certificate url: %w", err)
	}

	return nil
}

// GetStats returns total and completed enrollments and the number of distinct enrolled students
func (r *enrollmentRepository) GetStats(ctx context.Context) (*models.EnrollmentStats, error) {
	query := `SELECT COUNT(*), COUNT(certificate_url), COUNT(DISTINCT user_id) FROM enrollments`

	stats := &models.EnrollmentStats{}
	if err := r.db.QueryRowContext(ctx, query).Scan(&stats.Total, &stats.Completed, &stats.ActiveStudents); err != nil {
		return nil, fmt.Errorf("failed to get enrollment stats: %w", err)
	}

	return stats, nil
}
