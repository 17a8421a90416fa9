package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mentornest/backend/internal/models"
)

type courseRepository struct {
	db *sql.DB
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *sql.DB) *courseRepository {
	return &courseRepository{
		db: db,
	}
}

// Course rows are joined with the mentor profile and its user for display fields
const courseSelect = `
	SELECT c.id, c.title, COALESCE(c.description, ''), c.price, c.image_url, c.category,
		c.mentor_id, COALESCE(u.name, ''), COALESCE(m.image_url, ''), c.created_at
	FROM courses c
	LEFT JOIN mentors m ON m.id = c.mentor_id
	LEFT JOIN users u ON u.id = m.user_id
`

func scanCourse(row interface{ Scan(...any) error }) (*models.Course, error) {
	course := &models.Course{}
	var mentorID sql.NullInt64
	err := row.Scan(
		&course.ID,
		&course.Title,
		&course.Description,
		&course.Price,
		&course.ImageURL,
		&course.Category,
		&mentorID,
		&course.MentorName,
		&course.MentorImageURL,
		&course.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if mentorID.Valid {
		id := int(mentorID.Int64)
		course.MentorID = &id
	}
	return course, nil
}

// GetAll retrieves courses ordered by ID, only those of mentorID when it is set
func (r *courseRepository) GetAll(ctx context.Context, mentorID *int) ([]models.Course, error) {
	query := courseSelect
	args := []any{}
	if mentorID != nil {
		query += ` WHERE c.mentor_id = ?`
		args = append(args, *mentorID)
	}
	query += ` ORDER BY c.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	courses := []models.Course{}
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, *course)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return courses, nil
}

// GetByID retrieves a course by its ID
func (r *courseRepository) GetByID(ctx context.Context, id int) (*models.Course, error) {
	course, err := scanCourse(r.db.QueryRowContext(ctx, courseSelect+` WHERE c.id = ? LIMIT 1`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("course not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course by id: %w", err)
	}

	return course, nil
}

// Create inserts a new course
func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	query := `
		INSERT INTO courses (title, description, price, image_url, category, mentor_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		course.Title, course.Description, course.Price, course.ImageURL, course.Category, nullableInt(course.MentorID))
	if err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	course.ID = int(id)
	return nil
}

// Update replaces every editable field of a course
func (r *courseRepository) Update(ctx context.Context, course *models.Course) error {
	query := `
		UPDATE courses
		SET title = ?, description = ?, price = ?, image_url = ?, category = ?, mentor_id = ?
		WHERE id = ?
	`

	_, err := r.db.ExecContext(ctx, query,
		course.Title, course.Description, course.Price, course.ImageURL, course.Category, nullableInt(course.MentorID), course.ID)
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}

	return nil
}

// AssignMentor sets the mentor of a course
func (r *courseRepository) AssignMentor(ctx context.Context, courseID, mentorID int) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE courses SET mentor_id = ? WHERE id = ?`, mentorID, courseID); err != nil {
		return fmt.Errorf("failed to assign mentor: %w", err)
	}

	return nil
}

// Delete deletes a course by ID; modules, enrollments and certificates go with it
func (r *courseRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("course not found")
	}

	return nil
}

// Count returns the number of courses
func (r *courseRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count courses: %w", err)
	}

	return count, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
