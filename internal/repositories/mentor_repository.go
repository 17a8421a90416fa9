package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mentornest/backend/internal/models"
)

type mentorRepository struct {
	db *sql.DB
}

// NewMentorRepository creates a new mentor repository
func NewMentorRepository(db *sql.DB) *mentorRepository {
	return &mentorRepository{
		db: db,
	}
}

// Mentor rows always carry the name and e-mail of the owning user
const mentorSelect = `
	SELECT m.id, m.user_id, u.name, u.email, m.expertise, COALESCE(m.bio, ''), m.image_url
	FROM mentors m
	JOIN users u ON u.id = m.user_id
`

func scanMentor(row interface{ Scan(...any) error }, extra ...any) (*models.Mentor, error) {
	mentor := &models.Mentor{}
	dest := []any{
		&mentor.ID,
		&mentor.UserID,
		&mentor.Name,
		&mentor.Email,
		&mentor.Expertise,
		&mentor.Bio,
		&mentor.ImageURL,
	}
	err := row.Scan(append(dest, extra...)...)
	return mentor, err
}

// Create inserts a mentor profile for an existing user
func (r *mentorRepository) Create(ctx context.Context, mentor *models.Mentor) error {
	query := `
		INSERT INTO mentors (user_id, expertise, bio, image_url)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, mentor.UserID, mentor.Expertise, mentor.Bio, mentor.ImageURL)
	if err != nil {
		return fmt.Errorf("failed to create mentor: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	mentor.ID = int(id)
	return nil
}

// GetByID retrieves a mentor by its ID
func (r *mentorRepository) GetByID(ctx context.Context, id int) (*models.Mentor, error) {
	mentor, err := scanMentor(r.db.QueryRowContext(ctx, mentorSelect+` WHERE m.id = ? LIMIT 1`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("mentor not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mentor by id: %w", err)
	}

	return mentor, nil
}

// GetByUserID retrieves the mentor profile of a user
func (r *mentorRepository) GetByUserID(ctx context.Context, userID int) (*models.Mentor, error) {
	mentor, err := scanMentor(r.db.QueryRowContext(ctx, mentorSelect+` WHERE m.user_id = ? LIMIT 1`, userID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("mentor not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mentor by user id: %w", err)
	}

	return mentor, nil
}

// GetAll retrieves every mentor with course and student counts
func (r *mentorRepository) GetAll(ctx context.Context) ([]models.Mentor, error) {
	query := `
		SELECT m.id, m.user_id, u.name, u.email, m.expertise, COALESCE(m.bio, ''), m.image_url,
			(SELECT COUNT(*) FROM courses c WHERE c.mentor_id = m.id) AS courses_count,
			(SELECT COUNT(DISTINCT e.user_id) FROM enrollments e
				JOIN courses c ON c.id = e.course_id
				WHERE c.mentor_id = m.id) AS students_count
		FROM mentors m
		JOIN users u ON u.id = m.user_id
		ORDER BY m.id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query mentors: %w", err)
	}
	defer rows.Close()

	mentors := []models.Mentor{}
	for rows.Next() {
		var coursesCount, studentsCount int
		mentor, err := scanMentor(rows, &coursesCount, &studentsCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mentor: %w", err)
		}
		mentor.CoursesCount = coursesCount
		mentor.StudentsCount = studentsCount
		mentors = append(mentors, *mentor)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return mentors, nil
}

// CountCourses returns the number of courses taught by a mentor
func (r *mentorRepository) CountCourses(ctx context.Context, mentorID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses WHERE mentor_id = ?`, mentorID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count mentor courses: %w", err)
	}

	return count, nil
}

// CountStudents returns the number of distinct students enrolled in a mentor's courses
func (r *mentorRepository) CountStudents(ctx context.Context, mentorID int) (int, error) {
	query := `
		SELECT COUNT(DISTINCT e.user_id)
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		WHERE c.mentor_id = ?
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, mentorID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count mentor students: %w", err)
	}

	return count, nil
}

// Update updates the profile fields of a mentor
func (r *mentorRepository) Update(ctx context.Context, mentor *models.Mentor) error {
	query := `
		UPDATE mentors
		SET expertise = ?, bio = ?, image_url = ?
		WHERE id = ?
	`

	if _, err := r.db.ExecContext(ctx, query, mentor.Expertise, mentor.Bio, mentor.ImageURL, mentor.ID); err != nil {
		return fmt.Errorf("failed to update mentor: %w", err)
	}

	return nil
}
