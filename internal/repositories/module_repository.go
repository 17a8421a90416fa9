package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mentornest/backend/internal/models"
)

type moduleRepository struct {
	db *sql.DB
}

// NewModuleRepository creates a new module repository
func NewModuleRepository(db *sql.DB) *moduleRepository {
	return &moduleRepository{
		db: db,
	}
}

const moduleColumns = `id, course_id, title, video_url, COALESCE(summary, ''), resource_url, position`

func scanModule(row interface{ Scan(...any) error }) (*models.Module, error) {
	module := &models.Module{}
	err := row.Scan(
		&module.ID,
		&module.CourseID,
		&module.Title,
		&module.VideoURL,
		&module.Summary,
		&module.ResourceURL,
		&module.Position,
	)
	return module, err
}

func (r *moduleRepository) query(ctx context.Context, query string, args ...any) ([]models.Module, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query modules: %w", err)
	}
	defer rows.Close()

	modules := []models.Module{}
	for rows.Next() {
		module, err := scanModule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan module: %w", err)
		}
		modules = append(modules, *module)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return modules, nil
}

// GetByCourseID retrieves the modules of a course in display order
func (r *moduleRepository) GetByCourseID(ctx context.Context, courseID int) ([]models.Module, error) {
	return r.query(ctx, `SELECT `+moduleColumns+` FROM modules WHERE course_id = ? ORDER BY position, id`, courseID)
}

// GetAll retrieves every module grouped by course
func (r *moduleRepository) GetAll(ctx context.Context) ([]models.Module, error) {
	return r.query(ctx, `SELECT `+moduleColumns+` FROM modules ORDER BY course_id, position, id`)
}

// GetByID retrieves a module by its ID
func (r *moduleRepository) GetByID(ctx context.Context, id int) (*models.Module, error) {
	module, err := scanModule(r.db.QueryRowContext(ctx, `SELECT `+moduleColumns+` FROM modules WHERE id = ? LIMIT 1`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("module not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get module by id: %w", err)
	}

	return module, nil
}

// Create inserts a new module
func (r *moduleRepository) Create(ctx context.Context, module *models.Module) error {
	query := `
		INSERT INTO modules (course_id, title, video_url, summary, resource_url, position)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		module.CourseID, module.Title, module.VideoURL, module.Summary, module.ResourceURL, module.Position)
	if err != nil {
		return fmt.Errorf("failed to create module: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	module.ID = int(id)
	return nil
}

// Update replaces every editable field of a module
func (r *moduleRepository) Update(ctx context.Context, module *models.Module) error {
	query := `
		UPDATE modules
		SET title = ?, video_url = ?, summary = ?, resource_url = ?, position = ?
		WHERE id = ?
	`

	_, err := r.db.ExecContext(ctx, query,
		module.Title, module.VideoURL, module.Summary, module.ResourceURL, module.Position, module.ID)
	if err != nil {
		return fmt.Errorf("failed to update module: %w", err)
	}

	return nil
}

// Delete deletes a module by ID
func (r *moduleRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM modules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete module: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("module not found")
	}

	return nil
}

// Count returns the number of modules
func (r *moduleRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM modules`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count modules: %w", err)
	}

	return count, nil
}
