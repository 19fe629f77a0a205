package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/repaso-app/repaso-api/internal/models"
)

// RosterRepository manages the teacher/student class bindings stored on the
// users table.
type RosterRepository struct {
	db *sqlx.DB
}

// NewRosterRepository constructs a RosterRepository.
func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

// AssignToClass binds the given students to a teacher's class in one bulk
// update. The institution filter silently excludes ids outside the teacher's
// institution; the returned count reflects only the rows actually updated.
func (r *RosterRepository) AssignToClass(ctx context.Context, teacherID, institution, className string, studentIDs []string) (int64, error) {
	const query = `UPDATE users SET guardian_id = $1, class_name = $2, updated_at = $3
        WHERE id = ANY($4) AND institution = $5 AND role = $6`
	result, err := r.db.ExecContext(ctx, query, teacherID, className, time.Now().UTC(), pq.Array(studentIDs), institution, models.RoleStudent)
	if err != nil {
		return 0, fmt.Errorf("assign students to class: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("assign students rows affected: %w", err)
	}
	return affected, nil
}

// RemoveFromClass clears a student's guardian and class, but only when the
// student currently belongs to the given teacher. Returns sql.ErrNoRows when
// no such binding exists.
func (r *RosterRepository) RemoveFromClass(ctx context.Context, teacherID, studentID string) error {
	const query = `UPDATE users SET guardian_id = NULL, class_name = '', updated_at = $3
        WHERE id = $1 AND guardian_id = $2`
	result, err := r.db.ExecContext(ctx, query, studentID, teacherID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("remove student from class: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove student rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListClasses returns the classes a teacher currently has students in.
func (r *RosterRepository) ListClasses(ctx context.Context, teacherID string) ([]models.ClassSummary, error) {
	const query = `SELECT class_name, COUNT(*) AS student_count FROM users
        WHERE guardian_id = $1 AND class_name <> ''
        GROUP BY class_name ORDER BY class_name`
	var classes []models.ClassSummary
	if err := r.db.SelectContext(ctx, &classes, query, teacherID); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// ListStudents returns the students a teacher has in one class.
func (r *RosterRepository) ListStudents(ctx context.Context, teacherID, className string) ([]models.RosterStudent, error) {
	const query = `SELECT id, email, full_name, class_name, created_at FROM users
        WHERE guardian_id = $1 AND class_name = $2
        ORDER BY full_name, id`
	var students []models.RosterStudent
	if err := r.db.SelectContext(ctx, &students, query, teacherID, className); err != nil {
		return nil, fmt.Errorf("list students in class: %w", err)
	}
	return students, nil
}

// SearchStudents matches students by email or name within one institution,
// capped at 10 results.
func (r *RosterRepository) SearchStudents(ctx context.Context, institution, search string) ([]models.RosterStudent, error) {
	const query = `SELECT id, email, full_name, class_name, created_at FROM users
        WHERE role = $1 AND institution = $2
        AND (LOWER(email) LIKE $3 OR LOWER(full_name) LIKE $3)
        ORDER BY full_name, id LIMIT 10`
	pattern := "%" + strings.ToLower(search) + "%"
	var students []models.RosterStudent
	if err := r.db.SelectContext(ctx, &students, query, models.RoleStudent, institution, pattern); err != nil {
		return nil, fmt.Errorf("search students: %w", err)
	}
	return students, nil
}
