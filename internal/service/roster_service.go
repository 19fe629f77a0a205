package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/repaso-app/repaso-api/internal/models"
	appErrors "github.com/repaso-app/repaso-api/pkg/errors"
)

type rosterRepository interface {
	AssignToClass(ctx context.Context, teacherID, institution, className string, studentIDs []string) (int64, error)
	RemoveFromClass(ctx context.Context, teacherID, studentID string) error
	ListClasses(ctx context.Context, teacherID string) ([]models.ClassSummary, error)
	ListStudents(ctx context.Context, teacherID, className string) ([]models.RosterStudent, error)
	SearchStudents(ctx context.Context, institution, search string) ([]models.RosterStudent, error)
}

// RosterService manages the binding of students to a teacher's classes.
type RosterService struct {
	repo      rosterRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRosterService constructs the roster service.
func NewRosterService(repo rosterRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *RosterService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// AssignStudents binds students to a class owned by the calling teacher.
// Ids outside the teacher's institution are excluded by the store filter and
// silently skipped; the result carries only the updated count.
func (s *RosterService) AssignStudents(ctx context.Context, claims *models.JWTClaims, className string, req models.AssignStudentsRequest) (*models.AssignStudentsResult, error) {
	if err := requireTeacher(claims); err != nil {
		return nil, err
	}
	className = strings.TrimSpace(className)
	if className == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class name is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	affected, err := s.repo.AssignToClass(ctx, claims.UserID, claims.Institution, className, req.StudentIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign students")
	}

	for _, studentID := range req.StudentIDs {
		s.invalidateStudent(ctx, studentID)
	}
	return &models.AssignStudentsResult{ClassName: className, Assigned: affected}, nil
}

// RemoveStudent clears a student's class binding, only when the student is
// currently assigned under the calling teacher.
func (s *RosterService) RemoveStudent(ctx context.Context, claims *models.JWTClaims, studentID string) error {
	if err := requireTeacher(claims); err != nil {
		return err
	}
	if strings.TrimSpace(studentID) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "student id is required")
	}

	if err := s.repo.RemoveFromClass(ctx, claims.UserID, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student is not assigned to this teacher")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove student")
	}

	s.invalidateStudent(ctx, studentID)
	return nil
}

// ListClasses returns the calling teacher's classes with student counts.
func (s *RosterService) ListClasses(ctx context.Context, claims *models.JWTClaims) ([]models.ClassSummary, error) {
	if err := requireTeacher(claims); err != nil {
		return nil, err
	}
	classes, err := s.repo.ListClasses(ctx, claims.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	if classes == nil {
		classes = []models.ClassSummary{}
	}
	return classes, nil
}

// ListStudents returns the students of one of the calling teacher's classes.
func (s *RosterService) ListStudents(ctx context.Context, claims *models.JWTClaims, className string) ([]models.RosterStudent, error) {
	if err := requireTeacher(claims); err != nil {
		return nil, err
	}
	className = strings.TrimSpace(className)
	if className == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class name is required")
	}
	students, err := s.repo.ListStudents(ctx, claims.UserID, className)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	if students == nil {
		students = []models.RosterStudent{}
	}
	return students, nil
}

// SearchStudents matches students of the teacher's institution by email or
// name, capped at 10 results.
func (s *RosterService) SearchStudents(ctx context.Context, claims *models.JWTClaims, search string) ([]models.RosterStudent, error) {
	if err := requireTeacher(claims); err != nil {
		return nil, err
	}
	students, err := s.repo.SearchStudents(ctx, claims.Institution, strings.TrimSpace(search))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search students")
	}
	if students == nil {
		students = []models.RosterStudent{}
	}
	return students, nil
}

func (s *RosterService) invalidateStudent(ctx context.Context, studentID string) {
	if !s.cache.Enabled() {
		return
	}
	if err := s.cache.Invalidate(ctx, visibleCardsKey(studentID)); err != nil {
		s.logger.Warn("failed to invalidate student card cache", zap.String("student_id", studentID), zap.Error(err))
	}
}

func requireTeacher(claims *models.JWTClaims) error {
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleTeacher {
		return appErrors.Clone(appErrors.ErrForbidden, "teacher role required")
	}
	return nil
}
