package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/repaso-app/repaso-api/internal/models"
	appErrors "github.com/repaso-app/repaso-api/pkg/errors"
	"github.com/repaso-app/repaso-api/pkg/response"
)

type rosterService interface {
	AssignStudents(ctx context.Context, claims *models.JWTClaims, className string, req models.AssignStudentsRequest) (*models.AssignStudentsResult, error)
	RemoveStudent(ctx context.Context, claims *models.JWTClaims, studentID string) error
	ListClasses(ctx context.Context, claims *models.JWTClaims) ([]models.ClassSummary, error)
	ListStudents(ctx context.Context, claims *models.JWTClaims, className string) ([]models.RosterStudent, error)
	SearchStudents(ctx context.Context, claims *models.JWTClaims, search string) ([]models.RosterStudent, error)
}

// RosterHandler exposes class roster endpoints for teachers.
type RosterHandler struct {
	roster rosterService
}

// NewRosterHandler constructs RosterHandler.
func NewRosterHandler(roster rosterService) *RosterHandler {
	return &RosterHandler{roster: roster}
}

// ListClasses godoc
// @Summary List the calling teacher's classes
// @Tags Roster
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /classes [get]
func (h *RosterHandler) ListClasses(c *gin.Context) {
	classes, err := h.roster.ListClasses(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, nil)
}

// ListStudents godoc
// @Summary List students in one of the calling teacher's classes
// @Tags Roster
// @Produce json
// @Param name path string true "Class name"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /classes/{name}/students [get]
func (h *RosterHandler) ListStudents(c *gin.Context) {
	students, err := h.roster.ListStudents(c.Request.Context(), claimsFromContext(c), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// AssignStudents godoc
// @Summary Assign students to a class
// @Tags Roster
// @Accept json
// @Produce json
// @Param name path string true "Class name"
// @Param payload body models.AssignStudentsRequest true "Student ids"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /classes/{name}/students [post]
func (h *RosterHandler) AssignStudents(c *gin.Context) {
	var req models.AssignStudentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.roster.AssignStudents(c.Request.Context(), claimsFromContext(c), c.Param("name"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// RemoveStudent godoc
// @Summary Remove a student from the calling teacher's class
// @Tags Roster
// @Produce json
// @Param id path string true "Student ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /classes/students/{id} [delete]
func (h *RosterHandler) RemoveStudent(c *gin.Context) {
	if err := h.roster.RemoveStudent(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SearchStudents godoc
// @Summary Search students of the teacher's institution by email or name
// @Tags Roster
// @Produce json
// @Param q query string false "Substring to match"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/search [get]
func (h *RosterHandler) SearchStudents(c *gin.Context) {
	students, err := h.roster.SearchStudents(c.Request.Context(), claimsFromContext(c), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}
