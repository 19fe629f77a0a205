package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repaso-app/repaso-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestCardRepositoryCreateWithStateCommitsBothRows(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCardRepository(db)

	owner := "teacher-1"
	scope := "ALL"
	card := &models.Card{Question: "q", Answer: "a", OwnerTeacherID: &owner, ClassScope: &scope}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO cards").
		WithArgs(sqlmock.AnyArg(), "q", "a", "teacher-1", "ALL", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO user_card_state").
		WithArgs("teacher-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.CreateWithState(context.Background(), card, "teacher-1")
	require.NoError(t, err)
	assert.NotEmpty(t, card.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCardRepositoryCreateWithStateRollsBackOnStateFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCardRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO cards").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO user_card_state").
		WillReturnError(errors.New("constraint violated"))
	mock.ExpectRollback()

	err := repo.CreateWithState(context.Background(), &models.Card{Question: "q", Answer: "a"}, "user-1")
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCardRepositoryUpdateReportsMissingCard(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCardRepository(db)

	mock.ExpectExec("UPDATE cards SET").
		WithArgs("missing", "q", "a", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), "missing", "q", "a")
	require.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCardRepositoryUpsertStateRepeatable(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCardRepository(db)

	for i := 0; i < 2; i++ {
		mock.ExpectExec("INSERT INTO user_card_state").
			WithArgs("user-1", "card-1", true, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}

	require.NoError(t, repo.UpsertState(context.Background(), "user-1", "card-1", true))
	require.NoError(t, repo.UpsertState(context.Background(), "user-1", "card-1", true))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCardRepositoryUpsertStatesAppliesInOrderAndCommits(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCardRepository(db)

	updates := []models.CardStateUpdate{
		{CardID: "card-1", IsActive: false},
		{CardID: "card-2", IsActive: true},
		{CardID: "card-1", IsActive: true},
	}

	mock.ExpectBegin()
	for _, update := range updates {
		mock.ExpectExec("INSERT INTO user_card_state").
			WithArgs("user-1", update.CardID, update.IsActive, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, repo.UpsertStates(context.Background(), "user-1", updates))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCardRepositoryUpsertStatesRollsBackWholeBatch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCardRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO user_card_state").
		WithArgs("user-1", "card-1", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO user_card_state").
		WithArgs("user-1", "card-2", true, sqlmock.AnyArg()).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.UpsertStates(context.Background(), "user-1", []models.CardStateUpdate{
		{CardID: "card-1", IsActive: false},
		{CardID: "card-2", IsActive: true},
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCardRepositoryListVisibleStudentBranch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCardRepository(db)

	guardian := "teacher-1"
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "question", "answer", "owner_teacher_id", "class_scope", "is_active", "created_at", "updated_at"}).
		AddRow("card-1", "q1", "a1", guardian, "ALL", true, now, now).
		AddRow("card-2", "q2", "a2", guardian, "X", false, now, now)

	mock.ExpectQuery("SELECT c.id, c.question, c.answer").
		WithArgs("student-1", guardian, "X").
		WillReturnRows(rows)

	cards, err := repo.ListVisible(context.Background(), models.VisibilityFilter{
		UserID:     "student-1",
		Role:       models.RoleStudent,
		GuardianID: &guardian,
		ClassName:  "X",
	})
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.True(t, cards[0].IsActive)
	assert.False(t, cards[1].IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCardRepositoryListVisibleUnassignedStudentOnlyTouchedCards(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCardRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "question", "answer", "owner_teacher_id", "class_scope", "is_active", "created_at", "updated_at"}).
		AddRow("card-1", "q1", "a1", nil, nil, true, now, now)

	mock.ExpectQuery("SELECT c.id, c.question, c.answer").
		WithArgs("student-1").
		WillReturnRows(rows)

	cards, err := repo.ListVisible(context.Background(), models.VisibilityFilter{
		UserID: "student-1",
		Role:   models.RoleStudent,
	})
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Nil(t, cards[0].OwnerTeacherID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCardRepositoryListVisibleTeacherBranch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCardRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "question", "answer", "owner_teacher_id", "class_scope", "is_active", "created_at", "updated_at"}).
		AddRow("card-1", "q1", "a1", "teacher-1", "ALL", true, now, now)

	mock.ExpectQuery("SELECT c.id, c.question, c.answer").
		WithArgs("teacher-1", "teacher-1").
		WillReturnRows(rows)

	cards, err := repo.ListVisible(context.Background(), models.VisibilityFilter{
		UserID: "teacher-1",
		Role:   models.RoleTeacher,
	})
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
