package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/repaso-app/repaso-api/internal/models"
)

// CardRepository manages persistence for cards and per-user card state.
type CardRepository struct {
	db *sqlx.DB
}

// NewCardRepository constructs a CardRepository.
func NewCardRepository(db *sqlx.DB) *CardRepository {
	return &CardRepository{db: db}
}

// ListVisible resolves the set of cards one user may see together with the
// effective activation flag. The set is the union of cards the user has a
// state row for, cards published to the student's class by their guardian
// teacher, and (for teachers) every card they authored. An absent state row
// resolves to active.
func (r *CardRepository) ListVisible(ctx context.Context, filter models.VisibilityFilter) ([]models.CardWithState, error) {
	conditions := []string{"s.user_id IS NOT NULL"}
	args := []interface{}{filter.UserID}

	switch filter.Role {
	case models.RoleTeacher:
		conditions = append(conditions, fmt.Sprintf("c.owner_teacher_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	case models.RoleStudent:
		if filter.GuardianID != nil {
			conditions = append(conditions, fmt.Sprintf("(c.owner_teacher_id = $%d AND (c.class_scope = $%d OR c.class_scope = 'ALL'))", len(args)+1, len(args)+2))
			args = append(args, *filter.GuardianID, filter.ClassName)
		}
	}

	query := fmt.Sprintf(`SELECT c.id, c.question, c.answer, c.owner_teacher_id, c.class_scope,
        COALESCE(s.is_active, TRUE) AS is_active, c.created_at, c.updated_at
        FROM cards c
        LEFT JOIN user_card_state s ON s.card_id = c.id AND s.user_id = $1
        WHERE %s
        ORDER BY c.created_at DESC, c.id`, strings.Join(conditions, " OR "))

	var cards []models.CardWithState
	if err := r.db.SelectContext(ctx, &cards, query, args...); err != nil {
		return nil, fmt.Errorf("list visible cards: %w", err)
	}
	return cards, nil
}

// FindByID fetches a card by identifier.
func (r *CardRepository) FindByID(ctx context.Context, id string) (*models.Card, error) {
	const query = `SELECT id, question, answer, owner_teacher_id, class_scope, created_at, updated_at FROM cards WHERE id = $1`
	var card models.Card
	if err := r.db.GetContext(ctx, &card, query, id); err != nil {
		return nil, err
	}
	return &card, nil
}

// ListByOwner returns every card authored by a teacher, optionally narrowed
// to a single class scope.
func (r *CardRepository) ListByOwner(ctx context.Context, teacherID string, classScope string) ([]models.Card, error) {
	query := "SELECT id, question, answer, owner_teacher_id, class_scope, created_at, updated_at FROM cards WHERE owner_teacher_id = $1"
	args := []interface{}{teacherID}
	if classScope != "" {
		query += fmt.Sprintf(" AND (class_scope = $%d OR class_scope = 'ALL')", len(args)+1)
		args = append(args, classScope)
	}
	query += " ORDER BY created_at DESC, id"

	var cards []models.Card
	if err := r.db.SelectContext(ctx, &cards, query, args...); err != nil {
		return nil, fmt.Errorf("list cards by owner: %w", err)
	}
	return cards, nil
}

// CreateWithState inserts a card and the creator's activation row in a single
// transaction. Either both rows commit or neither does.
func (r *CardRepository) CreateWithState(ctx context.Context, card *models.Card, creatorID string) error {
	if card.ID == "" {
		card.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if card.CreatedAt.IsZero() {
		card.CreatedAt = now
	}
	card.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create card: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	const insertCard = `INSERT INTO cards (id, question, answer, owner_teacher_id, class_scope, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := tx.ExecContext(ctx, insertCard, card.ID, card.Question, card.Answer, card.OwnerTeacherID, card.ClassScope, card.CreatedAt, card.UpdatedAt); err != nil {
		return fmt.Errorf("insert card: %w", err)
	}

	const insertState = `INSERT INTO user_card_state (user_id, card_id, is_active, created_at, updated_at)
        VALUES ($1, $2, TRUE, $3, $3)`
	if _, err := tx.ExecContext(ctx, insertState, creatorID, card.ID, now); err != nil {
		return fmt.Errorf("insert creator card state: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create card: %w", err)
	}
	committed = true
	return nil
}

// Update overwrites a card's content in place. Returns sql.ErrNoRows when the
// card does not exist.
func (r *CardRepository) Update(ctx context.Context, id, question, answer string) error {
	const query = `UPDATE cards SET question = $2, answer = $3, updated_at = $4 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, question, answer, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update card: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update card rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpsertState inserts or overwrites one user's activation flag for a card.
// The insert-or-update happens in a single statement so concurrent toggles
// from the same user cannot interleave a read-then-write.
func (r *CardRepository) UpsertState(ctx context.Context, userID, cardID string, isActive bool) error {
	now := time.Now().UTC()
	const query = `INSERT INTO user_card_state (user_id, card_id, is_active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $4)
        ON CONFLICT (user_id, card_id)
        DO UPDATE SET is_active = EXCLUDED.is_active, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, userID, cardID, isActive, now); err != nil {
		return fmt.Errorf("upsert card state: %w", err)
	}
	return nil
}

// UpsertStates applies a batch of activation upserts for one user in a single
// transaction, in the given order. Any failure rolls back the whole batch.
func (r *CardRepository) UpsertStates(ctx context.Context, userID string, updates []models.CardStateUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch card state: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	const query = `INSERT INTO user_card_state (user_id, card_id, is_active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $4)
        ON CONFLICT (user_id, card_id)
        DO UPDATE SET is_active = EXCLUDED.is_active, updated_at = EXCLUDED.updated_at`
	now := time.Now().UTC()
	for _, update := range updates {
		if _, err := tx.ExecContext(ctx, query, userID, update.CardID, update.IsActive, now); err != nil {
			return fmt.Errorf("upsert card state for %s: %w", update.CardID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch card state: %w", err)
	}
	committed = true
	return nil
}
