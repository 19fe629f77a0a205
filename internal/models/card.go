package models

import "time"

// ClassScopeAll marks a card as visible to every class owned by its teacher.
const ClassScopeAll = "ALL"

// Card is a globally-identified question/answer unit. Content is shared;
// per-user activation lives in user_card_state.
type Card struct {
	ID             string    `db:"id" json:"id"`
	Question       string    `db:"question" json:"question"`
	Answer         string    `db:"answer" json:"answer"`
	OwnerTeacherID *string   `db:"owner_teacher_id" json:"owner_teacher_id,omitempty"`
	ClassScope     *string   `db:"class_scope" json:"class_scope,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// UserCardState is one user's activation flag for one card. The row is an
// upsert target keyed by (user_id, card_id); an absent row resolves to active.
type UserCardState struct {
	UserID    string    `db:"user_id" json:"user_id"`
	CardID    string    `db:"card_id" json:"card_id"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CardWithState is a card annotated with the effective activation flag for
// the requesting user.
type CardWithState struct {
	ID             string    `db:"id" json:"id"`
	Question       string    `db:"question" json:"question"`
	Answer         string    `db:"answer" json:"answer"`
	OwnerTeacherID *string   `db:"owner_teacher_id" json:"owner_teacher_id,omitempty"`
	ClassScope     *string   `db:"class_scope" json:"class_scope,omitempty"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// CardStateUpdate is a single entry of a batch archive toggle.
type CardStateUpdate struct {
	CardID   string `json:"card_id" validate:"required"`
	IsActive bool   `json:"is_active"`
}

// VisibilityFilter captures the principal attributes the card store needs to
// resolve the visible set for one user.
type VisibilityFilter struct {
	UserID     string
	Role       UserRole
	GuardianID *string
	ClassName  string
}
