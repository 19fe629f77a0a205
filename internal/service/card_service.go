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

type cardRepository interface {
	ListVisible(ctx context.Context, filter models.VisibilityFilter) ([]models.CardWithState, error)
	CreateWithState(ctx context.Context, card *models.Card, creatorID string) error
	Update(ctx context.Context, id, question, answer string) error
	UpsertState(ctx context.Context, userID, cardID string, isActive bool) error
	UpsertStates(ctx context.Context, userID string, updates []models.CardStateUpdate) error
}

const visibleCardsKeyPrefix = "cards:visible:"

func visibleCardsKey(userID string) string {
	return visibleCardsKeyPrefix + userID
}

// CreateCardRequest holds the payload for creating a card.
type CreateCardRequest struct {
	Question   string `json:"question" validate:"required"`
	Answer     string `json:"answer" validate:"required"`
	ClassScope string `json:"class_scope"`
}

// UpdateCardRequest holds the payload for overwriting a card's content.
type UpdateCardRequest struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
}

// ToggleArchiveRequest flips one card's activation flag for the caller.
type ToggleArchiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// BatchToggleArchiveRequest applies several activation upserts atomically.
type BatchToggleArchiveRequest struct {
	Updates []models.CardStateUpdate `json:"updates" validate:"required,min=1,dive"`
}

// CardService resolves card visibility and applies card state mutations.
type CardService struct {
	repo      cardRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCardService constructs the card service.
func NewCardService(repo cardRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CardService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CardService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// ListVisible returns every card the principal may see with its effective
// activation flag, serving from cache where possible.
func (s *CardService) ListVisible(ctx context.Context, claims *models.JWTClaims) ([]models.CardWithState, error) {
	key := visibleCardsKey(claims.UserID)
	if s.cache.Enabled() {
		var cached []models.CardWithState
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	cards, err := s.repo.ListVisible(ctx, models.VisibilityFilterFromClaims(claims))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list cards")
	}
	if cards == nil {
		cards = []models.CardWithState{}
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, key, cards, 0); err != nil {
			s.logger.Warn("failed to cache visible cards", zap.String("user_id", claims.UserID), zap.Error(err))
		}
	}
	return cards, nil
}

// Create inserts a card and activates it for its creator in one transaction.
// Ownership and class scope are only recorded for teachers.
func (s *CardService) Create(ctx context.Context, claims *models.JWTClaims, req CreateCardRequest) (*models.Card, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid card payload")
	}
	question := strings.TrimSpace(req.Question)
	answer := strings.TrimSpace(req.Answer)
	if question == "" || answer == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "question and answer must not be empty")
	}

	card := &models.Card{Question: question, Answer: answer}
	if claims.Role == models.RoleTeacher {
		owner := claims.UserID
		card.OwnerTeacherID = &owner
		scope := strings.TrimSpace(req.ClassScope)
		if scope == "" {
			scope = models.ClassScopeAll
		}
		card.ClassScope = &scope
	}

	if err := s.repo.CreateWithState(ctx, card, claims.UserID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create card")
	}

	s.invalidate(ctx, visibleCardsKeyPrefix+"*")
	return card, nil
}

// Update overwrites a card's content. There is intentionally no ownership
// check here: any authenticated principal may edit any card's text.
func (s *CardService) Update(ctx context.Context, claims *models.JWTClaims, cardID string, req UpdateCardRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid card payload")
	}
	question := strings.TrimSpace(req.Question)
	answer := strings.TrimSpace(req.Answer)
	if question == "" || answer == "" {
		return appErrors.Clone(appErrors.ErrValidation, "question and answer must not be empty")
	}

	if err := s.repo.Update(ctx, cardID, question, answer); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "card not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update card")
	}

	// Card content is global, so every user's resolved list is stale.
	s.invalidate(ctx, visibleCardsKeyPrefix+"*")
	return nil
}

// ToggleArchive upserts the caller's activation flag for one card. Repeating
// the same call is a no-op in effect, and no other user's state is touched.
func (s *CardService) ToggleArchive(ctx context.Context, claims *models.JWTClaims, cardID string, isActive bool) error {
	if strings.TrimSpace(cardID) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "card id is required")
	}
	if err := s.repo.UpsertState(ctx, claims.UserID, cardID, isActive); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update card state")
	}
	s.invalidate(ctx, visibleCardsKey(claims.UserID))
	return nil
}

// BatchToggleArchive applies all entries in one transaction, in the given
// order, so a duplicate card id deterministically resolves to the last entry.
func (s *CardService) BatchToggleArchive(ctx context.Context, claims *models.JWTClaims, updates []models.CardStateUpdate) error {
	if len(updates) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "at least one entry is required")
	}
	for _, update := range updates {
		if strings.TrimSpace(update.CardID) == "" {
			return appErrors.Clone(appErrors.ErrValidation, "every entry requires a card id")
		}
	}

	if err := s.repo.UpsertStates(ctx, claims.UserID, updates); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply card state batch")
	}
	s.invalidate(ctx, visibleCardsKey(claims.UserID))
	return nil
}

func (s *CardService) invalidate(ctx context.Context, pattern string) {
	if !s.cache.Enabled() {
		return
	}
	if err := s.cache.Invalidate(ctx, pattern); err != nil {
		s.logger.Warn("failed to invalidate card cache", zap.String("pattern", pattern), zap.Error(err))
	}
}
