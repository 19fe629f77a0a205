package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/repaso-app/repaso-api/internal/models"
	"github.com/repaso-app/repaso-api/internal/service"
	appErrors "github.com/repaso-app/repaso-api/pkg/errors"
	"github.com/repaso-app/repaso-api/pkg/response"
)

type cardService interface {
	ListVisible(ctx context.Context, claims *models.JWTClaims) ([]models.CardWithState, error)
	Create(ctx context.Context, claims *models.JWTClaims, req service.CreateCardRequest) (*models.Card, error)
	Update(ctx context.Context, claims *models.JWTClaims, cardID string, req service.UpdateCardRequest) error
	ToggleArchive(ctx context.Context, claims *models.JWTClaims, cardID string, isActive bool) error
	BatchToggleArchive(ctx context.Context, claims *models.JWTClaims, updates []models.CardStateUpdate) error
}

type deckExportService interface {
	ExportDeck(ctx context.Context, claims *models.JWTClaims, format, classScope string) ([]byte, string, error)
}

// CardHandler exposes card visibility and state-mutation endpoints.
type CardHandler struct {
	cards  cardService
	export deckExportService
}

// NewCardHandler constructs CardHandler.
func NewCardHandler(cards cardService, export deckExportService) *CardHandler {
	return &CardHandler{cards: cards, export: export}
}

// List godoc
// @Summary List cards visible to the caller with their activation state
// @Tags Cards
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /cards [get]
func (h *CardHandler) List(c *gin.Context) {
	cards, err := h.cards.ListVisible(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cards, nil)
}

// Create godoc
// @Summary Create a card and activate it for the caller
// @Tags Cards
// @Accept json
// @Produce json
// @Param payload body service.CreateCardRequest true "Card payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /cards [post]
func (h *CardHandler) Create(c *gin.Context) {
	var req service.CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	card, err := h.cards.Create(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, card)
}

// Update godoc
// @Summary Overwrite a card's question and answer
// @Tags Cards
// @Accept json
// @Produce json
// @Param id path string true "Card ID"
// @Param payload body service.UpdateCardRequest true "Card payload"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /cards/{id} [put]
func (h *CardHandler) Update(c *gin.Context) {
	var req service.UpdateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.cards.Update(c.Request.Context(), claimsFromContext(c), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ToggleArchive godoc
// @Summary Archive or activate one card for the caller
// @Tags Cards
// @Accept json
// @Produce json
// @Param id path string true "Card ID"
// @Param payload body service.ToggleArchiveRequest true "Activation flag"
// @Success 204
// @Security BearerAuth
// @Router /cards/{id}/archive [put]
func (h *CardHandler) ToggleArchive(c *gin.Context) {
	var req service.ToggleArchiveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsActive == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "is_active is required"))
		return
	}
	if err := h.cards.ToggleArchive(c.Request.Context(), claimsFromContext(c), c.Param("id"), *req.IsActive); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// BatchToggleArchive godoc
// @Summary Apply several archive toggles atomically
// @Tags Cards
// @Accept json
// @Produce json
// @Param payload body service.BatchToggleArchiveRequest true "Batch of updates"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /cards/archive [put]
func (h *CardHandler) BatchToggleArchive(c *gin.Context) {
	var req service.BatchToggleArchiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.cards.BatchToggleArchive(c.Request.Context(), claimsFromContext(c), req.Updates); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export the calling teacher's deck as CSV or PDF
// @Tags Cards
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Param class query string false "Limit to one class scope"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /cards/export [get]
func (h *CardHandler) Export(c *gin.Context) {
	payload, contentType, err := h.export.ExportDeck(c.Request.Context(), claimsFromContext(c), c.DefaultQuery("format", "csv"), c.Query("class"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="deck"`)
	c.Data(http.StatusOK, contentType, payload)
}
