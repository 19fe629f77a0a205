package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repaso-app/repaso-api/internal/middleware"
	"github.com/repaso-app/repaso-api/internal/models"
	"github.com/repaso-app/repaso-api/internal/service"
	appErrors "github.com/repaso-app/repaso-api/pkg/errors"
	"github.com/repaso-app/repaso-api/pkg/response"
)

type fakeCardService struct {
	listVisible        func(ctx context.Context, claims *models.JWTClaims) ([]models.CardWithState, error)
	create             func(ctx context.Context, claims *models.JWTClaims, req service.CreateCardRequest) (*models.Card, error)
	update             func(ctx context.Context, claims *models.JWTClaims, cardID string, req service.UpdateCardRequest) error
	toggleArchive      func(ctx context.Context, claims *models.JWTClaims, cardID string, isActive bool) error
	batchToggleArchive func(ctx context.Context, claims *models.JWTClaims, updates []models.CardStateUpdate) error
}

func (f *fakeCardService) ListVisible(ctx context.Context, claims *models.JWTClaims) ([]models.CardWithState, error) {
	return f.listVisible(ctx, claims)
}

func (f *fakeCardService) Create(ctx context.Context, claims *models.JWTClaims, req service.CreateCardRequest) (*models.Card, error) {
	return f.create(ctx, claims, req)
}

func (f *fakeCardService) Update(ctx context.Context, claims *models.JWTClaims, cardID string, req service.UpdateCardRequest) error {
	return f.update(ctx, claims, cardID, req)
}

func (f *fakeCardService) ToggleArchive(ctx context.Context, claims *models.JWTClaims, cardID string, isActive bool) error {
	return f.toggleArchive(ctx, claims, cardID, isActive)
}

func (f *fakeCardService) BatchToggleArchive(ctx context.Context, claims *models.JWTClaims, updates []models.CardStateUpdate) error {
	return f.batchToggleArchive(ctx, claims, updates)
}

type fakeDeckExportService struct {
	exportDeck func(ctx context.Context, claims *models.JWTClaims, format, classScope string) ([]byte, string, error)
}

func (f *fakeDeckExportService) ExportDeck(ctx context.Context, claims *models.JWTClaims, format, classScope string) ([]byte, string, error) {
	return f.exportDeck(ctx, claims, format, classScope)
}

func newTestContext(t *testing.T, method, target, body string, claims *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		c.Request.Header.Set("Content-Type", "application/json")
	}
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, recorder
}

func decodeEnvelope(t *testing.T, recorder *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	return envelope
}

func testTeacherClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher, Institution: "inst-1"}
}

func TestCardHandlerListReturnsCards(t *testing.T) {
	svc := &fakeCardService{
		listVisible: func(_ context.Context, claims *models.JWTClaims) ([]models.CardWithState, error) {
			assert.Equal(t, "teacher-1", claims.UserID)
			return []models.CardWithState{{ID: "card-1", Question: "q", Answer: "a", IsActive: true}}, nil
		},
	}
	h := NewCardHandler(svc, nil)

	c, recorder := newTestContext(t, http.MethodGet, "/cards", "", testTeacherClaims())
	h.List(c)

	assert.Equal(t, http.StatusOK, recorder.Code)
	envelope := decodeEnvelope(t, recorder)
	assert.Nil(t, envelope.Error)
	assert.NotNil(t, envelope.Data)
}

func TestCardHandlerCreateReturns201(t *testing.T) {
	svc := &fakeCardService{
		create: func(_ context.Context, _ *models.JWTClaims, req service.CreateCardRequest) (*models.Card, error) {
			assert.Equal(t, "q", req.Question)
			return &models.Card{ID: "card-1", Question: req.Question, Answer: req.Answer}, nil
		},
	}
	h := NewCardHandler(svc, nil)

	c, recorder := newTestContext(t, http.MethodPost, "/cards", `{"question":"q","answer":"a"}`, testTeacherClaims())
	h.Create(c)

	assert.Equal(t, http.StatusCreated, recorder.Code)
}

func TestCardHandlerCreateRejectsMalformedBody(t *testing.T) {
	h := NewCardHandler(&fakeCardService{}, nil)

	c, recorder := newTestContext(t, http.MethodPost, "/cards", `{"question":`, testTeacherClaims())
	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	envelope := decodeEnvelope(t, recorder)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrValidation.Code, envelope.Error.Code)
}

func TestCardHandlerUpdatePropagatesNotFound(t *testing.T) {
	svc := &fakeCardService{
		update: func(_ context.Context, _ *models.JWTClaims, cardID string, _ service.UpdateCardRequest) error {
			assert.Equal(t, "missing", cardID)
			return appErrors.Clone(appErrors.ErrNotFound, "card not found")
		},
	}
	h := NewCardHandler(svc, nil)

	c, recorder := newTestContext(t, http.MethodPut, "/cards/missing", `{"question":"q","answer":"a"}`, testTeacherClaims())
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	h.Update(c)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestCardHandlerUpdateReturns204(t *testing.T) {
	svc := &fakeCardService{
		update: func(_ context.Context, _ *models.JWTClaims, _ string, _ service.UpdateCardRequest) error {
			return nil
		},
	}
	h := NewCardHandler(svc, nil)

	c, recorder := newTestContext(t, http.MethodPut, "/cards/card-1", `{"question":"q2","answer":"a2"}`, testTeacherClaims())
	c.Params = gin.Params{{Key: "id", Value: "card-1"}}
	h.Update(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, recorder.Code)
}

func TestCardHandlerToggleArchiveRequiresFlag(t *testing.T) {
	h := NewCardHandler(&fakeCardService{}, nil)

	c, recorder := newTestContext(t, http.MethodPut, "/cards/card-1/archive", `{}`, testTeacherClaims())
	c.Params = gin.Params{{Key: "id", Value: "card-1"}}
	h.ToggleArchive(c)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	envelope := decodeEnvelope(t, recorder)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "is_active is required", envelope.Error.Message)
}

func TestCardHandlerToggleArchivePassesFlag(t *testing.T) {
	var gotCard string
	var gotActive bool
	svc := &fakeCardService{
		toggleArchive: func(_ context.Context, _ *models.JWTClaims, cardID string, isActive bool) error {
			gotCard, gotActive = cardID, isActive
			return nil
		},
	}
	h := NewCardHandler(svc, nil)

	c, recorder := newTestContext(t, http.MethodPut, "/cards/card-1/archive", `{"is_active":false}`, testTeacherClaims())
	c.Params = gin.Params{{Key: "id", Value: "card-1"}}
	h.ToggleArchive(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, "card-1", gotCard)
	assert.False(t, gotActive)
}

func TestCardHandlerBatchToggleArchive(t *testing.T) {
	var got []models.CardStateUpdate
	svc := &fakeCardService{
		batchToggleArchive: func(_ context.Context, _ *models.JWTClaims, updates []models.CardStateUpdate) error {
			got = updates
			return nil
		},
	}
	h := NewCardHandler(svc, nil)

	body := `{"updates":[{"card_id":"card-1","is_active":false},{"card_id":"card-2","is_active":true}]}`
	c, recorder := newTestContext(t, http.MethodPut, "/cards/archive", body, testTeacherClaims())
	h.BatchToggleArchive(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	require.Len(t, got, 2)
	assert.Equal(t, "card-1", got[0].CardID)
	assert.False(t, got[0].IsActive)
}

func TestCardHandlerExportSetsAttachment(t *testing.T) {
	export := &fakeDeckExportService{
		exportDeck: func(_ context.Context, _ *models.JWTClaims, format, classScope string) ([]byte, string, error) {
			assert.Equal(t, "csv", format)
			assert.Equal(t, "3A", classScope)
			return []byte("Question,Answer,Class\n"), "text/csv", nil
		},
	}
	h := NewCardHandler(&fakeCardService{}, export)

	c, recorder := newTestContext(t, http.MethodGet, "/cards/export?class=3A", "", testTeacherClaims())
	h.Export(c)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "text/csv", recorder.Header().Get("Content-Type"))
	assert.Contains(t, recorder.Header().Get("Content-Disposition"), "attachment")
}

func TestCardHandlerExportPropagatesForbidden(t *testing.T) {
	export := &fakeDeckExportService{
		exportDeck: func(_ context.Context, _ *models.JWTClaims, _, _ string) ([]byte, string, error) {
			return nil, "", appErrors.Clone(appErrors.ErrForbidden, "teacher role required")
		},
	}
	h := NewCardHandler(&fakeCardService{}, export)

	c, recorder := newTestContext(t, http.MethodGet, "/cards/export", "", &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent})
	h.Export(c)

	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestCardHandlerListPropagatesInternalError(t *testing.T) {
	svc := &fakeCardService{
		listVisible: func(_ context.Context, _ *models.JWTClaims) ([]models.CardWithState, error) {
			return nil, errors.New("connection refused")
		},
	}
	h := NewCardHandler(svc, nil)

	c, recorder := newTestContext(t, http.MethodGet, "/cards", "", testTeacherClaims())
	h.List(c)

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}
