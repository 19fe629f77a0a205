package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repaso-app/repaso-api/internal/models"
	appErrors "github.com/repaso-app/repaso-api/pkg/errors"
	"github.com/repaso-app/repaso-api/pkg/export"
)

type fakeExportRepo struct {
	cards []models.Card
	err   error

	gotOwner string
	gotScope string
}

func (f *fakeExportRepo) ListByOwner(_ context.Context, teacherID string, classScope string) ([]models.Card, error) {
	f.gotOwner = teacherID
	f.gotScope = classScope
	return f.cards, f.err
}

func newExportService(repo exportCardRepository) *ExportService {
	return NewExportService(repo, export.NewCSVExporter(), export.NewPDFExporter(), nil)
}

func TestExportServiceRendersCSV(t *testing.T) {
	scope := "3A"
	repo := &fakeExportRepo{cards: []models.Card{
		{ID: "card-1", Question: "¿Capital de Francia?", Answer: "París", ClassScope: &scope},
		{ID: "card-2", Question: "2+2", Answer: "4"},
	}}
	svc := newExportService(repo)

	payload, contentType, err := svc.ExportDeck(context.Background(), teacherClaims(), "csv", "3A")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
	assert.Equal(t, "teacher-1", repo.gotOwner)
	assert.Equal(t, "3A", repo.gotScope)

	body := string(payload)
	assert.True(t, strings.HasPrefix(body, "Question,Answer,Class"))
	assert.Contains(t, body, "¿Capital de Francia?,París,3A")
	assert.Contains(t, body, "2+2,4,")
}

func TestExportServiceDefaultsToCSV(t *testing.T) {
	svc := newExportService(&fakeExportRepo{})

	_, contentType, err := svc.ExportDeck(context.Background(), teacherClaims(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
}

func TestExportServiceRendersPDF(t *testing.T) {
	repo := &fakeExportRepo{cards: []models.Card{{ID: "card-1", Question: "q", Answer: "a"}}}
	svc := newExportService(repo)

	payload, contentType, err := svc.ExportDeck(context.Background(), teacherClaims(), "pdf", "")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.NotEmpty(t, payload)
}

func TestExportServiceUnsupportedFormat(t *testing.T) {
	svc := newExportService(&fakeExportRepo{})

	_, _, err := svc.ExportDeck(context.Background(), teacherClaims(), "xlsx", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportServiceRequiresTeacher(t *testing.T) {
	svc := newExportService(&fakeExportRepo{})

	_, _, err := svc.ExportDeck(context.Background(), studentClaims(), "csv", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
