package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/repaso-app/repaso-api/internal/models"
	appErrors "github.com/repaso-app/repaso-api/pkg/errors"
	"github.com/repaso-app/repaso-api/pkg/export"
)

type exportCardRepository interface {
	ListByOwner(ctx context.Context, teacherID string, classScope string) ([]models.Card, error)
}

// ExportService renders a teacher's card deck into downloadable documents.
type ExportService struct {
	repo   exportCardRepository
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(repo exportCardRepository, csv *export.CSVExporter, pdf *export.PDFExporter, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{repo: repo, csv: csv, pdf: pdf, logger: logger}
}

// ExportDeck renders the calling teacher's cards, optionally narrowed to one
// class scope. Returns the document bytes and content type.
func (s *ExportService) ExportDeck(ctx context.Context, claims *models.JWTClaims, format, classScope string) ([]byte, string, error) {
	if err := requireTeacher(claims); err != nil {
		return nil, "", err
	}

	cards, err := s.repo.ListByOwner(ctx, claims.UserID, strings.TrimSpace(classScope))
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cards for export")
	}

	dataset := export.Dataset{
		Headers: []string{"Question", "Answer", "Class"},
		Rows:    make([]map[string]string, 0, len(cards)),
	}
	for _, card := range cards {
		scope := ""
		if card.ClassScope != nil {
			scope = *card.ClassScope
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Question": card.Question,
			"Answer":   card.Answer,
			"Class":    scope,
		})
	}

	switch strings.ToLower(format) {
	case "csv", "":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", nil
	case "pdf":
		payload, err := s.pdf.Render(dataset, "card deck")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}
