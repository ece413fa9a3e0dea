package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/dance-studio-api/internal/models"
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
	"github.com/noah-isme/dance-studio-api/pkg/export"
)

type rosterReader interface {
	ListActiveByClass(ctx context.Context, classID string) ([]models.EnrollmentDetail, error)
}

// RosterExport is a rendered roster document ready for download.
type RosterExport struct {
	FileName    string
	ContentType string
	Body        []byte
}

// ExportService renders class rosters for staff download.
type ExportService struct {
	enrollments rosterReader
	classes     classReader
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	logger      *zap.Logger
}

// NewExportService constructs ExportService.
func NewExportService(enrollments rosterReader, classes classReader, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		enrollments: enrollments,
		classes:     classes,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		logger:      logger,
	}
}

// Roster renders the active roster of a class in the requested format
// (csv or pdf).
func (s *ExportService) Roster(ctx context.Context, classID, format string) (*RosterExport, error) {
	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}

	enrollments, err := s.enrollments.ListActiveByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	table := export.Table{
		Headers: []string{"Student", "Enrolled At"},
		Rows:    make([][]string, 0, len(enrollments)),
	}
	for _, e := range enrollments {
		table.Rows = append(table.Rows, []string{e.StudentName, e.EnrolledAt.Format(time.RFC3339)})
	}

	switch format {
	case "csv", "":
		body, err := s.csv.Render(table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &RosterExport{
			FileName:    fmt.Sprintf("roster-%s.csv", classID),
			ContentType: "text/csv",
			Body:        body,
		}, nil
	case "pdf":
		body, err := s.pdf.Render(table, fmt.Sprintf("%s roster", class.Name))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &RosterExport{
			FileName:    fmt.Sprintf("roster-%s.pdf", classID),
			ContentType: "application/pdf",
			Body:        body,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}
