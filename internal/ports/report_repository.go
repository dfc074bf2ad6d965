package ports

import (
	"context"

	"github.com/bft-labs/filetranslator/internal/domain"
)

// ReportRepository persists the report of the last batch run.
type ReportRepository interface {
	// Load returns the last saved report, or nil if none exists.
	Load(ctx context.Context) (*domain.BatchReport, error)

	// Save persists the report atomically.
	Save(ctx context.Context, report *domain.BatchReport) error
}
