package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/bft-labs/filetranslator/internal/domain"
)

// ReportFileRepository implements ports.ReportRepository using a JSON file.
type ReportFileRepository struct {
	dir  string
	name string
}

// NewReportFileRepository creates a repository storing
// <dir>/<mode>-batch-report.json.
func NewReportFileRepository(dir string, mode domain.Mode) *ReportFileRepository {
	return &ReportFileRepository{dir: dir, name: string(mode) + "-batch-report.json"}
}

// Load retrieves the last saved report.
// Returns a nil report and nil error if no report file exists.
func (r *ReportFileRepository) Load(ctx context.Context) (*domain.BatchReport, error) {
	data, err := os.ReadFile(r.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var report domain.BatchReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Save persists the report atomically.
func (r *ReportFileRepository) Save(ctx context.Context, report *domain.BatchReport) error {
	if err := os.MkdirAll(r.dir, 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(r.Path(), data)
}

// Path returns the full path to the report file.
func (r *ReportFileRepository) Path() string {
	return filepath.Join(r.dir, r.name)
}
