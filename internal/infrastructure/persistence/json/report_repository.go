package json

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/khanhnv2901/supplywatch/internal/drift"
	"github.com/khanhnv2901/supplywatch/internal/shared/constants"
	sharedErrors "github.com/khanhnv2901/supplywatch/internal/shared/errors"
)

// SessionReport is the persisted outcome of one watch session.
type SessionReport struct {
	Site            string             `json:"site"`
	StartedAt       time.Time          `json:"started_at"`
	CompletedAt     time.Time          `json:"completed_at"`
	BaselinePresent bool               `json:"baseline_present"`
	Observations    drift.Observations `json:"observations"`
	Unauthorized    drift.Report       `json:"unauthorized"`
}

// ReportRepository persists session reports as JSON artifacts.
type ReportRepository struct {
	filePath string
}

// NewReportRepository returns a repository for the given report file.
func NewReportRepository(filePath string) (*ReportRepository, error) {
	if filePath == "" {
		return nil, fmt.Errorf("%w: report path cannot be empty", sharedErrors.ErrInvalidInput)
	}
	return &ReportRepository{filePath: filePath}, nil
}

// Save writes the report, replacing any previous session's artifact.
func (r *ReportRepository) Save(report SessionReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", sharedErrors.ErrSerializationFailed, err)
	}
	if err := os.WriteFile(r.filePath, append(data, '\n'), constants.DefaultFilePerm); err != nil {
		return fmt.Errorf("write report %s: %w", r.filePath, err)
	}
	return nil
}

// Load reads the last saved report. A missing file returns ErrNoReport.
func (r *ReportRepository) Load() (SessionReport, error) {
	data, err := os.ReadFile(r.filePath)
	if os.IsNotExist(err) {
		return SessionReport{}, sharedErrors.ErrNoReport
	}
	if err != nil {
		return SessionReport{}, fmt.Errorf("read report %s: %w", r.filePath, err)
	}

	var report SessionReport
	if err := json.Unmarshal(data, &report); err != nil {
		return SessionReport{}, fmt.Errorf("%w: %s: %v", sharedErrors.ErrDeserializationFailed, r.filePath, err)
	}
	return report, nil
}
