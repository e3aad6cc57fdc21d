package json

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/khanhnv2901/supplywatch/internal/drift"
	"github.com/khanhnv2901/supplywatch/internal/shared/constants"
	sharedErrors "github.com/khanhnv2901/supplywatch/internal/shared/errors"
)

// BaselineRepository reads the authorized-host baseline from a JSON file
// mapping category name to wildcard host patterns. The file is read once
// per session and never written by the engine; recommendations go to a
// separate artifact.
type BaselineRepository struct {
	filePath string
}

// NewBaselineRepository returns a repository for the given baseline file.
func NewBaselineRepository(filePath string) (*BaselineRepository, error) {
	if filePath == "" {
		return nil, sharedErrors.ErrEmptyBaselinePath
	}
	return &BaselineRepository{filePath: filePath}, nil
}

// Load parses the baseline file. A missing file returns
// ErrBaselineNotFound: that is first-run mode, not a failure.
func (r *BaselineRepository) Load() (*drift.Baseline, error) {
	data, err := os.ReadFile(r.filePath)
	if os.IsNotExist(err) {
		return nil, sharedErrors.ErrBaselineNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read baseline %s: %w", r.filePath, err)
	}

	var entries map[string][]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", sharedErrors.ErrBaselineMalformed, r.filePath, err)
	}

	baseline, err := drift.NewBaseline(entries)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", sharedErrors.ErrBaselineMalformed, r.filePath, err)
	}
	return baseline, nil
}

// WriteRecommendation writes the observed sets as literal patterns, meant
// to seed an initial baseline after review.
func (r *BaselineRepository) WriteRecommendation(path string, obs drift.Observations) error {
	entries := make(map[string][]string, len(obs))
	for _, cat := range drift.Categories() {
		entries[string(cat)] = append([]string{}, obs[cat]...)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", sharedErrors.ErrSerializationFailed, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), constants.DefaultFilePerm); err != nil {
		return fmt.Errorf("write recommendation %s: %w", path, err)
	}
	return nil
}
