package json

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/khanhnv2901/supplywatch/internal/drift"
	sharedErrors "github.com/khanhnv2901/supplywatch/internal/shared/errors"
)

func TestBaselineRepositoryLoadMissingFile(t *testing.T) {
	repo, err := NewBaselineRepository(filepath.Join(t.TempDir(), "baseline.json"))
	if err != nil {
		t.Fatalf("NewBaselineRepository: %v", err)
	}

	if _, err := repo.Load(); !errors.Is(err, sharedErrors.ErrBaselineNotFound) {
		t.Fatalf("expected ErrBaselineNotFound, got %v", err)
	}
}

func TestBaselineRepositoryLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseline.json")
	content := `{"script-hosts": ["*.example.com", "cdn.trusted.net"], "xhr-hosts": ["api.example.com"]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	repo, err := NewBaselineRepository(path)
	if err != nil {
		t.Fatalf("NewBaselineRepository: %v", err)
	}
	baseline, err := repo.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !baseline.Authorized(drift.CategoryScriptHosts, "a.example.com") {
		t.Fatal("expected wildcard pattern to authorize a.example.com")
	}
	if baseline.Authorized(drift.CategoryXHRHosts, "other.api.net") {
		t.Fatal("did not expect other.api.net to be authorized")
	}
	if baseline.HasCategory(drift.CategoryWebSocketHosts) {
		t.Fatal("websocket category should be absent from this baseline")
	}
}

func TestBaselineRepositoryLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseline.json")
	if err := os.WriteFile(path, []byte(`{"not-a-category": ["*"]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	repo, _ := NewBaselineRepository(path)
	if _, err := repo.Load(); !errors.Is(err, sharedErrors.ErrBaselineMalformed) {
		t.Fatalf("expected ErrBaselineMalformed, got %v", err)
	}
}

func TestBaselineRepositoryWriteRecommendation(t *testing.T) {
	dir := t.TempDir()
	repo, _ := NewBaselineRepository(filepath.Join(dir, "baseline.json"))

	obs := drift.Observations{
		drift.CategoryScriptHosts: {"cdn.example.com"},
	}
	recPath := filepath.Join(dir, "baseline.recommended.json")
	if err := repo.WriteRecommendation(recPath, obs); err != nil {
		t.Fatalf("WriteRecommendation: %v", err)
	}

	// the recommendation must itself load as a valid baseline
	recRepo, _ := NewBaselineRepository(recPath)
	baseline, err := recRepo.Load()
	if err != nil {
		t.Fatalf("Load recommendation: %v", err)
	}
	if !baseline.Authorized(drift.CategoryScriptHosts, "cdn.example.com") {
		t.Fatal("recommendation does not authorize the observed host")
	}
}

func TestReportRepositoryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	repo, err := NewReportRepository(path)
	if err != nil {
		t.Fatalf("NewReportRepository: %v", err)
	}

	if _, err := repo.Load(); !errors.Is(err, sharedErrors.ErrNoReport) {
		t.Fatalf("expected ErrNoReport before save, got %v", err)
	}

	saved := SessionReport{
		Site:            "https://app.example.com",
		StartedAt:       time.Now().UTC().Truncate(time.Second),
		CompletedAt:     time.Now().UTC().Truncate(time.Second),
		BaselinePresent: true,
		Observations: drift.Observations{
			drift.CategoryScriptHosts: {"cdn.example.com", "evil.io"},
		},
		Unauthorized: drift.Report{
			drift.CategoryScriptHosts: {"evil.io"},
		},
	}
	if err := repo.Save(saved); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := repo.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Site != saved.Site || !loaded.BaselinePresent {
		t.Fatalf("loaded report metadata mismatch: %+v", loaded)
	}
	if !reflect.DeepEqual(loaded.Unauthorized[drift.CategoryScriptHosts], []string{"evil.io"}) {
		t.Fatalf("loaded report drift mismatch: %+v", loaded.Unauthorized)
	}
}
