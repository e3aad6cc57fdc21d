// Package watch coordinates one monitoring session: browse, analyze,
// compare against the baseline and reconcile tracker issues.
package watch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/khanhnv2901/supplywatch/internal/analysis"
	"github.com/khanhnv2901/supplywatch/internal/browser"
	"github.com/khanhnv2901/supplywatch/internal/drift"
	jsonrepo "github.com/khanhnv2901/supplywatch/internal/infrastructure/persistence/json"
	sharedErrors "github.com/khanhnv2901/supplywatch/internal/shared/errors"
	"github.com/khanhnv2901/supplywatch/internal/tracker"
)

// BrowseFunc supplies the browsing phase. Injected so tests can feed
// canned scripts without a browser.
type BrowseFunc func(ctx context.Context, cfg browser.Config, agg *drift.Aggregator, logger *zap.SugaredLogger) ([]browser.Script, error)

// Config carries the per-session settings the orchestrator needs.
type Config struct {
	Browser            browser.Config
	ObfuscationLimit   float64
	SuspiciousNames    []string
	RecommendationPath string
}

// Orchestrator runs watch sessions.
type Orchestrator struct {
	baselineRepo *jsonrepo.BaselineRepository
	reportRepo   *jsonrepo.ReportRepository
	browse       BrowseFunc
	trackerCli   tracker.Client // nil when credentials are not configured
	logger       *zap.SugaredLogger
}

// NewOrchestrator wires a session orchestrator. trackerCli may be nil; the
// lifecycle phase is then skipped entirely.
func NewOrchestrator(
	baselineRepo *jsonrepo.BaselineRepository,
	reportRepo *jsonrepo.ReportRepository,
	browse BrowseFunc,
	trackerCli tracker.Client,
	logger *zap.SugaredLogger,
) *Orchestrator {
	return &Orchestrator{
		baselineRepo: baselineRepo,
		reportRepo:   reportRepo,
		browse:       browse,
		trackerCli:   trackerCli,
		logger:       logger,
	}
}

// Run executes one full session and returns the persisted report. Only a
// failed browsing phase is fatal; every per-script and per-category
// failure is logged and skipped.
func (o *Orchestrator) Run(ctx context.Context, cfg Config) (jsonrepo.SessionReport, error) {
	started := time.Now().UTC()

	agg := drift.NewAggregator(o.logger)
	scripts, err := o.browse(ctx, cfg.Browser, agg, o.logger)
	if err != nil {
		return jsonrepo.SessionReport{}, fmt.Errorf("browsing phase: %w", err)
	}

	o.analyzeScripts(agg, scripts, cfg)
	obs := agg.Snapshot()

	report := jsonrepo.SessionReport{
		Site:         cfg.Browser.SiteURL,
		StartedAt:    started,
		Observations: obs,
	}

	baseline, err := o.baselineRepo.Load()
	switch {
	case errors.Is(err, sharedErrors.ErrBaselineNotFound):
		// first-run mode: no comparison, no tracker traffic, emit a seed
		// recommendation instead
		o.logger.Infow("no baseline established, writing recommendation",
			"path", cfg.RecommendationPath)
		if werr := o.baselineRepo.WriteRecommendation(cfg.RecommendationPath, obs); werr != nil {
			return jsonrepo.SessionReport{}, werr
		}
	case err != nil:
		return jsonrepo.SessionReport{}, err
	default:
		report.BaselinePresent = true
		report.Unauthorized = drift.Compare(obs, baseline)
		for _, cat := range drift.Categories() {
			for _, host := range report.Unauthorized[cat] {
				o.logger.Warnw("unauthorized host", "category", string(cat), "host", host)
			}
		}
	}

	report.CompletedAt = time.Now().UTC()
	if err := o.reportRepo.Save(report); err != nil {
		return jsonrepo.SessionReport{}, err
	}

	if report.BaselinePresent && o.trackerCli != nil {
		lifecycle := tracker.NewLifecycle(o.trackerCli, cfg.Browser.SiteURL, o.logger)
		lifecycle.Run(ctx, report.Unauthorized)
	}

	return report, nil
}

// analyzeScripts feeds retrieved script bodies through the obfuscation
// scorer and the suspicious-call detector, recording offenders into the
// flagged categories.
func (o *Orchestrator) analyzeScripts(agg *drift.Aggregator, scripts []browser.Script, cfg Config) {
	names := analysis.NameSet(cfg.SuspiciousNames)

	for _, script := range scripts {
		if len(script.Body) == 0 {
			// commonly caused by cross-origin response blocking, not an error
			o.logger.Infow("empty script body, skipping analysis", "url", script.URL)
			continue
		}

		score := analysis.ScoreContent(script.Body)
		if score.Exceeds(cfg.ObfuscationLimit) {
			o.logger.Warnw("obfuscated script",
				"host", script.Host, "url", script.URL,
				"unicode", score.Unicode, "hex", score.Hex,
				"percent", score.Percent, "packer", score.Packer)
			agg.Record(drift.CategoryObfuscatedHosts, script.Host)
		}

		calls, err := analysis.DetectSuspiciousCalls(script.Body, names)
		if err != nil {
			o.logger.Warnw("script excluded from call detection", "url", script.URL, "error", err)
			continue
		}
		if len(calls) > 0 {
			for _, call := range calls {
				o.logger.Warnw("suspicious call", "host", script.Host, "url", script.URL, "call", call.String())
			}
			agg.Record(drift.CategorySuspiciousHosts, script.Host)
		}
	}
}
