package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/khanhnv2901/supplywatch/internal/application/watch"
	"github.com/khanhnv2901/supplywatch/internal/browser"
	"github.com/khanhnv2901/supplywatch/internal/drift"
	jsonrepo "github.com/khanhnv2901/supplywatch/internal/infrastructure/persistence/json"
	"github.com/khanhnv2901/supplywatch/internal/security"
	"github.com/khanhnv2901/supplywatch/internal/shared/constants"
	"github.com/khanhnv2901/supplywatch/internal/tracker"
)

var watchCmd = &cobra.Command{
	Use:   "watch <site-url>",
	Short: "Run one monitoring session against a site and reconcile drift issues",
	Long: `Browse the site with a headless browser, aggregate the external hosts it
loads scripts from and connects to, score scripts for obfuscation and
dangerous calls, then compare everything against the authorized baseline.

Without a baseline file the session writes a recommended baseline instead
of comparing, and never touches the issue tracker.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		site := args[0]
		if err := validateSiteURL(site); err != nil {
			return err
		}
		bindWatchFlags(cmd)

		baselinePath, err := security.ResolveWithin(resultsDir, constants.BaselineFilename)
		if err != nil {
			return err
		}
		reportPath, err := security.ResolveWithin(resultsDir, constants.ReportFilename)
		if err != nil {
			return err
		}
		recommendationPath, err := security.ResolveWithin(resultsDir, constants.RecommendationFilename)
		if err != nil {
			return err
		}

		baselineRepo, err := jsonrepo.NewBaselineRepository(baselinePath)
		if err != nil {
			return err
		}
		reportRepo, err := jsonrepo.NewReportRepository(reportPath)
		if err != nil {
			return err
		}

		var trackerCli tracker.Client
		if trackerCfg := cliConfig.trackerGitHubConfig(); trackerCfg.Configured() {
			trackerCli = tracker.NewGitHubClient(trackerCfg)
		} else {
			logger.Info("tracker credentials not configured, issue lifecycle disabled")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		orchestrator := watch.NewOrchestrator(baselineRepo, reportRepo, browser.Browse, trackerCli, logger)
		report, err := orchestrator.Run(ctx, watch.Config{
			Browser: browser.Config{
				SiteURL: site,
				Timeout: cliConfig.browseTimeout(),
				Settle:  cliConfig.settle(),
			},
			ObfuscationLimit:   cliConfig.Watch.ObfuscationLimit,
			SuspiciousNames:    cliConfig.Watch.SuspiciousCalls,
			RecommendationPath: recommendationPath,
		})
		if err != nil {
			return err
		}

		printSessionSummary(report, reportPath, recommendationPath)
		return nil
	},
}

func printSessionSummary(report jsonrepo.SessionReport, reportPath, recommendationPath string) {
	fmt.Println(colorSuccess("Session complete."))
	fmt.Printf("%s %s\n", colorInfo("Site:"), report.Site)
	fmt.Printf("%s %s\n", colorInfo("Report:"), reportPath)

	if !report.BaselinePresent {
		fmt.Println(colorWarn("No baseline established yet; tracker untouched."))
		fmt.Printf("%s %s\n", colorInfo("Recommended baseline:"), recommendationPath)
		return
	}

	for _, cat := range drift.Categories() {
		hosts := report.Unauthorized[cat]
		fmt.Printf("  %-28s %s\n", cat.Title()+":", formatDriftCount(len(hosts)))
		for _, host := range hosts {
			fmt.Printf("    %s %s\n", colorError("drift:"), host)
		}
	}
}

// bindWatchFlags copies explicitly set flags over the config-file values.
func bindWatchFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("obfuscation-limit") {
		if v, err := flags.GetFloat64("obfuscation-limit"); err == nil {
			cliConfig.Watch.ObfuscationLimit = v
		}
	}
	if flags.Changed("suspicious-calls") {
		if v, err := flags.GetStringSlice("suspicious-calls"); err == nil {
			cliConfig.Watch.SuspiciousCalls = v
		}
	}
	if flags.Changed("browse-timeout") {
		if v, err := flags.GetInt("browse-timeout"); err == nil {
			cliConfig.Watch.BrowseTimeoutSecs = v
		}
	}
	if flags.Changed("settle") {
		if v, err := flags.GetInt("settle"); err == nil {
			cliConfig.Watch.SettleSecs = v
		}
	}
}

func init() {
	watchCmd.Flags().Float64("obfuscation-limit", constants.DefaultObfuscationLimit,
		"percentage at which any obfuscation ratio flags a script")
	watchCmd.Flags().StringSlice("suspicious-calls", []string{"eval", "atob", "btoa"},
		"member function names flagged as suspicious")
	watchCmd.Flags().Int("browse-timeout", defaultBrowseTimeoutSecs,
		"browsing phase wall-clock timeout in seconds")
	watchCmd.Flags().Int("settle", defaultSettleSecs,
		"seconds to keep observing after the initial navigation")
}
