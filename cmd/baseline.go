package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khanhnv2901/supplywatch/internal/drift"
	jsonrepo "github.com/khanhnv2901/supplywatch/internal/infrastructure/persistence/json"
	"github.com/khanhnv2901/supplywatch/internal/security"
	"github.com/khanhnv2901/supplywatch/internal/shared/constants"
	sharedErrors "github.com/khanhnv2901/supplywatch/internal/shared/errors"
)

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Inspect or seed the authorized-host baseline",
}

var baselineShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the loaded baseline patterns per category",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := baselineRepository()
		if err != nil {
			return err
		}

		baseline, err := repo.Load()
		if errors.Is(err, sharedErrors.ErrBaselineNotFound) {
			fmt.Println(colorWarn("No baseline file present."))
			fmt.Println("Run a watch session to generate a recommendation, then `supplywatch baseline init`.")
			return nil
		}
		if err != nil {
			return err
		}

		for _, cat := range drift.Categories() {
			patterns := baseline.Patterns(cat)
			if len(patterns) == 0 {
				fmt.Printf("%s %s\n", colorInfo(cat.Title()+":"), colorWarn("(no patterns, everything reports as drift)"))
				continue
			}
			fmt.Printf("%s\n", colorInfo(cat.Title()+":"))
			for _, p := range patterns {
				fmt.Printf("  %s\n", p)
			}
		}
		return nil
	},
}

var baselineInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Seed the baseline from the last session's observations",
	Long: `Write the previous session's observed hosts as literal baseline patterns.
Review and widen them to wildcards by hand afterwards; the engine itself
never writes the baseline file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		repo, err := baselineRepository()
		if err != nil {
			return err
		}
		if _, err := repo.Load(); err == nil && !force {
			return fmt.Errorf("baseline already exists; pass --force to overwrite")
		}

		reportPath, err := security.ResolveWithin(resultsDir, constants.ReportFilename)
		if err != nil {
			return err
		}
		reportRepo, err := jsonrepo.NewReportRepository(reportPath)
		if err != nil {
			return err
		}
		report, err := reportRepo.Load()
		if err != nil {
			return err
		}

		baselinePath, err := security.ResolveWithin(resultsDir, constants.BaselineFilename)
		if err != nil {
			return err
		}
		if err := repo.WriteRecommendation(baselinePath, report.Observations); err != nil {
			return err
		}

		fmt.Println(colorSuccess("Baseline written."))
		fmt.Printf("%s %s\n", colorInfo("Baseline:"), baselinePath)
		fmt.Printf("%s %s\n", colorInfo("Seeded from session:"), report.Site)
		return nil
	},
}

func baselineRepository() (*jsonrepo.BaselineRepository, error) {
	baselinePath, err := security.ResolveWithin(resultsDir, constants.BaselineFilename)
	if err != nil {
		return nil, err
	}
	return jsonrepo.NewBaselineRepository(baselinePath)
}

func init() {
	baselineInitCmd.Flags().Bool("force", false, "overwrite an existing baseline")
	baselineCmd.AddCommand(baselineShowCmd)
	baselineCmd.AddCommand(baselineInitCmd)
}
