package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/spf13/cobra"

	"github.com/khanhnv2901/supplywatch/internal/drift"
	jsonrepo "github.com/khanhnv2901/supplywatch/internal/infrastructure/persistence/json"
	"github.com/khanhnv2901/supplywatch/internal/security"
	"github.com/khanhnv2901/supplywatch/internal/shared/constants"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the last session's drift report",
	RunE: func(cmd *cobra.Command, args []string) error {
		reportPath, err := security.ResolveWithin(resultsDir, constants.ReportFilename)
		if err != nil {
			return err
		}
		repo, err := jsonrepo.NewReportRepository(reportPath)
		if err != nil {
			return err
		}
		report, err := repo.Load()
		if err != nil {
			return err
		}

		pdfOut, _ := cmd.Flags().GetString("pdf")
		if pdfOut != "" {
			pdfPath, err := security.ResolveWithin(resultsDir, pdfOut)
			if err != nil {
				return err
			}
			if err := writePDFReport(report, pdfPath); err != nil {
				return err
			}
			fmt.Printf("%s %s\n", colorInfo("PDF:"), pdfPath)
			return nil
		}

		printTextReport(report)
		return nil
	},
}

func printTextReport(report jsonrepo.SessionReport) {
	fmt.Printf("%s %s\n", colorInfo("Site:"), report.Site)
	fmt.Printf("%s %s\n", colorInfo("Session:"),
		fmt.Sprintf("%s .. %s", report.StartedAt.Format(time.RFC3339), report.CompletedAt.Format(time.RFC3339)))

	if !report.BaselinePresent {
		fmt.Println(colorWarn("Session ran without a baseline; observations only."))
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tOBSERVED\tDRIFT")
	for _, cat := range drift.Categories() {
		fmt.Fprintf(w, "%s\t%d\t%s\n",
			cat.Title(), len(report.Observations[cat]), formatDriftCount(len(report.Unauthorized[cat])))
	}
	w.Flush()

	for _, cat := range drift.Categories() {
		for _, host := range report.Unauthorized[cat] {
			fmt.Printf("%s %s: %s\n", colorError("drift:"), cat.Title(), host)
		}
	}
}

func writePDFReport(report jsonrepo.SessionReport, path string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Title
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, fmt.Sprintf("Supply-Chain Drift Report: %s", report.Site), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Metadata section
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Started: %s", report.StartedAt.Format(time.RFC3339)), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Completed: %s", report.CompletedAt.Format(time.RFC3339)), "", 1, "", false, 0, "")
	if !report.BaselinePresent {
		pdf.CellFormat(0, 6, "Baseline: not established (observations only)", "", 1, "", false, 0, "")
	}
	pdf.Ln(5)

	for _, cat := range drift.Categories() {
		if pdf.GetY() > 250 {
			pdf.AddPage()
		}

		pdf.SetFont("Arial", "B", 12)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(0, 7, fmt.Sprintf("%s - %d observed, %d unauthorized",
			cat.Title(), len(report.Observations[cat]), len(report.Unauthorized[cat])), "", 1, "", true, 0, "")
		pdf.Ln(1)

		pdf.SetFont("Arial", "", 9)
		if len(report.Observations[cat]) > 0 {
			pdf.MultiCell(0, 5, "Observed: "+strings.Join(report.Observations[cat], ", "), "", "", false)
		}
		for _, host := range report.Unauthorized[cat] {
			pdf.CellFormat(0, 5, fmt.Sprintf("  DRIFT: %s", host), "", 1, "", false, 0, "")
		}
		pdf.Ln(3)
	}

	return pdf.OutputFileAndClose(path)
}

func init() {
	reportCmd.Flags().String("pdf", "", "write a PDF report to this file inside the results directory")
}
