// internal/cli/scan.go
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/seolens/seolens/internal/report"
	"github.com/seolens/seolens/internal/ui"
	"github.com/seolens/seolens/pkg/models"
)

var (
	scanMode   string
	scanOutput string
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <url>...",
	Short: "Audit one or more pages for SEO signals",
	Long: `Fetches each URL, runs all signal collectors against it, queues the
signals for delivery, and records the scan in local history.

Static fetching is the default. Auto mode falls back to headless Chrome
when a page looks script-driven, and render mode always uses Chrome.`,
	Example: `  # Audit a single page
  seolens scan https://example.com

  # Audit with keyword density targets
  seolens scan https://example.com --keywords="widgets,acme widgets"

  # Render a client-side app before auditing
  seolens scan https://app.example.com --mode=render --render

  # Audit several pages and save a JSON report of the first
  seolens scan https://example.com https://example.com/pricing -o audit.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVarP(&scanMode, "mode", "m", "static", "Page acquisition mode: auto, static, or render")
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "", "File path to save the report (supports .json, .md, .csv)")
}

func runScan(cmd *cobra.Command, args []string) error {
	a := GetApp()

	mode, err := parseMode(scanMode)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		rep, err := a.Scanner.Scan(cmd.Context(), args[0], mode)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		printSummary(rep)
		return writeReport(rep)
	}

	bar := progressbar.Default(int64(len(args)), "scanning")
	results := a.Scanner.ScanBatch(cmd.Context(), args, mode, a.Config.Concurrency, func(models.ScanResult) {
		_ = bar.Add(1)
	})
	_ = bar.Finish()
	fmt.Println()

	failed := 0
	for _, res := range results {
		if res.Error != nil {
			failed++
			fmt.Printf("%s %s: %v\n", ui.Error("✗"), res.URL, res.Error)
			continue
		}
		fmt.Printf("%s %s (%d signals)\n", ui.Success("✓"), res.URL, len(res.Report.Signals))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scans failed", failed, len(results))
	}

	// Batch mode saves the first report when an output path is given
	if scanOutput != "" && len(results) > 0 && results[0].Report != nil {
		return writeReport(results[0].Report)
	}
	return nil
}

func parseMode(s string) (models.FetchMode, error) {
	switch strings.ToLower(s) {
	case "auto":
		return models.ModeAuto, nil
	case "static":
		return models.ModeStatic, nil
	case "render":
		return models.ModeRender, nil
	}
	return "", fmt.Errorf("invalid mode: %s (must be auto, static, or render)", s)
}

func printSummary(rep *models.ScanReport) {
	title := rep.Title
	if title == "" {
		title = "(no title)"
	}
	fmt.Printf("\n%s %s\n", ui.Bold(title), ui.Info(rep.URL))
	for _, signal := range rep.Signals {
		name, _ := signal["type"].(string)
		fmt.Printf("  %s %s\n", ui.Success("•"), signalSummary(name, signal))
	}
	fmt.Println()
}

// signalSummary condenses one payload into a single human-readable line
func signalSummary(name string, signal map[string]any) string {
	switch name {
	case "meta":
		return fmt.Sprintf("meta: title %v chars, description %v chars", signal["title_length"], signal["description_length"])
	case "headings":
		if counts, ok := signal["counts"].(map[string]int); ok {
			return fmt.Sprintf("headings: %d h1, %d h2, %v total", counts["h1"], counts["h2"], signal["total"])
		}
		return fmt.Sprintf("headings: %v total", signal["total"])
	case "links":
		return fmt.Sprintf("links: %v internal, %v external, %v nofollow", signal["internal"], signal["external"], signal["nofollow"])
	case "schema":
		return fmt.Sprintf("schema: %v JSON-LD blocks", signal["json_ld_blocks"])
	case "keywords":
		return fmt.Sprintf("keywords: %v words analyzed", signal["word_count"])
	case "images":
		return fmt.Sprintf("images: %v total, %v missing alt", signal["total"], signal["missing_alt"])
	case "performance":
		return fmt.Sprintf("performance: %vms response, %v scripts", signal["response_time_ms"], signal["scripts"])
	}
	return name
}

// writeReport saves the report in the format implied by the file extension
func writeReport(rep *models.ScanReport) error {
	if scanOutput == "" {
		return nil
	}

	a := GetApp()
	var err error
	switch strings.ToLower(filepath.Ext(scanOutput)) {
	case ".json":
		err = report.SaveJSON(rep, scanOutput)
	case ".md", ".markdown":
		// The just-scanned page is still cached; use it for the preview
		var page *models.Page
		if a != nil && a.Cache != nil {
			if cached, ok := a.Cache.Get(rep.URL); ok {
				page = cached
			}
		}
		err = report.SaveMarkdown(rep, page, scanOutput)
	case ".csv":
		err = report.SaveCSV(rep, scanOutput)
	default:
		return fmt.Errorf("unsupported output format: %s (use .json, .md, or .csv)", scanOutput)
	}
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	log.Debug().Str("path", scanOutput).Msg("Report saved")
	fmt.Fprintf(os.Stderr, "%s Report saved to %s\n", ui.Success("✓"), scanOutput)
	return nil
}
