// internal/cli/history.go
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seolens/seolens/internal/ui"
)

var historyLimit int

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history [url]",
	Short: "Show recent scans from the local history database",
	Long: `Lists scans recorded in the local history database, newest first.
With a URL argument only scans of that page are shown.`,
	Example: `  # Show the last 20 scans
  seolens history

  # Show scans of one page as JSON
  seolens history https://example.com --json-output`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

// backlinksCmd represents the backlinks command
var backlinksCmd = &cobra.Command{
	Use:   "backlinks <url>",
	Short: "Show recorded links pointing at a page",
	Long: `Lists links observed during past scans that point at the given URL,
with their anchors and nofollow status.`,
	Example: `  # Links discovered pointing at the pricing page
  seolens backlinks https://example.com/pricing`,
	Args: cobra.ExactArgs(1),
	RunE: runBacklinks,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(backlinksCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum scans to list")
	historyCmd.Flags().Bool("json-output", false, "Print raw JSON instead of a table")
}

func runHistory(cmd *cobra.Command, args []string) error {
	a := GetApp()
	if a.History == nil {
		return fmt.Errorf("history is disabled (no history path configured)")
	}

	url := ""
	if len(args) == 1 {
		url = args[0]
	}

	scans, err := a.History.RecentScans(url, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if len(scans) == 0 {
		fmt.Println("No scans recorded yet.")
		return nil
	}

	if jsonFlag, _ := cmd.Flags().GetBool("json-output"); jsonFlag {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(scans)
	}

	for _, s := range scans {
		title := s.Title
		if title == "" {
			title = "(no title)"
		}
		fmt.Printf("%s  %s  %s\n  %s (%d signals)\n",
			ui.Info(s.ScannedAt.Local().Format("2006-01-02 15:04")),
			ui.Bold(title),
			ui.ColorDim+s.ScanID+ui.ColorReset,
			s.URL, len(s.Signals))
	}
	return nil
}

func runBacklinks(cmd *cobra.Command, args []string) error {
	a := GetApp()
	if a.History == nil {
		return fmt.Errorf("history is disabled (no history path configured)")
	}

	links, err := a.History.BacklinksTo(args[0])
	if err != nil {
		return fmt.Errorf("failed to read backlinks: %w", err)
	}
	if len(links) == 0 {
		fmt.Println("No backlinks recorded for this URL.")
		return nil
	}

	for _, l := range links {
		anchor := l.Anchor
		if anchor == "" {
			anchor = "(no anchor)"
		}
		flag := ""
		if l.NoFollow {
			flag = ui.Warn(" [nofollow]")
		}
		fmt.Printf("%s %s%s\n  %s last seen %s\n",
			ui.Success("←"), l.Source, flag,
			ui.ColorDim+anchor+ui.ColorReset,
			l.LastSeen.Local().Format("2006-01-02 15:04"))
	}
	return nil
}
