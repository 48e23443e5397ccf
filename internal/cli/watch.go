// internal/cli/watch.go
package cli

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/seolens/seolens/internal/ui"
	"github.com/seolens/seolens/pkg/models"
)

var watchInterval string

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <url>...",
	Short: "Re-scan pages on an interval and stream signals",
	Long: `Repeatedly audits the given URLs so changes to titles, headings,
links, or structured data show up in the signal stream and scan history.

Runs until interrupted. Each round bypasses the page cache so every scan
reflects the live page.`,
	Example: `  # Watch a page every 15 minutes
  seolens watch https://example.com --interval=15m

  # Watch several pages, delivering signals to an endpoint
  seolens watch https://example.com https://example.com/pricing \
    --endpoint=https://collect.example.com/events --api-key=$SEOLENS_KEY`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchInterval, "interval", "i", "15m", "Time between scan rounds (e.g. 30s, 15m, 1h)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	a := GetApp()

	interval, err := time.ParseDuration(watchInterval)
	if err != nil || interval <= 0 {
		return fmt.Errorf("invalid interval: %s", watchInterval)
	}

	fmt.Printf("%s Watching %d page(s) every %s. Press Ctrl-C to stop.\n",
		ui.Info("◉"), len(args), interval)

	ctx := cmd.Context()
	round := func() {
		// Evict cached copies so this round observes the live pages
		for _, url := range args {
			_ = a.Cache.Delete(url)
		}
		results := a.Scanner.ScanBatch(ctx, args, models.ModeStatic, a.Config.Concurrency, nil)
		stamp := time.Now().Format("15:04:05")
		for _, res := range results {
			if res.Error != nil {
				fmt.Printf("[%s] %s %s: %v\n", stamp, ui.Error("✗"), res.URL, res.Error)
				continue
			}
			fmt.Printf("[%s] %s %s (%d signals)\n", stamp, ui.Success("✓"), res.URL, len(res.Report.Signals))
		}
	}

	round()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			round()
		case <-ctx.Done():
			log.Debug().Msg("Watch interrupted")
			return nil
		}
	}
}
