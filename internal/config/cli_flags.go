package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format only")
	cmd.PersistentFlags().String("endpoint", "", "Collection endpoint URL for signal delivery")
	cmd.PersistentFlags().String("api-key", "", "API key for the collection endpoint")
	cmd.PersistentFlags().String("flush-interval", "", "How often queued signals are flushed (e.g. 30s)")
	cmd.PersistentFlags().String("timeout", "30s", "Set hard timeout for requests")
	cmd.PersistentFlags().String("user-agent", "", "Custom user agent string")
	cmd.PersistentFlags().String("keywords", "", "Comma-separated target keywords for density analysis")
	cmd.PersistentFlags().Int("concurrency", DefaultConcurrency, "Concurrent page scans in batch mode")
	cmd.PersistentFlags().Bool("render", false, "Render pages in headless Chrome before analysis")
	cmd.PersistentFlags().String("chrome-path", "", "Path to the Chrome/Chromium binary")
	cmd.PersistentFlags().String("config", "", "Path to configuration file (optional)")
}
