package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for msefunds.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "msefunds",
		Short: "Download and merge MSE open-end investment fund history",
		Long: `msefunds downloads the history of the Macedonian Stock Exchange
open-end investment funds one calendar month at a time and merges every
export into a single tab-separated dataset.

Run 'msefunds crawl' to fetch fresh data and assemble it, or
'msefunds assemble' to rebuild the dataset from files already on disk.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewAssembleCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command. Any error exits with status 1.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
