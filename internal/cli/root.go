// Package cli provides the command-line interface for tweet-tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version and Commit are set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
)

var rootCmd = &cobra.Command{
	Use:   "tweet-tree",
	Short: "Crawl a Twitter thread into a reply graph",
	Long:  "tweet-tree discovers every reply under a root tweet via the v2 recent search API, resolves reply authors, and emits the reply graph as Graphviz DOT.",
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("tweet-tree %s (%s)\n", Version, Commit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
