package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rrbutani/tweet-tree/internal/config"
	"github.com/rrbutani/tweet-tree/internal/dot"
	"github.com/rrbutani/tweet-tree/internal/thread"
	"github.com/rrbutani/tweet-tree/internal/twitter"
)

var (
	flagOutput         string
	flagConsumerKey    string
	flagConsumerSecret string
	flagPageSize       int
	flagConfigFile     string
)

var crawlCmd = &cobra.Command{
	Use:          "crawl <root-tweet-id>",
	Short:        "Fetch every reply under a root tweet and emit a Graphviz graph",
	Args:         cobra.ExactArgs(1),
	RunE:         crawlAction,
	SilenceUsage: true,
}

func init() {
	crawlCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output file for the graph (graphviz dot); stdout if not given")
	crawlCmd.Flags().StringVar(&flagConsumerKey, "consumer-key", "", "Twitter API consumer key (default $"+config.EnvConsumerKey+")")
	crawlCmd.Flags().StringVar(&flagConsumerSecret, "consumer-secret", "", "Twitter API consumer secret (default $"+config.EnvConsumerSecret+")")
	crawlCmd.Flags().IntVar(&flagPageSize, "page-size", 0, "search page size hint (10-100)")
	crawlCmd.Flags().StringVar(&flagConfigFile, "config", "", "optional YAML tuning file")
	rootCmd.AddCommand(crawlCmd)
}

func crawlAction(cmd *cobra.Command, args []string) error {
	rootID, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid root tweet id %q: %w", args[0], err)
	}

	// A .env next to the invocation is a convenience, not a requirement.
	_ = godotenv.Load()

	cfg, err := config.Load(config.Options{
		ConsumerKey:    flagConsumerKey,
		ConsumerSecret: flagConsumerSecret,
		PageSize:       flagPageSize,
		File:           flagConfigFile,
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	client, err := twitter.Authenticate(ctx, cfg.ConsumerKey, cfg.ConsumerSecret, cfg.APIBaseURL, cfg.Timeout)
	if err != nil {
		return err
	}

	crawler, err := thread.NewCrawler(client, cfg.PageSize)
	if err != nil {
		return err
	}

	graph, dir, err := crawler.Crawl(ctx, rootID)
	if err != nil {
		return err
	}

	out := os.Stdout
	if flagOutput != "" {
		f, err := os.Create(flagOutput)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	if err := dot.NewFormatter().Format(out, graph, dir); err != nil {
		return fmt.Errorf("write graph: %w", err)
	}

	// The graph goes to stdout when no file was given, so the summary
	// stays on stderr.
	fmt.Fprintf(os.Stderr, "Crawled %d replies across %d tweets from %d authors\n",
		graph.EdgeCount(), graph.Len(), dir.Len())
	return nil
}
