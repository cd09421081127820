package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Kudusch/twitter-user-stats/pkg/scraper"
	"github.com/Kudusch/twitter-user-stats/pkg/storage"
)

var (
	searchStartTime string
	searchEndTime   string
	searchSinceID   string
	searchUntilID   string
	searchRecent    bool
	searchOutput    string
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search tweets and write them to CSV",
	Long: `Run a search query against the full tweet archive and write the
flattened results to a CSV file.

The query uses the standard v2 search syntax and may be at most 1024
characters. All result pages are fetched; a query with zero matches
writes nothing.`,
	Example: `  # Full-archive search within a time range
  twitterstats search "from:jack lang:en" --start-time 2021-01-01T00:00:00Z --end-time 2021-02-01T00:00:00Z

  # Recent search (last seven days) to a specific file
  twitterstats search "#golang" --recent --output golang.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVar(&searchStartTime, "start-time", "", "oldest tweet timestamp (RFC3339)")
	searchCmd.Flags().StringVar(&searchEndTime, "end-time", "", "newest tweet timestamp (RFC3339)")
	searchCmd.Flags().StringVar(&searchSinceID, "since-id", "", "only tweets newer than this id")
	searchCmd.Flags().StringVar(&searchUntilID, "until-id", "", "only tweets older than this id")
	searchCmd.Flags().BoolVar(&searchRecent, "recent", false, "search the recent (seven day) index instead of the full archive")
	searchCmd.Flags().StringVarP(&searchOutput, "output", "o", "", "output CSV path (default <data-dir>/search_<unix>.csv)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	s, cfg, err := newScraper()
	if err != nil {
		return err
	}

	ctx, stop := commandContext()
	defer stop()

	opts := scraper.SearchOptions{
		StartTime: searchStartTime,
		EndTime:   searchEndTime,
		SinceID:   searchSinceID,
		UntilID:   searchUntilID,
	}
	if searchRecent {
		opts.Mode = scraper.ModeRecent
	}

	records, err := s.SearchTweets(ctx, args[0], opts)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No matching tweets")
		return nil
	}

	output := searchOutput
	if output == "" {
		output = filepath.Join(cfg.Output.DataDirectory, fmt.Sprintf("search_%d.csv", time.Now().Unix()))
	}

	if err := storage.WriteTweets(records, output, false); err != nil {
		return err
	}

	fmt.Printf("%d tweets written to %s\n", len(records), output)
	return nil
}
