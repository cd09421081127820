package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Kudusch/twitter-user-stats/pkg/storage"
)

var lookupOutput string

// lookupCmd represents the lookup command
var lookupCmd = &cobra.Command{
	Use:   "lookup <tweet-id>...",
	Short: "Look up tweets by id and write them to CSV",
	Long: `Fetch up to 100 tweets by id in a single request and write the
flattened results to a CSV file.

Deleted, suspended or protected ids are reported by the API as error
entries and simply omitted from the output.`,
	Example: `  twitterstats lookup 1212092628029698048 1212092628029698049`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)
	lookupCmd.Flags().StringVarP(&lookupOutput, "output", "o", "", "output CSV path (default <data-dir>/tweets_<unix>.csv)")
}

func runLookup(cmd *cobra.Command, args []string) error {
	s, cfg, err := newScraper()
	if err != nil {
		return err
	}

	ctx, stop := commandContext()
	defer stop()

	records, err := s.LookupTweets(ctx, args)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("None of the requested tweets could be resolved")
		return nil
	}

	output := lookupOutput
	if output == "" {
		output = filepath.Join(cfg.Output.DataDirectory, fmt.Sprintf("tweets_%d.csv", time.Now().Unix()))
	}

	if err := storage.WriteTweets(records, output, false); err != nil {
		return err
	}

	fmt.Printf("%d tweets written to %s\n", len(records), output)
	return nil
}
