package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Kudusch/twitter-user-stats/pkg/storage"
)

var retweetersOutput string

// retweetersCmd represents the retweeters command
var retweetersCmd = &cobra.Command{
	Use:   "retweeters <tweet-id>",
	Short: "List the accounts that retweeted a tweet",
	Long: `Walk the complete retweeter list of a tweet and write the
flattened profiles to a CSV file.`,
	Example: `  twitterstats retweeters 1212092628029698048`,
	Args:    cobra.ExactArgs(1),
	RunE:    runRetweeters,
}

func init() {
	rootCmd.AddCommand(retweetersCmd)
	retweetersCmd.Flags().StringVarP(&retweetersOutput, "output", "o", "", "output CSV path (default <data-dir>/retweeters_<id>.csv)")
}

func runRetweeters(cmd *cobra.Command, args []string) error {
	tweetID := args[0]

	s, cfg, err := newScraper()
	if err != nil {
		return err
	}

	ctx, stop := commandContext()
	defer stop()

	records, err := s.LookupRetweeters(ctx, tweetID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No retweeters found")
		return nil
	}

	output := retweetersOutput
	if output == "" {
		output = filepath.Join(cfg.Output.DataDirectory, fmt.Sprintf("retweeters_%s.csv", tweetID))
	}

	if err := storage.WriteUsers(records, output, false); err != nil {
		return err
	}

	fmt.Printf("%d retweeters written to %s\n", len(records), output)
	return nil
}
