package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Kudusch/twitter-user-stats/pkg/storage"
)

var usersOutput string

// usersCmd represents the users command
var usersCmd = &cobra.Command{
	Use:   "users <username>...",
	Short: "Look up accounts by username and write them to CSV",
	Long: `Fetch up to 100 accounts by username in a single request and write
the flattened profiles to a CSV file.`,
	Example: `  twitterstats users jack biz`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runUsers,
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.Flags().StringVarP(&usersOutput, "output", "o", "", "output CSV path (default <data-dir>/users_<unix>.csv)")
}

func runUsers(cmd *cobra.Command, args []string) error {
	s, cfg, err := newScraper()
	if err != nil {
		return err
	}

	ctx, stop := commandContext()
	defer stop()

	records, err := s.LookupUsers(ctx, args)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("None of the requested accounts could be resolved")
		return nil
	}

	output := usersOutput
	if output == "" {
		output = filepath.Join(cfg.Output.DataDirectory, fmt.Sprintf("users_%d.csv", time.Now().Unix()))
	}

	if err := storage.WriteUsers(records, output, false); err != nil {
		return err
	}

	fmt.Printf("%d accounts written to %s\n", len(records), output)
	return nil
}
