package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var archiveWithMedia bool

// archiveCmd represents the archive command
var archiveCmd = &cobra.Command{
	Use:   "archive <username>",
	Short: "Archive the complete posting history of an account",
	Long: `Archive every tweet of an account into <data-dir>/<username>.csv.

The history is fetched from the full-archive search endpoint in
two-month windows starting at the account's creation, appending each
page as it arrives. A checkpoint tracks completed windows, so an
interrupted run resumes where it left off. An archive file younger than
the cache max age is reported as-is without touching the API.`,
	Example: `  # Archive a user
  twitterstats archive jack

  # Archive and download photo attachments
  twitterstats archive jack --media`,
	Args: cobra.ExactArgs(1),
	RunE: runArchive,
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.Flags().BoolVar(&archiveWithMedia, "media", false, "download photo attachments after archiving")
}

func runArchive(cmd *cobra.Command, args []string) error {
	username := strings.TrimSpace(args[0])

	s, cfg, err := newScraper()
	if err != nil {
		return err
	}

	ctx, stop := commandContext()
	defer stop()

	result, err := s.ArchiveUser(ctx, username)
	if err != nil {
		return err
	}

	switch result.Source {
	case "cache":
		fmt.Printf("%s: %d rows (cached, %s)\n", username, result.Rows, result.Path)
	default:
		fmt.Printf("%s: %d rows archived to %s\n", username, result.Rows, result.Path)
	}

	if archiveWithMedia {
		return downloadArchiveMedia(cmd, s, cfg, username)
	}
	return nil
}
