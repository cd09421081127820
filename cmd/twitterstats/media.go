package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Kudusch/twitter-user-stats/pkg/config"
	"github.com/Kudusch/twitter-user-stats/pkg/scraper"
	"github.com/Kudusch/twitter-user-stats/pkg/storage"
)

var mediaDir string

// mediaCmd represents the media command
var mediaCmd = &cobra.Command{
	Use:   "media <username>",
	Short: "Download the photo attachments of an archived account",
	Long: `Read an existing archive file from the data directory and download
its photo attachments into the media directory, one file per media key.

Files that already exist are kept, so the command can be re-run after
refreshing an archive. Video and GIF attachments are skipped.`,
	Example: `  twitterstats archive jack
  twitterstats media jack`,
	Args: cobra.ExactArgs(1),
	RunE: runMedia,
}

func init() {
	rootCmd.AddCommand(mediaCmd)
	mediaCmd.Flags().StringVar(&mediaDir, "media-dir", "", "directory for downloaded media")
}

func runMedia(cmd *cobra.Command, args []string) error {
	username := strings.TrimSpace(args[0])

	s, cfg, err := newScraper()
	if err != nil {
		return err
	}

	return downloadArchiveMedia(cmd, s, cfg, username)
}

// downloadArchiveMedia fetches the photos referenced by a user's archive
// file. Shared by the media command and 'archive --media'.
func downloadArchiveMedia(cmd *cobra.Command, s *scraper.Scraper, cfg *config.Config, username string) error {
	archivePath := filepath.Join(cfg.Output.DataDirectory, username+".csv")
	records, err := storage.ReadRecords(archivePath)
	if err != nil {
		return fmt.Errorf("no archive for %q: %w", username, err)
	}

	dir := mediaDir
	if dir == "" {
		dir = filepath.Join(cfg.Output.MediaDirectory, username)
	}

	ctx, stop := commandContext()
	defer stop()

	count, err := s.DownloadMedia(ctx, records, dir)
	if err != nil {
		return err
	}

	fmt.Printf("%d media files downloaded to %s\n", count, dir)
	return nil
}
