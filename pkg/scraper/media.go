package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/Kudusch/twitter-user-stats/pkg/normalize"
)

// DownloadMedia fetches the photo attachments of the given tweet records
// into dir, one file per media key named <media_key><ext>. Existing
// files are kept, non-photo media is skipped, and a failed download is
// logged without aborting the rest. Returns the number of files written.
func (s *Scraper) DownloadMedia(ctx context.Context, records []normalize.Record, dir string) (int, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create media directory: %w", err)
	}

	httpClient := &http.Client{Timeout: s.cfg.Twitter.Timeout}
	downloaded := 0

	for _, record := range records {
		keys := parseListCell(record["media_key"])
		types := parseListCell(record["media_type"])
		urls := parseListCell(record["media_url"])
		if len(keys) == 0 || len(keys) != len(types) || len(keys) != len(urls) {
			continue
		}

		for i, key := range keys {
			if types[i] != "photo" || urls[i] == "" {
				continue
			}

			dest := filepath.Join(dir, key+urlExt(urls[i]))
			if fileExists(dest) {
				continue
			}

			if err := s.downloadFile(ctx, httpClient, urls[i], dest); err != nil {
				if ctx.Err() != nil {
					return downloaded, ctx.Err()
				}
				s.logger.WithError(err).WithFields(map[string]interface{}{
					"media_key": key,
					"url":       urls[i],
				}).Warn("Media download failed")
				continue
			}
			downloaded++
		}
	}

	s.logger.InfoWithFields("Media download finished", map[string]interface{}{
		"directory": dir,
		"files":     downloaded,
	})
	return downloaded, nil
}

// downloadFile streams one URL to dest via a temp file so a partial
// download never masquerades as a complete one.
func (s *Scraper) downloadFile(ctx context.Context, client *http.Client, rawURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	tmp := dest + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return err
	}

	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		os.Remove(tmp)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, dest)
}

// parseListCell decodes a JSON-list CSV cell into its elements. An empty
// cell yields nil.
func parseListCell(cell string) []string {
	if cell == "" {
		return nil
	}
	var items []string
	if err := json.Unmarshal([]byte(cell), &items); err != nil {
		return nil
	}
	return items
}

// urlExt extracts the file extension from a media URL, ignoring query
// parameters.
func urlExt(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return path.Ext(rawURL)
	}
	return path.Ext(parsed.Path)
}
