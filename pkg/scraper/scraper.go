// Package scraper orchestrates the client, normalizer and CSV sink into
// the user-facing operations: ad-hoc searches, batch lookups and the
// incremental per-account archive.
package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Kudusch/twitter-user-stats/pkg/cache"
	"github.com/Kudusch/twitter-user-stats/pkg/checkpoint"
	"github.com/Kudusch/twitter-user-stats/pkg/config"
	"github.com/Kudusch/twitter-user-stats/pkg/errors"
	"github.com/Kudusch/twitter-user-stats/pkg/logger"
	"github.com/Kudusch/twitter-user-stats/pkg/metrics"
	"github.com/Kudusch/twitter-user-stats/pkg/normalize"
	"github.com/Kudusch/twitter-user-stats/pkg/storage"
	"github.com/Kudusch/twitter-user-stats/pkg/twitter"
	"github.com/Kudusch/twitter-user-stats/pkg/xref"
)

// createdAtLayout is the timestamp format of v2 user objects
const createdAtLayout = "2006-01-02T15:04:05.000Z"

// Search modes selecting the endpoint tier
const (
	ModeAll    = "all"
	ModeRecent = "recent"
)

// SearchOptions narrows a search query. Times are RFC3339; empty fields
// are omitted from the request. Mode defaults to the full archive.
type SearchOptions struct {
	StartTime string
	EndTime   string
	SinceID   string
	UntilID   string
	Mode      string
}

// Scraper bundles the API client with the output configuration
type Scraper struct {
	cfg    *config.Config
	client *twitter.Client
	logger logger.Logger
}

// New creates a scraper from configuration
func New(cfg *config.Config, log logger.Logger) *Scraper {
	return &Scraper{
		cfg:    cfg,
		client: twitter.NewClient(cfg, log),
		logger: log,
	}
}

// queriedAtStamp is the unix-seconds stamp shared by every record of one
// operation run.
func queriedAtStamp() string {
	return strconv.FormatInt(time.Now().Unix(), 10)
}

// SearchTweets runs a search to cursor exhaustion and returns the
// flattened records. A query with zero matches returns a nil slice.
func (s *Scraper) SearchTweets(ctx context.Context, query string, opts SearchOptions) ([]normalize.Record, error) {
	var collected []normalize.Record
	err := s.SearchTweetsFunc(ctx, query, opts, func(records []normalize.Record) error {
		collected = append(collected, records...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return collected, nil
}

// SearchTweetsFunc runs a search, streaming each page's flattened
// records to fn as it arrives. The archiver uses this to append pages
// to disk instead of holding a whole account history in memory.
func (s *Scraper) SearchTweetsFunc(ctx context.Context, query string, opts SearchOptions, fn func(records []normalize.Record) error) error {
	params, err := twitter.SearchParams(query, opts.StartTime, opts.EndTime)
	if err != nil {
		return err
	}
	if opts.SinceID != "" {
		params.Set("since_id", opts.SinceID)
	}
	if opts.UntilID != "" {
		params.Set("until_id", opts.UntilID)
	}

	endpoint := twitter.EndpointSearchAll
	if opts.Mode == ModeRecent {
		endpoint = twitter.EndpointSearchRecent
	}

	store := xref.NewStore()
	queriedAt := queriedAtStamp()

	return s.client.Paginate(ctx, endpoint, params, twitter.CursorParamSearch, func(page int, resp *twitter.TweetsResponse) error {
		records, err := normalize.Tweets(resp, store, queriedAt)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		metrics.AddRecords("tweets", len(records))
		return fn(records)
	})
}

// LookupTweets fetches up to 100 tweets by id in one request. A response
// carrying only error entries (deleted, suspended or protected ids)
// yields a nil slice.
func (s *Scraper) LookupTweets(ctx context.Context, ids []string) ([]normalize.Record, error) {
	params, err := twitter.TweetLookupParams(ids)
	if err != nil {
		return nil, err
	}

	body, err := s.client.GetJSON(ctx, twitter.EndpointTweetLookup, params)
	if err != nil {
		return nil, err
	}

	var resp twitter.TweetsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &errors.Error{Type: errors.ErrorTypeParsing, Message: err.Error()}
	}

	if len(resp.Data) == 0 {
		s.logUnresolved("tweets", resp.Errors)
		return nil, nil
	}

	store := xref.NewStore()
	records, err := normalize.Tweets(&resp, store, queriedAtStamp())
	if err != nil {
		return nil, err
	}
	metrics.AddRecords("tweets", len(records))
	return records, nil
}

// LookupUsers fetches up to 100 accounts by username in one request
func (s *Scraper) LookupUsers(ctx context.Context, usernames []string) ([]normalize.Record, error) {
	params, err := twitter.UserLookupParams(usernames)
	if err != nil {
		return nil, err
	}

	body, err := s.client.GetJSON(ctx, twitter.EndpointUserLookup, params)
	if err != nil {
		return nil, err
	}

	var resp twitter.UsersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &errors.Error{Type: errors.ErrorTypeParsing, Message: err.Error()}
	}

	if len(resp.Data) == 0 {
		s.logUnresolved("users", resp.Errors)
		return nil, nil
	}

	records := normalize.Users(&resp, queriedAtStamp())
	metrics.AddRecords("users", len(records))
	return records, nil
}

// LookupRetweeters walks the full retweeter list of a tweet
func (s *Scraper) LookupRetweeters(ctx context.Context, tweetID string) ([]normalize.Record, error) {
	params := twitter.RetweetedByParams()
	queriedAt := queriedAtStamp()

	var collected []normalize.Record
	err := s.client.PaginateUsers(ctx, twitter.EndpointRetweetedBy(tweetID), params, twitter.CursorParamRetweetedBy, func(page int, resp *twitter.UsersResponse) error {
		records := normalize.Users(resp, queriedAt)
		metrics.AddRecords("users", len(records))
		collected = append(collected, records...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return collected, nil
}

// ArchiveResult describes where an archive run got its rows from
type ArchiveResult struct {
	Username string
	Source   string // "cache" or "api"
	Rows     int
	Path     string
}

// ArchiveUser writes the complete posting history of an account to
// <data-dir>/<username>.csv. A file younger than the cache max age is
// reported as-is without touching the network. The history is fetched
// in month windows from the account's creation to 24 hours ago, each
// window appended page by page; a checkpoint records completed windows
// so an interrupted run resumes instead of starting over.
func (s *Scraper) ArchiveUser(ctx context.Context, username string) (*ArchiveResult, error) {
	path := filepath.Join(s.cfg.Output.DataDirectory, username+".csv")

	if cache.IsFresh(path, s.cfg.Output.CacheMaxAge) {
		rows, err := storage.CountRecords(path)
		if err != nil {
			return nil, fmt.Errorf("failed to count cached rows: %w", err)
		}
		s.logger.InfoWithFields("Serving cached archive", map[string]interface{}{
			"username": username,
			"path":     path,
			"rows":     rows,
		})
		return &ArchiveResult{Username: username, Source: "cache", Rows: rows, Path: path}, nil
	}

	started := time.Now()

	users, err := s.LookupUsers(ctx, []string{username})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user %q not found", username)
	}
	profile := users[0]

	accountCreated, err := time.Parse(createdAtLayout, profile["created_at"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse account creation time %q: %w", profile["created_at"], err)
	}

	windows := monthWindows(monthFloor(accountCreated), time.Now().UTC().Add(-24*time.Hour), s.cfg.Output.WindowMonths)

	mgr, err := checkpoint.NewManager(username)
	if err != nil {
		return nil, err
	}

	cp, err := mgr.Load()
	if err != nil {
		return nil, err
	}
	resuming := cp != nil && fileExists(path)
	if resuming {
		s.logger.InfoWithFields("Resuming archive", map[string]interface{}{
			"username":        username,
			"last_window_end": cp.LastWindowEnd,
			"rows_so_far":     cp.TotalRows,
		})
	} else {
		// A stale partial file without a matching checkpoint cannot be
		// trusted; start the archive over.
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to remove stale archive: %w", err)
		}
		cp, err = mgr.Create(username, profile["user_id"])
		if err != nil {
			return nil, err
		}
	}

	totalRows := cp.TotalRows
	query := "from:" + username

	for _, w := range windows {
		if resuming && !w.End.After(cp.LastWindowEnd) {
			continue
		}

		windowRows := 0
		opts := SearchOptions{
			StartTime: w.Start.Format(time.RFC3339),
			EndTime:   w.End.Format(time.RFC3339),
		}

		err := s.SearchTweetsFunc(ctx, query, opts, func(records []normalize.Record) error {
			if err := storage.WriteTweets(records, path, true); err != nil {
				return err
			}
			windowRows += len(records)
			return nil
		})
		if err != nil {
			return nil, err
		}

		if err := mgr.RecordWindow(cp, w.End, windowRows); err != nil {
			return nil, err
		}
		totalRows += windowRows

		s.logger.InfoWithFields("Window archived", map[string]interface{}{
			"username":     username,
			"window_start": w.Start,
			"window_end":   w.End,
			"rows":         windowRows,
			"total_rows":   totalRows,
		})
	}

	if err := mgr.Delete(); err != nil {
		return nil, err
	}

	metrics.ObserveArchiveDuration(started)
	s.logger.InfoWithFields("Archive complete", map[string]interface{}{
		"username": username,
		"path":     path,
		"rows":     totalRows,
		"duration": time.Since(started),
	})

	return &ArchiveResult{Username: username, Source: "api", Rows: totalRows, Path: path}, nil
}

// logUnresolved logs the error entries of a response that resolved none
// of the requested ids.
func (s *Scraper) logUnresolved(kind string, details []twitter.APIErrorDetail) {
	for _, d := range details {
		s.logger.WarnWithFields("Lookup entry unresolved", map[string]interface{}{
			"kind":   kind,
			"title":  d.Title,
			"detail": d.Detail,
		})
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
