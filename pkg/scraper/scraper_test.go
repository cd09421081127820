package scraper

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kudusch/twitter-user-stats/pkg/checkpoint"
	"github.com/Kudusch/twitter-user-stats/pkg/config"
	"github.com/Kudusch/twitter-user-stats/pkg/logger"
	"github.com/Kudusch/twitter-user-stats/pkg/normalize"
	"github.com/Kudusch/twitter-user-stats/pkg/storage"
	"github.com/Kudusch/twitter-user-stats/pkg/twitter"
)

func testConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Twitter.BaseURL = baseURL
	cfg.Twitter.BearerToken = "test-token"
	cfg.Twitter.Timeout = 5 * time.Second
	cfg.RateLimit.PageInterval = 0
	cfg.RateLimit.CursorPause = time.Millisecond
	cfg.RateLimit.ResetMargin = time.Millisecond
	cfg.RateLimit.FallbackSleep = 10 * time.Millisecond
	cfg.Retry.MaxAttempts = 2
	cfg.Retry.BackoffFactor = time.Millisecond
	cfg.Output.DataDirectory = t.TempDir()
	cfg.Output.MediaDirectory = t.TempDir()
	return cfg
}

func newTestScraper(t *testing.T, baseURL string) (*Scraper, *config.Config) {
	t.Helper()
	cfg := testConfig(t, baseURL)
	return New(cfg, logger.NewNopLogger()), cfg
}

func sampleUser(id, username string) twitter.User {
	return twitter.User{
		ID:        id,
		Username:  username,
		Name:      "Test " + username,
		CreatedAt: "2015-06-01T10:00:00.000Z",
		PublicMetrics: &twitter.UserMetrics{
			FollowersCount: 10,
			FollowingCount: 20,
			TweetCount:     30,
			ListedCount:    1,
		},
	}
}

func sampleTweet(id, authorID string) twitter.Tweet {
	return twitter.Tweet{
		ID:             id,
		Text:           "post " + id,
		AuthorID:       authorID,
		ConversationID: id,
		CreatedAt:      "2022-01-02T03:04:05.000Z",
		Lang:           "en",
		PublicMetrics:  &twitter.TweetMetrics{RetweetCount: 1},
	}
}

func writeJSON(t *testing.T, w http.ResponseWriter, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestSearchTweetsPaginatesAndFlattens(t *testing.T) {
	var queries []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tweets/search/all", r.URL.Path)
		queries = append(queries, r.URL.RawQuery)

		resp := twitter.TweetsResponse{
			Includes: &twitter.Includes{Users: []twitter.User{sampleUser("u1", "alice")}},
		}
		if r.URL.Query().Get("next_token") == "" {
			resp.Data = []twitter.Tweet{sampleTweet("1", "u1"), sampleTweet("2", "u1")}
			resp.Meta = &twitter.Meta{ResultCount: 2, NextToken: "cursor-2"}
		} else {
			resp.Data = []twitter.Tweet{sampleTweet("3", "u1")}
			resp.Meta = &twitter.Meta{ResultCount: 1}
		}
		writeJSON(t, w, resp)
	}))
	defer server.Close()

	s, _ := newTestScraper(t, server.URL)
	records, err := s.SearchTweets(context.Background(), "from:alice", SearchOptions{SinceID: "100"})
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, "1", records[0]["status_id"])
	assert.Equal(t, "3", records[2]["status_id"])
	assert.Equal(t, "alice", records[0]["screen_name"])

	require.Len(t, queries, 2)
	assert.Contains(t, queries[0], "since_id=100")
	assert.Contains(t, queries[1], "next_token=cursor-2")
}

func TestSearchTweetsRecentMode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tweets/search/recent", r.URL.Path)
		writeJSON(t, w, twitter.TweetsResponse{Meta: &twitter.Meta{ResultCount: 0}})
	}))
	defer server.Close()

	s, _ := newTestScraper(t, server.URL)
	records, err := s.SearchTweets(context.Background(), "golang", SearchOptions{Mode: ModeRecent})
	require.NoError(t, err)
	assert.Nil(t, records)
}

func TestLookupTweets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tweets", r.URL.Path)
		assert.Equal(t, "1,2", r.URL.Query().Get("ids"))

		writeJSON(t, w, twitter.TweetsResponse{
			Data:     []twitter.Tweet{sampleTweet("1", "u1"), sampleTweet("2", "u1")},
			Includes: &twitter.Includes{Users: []twitter.User{sampleUser("u1", "alice")}},
		})
	}))
	defer server.Close()

	s, _ := newTestScraper(t, server.URL)
	records, err := s.LookupTweets(context.Background(), []string{"1", "2"})
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "alice", records[1]["screen_name"])
}

func TestLookupTweetsAllUnresolved(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, twitter.TweetsResponse{
			Errors: []twitter.APIErrorDetail{{Title: "Not Found Error", Detail: "Could not find tweet with ids: [1]."}},
		})
	}))
	defer server.Close()

	s, _ := newTestScraper(t, server.URL)
	records, err := s.LookupTweets(context.Background(), []string{"1"})
	require.NoError(t, err)
	assert.Nil(t, records)
}

func TestLookupUsers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/by", r.URL.Path)
		assert.Equal(t, "alice,bob", r.URL.Query().Get("usernames"))

		writeJSON(t, w, twitter.UsersResponse{
			Data: []twitter.User{sampleUser("u1", "alice"), sampleUser("u2", "bob")},
		})
	}))
	defer server.Close()

	s, _ := newTestScraper(t, server.URL)
	records, err := s.LookupUsers(context.Background(), []string{"alice", "bob"})
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "u2", records[1]["user_id"])
	assert.Equal(t, "10", records[0]["followers_count"])
}

func TestLookupUsersOversizedBatch(t *testing.T) {
	usernames := make([]string, twitter.MaxBatchSize+1)
	for i := range usernames {
		usernames[i] = "user"
	}

	s, _ := newTestScraper(t, "http://127.0.0.1:1")
	_, err := s.LookupUsers(context.Background(), usernames)
	assert.Error(t, err)
}

func TestLookupRetweeters(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tweets/42/retweeted_by", r.URL.Path)
		requests++

		if r.URL.Query().Get("pagination_token") == "" {
			writeJSON(t, w, twitter.UsersResponse{
				Data: []twitter.User{sampleUser("u1", "alice")},
				Meta: &twitter.Meta{ResultCount: 1, NextToken: "rt-cursor"},
			})
			return
		}
		writeJSON(t, w, twitter.UsersResponse{
			Data: []twitter.User{sampleUser("u2", "bob")},
			Meta: &twitter.Meta{ResultCount: 1},
		})
	}))
	defer server.Close()

	s, _ := newTestScraper(t, server.URL)
	records, err := s.LookupRetweeters(context.Background(), "42")
	require.NoError(t, err)

	assert.Equal(t, 2, requests)
	require.Len(t, records, 2)
	assert.Equal(t, "alice", records[0]["screen_name"])
	assert.Equal(t, "bob", records[1]["screen_name"])
}

// archiveServer serves a user profile with the given creation time and
// one tweet per search window.
func archiveServer(t *testing.T, username string, created time.Time, searchCalls *int) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/by":
			profile := sampleUser("u1", username)
			profile.CreatedAt = created.Format(createdAtLayout)
			writeJSON(t, w, twitter.UsersResponse{Data: []twitter.User{profile}})
		case "/tweets/search/all":
			*searchCalls++
			tweet := sampleTweet(r.URL.Query().Get("start_time"), "u1")
			writeJSON(t, w, twitter.TweetsResponse{
				Data:     []twitter.Tweet{tweet},
				Includes: &twitter.Includes{Users: []twitter.User{sampleUser("u1", username)}},
				Meta:     &twitter.Meta{ResultCount: 1},
			})
		default:
			t.Errorf("unexpected request path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestArchiveUser(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	created := time.Now().UTC().AddDate(0, -3, 0)
	searchCalls := 0
	server := archiveServer(t, "alice", created, &searchCalls)
	defer server.Close()

	s, cfg := newTestScraper(t, server.URL)
	windows := monthWindows(monthFloor(created), time.Now().UTC().Add(-24*time.Hour), cfg.Output.WindowMonths)
	require.NotEmpty(t, windows)

	result, err := s.ArchiveUser(context.Background(), "alice")
	require.NoError(t, err)

	// One search per window, one row per search
	assert.Equal(t, len(windows), searchCalls)
	assert.Equal(t, "api", result.Source)
	assert.Equal(t, len(windows), result.Rows)

	path := filepath.Join(cfg.Output.DataDirectory, "alice.csv")
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, len(windows)+1)
	assert.Equal(t, normalize.TweetColumns, rows[0])

	mgr, err := checkpoint.NewManager("alice")
	require.NoError(t, err)
	assert.False(t, mgr.Exists(), "checkpoint should be removed after a complete run")
}

func TestArchiveUserServesCache(t *testing.T) {
	s, cfg := newTestScraper(t, "http://127.0.0.1:1")

	path := filepath.Join(cfg.Output.DataDirectory, "alice.csv")
	require.NoError(t, storage.WriteTweets([]normalize.Record{
		{"status_id": "1"},
		{"status_id": "2"},
	}, path, false))

	result, err := s.ArchiveUser(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, "cache", result.Source)
	assert.Equal(t, 2, result.Rows)
}

func TestArchiveUserResumesFromCheckpoint(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	created := time.Now().UTC().AddDate(0, -3, 0)
	searchCalls := 0
	server := archiveServer(t, "alice", created, &searchCalls)
	defer server.Close()

	s, cfg := newTestScraper(t, server.URL)

	// Simulate an interrupted run that completed the first window
	path := filepath.Join(cfg.Output.DataDirectory, "alice.csv")
	require.NoError(t, storage.WriteTweets([]normalize.Record{{"status_id": "1"}}, path, true))
	old := time.Now().Add(-cfg.Output.CacheMaxAge - time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))

	windows := monthWindows(monthFloor(created), time.Now().UTC().Add(-24*time.Hour), cfg.Output.WindowMonths)
	require.NotEmpty(t, windows)

	mgr, err := checkpoint.NewManager("alice")
	require.NoError(t, err)
	cp, err := mgr.Create("alice", "u1")
	require.NoError(t, err)
	require.NoError(t, mgr.RecordWindow(cp, windows[0].End, 1))

	result, err := s.ArchiveUser(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, len(windows)-1, searchCalls, "completed window should not be refetched")
	assert.Equal(t, len(windows), result.Rows)
	assert.False(t, mgr.Exists())
}

func TestArchiveUserUnknownUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, twitter.UsersResponse{
			Errors: []twitter.APIErrorDetail{{Title: "Not Found Error"}},
		})
	}))
	defer server.Close()

	s, _ := newTestScraper(t, server.URL)
	_, err := s.ArchiveUser(context.Background(), "ghost")
	assert.ErrorContains(t, err, "not found")
}
