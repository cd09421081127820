// Package normalize flattens API tweet and user objects into fixed-
// schema records suitable for CSV analysis. One tweet becomes one wide
// row with referenced tweets, authors, places and media denormalized
// into prefixed column groups.
package normalize

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Record is one flattened row keyed by column name. Missing optional
// fields stay as empty strings.
type Record map[string]string

// Row projects the record onto an ordered column list
func (r Record) Row(columns []string) []string {
	row := make([]string, len(columns))
	for i, col := range columns {
		row[i] = r[col]
	}
	return row
}

// relationshipColumns lists the column suffixes of one referenced-tweet
// block. Each block is prefixed with "retweeted_", "replied_" or
// "quoted_".
var relationshipColumns = []string{
	"user_id", "user_screen_name", "user_name",
	"user_followers_count", "user_following_count", "user_tweet_count", "user_listed_count",
	"user_protected", "user_verified", "user_description",
	"tweet_status_id", "tweet_conversation_id", "tweet_created_at",
	"tweet_lang", "tweet_source", "tweet_text",
	"tweet_retweet_count", "tweet_reply_count", "tweet_like_count", "tweet_quote_count",
}

// TweetColumns is the ordered schema of the flat tweet table
var TweetColumns = buildTweetColumns()

func buildTweetColumns() []string {
	cols := []string{
		"status_id", "created_at", "text", "conversation_id",
		"hashtags", "mentions",
		"url_location", "url_unwound", "url_title", "url_description", "url_sensitive",
		"media_key", "media_type", "media_url", "media_duration", "media_height", "media_width", "media_alt",
		"geo", "lang", "source", "reply_settings",
		"retweet_count", "reply_count", "like_count", "quote_count",
		"is_retweet", "is_reply", "is_quote",
	}
	for _, prefix := range []string{"retweeted_", "replied_", "quoted_"} {
		for _, suffix := range relationshipColumns {
			cols = append(cols, prefix+suffix)
		}
	}
	cols = append(cols,
		"geo_id", "geo_full_name", "geo_name", "geo_country", "geo_country_code", "geo_place_type", "geo_json",
		"user_id", "screen_name", "name", "account_created_at", "description", "url", "location",
		"followers_count", "following_count", "tweet_count", "listed_count", "protected", "verified",
		"queried_at",
	)
	return cols
}

// UserColumns is the ordered schema of the user table
var UserColumns = []string{
	"user_id", "screen_name", "name", "created_at", "description", "url", "location",
	"followers_count", "following_count", "tweet_count", "listed_count",
	"protected", "verified", "withheld", "pinned_tweet_id", "queried_at",
}

// emptyRecord returns a record with every column present and blank
func emptyRecord(columns []string) Record {
	record := make(Record, len(columns))
	for _, col := range columns {
		record[col] = ""
	}
	return record
}

// jsonList renders a string slice as a JSON array literal with a space
// after each comma, the form downstream analysis tooling expects. Each
// element is JSON-escaped so the cell always decodes back.
func jsonList(items []string) string {
	if len(items) == 0 {
		return ""
	}
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = jsonQuote(item)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// jsonQuote escapes one string as a JSON literal without the HTML
// escaping json.Marshal would apply to & < >.
func jsonQuote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return `""`
	}
	return strings.TrimRight(buf.String(), "\n")
}
