package normalize

import (
	"strconv"

	"github.com/Kudusch/twitter-user-stats/pkg/twitter"
)

// User flattens one user into a Record against the UserColumns schema.
// Every field is optional; there are no mandatory cross-references on
// the user path.
func User(raw *twitter.User, queriedAt string) Record {
	record := emptyRecord(UserColumns)

	record["user_id"] = raw.ID
	record["screen_name"] = raw.Username
	record["name"] = raw.Name
	record["created_at"] = raw.CreatedAt
	record["description"] = raw.Description
	record["location"] = raw.Location
	record["protected"] = strconv.FormatBool(raw.Protected)
	record["verified"] = strconv.FormatBool(raw.Verified)
	record["pinned_tweet_id"] = raw.PinnedTweetID
	record["queried_at"] = queriedAt

	// Prefer the expanded profile URL over the t.co shortening
	record["url"] = raw.URL
	if e := raw.Entities; e != nil && e.URL != nil && len(e.URL.URLs) > 0 && e.URL.URLs[0].ExpandedURL != "" {
		record["url"] = e.URL.URLs[0].ExpandedURL
	}

	if m := raw.PublicMetrics; m != nil {
		record["followers_count"] = strconv.Itoa(m.FollowersCount)
		record["following_count"] = strconv.Itoa(m.FollowingCount)
		record["tweet_count"] = strconv.Itoa(m.TweetCount)
		record["listed_count"] = strconv.Itoa(m.ListedCount)
	}

	if len(raw.Withheld) > 0 {
		record["withheld"] = string(raw.Withheld)
	}

	return record
}

// Users flattens a whole user response page
func Users(resp *twitter.UsersResponse, queriedAt string) []Record {
	records := make([]Record, 0, len(resp.Data))
	for i := range resp.Data {
		records = append(records, User(&resp.Data[i], queriedAt))
	}
	return records
}
