package twitter

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Kudusch/twitter-user-stats/pkg/errors"
)

// DefaultBaseURL is the v2 API root
const DefaultBaseURL = "https://api.twitter.com/2"

// API batch and query limits
const (
	// MaxBatchSize is the largest id or username batch a lookup accepts
	MaxBatchSize = 100
	// MaxQueryLength is the longest search query the API accepts
	MaxQueryLength = 1024
	// MaxResultsPerPage is the page size requested on search endpoints
	MaxResultsPerPage = 500
)

// Endpoint paths relative to the base URL
const (
	EndpointTweetLookup  = "/tweets"
	EndpointUserLookup   = "/users/by"
	EndpointSearchRecent = "/tweets/search/recent"
	EndpointSearchAll    = "/tweets/search/all"
)

// EndpointRetweetedBy returns the retweeters path for a tweet id
func EndpointRetweetedBy(tweetID string) string {
	return fmt.Sprintf("/tweets/%s/retweeted_by", tweetID)
}

const (
	tweetFields = "author_id,created_at,conversation_id,text,lang,geo,entities," +
		"in_reply_to_user_id,possibly_sensitive,reply_settings,public_metrics,source,referenced_tweets"
	userFields = "id,name,username,created_at,description,url,location,protected," +
		"verified,public_metrics,entities"
	userLookupFields = userFields + ",pinned_tweet_id,withheld"
	mediaFields      = "media_key,type,url,duration_ms,height,width,alt_text"
	placeFields      = "id,full_name,name,country,country_code,place_type,geo"
	tweetExpansions  = "referenced_tweets.id,referenced_tweets.id.author_id,in_reply_to_user_id," +
		"author_id,attachments.media_keys,entities.mentions.username,geo.place_id"
)

// TweetParams returns the field and expansion parameters shared by all
// tweet-returning endpoints.
func TweetParams() url.Values {
	params := url.Values{}
	params.Set("tweet.fields", tweetFields)
	params.Set("user.fields", userFields)
	params.Set("media.fields", mediaFields)
	params.Set("place.fields", placeFields)
	params.Set("expansions", tweetExpansions)
	return params
}

// SearchParams returns the parameters for a full-archive or recent
// search over the given query and time window. Times are RFC3339.
func SearchParams(query, startTime, endTime string) (url.Values, error) {
	if len(query) > MaxQueryLength {
		return nil, errors.NewOversizedQuery(
			fmt.Sprintf("query is %d characters, limit is %d", len(query), MaxQueryLength))
	}

	params := TweetParams()
	params.Set("query", query)
	params.Set("max_results", fmt.Sprintf("%d", MaxResultsPerPage))
	if startTime != "" {
		params.Set("start_time", startTime)
	}
	if endTime != "" {
		params.Set("end_time", endTime)
	}
	return params, nil
}

// TweetLookupParams returns the parameters for a batch tweet lookup
func TweetLookupParams(ids []string) (url.Values, error) {
	if len(ids) > MaxBatchSize {
		return nil, errors.NewOversizedQuery(
			fmt.Sprintf("batch holds %d ids, limit is %d", len(ids), MaxBatchSize))
	}

	params := TweetParams()
	params.Set("ids", strings.Join(ids, ","))
	return params, nil
}

// UserLookupParams returns the parameters for a batch username lookup
func UserLookupParams(usernames []string) (url.Values, error) {
	if len(usernames) > MaxBatchSize {
		return nil, errors.NewOversizedQuery(
			fmt.Sprintf("batch holds %d usernames, limit is %d", len(usernames), MaxBatchSize))
	}

	params := url.Values{}
	params.Set("usernames", strings.Join(usernames, ","))
	params.Set("user.fields", userLookupFields)
	params.Set("expansions", "pinned_tweet_id")
	return params, nil
}

// RetweetedByParams returns the parameters for a retweeters lookup
func RetweetedByParams() url.Values {
	params := url.Values{}
	params.Set("user.fields", userLookupFields)
	return params
}
