package twitter

import "encoding/json"

// Tweet is a single post as returned by the v2 API. Sub-objects are
// pointers: the API omits whole blocks when a tweet has no entities,
// attachments, or geo tag.
type Tweet struct {
	ID                string            `json:"id"`
	Text              string            `json:"text"`
	AuthorID          string            `json:"author_id"`
	ConversationID    string            `json:"conversation_id"`
	CreatedAt         string            `json:"created_at"`
	Lang              string            `json:"lang"`
	Source            string            `json:"source"`
	ReplySettings     string            `json:"reply_settings"`
	PossiblySensitive bool              `json:"possibly_sensitive"`
	InReplyToUserID   string            `json:"in_reply_to_user_id"`
	PublicMetrics     *TweetMetrics     `json:"public_metrics"`
	Entities          *TweetEntities    `json:"entities"`
	Attachments       *Attachments      `json:"attachments"`
	Geo               *TweetGeo         `json:"geo"`
	ReferencedTweets  []ReferencedTweet `json:"referenced_tweets"`
}

// TweetMetrics holds the public engagement counters of a tweet
type TweetMetrics struct {
	RetweetCount int `json:"retweet_count"`
	ReplyCount   int `json:"reply_count"`
	LikeCount    int `json:"like_count"`
	QuoteCount   int `json:"quote_count"`
}

// TweetEntities holds the parsed entities of a tweet's text
type TweetEntities struct {
	Hashtags []HashtagEntity `json:"hashtags"`
	Mentions []MentionEntity `json:"mentions"`
	URLs     []URLEntity     `json:"urls"`
}

// HashtagEntity is a single hashtag occurrence
type HashtagEntity struct {
	Tag string `json:"tag"`
}

// MentionEntity is a single @-mention occurrence
type MentionEntity struct {
	Username string `json:"username"`
}

// URLEntity is a single URL occurrence with its unwound metadata
type URLEntity struct {
	URL         string `json:"url"`
	ExpandedURL string `json:"expanded_url"`
	UnwoundURL  string `json:"unwound_url"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Attachments lists the media keys attached to a tweet
type Attachments struct {
	MediaKeys []string `json:"media_keys"`
}

// TweetGeo carries the place reference of a geo-tagged tweet
type TweetGeo struct {
	PlaceID     string          `json:"place_id"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// ReferencedTweet links a tweet to one it retweets, replies to or quotes.
// Type is one of "retweeted", "replied_to" or "quoted".
type ReferencedTweet struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// User is an account as returned by the v2 API
type User struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Username      string          `json:"username"`
	CreatedAt     string          `json:"created_at"`
	Description   string          `json:"description"`
	URL           string          `json:"url"`
	Location      string          `json:"location"`
	Protected     bool            `json:"protected"`
	Verified      bool            `json:"verified"`
	PinnedTweetID string          `json:"pinned_tweet_id"`
	Withheld      json.RawMessage `json:"withheld"`
	PublicMetrics *UserMetrics    `json:"public_metrics"`
	Entities      *UserEntities   `json:"entities"`
}

// UserMetrics holds the public counters of an account
type UserMetrics struct {
	FollowersCount int `json:"followers_count"`
	FollowingCount int `json:"following_count"`
	TweetCount     int `json:"tweet_count"`
	ListedCount    int `json:"listed_count"`
}

// UserEntities holds the parsed entities of a user profile
type UserEntities struct {
	URL *UserURLEntity `json:"url"`
}

// UserURLEntity holds the profile URL with its expansion
type UserURLEntity struct {
	URLs []URLEntity `json:"urls"`
}

// Place is a geo place object from the includes block
type Place struct {
	ID          string          `json:"id"`
	FullName    string          `json:"full_name"`
	Name        string          `json:"name"`
	Country     string          `json:"country"`
	CountryCode string          `json:"country_code"`
	PlaceType   string          `json:"place_type"`
	Geo         json.RawMessage `json:"geo"`
}

// Media is a media object from the includes block. The numeric fields
// are pointers so an absent field is distinguishable from a zero value.
type Media struct {
	MediaKey   string `json:"media_key"`
	Type       string `json:"type"`
	URL        string `json:"url"`
	DurationMS *int   `json:"duration_ms"`
	Height     *int   `json:"height"`
	Width      *int   `json:"width"`
	AltText    string `json:"alt_text"`
}

// Includes carries the expanded objects referenced by the primary data
type Includes struct {
	Tweets []Tweet `json:"tweets"`
	Users  []User  `json:"users"`
	Places []Place `json:"places"`
	Media  []Media `json:"media"`
}

// Meta carries the pagination state of a response
type Meta struct {
	ResultCount int    `json:"result_count"`
	NextToken   string `json:"next_token"`
	NewestID    string `json:"newest_id"`
	OldestID    string `json:"oldest_id"`
}

// APIErrorDetail is one entry of an error response body
type APIErrorDetail struct {
	Message string `json:"message"`
	Title   string `json:"title"`
	Detail  string `json:"detail"`
	Type    string `json:"type"`
}

// TweetsResponse is the envelope of tweet-returning endpoints
type TweetsResponse struct {
	Data     []Tweet          `json:"data"`
	Includes *Includes        `json:"includes"`
	Meta     *Meta            `json:"meta"`
	Errors   []APIErrorDetail `json:"errors"`
}

// UsersResponse is the envelope of user-returning endpoints. Meta is
// only present on paginated endpoints such as retweeted_by.
type UsersResponse struct {
	Data     []User           `json:"data"`
	Includes *Includes        `json:"includes"`
	Meta     *Meta            `json:"meta"`
	Errors   []APIErrorDetail `json:"errors"`
}

// Rate limit headers returned on every response
const (
	HeaderRateLimitLimit     = "x-rate-limit-limit"
	HeaderRateLimitRemaining = "x-rate-limit-remaining"
	HeaderRateLimitReset     = "x-rate-limit-reset"
)
