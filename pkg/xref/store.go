// Package xref resolves the expansion objects of an API response.
// Search and lookup responses reference authors, quoted or replied-to
// tweets, places and media by id only; the store indexes the includes
// block so flattening can denormalize them into each record.
package xref

import (
	"strconv"

	"github.com/Kudusch/twitter-user-stats/pkg/twitter"
)

// AuthorSummary is a flattened user from the includes block. Values are
// kept as strings because they land directly in CSV cells.
type AuthorSummary struct {
	UserID         string
	ScreenName     string
	Name           string
	CreatedAt      string
	FollowersCount string
	FollowingCount string
	TweetCount     string
	ListedCount    string
	Protected      string
	Verified       string
	Description    string
	URL            string
	Location       string
}

// PostSummary is a flattened referenced tweet with its author fields
// already denormalized.
type PostSummary struct {
	Author         AuthorSummary
	StatusID       string
	ConversationID string
	CreatedAt      string
	Lang           string
	Source         string
	Text           string
	RetweetCount   string
	ReplyCount     string
	LikeCount      string
	QuoteCount     string
}

// PlaceSummary is a flattened geo place
type PlaceSummary struct {
	FullName    string
	Name        string
	Country     string
	CountryCode string
	PlaceType   string
	GeoJSON     string
}

// MediaSummary is a flattened media object
type MediaSummary struct {
	Type     string
	URL      string
	Duration string
	Height   string
	Width    string
	Alt      string
}

// Store indexes the includes of one or more responses by id. Entries
// are first-write-wins: within a page run the first occurrence of an
// object is authoritative and later duplicates are ignored.
type Store struct {
	authors map[string]AuthorSummary
	posts   map[string]PostSummary
	places  map[string]PlaceSummary
	media   map[string]MediaSummary
}

// NewStore creates an empty cross-reference store
func NewStore() *Store {
	return &Store{
		authors: make(map[string]AuthorSummary),
		posts:   make(map[string]PostSummary),
		places:  make(map[string]PlaceSummary),
		media:   make(map[string]MediaSummary),
	}
}

// Ingest indexes one includes block. Users are indexed before tweets so
// that referenced-tweet summaries can resolve their authors from the
// same block.
func (s *Store) Ingest(includes *twitter.Includes) {
	if includes == nil {
		return
	}

	for i := range includes.Users {
		s.ingestUser(&includes.Users[i])
	}
	for i := range includes.Tweets {
		s.ingestTweet(&includes.Tweets[i])
	}
	for i := range includes.Places {
		s.ingestPlace(&includes.Places[i])
	}
	for i := range includes.Media {
		s.ingestMedia(&includes.Media[i])
	}
}

func (s *Store) ingestUser(user *twitter.User) {
	if user.ID == "" {
		return
	}
	if _, exists := s.authors[user.ID]; exists {
		return
	}

	summary := AuthorSummary{
		UserID:      user.ID,
		ScreenName:  user.Username,
		Name:        user.Name,
		CreatedAt:   user.CreatedAt,
		Protected:   strconv.FormatBool(user.Protected),
		Verified:    strconv.FormatBool(user.Verified),
		Description: user.Description,
		URL:         user.URL,
		Location:    user.Location,
	}
	if m := user.PublicMetrics; m != nil {
		summary.FollowersCount = strconv.Itoa(m.FollowersCount)
		summary.FollowingCount = strconv.Itoa(m.FollowingCount)
		summary.TweetCount = strconv.Itoa(m.TweetCount)
		summary.ListedCount = strconv.Itoa(m.ListedCount)
	}

	s.authors[user.ID] = summary
}

func (s *Store) ingestTweet(tweet *twitter.Tweet) {
	if tweet.ID == "" {
		return
	}
	if _, exists := s.posts[tweet.ID]; exists {
		return
	}

	// Author resolution is best-effort: a post whose author never made
	// it into the includes keeps blank author columns.
	summary := PostSummary{
		Author:         s.authors[tweet.AuthorID],
		StatusID:       tweet.ID,
		ConversationID: tweet.ConversationID,
		CreatedAt:      tweet.CreatedAt,
		Lang:           tweet.Lang,
		Source:         tweet.Source,
		Text:           tweet.Text,
	}
	if m := tweet.PublicMetrics; m != nil {
		summary.RetweetCount = strconv.Itoa(m.RetweetCount)
		summary.ReplyCount = strconv.Itoa(m.ReplyCount)
		summary.LikeCount = strconv.Itoa(m.LikeCount)
		summary.QuoteCount = strconv.Itoa(m.QuoteCount)
	}

	s.posts[tweet.ID] = summary
}

func (s *Store) ingestPlace(place *twitter.Place) {
	if place.ID == "" {
		return
	}
	if _, exists := s.places[place.ID]; exists {
		return
	}

	s.places[place.ID] = PlaceSummary{
		FullName:    place.FullName,
		Name:        place.Name,
		Country:     place.Country,
		CountryCode: place.CountryCode,
		PlaceType:   place.PlaceType,
		GeoJSON:     string(place.Geo),
	}
}

func (s *Store) ingestMedia(media *twitter.Media) {
	if media.MediaKey == "" {
		return
	}
	if _, exists := s.media[media.MediaKey]; exists {
		return
	}

	s.media[media.MediaKey] = MediaSummary{
		Type:     media.Type,
		URL:      media.URL,
		Duration: itoa(media.DurationMS),
		Height:   itoa(media.Height),
		Width:    itoa(media.Width),
		Alt:      media.AltText,
	}
}

// itoa renders an optional numeric field, keeping absent values blank
func itoa(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// Author returns the author summary for a user id
func (s *Store) Author(id string) (AuthorSummary, bool) {
	a, ok := s.authors[id]
	return a, ok
}

// Post returns the post summary for a tweet id
func (s *Store) Post(id string) (PostSummary, bool) {
	p, ok := s.posts[id]
	return p, ok
}

// Place returns the place summary for a place id
func (s *Store) Place(id string) (PlaceSummary, bool) {
	p, ok := s.places[id]
	return p, ok
}

// Media returns the media summary for a media key
func (s *Store) Media(key string) (MediaSummary, bool) {
	m, ok := s.media[key]
	return m, ok
}
