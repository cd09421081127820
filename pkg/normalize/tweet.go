package normalize

import (
	"strconv"

	"github.com/Kudusch/twitter-user-stats/pkg/errors"
	"github.com/Kudusch/twitter-user-stats/pkg/twitter"
	"github.com/Kudusch/twitter-user-stats/pkg/xref"
)

// Tweet flattens one tweet into a Record against the TweetColumns
// schema. The store must hold the includes of the response the tweet
// came from: the author, any referenced tweets and any attached media
// are mandatory lookups, and a miss aborts the record with a
// missing-reference error. Place lookups are best-effort.
func Tweet(raw *twitter.Tweet, store *xref.Store, queriedAt string) (Record, error) {
	record := emptyRecord(TweetColumns)

	record["status_id"] = raw.ID
	record["created_at"] = raw.CreatedAt
	record["text"] = raw.Text
	record["conversation_id"] = raw.ConversationID
	record["lang"] = raw.Lang
	record["source"] = raw.Source
	record["reply_settings"] = raw.ReplySettings

	if m := raw.PublicMetrics; m != nil {
		record["retweet_count"] = strconv.Itoa(m.RetweetCount)
		record["reply_count"] = strconv.Itoa(m.ReplyCount)
		record["like_count"] = strconv.Itoa(m.LikeCount)
		record["quote_count"] = strconv.Itoa(m.QuoteCount)
	}

	if e := raw.Entities; e != nil {
		if len(e.Hashtags) > 0 {
			tags := make([]string, len(e.Hashtags))
			for i, h := range e.Hashtags {
				tags[i] = h.Tag
			}
			record["hashtags"] = jsonList(tags)
		}

		if len(e.Mentions) > 0 {
			usernames := make([]string, len(e.Mentions))
			for i, m := range e.Mentions {
				usernames[i] = m.Username
			}
			record["mentions"] = jsonList(usernames)
		}

		if len(e.URLs) > 0 {
			locations := make([]string, len(e.URLs))
			unwound := make([]string, len(e.URLs))
			titles := make([]string, len(e.URLs))
			descriptions := make([]string, len(e.URLs))
			for i, u := range e.URLs {
				locations[i] = u.ExpandedURL
				unwound[i] = u.UnwoundURL
				titles[i] = u.Title
				descriptions[i] = u.Description
			}
			record["url_location"] = jsonList(locations)
			record["url_unwound"] = jsonList(unwound)
			record["url_title"] = jsonList(titles)
			record["url_description"] = jsonList(descriptions)
			record["url_sensitive"] = strconv.FormatBool(raw.PossiblySensitive)
		}
	}

	if raw.Geo != nil && raw.Geo.PlaceID != "" {
		record["geo_id"] = raw.Geo.PlaceID
		// Place details are best-effort: a tag whose place never made
		// it into the includes keeps its id and nothing else.
		if place, ok := store.Place(raw.Geo.PlaceID); ok {
			record["geo_full_name"] = place.FullName
			record["geo_name"] = place.Name
			record["geo_country"] = place.Country
			record["geo_country_code"] = place.CountryCode
			record["geo_place_type"] = place.PlaceType
			record["geo_json"] = place.GeoJSON
		}
	}

	if a := raw.Attachments; a != nil && len(a.MediaKeys) > 0 {
		keys := make([]string, 0, len(a.MediaKeys))
		types := make([]string, 0, len(a.MediaKeys))
		urls := make([]string, 0, len(a.MediaKeys))
		durations := make([]string, 0, len(a.MediaKeys))
		heights := make([]string, 0, len(a.MediaKeys))
		widths := make([]string, 0, len(a.MediaKeys))
		alts := make([]string, 0, len(a.MediaKeys))

		for _, key := range a.MediaKeys {
			media, ok := store.Media(key)
			if !ok {
				return nil, errors.NewMissingReference("media", key)
			}
			keys = append(keys, key)
			types = append(types, media.Type)
			urls = append(urls, media.URL)
			durations = append(durations, media.Duration)
			heights = append(heights, media.Height)
			widths = append(widths, media.Width)
			alts = append(alts, media.Alt)
		}

		record["media_key"] = jsonList(keys)
		record["media_type"] = jsonList(types)
		record["media_url"] = jsonList(urls)
		record["media_duration"] = jsonList(durations)
		record["media_height"] = jsonList(heights)
		record["media_width"] = jsonList(widths)
		record["media_alt"] = jsonList(alts)
	}

	for _, ref := range raw.ReferencedTweets {
		switch ref.Type {
		case "retweeted", "quoted":
			post, ok := store.Post(ref.ID)
			if !ok {
				return nil, errors.NewMissingReference("referenced tweet", ref.ID)
			}
			prefix := "retweeted_"
			if ref.Type == "quoted" {
				prefix = "quoted_"
			}
			fillRelationship(record, prefix, post)
		case "replied_to":
			post, ok := store.Post(ref.ID)
			if !ok {
				// Deleted or protected parents are common; fall back
				// to the bare reply target id.
				record["replied_user_id"] = raw.InReplyToUserID
				continue
			}
			fillRelationship(record, "replied_", post)
		}
	}

	record["is_retweet"] = strconv.FormatBool(record["retweeted_tweet_status_id"] != "")
	record["is_reply"] = strconv.FormatBool(record["replied_tweet_status_id"] != "")
	record["is_quote"] = strconv.FormatBool(record["quoted_tweet_status_id"] != "")

	author, ok := store.Author(raw.AuthorID)
	if !ok {
		return nil, errors.NewMissingReference("author", raw.AuthorID)
	}
	record["user_id"] = raw.AuthorID
	record["screen_name"] = author.ScreenName
	record["name"] = author.Name
	record["account_created_at"] = author.CreatedAt
	record["description"] = author.Description
	record["url"] = author.URL
	record["location"] = author.Location
	record["followers_count"] = author.FollowersCount
	record["following_count"] = author.FollowingCount
	record["tweet_count"] = author.TweetCount
	record["listed_count"] = author.ListedCount
	record["protected"] = author.Protected
	record["verified"] = author.Verified

	record["queried_at"] = queriedAt

	return record, nil
}

// fillRelationship denormalizes a referenced tweet and its author into
// one prefixed column block.
func fillRelationship(record Record, prefix string, post xref.PostSummary) {
	record[prefix+"user_id"] = post.Author.UserID
	record[prefix+"user_screen_name"] = post.Author.ScreenName
	record[prefix+"user_name"] = post.Author.Name
	record[prefix+"user_followers_count"] = post.Author.FollowersCount
	record[prefix+"user_following_count"] = post.Author.FollowingCount
	record[prefix+"user_tweet_count"] = post.Author.TweetCount
	record[prefix+"user_listed_count"] = post.Author.ListedCount
	record[prefix+"user_protected"] = post.Author.Protected
	record[prefix+"user_verified"] = post.Author.Verified
	record[prefix+"user_description"] = post.Author.Description
	record[prefix+"tweet_status_id"] = post.StatusID
	record[prefix+"tweet_conversation_id"] = post.ConversationID
	record[prefix+"tweet_created_at"] = post.CreatedAt
	record[prefix+"tweet_lang"] = post.Lang
	record[prefix+"tweet_source"] = post.Source
	record[prefix+"tweet_text"] = post.Text
	record[prefix+"tweet_retweet_count"] = post.RetweetCount
	record[prefix+"tweet_reply_count"] = post.ReplyCount
	record[prefix+"tweet_like_count"] = post.LikeCount
	record[prefix+"tweet_quote_count"] = post.QuoteCount
}

// Tweets flattens a whole response page, ingesting its includes into
// the store first so references resolve within the page.
func Tweets(resp *twitter.TweetsResponse, store *xref.Store, queriedAt string) ([]Record, error) {
	store.Ingest(resp.Includes)

	records := make([]Record, 0, len(resp.Data))
	for i := range resp.Data {
		record, err := Tweet(&resp.Data[i], store, queriedAt)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
