package twitter

import "time"

// Tweet is a single post, immutable once fetched.
type Tweet struct {
	ID        uint64
	AuthorID  uint64
	InReplyTo uint64 // id of the tweet this one replies to; 0 when not a reply
	CreatedAt time.Time
	Text      string
}

// User is an author profile as returned by the users lookup endpoint.
type User struct {
	ID          uint64
	Handle      string // @username, without the @
	DisplayName string
	// BackgroundColor is the profile background color as an RRGGBB hex
	// string. Empty or "000000" means unset.
	BackgroundColor string
}

// RateLimit is the quota metadata attached to an API response. It is
// recorded and surfaced but never used to throttle requests.
type RateLimit struct {
	Limit     int
	Remaining int
	Reset     time.Time
}

// Page is one page of recent-search results.
type Page struct {
	Tweets      []Tweet
	NewestID    uint64
	OldestID    uint64
	ResultCount int
	NextToken   string // empty means no further pages
}
