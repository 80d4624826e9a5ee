// Package twitter is a minimal client for the parts of the Twitter v2 API
// a thread crawl needs: app-only auth, single tweet lookup, batch user
// lookup, and token-paginated recent search.
package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.twitter.com"

	defaultTimeout = 30 * time.Second

	tweetFields = "author_id,created_at,referenced_tweets"
	userFields  = "name,username,profile_background_color"
)

// Client talks to the v2 API with a bearer token. Construct via
// Authenticate or NewClient.
type Client struct {
	httpClient *http.Client
	baseURL    string
	bearer     string
}

type tweetObject struct {
	ID               string            `json:"id"`
	AuthorID         string            `json:"author_id"`
	Text             string            `json:"text"`
	CreatedAt        time.Time         `json:"created_at"`
	ReferencedTweets []referencedTweet `json:"referenced_tweets"`
}

type referencedTweet struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type userObject struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Username        string `json:"username"`
	BackgroundColor string `json:"profile_background_color"`
}

type apiError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

type tweetResponse struct {
	Data   *tweetObject `json:"data"`
	Errors []apiError   `json:"errors"`
}

type usersResponse struct {
	Data   []userObject `json:"data"`
	Errors []apiError   `json:"errors"`
}

type searchMeta struct {
	NewestID    string `json:"newest_id"`
	OldestID    string `json:"oldest_id"`
	ResultCount int    `json:"result_count"`
	NextToken   string `json:"next_token"`
}

type searchResponse struct {
	Data []tweetObject `json:"data"`
	Meta *searchMeta   `json:"meta"`
}

// Tweet looks up a single tweet by id.
func (c *Client) Tweet(ctx context.Context, id uint64) (*Tweet, error) {
	op := fmt.Sprintf("tweet %d", id)

	q := url.Values{}
	q.Set("tweet.fields", tweetFields)
	u := fmt.Sprintf("%s/2/tweets/%d?%s", c.baseURL, id, q.Encode())

	var body tweetResponse
	if _, err := c.get(ctx, op, u, &body); err != nil {
		return nil, err
	}
	if body.Data == nil {
		// The v2 API reports missing tweets as a 200 with an errors array.
		return nil, &NotFoundError{ID: id}
	}

	t, err := tweetFromObject(*body.Data)
	if err != nil {
		return nil, &MalformedResponseError{Op: op, Reason: "bad tweet object", Err: err}
	}
	return &t, nil
}

// UsersByIDs performs a batch profile lookup. The v2 users endpoint
// accepts up to 100 ids per call; callers here never come close.
func (c *Client) UsersByIDs(ctx context.Context, ids []uint64) ([]User, error) {
	op := "users lookup"

	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = strconv.FormatUint(id, 10)
	}
	q := url.Values{}
	q.Set("ids", strings.Join(strs, ","))
	q.Set("user.fields", userFields)
	u := fmt.Sprintf("%s/2/users?%s", c.baseURL, q.Encode())

	var body usersResponse
	if _, err := c.get(ctx, op, u, &body); err != nil {
		return nil, err
	}

	users := make([]User, 0, len(body.Data))
	for _, obj := range body.Data {
		id, err := strconv.ParseUint(obj.ID, 10, 64)
		if err != nil {
			return nil, &MalformedResponseError{Op: op, Reason: fmt.Sprintf("bad user id %q", obj.ID), Err: err}
		}
		users = append(users, User{
			ID:              id,
			Handle:          obj.Username,
			DisplayName:     obj.Name,
			BackgroundColor: obj.BackgroundColor,
		})
	}
	return users, nil
}

// SearchPage fetches one page of recent-search results. nextToken is empty
// on the first request. Unlike the v1 cursor endpoints the search API
// paginates with max_results/next_token, so this does not share a code
// path with them.
func (c *Client) SearchPage(ctx context.Context, query string, pageSize int, nextToken string) (*Page, RateLimit, error) {
	op := "search page"

	q := url.Values{}
	q.Set("query", query)
	q.Set("max_results", strconv.Itoa(pageSize))
	q.Set("tweet.fields", tweetFields)
	if nextToken != "" {
		q.Set("next_token", nextToken)
	}
	u := fmt.Sprintf("%s/2/tweets/search/recent?%s", c.baseURL, q.Encode())

	var body searchResponse
	rl, err := c.get(ctx, op, u, &body)
	if err != nil {
		return nil, rl, err
	}
	if body.Meta == nil {
		return nil, rl, &MalformedResponseError{Op: op, Reason: "missing meta object"}
	}

	page := &Page{
		ResultCount: body.Meta.ResultCount,
		NextToken:   body.Meta.NextToken,
	}
	// newest_id/oldest_id are absent on empty pages.
	if body.Meta.NewestID != "" {
		if page.NewestID, err = strconv.ParseUint(body.Meta.NewestID, 10, 64); err != nil {
			return nil, rl, &MalformedResponseError{Op: op, Reason: fmt.Sprintf("bad newest_id %q", body.Meta.NewestID), Err: err}
		}
	}
	if body.Meta.OldestID != "" {
		if page.OldestID, err = strconv.ParseUint(body.Meta.OldestID, 10, 64); err != nil {
			return nil, rl, &MalformedResponseError{Op: op, Reason: fmt.Sprintf("bad oldest_id %q", body.Meta.OldestID), Err: err}
		}
	}

	page.Tweets = make([]Tweet, 0, len(body.Data))
	for _, obj := range body.Data {
		t, err := tweetFromObject(obj)
		if err != nil {
			return nil, rl, &MalformedResponseError{Op: op, Reason: "bad tweet object", Err: err}
		}
		page.Tweets = append(page.Tweets, t)
	}
	return page, rl, nil
}

// get issues an authorized GET and decodes the JSON body into dest.
// The returned RateLimit is parsed from the response headers when present.
func (c *Client) get(ctx context.Context, op, rawURL string, dest any) (RateLimit, error) {
	var rl RateLimit

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return rl, &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.bearer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return rl, &TransportError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	rl = rateLimitFromHeader(resp.Header)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return rl, &TransportError{Op: op, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return rl, &AuthenticationError{Err: fmt.Errorf("%s: HTTP %d", op, resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return rl, &TransportError{Op: op, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return rl, &MalformedResponseError{Op: op, Reason: "bad JSON", Err: err}
	}
	return rl, nil
}

func rateLimitFromHeader(h http.Header) RateLimit {
	var rl RateLimit
	rl.Limit, _ = strconv.Atoi(h.Get("x-rate-limit-limit"))
	rl.Remaining, _ = strconv.Atoi(h.Get("x-rate-limit-remaining"))
	if sec, err := strconv.ParseInt(h.Get("x-rate-limit-reset"), 10, 64); err == nil && sec > 0 {
		rl.Reset = time.Unix(sec, 0).UTC()
	}
	return rl
}

func tweetFromObject(obj tweetObject) (Tweet, error) {
	id, err := strconv.ParseUint(obj.ID, 10, 64)
	if err != nil {
		return Tweet{}, fmt.Errorf("tweet id %q: %w", obj.ID, err)
	}
	author, err := strconv.ParseUint(obj.AuthorID, 10, 64)
	if err != nil {
		return Tweet{}, fmt.Errorf("author id %q: %w", obj.AuthorID, err)
	}

	t := Tweet{
		ID:        id,
		AuthorID:  author,
		CreatedAt: obj.CreatedAt,
		Text:      obj.Text,
	}
	for _, ref := range obj.ReferencedTweets {
		if ref.Type != "replied_to" {
			continue // quotes and retweets are not reply edges
		}
		parent, err := strconv.ParseUint(ref.ID, 10, 64)
		if err != nil {
			return Tweet{}, fmt.Errorf("replied_to id %q: %w", ref.ID, err)
		}
		t.InReplyTo = parent
	}
	return t, nil
}
