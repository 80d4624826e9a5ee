// Package cursor flattens a token-paginated search endpoint into a lazy,
// ordered stream of items. The v2 search API paginates with an opaque
// next_token rather than the id-based cursors of the older endpoints, so
// it gets its own iterator.
package cursor

import (
	"context"

	"github.com/rrbutani/tweet-tree/internal/twitter"
)

// Envelope wraps one item with the rate-limit metadata captured from the
// page response that carried it. The metadata is informational only.
type Envelope[T any] struct {
	Item      T
	RateLimit twitter.RateLimit
}

// PageFunc fetches one page. nextToken is empty on the first call. A
// returned empty next token signals the final page.
type PageFunc[T any] func(ctx context.Context, nextToken string) (items []T, next string, rl twitter.RateLimit, err error)

type state int

const (
	stateIdle state = iota
	stateAwaitingPage
	stateDraining
	stateExhausted
)

// Cursor iterates a paginated result set in the bufio.Scanner idiom:
//
//	cur := cursor.New(fetch)
//	for cur.Next(ctx) {
//		item := cur.Item()
//		...
//	}
//	if err := cur.Err(); err != nil { ... }
//
// A Cursor is single-use: once exhausted (or failed) it stays exhausted,
// and a fresh crawl needs a fresh Cursor. It issues at most one page fetch
// at a time and is not safe for concurrent use.
type Cursor[T any] struct {
	fetch PageFunc[T]

	state state
	token string
	buf   []Envelope[T]
	item  Envelope[T]
	err   error
}

// New creates a cursor over fetch. Nothing is requested until the first
// call to Next.
func New[T any](fetch PageFunc[T]) *Cursor[T] {
	return &Cursor[T]{fetch: fetch}
}

// Next advances to the next item, fetching pages as needed. It returns
// false when the stream is exhausted or a fetch failed; check Err to tell
// the two apart. After a failure the cursor is not resumable.
func (c *Cursor[T]) Next(ctx context.Context) bool {
	for {
		switch c.state {
		case stateIdle:
			c.state = stateAwaitingPage

		case stateAwaitingPage:
			items, next, rl, err := c.fetch(ctx, c.token)
			if err != nil {
				c.err = err
				c.state = stateExhausted
				return false
			}
			c.token = next
			c.buf = c.buf[:0]
			for _, it := range items {
				c.buf = append(c.buf, Envelope[T]{Item: it, RateLimit: rl})
			}
			c.state = stateDraining

		case stateDraining:
			if len(c.buf) > 0 {
				c.item = c.buf[0]
				c.buf = c.buf[1:]
				return true
			}
			// Exhaustion is keyed on the token alone: an empty page that
			// still carries a next token means more pages exist.
			if c.token == "" {
				c.state = stateExhausted
				return false
			}
			c.state = stateAwaitingPage

		case stateExhausted:
			return false
		}
	}
}

// Item returns the envelope produced by the last successful Next.
func (c *Cursor[T]) Item() Envelope[T] {
	return c.item
}

// Err returns the fetch error that terminated iteration, if any.
func (c *Cursor[T]) Err() error {
	return c.err
}
