// Package thread turns a flat stream of replies into a reply graph plus
// an author table.
package thread

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/rrbutani/tweet-tree/internal/twitter"
)

// Color is an RGB triple used to tint an author's nodes in the rendered
// graph.
type Color struct {
	R, G, B uint8
}

// Hex formats the color as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseColor parses an "rrggbb" hex triple, with or without a leading '#'.
func ParseColor(s string) (Color, error) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return Color{}, fmt.Errorf("color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// unsetColor is the all-zero sentinel profiles use for "no background
// color set".
const unsetColor = "000000"

// Author is one entry in the directory. Replies counts how many posts in
// the stream were attributed to this author; it grows monotonically for
// the lifetime of a run.
type Author struct {
	ID          uint64
	Handle      string
	DisplayName string
	Color       Color
	Replies     int
}

// UserLookup is the batch profile-lookup endpoint the directory resolves
// cache misses against.
type UserLookup interface {
	UsersByIDs(ctx context.Context, ids []uint64) ([]twitter.User, error)
}

// Directory memoizes author lookups: at most one network call per unique
// author id. Entries are never evicted.
type Directory struct {
	lookup UserLookup
	rng    *rand.Rand

	mu      sync.Mutex
	authors map[uint64]*Author
	flight  singleflight.Group
}

// NewDirectory creates a directory resolving misses via lookup. rng seeds
// the fallback color assignment for profiles without a background color;
// injecting it keeps test output reproducible.
func NewDirectory(lookup UserLookup, rng *rand.Rand) *Directory {
	return &Directory{
		lookup:  lookup,
		rng:     rng,
		authors: make(map[uint64]*Author),
	}
}

// Resolve returns the author for id, performing a single profile lookup on
// first sighting. Concurrent misses for the same id collapse into one
// call.
func (d *Directory) Resolve(ctx context.Context, id uint64) (*Author, error) {
	d.mu.Lock()
	a, ok := d.authors[id]
	d.mu.Unlock()
	if ok {
		return a, nil
	}

	v, err, _ := d.flight.Do(strconv.FormatUint(id, 10), func() (any, error) {
		// A concurrent flight may have landed between the check above and
		// this call being queued.
		d.mu.Lock()
		a, ok := d.authors[id]
		d.mu.Unlock()
		if ok {
			return a, nil
		}

		users, err := d.lookup.UsersByIDs(ctx, []uint64{id})
		if err != nil {
			return nil, fmt.Errorf("resolve author %d: %w", id, err)
		}
		var user *twitter.User
		for i := range users {
			if users[i].ID == id {
				user = &users[i]
				break
			}
		}
		if user == nil {
			return nil, &twitter.MalformedResponseError{
				Op:     "users lookup",
				Reason: fmt.Sprintf("user %d missing from response", id),
			}
		}

		a = &Author{
			ID:          user.ID,
			Handle:      user.Handle,
			DisplayName: user.DisplayName,
			Color:       d.colorFor(*user),
		}
		d.mu.Lock()
		d.authors[id] = a
		d.mu.Unlock()
		return a, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Author), nil
}

// colorFor uses the profile's declared background color when one is set,
// and otherwise picks a pseudo-random triple, uniform per channel.
func (d *Directory) colorFor(u twitter.User) Color {
	if u.BackgroundColor != "" && u.BackgroundColor != unsetColor {
		if c, err := ParseColor(u.BackgroundColor); err == nil {
			return c
		}
	}
	return Color{
		R: uint8(d.rng.Intn(256)),
		G: uint8(d.rng.Intn(256)),
		B: uint8(d.rng.Intn(256)),
	}
}

// Authors returns every resolved author, ordered by id.
func (d *Directory) Authors() []*Author {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*Author, 0, len(d.authors))
	for _, a := range d.authors {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len reports how many unique authors have been resolved.
func (d *Directory) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.authors)
}
