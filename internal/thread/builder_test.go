package thread

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rrbutani/tweet-tree/internal/cursor"
	"github.com/rrbutani/tweet-tree/internal/twitter"
)

func reply(id, author, parent uint64) twitter.Tweet {
	return twitter.Tweet{
		ID:        id,
		AuthorID:  author,
		InReplyTo: parent,
		CreatedAt: time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC),
		Text:      "reply",
	}
}

func directoryFor(authors ...uint64) *Directory {
	users := make(map[uint64]twitter.User)
	for _, id := range authors {
		users[id] = twitter.User{ID: id, Handle: "u", DisplayName: "U"}
	}
	return NewDirectory(&fakeLookup{users: users}, testRand())
}

func TestBuilderEndToEnd(t *testing.T) {
	// Root 100; stream: 200 (A, parent 100), 201 (B, parent 100),
	// 300 (A, parent 200).
	const authorA, authorB = 7, 8
	dir := directoryFor(authorA, authorB)
	b := NewBuilder(100, dir)

	ctx := context.Background()
	require.NoError(t, b.Add(ctx, reply(200, authorA, 100)))
	require.NoError(t, b.Add(ctx, reply(201, authorB, 100)))
	require.NoError(t, b.Add(ctx, reply(300, authorA, 200)))

	g := b.Graph()
	assert.Equal(t, 4, g.Len())
	assert.Equal(t, []uint64{200, 201}, g.Children(100))
	assert.Equal(t, []uint64{300}, g.Children(200))
	assert.Equal(t, []Edge{
		{Parent: 100, Child: 200, AuthorID: authorA},
		{Parent: 100, Child: 201, AuthorID: authorB},
		{Parent: 200, Child: 300, AuthorID: authorA},
	}, g.Edges())

	a, err := dir.Resolve(ctx, authorA)
	require.NoError(t, err)
	assert.Equal(t, 2, a.Replies)

	bAuthor, err := dir.Resolve(ctx, authorB)
	require.NoError(t, err)
	assert.Equal(t, 1, bAuthor.Replies)
}

func TestBuilderArrivalOrderIndependent(t *testing.T) {
	// The same logical thread in three arrival orders, including children
	// before their parents.
	const author = 7
	orders := map[string][]twitter.Tweet{
		"parents first":  {reply(200, author, 100), reply(300, author, 200), reply(400, author, 300)},
		"children first": {reply(400, author, 300), reply(300, author, 200), reply(200, author, 100)},
		"interleaved":    {reply(300, author, 200), reply(400, author, 300), reply(200, author, 100)},
	}

	for name, stream := range orders {
		t.Run(name, func(t *testing.T) {
			b := NewBuilder(100, directoryFor(author))
			for _, tw := range stream {
				require.NoError(t, b.Add(context.Background(), tw))
			}

			g := b.Graph()
			assert.Equal(t, 4, g.Len())
			assert.Equal(t, 0, g.InDegree(100), "root in-degree")
			for _, id := range []uint64{200, 300, 400} {
				assert.Equal(t, 1, g.InDegree(id), "in-degree of %d", id)
			}
			assert.True(t, g.Node(300).Visited(), "parent must be enriched once its own tweet arrives")
		})
	}
}

func TestBuilderCreditsAuthorPerReply(t *testing.T) {
	const author = 7
	dir := directoryFor(author)
	fl := dir.lookup.(*fakeLookup)
	b := NewBuilder(100, dir)

	for i := uint64(0); i < 5; i++ {
		require.NoError(t, b.Add(context.Background(), reply(200+i, author, 100)))
	}

	assert.Equal(t, 1, fl.calls, "one lookup for five posts by the same author")
	a, err := dir.Resolve(context.Background(), author)
	require.NoError(t, err)
	assert.Equal(t, 5, a.Replies)
}

func TestBuilderDrain(t *testing.T) {
	const author = 7
	pages := [][]twitter.Tweet{
		{reply(200, author, 100)},
		{}, // empty page mid-stream
		{reply(201, author, 100), reply(300, author, 200)},
	}

	i := 0
	fetch := func(_ context.Context, _ string) ([]twitter.Tweet, string, twitter.RateLimit, error) {
		p := pages[i]
		i++
		next := "more"
		if i == len(pages) {
			next = ""
		}
		return p, next, twitter.RateLimit{Remaining: 450 - i}, nil
	}

	b := NewBuilder(100, directoryFor(author))
	require.NoError(t, b.Drain(context.Background(), cursor.New(fetch)))

	assert.Equal(t, 3, b.Graph().EdgeCount())
	assert.Equal(t, 447, b.RateLimit().Remaining, "envelope from the last page wins")
}

func TestGraphLink(t *testing.T) {
	g := NewGraph(100)

	require.NoError(t, g.Link(100, 200, 7))
	require.NoError(t, g.Link(100, 200, 7), "relinking the same edge is a no-op")
	assert.Error(t, g.Link(300, 200, 7), "a reply has exactly one parent")
	assert.Error(t, g.Link(200, 100, 7), "the root cannot be a reply")
	assert.Equal(t, 1, g.EdgeCount())
}
