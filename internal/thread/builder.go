package thread

import (
	"context"
	"fmt"

	"github.com/rrbutani/tweet-tree/internal/cursor"
	"github.com/rrbutani/tweet-tree/internal/twitter"
)

// Builder folds a flat reply stream into a Graph, attributing each reply
// to its author along the way. Replies may arrive in any order relative to
// their parents; only the parent link carried by each tweet matters.
type Builder struct {
	graph *Graph
	dir   *Directory

	lastRate twitter.RateLimit
}

// NewBuilder creates a builder for the thread rooted at root.
func NewBuilder(root uint64, dir *Directory) *Builder {
	return &Builder{
		graph: NewGraph(root),
		dir:   dir,
	}
}

// Add processes one reply: resolve and credit its author, record the
// tweet on its node, and link it under its parent.
func (b *Builder) Add(ctx context.Context, t twitter.Tweet) error {
	a, err := b.dir.Resolve(ctx, t.AuthorID)
	if err != nil {
		return err
	}
	a.Replies++

	b.graph.Visit(t)
	if t.InReplyTo != 0 {
		if err := b.graph.Link(t.InReplyTo, t.ID, t.AuthorID); err != nil {
			return fmt.Errorf("add tweet %d: %w", t.ID, err)
		}
	}
	return nil
}

// Drain consumes cur to exhaustion through Add. The first error, whether
// from the cursor or from processing, aborts the crawl.
func (b *Builder) Drain(ctx context.Context, cur *cursor.Cursor[twitter.Tweet]) error {
	for cur.Next(ctx) {
		env := cur.Item()
		if err := b.Add(ctx, env.Item); err != nil {
			return err
		}
		b.lastRate = env.RateLimit
	}
	return cur.Err()
}

// Graph returns the graph built so far.
func (b *Builder) Graph() *Graph {
	return b.graph
}

// RateLimit returns the quota metadata from the most recently consumed
// item. Informational only.
func (b *Builder) RateLimit() twitter.RateLimit {
	return b.lastRate
}
