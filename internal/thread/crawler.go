package thread

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rrbutani/tweet-tree/internal/cursor"
	"github.com/rrbutani/tweet-tree/internal/twitter"
)

// RetentionWindow is how far back the recent search endpoint reaches.
// Tweets older than this may legitimately come back with no replies.
const RetentionWindow = 7 * 24 * time.Hour

const (
	MinPageSize = 10
	MaxPageSize = 100
)

var warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)

// API is the slice of the twitter client a crawl needs.
type API interface {
	Tweet(ctx context.Context, id uint64) (*twitter.Tweet, error)
	UsersByIDs(ctx context.Context, ids []uint64) ([]twitter.User, error)
	SearchPage(ctx context.Context, query string, pageSize int, nextToken string) (*twitter.Page, twitter.RateLimit, error)
}

// Crawler drives one whole-thread crawl: root lookup, retention advisory,
// paginated reply fetch, graph construction.
type Crawler struct {
	api      API
	pageSize int

	// Overridable for tests.
	rng  *rand.Rand
	warn io.Writer
	now  func() time.Time
}

// NewCrawler creates a crawler issuing search requests of pageSize tweets.
func NewCrawler(api API, pageSize int) (*Crawler, error) {
	if pageSize < MinPageSize || pageSize > MaxPageSize {
		return nil, fmt.Errorf("page size %d out of range %d..%d", pageSize, MinPageSize, MaxPageSize)
	}
	return &Crawler{
		api:      api,
		pageSize: pageSize,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		warn:     os.Stderr,
		now:      time.Now,
	}, nil
}

// Crawl fetches the root tweet, then every reply transitively under it,
// and returns the finished reply graph together with the author table.
// Any transport, lookup, or decode failure aborts the crawl; nothing is
// retried and nothing partial is returned.
func (c *Crawler) Crawl(ctx context.Context, rootID uint64) (*Graph, *Directory, error) {
	root, err := c.api.Tweet(ctx, rootID)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch root tweet %d: %w", rootID, err)
	}

	if c.now().Sub(root.CreatedAt) >= RetentionWindow {
		fmt.Fprintf(c.warn,
			"%s: the root tweet is over 7 days old.\n"+
				"Recent search only returns tweets from the past week, so this crawl may find no replies.\n"+
				"(Full-archive search would reach further back but is not supported here.)\n",
			warnStyle.Render("WARNING"))
	}

	dir := NewDirectory(c.api, c.rng)
	b := NewBuilder(rootID, dir)
	b.Graph().Visit(*root)

	// Crediting the root author happens only if they also reply; the root
	// itself is not a reply. Resolve them anyway so the rendered root node
	// carries a handle.
	if _, err := dir.Resolve(ctx, root.AuthorID); err != nil {
		return nil, nil, err
	}

	query := "conversation_id:" + strconv.FormatUint(rootID, 10)
	cur := cursor.New(func(ctx context.Context, nextToken string) ([]twitter.Tweet, string, twitter.RateLimit, error) {
		page, rl, err := c.api.SearchPage(ctx, query, c.pageSize, nextToken)
		if err != nil {
			return nil, "", rl, err
		}
		return page.Tweets, page.NextToken, rl, nil
	})

	if err := b.Drain(ctx, cur); err != nil {
		return nil, nil, err
	}
	return b.Graph(), dir, nil
}
