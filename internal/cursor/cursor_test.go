package cursor

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rrbutani/tweet-tree/internal/twitter"
)

// page is one canned search page for the fake PageFunc.
type page struct {
	items []string
	next  string
}

// pagesFunc serves the given pages in order, keyed by the token chain:
// page i hands out pages[i].next, and the fetch for token t must be the
// page that advertised t. It also counts fetches.
func pagesFunc(t *testing.T, pages []page, calls *int) PageFunc[string] {
	t.Helper()
	rl := twitter.RateLimit{Limit: 450, Remaining: 449, Reset: time.Unix(1700000000, 0)}

	i := 0
	return func(_ context.Context, nextToken string) ([]string, string, twitter.RateLimit, error) {
		*calls++
		if i >= len(pages) {
			t.Fatalf("fetch #%d: no page left for token %q", *calls, nextToken)
		}
		want := ""
		if i > 0 {
			want = pages[i-1].next
		}
		if nextToken != want {
			t.Fatalf("fetch #%d: token = %q, want %q", *calls, nextToken, want)
		}
		p := pages[i]
		i++
		return p.items, p.next, rl, nil
	}
}

func collect(t *testing.T, c *Cursor[string]) []string {
	t.Helper()
	var out []string
	for c.Next(context.Background()) {
		out = append(out, c.Item().Item)
	}
	if err := c.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return out
}

func TestCursor_ConcatenatesPagesInOrder(t *testing.T) {
	pages := []page{
		{items: []string{"a", "b"}, next: "t0"},
		{items: []string{"c"}, next: "t1"},
		{items: []string{"d", "e", "f"}, next: ""},
	}

	calls := 0
	c := New(pagesFunc(t, pages, &calls))

	got := collect(t, c)
	want := []string{"a", "b", "c", "d", "e", "f"}
	if len(got) != len(want) {
		t.Fatalf("items = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("item %d = %q, want %q", i, got[i], want[i])
		}
	}
	if calls != 3 {
		t.Errorf("fetches = %d, want 3 (one per page, none after the tokenless page)", calls)
	}
}

func TestCursor_EmptyPageWithTokenContinues(t *testing.T) {
	pages := []page{
		{items: []string{"a"}, next: "t0"},
		{items: nil, next: "t1"}, // empty but not exhausted
		{items: []string{"b"}, next: ""},
	}

	calls := 0
	c := New(pagesFunc(t, pages, &calls))

	got := collect(t, c)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("items = %v, want [a b]", got)
	}
	if calls != 3 {
		t.Errorf("fetches = %d, want 3: the empty page must not end iteration", calls)
	}
}

func TestCursor_ExhaustedStaysExhausted(t *testing.T) {
	pages := []page{{items: []string{"a"}, next: ""}}

	calls := 0
	c := New(pagesFunc(t, pages, &calls))
	_ = collect(t, c)

	for range 3 {
		if c.Next(context.Background()) {
			t.Fatal("Next returned true after exhaustion")
		}
	}
	if calls != 1 {
		t.Errorf("fetches = %d, want 1: no requests after exhaustion", calls)
	}
}

func TestCursor_Deterministic(t *testing.T) {
	fixture := []page{
		{items: []string{"x", "y"}, next: "t0"},
		{items: []string{"z"}, next: ""},
	}

	var calls1, calls2 int
	first := collect(t, New(pagesFunc(t, fixture, &calls1)))
	second := collect(t, New(pagesFunc(t, fixture, &calls2)))

	if len(first) != len(second) {
		t.Fatalf("runs disagree: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("item %d: %q vs %q", i, first[i], second[i])
		}
	}
}

func TestCursor_EnvelopeCarriesPageRateLimit(t *testing.T) {
	rls := []twitter.RateLimit{
		{Limit: 450, Remaining: 10, Reset: time.Unix(1, 0)},
		{Limit: 450, Remaining: 9, Reset: time.Unix(2, 0)},
	}
	i := 0
	fetch := func(_ context.Context, _ string) ([]string, string, twitter.RateLimit, error) {
		p := i
		i++
		next := "more"
		if p == 1 {
			next = ""
		}
		return []string{fmt.Sprintf("p%d", p)}, next, rls[p], nil
	}

	c := New(fetch)
	var got []twitter.RateLimit
	for c.Next(context.Background()) {
		got = append(got, c.Item().RateLimit)
	}
	if err := c.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("items = %d, want 2", len(got))
	}
	for p := range got {
		if got[p].Remaining != rls[p].Remaining {
			t.Errorf("item %d remaining = %d, want %d", p, got[p].Remaining, rls[p].Remaining)
		}
	}
}

func TestCursor_FetchErrorSurfacesAndTerminates(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	fetch := func(_ context.Context, token string) ([]string, string, twitter.RateLimit, error) {
		calls++
		if token == "" {
			return []string{"a"}, "t0", twitter.RateLimit{}, nil
		}
		return nil, "", twitter.RateLimit{}, boom
	}

	c := New(fetch)
	ctx := context.Background()

	if !c.Next(ctx) {
		t.Fatal("expected first item")
	}
	if c.Next(ctx) {
		t.Fatal("expected failure on second page")
	}
	if !errors.Is(c.Err(), boom) {
		t.Fatalf("Err() = %v, want %v", c.Err(), boom)
	}
	if c.Next(ctx) {
		t.Fatal("cursor must not resume after an error")
	}
	if calls != 2 {
		t.Errorf("fetches = %d, want 2", calls)
	}
}
