package services

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/dmitrijs2005/suiblog/internal/chain"
	"github.com/dmitrijs2005/suiblog/internal/client/models"
	"github.com/dmitrijs2005/suiblog/internal/common"
)

type FeedState int32

const (
	FeedIdle FeedState = iota
	FeedLoading
	FeedLoaded
	FeedFailed
)

func (s FeedState) String() string {
	switch s {
	case FeedIdle:
		return "idle"
	case FeedLoading:
		return "loading"
	case FeedLoaded:
		return "loaded"
	case FeedFailed:
		return "failed"
	default:
		return fmt.Sprintf("FeedState(%d)", int32(s))
	}
}

// Feed pages through the post stream. The event query only pages forward,
// so the feed remembers, for every page it has seen, the cursor that
// produces it; revisiting a page replays that cursor.
//
// Only one fetch runs at a time. A fetch issued while another is loading
// fails with common.ErrFetchInFlight and changes nothing.
type Feed struct {
	posts    PostService
	pageSize int

	state atomic.Int32

	// cursors[n] produces page n; page 1 starts at the head (nil).
	cursors  map[int]*chain.EventID
	current  *models.Page
	furthest int
	// furthestEvents and furthestHasNext describe the deepest page seen.
	furthestEvents  int
	furthestHasNext bool
	lastErr         error
}

func NewFeed(posts PostService, pageSize int) *Feed {
	return &Feed{
		posts:    posts,
		pageSize: pageSize,
		cursors:  map[int]*chain.EventID{1: nil},
	}
}

func (f *Feed) State() FeedState { return FeedState(f.state.Load()) }

// Current is the last page loaded successfully, or nil.
func (f *Feed) Current() *models.Page { return f.current }

// Err is the error of the last failed fetch.
func (f *Feed) Err() error { return f.lastErr }

// Refresh forgets every recorded cursor and reloads the first page.
func (f *Feed) Refresh(ctx context.Context) (*models.Page, error) {
	return f.fetch(ctx, 1, true)
}

// Reset drops the loaded page so the next listing reloads from the start.
// Recorded cursors are kept until that reload succeeds.
func (f *Feed) Reset() {
	if f.State() != FeedLoading {
		f.current = nil
	}
}

// GoToPage loads page n. Only page 1, pages already seen and the page right
// after the furthest one seen are reachable.
func (f *Feed) GoToPage(ctx context.Context, n int) (*models.Page, error) {
	return f.fetch(ctx, n, false)
}

func (f *Feed) Next(ctx context.Context) (*models.Page, error) {
	if f.current == nil {
		return f.GoToPage(ctx, 1)
	}
	if !f.current.HasNext {
		return nil, &common.ValidationError{Field: "page", Reason: "already on the last page"}
	}
	return f.GoToPage(ctx, f.current.Number+1)
}

func (f *Feed) Prev(ctx context.Context) (*models.Page, error) {
	if f.current == nil || f.current.Number <= 1 {
		return nil, &common.ValidationError{Field: "page", Reason: "already on the first page"}
	}
	return f.GoToPage(ctx, f.current.Number-1)
}

func (f *Feed) fetch(ctx context.Context, n int, reset bool) (*models.Page, error) {
	if n < 1 {
		return nil, &common.ValidationError{Field: "page", Reason: "page numbers start at 1"}
	}

	prev := f.state.Load()
	if prev == int32(FeedLoading) || !f.state.CompareAndSwap(prev, int32(FeedLoading)) {
		return nil, common.ErrFetchInFlight
	}

	cursors := f.cursors
	if reset {
		// the old cursors stay valid until the reload succeeds
		cursors = map[int]*chain.EventID{1: nil}
	}

	cursor, ok := cursors[n]
	if !ok {
		f.state.Store(prev)
		return nil, &common.ValidationError{Field: "page", Reason: fmt.Sprintf("page %d has not been reached yet", n)}
	}

	batch, err := f.posts.ListPosts(ctx, cursor, f.pageSize)
	if err != nil {
		f.lastErr = err
		f.state.Store(int32(FeedFailed))
		return nil, err
	}

	if reset {
		f.cursors = cursors
		f.furthest, f.furthestEvents, f.furthestHasNext = 0, 0, false
	}
	if batch.HasNext {
		f.cursors[n+1] = batch.NextCursor
	} else {
		delete(f.cursors, n+1)
	}
	if n >= f.furthest {
		f.furthest = n
		f.furthestEvents = batch.Events
		f.furthestHasNext = batch.HasNext
	}

	f.current = &models.Page{Number: n, Posts: batch.Posts, HasNext: batch.HasNext}
	f.lastErr = nil
	f.state.Store(int32(FeedLoaded))
	return f.current, nil
}

// Estimate returns the number of posts in the stream as far as the feed can
// tell. While pages remain beyond the furthest one seen it counts one more
// full page; otherwise the count is exact.
func (f *Feed) Estimate() (total int, exact bool) {
	if f.furthest == 0 {
		return 0, false
	}
	if f.furthestHasNext {
		return f.pageSize*f.furthest + f.pageSize, false
	}
	return f.pageSize*(f.furthest-1) + f.furthestEvents, true
}

// Pages is the page count matching Estimate.
func (f *Feed) Pages() int {
	total, _ := f.Estimate()
	if f.pageSize <= 0 {
		return f.furthest
	}
	return max(f.furthest, (total+f.pageSize-1)/f.pageSize)
}
