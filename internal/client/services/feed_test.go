package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/suiblog/internal/chain"
	"github.com/dmitrijs2005/suiblog/internal/client/models"
	"github.com/dmitrijs2005/suiblog/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedPosts serves pre-built batches keyed by cursor digest ("" is the head).
type scriptedPosts struct {
	PostService
	batches map[string]*PostBatch
	calls   []*chain.EventID
	err     error

	started chan struct{}
	release chan struct{}
}

func (s *scriptedPosts) ListPosts(ctx context.Context, cursor *chain.EventID, limit int) (*PostBatch, error) {
	s.calls = append(s.calls, cursor)
	if s.started != nil {
		s.started <- struct{}{}
		<-s.release
	}
	if s.err != nil {
		return nil, s.err
	}
	key := ""
	if cursor != nil {
		key = cursor.TxDigest
	}
	b, ok := s.batches[key]
	if !ok {
		return nil, errors.New("unexpected cursor " + key)
	}
	return b, nil
}

func threePages() *scriptedPosts {
	c2 := &chain.EventID{TxDigest: "c2", EventSeq: "0"}
	c3 := &chain.EventID{TxDigest: "c3", EventSeq: "0"}
	full := func(title string) []*models.Post {
		out := make([]*models.Post, 6)
		for i := range out {
			out[i] = &models.Post{Title: title}
		}
		return out
	}
	return &scriptedPosts{batches: map[string]*PostBatch{
		"":   {Posts: full("p1"), Events: 6, NextCursor: c2, HasNext: true},
		"c2": {Posts: full("p2"), Events: 6, NextCursor: c3, HasNext: true},
		"c3": {Posts: []*models.Post{{Title: "p3"}, {Title: "p3"}}, Events: 2},
	}}
}

func TestFeed_RevisitReusesRecordedCursor(t *testing.T) {
	ctx := context.Background()
	src := threePages()
	f := NewFeed(src, 6)

	_, err := f.Refresh(ctx)
	require.NoError(t, err)
	p2, err := f.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, p2.Number)

	p1, err := f.Prev(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, p1.Number)

	again, err := f.GoToPage(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, "p2", again.Posts[0].Title)

	require.Len(t, src.calls, 4)
	assert.Nil(t, src.calls[0])
	assert.Equal(t, "c2", src.calls[1].TxDigest)
	assert.Nil(t, src.calls[2])
	assert.Same(t, src.calls[1], src.calls[3])
}

func TestFeed_UnreachedPageIsRejected(t *testing.T) {
	ctx := context.Background()
	src := threePages()
	f := NewFeed(src, 6)

	_, err := f.GoToPage(ctx, 3)
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Empty(t, src.calls)
	assert.Equal(t, FeedIdle, f.State())

	_, err = f.GoToPage(ctx, 0)
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestFeed_Estimate(t *testing.T) {
	ctx := context.Background()
	f := NewFeed(threePages(), 6)

	total, exact := f.Estimate()
	assert.Zero(t, total)
	assert.False(t, exact)

	_, err := f.Refresh(ctx)
	require.NoError(t, err)
	total, exact = f.Estimate()
	assert.Equal(t, 12, total)
	assert.False(t, exact)

	_, err = f.Next(ctx)
	require.NoError(t, err)
	total, _ = f.Estimate()
	assert.Equal(t, 18, total)
	assert.Equal(t, 3, f.Pages())

	_, err = f.Next(ctx)
	require.NoError(t, err)
	total, exact = f.Estimate()
	assert.Equal(t, 14, total)
	assert.True(t, exact)
	assert.Equal(t, 3, f.Pages())

	_, err = f.Next(ctx)
	require.ErrorIs(t, err, common.ErrValidation)

	// going back does not shrink what was learned about the tail
	_, err = f.GoToPage(ctx, 1)
	require.NoError(t, err)
	total, exact = f.Estimate()
	assert.Equal(t, 14, total)
	assert.True(t, exact)
}

func TestFeed_RejectsFetchWhileLoading(t *testing.T) {
	src := threePages()
	src.started = make(chan struct{})
	src.release = make(chan struct{})
	f := NewFeed(src, 6)

	done := make(chan error, 1)
	go func() {
		_, err := f.Refresh(context.Background())
		done <- err
	}()

	select {
	case <-src.started:
	case <-time.After(2 * time.Second):
		t.Fatal("fetch did not start")
	}
	require.Equal(t, FeedLoading, f.State())

	_, err := f.GoToPage(context.Background(), 1)
	require.ErrorIs(t, err, common.ErrFetchInFlight)

	close(src.release)
	require.NoError(t, <-done)
	assert.Equal(t, FeedLoaded, f.State())
	assert.Len(t, src.calls, 1)
}

func TestFeed_FailureKeepsCurrentPage(t *testing.T) {
	ctx := context.Background()
	src := threePages()
	f := NewFeed(src, 6)

	_, err := f.Refresh(ctx)
	require.NoError(t, err)

	src.err = errors.New("node timeout")
	_, err = f.Next(ctx)
	require.ErrorContains(t, err, "node timeout")
	assert.Equal(t, FeedFailed, f.State())
	assert.Equal(t, 1, f.Current().Number)
	assert.ErrorContains(t, f.Err(), "node timeout")

	src.err = nil
	p, err := f.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Number)
	assert.NoError(t, f.Err())
}

func TestFeed_FailedRefreshKeepsCursors(t *testing.T) {
	ctx := context.Background()
	src := threePages()
	f := NewFeed(src, 6)

	_, err := f.Refresh(ctx)
	require.NoError(t, err)
	_, err = f.Next(ctx)
	require.NoError(t, err)
	total, exact := f.Estimate()

	src.err = errors.New("node timeout")
	_, err = f.Refresh(ctx)
	require.ErrorContains(t, err, "node timeout")
	assert.Equal(t, FeedFailed, f.State())
	assert.Equal(t, 2, f.Current().Number)

	gotTotal, gotExact := f.Estimate()
	assert.Equal(t, total, gotTotal)
	assert.Equal(t, exact, gotExact)

	src.err = nil
	p, err := f.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Number)

	p, err = f.Prev(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Number)
}

func TestFeed_RefreshForgetsCursors(t *testing.T) {
	ctx := context.Background()
	src := threePages()
	f := NewFeed(src, 6)

	_, err := f.Refresh(ctx)
	require.NoError(t, err)
	_, err = f.Next(ctx)
	require.NoError(t, err)

	_, err = f.Refresh(ctx)
	require.NoError(t, err)
	_, err = f.GoToPage(ctx, 3)
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestFeed_ResetReloadsFirstPage(t *testing.T) {
	ctx := context.Background()
	src := threePages()
	f := NewFeed(src, 6)

	_, err := f.Refresh(ctx)
	require.NoError(t, err)
	_, err = f.Next(ctx)
	require.NoError(t, err)

	f.Reset()
	assert.Nil(t, f.Current())

	p, err := f.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Number)
	assert.Nil(t, src.calls[len(src.calls)-1])
}

func TestFeedState_String(t *testing.T) {
	assert.Equal(t, "loading", FeedLoading.String())
	assert.Equal(t, "FeedState(9)", FeedState(9).String())
}
