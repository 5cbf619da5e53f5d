package services

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/suiblog/internal/blob"
	"github.com/dmitrijs2005/suiblog/internal/chain"
	"github.com/dmitrijs2005/suiblog/internal/client/models"
	"github.com/dmitrijs2005/suiblog/internal/logging"
	"github.com/dmitrijs2005/suiblog/internal/metrics"
	"github.com/dmitrijs2005/suiblog/internal/txb"
	"github.com/sourcegraph/conc/pool"
)

// resolveConcurrency bounds the getObject calls issued for one event page.
const resolveConcurrency = 8

const ownedPageLimit = 50

// PostBatch is one page of the PostCreated event stream, resolved to posts.
type PostBatch struct {
	Posts []*models.Post
	// Events is how many events the page held, resolvable or not.
	Events     int
	NextCursor *chain.EventID
	HasNext    bool
}

type PostService interface {
	// ListPosts reads one page of PostCreated events, newest first, and
	// resolves each to its post. Posts that fail to load are dropped.
	ListPosts(ctx context.Context, cursor *chain.EventID, limit int) (*PostBatch, error)
	GetPost(ctx context.Context, id string) (*models.Post, error)
	// ResolveContent returns the Markdown body of p, fetching it from blob
	// storage when the post only holds a reference.
	ResolveContent(ctx context.Context, p *models.Post) (string, error)
	OwnedPosts(ctx context.Context, owner string) ([]*models.Post, error)
	FetchAsset(ctx context.Context, a models.Asset) ([]byte, error)
}

type postService struct {
	reader  chain.Reader
	blobs   blob.Fetcher
	blog    *txb.Blog
	metrics metrics.Provider
	log     logging.Logger
}

func NewPostService(reader chain.Reader, blobs blob.Fetcher, blog *txb.Blog, m metrics.Provider, log logging.Logger) PostService {
	if m == nil {
		m = metrics.Noop{}
	}
	return &postService{reader: reader, blobs: blobs, blog: blog, metrics: m, log: log.With("component", "posts")}
}

func (s *postService) ListPosts(ctx context.Context, cursor *chain.EventID, limit int) (*PostBatch, error) {
	page, err := s.reader.QueryEvents(ctx, s.blog.EventType("PostCreated"), cursor, limit, true)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}

	resolved := make([]*models.Post, len(page.Data))
	p := pool.New().WithMaxGoroutines(resolveConcurrency)
	for i, ev := range page.Data {
		p.Go(func() {
			post, err := s.resolveEvent(ctx, ev)
			if err != nil {
				s.metrics.IncrementSkippedPosts()
				s.log.Warn(ctx, "skipping post", "event", ev.ID.TxDigest, "error", err)
				return
			}
			resolved[i] = post
		})
	}
	p.Wait()

	posts := make([]*models.Post, 0, len(resolved))
	for _, post := range resolved {
		if post != nil {
			posts = append(posts, post)
		}
	}
	sortNewestFirst(posts)

	return &PostBatch{
		Posts:      posts,
		Events:     len(page.Data),
		NextCursor: page.NextCursor,
		HasNext:    page.HasNextPage && page.NextCursor != nil,
	}, nil
}

func (s *postService) resolveEvent(ctx context.Context, ev chain.Event) (*models.Post, error) {
	var payload postCreated
	if err := json.Unmarshal(ev.ParsedJSON, &payload); err != nil {
		return nil, fmt.Errorf("event payload: %w", err)
	}
	if payload.PostID == "" {
		return nil, fmt.Errorf("event payload: missing post_id")
	}
	return s.GetPost(ctx, payload.PostID)
}

func (s *postService) GetPost(ctx context.Context, id string) (*models.Post, error) {
	obj, err := s.reader.GetObject(ctx, id)
	if err != nil {
		return nil, err
	}
	return decodePost(s.blog, obj)
}

func (s *postService) ResolveContent(ctx context.Context, p *models.Post) (string, error) {
	if p.ContentType != txb.ContentWalrus {
		return p.Content, nil
	}
	if p.Content == "" {
		return "", nil
	}
	data, err := s.blobs.Fetch(ctx, p.Content)
	if err != nil {
		return "", fmt.Errorf("fetch content of %s: %w", p.ID, err)
	}
	return string(data), nil
}

func (s *postService) OwnedPosts(ctx context.Context, owner string) ([]*models.Post, error) {
	var (
		posts  []*models.Post
		cursor *string
	)
	for {
		page, err := s.reader.GetOwnedObjects(ctx, owner, s.blog.PostType(), cursor, ownedPageLimit)
		if err != nil {
			return nil, fmt.Errorf("owned objects: %w", err)
		}
		for _, r := range page.Data {
			if r.Data == nil {
				continue
			}
			post, err := decodePost(s.blog, r.Data)
			if err != nil {
				s.metrics.IncrementSkippedPosts()
				s.log.Warn(ctx, "skipping owned object", "id", r.Data.ObjectID, "error", err)
				continue
			}
			posts = append(posts, post)
		}
		if !page.HasNextPage || page.NextCursor == nil {
			break
		}
		cursor = page.NextCursor
	}

	sortNewestFirst(posts)
	return posts, nil
}

func (s *postService) FetchAsset(ctx context.Context, a models.Asset) ([]byte, error) {
	data, err := s.blobs.Fetch(ctx, a.Hash)
	if err != nil {
		return nil, fmt.Errorf("fetch asset %q: %w", a.Name, err)
	}
	return data, nil
}

func sortNewestFirst(posts []*models.Post) {
	slices.SortStableFunc(posts, func(a, b *models.Post) int {
		return cmp.Compare(b.CreatedAt, a.CreatedAt)
	})
}
