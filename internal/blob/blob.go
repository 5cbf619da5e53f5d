// Package blob stores post content and image attachments in external blob
// storage and fetches them back.
//
// Two backends are provided: Walrus (publisher PUT, aggregator GET) and an
// S3-compatible bucket keyed by content hash. Both deduplicate identical
// bytes: storing the same content twice yields the same id.
package blob

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/pool"
)

// Uploader stores bytes and derives a retrieval URL from the returned id.
type Uploader interface {
	// Upload stores data for the given number of storage epochs on behalf of
	// recipient and returns the blob id.
	Upload(ctx context.Context, data []byte, epochs int, recipient string) (string, error)
	// URL builds the retrieval URL for id without contacting the store.
	URL(id string) string
}

// Fetcher reads a blob back by id or absolute URL.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// Store is a full blob backend.
type Store interface {
	Uploader
	Fetcher
}

// Item is one file to upload.
type Item struct {
	Name string
	Data []byte
}

// Result is the outcome of a successful upload.
type Result struct {
	ID  string
	URL string
}

// UploadAll uploads items concurrently, at most limit at a time (0 means
// unbounded). A failing upload does not cancel its siblings; all of them are
// joined and the call fails if any one failed. Results keep the order of
// items.
func UploadAll(ctx context.Context, up Uploader, items []Item, epochs int, recipient string, limit int) ([]Result, error) {
	results := make([]Result, len(items))
	if len(items) == 0 {
		return results, nil
	}

	p := pool.New().WithErrors()
	if limit > 0 {
		p = p.WithMaxGoroutines(limit)
	}

	for i, it := range items {
		p.Go(func() error {
			id, err := up.Upload(ctx, it.Data, epochs, recipient)
			if err != nil {
				return fmt.Errorf("upload %q: %w", it.Name, err)
			}
			results[i] = Result{ID: id, URL: up.URL(id)}
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
