package chain

import (
	"context"
	"time"

	"github.com/dmitrijs2005/suiblog/internal/metrics"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CachedReader keeps recent GetObject results for a short time. Events and
// owned-object pages always go to the node.
type CachedReader struct {
	Reader
	objects *expirable.LRU[string, *ObjectData]
	metrics metrics.Provider
}

func NewCachedReader(r Reader, size int, ttl time.Duration, m metrics.Provider) *CachedReader {
	if m == nil {
		m = metrics.Noop{}
	}
	return &CachedReader{
		Reader:  r,
		objects: expirable.NewLRU[string, *ObjectData](size, nil, ttl),
		metrics: m,
	}
}

func (c *CachedReader) GetObject(ctx context.Context, id string) (*ObjectData, error) {
	if obj, ok := c.objects.Get(id); ok {
		c.metrics.IncrementCacheHits()
		return obj, nil
	}
	c.metrics.IncrementCacheMisses()

	obj, err := c.Reader.GetObject(ctx, id)
	if err != nil {
		return nil, err
	}
	c.objects.Add(id, obj)
	return obj, nil
}

// Invalidate drops id so the next read sees this client's own writes.
func (c *CachedReader) Invalidate(id string) {
	c.objects.Remove(id)
}
