package blob

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/suiblog/internal/common"
	"github.com/dmitrijs2005/suiblog/internal/logging"
	"github.com/dmitrijs2005/suiblog/internal/metrics"
	"github.com/dmitrijs2005/suiblog/internal/netx"
	"github.com/sethvargo/go-retry"
)

// Walrus talks to a Walrus publisher (writes) and aggregator (reads).
type Walrus struct {
	publisher  string
	aggregator string
	client     *http.Client
	retry      netx.RetryPolicy
	metrics    metrics.Provider
	log        logging.Logger
}

func NewWalrus(publisher, aggregator string, client *http.Client, policy netx.RetryPolicy,
	m metrics.Provider, log logging.Logger) *Walrus {

	if client == nil {
		client = http.DefaultClient
	}
	if m == nil {
		m = metrics.Noop{}
	}
	return &Walrus{
		publisher:  strings.TrimRight(publisher, "/"),
		aggregator: strings.TrimRight(aggregator, "/"),
		client:     client,
		retry:      policy,
		metrics:    m,
		log:        log.With("component", "walrus"),
	}
}

type storeResponse struct {
	NewlyCreated *struct {
		BlobObject struct {
			BlobID string `json:"blobId"`
		} `json:"blobObject"`
	} `json:"newlyCreated"`
	AlreadyCertified *struct {
		BlobID string `json:"blobId"`
	} `json:"alreadyCertified"`
}

// blobID picks the id from a publisher response: a newly created blob
// first, then an already certified one.
func blobID(body []byte) (string, error) {
	var sr storeResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return "", &common.UploadError{Body: string(body), Err: fmt.Errorf("decode publisher response: %w", err)}
	}
	if sr.NewlyCreated != nil && sr.NewlyCreated.BlobObject.BlobID != "" {
		return sr.NewlyCreated.BlobObject.BlobID, nil
	}
	if sr.AlreadyCertified != nil && sr.AlreadyCertified.BlobID != "" {
		return sr.AlreadyCertified.BlobID, nil
	}
	return "", &common.UploadError{Body: string(body)}
}

func (w *Walrus) storeURL(epochs int, recipient string) string {
	q := url.Values{}
	if recipient != "" {
		q.Set("send_object_to", recipient)
	}
	q.Set("epochs", strconv.Itoa(epochs))
	q.Set("deletable", "true")
	return w.publisher + "/v1/blobs?" + q.Encode()
}

func (w *Walrus) Upload(ctx context.Context, data []byte, epochs int, recipient string) (string, error) {
	target := w.storeURL(epochs, recipient)

	var id string
	attempt := 0
	err := retry.Do(ctx, w.retry.Backoff(), func(ctx context.Context) error {
		attempt++
		resp, err := netx.Put(ctx, w.client, target, data, "")
		if err != nil {
			if ctx.Err() != nil {
				return &common.UploadError{Err: err}
			}
			w.log.Warn(ctx, "upload attempt failed", "attempt", attempt, "error", err)
			return retry.RetryableError(&common.UploadError{Err: err})
		}
		if !resp.OK() {
			uerr := &common.UploadError{Status: resp.Status, Body: string(resp.Body)}
			if netx.Retryable(resp.Status) {
				w.log.Warn(ctx, "upload attempt rejected", "attempt", attempt, "status", resp.Status)
				return retry.RetryableError(uerr)
			}
			return uerr
		}

		id, err = blobID(resp.Body)
		return err
	})

	w.metrics.IncrementUploads("walrus", err == nil)
	if err != nil {
		return "", err
	}

	w.log.Debug(ctx, "blob stored", "blob_id", id, "size", len(data), "attempts", attempt)
	return id, nil
}

func (w *Walrus) URL(id string) string {
	return w.aggregator + "/v1/blobs/" + url.PathEscape(id)
}

// Fetch reads ref, which is either a blob id or an absolute http(s) URL.
func (w *Walrus) Fetch(ctx context.Context, ref string) ([]byte, error) {
	target := ref
	if !IsURL(ref) {
		target = w.URL(ref)
	}

	var body []byte
	err := retry.Do(ctx, w.retry.Backoff(), func(ctx context.Context) error {
		resp, err := netx.Get(ctx, w.client, target)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			return retry.RetryableError(err)
		}
		switch {
		case resp.OK():
			body = resp.Body
			return nil
		case resp.Status == http.StatusNotFound:
			return &common.NotFoundError{ID: ref}
		case netx.Retryable(resp.Status):
			return retry.RetryableError(fmt.Errorf("fetch blob %s: status %d", ref, resp.Status))
		default:
			return fmt.Errorf("fetch blob %s: status %d", ref, resp.Status)
		}
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// IsURL reports whether ref is an absolute http(s) URL rather than a blob id.
func IsURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
