// Package chain reads blog objects and events from a Sui full node over
// JSON-RPC.
package chain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/suiblog/internal/common"
	"github.com/dmitrijs2005/suiblog/internal/logging"
	"github.com/dmitrijs2005/suiblog/internal/metrics"
	"github.com/dmitrijs2005/suiblog/internal/netx"
	"github.com/sethvargo/go-retry"
	"github.com/ybbus/jsonrpc/v3"
)

const (
	methodGetObject       = "sui_getObject"
	methodQueryEvents     = "suix_queryEvents"
	methodGetOwnedObjects = "suix_getOwnedObjects"
)

// Reader is the subset of the ledger API the blog client needs.
type Reader interface {
	// GetObject returns the object with its type and parsed content.
	// A missing or deleted object yields *common.NotFoundError.
	GetObject(ctx context.Context, id string) (*ObjectData, error)
	// QueryEvents pages through events of the given Move event type.
	QueryEvents(ctx context.Context, eventType string, cursor *EventID, limit int, descending bool) (*EventPage, error)
	// GetOwnedObjects pages through objects of structType owned by owner.
	GetOwnedObjects(ctx context.Context, owner, structType string, cursor *string, limit int) (*ObjectPage, error)
}

type Client struct {
	rpc     jsonrpc.RPCClient
	retry   netx.RetryPolicy
	metrics metrics.Provider
	log     logging.Logger
}

func NewClient(endpoint string, httpClient *http.Client, policy netx.RetryPolicy,
	m metrics.Provider, log logging.Logger) *Client {

	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if m == nil {
		m = metrics.Noop{}
	}
	rpc := jsonrpc.NewClientWithOpts(endpoint, &jsonrpc.RPCClientOpts{
		HTTPClient:         httpClient,
		AllowUnknownFields: true,
		CustomHeaders:      map[string]string{"Client-Sdk-Type": "suiblog"},
	})
	return &Client{rpc: rpc, retry: policy, metrics: m, log: log.With("component", "rpc")}
}

// call runs method with retries on transport errors and 429/5xx answers.
// JSON-RPC level errors are final.
func (c *Client) call(ctx context.Context, out any, method string, params ...any) error {
	start := time.Now()
	attempt := 0

	err := retry.Do(ctx, c.retry.Backoff(), func(ctx context.Context) error {
		attempt++
		resp, err := c.rpc.Call(ctx, method, params...)
		if err != nil {
			var herr *jsonrpc.HTTPError
			if errors.As(err, &herr) && !netx.Retryable(herr.Code) {
				return err
			}
			if ctx.Err() != nil {
				return err
			}
			c.log.Warn(ctx, "rpc attempt failed", "method", method, "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		if resp.Error != nil {
			return resp.Error
		}
		return resp.GetObject(out)
	})

	c.metrics.RecordRPCDuration(method, time.Since(start))
	c.metrics.IncrementRPCCalls(method, err == nil)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

type objectOptions struct {
	ShowType    bool `json:"showType"`
	ShowContent bool `json:"showContent"`
	ShowOwner   bool `json:"showOwner,omitempty"`
}

func (c *Client) GetObject(ctx context.Context, id string) (*ObjectData, error) {
	var resp ObjectResponse
	if err := c.call(ctx, &resp, methodGetObject, id, objectOptions{ShowType: true, ShowContent: true}); err != nil {
		return nil, err
	}
	if resp.Error != nil || resp.Data == nil {
		return nil, &common.NotFoundError{ID: id}
	}
	return resp.Data, nil
}

type eventFilter struct {
	MoveEventType string `json:"MoveEventType"`
}

func (c *Client) QueryEvents(ctx context.Context, eventType string, cursor *EventID, limit int, descending bool) (*EventPage, error) {
	var page EventPage
	if err := c.call(ctx, &page, methodQueryEvents, eventFilter{MoveEventType: eventType}, cursor, limit, descending); err != nil {
		return nil, err
	}
	return &page, nil
}

type ownedObjectsQuery struct {
	Filter  map[string]string `json:"filter"`
	Options objectOptions     `json:"options"`
}

func (c *Client) GetOwnedObjects(ctx context.Context, owner, structType string, cursor *string, limit int) (*ObjectPage, error) {
	q := ownedObjectsQuery{
		Filter:  map[string]string{"StructType": structType},
		Options: objectOptions{ShowType: true, ShowContent: true},
	}

	var page ObjectPage
	if err := c.call(ctx, &page, methodGetOwnedObjects, owner, q, cursor, limit); err != nil {
		return nil, err
	}
	return &page, nil
}
