package chain

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/suiblog/internal/common"
	"github.com/dmitrijs2005/suiblog/internal/logging"
	"github.com/dmitrijs2005/suiblog/internal/netx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcRequest struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
	ID     int               `json:"id"`
}

// rpcServer answers each JSON-RPC call with handle's result.
func rpcServer(t *testing.T, handle func(req rpcRequest) (result any, status int)) *Client {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req rpcRequest
		assert.NoError(t, json.Unmarshal(body, &req))

		result, status := handle(req)
		w.Header().Set("Content-Type", "application/json")
		if status != 0 && status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":"busy"}`))
			return
		}
		if e, ok := result.(rpcErr); ok {
			_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": req.ID, "error": e})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": result})
	}))
	t.Cleanup(ts.Close)

	return NewClient(ts.URL, ts.Client(), netx.RetryPolicy{Attempts: 3, BaseDelay: time.Millisecond}, nil, logging.Discard())
}

type rpcErr struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

const postObject = `{
  "data": {
    "objectId": "0x1",
    "version": "7",
    "digest": "D1",
    "type": "0xb10c::blog::Post",
    "content": {
      "dataType": "moveObject",
      "type": "0xb10c::blog::Post",
      "hasPublicTransfer": true,
      "fields": {"title": [72,105], "likes": "3"}
    }
  }
}`

func TestClient_GetObject(t *testing.T) {
	c := rpcServer(t, func(req rpcRequest) (any, int) {
		assert.Equal(t, "sui_getObject", req.Method)
		if !assert.Len(t, req.Params, 2) {
			return nil, http.StatusBadRequest
		}
		assert.JSONEq(t, `"0x1"`, string(req.Params[0]))
		assert.JSONEq(t, `{"showType":true,"showContent":true}`, string(req.Params[1]))
		return json.RawMessage(postObject), 0
	})

	obj, err := c.GetObject(context.Background(), "0x1")
	require.NoError(t, err)
	assert.Equal(t, "0xb10c::blog::Post", obj.Type)
	require.NotNil(t, obj.Content)
	assert.Equal(t, "moveObject", obj.Content.DataType)
	assert.JSONEq(t, `{"title":[72,105],"likes":"3"}`, string(obj.Content.Fields))
}

func TestClient_GetObject_NotExists(t *testing.T) {
	c := rpcServer(t, func(req rpcRequest) (any, int) {
		return json.RawMessage(`{"error":{"code":"notExists","object_id":"0x404"}}`), 0
	})

	_, err := c.GetObject(context.Background(), "0x404")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestClient_QueryEvents(t *testing.T) {
	c := rpcServer(t, func(req rpcRequest) (any, int) {
		assert.Equal(t, "suix_queryEvents", req.Method)
		if !assert.Len(t, req.Params, 4) {
			return nil, http.StatusBadRequest
		}
		assert.JSONEq(t, `{"MoveEventType":"0xb10c::blog::PostCreated"}`, string(req.Params[0]))
		assert.JSONEq(t, `{"txDigest":"T1","eventSeq":"0"}`, string(req.Params[1]))
		assert.JSONEq(t, `6`, string(req.Params[2]))
		assert.JSONEq(t, `true`, string(req.Params[3]))
		return json.RawMessage(`{
		  "data": [{"id":{"txDigest":"T2","eventSeq":"0"},"type":"0xb10c::blog::PostCreated",
		            "parsedJson":{"post_id":"0x1","title":"Hi"},"timestampMs":"1700000000000"}],
		  "nextCursor": {"txDigest":"T2","eventSeq":"0"},
		  "hasNextPage": true
		}`), 0
	})

	page, err := c.QueryEvents(context.Background(), "0xb10c::blog::PostCreated", &EventID{TxDigest: "T1", EventSeq: "0"}, 6, true)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.True(t, page.HasNextPage)
	assert.Equal(t, &EventID{TxDigest: "T2", EventSeq: "0"}, page.NextCursor)
	assert.EqualValues(t, 1700000000000, page.Data[0].TimestampMs)
	assert.JSONEq(t, `{"post_id":"0x1","title":"Hi"}`, string(page.Data[0].ParsedJSON))
}

func TestClient_QueryEvents_NilCursor(t *testing.T) {
	c := rpcServer(t, func(req rpcRequest) (any, int) {
		assert.JSONEq(t, `null`, string(req.Params[1]))
		return json.RawMessage(`{"data":[],"nextCursor":null,"hasNextPage":false}`), 0
	})

	page, err := c.QueryEvents(context.Background(), "x::blog::PostCreated", nil, 6, true)
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Nil(t, page.NextCursor)
}

func TestClient_GetOwnedObjects(t *testing.T) {
	c := rpcServer(t, func(req rpcRequest) (any, int) {
		assert.Equal(t, "suix_getOwnedObjects", req.Method)
		if !assert.Len(t, req.Params, 4) {
			return nil, http.StatusBadRequest
		}
		assert.JSONEq(t, `"0xa11ce"`, string(req.Params[0]))
		assert.JSONEq(t, `{"filter":{"StructType":"0xb10c::blog::Post"},"options":{"showType":true,"showContent":true}}`, string(req.Params[1]))
		return json.RawMessage(`{"data":[` + postObject + `],"nextCursor":"0x1","hasNextPage":false}`), 0
	})

	page, err := c.GetOwnedObjects(context.Background(), "0xa11ce", "0xb10c::blog::Post", nil, 50)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "0x1", page.Data[0].Data.ObjectID)
}

func TestClient_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	c := rpcServer(t, func(req rpcRequest) (any, int) {
		if calls.Add(1) < 3 {
			return nil, http.StatusTooManyRequests
		}
		return json.RawMessage(postObject), 0
	})

	_, err := c.GetObject(context.Background(), "0x1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, calls.Load())
}

func TestClient_RPCErrorIsFinal(t *testing.T) {
	var calls atomic.Int32
	c := rpcServer(t, func(req rpcRequest) (any, int) {
		calls.Add(1)
		return rpcErr{Code: -32602, Message: "Invalid params"}, 0
	})

	_, err := c.QueryEvents(context.Background(), "bad", nil, 6, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid params")
	assert.EqualValues(t, 1, calls.Load())
}

func TestClient_ClientHTTPErrorIsFinal(t *testing.T) {
	var calls atomic.Int32
	c := rpcServer(t, func(req rpcRequest) (any, int) {
		calls.Add(1)
		return nil, http.StatusForbidden
	})

	_, err := c.GetObject(context.Background(), "0x1")
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())
}
