package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusProvider_Counters(t *testing.T) {
	p := NewPrometheusProvider()

	p.IncrementUploads("walrus", true)
	p.IncrementUploads("walrus", true)
	p.IncrementUploads("walrus", false)
	p.IncrementRPCCalls("sui_getObject", true)
	p.IncrementTransactions("publish", false)
	p.IncrementSkippedPosts()
	p.IncrementCacheHits()
	p.IncrementCacheMisses()
	p.IncrementCacheMisses()

	assert.Equal(t, 2.0, testutil.ToFloat64(p.uploads.WithLabelValues("walrus", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.uploads.WithLabelValues("walrus", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.rpcCalls.WithLabelValues("sui_getObject", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.transactions.WithLabelValues("publish", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.skipped))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.cacheHits))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.cacheMisses))
}

func TestPrometheusProvider_IndependentRegistries(t *testing.T) {
	a := NewPrometheusProvider()
	b := NewPrometheusProvider()

	a.IncrementSkippedPosts()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.skipped))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.skipped))
}

func TestPrometheusProvider_Handler(t *testing.T) {
	p := NewPrometheusProvider()
	p.RecordRPCDuration("suix_queryEvents", 150*time.Millisecond)

	ts := httptest.NewServer(p.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `suiblog_rpc_call_duration_seconds_count{method="suix_queryEvents"} 1`)
}

func TestNoop_SatisfiesProvider(t *testing.T) {
	var p Provider = Noop{}
	p.IncrementUploads("s3", true)
	p.RecordRPCDuration("x", time.Second)
}
