package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type PrometheusProvider struct {
	registry *prometheus.Registry

	uploads      *prometheus.CounterVec
	rpcCalls     *prometheus.CounterVec
	rpcDuration  *prometheus.HistogramVec
	transactions *prometheus.CounterVec
	skipped      prometheus.Counter
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
}

// NewPrometheusProvider registers the suiblog collectors on a fresh registry
// so several providers can coexist in one process (tests do).
func NewPrometheusProvider() *PrometheusProvider {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &PrometheusProvider{
		registry: reg,
		uploads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "suiblog_blob_uploads_total",
			Help: "Total number of blob uploads attempted",
		}, []string{"backend", "success"}),
		rpcCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "suiblog_rpc_calls_total",
			Help: "Total number of ledger JSON-RPC calls",
		}, []string{"method", "success"}),
		rpcDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "suiblog_rpc_call_duration_seconds",
			Help:    "Duration of ledger JSON-RPC calls in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		transactions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "suiblog_transactions_total",
			Help: "Total number of transactions submitted through the wallet",
		}, []string{"kind", "success"}),
		skipped: f.NewCounter(prometheus.CounterOpts{
			Name: "suiblog_skipped_posts_total",
			Help: "Events whose post object could not be resolved or decoded",
		}),
		cacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: "suiblog_object_cache_hits_total",
			Help: "Total number of object cache hits",
		}),
		cacheMisses: f.NewCounter(prometheus.CounterOpts{
			Name: "suiblog_object_cache_misses_total",
			Help: "Total number of object cache misses",
		}),
	}
}

func (p *PrometheusProvider) IncrementUploads(backend string, success bool) {
	p.uploads.WithLabelValues(backend, strconv.FormatBool(success)).Inc()
}

func (p *PrometheusProvider) IncrementRPCCalls(method string, success bool) {
	p.rpcCalls.WithLabelValues(method, strconv.FormatBool(success)).Inc()
}

func (p *PrometheusProvider) RecordRPCDuration(method string, duration time.Duration) {
	p.rpcDuration.WithLabelValues(method).Observe(duration.Seconds())
}

func (p *PrometheusProvider) IncrementTransactions(kind string, success bool) {
	p.transactions.WithLabelValues(kind, strconv.FormatBool(success)).Inc()
}

func (p *PrometheusProvider) IncrementSkippedPosts() { p.skipped.Inc() }

func (p *PrometheusProvider) IncrementCacheHits() { p.cacheHits.Inc() }

func (p *PrometheusProvider) IncrementCacheMisses() { p.cacheMisses.Inc() }

// Handler serves the provider's registry in the Prometheus text format.
func (p *PrometheusProvider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (p *PrometheusProvider) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", p.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
