// Package metrics exposes client-side counters for uploads, ledger RPC calls
// and submitted transactions.
package metrics

import "time"

// Provider records client activity. Implementations must be safe for
// concurrent use; uploads and object resolution report from goroutines.
type Provider interface {
	IncrementUploads(backend string, success bool)
	IncrementRPCCalls(method string, success bool)
	RecordRPCDuration(method string, duration time.Duration)
	IncrementTransactions(kind string, success bool)
	IncrementSkippedPosts()
	IncrementCacheHits()
	IncrementCacheMisses()
}

// Noop discards everything.
type Noop struct{}

func (Noop) IncrementUploads(string, bool)           {}
func (Noop) IncrementRPCCalls(string, bool)          {}
func (Noop) RecordRPCDuration(string, time.Duration) {}
func (Noop) IncrementTransactions(string, bool)      {}
func (Noop) IncrementSkippedPosts()                  {}
func (Noop) IncrementCacheHits()                     {}
func (Noop) IncrementCacheMisses()                   {}
