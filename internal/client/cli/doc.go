// Package cli provides the interactive suiblog terminal client.
//
// It wires configuration, the local draft store, the ledger reader, blob
// storage and the wallet bridge behind a read-eval-print loop. A background
// watcher pings the wallet and flips the prompt between connected and
// disconnected.
//
// Key features:
//   - accounts / use: pick the signing account exposed by the wallet
//   - new / draft / attach / discard / publish: compose and publish a post;
//     the draft survives restarts until it is published or discarded
//   - list / next / prev / page / refresh: page through the post feed
//   - show / comment / like / download: read and interact with one post
//   - mine: posts owned by the selected account
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher and runREPL for details.
package cli
