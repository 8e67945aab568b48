// Package cli provides the interactive docarchive viewer.
//
// It wires configuration, the local stores, the upstream fetcher and the
// document service, then runs a REPL over the cached archive. Typical flow:
// load the list snapshot (from cache when possible), show the first
// document, then walk with next/prev in flat or grouped mode.
//
// Key features:
//   - List documents, in list order or bucketed by series
//   - Show a document and step to its neighbours
//   - Save or pipe image payloads; prefetch a document's images
//   - Refresh the list snapshot or purge the local cache
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
