// Package client fetches documents from the upstream archive API.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface): ListDocs,
//     GetDetail and GetImage.
//  2. A concrete HTTP implementation (see HTTPClient) that rate-limits
//     outbound requests with a token bucket and decodes JSON bodies into
//     models types.
//
// # Error Handling
//
// Failures are exposed as sentinel errors that callers can match with
// errors.Is: ErrUnavailable (transport failure), ErrUnexpectedStatus
// (non-2xx response) and ErrMalformedResponse (undecodable body). All three
// also match common.ErrNetwork.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation while waiting for the limiter or
// the response.
package client
