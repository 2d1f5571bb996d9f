// Package api defines the transport contract between rally and the
// booking platform API, plus the production HTTP implementation.
//
// Callers speak in route identifiers ("METHOD /path") and JSON bodies;
// the fetcher answers with either a success payload or the
// server-supplied failure message. Response headers are surfaced
// because pagination metadata (the "total" header) travels there.
//
// Retry policy is intentionally absent at this layer.
package api
