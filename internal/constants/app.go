// Package constants defines shared thresholds and timeouts for portal-fm.
package constants

import "time"

// Upload thresholds
const (
	// ChunkThreshold - files larger than this use the chunked upload session
	// protocol (5 MiB). Files at or below the threshold go through a single
	// request.
	ChunkThreshold = 5 * 1024 * 1024

	// ChunkSize - size of each chunk sent to the upload session (5 MiB,
	// same as the threshold; the portal server reassembles by index).
	ChunkSize = ChunkThreshold
)

// HTTP timeouts
const (
	// APIRequestTimeout - timeout for ordinary JSON API calls
	APIRequestTimeout = 30 * time.Second

	// ChunkRequestTimeout - timeout for a single chunk or single-shot upload
	// request. Chunk payloads are large relative to typical JSON requests,
	// so these get a generous budget.
	ChunkRequestTimeout = 5 * time.Minute

	// HTTPDialTimeout - TCP dial timeout
	HTTPDialTimeout = 10 * time.Second

	// HTTPDialKeepAlive - TCP keep-alive interval
	HTTPDialKeepAlive = 30 * time.Second

	// HTTPIdleConnTimeout - how long idle connections stay pooled
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPTLSHandshakeTimeout - TLS handshake budget
	HTTPTLSHandshakeTimeout = 15 * time.Second
)

// Retry configuration for the API client
const (
	// RetryMax - maximum transport-level retries per request
	RetryMax = 4

	// RetryWaitMin - initial backoff delay
	RetryWaitMin = 500 * time.Millisecond

	// RetryWaitMax - backoff cap
	RetryWaitMax = 10 * time.Second
)

// Tree limits
const (
	// MaxFolderDepth - upper bound on folder nesting accepted from the
	// server. Parent chains longer than this indicate a cycle or corrupt
	// data and the offending link is treated as a data-integrity error.
	MaxFolderDepth = 128
)

// UI updates
const (
	// ProgressRefreshRate - refresh interval for batch progress bars
	ProgressRefreshRate = 300 * time.Millisecond
)
