// Package http builds the HTTP clients used to talk to the portal server.
package http

import (
	"crypto/tls"
	"net"
	nethttp "net/http"
	"time"

	"golang.org/x/net/http2"

	"github.com/ambercrest/portal-fm/internal/constants"
)

// NewAPIClient creates the client for ordinary JSON API calls.
// Proxy settings come from the environment (HTTP_PROXY, HTTPS_PROXY, NO_PROXY).
func NewAPIClient() *nethttp.Client {
	return &nethttp.Client{
		Transport: newTransport(),
		Timeout:   constants.APIRequestTimeout,
	}
}

// NewChunkClient creates the client for chunk and single-shot upload requests.
// Chunk payloads are large relative to typical JSON bodies, so this client
// carries a much longer timeout than the API client.
func NewChunkClient() *nethttp.Client {
	return &nethttp.Client{
		Transport: newTransport(),
		Timeout:   constants.ChunkRequestTimeout,
	}
}

// newTransport builds a tuned transport shared by both client kinds.
func newTransport() *nethttp.Transport {
	tr := &nethttp.Transport{
		Proxy: nethttp.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   constants.HTTPDialTimeout,
			KeepAlive: constants.HTTPDialKeepAlive,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		MaxIdleConns:          64,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       constants.HTTPIdleConnTimeout,
		TLSHandshakeTimeout:   constants.HTTPTLSHandshakeTimeout,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	_ = http2.ConfigureTransport(tr)

	return tr
}
