package customHttpClient

import (
	"net/http"
	"time"

	"github.com/akolanti/docqa/internal/config"
)

// one transport shared by the embedding and llm clients so they reuse connections
var customTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

// New returns a client on the pooled transport. A zero timeout leaves the provider default in place.
func New(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: customTransport,
		Timeout:   timeout,
	}
}
