package httpclient

import (
	"context"
	"net/http"
)

// Response is the slice of an HTTP response callers in this module read.
type Response interface {
	Body() []byte
	StatusCode() int
	Header() http.Header
}

// Client is the transport capability injected into services. Implementations
// must be safe for concurrent use.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}
