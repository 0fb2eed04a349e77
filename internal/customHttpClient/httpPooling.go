package customHttpClient

import (
	"net/http"
	"sync"
	"time"

	"github.com/akolanti/PdfQA/internal/config"
)

var (
	once            sync.Once
	customTransport *http.Transport
)

func transport() *http.Transport {
	once.Do(func() {
		customTransport = http.DefaultTransport.(*http.Transport).Clone()
		customTransport.MaxIdleConns = config.MaxIdleConns
		customTransport.MaxIdleConnsPerHost = config.MaxIdleConnsPerHost
		customTransport.IdleConnTimeout = config.IdleConnTimeout
	})
	return customTransport
}

// New returns a client on the shared pooled transport, so the embedding and
// model SDKs reuse connections across requests. Deadlines come from the
// request context; timeout is a backstop.
func New(timeout time.Duration) *http.Client {
	return &http.Client{Transport: transport(), Timeout: timeout}
}
