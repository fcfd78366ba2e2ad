package integrations

import (
	"net/url"

	"github.com/nsanches/depcheck/pkg/httputil"
)

// retryable wraps err so that [httputil.Retry] treats it as transient.
func retryable(err error) error {
	return &httputil.RetryableError{Err: err}
}

// EncodeQuery builds a URL query string from key/value pairs, percent-encoding
// the values. Pairs must have even length; a trailing odd key is ignored.
func EncodeQuery(pairs ...string) string {
	q := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		q.Set(pairs[i], pairs[i+1])
	}
	return q.Encode()
}
