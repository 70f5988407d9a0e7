package cache

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/jhyland87/chem-crawler/pkg/errors"
)

// CachableResponse is the serialized snapshot of an HTTP response stored
// under a RequestKey.  Snapshotting restores the response body, so the
// caller can still read it after caching.
type CachableResponse struct {
	Key        RequestKey        `json:"key"`
	StatusCode int               `json:"status_code"`
	Headers    map[string]string `json:"headers"`
	Body       []byte            `json:"body"`
	FetchedAt  time.Time         `json:"fetched_at"`
}

// SnapshotResponse captures a response for storage under key.  The body is
// drained and replaced with an equivalent reader.
func SnapshotResponse(key RequestKey, resp *http.Response) (*CachableResponse, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to read response body")
	}
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}

	return &CachableResponse{
		Key:        key,
		StatusCode: resp.StatusCode,
		Headers:    headers,
		Body:       body,
		FetchedAt:  time.Now().UTC(),
	}, nil
}
