package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/jhyland87/chem-crawler/pkg/errors"
)

// RequestKey identifies an outbound HTTP request for caching.  Hash is
// deterministic over the method, URL, sorted query parameters, and body, so
// two semantically identical requests collide regardless of parameter order.
type RequestKey struct {
	Hash string
	File string
	URL  string
}

// KeyForRequest derives a RequestKey from an outbound request.  When the
// request carries a body it is read and restored, leaving the request
// sendable.
func KeyForRequest(req *http.Request) (RequestKey, error) {
	var body []byte
	if req.Body != nil && req.Body != http.NoBody {
		var err error
		body, err = io.ReadAll(req.Body)
		if err != nil {
			return RequestKey{}, errors.Wrap(err, errors.CodeInternal, "failed to read request body")
		}
		req.Body = io.NopCloser(bytes.NewReader(body))
	}

	q := req.URL.Query()
	params := make([]string, 0, len(q))
	for k, vs := range q {
		for _, v := range vs {
			params = append(params, k+"="+v)
		}
	}
	sort.Strings(params)

	base := req.URL.Scheme + "://" + req.URL.Host + req.URL.Path

	h := sha256.New()
	io.WriteString(h, req.Method)
	io.WriteString(h, "\n")
	io.WriteString(h, base)
	io.WriteString(h, "\n")
	io.WriteString(h, strings.Join(params, "&"))
	io.WriteString(h, "\n")
	h.Write(body)
	sum := hex.EncodeToString(h.Sum(nil))

	return RequestKey{
		Hash: sum,
		File: sum + ".json",
		URL:  req.URL.String(),
	}, nil
}
