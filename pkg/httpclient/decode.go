package httpclient

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// AcceptEncoding is what a desktop browser advertises. Setting it by hand
// disables net/http's transparent gzip handling, so Fetch decodes instead.
const AcceptEncoding = "gzip, deflate, br, zstd"

// DefaultMaxBody caps how much of a response Fetch will hold in memory.
const DefaultMaxBody = 8 << 20

// readBody reads and closes resp.Body, undoing any Content-Encoding and
// truncating the decoded payload at limit bytes (DefaultMaxBody if limit <= 0).
func readBody(resp *http.Response, limit int64) ([]byte, error) {
	defer resp.Body.Close()
	if limit <= 0 {
		limit = DefaultMaxBody
	}

	r, closeFn, err := decoder(resp.Header.Get("Content-Encoding"), resp.Body)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	body, err := io.ReadAll(io.LimitReader(r, limit))
	if err != nil {
		return body, fmt.Errorf("httpclient: read body: %w", err)
	}
	return body, nil
}

func decoder(encoding string, body io.Reader) (io.Reader, func(), error) {
	noop := func() {}
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "identity":
		return body, noop, nil
	case "br":
		return brotli.NewReader(body), noop, nil
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(body)
		if err != nil {
			return nil, noop, fmt.Errorf("httpclient: gzip: %w", err)
		}
		return zr, func() { _ = zr.Close() }, nil
	case "deflate":
		// HTTP deflate is zlib-wrapped.
		zr, err := zlib.NewReader(body)
		if err != nil {
			return nil, noop, fmt.Errorf("httpclient: deflate: %w", err)
		}
		return zr, func() { _ = zr.Close() }, nil
	case "zstd":
		zr, err := zstd.NewReader(body)
		if err != nil {
			return nil, noop, fmt.Errorf("httpclient: zstd: %w", err)
		}
		return zr, zr.Close, nil
	default:
		return nil, noop, fmt.Errorf("httpclient: unsupported content encoding %q", encoding)
	}
}
