// Package fetch resolves an input reference into document bytes;
// it reads standard input, local files and http(s) URLs.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// Size limits to prevent memory overload
const (
	MaxFileSizeBytes = 50 * 1024 * 1024  // 50MB limit for files and stdin
	MaxHTTPSizeBytes = 100 * 1024 * 1024 // 100MB limit for HTTP content (may not have Content-Length)
)

// HTTPRequestTimeout bounds a whole URL fetch.
const HTTPRequestTimeout = 30 * time.Second

// specific timeout thresholds (based on HTTPRequestTimeout)
var (
	HTTPDialTimeout           = HTTPRequestTimeout / 6 // ~17%, max time to wait for network connection
	HTTPTLSTimeout            = HTTPRequestTimeout / 6 // ~17%, max time to wait for TLS handshake
	HTTPResponseHeaderTimeout = HTTPRequestTimeout / 2 // 50%, max time for response headers
)

// Errors returned by Load. Both are wrapped with the reference that failed,
// so callers test them with errors.Is.
var (
	// ErrNotFound means the reference does not name an existing input.
	ErrNotFound = errors.New("input not found")
	// ErrRead means the input exists but could not be read in full.
	ErrRead = errors.New("input unreadable")
)

// Document is the raw content behind an input reference.
type Document struct {
	Ref         string // reference as given by the caller
	Body        []byte
	ContentType string // Content-Type header for URLs, empty otherwise
}

// stdin is swapped in tests.
var stdin io.Reader = os.Stdin

// httpClient is a shared HTTP client with timeouts to prevent indefinite hangs.
// safe for concurrent use across goroutines.
var httpClient = &http.Client{
	Timeout: HTTPRequestTimeout,
	Transport: &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: HTTPDialTimeout,
		}).DialContext,
		TLSHandshakeTimeout:   HTTPTLSTimeout,
		ResponseHeaderTimeout: HTTPResponseHeaderTimeout,
		DisableKeepAlives:     true,
	},
}

// Load reads the input named by ref:
//   - "-" reads standard input
//   - references starting with "http://" or "https://" are fetched via HTTP
//   - everything else is treated as a local file path
//
// ctx allows cancellation of URL fetches.
func Load(ctx context.Context, ref string) (*Document, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("empty input reference: %w", ErrNotFound)
	}

	var (
		doc *Document
		err error
	)
	switch {
	case ref == "-":
		doc, err = readAll(ref, stdin, MaxFileSizeBytes)
	case strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://"):
		doc, err = fetchURL(ctx, ref)
	default:
		doc, err = readFile(ref)
	}
	if err != nil {
		return nil, err
	}

	slog.Debug("Input loaded", "ref", ref, "bytes", len(doc.Body), "contentType", doc.ContentType)
	return doc, nil
}

// fetchURL retrieves content from an HTTP or HTTPS URL.
func fetchURL(ctx context.Context, url string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", url, ErrNotFound)
	}
	req.Header.Set("User-Agent", "wordsift/0.1")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL %q: %w: %w", url, ErrRead, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, fmt.Errorf("URL %q: status %s: %w", url, resp.Status, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("URL %q: status %s: %w", url, resp.Status, ErrRead)
	}

	// check content-length header if present to prevent memory overload
	if contentLength := resp.Header.Get("Content-Length"); contentLength != "" {
		if size, err := strconv.ParseInt(contentLength, 10, 64); err == nil && size > MaxHTTPSizeBytes {
			return nil, fmt.Errorf("URL %q content too large (%d bytes > %d bytes limit): %w",
				url, size, MaxHTTPSizeBytes, ErrRead)
		}
	}

	doc, err := readAll(url, resp.Body, MaxHTTPSizeBytes)
	if err != nil {
		return nil, err
	}
	doc.ContentType = resp.Header.Get("Content-Type")
	return doc, nil
}

// readFile reads a local file after checking it exists and fits the limit.
func readFile(path string) (*Document, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("file %q does not exist: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to access file %q: %w: %w", path, ErrRead, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%q is a directory: %w", path, ErrRead)
	}
	if info.Size() > MaxFileSizeBytes {
		return nil, fmt.Errorf("file %q is too large (%d bytes > %d bytes limit): %w",
			path, info.Size(), MaxFileSizeBytes, ErrRead)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w: %w", path, ErrRead, err)
	}
	defer file.Close()

	return readAll(path, file, MaxFileSizeBytes)
}

// readAll reads r up to limit bytes, failing when the input is larger.
func readAll(ref string, r io.Reader, limit int64) (*Document, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w: %w", ref, ErrRead, err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("content from %q exceeds size limit of %d bytes: %w", ref, limit, ErrRead)
	}
	return &Document{Ref: ref, Body: body}, nil
}
