package metadata

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/text/unicode/norm"
)

var (
	// ErrEmptySheet is returned when a sheet yields no usable rows
	ErrEmptySheet = errors.New("sheet returned no rows")

	// ErrSheetTooLarge is returned when a response body exceeds MaxBytes
	ErrSheetTooLarge = errors.New("sheet exceeds size limit")
)

// DefaultMaxBytes bounds a sheet download
const DefaultMaxBytes = 4 << 20

// Fetcher downloads a published spreadsheet tab as CSV. Every request
// carries a cache-busting query parameter and no-cache headers, since the
// export endpoint otherwise serves stale copies for minutes.
type Fetcher struct {
	// URL is the CSV export URL of the sheet tab
	URL string

	// Headers are sent with every request
	Headers map[string]string

	// Client is the HTTP client to use
	Client *http.Client

	// MaxBytes is the largest body Fetch will read
	MaxBytes int64

	now func() time.Time
}

// NewFetcher creates a fetcher for url with a 10 second timeout
func NewFetcher(url string) *Fetcher {
	return &Fetcher{
		URL: url,
		Headers: map[string]string{
			"Cache-Control": "no-cache, no-store, must-revalidate",
			"Pragma":        "no-cache",
			"Expires":       "0",
		},
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
		MaxBytes: DefaultMaxBytes,
		now:      time.Now,
	}
}

// WithTimeout sets the HTTP client timeout
func (f *Fetcher) WithTimeout(timeout time.Duration) *Fetcher {
	f.Client.Timeout = timeout
	return f
}

// WithMaxBytes sets the body size limit
func (f *Fetcher) WithMaxBytes(n int64) *Fetcher {
	f.MaxBytes = n
	return f
}

// WithHeader adds a custom HTTP header
func (f *Fetcher) WithHeader(key, value string) *Fetcher {
	f.Headers[key] = value
	return f
}

// Fetch downloads the sheet and returns its rows with every cell NFKC
// normalized. Rows may have different lengths.
func (f *Fetcher) Fetch(ctx context.Context) ([][]string, error) {
	target, err := f.requestURL()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range f.Headers {
		req.Header.Set(key, value)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected response: HTTP %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > f.MaxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrSheetTooLarge, f.MaxBytes)
	}

	reader := csv.NewReader(bytes.NewReader(body))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}

	for _, row := range rows {
		for i, cell := range row {
			row[i] = norm.NFKC.String(cell)
		}
	}
	return rows, nil
}

func (f *Fetcher) requestURL() (string, error) {
	u, err := url.Parse(f.URL)
	if err != nil {
		return "", fmt.Errorf("invalid sheet url: %w", err)
	}
	q := u.Query()
	q.Set("cachebust", strconv.FormatInt(f.now().UnixMilli(), 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
