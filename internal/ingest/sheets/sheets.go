package sheets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL        = "https://docs.google.com/spreadsheets/d/"
	defaultSheetName      = "data"
	defaultTimeoutSeconds = 20
	defaultUserAgent      = "tradelens/0.1"
)

// FetchError is surfaced to the user when a remote sheet cannot be
// retrieved. Fetches are user-initiated and interactive; there is no retry.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("sheets: fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type Config struct {
	BaseURL   string
	SheetName string
	Timeout   time.Duration
	UserAgent string
}

type Client struct {
	config Config
	client *http.Client
}

func New(cfg Config) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if strings.TrimSpace(cfg.SheetName) == "" {
		cfg.SheetName = defaultSheetName
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeoutSeconds * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	return &Client{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// ExtractSheetID pulls the document id out of a shareable link of the form
// .../spreadsheets/d/<id>/....
func ExtractSheetID(shareURL string) (string, bool) {
	_, after, found := strings.Cut(shareURL, "/d/")
	if !found {
		return "", false
	}
	id, _, _ := strings.Cut(after, "/")
	id = strings.TrimSpace(id)
	if id == "" {
		return "", false
	}
	return id, true
}

// Fetch downloads the sheet as CSV via the gviz export endpoint. The call
// blocks until the configured timeout; failures are returned as *FetchError.
func (c *Client) Fetch(ctx context.Context, shareURL string) ([]byte, error) {
	id, ok := ExtractSheetID(shareURL)
	if !ok {
		return nil, &FetchError{URL: shareURL, Err: errors.New("not a spreadsheet share link")}
	}

	endpoint := strings.TrimRight(c.config.BaseURL, "/") + "/" + url.PathEscape(id) +
		"/gviz/tq?tqx=out:csv&sheet=" + url.QueryEscape(c.config.SheetName)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &FetchError{URL: shareURL, Err: err}
	}
	req.Header.Set("Accept", "text/csv")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: shareURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: shareURL, Err: err}
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &FetchError{URL: shareURL, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}
	return body, nil
}
