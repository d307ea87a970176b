// Package omdb searches movie titles through the OMDb API.
package omdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"moviegrip/internal/domain"
	"moviegrip/internal/httpx"
)

const (
	DefaultBaseURL       = "https://www.omdbapi.com/"
	DefaultMinTermLength = 3

	maxBodyBytes = 1 << 20
)

// Config holds what the client needs; nothing is read from globals
type Config struct {
	BaseURL       string
	APIKey        string
	MinTermLength int          // 0 means DefaultMinTermLength
	HTTPClient    *http.Client // nil means httpx.NewClient(0)
	Logger        *log.Logger  // nil means log.Default()
}

// Client performs title searches
type Client struct {
	base   *url.URL
	apiKey string
	minLen int
	http   *http.Client
	logger *log.Logger
}

// NewClient validates cfg and returns a client
func NewClient(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: must be absolute", raw)
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("api key is required")
	}

	c := &Client{
		base:   base,
		apiKey: strings.TrimSpace(cfg.APIKey),
		minLen: cfg.MinTermLength,
		http:   cfg.HTTPClient,
		logger: cfg.Logger,
	}
	if c.minLen <= 0 {
		c.minLen = DefaultMinTermLength
	}
	if c.http == nil {
		c.http = httpx.NewClient(0)
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	return c, nil
}

// MinTermLength returns the shortest term the client sends
func (c *Client) MinTermLength() int {
	return c.minLen
}

// searchResponse is the OMDb search body
type searchResponse struct {
	Response     string         `json:"Response"`
	Search       []domain.Movie `json:"Search"`
	TotalResults totalResults   `json:"totalResults"`
	Error        string         `json:"Error"`
}

// totalResults accepts both "42" and 42
type totalResults int

func (n *totalResults) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			return nil
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("totalResults: %w", err)
		}
		*n = totalResults(v)
		return nil
	}
	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = totalResults(v)
	return nil
}

// Search returns the titles matching term.
// Terms shorter than MinTermLength fail with ErrTooManyResults before any request.
func (c *Client) Search(ctx context.Context, term string) ([]domain.Movie, error) {
	if !utf8.ValidString(term) {
		return nil, ErrInvalidTerm
	}
	if utf8.RuneCountInString(term) < c.minLen {
		return nil, ErrTooManyResults
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL(term), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", c.redact(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	var body searchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	switch body.Response {
	case "True":
		c.logger.Printf("OMDb: %q matched %d titles (%d on this page)", term, body.TotalResults, len(body.Search))
		if body.Search == nil {
			return []domain.Movie{}, nil
		}
		return body.Search, nil
	case "False":
		return nil, &APIError{Message: body.Error}
	default:
		c.logger.Printf("OMDb: unexpected Response field %q for %q", body.Response, term)
		return nil, &APIError{Message: body.Error}
	}
}

func (c *Client) searchURL(term string) string {
	u := *c.base
	q := u.Query()
	q.Set("s", term)
	q.Set("apikey", c.apiKey)
	u.RawQuery = q.Encode()
	return u.String()
}

// redact keeps the API key out of transport errors, which embed the URL
func (c *Client) redact(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		ue.URL = strings.ReplaceAll(ue.URL, url.QueryEscape(c.apiKey), "REDACTED")
	}
	return err
}
