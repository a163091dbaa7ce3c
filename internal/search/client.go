// Package search is the evidence-lookup capability client. It wraps the
// Perplexity search API behind a small typed request/response surface so
// callers never see raw HTTP.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hpungsan/studio/internal/errors"
	"github.com/hpungsan/studio/internal/extract"
)

const defaultBaseURL = "https://api.perplexity.ai"

// Request bounds per the capability contract. Out-of-range values are
// clamped, not rejected.
const (
	MinResults = 1
	MaxResults = 20

	MinTokensPerPage = 128
	MaxTokensPerPage = 4096

	MaxDomainFilters = 20
)

// Request describes one evidence lookup. Queries run as a single batched
// call; results come back one list per query, in input order.
type Request struct {
	Queries          []string
	MaxResults       int    // clamped to [1,20]; 0 means default
	MaxTokensPerPage int    // clamped to [128,4096]; 0 means default
	Country          string // optional ISO country code
	DomainFilter     []string
}

// Result is one evidence hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Date    string `json:"date,omitempty"`
}

// Client calls the search capability over HTTP.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client

	defaultMaxResults       int
	defaultMaxTokensPerPage int
}

// Options tune client defaults. Zero values fall back to contract defaults.
type Options struct {
	BaseURL          string
	TimeoutMS        int
	MaxResults       int
	MaxTokensPerPage int
}

// NewClient builds a search client. The API key may be empty; the
// missing-credential failure is reported at call time so construction
// never fails.
func NewClient(apiKey string, opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := 30 * time.Second
	if opts.TimeoutMS > 0 {
		timeout = time.Duration(opts.TimeoutMS) * time.Millisecond
	}
	maxResults := opts.MaxResults
	if maxResults == 0 {
		maxResults = 5
	}
	maxTokens := opts.MaxTokensPerPage
	if maxTokens == 0 {
		maxTokens = 1024
	}
	return &Client{
		apiKey:                  apiKey,
		baseURL:                 baseURL,
		httpClient:              &http.Client{Timeout: timeout},
		defaultMaxResults:       maxResults,
		defaultMaxTokensPerPage: maxTokens,
	}
}

type searchRequest struct {
	Query              any      `json:"query"`
	MaxResults         int      `json:"max_results"`
	MaxTokensPerPage   int      `json:"max_tokens_per_page"`
	Country            string   `json:"country,omitempty"`
	SearchDomainFilter []string `json:"search_domain_filter,omitempty"`
}

type searchResponse struct {
	Results json.RawMessage `json:"results"`
}

type wireResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Snippet     string `json:"snippet"`
	Date        string `json:"date"`
	LastUpdated string `json:"last_updated"`
}

// Search runs the batched lookup. The returned slice has one entry per
// input query, in input order; an entry may be empty when that query
// produced no hits.
func (c *Client) Search(ctx context.Context, req Request) ([][]Result, error) {
	queries := make([]string, 0, len(req.Queries))
	for _, q := range req.Queries {
		if q = strings.TrimSpace(q); q != "" {
			queries = append(queries, q)
		}
	}
	if len(queries) == 0 {
		return nil, errors.NewInvalidRequest("at least one non-empty query is required")
	}
	if c.apiKey == "" {
		return nil, errors.NewMissingCredential("search API key")
	}

	maxResults := clamp(req.MaxResults, c.defaultMaxResults, MinResults, MaxResults)
	maxTokens := clamp(req.MaxTokensPerPage, c.defaultMaxTokensPerPage, MinTokensPerPage, MaxTokensPerPage)

	domains := req.DomainFilter
	if len(domains) > MaxDomainFilters {
		domains = domains[:MaxDomainFilters]
	}

	// Single query goes over the wire as a bare string, multi as a list.
	var query any = queries[0]
	if len(queries) > 1 {
		query = queries
	}

	body, err := json.Marshal(searchRequest{
		Query:              query,
		MaxResults:         maxResults,
		MaxTokensPerPage:   maxTokens,
		Country:            strings.TrimSpace(req.Country),
		SearchDomainFilter: domains,
	})
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.NewTransport(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewTransport(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.NewUpstreamStatus(resp.StatusCode, extract.Truncate(strings.TrimSpace(string(respBody)), 500))
	}

	var parsed searchResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, errors.NewBadPayload(err)
	}

	perQuery, err := decodeResults(parsed.Results, len(queries))
	if err != nil {
		return nil, err
	}
	return perQuery, nil
}

// decodeResults accepts either a flat result list (single query) or a
// list of lists (batched queries) and always hands back one list per
// query.
func decodeResults(raw json.RawMessage, queryCount int) ([][]Result, error) {
	if len(raw) == 0 {
		return make([][]Result, queryCount), nil
	}

	var nested [][]wireResult
	if err := json.Unmarshal(raw, &nested); err == nil {
		out := make([][]Result, queryCount)
		for i := range out {
			if i < len(nested) {
				out[i] = convertResults(nested[i])
			}
		}
		return out, nil
	}

	var flat []wireResult
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, errors.NewBadPayload(err)
	}
	out := make([][]Result, queryCount)
	out[0] = convertResults(flat)
	return out, nil
}

func convertResults(in []wireResult) []Result {
	out := make([]Result, 0, len(in))
	for _, r := range in {
		date := r.Date
		if date == "" {
			date = r.LastUpdated
		}
		out = append(out, Result{
			Title:   strings.TrimSpace(r.Title),
			URL:     strings.TrimSpace(r.URL),
			Snippet: strings.TrimSpace(r.Snippet),
			Date:    date,
		})
	}
	return out
}

func clamp(v, def, min, max int) int {
	if v == 0 {
		v = def
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
