// Package media is the image-generation capability client.
package media

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

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultSize    = "1024x1024"
)

// Request describes one generation call.
type Request struct {
	Prompt string
	Size   string // e.g. "1024x1024"; empty means client default
	Count  int    // output count; values below 1 become 1
}

// Response carries the generated output URLs, first one canonical.
type Response struct {
	URLs []string
}

// Client calls the media capability over HTTP.
type Client struct {
	apiKey      string
	baseURL     string
	httpClient  *http.Client
	defaultSize string
}

// Options tune client defaults.
type Options struct {
	BaseURL   string
	TimeoutMS int
	Size      string
}

// NewClient builds a media client. A missing key surfaces at call time.
func NewClient(apiKey string, opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := 30 * time.Second
	if opts.TimeoutMS > 0 {
		timeout = time.Duration(opts.TimeoutMS) * time.Millisecond
	}
	size := opts.Size
	if size == "" {
		size = defaultSize
	}
	return &Client{
		apiKey:      apiKey,
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: timeout},
		defaultSize: size,
	}
}

type generateRequest struct {
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type generateResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate runs one generation call and returns every output URL the
// provider handed back. An empty URL list is a valid response; callers
// decide how to treat it.
func (c *Client) Generate(ctx context.Context, req Request) (*Response, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, errors.NewInvalidRequest("prompt is required")
	}
	if c.apiKey == "" {
		return nil, errors.NewMissingCredential("media API key")
	}

	size := req.Size
	if size == "" {
		size = c.defaultSize
	}
	count := req.Count
	if count < 1 {
		count = 1
	}

	body, err := json.Marshal(generateRequest{Prompt: prompt, N: count, Size: size})
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/images/generations", bytes.NewReader(body))
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

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, errors.NewBadPayload(err)
	}
	if parsed.Error != nil {
		return nil, errors.NewProvider(parsed.Error.Message)
	}

	urls := make([]string, 0, len(parsed.Data))
	for _, d := range parsed.Data {
		if u := strings.TrimSpace(d.URL); u != "" {
			urls = append(urls, u)
		}
	}
	return &Response{URLs: urls}, nil
}
