// Package mem0 is a minimal client for the hosted mem0 memory API.
package mem0

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rcliao/mem0-hooks/internal/transcript"
)

// DefaultBaseURL is the hosted mem0 platform endpoint.
const DefaultBaseURL = "https://api.mem0.ai"

// ErrUnexpectedShape marks a search response that is neither an object with
// a results array nor a bare array.
var ErrUnexpectedShape = errors.New("unexpected response shape")

// Record is a stored memory returned by search, ranked by similarity.
type Record struct {
	Memory     string   `json:"memory"`
	Categories []string `json:"categories"`
	Score      float64  `json:"score"`
}

// Options configures a Client.
type Options struct {
	BaseURL   string // empty means DefaultBaseURL
	APIKey    string
	UserID    string
	TopK      int
	Threshold float64
}

// Client calls the mem0 v1 API. Errors are returned as-is; callers decide
// how to degrade.
type Client struct {
	baseURL   string
	apiKey    string
	userID    string
	topK      int
	threshold float64
	client    *http.Client
}

// NewClient creates a client for the hosted memory service.
func NewClient(opts Options) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    opts.APIKey,
		userID:    opts.UserID,
		topK:      opts.TopK,
		threshold: opts.Threshold,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type searchRequest struct {
	Query  string `json:"query"`
	UserID string `json:"user_id"`
	Limit  int    `json:"limit"`
}

// Search returns memories relevant to the query, filtered by the score
// threshold and capped at top-k.
func (c *Client) Search(ctx context.Context, query string) ([]Record, error) {
	body, _ := json.Marshal(searchRequest{Query: query, UserID: c.userID, Limit: c.topK})
	raw, err := c.post(ctx, "/v1/memories/search/", body)
	if err != nil {
		return nil, err
	}
	records, err := decodeRecords(raw)
	if err != nil {
		return nil, err
	}
	return c.rank(records), nil
}

type addRequest struct {
	Messages []transcript.Message `json:"messages"`
	UserID   string               `json:"user_id"`
}

// Add stores messages under the configured user scope. Adding nothing is a
// no-op.
func (c *Client) Add(ctx context.Context, messages []transcript.Message) error {
	if len(messages) == 0 {
		return nil
	}
	body, _ := json.Marshal(addRequest{Messages: messages, UserID: c.userID})
	_, err := c.post(ctx, "/v1/memories/", body)
	return err
}

func (c *Client) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mem0 request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("mem0 error %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}

// decodeRecords accepts both {"results": [...]} and a bare array.
func decodeRecords(raw []byte) ([]Record, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, ErrUnexpectedShape
	}
	switch trimmed[0] {
	case '{':
		var wrapped struct {
			Results []Record `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
		}
		return wrapped.Results, nil
	case '[':
		var records []Record
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
		}
		return records, nil
	}
	return nil, ErrUnexpectedShape
}

// rank drops records below the threshold and caps the rest at top-k,
// preserving the service's ordering.
func (c *Client) rank(records []Record) []Record {
	var kept []Record
	for _, r := range records {
		if r.Score < c.threshold {
			continue
		}
		kept = append(kept, r)
		if c.topK > 0 && len(kept) == c.topK {
			break
		}
	}
	return kept
}
