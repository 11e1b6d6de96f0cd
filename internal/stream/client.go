// Package stream is the client side of the annotation backend: document
// ingestion, chunk listing, and the per-chunk annotation channels feeding a
// viewer session.
package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/marginalia-reader/marginalia/internal/viewer"
)

// Sentinel errors let callers distinguish which load step failed.
var (
	ErrIngest       = errors.New("stream: ingest failed")
	ErrChunkListing = errors.New("stream: chunk listing failed")
)

// Client talks to one annotation backend.
type Client struct {
	baseURL string
	http    *http.Client
	dialer  *websocket.Dialer
}

// NewClient creates a client for the backend at baseURL (http or https).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
		dialer:  websocket.DefaultDialer,
	}
}

// Ingest asks the backend to fetch and chunk the document at docURL,
// returning the new document id.
func (c *Client) Ingest(ctx context.Context, docURL string) (string, error) {
	body, err := json.Marshal(map[string]string{"url": docURL})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrIngest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/ingest", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrIngest, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrIngest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s", ErrIngest, readErrorBody(resp))
	}

	var out struct {
		DocumentID string `json:"document_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", ErrIngest, err)
	}
	return out.DocumentID, nil
}

// Chunks fetches a document's ordered chunk sequence.
func (c *Client) Chunks(ctx context.Context, documentID string) ([]viewer.Chunk, error) {
	u := fmt.Sprintf("%s/api/documents/%s/chunks", c.baseURL, url.PathEscape(documentID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChunkListing, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChunkListing, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrChunkListing, readErrorBody(resp))
	}

	var out []struct {
		ID   int    `json:"id"`
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrChunkListing, err)
	}

	chunks := make([]viewer.Chunk, len(out))
	for i, c := range out {
		chunks[i] = viewer.Chunk{ID: c.ID, Text: c.Text}
	}
	return chunks, nil
}

// DialChunk opens the annotation channel for one chunk, with the goal and the
// completion token cap frozen into the channel's query string. maxTokens zero
// leaves the cap to the server.
func (c *Client) DialChunk(ctx context.Context, chunkID int, goal string, maxTokens int) (*websocket.Conn, error) {
	wsBase := c.baseURL
	switch {
	case strings.HasPrefix(wsBase, "https://"):
		wsBase = "wss://" + strings.TrimPrefix(wsBase, "https://")
	case strings.HasPrefix(wsBase, "http://"):
		wsBase = "ws://" + strings.TrimPrefix(wsBase, "http://")
	}

	q := url.Values{}
	if goal != "" {
		q.Set("goal", goal)
	}
	if maxTokens > 0 {
		q.Set("max_tokens", strconv.Itoa(maxTokens))
	}
	u := fmt.Sprintf("%s/ws/chunks/%d", wsBase, chunkID)
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	conn, resp, err := c.dialer.DialContext(ctx, u, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dialing channel for chunk %d: %w", chunkID, err)
	}
	return conn, nil
}

func readErrorBody(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var out struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &out) == nil && out.Error != "" {
		return fmt.Sprintf("%s (%s)", out.Error, resp.Status)
	}
	return resp.Status
}
