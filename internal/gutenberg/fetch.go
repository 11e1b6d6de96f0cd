// Package gutenberg fetches and cleans public-domain document text, most
// commonly the "Plain Text UTF-8" files served by Project Gutenberg.
package gutenberg

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"strings"
	"time"
)

// maxDocumentBytes bounds how much of a response body is read. Gutenberg's
// largest plain-text books are a few MB; anything past this is not prose.
const maxDocumentBytes = 32 << 20

// Fetcher retrieves document text over HTTP.
type Fetcher struct {
	client *http.Client
}

// NewFetcher returns a Fetcher with a timeout matching interactive use.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch downloads the document at url and returns its plain text. HTML
// responses are reduced to their visible text; any other non-text content
// type is rejected with a hint to use the plain-text link.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request for %s: %w", url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: unexpected status %s", url, resp.Status)
	}

	mediaType := resp.Header.Get("Content-Type")
	if mt, _, err := mime.ParseMediaType(mediaType); err == nil {
		mediaType = mt
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", url, err)
	}

	switch {
	case mediaType == "text/html":
		log.Printf("gutenberg: %s served HTML, extracting text", url)
		text, err := extractHTMLText(strings.NewReader(string(body)))
		if err != nil {
			return "", fmt.Errorf("extracting text from %s: %w", url, err)
		}
		return text, nil
	case strings.HasPrefix(mediaType, "text/"), mediaType == "":
		return string(body), nil
	default:
		return "", fmt.Errorf("%s has content type %q; choose the 'Plain Text UTF-8' link", url, mediaType)
	}
}
