// Package extract calls the attachment text-extraction service (OCR for
// images, text extraction for PDFs). The service is a black box behind a
// small JSON API; the bridge only needs the extracted text.
package extract

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
)

const defaultTimeout = 60 * time.Second

// Client posts attachment URLs to the extraction service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an extraction client. An empty base URL yields a client
// whose calls fail fast; callers treat extraction failure as empty text.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetBaseURL overrides the service base URL (useful for testing).
func (c *Client) SetBaseURL(base string) {
	c.baseURL = strings.TrimRight(base, "/")
}

// ExtractImage runs OCR on the image behind url and returns its text.
func (c *Client) ExtractImage(ctx context.Context, url string) (string, error) {
	return c.extract(ctx, "/extract/image", url)
}

// ExtractPDF extracts the text content of the PDF behind url.
func (c *Client) ExtractPDF(ctx context.Context, url string) (string, error) {
	return c.extract(ctx, "/extract/pdf", url)
}

func (c *Client) extract(ctx context.Context, path, attachmentURL string) (string, error) {
	if c.baseURL == "" {
		return "", errors.New("extract: service URL not configured")
	}
	body, err := json.Marshal(map[string]string{"url": attachmentURL})
	if err != nil {
		return "", fmt.Errorf("extract: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("extract: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("extract: http error: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("extract: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("extract: unexpected status %d", resp.StatusCode)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("extract: decode response: %w", err)
	}
	return result.Text, nil
}
