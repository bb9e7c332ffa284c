package rasa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/voxbridge/chatwoot-rasa-bridge/pkg/logging"
)

const base64ImagePrefix = "data:image/jpg;base64,"

// Extractor normalizes the two reply shapes Rasa produces: an ordered list
// of fragments, or a single {message} object.
type Extractor struct {
	maxButtonTitleLen int
	maxButtons        int
	httpClient        *http.Client
	logger            *logging.Logger
}

// NewExtractor creates an Extractor with the configured button limits.
func NewExtractor(maxButtonTitleLen, maxButtons int, httpClient *http.Client, logger *logging.Logger) *Extractor {
	if logger == nil {
		logger = logging.Default()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	// truncation reserves three characters for the ellipsis
	if maxButtonTitleLen < 4 {
		maxButtonTitleLen = 24
	}
	if maxButtons <= 0 {
		maxButtons = 10
	}
	return &Extractor{
		maxButtonTitleLen: maxButtonTitleLen,
		maxButtons:        maxButtons,
		httpClient:        httpClient,
		logger:            logger,
	}
}

// ExtractReply parses a raw Rasa response body into a normalized Reply.
// Fragment lists join their texts with newlines in input order, accumulate
// buttons across fragments, and adopt the last fragment's custom payload and
// image. A single object contributes only its message text.
func (e *Extractor) ExtractReply(ctx context.Context, raw []byte) (Reply, error) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var fragments []Fragment
		if err := json.Unmarshal(raw, &fragments); err != nil {
			return Reply{}, fmt.Errorf("rasa: decode fragment list: %w", err)
		}
		return e.fromFragments(ctx, fragments), nil
	}

	var single struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &single); err != nil {
		return Reply{}, fmt.Errorf("rasa: decode reply object: %w", err)
	}
	return Reply{Text: single.Message}, nil
}

func (e *Extractor) fromFragments(ctx context.Context, fragments []Fragment) Reply {
	var reply Reply
	var texts []string
	var imageURL string

	for _, frag := range fragments {
		if frag.Text != "" {
			texts = append(texts, frag.Text)
		}
		for _, btn := range frag.Buttons {
			reply.Buttons = append(reply.Buttons, Button{
				Title: e.truncateTitle(btn.Title),
				Value: btn.Payload,
			})
		}
		if frag.Custom != nil {
			reply.Custom = frag.Custom
		}
		if frag.Image != "" {
			imageURL = frag.Image
		}
	}

	reply.Text = strings.Join(texts, "\n")
	if len(reply.Buttons) > e.maxButtons {
		reply.Buttons = reply.Buttons[:e.maxButtons]
	}
	if imageURL != "" {
		img, err := e.fetchImage(ctx, imageURL)
		if err != nil {
			e.logger.Warn("image fetch failed", "error", err)
		} else {
			reply.Image = img
		}
	}
	return reply
}

// truncateTitle limits a button title to maxButtonTitleLen characters,
// counting runes so multibyte titles are never cut mid-character.
func (e *Extractor) truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) > e.maxButtonTitleLen {
		return string(runes[:e.maxButtonTitleLen-3]) + "..."
	}
	return title
}

// fetchImage resolves an image reference to bytes. Inline base64 data URLs
// decode in place; anything else is fetched over HTTP.
func (e *Extractor) fetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	if strings.HasPrefix(imageURL, base64ImagePrefix) {
		data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(imageURL, base64ImagePrefix))
		if err != nil {
			return nil, fmt.Errorf("rasa: decode inline image: %w", err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("rasa: build image request: %w", err)
	}
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rasa: fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("rasa: image fetch status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("rasa: read image: %w", err)
	}
	return data, nil
}
