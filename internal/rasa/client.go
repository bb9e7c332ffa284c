package rasa

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

	"github.com/voxbridge/chatwoot-rasa-bridge/pkg/logging"
)

const (
	defaultMaxMessageChars = 420
	defaultMaxRetries      = 3
	defaultBaseDelay       = 1 * time.Second
	defaultTimeout         = 30 * time.Second
)

// Config controls how the Rasa client behaves.
type Config struct {
	BaseURL         string
	Channel         string
	TokenSecret     string
	MaxMessageChars int
	MaxRetries      int
	BaseDelay       time.Duration
	Timeout         time.Duration
	HTTPClient      *http.Client
	Extractor       *Extractor
	Logger          *logging.Logger
}

// Client sends conversation turns to the Rasa REST channel webhook.
type Client struct {
	baseURL         string
	channel         string
	tokenSecret     string
	maxMessageChars int
	maxRetries      int
	baseDelay       time.Duration
	httpClient      *http.Client
	extractor       *Extractor
	logger          *logging.Logger
}

type botRequest struct {
	Sender  string `json:"sender"`
	Message string `json:"message"`
}

// NewClient creates a configured Client with sane defaults.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("rasa: base URL is required")
	}
	if strings.TrimSpace(cfg.Channel) == "" {
		return nil, errors.New("rasa: channel is required")
	}
	maxChars := cfg.MaxMessageChars
	if maxChars <= 0 {
		maxChars = defaultMaxMessageChars
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	baseDelay := cfg.BaseDelay
	if baseDelay <= 0 {
		baseDelay = defaultBaseDelay
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	extractor := cfg.Extractor
	if extractor == nil {
		extractor = NewExtractor(0, 0, httpClient, logger)
	}
	return &Client{
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		channel:         cfg.Channel,
		tokenSecret:     cfg.TokenSecret,
		maxMessageChars: maxChars,
		maxRetries:      maxRetries,
		baseDelay:       baseDelay,
		httpClient:      httpClient,
		extractor:       extractor,
		logger:          logger,
	}, nil
}

// Send delivers one conversation turn to the bot and returns the normalized
// reply. Transient failures and semantically empty replies are retried with
// exponential backoff up to the retry budget; an exhausted budget returns the
// last reply obtained rather than an error, so bot unavailability degrades to
// silence instead of failing the webhook. The returned error is non-nil only
// when the context is cancelled mid-flight.
func (c *Client) Send(ctx context.Context, contactID, message string, conversationID int) (Reply, error) {
	// character cap, not bytes: never split a multibyte rune
	if runes := []rune(message); len(runes) > c.maxMessageChars {
		message = string(runes[:c.maxMessageChars])
	}
	sender := fmt.Sprintf("%s_%d", contactID, conversationID)

	token, err := SignGuestToken(c.tokenSecret, sender)
	if err != nil {
		return Reply{}, err
	}
	body, err := json.Marshal(botRequest{Sender: sender, Message: message})
	if err != nil {
		return Reply{}, fmt.Errorf("rasa: marshal bot request: %w", err)
	}

	var last Reply
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		reply, err := c.post(ctx, body, token)
		if err != nil {
			if ctx.Err() != nil {
				return last, ctx.Err()
			}
			c.logger.Warn("bot call failed",
				"attempt", attempt+1,
				"conversation_id", conversationID,
				"error", err,
			)
		} else {
			last = reply
			if !reply.IsEmpty() {
				return reply, nil
			}
			c.logger.Info("bot returned empty reply",
				"attempt", attempt+1,
				"conversation_id", conversationID,
			)
		}

		// no delay after the final attempt
		if attempt < c.maxRetries-1 {
			if err := c.sleep(ctx, attempt); err != nil {
				return last, err
			}
		}
	}
	c.logger.Warn("bot retry budget exhausted", "conversation_id", conversationID)
	return last, nil
}

func (c *Client) post(ctx context.Context, body []byte, token string) (Reply, error) {
	url := fmt.Sprintf("%s/webhooks/%s/webhook", c.baseURL, c.channel)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Reply{}, fmt.Errorf("rasa: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Reply{}, fmt.Errorf("rasa: http error: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Reply{}, fmt.Errorf("rasa: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Reply{}, fmt.Errorf("rasa: unexpected status %d", resp.StatusCode)
	}
	return c.extractor.ExtractReply(ctx, data)
}

// sleep waits out the backoff delay for the given attempt, honoring context
// cancellation so a surrounding request deadline cuts the retry loop short.
func (c *Client) sleep(ctx context.Context, attempt int) error {
	timer := time.NewTimer(c.nextDelay(attempt))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) nextDelay(attempt int) time.Duration {
	return c.baseDelay * time.Duration(1<<attempt)
}
