package chatwoot

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultHTTPTimeout = 15 * time.Second

// Client calls the Chatwoot application API as an agent bot.
type Client struct {
	baseURL    string
	botToken   string
	httpClient *http.Client
}

// NewClient creates a Chatwoot API client authenticated with the bot token.
func NewClient(baseURL, botToken string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		botToken:   botToken,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// SetBaseURL overrides the API base URL (useful for testing).
func (c *Client) SetBaseURL(base string) {
	c.baseURL = strings.TrimRight(base, "/")
}

// SetHTTPClient overrides the underlying HTTP client.
func (c *Client) SetHTTPClient(hc *http.Client) {
	if hc != nil {
		c.httpClient = hc
	}
}

// CreateMessage posts a message into a conversation and returns the raw
// create-message result. A request carrying an image is sent as a multipart
// upload, everything else as JSON. Posts are not retried: sending twice
// risks duplicate user-visible messages.
func (c *Client) CreateMessage(ctx context.Context, accountID, conversationID int, msg CreateMessageRequest) (json.RawMessage, error) {
	url := fmt.Sprintf("%s/api/v1/accounts/%d/conversations/%d/messages", c.baseURL, accountID, conversationID)

	if len(msg.Image) > 0 {
		return c.postMultipart(ctx, url, msg)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("chatwoot: marshal message: %w", err)
	}
	return c.postJSON(ctx, url, body)
}

// ToggleTyping switches the typing indicator for a conversation on or off.
func (c *Client) ToggleTyping(ctx context.Context, accountID, conversationID int, on bool) error {
	status := "off"
	if on {
		status = "on"
	}
	url := fmt.Sprintf("%s/api/v1/accounts/%d/conversations/%d/toggle_typing_status", c.baseURL, accountID, conversationID)
	body, err := json.Marshal(map[string]string{"status": status})
	if err != nil {
		return fmt.Errorf("chatwoot: marshal typing status: %w", err)
	}
	_, err = c.postJSON(ctx, url, body)
	return err
}

func (c *Client) postJSON(ctx context.Context, url string, body []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("chatwoot: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api_access_token", c.botToken)

	return c.do(req)
}

func (c *Client) postMultipart(ctx context.Context, url string, msg CreateMessageRequest) (json.RawMessage, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("content", msg.Content); err != nil {
		return nil, fmt.Errorf("chatwoot: write content field: %w", err)
	}
	if msg.ContentType != "" {
		if err := writer.WriteField("content_type", msg.ContentType); err != nil {
			return nil, fmt.Errorf("chatwoot: write content_type field: %w", err)
		}
	}
	if msg.ContentAttributes != nil {
		attrs, err := json.Marshal(msg.ContentAttributes)
		if err != nil {
			return nil, fmt.Errorf("chatwoot: marshal content attributes: %w", err)
		}
		if err := writer.WriteField("content_attributes", string(attrs)); err != nil {
			return nil, fmt.Errorf("chatwoot: write content_attributes field: %w", err)
		}
	}
	// the API treats an absent private field as non-private, so false is
	// omitted rather than serialized
	if msg.Private {
		if err := writer.WriteField("private", "true"); err != nil {
			return nil, fmt.Errorf("chatwoot: write private field: %w", err)
		}
	}

	part, err := writer.CreateFormFile("attachments[]", attachmentFilename())
	if err != nil {
		return nil, fmt.Errorf("chatwoot: create form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(msg.Image)); err != nil {
		return nil, fmt.Errorf("chatwoot: copy image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("chatwoot: close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, fmt.Errorf("chatwoot: create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api_access_token", c.botToken)

	return c.do(req)
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chatwoot: http error: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("chatwoot: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("chatwoot: unexpected status %d: %s", resp.StatusCode, string(data))
	}
	return data, nil
}

func attachmentFilename() string {
	u := uuid.New()
	return hex.EncodeToString(u[:]) + ".jpg"
}
