package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// Client delivers messages through the Telegram Bot API sendMessage method.
// The base URL is injected from config so tests can point to a local mock.
//
// All calls pass through a circuit breaker: once the Bot API fails often
// enough the breaker opens and sends are rejected before any request is
// issued, surfacing as ErrNotAttempted so callers can safely revert claims.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "telegram-bot-api",
			MaxRequests: 3,
			Interval:    30 * time.Second,
			Timeout:     60 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.Requests >= 5 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
			},
			IsSuccessful: func(err error) bool {
				// A permanently unreachable recipient is not an API outage;
				// it must not push the breaker towards open.
				return err == nil || errors.Is(err, ErrPermanent)
			},
		}),
	}
}

// sendMessageRequest is the JSON body posted to the Bot API.
type sendMessageRequest struct {
	ChatID                int64  `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// sendMessageResponse maps the Bot API response envelope.
type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// Send posts the message as Telegram HTML with link previews disabled.
func (c *Client) Send(ctx context.Context, chatID int64, text string) error {
	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.send(ctx, chatID, text)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrNotAttempted, err)
	}
	return err
}

func (c *Client) send(ctx context.Context, chatID int64, text string) error {
	body, err := json.Marshal(sendMessageRequest{
		ChatID:                chatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	var apiResp sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}

	if apiResp.OK {
		return nil
	}

	if isPermanent(resp.StatusCode, apiResp.Description) {
		return fmt.Errorf("%w: telegram %d: %s", ErrPermanent, apiResp.ErrorCode, apiResp.Description)
	}
	return fmt.Errorf("telegram %d: %s", apiResp.ErrorCode, apiResp.Description)
}

// isPermanent classifies Bot API failures that no retry can fix.
// 403 means the recipient blocked the bot; "chat not found" means the chat
// ID no longer resolves. Everything else (429, 5xx, network) is transient.
func isPermanent(status int, description string) bool {
	if status == http.StatusForbidden {
		return true
	}
	return status == http.StatusBadRequest &&
		strings.Contains(strings.ToLower(description), "chat not found")
}

// compile-time check that Client implements Sender
var _ Sender = (*Client)(nil)
