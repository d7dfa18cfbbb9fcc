package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ametelkin/tripline/internal/logger"
)

const defaultBaseURL = "https://api.telegram.org"

// sendTimeout bounds each outbound fire-and-forget call.
const sendTimeout = 10 * time.Second

type Config struct {
	Token       string
	BaseURL     string
	PollTimeout time.Duration
}

// Client is a minimal Bot API client covering getUpdates long polling and
// message sending. Send paths are fire-and-forget; only the fetch path
// reports errors to the caller.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *logger.Logger
}

func NewClient(log *logger.Logger, cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 30 * time.Second
	}
	return &Client{
		cfg: cfg,
		// The long poll holds the connection up to PollTimeout, so the
		// client timeout must sit above it.
		httpClient: &http.Client{Timeout: cfg.PollTimeout + 10*time.Second},
		log:        log.With("component", "TelegramClient"),
	}
}

// GetUpdates performs one long-poll round trip. A 409 Conflict (another
// consumer holds the long-poll slot) is normalized to an empty batch; every
// other failure is returned and the caller decides what to do with the tick.
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	q := url.Values{}
	q.Set("offset", strconv.FormatInt(offset, 10))
	q.Set("timeout", strconv.Itoa(int(c.cfg.PollTimeout/time.Second)))

	endpoint := c.methodURL("getUpdates") + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build getUpdates request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("getUpdates request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("getUpdates returned status %d", resp.StatusCode)
	}

	var envelope getUpdatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode getUpdates response: %w", err)
	}
	if !envelope.OK {
		return nil, fmt.Errorf("getUpdates returned ok=false")
	}
	return envelope.Result, nil
}

// DeleteWebhook clears any registered webhook so long polling can start.
func (c *Client) DeleteWebhook(ctx context.Context) error {
	endpoint := c.methodURL("deleteWebhook") + "?drop_pending_updates=true"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build deleteWebhook request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deleteWebhook request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("deleteWebhook returned status %d", resp.StatusCode)
	}
	return nil
}

// Send delivers one text message synchronously. Used by the admin broadcast,
// which wants the per-recipient outcome.
func (c *Client) Send(ctx context.Context, chatID int64, text string) error {
	payload := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	return c.post(ctx, "sendMessage", payload)
}

// SendMessage is the fire-and-forget variant: it returns immediately and the
// outcome is only logged.
func (c *Client) SendMessage(chatID int64, text string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := c.Send(ctx, chatID, text); err != nil {
			c.log.Warn("sendMessage failed", "chat_id", chatID, "error", err)
		}
	}()
}

// RequestLocation sends a prompt with a one-time keyboard whose single
// button asks the user to share their current location.
func (c *Client) RequestLocation(chatID int64, prompt string) {
	payload := map[string]any{
		"chat_id": chatID,
		"text":    prompt,
		"reply_markup": map[string]any{
			"keyboard": [][]map[string]any{{
				{"text": "Share location", "request_location": true},
			}},
			"one_time_keyboard": true,
			"resize_keyboard":   true,
		},
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := c.post(ctx, "sendMessage", payload); err != nil {
			c.log.Warn("requestLocation failed", "chat_id", chatID, "error", err)
		}
	}()
}

func (c *Client) post(ctx context.Context, method string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", method, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(method), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", method, resp.StatusCode)
	}
	return nil
}

func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.cfg.BaseURL, c.cfg.Token, method)
}
