package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"crm-server/internal/dispatch"
	"crm-server/internal/observability"
)

var (
	ErrUnexpectedStatus = errors.New("whatsapp gateway returned non-success status")
	ErrMalformedReply   = errors.New("whatsapp gateway returned malformed response")
)

// maxErrorBody caps how much of a failed response body ends up in the error
const maxErrorBody = 256

type sendTextRequest struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

type sendMediaRequest struct {
	Number    string `json:"number"`
	MediaType string `json:"mediatype"`
	Media     string `json:"media"`
	Caption   string `json:"caption,omitempty"`
}

type sendResponse struct {
	Key struct {
		ID string `json:"id"`
	} `json:"key"`
}

// Client talks to an instance-based WhatsApp HTTP gateway
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *observability.Logger
}

// NewClient creates a gateway client. timeout bounds each send.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *observability.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// SendText sends a plain text message from instance to phone
func (c *Client) SendText(ctx context.Context, instance, phone, text string) (string, error) {
	return c.post(ctx, "sendText", instance, sendTextRequest{Number: phone, Text: text})
}

// SendMedia sends an attachment with caption from instance to phone
func (c *Client) SendMedia(ctx context.Context, instance, phone string, media dispatch.Media, caption string) (string, error) {
	return c.post(ctx, "sendMedia", instance, sendMediaRequest{
		Number:    phone,
		MediaType: media.Kind,
		Media:     media.URL,
		Caption:   caption,
	})
}

func (c *Client) post(ctx context.Context, action, instance string, payload any) (string, error) {
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "gateway", Value: "whatsapp"},
		observability.Field{Key: "gateway_action", Value: action},
		observability.Field{Key: "instance_id", Value: instance},
	)

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s request: %w", action, err)
	}

	endpoint := fmt.Sprintf("%s/message/%s/%s", c.baseURL, action, url.PathEscape(instance))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn(ctx, fmt.Sprintf("whatsapp gateway call failed: %v", err))
		return "", fmt.Errorf("failed to call whatsapp gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedReply, err)
	}

	c.logger.Debug(ctx, "whatsapp message accepted")
	return out.Key.ID, nil
}
