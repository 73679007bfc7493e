package whatsapp

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

// ErrRejected is returned when the gateway answers but refuses the message.
var ErrRejected = errors.New("whatsapp gateway rejected message")

const (
	jidSuffix       = "@s.whatsapp.net"
	maxResponseSize = 1 << 20
)

// Client posts backup requests to a self-hosted WhatsApp HTTP gateway.
type Client struct {
	endpoint string
	username string
	password string
	http     *http.Client
}

type SendMessageRequest struct {
	Phone       string `json:"phone"`
	Message     string `json:"message"`
	IsForwarded bool   `json:"is_forwarded"`
	Duration    int    `json:"duration"`
}

type SendMessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		MessageID string `json:"message_id"`
		Status    string `json:"status"`
	} `json:"data"`
}

// NewClient targets <baseURL>/<path>/send/message; path may be empty.
func NewClient(baseURL, username, password, path string, timeout time.Duration) *Client {
	endpoint := strings.TrimRight(baseURL, "/")
	if p := strings.Trim(path, "/"); p != "" {
		endpoint += "/" + p
	}
	return &Client{
		endpoint: endpoint + "/send/message",
		username: username,
		password: password,
		http:     &http.Client{Timeout: timeout},
	}
}

// JID turns a local (08...) or international number into a gateway chat id.
func JID(phone string) string {
	digits := SanitizeNumber(phone)
	if strings.HasPrefix(digits, "08") {
		digits = "628" + digits[2:]
	}
	return digits + jidSuffix
}

// SendTextMessage delivers message to phone through the gateway.
func (c *Client) SendTextMessage(ctx context.Context, phone, message string) (*SendMessageResponse, error) {
	// Prepare request body
	payload, err := json.Marshal(SendMessageRequest{Phone: JID(phone), Message: message})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request data: %w", err)
	}

	// Create HTTP request
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.username, c.password)

	// Send request
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	// Parse response
	var out SendMessageResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to parse gateway response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices || !out.Success {
		return &out, fmt.Errorf("%w (status %d): %s", ErrRejected, resp.StatusCode, out.Message)
	}
	return &out, nil
}
