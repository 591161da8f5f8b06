// Package provider holds HTTP clients for external collaborators.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/clubhaus/backoffice/internal/domain"
)

// GatewayClient talks to the chat gateway service that owns the actual
// messenger connection. It implements notify.Gateway.
type GatewayClient struct {
	baseURL string
	token   string
	logger  *slog.Logger
	client  *http.Client
}

// NewGatewayClient creates a chat gateway HTTP client.
func NewGatewayClient(baseURL, token string, logger *slog.Logger) *GatewayClient {
	return &GatewayClient{
		baseURL: baseURL,
		token:   token,
		logger:  logger,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type sendTextRequest struct {
	UserID int64  `json:"user_id"`
	Text   string `json:"text"`
}

type sendMediaRequest struct {
	UserID int64             `json:"user_id"`
	Items  []domain.PackItem `json:"items"`
}

// SendText delivers a plain text message to a user.
func (c *GatewayClient) SendText(ctx context.Context, userID int64, text string) error {
	return c.post(ctx, "/messages/text", sendTextRequest{UserID: userID, Text: text})
}

// SendMediaGroup delivers items as a single grouped album.
func (c *GatewayClient) SendMediaGroup(ctx context.Context, userID int64, items []domain.PackItem) error {
	return c.post(ctx, "/messages/media-group", sendMediaRequest{UserID: userID, Items: items})
}

type sendChannelRequest struct {
	ChannelID string `json:"channel_id"`
	Text      string `json:"text"`
}

// SendChannelText posts an announcement into a channel the gateway manages.
func (c *GatewayClient) SendChannelText(ctx context.Context, channelID, text string) error {
	return c.post(ctx, "/channels/messages", sendChannelRequest{ChannelID: channelID, Text: text})
}

// SendMedia delivers a single media item.
func (c *GatewayClient) SendMedia(ctx context.Context, userID int64, item domain.PackItem) error {
	return c.post(ctx, "/messages/media", sendMediaRequest{UserID: userID, Items: []domain.PackItem{item}})
}

func (c *GatewayClient) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode gateway request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("gateway %s returned %d", path, resp.StatusCode)
	}
	return nil
}
