package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HTTPGatewayConfig holds configuration for the SMS gateway client
type HTTPGatewayConfig struct {
	BaseURL string
	APIKey  string
	Sender  string
	Timeout time.Duration
}

// HTTPGateway sends SMS through an HTTP SMS provider
type HTTPGateway struct {
	config HTTPGatewayConfig
	client *http.Client
	logger *zap.Logger
}

// NewHTTPGateway creates a new HTTP SMS gateway client
func NewHTTPGateway(config HTTPGatewayConfig, logger *zap.Logger) *HTTPGateway {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPGateway{
		config: config,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type smsRequest struct {
	To      string `json:"to"`
	From    string `json:"from,omitempty"`
	Message string `json:"message"`
}

// SendSMS posts the message to the gateway
func (g *HTTPGateway) SendSMS(ctx context.Context, phone, message string) error {
	body, err := json.Marshal(smsRequest{
		To:      phone,
		From:    g.config.Sender,
		Message: message,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal SMS request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.config.BaseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build SMS request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.config.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("SMS gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("SMS gateway returned %d: %s", resp.StatusCode, string(respBody))
	}

	g.logger.Debug("SMS sent", zap.String("to", phone))
	return nil
}
