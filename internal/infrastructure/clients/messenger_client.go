package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/zwehtet-dev/tg-bot/pkg/config"
	"github.com/zwehtet-dev/tg-bot/pkg/retry"
)

// MessengerClient posts operator notifications to the messaging webhook.
type MessengerClient struct {
	webhookURL string
	httpClient *http.Client
	policy     retry.Policy
	logger     zerolog.Logger
}

func NewMessengerClient(cfg *config.MessengerConfig, logger zerolog.Logger) *MessengerClient {
	return &MessengerClient{
		webhookURL: cfg.WebhookURL,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		policy: retry.NewPolicy(cfg.MaxRetries, cfg.RetryBackoffBase),
		logger: logger.With().Str("component", "messenger_client").Logger(),
	}
}

type messengerSendRequest struct {
	ChannelID string `json:"channel_id"`
	ThreadID  string `json:"thread_id,omitempty"`
	Text      string `json:"text"`
}

type messengerEditRequest struct {
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
	Text      string `json:"text"`
}

type messengerResponse struct {
	MessageID string `json:"message_id"`
}

func (c *MessengerClient) Send(ctx context.Context, channelID, threadID, text string) (string, error) {
	body, err := json.Marshal(messengerSendRequest{
		ChannelID: channelID,
		ThreadID:  threadID,
		Text:      text,
	})
	if err != nil {
		return "", fmt.Errorf("encoding message failed: %w", err)
	}

	var messageID string
	err = c.policy.Do(ctx, c.logger, "messenger_send", func(ctx context.Context) error {
		resp, err := c.post(ctx, c.webhookURL+"/messages", body)
		if err != nil {
			return err
		}
		messageID = resp.MessageID
		return nil
	})
	if err != nil {
		return "", err
	}
	return messageID, nil
}

func (c *MessengerClient) Edit(ctx context.Context, channelID, messageID, text string) error {
	body, err := json.Marshal(messengerEditRequest{
		ChannelID: channelID,
		MessageID: messageID,
		Text:      text,
	})
	if err != nil {
		return fmt.Errorf("encoding message failed: %w", err)
	}

	return c.policy.Do(ctx, c.logger, "messenger_edit", func(ctx context.Context) error {
		_, err := c.post(ctx, c.webhookURL+"/messages/edit", body)
		return err
	})
}

func (c *MessengerClient) post(ctx context.Context, url string, body []byte) (*messengerResponse, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, retry.Transient(fmt.Errorf("HTTP request failed: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, retry.Transient(fmt.Errorf("reading response failed: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("messenger webhook returned status %d", resp.StatusCode)
		if retry.RetryableStatusCode(resp.StatusCode) {
			return nil, retry.Transient(err)
		}
		return nil, err
	}

	var parsed messengerResponse
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &parsed); err != nil {
			c.logger.Debug().Err(err).Msg("Webhook response body ignored")
		}
	}
	return &parsed, nil
}
