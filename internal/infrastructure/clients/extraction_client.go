package clients

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/zwehtet-dev/tg-bot/internal/domain/models"
	"github.com/zwehtet-dev/tg-bot/pkg/config"
	"github.com/zwehtet-dev/tg-bot/pkg/retry"
)

const extractionPrompt = `Extract the following fields from this bank transfer receipt and answer with JSON only:
{"amount": number, "sender_bank": string, "receiver_bank": string, "sender_name": string, "receiver_name": string, "status": string, "reference": string}
Use null for fields that are not visible.`

// ExtractionClient reads receipt images through a hosted vision model.
type ExtractionClient struct {
	baseURL    string
	httpClient *http.Client
	config     *config.ExtractionConfig
	policy     retry.Policy
	logger     zerolog.Logger
}

func NewExtractionClient(cfg *config.ExtractionConfig, logger zerolog.Logger) *ExtractionClient {
	return &ExtractionClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				MaxIdleConnsPerHost: 10,
			},
		},
		config: cfg,
		policy: retry.NewPolicy(cfg.MaxRetries, cfg.RetryBackoffBase),
		logger: logger.With().Str("component", "extraction_client").Logger(),
	}
}

type visionRequest struct {
	Model    string          `json:"model"`
	Messages []visionMessage `json:"messages"`
}

type visionMessage struct {
	Role    string       `json:"role"`
	Content []visionPart `json:"content"`
}

type visionPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *visionImageURL `json:"image_url,omitempty"`
}

type visionImageURL struct {
	URL string `json:"url"`
}

type visionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *ExtractionClient) Extract(ctx context.Context, image []byte) (*models.ReceiptExtraction, error) {
	payload := visionRequest{
		Model: c.config.Model,
		Messages: []visionMessage{{
			Role: "user",
			Content: []visionPart{
				{Type: "text", Text: extractionPrompt},
				{Type: "image_url", ImageURL: &visionImageURL{
					URL: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image),
				}},
			},
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding extraction request failed: %w", err)
	}

	var extraction *models.ReceiptExtraction
	err = c.policy.Do(ctx, c.logger, "receipt_extraction", func(ctx context.Context) error {
		result, err := c.callOnce(ctx, body)
		if err != nil {
			return err
		}
		extraction = result
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrExtractionFailed, err)
	}
	return extraction, nil
}

func (c *ExtractionClient) callOnce(ctx context.Context, body []byte) (*models.ReceiptExtraction, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, retry.Transient(fmt.Errorf("HTTP request failed: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, retry.Transient(fmt.Errorf("reading response failed: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("extraction API returned status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
		if retry.RetryableStatusCode(resp.StatusCode) {
			return nil, retry.Transient(err)
		}
		return nil, err
	}

	var parsed visionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decoding response failed: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("extraction API returned no content")
	}

	return parseExtraction(parsed.Choices[0].Message.Content)
}

// parseExtraction tolerates model output wrapped in markdown code fences.
func parseExtraction(content string) (*models.ReceiptExtraction, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx >= 0 {
			content = content[:idx]
		}
		content = strings.TrimSpace(content)
	}

	var extraction models.ReceiptExtraction
	if err := json.Unmarshal([]byte(content), &extraction); err != nil {
		return nil, fmt.Errorf("model output is not valid JSON: %w", err)
	}
	return &extraction, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
