package interfaces

import (
	"context"

	"github.com/zwehtet-dev/tg-bot/internal/domain/models"
)

// ReceiptExtractor turns receipt image bytes into a structured record.
// Implementations retry transient failures internally and return
// models.ErrExtractionFailed when nothing usable came back.
type ReceiptExtractor interface {
	Extract(ctx context.Context, image []byte) (*models.ReceiptExtraction, error)
}

// Messenger delivers operator notifications into threaded channels. The
// messaging front end itself lives outside this module; the orchestrator
// only depends on this surface.
type Messenger interface {
	// Send posts a message into a channel, optionally into a thread, and
	// returns the provider's message id.
	Send(ctx context.Context, channelID, threadID, text string) (string, error)

	// Edit rewrites a previously sent message.
	Edit(ctx context.Context, channelID, messageID, text string) error
}
