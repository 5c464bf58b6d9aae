package authservice

import (
	"context"

	"github.com/zwehtet-dev/tg-bot/internal/domain/models"
)

type IAuthService interface {
	VerifyToken(ctx context.Context, tokenString string) (*models.OperatorClaim, error)
	GenerateOperatorToken(ctx context.Context, role string) (string, error)
	VerifyAPIKey(ctx context.Context, apiKey string) error
}
