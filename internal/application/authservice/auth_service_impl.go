package authservice

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zwehtet-dev/tg-bot/internal/domain/models"
	"github.com/zwehtet-dev/tg-bot/pkg/config"
)

const tokenIssuer = "exchange-broker"

type AuthService struct {
	config *config.Config
	logger zerolog.Logger
}

func NewAuthService(config *config.Config, logger zerolog.Logger) *AuthService {
	return &AuthService{
		config: config,
		logger: logger,
	}
}

func (s *AuthService) VerifyToken(ctx context.Context, tokenString string) (*models.OperatorClaim, error) {
	jwtSecret := s.config.JWT.Secret
	if jwtSecret == "" {
		s.logger.Error().Msg("JWT secret not configured")
		return nil, fmt.Errorf("JWT secret not configured")
	}

	token, err := jwt.ParseWithClaims(tokenString, &models.OperatorClaim{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to parse token")
		return nil, fmt.Errorf("failed to parse token: %v", err)
	}

	if !token.Valid {
		s.logger.Error().Msg("Invalid token")
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*models.OperatorClaim)
	if !ok {
		s.logger.Error().Msg("Invalid claims format")
		return nil, fmt.Errorf("invalid claims format")
	}

	if claims.ExpiresAt < time.Now().Unix() {
		return nil, fmt.Errorf("token expired")
	}

	if claims.Issuer != tokenIssuer {
		return nil, fmt.Errorf("invalid issuer")
	}

	return claims, nil
}

func (s *AuthService) GenerateOperatorToken(ctx context.Context, role string) (string, error) {
	jwtSecret := s.config.JWT.Secret
	if jwtSecret == "" {
		s.logger.Error().Msg("JWT secret not configured")
		return "", fmt.Errorf("JWT secret not configured")
	}

	operatorID := uuid.New()
	expirationTime := time.Now().Add(s.config.JWT.Lifetime)
	claim := &models.OperatorClaim{
		OperatorID: operatorID,
		Role:       role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expirationTime.Unix(),
			IssuedAt:  time.Now().Unix(),
			Issuer:    tokenIssuer,
			Subject:   operatorID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claim)
	tokenString, err := token.SignedString([]byte(jwtSecret))
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to sign token")
		return "", fmt.Errorf("failed to sign token: %v", err)
	}

	return tokenString, nil
}

func (s *AuthService) VerifyAPIKey(ctx context.Context, apiKey string) error {
	configured := s.config.Security.OperatorAPIKey
	if apiKey == "" || configured == "" {
		return errors.New("invalid API key")
	}
	if subtle.ConstantTimeCompare([]byte(apiKey), []byte(configured)) != 1 {
		return errors.New("invalid API key")
	}
	return nil
}
