package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenLifetime is how long a minted player token stays valid.
const DefaultTokenLifetime = 24 * time.Hour

// Claims are the JWT claims carried by player tokens.
type Claims struct {
	PlayerID string `json:"playerId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenService mints and verifies HS256 player tokens.
type TokenService struct {
	secret   []byte
	lifetime time.Duration
}

// NewTokenService returns a TokenService signing with the given secret.
// A zero lifetime falls back to DefaultTokenLifetime.
func NewTokenService(secret string, lifetime time.Duration) *TokenService {
	if lifetime <= 0 {
		lifetime = DefaultTokenLifetime
	}
	return &TokenService{secret: []byte(secret), lifetime: lifetime}
}

// Mint creates a signed token identifying the given player.
func (s *TokenService) Mint(playerID uuid.UUID, username string) (string, error) {
	now := time.Now()
	claims := Claims{
		PlayerID: playerID.String(),
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   playerID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token string, returning the player identity.
func (s *TokenService) Verify(tokenStr string) (uuid.UUID, string, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("parse token: %w", err)
	}
	playerID, err := uuid.Parse(claims.PlayerID)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("invalid playerId claim: %w", err)
	}
	return playerID, claims.Username, nil
}
