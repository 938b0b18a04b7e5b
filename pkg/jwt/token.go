package jwtPkg

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const (
	SecretEnvKey    = "JWT_ACCESS_TOKEN_SECRET"
	SessionLocalKey = "session_id"
	sessionClaimKey = "session_id"
)

var (
	ErrMissingToken  = errors.New("missing session token")
	ErrInvalidToken  = errors.New("invalid session token")
	ErrSecretMissing = errors.New("JWT secret not configured")
)

// SignSession issues an HS256 token that binds the bearer to one assistant
// session.
func SignSession(sessionID string, ttl time.Duration) (string, time.Time, error) {
	secret := os.Getenv(SecretEnvKey)
	if secret == "" {
		return "", time.Time{}, ErrSecretMissing
	}

	expiresAt := time.Now().Add(ttl)
	claims := jwt.MapClaims{
		"exp":           expiresAt.Unix(),
		"iat":           time.Now().Unix(),
		sessionClaimKey: sessionID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		logrus.WithError(err).Error("Failed to sign session token")
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// ParseSessionToken verifies the token and returns the session id it carries.
func ParseSessionToken(raw string) (string, error) {
	secret := os.Getenv(SecretEnvKey)
	if secret == "" {
		return "", ErrSecretMissing
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrMissingToken
	}

	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	sessionID, ok := claims[sessionClaimKey].(string)
	if !ok || sessionID == "" {
		return "", ErrInvalidToken
	}

	return sessionID, nil
}

// TokenFromRequest reads "Authorization: Bearer <token>" and falls back to
// the token query parameter, which browsers need for WebSocket upgrades.
func TokenFromRequest(c *fiber.Ctx) string {
	header := c.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return c.Query("token")
}

func GetSessionID(c *fiber.Ctx) (string, error) {
	sessionID, ok := c.Locals(SessionLocalKey).(string)
	if !ok || sessionID == "" {
		return "", fiber.ErrUnauthorized
	}
	return sessionID, nil
}
