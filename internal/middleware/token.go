package middleware

import (
	jwtPkg "SuperApp/pkg/jwt"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type tokenMiddleware struct {
	unauthorizedMessage string
}

func newTokenMiddleware() *tokenMiddleware {
	return &tokenMiddleware{
		unauthorizedMessage: "Unauthorized, session token invalid or expired",
	}
}

// NewTokenMiddleware verifies the session token from the Authorization
// header, or the token query parameter for WebSocket upgrades, and stores the
// session id in Locals.
func (m *middleware) NewTokenMiddleware(ctx *fiber.Ctx) error {
	requestID := m.GetRequestID(ctx)

	raw := jwtPkg.TokenFromRequest(ctx)
	sessionID, err := jwtPkg.ParseSessionToken(raw)
	if err != nil {
		level := logrus.WarnLevel
		if errors.Is(err, jwtPkg.ErrSecretMissing) {
			level = logrus.ErrorLevel
		}
		m.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"path":       ctx.Path(),
			"client_ip":  ctx.IP(),
			"error":      err.Error(),
		}).Log(level, "Session token verification failed")

		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": m.token.unauthorizedMessage,
			"code":  "UNAUTHORIZED",
		})
	}

	ctx.Locals(jwtPkg.SessionLocalKey, sessionID)

	m.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"session_id": sessionID,
	}).Debug("Session token verified")

	return ctx.Next()
}
