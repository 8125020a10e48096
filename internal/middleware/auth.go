package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// LocalsAdmin is the fiber.Ctx locals key holding the authenticated admin's username.
const LocalsAdmin = "admin"

const bearerPrefix = "Bearer "

// TokenParser validates a session token and returns its subject.
type TokenParser interface {
	ParseToken(token string) (string, error)
}

// RequireAdmin rejects requests without a valid "Authorization: Bearer <token>" header.
func RequireAdmin(parser TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return unauthorized(c, "authorization header is required")
		}
		if !strings.HasPrefix(header, bearerPrefix) {
			return unauthorized(c, "authorization header must use the Bearer scheme")
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
		if token == "" {
			return unauthorized(c, "authorization header is required")
		}

		subject, err := parser.ParseToken(token)
		if err != nil {
			log.Warn().Err(err).Str("path", c.Path()).Msg("rejected admin token")
			if errors.Is(err, jwt.ErrTokenExpired) {
				return unauthorized(c, "token has expired")
			}
			return unauthorized(c, "invalid token")
		}

		c.Locals(LocalsAdmin, subject)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
