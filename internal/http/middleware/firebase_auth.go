package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"portfolioapi/internal/auth"
)

// FirebaseAuth rejects requests without a valid Firebase ID token in the Authorization header.
// On success the UID (and email claim, if any) are stored in locals; see auth.UserUID.
// Failures are returned as *fiber.Error so the global error handler renders them.
func FirebaseAuth(verifier auth.TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authorization token")
		}

		decoded, err := verifier.VerifyIDToken(c.UserContext(), token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(auth.LocalUID, decoded.UID)
		if email, ok := decoded.Claims["email"].(string); ok {
			c.Locals(auth.LocalEmail, email)
		}

		return c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
