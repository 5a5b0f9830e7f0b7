package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	// LocalUID is the Fiber locals key holding the verified Firebase UID.
	LocalUID = "firebase_uid"
	// LocalEmail is the Fiber locals key holding the email claim when present.
	LocalEmail = "email"
)

// UserUID returns the Firebase UID stored by the auth middleware, or "" for anonymous requests.
func UserUID(c *fiber.Ctx) string {
	uid, _ := c.Locals(LocalUID).(string)
	return strings.TrimSpace(uid)
}

// UserEmail returns the email claim stored by the auth middleware, or "".
func UserEmail(c *fiber.Ctx) string {
	email, _ := c.Locals(LocalEmail).(string)
	return email
}
