package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// AuthenticatedSession guards browser routes: without a logged-in session the
// request is redirected to the login page.
func AuthenticatedSession(sessionStore *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := sessionStore.Get(c)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Session error")
		}
		if sess.Get("user_id") == nil {
			return c.Redirect("/login", fiber.StatusFound)
		}

		c.Locals("user_id", sess.Get("user_id"))

		return c.Next()
	}
}
