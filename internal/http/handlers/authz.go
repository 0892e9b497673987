package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/leji-a/Inventory-Tracker/internal/apperr"
	"github.com/leji-a/Inventory-Tracker/internal/auth"
	applog "github.com/leji-a/Inventory-Tracker/internal/log"
)

const localUserID = "user_id"

// RequireBearer verifies the Authorization header and stores the caller's
// uid under Locals("user_id") for the handlers and the access log.
func RequireBearer(v auth.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok, ok := auth.BearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			applog.Security(c, "auth.token.missing", nil)
			return apperr.New(apperr.Unauthorized, "missing bearer token")
		}
		id, err := v.Verify(c.UserContext(), tok)
		if err != nil {
			applog.Security(c, "auth.token.reject", map[string]any{"reason": err.Error()})
			return apperr.Wrap(apperr.Unauthorized, err, "invalid or expired token")
		}
		c.Locals(localUserID, id.UID)
		return c.Next()
	}
}

// owner is the authenticated uid; routes behind RequireBearer always have one.
func owner(c *fiber.Ctx) string {
	uid, _ := c.Locals(localUserID).(string)
	return uid
}
