package httpapi

import (
	"strings"

	"github.com/dmitrijs2005/walletvault/internal/auth"
	"github.com/gofiber/fiber/v2"
)

const localsAccountID = "accountID"

// RequireAuth validates the bearer access token and stores the account id in
// the request locals. Expired and malformed tokens both end the request with
// 401; the client is expected to refresh and retry.
func (h *Handler) RequireAuth(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	accountID, err := auth.GetUserIDFromToken(token, h.accessSecret)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	c.Locals(localsAccountID, accountID)
	return c.Next()
}
